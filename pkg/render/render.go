// Package render defines the drawing surface and sky projector that catalogs
// and overlays draw against. Implementations live elsewhere: the raster
// package provides an image-backed Surface and the projection package
// provides Projectors.
package render

import (
	"image"
	"image/color"
	"math"
)

// Surface is a 2D drawing context modelled on an HTML canvas context.
// Coordinates are in screen pixels with the origin at the top-left corner.
type Surface interface {
	// Save pushes the current drawing state; Restore pops it.
	Save()
	Restore()

	SetStrokeColor(c color.Color)
	SetFillColor(c color.Color)
	SetLineWidth(w float64)
	SetLineDash(segments []float64)
	SetFont(f Font)

	// Path construction. Stroke and Fill consume the current path.
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Arc(cx, cy, r, startAngle, endAngle float64)
	ClosePath()
	Stroke()
	Fill()

	// DrawImage draws img with its top-left corner at (x, y).
	DrawImage(img image.Image, x, y float64)
	// FillText draws text with its baseline starting at (x, y).
	FillText(text string, x, y float64)
}

// Font describes the face used by FillText.
type Font struct {
	Family string
	Size   float64 // pixels
}

// DefaultFont is the label font used when none is configured.
var DefaultFont = Font{Family: "sans-serif", Size: 10}

// ViewParams describes the current view of the sky.
type ViewParams struct {
	CenterRA   float64 `json:"center_ra"`  // degrees
	CenterDec  float64 `json:"center_dec"` // degrees
	FoV        float64 `json:"fov"`        // horizontal field of view, degrees
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Projection string  `json:"projection"`
}

// Projector converts between sky and screen coordinates.
type Projector interface {
	// WorldToScreen projects parallel ra/dec arrays (degrees) in one call and
	// returns interleaved x,y screen positions. Entries for positions that
	// cannot be projected are NaN.
	WorldToScreen(ra, dec []float64) []float64
	// ScreenToWorld converts a screen position back to ra/dec degrees.
	ScreenToWorld(x, y float64) (ra, dec float64, ok bool)
	// ViewParams returns the current view description.
	ViewParams() ViewParams
}

// RedrawRequester is notified when displayed state changes and a new frame
// should be rendered.
type RedrawRequester interface {
	RequestRedraw()
}

// ProjectPoint projects a single position.
func ProjectPoint(p Projector, ra, dec float64) (x, y float64, ok bool) {
	xy := p.WorldToScreen([]float64{ra}, []float64{dec})
	if len(xy) < 2 || !IsFinite(xy[0]) || !IsFinite(xy[1]) {
		return 0, 0, false
	}
	return xy[0], xy[1], true
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
