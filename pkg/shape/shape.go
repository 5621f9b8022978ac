// Package shape provides the sky-anchored vector shapes drawn by overlays and
// catalog footprints: circles and polylines (open or closed polygons).
package shape

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/skyoverlay/pkg/render"
)

// Kind classifies a shape.
type Kind string

// Kind constants.
const (
	KindCircle   Kind = "circle"
	KindPolygon  Kind = "polygon"
	KindPolyline Kind = "polyline"
)

// Shape is a drawable region anchored on the sky.
type Shape interface {
	Kind() Kind
	// Draw strokes the shape and returns its screen extent. ok is false when
	// no part of the shape could be projected.
	Draw(s render.Surface, p render.Projector) (extent render.Rect, ok bool)
	// STCS returns the shape in STC-S notation.
	STCS() string
	Style() Style
	SetStyle(st Style)
}

// Style holds per-shape drawing overrides. Zero values inherit from the
// surrounding overlay or catalog.
type Style struct {
	Color     color.Color `json:"-"`
	LineWidth float64     `json:"line_width,omitempty"`
	FillColor color.Color `json:"-"`
}

// apply pushes the overrides onto the surface.
func (st Style) apply(s render.Surface) {
	if st.Color != nil {
		s.SetStrokeColor(st.Color)
	}
	if st.LineWidth > 0 {
		s.SetLineWidth(st.LineWidth)
	}
	if st.FillColor != nil {
		s.SetFillColor(st.FillColor)
	}
}

// SkyPoint is an equatorial position in degrees.
type SkyPoint struct {
	RA  float64 `json:"ra"`
	Dec float64 `json:"dec"`
}

// Circle is a circle of a given angular radius.
type Circle struct {
	RA     float64 `json:"ra"`
	Dec    float64 `json:"dec"`
	Radius float64 `json:"radius"` // degrees
	style  Style
}

// NewCircle creates a circle centred on (ra, dec) with radius in degrees.
func NewCircle(ra, dec, radius float64) *Circle {
	return &Circle{RA: ra, Dec: dec, Radius: radius}
}

func (c *Circle) Kind() Kind        { return KindCircle }
func (c *Circle) Style() Style      { return c.style }
func (c *Circle) SetStyle(st Style) { c.style = st }
func (c *Circle) String() string    { return c.STCS() }
func (c *Circle) Center() SkyPoint  { return SkyPoint{RA: c.RA, Dec: c.Dec} }
func (c *Circle) STCS() string      { return "CIRCLE ICRS " + formatFloats(c.RA, c.Dec, c.Radius) }

// Draw strokes the circle. The screen radius is measured by projecting a
// point offset by the angular radius along the declination axis.
func (c *Circle) Draw(s render.Surface, p render.Projector) (render.Rect, bool) {
	edgeDec := c.Dec + c.Radius
	if edgeDec > 90 {
		edgeDec = c.Dec - c.Radius
	}
	xy := p.WorldToScreen([]float64{c.RA, c.RA}, []float64{c.Dec, edgeDec})
	if !finite(xy[0], xy[1]) {
		return render.Rect{}, false
	}
	cx, cy := xy[0], xy[1]

	r := 0.0
	if finite(xy[2], xy[3]) {
		r = math.Hypot(xy[2]-cx, xy[3]-cy)
	}

	s.Save()
	c.style.apply(s)
	s.BeginPath()
	s.Arc(cx, cy, r, 0, 2*math.Pi)
	if c.style.FillColor != nil {
		s.Fill()
	}
	s.Stroke()
	s.Restore()

	return render.Rect{X: cx - r, Y: cy - r, Width: 2 * r, Height: 2 * r}, true
}

// Polyline is a sequence of sky positions joined by straight screen segments.
// A closed polyline is a polygon.
type Polyline struct {
	Points []SkyPoint `json:"points"`
	Closed bool       `json:"closed"`
	style  Style
}

// NewPolyline creates an open polyline.
func NewPolyline(points []SkyPoint) *Polyline {
	return &Polyline{Points: points}
}

// NewPolygon creates a closed polyline.
func NewPolygon(points []SkyPoint) *Polyline {
	return &Polyline{Points: points, Closed: true}
}

func (pl *Polyline) Style() Style      { return pl.style }
func (pl *Polyline) SetStyle(st Style) { pl.style = st }
func (pl *Polyline) String() string    { return pl.STCS() }

// Kind returns KindPolygon for closed polylines.
func (pl *Polyline) Kind() Kind {
	if pl.Closed {
		return KindPolygon
	}
	return KindPolyline
}

// STCS returns the polyline as a POLYGON when closed. Open polylines have no
// STC-S form and are rendered with a POLYLINE pseudo keyword.
func (pl *Polyline) STCS() string {
	vals := make([]float64, 0, 2*len(pl.Points))
	for _, pt := range pl.Points {
		vals = append(vals, pt.RA, pt.Dec)
	}
	kw := "POLYLINE"
	if pl.Closed {
		kw = "POLYGON"
	}
	return kw + " ICRS " + formatFloats(vals...)
}

// Draw strokes every segment whose two ends project. Vertices are projected
// in a single call.
func (pl *Polyline) Draw(s render.Surface, p render.Projector) (render.Rect, bool) {
	n := len(pl.Points)
	if n == 0 {
		return render.Rect{}, false
	}
	ra := make([]float64, n)
	dec := make([]float64, n)
	for i, pt := range pl.Points {
		ra[i], dec[i] = pt.RA, pt.Dec
	}
	xy := p.WorldToScreen(ra, dec)

	visible := make([]render.Point, 0, n)
	for i := 0; i < n; i++ {
		if finite(xy[2*i], xy[2*i+1]) {
			visible = append(visible, render.Point{X: xy[2*i], Y: xy[2*i+1]})
		}
	}
	if len(visible) == 0 {
		return render.Rect{}, false
	}

	s.Save()
	pl.style.apply(s)
	s.BeginPath()
	penDown := false
	segments := n - 1
	if pl.Closed {
		segments = n
	}
	for i := 0; i < segments; i++ {
		a, b := i, (i+1)%n
		if !finite(xy[2*a], xy[2*a+1]) || !finite(xy[2*b], xy[2*b+1]) {
			penDown = false
			continue
		}
		if !penDown {
			s.MoveTo(xy[2*a], xy[2*a+1])
			penDown = true
		}
		s.LineTo(xy[2*b], xy[2*b+1])
	}
	if pl.Closed && pl.style.FillColor != nil {
		s.Fill()
	}
	s.Stroke()
	s.Restore()

	return render.BoundingBox(visible), true
}

func finite(x, y float64) bool {
	return render.IsFinite(x) && render.IsFinite(y)
}

func formatFloats(vals ...float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

// Describe returns a one-line summary used in listings.
func Describe(s Shape) string {
	switch v := s.(type) {
	case *Circle:
		return fmt.Sprintf("circle at (%.6f, %.6f) r=%g deg", v.RA, v.Dec, v.Radius)
	case *Polyline:
		return fmt.Sprintf("%s with %d vertices", v.Kind(), len(v.Points))
	default:
		return string(s.Kind())
	}
}
