// Package raster implements render.Surface on an in-memory RGBA image.
// Paths are filled with the x/image vector rasterizer; strokes are expanded
// into polygons first. Text uses the fixed 7x13 bitmap face.
package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/leapstack-labs/skyoverlay/pkg/render"
)

// guard bounds how far outside the canvas a path coordinate may lie before
// it is clamped, in multiples of the canvas size.
const guard = 4

// state is the part of the canvas saved by Save.
type state struct {
	stroke    color.Color
	fill      color.Color
	lineWidth float64
	dash      []float64
	font      render.Font
}

type subpath struct {
	pts    []render.Point
	closed bool
}

// Canvas is a render.Surface backed by an *image.RGBA.
type Canvas struct {
	img   *image.RGBA
	st    state
	stack []state
	path  []subpath
	z     *vector.Rasterizer
}

var _ render.Surface = (*Canvas)(nil)

// New creates a transparent canvas of the given size.
func New(width, height int) *Canvas {
	return NewFromImage(image.NewRGBA(image.Rect(0, 0, width, height)))
}

// NewFromImage draws onto an existing image.
func NewFromImage(img *image.RGBA) *Canvas {
	b := img.Bounds()
	return &Canvas{
		img: img,
		st: state{
			stroke:    color.Black,
			fill:      color.Black,
			lineWidth: 1,
			font:      render.DefaultFont,
		},
		z: vector.NewRasterizer(b.Dx(), b.Dy()),
	}
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Bounds().Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Bounds().Dy() }

// Clear fills the whole canvas with col.
func (c *Canvas) Clear(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *Canvas) Save() {
	saved := c.st
	saved.dash = append([]float64(nil), c.st.dash...)
	c.stack = append(c.stack, saved)
}

func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.st = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *Canvas) SetStrokeColor(col color.Color) { c.st.stroke = col }
func (c *Canvas) SetFillColor(col color.Color)   { c.st.fill = col }
func (c *Canvas) SetFont(f render.Font)          { c.st.font = f }

func (c *Canvas) SetLineWidth(w float64) {
	if w > 0 && !math.IsInf(w, 0) {
		c.st.lineWidth = w
	}
}

// SetLineDash sets the dash pattern. An odd-length pattern is repeated, and
// an empty or all-zero pattern draws solid lines.
func (c *Canvas) SetLineDash(segments []float64) {
	total := 0.0
	for _, s := range segments {
		if s < 0 || !render.IsFinite(s) {
			return
		}
		total += s
	}
	if total == 0 {
		c.st.dash = nil
		return
	}
	d := append([]float64(nil), segments...)
	if len(d)%2 == 1 {
		d = append(d, segments...)
	}
	c.st.dash = d
}

func (c *Canvas) BeginPath() { c.path = c.path[:0] }

func (c *Canvas) MoveTo(x, y float64) {
	c.path = append(c.path, subpath{pts: []render.Point{{X: x, Y: y}}})
}

func (c *Canvas) LineTo(x, y float64) {
	if len(c.path) == 0 {
		c.MoveTo(x, y)
		return
	}
	sp := &c.path[len(c.path)-1]
	sp.pts = append(sp.pts, render.Point{X: x, Y: y})
}

func (c *Canvas) ClosePath() {
	if len(c.path) == 0 {
		return
	}
	last := c.path[len(c.path)-1]
	c.path[len(c.path)-1].closed = true
	// A new subpath starts where the closed one began.
	c.path = append(c.path, subpath{pts: []render.Point{last.pts[0]}})
}

// Arc adds a clockwise (in screen space) circular arc. The arc is joined to
// the current point by a straight line, as on an HTML canvas.
func (c *Canvas) Arc(cx, cy, r, start, end float64) {
	if r < 0 || !render.IsFinite(r) {
		return
	}
	sweep := end - start
	if sweep > 2*math.Pi {
		sweep = 2 * math.Pi
	}
	n := int(math.Ceil(math.Abs(sweep) * math.Max(r, 1) / 2))
	if n < 8 {
		n = 8
	}
	for i := 0; i <= n; i++ {
		a := start + sweep*float64(i)/float64(n)
		x, y := cx+r*math.Cos(a), cy+r*math.Sin(a)
		if i == 0 && len(c.path) == 0 {
			c.MoveTo(x, y)
			continue
		}
		c.LineTo(x, y)
	}
}

// Fill fills the current path with the nonzero rule.
func (c *Canvas) Fill() {
	c.resetRasterizer()
	for _, sp := range c.path {
		if len(sp.pts) < 3 {
			continue
		}
		c.polygon(sp.pts, false)
	}
	c.paint(c.st.fill)
}

// Stroke outlines the current path using the current line width and dash.
func (c *Canvas) Stroke() {
	c.resetRasterizer()
	hw := c.st.lineWidth / 2
	for _, sp := range c.path {
		pts := sp.pts
		if sp.closed && len(pts) > 1 {
			pts = append(append([]render.Point(nil), pts...), pts[0])
		}
		for _, run := range dashRuns(pts, c.st.dash) {
			c.strokeRun(run, hw)
		}
	}
	c.paint(c.st.stroke)
}

// strokeRun adds one quad per segment and a round join at every vertex.
func (c *Canvas) strokeRun(pts []render.Point, hw float64) {
	if len(pts) < 2 {
		return
	}
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*hw, dx/l*hw
		c.polygon([]render.Point{
			{X: a.X + nx, Y: a.Y + ny},
			{X: b.X + nx, Y: b.Y + ny},
			{X: b.X - nx, Y: b.Y - ny},
			{X: a.X - nx, Y: a.Y - ny},
		}, true)
	}
	if hw < 1 {
		return
	}
	for _, p := range pts {
		c.polygon(disc(p, hw), true)
	}
}

// polygon feeds a closed polygon to the rasterizer. Stroke pieces are wound
// consistently so overlapping pieces do not cancel out.
func (c *Canvas) polygon(pts []render.Point, normalize bool) {
	if normalize && signedArea(pts) < 0 {
		rev := make([]render.Point, len(pts))
		for i, p := range pts {
			rev[len(pts)-1-i] = p
		}
		pts = rev
	}
	x, y := c.clamp(pts[0])
	c.z.MoveTo(x, y)
	for _, p := range pts[1:] {
		x, y = c.clamp(p)
		c.z.LineTo(x, y)
	}
	c.z.ClosePath()
}

func (c *Canvas) clamp(p render.Point) (float32, float32) {
	w, h := float64(c.Width()), float64(c.Height())
	return float32(clampf(p.X, -guard*w, (guard+1)*w)), float32(clampf(p.Y, -guard*h, (guard+1)*h))
}

func (c *Canvas) resetRasterizer() {
	c.z.Reset(c.Width(), c.Height())
	c.z.DrawOp = draw.Over
}

func (c *Canvas) paint(col color.Color) {
	if col == nil {
		return
	}
	c.z.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

// DrawImage composites img with its top-left corner at (x, y).
func (c *Canvas) DrawImage(img image.Image, x, y float64) {
	if img == nil || !render.IsFinite(x) || !render.IsFinite(y) {
		return
	}
	b := img.Bounds()
	at := image.Pt(int(math.Round(x)), int(math.Round(y)))
	draw.Draw(c.img, image.Rectangle{Min: at, Max: at.Add(b.Size())}, img, b.Min, draw.Over)
}

// FillText draws text with its baseline starting at (x, y) in the fill
// colour. Only the built-in bitmap face is available, so the font family and
// size are ignored.
func (c *Canvas) FillText(text string, x, y float64) {
	if !render.IsFinite(x) || !render.IsFinite(y) {
		return
	}
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(c.st.fill),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(math.Round(x)), int(math.Round(y))),
	}
	d.DrawString(text)
}

// MeasureText returns the advance width of text in pixels.
func MeasureText(text string) float64 {
	return float64(font.MeasureString(basicfont.Face7x13, text).Round())
}

func disc(center render.Point, r float64) []render.Point {
	n := int(math.Max(8, math.Ceil(r*2)))
	pts := make([]render.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = render.Point{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)}
	}
	return pts
}

func signedArea(pts []render.Point) float64 {
	area := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return area / 2
}

func clampf(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
