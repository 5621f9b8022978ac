package testutil

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/leapstack-labs/skyoverlay/pkg/render"
)

// Call is one recorded surface operation.
type Call struct {
	Op    string
	Args  []float64
	Text  string
	Img   image.Image
	Color color.Color
}

func (c Call) String() string {
	if c.Text != "" {
		return fmt.Sprintf("%s(%q %v)", c.Op, c.Text, c.Args)
	}
	return fmt.Sprintf("%s%v", c.Op, c.Args)
}

// RecordingSurface implements render.Surface by recording every call.
type RecordingSurface struct {
	Calls []Call

	StrokeColor color.Color
	FillColor   color.Color
	LineWidth   float64
	LineDash    []float64
	Font        render.Font

	depth int
}

var _ render.Surface = (*RecordingSurface)(nil)

// NewRecordingSurface returns an empty recorder.
func NewRecordingSurface() *RecordingSurface {
	return &RecordingSurface{LineWidth: 1, Font: render.DefaultFont}
}

func (s *RecordingSurface) record(op string, args ...float64) {
	s.Calls = append(s.Calls, Call{Op: op, Args: args})
}

func (s *RecordingSurface) Save()    { s.depth++; s.record("Save") }
func (s *RecordingSurface) Restore() { s.depth--; s.record("Restore") }

func (s *RecordingSurface) SetStrokeColor(c color.Color) {
	s.StrokeColor = c
	s.Calls = append(s.Calls, Call{Op: "SetStrokeColor", Color: c})
}

func (s *RecordingSurface) SetFillColor(c color.Color) {
	s.FillColor = c
	s.Calls = append(s.Calls, Call{Op: "SetFillColor", Color: c})
}

func (s *RecordingSurface) SetLineWidth(w float64)  { s.LineWidth = w; s.record("SetLineWidth", w) }
func (s *RecordingSurface) SetLineDash(d []float64) { s.LineDash = d; s.record("SetLineDash", d...) }
func (s *RecordingSurface) SetFont(f render.Font)   { s.Font = f; s.record("SetFont", f.Size) }

func (s *RecordingSurface) BeginPath()          { s.record("BeginPath") }
func (s *RecordingSurface) MoveTo(x, y float64) { s.record("MoveTo", x, y) }
func (s *RecordingSurface) LineTo(x, y float64) { s.record("LineTo", x, y) }
func (s *RecordingSurface) ClosePath()          { s.record("ClosePath") }
func (s *RecordingSurface) Stroke()             { s.record("Stroke") }
func (s *RecordingSurface) Fill()               { s.record("Fill") }

func (s *RecordingSurface) Arc(cx, cy, r, start, end float64) {
	s.record("Arc", cx, cy, r, start, end)
}

func (s *RecordingSurface) DrawImage(img image.Image, x, y float64) {
	s.Calls = append(s.Calls, Call{Op: "DrawImage", Args: []float64{x, y}, Img: img})
}

func (s *RecordingSurface) FillText(text string, x, y float64) {
	s.Calls = append(s.Calls, Call{Op: "FillText", Args: []float64{x, y}, Text: text})
}

// Ops returns the recorded operations with the given name.
func (s *RecordingSurface) Ops(op string) []Call {
	var out []Call
	for _, c := range s.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Balanced reports whether every Save was matched by a Restore.
func (s *RecordingSurface) Balanced() bool { return s.depth == 0 }

// Reset clears the recording.
func (s *RecordingSurface) Reset() {
	s.Calls = nil
	s.depth = 0
}

// FlatProjector maps ra/dec linearly to the screen: x = (ra-OriginRA)*Scale,
// y = (OriginDec-dec)*Scale. Positions inside Hidden, or with dec outside
// [-90, 90], do not project.
type FlatProjector struct {
	OriginRA, OriginDec float64
	Scale               float64
	Width, Height       int
	Hidden              func(ra, dec float64) bool

	// Calls counts WorldToScreen invocations.
	Calls int
}

var _ render.Projector = (*FlatProjector)(nil)

// NewFlatProjector returns a projector with one pixel per degree.
func NewFlatProjector() *FlatProjector {
	return &FlatProjector{Scale: 1, Width: 800, Height: 600}
}

func (p *FlatProjector) WorldToScreen(ra, dec []float64) []float64 {
	p.Calls++
	out := make([]float64, 2*len(ra))
	for i := range ra {
		if dec[i] < -90 || dec[i] > 90 || (p.Hidden != nil && p.Hidden(ra[i], dec[i])) {
			out[2*i], out[2*i+1] = math.NaN(), math.NaN()
			continue
		}
		out[2*i] = (ra[i] - p.OriginRA) * p.Scale
		out[2*i+1] = (p.OriginDec - dec[i]) * p.Scale
	}
	return out
}

func (p *FlatProjector) ScreenToWorld(x, y float64) (float64, float64, bool) {
	return x/p.Scale + p.OriginRA, p.OriginDec - y/p.Scale, true
}

func (p *FlatProjector) ViewParams() render.ViewParams {
	return render.ViewParams{
		CenterRA:   p.OriginRA,
		CenterDec:  p.OriginDec,
		FoV:        float64(p.Width) / p.Scale,
		Width:      p.Width,
		Height:     p.Height,
		Projection: "flat",
	}
}

// Redraws counts redraw requests.
type Redraws struct{ N int }

func (r *Redraws) RequestRedraw() { r.N++ }
