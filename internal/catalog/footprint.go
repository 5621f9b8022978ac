package catalog

import (
	"image/color"

	"github.com/leapstack-labs/skyoverlay/pkg/render"
	"github.com/leapstack-labs/skyoverlay/pkg/shape"
)

const footprintLineWidth = 2

// Footprint is a group of shapes drawn for one source.
type Footprint struct {
	Shapes []shape.Shape
	Source *Source

	showing  bool
	tooSmall bool
	extent   render.Rect
	visible  bool
}

// NewFootprint binds shapes to src.
func NewFootprint(src *Source, shapes ...shape.Shape) *Footprint {
	return &Footprint{Shapes: shapes, Source: src, showing: true}
}

func (f *Footprint) Show()           { f.showing = true }
func (f *Footprint) Hide()           { f.showing = false }
func (f *Footprint) IsShowing() bool { return f.showing }

// IsTooSmall reports whether the last draw found the footprint below the
// legibility threshold, or could not project it at all.
func (f *Footprint) IsTooSmall() bool { return f.tooSmall }

// Extent returns the screen extent of the last draw.
func (f *Footprint) Extent() (render.Rect, bool) { return f.extent, f.visible }

// draw strokes every shape in col and records whether the union of their
// extents is smaller than minSize on both axes.
func (f *Footprint) draw(s render.Surface, p render.Projector, col color.Color, minSize float64) {
	f.visible = false
	f.extent = render.Rect{}
	if !f.showing || (f.Source != nil && !f.Source.showing) {
		f.tooSmall = false
		return
	}

	s.Save()
	s.SetStrokeColor(col)
	s.SetLineWidth(footprintLineWidth)
	for _, sh := range f.Shapes {
		ext, ok := sh.Draw(s, p)
		if !ok {
			continue
		}
		if f.visible {
			f.extent = f.extent.Union(ext)
		} else {
			f.extent, f.visible = ext, true
		}
	}
	s.Restore()

	f.tooSmall = !f.visible || f.extent.MaxSide() < minSize
}
