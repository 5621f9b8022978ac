package catalog

import (
	"fmt"
	"image"

	"github.com/leapstack-labs/skyoverlay/pkg/render"
	"github.com/leapstack-labs/skyoverlay/pkg/shape"
	"github.com/leapstack-labs/skyoverlay/pkg/stcs"
)

// Draw renders one frame of the catalog and returns the sources that ended
// up on screen, either as a stamp or through their footprint. Sources that
// cannot be projected are skipped.
func (c *Catalog) Draw(s render.Surface, p render.Projector, width, height float64) []*Source {
	if !c.showing {
		return nil
	}

	s.Save()
	defer s.Restore()
	s.SetStrokeColor(c.color)

	c.drawFootprints(s, p)
	drawn := c.drawSources(s, p, width, height)

	if c.displayLabel {
		s.SetFillColor(c.labelColor)
		s.SetFont(c.labelFont)
		for _, src := range drawn {
			c.drawLabel(s, src)
		}
	}
	return drawn
}

func (c *Catalog) drawFootprints(s render.Surface, p render.Projector) {
	if c.recomputeFootprints {
		c.footprints = c.computeFootprints()
		c.recomputeFootprints = false
	}

	for _, f := range c.footprints {
		col := c.color
		switch {
		case f.Source.selected:
			col = c.selectionColor
		case f.Source.hovered:
			col = c.hoverColor
		}
		f.draw(s, p, col, c.sourceSize)
		f.Source.tooSmallFootprint = f.tooSmall
	}
}

// computeFootprints runs the generator over every source. A failing
// generator only costs that source its footprint.
func (c *Catalog) computeFootprints() []*Footprint {
	for _, src := range c.sources {
		src.hasFootprint = false
		src.tooSmallFootprint = false
	}
	if c.shape.kind != ShapeGenerator || c.shape.generator == nil {
		return nil
	}

	var footprints []*Footprint
	for _, src := range c.sources {
		shapes, err := c.generate(src)
		if err != nil {
			c.diagnose(Diagnostic{Kind: DiagFootprint, RowIndex: src.RowIndex, Source: src, Err: err})
			continue
		}
		if len(shapes) == 0 {
			continue
		}
		f := NewFootprint(src, shapes...)
		if !c.showing {
			f.Hide()
		}
		src.hasFootprint = true
		footprints = append(footprints, f)
	}
	c.logger.Debug("computed footprints", "count", len(footprints))
	return footprints
}

func (c *Catalog) generate(src *Source) (shapes []shape.Shape, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("footprint generator panicked: %v", r)
		}
	}()
	return c.shape.generator(src)
}

func (c *Catalog) drawSources(s render.Surface, p render.Projector, width, height float64) []*Source {
	if len(c.sources) == 0 {
		return nil
	}

	xy := p.WorldToScreen(c.ra, c.dec)
	view := p.ViewParams()

	var drawn []*Source
	for i, src := range c.sources {
		if 2*i+1 >= len(xy) {
			break
		}
		x, y := xy[2*i], xy[2*i+1]
		if !render.IsFinite(x) || !render.IsFinite(y) {
			continue
		}
		if c.filter != nil && !c.filter(src) {
			continue
		}
		src.X, src.Y = x, y
		if c.drawSource(s, src, view, width, height) {
			drawn = append(drawn, src)
		}
	}
	return drawn
}

// drawSource picks the variant for src: custom drawer, marker icon,
// selected, hovered, then the default stamp. Sources already shown by a
// legible footprint get no stamp.
func (c *Catalog) drawSource(s render.Surface, src *Source, view render.ViewParams, width, height float64) bool {
	if !src.showing {
		return false
	}
	if src.X < 0 || src.X > width || src.Y < 0 || src.Y > height {
		return false
	}
	if src.hasFootprint && !src.tooSmallFootprint {
		return true
	}

	switch {
	case c.shape.kind == ShapeDrawer:
		if c.shape.drawer != nil {
			s.Save()
			c.shape.drawer(src, s, view)
			s.Restore()
		}
	case src.marker && src.useMarkerDefaultIcon:
		drawCentered(s, c.stamps.marker, src.X, src.Y)
	case src.selected:
		drawCentered(s, c.stamps.selected, src.X, src.Y)
	case src.hovered:
		drawCentered(s, c.stamps.hovered, src.X, src.Y)
	default:
		drawCentered(s, c.stamps.normal, src.X, src.Y)
	}
	return true
}

func drawCentered(s render.Surface, img image.Image, x, y float64) {
	if img == nil {
		return
	}
	b := img.Bounds()
	s.DrawImage(img, x-float64(b.Dx())/2, y-float64(b.Dy())/2)
}

func (c *Catalog) drawLabel(s render.Surface, src *Source) {
	if !src.showing {
		return
	}
	v, ok := src.Data[c.labelColumn]
	if !ok || v == nil {
		return
	}
	label := text(v)
	if label == "" {
		return
	}
	s.FillText(label, src.X, src.Y)
}

// RegionGenerator builds footprints from an STC-S string stored under key in
// the source data, as ObsCore s_region columns do.
func RegionGenerator(key string) Generator {
	return func(src *Source) ([]shape.Shape, error) {
		v, ok := src.Data[key]
		if !ok || v == nil {
			return nil, nil
		}
		return stcs.Parse(text(v)), nil
	}
}
