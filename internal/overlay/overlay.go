// Package overlay holds graphic overlays: ordered sets of sky shapes drawn
// with a shared colour, line width and dash pattern.
package overlay

import (
	"fmt"
	"image/color"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/leapstack-labs/skyoverlay/internal/palette"
	"github.com/leapstack-labs/skyoverlay/pkg/render"
	"github.com/leapstack-labs/skyoverlay/pkg/shape"
	"github.com/leapstack-labs/skyoverlay/pkg/stcs"
)

// Defaults for new overlays.
const (
	DefaultName      = "overlay"
	DefaultLineWidth = 3.0
	// selectionBrightness is how far selected items move towards white, in
	// percent.
	selectionBrightness = 50
)

// Item is a shape owned by an overlay.
type Item struct {
	Shape shape.Shape

	overlay  *Overlay
	showing  bool
	selected bool
}

// Overlay returns the owning overlay.
func (it *Item) Overlay() *Overlay { return it.overlay }

func (it *Item) IsShowing() bool  { return it.showing }
func (it *Item) IsSelected() bool { return it.selected }

func (it *Item) Show()     { it.set(&it.showing, true) }
func (it *Item) Hide()     { it.set(&it.showing, false) }
func (it *Item) Select()   { it.set(&it.selected, true) }
func (it *Item) Deselect() { it.set(&it.selected, false) }

func (it *Item) set(flag *bool, v bool) {
	if *flag == v {
		return
	}
	*flag = v
	if it.overlay != nil {
		it.overlay.reportChange()
	}
}

// Overlay is an ordered set of items. It is not safe for concurrent use.
type Overlay struct {
	ID   uuid.UUID
	Name string

	items     []*Item
	color     color.Color
	lineWidth float64
	lineDash  []float64
	showing   bool

	palette *palette.Palette
	logger  *slog.Logger
	redraw  render.RedrawRequester
}

// Option configures an Overlay.
type Option func(*Overlay)

// WithName sets the overlay name.
func WithName(name string) Option {
	return func(o *Overlay) { o.Name = name }
}

// WithColor sets the stroke colour.
func WithColor(col color.Color) Option {
	return func(o *Overlay) { o.color = col }
}

// WithLineWidth sets the stroke width in pixels.
func WithLineWidth(w float64) Option {
	return func(o *Overlay) {
		if w > 0 {
			o.lineWidth = w
		}
	}
}

// WithLineDash sets the dash pattern.
func WithLineDash(segments []float64) Option {
	return func(o *Overlay) { o.lineDash = segments }
}

// WithPalette picks the default colour from p instead of palette.Default.
func WithPalette(p *palette.Palette) Option {
	return func(o *Overlay) { o.palette = p }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Overlay) { o.logger = logger }
}

// WithRedrawRequester is notified whenever the overlay changes.
func WithRedrawRequester(r render.RedrawRequester) Option {
	return func(o *Overlay) { o.redraw = r }
}

// New creates an empty overlay.
func New(opts ...Option) *Overlay {
	o := &Overlay{
		ID:        uuid.New(),
		Name:      DefaultName,
		lineWidth: DefaultLineWidth,
		showing:   true,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.color == nil {
		p := o.palette
		if p == nil {
			p = palette.Default
		}
		o.color = p.Next()
	}
	o.logger = o.logger.With("overlay", o.Name)
	return o
}

// Add appends a shape and requests a redraw.
func (o *Overlay) Add(s shape.Shape) *Item {
	it := o.add(s)
	o.reportChange()
	return it
}

// AddFootprints appends shapes without requesting a redraw.
func (o *Overlay) AddFootprints(shapes ...shape.Shape) []*Item {
	items := make([]*Item, 0, len(shapes))
	for _, s := range shapes {
		items = append(items, o.add(s))
	}
	return items
}

// AddSTCS parses an STC-S string and adds the resulting shapes. Input that
// does not describe a supported shape is skipped.
func (o *Overlay) AddSTCS(text string) []*Item {
	shapes, notices := stcs.Inspect(text)
	for _, n := range notices {
		o.logger.Debug("skipped STC-S input", "notice", n.String())
	}
	items := o.AddFootprints(shapes...)
	if len(items) > 0 {
		o.reportChange()
	}
	return items
}

func (o *Overlay) add(s shape.Shape) *Item {
	it := &Item{Shape: s, overlay: o, showing: o.showing}
	o.items = append(o.items, it)
	return it
}

// Items returns the items in insertion order.
func (o *Overlay) Items() []*Item { return o.items }

// Item returns the item at idx, or nil when out of range.
func (o *Overlay) Item(idx int) *Item {
	if idx < 0 || idx >= len(o.items) {
		return nil
	}
	return o.items[idx]
}

// Len returns the number of items.
func (o *Overlay) Len() int { return len(o.items) }

// Remove drops it from the overlay.
func (o *Overlay) Remove(it *Item) {
	idx := slices.Index(o.items, it)
	if idx < 0 {
		return
	}
	o.items = slices.Delete(o.items, idx, idx+1)
	it.overlay = nil
	o.reportChange()
}

// RemoveAll drops every item.
func (o *Overlay) RemoveAll() {
	for _, it := range o.items {
		it.overlay = nil
	}
	o.items = nil
	o.reportChange()
}

// Show makes the overlay and its items visible.
func (o *Overlay) Show() {
	if o.showing {
		return
	}
	o.showing = true
	for _, it := range o.items {
		it.showing = true
	}
	o.reportChange()
}

// Hide hides the overlay and its items.
func (o *Overlay) Hide() {
	if !o.showing {
		return
	}
	o.showing = false
	for _, it := range o.items {
		it.showing = false
	}
	o.reportChange()
}

// Toggle flips visibility.
func (o *Overlay) Toggle() {
	if o.showing {
		o.Hide()
	} else {
		o.Show()
	}
}

// IsShowing reports whether the overlay is drawn.
func (o *Overlay) IsShowing() bool { return o.showing }

func (o *Overlay) Color() color.Color  { return o.color }
func (o *Overlay) LineWidth() float64  { return o.lineWidth }
func (o *Overlay) LineDash() []float64 { return o.lineDash }

func (o *Overlay) SetColor(col color.Color) {
	o.color = col
	o.reportChange()
}

func (o *Overlay) SetLineWidth(w float64) {
	o.lineWidth = w
	o.reportChange()
}

func (o *Overlay) SetLineDash(segments []float64) {
	o.lineDash = segments
	o.reportChange()
}

// SetRedrawRequester sets the view notified of changes.
func (o *Overlay) SetRedrawRequester(r render.RedrawRequester) { o.redraw = r }

// Draw strokes every visible item and returns those that projected.
// Selected items are drawn in a brighter colour.
func (o *Overlay) Draw(s render.Surface, p render.Projector) []*Item {
	if !o.showing {
		return nil
	}

	s.Save()
	defer s.Restore()
	s.SetStrokeColor(o.color)
	s.SetLineWidth(o.lineWidth)
	s.SetLineDash(o.lineDash)

	var drawn []*Item
	for _, it := range o.items {
		if !it.showing {
			continue
		}
		if _, ok := o.drawItem(s, p, it); ok {
			drawn = append(drawn, it)
		}
	}
	return drawn
}

// drawItem draws one item. A selected item is stroked in a brighter version
// of its own colour, which is the shape's colour when it has one.
func (o *Overlay) drawItem(s render.Surface, p render.Projector, it *Item) (render.Rect, bool) {
	if !it.selected {
		return it.Shape.Draw(s, p)
	}
	st := it.Shape.Style()
	base := st.Color
	if base == nil {
		base = o.color
	}
	highlighted := st
	highlighted.Color = palette.IncreaseBrightness(base, selectionBrightness)
	it.Shape.SetStyle(highlighted)
	defer it.Shape.SetStyle(st)
	return it.Shape.Draw(s, p)
}

func (o *Overlay) String() string {
	return fmt.Sprintf("%s (%d items)", o.Name, len(o.items))
}

func (o *Overlay) reportChange() {
	if o.redraw != nil {
		o.redraw.RequestRedraw()
	}
}
