// Package catalog holds point-source catalogs: the sources built from a
// table, their visual style and the footprints derived from them, and the
// per-frame drawing of all of it onto a render.Surface.
//
// A Catalog is not safe for concurrent use.
package catalog

import (
	"fmt"
	"image/color"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/leapstack-labs/skyoverlay/internal/palette"
	"github.com/leapstack-labs/skyoverlay/pkg/field"
	"github.com/leapstack-labs/skyoverlay/pkg/render"
	"github.com/leapstack-labs/skyoverlay/pkg/table"
)

// DiagnosticKind classifies a skipped row or source.
type DiagnosticKind string

// Diagnostic kinds.
const (
	DiagCoordinate DiagnosticKind = "coordinate"
	DiagFootprint  DiagnosticKind = "footprint"
)

// Diagnostic reports input that was skipped without failing the operation.
type Diagnostic struct {
	Kind     DiagnosticKind
	RowIndex int
	Source   *Source
	Err      error
}

// DiagnosticFunc receives diagnostics.
type DiagnosticFunc func(Diagnostic)

// Filter decides whether a source is drawn.
type Filter func(src *Source) bool

// Catalog is an ordered set of sources drawn with a common style.
type Catalog struct {
	ID   uuid.UUID
	Name string

	sources []*Source
	ra      []float64
	dec     []float64
	fields  *field.Mapping

	raField  string
	decField string
	limit    int

	color          color.Color
	selectionColor color.Color
	hoverColor     color.Color
	hoverColorSet  bool
	sourceSize     float64
	shape          Shape
	shapeSet       bool
	stamps         stamps

	filter Filter

	labelColumn  string
	labelColor   color.Color
	labelFont    render.Font
	displayLabel bool

	footprints          []*Footprint
	recomputeFootprints bool

	showing bool

	palette *palette.Palette
	logger  *slog.Logger
	diag    DiagnosticFunc
	redraw  render.RedrawRequester
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithName sets the catalog name.
func WithName(name string) Option {
	return func(c *Catalog) { c.Name = name }
}

// WithColor sets the stamp and footprint colour.
func WithColor(col color.Color) Option {
	return func(c *Catalog) { c.color = col }
}

// WithSelectionColor sets the colour of selected sources.
func WithSelectionColor(col color.Color) Option {
	return func(c *Catalog) { c.selectionColor = col }
}

// WithHoverColor sets the colour of hovered sources. It defaults to the
// catalog colour.
func WithHoverColor(col color.Color) Option {
	return func(c *Catalog) {
		c.hoverColor = col
		c.hoverColorSet = col != nil
	}
}

// WithSourceSize sets the stamp size in pixels.
func WithSourceSize(size float64) Option {
	return func(c *Catalog) {
		if size > 0 {
			c.sourceSize = size
		}
	}
}

// WithShape sets how sources are drawn.
func WithShape(sh Shape) Option {
	return func(c *Catalog) {
		c.shape = sh
		c.shapeSet = true
	}
}

// WithLimit caps the number of sources taken from a table.
func WithLimit(n int) Option {
	return func(c *Catalog) { c.limit = n }
}

// WithFields sets the ra/dec column hints used when resolving fields.
func WithFields(raField, decField string) Option {
	return func(c *Catalog) { c.raField, c.decField = raField, decField }
}

// WithFilter draws only the sources for which f returns true.
func WithFilter(f Filter) Option {
	return func(c *Catalog) { c.filter = f }
}

// WithLabels draws the value of column next to every drawn source.
func WithLabels(column string, col color.Color, font render.Font) Option {
	return func(c *Catalog) {
		c.labelColumn = column
		c.labelColor = col
		c.labelFont = font
	}
}

// WithPalette picks the default colour from p instead of palette.Default.
func WithPalette(p *palette.Palette) Option {
	return func(c *Catalog) { c.palette = p }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) { c.logger = logger }
}

// WithDiagnostics receives rows and sources skipped during loading and
// footprint computation.
func WithDiagnostics(fn DiagnosticFunc) Option {
	return func(c *Catalog) { c.diag = fn }
}

// WithRedrawRequester is notified whenever the catalog changes.
func WithRedrawRequester(r render.RedrawRequester) Option {
	return func(c *Catalog) { c.redraw = r }
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		ID:             uuid.New(),
		Name:           DefaultName,
		sourceSize:     DefaultSourceSize,
		selectionColor: DefaultSelectionColor,
		shape:          NamedShape(MarkerSquare),
		labelFont:      render.DefaultFont,
		showing:        true,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.color == nil {
		p := c.palette
		if p == nil {
			p = palette.Default
		}
		c.color = p.Next()
	}
	if c.labelColor == nil {
		c.labelColor = c.color
	}
	c.displayLabel = c.labelColumn != ""
	c.logger = c.logger.With("catalog", c.Name)

	c.UpdateShape(StyleOptions{})
	return c
}

// UpdateShape merges opts over the current style and rebuilds the stamps.
func (c *Catalog) UpdateShape(opts StyleOptions) {
	if opts.Color != nil {
		c.color = opts.Color
	}
	if opts.SelectionColor != nil {
		c.selectionColor = opts.SelectionColor
	}
	if opts.HoverColor != nil {
		c.hoverColor = opts.HoverColor
		c.hoverColorSet = true
	}
	if opts.SourceSize > 0 {
		c.sourceSize = opts.SourceSize
	}
	if opts.Shape != nil {
		if opts.Shape.kind != c.shape.kind || opts.Shape.kind == ShapeGenerator {
			c.recomputeFootprints = true
		}
		c.shape = *opts.Shape
		c.shapeSet = true
	}
	if !c.hoverColorSet {
		c.hoverColor = c.color
	}

	if c.shape.kind == ShapeImage && c.shape.image != nil {
		c.sourceSize = float64(c.shape.image.Bounds().Dx())
	}
	c.stamps = buildStamps(c.shape, c.sourceSize, c.color, c.selectionColor, c.hoverColor)
	c.reportChange()
}

// SetColor changes the catalog colour.
func (c *Catalog) SetColor(col color.Color) { c.UpdateShape(StyleOptions{Color: col}) }

// SetSelectionColor changes the colour of selected sources.
func (c *Catalog) SetSelectionColor(col color.Color) {
	c.UpdateShape(StyleOptions{SelectionColor: col})
}

// SetHoverColor changes the colour of hovered sources.
func (c *Catalog) SetHoverColor(col color.Color) { c.UpdateShape(StyleOptions{HoverColor: col}) }

// SetSourceSize changes the stamp size. Image shapes ignore it.
func (c *Catalog) SetSourceSize(size float64) { c.UpdateShape(StyleOptions{SourceSize: size}) }

// SetShape changes how sources are drawn.
func (c *Catalog) SetShape(sh Shape) { c.UpdateShape(StyleOptions{Shape: &sh}) }

// SetFilter replaces the draw filter. nil draws every source.
func (c *Catalog) SetFilter(f Filter) {
	c.filter = f
	c.reportChange()
}

// SetRedrawRequester sets the view notified of changes.
func (c *Catalog) SetRedrawRequester(r render.RedrawRequester) { c.redraw = r }

func (c *Catalog) Color() color.Color          { return c.color }
func (c *Catalog) SelectionColor() color.Color { return c.selectionColor }
func (c *Catalog) HoverColor() color.Color     { return c.hoverColor }
func (c *Catalog) SourceSize() float64         { return c.sourceSize }
func (c *Catalog) Shape() Shape                { return c.shape }

// Fields returns the field mapping, or nil before any source was added.
func (c *Catalog) Fields() *field.Mapping { return c.fields }

// SetFields replaces the field mapping.
func (c *Catalog) SetFields(m *field.Mapping) { c.fields = m }

// AddSources appends sources. When the catalog has no fields yet they are
// derived from the keys of the first source's data.
func (c *Catalog) AddSources(sources ...*Source) {
	if len(sources) == 0 {
		return
	}
	if c.fields == nil {
		c.fields = field.Parse(dataColumns(sources[0]), c.raField, c.decField)
	}

	c.sources = append(c.sources, sources...)
	for _, s := range sources {
		s.catalog = c
		c.ra = append(c.ra, s.RA)
		c.dec = append(c.dec, s.Dec)
	}
	c.recomputeFootprints = true
	c.logger.Debug("added sources", "count", len(sources), "total", len(c.sources))
	c.reportChange()
}

// dataColumns lists a source's data keys in a stable order.
func dataColumns(s *Source) []field.Column {
	keys := make([]string, 0, len(s.Data))
	for k := range s.Data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	cols := make([]field.Column, len(keys))
	for i, k := range keys {
		cols[i] = field.Column{Name: k}
	}
	return cols
}

// AddSourcesAsArray builds sources from bare column names and rows. The
// coordinate columns are resolved with the catalog's field hints.
func (c *Catalog) AddSourcesAsArray(columnNames []string, rows [][]any) {
	c.AddTable(table.FromArray(c.Name, columnNames, rows))
}

// AddTable resolves the table's coordinate columns, builds its sources and
// adds them. ObsCore tables are recognised when no field hint is set; their
// s_region column becomes the footprint unless a shape was chosen
// explicitly.
func (c *Catalog) AddTable(tbl *table.Table) {
	m := field.ParseAuto(tbl.Columns, c.raField, c.decField)
	c.fields = m

	if region, ok := m.Region(); ok && !c.shapeSet {
		c.shape = GeneratorShape(RegionGenerator(region.Name))
		c.UpdateShape(StyleOptions{})
		c.recomputeFootprints = true
	}

	sources := BuildSources(tbl, m, c.limit, c.diagnose)
	c.logger.Debug("built sources from table", "table", tbl.Name, "rows", tbl.Len(), "sources", len(sources))
	c.AddSources(sources...)
}

// Sources returns a copy of the sources in insertion order, so callers may
// Remove while ranging over it.
func (c *Catalog) Sources() []*Source { return slices.Clone(c.sources) }

// Source returns the source at idx, or nil when out of range.
func (c *Catalog) Source(idx int) *Source {
	if idx < 0 || idx >= len(c.sources) {
		return nil
	}
	return c.sources[idx]
}

// Len returns the number of sources.
func (c *Catalog) Len() int { return len(c.sources) }

// Positions returns copies of the parallel ra and dec arrays.
func (c *Catalog) Positions() (ra, dec []float64) {
	return slices.Clone(c.ra), slices.Clone(c.dec)
}

// Footprints returns the footprints computed by the last draw.
func (c *Catalog) Footprints() []*Footprint { return c.footprints }

// SelectAll selects every source.
func (c *Catalog) SelectAll() {
	for _, s := range c.sources {
		s.Select()
	}
}

// DeselectAll deselects every source.
func (c *Catalog) DeselectAll() {
	for _, s := range c.sources {
		s.Deselect()
	}
}

// Remove deselects src and removes it. Unknown sources are ignored.
func (c *Catalog) Remove(src *Source) {
	idx := slices.Index(c.sources, src)
	if idx < 0 {
		return
	}
	src.Deselect()
	src.catalog = nil

	c.sources = slices.Delete(c.sources, idx, idx+1)
	c.ra = slices.Delete(c.ra, idx, idx+1)
	c.dec = slices.Delete(c.dec, idx, idx+1)

	c.recomputeFootprints = true
	c.reportChange()
}

// RemoveAll drops every source and footprint.
func (c *Catalog) RemoveAll() {
	for _, s := range c.sources {
		s.catalog = nil
	}
	c.sources = nil
	c.ra = nil
	c.dec = nil
	c.footprints = nil
	c.recomputeFootprints = false
	c.reportChange()
}

// Clear is RemoveAll.
func (c *Catalog) Clear() { c.RemoveAll() }

// Show makes the catalog and its footprints visible.
func (c *Catalog) Show() {
	if c.showing {
		return
	}
	c.showing = true
	for _, f := range c.footprints {
		f.Show()
	}
	c.reportChange()
}

// Hide hides the catalog and its footprints.
func (c *Catalog) Hide() {
	if !c.showing {
		return
	}
	c.showing = false
	for _, f := range c.footprints {
		f.Hide()
	}
	c.reportChange()
}

// IsShowing reports whether the catalog is drawn.
func (c *Catalog) IsShowing() bool { return c.showing }

func (c *Catalog) String() string {
	return fmt.Sprintf("%s (%d sources, %s)", c.Name, len(c.sources), c.shape)
}

func (c *Catalog) reportChange() {
	if c.redraw != nil {
		c.redraw.RequestRedraw()
	}
}

func (c *Catalog) diagnose(d Diagnostic) {
	c.logger.Debug("skipped", "kind", d.Kind, "row", d.RowIndex, "error", d.Err)
	if c.diag != nil {
		c.diag(d)
	}
}
