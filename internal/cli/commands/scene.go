package commands

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/skyoverlay/internal/adapter"
	"github.com/leapstack-labs/skyoverlay/internal/catalog"
	"github.com/leapstack-labs/skyoverlay/internal/cli/config"
	"github.com/leapstack-labs/skyoverlay/internal/expr"
	"github.com/leapstack-labs/skyoverlay/internal/overlay"
	"github.com/leapstack-labs/skyoverlay/internal/palette"
	"github.com/leapstack-labs/skyoverlay/internal/projection"
	"github.com/leapstack-labs/skyoverlay/internal/raster"
	"github.com/leapstack-labs/skyoverlay/pkg/coord"
	"github.com/leapstack-labs/skyoverlay/pkg/render"
	"github.com/leapstack-labs/skyoverlay/pkg/table"
	"github.com/leapstack-labs/skyoverlay/pkg/votable"
	"golang.org/x/sync/errgroup"
)

// Scene is everything one configuration draws: a projector, the catalog
// layers and the overlays, in configuration order.
type Scene struct {
	View       render.ViewParams
	Projector  *projection.Projector
	Background color.Color
	Catalogs   []*catalog.Catalog
	Overlays   []*overlay.Overlay
}

// LayerStats summarises one drawn layer.
type LayerStats struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Total  int    `json:"total"`
	Drawn  int    `json:"drawn"`
	Hidden bool   `json:"hidden,omitempty"`
}

// SceneOptions tunes scene construction.
type SceneOptions struct {
	Logger *slog.Logger
	// Client fetches remote VOTables. nil uses a client with votable.DefaultTimeout.
	Client *http.Client
	// Redraw is attached to every layer.
	Redraw render.RedrawRequester
}

// BuildScene loads every catalog input concurrently and assembles the layers
// described by cfg.
func BuildScene(ctx context.Context, cfg *config.Config, opts SceneOptions) (*Scene, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	view, err := viewParams(cfg.View)
	if err != nil {
		return nil, err
	}
	proj, err := projection.New(view)
	if err != nil {
		return nil, err
	}
	bg, err := palette.Parse(cfg.View.Background)
	if err != nil {
		return nil, fmt.Errorf("view.background: %w", err)
	}

	tables, err := loadTables(ctx, cfg.Catalogs, opts.Client, logger)
	if err != nil {
		return nil, err
	}

	pal := palette.Default
	if len(cfg.Palette) > 0 {
		if pal, err = palette.New(cfg.Palette...); err != nil {
			return nil, fmt.Errorf("palette: %w", err)
		}
	} else {
		pal.Reset()
	}

	scene := &Scene{View: view, Projector: proj, Background: bg}
	for i, cc := range cfg.Catalogs {
		c, err := buildCatalog(cc, tables[i], pal, logger, opts.Redraw)
		if err != nil {
			return nil, fmt.Errorf("catalog %q: %w", cc.Name, err)
		}
		scene.Catalogs = append(scene.Catalogs, c)
	}
	for _, oc := range cfg.Overlays {
		o, err := buildOverlay(oc, pal, logger, opts.Redraw)
		if err != nil {
			return nil, fmt.Errorf("overlay %q: %w", oc.Name, err)
		}
		scene.Overlays = append(scene.Overlays, o)
	}
	return scene, nil
}

// Draw clears s to the background and draws every layer: catalogs first,
// then overlays.
func (sc *Scene) Draw(canvas *raster.Canvas) []LayerStats {
	canvas.Clear(sc.Background)
	w, h := float64(sc.View.Width), float64(sc.View.Height)

	stats := make([]LayerStats, 0, len(sc.Catalogs)+len(sc.Overlays))
	for _, c := range sc.Catalogs {
		drawn := c.Draw(canvas, sc.Projector, w, h)
		stats = append(stats, LayerStats{
			Kind: "catalog", Name: c.Name, Total: c.Len(), Drawn: len(drawn), Hidden: !c.IsShowing(),
		})
	}
	for _, o := range sc.Overlays {
		drawn := o.Draw(canvas, sc.Projector)
		stats = append(stats, LayerStats{
			Kind: "overlay", Name: o.Name, Total: o.Len(), Drawn: len(drawn), Hidden: !o.IsShowing(),
		})
	}
	return stats
}

// Render draws the scene onto a new canvas of the view's size.
func (sc *Scene) Render() (*raster.Canvas, []LayerStats) {
	canvas := raster.New(sc.View.Width, sc.View.Height)
	return canvas, sc.Draw(canvas)
}

// Catalog returns the catalog layer named name, or nil.
func (sc *Scene) Catalog(name string) *catalog.Catalog {
	for _, c := range sc.Catalogs {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func viewParams(vc config.ViewConfig) (render.ViewParams, error) {
	ra, dec, err := coord.Parse(vc.Center)
	if err != nil {
		return render.ViewParams{}, fmt.Errorf("view.center: %w", err)
	}
	return render.ViewParams{
		CenterRA:   ra,
		CenterDec:  dec,
		FoV:        vc.FoV,
		Width:      vc.Width,
		Height:     vc.Height,
		Projection: vc.Projection,
	}, nil
}

// loadTables reads each catalog's input. Results keep the catalog order.
func loadTables(ctx context.Context, catalogs []config.CatalogConfig, client *http.Client, logger *slog.Logger) ([][]*table.Table, error) {
	tables := make([][]*table.Table, len(catalogs))

	g, gctx := errgroup.WithContext(ctx)
	for i, cc := range catalogs {
		g.Go(func() error {
			t, err := loadInput(gctx, cc, client, logger)
			if err != nil {
				return fmt.Errorf("catalog %q: %w", cc.Name, err)
			}
			logger.Debug("loaded catalog input", "catalog", cc.Name, "type", cc.Input.Type, "tables", len(t))
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

func loadInput(ctx context.Context, cc config.CatalogConfig, client *http.Client, logger *slog.Logger) ([]*table.Table, error) {
	in := cc.Input
	switch in.Type {
	case config.InputVOTable:
		return votable.Load(ctx, in.Path, client)

	case config.InputCSV:
		acfg := in.Adapter
		if acfg.Type == "" {
			acfg.Type = "duckdb"
		}
		name := in.Table
		if name == "" {
			name = cc.Name
		}
		t, err := adapter.ReadTable(ctx, acfg, adapter.Request{Name: name, Query: in.Query, CSV: in.Path}, logger)
		if err != nil {
			return nil, err
		}
		return []*table.Table{t}, nil

	case config.InputSQL:
		t, err := adapter.ReadTable(ctx, in.Adapter, adapter.Request{Name: in.Table, Query: in.Query}, logger)
		if err != nil {
			return nil, err
		}
		return []*table.Table{t}, nil

	case config.InputInline:
		return []*table.Table{table.FromArray(cc.Name, in.Columns, in.Rows)}, nil

	default:
		return nil, fmt.Errorf("unknown input type %q", in.Type)
	}
}

func buildCatalog(cc config.CatalogConfig, tables []*table.Table, pal *palette.Palette, logger *slog.Logger, redraw render.RedrawRequester) (*catalog.Catalog, error) {
	opts := []catalog.Option{
		catalog.WithName(cc.Name),
		catalog.WithPalette(pal),
		catalog.WithLogger(logger),
		catalog.WithFields(cc.RAField, cc.DecField),
		catalog.WithLimit(cc.Limit),
		catalog.WithDiagnostics(func(d catalog.Diagnostic) {
			logger.Warn("skipped input", "catalog", cc.Name, "kind", d.Kind, "row", d.RowIndex, "error", d.Err)
		}),
	}
	if redraw != nil {
		opts = append(opts, catalog.WithRedrawRequester(redraw))
	}
	if cc.SourceSize > 0 {
		opts = append(opts, catalog.WithSourceSize(cc.SourceSize))
	}

	colors := []struct {
		key   string
		value string
		apply func(color.Color) catalog.Option
	}{
		{"color", cc.Color, catalog.WithColor},
		{"selection_color", cc.SelectionColor, catalog.WithSelectionColor},
		{"hover_color", cc.HoverColor, catalog.WithHoverColor},
	}
	for _, c := range colors {
		if c.value == "" {
			continue
		}
		col, err := palette.Parse(c.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.key, err)
		}
		opts = append(opts, c.apply(col))
	}

	switch {
	case cc.Footprint != "":
		prog, err := expr.Compile(cc.Name+".footprint", cc.Footprint)
		if err != nil {
			return nil, err
		}
		opts = append(opts, catalog.WithShape(catalog.GeneratorShape(prog.Generator())))
	case cc.Shape != "":
		m, err := catalog.ParseMarker(cc.Shape)
		if err != nil {
			return nil, fmt.Errorf("shape: %w", err)
		}
		opts = append(opts, catalog.WithShape(catalog.NamedShape(m)))
	}

	if cc.Filter != "" {
		prog, err := expr.Compile(cc.Name+".filter", cc.Filter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, catalog.WithFilter(prog.Filter(logger)))
	}

	if cc.LabelColumn != "" {
		var labelColor color.Color
		if cc.LabelColor != "" {
			col, err := palette.Parse(cc.LabelColor)
			if err != nil {
				return nil, fmt.Errorf("label_color: %w", err)
			}
			labelColor = col
		}
		font := render.DefaultFont
		if cc.LabelSize > 0 {
			font.Size = cc.LabelSize
		}
		opts = append(opts, catalog.WithLabels(cc.LabelColumn, labelColor, font))
	}

	c := catalog.New(opts...)
	for _, t := range tables {
		c.AddTable(t)
	}
	if cc.Hidden {
		c.Hide()
	}
	return c, nil
}

func buildOverlay(oc config.OverlayConfig, pal *palette.Palette, logger *slog.Logger, redraw render.RedrawRequester) (*overlay.Overlay, error) {
	opts := []overlay.Option{
		overlay.WithName(oc.Name),
		overlay.WithPalette(pal),
		overlay.WithLogger(logger),
	}
	if redraw != nil {
		opts = append(opts, overlay.WithRedrawRequester(redraw))
	}
	if oc.Color != "" {
		col, err := palette.Parse(oc.Color)
		if err != nil {
			return nil, fmt.Errorf("color: %w", err)
		}
		opts = append(opts, overlay.WithColor(col))
	}
	if oc.LineWidth > 0 {
		opts = append(opts, overlay.WithLineWidth(oc.LineWidth))
	}
	if len(oc.LineDash) > 0 {
		opts = append(opts, overlay.WithLineDash(oc.LineDash))
	}

	o := overlay.New(opts...)
	for _, text := range oc.STCS {
		if items := o.AddSTCS(text); len(items) == 0 {
			logger.Warn("no shapes in STC-S string", "overlay", oc.Name, "stcs", text)
		}
	}
	if oc.Hidden {
		o.Hide()
	}
	return o, nil
}
