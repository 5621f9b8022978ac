package commands

import (
	"github.com/leapstack-labs/skyoverlay/internal/catalog"
	"github.com/leapstack-labs/skyoverlay/internal/cli/output"
	"github.com/leapstack-labs/skyoverlay/internal/raster"
	"github.com/spf13/cobra"
)

// SourcesOptions holds options for the sources command.
type SourcesOptions struct {
	Limit     int
	DrawnOnly bool
	Columns   []string
}

// SourceRow is one listed source.
type SourceRow struct {
	Index int            `json:"index"`
	RA    float64        `json:"ra"`
	Dec   float64        `json:"dec"`
	X     *float64       `json:"x,omitempty"`
	Y     *float64       `json:"y,omitempty"`
	Drawn bool           `json:"drawn"`
	Data  map[string]any `json:"data,omitempty"`
}

// NewSourcesCommand creates the sources command.
func NewSourcesCommand() *cobra.Command {
	opts := &SourcesOptions{}

	cmd := &cobra.Command{
		Use:   "sources <catalog>",
		Short: "List a catalog's sources and where they were drawn",
		Long: `Render the configured view and list the sources of one catalog with
their sky position, screen position and whether they ended up on screen.
Sources rejected by the catalog filter or outside the view are not drawn.`,
		Example: `  skyoverlay sources simbad
  skyoverlay sources simbad --drawn --columns main_id,otype`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			scene, err := BuildScene(cmd.Context(), cc.Cfg, SceneOptions{Logger: cc.Logger})
			if err != nil {
				return err
			}
			cats, err := selectCatalogs(scene, args)
			if err != nil {
				return err
			}

			return renderSources(cc.Renderer, cats[0], scene.drawnSources(cats[0]), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of sources to list (0 for all)")
	cmd.Flags().BoolVar(&opts.DrawnOnly, "drawn", false, "Only list sources drawn in the view")
	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "Data columns to include")

	return cmd
}

// drawnSources draws c onto a scratch canvas and records the sources that
// reached the screen. Their X and Y are set by the draw.
func (sc *Scene) drawnSources(c *catalog.Catalog) map[*catalog.Source]bool {
	canvas := raster.New(sc.View.Width, sc.View.Height)
	w, h := float64(sc.View.Width), float64(sc.View.Height)
	drawn := make(map[*catalog.Source]bool)
	for _, src := range c.Draw(canvas, sc.Projector, w, h) {
		drawn[src] = true
	}
	return drawn
}

func renderSources(r *output.Renderer, c *catalog.Catalog, drawn map[*catalog.Source]bool, opts *SourcesOptions) error {
	rows := make([]SourceRow, 0)
	for i, src := range c.Sources() {
		if opts.Limit > 0 && len(rows) >= opts.Limit {
			break
		}
		isDrawn := drawn[src]
		if opts.DrawnOnly && !isDrawn {
			continue
		}
		row := SourceRow{Index: i, RA: src.RA, Dec: src.Dec, Drawn: isDrawn}
		if isDrawn {
			x, y := src.X, src.Y
			row.X, row.Y = &x, &y
		}
		if len(opts.Columns) > 0 {
			row.Data = make(map[string]any, len(opts.Columns))
			for _, col := range opts.Columns {
				row.Data[col] = src.Data[col]
			}
		}
		rows = append(rows, row)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(rows)
	}

	r.Header(2, c.Name)
	header := []string{"#", "RA", "Dec", "X", "Y", "Drawn"}
	header = append(header, opts.Columns...)
	table := make([][]any, 0, len(rows))
	for _, row := range rows {
		line := []any{row.Index, row.RA, row.Dec, optional(row.X), optional(row.Y), yesNo(row.Drawn)}
		for _, col := range opts.Columns {
			line = append(line, row.Data[col])
		}
		table = append(table, line)
	}
	r.Table(header, table)
	r.Println()
	r.KeyValue("Total", output.FormatValue(c.Len()))
	r.KeyValue("Drawn", output.FormatValue(len(drawn)))
	return nil
}

func optional(v *float64) any {
	if v == nil {
		return "-"
	}
	return *v
}
