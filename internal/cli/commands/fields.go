package commands

import (
	"fmt"

	"github.com/leapstack-labs/skyoverlay/internal/catalog"
	"github.com/leapstack-labs/skyoverlay/internal/cli/output"
	"github.com/spf13/cobra"
)

// FieldInfo describes how one catalog's coordinate columns were resolved.
type FieldInfo struct {
	Catalog string   `json:"catalog"`
	RA      string   `json:"ra,omitempty"`
	Dec     string   `json:"dec,omitempty"`
	Region  string   `json:"region,omitempty"`
	ObsCore bool     `json:"obscore"`
	Columns []string `json:"columns"`
	Sources int      `json:"sources"`
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fields [catalog...]",
		Short: "Show which columns hold each catalog's coordinates",
		Long: `Load every catalog and show the columns chosen for right ascension and
declination, whether the table was recognised as ObsCore, and the column used
for footprints.`,
		Example: `  skyoverlay fields
  skyoverlay fields simbad -o json`,
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
			infos := make([]FieldInfo, 0, len(cats))
			for _, c := range cats {
				infos = append(infos, fieldInfo(c))
			}
			return renderFields(cc.Renderer, infos)
		},
	}
}

func selectCatalogs(scene *Scene, names []string) ([]*catalog.Catalog, error) {
	if len(names) == 0 {
		return scene.Catalogs, nil
	}
	cats := make([]*catalog.Catalog, 0, len(names))
	for _, name := range names {
		c := scene.Catalog(name)
		if c == nil {
			return nil, fmt.Errorf("catalog not found: %s", name)
		}
		cats = append(cats, c)
	}
	return cats, nil
}

func fieldInfo(c *catalog.Catalog) FieldInfo {
	info := FieldInfo{Catalog: c.Name, Sources: c.Len()}
	m := c.Fields()
	if m == nil {
		return info
	}
	info.ObsCore = m.IsObsCore()
	info.Columns = m.Keys()
	if f, ok := m.RA(); ok {
		info.RA = f.Name
	}
	if f, ok := m.Dec(); ok {
		info.Dec = f.Name
	}
	if f, ok := m.Region(); ok {
		info.Region = f.Name
	}
	return info
}

func renderFields(r *output.Renderer, infos []FieldInfo) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}
	if len(infos) == 0 {
		r.Println("No catalogs configured.")
		return nil
	}

	rows := make([][]any, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []any{
			info.Catalog,
			orDash(info.RA),
			orDash(info.Dec),
			orDash(info.Region),
			yesNo(info.ObsCore),
			info.Sources,
		})
	}
	r.Table([]string{"Catalog", "RA", "Dec", "Region", "ObsCore", "Sources"}, rows)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
