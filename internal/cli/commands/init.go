package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/skyoverlay/internal/cli/config"
	"github.com/leapstack-labs/skyoverlay/internal/cli/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configHeader = `# skyoverlay configuration
#
# view      the rendered field: centre, field of view, image size, projection
# catalogs  source tables drawn as markers or footprints
# overlays  STC-S regions drawn as outlines
`

// starterConfig is written by init: M31 with a few nearby objects and the
// outline of the disc.
func starterConfig() *config.Config {
	return &config.Config{
		View: config.ViewConfig{
			Center:     "00 42 44.3 +41 16 09",
			FoV:        3,
			Width:      config.DefaultWidth,
			Height:     config.DefaultHeight,
			Projection: config.DefaultProjection,
			Background: config.DefaultBackground,
		},
		Image: config.DefaultImage,
		Catalogs: []config.CatalogConfig{
			{
				Name: "local group",
				Input: config.InputConfig{
					Type:    config.InputInline,
					Columns: []string{"name", "ra", "dec", "vmag"},
					Rows: [][]any{
						{"M31", 10.684708, 41.26875, 3.44},
						{"M32", 10.674300, 40.865300, 8.08},
						{"M110", 10.092000, 41.685300, 8.07},
					},
				},
				Color:       "#ff0000",
				Shape:       "circle",
				SourceSize:  12,
				LabelColumn: "name",
			},
		},
		Overlays: []config.OverlayConfig{
			{
				Name:  "disc",
				Color: "#00ff00",
				STCS:  []string{"POLYGON ICRS 11.8 42.3 11.1 41.0 9.6 40.2 10.3 41.5"},
			},
		},
	}
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a starter skyoverlay.yaml",
		Long: `Create a skyoverlay.yaml with a view of M31, an inline catalog and one
STC-S overlay. Render it with 'skyoverlay render'.`,
		Example: `  # Initialize in current directory
  skyoverlay init

  # Initialize in a new directory
  skyoverlay init m31

  # Force overwrite existing config
  skyoverlay init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(getConfig().Output))
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, config.ConfigFileNames[0])
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.ConfigFileNames[0])
	}

	data, err := yaml.Marshal(starterConfig())
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := os.WriteFile(configPath, append([]byte(configHeader), data...), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	r.StatusLine(configPath, "success", "")
	r.Println("")
	r.Success("skyoverlay project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Add catalogs (votable, csv, sql or inline) to skyoverlay.yaml")
	r.Println("  2. Run 'skyoverlay render' to draw sky.png")
	r.Println("  3. Run 'skyoverlay fields' to check coordinate columns")
	return nil
}
