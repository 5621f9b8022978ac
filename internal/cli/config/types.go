// Package config provides configuration management for the skyoverlay CLI.
// A configuration describes one view of the sky plus the catalogs and
// overlays drawn over it.
package config

import "github.com/leapstack-labs/skyoverlay/internal/adapter"

// Config holds all CLI configuration options.
type Config struct {
	View     ViewConfig      `koanf:"view" yaml:"view"`
	Image    string          `koanf:"image" yaml:"image"`
	Verbose  bool            `koanf:"verbose" yaml:"verbose,omitempty"`
	Output   string          `koanf:"output" yaml:"output,omitempty"`
	Palette  []string        `koanf:"palette" yaml:"palette,omitempty"`
	Catalogs []CatalogConfig `koanf:"catalogs" yaml:"catalogs,omitempty"`
	Overlays []OverlayConfig `koanf:"overlays" yaml:"overlays,omitempty"`

	// ProjectRoot is the directory relative input paths resolve against.
	ProjectRoot string `koanf:"-" yaml:"-"`
}

// ViewConfig describes the rendered field.
type ViewConfig struct {
	// Center is a coordinate string such as "00 42 44.3 +41 16 09".
	Center     string  `koanf:"center" yaml:"center"`
	FoV        float64 `koanf:"fov" yaml:"fov"`
	Width      int     `koanf:"width" yaml:"width"`
	Height     int     `koanf:"height" yaml:"height"`
	Projection string  `koanf:"projection" yaml:"projection"`
	Background string  `koanf:"background" yaml:"background,omitempty"`
}

// Input types.
const (
	InputVOTable = "votable"
	InputCSV     = "csv"
	InputSQL     = "sql"
	InputInline  = "inline"
)

// InputConfig says where a catalog's table comes from.
type InputConfig struct {
	Type string `koanf:"type" yaml:"type"`
	// Path is a file path or an http(s) URL for votable, a file for csv.
	Path  string `koanf:"path" yaml:"path,omitempty"`
	Query string `koanf:"query" yaml:"query,omitempty"`
	// Table names the SQL table for csv loads and default queries.
	Table   string         `koanf:"table" yaml:"table,omitempty"`
	Adapter adapter.Config `koanf:"adapter" yaml:"adapter,omitempty"`
	Columns []string       `koanf:"columns" yaml:"columns,omitempty"`
	Rows    [][]any        `koanf:"rows" yaml:"rows,omitempty"`
}

// CatalogConfig configures one catalog layer.
type CatalogConfig struct {
	Name           string      `koanf:"name" yaml:"name"`
	Input          InputConfig `koanf:"input" yaml:"input"`
	RAField        string      `koanf:"ra_field" yaml:"ra_field,omitempty"`
	DecField       string      `koanf:"dec_field" yaml:"dec_field,omitempty"`
	Limit          int         `koanf:"limit" yaml:"limit,omitempty"`
	Color          string      `koanf:"color" yaml:"color,omitempty"`
	SelectionColor string      `koanf:"selection_color" yaml:"selection_color,omitempty"`
	HoverColor     string      `koanf:"hover_color" yaml:"hover_color,omitempty"`
	Shape          string      `koanf:"shape" yaml:"shape,omitempty"`
	SourceSize     float64     `koanf:"source_size" yaml:"source_size,omitempty"`
	Filter         string      `koanf:"filter" yaml:"filter,omitempty"`
	Footprint      string      `koanf:"footprint" yaml:"footprint,omitempty"`
	LabelColumn    string      `koanf:"label_column" yaml:"label_column,omitempty"`
	LabelColor     string      `koanf:"label_color" yaml:"label_color,omitempty"`
	LabelSize      float64     `koanf:"label_size" yaml:"label_size,omitempty"`
	Hidden         bool        `koanf:"hidden" yaml:"hidden,omitempty"`
}

// OverlayConfig configures one vector overlay.
type OverlayConfig struct {
	Name      string    `koanf:"name" yaml:"name"`
	Color     string    `koanf:"color" yaml:"color,omitempty"`
	LineWidth float64   `koanf:"line_width" yaml:"line_width,omitempty"`
	LineDash  []float64 `koanf:"line_dash" yaml:"line_dash,omitempty"`
	STCS      []string  `koanf:"stcs" yaml:"stcs"`
	Hidden    bool      `koanf:"hidden" yaml:"hidden,omitempty"`
}

// Default configuration values.
const (
	DefaultImage      = "sky.png"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultCenter     = "0 0"
	DefaultFoV        = 60.0
	DefaultWidth      = 800
	DefaultHeight     = 600
	DefaultProjection = "TAN"
	DefaultBackground = "#000000"
)

// ConfigFileNames are searched in order when no --config is given.
var ConfigFileNames = []string{"skyoverlay.yaml", "skyoverlay.yml"}
