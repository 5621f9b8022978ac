package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/leapstack-labs/skyoverlay/internal/catalog"
	"github.com/leapstack-labs/skyoverlay/internal/cli/config"
	"github.com/leapstack-labs/skyoverlay/internal/overlay"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "top", "view", "catalog", "input", "overlay"
}

// getConfigSchema returns the configuration schema definition.
// This is based on internal/cli/config/types.go.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "image", Type: "string", Default: config.DefaultImage, Description: "Rendered image path; the extension picks PNG, TIFF or BMP", Category: "top"},
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "Listing format: auto, text, markdown or json", Category: "top"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Debug logging on stderr", Category: "top"},
		{Name: "palette", Type: "[]string", Description: "Colours cycled for layers without an explicit colour", Category: "top"},

		{Name: "center", Type: "string", Default: config.DefaultCenter, Description: "View centre in decimal or sexagesimal notation", Category: "view"},
		{Name: "fov", Type: "float", Default: formatFloat(config.DefaultFoV), Description: "Horizontal field of view in degrees", Category: "view"},
		{Name: "width", Type: "int", Default: strconv.Itoa(config.DefaultWidth), Description: "Image width in pixels", Category: "view"},
		{Name: "height", Type: "int", Default: strconv.Itoa(config.DefaultHeight), Description: "Image height in pixels", Category: "view"},
		{Name: "projection", Type: "string", Default: config.DefaultProjection, Description: "TAN (gnomonic) or SIN (orthographic)", Category: "view"},
		{Name: "background", Type: "string", Default: config.DefaultBackground, Description: "Background colour", Category: "view"},

		{Name: "name", Type: "string", Description: "Layer name", Category: "catalog"},
		{Name: "ra_field", Type: "string", Description: "Column holding right ascension, overriding detection", Category: "catalog"},
		{Name: "dec_field", Type: "string", Description: "Column holding declination, overriding detection", Category: "catalog"},
		{Name: "limit", Type: "int", Default: "0", Description: "Maximum number of sources read (0 reads all)", Category: "catalog"},
		{Name: "color", Type: "string", Description: "Marker colour; taken from the palette when empty", Category: "catalog"},
		{Name: "selection_color", Type: "string", Description: "Colour of selected sources", Category: "catalog"},
		{Name: "hover_color", Type: "string", Description: "Colour of hovered sources", Category: "catalog"},
		{Name: "shape", Type: "string", Default: "square", Description: "Marker: square, circle, plus, cross, rhomb or triangle", Category: "catalog"},
		{Name: "source_size", Type: "float", Default: formatFloat(catalog.DefaultSourceSize), Description: "Marker size in pixels", Category: "catalog"},
		{Name: "filter", Type: "string", Description: "Starlark expression; sources where it is false are not drawn", Category: "catalog"},
		{Name: "footprint", Type: "string", Description: "Starlark expression returning STC-S footprints", Category: "catalog"},
		{Name: "label_column", Type: "string", Description: "Column drawn next to each source", Category: "catalog"},
		{Name: "label_color", Type: "string", Description: "Label colour; the marker colour when empty", Category: "catalog"},
		{Name: "label_size", Type: "float", Description: "Label font size in pixels", Category: "catalog"},
		{Name: "hidden", Type: "bool", Default: "false", Description: "Load the layer without drawing it", Category: "catalog"},

		{Name: "type", Type: "string", Description: "votable, csv, sql or inline", Category: "input"},
		{Name: "path", Type: "string", Description: "VOTable file or http(s) URL, or CSV file", Category: "input"},
		{Name: "query", Type: "string", Description: "SQL query for csv and sql inputs", Category: "input"},
		{Name: "table", Type: "string", Description: "Table name for CSV loads and default queries", Category: "input"},
		{Name: "adapter", Type: "object", Description: "Database connection: type (duckdb, sqlite, postgres), path, host, port, database, username, password, options", Category: "input"},
		{Name: "columns", Type: "[]string", Description: "Column names of inline rows", Category: "input"},
		{Name: "rows", Type: "[][]any", Description: "Inline rows", Category: "input"},

		{Name: "name", Type: "string", Description: "Layer name", Category: "overlay"},
		{Name: "color", Type: "string", Description: "Line colour; taken from the palette when empty", Category: "overlay"},
		{Name: "line_width", Type: "float", Default: formatFloat(overlay.DefaultLineWidth), Description: "Line width in pixels", Category: "overlay"},
		{Name: "line_dash", Type: "[]float", Description: "Dash pattern in pixels", Category: "overlay"},
		{Name: "stcs", Type: "[]string", Description: "STC-S strings drawn as outlines", Category: "overlay"},
		{Name: "hidden", Type: "bool", Default: "false", Description: "Load the layer without drawing it", Category: "overlay"},
	}
}

// generateConfigDocs generates the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "skyoverlay configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("skyoverlay is configured via " + InlineCode(config.ConfigFileNames[0]) + " in the working directory or the file given with " + InlineCode("--config") + ". Relative input paths resolve against the directory of the configuration file, and " + InlineCode("${VAR}") + " in paths and credentials is replaced from the environment.")

	sections := []struct {
		category string
		title    string
		intro    string
	}{
		{"top", "Top Level", ""},
		{"view", "View", "Keys under " + InlineCode("view") + ":"},
		{"catalog", "Catalogs", "Each entry of " + InlineCode("catalogs") + ":"},
		{"input", "Catalog Input", "Keys under " + InlineCode("catalogs[].input") + ":"},
		{"overlay", "Overlays", "Each entry of " + InlineCode("overlays") + ":"},
	}

	fields := getConfigSchema()
	for _, sec := range sections {
		w.Header(2, sec.title)
		if sec.intro != "" {
			w.Paragraph(sec.intro)
		}
		var rows [][]string
		for _, f := range fields {
			if f.Category != sec.category {
				continue
			}
			defVal := "-"
			if f.Default != "" {
				defVal = InlineCode(f.Default)
			}
			rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, f.Description})
		}
		w.Table([]string{"Field", "Type", "Default", "Description"}, rows)
	}

	filename := filepath.Join(outDir, "configuration.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated configuration.md")
	return nil
}
