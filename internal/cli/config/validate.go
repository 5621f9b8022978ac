package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/skyoverlay/internal/adapter"
	"github.com/leapstack-labs/skyoverlay/internal/projection"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.View.Width <= 0 || c.View.Height <= 0 {
		return fmt.Errorf("view size must be positive, got %dx%d", c.View.Width, c.View.Height)
	}
	if c.View.FoV <= 0 {
		return fmt.Errorf("view.fov must be positive, got %g", c.View.FoV)
	}
	if _, err := projection.ParseKind(c.View.Projection); err != nil {
		return err
	}
	switch c.Output {
	case "", "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("unknown output mode %q (want auto, text, markdown or json)", c.Output)
	}

	for i, cat := range c.Catalogs {
		if err := cat.Input.validate(); err != nil {
			return fmt.Errorf("catalogs[%d] (%s): %w", i, cat.Name, err)
		}
	}
	for i, ov := range c.Overlays {
		for _, d := range ov.LineDash {
			if d < 0 {
				return fmt.Errorf("overlays[%d] (%s): negative line_dash segment %g", i, ov.Name, d)
			}
		}
	}
	return nil
}

func (in InputConfig) validate() error {
	switch strings.ToLower(in.Type) {
	case InputVOTable:
		if in.Path == "" {
			return fmt.Errorf("votable input needs a path")
		}
	case InputCSV:
		if in.Path == "" {
			return fmt.Errorf("csv input needs a path")
		}
		if in.Adapter.Type != "" && !adapter.IsRegistered(in.Adapter.Type) {
			return &adapter.UnknownAdapterError{Type: in.Adapter.Type, Available: adapter.ListAdapters()}
		}
	case InputSQL:
		if in.Query == "" && in.Table == "" {
			return fmt.Errorf("sql input needs a query or a table")
		}
		if !adapter.IsRegistered(in.Adapter.Type) {
			return &adapter.UnknownAdapterError{Type: in.Adapter.Type, Available: adapter.ListAdapters()}
		}
	case InputInline:
		if len(in.Columns) == 0 {
			return fmt.Errorf("inline input needs columns")
		}
	case "":
		return fmt.Errorf("input type is required")
	default:
		return fmt.Errorf("unknown input type %q (want votable, csv, sql or inline)", in.Type)
	}
	return nil
}
