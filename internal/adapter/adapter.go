// Package adapter reads catalog tables from SQL databases. Each supported
// engine registers a factory under its type name; CSV files are loaded
// through an engine before being queried.
package adapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/skyoverlay/pkg/table"
)

// Config holds the configuration for connecting to a database.
type Config struct {
	// Type selects the engine ("duckdb", "sqlite", "postgres").
	Type string `koanf:"type" yaml:"type"`

	// Path is the file path for file-based databases. Empty or ":memory:"
	// opens an in-memory database.
	Path string `koanf:"path" yaml:"path,omitempty"`

	Host     string `koanf:"host" yaml:"host,omitempty"`
	Port     int    `koanf:"port" yaml:"port,omitempty"`
	Database string `koanf:"database" yaml:"database,omitempty"`
	Username string `koanf:"username" yaml:"username,omitempty"`
	Password string `koanf:"password" yaml:"password,omitempty"`

	// Options contains additional driver-specific options (e.g. sslmode).
	Options map[string]string `koanf:"options" yaml:"options,omitempty"`
}

// Adapter defines what a table source must implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, sql string) error

	// QueryTable runs query and returns the whole result set as a table.
	QueryTable(ctx context.Context, name, query string) (*table.Table, error)

	// LoadCSV loads a CSV file with a header row into a table, replacing any
	// existing table of that name.
	LoadCSV(ctx context.Context, tableName string, filePath string) error

	// DriverName returns the database/sql driver used by the adapter.
	DriverName() string
}

// Request describes one table to read.
type Request struct {
	Name  string
	Query string
	// CSV, when set, is loaded into a table called Name before Query runs.
	CSV string
}

// ReadTable connects with cfg, runs the request and closes the connection.
func ReadTable(ctx context.Context, cfg Config, req Request, logger *slog.Logger) (*table.Table, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a, err := NewAdapter(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, cfg); err != nil {
		return nil, err
	}
	defer func() { _ = a.Close() }()

	if req.CSV != "" {
		logger.Debug("loading csv", slog.String("path", req.CSV), slog.String("table", req.Name))
		if err := a.LoadCSV(ctx, req.Name, req.CSV); err != nil {
			return nil, err
		}
	}

	query := req.Query
	if query == "" {
		if req.Name == "" {
			return nil, fmt.Errorf("table source needs a query or a table name")
		}
		query = "SELECT * FROM " + req.Name
	}
	logger.Debug("querying table", slog.String("adapter", cfg.Type), slog.String("query", query))
	return a.QueryTable(ctx, req.Name, query)
}
