package adapter

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "modernc.org/sqlite" // sqlite driver
)

func init() {
	Register("sqlite", func(logger *slog.Logger) Adapter { return NewSQLite(logger) })
}

// SQLite reads tables from SQLite databases through the pure Go driver.
type SQLite struct {
	BaseSQLAdapter
}

// NewSQLite creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func NewSQLite(logger *slog.Logger) *SQLite {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLite{BaseSQLAdapter: BaseSQLAdapter{Logger: logger}}
}

// DriverName returns the database/sql driver name.
func (a *SQLite) DriverName() string { return "sqlite" }

// Connect opens the database file. An empty path or ":memory:" opens an
// in-memory database held by a single connection.
func (a *SQLite) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	memory := path == "" || path == ":memory:"
	if memory {
		path = ":memory:"
	}

	a.Logger.Debug("connecting to sqlite", slog.String("path", path))
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	if memory {
		// every pooled connection would see its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// LoadCSV loads a CSV file into a table of TEXT columns.
func (a *SQLite) LoadCSV(ctx context.Context, tableName string, filePath string) error {
	if a.DB == nil {
		return fmt.Errorf("database connection not established")
	}

	file, err := os.Open(filePath) //nolint:gosec // path comes from the user's config
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	headers, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	tx, err := a.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	name := sanitizeIdentifier(tableName)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	colDefs := make([]string, len(headers))
	marks := make([]string, len(headers))
	for i, h := range headers {
		colDefs[i] = sanitizeIdentifier(h) + " TEXT"
		marks[i] = "?"
	}
	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(colDefs, ", "))
	if _, err := tx.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s VALUES (%s)", name, strings.Join(marks, ", "))
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, len(headers))
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		for i, v := range record {
			if v == "" {
				args[i] = nil
			} else {
				args[i] = v
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert CSV line %d: %w", line, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit CSV load: %w", err)
	}
	return nil
}

var _ Adapter = (*SQLite)(nil)
