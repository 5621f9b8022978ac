package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/skyoverlay/internal/testutil"
)

func TestSQLite_QueryTable(t *testing.T) {
	ctx := context.Background()
	a := NewSQLite(testutil.NewTestLogger(t))
	require.NoError(t, a.Connect(ctx, Config{Path: ":memory:"}))
	defer func() { _ = a.Close() }()

	require.NoError(t, a.Exec(ctx, `CREATE TABLE stars (name TEXT, ra REAL, dec REAL, mag INTEGER)`))
	require.NoError(t, a.Exec(ctx, `INSERT INTO stars VALUES ('Vega', 279.2347, 38.7837, 0), ('Deneb', 310.358, 45.28, 1)`))

	tbl, err := a.QueryTable(ctx, "stars", "SELECT * FROM stars ORDER BY ra")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "ra", "dec", "mag"}, tbl.ColumnNames())
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "Vega", tbl.Rows[0][0])
	assert.InDelta(t, 279.2347, tbl.Rows[0][1], 1e-9)
	assert.EqualValues(t, 1, tbl.Rows[1][3])
}

func TestSQLite_FileDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sky.db")

	a := NewSQLite(nil)
	require.NoError(t, a.Connect(ctx, Config{Path: path}))
	require.NoError(t, a.Exec(ctx, `CREATE TABLE t (x INTEGER)`))
	require.NoError(t, a.Close())

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestReadTable_CSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "messier.csv")
	csv := "name,RA d,DEC-d\nM 1,83.633,22.0145\nM 31,10.6847,41.2687\nM 42,,\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	tbl, err := ReadTable(context.Background(), Config{Type: "sqlite"}, Request{Name: "messier", CSV: path}, testutil.NewTestLogger(t))
	require.NoError(t, err)

	assert.Equal(t, "messier", tbl.Name)
	assert.Equal(t, []string{"name", "RA_d", "DEC_d"}, tbl.ColumnNames())
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, []any{"M 31", "10.6847", "41.2687"}, tbl.Rows[1])
	assert.Equal(t, []any{"M 42", nil, nil}, tbl.Rows[2])
}

func TestReadTable_Query(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "messier.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,ra,dec\nM 1,83.6,22.0\nM 31,10.6,41.2\n"), 0o600))

	tbl, err := ReadTable(context.Background(), Config{Type: "sqlite"},
		Request{Name: "messier", CSV: path, Query: "SELECT name FROM messier WHERE CAST(dec AS REAL) > 30"}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "M 31", tbl.Rows[0][0])
}

func TestReadTable_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := ReadTable(ctx, Config{Type: "sqlite"}, Request{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a query or a table name")

	_, err = ReadTable(ctx, Config{Type: "sqlite"}, Request{Name: "x", CSV: filepath.Join(t.TempDir(), "missing.csv")}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	a := NewSQLite(nil)
	assert.Error(t, a.LoadCSV(ctx, "x", "whatever.csv"))
}
