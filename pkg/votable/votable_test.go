package votable

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/skyoverlay/pkg/table"
)

const simbad = `<?xml version="1.0" encoding="UTF-8"?>
<VOTABLE version="1.4" xmlns="http://www.ivoa.net/xml/VOTable/v1.3">
  <RESOURCE type="results" name="simbad">
    <TABLE>
      <FIELD ID="main_id" name="MAIN_ID" datatype="char" arraysize="*" ucd="meta.id;meta.main"/>
      <FIELD name="RA_d" datatype="double" unit="deg" ucd="pos.eq.ra;meta.main"/>
      <FIELD name="DEC_d" datatype="double" unit="deg" ucd="pos.eq.dec;meta.main"/>
      <FIELD name="nbref" datatype="int"/>
      <FIELD name="flag" datatype="boolean"/>
      <DATA>
        <TABLEDATA>
          <TR><TD>M  31</TD><TD>10.684708</TD><TD>41.26875</TD><TD>12</TD><TD>T</TD></TR>
          <TR><TD>M  33</TD><TD>23.462042</TD><TD>30.660222</TD><TD></TD><TD>false</TD></TR>
          <TR><TD>odd</TD><TD>n/a</TD></TR>
        </TABLEDATA>
      </DATA>
    </TABLE>
  </RESOURCE>
</VOTABLE>`

func TestRead(t *testing.T) {
	tables, err := Read(strings.NewReader(simbad))
	require.NoError(t, err)
	require.Len(t, tables, 1)

	tbl := tables[0]
	assert.Equal(t, "simbad", tbl.Name)
	assert.Equal(t, []string{"MAIN_ID", "RA_d", "DEC_d", "nbref", "flag"}, tbl.ColumnNames())
	assert.Equal(t, "pos.eq.ra;meta.main", tbl.Columns[1].UCD)
	assert.Equal(t, "deg", tbl.Columns[1].Unit)
	assert.Equal(t, "main_id", tbl.Columns[0].ID)

	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, []any{"M  31", 10.684708, 41.26875, int64(12), true}, tbl.Rows[0])
	assert.Equal(t, []any{"M  33", 23.462042, 30.660222, nil, false}, tbl.Rows[1])
	assert.Equal(t, []any{"odd", "n/a", nil, nil, nil}, tbl.Rows[2])
}

func TestParse_MultipleTables(t *testing.T) {
	doc := `<VOTABLE>
  <RESOURCE name="first"><TABLE name="a"><FIELD name="x" datatype="int"/>
    <DATA><TABLEDATA><TR><TD>1</TD></TR></TABLEDATA></DATA></TABLE></RESOURCE>
  <RESOURCE><TABLE><FIELD name="y" datatype="float"/>
    <DATA><TABLEDATA><TR><TD>2.5</TD></TR><TR><TD null="-1">-1</TD></TR></TABLEDATA></DATA></TABLE></RESOURCE>
</VOTABLE>`

	var names []string
	var tables []*table.Table
	err := Parse(strings.NewReader(doc), func(tbl *table.Table) error {
		names = append(names, tbl.Name)
		tables = append(tables, tbl)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "table2"}, names)
	assert.Equal(t, [][]any{{2.5}, {nil}}, tables[1].Rows)
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
		msg     string
	}{
		{name: "no table", doc: `<VOTABLE><RESOURCE/></VOTABLE>`, wantErr: ErrNoTable},
		{name: "not xml", doc: `{"json": true}`, wantErr: ErrNoTable},
		{name: "truncated", doc: `<VOTABLE><RESOURCE><TABLE>`, msg: "XML decode"},
		{name: "binary", doc: `<VOTABLE><TABLE><FIELD name="x"/><DATA><BINARY/></DATA></TABLE></VOTABLE>`, msg: "TABLEDATA"},
		{name: "too many cells", doc: `<VOTABLE><TABLE><FIELD name="x"/><DATA><TABLEDATA><TR><TD>1</TD><TD>2</TD></TR></TABLEDATA></DATA></TABLE></VOTABLE>`, msg: "row 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.doc))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "simbad.xml")
	require.NoError(t, os.WriteFile(path, []byte(simbad), 0o600))

	tables, err := Load(context.Background(), path, nil)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, 3, tables[0].Len())

	_, err = Load(context.Background(), filepath.Join(dir, "missing.xml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing error of the votable located at: ")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tap" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/x-votable+xml")
		_, _ = w.Write([]byte(simbad))
	}))
	defer srv.Close()

	tables, err := Load(context.Background(), srv.URL+"/tap", srv.Client())
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "simbad", tables[0].Name)

	_, err = Load(context.Background(), srv.URL+"/nope", srv.Client())
	require.Error(t, err)
	assert.Contains(t, err.Error(), srv.URL+"/nope")
	assert.Contains(t, err.Error(), "unexpected status: 404")
}
