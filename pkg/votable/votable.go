// Package votable reads VOTable documents with TABLEDATA serialization into
// tables. Each RESOURCE/TABLE element becomes one table.
package votable

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/skyoverlay/pkg/field"
	"github.com/leapstack-labs/skyoverlay/pkg/table"
)

// ErrNoTable is returned when a document holds no TABLE element.
var ErrNoTable = errors.New("votable: no table found")

// DefaultTimeout bounds remote fetches made with the default client.
const DefaultTimeout = 30 * time.Second

type xmlField struct {
	ID        string `xml:"ID,attr"`
	Name      string `xml:"name,attr"`
	UCD       string `xml:"ucd,attr"`
	Unit      string `xml:"unit,attr"`
	Datatype  string `xml:"datatype,attr"`
	ArraySize string `xml:"arraysize,attr"`
}

type xmlRow struct {
	Cells []xmlCell `xml:"TD"`
}

type xmlCell struct {
	Null  string `xml:"null,attr"`
	Value string `xml:",chardata"`
}

type xmlTable struct {
	Name   string     `xml:"name,attr"`
	ID     string     `xml:"ID,attr"`
	Fields []xmlField `xml:"FIELD"`
	Data   struct {
		TableData *struct {
			Rows []xmlRow `xml:"TR"`
		} `xml:"TABLEDATA"`
		Binary *struct{} `xml:"BINARY"`
		FITS   *struct{} `xml:"FITS"`
	} `xml:"DATA"`
}

// Parse streams the document and calls fn once per TABLE element in document
// order. Parsing stops at the first error returned by fn.
func Parse(r io.Reader, fn func(*table.Table) error) error {
	dec := xml.NewDecoder(r)
	var resource string
	n := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("XML decode: %w", err)
		}

		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch el.Name.Local {
		case "RESOURCE":
			resource = attr(el, "name")
		case "TABLE":
			var xt xmlTable
			if err := dec.DecodeElement(&xt, &el); err != nil {
				return fmt.Errorf("XML decode: %w", err)
			}
			n++
			tbl, err := convert(xt, tableName(xt, resource, n))
			if err != nil {
				return err
			}
			if err := fn(tbl); err != nil {
				return err
			}
		}
	}
	if n == 0 {
		return ErrNoTable
	}
	return nil
}

// Read parses every table of the document.
func Read(r io.Reader) ([]*table.Table, error) {
	var tables []*table.Table
	err := Parse(r, func(t *table.Table) error {
		tables = append(tables, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// Load reads a VOTable from a local path or an http(s) URL. Errors carry the
// location.
func Load(ctx context.Context, location string, client *http.Client) ([]*table.Table, error) {
	var (
		tables []*table.Table
		err    error
	)
	if isURL(location) {
		tables, err = fetch(ctx, location, client)
	} else {
		tables, err = open(location)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing error of the votable located at: %s: %w", location, err)
	}
	return tables, nil
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func open(path string) ([]*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

func fetch(ctx context.Context, url string, client *http.Client) ([]*table.Table, error) {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/x-votable+xml, text/xml;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return Read(resp.Body)
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func tableName(xt xmlTable, resource string, n int) string {
	switch {
	case xt.Name != "":
		return xt.Name
	case xt.ID != "":
		return xt.ID
	case resource != "":
		return resource
	default:
		return "table" + strconv.Itoa(n)
	}
}

func convert(xt xmlTable, name string) (*table.Table, error) {
	if xt.Data.TableData == nil && (xt.Data.Binary != nil || xt.Data.FITS != nil) {
		return nil, fmt.Errorf("table %q: only TABLEDATA serialization is supported", name)
	}

	cols := make([]field.Column, len(xt.Fields))
	for i, f := range xt.Fields {
		cols[i] = field.Column{ID: f.ID, Name: f.Name, UCD: f.UCD, Unit: f.Unit, Datatype: f.Datatype}
	}
	tbl := &table.Table{Name: name, Columns: cols}
	if xt.Data.TableData == nil {
		return tbl, nil
	}

	tbl.Rows = make([][]any, 0, len(xt.Data.TableData.Rows))
	for i, tr := range xt.Data.TableData.Rows {
		if len(tr.Cells) > len(cols) {
			return nil, fmt.Errorf("table %q: row %d has %d cells, expected %d", name, i, len(tr.Cells), len(cols))
		}
		row := make([]any, len(cols))
		for j, td := range tr.Cells {
			row[j] = cellValue(xt.Fields[j], td)
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}

// cellValue types a TD by its FIELD datatype. Empty and null cells are nil;
// values that do not parse are kept as text.
func cellValue(f xmlField, td xmlCell) any {
	s := strings.TrimSpace(td.Value)
	if s == "" || (td.Null != "" && s == td.Null) {
		return nil
	}
	if f.ArraySize != "" && f.Datatype != "char" && f.Datatype != "unicodeChar" {
		return s
	}
	switch f.Datatype {
	case "double", "float":
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	case "short", "int", "long", "unsignedByte":
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
	case "boolean":
		switch strings.ToLower(s) {
		case "t", "true", "1":
			return true
		case "f", "false", "0":
			return false
		case "?":
			return nil
		}
	}
	return s
}
