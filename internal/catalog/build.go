package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/skyoverlay/pkg/coord"
	"github.com/leapstack-labs/skyoverlay/pkg/field"
	"github.com/leapstack-labs/skyoverlay/pkg/table"
)

// BuildSources creates one source per row whose coordinate cells are both
// non-nil. Every column value is kept in Source.Data under its field name.
// Rows whose coordinates cannot be read are skipped and reported to diag.
// maxSources > 0 stops the scan once that many sources exist.
func BuildSources(tbl *table.Table, m *field.Mapping, maxSources int, diag DiagnosticFunc) []*Source {
	raField, okRA := m.RA()
	decField, okDec := m.Dec()
	if !okRA || !okDec {
		return nil
	}

	var sources []*Source
	for rowIdx, row := range tbl.Rows {
		raCell, decCell := cell(row, raField.Index), cell(row, decField.Index)
		if raCell == nil || decCell == nil {
			continue
		}

		ra, dec, err := coordinates(raCell, decCell)
		if err != nil {
			if diag != nil {
				diag(Diagnostic{Kind: DiagCoordinate, RowIndex: rowIdx, Err: err})
			}
			continue
		}

		data := make(map[string]any, m.Len())
		for _, key := range m.Keys() {
			f, _ := m.Get(key)
			data[f.Name] = cell(row, f.Index)
		}

		src := NewSource(ra, dec, data)
		src.RowIndex = rowIdx
		sources = append(sources, src)
		if maxSources > 0 && len(sources) >= maxSources {
			break
		}
	}
	return sources
}

func cell(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

// coordinates reads a pair of cells. Numeric cells are used as decimal
// degrees; anything else goes through the free-form coordinate parser.
func coordinates(raCell, decCell any) (ra, dec float64, err error) {
	ra, raOK := toFloat(raCell)
	dec, decOK := toFloat(decCell)
	if raOK && decOK {
		return ra, dec, nil
	}
	return coord.Parse(fmt.Sprintf("%v %v", text(raCell), text(decCell)))
}

// toFloat converts Go numbers and numeric strings.
func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		return parseFloat(x)
	case []byte:
		return parseFloat(string(x))
	case fmt.Stringer:
		return parseFloat(x.String())
	default:
		return 0, false
	}
	return f, !math.IsNaN(f) && !math.IsInf(f, 0)
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func text(v any) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(v)
}
