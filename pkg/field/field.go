// Package field resolves which columns of a table hold celestial coordinates
// and builds the key mapping used to populate sources.
package field

import (
	"strconv"
	"strings"
)

// Reserved keys for the resolved coordinate columns.
const (
	KeyRA  = "ra"
	KeyDec = "dec"
)

// Column describes a table column as read from a VOTable FIELD, an SQL
// result set or an array header.
type Column struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	UCD      string `json:"ucd,omitempty"`  // Unified Content Descriptor, e.g. "pos.eq.ra;meta.main"
	Unit     string `json:"unit,omitempty"` // e.g. "deg"
	Datatype string `json:"datatype,omitempty"`
}

// Label returns the display name of the column, falling back to its ID.
func (c Column) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Field is a resolved column: its normalized name and position in a row.
type Field struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// NormalizeKey replaces whitespace in a column name with underscores.
func NormalizeKey(name string) string {
	return strings.Join(strings.Fields(name), "_")
}

// Common column name prefixes, compared case-insensitively.
var (
	raNamePrefixes  = []string{"ra", "_ra", "ra(icrs)", "alpha"}
	decNamePrefixes = []string{"dej2000", "_dej2000", "de", "de(icrs)", "_de", "delta"}
)

// Resolve determines the indexes of the right ascension and declination
// columns. Hints are tried first (integer index, then ID or name), then UCD
// tags, then common column name prefixes. Unresolved axes fall back to
// columns 0 and 1. Resolve never fails.
func Resolve(cols []Column, raHint, decHint string) (ra, dec int) {
	ra = resolveHint(cols, raHint)
	dec = resolveHint(cols, decHint)

	// UCD scan
	for i, col := range cols {
		if ra >= 0 && dec >= 0 {
			break
		}
		if col.UCD == "" {
			continue
		}
		ucd := strings.ToLower(strings.TrimSpace(col.UCD))
		if ra < 0 && i != dec && hasAnyPrefix(ucd, "pos.eq.ra", "pos_eq_ra") {
			ra = i
			continue
		}
		if dec < 0 && i != ra && hasAnyPrefix(ucd, "pos.eq.dec", "pos_eq_dec") {
			dec = i
		}
	}

	// Name heuristics
	for i, col := range cols {
		if ra >= 0 && dec >= 0 {
			break
		}
		name := strings.ToLower(col.Label())
		if ra < 0 && i != dec && hasAnyPrefix(name, raNamePrefixes...) {
			ra = i
			continue
		}
		if dec < 0 && i != ra && hasAnyPrefix(name, decNamePrefixes...) {
			dec = i
		}
	}

	return fallback(ra, dec)
}

// fallback fills unresolved axes with the first two columns, skipping the
// column already taken by the other axis.
func fallback(ra, dec int) (int, int) {
	if ra < 0 && dec < 0 {
		return 0, 1
	}
	if ra < 0 {
		ra = 0
		if dec == 0 {
			ra = 1
		}
	}
	if dec < 0 {
		dec = 1
		if ra == 1 {
			dec = 0
		}
	}
	return ra, dec
}

// resolveHint returns the column designated by hint, or -1.
func resolveHint(cols []Column, hint string) int {
	if hint == "" {
		return -1
	}
	if idx, err := strconv.Atoi(hint); err == nil && idx >= 0 && idx < len(cols) {
		return idx
	}
	for i, col := range cols {
		if (col.ID != "" && col.ID == hint) || (col.Name != "" && col.Name == hint) {
			return i
		}
	}
	return -1
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
