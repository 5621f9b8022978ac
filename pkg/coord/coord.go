// Package coord parses free-form equatorial coordinate strings into decimal
// degrees. Accepted forms include decimal degrees ("10.68 +41.27"),
// sexagesimal with spaces or colons ("00 42 44.3 +41 16 09",
// "00:42:44.3 +41:16:09") and sexagesimal with unit letters
// ("00h42m44.3s +41d16m09s"). Multi-part longitudes are read as hours unless
// they carry a degree marker.
package coord

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate is returned for strings that cannot be read as a
// coordinate pair.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// component is a number with the marker that followed it.
type component struct {
	value  float64
	signed bool
	neg    bool
	unit   string // "h", "m", "s", "d", "'", "\"", ":" or ""
}

// Parse converts a coordinate pair to decimal degrees.
func Parse(text string) (lon, lat float64, err error) {
	comps, marked, err := scan(text)
	if err != nil {
		return 0, 0, err
	}
	if len(comps) < 2 {
		return 0, 0, fmt.Errorf("%w: %q: expected two values", ErrInvalidCoordinate, text)
	}

	split := splitIndex(comps)
	if split <= 0 || split >= len(comps) {
		return 0, 0, fmt.Errorf("%w: %q: cannot separate longitude from latitude", ErrInvalidCoordinate, text)
	}
	lonPart, latPart := comps[:split], comps[split:]
	if len(lonPart) > 3 || len(latPart) > 3 {
		return 0, 0, fmt.Errorf("%w: %q: too many components", ErrInvalidCoordinate, text)
	}

	lon, err = sexagesimal(lonPart)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidCoordinate, text, err)
	}
	lat, err = sexagesimal(latPart)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidCoordinate, text, err)
	}

	if marked && inHours(lonPart) {
		lon *= 15
	}

	if lon < 0 || lon > 360 {
		return 0, 0, fmt.Errorf("%w: %q: longitude %g out of range", ErrInvalidCoordinate, text, lon)
	}
	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("%w: %q: latitude %g out of range", ErrInvalidCoordinate, text, lat)
	}
	return lon, lat, nil
}

// scan tokenizes text into components. marked reports whether the string
// used sexagesimal notation (markers or more than two numbers).
func scan(text string) (comps []component, marked bool, err error) {
	l := newLexer(text)
	for {
		tok := l.next()
		switch tok.typ {
		case tokenEOF:
			return comps, marked || len(comps) > 2, nil
		case tokenNumber:
			comps = append(comps, component{value: tok.value, signed: tok.signed, neg: tok.neg})
		case tokenUnit, tokenColon:
			if len(comps) == 0 || comps[len(comps)-1].unit != "" {
				return nil, false, fmt.Errorf("%w: %q: unexpected %q at offset %d", ErrInvalidCoordinate, text, tok.literal, tok.pos)
			}
			comps[len(comps)-1].unit = tok.literal
			marked = true
		default:
			return nil, false, fmt.Errorf("%w: %q: unexpected %q at offset %d", ErrInvalidCoordinate, text, tok.literal, tok.pos)
		}
	}
}

// splitIndex returns the index of the first latitude component.
func splitIndex(comps []component) int {
	// An explicit sign starts the latitude.
	for i := 1; i < len(comps); i++ {
		if comps[i].signed {
			return i
		}
	}
	// A degree marker after an hour-marked longitude starts the latitude.
	if comps[0].unit == "h" {
		for i := 1; i < len(comps); i++ {
			if comps[i].unit == "d" {
				return i
			}
		}
	}
	// Colon groups: the longitude ends at the first number without a colon.
	if comps[0].unit == ":" {
		for i := 0; i < len(comps); i++ {
			if comps[i].unit != ":" {
				return i + 1
			}
		}
	}
	if len(comps)%2 == 0 {
		return len(comps) / 2
	}
	return -1
}

// sexagesimal folds up to three components into a single value.
func sexagesimal(part []component) (float64, error) {
	v := math.Abs(part[0].value)
	for i, c := range part[1:] {
		if c.signed {
			return 0, fmt.Errorf("sign inside a sexagesimal value")
		}
		if c.value < 0 || c.value >= 60 {
			return 0, fmt.Errorf("component %g out of range [0, 60)", c.value)
		}
		v += c.value / math.Pow(60, float64(i+1))
	}
	if part[0].neg || part[0].value < 0 {
		v = -v
	}
	return v, nil
}

// inHours reports whether a longitude is expressed in hours: either marked
// with "h", or multi-part without a degree marker.
func inHours(part []component) bool {
	for _, c := range part {
		switch c.unit {
		case "h":
			return true
		case "d":
			return false
		}
	}
	return len(part) > 1
}
