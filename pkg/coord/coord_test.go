package coord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	const m31RA = 10.684583333333333 // 00h42m44.3s
	const m31Dec = 41.26916666666667 // +41d16m09s

	tests := []struct {
		name    string
		input   string
		wantLon float64
		wantLat float64
	}{
		{name: "decimal degrees", input: "10.68 41.27", wantLon: 10.68, wantLat: 41.27},
		{name: "decimal degrees signed", input: "10.68 -41.27", wantLon: 10.68, wantLat: -41.27},
		{name: "comma separated", input: "10.68, +41.27", wantLon: 10.68, wantLat: 41.27},
		{name: "exponent", input: "1.5e1 -2e-1", wantLon: 15, wantLat: -0.2},
		{name: "spaces", input: "00 42 44.3 +41 16 09", wantLon: m31RA, wantLat: m31Dec},
		{name: "spaces unsigned", input: "00 42 44.3 41 16 09", wantLon: m31RA, wantLat: m31Dec},
		{name: "colons", input: "00:42:44.3 +41:16:09", wantLon: m31RA, wantLat: m31Dec},
		{name: "colons unsigned", input: "00:42:44.3 41:16:09", wantLon: m31RA, wantLat: m31Dec},
		{name: "unit letters", input: "00h42m44.3s +41d16m09s", wantLon: m31RA, wantLat: m31Dec},
		{name: "unit letters unsigned", input: "00h42m44.3s 41d16m09s", wantLon: m31RA, wantLat: m31Dec},
		{name: "degree markers", input: "10.5d -20.25d", wantLon: 10.5, wantLat: -20.25},
		{name: "negative zero degrees", input: "12 00 00 -00 30 00", wantLon: 180, wantLat: -0.5},
		{name: "minutes only", input: "12 30 -45 30", wantLon: 187.5, wantLat: -45.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lon, lat, err := Parse(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantLon, lon, 1e-9)
			assert.InDelta(t, tt.wantLat, lat, 1e-9)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "single value", input: "10.5"},
		{name: "garbage", input: "hello world"},
		{name: "latitude out of range", input: "10 95"},
		{name: "longitude out of range", input: "400 10"},
		{name: "minutes out of range", input: "10 75 00 +10 00 00"},
		{name: "ambiguous split", input: "10 20 30"},
		{name: "dangling marker", input: "h 10 20"},
		{name: "too many parts", input: "1 2 3 4 +5 6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCoordinate)
		})
	}
}
