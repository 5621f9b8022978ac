package stcs

import (
	"image/color"
	"testing"

	"github.com/leapstack-labs/skyoverlay/pkg/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string // STC-S form of each parsed shape
	}{
		{
			name:  "circle",
			input: "CIRCLE ICRS 10.0 20.0 0.5",
			want:  []string{"CIRCLE ICRS 10 20 0.5"},
		},
		{
			name:  "polygon",
			input: "POLYGON J2000 0 0 1 0 1 1 0 1",
			want:  []string{"POLYGON ICRS 0 0 1 0 1 1 0 1"},
		},
		{
			name:  "lowercase keywords and frame",
			input: "polygon fk5 0 0 1 0 1 1",
			want:  []string{"POLYGON ICRS 0 0 1 0 1 1"},
		},
		{
			name:  "missing frame means icrs",
			input: "CIRCLE 10 20 0.5",
			want:  []string{"CIRCLE ICRS 10 20 0.5"},
		},
		{
			name:  "unknown frame drops the shape",
			input: "CIRCLE GALACTIC 10 20 0.5",
			want:  nil,
		},
		{
			name:  "unknown frame does not affect following shapes",
			input: "POLYGON ECLIPTIC 0 0 1 0 1 1 CIRCLE ICRS 5 5 1",
			want:  []string{"CIRCLE ICRS 5 5 1"},
		},
		{
			name:  "multiple shapes",
			input: "POLYGON ICRS 0 0 1 0 1 1 POLYGON ICRS 2 2 3 2 3 3",
			want:  []string{"POLYGON ICRS 0 0 1 0 1 1", "POLYGON ICRS 2 2 3 2 3 3"},
		},
		{
			name:  "malformed number ends the polygon",
			input: "POLYGON ICRS 0 0 1 0 1 1 0 x1",
			want:  []string{"POLYGON ICRS 0 0 1 0 1 1"},
		},
		{
			name:  "dangling coordinate is ignored",
			input: "POLYGON ICRS 0 0 1 0 1 1 7",
			want:  []string{"POLYGON ICRS 0 0 1 0 1 1"},
		},
		{
			name:  "truncated circle",
			input: "CIRCLE ICRS 10 20",
			want:  nil,
		},
		{
			name:  "two vertex polygon",
			input: "POLYGON ICRS 1 2 3 4",
			want:  []string{"POLYGON ICRS 1 2 3 4"},
		},
		{
			name:  "single vertex polygon",
			input: "POLYGON ICRS 0 0 CIRCLE ICRS 1 2 3",
			want:  []string{"CIRCLE ICRS 1 2 3"},
		},
		{
			name:  "unknown keywords skipped",
			input: "UNION ( CIRCLE ICRS 1 2 3 ) BOX ICRS 0 0 1 1",
			want:  []string{"CIRCLE ICRS 1 2 3"},
		},
		{
			name:  "nan is not a number here",
			input: "CIRCLE ICRS NaN 20 1",
			want:  nil,
		},
		{
			name:  "empty",
			input: "   ",
			want:  nil,
		},
		{
			name:  "keyword at end of input",
			input: "CIRCLE",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, s := range Parse(tt.input) {
				got = append(got, s.STCS())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Shapes(t *testing.T) {
	shapes := Parse("POLYGON J2000 0 0 1 0 1 1 0 1")
	require.Len(t, shapes, 1)
	poly, ok := shapes[0].(*shape.Polyline)
	require.True(t, ok)
	assert.True(t, poly.Closed)
	assert.Len(t, poly.Points, 4)

	shapes = Parse("CIRCLE ICRS 10.0 20.0 0.5")
	require.Len(t, shapes, 1)
	circle, ok := shapes[0].(*shape.Circle)
	require.True(t, ok)
	assert.Equal(t, 10.0, circle.RA)
	assert.Equal(t, 20.0, circle.Dec)
	assert.Equal(t, 0.5, circle.Radius)
}

func TestParseWith(t *testing.T) {
	st := shape.Style{Color: color.RGBA{B: 255, A: 255}, LineWidth: 2}
	shapes := ParseWith("CIRCLE 1 2 3 POLYGON 0 0 1 0 1 1", st)
	require.Len(t, shapes, 2)
	for _, s := range shapes {
		assert.Equal(t, st, s.Style())
	}
}

func TestInspect_Notices(t *testing.T) {
	shapes, notices := Inspect("CIRCLE GALACTIC 1 2 3")
	assert.Empty(t, shapes)
	require.NotEmpty(t, notices)
	assert.Equal(t, "GALACTIC", notices[0].Token)
	assert.Contains(t, notices[0].Message, "unsupported frame")

	shapes, notices = Inspect("POLYGON ICRS 5 5")
	assert.Empty(t, shapes)
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0].Message, "polygon with 1 vertices dropped")
}
