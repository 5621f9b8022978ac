package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/skyoverlay/pkg/render"
)

func view(kind Kind, ra, dec, fov float64) render.ViewParams {
	return render.ViewParams{CenterRA: ra, CenterDec: dec, FoV: fov, Width: 400, Height: 300, Projection: string(kind)}
}

func TestWorldToScreen_Orientation(t *testing.T) {
	for _, kind := range []Kind{TAN, SIN} {
		t.Run(string(kind), func(t *testing.T) {
			p, err := New(view(kind, 10.68, 41.27, 2))
			require.NoError(t, err)

			xy := p.WorldToScreen(
				[]float64{10.68, 11.0, 10.68},
				[]float64{41.27, 41.27, 41.5},
			)
			require.Len(t, xy, 6)
			assert.InDelta(t, 200, xy[0], 1e-6)
			assert.InDelta(t, 150, xy[1], 1e-6)
			assert.Less(t, xy[2], 200.0, "east is left")
			assert.Less(t, xy[5], 150.0, "north is up")
		})
	}
}

func TestWorldToScreen_EdgeOfField(t *testing.T) {
	for _, kind := range []Kind{TAN, SIN} {
		t.Run(string(kind), func(t *testing.T) {
			p, err := New(view(kind, 0, 0, 60))
			require.NoError(t, err)
			xy := p.WorldToScreen([]float64{30, 330}, []float64{0, 0})
			assert.InDelta(t, 0, xy[0], 1e-6)
			assert.InDelta(t, 400, xy[2], 1e-6)
		})
	}
}

func TestWorldToScreen_Undefined(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		ra   float64
		dec  float64
	}{
		{name: "tan antipode", kind: TAN, ra: 180, dec: 0},
		{name: "tan perpendicular", kind: TAN, ra: 90, dec: 0},
		{name: "sin far side", kind: SIN, ra: 120, dec: 0},
		{name: "nan input", kind: TAN, ra: math.NaN(), dec: 0},
		{name: "declination out of range", kind: SIN, ra: 0, dec: 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(view(tt.kind, 0, 0, 30))
			require.NoError(t, err)
			xy := p.WorldToScreen([]float64{tt.ra}, []float64{tt.dec})
			assert.True(t, math.IsNaN(xy[0]))
			assert.True(t, math.IsNaN(xy[1]))
		})
	}
}

func TestScreenToWorld_RoundTrip(t *testing.T) {
	centers := [][2]float64{{0, 0}, {10.68, 41.27}, {359.5, -60}, {0, 90}, {200, -89.9}}
	for _, kind := range []Kind{TAN, SIN} {
		for _, c := range centers {
			p, err := New(view(kind, c[0], c[1], 10))
			require.NoError(t, err)

			for _, off := range [][2]float64{{0, 0}, {-80, 40}, {150, -120}} {
				sx, sy := 200+off[0], 150+off[1]
				ra, dec, ok := p.ScreenToWorld(sx, sy)
				require.True(t, ok)
				xy := p.WorldToScreen([]float64{ra}, []float64{dec})
				assert.InDelta(t, sx, xy[0], 1e-6, "%s centre %v", kind, c)
				assert.InDelta(t, sy, xy[1], 1e-6, "%s centre %v", kind, c)
			}
		}
	}
}

func TestScreenToWorld_OutsideSphere(t *testing.T) {
	p, err := New(view(SIN, 0, 0, 180))
	require.NoError(t, err)
	_, _, ok := p.ScreenToWorld(-1000, 150)
	assert.False(t, ok)
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		view render.ViewParams
	}{
		{name: "unknown projection", view: view("AIT", 0, 0, 10)},
		{name: "zero fov", view: view(TAN, 0, 0, 0)},
		{name: "tan fov too wide", view: view(TAN, 0, 0, 180)},
		{name: "bad declination", view: view(TAN, 0, 91, 10)},
		{name: "zero size", view: render.ViewParams{FoV: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.view)
			assert.ErrorIs(t, err, ErrInvalidView)
		})
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, TAN, k)
	k, err = ParseKind(" sin ")
	require.NoError(t, err)
	assert.Equal(t, SIN, k)
}

func TestSeparation(t *testing.T) {
	assert.InDelta(t, 90, Separation(0, 0, 90, 0), 1e-9)
	assert.InDelta(t, 1, Separation(10, 0, 11, 0), 1e-9)
	assert.InDelta(t, 180, Separation(0, 45, 180, -45), 1e-9)
	assert.InDelta(t, 0, Separation(123, 89.999, 123, 89.999), 1e-9)
}

func TestViewParams_NormalizesCentre(t *testing.T) {
	p, err := New(view("tan", -10, 0, 10))
	require.NoError(t, err)
	assert.InDelta(t, 350, p.ViewParams().CenterRA, 1e-9)
	assert.Equal(t, "TAN", p.ViewParams().Projection)
	assert.Equal(t, TAN, p.Kind())
}
