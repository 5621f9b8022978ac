package overlay

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/skyoverlay/internal/palette"
	"github.com/leapstack-labs/skyoverlay/internal/testutil"
	"github.com/leapstack-labs/skyoverlay/pkg/shape"
)

var red = color.RGBA{R: 255, A: 255}

func newTestOverlay(t *testing.T, opts ...Option) *Overlay {
	t.Helper()
	opts = append([]Option{WithColor(red), WithLogger(testutil.NewTestLogger(t))}, opts...)
	return New(opts...)
}

func newProjector() *testutil.FlatProjector {
	p := testutil.NewFlatProjector()
	p.OriginDec = 90
	return p
}

func TestNew_Defaults(t *testing.T) {
	p, err := palette.New("#123456")
	require.NoError(t, err)

	o := New(WithPalette(p))
	assert.Equal(t, DefaultName, o.Name)
	assert.Equal(t, DefaultLineWidth, o.LineWidth())
	assert.Empty(t, o.LineDash())
	assert.Equal(t, "#123456", palette.Hex(o.Color()))
	assert.True(t, o.IsShowing())
}

func TestAddSTCS(t *testing.T) {
	o := newTestOverlay(t)
	items := o.AddSTCS("CIRCLE ICRS 10 20 0.5 POLYGON GALACTIC 0 0 1 0 1 1 POLYGON 0 0 1 0 1 1 0 1")

	require.Len(t, items, 2)
	assert.Equal(t, 2, o.Len())
	assert.Equal(t, shape.KindCircle, o.Item(0).Shape.Kind())
	assert.Equal(t, shape.KindPolygon, o.Item(1).Shape.Kind())
	assert.Same(t, o, items[0].Overlay())
	assert.Nil(t, o.Item(2))
}

func TestAdd_RedrawRequests(t *testing.T) {
	redraws := &testutil.Redraws{}
	o := newTestOverlay(t, WithRedrawRequester(redraws))

	o.Add(shape.NewCircle(1, 1, 1))
	assert.Equal(t, 1, redraws.N)

	o.AddFootprints(shape.NewCircle(1, 1, 1), shape.NewCircle(2, 2, 1))
	assert.Equal(t, 1, redraws.N, "bulk adds leave the redraw to the caller")

	o.AddSTCS("nothing to see")
	assert.Equal(t, 1, redraws.N)

	o.SetLineWidth(1)
	o.SetLineDash([]float64{4, 2})
	o.SetColor(red)
	assert.Equal(t, 4, redraws.N)
}

func TestDraw(t *testing.T) {
	o := newTestOverlay(t, WithLineWidth(2), WithLineDash([]float64{5, 5}))
	o.AddFootprints(
		shape.NewCircle(10, 0, 1),
		shape.NewPolygon([]shape.SkyPoint{{RA: 0, Dec: 0}, {RA: 5, Dec: 0}, {RA: 5, Dec: 5}}),
		shape.NewCircle(0, 95, 1),
	)

	s := testutil.NewRecordingSurface()
	drawn := o.Draw(s, newProjector())

	assert.Len(t, drawn, 2, "the circle beyond the pole does not project")
	assert.Equal(t, 2.0, s.LineWidth)
	assert.Equal(t, []float64{5, 5}, s.LineDash)
	assert.Equal(t, red, s.Ops("SetStrokeColor")[0].Color)
	assert.True(t, s.Balanced())
}

func TestDraw_SelectedIsBrighter(t *testing.T) {
	o := newTestOverlay(t)
	it := o.Add(shape.NewCircle(10, 0, 1))
	it.Select()

	s := testutil.NewRecordingSurface()
	o.Draw(s, newProjector())

	strokes := s.Ops("SetStrokeColor")
	require.Len(t, strokes, 2)
	assert.Equal(t, "#ff8080", palette.Hex(strokes[1].Color))
	assert.True(t, s.Balanced())
}

func TestDraw_SelectedKeepsHighlightOverShapeColor(t *testing.T) {
	blue := color.RGBA{B: 255, A: 255}
	circle := shape.NewCircle(10, 0, 1)
	circle.SetStyle(shape.Style{Color: blue, LineWidth: 4})

	o := newTestOverlay(t)
	it := o.Add(circle)
	it.Select()

	s := testutil.NewRecordingSurface()
	require.Len(t, o.Draw(s, newProjector()), 1)

	strokes := s.Ops("SetStrokeColor")
	last := strokes[len(strokes)-1]
	assert.Equal(t, "#8080ff", palette.Hex(last.Color))
	assert.Equal(t, blue, circle.Style().Color, "shape style is restored after drawing")
	assert.Equal(t, 4.0, circle.Style().LineWidth)

	it.Deselect()
	s.Reset()
	o.Draw(s, newProjector())
	strokes = s.Ops("SetStrokeColor")
	assert.Equal(t, blue, strokes[len(strokes)-1].Color)
}

func TestShowHideToggle(t *testing.T) {
	o := newTestOverlay(t)
	o.AddFootprints(shape.NewCircle(10, 0, 1), shape.NewCircle(20, 0, 1))

	o.Hide()
	for _, it := range o.Items() {
		assert.False(t, it.IsShowing())
	}
	s := testutil.NewRecordingSurface()
	assert.Empty(t, o.Draw(s, newProjector()))
	assert.Empty(t, s.Calls)

	o.Toggle()
	assert.True(t, o.IsShowing())
	for _, it := range o.Items() {
		assert.True(t, it.IsShowing())
	}

	o.Item(0).Hide()
	assert.Len(t, o.Draw(testutil.NewRecordingSurface(), newProjector()), 1)

	o.Toggle()
	assert.False(t, o.IsShowing())
}

func TestRemove(t *testing.T) {
	o := newTestOverlay(t)
	items := o.AddFootprints(shape.NewCircle(10, 0, 1), shape.NewCircle(20, 0, 1))

	o.Remove(items[0])
	assert.Equal(t, 1, o.Len())
	assert.Nil(t, items[0].Overlay())
	o.Remove(items[0])
	assert.Equal(t, 1, o.Len())

	o.RemoveAll()
	assert.Zero(t, o.Len())
	assert.Nil(t, items[1].Overlay())
}
