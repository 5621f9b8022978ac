package catalog

import (
	"errors"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/skyoverlay/internal/palette"
	"github.com/leapstack-labs/skyoverlay/internal/testutil"
	"github.com/leapstack-labs/skyoverlay/pkg/field"
	"github.com/leapstack-labs/skyoverlay/pkg/render"
	"github.com/leapstack-labs/skyoverlay/pkg/shape"
	"github.com/leapstack-labs/skyoverlay/pkg/table"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
)

// newProjector maps ra to x and 90-dec to y, one pixel per degree.
func newProjector() *testutil.FlatProjector {
	p := testutil.NewFlatProjector()
	p.OriginDec = 90
	return p
}

func newTestCatalog(t *testing.T, opts ...Option) *Catalog {
	t.Helper()
	opts = append([]Option{WithColor(red), WithLogger(testutil.NewTestLogger(t))}, opts...)
	return New(opts...)
}

func sources(n int) []*Source {
	out := make([]*Source, n)
	for i := range out {
		out[i] = NewSource(float64(10+i*10), 0, map[string]any{"id": i})
	}
	return out
}

func assertParallel(t *testing.T, c *Catalog) {
	t.Helper()
	ra, dec := c.Positions()
	assert.Len(t, ra, c.Len())
	assert.Len(t, dec, c.Len())
	for i, s := range c.Sources() {
		assert.Equal(t, s.RA, ra[i])
		assert.Equal(t, s.Dec, dec[i])
	}
}

func TestNew_Defaults(t *testing.T) {
	palette.ResetDefault()
	c := New()

	assert.Equal(t, DefaultName, c.Name)
	assert.Equal(t, "#ff0000", palette.Hex(c.Color()))
	assert.Equal(t, c.Color(), c.HoverColor())
	assert.Equal(t, DefaultSelectionColor, c.SelectionColor())
	assert.Equal(t, DefaultSourceSize, c.SourceSize())
	assert.Equal(t, ShapeNamed, c.Shape().Kind())
	assert.Equal(t, MarkerSquare, c.Shape().Marker())
	assert.True(t, c.IsShowing())
	assert.NotEqual(t, New().ID, c.ID)
}

func TestNew_PaletteCycles(t *testing.T) {
	p, err := palette.New("#112233", "#445566")
	require.NoError(t, err)

	a := New(WithPalette(p))
	b := New(WithPalette(p))
	assert.Equal(t, "#112233", palette.Hex(a.Color()))
	assert.Equal(t, "#445566", palette.Hex(b.Color()))
}

func TestBuildSources(t *testing.T) {
	tbl := &table.Table{
		Name: "test",
		Columns: []field.Column{
			{Name: "main id"},
			{Name: "RAJ2000"},
			{Name: "DEJ2000"},
			{Name: "mag"},
		},
		Rows: [][]any{
			{"a", 10.5, -20.25, 12.1},
			{"b", nil, 5.0, 13.0},
			{"c", "00:42:44.3", "+41:16:09", 3.4},
			{"d", "150.5", "2.25", 9.9},
			{"e", "not", "valid", 1.0},
			{"f", []byte("12"), int64(-3), 7.0},
		},
	}
	m := field.Parse(tbl.Columns, "", "")

	var diags []Diagnostic
	got := BuildSources(tbl, m, 0, func(d Diagnostic) { diags = append(diags, d) })

	require.Len(t, got, 4)
	assert.Equal(t, []int{0, 2, 3, 5}, []int{got[0].RowIndex, got[1].RowIndex, got[2].RowIndex, got[3].RowIndex})

	assert.Equal(t, 10.5, got[0].RA)
	assert.Equal(t, -20.25, got[0].Dec)
	assert.InDelta(t, 10.684583333, got[1].RA, 1e-6)
	assert.InDelta(t, 41.269166667, got[1].Dec, 1e-6)
	assert.Equal(t, 150.5, got[2].RA)
	assert.Equal(t, 12.0, got[3].RA)
	assert.Equal(t, -3.0, got[3].Dec)

	// Every column is kept verbatim under its normalized name.
	assert.Equal(t, map[string]any{"main_id": "c", "RAJ2000": "00:42:44.3", "DEJ2000": "+41:16:09", "mag": 3.4}, got[1].Data)

	require.Len(t, diags, 1)
	assert.Equal(t, DiagCoordinate, diags[0].Kind)
	assert.Equal(t, 4, diags[0].RowIndex)
	assert.Error(t, diags[0].Err)
}

func TestBuildSources_Limit(t *testing.T) {
	tbl := table.FromArray("t", []string{"ra", "dec"}, [][]any{{1.0, 1.0}, {nil, 2.0}, {3.0, 3.0}, {4.0, 4.0}})
	got := BuildSources(tbl, field.Parse(tbl.Columns, "", ""), 2, nil)
	require.Len(t, got, 2)
	assert.Equal(t, 3.0, got[1].RA)
}

func TestAddSources_DerivesFields(t *testing.T) {
	c := newTestCatalog(t)
	c.AddSources(NewSource(1, 2, map[string]any{"ra": 1.0, "dec": 2.0, "name": "x"}))

	require.NotNil(t, c.Fields())
	raField, ok := c.Fields().RA()
	require.True(t, ok)
	assert.Equal(t, "ra", raField.Name)
	assert.Same(t, c, c.Source(0).Catalog())
	assert.Nil(t, c.Source(1))
	assert.Nil(t, c.Source(-1))
}

func TestAddSourcesAsArray(t *testing.T) {
	c := newTestCatalog(t, WithFields("lon", "lat"))
	c.AddSourcesAsArray([]string{"name", "lon", "lat"}, [][]any{
		{"m31", 10.68, 41.27},
		{"m33", 23.46, 30.66},
	})

	require.Equal(t, 2, c.Len())
	assert.Equal(t, 23.46, c.Source(1).RA)
	assert.Equal(t, "m33", c.Source(1).Data["name"])
	assertParallel(t, c)
}

func TestParallelArrays_AddRemove(t *testing.T) {
	c := newTestCatalog(t)
	srcs := sources(20)

	c.AddSources(srcs[:5]...)
	assertParallel(t, c)
	c.Remove(srcs[2])
	assertParallel(t, c)
	c.AddSources(srcs[5:]...)
	assertParallel(t, c)
	c.Remove(srcs[0])
	c.Remove(srcs[19])
	assertParallel(t, c)
	assert.Equal(t, 17, c.Len())

	// Removing an unknown or already removed source is a no-op.
	c.Remove(srcs[0])
	c.Remove(NewSource(0, 0, nil))
	assert.Equal(t, 17, c.Len())
	assertParallel(t, c)
}

func TestRemove_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	c := newTestCatalog(t)
	srcs := sources(50)
	c.AddSources(srcs...)

	for _, i := range rng.Perm(len(srcs)) {
		c.Remove(srcs[i])
		assertParallel(t, c)
	}

	assert.Zero(t, c.Len())
	ra, dec := c.Positions()
	assert.Empty(t, ra)
	assert.Empty(t, dec)
	assert.Empty(t, c.Sources())
}

func TestRemove_WhileRangingSources(t *testing.T) {
	c := newTestCatalog(t)
	c.AddSources(sources(4)...)

	for _, src := range c.Sources() {
		c.Remove(src)
	}

	assert.Zero(t, c.Len())
	ra, dec := c.Positions()
	assert.Empty(t, ra)
	assert.Empty(t, dec)
}

func TestPositions_ReturnsCopies(t *testing.T) {
	c := newTestCatalog(t)
	c.AddSources(sources(2)...)

	ra, dec := c.Positions()
	ra[0], dec[0] = -1, -1
	srcs := c.Sources()
	srcs[1] = nil

	assertParallel(t, c)
	assert.NotNil(t, c.Source(1))
}

func TestRemove_Deselects(t *testing.T) {
	c := newTestCatalog(t)
	src := NewSource(1, 1, nil)
	c.AddSources(src)
	src.Select()

	c.Remove(src)
	assert.False(t, src.IsSelected())
	assert.Nil(t, src.Catalog())
}

func TestRemoveAll(t *testing.T) {
	c := newTestCatalog(t, WithShape(GeneratorShape(func(src *Source) ([]shape.Shape, error) {
		return []shape.Shape{shape.NewCircle(src.RA, src.Dec, 5)}, nil
	})))
	c.AddSources(sources(3)...)
	c.Draw(testutil.NewRecordingSurface(), newProjector(), 800, 600)
	require.Len(t, c.Footprints(), 3)

	c.Clear()
	assert.Zero(t, c.Len())
	assert.Empty(t, c.Footprints())
	assertParallel(t, c)
}

func TestSelectAll(t *testing.T) {
	c := newTestCatalog(t)
	c.AddSources(sources(3)...)

	c.SelectAll()
	for _, s := range c.Sources() {
		assert.True(t, s.IsSelected())
	}
	c.DeselectAll()
	for _, s := range c.Sources() {
		assert.False(t, s.IsSelected())
	}
}

func TestRedrawRequests(t *testing.T) {
	redraws := &testutil.Redraws{}
	c := newTestCatalog(t, WithRedrawRequester(redraws))
	start := redraws.N

	c.AddSources(sources(2)...)
	c.Source(0).Select()
	c.Source(0).Select() // unchanged
	c.Source(1).Hover()
	c.SetColor(blue)
	c.Hide()
	c.Hide() // unchanged

	assert.Equal(t, start+5, redraws.N)
}

func TestUpdateShape(t *testing.T) {
	t.Run("named stamps", func(t *testing.T) {
		c := newTestCatalog(t, WithSourceSize(9))
		assert.Equal(t, 9, c.stamps.normal.Bounds().Dx())
		assert.Equal(t, 11, c.stamps.selected.Bounds().Dx())
		assert.Equal(t, 11, c.stamps.hovered.Bounds().Dx())
		assert.Equal(t, MarkerSize, c.stamps.marker.Bounds().Dx())
	})

	t.Run("image forces source size", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 16, 16))
		c := newTestCatalog(t, WithSourceSize(4), WithShape(ImageShape(img)))
		assert.Equal(t, 16.0, c.SourceSize())
		assert.Same(t, img, c.stamps.normal)
		assert.Equal(t, 18, c.stamps.selected.Bounds().Dx())

		c.SetSourceSize(30)
		assert.Equal(t, 16.0, c.SourceSize())
	})

	t.Run("drawer has no stamps", func(t *testing.T) {
		c := newTestCatalog(t, WithShape(DrawerShape(func(*Source, render.Surface, render.ViewParams) {})))
		assert.Nil(t, c.stamps.normal)
		assert.Nil(t, c.stamps.selected)
	})

	t.Run("generator falls back to squares", func(t *testing.T) {
		c := newTestCatalog(t, WithShape(GeneratorShape(func(*Source) ([]shape.Shape, error) { return nil, nil })))
		assert.NotNil(t, c.stamps.normal)
	})

	t.Run("hover colour follows colour until set", func(t *testing.T) {
		c := newTestCatalog(t)
		c.SetColor(blue)
		assert.Equal(t, blue, c.HoverColor())

		c.SetHoverColor(green)
		c.SetColor(red)
		assert.Equal(t, green, c.HoverColor())
	})

	t.Run("unset options are kept", func(t *testing.T) {
		c := newTestCatalog(t, WithSourceSize(5))
		c.UpdateShape(StyleOptions{SelectionColor: blue})
		assert.Equal(t, 5.0, c.SourceSize())
		assert.Equal(t, red, c.Color())
		assert.Equal(t, blue, c.SelectionColor())
	})
}

func TestParseMarker(t *testing.T) {
	for i, name := range []string{"square", "circle", "plus", "cross", "rhomb", "triangle"} {
		m, err := ParseMarker(name)
		require.NoError(t, err)
		assert.Equal(t, Marker(i), m)
		assert.Equal(t, name, m.String())
	}
	m, err := ParseMarker(" Plus ")
	require.NoError(t, err)
	assert.Equal(t, MarkerPlus, m)

	_, err = ParseMarker("star")
	assert.Error(t, err)
}

func TestSourceStateChanges(t *testing.T) {
	s := NewSource(1, 2, nil)
	assert.True(t, s.IsShowing())
	assert.NotNil(t, s.Data)
	assert.Equal(t, -1, s.RowIndex)

	s.Hover()
	assert.True(t, s.IsHovered())
	s.Unhover()
	assert.False(t, s.IsHovered())
	s.Hide()
	assert.False(t, s.IsShowing())
	s.Show()
	assert.True(t, s.IsShowing())
	s.SetMarker(true)
	assert.True(t, s.IsMarker())
}

func TestRegionGenerator(t *testing.T) {
	gen := RegionGenerator("s_region")

	shapes, err := gen(NewSource(0, 0, map[string]any{"s_region": "POLYGON ICRS 0 0 1 0 1 1"}))
	require.NoError(t, err)
	assert.Len(t, shapes, 1)

	shapes, err = gen(NewSource(0, 0, nil))
	require.NoError(t, err)
	assert.Empty(t, shapes)
}

func TestAddTable_ObsCore(t *testing.T) {
	tbl := &table.Table{
		Columns: []field.Column{{Name: "obs_id"}, {Name: "s_ra"}, {Name: "s_dec"}, {Name: "s_region"}},
		Rows: [][]any{
			{"a", 20.0, 10.0, "POLYGON ICRS 10 0 30 0 30 20 10 20"},
			{"b", 50.0, 10.0, nil},
		},
	}
	c := newTestCatalog(t)
	c.AddTable(tbl)

	require.Equal(t, 2, c.Len())
	assert.True(t, c.Fields().IsObsCore())
	assert.Equal(t, ShapeGenerator, c.Shape().Kind())

	c.Draw(testutil.NewRecordingSurface(), newProjector(), 800, 600)
	require.Len(t, c.Footprints(), 1)
	assert.Same(t, c.Source(0), c.Footprints()[0].Source)
}

func TestAddTable_ExplicitShapeWins(t *testing.T) {
	tbl := &table.Table{
		Columns: []field.Column{{Name: "s_ra"}, {Name: "s_dec"}, {Name: "s_region"}},
		Rows:    [][]any{{20.0, 10.0, "CIRCLE 20 10 1"}},
	}
	c := newTestCatalog(t, WithShape(NamedShape(MarkerCross)))
	c.AddTable(tbl)
	assert.Equal(t, ShapeNamed, c.Shape().Kind())
}

func TestAddTable_LimitAndDiagnostics(t *testing.T) {
	var diags []Diagnostic
	c := newTestCatalog(t, WithLimit(1), WithDiagnostics(func(d Diagnostic) { diags = append(diags, d) }))
	c.AddTable(table.FromArray("t", []string{"ra", "dec"}, [][]any{{"bad", "bad"}, {1.0, 2.0}, {3.0, 4.0}}))

	assert.Equal(t, 1, c.Len())
	require.Len(t, diags, 1)
	assert.Equal(t, 0, diags[0].RowIndex)
}

var errBoom = errors.New("boom")
