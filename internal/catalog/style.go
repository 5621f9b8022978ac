package catalog

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/leapstack-labs/skyoverlay/internal/palette"
	"github.com/leapstack-labs/skyoverlay/internal/raster"
	"github.com/leapstack-labs/skyoverlay/pkg/render"
	"github.com/leapstack-labs/skyoverlay/pkg/shape"
)

// Defaults for new catalogs.
const (
	DefaultName       = "catalog"
	DefaultSourceSize = 8.0
	// MarkerSize is the size of the default marker icon.
	MarkerSize = 12

	stampLineWidth = 2
)

// DefaultSelectionColor is the stamp colour of selected sources.
var DefaultSelectionColor = palette.MustParse("#00ff00")

var markerOutline = palette.MustParse("#cccccc")

// Marker is a built-in source symbol.
type Marker int

// Built-in markers.
const (
	MarkerSquare Marker = iota
	MarkerCircle
	MarkerPlus
	MarkerCross
	MarkerRhomb
	MarkerTriangle
)

var markerNames = []string{"square", "circle", "plus", "cross", "rhomb", "triangle"}

func (m Marker) String() string {
	if int(m) < len(markerNames) {
		return markerNames[m]
	}
	return fmt.Sprintf("Marker(%d)", int(m))
}

// ParseMarker reads a marker name case-insensitively.
func ParseMarker(s string) (Marker, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range markerNames {
		if n == name {
			return Marker(i), nil
		}
	}
	return 0, fmt.Errorf("unknown marker %q (supported: %s)", s, strings.Join(markerNames, ", "))
}

// Generator derives footprint shapes from a source.
type Generator func(src *Source) ([]shape.Shape, error)

// Drawer draws a source directly onto the surface.
type Drawer func(src *Source, s render.Surface, view render.ViewParams)

// ShapeKind tags the variant held by a Shape.
type ShapeKind int

// Shape variants.
const (
	ShapeNamed ShapeKind = iota
	ShapeImage
	ShapeGenerator
	ShapeDrawer
)

// Shape selects how sources are drawn: a built-in marker, an image, a
// footprint generator or a custom drawer. The zero value is a square marker.
type Shape struct {
	kind      ShapeKind
	marker    Marker
	image     image.Image
	generator Generator
	drawer    Drawer
}

// NamedShape draws sources with a built-in marker.
func NamedShape(m Marker) Shape { return Shape{kind: ShapeNamed, marker: m} }

// ImageShape draws sources with img. The source size becomes the image width.
func ImageShape(img image.Image) Shape { return Shape{kind: ShapeImage, image: img} }

// GeneratorShape draws a footprint per source.
func GeneratorShape(g Generator) Shape { return Shape{kind: ShapeGenerator, generator: g} }

// DrawerShape hands every visible source to d.
func DrawerShape(d Drawer) Shape { return Shape{kind: ShapeDrawer, drawer: d} }

// Kind returns the variant tag.
func (s Shape) Kind() ShapeKind { return s.kind }

// Marker returns the built-in marker for ShapeNamed.
func (s Shape) Marker() Marker { return s.marker }

func (s Shape) String() string {
	switch s.kind {
	case ShapeImage:
		return "image"
	case ShapeGenerator:
		return "footprint"
	case ShapeDrawer:
		return "custom"
	default:
		return s.marker.String()
	}
}

// StyleOptions carries style changes. Zero fields are left unchanged.
type StyleOptions struct {
	Color          color.Color
	SelectionColor color.Color
	HoverColor     color.Color
	SourceSize     float64
	Shape          *Shape
}

// stamps are the pre-rendered source images.
type stamps struct {
	normal, selected, hovered image.Image
	marker                    image.Image
}

// buildStamps renders the normal stamp at size and the selected and hovered
// stamps at size+2. Drawer shapes get no stamps; generator shapes fall back
// to squares for sources without a legible footprint.
func buildStamps(sh Shape, size float64, col, selCol, hoverCol color.Color) stamps {
	var st stamps
	st.marker = markerIcon(col)

	switch sh.kind {
	case ShapeDrawer:
		return st
	case ShapeImage:
		st.normal = sh.image
		st.selected = framedImage(sh.image, selCol)
		st.hovered = framedImage(sh.image, hoverCol)
		return st
	}

	m := sh.marker
	if sh.kind == ShapeGenerator {
		m = MarkerSquare
	}
	st.normal = markerStamp(m, size, col)
	st.selected = markerStamp(m, size+2, selCol)
	st.hovered = markerStamp(m, size+2, hoverCol)
	return st
}

// markerStamp strokes a built-in marker on a square canvas.
func markerStamp(m Marker, size float64, col color.Color) image.Image {
	n := int(math.Ceil(size))
	if n < 1 {
		n = 1
	}
	s := float64(n)
	c := raster.New(n, n)
	c.SetStrokeColor(col)
	c.SetLineWidth(stampLineWidth)
	c.BeginPath()

	switch m {
	case MarkerPlus:
		c.MoveTo(s/2, 0)
		c.LineTo(s/2, s)
		c.MoveTo(0, s/2)
		c.LineTo(s, s/2)
	case MarkerCross:
		c.MoveTo(0, 0)
		c.LineTo(s-1, s-1)
		c.MoveTo(s-1, 0)
		c.LineTo(0, s-1)
	case MarkerRhomb:
		c.MoveTo(0, s/2)
		c.LineTo(s/2, 0)
		c.LineTo(s, s/2)
		c.LineTo(s/2, s)
		c.LineTo(0, s/2)
	case MarkerTriangle:
		c.MoveTo(1, s-1)
		c.LineTo(s/2, 1)
		c.LineTo(s-1, s-1)
		c.LineTo(1, s-1)
	case MarkerCircle:
		c.Arc(s/2, s/2, s/2-1, 0, 2*math.Pi)
	default:
		c.MoveTo(1, 0)
		c.LineTo(1, s-1)
		c.LineTo(s-1, s-1)
		c.LineTo(s-1, 1)
		c.LineTo(1, 1)
	}
	c.Stroke()
	return c.Image()
}

// markerIcon is the default marker: a filled disc with a grey outline.
func markerIcon(col color.Color) image.Image {
	c := raster.New(MarkerSize, MarkerSize)
	half := float64(MarkerSize) / 2
	c.BeginPath()
	c.Arc(half, half, half-2, 0, 2*math.Pi)
	c.SetFillColor(col)
	c.Fill()
	c.SetStrokeColor(markerOutline)
	c.SetLineWidth(2)
	c.Stroke()
	return c.Image()
}

// framedImage centres img on a canvas two pixels larger with a coloured
// one-pixel frame.
func framedImage(img image.Image, col color.Color) image.Image {
	b := img.Bounds()
	w, h := b.Dx()+2, b.Dy()+2
	c := raster.New(w, h)
	c.DrawImage(img, 1, 1)
	c.SetStrokeColor(col)
	c.SetLineWidth(1)
	c.BeginPath()
	c.MoveTo(0.5, 0.5)
	c.LineTo(float64(w)-0.5, 0.5)
	c.LineTo(float64(w)-0.5, float64(h)-0.5)
	c.LineTo(0.5, float64(h)-0.5)
	c.ClosePath()
	c.Stroke()
	return c.Image()
}
