// Package palette assigns default colours to catalogs and overlays and
// parses the colour strings found in configuration files.
package palette

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// classic is the colour cycle handed out to new layers.
var classic = []string{
	"#ff0000", "#0000ff", "#99cc00", "#ffff00", "#000066",
	"#00ffff", "#9900cc", "#0099cc", "#cc9900", "#cc0099",
	"#00cc99", "#663333", "#ffcc9a", "#ff9acc", "#ccff33",
	"#660000", "#ffcc33", "#ff00ff", "#00ff00", "#ffffff",
}

// Palette cycles through a fixed list of colours. It is not safe for
// concurrent use.
type Palette struct {
	colors []color.Color
	next   int
}

// New returns a palette cycling through the given hex colours.
func New(hexes ...string) (*Palette, error) {
	p := &Palette{}
	for _, h := range hexes {
		c, err := Parse(h)
		if err != nil {
			return nil, err
		}
		p.colors = append(p.colors, c)
	}
	if len(p.colors) == 0 {
		return nil, fmt.Errorf("palette needs at least one colour")
	}
	return p, nil
}

// Next returns the next colour, wrapping around at the end.
func (p *Palette) Next() color.Color {
	c := p.colors[p.next%len(p.colors)]
	p.next++
	return c
}

// Reset rewinds the palette to its first colour.
func (p *Palette) Reset() { p.next = 0 }

// Default is the process-wide palette used when no colour is configured.
var Default = mustClassic()

// ResetDefault rewinds Default. Tests use it for deterministic colours.
func ResetDefault() { Default.Reset() }

func mustClassic() *Palette {
	p, err := New(classic...)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse reads "#rgb", "#rrggbb", "rgb(r, g, b)" or a CSS colour name.
func Parse(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty colour")
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(lower)
		if err != nil {
			return nil, fmt.Errorf("invalid colour %q: %w", s, err)
		}
		return toRGBA(c), nil
	case strings.HasPrefix(lower, "rgb(") || strings.HasPrefix(lower, "rgba("):
		return parseFunctional(lower)
	}
	if c, ok := colornames.Map[lower]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown colour %q", s)
}

// MustParse is Parse for compile-time constants.
func MustParse(s string) color.Color {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseFunctional(s string) (color.Color, error) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return nil, fmt.Errorf("invalid colour %q", s)
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return nil, fmt.Errorf("invalid colour %q", s)
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		var v int
		if _, err := fmt.Sscanf(strings.TrimSpace(parts[i]), "%d", &v); err != nil || v < 0 || v > 255 {
			return nil, fmt.Errorf("invalid colour %q", s)
		}
		rgb[i] = uint8(v)
	}
	alpha := 1.0
	if len(parts) == 4 {
		if _, err := fmt.Sscanf(strings.TrimSpace(parts[3]), "%g", &alpha); err != nil || alpha < 0 || alpha > 1 {
			return nil, fmt.Errorf("invalid colour %q", s)
		}
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: uint8(alpha*255 + 0.5)}, nil
}

// Hex formats a colour as "#rrggbb".
func Hex(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}

// IncreaseBrightness moves every channel of c percent of the way towards
// white.
func IncreaseBrightness(c color.Color, percent float64) color.Color {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return c
	}
	return toRGBA(cf.BlendRgb(colorful.Color{R: 1, G: 1, B: 1}, percent/100).Clamped())
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
