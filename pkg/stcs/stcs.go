// Package stcs parses the subset of the STC-S region language used for sky
// overlays and footprints:
//
//	POLYGON [frame] ra1 dec1 ra2 dec2 ...
//	CIRCLE  [frame] ra dec radius
//
// Frames icrs, j2000 and fk5 are accepted case-insensitively; a missing frame
// means ICRS. Parsing never fails: unknown keywords are skipped one token at a
// time, shapes in unknown frames are dropped and malformed numbers end the
// shape being read. A polygon needs two vertices to be drawn; shorter ones
// are dropped with a notice.
package stcs

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/skyoverlay/pkg/shape"
)

// Frames lists the accepted reference frames.
var Frames = []string{"icrs", "j2000", "fk5"}

// minPolygonVertices is the smallest vertex count that draws anything.
const minPolygonVertices = 2

// Notice describes input the parser skipped.
type Notice struct {
	Offset  int    // token index
	Token   string // offending token
	Message string
}

func (n Notice) String() string {
	return fmt.Sprintf("token %d %q: %s", n.Offset, n.Token, n.Message)
}

// Parse returns the shapes described by text.
func Parse(text string) []shape.Shape {
	shapes, _ := Inspect(text)
	return shapes
}

// ParseWith parses text and applies st to every shape.
func ParseWith(text string, st shape.Style) []shape.Shape {
	shapes := Parse(text)
	for _, s := range shapes {
		s.SetStyle(st)
	}
	return shapes
}

// Inspect parses text and also reports what was skipped.
func Inspect(text string) ([]shape.Shape, []Notice) {
	p := &parser{tokens: strings.Fields(text)}
	p.run()
	return p.shapes, p.notices
}

type parser struct {
	tokens  []string
	pos     int
	shapes  []shape.Shape
	notices []Notice
}

func (p *parser) run() {
	for p.pos < len(p.tokens) {
		switch strings.ToLower(p.tokens[p.pos]) {
		case "polygon":
			p.pos++
			p.parsePolygon()
		case "circle":
			p.pos++
			p.parseCircle()
		default:
			p.notice("unrecognized token")
			p.pos++
		}
	}
}

// parseFrame consumes an optional frame token. It returns false when the
// frame is present but not supported.
func (p *parser) parseFrame() bool {
	if p.pos >= len(p.tokens) {
		return true
	}
	tok := p.tokens[p.pos]
	if _, ok := p.number(p.pos); ok {
		return true
	}
	if isFrame(tok) {
		p.pos++
		return true
	}
	p.notice("unsupported frame, shape dropped")
	p.pos++
	return false
}

func (p *parser) parsePolygon() {
	if !p.parseFrame() {
		return
	}
	var points []shape.SkyPoint
	for p.pos+1 < len(p.tokens) {
		ra, ok := p.number(p.pos)
		if !ok {
			break
		}
		dec, ok := p.number(p.pos + 1)
		if !ok {
			break
		}
		points = append(points, shape.SkyPoint{RA: ra, Dec: dec})
		p.pos += 2
	}
	if len(points) < minPolygonVertices {
		p.notice(fmt.Sprintf("polygon with %d vertices dropped", len(points)))
		return
	}
	p.shapes = append(p.shapes, shape.NewPolygon(points))
}

func (p *parser) parseCircle() {
	if !p.parseFrame() {
		return
	}
	var vals [3]float64
	for i := range vals {
		v, ok := p.number(p.pos)
		if !ok {
			p.notice("circle expects ra dec radius, shape dropped")
			return
		}
		vals[i] = v
		p.pos++
	}
	p.shapes = append(p.shapes, shape.NewCircle(vals[0], vals[1], vals[2]))
}

// number parses the token at i as a float.
func (p *parser) number(i int) (float64, bool) {
	if i >= len(p.tokens) {
		return 0, false
	}
	v, err := strconv.ParseFloat(p.tokens[i], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (p *parser) notice(msg string) {
	n := Notice{Offset: p.pos, Message: msg}
	if p.pos < len(p.tokens) {
		n.Token = p.tokens[p.pos]
	}
	p.notices = append(p.notices, n)
}

func isFrame(tok string) bool {
	for _, f := range Frames {
		if strings.EqualFold(tok, f) {
			return true
		}
	}
	return false
}
