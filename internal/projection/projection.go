// Package projection maps equatorial coordinates to screen pixels with the
// gnomonic (TAN) and orthographic (SIN) projections. The view is centred on
// a sky position; east points left and north points up.
package projection

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/leapstack-labs/skyoverlay/pkg/render"
)

// Kind names a projection.
type Kind string

// Supported projections.
const (
	TAN Kind = "TAN"
	SIN Kind = "SIN"
)

// maxFoV bounds the horizontal field of view per projection, in degrees.
var maxFoV = map[Kind]float64{
	TAN: 179,
	SIN: 180,
}

// ErrInvalidView is returned for view parameters that cannot be projected.
var ErrInvalidView = errors.New("invalid view")

const deg = math.Pi / 180

// ParseKind reads a projection name case-insensitively. An empty name
// selects TAN.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToUpper(strings.TrimSpace(s))); k {
	case "":
		return TAN, nil
	case TAN, SIN:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown projection %q (supported: TAN, SIN)", ErrInvalidView, s)
	}
}

// Projector implements render.Projector for a fixed view.
type Projector struct {
	view render.ViewParams
	kind Kind

	// east, north and centre unit vectors of the tangent plane
	east, north, center r3.Vec
	// basis holds east, north and centre as rows
	basis *mat.Dense
	// scale is pixels per unit of projected plane coordinate
	scale float64
}

var _ render.Projector = (*Projector)(nil)

// New builds a projector for the view.
func New(view render.ViewParams) (*Projector, error) {
	p := &Projector{}
	if err := p.SetView(view); err != nil {
		return nil, err
	}
	return p, nil
}

// SetView replaces the current view.
func (p *Projector) SetView(view render.ViewParams) error {
	kind, err := ParseKind(view.Projection)
	if err != nil {
		return err
	}
	if view.Width <= 0 || view.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidView, view.Width, view.Height)
	}
	if view.FoV <= 0 || view.FoV > maxFoV[kind] || !render.IsFinite(view.FoV) {
		return fmt.Errorf("%w: field of view %g out of range (0, %g]", ErrInvalidView, view.FoV, maxFoV[kind])
	}
	if view.CenterDec < -90 || view.CenterDec > 90 || !render.IsFinite(view.CenterRA) {
		return fmt.Errorf("%w: centre (%g, %g)", ErrInvalidView, view.CenterRA, view.CenterDec)
	}

	view.Projection = string(kind)
	view.CenterRA = normalizeRA(view.CenterRA)
	p.view, p.kind = view, kind

	a, d := view.CenterRA*deg, view.CenterDec*deg
	p.center = unitVector(view.CenterRA, view.CenterDec)
	p.east = r3.Vec{X: -math.Sin(a), Y: math.Cos(a), Z: 0}
	p.north = r3.Vec{X: -math.Sin(d) * math.Cos(a), Y: -math.Sin(d) * math.Sin(a), Z: math.Cos(d)}
	p.basis = mat.NewDense(3, 3, []float64{
		p.east.X, p.east.Y, p.east.Z,
		p.north.X, p.north.Y, p.north.Z,
		p.center.X, p.center.Y, p.center.Z,
	})

	half := view.FoV / 2 * deg
	switch kind {
	case SIN:
		p.scale = float64(view.Width) / 2 / math.Sin(half)
	default:
		p.scale = float64(view.Width) / 2 / math.Tan(half)
	}
	return nil
}

// ViewParams returns the current view.
func (p *Projector) ViewParams() render.ViewParams { return p.view }

// Kind returns the projection in use.
func (p *Projector) Kind() Kind { return p.kind }

// WorldToScreen projects every position in one matrix product. Positions on
// the far side of the projection plane come back as NaN.
func (p *Projector) WorldToScreen(ra, dec []float64) []float64 {
	n := len(ra)
	if len(dec) < n {
		n = len(dec)
	}
	out := make([]float64, 2*n)
	if n == 0 {
		return out
	}

	vecs := mat.NewDense(3, n, nil)
	for i := 0; i < n; i++ {
		v := unitVector(ra[i], dec[i])
		vecs.Set(0, i, v.X)
		vecs.Set(1, i, v.Y)
		vecs.Set(2, i, v.Z)
	}
	var local mat.Dense
	local.Mul(p.basis, vecs)

	w2, h2 := float64(p.view.Width)/2, float64(p.view.Height)/2
	for i := 0; i < n; i++ {
		x, y, z := local.At(0, i), local.At(1, i), local.At(2, i)
		xi, eta, ok := p.plane(x, y, z)
		if !ok || !render.IsFinite(ra[i]) || !render.IsFinite(dec[i]) || math.Abs(dec[i]) > 90 {
			out[2*i], out[2*i+1] = math.NaN(), math.NaN()
			continue
		}
		out[2*i] = w2 - xi*p.scale
		out[2*i+1] = h2 - eta*p.scale
	}
	return out
}

// plane converts tangent-frame cartesian coordinates to plane coordinates.
func (p *Projector) plane(x, y, z float64) (xi, eta float64, ok bool) {
	switch p.kind {
	case SIN:
		if z < 0 {
			return 0, 0, false
		}
		return x, y, true
	default:
		if z <= 1e-10 {
			return 0, 0, false
		}
		return x / z, y / z, true
	}
}

// ScreenToWorld inverts WorldToScreen. ok is false for screen points outside
// the projected sphere.
func (p *Projector) ScreenToWorld(sx, sy float64) (ra, dec float64, ok bool) {
	if !render.IsFinite(sx) || !render.IsFinite(sy) {
		return 0, 0, false
	}
	xi := (float64(p.view.Width)/2 - sx) / p.scale
	eta := (float64(p.view.Height)/2 - sy) / p.scale

	var v r3.Vec
	switch p.kind {
	case SIN:
		rho2 := xi*xi + eta*eta
		if rho2 > 1 {
			return 0, 0, false
		}
		v = r3.Add(r3.Add(r3.Scale(xi, p.east), r3.Scale(eta, p.north)), r3.Scale(math.Sqrt(1-rho2), p.center))
	default:
		v = r3.Unit(r3.Add(r3.Add(r3.Scale(xi, p.east), r3.Scale(eta, p.north)), p.center))
	}
	ra = normalizeRA(math.Atan2(v.Y, v.X) / deg)
	dec = math.Asin(math.Max(-1, math.Min(1, v.Z))) / deg
	return ra, dec, true
}

// Separation returns the angular distance between two positions in degrees.
func Separation(ra1, dec1, ra2, dec2 float64) float64 {
	a, b := unitVector(ra1, dec1), unitVector(ra2, dec2)
	return math.Atan2(r3.Norm(r3.Cross(a, b)), r3.Dot(a, b)) / deg
}

func unitVector(ra, dec float64) r3.Vec {
	a, d := ra*deg, dec*deg
	return r3.Vec{X: math.Cos(d) * math.Cos(a), Y: math.Cos(d) * math.Sin(a), Z: math.Sin(d)}
}

func normalizeRA(ra float64) float64 {
	ra = math.Mod(ra, 360)
	if ra < 0 {
		ra += 360
	}
	return ra
}
