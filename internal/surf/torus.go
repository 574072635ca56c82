package surf

import (
	"math"

	"github.com/cpmech/mcgeom/internal/bbox"
	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/mat"
	"github.com/cpmech/mcgeom/internal/quartic"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// Torus implements the TX/TY/TZ surfaces (spec.md §3/§4.5): center,
// axis, major radius R and the two tube semi-axes (a along the axis,
// b in the perpendicular plane). The implicit function is rotationally
// symmetric about the axis, so it is evaluated directly from the
// (along-axis, perpendicular-distance) decomposition rather than via a
// stored canonical-frame matrix: F = [b²z²+a²(p²+R²-b²)]²-4a⁴R²p²,
// where z is distance along the axis from center and p is the
// perpendicular distance (spec.md §3).
type Torus struct {
	id       int32
	name     string
	reversed bool
	Center   vec3.Vector
	Axis     vec3.Vector // unit vector
	R        float64     // major radius
	A        float64     // tube semi-axis along the torus axis
	B        float64     // tube semi-axis in the perpendicular plane
}

func NewTorus(id int32, name string, center, axis vec3.Vector, r, a, b float64) (*Torus, error) {
	ax, ok := axis.Normalized()
	if !ok {
		return nil, geomerr.New(geomerr.DegenerateGeometry, "torus %q: axis vector has near-zero length", name)
	}
	return &Torus{id: id, name: name, Center: center, Axis: ax, R: r, A: a, B: b}, nil
}

func (t *Torus) ID() int32      { return t.id }
func (t *Torus) Name() string   { return t.name }
func (t *Torus) Kind() Kind     { return KindTorus }
func (t *Torus) Reversed() bool { return t.reversed }

// decompose splits x-center into (along-axis distance, perpendicular vector).
func (t *Torus) decompose(x vec3.Vector) (along float64, perp vec3.Vector) {
	d := x.Sub(t.Center)
	along = d.Dot(t.Axis)
	perp = d.Sub(t.Axis.Scale(along))
	return
}

func (t *Torus) value(x vec3.Vector) float64 {
	z, perp := t.decompose(x)
	p2 := perp.Dot(perp)
	a2, b2, r2 := t.A*t.A, t.B*t.B, t.R*t.R
	bracket := b2*z*z + a2*(p2+r2-b2)
	// this quartic is >=0 outside the tube and <=0 inside it, so the
	// unreversed forward side is the (unbounded) exterior; spec.md §4.5
	// accordingly gives the tight bounding box to the reversed (inside)
	// orientation rather than the unreversed one.
	return bracket*bracket - 4*a2*a2*r2*p2
}

func (t *Torus) IsForward(x vec3.Vector) bool {
	v := t.value(x)
	if t.reversed {
		v = -v
	}
	return forwardTest(v, t.reversed)
}

// Intersect substitutes x=p+t*u into the canonical quartic and solves
// for the smallest non-negative root via Ferrari's method (spec.md
// §4.5), following the c2/s2 quadratic expansion of z(t) and the
// perpendicular-distance-squared s(t).
func (t *Torus) Intersect(p, u vec3.Vector) vec3.Vector {
	pc := p.Sub(t.Center)
	z0 := pc.Dot(t.Axis)
	z1 := u.Dot(t.Axis)
	perpP := pc.Sub(t.Axis.Scale(z0))
	perpU := u.Sub(t.Axis.Scale(z1))

	s0 := perpP.Dot(perpP)
	s1 := 2 * perpP.Dot(perpU)
	s2 := perpU.Dot(perpU)

	a2, b2, r2 := t.A*t.A, t.B*t.B, t.R*t.R

	q0 := b2*z0*z0 + a2*(s0+r2-b2)
	q1 := 2*b2*z0*z1 + a2*s1
	q2 := b2*z1*z1 + a2*s2

	k := 4 * a2 * a2 * r2
	a4 := q2 * q2
	a3 := 2 * q1 * q2
	a2c := q1*q1 + 2*q0*q2 - k*s2
	a1 := 2*q0*q1 - k*s1
	a0 := q0*q0 - k*s0

	var root float64
	var ok bool
	if math.Abs(a4) < 1e-12 {
		if math.Abs(a3) < 1e-12 {
			return vec3.Invalid() // degenerates below a quartic: no useful ray family here
		}
		root, ok = smallestPositiveCubicRoot(a3, a2c, a1, a0)
	} else {
		root, ok = quartic.SmallestPositiveRoot(a4, a3, a2c, a1, a0)
	}
	if !ok {
		return vec3.Invalid()
	}
	return p.Add(u.Scale(root))
}

func smallestPositiveCubicRoot(b, c, d, e float64) (float64, bool) {
	roots := quartic.SolveCubicReal(c/b, d/b, e/b)
	best, found := math.Inf(1), false
	for _, r := range roots {
		if r > 1e-9 && r < best {
			best, found = r, true
		}
	}
	return best, found
}

func (t *Torus) Transform(aff mat.Affine) Surface {
	center2 := aff.Apply(t.Center)
	axis2 := aff.R.MulVec(t.Axis)
	n, ok := axis2.Normalized()
	if !ok {
		n = t.Axis
	}
	return &Torus{id: t.id, name: t.name, reversed: t.reversed, Center: center2, Axis: n, R: t.R, A: t.A, B: t.B}
}

func (t *Torus) Renamed(id int32, name string) Surface {
	cp := *t
	cp.id, cp.name = id, name
	return &cp
}

func (t *Torus) Reverse() Surface {
	return &Torus{id: -t.id, name: t.name, reversed: !t.reversed, Center: t.Center, Axis: t.Axis, R: t.R, A: t.A, B: t.B}
}

// BoundingPlanes: the solid tube is bounded by six axis-aligned
// half-spaces derived from the extreme extent max(a,b)+R*|axis x e_i|
// along each axis (spec.md §4.5); the unbounded complement ("not
// reversed") is only ever given the whole-space sentinel.
func (t *Torus) BoundingPlanes(warn func(string)) []bbox.Conjunction {
	if !t.reversed {
		return []bbox.Conjunction{{}}
	}
	ext := math.Max(t.A, t.B)
	var h [3]float64
	for i := 0; i < 3; i++ {
		e := vec3.Vector{}
		e = e.WithComponent(i, 1)
		h[i] = ext + t.R*t.Axis.Cross(e).Norm()
	}
	return []bbox.Conjunction{{
		axisHalfAbout(0, 1, t.Center, -h[0]), axisHalfAbout(0, -1, t.Center, h[0]),
		axisHalfAbout(1, 1, t.Center, -h[1]), axisHalfAbout(1, -1, t.Center, h[1]),
		axisHalfAbout(2, 1, t.Center, -h[2]), axisHalfAbout(2, -1, t.Center, h[2]),
	}}
}
