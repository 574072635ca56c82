package surf

import (
	"math"

	"github.com/cpmech/mcgeom/internal/bbox"
	"github.com/cpmech/mcgeom/internal/mat"
	"github.com/cpmech/mcgeom/internal/quadric"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// Quadric implements spec.md §4.3/§4.4 (component C2, GQ/SQ): implicit
// Ax^2+By^2+Cz^2+Dxy+Eyz+Fxz+Gx+Hy+Jz+K, transformed by rewriting the
// ten coefficients directly rather than retaining a transform matrix.
type Quadric struct {
	id       int32
	name     string
	reversed bool
	A, B, C, D, E, F, G, H, J, K float64
}

// NewQuadric builds a Quadric from its ten coefficients (the GQ form;
// SQ's axis-aligned-with-center parameterization is canonicalized to
// this same storage by the card layer before construction).
func NewQuadric(id int32, name string, a, b, c, d, e, f, g, h, j, k float64) *Quadric {
	return &Quadric{id: id, name: name, A: a, B: b, C: c, D: d, E: e, F: f, G: g, H: h, J: j, K: k}
}

func (q *Quadric) ID() int32      { return q.id }
func (q *Quadric) Name() string   { return q.name }
func (q *Quadric) Kind() Kind     { return KindQuadric }
func (q *Quadric) Reversed() bool { return q.reversed }

func (q *Quadric) value(x vec3.Vector) float64 {
	return q.A*x.X*x.X + q.B*x.Y*x.Y + q.C*x.Z*x.Z +
		q.D*x.X*x.Y + q.E*x.Y*x.Z + q.F*x.X*x.Z +
		q.G*x.X + q.H*x.Y + q.J*x.Z + q.K
}

func (q *Quadric) IsForward(x vec3.Vector) bool {
	return forwardTest(q.value(x), q.reversed)
}

// sym3 returns the principal symmetric 3x3 form (A3) and gradient
// vector b such that Q(x) = x^T A3 x + 2 b.x + K (spec.md §4.4).
func (q *Quadric) sym3() (quadric.Sym3, vec3.Vector) {
	return quadric.Sym3{A11: q.A, A22: q.B, A33: q.C, A12: q.D / 2, A13: q.F / 2, A23: q.E / 2},
		vec3.New(q.G/2, q.H/2, q.J/2)
}

// Intersect reduces the ray p+t*u to a quadratic in t (spec.md §4.3):
// a near-zero leading coefficient degenerates to a linear solve; a
// non-positive discriminant yields no intersection.
func (q *Quadric) Intersect(p, u vec3.Vector) vec3.Vector {
	a3, b := q.sym3()
	a3u := applySym3(a3, u)
	c2 := u.Dot(a3u)
	c1 := 2*p.Dot(a3u) + 2*b.Dot(u)
	c0 := q.value(p)

	var roots []float64
	if math.Abs(c2) < 1e-12 {
		if math.Abs(c1) < 1e-300 {
			return vec3.Invalid()
		}
		roots = []float64{-c0 / c1}
	} else {
		disc := c1*c1 - 4*c2*c0
		if disc < 0 {
			return vec3.Invalid()
		}
		sq := math.Sqrt(disc)
		roots = []float64{(-c1 + sq) / (2 * c2), (-c1 - sq) / (2 * c2)}
	}
	best, found := math.Inf(1), false
	for _, t := range roots {
		if t >= 0 && t < best {
			best, found = t, true
		}
	}
	if !found {
		return vec3.Invalid()
	}
	return p.Add(u.Scale(best))
}

func applySym3(a quadric.Sym3, v vec3.Vector) vec3.Vector {
	return vec3.New(
		a.A11*v.X+a.A12*v.Y+a.A13*v.Z,
		a.A12*v.X+a.A22*v.Y+a.A23*v.Z,
		a.A13*v.X+a.A23*v.Y+a.A33*v.Z,
	)
}

func sym3ToMat(a quadric.Sym3) mat.Mat3 {
	return mat.Mat3{
		{a.A11, a.A12, a.A13},
		{a.A12, a.A22, a.A23},
		{a.A13, a.A23, a.A33},
	}
}

// Transform rewrites the ten coefficients under x -> x*aff.R + aff.T
// (spec.md §4.3): A3' = R.A3.R^T, b' = R.(A3.t+b), K' = t.A3.t+2b.t+K,
// using standard column-vector matrix algebra. MulVec is the
// row-vector product v*M, so R.w is formed as R^T.MulVec(w).
func (q *Quadric) Transform(aff mat.Affine) Surface {
	a3, b := q.sym3()
	t := aff.T
	a3Mat := sym3ToMat(a3)
	a3t := applySym3(a3, t)
	bNew := aff.R.Transpose().MulVec(a3t.Add(b))
	a3New := aff.R.Mul(a3Mat).Mul(aff.R.Transpose())
	kNew := t.Dot(applySym3(a3, t)) + 2*b.Dot(t) + q.K

	return &Quadric{
		id: q.id, name: q.name, reversed: q.reversed,
		A: a3New[0][0], B: a3New[1][1], C: a3New[2][2],
		D: a3New[0][1] + a3New[1][0], E: a3New[1][2] + a3New[2][1], F: a3New[0][2] + a3New[2][0],
		G: 2 * bNew.X, H: 2 * bNew.Y, J: 2 * bNew.Z,
		K: kNew,
	}
}

func (q *Quadric) Renamed(id int32, name string) Surface {
	cp := *q
	cp.id, cp.name = id, name
	return &cp
}

func (q *Quadric) Reverse() Surface {
	return &Quadric{
		id: -q.id, name: q.name, reversed: !q.reversed,
		A: -q.A, B: -q.B, C: -q.C, D: -q.D, E: -q.E, F: -q.F, G: -q.G, H: -q.H, J: -q.J, K: -q.K,
	}
}

// BoundingPlanes defers to the quadric-signature engine of spec.md
// §4.4 (component C2/C4.4): the surface's own forward region is
// always the analysis's "Inside" (unreversed) column, because
// Reverse() already negates the stored coefficients.
func (q *Quadric) BoundingPlanes(warn func(string)) []bbox.Conjunction {
	a3, b := q.sym3()
	return quadric.BoundingPlanes(quadric.Form{A3: a3, B: b, K: q.K}, warn).Inside
}
