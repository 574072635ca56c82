// Package mat implements the dense 3×3 and 4×4 matrices of spec.md §3,
// grounded on the affine-transform conventions gosl/la exposes for
// gofem's element Jacobians, with the row-vector convention (p' = p*M)
// spec.md §3 requires. Mat3/Affine stay fixed-size value types for the
// surf/xform packages to pass around cheaply; gosl/la's slice-based
// routines do the actual arithmetic, converted at the package boundary.
package mat

import (
	"math"

	"github.com/cpmech/gosl/la"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// RankConvergenceEPS is the Gram-Schmidt / eigen-convergence tolerance
// (spec.md §9): 1e-6 scaled by the largest eigenvalue magnitude.
const RankConvergenceEPS = 1e-6

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

// Identity3 returns the 3x3 identity.
func Identity3() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// rows converts m to the [][]float64 layout gosl/la's dense routines
// operate on.
func (m Mat3) rows() [][]float64 {
	return [][]float64{
		{m[0][0], m[0][1], m[0][2]},
		{m[1][0], m[1][1], m[1][2]},
		{m[2][0], m[2][1], m[2][2]},
	}
}

func mat3FromRows(r [][]float64) Mat3 {
	return Mat3{{r[0][0], r[0][1], r[0][2]}, {r[1][0], r[1][1], r[1][2]}, {r[2][0], r[2][1], r[2][2]}}
}

// MulVec applies m to row-vector v: v*m, via la.MatVecMul against m's
// transpose (la.MatVecMul computes a column-vector product a*u).
func (m Mat3) MulVec(v vec3.Vector) vec3.Vector {
	u := []float64{v.X, v.Y, v.Z}
	out := make([]float64, 3)
	la.MatVecMul(out, 1, m.Transpose().rows(), u)
	return vec3.Vector{X: out[0], Y: out[1], Z: out[2]}
}

// Mul returns m*o (row-vector composition order: applying Mul(m,o) to v
// is the same as applying m then o, i.e. v*m*o).
func (m Mat3) Mul(o Mat3) Mat3 {
	c := la.MatAlloc(3, 3)
	la.MatMul(c, 1, m.rows(), o.rows())
	return mat3FromRows(c)
}

// Transpose returns the transpose of m.
func (m Mat3) Transpose() Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[j][i] = m[i][j]
		}
	}
	return r
}

// Det3 returns the determinant of m, via la.MatInv's side-computed
// determinant (tol=0 so a singular m still reports its true det rather
// than erroring).
func Det3(m Mat3) float64 {
	ai := la.MatAlloc(3, 3)
	det, _ := la.MatInv(ai, m.rows(), 0)
	return det
}

// Inverse3 returns the inverse of m, or ok=false if singular.
func Inverse3(m Mat3) (Mat3, bool) {
	ai := la.MatAlloc(3, 3)
	det, err := la.MatInv(ai, m.rows(), 1e-14)
	if err != nil || math.Abs(det) < 1e-14 {
		return Mat3{}, false
	}
	return mat3FromRows(ai), true
}

// Affine is a 4x4 affine transform: rotation in the upper-left 3x3,
// translation in the last row, laid out so that p' = p_homogeneous * M
// with p_homogeneous = (x,y,z,1). createAffine(R,t) of spec.md §3.
type Affine struct {
	R Mat3
	T vec3.Vector
}

// Identity returns the identity affine transform.
func Identity() Affine {
	return Affine{R: Identity3()}
}

// CreateAffine builds [[R,0],[t,1]] per spec.md §3.
func CreateAffine(r Mat3, t vec3.Vector) Affine {
	return Affine{R: r, T: t}
}

// Apply transforms point p: p' = p*R + t.
func (a Affine) Apply(p vec3.Vector) vec3.Vector {
	return a.R.MulVec(p).Add(a.T)
}

// ApplyDir transforms a direction vector (no translation).
func (a Affine) ApplyDir(d vec3.Vector) vec3.Vector {
	return a.R.MulVec(d)
}

// Compose returns the affine transform equivalent to applying a then b:
// Compose(a,b).Apply(p) == b.Apply(a.Apply(p)).
func Compose(a, b Affine) Affine {
	return Affine{
		R: a.R.Mul(b.R),
		T: b.R.MulVec(a.T).Add(b.T),
	}
}

// Inverse returns the inverse affine transform, or ok=false if the
// rotation block is singular.
func (a Affine) Inverse() (Affine, bool) {
	rInv, ok := Inverse3(a.R)
	if !ok {
		return Affine{}, false
	}
	return Affine{R: rInv, T: rInv.MulVec(a.T).Scale(-1)}, true
}

// GramSchmidtRows re-orthonormalizes the rows of m, up to maxIter
// relaxation passes (spec.md §4.10: TR rotation blocks are forced
// orthonormal with up to 50 iterations). It reports the worst residual
// non-orthogonality angle (radians) observed on the final pass, so the
// caller can warn when it exceeds 1e-3 rad.
func GramSchmidtRows(m Mat3, maxIter int) (Mat3, float64) {
	rows := [3]vec3.Vector{
		{m[0][0], m[0][1], m[0][2]},
		{m[1][0], m[1][1], m[1][2]},
		{m[2][0], m[2][1], m[2][2]},
	}
	var worst float64
	for iter := 0; iter < maxIter; iter++ {
		worst = 0
		// classical Gram-Schmidt against the previous rows, renormalized
		r0, ok0 := normalizeVec(rows[0])
		if !ok0 {
			r0 = vec3.New(1, 0, 0)
		}
		p1 := rows[1].Sub(r0.Scale(rows[1].Dot(r0)))
		r1, ok1 := normalizeVec(p1)
		if !ok1 {
			r1 = orthogonalComplement(r0, vec3.New(0, 1, 0))
		}
		r2raw := r0.Cross(r1)
		r2, ok2 := normalizeVec(r2raw)
		if !ok2 {
			r2 = r2raw
		}
		for _, pair := range [][2]vec3.Vector{{r0, r1}, {r0, r2}, {r1, r2}} {
			d := pair[0].Dot(pair[1])
			if a := math.Abs(d); a > worst {
				worst = a
			}
		}
		rows = [3]vec3.Vector{r0, r1, r2}
		if worst < RankConvergenceEPS {
			break
		}
	}
	out := Mat3{
		{rows[0].X, rows[0].Y, rows[0].Z},
		{rows[1].X, rows[1].Y, rows[1].Z},
		{rows[2].X, rows[2].Y, rows[2].Z},
	}
	return out, math.Asin(math.Min(1, worst))
}

// orthogonalComplement returns a unit vector orthogonal to n, preferring
// the direction of hint when projected.
func orthogonalComplement(n, hint vec3.Vector) vec3.Vector {
	p := hint.Sub(n.Scale(hint.Dot(n)))
	if v, ok := normalizeVec(p); ok {
		return v
	}
	alt := vec3.New(1, 0, 0)
	if math.Abs(n.X) > 0.9 {
		alt = vec3.New(0, 1, 0)
	}
	p = alt.Sub(n.Scale(alt.Dot(n)))
	v, _ := normalizeVec(p)
	return v
}

// normalizeVec is vec3.Vector.Normalized's counterpart built on
// la.VecNorm/la.VecScale, so Gram-Schmidt's renormalization step runs
// through gosl/la the same way gofem's element routines normalize
// Jacobian rows.
func normalizeVec(v vec3.Vector) (vec3.Vector, bool) {
	s := []float64{v.X, v.Y, v.Z}
	n := la.VecNorm(s)
	if n < vec3.ZeroEps {
		return v, false
	}
	out := make([]float64, 3)
	la.VecScale(out, 0, 1/n, s)
	return vec3.Vector{X: out[0], Y: out[1], Z: out[2]}, true
}
