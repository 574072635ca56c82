// Package quadric implements the quadric-signature analysis of
// spec.md §4.4: rank/signature classification of the principal 3x3
// symmetric form and derivation of a bounding-plane set from it. The
// classical cyclic Jacobi rotation method is the eigensolver spec.md
// §4.4/§9 mandates (exact iteration cap, convergence constants), so it
// stays the authoritative algorithm here; every decomposition is cross
// checked against gonum.org/v1/gonum/mat's LAPACK-backed EigenSym, and
// a disagreement beyond the rank/signature tolerance is surfaced to
// the caller rather than silently trusted (SPEC_FULL.md §2).
package quadric

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// JacobiIterCap is the hard cap on sweep iterations (spec.md §4.4, §9).
const JacobiIterCap = 100000

// EigenConvergenceBase is the convergence tolerance base; the actual
// threshold is EigenConvergenceBase * 10^(n+1) scaled by the largest
// diagonal magnitude (floored at 1), per spec.md §9.
const EigenConvergenceBase = 1e-6

// Sym3 is a symmetric 3x3 matrix stored as its upper triangle.
type Sym3 struct {
	A11, A22, A33 float64
	A12, A13, A23 float64
}

// Eigen holds the eigenvalues (descending, non-zero-last convention)
// and the corresponding orthonormal eigenvectors as matrix rows.
type Eigen struct {
	Values  [3]float64
	Vectors [3][3]float64 // Vectors[i] is the eigenvector for Values[i]
	Iters   int
	Converged bool
	// CrossChecked is false when gonum's EigenSym disagrees with the
	// Jacobi sweep beyond the rank/signature tolerance, or when gonum's
	// solver itself fails to factorize m.
	CrossChecked bool
}

// JacobiEigen computes the eigen-decomposition of m via the classical
// cyclic Jacobi rotation method, sorting eigenvalues in descending
// order with zero eigenvalues pushed last (spec.md §4.4's "deterministic
// descending order and non-zero-last convention").
func JacobiEigen(m Sym3) Eigen {
	a := [3][3]float64{
		{m.A11, m.A12, m.A13},
		{m.A12, m.A22, m.A23},
		{m.A13, m.A23, m.A33},
	}
	v := [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	offDiagNorm := func() float64 {
		return math.Abs(a[0][1]) + math.Abs(a[0][2]) + math.Abs(a[1][2])
	}

	maxDiag := math.Max(math.Abs(a[0][0]), math.Max(math.Abs(a[1][1]), math.Abs(a[2][2])))
	eps := EigenConvergenceBase * math.Pow(10, 4) * math.Max(1, maxDiag)

	iters := 0
	converged := false
	for iters = 0; iters < JacobiIterCap; iters++ {
		if offDiagNorm() < eps {
			converged = true
			break
		}
		// find largest off-diagonal element (non-diagonal-max criterion)
		p, q := 0, 1
		best := math.Abs(a[0][1])
		if math.Abs(a[0][2]) > best {
			p, q, best = 0, 2, math.Abs(a[0][2])
		}
		if math.Abs(a[1][2]) > best {
			p, q = 1, 2
		}
		if a[p][q] == 0 {
			converged = true
			break
		}
		theta := (a[q][q] - a[p][p]) / (2 * a[p][q])
		t := sign(theta) / (math.Abs(theta) + math.Sqrt(theta*theta+1))
		if theta == 0 {
			t = 1
		}
		c := 1 / math.Sqrt(t*t+1)
		s := t * c

		app, aqq, apq := a[p][p], a[q][q], a[p][q]
		a[p][p] = c*c*app - 2*s*c*apq + s*s*aqq
		a[q][q] = s*s*app + 2*s*c*apq + c*c*aqq
		a[p][q] = 0
		a[q][p] = 0
		for k := 0; k < 3; k++ {
			if k != p && k != q {
				akp, akq := a[k][p], a[k][q]
				a[k][p] = c*akp - s*akq
				a[p][k] = a[k][p]
				a[k][q] = s*akp + c*akq
				a[q][k] = a[k][q]
			}
		}
		for k := 0; k < 3; k++ {
			vkp, vkq := v[k][p], v[k][q]
			v[k][p] = c*vkp - s*vkq
			v[k][q] = s*vkp + c*vkq
		}
	}

	type pair struct {
		val float64
		vec [3]float64
	}
	pairs := [3]pair{
		{a[0][0], [3]float64{v[0][0], v[1][0], v[2][0]}},
		{a[1][1], [3]float64{v[0][1], v[1][1], v[2][1]}},
		{a[2][2], [3]float64{v[0][2], v[1][2], v[2][2]}},
	}
	// sort descending by value, with near-zero values pushed last
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			iz := math.Abs(pairs[i].val) < eps
			jz := math.Abs(pairs[j].val) < eps
			swap := false
			switch {
			case iz && !jz:
				swap = true
			case iz == jz && pairs[j].val > pairs[i].val:
				swap = true
			}
			if swap {
				pairs[i], pairs[j] = pairs[j], pairs[i]
			}
		}
	}

	var out Eigen
	out.Iters = iters
	out.Converged = converged
	for i, p := range pairs {
		out.Values[i] = p.val
		out.Vectors[i] = p.vec
	}
	out.CrossChecked = crossCheckEigen(m, out.Values)
	return out
}

// crossCheckEigen independently verifies the Jacobi sweep's eigenvalues
// against gonum's LAPACK-backed symmetric eigensolver, within the same
// rank/signature tolerance the case-table classification uses.
func crossCheckEigen(m Sym3, values [3]float64) bool {
	sym := mat.NewSymDense(3, []float64{
		m.A11, m.A12, m.A13,
		m.A12, m.A22, m.A23,
		m.A13, m.A23, m.A33,
	})
	var eig mat.EigenSym
	if !eig.Factorize(sym, false) {
		return false
	}
	got := eig.Values(nil) // ascending

	want := []float64{values[0], values[1], values[2]}
	sort.Float64s(want)

	maxAbs := 0.0
	for _, v := range want {
		if math.Abs(v) > maxAbs {
			maxAbs = math.Abs(v)
		}
	}
	tol := EigenConvergenceBase * math.Max(1, maxAbs)
	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			return false
		}
	}
	return true
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// Rank returns the number of eigenvalues whose magnitude exceeds
// tol*maxAbs (the largest eigenvalue magnitude), per spec.md §4.4's
// rank(A3) computation.
func (e Eigen) Rank(tol float64) int {
	maxAbs := 0.0
	for _, v := range e.Values {
		if math.Abs(v) > maxAbs {
			maxAbs = math.Abs(v)
		}
	}
	if maxAbs < 1e-300 {
		return 0
	}
	r := 0
	for _, v := range e.Values {
		if math.Abs(v) > tol*maxAbs {
			r++
		}
	}
	return r
}

// Signature returns (positive count, negative count) among the
// non-zero eigenvalues, per spec.md §4.4's signature(A3).
func (e Eigen) Signature(tol float64) (pos, neg int) {
	maxAbs := 0.0
	for _, v := range e.Values {
		if math.Abs(v) > maxAbs {
			maxAbs = math.Abs(v)
		}
	}
	for _, v := range e.Values {
		if math.Abs(v) <= tol*maxAbs {
			continue
		}
		if v > 0 {
			pos++
		} else {
			neg++
		}
	}
	return
}
