package quadric

import (
	"math"

	"github.com/cpmech/gosl/tsr"
)

// crossCheckTrace converts a's principal form into gosl/tsr's Mandel
// vector convention and compares tsr.M_p's mean-invariant against the
// Cartesian trace/3 computed directly from Sym3's fields, the same
// invariant gofem's material-point drivers pull off a Mandel stress
// vector (msolid/dp.go: tsr.M_p(o.ten)). A mismatch beyond the
// rank/signature tolerance means the two representations of A3 have
// come unglued somewhere upstream.
func crossCheckTrace(a Sym3) bool {
	man := []float64{
		a.A11, a.A22, a.A33,
		a.A12 * tsr.SQ2, a.A13 * tsr.SQ2, a.A23 * tsr.SQ2,
	}
	want := (a.A11 + a.A22 + a.A33) / 3
	got := tsr.M_p(man)
	maxAbs := math.Max(1, math.Abs(want))
	return math.Abs(got-want) <= EigenConvergenceBase*maxAbs
}
