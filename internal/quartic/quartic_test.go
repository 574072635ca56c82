package quartic

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"
)

// S3 scenario from spec.md §8: roots 2.86901493... and 3.13078735...
func TestSolveS3Scenario(t *testing.T) {
	chk.PrintTitle("SolveS3Scenario")
	a, b, c, d, e := 81.0, -971.9676, 27060.1884, -144861.52, 210336.32
	roots := Solve(a, b, c, d, e)
	assert.GreaterOrEqual(t, len(roots), 2, "expected at least 2 real roots, got %v", roots)
	want := []float64{2.86901493, 3.13078735}
	for _, w := range want {
		found := false
		for _, r := range roots {
			if math.Abs(r-w) < 1e-5 {
				found = true
			}
		}
		assert.True(t, found, "expected a root near %v, got %v", w, roots)
	}
	for _, r := range roots {
		assert.LessOrEqual(t, math.Abs(Eval(a, b, c, d, e, r)), 1e-3, "root %v does not satisfy the quartic", r)
	}
}

func TestSmallestPositiveRootSimpleCase(t *testing.T) {
	chk.PrintTitle("SmallestPositiveRootSimpleCase")
	// (x-1)(x-2)(x-3)(x-4) = x^4-10x^3+35x^2-50x+24
	root, ok := SmallestPositiveRoot(1, -10, 35, -50, 24)
	assert.True(t, ok, "expected a positive root")
	chk.Scalar(t, "root", 1e-6, root, 1)
}

func TestSolveCubicRealThreeRoots(t *testing.T) {
	chk.PrintTitle("SolveCubicRealThreeRoots")
	// (x+1)(x-2)(x-3) = x^3-4x^2+x+6
	roots := SolveCubicReal(-4, 1, 6)
	want := map[float64]bool{-1: true, 2: true, 3: true}
	assert.Len(t, roots, 3)
	for _, r := range roots {
		matched := false
		for w := range want {
			if math.Abs(r-w) < 1e-6 {
				matched = true
			}
		}
		assert.True(t, matched, "unexpected root %v", r)
	}
}
