package quadric

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"

	"github.com/cpmech/mcgeom/internal/bbox"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// conjunctionContainsAxisHalf looks for a half-space with the given
// signed axis normal and literal boundary value (the bbox.HalfSpace
// convention is Normal.x >= Dist, so for sign=-1 "wantDist" is the
// threshold d in "x <= d", not a sign-negated distance).
func conjunctionContainsAxisHalf(c bbox.Conjunction, axis int, sign, wantDist float64) bool {
	for _, h := range c {
		if math.Abs(h.Normal.Component(axis)-sign) < 1e-9 && math.Abs(h.Dist-sign*wantDist) < 1e-6 {
			return true
		}
	}
	return false
}

func TestBoundingPlanesSphereIsEllipsoidCase(t *testing.T) {
	chk.PrintTitle("BoundingPlanesSphereIsEllipsoidCase")
	// x^2+y^2+z^2-9=0: A3=I, b=0, K=-9 -> sphere of radius 3 centered at origin.
	f := Form{A3: Sym3{A11: 1, A22: 1, A33: 1}, K: -9}
	p := BoundingPlanes(f, nil)
	assert.Len(t, p.Inside, 1)
	assert.Len(t, p.Inside[0], 6)
	for axis := 0; axis < 3; axis++ {
		assert.True(t, conjunctionContainsAxisHalf(p.Inside[0], axis, 1, -3), "missing +axis%d half-space at radius 3", axis)
		assert.True(t, conjunctionContainsAxisHalf(p.Inside[0], axis, -1, 3), "missing -axis%d half-space at radius 3", axis)
	}
}

func TestBoundingPlanesOffsetSphereTranslatesPlanes(t *testing.T) {
	chk.PrintTitle("BoundingPlanesOffsetSphereTranslatesPlanes")
	// (x-5)^2+y^2+z^2-4=0 expands to x^2+y^2+z^2-10x+21=0: A3=I, b=(-5,0,0), K=21.
	f := Form{A3: Sym3{A11: 1, A22: 1, A33: 1}, B: vec3.New(-5, 0, 0), K: 21}
	p := BoundingPlanes(f, nil)
	assert.Len(t, p.Inside, 1)
	assert.Len(t, p.Inside[0], 6)
	// the sphere is centered at x=5, radius 2, so x in [3,7].
	foundLo, foundHi := false, false
	for _, h := range p.Inside[0] {
		if math.Abs(h.Normal.X-1) < 1e-9 && math.Abs(h.Normal.Y) < 1e-9 && math.Abs(h.Normal.Z) < 1e-9 {
			if math.Abs(h.Dist-3) < 1e-6 {
				foundLo = true
			}
		}
		if math.Abs(h.Normal.X+1) < 1e-9 && math.Abs(h.Normal.Y) < 1e-9 && math.Abs(h.Normal.Z) < 1e-9 {
			if math.Abs(h.Dist+7) < 1e-6 {
				foundHi = true
			}
		}
	}
	assert.True(t, foundLo && foundHi, "expected x in [3,7], got %+v", p.Inside[0])
}

func TestBoundingPlanesEllipticCylinder(t *testing.T) {
	chk.PrintTitle("BoundingPlanesEllipticCylinder")
	// x^2+y^2-4=0: an infinite cylinder of radius 2 around the z axis.
	f := Form{A3: Sym3{A11: 1, A22: 1, A33: 0}, K: -4}
	p := BoundingPlanes(f, nil)
	assert.Len(t, p.Inside, 1)
	assert.Len(t, p.Inside[0], 4)
	for axis := 0; axis < 2; axis++ {
		assert.True(t, conjunctionContainsAxisHalf(p.Inside[0], axis, 1, -2), "missing +axis%d half-space at radius 2", axis)
		assert.True(t, conjunctionContainsAxisHalf(p.Inside[0], axis, -1, 2), "missing -axis%d half-space at radius 2", axis)
	}
}

func TestBoundingPlanesSinglePlane(t *testing.T) {
	chk.PrintTitle("BoundingPlanesSinglePlane")
	// linear form 2x - 4 = 0 (rank 0 quadratic part): the plane x=2.
	f := Form{B: vec3.New(1, 0, 0), K: -4}
	p := BoundingPlanes(f, nil)
	assert.Len(t, p.Inside, 1)
	assert.Len(t, p.Inside[0], 1)
	h := p.Inside[0][0]
	chk.Scalar(t, "Normal.X", 1e-9, h.Normal.X, 1)
	chk.Scalar(t, "Dist", 1e-6, h.Dist, 2)
}

func TestBoundingPlanesParallelPlanes(t *testing.T) {
	chk.PrintTitle("BoundingPlanesParallelPlanes")
	// x^2-9=0: the parallel planes x=3 and x=-3.
	f := Form{A3: Sym3{A11: 1}, K: -9}
	p := BoundingPlanes(f, nil)
	assert.Len(t, p.Inside, 1)
	assert.Len(t, p.Inside[0], 2)
	assert.True(t, conjunctionContainsAxisHalf(p.Inside[0], 0, 1, -3), "expected slab x in [-3,3]")
	assert.True(t, conjunctionContainsAxisHalf(p.Inside[0], 0, -1, 3), "expected slab x in [-3,3]")
}

func TestBoundingPlanesTwoSheetHyperboloidSplitsAtBothVertices(t *testing.T) {
	chk.PrintTitle("BoundingPlanesTwoSheetHyperboloidSplitsAtBothVertices")
	// x^2-y^2-z^2-1=0: two-sheet hyperboloid with vertices at x=+-1.
	f := Form{A3: Sym3{A11: 1, A22: -1, A33: -1}, K: -1}
	p := BoundingPlanes(f, nil)
	assert.Len(t, p.Inside, 2, "expected two disjoint sheet conjunctions")
	// each conjunction is a single half-space Normal.x >= Dist with
	// Normal=(+-1,0,0); the boundary (signed) x-coordinate is Dist/Normal.X
	// regardless of which eigenvector sign the Jacobi solver picked.
	foundPos, foundNeg := false, false
	for _, conj := range p.Inside {
		if len(conj) != 1 {
			continue
		}
		h := conj[0]
		assert.InDelta(t, 1, math.Abs(h.Normal.X), 1e-9, "expected an x-axis half-space, got %+v", h)
		assert.InDelta(t, 0, h.Normal.Y, 1e-9)
		assert.InDelta(t, 0, h.Normal.Z, 1e-9)
		boundary := h.Dist / h.Normal.X
		switch {
		case math.Abs(boundary-1) < 1e-6:
			foundPos = true
		case math.Abs(boundary+1) < 1e-6:
			foundNeg = true
		}
	}
	assert.True(t, foundPos && foundNeg, "expected sheets at x=1 and x=-1, got %+v", p.Inside)
}

func TestBoundingPlanesRepeatedPlaneIsTangent(t *testing.T) {
	chk.PrintTitle("BoundingPlanesRepeatedPlaneIsTangent")
	// (x-1)^2=0 expands to x^2-2x+1=0: a single repeated plane at x=1.
	f := Form{A3: Sym3{A11: 1}, B: vec3.New(-1, 0, 0), K: 1}
	p := BoundingPlanes(f, nil)
	assert.Len(t, p.Inside, 1)
	assert.Len(t, p.Inside[0], 1)
	h := p.Inside[0][0]
	assert.InDelta(t, 1, math.Abs(h.Normal.X), 1e-9, "expected an x-axis plane, got %+v", h)
	boundary := h.Dist / h.Normal.X
	chk.Scalar(t, "tangent plane boundary", 1e-6, boundary, 1)
}

func TestAugmentedRankEllipsoidIsFour(t *testing.T) {
	chk.PrintTitle("AugmentedRankEllipsoidIsFour")
	eig := JacobiEigen(Sym3{A11: 1, A22: 1, A33: 1})
	r := augmentedRank(Form{A3: Sym3{A11: 1, A22: 1, A33: 1}, K: -9}, eig, eig.Rank(RankTol))
	chk.IntAssert(r, 4)
}
