package bbox

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"

	"github.com/cpmech/mcgeom/internal/vec3"
)

func unitBoxConjunction() Conjunction {
	return Conjunction{
		{Normal: vec3.New(1, 0, 0), Dist: 0},    // x >= 0
		{Normal: vec3.New(-1, 0, 0), Dist: -10}, // -x >= -10 => x <= 10
		{Normal: vec3.New(0, 1, 0), Dist: 0},
		{Normal: vec3.New(0, -1, 0), Dist: -10},
		{Normal: vec3.New(0, 0, 1), Dist: 0},
		{Normal: vec3.New(0, 0, -1), Dist: -10},
	}
}

func TestSetLaws(t *testing.T) {
	chk.PrintTitle("SetLaws")
	b := Box{0, 10, 0, 10, 0, 10}
	assert.Equal(t, b, And(b, b), "AND(b,b) != b")
	assert.Equal(t, b, Or(b, b), "OR(b,b) != b")
	assert.Equal(t, b, And(b, Universal()), "AND(b,universal) != b")
	assert.Equal(t, b, Or(b, Empty()), "OR(b,empty) != b")
}

func TestFromPlanesRPPLikeBox(t *testing.T) {
	chk.PrintTitle("FromPlanesRPPLikeBox")
	box, err := FromPlanes(nil, []Conjunction{unitBoxConjunction()})
	assert.NoError(t, err)
	want := Box{0, 10, 0, 10, 0, 10}
	chk.Scalar(t, "Xmin", 1e-6, box.Xmin, want.Xmin)
	chk.Scalar(t, "Xmax", 1e-6, box.Xmax, want.Xmax)
	chk.Scalar(t, "Ymin", 1e-6, box.Ymin, want.Ymin)
	chk.Scalar(t, "Ymax", 1e-6, box.Ymax, want.Ymax)
	chk.Scalar(t, "Zmin", 1e-6, box.Zmin, want.Zmin)
	chk.Scalar(t, "Zmax", 1e-6, box.Zmax, want.Zmax)
}

func TestFromPlanesFewerThanFourFallsBackToAxisBoxes(t *testing.T) {
	chk.PrintTitle("FromPlanesFewerThanFourFallsBackToAxisBoxes")
	conj := Conjunction{
		{Normal: vec3.New(1, 0, 0), Dist: 5},
	}
	box, err := FromPlanes(nil, []Conjunction{conj})
	assert.NoError(t, err)
	chk.Scalar(t, "Xmin", 1e-12, box.Xmin, 5)
	assert.Equal(t, MaxExtent, box.Xmax, "expected unbounded x")
	assert.Equal(t, MaxExtent, box.Ymax, "expected unbounded y")
}

func TestFromPlanesUnboundedConjunctionReturnsUniversal(t *testing.T) {
	chk.PrintTitle("FromPlanesUnboundedConjunctionReturnsUniversal")
	// Two slabs: x and y each in [0,10], z unconstrained, so no three
	// planes meet in a point.
	conj := Conjunction{
		{Normal: vec3.New(1, 0, 0), Dist: 0},
		{Normal: vec3.New(-1, 0, 0), Dist: -10},
		{Normal: vec3.New(0, 1, 0), Dist: 0},
		{Normal: vec3.New(0, -1, 0), Dist: -10},
	}
	box, err := FromPlanes(nil, []Conjunction{conj})
	assert.NoError(t, err)
	assert.True(t, box.IsUniversal(), "expected universal box for an axis-unbounded cell")
}

func TestMergeConjunctionsAndDetectsContradiction(t *testing.T) {
	chk.PrintTitle("MergeConjunctionsAndDetectsContradiction")
	a := []Conjunction{{{Normal: vec3.New(1, 0, 0), Dist: 0}}}
	b := []Conjunction{{{Normal: vec3.New(-1, 0, 0), Dist: 0}}}
	merged, err := MergeConjunctionsAnd(a, b)
	assert.NoError(t, err)
	assert.Empty(t, merged, "expected contradiction to drop the conjunction")
}

func TestMergeConjunctionsAndOutOfMemoryGuard(t *testing.T) {
	chk.PrintTitle("MergeConjunctionsAndOutOfMemoryGuard")
	orig := AvailableMemoryBytes
	defer func() { AvailableMemoryBytes = orig }()
	AvailableMemoryBytes = func() uint64 { return 1 }

	a := []Conjunction{{{Normal: vec3.New(1, 0, 0), Dist: 0}}}
	b := []Conjunction{{{Normal: vec3.New(0, 1, 0), Dist: 0}}}
	_, err := MergeConjunctionsAnd(a, b)
	assert.Error(t, err, "expected OutOfMemory error")
}
