package fill

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"

	"github.com/cpmech/mcgeom/internal/bbox"
	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/vec3"
)

func TestCalcDimensionDeclaratorRect3DBasic(t *testing.T) {
	chk.PrintTitle("CalcDimensionDeclaratorRect3DBasic")
	vs, vt, vu := vec3.New(1, 0, 0), vec3.New(0, 1, 0), vec3.New(0, 0, 1)
	outerBB := bbox.Box{Xmin: -2.4, Xmax: 2.4, Ymin: -2.4, Ymax: 2.4, Zmin: -2.4, Zmax: 2.4}
	ranges, err := CalcDimensionDeclarator(Rect3D, vec3.New(0, 0, 0), []vec3.Vector{vs, vt, vu}, outerBB)
	assert.NoError(t, err)
	assert.Len(t, ranges, 3)
	for i, r := range ranges {
		assert.Equal(t, -2, r.Min, "axis %d min", i)
		assert.Equal(t, 2, r.Max, "axis %d max", i)
	}
}

func TestCalcDimensionDeclaratorRejectsWrongVectorCount(t *testing.T) {
	chk.PrintTitle("CalcDimensionDeclaratorRejectsWrongVectorCount")
	_, err := CalcDimensionDeclarator(Rect3D, vec3.New(0, 0, 0), []vec3.Vector{vec3.New(1, 0, 0)}, bbox.Universal())
	assert.Error(t, err)
}

func TestCalcDimensionDeclaratorDetectsInfiniteLattice(t *testing.T) {
	chk.PrintTitle("CalcDimensionDeclaratorDetectsInfiniteLattice")
	vs, vt, vu := vec3.New(1, 0, 0), vec3.New(0, 1, 0), vec3.New(0, 0, 1)
	_, err := CalcDimensionDeclarator(Rect3D, vec3.New(0, 0, 0), []vec3.Vector{vs, vt, vu}, bbox.Universal())
	assert.Error(t, err)
	k, ok := geomerr.GetKind(err)
	assert.True(t, ok)
	assert.Equal(t, geomerr.InfiniteLattice, k)
}

func TestCalcDimensionDeclaratorDetectsExcessMaxIndex(t *testing.T) {
	chk.PrintTitle("CalcDimensionDeclaratorDetectsExcessMaxIndex")
	vs, vt, vu := vec3.New(0.00009, 0, 0), vec3.New(0, 1, 0), vec3.New(0, 0, 1)
	outerBB := bbox.Box{Xmin: -1, Xmax: 1, Ymin: -1, Ymax: 1, Zmin: -1, Zmax: 1}
	_, err := CalcDimensionDeclarator(Rect3D, vec3.New(0, 0, 0), []vec3.Vector{vs, vt, vu}, outerBB)
	assert.Error(t, err)
	k, ok := geomerr.GetKind(err)
	assert.True(t, ok)
	assert.Equal(t, geomerr.ExcessMaxIndex, k)
}

func TestCalcDimensionDeclaratorRect2DIgnoresFreeAxis(t *testing.T) {
	chk.PrintTitle("CalcDimensionDeclaratorRect2DIgnoresFreeAxis")
	vs, vt := vec3.New(1, 0, 0), vec3.New(0, 1, 0)
	outerBB := bbox.Box{Xmin: -1.4, Xmax: 1.4, Ymin: -1.4, Ymax: 1.4, Zmin: -1e35, Zmax: 1e35}
	ranges, err := CalcDimensionDeclarator(Rect2D, vec3.New(0, 0, 0), []vec3.Vector{vs, vt}, outerBB)
	assert.NoError(t, err)
	assert.Len(t, ranges, 2)
	assert.Equal(t, -1, ranges[0].Min)
	assert.Equal(t, 1, ranges[0].Max)
}

func TestCalcDimensionDeclaratorHexMergesBases(t *testing.T) {
	chk.PrintTitle("CalcDimensionDeclaratorHexMergesBases")
	vs := vec3.New(1, 0, 0)
	vt := rotateAbout(vs, vec3.New(0, 0, 1), 1.0471975511965976) // 60 degrees
	outerBB := bbox.Box{Xmin: -2, Xmax: 2, Ymin: -2, Ymax: 2, Zmin: -1e35, Zmax: 1e35}
	ranges, err := CalcDimensionDeclarator(Hex, vec3.New(0, 0, 0), []vec3.Vector{vs, vt}, outerBB)
	assert.NoError(t, err)
	assert.Len(t, ranges, 3, "expected 3 ranges (s merged, t, u)")
}
