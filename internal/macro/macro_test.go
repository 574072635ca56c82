package macro

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"

	"github.com/cpmech/mcgeom/internal/mat"
	"github.com/cpmech/mcgeom/internal/vec3"
)

func idGen(start int32) IDAllocator {
	n := start
	return func() int32 {
		id := n
		n++
		return id
	}
}

func TestExpandRPPProducesSixPlanesAllForwardAtCenter(t *testing.T) {
	chk.PrintTitle("ExpandRPPProducesSixPlanesAllForwardAtCenter")
	res, err := ExpandRPP("1", []float64{0, 10, 0, 10, 0, 10}, mat.Identity(), idGen(100))
	assert.NoError(t, err)
	assert.Len(t, res.Surfaces, 6)
	center := vec3.New(5, 5, 5)
	for _, s := range res.Surfaces {
		assert.True(t, s.IsForward(center), "surface %s: expected center to be interior", s.Name())
	}
	outside := vec3.New(20, 5, 5)
	anyReject := false
	for _, s := range res.Surfaces {
		if !s.IsForward(outside) {
			anyReject = true
		}
	}
	assert.True(t, anyReject, "expected at least one face to reject a point far outside the box")
}

func TestExpandSPHFourArgForm(t *testing.T) {
	chk.PrintTitle("ExpandSPHFourArgForm")
	res, err := ExpandSPH("2", []float64{1, 2, 3, 5}, mat.Identity(), idGen(200))
	assert.NoError(t, err)
	assert.Len(t, res.Surfaces, 1)
	s := res.Surfaces[0]
	assert.True(t, s.IsForward(vec3.New(1, 2, 3)), "expected the sphere center to be interior")
	assert.False(t, s.IsForward(vec3.New(100, 2, 3)), "expected a far point to be exterior")
}

func TestExpandRCCInteriorAndCaps(t *testing.T) {
	chk.PrintTitle("ExpandRCCInteriorAndCaps")
	res, err := ExpandRCC("3", []float64{0, 0, 0, 0, 0, 10, 2}, mat.Identity(), idGen(300))
	assert.NoError(t, err)
	assert.Len(t, res.Surfaces, 3, "expected cylinder + 2 caps")
	mid := vec3.New(0, 0, 5)
	for _, s := range res.Surfaces {
		assert.True(t, s.IsForward(mid), "surface %s: expected axis midpoint to be interior", s.Name())
	}
	beyondTop := vec3.New(0, 0, 20)
	anyReject := false
	for _, s := range res.Surfaces {
		if !s.IsForward(beyondTop) {
			anyReject = true
		}
	}
	assert.True(t, anyReject, "expected the top cap to reject a point beyond the cylinder's extent")
}

func TestExpandRECInteriorAndExteriorPoints(t *testing.T) {
	chk.PrintTitle("ExpandRECInteriorAndExteriorPoints")
	// axis along z from origin, length 10, major radius 4 along x, minor radius 2.
	res, err := ExpandREC("9", []float64{0, 0, 0, 0, 0, 10, 4, 0, 0, 2}, mat.Identity(), idGen(900), nil)
	assert.NoError(t, err)
	assert.Len(t, res.Surfaces, 3, "expected ellipse-cylinder + 2 caps")
	inside := vec3.New(2, 0, 5)
	for _, s := range res.Surfaces {
		assert.True(t, s.IsForward(inside), "surface %s: expected %+v to be interior", s.Name(), inside)
	}
	outside := vec3.New(3, 1.9, 5) // (3/4)^2+(1.9/2)^2 > 1
	anyReject := false
	for _, s := range res.Surfaces {
		if !s.IsForward(outside) {
			anyReject = true
		}
	}
	assert.True(t, anyReject, "expected the ellipse-cylinder face to reject a point outside the cross-section")
}

func TestExpandELLInteriorPoint(t *testing.T) {
	chk.PrintTitle("ExpandELLInteriorPoint")
	// center(0,0,0), axis direction (0,0,1) with |v|=5 major radius, minor radius 2 (negative-form args).
	res, err := ExpandELL("10", []float64{0, 0, 0, 0, 0, 5, -2}, mat.Identity(), idGen(1000))
	assert.NoError(t, err)
	assert.True(t, res.Surfaces[0].IsForward(vec3.New(0, 0, 0)), "expected the ellipsoid center to be interior")
	assert.False(t, res.Surfaces[0].IsForward(vec3.New(0, 0, 10)), "expected a point far along the axis to be exterior")
}

func TestExpandTORFullRevolutionHasNoAngularPlanes(t *testing.T) {
	chk.PrintTitle("ExpandTORFullRevolutionHasNoAngularPlanes")
	res, err := ExpandTOR("4", []float64{0, 0, 0, 0, 0, 1, 10, 2, 2}, 0, 0, mat.Identity(), idGen(400))
	assert.NoError(t, err)
	assert.Len(t, res.Surfaces, 1, "expected a single torus surface for a full revolution")
}

func TestExpandTORPartialRevolutionAddsAngularPlanes(t *testing.T) {
	chk.PrintTitle("ExpandTORPartialRevolutionAddsAngularPlanes")
	res, err := ExpandTOR("5", []float64{0, 0, 0, 0, 0, 1, 10, 2, 2}, 0, 90, mat.Identity(), idGen(500))
	assert.NoError(t, err)
	assert.Len(t, res.Surfaces, 4, "expected torus + 3 angular planes")
	assert.NotEqual(t, res.Surfaces[0].Name(), res.Replacement, "expected a non-trivial non-convex replacement expression for a partial torus")
}

func TestExpandARBCubeFacesPointInward(t *testing.T) {
	chk.PrintTitle("ExpandARBCubeFacesPointInward")
	// a unit cube with all 6 faces declared via 4-digit vertex tuples.
	verts := []float64{
		0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0,
		0, 0, 1, 1, 0, 1, 1, 1, 1, 0, 1, 1,
	}
	faces := []float64{1234, 5678, 1265, 2376, 3487, 4158}
	args := append(append([]float64{}, verts...), faces...)
	res, err := ExpandARB("6", args, mat.Identity(), idGen(600))
	assert.NoError(t, err)
	assert.Len(t, res.Surfaces, 6)
	center := vec3.New(0.5, 0.5, 0.5)
	for _, s := range res.Surfaces {
		assert.True(t, s.IsForward(center), "surface %s: expected cube center to be interior", s.Name())
	}
}

func TestExpandAxisSymmetricZTwoArgPlane(t *testing.T) {
	chk.PrintTitle("ExpandAxisSymmetricZTwoArgPlane")
	res, err := ExpandAxisSymmetric("7", 'z', []float64{5, 0}, mat.Identity(), idGen(700), nil)
	assert.NoError(t, err)
	assert.Len(t, res.Surfaces, 1)
}

func TestExpandAxisSymmetricZFourArgCylinder(t *testing.T) {
	chk.PrintTitle("ExpandAxisSymmetricZFourArgCylinder")
	res, err := ExpandAxisSymmetric("8", 'z', []float64{0, 3, 10, 3}, mat.Identity(), idGen(800), nil)
	assert.NoError(t, err)
	assert.Len(t, res.Surfaces, 1)
	assert.True(t, res.Surfaces[0].IsForward(vec3.New(0, 0, 5)), "expected a point on the axis to be interior to the equal-radii (cylinder) case")
}
