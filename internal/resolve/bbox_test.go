package resolve

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"

	"github.com/cpmech/mcgeom/internal/bbox"
	"github.com/cpmech/mcgeom/internal/surf"
	"github.com/cpmech/mcgeom/internal/surfmap"
	"github.com/cpmech/mcgeom/internal/vec3"
)

func boxSurfmap(t *testing.T) *surfmap.Map {
	t.Helper()
	sm := surfmap.New()
	reg := func(id int32, name string, s surf.Surface) {
		assert.NoError(t, sm.Register(s))
		rev := s.Reverse().Renamed(id+100, "-"+name)
		assert.NoError(t, sm.Register(rev))
	}
	p1, err := surf.NewPlane(1, "1", vec3.New(1, 0, 0), 0)
	assert.NoError(t, err)
	p2, err := surf.NewPlane(2, "2", vec3.New(1, 0, 0), 10)
	assert.NoError(t, err)
	p3, err := surf.NewPlane(3, "3", vec3.New(0, 1, 0), 0)
	assert.NoError(t, err)
	p4, err := surf.NewPlane(4, "4", vec3.New(0, 1, 0), 10)
	assert.NoError(t, err)
	reg(1, "1", p1)
	reg(2, "2", p2)
	reg(3, "3", p3)
	reg(4, "4", p4)
	return sm
}

// The slab "1 -2" is x in [0,10] with y,z unbounded. A cell equation
// composed of two such slabs along x and y has no point where three of
// its four planes meet, so its box is the universal box.
func TestBoxOfEquationIntersectsTwoSlabs(t *testing.T) {
	chk.PrintTitle("BoxOfEquationIntersectsTwoSlabs")
	sm := boxSurfmap(t)
	box, err := BoxOfEquation("1 -2 3 -4", sm, nil, nil)
	assert.NoError(t, err)
	chk.Scalar(t, "Xmin", 1e-6, box.Xmin, -bbox.MaxExtent)
	chk.Scalar(t, "Xmax", 1e-6, box.Xmax, bbox.MaxExtent)
	chk.Scalar(t, "Ymin", 1e-6, box.Ymin, -bbox.MaxExtent)
	chk.Scalar(t, "Ymax", 1e-6, box.Ymax, bbox.MaxExtent)
	assert.LessOrEqual(t, box.Zmin, -bbox.MaxExtent/2, "expected z to remain unbounded")
	assert.GreaterOrEqual(t, box.Zmax, bbox.MaxExtent/2, "expected z to remain unbounded")
}

func TestBoxOfEquationUnionIsLarger(t *testing.T) {
	chk.PrintTitle("BoxOfEquationUnionIsLarger")
	sm := boxSurfmap(t)
	_, err := BoxOfEquation("1 -2", sm, nil, nil)
	assert.NoError(t, err)
	boxOr, err := BoxOfEquation("1 -2 : 3 -4", sm, nil, nil)
	assert.NoError(t, err)
	assert.LessOrEqual(t, boxOr.Xmin, 0.0, "union should remain at least as wide as either half")
}

func TestBoxOfEquationComplementFallsBackToUniversalWithoutCellBox(t *testing.T) {
	chk.PrintTitle("BoxOfEquationComplementFallsBackToUniversalWithoutCellBox")
	sm := boxSurfmap(t)
	warned := false
	box, err := BoxOfEquation("#7", sm, nil, func(string) { warned = true })
	assert.NoError(t, err)
	assert.True(t, warned, "expected a warning about the missing complement box")
	assert.True(t, box.IsUniversal(), "expected a universal fallback box")
}

func TestBoxOfEquationComplementUsesKnownCellBox(t *testing.T) {
	chk.PrintTitle("BoxOfEquationComplementUsesKnownCellBox")
	sm := boxSurfmap(t)
	known := bbox.Box{Xmin: -1, Xmax: 1, Ymin: -1, Ymax: 1, Zmin: -1, Zmax: 1}
	box, err := BoxOfEquation("#7", sm, map[string]bbox.Box{"7": known}, nil)
	assert.NoError(t, err)
	chk.Scalar(t, "Xmax", 1e-6, box.Xmax, 1)
}

func TestBoxOfEquationUnknownSurfaceErrors(t *testing.T) {
	chk.PrintTitle("BoxOfEquationUnknownSurfaceErrors")
	sm := boxSurfmap(t)
	_, err := BoxOfEquation("99", sm, nil, nil)
	assert.Error(t, err, "expected an error referencing an unregistered surface")
}

func TestBoxOfEquationUnbalancedParens(t *testing.T) {
	chk.PrintTitle("BoxOfEquationUnbalancedParens")
	sm := boxSurfmap(t)
	_, err := BoxOfEquation("(1 -2", sm, nil, nil)
	assert.Error(t, err, "expected an error for unbalanced parentheses")
}

func TestEquationTokensSplitsOperatorsAndNames(t *testing.T) {
	chk.PrintTitle("EquationTokensSplitsOperatorsAndNames")
	toks := equationTokens("(1 -2 : #7)")
	want := []string{"(", "1", "-2", ":", "#7", ")"}
	assert.Equal(t, want, toks)
}
