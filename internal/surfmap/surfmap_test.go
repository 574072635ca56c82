package surfmap

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"

	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/mat"
	"github.com/cpmech/mcgeom/internal/surf"
	"github.com/cpmech/mcgeom/internal/vec3"
)

func mustPlane(t *testing.T, id int32, name string, dist float64) *surf.Plane {
	t.Helper()
	p, err := surf.NewPlane(id, name, vec3.New(1, 0, 0), dist)
	assert.NoError(t, err)
	return p
}

func TestRegisterDuplicateId(t *testing.T) {
	chk.PrintTitle("RegisterDuplicateId")
	m := New()
	assert.NoError(t, m.Register(mustPlane(t, 1, "a", 0)))
	err := m.Register(mustPlane(t, 1, "b", 5))
	k, ok := geomerr.GetKind(err)
	assert.True(t, ok && k == geomerr.DuplicateId, "got %v", err)
}

func TestRegisterTransformedCreatesForwardAndReverse(t *testing.T) {
	chk.PrintTitle("RegisterTransformedCreatesForwardAndReverse")
	m := New()
	assert.NoError(t, m.Register(mustPlane(t, 1, "p", 10)))
	aff := mat.Affine{R: mat.Identity3(), T: vec3.New(5, 0, 0)}
	newName, err := m.RegisterTransformed("p", "c2", aff)
	assert.NoError(t, err)
	_, ok := m.GetByName(newName)
	assert.True(t, ok, "expected forward transformed surface %q to be registered", newName)
	_, ok = m.GetByName("-" + newName)
	assert.True(t, ok, "expected reversed transformed surface -%q to be registered", newName)
}

func TestMakeIndexEquationSubstitutesLongestNamesFirst(t *testing.T) {
	chk.PrintTitle("MakeIndexEquationSubstitutesLongestNamesFirst")
	m := New()
	assert.NoError(t, m.Register(mustPlane(t, 1, "s1", 0)))
	assert.NoError(t, m.Register(mustPlane(t, 2, "s10", 5)))
	out, err := m.MakeIndexEquation("s1 -s10")
	assert.NoError(t, err)
	assert.Equal(t, "1 -2", out)
}
