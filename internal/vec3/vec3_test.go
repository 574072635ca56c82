package vec3

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"
)

func TestNormalized(t *testing.T) {
	chk.PrintTitle("Normalized")
	v := New(3, 4, 0)
	n, ok := v.Normalized()
	assert.True(t, ok, "expected success")
	chk.Scalar(t, "norm", 1e-6, n.Norm(), 1)

	_, ok = New(0, 0, 0).Normalized()
	assert.False(t, ok, "zero vector should fail to normalize")
}

func TestCrossOrthogonal(t *testing.T) {
	chk.PrintTitle("CrossOrthogonal")
	x := New(1, 0, 0)
	y := New(0, 1, 0)
	z := x.Cross(y)
	assert.LessOrEqual(t, z.Dot(x), ZeroEps, "cross product should be orthogonal to x")
	assert.LessOrEqual(t, z.Dot(y), ZeroEps, "cross product should be orthogonal to y")
}

func TestCollinear(t *testing.T) {
	chk.PrintTitle("Collinear")
	a, b, c := New(0, 0, 0), New(1, 0, 0), New(2, 0, 0)
	assert.True(t, Collinear(a, b, c, 1e-9), "points on a line should be collinear")

	d := New(2, 1, 0)
	assert.False(t, Collinear(a, b, d, 1e-9), "non-collinear points misreported")
}
