package fill

import (
	"context"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"

	"github.com/cpmech/mcgeom/internal/bbox"
	"github.com/cpmech/mcgeom/internal/surf"
	"github.com/cpmech/mcgeom/internal/surfmap"
	"github.com/cpmech/mcgeom/internal/vec3"
)

func TestExpandPrunesElementsOutsideOuterBB(t *testing.T) {
	chk.PrintTitle("ExpandPrunesElementsOutsideOuterBB")
	sm := surfmap.New()
	// normal (-1,0,0), dist -5: forward (interior) side is x<=5.
	p, err := surf.NewPlane(1, "1", vec3.New(-1, 0, 0), -5)
	assert.NoError(t, err)
	assert.NoError(t, sm.Register(p))

	outerBB := bbox.Box{Xmin: -5, Xmax: 5, Ymin: -5, Ymax: 5, Zmin: -5, Zmax: 5}
	basis := Basis{Vs: vec3.New(20, 0, 0), Vt: vec3.New(0, 0, 0)}
	ranges := []Range{{Min: 0, Max: 1}, {Min: 0, Max: 0}}

	els, err := Expand(context.Background(), "10", "-1", basis, ranges, outerBB, sm, 2, nil, nil)
	assert.NoError(t, err)
	assert.Len(t, els, 1)
	assert.Equal(t, "10[0,0]", els[0].Name)
	assert.Equal(t, "-1_t10[0,0]", els[0].Equation)
}

func TestExpandRespectsCancelFlag(t *testing.T) {
	chk.PrintTitle("ExpandRespectsCancelFlag")
	sm := surfmap.New()
	p, err := surf.NewPlane(1, "1", vec3.New(-1, 0, 0), -5)
	assert.NoError(t, err)
	assert.NoError(t, sm.Register(p))

	outerBB := bbox.Box{Xmin: -5, Xmax: 5, Ymin: -5, Ymax: 5, Zmin: -5, Zmax: 5}
	basis := Basis{Vs: vec3.New(1, 0, 0), Vt: vec3.New(0, 1, 0)}
	ranges := []Range{{Min: 0, Max: 5}, {Min: 0, Max: 5}}

	cancel := &CancelFlag{}
	cancel.Cancel()
	_, err = Expand(context.Background(), "20", "-1", basis, ranges, outerBB, sm, 1, cancel, nil)
	assert.Error(t, err, "expected a cancellation error")
}

func TestFormatElementNameTwoAndThreeAxes(t *testing.T) {
	chk.PrintTitle("FormatElementNameTwoAndThreeAxes")
	assert.Equal(t, "5[1,2]", formatElementName("5", []int{1, 2}))
	assert.Equal(t, "5[1,2,3]", formatElementName("5", []int{1, 2, 3}))
}
