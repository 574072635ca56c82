package resolve

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"

	"github.com/cpmech/mcgeom/internal/mat"
)

func idAllocator() func() int32 {
	n := int32(0)
	return func() int32 { n++; return n }
}

func TestExpandMacrobodyRPP(t *testing.T) {
	chk.PrintTitle("ExpandMacrobodyRPP")
	res, err := ExpandMacrobody("deck.i", 1, "1", "rpp",
		[]float64{0, 1, 0, 1, 0, 1}, mat.Identity(), idAllocator(), nil)
	assert.NoError(t, err)
	assert.Len(t, res.Surfaces, 6)
	assert.NotEmpty(t, res.Replacement, "expected a non-empty AND-join replacement")
}

func TestExpandMacrobodySphere(t *testing.T) {
	chk.PrintTitle("ExpandMacrobodySphere")
	res, err := ExpandMacrobody("deck.i", 2, "2", "sph",
		[]float64{0, 0, 0, 5}, mat.Identity(), idAllocator(), nil)
	assert.NoError(t, err)
	assert.Len(t, res.Surfaces, 1)
}

func TestExpandMacrobodyTorusTooFewArgs(t *testing.T) {
	chk.PrintTitle("ExpandMacrobodyTorusTooFewArgs")
	_, err := ExpandMacrobody("deck.i", 3, "3", "tor",
		[]float64{0, 0, 0, 0, 0, 1, 3, 1, 1}, mat.Identity(), idAllocator(), nil)
	assert.Error(t, err, "expected an error with fewer than 11 tor args")
}

func TestExpandMacrobodyTorusAccepted(t *testing.T) {
	chk.PrintTitle("ExpandMacrobodyTorusAccepted")
	args := make([]float64, 11)
	args[5] = 1 // axis z
	args[6] = 3 // r
	args[7] = 1 // ra
	args[8] = 1 // rb
	args[9] = 0
	args[10] = 360
	res, err := ExpandMacrobody("deck.i", 4, "4", "tor", args, mat.Identity(), idAllocator(), nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, res.Surfaces, "expected at least one produced surface")
}

func TestExpandMacrobodyUnknownMnemonic(t *testing.T) {
	chk.PrintTitle("ExpandMacrobodyUnknownMnemonic")
	_, err := ExpandMacrobody("deck.i", 5, "5", "bogus", nil, mat.Identity(), idAllocator(), nil)
	assert.Error(t, err, "expected an error for an unrecognized mnemonic")
}
