package geomerr

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"
)

func TestExitCodeTable(t *testing.T) {
	chk.PrintTitle("ExitCodeTable")
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{New(BadCard, "bad"), 1},
		{New(CircularReference, "cycle"), 2},
		{New(MacroExpansionFailed, "macro"), 3},
		{New(InfiniteLattice, "inf"), 4},
		{New(ExcessMaxIndex, "idx"), 4},
		{New(OutOfMemory, "oom"), 5},
		{New(Cancelled, "cancel"), 6},
	}
	for _, c := range cases {
		chk.IntAssert(ExitCode(c.err), c.want)
	}
}

func TestAtIncludesLocation(t *testing.T) {
	chk.PrintTitle("AtIncludesLocation")
	err := At(BadCard, "deck.i", 42, "unexpected token %q", "?")
	assert.Equal(t, `deck.i:42: BadCard: unexpected token "?"`, err.Error())
}

func TestGetKind(t *testing.T) {
	chk.PrintTitle("GetKind")
	_, ok := GetKind(nil)
	assert.False(t, ok, "GetKind(nil) should not report ok")

	k, ok := GetKind(New(Timeout, "slow"))
	assert.True(t, ok)
	assert.Equal(t, Timeout, k)
}
