package resolve

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"

	"github.com/cpmech/mcgeom/internal/card"
	"github.com/cpmech/mcgeom/internal/exprx"
	"github.com/cpmech/mcgeom/internal/vec3"
)

func mustSurfaceCard(t *testing.T, text string) *card.SurfaceCard {
	t.Helper()
	c, err := card.ParseSurfaceCard("deck.i", 1, text, exprx.LiteralOracle{})
	assert.NoError(t, err, "ParseSurfaceCard(%q)", text)
	return c
}

func TestBuildSurfacePZ(t *testing.T) {
	chk.PrintTitle("BuildSurfacePZ")
	c := mustSurfaceCard(t, "1 pz 10")
	s, err := BuildSurface(1, c)
	assert.NoError(t, err)
	assert.Equal(t, "1", s.Name())
	assert.True(t, s.IsForward(vec3.New(0, 0, 20)), "expected point above pz=10 to be forward")
}

func TestBuildSurfaceSphere(t *testing.T) {
	chk.PrintTitle("BuildSurfaceSphere")
	c := mustSurfaceCard(t, "2 so 5")
	s, err := BuildSurface(2, c)
	assert.NoError(t, err)
	assert.True(t, s.IsForward(vec3.New(0, 0, 0)), "origin is inside the sphere, so forward (interior-positive convention)")
	assert.False(t, s.IsForward(vec3.New(100, 0, 0)), "far point should not be forward")
}

func TestBuildSurfaceCylinderCZ(t *testing.T) {
	chk.PrintTitle("BuildSurfaceCylinderCZ")
	c := mustSurfaceCard(t, "3 cz 2")
	s, err := BuildSurface(3, c)
	assert.NoError(t, err)
	assert.True(t, s.IsForward(vec3.New(0, 0, 0)), "axis point is inside, so forward")
}

func TestBuildSurfaceGQPassesCoefficientsThrough(t *testing.T) {
	chk.PrintTitle("BuildSurfaceGQPassesCoefficientsThrough")
	c := mustSurfaceCard(t, "4 gq 1 1 1 0 0 0 0 0 0 -25")
	s, err := BuildSurface(4, c)
	assert.NoError(t, err)
	assert.Equal(t, "4", s.Name())
}

func TestBuildSurfaceSQExpandsToEquivalentSphere(t *testing.T) {
	chk.PrintTitle("BuildSurfaceSQExpandsToEquivalentSphere")
	// SQ with A=B=C=1, D=E=F=0, G=-25, X=Y=Z=0 is the same sphere as "so 5".
	sq := mustSurfaceCard(t, "5 sq 1 1 1 0 0 0 -25 0 0 0")
	so := mustSurfaceCard(t, "6 so 5")
	sSQ, err := BuildSurface(5, sq)
	assert.NoError(t, err)
	sSO, err := BuildSurface(6, so)
	assert.NoError(t, err)
	pts := []vec3.Vector{vec3.New(0, 0, 0), vec3.New(4, 0, 0), vec3.New(6, 0, 0)}
	for _, p := range pts {
		assert.Equal(t, sSO.IsForward(p), sSQ.IsForward(p), "SQ/SO disagree at %+v", p)
	}
}

func TestBuildSurfaceUnknownMnemonicIsMacrobodyNotStandard(t *testing.T) {
	chk.PrintTitle("BuildSurfaceUnknownMnemonicIsMacrobodyNotStandard")
	c := mustSurfaceCard(t, "7 rpp 0 1 0 1 0 1")
	_, err := BuildSurface(7, c)
	assert.Error(t, err, "expected BuildSurface to refuse a macrobody mnemonic")
}

func TestBuildSurfaceTooFewArgs(t *testing.T) {
	chk.PrintTitle("BuildSurfaceTooFewArgs")
	c := mustSurfaceCard(t, "8 px")
	_, err := BuildSurface(8, c)
	assert.Error(t, err, "expected an error for a missing parameter")
}

func TestSheetOf(t *testing.T) {
	chk.PrintTitle("SheetOf")
	assert.Equal(t, -1, sheetOf([]float64{0, 0, -1}, 2), "expected negative sheet")
	assert.Equal(t, 1, sheetOf([]float64{0, 0, 1}, 2), "expected positive sheet")
	assert.Equal(t, 0, sheetOf([]float64{0, 0}, 2), "expected both sheets when the selector is absent")
}
