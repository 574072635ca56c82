package resolve

import (
	"context"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"

	"github.com/cpmech/mcgeom/internal/card"
	"github.com/cpmech/mcgeom/internal/exprx"
	"github.com/cpmech/mcgeom/internal/xform"
)

func mustCellCard(t *testing.T, text string) *card.CellCard {
	t.Helper()
	c, err := card.ParseCellCard("deck.i", 1, text)
	assert.NoError(t, err, "ParseCellCard(%q)", text)
	return c
}

func mustSurfCard(t *testing.T, text string) *card.SurfaceCard {
	t.Helper()
	c, err := card.ParseSurfaceCard("deck.i", 1, text, exprx.LiteralOracle{})
	assert.NoError(t, err, "ParseSurfaceCard(%q)", text)
	return c
}

func boxPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p := NewPipeline(exprx.LiteralOracle{}, nil, 1)
	for _, text := range []string{"1 px 0", "2 px 10", "3 py 0", "4 py 10", "5 pz 0", "6 pz 10"} {
		assert.NoError(t, p.LoadSurfaceCard(mustSurfCard(t, text), xform.NewTable()), "LoadSurfaceCard(%q)", text)
	}
	return p
}

func TestResolveCellsSimpleBox(t *testing.T) {
	chk.PrintTitle("ResolveCellsSimpleBox")
	p := boxPipeline(t)
	cells := []*card.CellCard{
		mustCellCard(t, "10 1 -1.0 1 -2 3 -4 5 -6"),
	}
	out, err := p.ResolveCells(context.Background(), cells, xform.NewTable())
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	rc := out[0]
	assert.Equal(t, "1 -2 3 -4 5 -6", rc.Equation)
	chk.Scalar(t, "Xmin", 1e-9, rc.BBox.Xmin, 0)
	chk.Scalar(t, "Xmax", 1e-9, rc.BBox.Xmax, 10)
	chk.Scalar(t, "Ymin", 1e-9, rc.BBox.Ymin, 0)
	chk.Scalar(t, "Ymax", 1e-9, rc.BBox.Ymax, 10)
}

func TestResolveCellsLikeButInheritsEquationAndDensity(t *testing.T) {
	chk.PrintTitle("ResolveCellsLikeButInheritsEquationAndDensity")
	p := boxPipeline(t)
	cells := []*card.CellCard{
		mustCellCard(t, "10 1 -1.0 1 -2 3 -4 5 -6"),
		mustCellCard(t, "11 like 10 but mat=2"),
	}
	out, err := p.ResolveCells(context.Background(), cells, xform.NewTable())
	assert.NoError(t, err)
	assert.Len(t, out, 2)
	src, like := out[0], out[1]
	assert.Equal(t, src.Equation, like.Equation, "like-but cell did not inherit equation")
	assert.Equal(t, src.Density, like.Density, "like-but cell did not inherit density")
}

func TestResolveCellsComplementNegatesSourceEquation(t *testing.T) {
	chk.PrintTitle("ResolveCellsComplementNegatesSourceEquation")
	p := boxPipeline(t)
	cells := []*card.CellCard{
		mustCellCard(t, "10 1 -1.0 1 -2 3 -4 5 -6"),
		mustCellCard(t, "11 0 #10"),
	}
	out, err := p.ResolveCells(context.Background(), cells, xform.NewTable())
	assert.NoError(t, err)
	comp := out[1]
	assert.NotEqual(t, "#10", comp.Equation, "expected the complement to be substituted, not left as a raw reference")
}

func TestResolveCellsMacrobodySubstitution(t *testing.T) {
	chk.PrintTitle("ResolveCellsMacrobodySubstitution")
	p := NewPipeline(exprx.LiteralOracle{}, nil, 1)
	assert.NoError(t, p.LoadSurfaceCard(mustSurfCard(t, "1 rpp 0 10 0 10 0 10"), xform.NewTable()))
	cells := []*card.CellCard{
		mustCellCard(t, "10 1 -1.0 -1"),
	}
	out, err := p.ResolveCells(context.Background(), cells, xform.NewTable())
	assert.NoError(t, err)
	rc := out[0]
	assert.NotEqual(t, "-1", rc.Equation, "expected the macrobody reference to expand into its face equation")
	chk.Scalar(t, "Xmin", 1e-9, rc.BBox.Xmin, 0)
	chk.Scalar(t, "Xmax", 1e-9, rc.BBox.Xmax, 10)
}

func TestResolveCellsUnknownLikeSourceErrors(t *testing.T) {
	chk.PrintTitle("ResolveCellsUnknownLikeSourceErrors")
	p := boxPipeline(t)
	cells := []*card.CellCard{
		mustCellCard(t, "11 like 99 but"),
	}
	_, err := p.ResolveCells(context.Background(), cells, xform.NewTable())
	assert.Error(t, err, "expected an error for an unresolved like-but source")
}

func TestRegisterSurfaceAddsReversedMirror(t *testing.T) {
	chk.PrintTitle("RegisterSurfaceAddsReversedMirror")
	p := NewPipeline(exprx.LiteralOracle{}, nil, 1)
	assert.NoError(t, p.LoadSurfaceCard(mustSurfCard(t, "1 px 10"), xform.NewTable()))
	_, ok := p.SM.GetByName("1")
	assert.True(t, ok, "expected forward surface to be registered")
	_, ok = p.SM.GetByName("-1")
	assert.True(t, ok, "expected reversed mirror to be registered")
}
