package deck

import (
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"

	"github.com/cpmech/mcgeom/internal/exprx"
)

func parseOK(t *testing.T, raw string) (*Deck, []string) {
	t.Helper()
	var warnings []string
	d, err := Parse(raw, exprx.LiteralOracle{}, func(msg string) { warnings = append(warnings, msg) })
	assert.NoError(t, err, "Parse")
	return d, warnings
}

func TestParseThreeBlockDeck(t *testing.T) {
	chk.PrintTitle("ParseThreeBlockDeck")
	raw := "sample deck\n" +
		"10 1 -1.0 1 -2 3 -4 5 -6\n" +
		"\n" +
		"1 px 0\n" +
		"2 px 10\n" +
		"\n" +
		"tr1 1 2 3\n" +
		"m1 1001 1.0\n"
	d, _ := parseOK(t, raw)
	assert.Equal(t, "sample deck", d.Title)
	assert.Len(t, d.CellCards, 1)
	assert.Equal(t, "10", d.CellCards[0].Name)
	assert.Len(t, d.SurfaceCards, 2)
	_, ok := d.TrTable.Lookup(1)
	assert.True(t, ok, "expected TR1 to be defined")
	assert.Len(t, d.DataCardLines, 1)
	assert.Contains(t, d.DataCardLines[0], "m1")
}

func TestParseTwoBlockDeckHasNoSurfaceOrDataCards(t *testing.T) {
	chk.PrintTitle("ParseTwoBlockDeckHasNoSurfaceOrDataCards")
	raw := "title only\n10 1 -1.0 1 -2\n"
	d, _ := parseOK(t, raw)
	assert.Empty(t, d.SurfaceCards)
	assert.Empty(t, d.DataCardLines)
}

func TestParseTrailingAmpersandContinuation(t *testing.T) {
	chk.PrintTitle("ParseTrailingAmpersandContinuation")
	raw := "title\n" +
		"10 1 -1.0 1 -2 &\n" +
		"  3 -4 5 -6\n"
	d, _ := parseOK(t, raw)
	assert.Len(t, d.CellCards, 1)
	assert.Equal(t, "1 -2 3 -4 5 -6", d.CellCards[0].Equation)
}

func TestParseIndentedContinuation(t *testing.T) {
	chk.PrintTitle("ParseIndentedContinuation")
	raw := "title\n" +
		"10 1 -1.0 1 -2\n" +
		"     3 -4 5 -6\n"
	d, _ := parseOK(t, raw)
	assert.Len(t, d.CellCards, 1)
	assert.Equal(t, "1 -2 3 -4 5 -6", d.CellCards[0].Equation)
}

func TestParseStripsCommentLinesAndInlineDollar(t *testing.T) {
	chk.PrintTitle("ParseStripsCommentLinesAndInlineDollar")
	raw := "title\n" +
		"c this whole line is a comment\n" +
		"10 1 -1.0 1 -2 $ trailing note\n"
	d, _ := parseOK(t, raw)
	assert.Len(t, d.CellCards, 1)
	assert.Equal(t, "1 -2", d.CellCards[0].Equation)
}

func TestParseTrCardIsCaseInsensitiveAndStarred(t *testing.T) {
	chk.PrintTitle("ParseTrCardIsCaseInsensitiveAndStarred")
	raw := "title\n10 1 -1.0 1 -2\n\n1 px 0\n\n*tr2 5 0 0\n"
	d, _ := parseOK(t, raw)
	_, ok := d.TrTable.Lookup(2)
	assert.True(t, ok, "expected *TR2 to be recognized as TR number 2")
}

func TestParseUnrecognizedDataCardIsPassedThroughVerbatim(t *testing.T) {
	chk.PrintTitle("ParseUnrecognizedDataCardIsPassedThroughVerbatim")
	raw := "title\n10 1 -1.0 1 -2\n\n1 px 0\n\nimp:n 1 1\n"
	d, _ := parseOK(t, raw)
	assert.Len(t, d.DataCardLines, 1)
	assert.True(t, strings.Contains(d.DataCardLines[0], "imp:n"), "expected imp:n to be passed through, got %+v", d.DataCardLines)
}

func TestParseEmptyDeckErrors(t *testing.T) {
	chk.PrintTitle("ParseEmptyDeckErrors")
	_, err := Parse("\n\n", exprx.LiteralOracle{}, nil)
	assert.Error(t, err, "expected an error for an empty deck")
}
