// Package deck reads a whole MCNP/PHITS-style input file into the
// three card blocks the rest of the pipeline consumes: cell cards,
// surface cards, and data cards (TR cards among them). Grounded on
// gofem/inp's file-then-struct reading idiom (read the whole file,
// strip comments, split into fields, hand each line to a card parser)
// generalized here from JSON records to the blank-line-separated,
// continuation-joined block format spec.md §6 describes.
package deck

import (
	"strconv"
	"strings"

	"github.com/cpmech/mcgeom/internal/card"
	"github.com/cpmech/mcgeom/internal/exprx"
	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/xform"
)

// Deck holds the parsed cards of one input file, before resolution.
type Deck struct {
	Title         string
	CellCards     []*card.CellCard
	SurfaceCards  []*card.SurfaceCard
	TrTable       *xform.Table
	DataCardLines []string // data cards other than TR, kept verbatim (out of scope, spec.md §1 Non-goals)
}

// Parse splits raw (the whole file's contents) into its title line plus
// cell/surface/data blocks (blank-line-separated, per MCNP convention),
// joins continuation lines, strips comments, and parses every card.
// warn receives the warnings xform.ParseSingle raises for TR cards;
// other data cards are kept verbatim in DataCardLines without a warning.
func Parse(raw string, oracle exprx.Oracle, warn func(string)) (*Deck, error) {
	lines := joinContinuations(stripComments(strings.Split(raw, "\n")))

	blocks := splitBlocks(lines)
	if len(blocks) == 0 {
		return nil, geomerr.New(geomerr.BadCard, "empty deck")
	}

	d := &Deck{TrTable: xform.NewTable()}

	title, cellLines := blocks[0][0], blocks[0][1:]
	d.Title = title
	for i, line := range cellLines {
		c, err := card.ParseCellCard("deck", i+2, line)
		if err != nil {
			return nil, err
		}
		d.CellCards = append(d.CellCards, c)
	}

	if len(blocks) > 1 {
		for i, line := range blocks[1] {
			c, err := card.ParseSurfaceCard("deck", i+1, line, oracle)
			if err != nil {
				return nil, err
			}
			d.SurfaceCards = append(d.SurfaceCards, c)
		}
	}

	if len(blocks) > 2 {
		for _, line := range blocks[2] {
			if err := parseDataLine(line, d, warn); err != nil {
				return nil, err
			}
		}
	}

	return d, nil
}

// parseDataLine recognizes TR cards (the only data-card family this
// engine's geometry resolution depends on, per spec.md §1's scope) and
// records every other data card verbatim for a caller that wants to
// pass them through unexamined (spec.md §1 explicitly excludes
// particle-transport/source/tally data cards from this pipeline).
func parseDataLine(line string, d *Deck, warn func(string)) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	mnemonic := strings.ToLower(strings.TrimPrefix(fields[0], "*"))
	if !strings.HasPrefix(mnemonic, "tr") {
		d.DataCardLines = append(d.DataCardLines, line)
		return nil
	}
	n, ok := parseTrNumber(mnemonic[2:])
	if !ok {
		d.DataCardLines = append(d.DataCardLines, line)
		return nil
	}
	args, err := parseFloats(fields[1:])
	if err != nil {
		return geomerr.New(geomerr.BadCard, "tr%d: %v", n, err)
	}
	aff, err := xform.ParseSingle(args, warn)
	if err != nil {
		return geomerr.New(geomerr.BadCard, "tr%d: %v", n, err)
	}
	return d.TrTable.Define(n, aff)
}

func parseTrNumber(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

func parseFloats(toks []string) ([]float64, error) {
	out := make([]float64, 0, len(toks))
	for _, t := range toks {
		v, err := parseFloat(t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloat(t string) (float64, error) {
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, geomerr.New(geomerr.BadCard, "%q is not numeric", t)
	}
	return v, nil
}

// stripComments drops blank-after-strip "c" comment lines and inline
// "$"-led trailing comments, matching MCNP's comment conventions.
func stripComments(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if i := strings.IndexByte(l, '$'); i >= 0 {
			l = l[:i]
		}
		trimmed := strings.TrimSpace(l)
		if trimmed == "c" || strings.HasPrefix(trimmed, "c ") || strings.HasPrefix(trimmed, "C ") {
			continue
		}
		out = append(out, strings.TrimRight(l, " \t\r"))
	}
	return out
}

// joinContinuations merges a line onto its predecessor when it is
// either blank-indented by 5+ columns or the predecessor ends in "&",
// MCNP's two continuation conventions.
func joinContinuations(lines []string) []string {
	var out []string
	for _, l := range lines {
		cont := strings.HasPrefix(l, "     ") && strings.TrimSpace(l) != ""
		if len(out) > 0 && strings.HasSuffix(strings.TrimRight(out[len(out)-1], " \t"), "&") {
			out[len(out)-1] = strings.TrimSuffix(strings.TrimRight(out[len(out)-1], " \t"), "&") + " " + strings.TrimSpace(l)
			continue
		}
		if cont && len(out) > 0 {
			out[len(out)-1] = out[len(out)-1] + " " + strings.TrimSpace(l)
			continue
		}
		out = append(out, l)
	}
	return out
}

// splitBlocks groups lines into blank-line-separated blocks, dropping
// blank lines themselves and any block left empty by consecutive
// blanks (a ragged deck's title line seeds block zero even if the
// file opens directly into cell cards).
func splitBlocks(lines []string) [][]string {
	var blocks [][]string
	var cur []string
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}
