// Package card implements the surface- and cell-card parsers of
// spec.md §4.8 and §6 (components C5/C7): splitting an already
// logically-joined input line into its tokens, recognizing the
// `key=value` tail, and producing the structured SurfaceCard/CellCard
// values the rest of the pipeline consumes. Grounded on gofem/inp's
// file-then-struct reading idiom, generalized from JSON decoding to a
// hand-rolled tokenizer since the surface/cell grammar (spec.md §6) is
// a line format, not JSON.
package card

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cpmech/mcgeom/internal/exprx"
	"github.com/cpmech/mcgeom/internal/geomerr"
)

// nameRe matches spec.md §6's surface-name grammar: leading `*`/`+`
// markers (not `-`, which the grammar reserves and forbids as input),
// then the name-body character class.
var nameRe = regexp.MustCompile(`^[*+]*[.,_@<\[\]\w]+$`)

// mnemonics is the closed set of recognized surface mnemonics
// (spec.md §6), lower-cased for case-insensitive matching.
var mnemonics = map[string]bool{
	"p": true, "px": true, "py": true, "pz": true,
	"s": true, "so": true, "sx": true, "sy": true, "sz": true,
	"c/x": true, "c/y": true, "c/z": true, "cx": true, "cy": true, "cz": true,
	"k/x": true, "k/y": true, "k/z": true, "kx": true, "ky": true, "kz": true,
	"sq": true, "gq": true,
	"tx": true, "ty": true, "tz": true, "ta": true, "tri": true,
	"rpp": true, "box": true, "sph": true, "rcc": true, "rec": true,
	"ell": true, "trc": true, "wed": true, "rhp": true, "hex": true,
	"arb": true, "qua": true, "tor": true,
	"x": true, "y": true, "z": true,
}

// SurfaceCard is a parsed, not-yet-resolved surface-card line.
type SurfaceCard struct {
	Name      string // with leading "*"/"+" marker, if any
	TrNum     int    // 0 if absent
	HasTrNum  bool
	Mnemonic  string
	Args      []float64
	Trsf      string // trsf= value, if present
	Trcl      []string
	StarTrcl  []bool // parallel to Trcl: true if this segment was "*trcl="
	File      string
	Line      int
}

// Reflecting reports the leading "*" marker (spec.md §6: reflecting plane).
func (c *SurfaceCard) Reflecting() bool { return strings.HasPrefix(c.Name, "*") }

// White reports the leading "+" marker (spec.md §6: white boundary).
func (c *SurfaceCard) White() bool { return strings.HasPrefix(c.Name, "+") }

// BareName strips any leading "*"/"+" marker.
func (c *SurfaceCard) BareName() string {
	return strings.TrimLeft(c.Name, "*+")
}

// ParseSurfaceCard parses one already-joined surface-card line per
// spec.md §6's grammar: `<name> [<tr_num>] <mnemonic> <num>*
// (<key>=<value>)*`. oracle resolves any `{expr}` numeric parameter.
func ParseSurfaceCard(file string, line int, text string, oracle exprx.Oracle) (*SurfaceCard, error) {
	fields, kvTail, err := splitKeyValueTail(text)
	if err != nil {
		return nil, geomerr.At(geomerr.BadCard, file, line, "%v", err)
	}
	if len(fields) < 2 {
		return nil, geomerr.At(geomerr.BadCard, file, line, "surface card has too few tokens: %q", text)
	}

	name := fields[0]
	if !nameRe.MatchString(name) {
		return nil, geomerr.At(geomerr.BadCard, file, line, "surface name %q does not match the grammar", name)
	}

	rest := fields[1:]
	card := &SurfaceCard{Name: name, File: file, Line: line}

	// an optional leading integer before the mnemonic is the TR number.
	if n, err := strconv.Atoi(rest[0]); err == nil {
		card.TrNum = n
		card.HasTrNum = true
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return nil, geomerr.At(geomerr.BadCard, file, line, "surface card %q has no mnemonic", name)
	}

	mnem := strings.ToLower(rest[0])
	if !mnemonics[mnem] {
		return nil, geomerr.At(geomerr.UnknownSymbol, file, line, "unrecognized surface mnemonic %q", rest[0])
	}
	card.Mnemonic = mnem
	rest = rest[1:]

	args := make([]float64, 0, len(rest))
	for _, tok := range rest {
		v, err := resolveNumeric(tok, oracle)
		if err != nil {
			return nil, geomerr.At(geomerr.BadCard, file, line, "surface %q: %v", name, err)
		}
		args = append(args, v)
	}
	card.Args = args

	for _, kv := range kvTail {
		switch strings.ToLower(kv.key) {
		case "trsf":
			card.Trsf = kv.value
		case "trcl", "*trcl":
			card.Trcl = append(card.Trcl, strings.TrimPrefix(kv.value, "*"))
			card.StarTrcl = append(card.StarTrcl, strings.HasPrefix(kv.key, "*") || strings.HasPrefix(kv.value, "*"))
		}
	}
	return card, nil
}

// resolveNumeric parses a bare numeric literal or dispatches a
// `{expr}`-wrapped token to oracle (spec.md §6).
func resolveNumeric(tok string, oracle exprx.Oracle) (float64, error) {
	if strings.HasPrefix(tok, "{") {
		if oracle == nil {
			return 0, geomerr.New(geomerr.BadCard, "numeric expression %q given without an oracle", tok)
		}
		return oracle.Eval(tok)
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, geomerr.New(geomerr.BadCard, "%q is not a valid number", tok)
	}
	return v, nil
}
