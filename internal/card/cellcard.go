package card

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cpmech/mcgeom/internal/geomerr"
)

// CellCard is a parsed, not-yet-resolved cell-card line (spec.md §4.8).
type CellCard struct {
	Name       string
	Void       bool // material token was "0"
	Material   string
	Density    float64
	HasDensity bool
	LikeCell   string // "like N but" source cell, "" if absent
	Equation   string // raw equation text (tokens joined by single spaces)
	Universe   string // u=
	Lattice    string // lat=
	FillRaw    string // fill= raw value, including any inline "(...)" transform
	TrclRaw    string // canonical solve_trcl() output
	Other      map[string]string // unrecognized key=value pairs, verbatim
	File       string
	Line       int
}

// ParseCellCard parses one already-joined cell-card line per spec.md
// §6: `<name> (<mat>[ <density>] | like <cell> but) <equation>
// (<key>=<value>)*`.
func ParseCellCard(file string, line int, text string) (*CellCard, error) {
	fields, kvTail, err := splitKeyValueTail(text)
	if err != nil {
		return nil, geomerr.At(geomerr.BadCard, file, line, "%v", err)
	}
	if len(fields) < 2 {
		return nil, geomerr.At(geomerr.BadCard, file, line, "cell card has too few tokens: %q", text)
	}

	card := &CellCard{Name: fields[0], File: file, Line: line, Other: map[string]string{}}
	rest := fields[1:]

	if strings.EqualFold(rest[0], "like") {
		if len(rest) < 3 || !strings.EqualFold(rest[2], "but") {
			return nil, geomerr.At(geomerr.BadCard, file, line, "cell %q: malformed %q prefix", card.Name, "like ... but")
		}
		card.LikeCell = rest[1]
		rest = rest[3:]
	} else {
		card.Material = rest[0]
		card.Void = rest[0] == "0"
		rest = rest[1:]
		if !card.Void {
			if len(rest) == 0 {
				return nil, geomerr.At(geomerr.BadCard, file, line, "cell %q: material %q requires a density", card.Name, card.Material)
			}
			d, err := strconv.ParseFloat(rest[0], 64)
			if err != nil {
				return nil, geomerr.At(geomerr.BadCard, file, line, "cell %q: invalid density %q", card.Name, rest[0])
			}
			card.Density = d
			card.HasDensity = true
			rest = rest[1:]
		}
	}

	card.Equation = strings.Join(rest, " ")

	var trclValues []string
	for _, kv := range kvTail {
		switch kv.key {
		case "u":
			card.Universe = kv.value
		case "lat":
			card.Lattice = kv.value
		case "fill":
			card.FillRaw = kv.value
		case "trcl":
			trclValues = append(trclValues, kv.value)
		case "*trcl":
			trclValues = append(trclValues, "*"+kv.value)
		default:
			card.Other[kv.key] = kv.value
		}
	}
	card.TrclRaw = SolveTrcl(trclValues)
	return card, nil
}

// SolveTrcl implements spec.md §4.8's solve_trcl: accumulate every
// trcl=/*trcl= value into a single comma-separated canonical string,
// preserving a leading "*" on each comma-segment that came from a
// "*trcl=" occurrence. Each input value may itself already be a
// parenthesized TR argument list or a bare TR number; the leading "*"
// here is the card-level marker, distinct from the per-component "*"
// handled inside xform.Compose.
func SolveTrcl(values []string) string {
	if len(values) == 0 {
		return ""
	}
	segs := make([]string, len(values))
	for i, v := range values {
		v = strings.TrimSpace(v)
		segs[i] = v
	}
	return strings.Join(segs, ",")
}

// ComplementNames returns the sorted, de-duplicated set of cell names
// referenced via "#name" in eq.
func ComplementNames(eq string) []string {
	seen := map[string]bool{}
	for _, tok := range strings.Fields(eq) {
		tok = strings.Trim(tok, "()")
		if strings.HasPrefix(tok, "#") {
			seen[strings.TrimPrefix(tok, "#")] = true
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// SurfaceNames returns the sorted, de-duplicated set of surface names
// referenced (with sign stripped) in eq, excluding "#"-complement
// tokens and the boolean operators "(", ")", ":".
func SurfaceNames(eq string) []string {
	seen := map[string]bool{}
	for _, tok := range tokenizeEquation(eq) {
		if tok == "(" || tok == ")" || tok == ":" {
			continue
		}
		if strings.HasPrefix(tok, "#") {
			continue
		}
		seen[strings.TrimLeft(tok, "+-")] = true
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// tokenizeEquation splits a cell equation into its grammar tokens:
// "(", ")", ":", and name references (each carrying its "+"/"-"/"#"
// sign, spec.md §6). Implicit AND (whitespace) is simply the absence
// of a token between two references.
func tokenizeEquation(eq string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range eq {
		switch r {
		case '(', ')', ':':
			flush()
			toks = append(toks, string(r))
		case ' ', '\t':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

// Negate implements spec.md §4.8's complement substitution: the De
// Morgan negation of eq's boolean expression, used to replace a
// "#cell" token with "(negated equation of cell)". Because De Morgan's
// law distributes through every level of parenthesization uniformly
// (¬(A∧B)=¬A∨¬B and ¬(A∨B)=¬A∧¬B recursively), a single linear pass
// suffices: implicit AND becomes explicit OR (":"), every existing
// OR becomes implicit AND, and every surface reference's sign flips.
// A "#other" token negates to "other" itself (double negation).
func Negate(eq string) string {
	raw := tokenizeEquation(eq)

	// canonicalize: make every implicit-AND adjacency an explicit "AND"
	// token, so the AND<->OR flip below is a uniform token rewrite.
	var canon []string
	for i, t := range raw {
		if i > 0 {
			prev := raw[i-1]
			if prev != ":" && prev != "(" && t != ")" && t != ":" {
				canon = append(canon, "AND")
			}
		}
		canon = append(canon, t)
	}

	var b strings.Builder
	b.WriteByte('(')
	for _, t := range canon {
		switch t {
		case "(":
			b.WriteString("(")
		case ")":
			b.WriteString(")")
		case ":":
			// OR flips to (implicit) AND: emit nothing, the adjacency
			// of the surrounding tokens already reads as implicit AND.
		case "AND":
			b.WriteString(" : ")
		default:
			s := b.String()
			if len(s) > 0 {
				last := s[len(s)-1]
				if last != '(' && last != ' ' {
					b.WriteByte(' ')
				}
			}
			b.WriteString(negateToken(t))
		}
	}
	b.WriteByte(')')
	return b.String()
}

func negateToken(t string) string {
	if strings.HasPrefix(t, "#") {
		return strings.TrimPrefix(t, "#") // De Morgan double-negation: #cell's complement is the cell itself.
	}
	if strings.HasPrefix(t, "-") {
		return "+" + strings.TrimPrefix(t, "-")
	}
	if strings.HasPrefix(t, "+") {
		return "-" + strings.TrimPrefix(t, "+")
	}
	return "-" + t
}
