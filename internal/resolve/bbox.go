package resolve

import (
	"strings"

	"github.com/cpmech/mcgeom/internal/bbox"
	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/surfmap"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// equationTokens splits a cell equation into "(", ")", ":" and signed
// name references, the same small-tokenizer idiom internal/card and
// internal/fill each keep a private copy of (DESIGN.md).
func equationTokens(eq string) []string {
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

// eqParser recursive-descents a cell equation into a union (OR) of
// conjunctions (AND) of bbox.HalfSpace, per the grammar `expr := term
// (':' term)*`, `term := factor+` (implicit AND by adjacency), `factor
// := '(' expr ')' | '#'name | signed-surface-name`.
type eqParser struct {
	toks      []string
	pos       int
	sm        *surfmap.Map
	cellBoxes map[string]bbox.Box
	warn      func(string)
}

func parseEquationBox(eq string, sm *surfmap.Map, cellBoxes map[string]bbox.Box, warn func(string)) ([]bbox.Conjunction, error) {
	p := &eqParser{toks: equationTokens(eq), sm: sm, cellBoxes: cellBoxes, warn: warn}
	u, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, geomerr.New(geomerr.BadCard, "equation %q: unexpected trailing token %q", eq, p.toks[p.pos])
	}
	return u, nil
}

func (p *eqParser) peek() (string, bool) {
	if p.pos >= len(p.toks) {
		return "", false
	}
	return p.toks[p.pos], true
}

func (p *eqParser) expr() ([]bbox.Conjunction, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t != ":" {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = append(left, right...)
	}
}

func (p *eqParser) term() ([]bbox.Conjunction, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t == ":" || t == ")" {
			return left, nil
		}
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left, err = bbox.MergeConjunctionsAnd(left, right)
		if err != nil {
			return nil, err
		}
	}
}

func (p *eqParser) factor() ([]bbox.Conjunction, error) {
	t, ok := p.peek()
	if !ok {
		return nil, geomerr.New(geomerr.BadCard, "equation ended unexpectedly")
	}
	if t == "(" {
		p.pos++
		u, err := p.expr()
		if err != nil {
			return nil, err
		}
		if c, ok := p.peek(); !ok || c != ")" {
			return nil, geomerr.New(geomerr.BadCard, "unbalanced parentheses in equation")
		}
		p.pos++
		return u, nil
	}
	p.pos++
	if strings.HasPrefix(t, "#") {
		name := strings.TrimPrefix(t, "#")
		box, ok := p.cellBoxes[name]
		if !ok {
			if p.warn != nil {
				p.warn("complement of cell " + name + " has no known bounding box yet; treating as universal")
			}
			box = bbox.Universal()
		}
		return []bbox.Conjunction{universalConjunctionFromBox(box)}, nil
	}
	s, ok := p.sm.GetByName(strings.TrimPrefix(t, "+"))
	if !ok {
		return nil, geomerr.New(geomerr.BadCard, "surface %q is not registered", t)
	}
	return s.BoundingPlanes(p.warn), nil
}

// universalConjunctionFromBox wraps an already-computed box as its
// equivalent conjunction of up to 6 axis-aligned half-spaces (one pair
// per bounded axis; an axis saturating bbox.MaxExtent contributes no
// half-space, since it imposes no real constraint), so a complement
// reference composes with MergeConjunctionsAnd exactly like a
// surface's own bounding planes would.
func universalConjunctionFromBox(b bbox.Box) bbox.Conjunction {
	var conj bbox.Conjunction
	addMin := func(normal vec3.Vector, dist float64) {
		if dist > -bbox.MaxExtent {
			conj = append(conj, bbox.HalfSpace{Normal: normal, Dist: dist})
		}
	}
	addMax := func(normal vec3.Vector, dist float64) {
		if dist < bbox.MaxExtent {
			conj = append(conj, bbox.HalfSpace{Normal: normal.Scale(-1), Dist: -dist})
		}
	}
	addMin(vec3.New(1, 0, 0), b.Xmin)
	addMax(vec3.New(1, 0, 0), b.Xmax)
	addMin(vec3.New(0, 1, 0), b.Ymin)
	addMax(vec3.New(0, 1, 0), b.Ymax)
	addMin(vec3.New(0, 0, 1), b.Zmin)
	addMax(vec3.New(0, 0, 1), b.Zmax)
	return conj
}

// BoxOfEquation computes the bounding box of a resolved cell equation
// (spec.md §4.6/§4.8): parses eq into a union of conjunctions of
// half-spaces (pulling each surface's BoundingPlanes from sm, and each
// "#cell" complement's box from cellBoxes) and folds it through
// bbox.FromPlanes.
func BoxOfEquation(eq string, sm *surfmap.Map, cellBoxes map[string]bbox.Box, warn func(string)) (bbox.Box, error) {
	union, err := parseEquationBox(eq, sm, cellBoxes, warn)
	if err != nil {
		return bbox.Box{}, err
	}
	return bbox.FromPlanes(nil, union)
}
