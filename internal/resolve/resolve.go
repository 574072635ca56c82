package resolve

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/cpmech/mcgeom/internal/bbox"
	"github.com/cpmech/mcgeom/internal/card"
	"github.com/cpmech/mcgeom/internal/depsolve"
	"github.com/cpmech/mcgeom/internal/diag"
	"github.com/cpmech/mcgeom/internal/exprx"
	"github.com/cpmech/mcgeom/internal/fill"
	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/macro"
	"github.com/cpmech/mcgeom/internal/mat"
	"github.com/cpmech/mcgeom/internal/surf"
	"github.com/cpmech/mcgeom/internal/surfmap"
	"github.com/cpmech/mcgeom/internal/vec3"
	"github.com/cpmech/mcgeom/internal/xform"
)

// Pipeline drives the end-to-end resolution spec.md §2's data-flow
// line describes: surface cards (with macrobody expansion) into a
// SurfaceMap, cell cards through dependency ordering, LIKE-BUT/
// complement/TRCL resolution, and FILL/LATTICE expansion feeding back
// into the same SurfaceMap for each fresh element.
type Pipeline struct {
	SM      *surfmap.Map
	Sink    *diag.Sink
	Oracle  exprx.Oracle
	idSeq   int32
	macros  map[string]macro.Result
	Workers int
}

// NewPipeline builds an empty Pipeline. workers<1 is treated as 1 by fill.Expand.
func NewPipeline(oracle exprx.Oracle, sink *diag.Sink, workers int) *Pipeline {
	return &Pipeline{
		SM:      surfmap.New(),
		Sink:    sink,
		Oracle:  oracle,
		macros:  map[string]macro.Result{},
		Workers: workers,
	}
}

// AllocID hands out a fresh surface id.
func (p *Pipeline) AllocID() int32 {
	return atomic.AddInt32(&p.idSeq, 1)
}

// RegisterSurface registers s and its reversed mirror under "-"+s.Name(),
// matching spec.md §2's "add reversed surfaces" post-C6 step and the
// same forward/reverse pairing RegisterTransformed maintains.
func (p *Pipeline) RegisterSurface(s surf.Surface) error {
	if err := p.SM.Register(s); err != nil {
		return err
	}
	rev := s.Reverse().Renamed(p.AllocID(), "-"+s.Name())
	return p.SM.Register(rev)
}

// LoadSurfaceCard ingests one parsed surface card (spec.md §4.1, §4.7):
// resolves any TR reference, dispatches to BuildSurface or
// ExpandMacrobody, and registers the resulting primitive(s).
func (p *Pipeline) LoadSurfaceCard(c *card.SurfaceCard, trTable *xform.Table) error {
	aff, err := p.resolveSurfaceTransform(c, trTable)
	if err != nil {
		return err
	}
	warn := func(msg string) {
		if p.Sink != nil {
			p.Sink.Warn("%s:%d: %s", c.File, c.Line, msg)
		}
	}

	base := c.BareName()
	if macrobodyMnemonics[c.Mnemonic] {
		res, err := ExpandMacrobody(c.File, c.Line, base, c.Mnemonic, c.Args, aff, func() int32 { return p.AllocID() }, warn)
		if err != nil {
			return err
		}
		for _, s := range res.Surfaces {
			if err := p.RegisterSurface(s); err != nil {
				return err
			}
		}
		p.macros[base] = res
		return nil
	}

	s, err := BuildSurface(p.AllocID(), c)
	if err != nil {
		return err
	}
	s = s.Transform(aff)
	return p.RegisterSurface(s)
}

func (p *Pipeline) resolveSurfaceTransform(c *card.SurfaceCard, trTable *xform.Table) (mat.Affine, error) {
	warn := func(msg string) {
		if p.Sink != nil {
			p.Sink.Warn("%s:%d: %s", c.File, c.Line, msg)
		}
	}
	switch {
	case c.HasTrNum:
		aff, ok := trTable.Lookup(c.TrNum)
		if !ok {
			return mat.Affine{}, geomerr.At(geomerr.UndefinedTr, c.File, c.Line, "TR%d is referenced but never defined", c.TrNum)
		}
		return aff, nil
	case c.Trsf != "":
		return xform.Compose(c.Trsf, trTable, warn)
	case len(c.Trcl) > 0:
		return xform.Compose(strings.Join(c.Trcl, ","), trTable, warn)
	default:
		return mat.Identity(), nil
	}
}

// substituteMacrobodies rewrites every "<sign><base>" token in eq whose
// base name is a registered macrobody into its AND/OR replacement form
// (spec.md §4.7's replace()).
func (p *Pipeline) substituteMacrobodies(eq string) string {
	toks := equationTokens(eq)
	var out []string
	for _, t := range toks {
		if t == "(" || t == ")" || t == ":" || strings.HasPrefix(t, "#") {
			out = append(out, t)
			continue
		}
		sign := byte('-')
		bare := t
		if strings.HasPrefix(bare, "+") {
			sign = '+'
			bare = bare[1:]
		} else if strings.HasPrefix(bare, "-") {
			bare = bare[1:]
		}
		res, ok := p.macros[bare]
		if !ok {
			out = append(out, t)
			continue
		}
		out = append(out, macro.Replace(sign, res, namesOfResult(res)))
	}
	return strings.Join(out, " ")
}

func namesOfResult(r macro.Result) []string {
	names := make([]string, len(r.Surfaces))
	for i, s := range r.Surfaces {
		names[i] = s.Name()
	}
	return names
}

// ResolvedCell is one fully resolved cell: its final (macrobody- and
// complement-substituted) equation and derived bounding box, plus any
// FILL-expanded element cells.
type ResolvedCell struct {
	Name     string
	Material string
	Density  float64
	Equation string
	BBox     bbox.Box
	Elements []ResolvedCell
}

// ResolveCells implements C7/C8/C9 end to end (spec.md §4.8/§4.9):
// topologically order the cards via depsolve, then walk them in order
// resolving LIKE-BUT inheritance, "#cell" complements, macrobody
// substitution, and FILL/LATTICE expansion.
func (p *Pipeline) ResolveCells(ctx context.Context, cards []*card.CellCard, trTable *xform.Table) ([]ResolvedCell, error) {
	byName := make(map[string]*card.CellCard, len(cards))
	records := make([]depsolve.Record, 0, len(cards))
	for _, c := range cards {
		byName[c.Name] = c
		records = append(records, depsolve.Record{
			Name:         c.Name,
			Universe:     c.Universe,
			LikeCell:     c.LikeCell,
			Complements:  card.ComplementNames(c.Equation),
			FillUniverse: fillUniverse(c.FillRaw),
		})
	}
	order, err := depsolve.Solve(ctx, records)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]ResolvedCell, len(cards))
	cellBoxes := make(map[string]bbox.Box, len(cards))
	out := make([]ResolvedCell, 0, len(cards))

	for _, name := range order.Order {
		c := byName[name]
		rc, err := p.resolveOneCell(ctx, c, resolved, cellBoxes, trTable)
		if err != nil {
			return nil, err
		}
		resolved[name] = rc
		cellBoxes[name] = rc.BBox
		out = append(out, rc)
	}
	return out, nil
}

func (p *Pipeline) resolveOneCell(ctx context.Context, c *card.CellCard, resolved map[string]ResolvedCell, cellBoxes map[string]bbox.Box, trTable *xform.Table) (ResolvedCell, error) {
	rc := ResolvedCell{Name: c.Name, Material: c.Material, Density: c.Density}
	eq := c.Equation

	if c.LikeCell != "" {
		src, ok := resolved[c.LikeCell]
		if !ok {
			return ResolvedCell{}, geomerr.At(geomerr.BadCard, c.File, c.Line, "cell %q: like-but source %q not yet resolved", c.Name, c.LikeCell)
		}
		eq = src.Equation
		if rc.Material == "" {
			rc.Material = src.Material
		}
		if !c.HasDensity {
			rc.Density = src.Density
		}
	}

	for _, comp := range card.ComplementNames(eq) {
		src, ok := resolved[comp]
		if !ok {
			return ResolvedCell{}, geomerr.At(geomerr.BadCard, c.File, c.Line, "cell %q: complement #%s not yet resolved", c.Name, comp)
		}
		eq = strings.ReplaceAll(eq, "#"+comp, card.Negate(src.Equation))
	}

	eq = p.substituteMacrobodies(eq)

	if c.TrclRaw != "" {
		var err error
		eq, err = p.propagateTrcl(c, eq, trTable)
		if err != nil {
			return ResolvedCell{}, err
		}
	}

	warn := func(msg string) {
		if p.Sink != nil {
			p.Sink.Warn("%s:%d: %s", c.File, c.Line, msg)
		}
	}
	box, err := BoxOfEquation(eq, p.SM, cellBoxes, warn)
	if err != nil {
		return ResolvedCell{}, err
	}
	rc.Equation = eq
	rc.BBox = box

	if c.Lattice != "" && c.FillRaw != "" {
		elements, err := p.expandFill(ctx, c, eq, box)
		if err != nil {
			return ResolvedCell{}, err
		}
		rc.Elements = elements
	}
	return rc, nil
}

// propagateTrcl implements spec.md §4.8's TRCL propagation onto
// surfaces: every surface name in eq that is not already a
// transformed variant is re-registered via SurfaceMap.RegisterTransformed
// under this cell as anchor, and eq is rewritten to the new names.
func (p *Pipeline) propagateTrcl(c *card.CellCard, eq string, trTable *xform.Table) (string, error) {
	warn := func(msg string) {
		if p.Sink != nil {
			p.Sink.Warn("%s:%d: %s", c.File, c.Line, msg)
		}
	}
	aff, err := xform.Compose(c.TrclRaw, trTable, warn)
	if err != nil {
		return "", err
	}
	return translateSurfaceEquation(eq, func(bare string) (string, error) {
		return p.SM.RegisterTransformed(bare, c.Name, aff)
	})
}

// expandFill derives an axis-aligned lattice basis from the outer
// cell's own bounding box (an explicit simplification of MCNP's
// surface-spacing-derived lattice vectors; DESIGN.md records this as
// an Open Question resolution) and drives fill.Expand.
func (p *Pipeline) expandFill(ctx context.Context, c *card.CellCard, eq string, box bbox.Box) ([]ResolvedCell, error) {
	dx, dy, dz := box.Xmax-box.Xmin, box.Ymax-box.Ymin, box.Zmax-box.Zmin
	center := vec3.New((box.Xmin+box.Xmax)/2, (box.Ymin+box.Ymax)/2, (box.Zmin+box.Zmax)/2)

	var kind fill.Kind
	var vectors []vec3.Vector
	vs := vec3.New(dx, 0, 0)
	if c.Lattice == "2" {
		kind = fill.Hex
		vt := rotateAboutZ(vs, 60)
		vectors = []vec3.Vector{vs, vt}
	} else {
		kind = fill.Rect3D
		vectors = []vec3.Vector{vs, vec3.New(0, dy, 0), vec3.New(0, 0, dz)}
	}

	ranges, err := fill.CalcDimensionDeclarator(kind, center, vectors, box)
	if err != nil {
		return nil, err
	}

	basis := fill.Basis{Vs: vectors[0], Vt: vectors[1]}
	if len(vectors) == 3 {
		basis.Vu = vectors[2]
	}

	elements, err := fill.Expand(ctx, c.Name, eq, basis, ranges, box, p.SM, p.Workers, nil, nil)
	if err != nil {
		return nil, err
	}

	out := make([]ResolvedCell, len(elements))
	for i, el := range elements {
		out[i] = ResolvedCell{Name: el.Name, Material: c.Material, Density: c.Density, Equation: el.Equation, BBox: el.BBox}
	}
	return out, nil
}

// rotateAboutZ rotates v by deg degrees around the z axis, used to
// derive the second hex-lattice basis vector from the first.
func rotateAboutZ(v vec3.Vector, deg float64) vec3.Vector {
	rad := deg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	return vec3.New(v.X*c-v.Y*s, v.X*s+v.Y*c, v.Z)
}

// translateSurfaceEquation rewrites every surface-name reference in eq
// via rename, preserving sign and passing "(", ")", ":" and
// "#"-complement tokens through unchanged.
func translateSurfaceEquation(eq string, rename func(string) (string, error)) (string, error) {
	toks := equationTokens(eq)
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		if t == "(" || t == ")" || t == ":" || strings.HasPrefix(t, "#") {
			out = append(out, t)
			continue
		}
		sign := ""
		bare := t
		if strings.HasPrefix(bare, "+") || strings.HasPrefix(bare, "-") {
			sign = bare[:1]
			bare = bare[1:]
		}
		renamed, err := rename(bare)
		if err != nil {
			return "", err
		}
		out = append(out, sign+renamed)
	}
	return strings.Join(out, " "), nil
}

// fillUniverse extracts the bare universe-id token a "fill=" value
// leads with (an optional parenthesized inline transform may follow).
func fillUniverse(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if i := strings.IndexAny(raw, " ("); i >= 0 {
		raw = raw[:i]
	}
	if _, err := strconv.Atoi(raw); err != nil {
		return ""
	}
	return raw
}
