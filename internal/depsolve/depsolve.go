package depsolve

import (
	"context"
	"sort"

	"github.com/cpmech/mcgeom/internal/geomerr"
)

// Record is the dependency-relevant projection of one cell card
// (spec.md §4.8): a card depends on every cell named in a `#N`
// complement, on its LIKE-BUT source, and on every universe id
// referenced by `fill`.
type Record struct {
	Name         string
	Universe     string // the card's own u=, "" if none
	LikeCell     string // "" if no "like ... but" prefix
	Complements  []string
	FillUniverse string // "" if no fill=
}

// Result is the outcome of a dependency solve: the cell names in an
// order such that every dependency precedes its dependent.
type Result struct {
	Order []string
}

// Solve builds the dependency graph over records and returns a Kahn
// topological order. ctx is checked cooperatively between rounds; a
// cancelled or expired context aborts the sort early.
func Solve(ctx context.Context, records []Record) (*Result, error) {
	g := newGraph()
	universe := make(map[string][]string) // universe id -> member cell names

	for _, r := range records {
		g.addVertex(r.Name)
		if r.Universe != "" {
			universe[r.Universe] = append(universe[r.Universe], r.Name)
		}
	}

	for _, r := range records {
		if r.LikeCell != "" {
			if !g.hasVertex(r.LikeCell) {
				return nil, geomerr.New(geomerr.BadCard, "cell %q: like-but source %q is not a defined cell", r.Name, r.LikeCell)
			}
			g.addEdge(r.LikeCell, r.Name)
		}
		for _, c := range r.Complements {
			if !g.hasVertex(c) {
				return nil, geomerr.New(geomerr.BadCard, "cell %q: complement #%s is not a defined cell", r.Name, c)
			}
			g.addEdge(c, r.Name)
		}
		if r.FillUniverse != "" {
			members, ok := universe[r.FillUniverse]
			if !ok {
				return nil, geomerr.New(geomerr.BadCard, "cell %q: fill references undefined universe %q", r.Name, r.FillUniverse)
			}
			for _, m := range members {
				if m == r.Name {
					continue
				}
				g.addEdge(m, r.Name)
			}
		}
	}

	order, err := kahn(ctx, g)
	if err != nil {
		return nil, err
	}
	return &Result{Order: order}, nil
}

// kahn runs Kahn's algorithm, always advancing the lowest-order
// ready vertex so the result is deterministic when several cells
// become ready in the same round.
func kahn(ctx context.Context, g *graph) ([]string, error) {
	deg := g.inDegree()
	order := make([]string, 0, len(g.vertices))
	done := make(map[string]bool, len(g.vertices))

	for len(order) < len(g.vertices) {
		if err := ctx.Err(); err != nil {
			return nil, cancelErr(err)
		}

		var ready []*vertex
		for name, d := range deg {
			if d == 0 && !done[name] {
				ready = append(ready, g.vertices[name])
			}
		}
		if len(ready) == 0 {
			return nil, geomerr.New(geomerr.CircularReference, "cycle among cells: %v", remaining(g, done))
		}
		sort.Slice(ready, func(i, j int) bool { return ready[i].order < ready[j].order })

		v := ready[0]
		order = append(order, v.name)
		done[v.name] = true
		for to := range g.adj[v.name] {
			deg[to]--
		}
	}
	return order, nil
}

func remaining(g *graph, done map[string]bool) []string {
	var names []string
	for name := range g.vertices {
		if !done[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func cancelErr(err error) error {
	if err == context.DeadlineExceeded {
		return geomerr.Wrap(geomerr.Timeout, err, "dependency solve timed out")
	}
	return geomerr.Wrap(geomerr.Cancelled, err, "dependency solve cancelled")
}
