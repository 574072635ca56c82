package fill

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cpmech/mcgeom/internal/bbox"
	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/mat"
	"github.com/cpmech/mcgeom/internal/surfmap"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// Basis is the set of lattice index vectors (spec.md §4.9). Vu is the
// zero vector for a 2-D lattice.
type Basis struct {
	Vs, Vt, Vu vec3.Vector
}

// Element is one instantiated lattice element cell.
type Element struct {
	Name     string
	Equation string
	BBox     bbox.Box
}

// CancelFlag is the atomic Boolean each FILL worker polls before
// starting a new element (spec.md §5's cancel_flag).
type CancelFlag struct {
	flag int32
}

// Cancel requests cooperative cancellation.
func (c *CancelFlag) Cancel() { atomic.StoreInt32(&c.flag, 1) }

// Cancelled reports whether Cancel has been called.
func (c *CancelFlag) Cancelled() bool { return atomic.LoadInt32(&c.flag) == 1 }

// Counter is the shared atomic progress counter of spec.md §5.
type Counter struct{ n int64 }

// Add increments the counter by delta and returns the new value.
func (c *Counter) Add(delta int64) int64 { return atomic.AddInt64(&c.n, delta) }

// Load reads the current counter value.
func (c *Counter) Load() int64 { return atomic.LoadInt64(&c.n) }

// Expand instantiates one element cell per index tuple in ranges
// (spec.md §4.9): the outer cell's equation translated by
// i·Vs+j·Vt+[k·Vu], its surfaces re-registered in sm via
// RegisterTransformed, and elements whose translated bounding box is
// disjoint from outerBB pruned. Work fans out across workers
// goroutines sharing sm (already internally mutex-guarded) and the
// optional cancel/progress signals; workers<1 is treated as 1.
func Expand(ctx context.Context, baseName, equation string, basis Basis, ranges []Range, outerBB bbox.Box, sm *surfmap.Map, workers int, cancel *CancelFlag, progress *Counter) ([]Element, error) {
	if len(ranges) != 2 && len(ranges) != 3 {
		return nil, geomerr.New(geomerr.BadCard, "fill expansion expects 2 or 3 index ranges, got %d", len(ranges))
	}
	tuples := buildIndexTuples(ranges)
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan []int, len(tuples))
	for _, t := range tuples {
		jobs <- t
	}
	close(jobs)

	var (
		mu       sync.Mutex
		results  []Element
		firstErr error
		wg       sync.WaitGroup
	)
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if cancel != nil && cancel.Cancelled() {
					setErr(geomerr.New(geomerr.Cancelled, "fill expansion of %q cancelled", baseName))
					return
				}
				if err := ctx.Err(); err != nil {
					setErr(cancelErr(err))
					return
				}
				el, pruned, err := instantiate(baseName, equation, basis, idx, len(ranges), outerBB, sm)
				if err != nil {
					setErr(err)
					return
				}
				if pruned {
					continue
				}
				mu.Lock()
				results = append(results, el)
				mu.Unlock()
				if progress != nil {
					progress.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results, nil
}

func cancelErr(err error) error {
	if err == context.DeadlineExceeded {
		return geomerr.Wrap(geomerr.Timeout, err, "fill expansion timed out")
	}
	return geomerr.Wrap(geomerr.Cancelled, err, "fill expansion cancelled")
}

// buildIndexTuples enumerates the Cartesian product of the per-axis
// ranges, each tuple in (i,j[,k]) order.
func buildIndexTuples(ranges []Range) [][]int {
	var out [][]int
	var rec func(axis int, cur []int)
	rec = func(axis int, cur []int) {
		if axis == len(ranges) {
			tuple := make([]int, len(cur))
			copy(tuple, cur)
			out = append(out, tuple)
			return
		}
		for v := ranges[axis].Min; v <= ranges[axis].Max; v++ {
			rec(axis+1, append(cur, v))
		}
	}
	rec(0, nil)
	return out
}

// instantiate builds the single element cell at idx, or reports
// pruned=true if its translated bounding box is disjoint from
// outerBB.
func instantiate(baseName, equation string, basis Basis, idx []int, dims int, outerBB bbox.Box, sm *surfmap.Map) (Element, bool, error) {
	t := basis.Vs.Scale(float64(idx[0])).Add(basis.Vt.Scale(float64(idx[1])))
	if dims == 3 {
		t = t.Add(basis.Vu.Scale(float64(idx[2])))
	}
	aff := mat.CreateAffine(mat.Identity3(), t)
	name := formatElementName(baseName, idx)

	newEq, err := translateEquation(equation, func(bare string) (string, error) {
		return sm.RegisterTransformed(bare, name, aff)
	})
	if err != nil {
		return Element{}, false, err
	}

	elBB := outerBB.Transform(aff.Apply)
	if bbox.And(elBB, outerBB).IsEmpty() {
		return Element{}, true, nil
	}
	return Element{Name: name, Equation: newEq, BBox: elBB}, false, nil
}

// formatElementName builds "<base>[<i>,<j>[,<k>]]" (spec.md §4.9).
func formatElementName(base string, idx []int) string {
	s := base + "["
	for i, v := range idx {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%d", v)
	}
	return s + "]"
}
