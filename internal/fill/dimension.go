// Package fill implements component C9 (spec.md §4.9): FILL/LATTICE
// expansion of an outer cell into its per-index element cells, and the
// bounded worker pool (spec.md §5) that drives the expansion
// concurrently. Grounded on gofem/fem's element-loop/worker idiom
// (parallel assembly over elements sharing one mesh) and on
// gosl/mpi's rank/atomic-flag cooperative-cancellation pattern, here
// generalized from finite-element assembly to lattice-cell
// instantiation.
package fill

import (
	"math"

	"github.com/cpmech/mcgeom/internal/bbox"
	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/mat"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// Kind is the lattice dimensionality of spec.md §4.9.
type Kind int

const (
	Rect2D Kind = iota
	Rect3D
	Hex
)

// Range is an inclusive per-axis index span.
type Range struct {
	Min, Max int
}

// maxIndexMagnitude is the §4.9 ExcessMaxIndex threshold.
const maxIndexMagnitude = 10000

// unboundedFrac flags an outer-bb vertex component that saturates
// bbox.MaxExtent (an "infinite" axis per spec.md §3).
const unboundedFrac = 0.5

// CalcDimensionDeclarator converts every vertex of outerBB into the
// basis formed by vectors (relative to baseCenter), rounds each
// coordinate to the lattice cell it falls in (half-bin shift: cell i
// spans [i-0.5, i+0.5], so ordinary round-half-away-from-zero already
// gives the right cell), and aggregates per-axis min/max. vectors has
// 2 entries for Rect2D, 3 for Rect3D, and 2 or 4 for Hex (spec.md
// §4.9).
func CalcDimensionDeclarator(kind Kind, baseCenter vec3.Vector, vectors []vec3.Vector, outerBB bbox.Box) ([]Range, error) {
	switch kind {
	case Rect2D:
		if len(vectors) != 2 {
			return nil, geomerr.New(geomerr.BadCard, "2-D lattice requires exactly 2 index vectors, got %d", len(vectors))
		}
		return calcRect(baseCenter, vectors[0], vectors[1], nil, outerBB)
	case Rect3D:
		if len(vectors) != 3 {
			return nil, geomerr.New(geomerr.BadCard, "3-D lattice requires exactly 3 index vectors, got %d", len(vectors))
		}
		vu := vectors[2]
		return calcRect(baseCenter, vectors[0], vectors[1], &vu, outerBB)
	case Hex:
		if len(vectors) != 2 && len(vectors) != 4 {
			return nil, geomerr.New(geomerr.BadCard, "hexagonal lattice requires 2 independent index vectors (or all 4), got %d", len(vectors))
		}
		return calcHex(baseCenter, vectors[0], vectors[1], outerBB)
	default:
		return nil, geomerr.New(geomerr.BadCard, "unknown lattice kind %d", int(kind))
	}
}

// calcRect handles Rect2D (vu == nil, the third axis is the free
// direction orthogonal to the lattice plane and contributes no range)
// and Rect3D (vu != nil, all three axes are bounded).
func calcRect(baseCenter, vs, vt vec3.Vector, vu *vec3.Vector, outerBB bbox.Box) ([]Range, error) {
	dims := 2
	u := vec3.Vector{}
	if vu != nil {
		dims = 3
		u = *vu
	} else {
		n, ok := vs.Cross(vt).Normalized()
		if !ok {
			return nil, geomerr.New(geomerr.DegenerateGeometry, "lattice index vectors are parallel")
		}
		u = n
	}

	minv, ok := basisInverse(vs, vt, u)
	if !ok {
		return nil, geomerr.New(geomerr.DegenerateGeometry, "lattice index vectors are not independent")
	}

	mins, maxs, unbounded := sweepVertices(baseCenter, minv, outerBB)
	return finalizeRanges(mins, maxs, unbounded, dims)
}

// calcHex implements the hexagonal case: given the two independent
// vectors, derives the redundant 60°/120° directions, computes the
// (s,t) and (s,u) bases, and merges the shared s-axis range.
func calcHex(baseCenter, vs, vt vec3.Vector, outerBB bbox.Box) ([]Range, error) {
	axis, ok := vs.Cross(vt).Normalized()
	if !ok {
		return nil, geomerr.New(geomerr.DegenerateGeometry, "hexagonal lattice index vectors are parallel")
	}
	vu := rotateAbout(vs, axis, 2*math.Pi/3) // 120 degrees, the other redundant direction

	minvST, ok := basisInverse(vs, vt, axis)
	if !ok {
		return nil, geomerr.New(geomerr.DegenerateGeometry, "hexagonal (s,t) basis is degenerate")
	}
	minvSU, ok := basisInverse(vs, vu, axis)
	if !ok {
		return nil, geomerr.New(geomerr.DegenerateGeometry, "hexagonal (s,u) basis is degenerate")
	}

	minsST, maxsST, unboundedST := sweepVertices(baseCenter, minvST, outerBB)
	minsSU, maxsSU, unboundedSU := sweepVertices(baseCenter, minvSU, outerBB)

	mins := [3]float64{math.Min(minsST[0], minsSU[0]), minsST[1], minsSU[1]}
	maxs := [3]float64{math.Max(maxsST[0], maxsSU[0]), maxsST[1], maxsSU[1]}
	unbounded := [3]bool{unboundedST[0] || unboundedSU[0], unboundedST[1], unboundedSU[1]}

	return finalizeRanges(mins, maxs, unbounded, 3)
}

// basisInverse builds the row-basis matrix (rows vs,vt,vu) and
// returns its inverse, so that Minv.MulVec(world-baseCenter) yields
// the (s,t,u) basis coordinates of a world point.
func basisInverse(vs, vt, vu vec3.Vector) (mat.Mat3, bool) {
	m := mat.Mat3{
		{vs.X, vs.Y, vs.Z},
		{vt.X, vt.Y, vt.Z},
		{vu.X, vu.Y, vu.Z},
	}
	return mat.Inverse3(m)
}

// sweepVertices converts every vertex of outerBB into basis
// coordinates via minv, rounds each to its containing cell index
// (round-half-away-from-zero), and tracks per-axis min/max. An axis
// component that saturates bbox.MaxExtent marks that axis unbounded.
func sweepVertices(baseCenter vec3.Vector, minv mat.Mat3, outerBB bbox.Box) (mins, maxs [3]float64, unbounded [3]bool) {
	mins = [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxs = [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range outerBB.Vertices() {
		rel := v.Sub(baseCenter)
		local := minv.MulVec(rel)
		comps := [3]float64{local.X, local.Y, local.Z}
		for a := 0; a < 3; a++ {
			if math.Abs(comps[a]) >= bbox.MaxExtent*unboundedFrac {
				unbounded[a] = true
				continue
			}
			idx := math.Round(comps[a])
			if idx < mins[a] {
				mins[a] = idx
			}
			if idx > maxs[a] {
				maxs[a] = idx
			}
		}
	}
	return
}

func finalizeRanges(mins, maxs [3]float64, unbounded [3]bool, dims int) ([]Range, error) {
	ranges := make([]Range, dims)
	for a := 0; a < dims; a++ {
		if unbounded[a] {
			return nil, geomerr.New(geomerr.InfiniteLattice, "lattice axis %d is unbounded", a)
		}
		lo, hi := clampToInt(mins[a]), clampToInt(maxs[a])
		if absMax(lo, hi) >= maxIndexMagnitude {
			return nil, geomerr.New(geomerr.ExcessMaxIndex, "lattice axis %d index magnitude reaches %d", a, absMax(lo, hi))
		}
		ranges[a] = Range{Min: lo, Max: hi}
	}
	return ranges, nil
}

func clampToInt(x float64) int {
	if x > math.MaxInt32 {
		return math.MaxInt32
	}
	if x < math.MinInt32 {
		return math.MinInt32
	}
	return int(x)
}

func absMax(lo, hi int) int {
	a, b := lo, hi
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}

// rotateAbout rotates v by angle radians around the unit axis, via
// Rodrigues' formula.
func rotateAbout(v, axis vec3.Vector, angle float64) vec3.Vector {
	c, s := math.Cos(angle), math.Sin(angle)
	return v.Scale(c).Add(axis.Cross(v).Scale(s)).Add(axis.Scale(axis.Dot(v) * (1 - c)))
}
