// Package bbox implements the axis-aligned bounding-box engine of
// spec.md §3 and §4.6 (component C3): box set algebra, construction
// from a union-of-conjunctions of half-planes, and vertex enumeration.
// It is grounded on the mesh-bounds bookkeeping of gofem/inp's mesh
// reader (Xmin/Xmax/Ymin/Ymax/Zmin/Zmax derived from vertex sweeps),
// generalized here to the half-space/plane-vector algebra spec.md
// §4.6 requires.
package bbox

import (
	"math"

	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// MaxExtent is the saturation bound for an "unbounded" axis (spec.md §3).
const MaxExtent = 1e35

// ZeroEps is the minimum axis span below which a box is Empty (spec.md §3).
const ZeroEps = 1e-10

// PlaneEps is the plane-proximity tolerance (spec.md §9).
const PlaneEps = 1e-7

// Box is an axis-aligned bounding box.
type Box struct {
	Xmin, Xmax, Ymin, Ymax, Zmin, Zmax float64
}

// Universal is the box saturating MaxExtent on every side.
func Universal() Box {
	return Box{-MaxExtent, MaxExtent, -MaxExtent, MaxExtent, -MaxExtent, MaxExtent}
}

// Empty is the canonical empty box (an inverted, zero-span interval).
func Empty() Box {
	return Box{1, -1, 1, -1, 1, -1}
}

// IsEmpty reports whether any axis span is below ZeroEps.
func (b Box) IsEmpty() bool {
	return b.Xmax-b.Xmin < ZeroEps || b.Ymax-b.Ymin < ZeroEps || b.Zmax-b.Zmin < ZeroEps
}

// IsUniversal reports whether all bounds saturate MaxExtent.
func (b Box) IsUniversal() bool {
	const tol = MaxExtent * 1e-9
	return math.Abs(b.Xmin+MaxExtent) < tol && math.Abs(b.Xmax-MaxExtent) < tol &&
		math.Abs(b.Ymin+MaxExtent) < tol && math.Abs(b.Ymax-MaxExtent) < tol &&
		math.Abs(b.Zmin+MaxExtent) < tol && math.Abs(b.Zmax-MaxExtent) < tol
}

// And returns the axis-wise interval intersection of a and b, or Empty
// if the boxes are disjoint along any axis.
func And(a, b Box) Box {
	r := Box{
		Xmin: math.Max(a.Xmin, b.Xmin), Xmax: math.Min(a.Xmax, b.Xmax),
		Ymin: math.Max(a.Ymin, b.Ymin), Ymax: math.Min(a.Ymax, b.Ymax),
		Zmin: math.Max(a.Zmin, b.Zmin), Zmax: math.Min(a.Zmax, b.Zmax),
	}
	if r.Xmin > r.Xmax || r.Ymin > r.Ymax || r.Zmin > r.Zmax {
		return Empty()
	}
	return r
}

// Or returns the axis-wise interval hull of a and b. Empty∨x=x.
func Or(a, b Box) Box {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	return Box{
		Xmin: math.Min(a.Xmin, b.Xmin), Xmax: math.Max(a.Xmax, b.Xmax),
		Ymin: math.Min(a.Ymin, b.Ymin), Ymax: math.Max(a.Ymax, b.Ymax),
		Zmin: math.Min(a.Zmin, b.Zmin), Zmax: math.Max(a.Zmax, b.Zmax),
	}
}

// Vertices enumerates the 8 corners of b.
func (b Box) Vertices() [8]vec3.Vector {
	return [8]vec3.Vector{
		{X: b.Xmin, Y: b.Ymin, Z: b.Zmin}, {X: b.Xmax, Y: b.Ymin, Z: b.Zmin},
		{X: b.Xmin, Y: b.Ymax, Z: b.Zmin}, {X: b.Xmax, Y: b.Ymax, Z: b.Zmin},
		{X: b.Xmin, Y: b.Ymin, Z: b.Zmax}, {X: b.Xmax, Y: b.Ymin, Z: b.Zmax},
		{X: b.Xmin, Y: b.Ymax, Z: b.Zmax}, {X: b.Xmax, Y: b.Ymax, Z: b.Zmax},
	}
}

// Contains reports whether p lies within b (inclusive).
func (b Box) Contains(p vec3.Vector) bool {
	return p.X >= b.Xmin-PlaneEps && p.X <= b.Xmax+PlaneEps &&
		p.Y >= b.Ymin-PlaneEps && p.Y <= b.Ymax+PlaneEps &&
		p.Z >= b.Zmin-PlaneEps && p.Z <= b.Zmax+PlaneEps
}

// Transform returns the bounding box of the transformed vertex set;
// callers needing a tight box for a non-axis-aligned transform should
// instead transform the underlying surfaces and recompute FromPlanes.
func (b Box) Transform(apply func(vec3.Vector) vec3.Vector) Box {
	verts := b.Vertices()
	out := Empty()
	pts := make([]vec3.Vector, len(verts))
	for i, v := range verts {
		pts[i] = apply(v)
	}
	fb := FromPoints(pts)
	out = Or(out, fb)
	return out
}

// HalfSpace is a single oriented plane: the "forward" side is
// {x : Normal·x >= Distance}.
type HalfSpace struct {
	Normal vec3.Vector
	Dist   float64
}

// AxisAligned reports whether h is parallel to a coordinate axis, and
// if so which one (0=x,1=y,2=z).
func (h HalfSpace) AxisAligned() (axis int, ok bool) {
	const axTol = 1e-9
	nonzero := 0
	axis = -1
	comps := [3]float64{h.Normal.X, h.Normal.Y, h.Normal.Z}
	for i, c := range comps {
		if math.Abs(c) > axTol {
			nonzero++
			axis = i
		}
	}
	return axis, nonzero == 1
}

// boxOf returns the half-space's own axis-aligned bounding box: a
// half-extent clip in its own normal direction and MaxExtent elsewhere
// (spec.md §4.2 for planes, generalized to any half-space used as a
// <4-plane conjunction fallback in §4.6).
func (h HalfSpace) boxOf() Box {
	axis, ok := h.AxisAligned()
	u := Universal()
	if !ok {
		return u
	}
	sign := 1.0
	comps := [3]float64{h.Normal.X, h.Normal.Y, h.Normal.Z}
	if comps[axis] < 0 {
		sign = -1
	}
	bound := sign * h.Dist / math.Abs(comps[axis])
	switch axis {
	case 0:
		if sign > 0 {
			u.Xmin = bound
		} else {
			u.Xmax = bound
		}
	case 1:
		if sign > 0 {
			u.Ymin = bound
		} else {
			u.Ymax = bound
		}
	default:
		if sign > 0 {
			u.Zmin = bound
		} else {
			u.Zmax = bound
		}
	}
	return u
}

// FromPoints implements spec.md §4.6's from_points degenerate case
// ladder: deduplicate, then fall back progressively from the classical
// min/max box down to "universal" as the point set degenerates.
func FromPoints(points []vec3.Vector) Box {
	var uniq []vec3.Vector
	for _, p := range points {
		dup := false
		for _, q := range uniq {
			if vec3.Distance(p, q) < PlaneEps {
				dup = true
				break
			}
		}
		if !dup {
			uniq = append(uniq, p)
		}
	}
	if len(uniq) < 2 {
		return Universal()
	}

	allCollinear := true
	for i := 2; i < len(uniq); i++ {
		if !vec3.Collinear(uniq[0], uniq[1], uniq[i], 1e-6) {
			allCollinear = false
			break
		}
	}
	if allCollinear {
		// single constrained direction: bound only axes the segment
		// spans a non-degenerate extent on; otherwise leave unbounded.
		return boxFromAxisSpans(uniq, [3]bool{true, true, true})
	}

	// check coplanar + axis-aligned plane (exactly one axis constant)
	constAxis, isAxisPlane := constantAxis(uniq)
	if isAxisPlane {
		mask := [3]bool{true, true, true}
		mask[constAxis] = true // the constant axis has no extent, so boxFromAxisSpans leaves it unbounded
		b := boxFromAxisSpans(uniq, mask)
		return b
	}

	// classical min/max
	b := Box{Xmin: uniq[0].X, Xmax: uniq[0].X, Ymin: uniq[0].Y, Ymax: uniq[0].Y, Zmin: uniq[0].Z, Zmax: uniq[0].Z}
	for _, p := range uniq[1:] {
		b.Xmin = math.Min(b.Xmin, p.X)
		b.Xmax = math.Max(b.Xmax, p.X)
		b.Ymin = math.Min(b.Ymin, p.Y)
		b.Ymax = math.Max(b.Ymax, p.Y)
		b.Zmin = math.Min(b.Zmin, p.Z)
		b.Zmax = math.Max(b.Zmax, p.Z)
	}
	return b
}

func constantAxis(pts []vec3.Vector) (axis int, ok bool) {
	for axis = 0; axis < 3; axis++ {
		c0 := pts[0].Component(axis)
		same := true
		for _, p := range pts[1:] {
			if math.Abs(p.Component(axis)-c0) > PlaneEps {
				same = false
				break
			}
		}
		if same {
			return axis, true
		}
	}
	return -1, false
}

func boxFromAxisSpans(pts []vec3.Vector, mask [3]bool) Box {
	b := Universal()
	for axis := 0; axis < 3; axis++ {
		if !mask[axis] {
			continue
		}
		lo, hi := pts[0].Component(axis), pts[0].Component(axis)
		constrained := false
		for _, p := range pts[1:] {
			c := p.Component(axis)
			if math.Abs(c-lo) > PlaneEps {
				constrained = true
			}
			lo = math.Min(lo, c)
			hi = math.Max(hi, c)
		}
		if constrained {
			switch axis {
			case 0:
				b.Xmin, b.Xmax = lo, hi
			case 1:
				b.Ymin, b.Ymax = lo, hi
			case 2:
				b.Zmin, b.Zmax = lo, hi
			}
		}
	}
	return b
}

// Conjunction is an AND (intersection) of half-spaces.
type Conjunction []HalfSpace

// TimeoutFlag is polled inside FromPlanes' triple loop over planes
// (spec.md §5); a cooperative cancellation/timeout signal.
type TimeoutFlag interface {
	Tripped() bool
}

// noTimeout never trips.
type noTimeout struct{}

func (noTimeout) Tripped() bool { return false }

// NoTimeout is a TimeoutFlag that never trips.
var NoTimeout TimeoutFlag = noTimeout{}

// FromPlanes computes the bounding box of a union of conjunctions of
// half-spaces (spec.md §4.6). Each conjunction with >=4 half-spaces is
// resolved via 3-plane intersection enumeration; conjunctions with
// fewer fall back to the per-halfspace axis-aligned box intersection.
func FromPlanes(timeout TimeoutFlag, unionOfConjunctions []Conjunction) (Box, error) {
	if timeout == nil {
		timeout = NoTimeout
	}
	result := Empty()
	for _, conj := range unionOfConjunctions {
		b, err := boundConjunction(timeout, conj)
		if err != nil {
			return Box{}, err
		}
		result = Or(result, b)
	}
	if len(unionOfConjunctions) == 0 {
		return Universal(), nil
	}
	return result, nil
}

func boundConjunction(timeout TimeoutFlag, conj Conjunction) (Box, error) {
	if len(conj) < 4 {
		b := Universal()
		for _, h := range conj {
			b = And(b, h.boxOf())
		}
		return b, nil
	}

	pts := intersectionPoints(timeout, conj, false)
	if len(pts) == 0 {
		// augment with 6 half-MaxExtent planes: a non-empty result here
		// implies the cell is genuinely unbounded along some direction.
		augmented := append(Conjunction{}, conj...)
		augmented = append(augmented, universalPlanes()...)
		pts2 := intersectionPoints(timeout, augmented, true)
		if len(pts2) > 0 {
			return Universal(), nil
		}
		return Empty(), nil
	}
	return FromPoints(pts), nil
}

func universalPlanes() Conjunction {
	return Conjunction{
		{Normal: vec3.New(1, 0, 0), Dist: -MaxExtent / 2},
		{Normal: vec3.New(-1, 0, 0), Dist: -MaxExtent / 2},
		{Normal: vec3.New(0, 1, 0), Dist: -MaxExtent / 2},
		{Normal: vec3.New(0, -1, 0), Dist: -MaxExtent / 2},
		{Normal: vec3.New(0, 0, 1), Dist: -MaxExtent / 2},
		{Normal: vec3.New(0, 0, -1), Dist: -MaxExtent / 2},
	}
}

// intersectionPoints enumerates all 3-plane intersection points of
// conj, filtered to those strictly within every other half-space of
// the conjunction (perturbed by 10*PlaneEps*normal to dodge
// surface-of-test degeneracy, per spec.md §4.6).
func intersectionPoints(timeout TimeoutFlag, conj Conjunction, allowAugmented bool) []vec3.Vector {
	n := len(conj)
	var pts []vec3.Vector
	for i := 0; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			for k := j + 1; k < n; k++ {
				if timeout.Tripped() {
					return pts
				}
				p, ok := solve3Planes(conj[i], conj[j], conj[k])
				if !ok {
					continue
				}
				if satisfiesAll(conj, p, i, j, k) {
					pts = append(pts, p)
				}
			}
		}
	}
	return pts
}

func satisfiesAll(conj Conjunction, p vec3.Vector, skip ...int) bool {
	skipSet := map[int]bool{}
	for _, s := range skip {
		skipSet[s] = true
	}
	for idx, h := range conj {
		if skipSet[idx] {
			continue
		}
		perturbed := p.Add(h.Normal.Scale(10 * PlaneEps))
		if h.Normal.Dot(perturbed) < h.Dist-PlaneEps {
			return false
		}
	}
	return true
}

// solve3Planes solves the 3x3 linear system formed by three planes'
// normal equations for their common point.
func solve3Planes(a, b, c HalfSpace) (vec3.Vector, bool) {
	// Cramer's rule on the system [a.N; b.N; c.N] x = [a.D;b.D;c.D]
	m := [3][3]float64{
		{a.Normal.X, a.Normal.Y, a.Normal.Z},
		{b.Normal.X, b.Normal.Y, b.Normal.Z},
		{c.Normal.X, c.Normal.Y, c.Normal.Z},
	}
	rhs := [3]float64{a.Dist, b.Dist, c.Dist}
	det := det3(m)
	if math.Abs(det) < 1e-12 {
		return vec3.Vector{}, false
	}
	var sol [3]float64
	for col := 0; col < 3; col++ {
		mm := m
		for row := 0; row < 3; row++ {
			mm[row][col] = rhs[row]
		}
		sol[col] = det3(mm) / det
	}
	return vec3.New(sol[0], sol[1], sol[2]), true
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// AvailableMemoryBytes is overridable by tests/CLI wiring; it reports
// the memory budget the merge guard compares projected storage against
// (spec.md §4.6, §5). The default always reports a fixed 1 GiB; it
// does not query the host for its available memory.
var AvailableMemoryBytes = func() uint64 { return 1 << 30 }

const planeVectorBytes = 64 // Normal (3*float64) + Dist, rounded up

// MergeConjunctionsAnd forms the AND of two union-of-conjunction plane
// sets: every pairwise concatenation, deduplicated and filtered for
// direct contradictions (spec.md §4.6). It guards against combinatorial
// blowup by refusing to allocate more than half of AvailableMemoryBytes
// in projected plane storage.
func MergeConjunctionsAnd(a, b []Conjunction) ([]Conjunction, error) {
	projected := uint64(len(a)) * uint64(len(b))
	var maxConjLen int
	for _, c := range a {
		if len(c) > maxConjLen {
			maxConjLen = len(c)
		}
	}
	for _, c := range b {
		if len(c) > maxConjLen {
			maxConjLen = len(c)
		}
	}
	projectedBytes := projected * uint64(maxConjLen) * uint64(planeVectorBytes)
	if projectedBytes > AvailableMemoryBytes()/2 {
		return nil, geomerr.New(geomerr.OutOfMemory,
			"plane-vector AND merge would need ~%d bytes, exceeding half of the %d byte budget",
			projectedBytes, AvailableMemoryBytes())
	}

	var out []Conjunction
	for _, ca := range a {
		for _, cb := range b {
			merged := mergeOne(ca, cb)
			if merged != nil {
				out = append(out, merged)
			}
		}
	}
	return out, nil
}

func mergeOne(a, b Conjunction) Conjunction {
	out := append(Conjunction{}, a...)
	for _, h := range b {
		dup := false
		for _, existing := range out {
			if samePlane(existing, h) {
				dup = true
				break
			}
			if coincidentOpposite(existing, h) {
				return nil // contradiction: invalidate the whole conjunction
			}
		}
		if !dup {
			out = append(out, h)
		}
	}
	return out
}

func samePlane(a, b HalfSpace) bool {
	return vec3.Distance(a.Normal, b.Normal) < PlaneEps && math.Abs(a.Dist-b.Dist) < PlaneEps
}

func coincidentOpposite(a, b HalfSpace) bool {
	neg := HalfSpace{Normal: b.Normal.Scale(-1), Dist: -b.Dist}
	return vec3.Distance(a.Normal, neg.Normal) < PlaneEps && math.Abs(a.Dist-neg.Dist) < PlaneEps
}
