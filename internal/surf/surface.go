// Package surf implements the primitive surface algebra of spec.md §3
// and component C2: planes, quadrics, tori, spheres, cylinders, cones
// and triangles, each exposing the five dispatch operations spec.md §9
// calls out (is_forward, get_intersection, transform, bounding_planes,
// make_deep_copy) behind the Surface interface. Grounded on gofem's
// shp (shape function) package's tagged-kind dispatch for its handful
// of element geometries, generalized here to geometric surfaces.
package surf

import (
	"github.com/cpmech/mcgeom/internal/bbox"
	"github.com/cpmech/mcgeom/internal/mat"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// Kind is the tagged-sum discriminant for the 7 surface variants
// spec.md §9 calls for (no runtime polymorphism beyond this tag).
type Kind int

const (
	KindPlane Kind = iota
	KindQuadric
	KindTorus
	KindSphere
	KindCylinder
	KindCone
	KindTriangle
)

func (k Kind) String() string {
	switch k {
	case KindPlane:
		return "Plane"
	case KindQuadric:
		return "Quadric"
	case KindTorus:
		return "Torus"
	case KindSphere:
		return "Sphere"
	case KindCylinder:
		return "Cylinder"
	case KindCone:
		return "Cone"
	case KindTriangle:
		return "Triangle"
	default:
		return "Unknown"
	}
}

// Surface is the common interface every primitive implements. Surfaces
// are immutable value-ish types: Transform and Renamed return new
// instances rather than mutating the receiver, matching spec.md §9's
// "clones by value, no back-edges" arena discipline.
type Surface interface {
	ID() int32
	Name() string
	Kind() Kind
	Reversed() bool

	// IsForward reports whether p lies on the surface's forward side:
	// implicit(p) >= 0 normally, implicit(p) > 0 when Reversed() (spec.md §3).
	IsForward(p vec3.Vector) bool

	// Intersect returns the first point along the ray p+t*u (t>=0)
	// where the surface is crossed, or vec3.Invalid() if none.
	Intersect(p, u vec3.Vector) vec3.Vector

	// Transform returns a copy of the surface under affine aff.
	Transform(aff mat.Affine) Surface

	// Renamed returns a deep copy carrying a new id/name (used by
	// SurfaceMap's register_transformed, spec.md §4.1).
	Renamed(id int32, name string) Surface

	// Reverse returns the complementary surface (spec.md §4.2's
	// createReverse generalized to every kind): same geometry, negated
	// orientation, strict inequality at the boundary so that every
	// point belongs to exactly one of {s, Reverse(s)}.
	Reverse() Surface

	// BoundingPlanes returns a union of conjunctions of half-spaces
	// that contains (or equals) the forward side of the surface.
	BoundingPlanes(warn func(string)) []bbox.Conjunction
}

// forwardTest applies spec.md §3's boundary rule: non-strict for the
// unreversed orientation, strict once Reverse() has flipped it.
func forwardTest(val float64, reversed bool) bool {
	if reversed {
		return val > 0
	}
	return val >= 0
}

// AABB computes the surface's axis-aligned bounding box from its
// bounding-plane set via bbox.FromPlanes (spec.md §4.6's consumer of
// component C2's output).
func AABB(s Surface, warn func(string)) (bbox.Box, error) {
	return bbox.FromPlanes(nil, s.BoundingPlanes(warn))
}
