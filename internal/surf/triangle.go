package surf

import (
	"math"

	"github.com/cpmech/mcgeom/internal/bbox"
	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/mat"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// Triangle implements spec.md §3's Triangle surface: three vertices
// plus a unit normal (clockwise or counter-clockwise), used by the ARB
// macrobody's planar facets and by tessellated ARB faces that are not
// themselves planar quadrilaterals.
type Triangle struct {
	id         int32
	name       string
	reversed   bool
	V0, V1, V2 vec3.Vector
	normal     vec3.Vector
}

func NewTriangle(id int32, name string, v0, v1, v2 vec3.Vector) (*Triangle, error) {
	raw := v1.Sub(v0).Cross(v2.Sub(v0))
	n, ok := raw.Normalized()
	if !ok {
		return nil, geomerr.New(geomerr.DegenerateGeometry, "triangle %q: vertices are collinear", name)
	}
	return &Triangle{id: id, name: name, V0: v0, V1: v1, V2: v2, normal: n}, nil
}

func (t *Triangle) ID() int32      { return t.id }
func (t *Triangle) Name() string   { return t.name }
func (t *Triangle) Kind() Kind     { return KindTriangle }
func (t *Triangle) Reversed() bool { return t.reversed }

func (t *Triangle) value(x vec3.Vector) float64 {
	return t.normal.Dot(x.Sub(t.V0))
}

func (t *Triangle) IsForward(x vec3.Vector) bool {
	v := t.value(x)
	if t.reversed {
		v = -v
	}
	return forwardTest(v, t.reversed)
}

// SharesVertices reports how many vertices t shares with o (spec.md
// §3's "neighborhood is vertex-sharing" rule: exactly two shared
// vertices marks an edge-adjacent triangle).
func (t *Triangle) SharesVertices(o *Triangle) int {
	mine := [3]vec3.Vector{t.V0, t.V1, t.V2}
	theirs := [3]vec3.Vector{o.V0, o.V1, o.V2}
	count := 0
	for _, a := range mine {
		for _, b := range theirs {
			if vec3.Distance(a, b) < vec3.ZeroEps {
				count++
				break
			}
		}
	}
	return count
}

// Intersect implements the Moller-Trumbore ray/triangle test,
// returning the hit point at the first non-negative t, or Invalid()
// for a miss or a ray parallel to the triangle's plane.
func (t *Triangle) Intersect(p, u vec3.Vector) vec3.Vector {
	e1 := t.V1.Sub(t.V0)
	e2 := t.V2.Sub(t.V0)
	h := u.Cross(e2)
	det := e1.Dot(h)
	if math.Abs(det) < 1e-12 {
		return vec3.Invalid()
	}
	invDet := 1 / det
	s := p.Sub(t.V0)
	uu := s.Dot(h) * invDet
	if uu < -1e-9 || uu > 1+1e-9 {
		return vec3.Invalid()
	}
	q := s.Cross(e1)
	vv := u.Dot(q) * invDet
	if vv < -1e-9 || uu+vv > 1+1e-9 {
		return vec3.Invalid()
	}
	tt := e2.Dot(q) * invDet
	if tt < 0 {
		return vec3.Invalid()
	}
	return p.Add(u.Scale(tt))
}

func (t *Triangle) Transform(aff mat.Affine) Surface {
	v0 := aff.Apply(t.V0)
	v1 := aff.Apply(t.V1)
	v2 := aff.Apply(t.V2)
	n, ok := v1.Sub(v0).Cross(v2.Sub(v0)).Normalized()
	if !ok {
		n = aff.R.MulVec(t.normal)
	}
	return &Triangle{id: t.id, name: t.name, reversed: t.reversed, V0: v0, V1: v1, V2: v2, normal: n}
}

func (t *Triangle) Renamed(id int32, name string) Surface {
	cp := *t
	cp.id, cp.name = id, name
	return &cp
}

func (t *Triangle) Reverse() Surface {
	return &Triangle{id: -t.id, name: t.name, reversed: !t.reversed, V0: t.V0, V1: t.V1, V2: t.V2, normal: t.normal}
}

// BoundingPlanes: a single half-space through the plane containing the
// triangle, same fallback posture as Plane.BoundingPlanes (spec.md
// §4.2) since a triangle alone cannot bound a solid region.
func (t *Triangle) BoundingPlanes(warn func(string)) []bbox.Conjunction {
	h := bbox.HalfSpace{Normal: t.normal, Dist: t.normal.Dot(t.V0)}
	if t.reversed {
		h = bbox.HalfSpace{Normal: t.normal.Scale(-1), Dist: -t.normal.Dot(t.V0)}
	}
	if _, ok := h.AxisAligned(); ok {
		return []bbox.Conjunction{{h}}
	}
	if warn != nil {
		warn("triangle " + t.name + " is not axis-parallel: bounding box degrades to a half-space/universal fallback")
	}
	return []bbox.Conjunction{{h}}
}
