package surf

import (
	"math"

	"github.com/cpmech/mcgeom/internal/bbox"
	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/mat"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// Plane implements spec.md §4.2: implicit n.x - d, constructed either
// directly or from three points via the MCNP 9-parameter sign rule.
type Plane struct {
	id       int32
	name     string
	reversed bool
	normal   vec3.Vector
	dist     float64
}

// NewPlane builds P(a,b,c,d)-style and PX|PY|PZ(d) planes: normal is
// normalized at construction, failing with DegenerateGeometry if it
// has near-zero length.
func NewPlane(id int32, name string, normal vec3.Vector, dist float64) (*Plane, error) {
	n, ok := normal.Normalized()
	if !ok {
		return nil, geomerr.New(geomerr.DegenerateGeometry, "plane %q: normal vector has near-zero length", name)
	}
	scale := normal.Norm()
	return &Plane{id: id, name: name, normal: n, dist: dist / scale}, nil
}

// NewPlaneFromPoints implements the 9-parameter plane construction of
// spec.md §4.2: n = (p1-p2)x(p1-p3) normalized, d = p1.n, then oriented
// per the reference-point sign rule (ref defaults to the origin).
func NewPlaneFromPoints(id int32, name string, p1, p2, p3, ref vec3.Vector) (*Plane, error) {
	raw := p1.Sub(p2).Cross(p1.Sub(p3))
	n, ok := raw.Normalized()
	if !ok {
		return nil, geomerr.New(geomerr.DegenerateGeometry, "plane %q: three points are collinear", name)
	}
	d := p1.Dot(n)

	if math.Abs(d) < vec3.ZeroEps {
		flip := false
		switch {
		case math.Abs(n.Z) > vec3.ZeroEps:
			flip = n.Z < 0
		case math.Abs(n.Y) > vec3.ZeroEps:
			flip = n.Y < 0
		case math.Abs(n.X) > vec3.ZeroEps:
			flip = n.X < 0
		default:
			return nil, geomerr.New(geomerr.DegenerateGeometry, "plane %q: normal vanished under the reference-point sign rule", name)
		}
		if flip {
			n, d = n.Scale(-1), -d
		}
	} else {
		val := n.Dot(ref) - d
		if val >= 0 {
			n, d = n.Scale(-1), -d
		}
	}
	return &Plane{id: id, name: name, normal: n, dist: d}, nil
}

func (p *Plane) ID() int32     { return p.id }
func (p *Plane) Name() string  { return p.name }
func (p *Plane) Kind() Kind    { return KindPlane }
func (p *Plane) Reversed() bool { return p.reversed }

func (p *Plane) value(x vec3.Vector) float64 { return p.normal.Dot(x) - p.dist }

func (p *Plane) IsForward(x vec3.Vector) bool {
	return forwardTest(p.value(x), p.reversed)
}

// Intersect solves t = (d - n.p)/(n.u), returning Invalid() when the
// ray is parallel to the plane or the hit is behind the origin.
func (p *Plane) Intersect(origin, u vec3.Vector) vec3.Vector {
	nu := p.normal.Dot(u)
	if math.Abs(nu) < vec3.ZeroEps {
		return vec3.Invalid()
	}
	t := (p.dist - p.normal.Dot(origin)) / nu
	if t < 0 {
		return vec3.Invalid()
	}
	return origin.Add(u.Scale(t))
}

func (p *Plane) Transform(aff mat.Affine) Surface {
	// for a plane, the new normal is n' = R^-T n (inverse-transpose of
	// the rotation block); since R is expected orthonormal (TR blocks
	// are Gram-Schmidt-corrected), R^-T == R, applied via MulVec.
	n2 := aff.R.MulVec(p.normal)
	d2 := p.dist + n2.Dot(aff.T)
	nn, ok := n2.Normalized()
	if !ok {
		nn = n2
	} else {
		d2 /= n2.Norm()
	}
	return &Plane{id: p.id, name: p.name, reversed: p.reversed, normal: nn, dist: d2}
}

func (p *Plane) Renamed(id int32, name string) Surface {
	return &Plane{id: id, name: name, reversed: p.reversed, normal: p.normal, dist: p.dist}
}

func (p *Plane) Reverse() Surface {
	return &Plane{id: -p.id, name: p.name, reversed: !p.reversed, normal: p.normal.Scale(-1), dist: -p.dist}
}

// BoundingPlanes: a half-space clipped to MaxExtent on the other five
// directions for axis-parallel planes; the universal box otherwise
// (spec.md §4.2).
func (p *Plane) BoundingPlanes(warn func(string)) []bbox.Conjunction {
	// normal/dist already carry the correct forward sense regardless of
	// p.reversed: Reverse() negates both fields rather than leaving the
	// flag to do the work, as Quadric does with its coefficients and
	// unlike the Sphere/Cylinder/Cone/Torus/Triangle types.
	h := bbox.HalfSpace{Normal: p.normal, Dist: p.dist}
	if _, ok := h.AxisAligned(); ok {
		return []bbox.Conjunction{{h}}
	}
	if warn != nil {
		warn("plane " + p.name + " is not axis-parallel: bounding box degrades to a half-space/universal fallback")
	}
	return []bbox.Conjunction{{h}}
}
