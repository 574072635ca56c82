package surf

import (
	"math"

	"github.com/cpmech/mcgeom/internal/bbox"
	"github.com/cpmech/mcgeom/internal/mat"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// Sphere implements the SO/S/SX/SY/SZ surface kinds as a dedicated
// primitive (spec.md §3's Sphere variant) rather than a general
// Quadric: (center, radius), with the implicit function oriented so
// that the unreversed forward side is the sphere's solid interior,
// satisfying spec.md §3's point_inside==is_forward invariant directly.
type Sphere struct {
	id       int32
	name     string
	reversed bool
	Center   vec3.Vector
	Radius   float64
}

func NewSphere(id int32, name string, center vec3.Vector, radius float64) *Sphere {
	return &Sphere{id: id, name: name, Center: center, Radius: radius}
}

func (s *Sphere) ID() int32      { return s.id }
func (s *Sphere) Name() string   { return s.name }
func (s *Sphere) Kind() Kind     { return KindSphere }
func (s *Sphere) Reversed() bool { return s.reversed }

func (s *Sphere) value(x vec3.Vector) float64 {
	d := vec3.Distance(x, s.Center)
	return s.Radius*s.Radius - d*d
}

func (s *Sphere) IsForward(x vec3.Vector) bool {
	v := s.value(x)
	if s.reversed {
		v = -v
	}
	return forwardTest(v, s.reversed)
}

func (s *Sphere) Intersect(p, u vec3.Vector) vec3.Vector {
	oc := p.Sub(s.Center)
	a := u.Dot(u)
	halfB := oc.Dot(u)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := halfB*halfB - a*c
	if disc < 0 || a < 1e-300 {
		return vec3.Invalid()
	}
	sq := math.Sqrt(disc)
	t1, t2 := (-halfB-sq)/a, (-halfB+sq)/a
	t, ok := smallestNonNeg(t1, t2)
	if !ok {
		return vec3.Invalid()
	}
	return p.Add(u.Scale(t))
}

func smallestNonNeg(a, b float64) (float64, bool) {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo >= 0 {
		return lo, true
	}
	if hi >= 0 {
		return hi, true
	}
	return 0, false
}

func (s *Sphere) Transform(aff mat.Affine) Surface {
	c2 := aff.Apply(s.Center)
	scale := (aff.R.MulVec(vec3.New(1, 0, 0)).Norm() +
		aff.R.MulVec(vec3.New(0, 1, 0)).Norm() +
		aff.R.MulVec(vec3.New(0, 0, 1)).Norm()) / 3
	return &Sphere{id: s.id, name: s.name, reversed: s.reversed, Center: c2, Radius: s.Radius * scale}
}

func (s *Sphere) Renamed(id int32, name string) Surface {
	cp := *s
	cp.id, cp.name = id, name
	return &cp
}

func (s *Sphere) Reverse() Surface {
	return &Sphere{id: -s.id, name: s.name, reversed: !s.reversed, Center: s.Center, Radius: s.Radius}
}

// BoundingPlanes: the solid interior is bounded tightly by the
// inscribing axis-aligned cube; the exterior only by 6 loose tangent
// half-spaces at r/sqrt(3) (spec.md §4.4's ellipsoid row, specialized).
func (s *Sphere) BoundingPlanes(warn func(string)) []bbox.Conjunction {
	r := s.Radius
	inside := bbox.Conjunction{
		axisHalfAbout(0, 1, s.Center, -r), axisHalfAbout(0, -1, s.Center, r),
		axisHalfAbout(1, 1, s.Center, -r), axisHalfAbout(1, -1, s.Center, r),
		axisHalfAbout(2, 1, s.Center, -r), axisHalfAbout(2, -1, s.Center, r),
	}
	var outside []bbox.Conjunction
	v := r / math.Sqrt(3)
	for axis := 0; axis < 3; axis++ {
		for _, sgn := range [2]float64{1, -1} {
			outside = append(outside, bbox.Conjunction{axisHalfAbout(axis, sgn, s.Center, sgn*v)})
		}
	}
	if !s.reversed {
		return []bbox.Conjunction{inside}
	}
	return outside
}

// axisHalfAbout builds the half-space {x : sign*(x[axis]-center[axis]) >= sign*dist}
// i.e. an axis-aligned plane offset from center rather than the origin.
func axisHalfAbout(axis int, sign float64, center vec3.Vector, dist float64) bbox.HalfSpace {
	n := vec3.Vector{}
	n = n.WithComponent(axis, sign)
	return bbox.HalfSpace{Normal: n, Dist: sign*dist + n.Dot(center)}
}
