package surf

import (
	"math"

	"github.com/cpmech/mcgeom/internal/bbox"
	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/mat"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// Cylinder implements the C/CX/CY/CZ infinite circular cylinder
// surfaces (spec.md §3): a dedicated primitive rather than a general
// Quadric, in the same spirit as Sphere, so that the unreversed
// forward side is the solid interior directly.
type Cylinder struct {
	id       int32
	name     string
	reversed bool
	Center   vec3.Vector
	Axis     vec3.Vector // unit vector
	Radius   float64
}

// NewCylinder builds a cylinder through center with the given axis
// direction (normalized at construction) and radius.
func NewCylinder(id int32, name string, center, axis vec3.Vector, radius float64) (*Cylinder, error) {
	a, ok := axis.Normalized()
	if !ok {
		return nil, geomerr.New(geomerr.DegenerateGeometry, "cylinder %q: axis vector has near-zero length", name)
	}
	return &Cylinder{id: id, name: name, Center: center, Axis: a, Radius: radius}, nil
}

func (c *Cylinder) ID() int32      { return c.id }
func (c *Cylinder) Name() string   { return c.name }
func (c *Cylinder) Kind() Kind     { return KindCylinder }
func (c *Cylinder) Reversed() bool { return c.reversed }

// perp returns the component of v perpendicular to the axis.
func (c *Cylinder) perp(v vec3.Vector) vec3.Vector {
	return v.Sub(c.Axis.Scale(v.Dot(c.Axis)))
}

func (c *Cylinder) value(x vec3.Vector) float64 {
	p := c.perp(x.Sub(c.Center))
	return c.Radius*c.Radius - p.Dot(p)
}

func (c *Cylinder) IsForward(x vec3.Vector) bool {
	v := c.value(x)
	if c.reversed {
		v = -v
	}
	return forwardTest(v, c.reversed)
}

// Intersect reduces the ray to a quadratic in the axis-perpendicular
// subspace: |perp(p-center)+t*perp(u)|^2 = r^2.
func (c *Cylinder) Intersect(p, u vec3.Vector) vec3.Vector {
	ocPerp := c.perp(p.Sub(c.Center))
	uPerp := c.perp(u)
	a := uPerp.Dot(uPerp)
	if a < 1e-300 {
		return vec3.Invalid() // ray parallel to the axis
	}
	halfB := ocPerp.Dot(uPerp)
	cc := ocPerp.Dot(ocPerp) - c.Radius*c.Radius
	disc := halfB*halfB - a*cc
	if disc < 0 {
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

func (c *Cylinder) Transform(aff mat.Affine) Surface {
	center2 := aff.Apply(c.Center)
	axis2 := aff.R.MulVec(c.Axis)
	n, ok := axis2.Normalized()
	scale := axis2.Norm()
	if !ok {
		n, scale = c.Axis, 1
	}
	// approximate radius scaling by the average of the two perpendicular
	// column norms (exact only when R restricted to the perp plane is a
	// uniform scale, as it is for the TR blocks this engine supports).
	perpScale := (aff.R.MulVec(vec3.New(1, 0, 0)).Norm() +
		aff.R.MulVec(vec3.New(0, 1, 0)).Norm() +
		aff.R.MulVec(vec3.New(0, 0, 1)).Norm() - scale) / 2
	return &Cylinder{id: c.id, name: c.name, reversed: c.reversed, Center: center2, Axis: n, Radius: c.Radius * perpScale}
}

func (c *Cylinder) Renamed(id int32, name string) Surface {
	cp := *c
	cp.id, cp.name = id, name
	return &cp
}

func (c *Cylinder) Reverse() Surface {
	return &Cylinder{id: -c.id, name: c.name, reversed: !c.reversed, Center: c.Center, Axis: c.Axis, Radius: c.Radius}
}

// BoundingPlanes: tight 4-plane conjunction when the axis is coordinate
// aligned (spec.md §4.4's elliptic-cylinder row, specialized to a
// circle); otherwise a whole-space sentinel with a warning, mirroring
// Plane.BoundingPlanes's non-axis-parallel fallback.
func (c *Cylinder) BoundingPlanes(warn func(string)) []bbox.Conjunction {
	axis, ok := coordinateAxis(c.Axis)
	if !ok {
		if warn != nil {
			warn("cylinder " + c.name + " axis is not coordinate-aligned: bounding box degrades to a whole-space fallback")
		}
		return []bbox.Conjunction{{}}
	}
	other := [2]int{}
	oi := 0
	for i := 0; i < 3; i++ {
		if i != axis {
			other[oi] = i
			oi++
		}
	}
	r := c.Radius
	inside := bbox.Conjunction{
		axisHalfAbout(other[0], 1, c.Center, -r), axisHalfAbout(other[0], -1, c.Center, r),
		axisHalfAbout(other[1], 1, c.Center, -r), axisHalfAbout(other[1], -1, c.Center, r),
	}
	if !c.reversed {
		return []bbox.Conjunction{inside}
	}
	var outside []bbox.Conjunction
	v := r / math.Sqrt(2)
	for _, ax := range other {
		for _, sgn := range [2]float64{1, -1} {
			outside = append(outside, bbox.Conjunction{axisHalfAbout(ax, sgn, c.Center, sgn*v)})
		}
	}
	return outside
}

// coordinateAxis reports whether v is parallel to a coordinate axis,
// and which one (spec.md §4.4 robustness note (a)'s axis-alignment
// precondition for a tight bounding box).
func coordinateAxis(v vec3.Vector) (axis int, ok bool) {
	const tol = 1e-9
	nz := 0
	axis = -1
	for i := 0; i < 3; i++ {
		if math.Abs(v.Component(i)) > tol {
			nz++
			axis = i
		}
	}
	if nz != 1 {
		return 0, false
	}
	return axis, true
}
