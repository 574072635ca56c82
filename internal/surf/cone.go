package surf

import (
	"math"

	"github.com/cpmech/mcgeom/internal/bbox"
	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/mat"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// Cone implements the K/KX/KY/KZ surfaces (spec.md §3/§4.7): an
// infinite double-napped elliptic cone specialized to circular
// cross-section, with an optional single-sheet selector (+1/-1 picks
// the nappe on the +axis/-axis side of apex, 0 keeps both).
type Cone struct {
	id       int32
	name     string
	reversed bool
	Apex     vec3.Vector
	Axis     vec3.Vector // unit vector
	T2       float64     // tan^2(half-angle)
	Sheet    int         // -1, 0, or +1
}

func NewCone(id int32, name string, apex, axis vec3.Vector, t2 float64, sheet int) (*Cone, error) {
	a, ok := axis.Normalized()
	if !ok {
		return nil, geomerr.New(geomerr.DegenerateGeometry, "cone %q: axis vector has near-zero length", name)
	}
	return &Cone{id: id, name: name, Apex: apex, Axis: a, T2: t2, Sheet: sheet}, nil
}

func (c *Cone) ID() int32      { return c.id }
func (c *Cone) Name() string   { return c.name }
func (c *Cone) Kind() Kind     { return KindCone }
func (c *Cone) Reversed() bool { return c.reversed }

func (c *Cone) along(x vec3.Vector) (along float64, perp vec3.Vector) {
	d := x.Sub(c.Apex)
	along = d.Dot(c.Axis)
	perp = d.Sub(c.Axis.Scale(along))
	return
}

// value is negative outside the cone (per-sheet), zero on the surface,
// positive inside: t2*along^2 - |perp|^2, restricted to the selected
// nappe by also requiring along's sign to match Sheet (when nonzero).
func (c *Cone) value(x vec3.Vector) float64 {
	along, perp := c.along(x)
	v := c.T2*along*along - perp.Dot(perp)
	if c.Sheet > 0 && along < 0 {
		return -math.Abs(v) - along*along // force outside when on the wrong nappe
	}
	if c.Sheet < 0 && along > 0 {
		return -math.Abs(v) - along*along
	}
	return v
}

func (c *Cone) IsForward(x vec3.Vector) bool {
	v := c.value(x)
	if c.reversed {
		v = -v
	}
	return forwardTest(v, c.reversed)
}

// Intersect reduces to a quadratic in t along the ray, in the
// (along, perp) decomposition: t2*along(t)^2 - |perp(t)|^2 = 0.
func (c *Cone) Intersect(p, u vec3.Vector) vec3.Vector {
	d := p.Sub(c.Apex)
	dAlong := d.Dot(c.Axis)
	dPerp := d.Sub(c.Axis.Scale(dAlong))
	uAlong := u.Dot(c.Axis)
	uPerp := u.Sub(c.Axis.Scale(uAlong))

	a := c.T2*uAlong*uAlong - uPerp.Dot(uPerp)
	b := 2 * (c.T2*dAlong*uAlong - dPerp.Dot(uPerp))
	cc := c.T2*dAlong*dAlong - dPerp.Dot(dPerp)

	var roots []float64
	if math.Abs(a) < 1e-12 {
		if math.Abs(b) < 1e-300 {
			return vec3.Invalid()
		}
		roots = []float64{-cc / b}
	} else {
		disc := b*b - 4*a*cc
		if disc < 0 {
			return vec3.Invalid()
		}
		sq := math.Sqrt(disc)
		roots = []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
	}
	best, found := math.Inf(1), false
	for _, t := range roots {
		if t < 0 || t >= best {
			continue
		}
		hit := p.Add(u.Scale(t))
		along, _ := c.along(hit)
		if c.Sheet > 0 && along < 0 {
			continue
		}
		if c.Sheet < 0 && along > 0 {
			continue
		}
		best, found = t, true
	}
	if !found {
		return vec3.Invalid()
	}
	return p.Add(u.Scale(best))
}

func (c *Cone) Transform(aff mat.Affine) Surface {
	apex2 := aff.Apply(c.Apex)
	axis2 := aff.R.MulVec(c.Axis)
	n, ok := axis2.Normalized()
	if !ok {
		n = c.Axis
	}
	return &Cone{id: c.id, name: c.name, reversed: c.reversed, Apex: apex2, Axis: n, T2: c.T2, Sheet: c.Sheet}
}

func (c *Cone) Renamed(id int32, name string) Surface {
	cp := *c
	cp.id, cp.name = id, name
	return &cp
}

func (c *Cone) Reverse() Surface {
	return &Cone{id: -c.id, name: c.name, reversed: !c.reversed, Apex: c.Apex, Axis: c.Axis, T2: c.T2, Sheet: c.Sheet}
}

// BoundingPlanes mirrors quadric.ellipticConePlanes (spec.md §4.4): an
// unbounded double cone has no tight axis-aligned box, so the bound is
// the single half-space selecting the occupied nappe(s) when the axis
// is coordinate-aligned, or a whole-space fallback with a warning
// otherwise.
func (c *Cone) BoundingPlanes(warn func(string)) []bbox.Conjunction {
	if c.reversed {
		return []bbox.Conjunction{{}}
	}
	axis, ok := coordinateAxis(c.Axis)
	if !ok {
		if warn != nil {
			warn("cone " + c.name + " axis is not coordinate-aligned: bounding box degrades to a whole-space fallback")
		}
		return []bbox.Conjunction{{}}
	}
	switch c.Sheet {
	case 1:
		return []bbox.Conjunction{{axisHalfAbout(axis, 1, c.Apex, 0)}}
	case -1:
		return []bbox.Conjunction{{axisHalfAbout(axis, -1, c.Apex, 0)}}
	default:
		if warn != nil {
			warn("cone " + c.name + " spans both nappes: bounding box degrades to a whole-space fallback")
		}
		return []bbox.Conjunction{{}}
	}
}
