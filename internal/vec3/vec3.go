// Package vec3 implements the point/vector primitives of spec.md §3,
// in the spirit of gosl/gm's point utilities (as used throughout
// gofem/inp and gofem/ele) and shaped after gonum.org/v1/gonum/spatial/r3.Vec.
package vec3

import "math"

// ZeroEps is the zero-magnitude tolerance for vectors (spec.md §9).
const ZeroEps = 1e-10

// Vector is a 3-component real vector (also used to represent points).
type Vector struct {
	X, Y, Z float64
}

// New builds a Vector.
func New(x, y, z float64) Vector { return Vector{x, y, z} }

// IsValid reports whether all components are finite and not a sentinel.
func (v Vector) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

// Invalid is the sentinel returned by failed ray/surface intersections.
func Invalid() Vector {
	return Vector{math.NaN(), math.NaN(), math.NaN()}
}

func (v Vector) Add(o Vector) Vector { return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vector) Sub(o Vector) Vector { return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vector) Scale(s float64) Vector {
	return Vector{v.X * s, v.Y * s, v.Z * s}
}
func (v Vector) Dot(o Vector) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vector) Cross(o Vector) Vector {
	return Vector{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}
func (v Vector) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Normalized returns v/|v|, failing if the magnitude is below ZeroEps
// (spec.md §3).
func (v Vector) Normalized() (Vector, bool) {
	n := v.Norm()
	if n < ZeroEps {
		return Vector{}, false
	}
	return v.Scale(1 / n), true
}

// Component returns the i-th component (0=x,1=y,2=z).
func (v Vector) Component(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// WithComponent returns a copy of v with component i set to val.
func (v Vector) WithComponent(i int, val float64) Vector {
	switch i {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	default:
		v.Z = val
	}
	return v
}

// Distance is the Euclidean distance between two points.
func Distance(a, b Vector) float64 { return a.Sub(b).Norm() }

// Collinear reports whether three points lie on a common line, within
// tol of the cross-product magnitude relative to the edge lengths.
func Collinear(a, b, c Vector, tol float64) bool {
	ab := b.Sub(a)
	ac := c.Sub(a)
	cr := ab.Cross(ac)
	scale := ab.Norm() * ac.Norm()
	if scale < ZeroEps {
		return true
	}
	return cr.Norm()/scale < tol
}
