// Package resolve is the orchestrator that wires C1/C5-C10 together
// into the end-to-end pipeline spec.md §2's data-flow diagram
// describes: surface cards → BuildSurface → surfmap (with macro for
// macrobodies) → cell cards → depsolve → fill (re-entering
// BuildSurface/macro/surfmap for each fresh transformed element).
// Grounded on gofem/inp's top-level Start()/driver function, which is
// the single place gofem stitches its own per-concern packages
// (mesh, dof, solver) into one run.
package resolve

import (
	"github.com/cpmech/mcgeom/internal/card"
	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/surf"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// BuildSurface dispatches a parsed standard (non-macrobody) surface
// card to the matching surf.New* constructor per spec.md §6's
// mnemonic table. Macrobody mnemonics (rpp, box, sph, ...) are not
// handled here — ExpandMacrobody in macrobuild.go is their entry point.
func BuildSurface(id int32, c *card.SurfaceCard) (surf.Surface, error) {
	name := c.BareName()
	a := c.Args
	switch c.Mnemonic {
	case "p":
		return need(c, 4, func() (surf.Surface, error) {
			return surf.NewPlane(id, name, vec3.New(a[0], a[1], a[2]), a[3])
		})
	case "px":
		return need(c, 1, func() (surf.Surface, error) { return surf.NewPlane(id, name, vec3.New(1, 0, 0), a[0]) })
	case "py":
		return need(c, 1, func() (surf.Surface, error) { return surf.NewPlane(id, name, vec3.New(0, 1, 0), a[0]) })
	case "pz":
		return need(c, 1, func() (surf.Surface, error) { return surf.NewPlane(id, name, vec3.New(0, 0, 1), a[0]) })

	case "so":
		return need(c, 1, func() (surf.Surface, error) { return surf.NewSphere(id, name, vec3.Vector{}, a[0]), nil })
	case "s":
		return need(c, 4, func() (surf.Surface, error) {
			return surf.NewSphere(id, name, vec3.New(a[0], a[1], a[2]), a[3]), nil
		})
	case "sx":
		return need(c, 2, func() (surf.Surface, error) { return surf.NewSphere(id, name, vec3.New(a[0], 0, 0), a[1]), nil })
	case "sy":
		return need(c, 2, func() (surf.Surface, error) { return surf.NewSphere(id, name, vec3.New(0, a[0], 0), a[1]), nil })
	case "sz":
		return need(c, 2, func() (surf.Surface, error) { return surf.NewSphere(id, name, vec3.New(0, 0, a[0]), a[1]), nil })

	case "cx":
		return need(c, 1, func() (surf.Surface, error) { return surf.NewCylinder(id, name, vec3.Vector{}, vec3.New(1, 0, 0), a[0]) })
	case "cy":
		return need(c, 1, func() (surf.Surface, error) { return surf.NewCylinder(id, name, vec3.Vector{}, vec3.New(0, 1, 0), a[0]) })
	case "cz":
		return need(c, 1, func() (surf.Surface, error) { return surf.NewCylinder(id, name, vec3.Vector{}, vec3.New(0, 0, 1), a[0]) })
	case "c/x":
		return need(c, 3, func() (surf.Surface, error) {
			return surf.NewCylinder(id, name, vec3.New(0, a[0], a[1]), vec3.New(1, 0, 0), a[2])
		})
	case "c/y":
		return need(c, 3, func() (surf.Surface, error) {
			return surf.NewCylinder(id, name, vec3.New(a[0], 0, a[1]), vec3.New(0, 1, 0), a[2])
		})
	case "c/z":
		return need(c, 3, func() (surf.Surface, error) {
			return surf.NewCylinder(id, name, vec3.New(a[0], a[1], 0), vec3.New(0, 0, 1), a[2])
		})

	case "kx":
		return need(c, 2, func() (surf.Surface, error) {
			return surf.NewCone(id, name, vec3.New(a[0], 0, 0), vec3.New(1, 0, 0), a[1], sheetOf(a, 2))
		})
	case "ky":
		return need(c, 2, func() (surf.Surface, error) {
			return surf.NewCone(id, name, vec3.New(0, a[0], 0), vec3.New(0, 1, 0), a[1], sheetOf(a, 2))
		})
	case "kz":
		return need(c, 2, func() (surf.Surface, error) {
			return surf.NewCone(id, name, vec3.New(0, 0, a[0]), vec3.New(0, 0, 1), a[1], sheetOf(a, 2))
		})
	case "k/x":
		return need(c, 4, func() (surf.Surface, error) {
			return surf.NewCone(id, name, vec3.New(a[0], a[1], a[2]), vec3.New(1, 0, 0), a[3], sheetOf(a, 4))
		})
	case "k/y":
		return need(c, 4, func() (surf.Surface, error) {
			return surf.NewCone(id, name, vec3.New(a[0], a[1], a[2]), vec3.New(0, 1, 0), a[3], sheetOf(a, 4))
		})
	case "k/z":
		return need(c, 4, func() (surf.Surface, error) {
			return surf.NewCone(id, name, vec3.New(a[0], a[1], a[2]), vec3.New(0, 0, 1), a[3], sheetOf(a, 4))
		})

	case "gq":
		return need(c, 10, func() (surf.Surface, error) {
			return surf.NewQuadric(id, name, a[0], a[1], a[2], a[3], a[4], a[5], a[6], a[7], a[8], a[9]), nil
		})
	case "sq":
		return need(c, 10, func() (surf.Surface, error) { return sqToGQ(id, name, a), nil })

	case "tri":
		return need(c, 9, func() (surf.Surface, error) {
			return surf.NewTriangle(id, name,
				vec3.New(a[0], a[1], a[2]), vec3.New(a[3], a[4], a[5]), vec3.New(a[6], a[7], a[8]))
		})

	case "tx", "ty", "tz", "ta":
		return need(c, 6, func() (surf.Surface, error) {
			axis := map[string]vec3.Vector{"tx": vec3.New(1, 0, 0), "ty": vec3.New(0, 1, 0), "tz": vec3.New(0, 0, 1)}[c.Mnemonic]
			if c.Mnemonic == "ta" {
				axis = vec3.New(0, 0, 1)
			}
			return surf.NewTorus(id, name, vec3.New(a[0], a[1], a[2]), axis, a[3], a[4], a[5])
		})
	}
	return nil, geomerr.At(geomerr.UnknownSymbol, c.File, c.Line, "surface %q: unknown or macrobody mnemonic %q", name, c.Mnemonic)
}

func sheetOf(a []float64, idx int) int {
	if len(a) > idx && a[idx] < 0 {
		return -1
	}
	if len(a) > idx && a[idx] > 0 {
		return 1
	}
	return 0
}

func need(c *card.SurfaceCard, n int, build func() (surf.Surface, error)) (surf.Surface, error) {
	if len(c.Args) < n {
		return nil, geomerr.At(geomerr.BadCard, c.File, c.Line, "surface %q (%s): expected at least %d parameters, got %d", c.BareName(), c.Mnemonic, n, len(c.Args))
	}
	return build()
}

// sqToGQ expands an SQ special-quadric card into its general-quadric
// (GQ) coefficients. SQ's 10 parameters are A,B,C,D,E,F,G,X,Y,Z,
// describing:
//
//	A(x-X)^2 + B(y-Y)^2 + C(z-Z)^2 + 2D(x-X) + 2E(y-Y) + 2F(z-Z) + G = 0
//
// Expanding the squares and collecting into NewQuadric's
// x^2,y^2,z^2,xy,yz,xz,x,y,z,const coefficient order gives:
//
//	x term:  -2AX + 2D
//	y term:  -2BY + 2E
//	z term:  -2CZ + 2F
//	const:    AX^2 + BY^2 + CZ^2 - 2DX - 2EY - 2FZ + G
func sqToGQ(id int32, name string, a []float64) surf.Surface {
	A, B, C, D, E, F, G, X, Y, Z := a[0], a[1], a[2], a[3], a[4], a[5], a[6], a[7], a[8], a[9]
	gx := -2*A*X + 2*D
	gy := -2*B*Y + 2*E
	gz := -2*C*Z + 2*F
	k := A*X*X + B*Y*Y + C*Z*Z - 2*D*X - 2*E*Y - 2*F*Z + G
	return surf.NewQuadric(id, name, A, B, C, 0, 0, 0, gx, gy, gz, k)
}
