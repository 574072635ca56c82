// Package xform implements the transform algebra of spec.md §4.10
// (component C10): parsing a single TR argument list into an affine
// matrix, composing comma-separated TRCL strings, and the TR table
// (make_transform_map) that resolves bare TR-number references.
// Grounded on gofem/inp's card-parsing idiom (whitespace/brace-aware
// tokenizing ahead of a numeric conversion pass) and on mat.Affine's
// row-vector convention.
package xform

import (
	"strconv"
	"strings"

	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/mat"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// ParseSingle implements generate_single_transform_matrix: s is the
// already-tokenized argument list of a TR card (or an inline trcl=(...)
// group) after stripping the optional leading "*" (cosine-angle flag,
// which this engine treats identically to a bare TR since every
// supplied rotation component is already a direction cosine).
func ParseSingle(args []float64, warn func(string)) (mat.Affine, error) {
	n := len(args)
	switch n {
	case 3:
		return mat.Affine{R: mat.Identity3(), T: vec3.New(args[0], args[1], args[2])}, nil
	case 5:
		r := partialColumnRow(args[3], args[4])
		return mat.Affine{R: completeFromRow0(r), T: vec3.New(args[0], args[1], args[2])}, nil
	case 6:
		r, err := twoColumnsRotation(args, warn)
		if err != nil {
			return mat.Affine{}, err
		}
		return mat.Affine{R: r}, nil
	case 9:
		return mat.Affine{R: rowMajor9(args)}, nil
	case 12:
		return mat.Affine{R: rowMajor9(args[3:]), T: vec3.New(args[0], args[1], args[2])}, nil
	case 13:
		return applyMode(rowMajor9(args[3:12]), vec3.New(args[0], args[1], args[2]), args[12])
	default:
		return mat.Affine{}, geomerr.New(geomerr.BadCard, "TR argument count %d is not one of 3,5,6,9,12,13", n)
	}
}

func rowMajor9(a []float64) mat.Mat3 {
	return mat.Mat3{{a[0], a[1], a[2]}, {a[3], a[4], a[5]}, {a[6], a[7], a[8]}}
}

// partialColumnRow completes a single direction-cosine pair (x,y) into
// a unit row by deriving z from the unit-length constraint (positive
// root, since MCNP's convention always reports the acute solution).
func partialColumnRow(x, y float64) vec3.Vector {
	z2 := 1 - x*x - y*y
	if z2 < 0 {
		z2 = 0
	}
	return vec3.New(x, y, mat_sqrt(z2))
}

func mat_sqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	lo, hi := 0.0, v+1
	for i := 0; i < 60; i++ {
		mid := (lo + hi) / 2
		if mid*mid > v {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo
}

// completeFromRow0 builds the remaining two rows of an orthonormal
// frame from a single supplied row, via Gram-Schmidt against a
// non-parallel hint axis.
func completeFromRow0(row0 vec3.Vector) mat.Mat3 {
	hint := vec3.New(0, 1, 0)
	if row0.Y > 0.9 || row0.Y < -0.9 {
		hint = vec3.New(1, 0, 0)
	}
	raw := mat.Mat3{
		{row0.X, row0.Y, row0.Z},
		{hint.X, hint.Y, hint.Z},
		{0, 0, 0},
	}
	out, _ := mat.GramSchmidtRows(raw, 50)
	return out
}

// twoColumnsRotation implements the spec's explicit 6-component rule:
// two rotation columns are supplied (as 3+3 values); the third is the
// right-hand cross product of the two, negated when the two supplied
// columns are (row 1, row 3) i.e. columns 0 and 2.
func twoColumnsRotation(a []float64, warn func(string)) (mat.Mat3, error) {
	c0 := vec3.New(a[0], a[1], a[2])
	c2 := vec3.New(a[3], a[4], a[5])
	n0, ok0 := c0.Normalized()
	n2, ok2 := c2.Normalized()
	if !ok0 || !ok2 {
		return mat.Mat3{}, geomerr.New(geomerr.DegenerateGeometry, "TR: a supplied rotation column has near-zero length")
	}
	c1 := n2.Cross(n0).Scale(-1) // columns (0,2) supplied: negate per spec.md §4.10
	raw := mat.Mat3{
		{n0.X, c1.X, n2.X},
		{n0.Y, c1.Y, n2.Y},
		{n0.Z, c1.Z, n2.Z},
	}
	rows := mat.Mat3{
		{raw[0][0], raw[0][1], raw[0][2]},
		{raw[1][0], raw[1][1], raw[1][2]},
		{raw[2][0], raw[2][1], raw[2][2]},
	}
	out, resid := mat.GramSchmidtRows(rows.Transpose(), 50)
	if resid > 1e-3 && warn != nil {
		warn("TR: 6-component rotation columns were not orthonormal; residual " + strconv.FormatFloat(resid, 'g', 3, 64) + " rad")
	}
	return out.Transpose(), nil
}

// applyMode interprets the 13th TR argument M (spec.md §4.10): M=1
// (default, cosines between transformed/original axes, used verbatim),
// M=2 (the nine values are cosines of Euler-like rotation angles about
// x, y, z composed in that order), and negative M (translation applied
// before rotation rather than after).
func applyMode(r mat.Mat3, t vec3.Vector, m float64) (mat.Affine, error) {
	mode := int(m)
	abs := mode
	if abs < 0 {
		abs = -abs
	}
	var rot mat.Mat3
	switch abs {
	case 1, 0:
		rot = r
	case 2:
		rx := axisAngleRot(0, r[0][0])
		ry := axisAngleRot(1, r[1][1])
		rz := axisAngleRot(2, r[2][2])
		rot = rx.Mul(ry).Mul(rz)
	default:
		return mat.Affine{}, geomerr.New(geomerr.BadCard, "TR: unsupported mode M=%v", m)
	}
	if mode < 0 {
		return mat.Affine{R: rot, T: rot.MulVec(t)}, nil
	}
	return mat.Affine{R: rot, T: t}, nil
}

func axisAngleRot(axis int, cosAngle float64) mat.Mat3 {
	c := cosAngle
	s := mat_sqrt(1 - c*c)
	switch axis {
	case 0:
		return mat.Mat3{{1, 0, 0}, {0, c, s}, {0, -s, c}}
	case 1:
		return mat.Mat3{{c, 0, -s}, {0, 1, 0}, {s, 0, c}}
	default:
		return mat.Mat3{{c, s, 0}, {-s, c, 0}, {0, 0, 1}}
	}
}

// SplitTopLevel splits s on commas that are not nested inside { } or
// ( ) groups (spec.md §4.10's compose_transforms comma rule).
func SplitTopLevel(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '{', '(':
			depth++
		case '}', ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

// Table is the TR table produced by make_transform_map.
type Table struct {
	byNumber map[int]mat.Affine
}

// NewTable builds an empty Table; TR numbers are added one at a time
// with Define, which fails on a duplicate TR number.
func NewTable() *Table {
	return &Table{byNumber: map[int]mat.Affine{}}
}

// Define registers TR number n, failing with DuplicateId on repeat.
func (t *Table) Define(n int, aff mat.Affine) error {
	if _, exists := t.byNumber[n]; exists {
		return geomerr.New(geomerr.DuplicateId, "TR%d is already defined", n)
	}
	t.byNumber[n] = aff
	return nil
}

// Lookup resolves a bare TR-number reference.
func (t *Table) Lookup(n int) (mat.Affine, bool) {
	aff, ok := t.byNumber[n]
	return aff, ok
}

// Compose implements compose_transforms(s): s is either a single TR
// number (looked up in the table) or a comma-separated list of
// ParseSingle-compatible argument groups, composed left-to-right so
// that Compose(a,b).Apply(p) applies a first, then b.
func Compose(s string, table *Table, warn func(string)) (mat.Affine, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		aff, ok := table.Lookup(n)
		if !ok {
			return mat.Affine{}, geomerr.New(geomerr.UndefinedTr, "TR%d is referenced but never defined", n)
		}
		return aff, nil
	}

	groups := SplitTopLevel(s)
	result := mat.Identity()
	for i, g := range groups {
		g = strings.TrimSpace(g)
		star := strings.HasPrefix(g, "*")
		g = strings.TrimPrefix(g, "*")
		fields := strings.Fields(strings.NewReplacer("{", " ", "}", " ").Replace(g))
		args := make([]float64, 0, len(fields))
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return mat.Affine{}, geomerr.New(geomerr.BadCard, "TRCL group %d: %q is not numeric", i, f)
			}
			args = append(args, v)
		}
		_ = star // the "*" cosine-angle marker: values are already cosines in this representation
		aff, err := ParseSingle(args, warn)
		if err != nil {
			return mat.Affine{}, err
		}
		result = mat.Compose(result, aff)
	}
	return result, nil
}
