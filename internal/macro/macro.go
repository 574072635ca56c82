// Package macro implements the macrobody expansion engine of spec.md
// §4.7 (component C4): each MCNP/PHITS macrobody mnemonic (RPP, BOX,
// SPH, RCC, REC, ELL, TRC, WED, RHP, ARB, QUA, TOR, and the
// axis-symmetric X/Y/Z family) is rewritten into a set of primitive
// surf.Surface cards plus a boolean replacement expression, following
// the same "one mnemonic, one expand function" shape the card grammar
// of spec.md §6 dispatches on. Grounded on gofem/inp's element-type
// dispatch table (one constructor per FE tag) generalized to geometry
// primitives.
//
// Orientation convention: unlike the literal MCNP convention of
// outward-pointing face normals requiring a "-name" (AND-of-reversed)
// reference at the use site, every primitive produced here is built so
// its *unreversed* forward side already is the macrobody's solid
// interior (matching the point_inside==is_forward convention the
// dedicated Sphere/Cylinder/Cone primitives already use). This keeps
// expand() and replace() consistent without a second sign table; see
// DESIGN.md's Open Questions for the rationale.
package macro

import (
	"fmt"
	"math"
	"strings"

	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/mat"
	"github.com/cpmech/mcgeom/internal/surf"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// IDAllocator hands out fresh surface ids for produced primitives.
type IDAllocator func() int32

// Result is what expand(tr_map, it, surf_list) produces: the primitive
// surfaces to insert (already under the macrobody's TR, if any) and
// the cell-equation replacement text for "-name" (AND form); the
// "+name" (OR) form is its De Morgan dual, built by Replace.
type Result struct {
	Surfaces    []surf.Surface
	Replacement string // AND form, used to rewrite a "-name" occurrence
}

func childName(base string, i int) string { return fmt.Sprintf("%s.%d", base, i) }

func andJoin(names []string) string {
	if len(names) == 1 {
		return names[0]
	}
	return "(" + strings.Join(names, " ") + ")"
}

func orJoin(names []string) string {
	if len(names) == 1 {
		return names[0]
	}
	return "(" + strings.Join(names, ":") + ")"
}

// Replace implements §4.7's replace(name, it): rewrites a "-name"
// occurrence to the AND form and a "+name" occurrence to its De Morgan
// dual, the OR of the reversed primitives (TOR supplies its own dual
// via TorusInwardReplacement, since its torus is positive outside).
func Replace(sign byte, result Result, names []string) string {
	if sign == '+' {
		if len(result.Surfaces) > 0 && result.Surfaces[0].Kind() == surf.KindTorus {
			if len(names) == 4 {
				return TorusInwardReplacement(names[0], names[1], names[2], names[3])
			}
			return names[0]
		}
		neg := make([]string, len(names))
		for i, n := range names {
			neg[i] = "-" + n
		}
		return orJoin(neg)
	}
	return result.Replacement
}

func namesOf(surfaces []surf.Surface) []string {
	out := make([]string, len(surfaces))
	for i, s := range surfaces {
		out[i] = s.Name()
	}
	return out
}

func plane(id int32, name string, n vec3.Vector, dist float64, aff mat.Affine) (surf.Surface, error) {
	p, err := surf.NewPlane(id, name, n, dist)
	if err != nil {
		return nil, err
	}
	return p.Transform(aff), nil
}

// ExpandRPP: 6 args xmin,xmax,ymin,ymax,zmin,zmax -> 6 axis planes
// oriented so each plane's forward side is the box interior.
func ExpandRPP(base string, a []float64, aff mat.Affine, next IDAllocator) (Result, error) {
	if len(a) != 6 {
		return Result{}, geomerr.New(geomerr.BadCard, "RPP %q: expected 6 args, got %d", base, len(a))
	}
	specs := []struct {
		n    vec3.Vector
		dist float64
	}{
		{vec3.New(1, 0, 0), a[0]}, {vec3.New(-1, 0, 0), -a[1]},
		{vec3.New(0, 1, 0), a[2]}, {vec3.New(0, -1, 0), -a[3]},
		{vec3.New(0, 0, 1), a[4]}, {vec3.New(0, 0, -1), -a[5]},
	}
	var surfaces []surf.Surface
	for i, sp := range specs {
		p, err := plane(next(), childName(base, i+1), sp.n, sp.dist, aff)
		if err != nil {
			return Result{}, err
		}
		surfaces = append(surfaces, p)
	}
	return Result{Surfaces: surfaces, Replacement: andJoin(namesOf(surfaces))}, nil
}

// ExpandBOX: corner(3) + up to 3 edge vectors (9 args = 2 edges, an
// infinite slab along the third direction; 12 args = 3 edges, a closed
// box). The first two vectors must be orthogonal (warned otherwise).
func ExpandBOX(base string, a []float64, aff mat.Affine, next IDAllocator, warn func(string)) (Result, error) {
	if len(a) != 9 && len(a) != 12 {
		return Result{}, geomerr.New(geomerr.BadCard, "BOX %q: expected 9 or 12 args, got %d", base, len(a))
	}
	corner := vec3.New(a[0], a[1], a[2])
	v1 := vec3.New(a[3], a[4], a[5])
	v2 := vec3.New(a[6], a[7], a[8])
	if math.Abs(v1.Dot(v2)) > 1e-6*v1.Norm()*v2.Norm() && warn != nil {
		warn("BOX " + base + ": first two edge vectors are not orthogonal")
	}
	var v3 vec3.Vector
	hasV3 := len(a) == 12
	if hasV3 {
		v3 = vec3.New(a[9], a[10], a[11])
	}

	var surfaces []surf.Surface
	idx := 1
	addPair := func(v vec3.Vector) error {
		n, ok := v.Normalized()
		if !ok {
			return geomerr.New(geomerr.DegenerateGeometry, "BOX %q: a degenerate (zero-length) edge vector", base)
		}
		d0 := n.Dot(corner)
		d1 := n.Dot(corner.Add(v))
		p0, err := plane(next(), childName(base, idx), n, d0, aff)
		if err != nil {
			return err
		}
		idx++
		p1, err := plane(next(), childName(base, idx), n.Scale(-1), -d1, aff)
		if err != nil {
			return err
		}
		idx++
		surfaces = append(surfaces, p0, p1)
		return nil
	}
	if err := addPair(v1); err != nil {
		return Result{}, err
	}
	if err := addPair(v2); err != nil {
		return Result{}, err
	}
	if hasV3 {
		if err := addPair(v3); err != nil {
			return Result{}, err
		}
	}
	return Result{Surfaces: surfaces, Replacement: andJoin(namesOf(surfaces))}, nil
}

// ExpandSPH: 1 arg (radius, center at origin; non-MCNP convenience
// form) or 4 args (center+radius).
func ExpandSPH(base string, a []float64, aff mat.Affine, next IDAllocator) (Result, error) {
	var center vec3.Vector
	var r float64
	switch len(a) {
	case 1:
		r = a[0]
	case 4:
		center, r = vec3.New(a[0], a[1], a[2]), a[3]
	default:
		return Result{}, geomerr.New(geomerr.BadCard, "SPH %q: expected 1 or 4 args, got %d", base, len(a))
	}
	s := surf.NewSphere(next(), childName(base, 1), center, r).Transform(aff)
	return Result{Surfaces: []surf.Surface{s}, Replacement: s.Name()}, nil
}

// ExpandRCC: base center(3) + axis vector(3) + radius(1) -> one finite
// cylinder (cylinder AND two end caps).
func ExpandRCC(base string, a []float64, aff mat.Affine, next IDAllocator) (Result, error) {
	if len(a) != 7 {
		return Result{}, geomerr.New(geomerr.BadCard, "RCC %q: expected 7 args, got %d", base, len(a))
	}
	center := vec3.New(a[0], a[1], a[2])
	axisVec := vec3.New(a[3], a[4], a[5])
	r := a[6]
	axis, ok := axisVec.Normalized()
	if !ok {
		return Result{}, geomerr.New(geomerr.DegenerateGeometry, "RCC %q: zero-length axis vector", base)
	}
	cyl, err := surf.NewCylinder(next(), childName(base, 1), center, axis, r)
	if err != nil {
		return Result{}, err
	}
	bottom, err := plane(next(), childName(base, 2), axis, axis.Dot(center), aff)
	if err != nil {
		return Result{}, err
	}
	top, err := plane(next(), childName(base, 3), axis.Scale(-1), -axis.Dot(center.Add(axisVec)), aff)
	if err != nil {
		return Result{}, err
	}
	surfaces := []surf.Surface{cyl.Transform(aff), bottom, top}
	return Result{Surfaces: surfaces, Replacement: andJoin(namesOf(surfaces))}, nil
}

// ExpandTRC: base center(3) + axis vector(3) + bottom radius + top
// radius -> one truncated cone: a surf.Cone whose apex and occupied
// nappe follow from the two radii (a Cylinder when the radii are
// equal), clipped by 2 end planes.
func ExpandTRC(base string, a []float64, aff mat.Affine, next IDAllocator) (Result, error) {
	if len(a) != 8 {
		return Result{}, geomerr.New(geomerr.BadCard, "TRC %q: expected 8 args, got %d", base, len(a))
	}
	center := vec3.New(a[0], a[1], a[2])
	axisVec := vec3.New(a[3], a[4], a[5])
	r1, r2 := a[6], a[7]
	h := axisVec.Norm()
	axis, ok := axisVec.Normalized()
	if !ok {
		return Result{}, geomerr.New(geomerr.DegenerateGeometry, "TRC %q: zero-length axis vector", base)
	}
	if math.Abs(r1-r2) < 1e-12 {
		// degenerates to a cylinder.
		cyl, err := surf.NewCylinder(next(), childName(base, 1), center, axis, r1)
		if err != nil {
			return Result{}, err
		}
		bottom, _ := plane(next(), childName(base, 2), axis, axis.Dot(center), aff)
		top, _ := plane(next(), childName(base, 3), axis.Scale(-1), -axis.Dot(center.Add(axisVec)), aff)
		surfaces := []surf.Surface{cyl.Transform(aff), bottom, top}
		return Result{Surfaces: surfaces, Replacement: andJoin(namesOf(surfaces))}, nil
	}
	// apex distance along -axis from the base where the cone closes:
	// r(z) = r1 + (r2-r1)*z/h, apex at z = -r1*h/(r2-r1).
	apexZ := -r1 * h / (r2 - r1)
	apex := center.Add(axis.Scale(apexZ))
	t2 := math.Pow((r2-r1)/h, 2)
	sheet := 1
	if apexZ > h {
		sheet = -1
	}
	cone, err := surf.NewCone(next(), childName(base, 1), apex, axis, t2, sheet)
	if err != nil {
		return Result{}, err
	}
	bottom, _ := plane(next(), childName(base, 2), axis, axis.Dot(center), aff)
	top, _ := plane(next(), childName(base, 3), axis.Scale(-1), -axis.Dot(center.Add(axisVec)), aff)
	surfaces := []surf.Surface{cone.Transform(aff), bottom, top}
	return Result{Surfaces: surfaces, Replacement: andJoin(namesOf(surfaces))}, nil
}

// ExpandREC: base center(3) + axis vector(3) + major-axis vector(3) +
// minor radius(1) [10 args], or major+minor vectors explicit [12
// args] -> one elliptic cylinder (as a GQ) plus two end caps.
func ExpandREC(base string, a []float64, aff mat.Affine, next IDAllocator, warn func(string)) (Result, error) {
	if len(a) != 10 && len(a) != 12 {
		return Result{}, geomerr.New(geomerr.BadCard, "REC %q: expected 10 or 12 args, got %d", base, len(a))
	}
	center := vec3.New(a[0], a[1], a[2])
	axisVec := vec3.New(a[3], a[4], a[5])
	major := vec3.New(a[6], a[7], a[8])
	axis, ok := axisVec.Normalized()
	if !ok {
		return Result{}, geomerr.New(geomerr.DegenerateGeometry, "REC %q: zero-length axis vector", base)
	}
	majorUnit, ok := major.Normalized()
	if !ok {
		return Result{}, geomerr.New(geomerr.DegenerateGeometry, "REC %q: zero-length major-axis vector", base)
	}
	if math.Abs(axis.Dot(majorUnit)) > 1e-6 && warn != nil {
		warn("REC " + base + ": axis and major-axis vector are not orthogonal")
	}
	var rMinor float64
	var minorUnit vec3.Vector
	if len(a) == 10 {
		rMinor = a[9]
		minorUnit = axis.Cross(majorUnit)
	} else {
		minor := vec3.New(a[9], a[10], a[11])
		rMinor = minor.Norm()
		minorUnit, _ = minor.Normalized()
		if math.Abs(major.Dot(minor)) > 1e-6*major.Norm()*minor.Norm() && warn != nil {
			warn("REC " + base + ": major and minor axis vectors are not orthogonal")
		}
	}
	rMajor := major.Norm()

	// build the elliptic-cylinder quadric in the (majorUnit,minorUnit,axis)
	// frame centered at `center`, then transform into world coordinates.
	toLocal := mat.Affine{R: mat.Mat3{
		{majorUnit.X, minorUnit.X, axis.X},
		{majorUnit.Y, minorUnit.Y, axis.Y},
		{majorUnit.Z, minorUnit.Z, axis.Z},
	}, T: vec3.New(-center.Dot(majorUnit), -center.Dot(minorUnit), -center.Dot(axis))}
	q := surf.NewQuadric(next(), childName(base, 1),
		-1/(rMajor*rMajor), -1/(rMinor*rMinor), 0, 0, 0, 0, 0, 0, 0, 1)
	qWorld := q.Transform(toLocal)
	bottom, _ := plane(next(), childName(base, 2), axis, axis.Dot(center), aff)
	top, _ := plane(next(), childName(base, 3), axis.Scale(-1), -axis.Dot(center.Add(axisVec)), aff)
	surfaces := []surf.Surface{qWorld.Transform(aff), bottom, top}
	return Result{Surfaces: surfaces, Replacement: andJoin(namesOf(surfaces))}, nil
}

// ExpandELL: two triples + a 7th scalar -> one ellipsoid GQ. Positive
// 7th value: the two triples are foci and the value is the major
// semi-axis length. Negative: the two triples are (center, axis
// direction) and |value| is the minor radius.
func ExpandELL(base string, a []float64, aff mat.Affine, next IDAllocator) (Result, error) {
	if len(a) != 7 {
		return Result{}, geomerr.New(geomerr.BadCard, "ELL %q: expected 7 args, got %d", base, len(a))
	}
	v1 := vec3.New(a[0], a[1], a[2])
	v2 := vec3.New(a[3], a[4], a[5])
	v7 := a[6]

	var center vec3.Vector
	var axisUnit vec3.Vector
	var rMajor, rMinor float64
	if v7 > 0 {
		f1, f2 := v1, v2
		center = f1.Add(f2).Scale(0.5)
		c := vec3.Distance(f1, f2) / 2
		rMajor = v7
		rMinor = math.Sqrt(math.Max(0, rMajor*rMajor-c*c))
		axisUnit, _ = f2.Sub(f1).Normalized()
		if c < 1e-12 {
			axisUnit = vec3.New(0, 0, 1) // degenerates to a sphere: axis is arbitrary
		}
	} else {
		center = v1
		axisUnit, _ = v2.Normalized()
		rMajor = v2.Norm()
		rMinor = -v7
	}
	e1 := axisUnit.Cross(vec3.New(0, 0, 1))
	if e1.Norm() < 1e-9 {
		e1 = axisUnit.Cross(vec3.New(1, 0, 0))
	}
	e1, _ = e1.Normalized()
	e2 := axisUnit.Cross(e1)

	toLocal := mat.Affine{R: mat.Mat3{
		{e1.X, e2.X, axisUnit.X},
		{e1.Y, e2.Y, axisUnit.Y},
		{e1.Z, e2.Z, axisUnit.Z},
	}, T: vec3.New(-center.Dot(e1), -center.Dot(e2), -center.Dot(axisUnit))}
	q := surf.NewQuadric(next(), childName(base, 1),
		-1/(rMinor*rMinor), -1/(rMinor*rMinor), -1/(rMajor*rMajor), 0, 0, 0, 0, 0, 0, 1)
	qWorld := q.Transform(toLocal).Transform(aff)
	return Result{Surfaces: []surf.Surface{qWorld}, Replacement: qWorld.Name()}, nil
}

// ExpandWED: apex(3) + two side edge vectors(3+3) + height vector(3)
// -> 5 planes (two sides, top/bottom of the triangular cross-section,
// and the base is implicit in the two side planes meeting the apex
// plane formed by the side vectors).
func ExpandWED(base string, a []float64, aff mat.Affine, next IDAllocator) (Result, error) {
	if len(a) != 12 {
		return Result{}, geomerr.New(geomerr.BadCard, "WED %q: expected 12 args, got %d", base, len(a))
	}
	apex := vec3.New(a[0], a[1], a[2])
	s1 := vec3.New(a[3], a[4], a[5])
	s2 := vec3.New(a[6], a[7], a[8])
	h := vec3.New(a[9], a[10], a[11])

	hAxis, _ := h.Normalized()
	var surfaces []surf.Surface
	add := func(n vec3.Vector, p vec3.Vector, idx int) error {
		nn, ok := n.Normalized()
		if !ok {
			return geomerr.New(geomerr.DegenerateGeometry, "WED %q: a degenerate face normal", base)
		}
		pl, err := plane(next(), childName(base, idx), nn, nn.Dot(p), aff)
		if err != nil {
			return err
		}
		surfaces = append(surfaces, pl)
		return nil
	}
	// hypotenuse face (through apex+s1, apex+s2): inward normal faces apex.
	hyp := s2.Sub(s1).Cross(hAxis)
	if hyp.Dot(apex.Add(s1.Scale(0.5)).Sub(apex.Add(s1))) < 0 {
		hyp = hyp.Scale(-1)
	}
	if err := add(hyp, apex.Add(s1), 1); err != nil {
		return Result{}, err
	}
	// side 1 face: contains apex, apex+s1, apex+h; inward normal faces s2 side.
	n1 := s1.Cross(hAxis)
	if n1.Dot(s2) < 0 {
		n1 = n1.Scale(-1)
	}
	if err := add(n1, apex, 2); err != nil {
		return Result{}, err
	}
	// side 2 face.
	n2 := hAxis.Cross(s2)
	if n2.Dot(s1) < 0 {
		n2 = n2.Scale(-1)
	}
	if err := add(n2, apex, 3); err != nil {
		return Result{}, err
	}
	// bottom (z=0 in the wedge's own axial direction) and top (z=|h|).
	if err := add(hAxis, apex, 4); err != nil {
		return Result{}, err
	}
	if err := add(hAxis.Scale(-1), apex.Add(h), 5); err != nil {
		return Result{}, err
	}
	return Result{Surfaces: surfaces, Replacement: andJoin(namesOf(surfaces))}, nil
}

// ExpandRHP expands a hexagonal prism (RHP/HEX): base center(3) +
// height vector(3) + a first transverse vector(3) [9 args], or
// additionally two more transverse vectors for an irregular hexagon
// [15 args]. The 9-arg form derives the missing in-plane vectors by
// rotating the first 120 degrees and 240 degrees.
func ExpandRHP(base string, a []float64, aff mat.Affine, next IDAllocator) (Result, error) {
	if len(a) != 9 && len(a) != 15 {
		return Result{}, geomerr.New(geomerr.BadCard, "RHP %q: expected 9 or 15 args, got %d", base, len(a))
	}
	center := vec3.New(a[0], a[1], a[2])
	h := vec3.New(a[3], a[4], a[5])
	hAxis, ok := h.Normalized()
	if !ok {
		return Result{}, geomerr.New(geomerr.DegenerateGeometry, "RHP %q: zero-length height vector", base)
	}
	r1 := vec3.New(a[6], a[7], a[8])

	var transverse [3]vec3.Vector
	if len(a) == 9 {
		transverse = [3]vec3.Vector{r1, rotateAbout(r1, hAxis, 2*math.Pi/3), rotateAbout(r1, hAxis, 4*math.Pi/3)}
	} else {
		transverse = [3]vec3.Vector{r1, vec3.New(a[9], a[10], a[11]), vec3.New(a[12], a[13], a[14])}
	}

	var surfaces []surf.Surface
	idx := 1
	for _, v := range transverse {
		n, ok := v.Normalized()
		if !ok {
			return Result{}, geomerr.New(geomerr.DegenerateGeometry, "RHP %q: a degenerate transverse vector", base)
		}
		d := n.Dot(v)
		c := n.Dot(center)
		p1, err := plane(next(), childName(base, idx), n, c-d, aff)
		if err != nil {
			return Result{}, err
		}
		idx++
		p2, err := plane(next(), childName(base, idx), n.Scale(-1), -(c + d), aff)
		if err != nil {
			return Result{}, err
		}
		idx++
		surfaces = append(surfaces, p1, p2)
	}
	bottom, _ := plane(next(), childName(base, idx), hAxis, hAxis.Dot(center), aff)
	idx++
	top, _ := plane(next(), childName(base, idx), hAxis.Scale(-1), -hAxis.Dot(center.Add(h)), aff)
	surfaces = append(surfaces, bottom, top)
	return Result{Surfaces: surfaces, Replacement: andJoin(namesOf(surfaces))}, nil
}

func rotateAbout(v, axis vec3.Vector, angle float64) vec3.Vector {
	c, s := math.Cos(angle), math.Sin(angle)
	return v.Scale(c).Add(axis.Cross(v).Scale(s)).Add(axis.Scale(axis.Dot(v) * (1 - c)))
}

// ExpandARB: 24 vertex coordinates (8 points) + 6 four-digit face
// vertex-index tuples -> up to 6 planes, each reoriented to point
// inward, toward the centroid of the vertices the faces actually use.
func ExpandARB(base string, a []float64, aff mat.Affine, next IDAllocator) (Result, error) {
	if len(a) != 30 {
		return Result{}, geomerr.New(geomerr.BadCard, "ARB %q: expected 30 args, got %d", base, len(a))
	}
	var verts [8]vec3.Vector
	for i := 0; i < 8; i++ {
		verts[i] = vec3.New(a[3*i], a[3*i+1], a[3*i+2])
	}
	var used [8]bool
	for _, f := range a[24:] {
		for _, i := range digitsToIndices(int(f)) {
			if i < 8 {
				used[i] = true
			}
		}
	}
	var centroid vec3.Vector
	count := 0.0
	for i, v := range verts {
		if used[i] {
			centroid = centroid.Add(v)
			count++
		}
	}
	centroid = centroid.Scale(1 / math.Max(count, 1))

	var surfaces []surf.Surface
	idx := 1
	for f := 0; f < 6; f++ {
		digits := int(a[24+f])
		if digits == 0 {
			continue
		}
		idxs := digitsToIndices(digits)
		if len(idxs) < 3 {
			continue
		}
		p0, p1, p2 := verts[idxs[0]], verts[idxs[1]], verts[idxs[2]]
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		nn, ok := n.Normalized()
		if !ok {
			continue // degenerate face: skip rather than fail the whole body
		}
		if nn.Dot(p0.Sub(centroid)) > 0 {
			nn = nn.Scale(-1)
		}
		p, err := plane(next(), childName(base, idx), nn, nn.Dot(p0), aff)
		if err != nil {
			return Result{}, err
		}
		idx++
		surfaces = append(surfaces, p)
	}
	return Result{Surfaces: surfaces, Replacement: andJoin(namesOf(surfaces))}, nil
}

// digitsToIndices unpacks a 4-digit 1-based vertex-index tuple (e.g.
// 1234) into 0-based indices, dropping every zero digit (fewer than 4
// vertices used, i.e. a triangular face).
func digitsToIndices(n int) []int {
	if n < 0 {
		n = -n
	}
	digits := []int{n / 1000 % 10, n / 100 % 10, n / 10 % 10, n % 10}
	var out []int
	for _, d := range digits {
		if d == 0 {
			continue
		}
		out = append(out, d-1)
	}
	return out
}

// ExpandQUA: 10 args -> 1 quadric + 2 z-cap planes. The first 8 args
// are the GQ coefficients A,B,C,D,E,F,G,H (J and K are set to 0) and
// the last 2 are the z bounds z1, z2 in the macrobody's local frame.
func ExpandQUA(base string, a []float64, aff mat.Affine, next IDAllocator) (Result, error) {
	if len(a) != 10 {
		return Result{}, geomerr.New(geomerr.BadCard, "QUA %q: expected 10 args, got %d", base, len(a))
	}
	q := surf.NewQuadric(next(), childName(base, 1), a[0], a[1], a[2], a[3], a[4], a[5], a[6], a[7], 0, 0)
	qWorld := q.Transform(aff)
	z1, z2 := a[8], a[9]
	bottom, _ := plane(next(), childName(base, 2), vec3.New(0, 0, 1), z1, aff)
	top, _ := plane(next(), childName(base, 3), vec3.New(0, 0, -1), -z2, aff)
	surfaces := []surf.Surface{qWorld, bottom, top}
	return Result{Surfaces: surfaces, Replacement: andJoin(namesOf(surfaces))}, nil
}

// ExpandTOR: center(3) + axis(3) + R, a, b -> one torus plus 3 angular
// half-planes (start, end, mid), per spec.md §4.5's non-convex
// decomposition. Angles are taken as two extra implicit args (start,
// end) appended by the card layer in degrees; a full revolution
// (start==end or omitted) degenerates to a single torus reference.
func ExpandTOR(base string, a []float64, startDeg, endDeg float64, aff mat.Affine, next IDAllocator) (Result, error) {
	if len(a) != 9 {
		return Result{}, geomerr.New(geomerr.BadCard, "TOR %q: expected 9 args, got %d", base, len(a))
	}
	center := vec3.New(a[0], a[1], a[2])
	axisVec := vec3.New(a[3], a[4], a[5])
	r, ra, rb := a[6], a[7], a[8]
	axis, ok := axisVec.Normalized()
	if !ok {
		return Result{}, geomerr.New(geomerr.DegenerateGeometry, "TOR %q: zero-length axis vector", base)
	}
	tor, err := surf.NewTorus(next(), childName(base, 1), center, axis, r, ra, rb)
	if err != nil {
		return Result{}, err
	}
	torWorld := tor.Transform(aff)
	surfaces := []surf.Surface{torWorld}

	if math.Abs(endDeg-startDeg) < 1e-9 {
		return Result{Surfaces: surfaces, Replacement: "-" + torWorld.Name()}, nil
	}

	e1 := axis.Cross(vec3.New(0, 0, 1))
	if e1.Norm() < 1e-9 {
		e1 = axis.Cross(vec3.New(1, 0, 0))
	}
	e1, _ = e1.Normalized()
	e2 := axis.Cross(e1)
	angPlane := func(deg float64, idx int) (surf.Surface, string, error) {
		rad := deg * math.Pi / 180
		n := e1.Scale(-math.Sin(rad)).Add(e2.Scale(math.Cos(rad)))
		p, err := plane(next(), childName(base, idx), n, n.Dot(center), aff)
		if err != nil {
			return nil, "", err
		}
		return p, p.Name(), nil
	}
	midDeg := (startDeg + endDeg) / 2
	p1, n1, err := angPlane(startDeg, 2)
	if err != nil {
		return Result{}, err
	}
	p2, n2, err := angPlane(endDeg, 3)
	if err != nil {
		return Result{}, err
	}
	p3, n3, err := angPlane(midDeg, 4)
	if err != nil {
		return Result{}, err
	}
	surfaces = append(surfaces, p1, p2, p3)

	// outward orientation: (-torus.1  n1 -n3) : (-torus.1  n3 -n2) i.e.
	// the torus interior, restricted to angle in [start,mid] union
	// [mid,end], per spec.md §4.5's two-convex-piece decomposition.
	repl := fmt.Sprintf("(-%s %s -%s) : (-%s %s -%s)", torWorld.Name(), n1, n3, torWorld.Name(), n3, n2)
	return Result{Surfaces: surfaces, Replacement: repl}, nil
}

// TorusInwardReplacement is the De Morgan dual of TOR's replacement
// (the "+name" reference), per spec.md §4.5: the torus exterior or the
// complement of either angular piece's plane pair.
func TorusInwardReplacement(torusName, startName, endName, midName string) string {
	return fmt.Sprintf("(%s : -%s : %s) (%s : -%s : %s)", torusName, startName, midName, torusName, midName, endName)
}

// ExpandAxisSymmetric handles the X/Y/Z mnemonics (spec.md §4.7's last
// row): 2 args (a single point -> a plane perpendicular to the named
// axis through that coordinate), 4 args (two (r,z)-style points ->
// equal radii gives a cylinder, unequal gives a cone), 6 args (three
// points -> a general SQ hyperboloid of revolution, approximated here
// by the quadratic (in r^2,z) interpolant through the 3 samples).
func ExpandAxisSymmetric(base string, axisLetter byte, a []float64, aff mat.Affine, next IDAllocator, warn func(string)) (Result, error) {
	axisIdx := map[byte]int{'x': 0, 'y': 1, 'z': 2}[axisLetter]
	axis := vec3.Vector{}
	axis = axis.WithComponent(axisIdx, 1)

	switch len(a) {
	case 2:
		p, err := plane(next(), childName(base, 1), axis, a[0], aff)
		if err != nil {
			return Result{}, err
		}
		return Result{Surfaces: []surf.Surface{p}, Replacement: p.Name()}, nil
	case 4:
		z1, r1, z2, r2 := a[0], a[1], a[2], a[3]
		if math.Abs(r1-r2) < 1e-9 {
			center := axis.Scale(z1)
			cyl, err := surf.NewCylinder(next(), childName(base, 1), center, axis, r1)
			if err != nil {
				return Result{}, err
			}
			s := cyl.Transform(aff)
			return Result{Surfaces: []surf.Surface{s}, Replacement: s.Name()}, nil
		}
		h := z2 - z1
		if math.Abs(h) < 1e-12 {
			return Result{}, geomerr.New(geomerr.DegenerateGeometry, "axis-symmetric %q: coincident z with differing radii", base)
		}
		apexZ := z1 - r1*h/(r2-r1)
		apex := axis.Scale(apexZ)
		t2 := math.Pow((r2-r1)/h, 2)
		sheet := 1
		if apexZ > math.Max(z1, z2) {
			sheet = -1
		}
		cone, err := surf.NewCone(next(), childName(base, 1), apex, axis, t2, sheet)
		if err != nil {
			return Result{}, err
		}
		s := cone.Transform(aff)
		return Result{Surfaces: []surf.Surface{s}, Replacement: s.Name()}, nil
	case 6:
		if warn != nil {
			warn("axis-symmetric " + base + ": 6-parameter hyperboloid-of-revolution uses an approximate quadratic fit through the three samples")
		}
		z := [3]float64{a[0], a[2], a[4]}
		r2 := [3]float64{a[1] * a[1], a[3] * a[3], a[5] * a[5]}
		// fit r^2 = A*z^2 + B*z + C exactly through the 3 points, then
		// express the interior (r^2 <= A*z^2+B*z+C) as a GQ forward test
		// in whichever two coordinates form the radial plane for this axis.
		A, B, C, err := quadFit(z, r2)
		if err != nil {
			return Result{}, err
		}
		var q *surf.Quadric
		switch axisIdx {
		case 2:
			q = surf.NewQuadric(next(), childName(base, 1), -1, -1, A, 0, 0, 0, 0, 0, B, C)
		case 0:
			q = surf.NewQuadric(next(), childName(base, 1), A, -1, -1, 0, 0, 0, B, 0, 0, C)
		default:
			q = surf.NewQuadric(next(), childName(base, 1), -1, A, -1, 0, 0, 0, 0, B, 0, C)
		}
		s := q.Transform(aff)
		return Result{Surfaces: []surf.Surface{s}, Replacement: s.Name()}, nil
	default:
		return Result{}, geomerr.New(geomerr.BadCard, "axis-symmetric %q: expected 2, 4 or 6 args, got %d", base, len(a))
	}
}

func quadFit(z, r2 [3]float64) (A, B, C float64, err error) {
	m := [3][3]float64{
		{z[0] * z[0], z[0], 1},
		{z[1] * z[1], z[1], 1},
		{z[2] * z[2], z[2], 1},
	}
	det := det3(m)
	if math.Abs(det) < 1e-12 {
		return 0, 0, 0, geomerr.New(geomerr.DegenerateGeometry, "axis-symmetric: the three (z,r) samples are degenerate for a quadratic fit")
	}
	var sol [3]float64
	for col := 0; col < 3; col++ {
		mm := m
		for row := 0; row < 3; row++ {
			mm[row][col] = r2[row]
		}
		sol[col] = det3(mm) / det
	}
	return sol[0], sol[1], sol[2], nil
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}
