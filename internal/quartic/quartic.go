// Package quartic implements Ferrari's method for real quartic roots
// with Newton-Raphson post-refinement, as required by the torus
// ray-intersection routine of spec.md §4.5 and exercised by S3 of
// spec.md §8. The post-refinement step runs through gosl/num.NlSolver,
// the same Newton-plus-Jacobian solver gofem's material-point drivers
// close a scalar residual with (msolid/hyperelast1.go).
//
// Ferrari's resolvent cubic loses precision when the depressed quartic's
// linear coefficient q is tiny but non-zero (the root of interest in the
// resolvent collapses toward zero along with it). Rather than chase
// higher-precision arithmetic for that corner, this solver generates
// candidate roots from two independent factorizations — the exact
// resolvent-cubic factorization and the q=0 (biquadratic) approximation
// — and lets Newton-Raphson refinement, run against the true quartic
// coefficients, correct whichever candidate it was seeded with. This
// mirrors the spec's own framing of Ferrari's method as producing a
// starting point that "is post-refined by one round of Newton-Raphson".
package quartic

import (
	"math"

	"github.com/cpmech/gosl/num"
)

// NewtonEPS is the Newton refinement stop tolerance (spec.md §9).
const NewtonEPS = 1e-12

// NewtonIterCap bounds the refinement loop (spec.md §4.5).
const NewtonIterCap = 50000

// residualAcceptEPS filters refined candidates whose residual never
// collapsed (e.g. a resolvent branch with no real quadratic factor).
const residualAcceptEPS = 1e-4

// SolveCubicReal returns every real root of x^3 + b x^2 + c x + d = 0.
func SolveCubicReal(b, c, d float64) []float64 {
	p := c - b*b/3
	q := 2*b*b*b/27 - b*c/3 + d
	shift := -b / 3

	if math.Abs(p) < 1e-14 && math.Abs(q) < 1e-14 {
		return []float64{shift}
	}

	disc := q*q/4 + p*p*p/27
	switch {
	case disc > 1e-14:
		sq := math.Sqrt(disc)
		u := cbrt(-q/2 + sq)
		v := cbrt(-q/2 - sq)
		return []float64{u + v + shift}
	case disc > -1e-14:
		u := cbrt(-q / 2)
		return []float64{2*u + shift, -u + shift, -u + shift}
	default:
		r := math.Sqrt(-p * p * p / 27)
		phi := math.Acos(clamp(-q/(2*r), -1, 1))
		m := 2 * math.Sqrt(-p/3)
		roots := make([]float64, 3)
		for k := 0; k < 3; k++ {
			roots[k] = m*math.Cos((phi-2*math.Pi*float64(k))/3) + shift
		}
		return roots
	}
}

func cbrt(x float64) float64 {
	if x < 0 {
		return -math.Cbrt(-x)
	}
	return math.Cbrt(x)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// candidateSeeds returns approximate roots of a x^4+b x^3+c x^2+d x+e=0,
// good enough as Newton starting points but not guaranteed accurate.
func candidateSeeds(a, b, c, d, e float64) []float64 {
	B, C, D, E := b/a, c/a, d/a, e/a
	shift := -B / 4
	p := C - 3*B*B/8
	q := B*B*B/8 - B*C/2 + D
	r := -3*B*B*B*B/256 + B*B*C/16 - B*D/4 + E

	var seeds []float64

	// biquadratic approximation (treats q as zero)
	disc := p*p - 4*r
	if disc >= 0 {
		sq := math.Sqrt(disc)
		for _, y2 := range [2]float64{(-p + sq) / 2, (-p - sq) / 2} {
			if y2 >= 0 {
				sy := math.Sqrt(y2)
				seeds = append(seeds, sy+shift, -sy+shift)
			}
		}
	}

	if math.Abs(q) > 0 {
		// resolvent cubic: m^3 + p m^2 + (p^2/4 - r) m - q^2/8 = 0
		for _, m := range SolveCubicReal(p, p*p/4-r, -q*q/8) {
			if m <= 1e-9 {
				continue // negative/near-zero root: complex branch, skip (see DESIGN.md)
			}
			s := math.Sqrt(2 * m)
			addQuad := func(bb, cc float64) {
				dd := bb*bb - 4*cc
				if dd < 0 {
					return
				}
				sq := math.Sqrt(dd)
				seeds = append(seeds, (-bb+sq)/2+shift, (-bb-sq)/2+shift)
			}
			addQuad(-s, p/2+m+q/(2*s))
			addQuad(s, p/2+m-q/(2*s))
		}
	}
	return seeds
}

// Eval evaluates a x^4+b x^3+c x^2+d x+e at t.
func Eval(a, b, c, d, e, t float64) float64 {
	return ((a*t+b)*t+c)*t*t + d*t + e
}

func evalDeriv(a, b, c, d, t float64) float64 {
	return (4*a*t+3*b)*t*t + 2*c*t + d
}

// Refine runs Newton-Raphson on f(t)=a t^4+b t^3+c t^2+d t+e starting
// from t0, via gosl/num's nonlinear solver (the same Newton-with-
// Jacobian idiom gofem's material-point drivers use to close a scalar
// residual, e.g. msolid/hyperelast1.go's num.NlSolver), capped at
// NewtonIterCap iterations through SetTols. Falls back to a hand-rolled
// Newton step if the solver can't be initialized or fails to converge
// (e.g. a seed landing exactly on f'(t)=0).
func Refine(a, b, c, d, e, t0 float64) float64 {
	ffcn := func(fx, x []float64) error {
		fx[0] = Eval(a, b, c, d, e, x[0])
		return nil
	}
	jfcn := func(J [][]float64, x []float64) error {
		J[0][0] = evalDeriv(a, b, c, d, x[0])
		return nil
	}
	var nls num.NlSolver
	if err := nls.Init(1, ffcn, nil, jfcn, true, false, nil); err != nil {
		return refineFallback(a, b, c, d, e, t0)
	}
	defer nls.Clean()
	nls.SetTols(NewtonEPS, NewtonEPS, 1e-14, num.EPS)
	x := []float64{t0}
	if err := nls.Solve(x, true); err != nil {
		return refineFallback(a, b, c, d, e, t0)
	}
	return x[0]
}

// refineFallback is the hand-rolled Newton loop used when gosl/num's
// solver can't be initialized or fails to converge from t0.
func refineFallback(a, b, c, d, e, t0 float64) float64 {
	t := t0
	for i := 0; i < NewtonIterCap; i++ {
		fp := evalDeriv(a, b, c, d, t)
		if math.Abs(fp) < 1e-300 {
			break
		}
		step := Eval(a, b, c, d, e, t) / fp
		t -= step
		if math.Abs(step) < NewtonEPS {
			break
		}
	}
	return t
}

// Solve returns the real roots of a x^4+b x^3+c x^2+d x+e=0, each
// polished by Refine and deduplicated. a must be non-zero; a
// near-zero leading coefficient must be handled by the caller as a
// cubic/quadratic degeneracy (mirroring spec.md §4.3's c2-degeneracy
// rule for the quadric's own ray intersection).
func Solve(a, b, c, d, e float64) []float64 {
	var roots []float64
	for _, seed := range candidateSeeds(a, b, c, d, e) {
		r := Refine(a, b, c, d, e, seed)
		scale := math.Max(1, math.Abs(a)+math.Abs(b)+math.Abs(c)+math.Abs(d)+math.Abs(e))
		if math.Abs(Eval(a, b, c, d, e, r))/scale > residualAcceptEPS {
			continue
		}
		dup := false
		for _, existing := range roots {
			if math.Abs(existing-r) < 1e-7*math.Max(1, math.Abs(r)) {
				dup = true
				break
			}
		}
		if !dup {
			roots = append(roots, r)
		}
	}
	return roots
}

// SmallestPositiveRoot returns the smallest strictly-positive real root
// of a x^4+b x^3+c x^2+d x+e=0, or ok=false if none exists.
func SmallestPositiveRoot(a, b, c, d, e float64) (root float64, ok bool) {
	best := math.Inf(1)
	found := false
	for _, r := range Solve(a, b, c, d, e) {
		if r > 1e-9 && r < best {
			best = r
			found = true
		}
	}
	return best, found
}
