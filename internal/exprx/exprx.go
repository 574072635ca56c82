// Package exprx declares the minimal interface through which the
// geometry resolution pipeline consumes C1, the Fortran-style scalar
// expression oracle (spec.md §1, §6). The oracle itself — full
// Fortran-expression parsing — is an external collaborator and out of
// scope; this package only defines the contract the card parsers (C5,
// C7) depend on, plus a small literal-only fallback used by tests and
// by decks that never reference `{expr}` parameters.
package exprx

import (
	"strconv"
	"strings"

	"github.com/cpmech/mcgeom/internal/geomerr"
)

// Oracle evaluates a scalar arithmetic expression string to a float64.
// A real implementation understands Fortran-like syntax (functions,
// operator precedence); this interface is all the geometry pipeline
// requires of it.
type Oracle interface {
	Eval(expr string) (float64, error)
}

// LiteralOracle evaluates only bare numeric literals (optionally
// wrapped in `{...}`), returning NumericDomain for anything else. It
// lets the card parsers be exercised and tested without wiring a full
// Fortran evaluator.
type LiteralOracle struct{}

func (LiteralOracle) Eval(expr string) (float64, error) {
	s := strings.TrimSpace(expr)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, geomerr.New(geomerr.NumericDomain, "cannot evaluate expression %q: %v", expr, err)
	}
	return v, nil
}
