package quadric

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestJacobiEigenDiagonal(t *testing.T) {
	chk.PrintTitle("JacobiEigenDiagonal")
	e := JacobiEigen(Sym3{A11: 3, A22: 1, A33: 2})
	chk.Vector(t, "eigenvalues", 1e-6, e.Values[:], []float64{3, 2, 1})
}

func TestJacobiEigenSphereLikeForm(t *testing.T) {
	chk.PrintTitle("JacobiEigenSphereLikeForm")
	// A3 = diag(1,1,1): every rank-3 direction is an eigenvector with value 1.
	e := JacobiEigen(Sym3{A11: 1, A22: 1, A33: 1})
	chk.Vector(t, "eigenvalues", 1e-6, e.Values[:], []float64{1, 1, 1})
	chk.IntAssert(e.Rank(1e-6), 3)
	pos, neg := e.Signature(1e-6)
	chk.IntAssert(pos, 3)
	chk.IntAssert(neg, 0)
}

func TestJacobiEigenOffDiagonal(t *testing.T) {
	chk.PrintTitle("JacobiEigenOffDiagonal")
	// symmetric matrix with known eigenvalues 0, 2 for 2x2 block [[1,1],[1,1]] padded.
	e := JacobiEigen(Sym3{A11: 1, A22: 1, A33: 0, A12: 1})
	// eigenvalues of [[1,1],[1,1]] are 0 and 2; plus the decoupled 0 from A33.
	count2, count0 := 0, 0
	for _, v := range e.Values {
		if v > 1.999999 && v < 2.000001 {
			count2++
		}
		if v > -1e-6 && v < 1e-6 {
			count0++
		}
	}
	chk.IntAssert(count2, 1)
	chk.IntAssert(count0, 2)
}

func TestSignatureOppositeSign(t *testing.T) {
	chk.PrintTitle("SignatureOppositeSign")
	e := JacobiEigen(Sym3{A11: 1, A22: -1, A33: 0})
	pos, neg := e.Signature(1e-6)
	chk.IntAssert(pos, 1)
	chk.IntAssert(neg, 1)
	chk.IntAssert(e.Rank(1e-6), 2)
}
