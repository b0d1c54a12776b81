// Package mathexpr decides symbolic equivalence of small algebraic
// expressions and equations. It is not a general CAS: expressions are reduced
// to an exact rational normal form (polynomial numerator/denominator with
// big.Rat coefficients), which covers the polynomial and rational algebra a
// step-by-step school solution contains.
package mathexpr

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// Kind tags how two inputs were found equivalent.
type Kind string

const (
	KindNone   Kind = "none"
	KindEqual  Kind = "symbolic"
	KindScaled Kind = "symbolic-scaled"
)

// DefaultTolerance bounds the numeric residual treated as zero; it only
// matters for comparisons that reduce to a plain number.
const DefaultTolerance = 1e-6

// Equivalent reports whether a and b are symbolically equivalent.
// The score is 1.0 for equivalence, 0.9 for a scaled equation/expression
// (one is a nonzero constant multiple of the other), and 0.0 otherwise.
// Malformed input is never an error: it yields (0, KindNone).
func Equivalent(a, b string, tol float64) (float64, Kind) {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	aEq := strings.Contains(canonGlyphs(a), "=")
	bEq := strings.Contains(canonGlyphs(b), "=")
	if aEq != bEq {
		// An equation and a bare expression do not assert the same thing.
		return 0, KindNone
	}
	if aEq {
		return equationsEquivalent(a, b)
	}
	return expressionsEquivalent(a, b, tol)
}

func expressionsEquivalent(a, b string, tol float64) (float64, Kind) {
	ra, err := parseExpr(a)
	if err != nil {
		return 0, KindNone
	}
	rb, err := parseExpr(b)
	if err != nil {
		return 0, KindNone
	}
	diff := ratSub(ra, rb)
	if diff.isZero() {
		return 1, KindEqual
	}
	if diff.isConst() {
		// Floating round-off from decimal literals ends up here.
		v, _ := diff.constVal().Float64()
		if math.Abs(v) < tol {
			return 1, KindEqual
		}
	}
	if c, ok := constantRatio(ra, rb); ok && !isOne(c) {
		return 0.9, KindScaled
	}
	return 0, KindNone
}

func equationsEquivalent(a, b string) (float64, Kind) {
	l1, r1, err := parseEquation(a)
	if err != nil {
		return 0, KindNone
	}
	l2, r2, err := parseEquation(b)
	if err != nil {
		return 0, KindNone
	}
	d1 := ratSub(l1, r1)
	d2 := ratSub(l2, r2)
	// Same zero-set in normal form.
	if ratEqual(d1, d2) {
		return 1, KindEqual
	}
	// Sides written the other way around.
	if ratEqual(l1, r2) && ratEqual(r1, l2) {
		return 1, KindEqual
	}
	// One equation is a nonzero constant multiple of the other. A ratio of
	// exactly 1 never reaches here, ratEqual above already matched it.
	if c, ok := constantRatio(d1, d2); ok && !isOne(c) {
		return 0.9, KindScaled
	}
	return 0, KindNone
}

// parseEquation splits at the single top-level '=' and parses both sides.
func parseEquation(s string) (lhs, rhs rational, err error) {
	s = canonGlyphs(s)
	i := strings.IndexByte(s, '=')
	left, right := s[:i], s[i+1:]
	if strings.Contains(right, "=") {
		return rational{}, rational{}, fmt.Errorf("more than one '=' in equation")
	}
	if lhs, err = parseExpr(left); err != nil {
		return rational{}, rational{}, err
	}
	if rhs, err = parseExpr(right); err != nil {
		return rational{}, rational{}, err
	}
	return lhs, rhs, nil
}

func isOne(c *big.Rat) bool {
	return c.Cmp(big.NewRat(1, 1)) == 0
}
