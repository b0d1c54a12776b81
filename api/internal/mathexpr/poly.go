package mathexpr

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// poly is a multivariate polynomial in normal form: canonical monomial key
// (e.g. "", "x", "x^2*y") -> nonzero rational coefficient.
type poly map[string]*big.Rat

// mono maps variable name -> positive exponent.
type mono map[string]int

func monoKey(m mono) string {
	if len(m) == 0 {
		return ""
	}
	names := make([]string, 0, len(m))
	for v := range m {
		names = append(names, v)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, v := range names {
		if e := m[v]; e == 1 {
			parts = append(parts, v)
		} else {
			parts = append(parts, fmt.Sprintf("%s^%d", v, e))
		}
	}
	return strings.Join(parts, "*")
}

func parseMonoKey(key string) mono {
	m := mono{}
	if key == "" {
		return m
	}
	for _, part := range strings.Split(key, "*") {
		name := part
		exp := 1
		if i := strings.IndexByte(part, '^'); i >= 0 {
			name = part[:i]
			fmt.Sscanf(part[i+1:], "%d", &exp)
		}
		m[name] += exp
	}
	return m
}

func polyConst(v *big.Rat) poly {
	p := poly{}
	if v.Sign() != 0 {
		p[""] = new(big.Rat).Set(v)
	}
	return p
}

func polyVar(name string) poly {
	return poly{name: big.NewRat(1, 1)}
}

func (p poly) clone() poly {
	q := make(poly, len(p))
	for k, c := range p {
		q[k] = new(big.Rat).Set(c)
	}
	return q
}

func (p poly) isZero() bool { return len(p) == 0 }

// isConst reports whether p has no variable terms; the zero polynomial counts.
func (p poly) isConst() bool {
	for k := range p {
		if k != "" {
			return false
		}
	}
	return true
}

func (p poly) constVal() *big.Rat {
	if c, ok := p[""]; ok {
		return new(big.Rat).Set(c)
	}
	return new(big.Rat)
}

func polyAdd(a, b poly) poly {
	out := a.clone()
	for k, c := range b {
		if cur, ok := out[k]; ok {
			cur.Add(cur, c)
			if cur.Sign() == 0 {
				delete(out, k)
			}
		} else {
			out[k] = new(big.Rat).Set(c)
		}
	}
	return out
}

func polySub(a, b poly) poly {
	return polyAdd(a, polyScale(b, big.NewRat(-1, 1)))
}

func polyScale(p poly, v *big.Rat) poly {
	out := poly{}
	if v.Sign() == 0 {
		return out
	}
	for k, c := range p {
		out[k] = new(big.Rat).Mul(c, v)
	}
	return out
}

func polyMul(a, b poly) poly {
	out := poly{}
	for ka, ca := range a {
		ma := parseMonoKey(ka)
		for kb, cb := range b {
			m := mono{}
			for v, e := range ma {
				m[v] += e
			}
			for v, e := range parseMonoKey(kb) {
				m[v] += e
			}
			k := monoKey(m)
			c := new(big.Rat).Mul(ca, cb)
			if cur, ok := out[k]; ok {
				cur.Add(cur, c)
				if cur.Sign() == 0 {
					delete(out, k)
				}
			} else if c.Sign() != 0 {
				out[k] = c
			}
		}
	}
	return out
}

// maxExponent bounds p^n so adversarial input cannot blow up simplification.
const maxExponent = 64

func polyPow(p poly, n int) (poly, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative exponent on polynomial")
	}
	if n > maxExponent {
		return nil, fmt.Errorf("exponent %d too large", n)
	}
	out := polyConst(big.NewRat(1, 1))
	for i := 0; i < n; i++ {
		out = polyMul(out, p)
	}
	return out, nil
}

func polyEqual(a, b poly) bool {
	if len(a) != len(b) {
		return false
	}
	for k, c := range a {
		d, ok := b[k]
		if !ok || c.Cmp(d) != 0 {
			return false
		}
	}
	return true
}

// rational is a quotient of two polynomials; den is never the zero polynomial.
type rational struct {
	num poly
	den poly
}

func ratConst(v *big.Rat) rational {
	return rational{num: polyConst(v), den: polyConst(big.NewRat(1, 1))}
}

func ratVar(name string) rational {
	return rational{num: polyVar(name), den: polyConst(big.NewRat(1, 1))}
}

func ratAdd(a, b rational) rational {
	return rational{
		num: polyAdd(polyMul(a.num, b.den), polyMul(b.num, a.den)),
		den: polyMul(a.den, b.den),
	}
}

func ratSub(a, b rational) rational {
	return ratAdd(a, ratScaleNeg(b))
}

func ratScaleNeg(a rational) rational {
	return rational{num: polyScale(a.num, big.NewRat(-1, 1)), den: a.den}
}

func ratMul(a, b rational) rational {
	return rational{num: polyMul(a.num, b.num), den: polyMul(a.den, b.den)}
}

func ratDiv(a, b rational) (rational, error) {
	if b.num.isZero() {
		return rational{}, fmt.Errorf("division by zero")
	}
	return rational{num: polyMul(a.num, b.den), den: polyMul(a.den, b.num)}, nil
}

func ratPow(a rational, n int) (rational, error) {
	if n < 0 {
		if a.num.isZero() {
			return rational{}, fmt.Errorf("zero to a negative power")
		}
		a = rational{num: a.den, den: a.num}
		n = -n
	}
	num, err := polyPow(a.num, n)
	if err != nil {
		return rational{}, err
	}
	den, err := polyPow(a.den, n)
	if err != nil {
		return rational{}, err
	}
	return rational{num: num, den: den}, nil
}

// ratEqual compares by cross-multiplication, so no polynomial GCD is needed.
func ratEqual(a, b rational) bool {
	return polyEqual(polyMul(a.num, b.den), polyMul(b.num, a.den))
}

func (a rational) isZero() bool { return a.num.isZero() }

// isConst reports whether a reduces to a plain number.
func (a rational) isConst() bool { return a.num.isConst() && a.den.isConst() }

func (a rational) constVal() *big.Rat {
	n := a.num.constVal()
	d := a.den.constVal()
	if d.Sign() == 0 {
		return new(big.Rat)
	}
	return n.Quo(n, d)
}

// constantRatio finds c such that a == c*b, if such a nonzero constant
// exists. The zero polynomial on either side never yields a ratio.
func constantRatio(a, b rational) (*big.Rat, bool) {
	p := polyMul(a.num, b.den)
	q := polyMul(b.num, a.den)
	if p.isZero() || q.isZero() {
		return nil, false
	}
	var c *big.Rat
	for k, qc := range q {
		pc, ok := p[k]
		if !ok {
			return nil, false
		}
		c = new(big.Rat).Quo(pc, qc)
		break
	}
	if c == nil || c.Sign() == 0 {
		return nil, false
	}
	if !polyEqual(p, polyScale(q, c)) {
		return nil, false
	}
	return c, true
}
