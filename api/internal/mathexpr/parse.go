package mathexpr

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// Parsing is deliberately narrow: polynomial/rational arithmetic over
// single-letter variables with decimal literals, `+ - * / ^`, unary signs and
// parentheses. Implicit multiplication is recognized only for a numeric
// coefficient before a variable (2x, 5x^2); general juxtaposition such as
// (x-2)(x-3) is ambiguous in handwriting and stays a parse error, which
// callers treat as "no equivalence decidable".

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokVar
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	op   byte
	name string
	val  *big.Rat
}

// canonGlyphs rewrites common notation variants before tokenizing.
func canonGlyphs(s string) string {
	r := strings.NewReplacer(
		"×", "*",
		"·", "*",
		"÷", "/",
		"−", "-",
		"–", "-",
		"**", "^",
		"==", "=",
	)
	return r.Replace(s)
}

func tokenize(s string) ([]token, error) {
	var toks []token
	rs := []rune(s)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r >= '0' && r <= '9' || r == '.':
			j := i
			seenDot := false
			for j < len(rs) && (rs[j] >= '0' && rs[j] <= '9' || rs[j] == '.' && !seenDot) {
				if rs[j] == '.' {
					seenDot = true
				}
				j++
			}
			lit := string(rs[i:j])
			if lit == "." {
				return nil, fmt.Errorf("bare '.' at %d", i)
			}
			if strings.HasPrefix(lit, ".") {
				lit = "0" + lit
			}
			if strings.HasSuffix(lit, ".") {
				lit += "0"
			}
			v, ok := new(big.Rat).SetString(lit)
			if !ok {
				return nil, fmt.Errorf("bad number %q", lit)
			}
			toks = append(toks, token{kind: tokNumber, val: v})
			i = j
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			// Single-letter variables; adjacent letters multiply (xy = x*y).
			toks = append(toks, token{kind: tokVar, name: string(unicode.ToLower(r))})
			i++
		case r == '+' || r == '-' || r == '*' || r == '/' || r == '^':
			toks = append(toks, token{kind: tokOp, op: byte(r)})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen})
			i++
		default:
			return nil, fmt.Errorf("unsupported symbol %q", string(r))
		}
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	return insertCoefficientMul(toks), nil
}

// insertCoefficientMul turns "2x" into "2*x" so handwritten coefficient
// juxtaposition parses.
func insertCoefficientMul(toks []token) []token {
	out := make([]token, 0, len(toks))
	for i, t := range toks {
		if i > 0 && toks[i-1].kind == tokNumber && t.kind == tokVar {
			out = append(out, token{kind: tokOp, op: '*'})
		}
		out = append(out, t)
	}
	return out
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

// parseExpr evaluates a text expression straight into rational normal form.
func parseExpr(text string) (rational, error) {
	toks, err := tokenize(canonGlyphs(text))
	if err != nil {
		return rational{}, err
	}
	p := &parser{toks: toks}
	v, err := p.sum()
	if err != nil {
		return rational{}, err
	}
	if p.pos != len(p.toks) {
		return rational{}, fmt.Errorf("trailing input at token %d", p.pos)
	}
	return v, nil
}

func (p *parser) sum() (rational, error) {
	v, err := p.product()
	if err != nil {
		return rational{}, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOp || t.op != '+' && t.op != '-' {
			return v, nil
		}
		p.next()
		rhs, err := p.product()
		if err != nil {
			return rational{}, err
		}
		if t.op == '+' {
			v = ratAdd(v, rhs)
		} else {
			v = ratSub(v, rhs)
		}
	}
}

func (p *parser) product() (rational, error) {
	v, err := p.unary()
	if err != nil {
		return rational{}, err
	}
	for {
		t, ok := p.peek()
		if !ok {
			return v, nil
		}
		switch {
		case t.kind == tokOp && (t.op == '*' || t.op == '/'):
			p.next()
			rhs, err := p.unary()
			if err != nil {
				return rational{}, err
			}
			if t.op == '*' {
				v = ratMul(v, rhs)
			} else {
				v, err = ratDiv(v, rhs)
				if err != nil {
					return rational{}, err
				}
			}
		default:
			return v, nil
		}
	}
}

func (p *parser) unary() (rational, error) {
	if t, ok := p.peek(); ok && t.kind == tokOp && (t.op == '+' || t.op == '-') {
		p.next()
		v, err := p.unary()
		if err != nil {
			return rational{}, err
		}
		if t.op == '-' {
			v = ratScaleNeg(v)
		}
		return v, nil
	}
	return p.power()
}

func (p *parser) power() (rational, error) {
	base, err := p.atom()
	if err != nil {
		return rational{}, err
	}
	t, ok := p.peek()
	if !ok || t.kind != tokOp || t.op != '^' {
		return base, nil
	}
	p.next()
	// Right-associative; the exponent must reduce to an integer constant.
	exp, err := p.unary()
	if err != nil {
		return rational{}, err
	}
	if !exp.isConst() {
		return rational{}, fmt.Errorf("non-constant exponent")
	}
	ev := exp.constVal()
	if !ev.IsInt() {
		return rational{}, fmt.Errorf("non-integer exponent %s", ev.RatString())
	}
	n := ev.Num()
	if !n.IsInt64() {
		return rational{}, fmt.Errorf("exponent out of range")
	}
	return ratPow(base, int(n.Int64()))
}

func (p *parser) atom() (rational, error) {
	t, ok := p.peek()
	if !ok {
		return rational{}, fmt.Errorf("unexpected end of expression")
	}
	switch t.kind {
	case tokNumber:
		p.next()
		return ratConst(t.val), nil
	case tokVar:
		p.next()
		return ratVar(t.name), nil
	case tokLParen:
		p.next()
		v, err := p.sum()
		if err != nil {
			return rational{}, err
		}
		nt, ok := p.peek()
		if !ok || nt.kind != tokRParen {
			return rational{}, fmt.Errorf("missing ')'")
		}
		p.next()
		return v, nil
	default:
		return rational{}, fmt.Errorf("unexpected token at %d", p.pos)
	}
}
