package eval

import (
	"math"
	"math/big"
	"strings"

	"github.com/roach88/rdfup/internal/pattern"
	"github.com/roach88/rdfup/internal/term"
)

// promote lifts two numerics to their common kind: integer, then decimal,
// then double.
func promote(a, b term.Numeric) (term.Numeric, term.Numeric, term.NumericKind) {
	kind := max(a.Kind, b.Kind)
	if kind == term.NumericDouble {
		a = term.Numeric{Kind: term.NumericDouble, Float: a.Float64()}
		b = term.Numeric{Kind: term.NumericDouble, Float: b.Float64()}
	}
	return a, b, kind
}

func arithmetic(fn pattern.Func, x, y term.Term) (term.Term, error) {
	a, ok := numeric(x)
	if !ok {
		return nil, typeErr(fn, "left operand %s is not numeric", x)
	}
	b, ok := numeric(y)
	if !ok {
		return nil, typeErr(fn, "right operand %s is not numeric", y)
	}
	a, b, kind := promote(a, b)

	if kind == term.NumericDouble {
		var f float64
		switch fn {
		case pattern.FuncAdd:
			f = a.Float + b.Float
		case pattern.FuncSub:
			f = a.Float - b.Float
		case pattern.FuncMul:
			f = a.Float * b.Float
		case pattern.FuncDiv:
			f = a.Float / b.Float
		}
		return term.NewDouble(f), nil
	}

	r := new(big.Rat)
	switch fn {
	case pattern.FuncAdd:
		r.Add(a.Rat, b.Rat)
	case pattern.FuncSub:
		r.Sub(a.Rat, b.Rat)
	case pattern.FuncMul:
		r.Mul(a.Rat, b.Rat)
	case pattern.FuncDiv:
		if b.Rat.Sign() == 0 {
			return nil, typeErr(fn, "division by zero")
		}
		r.Quo(a.Rat, b.Rat)
		// Integer division yields decimal.
		kind = term.NumericDecimal
	}
	return term.Numeric{Kind: kind, Rat: r}.Literal(), nil
}

// compare applies a comparison operator. Numerics compare by value across
// types, strings and booleans by value within their type. Otherwise only
// = and != apply, as term identity.
func compare(fn pattern.Func, x, y term.Term) (bool, error) {
	c, ok, err := order(x, y)
	if err != nil {
		return false, err
	}
	if !ok {
		switch fn {
		case pattern.FuncEq:
			return term.Key(x) == term.Key(y), nil
		case pattern.FuncNe:
			return term.Key(x) != term.Key(y), nil
		}
		return false, typeErr(fn, "cannot order %s and %s", x, y)
	}
	if c == unordered {
		return fn == pattern.FuncNe, nil
	}
	switch fn {
	case pattern.FuncEq:
		return c == 0, nil
	case pattern.FuncNe:
		return c != 0, nil
	case pattern.FuncLt:
		return c < 0, nil
	case pattern.FuncLe:
		return c <= 0, nil
	case pattern.FuncGt:
		return c > 0, nil
	default:
		return c >= 0, nil
	}
}

// unordered is returned by order when a NaN is involved.
const unordered = 2

// order returns the value ordering of x and y; ok is false when the terms
// have no value ordering and must be compared as terms.
func order(x, y term.Term) (c int, ok bool, err error) {
	lx, okx := x.(term.Literal)
	ly, oky := y.(term.Literal)
	if !okx || !oky {
		return 0, false, nil
	}

	if a, okA := lx.Numeric(); okA {
		b, okB := ly.Numeric()
		if !okB {
			return 0, false, nil
		}
		a, b, kind := promote(a, b)
		if kind == term.NumericDouble {
			switch {
			case math.IsNaN(a.Float) || math.IsNaN(b.Float):
				return unordered, true, nil
			case a.Float < b.Float:
				return -1, true, nil
			case a.Float > b.Float:
				return 1, true, nil
			}
			return 0, true, nil
		}
		return a.Rat.Cmp(b.Rat), true, nil
	}

	switch {
	case lx.Lang == "" && ly.Lang == "" && isStringLiteral(lx) && isStringLiteral(ly):
		return strings.Compare(lx.Lexical, ly.Lexical), true, nil
	case lx.Datatype == term.XSDBoolean && ly.Datatype == term.XSDBoolean:
		bx, err := ebv(lx)
		if err != nil {
			return 0, false, err
		}
		by, err := ebv(ly)
		if err != nil {
			return 0, false, err
		}
		switch {
		case bx == by:
			return 0, true, nil
		case !bx:
			return -1, true, nil
		}
		return 1, true, nil
	}
	return 0, false, nil
}
