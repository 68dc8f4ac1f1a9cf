package eval

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/rdfup/internal/pattern"
	"github.com/roach88/rdfup/internal/term"
)

// errUnbound is returned for a reference to a variable the row leaves
// unbound.
var errUnbound = errors.New("unbound variable")

// typeError is an expression applied to operands of the wrong kind.
type typeError struct {
	fn  pattern.Func
	msg string
}

func (e *typeError) Error() string { return fmt.Sprintf("%s: %s", e.fn, e.msg) }

func typeErr(fn pattern.Func, format string, args ...any) error {
	return &typeError{fn: fn, msg: fmt.Sprintf(format, args...)}
}

var (
	trueLit  = term.NewBoolean(true)
	falseLit = term.NewBoolean(false)
)

func boolLit(b bool) term.Literal {
	if b {
		return trueLit
	}
	return falseLit
}

// EvalExpr evaluates e against row. It is exported for the update package,
// which evaluates template-level expressions with the same rules.
func EvalExpr(e pattern.Expr, row term.Binding) (term.Term, error) {
	return evalExpr(e, row)
}

func evalExpr(e pattern.Expr, row term.Binding) (term.Term, error) {
	switch e := e.(type) {
	case *pattern.VarExpr:
		t, ok := row.Get(e.Var)
		if !ok {
			return nil, fmt.Errorf("%w %s", errUnbound, e.Var)
		}
		return t, nil
	case *pattern.ConstExpr:
		return term.Canonical(e.Value), nil
	case *pattern.CallExpr:
		return call(e, row)
	}
	return nil, fmt.Errorf("unknown expression node %T", e)
}

func call(e *pattern.CallExpr, row term.Binding) (term.Term, error) {
	// Functions that control evaluation of their own arguments.
	switch e.Func {
	case pattern.FuncAnd:
		return logicalAnd(e.Args[0], e.Args[1], row)
	case pattern.FuncOr:
		return logicalOr(e.Args[0], e.Args[1], row)
	case pattern.FuncBound:
		v, ok := e.Args[0].(*pattern.VarExpr)
		if !ok {
			return nil, typeErr(e.Func, "argument must be a variable")
		}
		_, bound := row.Get(v.Var)
		return boolLit(bound), nil
	case pattern.FuncCoalesce:
		for _, arg := range e.Args {
			if t, err := evalExpr(arg, row); err == nil {
				return t, nil
			}
		}
		return nil, typeErr(e.Func, "no argument evaluated without error")
	case pattern.FuncIf:
		cond, err := effectiveBool(e.Args[0], row)
		if err != nil {
			return nil, err
		}
		if cond {
			return evalExpr(e.Args[1], row)
		}
		return evalExpr(e.Args[2], row)
	}

	args := make([]term.Term, len(e.Args))
	for i, a := range e.Args {
		t, err := evalExpr(a, row)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}

	switch e.Func {
	case pattern.FuncAdd, pattern.FuncSub, pattern.FuncMul, pattern.FuncDiv:
		return arithmetic(e.Func, args[0], args[1])
	case pattern.FuncNeg:
		n, ok := numeric(args[0])
		if !ok {
			return nil, typeErr(e.Func, "operand is not numeric")
		}
		if n.Kind == term.NumericDouble {
			n.Float = -n.Float
		} else {
			n.Rat = new(big.Rat).Neg(n.Rat)
		}
		return n.Literal(), nil
	case pattern.FuncEq, pattern.FuncNe, pattern.FuncLt, pattern.FuncLe, pattern.FuncGt, pattern.FuncGe:
		ok, err := compare(e.Func, args[0], args[1])
		if err != nil {
			return nil, err
		}
		return boolLit(ok), nil
	case pattern.FuncNot:
		b, err := ebv(args[0])
		if err != nil {
			return nil, err
		}
		return boolLit(!b), nil
	case pattern.FuncSameTerm:
		return boolLit(term.Key(args[0]) == term.Key(args[1])), nil
	case pattern.FuncStr:
		switch t := args[0].(type) {
		case term.IRI:
			return term.NewLiteral(string(t)), nil
		case term.Literal:
			return term.NewLiteral(t.Lexical), nil
		}
		return nil, typeErr(e.Func, "argument is not an IRI or literal")
	case pattern.FuncLang:
		lit, ok := args[0].(term.Literal)
		if !ok {
			return nil, typeErr(e.Func, "argument is not a literal")
		}
		return term.NewLiteral(lit.Lang), nil
	case pattern.FuncDatatype:
		lit, ok := args[0].(term.Literal)
		if !ok {
			return nil, typeErr(e.Func, "argument is not a literal")
		}
		if lit.Lang != "" {
			return term.RDFLangString, nil
		}
		if lit.Datatype == "" {
			return term.XSDString, nil
		}
		return lit.Datatype, nil
	case pattern.FuncConcat:
		return concat(args)
	case pattern.FuncStrlen:
		lit, err := stringArg(e.Func, args[0])
		if err != nil {
			return nil, err
		}
		return term.NewInteger(int64(utf8.RuneCountInString(lit.Lexical))), nil
	case pattern.FuncUcase, pattern.FuncLcase:
		lit, err := stringArg(e.Func, args[0])
		if err != nil {
			return nil, err
		}
		c := cases.Lower(language.Und)
		if e.Func == pattern.FuncUcase {
			c = cases.Upper(language.Und)
		}
		lit.Lexical = c.String(lit.Lexical)
		return lit, nil
	case pattern.FuncIsIRI:
		_, ok := args[0].(term.IRI)
		return boolLit(ok), nil
	case pattern.FuncIsBlank:
		_, ok := args[0].(term.BlankNode)
		return boolLit(ok), nil
	case pattern.FuncIsLiteral:
		_, ok := args[0].(term.Literal)
		return boolLit(ok), nil
	case pattern.FuncIsNumeric:
		_, ok := numeric(args[0])
		return boolLit(ok), nil
	}
	return nil, typeErr(e.Func, "unknown function")
}

// logicalAnd and logicalOr follow three-valued logic: an error on one side
// is masked when the other side decides the result.
func logicalAnd(a, b pattern.Expr, row term.Binding) (term.Term, error) {
	l, lerr := effectiveBool(a, row)
	r, rerr := effectiveBool(b, row)
	switch {
	case lerr == nil && !l, rerr == nil && !r:
		return falseLit, nil
	case lerr != nil:
		return nil, lerr
	case rerr != nil:
		return nil, rerr
	}
	return trueLit, nil
}

func logicalOr(a, b pattern.Expr, row term.Binding) (term.Term, error) {
	l, lerr := effectiveBool(a, row)
	r, rerr := effectiveBool(b, row)
	switch {
	case lerr == nil && l, rerr == nil && r:
		return trueLit, nil
	case lerr != nil:
		return nil, lerr
	case rerr != nil:
		return nil, rerr
	}
	return falseLit, nil
}

// effectiveBool evaluates e and reduces the result to its effective boolean
// value.
func effectiveBool(e pattern.Expr, row term.Binding) (bool, error) {
	t, err := evalExpr(e, row)
	if err != nil {
		return false, err
	}
	return ebv(t)
}

func ebv(t term.Term) (bool, error) {
	lit, ok := t.(term.Literal)
	if !ok {
		return false, fmt.Errorf("no effective boolean value for %s", t)
	}
	if lit.Datatype == term.XSDBoolean {
		switch strings.TrimSpace(lit.Lexical) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return false, nil
	}
	if n, ok := lit.Numeric(); ok {
		if n.Kind == term.NumericDouble {
			return n.Float != 0 && !math.IsNaN(n.Float), nil
		}
		return n.Rat.Sign() != 0, nil
	}
	if isStringLiteral(lit) {
		return lit.Lexical != "", nil
	}
	return false, fmt.Errorf("no effective boolean value for %s", t)
}

func isStringLiteral(l term.Literal) bool {
	return l.Lang != "" || l.Datatype == term.XSDString || l.Datatype == ""
}

func stringArg(fn pattern.Func, t term.Term) (term.Literal, error) {
	lit, ok := t.(term.Literal)
	if !ok || !isStringLiteral(lit) {
		return term.Literal{}, typeErr(fn, "argument is not a string literal")
	}
	return lit, nil
}

// concat keeps a language tag only when every argument carries the same
// one.
func concat(args []term.Term) (term.Term, error) {
	var sb strings.Builder
	lang := ""
	for i, a := range args {
		lit, err := stringArg(pattern.FuncConcat, a)
		if err != nil {
			return nil, err
		}
		sb.WriteString(lit.Lexical)
		switch {
		case i == 0:
			lang = lit.Lang
		case lit.Lang != lang:
			lang = ""
		}
	}
	if lang != "" && len(args) > 0 {
		return term.NewLangLiteral(sb.String(), lang), nil
	}
	return term.NewLiteral(sb.String()), nil
}

func numeric(t term.Term) (term.Numeric, bool) {
	lit, ok := t.(term.Literal)
	if !ok {
		return term.Numeric{}, false
	}
	return lit.Numeric()
}
