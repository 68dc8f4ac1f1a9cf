package pattern

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/roach88/rdfup/internal/term"
)

// EvaluationError reports a pattern or expression tree the evaluator cannot
// run. Token names the offending node.
type EvaluationError struct {
	Token   string
	Message string
}

func (e *EvaluationError) Error() string {
	if e.Token == "" {
		return "evaluation error: " + e.Message
	}
	return fmt.Sprintf("evaluation error at %s: %s", e.Token, e.Message)
}

// IsEvaluationError reports whether err wraps an *EvaluationError.
func IsEvaluationError(err error) bool {
	var e *EvaluationError
	return errors.As(err, &e)
}

func evalErr(token, format string, args ...any) *EvaluationError {
	return &EvaluationError{Token: token, Message: fmt.Sprintf(format, args...)}
}

// Validate checks that p is a well-formed tree. The first problem found, in
// left-to-right order, is returned.
//
// Validate is a pure function with no side effects.
func Validate(p Pattern) error {
	if err := validatePattern(p); err != nil {
		return err
	}
	return nil
}

// ValidateExpr checks a standalone expression.
func ValidateExpr(e Expr) error {
	if err := validateExpr(e); err != nil {
		return err
	}
	return nil
}

func validatePattern(p Pattern) *EvaluationError {
	switch p := p.(type) {
	case nil:
		return evalErr("", "nil pattern")
	case *BGP:
		if p == nil {
			return evalErr("BGP", "nil pattern")
		}
		for _, tr := range p.Triples {
			if err := validateTriplePattern(tr); err != nil {
				return err
			}
		}
	case *Join:
		return validatePair("Join", p, p.Left, p.Right)
	case *Union:
		return validatePair("Union", p, p.Left, p.Right)
	case *Minus:
		return validatePair("Minus", p, p.Left, p.Right)
	case *LeftJoin:
		if err := validatePair("LeftJoin", p, p.Left, p.Right); err != nil {
			return err
		}
		if p.Expr != nil {
			return validateExpr(p.Expr)
		}
	case *Filter:
		if p == nil {
			return evalErr("Filter", "nil pattern")
		}
		if err := validatePattern(p.Inner); err != nil {
			return err
		}
		return validateExpr(p.Expr)
	case *Extend:
		if p == nil {
			return evalErr("Extend", "nil pattern")
		}
		if err := validatePattern(p.Inner); err != nil {
			return err
		}
		if !validVar(p.Var) {
			return evalErr(string(p.Var), "BIND target is not a variable")
		}
		for _, v := range Vars(p.Inner) {
			if v == p.Var {
				return evalErr(p.Var.String(), "BIND target is already in scope")
			}
		}
		return validateExpr(p.Expr)
	case *Graph:
		if p == nil {
			return evalErr("Graph", "nil pattern")
		}
		switch n := p.Name.(type) {
		case term.IRI, term.Variable:
		case nil:
			return evalErr("GRAPH", "missing graph name")
		default:
			return evalErr(n.String(), "graph name must be an IRI or a variable")
		}
		return validatePattern(p.Inner)
	case *Values:
		if p == nil {
			return evalErr("Values", "nil pattern")
		}
		seen := make(map[term.Variable]bool, len(p.Vars))
		for _, v := range p.Vars {
			if !validVar(v) {
				return evalErr(string(v), "VALUES header is not a variable")
			}
			if seen[v] {
				return evalErr(v.String(), "duplicate VALUES variable")
			}
			seen[v] = true
		}
		for i, row := range p.Rows {
			if len(row) != len(p.Vars) {
				return evalErr(fmt.Sprintf("VALUES row %d", i), "row has %d cells, want %d", len(row), len(p.Vars))
			}
			for _, cell := range row {
				if cell != nil && !term.IsGround(cell) {
					return evalErr(cell.String(), "VALUES cell must be ground")
				}
			}
		}
	case *Empty:
	default:
		return evalErr(fmt.Sprintf("%T", p), "unknown pattern node")
	}
	return nil
}

func validatePair(name string, node Pattern, left, right Pattern) *EvaluationError {
	if node == nil || isNilPointer(node) {
		return evalErr(name, "nil pattern")
	}
	if err := validatePattern(left); err != nil {
		return err
	}
	return validatePattern(right)
}

func isNilPointer(p Pattern) bool {
	switch p := p.(type) {
	case *Join:
		return p == nil
	case *Union:
		return p == nil
	case *Minus:
		return p == nil
	case *LeftJoin:
		return p == nil
	}
	return false
}

func validateTriplePattern(tr term.Triple) *EvaluationError {
	if tr.S == nil || tr.P == nil || tr.O == nil {
		return evalErr(tr.String(), "triple pattern has an empty slot")
	}
	if _, ok := tr.S.(term.Literal); ok {
		return evalErr(tr.S.String(), "literal in subject position")
	}
	switch tr.P.(type) {
	case term.Literal:
		return evalErr(tr.P.String(), "literal in predicate position")
	case term.BlankNode:
		return evalErr(tr.P.String(), "blank node in predicate position")
	}
	for _, slot := range []term.Term{tr.S, tr.P, tr.O} {
		if v, ok := slot.(term.Variable); ok && !validVar(v) {
			return evalErr(string(v), "malformed variable")
		}
	}
	return nil
}

func validateExpr(e Expr) *EvaluationError {
	switch e := e.(type) {
	case nil:
		return evalErr("", "nil expression")
	case *VarExpr:
		if e == nil || !validVar(e.Var) {
			return evalErr("?", "malformed variable reference")
		}
	case *ConstExpr:
		if e == nil || e.Value == nil {
			return evalErr("", "empty constant")
		}
		if !term.IsGround(e.Value) {
			return evalErr(e.Value.String(), "constant must be ground")
		}
	case *CallExpr:
		if e == nil {
			return evalErr("", "nil expression")
		}
		a, ok := funcArity[e.Func]
		if !ok {
			return evalErr(string(e.Func), "unknown function")
		}
		if len(e.Args) < a.min || (a.max >= 0 && len(e.Args) > a.max) {
			return evalErr(string(e.Func), "wrong number of arguments: %d", len(e.Args))
		}
		if e.Func == FuncBound {
			if _, ok := e.Args[0].(*VarExpr); !ok {
				return evalErr(string(e.Func), "argument must be a variable")
			}
		}
		for _, arg := range e.Args {
			if err := validateExpr(arg); err != nil {
				return err
			}
		}
	default:
		return evalErr(fmt.Sprintf("%T", e), "unknown expression node")
	}
	return nil
}

// validVar accepts SPARQL-style variable names: letters, digits and
// underscore.
func validVar(v term.Variable) bool {
	if v == "" {
		return false
	}
	for _, r := range string(v) {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
