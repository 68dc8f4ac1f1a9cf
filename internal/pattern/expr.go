package pattern

import (
	"strings"

	"github.com/roach88/rdfup/internal/term"
)

// Expr is a node in an expression tree.
type Expr interface {
	exprNode() // Sealed
}

// VarExpr evaluates to the term bound to Var.
type VarExpr struct {
	Var term.Variable
}

// ConstExpr evaluates to Value.
type ConstExpr struct {
	Value term.Term
}

// CallExpr applies a built-in function or operator.
type CallExpr struct {
	Func Func
	Args []Expr
}

func (*VarExpr) exprNode()   {}
func (*ConstExpr) exprNode() {}
func (*CallExpr) exprNode()  {}

// V returns a variable reference.
func V(name string) *VarExpr { return &VarExpr{Var: term.Variable(name)} }

// C returns a constant.
func C(t term.Term) *ConstExpr { return &ConstExpr{Value: t} }

// Call returns a function application.
func Call(f Func, args ...Expr) *CallExpr { return &CallExpr{Func: f, Args: args} }

// Func names a built-in function or operator.
type Func string

const (
	FuncAdd       Func = "+"
	FuncSub       Func = "-"
	FuncMul       Func = "*"
	FuncDiv       Func = "/"
	FuncNeg       Func = "neg"
	FuncEq        Func = "="
	FuncNe        Func = "!="
	FuncLt        Func = "<"
	FuncLe        Func = "<="
	FuncGt        Func = ">"
	FuncGe        Func = ">="
	FuncAnd       Func = "&&"
	FuncOr        Func = "||"
	FuncNot       Func = "!"
	FuncBound     Func = "bound"
	FuncCoalesce  Func = "coalesce"
	FuncIf        Func = "if"
	FuncSameTerm  Func = "sameterm"
	FuncStr       Func = "str"
	FuncLang      Func = "lang"
	FuncDatatype  Func = "datatype"
	FuncConcat    Func = "concat"
	FuncStrlen    Func = "strlen"
	FuncUcase     Func = "ucase"
	FuncLcase     Func = "lcase"
	FuncIsIRI     Func = "isiri"
	FuncIsBlank   Func = "isblank"
	FuncIsLiteral Func = "isliteral"
	FuncIsNumeric Func = "isnumeric"
)

// arity bounds; max < 0 means variadic.
type arity struct{ min, max int }

var funcArity = map[Func]arity{
	FuncAdd: {2, 2}, FuncSub: {2, 2}, FuncMul: {2, 2}, FuncDiv: {2, 2},
	FuncNeg: {1, 1},
	FuncEq:  {2, 2}, FuncNe: {2, 2}, FuncLt: {2, 2}, FuncLe: {2, 2}, FuncGt: {2, 2}, FuncGe: {2, 2},
	FuncAnd: {2, 2}, FuncOr: {2, 2}, FuncNot: {1, 1},
	FuncBound:    {1, 1},
	FuncCoalesce: {1, -1},
	FuncIf:       {3, 3},
	FuncSameTerm: {2, 2},
	FuncStr:      {1, 1}, FuncLang: {1, 1}, FuncDatatype: {1, 1},
	FuncConcat: {0, -1},
	FuncStrlen: {1, 1}, FuncUcase: {1, 1}, FuncLcase: {1, 1},
	FuncIsIRI: {1, 1}, FuncIsBlank: {1, 1}, FuncIsLiteral: {1, 1}, FuncIsNumeric: {1, 1},
}

var funcAliases = map[string]Func{
	"isuri": FuncIsIRI,
}

// LookupFunc resolves a function name case-insensitively.
func LookupFunc(name string) (Func, bool) {
	n := strings.ToLower(name)
	if f, ok := funcAliases[n]; ok {
		return f, true
	}
	if _, ok := funcArity[Func(n)]; ok {
		return Func(n), true
	}
	return "", false
}
