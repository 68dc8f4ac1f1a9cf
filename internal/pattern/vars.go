package pattern

import (
	"slices"

	"github.com/roach88/rdfup/internal/term"
)

// Vars returns the variables in scope of p, sorted. Blank nodes in BGPs are
// not variables for this purpose.
func Vars(p Pattern) []term.Variable {
	set := map[term.Variable]bool{}
	collectVars(p, set)
	out := make([]term.Variable, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func collectVars(p Pattern, set map[term.Variable]bool) {
	switch p := p.(type) {
	case *BGP:
		for _, tr := range p.Triples {
			for _, v := range tr.Vars() {
				set[v] = true
			}
		}
	case *Join:
		collectVars(p.Left, set)
		collectVars(p.Right, set)
	case *LeftJoin:
		collectVars(p.Left, set)
		collectVars(p.Right, set)
	case *Union:
		collectVars(p.Left, set)
		collectVars(p.Right, set)
	case *Minus:
		collectVars(p.Left, set)
	case *Filter:
		collectVars(p.Inner, set)
	case *Extend:
		collectVars(p.Inner, set)
		set[p.Var] = true
	case *Graph:
		if v, ok := p.Name.(term.Variable); ok {
			set[v] = true
		}
		collectVars(p.Inner, set)
	case *Values:
		for _, v := range p.Vars {
			set[v] = true
		}
	}
}

// ExprVars returns the variables referenced by e, sorted.
func ExprVars(e Expr) []term.Variable {
	set := map[term.Variable]bool{}
	var walk func(Expr)
	walk = func(e Expr) {
		switch e := e.(type) {
		case *VarExpr:
			set[e.Var] = true
		case *CallExpr:
			for _, a := range e.Args {
				walk(a)
			}
		}
	}
	walk(e)
	out := make([]term.Variable, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
