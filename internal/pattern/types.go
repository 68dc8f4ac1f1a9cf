package pattern

import "github.com/roach88/rdfup/internal/term"

// Pattern is a node in a graph pattern tree.
type Pattern interface {
	patternNode() // Sealed
}

// BGP is a basic graph pattern: a conjunction of triple patterns. Any slot
// may hold a Variable. Blank nodes act as variables that are never
// projected.
type BGP struct {
	Triples []term.Triple
}

// Join is the natural join of two patterns on their shared variables.
type Join struct {
	Left, Right Pattern
}

// LeftJoin keeps every Left solution, extended by each compatible Right
// solution for which Expr holds. Expr is nil for a plain OPTIONAL.
type LeftJoin struct {
	Left, Right Pattern
	Expr        Expr
}

// Union is the multiset union of two patterns, Left solutions first.
type Union struct {
	Left, Right Pattern
}

// Minus removes Left solutions that are compatible with some Right solution
// sharing at least one variable.
type Minus struct {
	Left, Right Pattern
}

// Filter keeps the Inner solutions for which Expr evaluates to true.
// Solutions where Expr errors are dropped.
type Filter struct {
	Expr  Expr
	Inner Pattern
}

// Extend binds Var to the value of Expr in each Inner solution. Where Expr
// errors, the solution is kept with Var unbound. Var must not already be in
// scope of Inner.
type Extend struct {
	Inner Pattern
	Var   term.Variable
	Expr  Expr
}

// Graph evaluates Inner against a named context. Name is an IRI, or a
// Variable ranging over the dataset's named contexts.
type Graph struct {
	Name  term.Term
	Inner Pattern
}

// Values is an inline table of solutions. A nil cell leaves that variable
// unbound in the row.
type Values struct {
	Vars []term.Variable
	Rows [][]term.Term
}

// Empty is the empty group pattern: one solution that binds nothing.
type Empty struct{}

func (*BGP) patternNode()      {}
func (*Join) patternNode()     {}
func (*LeftJoin) patternNode() {}
func (*Union) patternNode()    {}
func (*Minus) patternNode()    {}
func (*Filter) patternNode()   {}
func (*Extend) patternNode()   {}
func (*Graph) patternNode()    {}
func (*Values) patternNode()   {}
func (*Empty) patternNode()    {}

// NewBGP builds a BGP from triple patterns.
func NewBGP(triples ...term.Triple) *BGP {
	return &BGP{Triples: triples}
}

// Group joins patterns left to right. An empty group is Empty; a single
// pattern is returned as is.
func Group(patterns ...Pattern) Pattern {
	if len(patterns) == 0 {
		return &Empty{}
	}
	acc := patterns[0]
	for _, p := range patterns[1:] {
		acc = &Join{Left: acc, Right: p}
	}
	return acc
}
