package term

import (
	"fmt"
	"strings"
)

// Kind identifies the concrete variant of a Term.
type Kind uint8

const (
	KindIRI Kind = iota + 1
	KindBlankNode
	KindLiteral
	KindVariable
)

func (k Kind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlankNode:
		return "blank"
	case KindLiteral:
		return "literal"
	case KindVariable:
		return "variable"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Term is a sealed interface over the four RDF term kinds.
// Only IRI, BlankNode, Literal and Variable implement it.
//
// String returns the N-Triples rendering, which is also the term's key:
// two canonical terms are equal exactly when their String forms are equal.
type Term interface {
	Kind() Kind
	String() string
	termNode() // Sealed
}

// IRI is an absolute IRI reference.
type IRI string

func (IRI) termNode() {}

// Kind implements Term.
func (IRI) Kind() Kind { return KindIRI }

// String renders the IRI in angle brackets.
func (i IRI) String() string {
	return "<" + iriEscaper.Replace(string(i)) + ">"
}

// BlankNode is a process-local anonymous node, identified by its label
// (without the "_:" prefix).
type BlankNode string

func (BlankNode) termNode() {}

// Kind implements Term.
func (BlankNode) Kind() Kind { return KindBlankNode }

func (b BlankNode) String() string { return "_:" + string(b) }

// Variable names a pattern or template slot. The name excludes the leading '?'.
// Variables never appear in stored quads or in bindings.
type Variable string

func (Variable) termNode() {}

// Kind implements Term.
func (Variable) Kind() Kind { return KindVariable }

func (v Variable) String() string { return "?" + string(v) }

// IsVariable reports whether t is a Variable.
func IsVariable(t Term) bool {
	_, ok := t.(Variable)
	return ok
}

// IsGround reports whether t can appear in a stored quad.
func IsGround(t Term) bool {
	return t != nil && !IsVariable(t)
}

// Canonical returns t with literal normalization applied. Terms other than
// Literal are already canonical.
func Canonical(t Term) Term {
	if lit, ok := t.(Literal); ok {
		return lit.normalize()
	}
	return t
}

// Key returns a string usable as a map key for t. Nil maps to the empty key.
func Key(t Term) string {
	if t == nil {
		return ""
	}
	return Canonical(t).String()
}

// Compare orders terms for deterministic output: blank nodes, then IRIs,
// then literals, then variables, each group ordered by key.
func Compare(a, b Term) int {
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	return strings.Compare(Key(a), Key(b))
}

func kindRank(t Term) int {
	if t == nil {
		return 0
	}
	switch t.Kind() {
	case KindBlankNode:
		return 1
	case KindIRI:
		return 2
	case KindLiteral:
		return 3
	default:
		return 4
	}
}

var iriEscaper = strings.NewReplacer(
	">", `\u003E`,
	"<", `\u003C`,
	`"`, `\u0022`,
	" ", `\u0020`,
	`\`, `\u005C`,
)
