package update

import (
	"fmt"
	"strings"

	"github.com/roach88/rdfup/internal/pattern"
	"github.com/roach88/rdfup/internal/term"
)

// OpKind names an operation type in logs, metrics and the journal.
type OpKind string

const (
	OpLoad       OpKind = "load"
	OpModify     OpKind = "modify"
	OpInsertData OpKind = "insertData"
	OpDeleteData OpKind = "deleteData"
	OpClear      OpKind = "clear"
	OpCreate     OpKind = "create"
	OpDrop       OpKind = "drop"
	OpAdd        OpKind = "add"
	OpCopy       OpKind = "copy"
	OpMove       OpKind = "move"
)

// Operation is one step of a Request.
type Operation interface {
	Kind() OpKind
	opNode() // Sealed
}

// Request is an ordered list of operations. Base resolves relative LOAD
// sources.
type Request struct {
	Base       string
	Operations []Operation
}

// Load fetches Source and merges it into the store, into Into when set.
type Load struct {
	Source string
	Into   *term.IRI
	Silent bool
}

// QuadTemplate is a triple pattern plus a graph slot. Graph is nil for the
// operation's default graph (the WITH graph, if any), otherwise an IRI or a
// Variable.
type QuadTemplate struct {
	Triple term.Triple
	Graph  term.Term
}

// Modify is DELETE/INSERT ... WHERE. Either template list may be empty.
type Modify struct {
	With       *term.IRI
	Delete     []QuadTemplate
	Insert     []QuadTemplate
	Where      pattern.Pattern
	Using      []term.IRI
	UsingNamed []term.IRI
}

// InsertData adds ground quads. Blank nodes are fresh per operation.
type InsertData struct {
	Quads []term.Quad
}

// DeleteData removes ground quads. Blank nodes are not allowed.
type DeleteData struct {
	Quads []term.Quad
}

// TargetScope selects the graphs a CLEAR or DROP applies to.
type TargetScope uint8

const (
	TargetDefault TargetScope = iota + 1
	TargetNamed
	TargetAllNamed
	TargetAll
)

// GraphTarget is the target of CLEAR and DROP. Graph is set for
// TargetNamed only.
type GraphTarget struct {
	Scope TargetScope
	Graph term.IRI
}

// DefaultTarget targets the default graph.
func DefaultTarget() GraphTarget { return GraphTarget{Scope: TargetDefault} }

// NamedTarget targets one named graph.
func NamedTarget(g term.IRI) GraphTarget { return GraphTarget{Scope: TargetNamed, Graph: g} }

// AllNamedTarget targets every named graph.
func AllNamedTarget() GraphTarget { return GraphTarget{Scope: TargetAllNamed} }

// AllTarget targets the default graph and every named graph.
func AllTarget() GraphTarget { return GraphTarget{Scope: TargetAll} }

func (t GraphTarget) String() string {
	switch t.Scope {
	case TargetDefault:
		return "DEFAULT"
	case TargetNamed:
		return "GRAPH " + t.Graph.String()
	case TargetAllNamed:
		return "NAMED"
	case TargetAll:
		return "ALL"
	}
	return fmt.Sprintf("target(%d)", t.Scope)
}

// GraphRef names the default graph (zero Graph) or a named graph.
type GraphRef struct {
	Graph term.IRI
}

// DefaultGraph refers to the default graph.
func DefaultGraph() GraphRef { return GraphRef{} }

// NamedGraph refers to a named graph.
func NamedGraph(g term.IRI) GraphRef { return GraphRef{Graph: g} }

// Context returns the store context the reference names.
func (r GraphRef) Context() term.Context {
	if r.Graph == "" {
		return term.DefaultContext
	}
	return term.NamedContext(r.Graph)
}

func (r GraphRef) String() string {
	if r.Graph == "" {
		return "DEFAULT"
	}
	return "GRAPH " + r.Graph.String()
}

// Clear removes every triple from the target graphs. Named graphs keep
// existing.
type Clear struct {
	Target GraphTarget
	Silent bool
}

// Create creates an empty named graph.
type Create struct {
	Graph  term.IRI
	Silent bool
}

// Drop removes the target graphs. Dropping the default graph clears it.
type Drop struct {
	Target GraphTarget
	Silent bool
}

// Add inserts every triple of From into To.
type Add struct {
	From, To GraphRef
	Silent   bool
}

// Copy replaces the content of To with the content of From.
type Copy struct {
	From, To GraphRef
	Silent   bool
}

// Move copies From to To, then drops From.
type Move struct {
	From, To GraphRef
	Silent   bool
}

func (Load) Kind() OpKind       { return OpLoad }
func (Modify) Kind() OpKind     { return OpModify }
func (InsertData) Kind() OpKind { return OpInsertData }
func (DeleteData) Kind() OpKind { return OpDeleteData }
func (Clear) Kind() OpKind      { return OpClear }
func (Create) Kind() OpKind     { return OpCreate }
func (Drop) Kind() OpKind       { return OpDrop }
func (Add) Kind() OpKind        { return OpAdd }
func (Copy) Kind() OpKind       { return OpCopy }
func (Move) Kind() OpKind       { return OpMove }

func (Load) opNode()       {}
func (Modify) opNode()     {}
func (InsertData) opNode() {}
func (DeleteData) opNode() {}
func (Clear) opNode()      {}
func (Create) opNode()     {}
func (Drop) opNode()       {}
func (Add) opNode()        {}
func (Copy) opNode()       {}
func (Move) opNode()       {}

// Describe renders op as a one-line summary for logs and the journal.
func Describe(op Operation) string {
	silent := func(s bool) string {
		if s {
			return " SILENT"
		}
		return ""
	}
	switch op := op.(type) {
	case Load:
		s := "LOAD" + silent(op.Silent) + " <" + op.Source + ">"
		if op.Into != nil {
			s += " INTO GRAPH " + op.Into.String()
		}
		return s
	case Modify:
		var parts []string
		if op.With != nil {
			parts = append(parts, "WITH "+op.With.String())
		}
		if len(op.Delete) > 0 {
			parts = append(parts, fmt.Sprintf("DELETE %s", describeTemplates(op.Delete)))
		}
		if len(op.Insert) > 0 {
			parts = append(parts, fmt.Sprintf("INSERT %s", describeTemplates(op.Insert)))
		}
		for _, u := range op.Using {
			parts = append(parts, "USING "+u.String())
		}
		for _, u := range op.UsingNamed {
			parts = append(parts, "USING NAMED "+u.String())
		}
		parts = append(parts, "WHERE "+pattern.Format(op.Where))
		return strings.Join(parts, " ")
	case InsertData:
		return fmt.Sprintf("INSERT DATA (%d quads)", len(op.Quads))
	case DeleteData:
		return fmt.Sprintf("DELETE DATA (%d quads)", len(op.Quads))
	case Clear:
		return "CLEAR" + silent(op.Silent) + " " + op.Target.String()
	case Create:
		return "CREATE" + silent(op.Silent) + " GRAPH " + op.Graph.String()
	case Drop:
		return "DROP" + silent(op.Silent) + " " + op.Target.String()
	case Add:
		return "ADD" + silent(op.Silent) + " " + op.From.String() + " TO " + op.To.String()
	case Copy:
		return "COPY" + silent(op.Silent) + " " + op.From.String() + " TO " + op.To.String()
	case Move:
		return "MOVE" + silent(op.Silent) + " " + op.From.String() + " TO " + op.To.String()
	case nil:
		return "<nil>"
	}
	return fmt.Sprintf("%T", op)
}

func describeTemplates(ts []QuadTemplate) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

func (t QuadTemplate) String() string {
	if t.Graph == nil {
		return t.Triple.String()
	}
	return "GRAPH " + t.Graph.String() + " { " + t.Triple.String() + " }"
}
