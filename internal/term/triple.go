package term

import "strings"

// Triple is an ordered (subject, predicate, object) statement. Inside
// patterns and templates any slot may hold a Variable.
type Triple struct {
	S, P, O Term
}

// NewTriple builds a Triple.
func NewTriple(s, p, o Term) Triple {
	return Triple{S: s, P: p, O: o}
}

// IsGround reports whether no slot holds a Variable or is nil.
func (t Triple) IsGround() bool {
	return IsGround(t.S) && IsGround(t.P) && IsGround(t.O)
}

// IsValid reports whether a ground triple is well-formed RDF: subject is an
// IRI or blank node, predicate an IRI.
func (t Triple) IsValid() bool {
	switch t.S.(type) {
	case IRI, BlankNode:
	default:
		return false
	}
	if _, ok := t.P.(IRI); !ok {
		return false
	}
	return IsGround(t.O)
}

// Vars returns the distinct variables of t in slot order.
func (t Triple) Vars() []Variable {
	var vars []Variable
	seen := map[Variable]bool{}
	for _, slot := range []Term{t.S, t.P, t.O} {
		if v, ok := slot.(Variable); ok && !seen[v] {
			seen[v] = true
			vars = append(vars, v)
		}
	}
	return vars
}

// Canonical returns t with every slot canonicalized.
func (t Triple) Canonical() Triple {
	return Triple{S: canonicalOrNil(t.S), P: canonicalOrNil(t.P), O: canonicalOrNil(t.O)}
}

func canonicalOrNil(t Term) Term {
	if t == nil {
		return nil
	}
	return Canonical(t)
}

// String renders t as an N-Triples statement without the trailing newline.
func (t Triple) String() string {
	return strings.Join([]string{termString(t.S), termString(t.P), termString(t.O), "."}, " ")
}

func termString(t Term) string {
	if t == nil {
		return "*"
	}
	return t.String()
}

// Context identifies a partition of the store: the default context or a
// named one. The zero value is the default context.
type Context struct {
	name IRI
}

// DefaultContext is the singleton default context.
var DefaultContext = Context{}

// NamedContext returns the context named by iri. An empty iri yields the
// default context.
func NamedContext(iri IRI) Context {
	return Context{name: iri}
}

// IsDefault reports whether c is the default context.
func (c Context) IsDefault() bool { return c.name == "" }

// Name returns the context IRI; ok is false for the default context.
func (c Context) Name() (IRI, bool) {
	return c.name, c.name != ""
}

func (c Context) String() string {
	if c.IsDefault() {
		return "default"
	}
	return c.name.String()
}

// CompareContexts orders the default context first, then named contexts by IRI.
func CompareContexts(a, b Context) int {
	switch {
	case a == b:
		return 0
	case a.IsDefault():
		return -1
	case b.IsDefault():
		return 1
	}
	return strings.Compare(string(a.name), string(b.name))
}

// Quad is a Triple placed in a Context.
type Quad struct {
	Triple
	Context Context
}

// NewQuad builds a Quad.
func NewQuad(s, p, o Term, c Context) Quad {
	return Quad{Triple: Triple{S: s, P: p, O: o}, Context: c}
}

// Canonical returns q with every slot canonicalized.
func (q Quad) Canonical() Quad {
	return Quad{Triple: q.Triple.Canonical(), Context: q.Context}
}

// String renders q as an N-Quads statement without the trailing newline.
func (q Quad) String() string {
	parts := []string{termString(q.S), termString(q.P), termString(q.O)}
	if name, ok := q.Context.Name(); ok {
		parts = append(parts, name.String())
	}
	return strings.Join(append(parts, "."), " ")
}

// CompareQuads orders quads by context, then subject, predicate and object.
func CompareQuads(a, b Quad) int {
	if c := CompareContexts(a.Context, b.Context); c != 0 {
		return c
	}
	return CompareTriples(a.Triple, b.Triple)
}

// CompareTriples orders triples slot by slot.
func CompareTriples(a, b Triple) int {
	if c := Compare(a.S, b.S); c != 0 {
		return c
	}
	if c := Compare(a.P, b.P); c != 0 {
		return c
	}
	return Compare(a.O, b.O)
}
