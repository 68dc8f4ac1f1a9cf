package loader

import (
	"bytes"
	"context"
	"fmt"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/roach88/rdfup/internal/iri"
	"github.com/roach88/rdfup/internal/term"
)

// TurtleCodec decodes Turtle. Relative references, including those in
// @prefix directives, resolve against the document IRI unless the document
// declares an absolute @base.
type TurtleCodec struct{}

func (TurtleCodec) Name() string { return "turtle" }

func (TurtleCodec) MediaTypes() []string { return []string{"text/turtle"} }

func (TurtleCodec) Extensions() []string { return []string{".ttl"} }

func (TurtleCodec) Decode(ctx context.Context, body []byte, base string) ([]Statement, error) {
	return decodeSyntax(ctx, "turtle", body, base)
}

// TriGCodec decodes TriG. Each graph block becomes a context.
type TriGCodec struct{}

func (TriGCodec) Name() string { return "trig" }

func (TriGCodec) MediaTypes() []string { return []string{"application/trig"} }

func (TriGCodec) Extensions() []string { return []string{".trig"} }

func (TriGCodec) Decode(ctx context.Context, body []byte, base string) ([]Statement, error) {
	return decodeSyntax(ctx, "trig", body, base)
}

func decodeSyntax(ctx context.Context, format string, body []byte, base string) ([]Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	quads, err := rdf.ParseAny(ctx, bytes.NewReader(body), format, rdf.AnyFormatOptions{})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}

	c := syntaxConverter{base: base}
	out := make([]Statement, 0, len(quads))
	for _, q := range quads {
		st, err := c.statement(q)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// syntaxConverter maps parsed quads to statements, resolving any IRI the
// parser left relative.
type syntaxConverter struct {
	base string
}

func (c syntaxConverter) statement(q rdf.Quad) (Statement, error) {
	s, err := c.node(q.S)
	if err != nil {
		return Statement{}, err
	}
	p, err := c.iri(q.P.Value)
	if err != nil {
		return Statement{}, err
	}
	o, err := c.node(q.O)
	if err != nil {
		return Statement{}, err
	}
	tr := term.NewTriple(s, p, o)
	if !tr.IsValid() {
		return Statement{}, fmt.Errorf("invalid statement %s", tr)
	}

	st := Statement{Triple: tr}
	switch g := q.G.(type) {
	case nil:
	case rdf.IRI:
		name, err := c.iri(g.Value)
		if err != nil {
			return Statement{}, err
		}
		gc := term.NamedContext(name)
		st.Context = &gc
	default:
		return Statement{}, fmt.Errorf("graph name %s is not supported", q.G)
	}
	return st, nil
}

func (c syntaxConverter) node(t rdf.Term) (term.Term, error) {
	switch t := t.(type) {
	case rdf.IRI:
		return c.iri(t.Value)
	case rdf.BlankNode:
		return term.BlankNode(t.ID), nil
	case rdf.Literal:
		if t.Lang != "" {
			return term.NewLangLiteral(t.Lexical, t.Lang), nil
		}
		dt := t.Datatype.Value
		if dt != "" {
			resolved, err := c.iri(dt)
			if err != nil {
				return nil, err
			}
			dt = string(resolved)
		}
		return term.NewTypedLiteral(t.Lexical, term.IRI(dt)), nil
	case nil:
		return nil, fmt.Errorf("missing term")
	}
	return nil, fmt.Errorf("unsupported term %s", t)
}

func (c syntaxConverter) iri(v string) (term.IRI, error) {
	if iri.IsAbsolute(v) || c.base == "" {
		return term.IRI(v), nil
	}
	resolved, err := iri.Resolve(v, c.base)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", v, err)
	}
	return term.IRI(resolved), nil
}
