package loader

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/piprate/json-gold/ld"

	"github.com/roach88/rdfup/internal/term"
)

// Statement is one decoded triple, with the context the document placed it
// in. Context is nil for the document's default graph.
type Statement struct {
	Triple  term.Triple
	Context *term.Context
}

// Codec decodes one concrete syntax. base is the document IRI, used to
// resolve relative references where the syntax allows them.
type Codec interface {
	Name() string
	MediaTypes() []string
	Extensions() []string
	Decode(ctx context.Context, body []byte, base string) ([]Statement, error)
}

// Registry selects a codec for a document.
type Registry struct {
	codecs   []Codec
	fallback Codec
}

// NewRegistry returns a registry with the N-Quads, Turtle, TriG and JSON-LD
// codecs.
// remote loads JSON-LD contexts referenced by IRI; nil disables remote
// contexts.
func NewRegistry(remote Fetcher) *Registry {
	nq := NQuadsCodec{}
	return &Registry{
		codecs:   []Codec{nq, TurtleCodec{}, TriGCodec{}, JSONLDCodec{Fetcher: remote}},
		fallback: nq,
	}
}

// Register adds c ahead of the existing codecs.
func (r *Registry) Register(c Codec) {
	r.codecs = append([]Codec{c}, r.codecs...)
}

// Select picks a codec by media type, then by the IRI's file extension, and
// otherwise falls back to N-Quads.
func (r *Registry) Select(mediaType, iri string) Codec {
	if mt := strings.ToLower(strings.TrimSpace(mediaType)); mt != "" {
		for _, c := range r.codecs {
			if slices.Contains(c.MediaTypes(), mt) {
				return c
			}
		}
	}
	if ext := extension(iri); ext != "" {
		for _, c := range r.codecs {
			if slices.Contains(c.Extensions(), ext) {
				return c
			}
		}
	}
	return r.fallback
}

// Accept renders an Accept header preferring codecs in registration order.
func (r *Registry) Accept() string {
	var parts []string
	q := 10
	for _, c := range r.codecs {
		for _, mt := range c.MediaTypes() {
			if q == 10 {
				parts = append(parts, mt)
			} else {
				parts = append(parts, fmt.Sprintf("%s;q=0.%d", mt, q))
			}
		}
		q = max(q-1, 1)
	}
	return strings.Join(append(parts, "*/*;q=0.1"), ", ")
}

// extension returns the lowercased extension of the IRI's path, ignoring
// query and fragment.
func extension(iri string) string {
	p, _, _ := strings.Cut(iri, "#")
	p, _, _ = strings.Cut(p, "?")
	return strings.ToLower(path.Ext(p))
}

// NQuadsCodec decodes N-Triples and N-Quads.
type NQuadsCodec struct{}

func (NQuadsCodec) Name() string { return "n-quads" }

func (NQuadsCodec) MediaTypes() []string {
	return []string{"application/n-quads", "application/n-triples"}
}

func (NQuadsCodec) Extensions() []string { return []string{".nq", ".nt"} }

func (NQuadsCodec) Decode(ctx context.Context, body []byte, base string) ([]Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, err := (&ld.NQuadRDFSerializer{}).Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse n-quads: %w", err)
	}
	return fromDataset(ds)
}

// JSONLDCodec decodes JSON-LD documents through the JSON-LD to RDF
// algorithm. Remote contexts are loaded through Fetcher.
type JSONLDCodec struct {
	Fetcher Fetcher
}

func (JSONLDCodec) Name() string { return "json-ld" }

func (JSONLDCodec) MediaTypes() []string {
	return []string{"application/ld+json", "application/json"}
}

func (JSONLDCodec) Extensions() []string { return []string{".jsonld", ".json"} }

func (c JSONLDCodec) Decode(ctx context.Context, body []byte, base string) ([]Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := ld.DocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	opts := ld.NewJsonLdOptions(base)
	opts.DocumentLoader = contextLoader{ctx: ctx, fetcher: c.Fetcher}

	out, err := ld.NewJsonLdProcessor().ToRDF(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("json-ld to rdf: %w", err)
	}
	ds, ok := out.(*ld.RDFDataset)
	if !ok {
		return nil, fmt.Errorf("json-ld to rdf: unexpected result %T", out)
	}
	return fromDataset(ds)
}

// contextLoader resolves remote JSON-LD contexts through a Fetcher.
type contextLoader struct {
	ctx     context.Context
	fetcher Fetcher
}

func (l contextLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	if l.fetcher == nil {
		return nil, fmt.Errorf("remote context %s: remote contexts are disabled", u)
	}
	doc, err := l.fetcher.Fetch(l.ctx, u)
	if err != nil {
		return nil, err
	}
	parsed, err := ld.DocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		return nil, fmt.Errorf("remote context %s: %w", u, err)
	}
	return &ld.RemoteDocument{DocumentURL: doc.IRI, Document: parsed}, nil
}

// fromDataset converts a json-gold dataset. Graphs are visited in name
// order so the statement order is stable.
func fromDataset(ds *ld.RDFDataset) ([]Statement, error) {
	names := make([]string, 0, len(ds.Graphs))
	for name := range ds.Graphs {
		names = append(names, name)
	}
	slices.Sort(names)

	var out []Statement
	for _, name := range names {
		var gc *term.Context
		if name != "@default" {
			if strings.HasPrefix(name, "_:") {
				return nil, fmt.Errorf("blank node graph name %s is not supported", name)
			}
			c := term.NamedContext(term.IRI(name))
			gc = &c
		}
		for _, q := range ds.Graphs[name] {
			if q == nil {
				continue
			}
			s, err := fromNode(q.Subject)
			if err != nil {
				return nil, err
			}
			p, err := fromNode(q.Predicate)
			if err != nil {
				return nil, err
			}
			o, err := fromNode(q.Object)
			if err != nil {
				return nil, err
			}
			tr := term.NewTriple(s, p, o)
			if !tr.IsValid() {
				return nil, fmt.Errorf("invalid statement %s", tr)
			}
			out = append(out, Statement{Triple: tr, Context: gc})
		}
	}
	return out, nil
}

func fromNode(n ld.Node) (term.Term, error) {
	switch n := n.(type) {
	case ld.IRI:
		return term.IRI(n.Value), nil
	case *ld.IRI:
		return term.IRI(n.Value), nil
	case ld.BlankNode:
		return term.BlankNode(strings.TrimPrefix(n.Attribute, "_:")), nil
	case *ld.BlankNode:
		return term.BlankNode(strings.TrimPrefix(n.Attribute, "_:")), nil
	case ld.Literal:
		return fromLiteral(n), nil
	case *ld.Literal:
		return fromLiteral(*n), nil
	case nil:
		return nil, fmt.Errorf("missing node")
	}
	return nil, fmt.Errorf("unsupported node %T", n)
}

func fromLiteral(l ld.Literal) term.Literal {
	if l.Language != "" {
		return term.NewLangLiteral(l.Value, l.Language)
	}
	return term.NewTypedLiteral(l.Value, term.IRI(l.Datatype))
}

// ToDataset converts quads into a json-gold dataset, for serialization.
func ToDataset(quads []term.Quad) *ld.RDFDataset {
	ds := ld.NewRDFDataset()
	for _, q := range quads {
		graph := "@default"
		if name, ok := q.Context.Name(); ok {
			graph = string(name)
		}
		lq := ld.NewQuad(toNode(q.S), toNode(q.P), toNode(q.O), graph)
		ds.Graphs[graph] = append(ds.Graphs[graph], lq)
	}
	return ds
}

func toNode(t term.Term) ld.Node {
	switch t := t.(type) {
	case term.IRI:
		return ld.NewIRI(string(t))
	case term.BlankNode:
		return ld.NewBlankNode("_:" + string(t))
	case term.Literal:
		lang := t.Lang
		dt := string(t.Datatype)
		if lang != "" {
			dt = string(term.RDFLangString)
		}
		return ld.NewLiteral(t.Lexical, dt, lang)
	}
	return nil
}

// SerializeNQuads renders quads as an N-Quads document.
func SerializeNQuads(quads []term.Quad) (string, error) {
	out, err := (&ld.NQuadRDFSerializer{}).Serialize(ToDataset(quads))
	if err != nil {
		return "", fmt.Errorf("serialize n-quads: %w", err)
	}
	s, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("serialize n-quads: unexpected result %T", out)
	}
	return s, nil
}
