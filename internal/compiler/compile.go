package compiler

import (
	"fmt"
	"maps"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/rdfup/internal/iri"
	"github.com/roach88/rdfup/internal/pattern"
	"github.com/roach88/rdfup/internal/term"
	"github.com/roach88/rdfup/internal/update"
)

// Document is a compiled request file.
type Document struct {
	Request  update.Request
	Prefixes map[string]string
	// Query is the optional read query, nil when the document has none.
	Query *Query
}

// Query is a read query evaluated after the request. Vars is empty for
// SELECT *.
type Query struct {
	Vars  []term.Variable
	Where pattern.Pattern
}

type compiler struct {
	terms *termParser
}

// CompileFile reads and compiles a CUE request document.
func CompileFile(path string) (*Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	return CompileBytes(path, src)
}

// CompileBytes compiles CUE source. filename only labels error positions.
func CompileBytes(filename string, src []byte) (*Document, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	return Compile(v)
}

// Compile turns a CUE value into a Document. Uses the CUE Go API directly.
//
//	base: "http://example.org/"
//	prefixes: ex: "http://example.org/"
//	operations: [{insertData: [["ex:a", "ex:p", "\"x\"@en"]]}]
func Compile(v cue.Value) (*Document, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	doc := &Document{Prefixes: maps.Clone(DefaultPrefixes)}

	if bv, ok := lookup(v, "base"); ok {
		base, err := bv.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if !iri.IsAbsolute(base) {
			return nil, compileErr("base", bv.Pos(), "base %q is not an absolute IRI", base)
		}
		doc.Request.Base = base
	}

	if pv, ok := lookup(v, "prefixes"); ok {
		it, err := pv.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for it.Next() {
			ns, err := it.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			doc.Prefixes[it.Label()] = ns
		}
	}

	c := &compiler{terms: &termParser{base: doc.Request.Base, prefixes: doc.Prefixes}}

	if ov, ok := lookup(v, "operations"); ok {
		elems, err := listValues("operations", ov)
		if err != nil {
			return nil, err
		}
		for i, e := range elems {
			op, err := c.parseOperation(fmt.Sprintf("operations[%d]", i), e)
			if err != nil {
				return nil, err
			}
			doc.Request.Operations = append(doc.Request.Operations, op)
		}
	}

	if qv, ok := lookup(v, "query"); ok {
		q, err := c.parseQuery("query", qv)
		if err != nil {
			return nil, err
		}
		doc.Query = q
	}

	if len(doc.Request.Operations) == 0 && doc.Query == nil {
		return nil, compileErr("operations", v.Pos(), "document has neither operations nor a query")
	}
	return doc, nil
}

func (c *compiler) parseQuery(field string, v cue.Value) (*Query, error) {
	q := &Query{}
	if sv, ok := lookup(v, "select"); ok && sv.Kind() == cue.ListKind {
		elems, err := listValues(field+".select", sv)
		if err != nil {
			return nil, err
		}
		for i, e := range elems {
			tv, err := c.terms.parseVar(fmt.Sprintf("%s.select[%d]", field, i), e)
			if err != nil {
				return nil, err
			}
			q.Vars = append(q.Vars, tv)
		}
	} else if ok {
		s, err := sv.String()
		if err != nil || s != "*" {
			return nil, compileErr(field+".select", sv.Pos(), `select must be a list of variables or "*"`)
		}
	}

	wv, ok := lookup(v, "where")
	if !ok {
		return nil, compileErr(field+".where", v.Pos(), "query pattern is required")
	}
	where, err := c.checkedPattern(field+".where", wv)
	if err != nil {
		return nil, err
	}
	q.Where = where
	return q, nil
}

// checkedPattern parses a pattern and runs pattern.Validate over it.
func (c *compiler) checkedPattern(field string, v cue.Value) (pattern.Pattern, error) {
	p, err := c.parsePattern(field, v)
	if err != nil {
		return nil, err
	}
	if err := pattern.Validate(p); err != nil {
		return nil, compileErr(field, v.Pos(), "%v", err)
	}
	return p, nil
}
