package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rdfup/internal/pattern"
	"github.com/roach88/rdfup/internal/store"
	"github.com/roach88/rdfup/internal/term"
	"github.com/roach88/rdfup/internal/testutil"
	"github.com/roach88/rdfup/internal/update"
)

const counterRequest = `
base: "http://example.org/"
prefixes: ex: "http://example.org/"
operations: [
	{insertData: [
		["ex:foo", "ex:value", 1],
		["ex:foo", "ex:value", 11],
		["ex:bar", "ex:value", 3],
	]},
	{modify: {
		delete: [["?bar", "ex:value", "?old"]]
		insert: [["?bar", "ex:value", "?new"]]
		where: {group: [
			{values: {vars: ["?bar"], rows: [["ex:bar"]]}},
			{bgp: [["ex:foo", "ex:value", "?v"]]},
			{optional: {bgp: [["ex:bar", "ex:value", "?old"]]}},
			{bind: {expr: {call: "+", args: [{call: "COALESCE", args: ["?old", 0]}, "?v"]}, as: "?new"}},
		]}
	}},
]
query: {
	select: ["?o"]
	where: {bgp: [["ex:bar", "ex:value", "?o"]]}
}
`

func compileString(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := CompileBytes("request.cue", []byte(src))
	require.NoError(t, err)
	return doc
}

func TestCompile_CounterRequestEndToEnd(t *testing.T) {
	doc := compileString(t, counterRequest)

	assert.Equal(t, "http://example.org/", doc.Request.Base)
	require.Len(t, doc.Request.Operations, 2)
	require.IsType(t, update.InsertData{}, doc.Request.Operations[0])
	mod, ok := doc.Request.Operations[1].(update.Modify)
	require.True(t, ok)
	assert.Equal(t,
		`(extend (leftjoin (join (values (?bar) (<http://example.org/bar>)) (bgp (<http://example.org/foo> <http://example.org/value> ?v))) `+
			`(bgp (<http://example.org/bar> <http://example.org/value> ?old))) `+
			`?new (+ (coalesce ?old "0"^^<http://www.w3.org/2001/XMLSchema#integer>) ?v))`,
		pattern.Format(mod.Where))

	st := store.New()
	exec := update.New(st, nil, update.WithLogger(testutil.DiscardLogger()))
	_, err := exec.Apply(context.Background(), doc.Request)
	require.NoError(t, err)

	require.NotNil(t, doc.Query)
	sols, err := exec.Query(context.Background(), doc.Query.Where)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		`{?o="14"^^<http://www.w3.org/2001/XMLSchema#integer>}`,
		`{?o="4"^^<http://www.w3.org/2001/XMLSchema#integer>}`,
	}, sols.Project(doc.Query.Vars).Strings())
}

func TestCompile_AllOperationKinds(t *testing.T) {
	doc := compileString(t, `
base: "http://example.org/"
prefixes: ex: "http://example.org/"
operations: [
	{load: {source: "data.nt", into: "ex:g", silent: true}},
	{load: "more.nq"},
	{insertData: [["ex:a", "ex:b", "\"x\"@en", "ex:g"]]},
	{deleteData: [["ex:a", "ex:b", "\"x\"@en"]]},
	{deleteWhere: [["?s", "ex:old", "?o"], ["?s", "ex:p", "?x", "ex:g"]]},
	{clear: {graph: "default"}},
	{clear: {graph: "named"}},
	{drop: {graph: "ex:g", silent: true}},
	{drop: {graph: "all"}},
	{create: {graph: "<g2>"}},
	{add: {from: "default", to: "ex:g2"}},
	{copy: {from: "ex:g2", to: "default", silent: true}},
	{move: {from: "ex:g2", to: "ex:g3"}},
	{modify: {
		with: "ex:g"
		insert: [["?s", "a", "ex:Thing"]]
		using: ["ex:g"]
		usingNamed: ["ex:h"]
		where: {bgp: [["?s", "?p", "?o"]]}
	}},
]
`)
	g := term.IRI("http://example.org/g")
	ops := doc.Request.Operations
	require.Len(t, ops, 14)

	assert.Equal(t, update.Load{Source: "data.nt", Into: &g, Silent: true}, ops[0])
	assert.Equal(t, update.Load{Source: "more.nq"}, ops[1])
	assert.Equal(t, update.InsertData{Quads: []term.Quad{
		term.NewQuad(term.IRI("http://example.org/a"), term.IRI("http://example.org/b"), term.NewLangLiteral("x", "en"), term.NamedContext(g)),
	}}, ops[2])
	assert.IsType(t, update.DeleteData{}, ops[3])

	dw := ops[4].(update.Modify)
	assert.Len(t, dw.Delete, 2)
	assert.Empty(t, dw.Insert)
	assert.Equal(t,
		`(join (bgp (?s <http://example.org/old> ?o)) (graph <http://example.org/g> (bgp (?s <http://example.org/p> ?x))))`,
		pattern.Format(dw.Where))

	assert.Equal(t, update.Clear{Target: update.DefaultTarget()}, ops[5])
	assert.Equal(t, update.Clear{Target: update.AllNamedTarget()}, ops[6])
	assert.Equal(t, update.Drop{Target: update.NamedTarget(g), Silent: true}, ops[7])
	assert.Equal(t, update.Drop{Target: update.AllTarget()}, ops[8])
	assert.Equal(t, update.Create{Graph: "http://example.org/g2"}, ops[9])
	assert.Equal(t, update.Add{From: update.DefaultGraph(), To: update.NamedGraph("http://example.org/g2")}, ops[10])
	assert.Equal(t, update.Copy{From: update.NamedGraph("http://example.org/g2"), To: update.DefaultGraph(), Silent: true}, ops[11])
	assert.Equal(t, update.Move{From: update.NamedGraph("http://example.org/g2"), To: update.NamedGraph("http://example.org/g3")}, ops[12])

	mod := ops[13].(update.Modify)
	assert.Equal(t, &g, mod.With)
	assert.Equal(t, []term.IRI{g}, mod.Using)
	assert.Equal(t, []term.IRI{"http://example.org/h"}, mod.UsingNamed)
	assert.Equal(t, term.RDFType, mod.Insert[0].Triple.P)
}

func TestCompile_GroupTranslation(t *testing.T) {
	doc := compileString(t, `
prefixes: ex: "http://example.org/"
query: where: {group: [
	{filter: {call: ">", args: ["?age", 18]}},
	{bgp: [["?s", "ex:age", "?age"]]},
	{optional: {bgp: [["?s", "ex:mail", "?m"]]}, filter: {call: "bound", args: ["?s"]}},
	{minus: {bgp: [["?s", "ex:banned", true]]}},
	{union: [{bgp: [["?s", "ex:a", "?x"]]}, {bgp: [["?s", "ex:b", "?x"]]}]},
	{graph: {name: "?g", where: {empty: {}}}},
]}
`)
	require.NotNil(t, doc.Query)
	assert.Empty(t, doc.Query.Vars)
	assert.Equal(t,
		`(filter (> ?age "18"^^<http://www.w3.org/2001/XMLSchema#integer>) `+
			`(join (join (minus (leftjoin (bgp (?s <http://example.org/age> ?age)) (bgp (?s <http://example.org/mail> ?m)) (bound ?s)) `+
			`(bgp (?s <http://example.org/banned> "true"^^<http://www.w3.org/2001/XMLSchema#boolean>))) `+
			`(union (bgp (?s <http://example.org/a> ?x)) (bgp (?s <http://example.org/b> ?x)))) `+
			`(graph ?g (empty))))`,
		pattern.Format(doc.Query.Where))
}

func TestCompile_Literals(t *testing.T) {
	doc := compileString(t, `
prefixes: ex: "http://example.org/"
operations: [{insertData: [
	["ex:s", "ex:int", 42],
	["ex:s", "ex:dec", 1.5],
	["ex:s", "ex:bool", false],
	["ex:s", "ex:typed", "\"7\"^^xsd:integer"],
]}]
`)
	data := doc.Request.Operations[0].(update.InsertData)
	objects := make([]term.Term, len(data.Quads))
	for i, q := range data.Quads {
		objects[i] = q.O
	}
	assert.Equal(t, []term.Term{
		term.NewInteger(42),
		term.NewTypedLiteral("1.5", term.XSDDecimal),
		term.NewBoolean(false),
		term.NewInteger(7),
	}, objects)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		field   string
		message string
	}{
		{
			name:    "nothing to do",
			src:     `base: "http://example.org/"`,
			field:   "operations",
			message: "neither operations nor a query",
		},
		{
			name:    "relative base",
			src:     `base: "relative/"`,
			field:   "base",
			message: "not an absolute IRI",
		},
		{
			name:    "unknown operation",
			src:     `operations: [{upsert: {}}]`,
			field:   "operations[0]",
			message: `unknown key "upsert"`,
		},
		{
			name:    "two operation keys",
			src:     `operations: [{create: {graph: "urn:g"}, drop: {graph: "urn:g"}}]`,
			field:   "operations[0]",
			message: "expected exactly one",
		},
		{
			name:    "unknown prefix",
			src:     `operations: [{insertData: [["zz:a", "urn:p", "urn:o"]]}]`,
			field:   "operations[0].insertData[0][0]",
			message: `unknown prefix "zz"`,
		},
		{
			name:    "short triple",
			src:     `operations: [{insertData: [["urn:a", "urn:p"]]}]`,
			field:   "operations[0].insertData[0]",
			message: "expected 3 to 4 terms, got 2",
		},
		{
			name:    "variable in data",
			src:     `operations: [{insertData: [["?s", "urn:p", "urn:o"]]}]`,
			field:   "operations[0].insertData[0]",
			message: "must not contain variables",
		},
		{
			name:    "modify without templates",
			src:     `operations: [{modify: {where: {bgp: []}}}]`,
			field:   "operations[0].modify",
			message: "delete or an insert",
		},
		{
			name:    "modify without where",
			src:     `operations: [{modify: {insert: [["urn:a", "urn:p", "urn:o"]]}}]`,
			field:   "operations[0].modify.where",
			message: "where is required",
		},
		{
			name:    "unknown function",
			src:     `query: where: {group: [{filter: {call: "regex", args: ["?x"]}}]}`,
			field:   "query.where.group[0].filter.call",
			message: `unknown function "regex"`,
		},
		{
			name:    "wrong arity caught by validation",
			src:     `query: where: {group: [{bgp: [["?s", "urn:p", "?o"]]}, {filter: {call: "strlen", args: ["?o", "?s"]}}]}`,
			field:   "query.where",
			message: "strlen",
		},
		{
			name:    "bind rebinds a variable",
			src:     `query: where: {group: [{bgp: [["?s", "urn:p", "?o"]]}, {bind: {expr: 1, as: "?o"}}]}`,
			field:   "query.where",
			message: "?o",
		},
		{
			name:    "literal graph name",
			src:     `operations: [{create: {graph: "\"g\""}}]`,
			field:   "operations[0].create.graph",
			message: "expected an IRI",
		},
		{
			name:    "bad select",
			src:     `query: {select: "all", where: {empty: {}}}`,
			field:   "query.select",
			message: "list of variables",
		},
		{
			name:    "union of one",
			src:     `query: where: {union: [{empty: {}}]}`,
			field:   "query.where.union",
			message: "at least two",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileBytes("request.cue", []byte(tt.src))
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
			assert.Contains(t, ce.Message, tt.message)
		})
	}
}

func TestCompile_ErrorPosition(t *testing.T) {
	src := "prefixes: ex: \"http://example.org/\"\noperations: [\n\t{insertData: [[\"zz:a\", \"ex:p\", \"ex:o\"]]},\n]\n"
	_, err := CompileBytes("request.cue", []byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request.cue:3:")
}

func TestCompile_CUESyntaxError(t *testing.T) {
	_, err := CompileBytes("broken.cue", []byte("operations: [\n"))
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "cue", ce.Field)
	assert.Contains(t, err.Error(), "broken.cue:")
}

func TestCompile_CUEConstraints(t *testing.T) {
	// CUE unification runs before compilation, so schemas can constrain
	// requests.
	_, err := CompileBytes("request.cue", []byte(`
#Create: create: graph: =~"^urn:"
operations: [#Create & {create: graph: "http://example.org/g"}]
`))
	require.Error(t, err)
}

func TestCompile_FromValue(t *testing.T) {
	v := cuecontext.New().CompileString(`operations: [{create: {graph: "urn:g"}}]`)
	doc, err := Compile(v)
	require.NoError(t, err)
	assert.Equal(t, []update.Operation{update.Create{Graph: "urn:g"}}, doc.Request.Operations)
	assert.Contains(t, doc.Prefixes, "xsd")
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.cue")
	require.NoError(t, os.WriteFile(path, []byte(counterRequest), 0o644))

	doc, err := CompileFile(path)
	require.NoError(t, err)
	assert.Len(t, doc.Request.Operations, 2)

	_, err = CompileFile(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)
}
