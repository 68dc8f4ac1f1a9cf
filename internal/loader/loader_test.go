package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rdfup/internal/iri"
	"github.com/roach88/rdfup/internal/store"
	"github.com/roach88/rdfup/internal/term"
	"github.com/roach88/rdfup/internal/testutil"
)

const ex = "http://example.org/"

const sampleNQuads = `<http://example.org/a> <http://example.org/p> "x" .
<http://example.org/a> <http://example.org/p> _:b1 .
_:b1 <http://example.org/q> "y"@en <http://example.org/g> .
`

func newLoader(f Fetcher) *Loader {
	return New(f,
		WithLogger(testutil.DiscardLogger()),
		WithBlankPrefix(testutil.KeyedLabels("load")),
	)
}

func triples(st *store.Store, gc term.Context) []string {
	var out []string
	for tr := range st.Triples(gc, nil, nil, nil) {
		out = append(out, tr.String())
	}
	return out
}

func TestLoad_KeepsParsedContexts(t *testing.T) {
	docs := MapFetcher{}
	docs.Put(ex+"data.nq", "application/n-quads", sampleNQuads)
	st := store.New()

	res, err := newLoader(docs).Load(context.Background(), st, LoadRequest{Source: ex + "data.nq"})
	require.NoError(t, err)

	assert.Equal(t, ex+"data.nq", res.IRI)
	assert.Equal(t, "n-quads", res.Codec)
	assert.Equal(t, 3, res.Statements)
	assert.Equal(t, 3, res.Added)
	assert.Equal(t, len(sampleNQuads), res.Bytes)

	assert.Equal(t, []string{
		`_:load1_b1 <http://example.org/q> "y"@en .`,
	}, triples(st, term.NamedContext(ex+"g")))
	assert.Equal(t, []string{
		`<http://example.org/a> <http://example.org/p> _:load1_b1 .`,
		`<http://example.org/a> <http://example.org/p> "x" .`,
	}, triples(st, term.DefaultContext))
}

func TestLoad_TargetFlattensGraphs(t *testing.T) {
	docs := MapFetcher{}
	docs.Put(ex+"data.nq", "", sampleNQuads)
	st := store.New()
	target := term.NamedContext(ex + "into")

	res, err := newLoader(docs).Load(context.Background(), st, LoadRequest{Source: ex + "data.nq", Target: &target})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Added)
	assert.Equal(t, 3, st.Len(target))
	assert.Equal(t, 0, st.Len(term.DefaultContext))
	assert.False(t, st.HasContext(term.NamedContext(ex+"g")))
}

func TestLoad_DefaultAndNamedTargetsAgree(t *testing.T) {
	docs := MapFetcher{}
	docs.Put(ex+"people.nt", "", `<http://example.org/alice> <http://example.org/knows> <http://example.org/bob> .
<http://example.org/bob> <http://example.org/name> "Bob" .
`)

	intoDefault := store.New()
	_, err := newLoader(docs).Load(context.Background(), intoDefault, LoadRequest{Source: ex + "people.nt"})
	require.NoError(t, err)

	intoNamed := store.New()
	g := term.NamedContext(ex + "people")
	_, err = newLoader(docs).Load(context.Background(), intoNamed, LoadRequest{Source: ex + "people.nt", Target: &g})
	require.NoError(t, err)

	assert.Equal(t, triples(intoDefault, term.DefaultContext), triples(intoNamed, g))
	assert.Equal(t, 2, intoNamed.Len(g))
}

func TestLoad_ReloadIsIdempotent(t *testing.T) {
	docs := MapFetcher{}
	docs.Put(ex+"data.nq", "", sampleNQuads)
	st := store.New()
	ld := New(docs, WithLogger(testutil.DiscardLogger()))

	_, err := ld.Load(context.Background(), st, LoadRequest{Source: ex + "data.nq"})
	require.NoError(t, err)
	before := triples(st, term.DefaultContext)

	res, err := ld.Load(context.Background(), st, LoadRequest{Source: ex + "data.nq"})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Statements)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 2, st.Len(term.DefaultContext))
	assert.Equal(t, before, triples(st, term.DefaultContext))
}

func TestLoad_BlankNodesDistinctPerTarget(t *testing.T) {
	docs := MapFetcher{}
	docs.Put(ex+"one.nt", "", `_:b <http://example.org/p> "x" .`)
	docs.Put(ex+"two.nt", "", `_:b <http://example.org/p> "x" .`)
	st := store.New()
	ld := New(docs, WithLogger(testutil.DiscardLogger()))
	g := term.NamedContext(ex + "g")

	for _, req := range []LoadRequest{
		{Source: ex + "one.nt"},
		{Source: ex + "two.nt"},
		{Source: ex + "one.nt", Target: &g},
		{Source: ex + "one.nt", Target: &g},
	} {
		_, err := ld.Load(context.Background(), st, req)
		require.NoError(t, err)
	}

	// Different documents never share a blank node.
	assert.Equal(t, 2, st.Len(term.DefaultContext))
	assert.Equal(t, 1, st.Len(g))
}

func TestLoad_RelativeSource(t *testing.T) {
	docs := MapFetcher{}
	docs.Put(ex+"dir/data.nt", "", `<http://example.org/a> <http://example.org/p> "x" .`)

	res, err := newLoader(docs).Load(context.Background(), store.New(), LoadRequest{Source: "data.nt", Base: ex + "dir/req"})
	require.NoError(t, err)
	assert.Equal(t, ex+"dir/data.nt", res.IRI)
}

func TestLoad_Errors(t *testing.T) {
	docs := MapFetcher{}
	docs.Put(ex+"broken.nt", "", `<http://example.org/a> <http://example.org/p> .`)
	ld := newLoader(docs)

	t.Run("relative without base", func(t *testing.T) {
		_, err := ld.Load(context.Background(), store.New(), LoadRequest{Source: "data.nt"})
		assert.True(t, iri.IsKind(err, iri.KindMalformed))
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := ld.Load(context.Background(), store.New(), LoadRequest{Source: ex + "missing.nt"})
		assert.True(t, IsKind(err, KindSourceUnavailable))
	})

	t.Run("undecodable document writes nothing", func(t *testing.T) {
		st := store.New()
		_, err := ld.Load(context.Background(), st, LoadRequest{Source: ex + "broken.nt"})
		assert.True(t, IsKind(err, KindDecodeFailure))
		assert.Equal(t, 0, st.Size())
	})

	t.Run("plain fetcher errors are wrapped", func(t *testing.T) {
		failing := FetcherFunc(func(context.Context, string) (*Document, error) {
			return nil, os.ErrPermission
		})
		_, err := newLoader(failing).Load(context.Background(), store.New(), LoadRequest{Source: ex + "x"})
		assert.True(t, IsKind(err, KindSourceUnavailable))
		assert.ErrorIs(t, err, os.ErrPermission)
	})
}

func TestLoad_JSONLD(t *testing.T) {
	docs := MapFetcher{}
	docs.Put(ex+"ctx.jsonld", "application/ld+json", `{"@context": {"name": "http://example.org/name"}}`)
	docs.Put(ex+"people/alice.jsonld", "", `{
  "@context": "http://example.org/ctx.jsonld",
  "@id": "#me",
  "name": "Alice"
}`)
	st := store.New()

	res, err := newLoader(docs).Load(context.Background(), st, LoadRequest{Source: ex + "people/alice.jsonld"})
	require.NoError(t, err)
	assert.Equal(t, "json-ld", res.Codec)
	assert.Equal(t, []string{
		`<http://example.org/people/alice.jsonld#me> <http://example.org/name> "Alice" .`,
	}, triples(st, term.DefaultContext))
}

func TestLoad_JSONLDNamedGraph(t *testing.T) {
	docs := MapFetcher{}
	docs.Put(ex+"g.jsonld", "", `{
  "@id": "http://example.org/g",
  "@graph": [
    {"@id": "http://example.org/a", "http://example.org/p": "x"}
  ]
}`)
	st := store.New()

	_, err := newLoader(docs).Load(context.Background(), st, LoadRequest{Source: ex + "g.jsonld"})
	require.NoError(t, err)
	assert.Equal(t, 1, st.Len(term.NamedContext(ex+"g")))
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.nt")
	require.NoError(t, os.WriteFile(path, []byte(`<http://example.org/a> <http://example.org/p> "x" .`), 0o644))

	uri, err := iri.PathToFileURI(path, iri.Posix)
	require.NoError(t, err)

	st := store.New()
	res, err := newLoader(FileFetcher{Flavor: iri.Posix}).Load(context.Background(), st, LoadRequest{Source: uri})
	require.NoError(t, err)
	assert.Equal(t, "n-quads", res.Codec)
	assert.Equal(t, 1, st.Size())

	_, err = FileFetcher{}.Fetch(context.Background(), "file:///does/not/exist.nt")
	assert.True(t, IsKind(err, KindSourceUnavailable))
}

func TestSchemeFetcher(t *testing.T) {
	mem := MapFetcher{}
	mem.Put("mem:a", "", "")
	f := SchemeFetcher{"mem": mem}

	doc, err := f.Fetch(context.Background(), "MEM:a")
	require.Error(t, err, "lookup keeps the original IRI, which the map does not hold")
	assert.Nil(t, doc)

	doc, err = f.Fetch(context.Background(), "mem:a")
	require.NoError(t, err)
	assert.Equal(t, "mem:a", doc.IRI)

	_, err = f.Fetch(context.Background(), "ftp://host/x")
	assert.True(t, IsKind(err, KindSourceUnavailable))
}

func TestRegistry_Select(t *testing.T) {
	r := NewRegistry(nil)
	tests := []struct {
		mediaType, iri, want string
	}{
		{"application/ld+json", ex + "x.nt", "json-ld"},
		{"APPLICATION/N-TRIPLES", ex + "x.jsonld", "n-quads"},
		{"", ex + "x.jsonld?version=2#frag", "json-ld"},
		{"", ex + "x.NQ", "n-quads"},
		{"text/html", ex + "x", "n-quads"},
		{"text/turtle", ex + "x.nq", "turtle"},
		{"", ex + "relative_triple.ttl", "turtle"},
		{"", ex + "graphs.trig", "trig"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Select(tt.mediaType, tt.iri).Name(), "%s %s", tt.mediaType, tt.iri)
	}
}

func TestRegistry_Accept(t *testing.T) {
	assert.Equal(t,
		"application/n-quads, application/n-triples, text/turtle;q=0.9, application/trig;q=0.8, application/ld+json;q=0.7, application/json;q=0.7, */*;q=0.1",
		NewRegistry(nil).Accept())
}

func TestPrefetch(t *testing.T) {
	var calls int
	docs := MapFetcher{}
	docs.Put(ex+"a.nt", "", `<http://example.org/a> <http://example.org/p> "a" .`)
	docs.Put(ex+"b.nt", "", `<http://example.org/b> <http://example.org/p> "b" .`)
	counting := FetcherFunc(func(ctx context.Context, u string) (*Document, error) {
		calls++
		return docs.Fetch(ctx, u)
	})

	ld := New(counting, WithLogger(testutil.DiscardLogger()), WithWorkers(1))
	require.NoError(t, ld.Prefetch(context.Background(), ex, []string{"a.nt", "b.nt", "a.nt", "missing.nt"}))
	assert.True(t, ld.Fetched(ex+"a.nt"))
	assert.True(t, ld.Fetched(ex+"b.nt"))
	assert.False(t, ld.Fetched(ex+"missing.nt"))
	assert.Equal(t, 3, calls)

	st := store.New()
	_, err := ld.Load(context.Background(), st, LoadRequest{Source: "a.nt", Base: ex})
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "prefetched document is reused")
	assert.False(t, ld.Fetched(ex+"a.nt"))

	_, err = ld.Load(context.Background(), st, LoadRequest{Source: "missing.nt", Base: ex})
	assert.True(t, IsKind(err, KindSourceUnavailable))
}

func TestSerializeNQuads(t *testing.T) {
	out, err := SerializeNQuads([]term.Quad{
		term.NewQuad(term.IRI(ex+"a"), term.IRI(ex+"p"), term.NewLiteral("x"), term.DefaultContext),
		term.NewQuad(term.IRI(ex+"a"), term.IRI(ex+"p"), term.NewLangLiteral("y", "en"), term.NamedContext(ex+"g")),
	})
	require.NoError(t, err)
	assert.Contains(t, out, `<http://example.org/a> <http://example.org/p> "x" .`)
	assert.Contains(t, out, `<http://example.org/a> <http://example.org/p> "y"@en <http://example.org/g> .`)
}
