package update

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rdfup/internal/loader"
	"github.com/roach88/rdfup/internal/store"
	"github.com/roach88/rdfup/internal/term"
	"github.com/roach88/rdfup/internal/testutil"
)

const ex = "http://example.org/"

func iri(local string) term.IRI { return term.IRI(ex + local) }

func v(name string) term.Variable { return term.Variable(name) }

func tp(s, p, o term.Term) term.Triple { return term.NewTriple(s, p, o) }

func quad(s, p, o term.Term) term.Quad { return term.NewQuad(s, p, o, term.DefaultContext) }

func quadIn(g string, s, p, o term.Term) term.Quad {
	return term.NewQuad(s, p, o, term.NamedContext(iri(g)))
}

func newExecutor(st *store.Store, ld *loader.Loader, opts ...Option) *Executor {
	base := []Option{
		WithLogger(testutil.DiscardLogger()),
		WithIDGenerator(testutil.NewFixedIDGenerator("req-test")),
		WithClock(testutil.NewDeterministicClock()),
		WithBlankPrefix(testutil.SequentialLabels("u")),
	}
	return New(st, ld, append(base, opts...)...)
}

func newLoader(docs loader.MapFetcher) *loader.Loader {
	return loader.New(docs,
		loader.WithLogger(testutil.DiscardLogger()),
		loader.WithBlankPrefix(testutil.KeyedLabels("load")),
	)
}

func apply(t *testing.T, e *Executor, ops ...Operation) Result {
	t.Helper()
	res, err := e.Apply(context.Background(), Request{Base: ex, Operations: ops})
	require.NoError(t, err)
	return res
}

// dump lists every quad of st in N-Quads form, default context first.
func dump(st *store.Store) []string {
	var out []string
	for q := range st.All() {
		out = append(out, q.String())
	}
	return out
}
