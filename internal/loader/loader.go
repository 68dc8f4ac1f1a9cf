package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/rdfup/internal/iri"
	"github.com/roach88/rdfup/internal/store"
	"github.com/roach88/rdfup/internal/term"
)

// DefaultWorkers bounds concurrent fetches in Prefetch.
const DefaultWorkers = 4

// LoadRequest describes one LOAD.
type LoadRequest struct {
	// Source is the IRI to load, possibly relative to Base.
	Source string
	Base   string
	// Target, when set, receives every statement regardless of the graph
	// the document placed it in.
	Target *term.Context
}

// LoadResult reports what a load did.
type LoadResult struct {
	// IRI is the resolved source.
	IRI string
	// Base is the IRI the document was decoded against; it differs from IRI
	// after a redirect.
	Base       string
	Codec      string
	Bytes      int
	Statements int
	Added      int
}

// Option configures a Loader.
type Option func(*Loader)

// WithRegistry replaces the codec registry.
func WithRegistry(r *Registry) Option {
	return func(l *Loader) { l.codecs = r }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(lg *slog.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// WithWorkers bounds concurrent fetches in Prefetch.
func WithWorkers(n int) Option {
	return func(l *Loader) { l.workers = n }
}

// WithBlankPrefix replaces the blank node prefix function. It receives the
// load key (resolved source and target) and must return the same prefix for
// the same key, or reloading a document duplicates its blank node facts.
func WithBlankPrefix(gen func(key string) string) Option {
	return func(l *Loader) { l.blankPrefix = gen }
}

// Loader resolves, fetches, decodes and merges documents.
type Loader struct {
	fetcher     Fetcher
	codecs      *Registry
	logger      *slog.Logger
	workers     int
	blankPrefix func(key string) string

	mu         sync.Mutex
	prefetched map[string]*Document
}

// New returns a Loader that fetches through f.
func New(f Fetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher:     f,
		logger:      slog.Default(),
		workers:     DefaultWorkers,
		blankPrefix: namePrefix,
		prefetched:  make(map[string]*Document),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.codecs == nil {
		l.codecs = NewRegistry(f)
	}
	return l
}

// namePrefix derives a name-based UUID from key, so a document loaded twice
// into the same place relabels its blank nodes identically.
func namePrefix(key string) string {
	return strings.ReplaceAll(uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String(), "-", "")
}

// loadKey identifies where a document lands: its resolved IRI plus the
// target context, or none when the document keeps its own graphs.
func loadKey(resolved string, target *term.Context) string {
	if target == nil {
		return resolved
	}
	return resolved + " " + target.String()
}

// Resolve resolves source against base. An empty base requires an absolute
// source.
func Resolve(source, base string) (string, error) {
	if base == "" {
		if !iri.IsAbsolute(source) {
			return "", &iri.Error{Kind: iri.KindMalformed, IRI: source, Reason: "relative source without a base"}
		}
		return source, nil
	}
	return iri.Resolve(source, base)
}

// Load fetches req.Source and merges its statements into st with a single
// commit. Nothing is written when any step fails.
func (l *Loader) Load(ctx context.Context, st *store.Store, req LoadRequest) (LoadResult, error) {
	resolved, err := Resolve(req.Source, req.Base)
	if err != nil {
		return LoadResult{}, err
	}
	res := LoadResult{IRI: resolved}

	doc, err := l.fetch(ctx, resolved)
	if err != nil {
		return res, err
	}
	res.Base = doc.IRI
	res.Bytes = len(doc.Body)

	codec := l.codecs.Select(doc.MediaType, doc.IRI)
	res.Codec = codec.Name()
	stmts, err := codec.Decode(ctx, doc.Body, doc.IRI)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		return res, decodeFailure(resolved, err)
	}
	res.Statements = len(stmts)

	quads := l.merge(stmts, loadKey(resolved, req.Target), req.Target)
	stats := st.Commit(nil, quads)
	res.Added = stats.Added

	l.logger.Debug("document loaded",
		"iri", resolved,
		"codec", res.Codec,
		"statements", res.Statements,
		"added", res.Added,
	)
	return res, nil
}

// merge places statements into contexts and relabels blank nodes.
func (l *Loader) merge(stmts []Statement, key string, target *term.Context) []term.Quad {
	prefix := l.blankPrefix(key)
	relabel := func(t term.Term) term.Term {
		if b, ok := t.(term.BlankNode); ok {
			return term.BlankNode(prefix + "_" + string(b))
		}
		return t
	}

	quads := make([]term.Quad, 0, len(stmts))
	for _, s := range stmts {
		gc := term.DefaultContext
		switch {
		case target != nil:
			gc = *target
		case s.Context != nil:
			gc = *s.Context
		}
		quads = append(quads, term.NewQuad(relabel(s.Triple.S), s.Triple.P, relabel(s.Triple.O), gc))
	}
	return quads
}

func (l *Loader) fetch(ctx context.Context, resolved string) (*Document, error) {
	l.mu.Lock()
	doc, ok := l.prefetched[resolved]
	delete(l.prefetched, resolved)
	l.mu.Unlock()
	if ok {
		return doc, nil
	}

	doc, err := l.fetcher.Fetch(ctx, resolved)
	if err != nil {
		var le *Error
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, unavailable(resolved, err)
	}
	return doc, nil
}

// Prefetch fetches sources concurrently and keeps the documents for the
// next Load of each. Sources are resolved against base first. Individual
// failures are not returned; the later Load fetches again and reports them
// in order.
func (l *Loader) Prefetch(ctx context.Context, base string, sources []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(l.workers, 1))

	seen := map[string]bool{}
	for _, src := range sources {
		resolved, err := Resolve(src, base)
		if err != nil || seen[resolved] || l.Fetched(resolved) {
			continue
		}
		seen[resolved] = true

		g.Go(func() error {
			doc, err := l.fetcher.Fetch(gctx, resolved)
			if err != nil {
				l.logger.Debug("prefetch failed", "iri", resolved, "error", err)
				return nil
			}
			l.mu.Lock()
			l.prefetched[resolved] = doc
			l.mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("prefetch: %w", err)
	}
	return ctx.Err()
}

// Fetched reports whether a prefetched document is waiting for resolved.
func (l *Loader) Fetched(resolved string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.prefetched[resolved]
	return ok
}

// ResetPrefetch drops every prefetched document not yet loaded.
func (l *Loader) ResetPrefetch() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.prefetched)
}
