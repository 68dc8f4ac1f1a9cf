package store

import (
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/roach88/rdfup/internal/term"
)

// Store is an in-memory quad store partitioned into contexts.
// The default context always exists; named contexts are created lazily on
// first write and may remain, empty, after their quads are deleted.
type Store struct {
	mu      sync.RWMutex
	graphs  map[term.Context]*graph
	version uint64
}

// CommitStats reports how many quads a commit actually changed.
type CommitStats struct {
	Removed int
	Added   int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		graphs: map[term.Context]*graph{term.DefaultContext: newGraph()},
	}
}

// Add inserts q. Adding a quad already present is a no-op.
// Add panics if q is not a ground, well-formed quad.
func (s *Store) Add(q term.Quad) {
	s.Commit(nil, []term.Quad{q})
}

// Remove deletes q. Removing an absent quad is a no-op.
func (s *Store) Remove(q term.Quad) {
	s.Commit([]term.Quad{q}, nil)
}

// Commit removes every quad in deletes and then adds every quad in inserts,
// under a single exclusive lock. A quad in both lists ends up present.
func (s *Store) Commit(deletes, inserts []term.Quad) CommitStats {
	return s.Apply(Change{Deletes: deletes, Inserts: inserts})
}

// Change is one atomic store mutation. Create runs first, then Deletes,
// then Inserts, then Drop.
type Change struct {
	Create  []term.Context
	Deletes []term.Quad
	Inserts []term.Quad
	Drop    []term.Context
}

// Apply performs c under a single exclusive lock, so readers see either
// none or all of it. Quads removed by Drop count as Removed.
func (s *Store) Apply(c Change) CommitStats {
	for _, q := range c.Inserts {
		mustBeValid(q)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, ctx := range c.Create {
		changed = s.createLocked(ctx) || changed
	}

	var stats CommitStats
	for _, q := range c.Deletes {
		q = q.Canonical()
		if g, ok := s.graphs[q.Context]; ok && g.remove(q.Triple) {
			stats.Removed++
		}
	}
	for _, q := range c.Inserts {
		q = q.Canonical()
		g, ok := s.graphs[q.Context]
		if !ok {
			g = newGraph()
			s.graphs[q.Context] = g
		}
		if g.add(q.Triple) {
			stats.Added++
		}
	}
	for _, ctx := range c.Drop {
		n, ok := s.dropLocked(ctx)
		stats.Removed += n
		changed = ok || changed
	}
	if changed || stats.Removed > 0 || stats.Added > 0 {
		s.version++
	}
	return stats
}

func mustBeValid(q term.Quad) {
	if !q.IsGround() || !q.IsValid() {
		panic(fmt.Sprintf("store: refusing to add non-ground or malformed quad %s", q))
	}
}

// Contains reports whether q is present.
func (s *Store) Contains(q term.Quad) bool {
	if !q.IsGround() {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.graphs[q.Context]
	if !ok {
		return false
	}
	return g.contains(term.Key(q.S), term.Key(q.P), term.Key(q.O))
}

// Triples returns the triples of ctx matching the given slots. A nil slot is
// a wildcard. Variables are treated as wildcards too, so callers can pass
// pattern slots directly.
func (s *Store) Triples(ctx term.Context, subj, pred, obj term.Term) iter.Seq[term.Triple] {
	sk, pk, objKey := slotKey(subj), slotKey(pred), slotKey(obj)
	return func(yield func(term.Triple) bool) {
		for _, t := range s.match(ctx, sk, pk, objKey) {
			if !yield(t) {
				return
			}
		}
	}
}

// Match is the slice form of Triples.
func (s *Store) Match(ctx term.Context, subj, pred, obj term.Term) []term.Triple {
	return s.match(ctx, slotKey(subj), slotKey(pred), slotKey(obj))
}

func (s *Store) match(ctx term.Context, sk, pk, objKey string) []term.Triple {
	s.mu.RLock()
	g, found := s.graphs[ctx]
	var out []term.Triple
	if found {
		out = g.match(sk, pk, objKey, nil)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, term.CompareTriples)
	return out
}

func slotKey(t term.Term) string {
	if t == nil || term.IsVariable(t) {
		return ""
	}
	return term.Key(t)
}

// Quads returns every quad in ctx.
func (s *Store) Quads(ctx term.Context) iter.Seq[term.Quad] {
	return func(yield func(term.Quad) bool) {
		for _, t := range s.match(ctx, "", "", "") {
			if !yield(term.Quad{Triple: t, Context: ctx}) {
				return
			}
		}
	}
}

// All returns every quad in every context, default context first.
func (s *Store) All() iter.Seq[term.Quad] {
	return func(yield func(term.Quad) bool) {
		for _, ctx := range s.Contexts() {
			for q := range s.Quads(ctx) {
				if !yield(q) {
					return
				}
			}
		}
	}
}

// Contexts returns the contexts holding at least one quad, plus the default
// context, which is always listed first.
func (s *Store) Contexts() []term.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []term.Context{term.DefaultContext}
	for ctx, g := range s.graphs {
		if !ctx.IsDefault() && g.size > 0 {
			out = append(out, ctx)
		}
	}
	slices.SortFunc(out, term.CompareContexts)
	return out
}

// NamedContexts returns the named contexts that exist, including empty ones
// created explicitly, sorted by IRI.
func (s *Store) NamedContexts() []term.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []term.Context
	for ctx := range s.graphs {
		if !ctx.IsDefault() {
			out = append(out, ctx)
		}
	}
	slices.SortFunc(out, term.CompareContexts)
	return out
}

// HasContext reports whether ctx exists. The default context always does;
// a named context exists once written to or created, until dropped.
func (s *Store) HasContext(ctx term.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.graphs[ctx]
	return ok
}

// CreateContext makes an empty named context. It returns false if the
// context already exists.
func (s *Store) CreateContext(ctx term.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.createLocked(ctx) {
		return false
	}
	s.version++
	return true
}

func (s *Store) createLocked(ctx term.Context) bool {
	if _, ok := s.graphs[ctx]; ok {
		return false
	}
	s.graphs[ctx] = newGraph()
	return true
}

// DropContext removes ctx and its quads, returning the number of quads
// removed. Dropping the default context empties it. Dropping a context that
// does not exist is a no-op.
func (s *Store) DropContext(ctx term.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.dropLocked(ctx)
	if ok {
		s.version++
	}
	return n
}

func (s *Store) dropLocked(ctx term.Context) (int, bool) {
	g, ok := s.graphs[ctx]
	if !ok {
		return 0, false
	}
	n := g.size
	if ctx.IsDefault() {
		s.graphs[ctx] = newGraph()
	} else {
		delete(s.graphs, ctx)
	}
	return n, true
}

// Len returns the number of quads in ctx.
func (s *Store) Len(ctx term.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, ok := s.graphs[ctx]; ok {
		return g.size
	}
	return 0
}

// Size returns the number of quads across all contexts.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, g := range s.graphs {
		n += g.size
	}
	return n
}

// Version increases with every commit that changed the store.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns an independent deep copy of the store.
func (s *Store) Snapshot() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := &Store{graphs: make(map[term.Context]*graph, len(s.graphs)), version: s.version}
	for ctx, g := range s.graphs {
		c.graphs[ctx] = g.clone()
	}
	return c
}
