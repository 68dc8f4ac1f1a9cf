// Package store provides the in-memory multi-context quad store.
//
// The store holds a default context and any number of named contexts. Within
// a context quads form a set: adding a present triple or removing an absent
// one is a no-op.
//
// # Concurrency
//
// Store is safe for concurrent use. Reads (Contains, Triples, Quads) take a
// shared lock; Commit applies a whole batch of deletes and inserts under one
// exclusive lock, so readers never observe a half-applied batch. Add and
// Remove are single-quad commits.
//
// # Iteration
//
// Triples and Quads return iter.Seq values. Each invocation of the returned
// sequence takes a fresh point-in-time copy of the matching quads, so
// sequences are restartable and independent of one another. Results are
// sorted by term order, which keeps evaluation output stable for a given
// store content.
//
// # Index Selection
//
// Each context keeps SPO, POS and OSP indexes. A lookup uses the index whose
// leading slot is bound: subject first, then object, then predicate, and a
// full SPO scan when nothing is bound.
package store
