// Package update applies update requests to a quad store.
//
// A Request is an ordered list of Operations. The Executor runs them one at
// a time, committing each before the next begins, so every operation sees
// the effects of the ones before it.
//
// # Bind-once
//
// A Modify operation evaluates its WHERE pattern exactly once, in full,
// against the store as it was before the operation. Every DELETE and INSERT
// template is instantiated from that one solution multiset, and the
// resulting delete and insert sets are committed together in a single
// store.Commit, deletes first. No binding ever observes a triple written by
// another binding of the same operation.
//
// # Failure
//
// The first failing operation stops the request. Operations committed
// before it stay committed; the failing operation commits nothing. Template
// rows that reference an unbound variable are not failures: they are
// skipped and counted.
//
// # Concurrency
//
// Executor serializes operations with a mutex. Runner wraps an Executor
// with a FIFO request queue drained by a single goroutine, for callers that
// prefer the actor form:
//
//	r := update.NewRunner(exec)
//	go r.Run(ctx)
//	res, err := r.Submit(ctx, req)
package update
