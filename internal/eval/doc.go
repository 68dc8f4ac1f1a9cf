// Package eval computes solution multisets for graph patterns over a quad
// store.
//
// Evaluation is bottom-up and fully materialized: each pattern node yields a
// slice of bindings that its parent combines. Row order is deterministic,
// because store scans are sorted and every operator preserves left-major
// order.
//
// Expression errors never escape evaluation. A FILTER whose condition errors
// drops the row; a BIND whose expression errors leaves its variable unbound.
// Errors returned from Evaluate are structural (an invalid tree), a
// cancelled context, or an exceeded solution limit.
package eval
