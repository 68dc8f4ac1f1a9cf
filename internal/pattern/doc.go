// Package pattern defines the graph pattern and expression trees consumed by
// the evaluator.
//
// Pattern and Expr are sealed interfaces using the marker method pattern.
// Only pointer types in this package implement them, which lets the
// evaluator switch exhaustively over a fixed set of node kinds:
//
//	switch p := p.(type) {
//	case *BGP:
//	    // match triple patterns
//	case *LeftJoin:
//	    // OPTIONAL
//	...
//	}
//
// # Algebra
//
// The node kinds follow the graph pattern algebra:
//   - BGP: conjunction of triple patterns
//   - Join, LeftJoin (OPTIONAL, with an optional filter), Union, Minus
//   - Filter and Extend (BIND)
//   - Graph: evaluate the inner pattern against a named context
//   - Values: inline solutions
//   - Empty: the empty group, one solution binding nothing
//
// A group such as { A OPTIONAL { B } BIND(e AS ?v) } becomes
// Extend(LeftJoin(A, B), ?v, e). Group helps build that shape.
//
// # Validation
//
// Validate rejects trees the evaluator cannot run, returning an
// *EvaluationError that names the offending token. Trees are validated once,
// before evaluation begins.
package pattern
