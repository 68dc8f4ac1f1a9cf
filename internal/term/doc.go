// Package term defines the value types shared by every other rdfup package:
// RDF terms, triples, quads, contexts and variable bindings.
//
// This package contains type definitions and their canonical encodings only.
// All other internal packages import term; term imports nothing internal.
//
// Key design constraints:
//   - Term is sealed: IRI, BlankNode, Literal and Variable are the only kinds
//   - Terms are comparable values; structural equality is ==
//   - Literals built through the constructors are normalized (datatype always
//     set, language tags in BCP 47 case), so == matches RDF term equality
//   - Bindings are immutable once produced and never hold Variables
package term
