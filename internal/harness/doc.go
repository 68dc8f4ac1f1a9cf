// Package harness runs update scenarios end to end.
//
// A scenario names a CUE request, the documents its LOAD operations may
// fetch, and what the run must produce. Each scenario executes against a
// fresh store with a fixed request ID, a deterministic clock and
// sequential blank node labels, so the final dataset renders byte for byte
// the same on every run and can be compared with a golden snapshot.
//
// # Scenario Format
//
//	name: counter_bind_once
//	description: "WHERE is evaluated once against the pre-image"
//	request: counter.cue
//	request_id: req-0001
//	best_effort_load: false
//	data:
//	  - iri: http://example.org/data.nq
//	    media_type: application/n-quads
//	    body: |
//	      <http://example.org/a> <http://example.org/p> "1" .
//	  - iri: http://example.org/people.jsonld
//	    file: people.jsonld
//	expect:
//	  - kind: modify
//	    solutions: 2
//	    deleted: 1
//	    inserted: 2
//	failure:
//	  kind: GraphNotFound
//	  operation: 3
//	assertions:
//	  - type: quad_present
//	    quad: ["ex:bar", "ex:value", 4]
//	  - type: graph_size
//	    graph: default
//	    count: 3
//	  - type: query_rows
//	    rows: ['{?o="4"^^xsd:integer}']
//
// Terms in assertions use the request's term syntax, with its base and
// prefixes.
//
// # Assertion Types
//
//   - quad_present: the quad is in the final dataset
//   - quad_absent: the quad is not in the final dataset
//   - graph_size: a graph holds exactly count quads
//   - graph_exists: a named graph exists, even when empty
//   - query_rows: the request's query returns exactly these rows, in any
//     order
package harness
