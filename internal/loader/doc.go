// Package loader implements the LOAD pipeline: resolve a source IRI, fetch
// its bytes, decode them into statements, and merge the statements into a
// store.
//
// Fetching and decoding are pluggable. A Fetcher turns an IRI into a
// Document; a Codec turns a Document into Statements. Fetchers exist for
// file: URIs, HTTP(S) with retries and an LRU response cache, and in-memory
// maps. Codecs are backed by json-gold and cover N-Triples, N-Quads and
// JSON-LD.
//
// Blank nodes are relabeled with a fresh prefix on every load, so two loads
// of the same document never share blank nodes.
package loader
