package loader

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/roach88/rdfup/internal/iri"
)

// Document is a fetched source.
type Document struct {
	// IRI is the document's final location; it is the base for decoding.
	IRI string
	// MediaType is the declared media type without parameters, or empty
	// when the transport declares none.
	MediaType string
	Body      []byte
}

// Fetcher retrieves the bytes behind an absolute IRI. Failures are reported
// as *Error with KindSourceUnavailable.
type Fetcher interface {
	Fetch(ctx context.Context, iri string) (*Document, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, iri string) (*Document, error)

func (f FetcherFunc) Fetch(ctx context.Context, iri string) (*Document, error) {
	return f(ctx, iri)
}

// FileFetcher reads file: URIs from the local filesystem.
type FileFetcher struct {
	Flavor iri.PathFlavor
}

func (f FileFetcher) Fetch(ctx context.Context, uri string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(uri, err)
	}
	flavor := f.Flavor
	if flavor == 0 {
		flavor = iri.Posix
	}
	path, err := iri.FileURIToPath(uri, flavor)
	if err != nil {
		return nil, unavailable(uri, err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, unavailable(uri, err)
	}
	return &Document{IRI: uri, Body: body}, nil
}

// MapFetcher serves documents from memory, keyed by IRI.
type MapFetcher map[string]*Document

// Put registers body under uri.
func (m MapFetcher) Put(uri, mediaType, body string) {
	m[uri] = &Document{IRI: uri, MediaType: mediaType, Body: []byte(body)}
}

func (m MapFetcher) Fetch(ctx context.Context, uri string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(uri, err)
	}
	doc, ok := m[uri]
	if !ok {
		return nil, unavailable(uri, fmt.Errorf("no such document"))
	}
	cp := *doc
	if cp.IRI == "" {
		cp.IRI = uri
	}
	cp.Body = append([]byte(nil), doc.Body...)
	return &cp, nil
}

// SchemeFetcher dispatches on the IRI scheme, compared case-insensitively.
type SchemeFetcher map[string]Fetcher

func (s SchemeFetcher) Fetch(ctx context.Context, uri string) (*Document, error) {
	scheme, _, ok := strings.Cut(uri, ":")
	if !ok {
		return nil, unavailable(uri, fmt.Errorf("missing scheme"))
	}
	f, ok := s[strings.ToLower(scheme)]
	if !ok {
		return nil, unavailable(uri, fmt.Errorf("no fetcher for scheme %q", scheme))
	}
	return f.Fetch(ctx, uri)
}
