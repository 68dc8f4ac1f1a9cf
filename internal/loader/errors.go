package loader

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes load failures.
type ErrorKind string

const (
	// KindSourceUnavailable means the document could not be fetched.
	KindSourceUnavailable ErrorKind = "SourceUnavailable"

	// KindDecodeFailure means the fetched bytes could not be decoded.
	KindDecodeFailure ErrorKind = "DecodeFailure"
)

// Error is returned by fetchers, codecs and Loader.Load.
type Error struct {
	Kind ErrorKind
	IRI  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.IRI)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.IRI, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err wraps an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind == kind
	}
	return false
}

func unavailable(iri string, err error) *Error {
	return &Error{Kind: KindSourceUnavailable, IRI: iri, Err: err}
}

func decodeFailure(iri string, err error) *Error {
	return &Error{Kind: KindDecodeFailure, IRI: iri, Err: err}
}
