package iri

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes IRI failures.
type ErrorKind string

const (
	// KindMalformed indicates input that is not a well-formed IRI reference,
	// or a relative reference where an absolute one is required.
	KindMalformed ErrorKind = "MalformedIri"

	// KindRebaseUnreachable indicates a URL that does not lie under the old base.
	KindRebaseUnreachable ErrorKind = "RebaseUnreachable"

	// KindUnsupportedAuthority indicates a file URI naming a host the path
	// flavor cannot address.
	KindUnsupportedAuthority ErrorKind = "UnsupportedAuthority"

	// KindPercentDecode indicates a malformed percent-escape.
	KindPercentDecode ErrorKind = "PercentDecodeError"
)

// Error is returned by every function in this package.
type Error struct {
	Kind   ErrorKind
	IRI    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %q", e.Kind, e.Reason, e.IRI)
}

// IsKind reports whether err wraps an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind == kind
	}
	return false
}

func newError(kind ErrorKind, iri, format string, args ...any) *Error {
	return &Error{Kind: kind, IRI: iri, Reason: fmt.Sprintf(format, args...)}
}
