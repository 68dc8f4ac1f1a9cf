package update

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/rdfup/internal/iri"
	"github.com/roach88/rdfup/internal/loader"
	"github.com/roach88/rdfup/internal/pattern"
)

// ErrorKind is the shared error taxonomy across the IRI resolver, the
// loader, the evaluator and the executor.
type ErrorKind string

const (
	KindMalformedIRI         ErrorKind = "MalformedIri"
	KindRebaseUnreachable    ErrorKind = "RebaseUnreachable"
	KindUnsupportedAuthority ErrorKind = "UnsupportedAuthority"
	KindPercentDecode        ErrorKind = "PercentDecodeError"
	KindSourceUnavailable    ErrorKind = "SourceUnavailable"
	KindDecodeFailure        ErrorKind = "DecodeFailure"

	// KindUnboundVariable is never fatal. It labels skipped template rows in
	// logs.
	KindUnboundVariable ErrorKind = "UnboundVariableInTemplate"
	KindEvaluation      ErrorKind = "EvaluationError"

	KindGraphNotFound ErrorKind = "GraphNotFound"
	KindGraphExists   ErrorKind = "GraphExists"

	// KindCancelled reports a request stopped by its context between
	// operations.
	KindCancelled ErrorKind = "Cancelled"
)

// UpdateError reports the operation that stopped a request.
//
// Exactly one of IRI, Variable or Token is usually set, naming the clause
// that failed.
type UpdateError struct {
	OpIndex  int
	Kind     ErrorKind
	IRI      string
	Variable string
	Token    string
	Message  string
	Err      error
}

func (e *UpdateError) Error() string {
	msg := fmt.Sprintf("operation %d: %s", e.OpIndex, e.Kind)
	switch {
	case e.IRI != "":
		msg += fmt.Sprintf(" <%s>", e.IRI)
	case e.Variable != "":
		msg += " ?" + e.Variable
	case e.Token != "":
		msg += fmt.Sprintf(" at %q", e.Token)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *UpdateError) Unwrap() error { return e.Err }

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// KindOf maps err onto the shared taxonomy. It understands *UpdateError,
// *iri.Error, *loader.Error, *pattern.EvaluationError and context errors,
// and returns "" for anything else.
func KindOf(err error) ErrorKind {
	var ue *UpdateError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	var le *loader.Error
	if errors.As(err, &le) {
		// A loader error may wrap an IRI error from a fetcher; the loader
		// kind wins.
		return ErrorKind(le.Kind)
	}
	var ie *iri.Error
	if errors.As(err, &ie) {
		return ErrorKind(ie.Kind)
	}
	var ee *pattern.EvaluationError
	if errors.As(err, &ee) {
		return KindEvaluation
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}
	return ""
}

// wrapError builds the UpdateError for a failure of operation i.
func wrapError(i int, err error) *UpdateError {
	var ue *UpdateError
	if errors.As(err, &ue) {
		ue.OpIndex = i
		return ue
	}

	out := &UpdateError{OpIndex: i, Kind: KindOf(err), Message: err.Error(), Err: err}
	if out.Kind == "" {
		out.Kind = KindEvaluation
	}

	var le *loader.Error
	var ie *iri.Error
	var ee *pattern.EvaluationError
	switch {
	case errors.As(err, &le):
		out.IRI = le.IRI
		if le.Err != nil {
			out.Message = le.Err.Error()
		}
	case errors.As(err, &ie):
		out.IRI = ie.IRI
		out.Message = ie.Reason
	case errors.As(err, &ee):
		out.Token = ee.Token
		out.Message = ee.Message
	}
	return out
}

func graphNotFound(g string) *UpdateError {
	return &UpdateError{Kind: KindGraphNotFound, IRI: g, Message: "graph does not exist"}
}

func graphExists(g string) *UpdateError {
	return &UpdateError{Kind: KindGraphExists, IRI: g, Message: "graph already exists"}
}

func invalid(token, format string, args ...any) *pattern.EvaluationError {
	return &pattern.EvaluationError{Token: token, Message: fmt.Sprintf(format, args...)}
}
