package update

import (
	"context"
	"log/slog"

	"github.com/roach88/rdfup/internal/loader"
	"github.com/roach88/rdfup/internal/term"
)

func (e *Executor) load(ctx context.Context, logger *slog.Logger, base string, op Load) (OpResult, error) {
	if e.ld == nil {
		err := &UpdateError{Kind: KindSourceUnavailable, IRI: op.Source, Message: "no loader configured"}
		return e.downgrade(logger, op, err)
	}

	req := loader.LoadRequest{Source: op.Source, Base: base}
	if op.Into != nil {
		target := term.NamedContext(*op.Into)
		req.Target = &target
	}

	lr, err := e.ld.Load(ctx, e.st, req)
	if err != nil {
		return e.downgrade(logger, op, err)
	}
	return OpResult{
		Inserted: lr.Added,
		Loaded: &LoadSummary{
			IRI:        lr.IRI,
			Codec:      lr.Codec,
			Bytes:      lr.Bytes,
			Statements: lr.Statements,
		},
	}, nil
}

// downgrade turns a fetch or decode failure into a no-op when the operation
// is SILENT or the executor runs best-effort. Every other failure, and any
// failure without either flag, is returned as is.
func (e *Executor) downgrade(logger *slog.Logger, op Load, err error) (OpResult, error) {
	kind := KindOf(err)
	if kind != KindSourceUnavailable && kind != KindDecodeFailure {
		return OpResult{}, err
	}
	if !op.Silent && !e.bestEffort {
		return OpResult{}, err
	}
	logger.Warn("load skipped",
		"source", op.Source,
		"kind", kind,
		"silent", op.Silent,
		"error", err,
	)
	return OpResult{Downgraded: true}, nil
}
