package update

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/rdfup/internal/eval"
	"github.com/roach88/rdfup/internal/journal"
	"github.com/roach88/rdfup/internal/loader"
	"github.com/roach88/rdfup/internal/pattern"
	"github.com/roach88/rdfup/internal/store"
)

// Journal receives an audit record of each request and each committed
// operation. *journal.Journal implements it.
type Journal interface {
	WriteRequest(ctx context.Context, req journal.Request) error
	WriteOperation(ctx context.Context, op journal.Operation) error
}

// Executor applies requests to one store.
//
// Thread-safety model:
//   - Apply and Query are safe from any goroutine
//   - Apply calls are serialized; one operation runs at a time
//   - Query evaluates without the executor lock and may interleave with
//     Apply, but never with a commit, which the store serializes
type Executor struct {
	mu sync.Mutex

	st     *store.Store
	ld     *loader.Loader
	logger *slog.Logger

	journal     Journal
	metrics     *Metrics
	ids         IDGenerator
	clock       Sequencer
	blankPrefix func() string

	bestEffort   bool
	maxSolutions int
	prefetch     bool
}

// New returns an Executor over st. ld may be nil when requests never LOAD.
func New(st *store.Store, ld *loader.Loader, opts ...Option) *Executor {
	e := &Executor{
		st:          st,
		ld:          ld,
		logger:      slog.Default(),
		ids:         UUIDv7Generator{},
		clock:       NewClock(),
		blankPrefix: randomPrefix,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the store the executor writes to.
func (e *Executor) Store() *store.Store { return e.st }

func (e *Executor) evaluator() *eval.Evaluator {
	return eval.New(e.st, eval.WithLogger(e.logger), eval.WithMaxSolutions(e.maxSolutions))
}

// Query evaluates p against the store's default dataset.
func (e *Executor) Query(ctx context.Context, p pattern.Pattern) (eval.Solutions, error) {
	return e.evaluator().Evaluate(ctx, p, eval.DefaultDataset())
}

// Apply runs req's operations in order. On failure the returned error is
// the *UpdateError also stored in Result.Err, and Result.Ops lists the
// operations committed before it.
func (e *Executor) Apply(ctx context.Context, req Request) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := Result{RequestID: e.ids.Generate(), State: StatePending}
	logger := e.logger.With("request", res.RequestID)
	logger.Info("request started", "operations", len(req.Operations))

	if e.prefetch && e.ld != nil {
		// Documents a failed request never reached must not leak into the next.
		defer e.ld.ResetPrefetch()
		if sources := loadSources(req); len(sources) > 0 {
			if err := e.ld.Prefetch(ctx, req.Base, sources); err != nil {
				logger.Warn("prefetch stopped", "error", err)
			}
		}
	}

	for i, op := range req.Operations {
		res.State = StateRunning
		res.Current = i

		if err := ctx.Err(); err != nil {
			return e.fail(ctx, logger, req, res, op, wrapError(i, err))
		}

		opRes, err := e.applyOp(ctx, logger, req.Base, op)
		if err != nil {
			return e.fail(ctx, logger, req, res, op, wrapError(i, err))
		}
		opRes.Index = i
		opRes.Kind = op.Kind()
		opRes.Seq = e.clock.Next()
		res.Ops = append(res.Ops, opRes)

		e.metrics.observe(opRes)
		e.recordOperation(ctx, logger, res.RequestID, op, opRes)
		logger.Debug("operation committed",
			"index", i,
			"kind", opRes.Kind,
			"deleted", opRes.Deleted,
			"inserted", opRes.Inserted,
			"skipped", opRes.Skipped,
		)
	}

	res.State = StateCompleted
	res.Current = len(req.Operations)
	e.recordRequest(ctx, logger, req, res)
	logger.Info("request completed", "operations", len(res.Ops))
	return res, nil
}

func (e *Executor) fail(ctx context.Context, logger *slog.Logger, req Request, res Result, op Operation, uerr *UpdateError) (Result, error) {
	res.State = StateFailed
	res.Err = uerr
	if op != nil {
		e.metrics.observeFailure(op.Kind())
	}
	e.recordRequest(context.WithoutCancel(ctx), logger, req, res)
	logger.Error("request failed",
		"index", uerr.OpIndex,
		"kind", uerr.Kind,
		"error", uerr,
	)
	return res, uerr
}

func (e *Executor) applyOp(ctx context.Context, logger *slog.Logger, base string, op Operation) (OpResult, error) {
	if err := validateOp(op); err != nil {
		return OpResult{}, err
	}

	switch op := op.(type) {
	case Load:
		return e.load(ctx, logger, base, op)
	case Modify:
		return e.modify(ctx, logger, op)
	case InsertData:
		return e.insertData(op), nil
	case DeleteData:
		return e.deleteData(op), nil
	case Clear:
		return e.clear(op)
	case Create:
		return e.create(op)
	case Drop:
		return e.drop(op)
	case Add:
		return e.transfer(op.From, op.To, op.Silent, false, false)
	case Copy:
		return e.transfer(op.From, op.To, op.Silent, true, false)
	case Move:
		return e.transfer(op.From, op.To, op.Silent, true, true)
	}
	return OpResult{}, invalid(fmt.Sprintf("%T", op), "unknown operation")
}

func loadSources(req Request) []string {
	var out []string
	for _, op := range req.Operations {
		if l, ok := op.(Load); ok {
			out = append(out, l.Source)
		}
	}
	return out
}

func (e *Executor) recordRequest(ctx context.Context, logger *slog.Logger, req Request, res Result) {
	if e.journal == nil {
		return
	}
	rec := journal.Request{
		ID:      res.RequestID,
		Seq:     e.clock.Next(),
		Base:    req.Base,
		State:   res.State.String(),
		OpCount: len(req.Operations),
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	if err := e.journal.WriteRequest(ctx, rec); err != nil {
		logger.Warn("journal write failed", "error", err)
	}
}

func (e *Executor) recordOperation(ctx context.Context, logger *slog.Logger, requestID string, op Operation, r OpResult) {
	if e.journal == nil {
		return
	}
	rec := journal.Operation{
		RequestID: requestID,
		Index:     r.Index,
		Seq:       r.Seq,
		Kind:      string(r.Kind),
		Detail:    Describe(op),
		Solutions: r.Solutions,
		Deleted:   r.Deleted,
		Inserted:  r.Inserted,
		Skipped:   r.Skipped,
		DeltaHash: r.DeltaHash,
	}
	if err := e.journal.WriteOperation(ctx, rec); err != nil {
		logger.Warn("journal write failed", "error", err)
	}
}
