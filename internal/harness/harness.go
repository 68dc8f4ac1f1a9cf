package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/roach88/rdfup/internal/compiler"
	"github.com/roach88/rdfup/internal/loader"
	"github.com/roach88/rdfup/internal/store"
	"github.com/roach88/rdfup/internal/testutil"
	"github.com/roach88/rdfup/internal/update"
)

// Harness checks one scenario run.
type Harness struct {
	logger *slog.Logger
}

// Options adjusts a run. The zero value discards logs.
type Options struct {
	Logger *slog.Logger
}

// Run executes a scenario with default options.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithOptions(context.Background(), scenario, Options{})
}

// RunWithOptions executes a scenario against a fresh store.
//
// The returned error covers problems running the scenario at all: an
// unreadable data file or a request that does not compile. Failed
// expectations and assertions are reported in Result.Errors.
func RunWithOptions(ctx context.Context, scenario *Scenario, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = testutil.DiscardLogger()
	}

	doc, err := compiler.CompileFile(scenario.Request)
	if err != nil {
		return nil, fmt.Errorf("failed to compile request: %w", err)
	}

	fetcher, err := buildFetcher(scenario.Data)
	if err != nil {
		return nil, err
	}

	st := store.New()
	ld := loader.New(fetcher,
		loader.WithLogger(logger),
		loader.WithBlankPrefix(testutil.KeyedLabels("load")),
	)
	exec := update.New(st, ld,
		update.WithLogger(logger),
		update.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.RequestID)),
		update.WithClock(testutil.NewDeterministicClock()),
		update.WithBlankPrefix(testutil.SequentialLabels("new")),
		update.WithBestEffortLoad(scenario.BestEffortLoad),
	)
	h := &Harness{logger: logger}

	result := NewResult()
	res, applyErr := exec.Apply(ctx, doc.Request)
	result.RequestID = res.RequestID
	result.State = res.State.String()
	for _, op := range res.Ops {
		result.Ops = append(result.Ops, summarize(op))
	}
	if applyErr != nil {
		result.Failure = applyErr.Error()
	}
	h.checkFailure(scenario.Failure, res, applyErr, result)
	h.checkExpect(scenario.Expect, result)

	for q := range st.All() {
		result.Dataset = append(result.Dataset, q.String())
	}

	if doc.Query != nil {
		sols, err := exec.Query(ctx, doc.Query.Where)
		if err != nil {
			result.AddError(fmt.Sprintf("query: %v", err))
		} else {
			if len(doc.Query.Vars) > 0 {
				sols = sols.Project(doc.Query.Vars)
			}
			result.Solutions = sols.Strings()
			slices.Sort(result.Solutions)
		}
	}

	actx := &AssertionContext{
		Store:    st,
		Base:     doc.Request.Base,
		Prefixes: doc.Prefixes,
		Result:   result,
	}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func buildFetcher(data []DataDoc) (loader.MapFetcher, error) {
	fetcher := loader.MapFetcher{}
	for _, d := range data {
		body := d.Body
		if d.File != "" {
			raw, err := os.ReadFile(d.File)
			if err != nil {
				return nil, fmt.Errorf("failed to read data file for %s: %w", d.IRI, err)
			}
			body = string(raw)
		}
		fetcher.Put(d.IRI, d.MediaType, body)
	}
	return fetcher, nil
}

func (h *Harness) checkFailure(want *FailureExpect, res update.Result, err error, result *Result) {
	if want == nil {
		if err != nil {
			result.AddError(fmt.Sprintf("request failed: %v", err))
		}
		return
	}
	if err == nil {
		result.AddError(fmt.Sprintf("expected failure %s at operation %d, request completed", want.Kind, want.Operation))
		return
	}
	var uerr *update.UpdateError
	if !errors.As(err, &uerr) {
		result.AddError(fmt.Sprintf("expected failure %s, got %v", want.Kind, err))
		return
	}
	if string(uerr.Kind) != want.Kind || uerr.OpIndex != want.Operation {
		result.AddError(fmt.Sprintf("expected failure %s at operation %d, got %s at operation %d",
			want.Kind, want.Operation, uerr.Kind, uerr.OpIndex))
	}
	h.logger.Debug("expected failure observed", "kind", uerr.Kind, "index", res.Current)
}

func (h *Harness) checkExpect(expect []OpExpect, result *Result) {
	for i, want := range expect {
		if i >= len(result.Ops) {
			result.AddError(fmt.Sprintf("expect[%d]: only %d operations committed", i, len(result.Ops)))
			return
		}
		got := result.Ops[i]
		if got.Kind != want.Kind {
			result.AddError(fmt.Sprintf("expect[%d]: kind %s, got %s", i, want.Kind, got.Kind))
			continue
		}
		checkCount(result, i, "solutions", want.Solutions, got.Solutions)
		checkCount(result, i, "deleted", want.Deleted, got.Deleted)
		checkCount(result, i, "inserted", want.Inserted, got.Inserted)
		checkCount(result, i, "skipped", want.Skipped, got.Skipped)
		if want.Downgraded != got.Downgraded {
			result.AddError(fmt.Sprintf("expect[%d]: downgraded %t, got %t", i, want.Downgraded, got.Downgraded))
		}
	}
}

func checkCount(result *Result, i int, name string, want *int, got int) {
	if want != nil && *want != got {
		result.AddError(fmt.Sprintf("expect[%d]: %s %d, got %d", i, name, *want, got))
	}
}
