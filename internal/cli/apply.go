package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/rdfup/internal/compiler"
	"github.com/roach88/rdfup/internal/loader"
	"github.com/roach88/rdfup/internal/term"
	"github.com/roach88/rdfup/internal/update"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Data       []string // local files loaded into the default graph first
	BestEffort bool
	Journal    string
	Out        string
}

// OperationSummary is the JSON form of one committed operation.
type OperationSummary struct {
	Index      int    `json:"index"`
	Kind       string `json:"kind"`
	Solutions  int    `json:"solutions"`
	Deleted    int    `json:"deleted"`
	Inserted   int    `json:"inserted"`
	Skipped    int    `json:"skipped"`
	Downgraded bool   `json:"downgraded,omitempty"`
}

// ApplyResult is the JSON payload of a successful apply.
type ApplyResult struct {
	RequestID  string             `json:"request_id"`
	State      string             `json:"state"`
	Operations []OperationSummary `json:"operations"`
	Deleted    int                `json:"deleted"`
	Inserted   int                `json:"inserted"`
	Skipped    int                `json:"skipped"`
	Quads      int                `json:"quads"`
	Out        string             `json:"out,omitempty"`
	NQuads     string             `json:"nquads,omitempty"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <request.cue>",
		Short: "Apply a request and print the resulting dataset",
		Long: `Apply every operation of a request to a fresh dataset and print the
final dataset as N-Quads.

Data files given with --data are loaded into the default graph before the
first operation runs. A failing operation stops the request; operations
before it stay applied.

Exit codes:
  0 - Request completed
  1 - An operation failed
  2 - Command error (missing request, bad data file, etc.)

Examples:
  rdfup apply update.cue --data people.nq
  rdfup apply update.cue --data people.nq --out result.nq
  rdfup apply update.cue --journal rdfup.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Data, "data", nil, "data file loaded into the default graph (repeatable)")
	cmd.Flags().BoolVar(&opts.BestEffort, "best-effort", false, "turn failed LOAD fetches into no-ops")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "journal database path (overrides config)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write N-Quads to this file instead of stdout")

	return cmd
}

// prepare compiles a request and builds a session with the data files
// loaded. Errors come back already reported through the formatter.
func prepare(ctx context.Context, opts *RootOptions, formatter *OutputFormatter, cmd *cobra.Command,
	requestPath string, data []string, so sessionOptions) (*compiler.Document, *session, error) {
	if _, err := os.Stat(requestPath); err != nil {
		return nil, nil, formatter.Fail(ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("request file not found: %s", requestPath), nil)
	}
	doc, err := compiler.CompileFile(requestPath)
	if err != nil {
		return nil, nil, formatter.Fail(ExitCommandError, ErrCodeCompile, "request does not compile", err)
	}

	s, err := newSession(opts.config(), opts.logger(cmd), so)
	if err != nil {
		return nil, nil, formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to set up", err)
	}
	if err := s.loadData(ctx, data); err != nil {
		_ = s.Close()
		return nil, nil, formatter.Fail(ExitCommandError, ErrCodeLoad, "failed to load data", err)
	}
	formatter.VerboseLog("Loaded %d data file(s), %d quad(s)", len(data), s.store.Size())
	return doc, s, nil
}

func runApply(ctx context.Context, opts *ApplyOptions, requestPath string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	doc, s, err := prepare(ctx, opts.RootOptions, formatter, cmd, requestPath, opts.Data, sessionOptions{
		JournalPath:    opts.Journal,
		BestEffortLoad: opts.BestEffort,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.exec.Apply(ctx, doc.Request)
	if opts.Verbose {
		s.logMetrics()
	}
	if err != nil {
		return reportUpdateFailure(formatter, res, err)
	}

	quads := slices.Collect(s.store.All())
	nq, err := loader.SerializeNQuads(quads)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, "failed to serialize dataset", err)
	}
	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, []byte(nq), 0o644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to write output", err)
		}
	}

	result := newApplyResult(res, quads)
	if formatter.Format == "json" {
		if opts.Out != "" {
			result.Out = opts.Out
		} else {
			result.NQuads = nq
		}
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	if opts.Out == "" {
		fmt.Fprint(w, nq)
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ %s\n", result.summary())
		return nil
	}
	fmt.Fprintf(w, "✓ %s\n", result.summary())
	fmt.Fprintf(w, "  wrote %d quad(s) to %s\n", result.Quads, opts.Out)
	return nil
}

func newApplyResult(res update.Result, quads []term.Quad) ApplyResult {
	deleted, inserted, skipped := res.Totals()
	out := ApplyResult{
		RequestID:  res.RequestID,
		State:      res.State.String(),
		Operations: make([]OperationSummary, 0, len(res.Ops)),
		Deleted:    deleted,
		Inserted:   inserted,
		Skipped:    skipped,
		Quads:      len(quads),
	}
	for _, op := range res.Ops {
		out.Operations = append(out.Operations, OperationSummary{
			Index:      op.Index,
			Kind:       string(op.Kind),
			Solutions:  op.Solutions,
			Deleted:    op.Deleted,
			Inserted:   op.Inserted,
			Skipped:    op.Skipped,
			Downgraded: op.Downgraded,
		})
	}
	return out
}

func (r ApplyResult) summary() string {
	return fmt.Sprintf("request %s %s: %d operation(s), deleted=%d inserted=%d skipped=%d",
		r.RequestID, r.State, len(r.Operations), r.Deleted, r.Inserted, r.Skipped)
}

// reportUpdateFailure reports a failed request. Operation failures exit 1.
func reportUpdateFailure(formatter *OutputFormatter, res update.Result, err error) error {
	var uerr *update.UpdateError
	if !errors.As(err, &uerr) {
		return formatter.Fail(ExitFailure, ErrCodeUpdate, "request failed", err)
	}
	details := map[string]any{
		"request_id": res.RequestID,
		"operation":  uerr.OpIndex,
		"kind":       string(uerr.Kind),
		"committed":  len(res.Ops),
	}
	_ = formatter.Error(ErrCodeUpdate, uerr.Error(), details)
	return WrapExitError(ExitFailure, fmt.Sprintf("%s: request %s failed", ErrCodeUpdate, res.RequestID), err)
}
