package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/rdfup/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Journal string
	Limit   int
}

// RequestRecord is the JSON form of a journaled request.
type RequestRecord struct {
	ID         string            `json:"id"`
	Seq        int64             `json:"seq"`
	Base       string            `json:"base,omitempty"`
	State      string            `json:"state"`
	OpCount    int               `json:"op_count"`
	Error      string            `json:"error,omitempty"`
	Operations []OperationRecord `json:"operations,omitempty"`
}

// OperationRecord is the JSON form of a journaled operation.
type OperationRecord struct {
	Index     int    `json:"index"`
	Seq       int64  `json:"seq"`
	Kind      string `json:"kind"`
	Detail    string `json:"detail"`
	Solutions int    `json:"solutions"`
	Deleted   int    `json:"deleted"`
	Inserted  int    `json:"inserted"`
	Skipped   int    `json:"skipped"`
	DeltaHash string `json:"delta_hash"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [request-id]",
		Short: "Show journaled requests",
		Long: `List the requests recorded in a journal, oldest first, or show one
request with the operations it committed.

The journal is an audit record. It is never replayed into a dataset.

Examples:
  rdfup history --journal rdfup.db
  rdfup history --journal rdfup.db --limit 10
  rdfup history --journal rdfup.db 0192f3c4-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runHistory(cmd.Context(), opts, id, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "journal database path (default from config)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show only the most recent N requests (0 = all)")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, requestID string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	path := opts.Journal
	if path == "" {
		path = opts.config().Journal
	}
	if path == "" {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "no journal configured (use --journal)", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("journal not found: %s", path), nil)
	}

	j, err := journal.Open(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to open journal", err)
	}
	defer j.Close()

	if requestID != "" {
		return showRequest(ctx, formatter, j, requestID)
	}

	reqs, err := j.ReadHistory(ctx, opts.Limit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to read journal", err)
	}
	records := make([]RequestRecord, len(reqs))
	for i, r := range reqs {
		records[i] = toRequestRecord(r)
	}

	if formatter.Format == "json" {
		return formatter.Success(records)
	}
	if len(records) == 0 {
		fmt.Fprintln(formatter.Writer, "No requests journaled.")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tREQUEST\tSTATE\tOPS\tERROR")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", r.Seq, r.ID, r.State, r.OpCount, r.Error)
	}
	return tw.Flush()
}

func showRequest(ctx context.Context, formatter *OutputFormatter, j *journal.Journal, id string) error {
	req, err := j.ReadRequest(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("request %s not in journal", id), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to read journal", err)
	}
	ops, err := j.ReadOperations(ctx, id)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to read journal", err)
	}

	record := toRequestRecord(req)
	for _, op := range ops {
		record.Operations = append(record.Operations, OperationRecord{
			Index:     op.Index,
			Seq:       op.Seq,
			Kind:      op.Kind,
			Detail:    op.Detail,
			Solutions: op.Solutions,
			Deleted:   op.Deleted,
			Inserted:  op.Inserted,
			Skipped:   op.Skipped,
			DeltaHash: op.DeltaHash,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(record)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Request %s (%s, seq %d)\n", record.ID, record.State, record.Seq)
	if record.Base != "" {
		fmt.Fprintf(w, "  base: %s\n", record.Base)
	}
	if record.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", record.Error)
	}
	fmt.Fprintf(w, "  %d of %d operation(s) committed\n", len(record.Operations), record.OpCount)
	for _, op := range record.Operations {
		fmt.Fprintf(w, "  [%d] %s solutions=%d deleted=%d inserted=%d skipped=%d\n",
			op.Index, op.Detail, op.Solutions, op.Deleted, op.Inserted, op.Skipped)
	}
	return nil
}

func toRequestRecord(r journal.Request) RequestRecord {
	return RequestRecord{
		ID:      r.ID,
		Seq:     r.Seq,
		Base:    r.Base,
		State:   r.State,
		OpCount: r.OpCount,
		Error:   r.Error,
	}
}
