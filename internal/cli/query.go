package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/rdfup/internal/eval"
	"github.com/roach88/rdfup/internal/term"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Data       []string
	BestEffort bool
}

// QueryResult is the JSON payload of the query command. Unbound variables
// are absent from a row.
type QueryResult struct {
	RequestID string              `json:"request_id"`
	Vars      []string            `json:"vars"`
	Rows      []map[string]string `json:"rows"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <request.cue>",
		Short: "Apply a request, then evaluate its query",
		Long: `Apply the operations of a request, then evaluate the request's query
block against the resulting dataset and print the solutions.

A request with no operations simply queries the data files.

Examples:
  rdfup query report.cue --data people.nq
  rdfup query report.cue --data people.nq --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Data, "data", nil, "data file loaded into the default graph (repeatable)")
	cmd.Flags().BoolVar(&opts.BestEffort, "best-effort", false, "turn failed LOAD fetches into no-ops")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, requestPath string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	doc, s, err := prepare(ctx, opts.RootOptions, formatter, cmd, requestPath, opts.Data, sessionOptions{
		BestEffortLoad: opts.BestEffort,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	if doc.Query == nil {
		return formatter.Fail(ExitCommandError, ErrCodeQuery, "request has no query block", nil)
	}

	res, err := s.exec.Apply(ctx, doc.Request)
	if err != nil {
		return reportUpdateFailure(formatter, res, err)
	}

	sols, err := s.exec.Query(ctx, doc.Query.Where)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeQuery, "query failed", err)
	}
	vars := doc.Query.Vars
	if len(vars) == 0 {
		vars = sols.Vars()
	}
	formatter.VerboseLog("%d solution(s)", sols.Len())

	if formatter.Format == "json" {
		return formatter.Success(newQueryResult(res.RequestID, vars, sols))
	}
	return writeTable(cmd, vars, sols)
}

func newQueryResult(requestID string, vars []term.Variable, sols eval.Solutions) QueryResult {
	out := QueryResult{
		RequestID: requestID,
		Vars:      make([]string, len(vars)),
		Rows:      make([]map[string]string, 0, sols.Len()),
	}
	for i, v := range vars {
		out.Vars[i] = string(v)
	}
	for _, b := range sols {
		row := map[string]string{}
		for _, v := range vars {
			if t, ok := b.Get(v); ok {
				row[string(v)] = t.String()
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func writeTable(cmd *cobra.Command, vars []term.Variable, sols eval.Solutions) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	header := make([]string, len(vars))
	for i, v := range vars {
		header[i] = v.String()
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	cells := make([]string, len(vars))
	for _, b := range sols {
		for i, v := range vars {
			cells[i] = ""
			if t, ok := b.Get(v); ok {
				cells[i] = t.String()
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "(%d row(s))\n", sols.Len())
	return nil
}
