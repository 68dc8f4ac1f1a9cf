package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/rdfup/internal/update"
)

// OpSummary is the part of an update.OpResult a scenario can observe.
type OpSummary struct {
	Index      int    `json:"index"`
	Kind       string `json:"kind"`
	Solutions  int    `json:"solutions"`
	Deleted    int    `json:"deleted"`
	Inserted   int    `json:"inserted"`
	Skipped    int    `json:"skipped"`
	Downgraded bool   `json:"downgraded,omitempty"`
}

func summarize(r update.OpResult) OpSummary {
	return OpSummary{
		Index:      r.Index,
		Kind:       string(r.Kind),
		Solutions:  r.Solutions,
		Deleted:    r.Deleted,
		Inserted:   r.Inserted,
		Skipped:    r.Skipped,
		Downgraded: r.Downgraded,
	}
}

func (s OpSummary) String() string {
	out := fmt.Sprintf("%d %s solutions=%d deleted=%d inserted=%d skipped=%d",
		s.Index, s.Kind, s.Solutions, s.Deleted, s.Inserted, s.Skipped)
	if s.Downgraded {
		out += " downgraded"
	}
	return out
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	RequestID string      `json:"request_id"`
	State     string      `json:"state"`
	Ops       []OpSummary `json:"ops"`

	// Failure is the request error, if the request stopped.
	Failure string `json:"failure,omitempty"`

	// Dataset is the final store, one N-Quads line per quad, default graph
	// first.
	Dataset []string `json:"dataset"`

	// Solutions holds the rows of the request's query, if it has one.
	Solutions []string `json:"solutions,omitempty"`

	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Ops:     []OpSummary{},
		Dataset: []string{},
		Errors:  []string{},
	}
}

// AddError records a failed check and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Snapshot renders the observable outcome for golden comparison. Errors
// are not part of it.
func (r *Result) Snapshot(name string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	fmt.Fprintf(&b, "request: %s\n", r.RequestID)
	fmt.Fprintf(&b, "state: %s\n", r.State)
	if r.Failure != "" {
		fmt.Fprintf(&b, "failure: %s\n", r.Failure)
	}
	b.WriteString("ops:\n")
	for _, op := range r.Ops {
		fmt.Fprintf(&b, "  %s\n", op)
	}
	b.WriteString("dataset:\n")
	for _, line := range r.Dataset {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	if r.Solutions != nil {
		b.WriteString("query:\n")
		for _, row := range r.Solutions {
			fmt.Fprintf(&b, "  %s\n", row)
		}
	}
	return []byte(b.String())
}
