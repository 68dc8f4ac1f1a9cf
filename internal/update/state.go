package update

import "fmt"

// State is the lifecycle of a request.
//
//	Pending → Running(0) → Running(1) → ... → Completed
//	                     ↘ Failed(i, err)
type State uint8

const (
	StatePending State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// OpResult reports one committed operation.
type OpResult struct {
	Index int
	Kind  OpKind
	Seq   int64

	// Solutions is the size of the WHERE solution multiset (Modify only).
	Solutions int
	// Deleted and Inserted count quads that actually changed.
	Deleted  int
	Inserted int
	// Skipped counts template instantiations dropped for unbound or
	// ill-typed slots.
	Skipped int

	// Loaded is set for LOAD operations that ran.
	Loaded *LoadSummary
	// Downgraded is set when a failing LOAD was turned into a no-op by
	// best-effort mode or SILENT.
	Downgraded bool
	// DeltaHash identifies the exact delete and insert sets committed.
	DeltaHash string
}

// LoadSummary mirrors loader.LoadResult.
type LoadSummary struct {
	IRI        string
	Codec      string
	Bytes      int
	Statements int
}

// Result is the outcome of Apply. Ops holds every committed operation,
// including those before a failure.
type Result struct {
	RequestID string
	State     State
	// Current is the index of the running or failed operation.
	Current int
	Ops     []OpResult
	Err     *UpdateError
}

// Totals sums the per-operation counters.
func (r Result) Totals() (deleted, inserted, skipped int) {
	for _, op := range r.Ops {
		deleted += op.Deleted
		inserted += op.Inserted
		skipped += op.Skipped
	}
	return deleted, inserted, skipped
}
