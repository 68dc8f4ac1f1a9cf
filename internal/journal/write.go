package journal

import (
	"context"
	"fmt"
)

// WriteRequest inserts a request row. A second write with the same ID is
// ignored.
func (j *Journal) WriteRequest(ctx context.Context, r Request) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO requests (id, seq, base, state, op_count, error)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, r.ID, r.Seq, r.Base, r.State, r.OpCount, r.Error)
	if err != nil {
		return fmt.Errorf("write request: %w", err)
	}
	return nil
}

// WriteOperation inserts an operation row. A second write for the same
// request and index is ignored.
func (j *Journal) WriteOperation(ctx context.Context, op Operation) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO operations
		(request_id, op_index, seq, kind, detail, solutions, deleted, inserted, skipped, delta_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(request_id, op_index) DO NOTHING
	`,
		op.RequestID,
		op.Index,
		op.Seq,
		op.Kind,
		op.Detail,
		op.Solutions,
		op.Deleted,
		op.Inserted,
		op.Skipped,
		op.DeltaHash,
	)
	if err != nil {
		return fmt.Errorf("write operation: %w", err)
	}
	return nil
}
