package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ReadHistory returns the most recent requests, oldest first. limit <= 0
// returns every request.
func (j *Journal) ReadHistory(ctx context.Context, limit int) ([]Request, error) {
	query := `
		SELECT id, seq, base, state, op_count, error
		FROM (
			SELECT * FROM requests
			ORDER BY seq DESC, id COLLATE BINARY DESC
			LIMIT ?
		)
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	out := []Request{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return out, nil
}

// ReadRequest returns one request. It returns sql.ErrNoRows if the request
// is not in the journal.
func (j *Journal) ReadRequest(ctx context.Context, id string) (Request, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, seq, base, state, op_count, error
		FROM requests
		WHERE id = ?
	`, id)
	return scanRequest(row)
}

// ReadOperations returns the committed operations of a request in the
// order they ran. It returns an empty slice for unknown requests.
func (j *Journal) ReadOperations(ctx context.Context, requestID string) ([]Operation, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT request_id, op_index, seq, kind, detail, solutions, deleted, inserted, skipped, delta_hash
		FROM operations
		WHERE request_id = ?
		ORDER BY seq ASC, op_index ASC
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	out := []Operation{}
	for rows.Next() {
		var op Operation
		if err := rows.Scan(
			&op.RequestID,
			&op.Index,
			&op.Seq,
			&op.Kind,
			&op.Detail,
			&op.Solutions,
			&op.Deleted,
			&op.Inserted,
			&op.Skipped,
			&op.DeltaHash,
		); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		out = append(out, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(s scanner) (Request, error) {
	var r Request
	err := s.Scan(&r.ID, &r.Seq, &r.Base, &r.State, &r.OpCount, &r.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return Request{}, err
	}
	if err != nil {
		return Request{}, fmt.Errorf("scan request: %w", err)
	}
	return r, nil
}
