package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// eventRepo implements EventRepo with raw SQL and the global sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendOperation(ctx context.Context, data OperationEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO operation_events
		(sequence, timestamp, family, endpoint, status_code, latency_ms, success, error_message, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum,
		time.Now().UTC(),
		data.Family,
		data.Endpoint,
		data.StatusCode,
		data.LatencyMs,
		data.Success,
		data.ErrorMessage,
		data.RequestBody,
		data.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("save operation event: %w", err)
	}
	return nil
}

const operationColumns = `id, sequence, timestamp, family, endpoint, status_code, latency_ms, success, error_message, request_body, response_body`

func (r *eventRepo) QueryOperations(ctx context.Context, opts QueryOpts) ([]OperationEvent, error) {
	var (
		where []string
		args  []any
	)
	if opts.Family != "" {
		where = append(where, "family = ?")
		args = append(args, opts.Family)
	}
	if opts.FailedOnly {
		where = append(where, "success = 0")
	}
	if !opts.From.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, opts.From.UTC())
	}
	if !opts.To.IsZero() {
		where = append(where, "timestamp <= ?")
		args = append(args, opts.To.UTC())
	}

	q := "SELECT " + operationColumns + " FROM operation_events"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY sequence DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query operation events: %w", err)
	}
	defer rows.Close()

	var events []OperationEvent
	for rows.Next() {
		e, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operation events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) GetOperation(ctx context.Context, id int) (*OperationEvent, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+operationColumns+" FROM operation_events WHERE id = ?", id)
	e, err := scanOperation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOperation(s scanner) (OperationEvent, error) {
	var e OperationEvent
	err := s.Scan(
		&e.ID,
		&e.Sequence,
		&e.Timestamp,
		&e.Family,
		&e.Endpoint,
		&e.StatusCode,
		&e.LatencyMs,
		&e.Success,
		&e.ErrorMessage,
		&e.RequestBody,
		&e.ResponseBody,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scan operation event: %w", err)
	}
	return e, nil
}
