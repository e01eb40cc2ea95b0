package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit      int       // max results (0 = unlimited)
	Family     string    // exact family match ("" = any)
	FailedOnly bool      // only events with success = false
	From       time.Time // timestamp >= From
	To         time.Time // timestamp <= To
}

// OperationEventData captures one backend call made by the editor.
type OperationEventData struct {
	Family       string // build, preview, translate, search-categories, search-competences, health
	Endpoint     string
	StatusCode   int // 0 when no HTTP response was received
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// OperationEvent is a stored OperationEventData.
type OperationEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	OperationEventData
}

// EventRepo provides append and query access to operation events.
type EventRepo interface {
	// AppendOperation records one backend call.
	AppendOperation(ctx context.Context, data OperationEventData) error

	// QueryOperations returns events newest first.
	QueryOperations(ctx context.Context, opts QueryOpts) ([]OperationEvent, error)

	// GetOperation returns a single event, or nil if it does not exist.
	GetOperation(ctx context.Context, id int) (*OperationEvent, error)
}
