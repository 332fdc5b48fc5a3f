package application

import (
	"context"
	"time"

	"stocks-skill/internal/domain"
)

// QueryRecord is one answered stock query.
type QueryRecord struct {
	RequestID string
	Locale    string
	Company   string
	Ticker    string
	Outcome   domain.OutcomeKind
	Failure   domain.FailureKind // set for fetch_failed
	Date      string
	Price     string
	At        time.Time
}

// Recorder persists query outcomes for later analysis.
type Recorder interface {
	RecordQuery(ctx context.Context, rec *QueryRecord) error
	Close() error
}

// NoopRecorder is used when no database is configured.
type NoopRecorder struct{}

func (n *NoopRecorder) RecordQuery(_ context.Context, _ *QueryRecord) error { return nil }
func (n *NoopRecorder) Close() error                                        { return nil }
