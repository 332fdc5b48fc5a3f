package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"stocks-skill/internal/application"
	"stocks-skill/internal/domain"
)

// Recorder stores one row per answered stock query.
type Recorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewRecorder opens (or creates) the database at path and runs migrations.
func NewRecorder(path string, logger *slog.Logger) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	r := &Recorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating: %w", err)
	}

	logger.Info("sqlite recorder opened", "path", path)
	return r, nil
}

func (r *Recorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stock_queries (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			request_id  TEXT,
			locale      TEXT,
			company     TEXT,
			ticker      TEXT,
			outcome     TEXT NOT NULL,
			failure     TEXT,
			price_date  TEXT,
			price       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_queries_ts ON stock_queries(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *Recorder) RecordQuery(ctx context.Context, rec *application.QueryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stock_queries
			(timestamp, request_id, locale, company, ticker, outcome, failure, price_date, price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.At.UnixMilli(),
		rec.RequestID,
		rec.Locale,
		rec.Company,
		rec.Ticker,
		string(rec.Outcome),
		string(rec.Failure),
		rec.Date,
		rec.Price,
	)
	if err != nil {
		return fmt.Errorf("inserting query: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]*application.QueryRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT timestamp, request_id, locale, company, ticker, outcome, failure, price_date, price
		FROM stock_queries ORDER BY timestamp DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent: %w", err)
	}
	defer rows.Close()

	var out []*application.QueryRecord
	for rows.Next() {
		var (
			ts               int64
			outcome, failure string
			rec              application.QueryRecord
		)
		if err := rows.Scan(&ts, &rec.RequestID, &rec.Locale, &rec.Company, &rec.Ticker,
			&outcome, &failure, &rec.Date, &rec.Price); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		rec.At = time.UnixMilli(ts).UTC()
		rec.Outcome = domain.OutcomeKind(outcome)
		rec.Failure = domain.FailureKind(failure)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

func (r *Recorder) Close() error {
	return r.db.Close()
}
