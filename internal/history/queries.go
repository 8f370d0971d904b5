package history

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the SQL for the runs table.
type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

// Run is one row of the runs table.
type Run struct {
	RunID      string    `json:"run_id"`
	Seed       int64     `json:"seed"`
	Width      int64     `json:"width"`
	Length     int64     `json:"length"`
	Stages     string    `json:"stages"`
	DurationMs int64     `json:"duration_ms"`
	MinHeight  float64   `json:"min_height"`
	MaxHeight  float64   `json:"max_height"`
	MeanHeight float64   `json:"mean_height"`
	CreatedAt  time.Time `json:"created_at"`
}

const createRun = `
INSERT INTO runs (run_id, seed, width, length, stages, duration_ms, min_height, max_height, mean_height, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateRun(ctx context.Context, r Run) error {
	_, err := q.db.ExecContext(ctx, createRun,
		r.RunID,
		r.Seed,
		r.Width,
		r.Length,
		r.Stages,
		r.DurationMs,
		r.MinHeight,
		r.MaxHeight,
		r.MeanHeight,
		r.CreatedAt,
	)
	return err
}

const runColumns = `run_id, seed, width, length, stages, duration_ms, min_height, max_height, mean_height, created_at`

const getRun = `SELECT ` + runColumns + ` FROM runs WHERE run_id = ?`

func (q *Queries) GetRun(ctx context.Context, runID string) (Run, error) {
	row := q.db.QueryRowContext(ctx, getRun, runID)
	var r Run
	err := scanRun(row, &r)
	return r, err
}

const listRuns = `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, run_id LIMIT ?`

func (q *Queries) ListRuns(ctx context.Context, limit int64) ([]Run, error) {
	rows, err := q.db.QueryContext(ctx, listRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Run
	for rows.Next() {
		var r Run
		if err := scanRun(rows, &r); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countRuns = `SELECT COUNT(*) FROM runs`

func (q *Queries) CountRuns(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countRuns).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner, r *Run) error {
	return s.Scan(
		&r.RunID,
		&r.Seed,
		&r.Width,
		&r.Length,
		&r.Stages,
		&r.DurationMs,
		&r.MinHeight,
		&r.MaxHeight,
		&r.MeanHeight,
		&r.CreatedAt,
	)
}
