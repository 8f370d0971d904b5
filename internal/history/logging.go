package history

import (
	"context"
	"time"

	"github.com/VoidMesh/heightfield/internal/logging"
)

// LoggingQueries wraps Queries to add debug logging.
type LoggingQueries struct {
	*Queries
	logger logging.Interface
}

func NewLoggingQueries(db DBTX, logger logging.Interface) *LoggingQueries {
	return &LoggingQueries{
		Queries: NewQueries(db),
		logger:  logger.With("component", "history"),
	}
}

func (lq *LoggingQueries) logQuery(queryName string, start time.Time, err error, args ...interface{}) {
	duration := time.Since(start)

	if err != nil {
		lq.logger.Debug("Database query failed",
			"query", queryName,
			"duration", duration,
			"error", err,
			"args", args,
		)
	} else {
		lq.logger.Debug("Database query executed",
			"query", queryName,
			"duration", duration,
			"args", args,
		)
	}
}

func (lq *LoggingQueries) CreateRun(ctx context.Context, r Run) error {
	start := time.Now()
	err := lq.Queries.CreateRun(ctx, r)
	lq.logQuery("CreateRun", start, err, r.RunID)
	return err
}

func (lq *LoggingQueries) GetRun(ctx context.Context, runID string) (Run, error) {
	start := time.Now()
	r, err := lq.Queries.GetRun(ctx, runID)
	lq.logQuery("GetRun", start, err, runID)
	return r, err
}

func (lq *LoggingQueries) ListRuns(ctx context.Context, limit int64) ([]Run, error) {
	start := time.Now()
	runs, err := lq.Queries.ListRuns(ctx, limit)
	lq.logQuery("ListRuns", start, err, limit)

	if err == nil {
		lq.logger.Debug("ListRuns result", "count", len(runs))
	}
	return runs, err
}

func (lq *LoggingQueries) CountRuns(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := lq.Queries.CountRuns(ctx)
	lq.logQuery("CountRuns", start, err)
	return n, err
}
