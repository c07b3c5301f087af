package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

type ExplainOptions struct {
	// Timeout bounds the statement; 0 disables the server-side timeout.
	Timeout time.Duration
	// Timing collects per-node times (TIMING ON with track_io_timing).
	Timing bool
}

// Execute runs EXPLAIN ANALYZE for the statement inside a transaction that is
// always rolled back, so the analyzed query leaves no side effects behind.
func Execute(ctx context.Context, dbConn string, sql string, opts ExplainOptions) (ExplainOutput, error) {
	if opts.Timeout > 0 {
		// Allow the server-side timeout to fire first.
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout+5*time.Second)
		defer cancel()
	}

	conn, err := pgx.Connect(ctx, dbConn)
	if err != nil {
		return ExplainOutput{}, fmt.Errorf("connecting to database: %w", err)
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return ExplainOutput{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", opts.Timeout.Milliseconds())); err != nil {
		return ExplainOutput{}, fmt.Errorf("setting statement timeout: %w", err)
	}

	if opts.Timing {
		if _, err := tx.Exec(ctx, "SET LOCAL track_io_timing = on"); err != nil {
			return ExplainOutput{}, fmt.Errorf("enabling I/O timing: %w", err)
		}
		if _, err := tx.Exec(ctx, "SET LOCAL enable_incremental_sort = on"); err != nil {
			return ExplainOutput{}, fmt.Errorf("enabling incremental sort: %w", err)
		}
	}

	var jsonStr string
	err = tx.QueryRow(ctx, explainQuery(sql, opts.Timing)).Scan(&jsonStr)
	if err != nil {
		return ExplainOutput{}, fmt.Errorf("executing EXPLAIN: %w", err)
	}

	return Parse([]byte(jsonStr))
}

func explainQuery(sql string, timing bool) string {
	mode := "TIMING OFF"
	if timing {
		mode = "TIMING ON"
	}
	return "EXPLAIN (ANALYZE, BUFFERS, COSTS ON, " + mode + ", FORMAT JSON) " + sql
}
