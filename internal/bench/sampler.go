// Package bench measures wall-clock latency of a query by executing it
// repeatedly inside rollback-only transactions.
package bench

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
)

// Sampler runs timed executions of a SELECT against a database.
type Sampler struct {
	// ConnStr is the PostgreSQL connection string.
	ConnStr string
	// Timeout bounds each execution via statement_timeout. Zero or
	// negative falls back to one minute so a runaway query cannot
	// hang the sampling loop.
	Timeout time.Duration
}

// Result holds the raw samples from a sampling session. Failed runs are
// recorded as NaN so the requested count is always visible.
type Result struct {
	Requested int
	Samples   []float64
	Err       string
}

// Run executes one warmup followed by count timed runs. The warmup
// result is discarded. A connection failure is fatal; individual run
// failures are recorded in the result, keeping the last error message.
func (s *Sampler) Run(ctx context.Context, sql string, count int) (Result, error) {
	res := Result{Requested: count}

	conn, err := pgx.Connect(ctx, s.ConnStr)
	if err != nil {
		return res, fmt.Errorf("connecting to database: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := s.runOnce(ctx, conn, sql); err != nil {
		res.Err = err.Error()
	}

	for i := 0; i < count; i++ {
		ms, err := s.runOnce(ctx, conn, sql)
		if err != nil {
			res.Err = err.Error()
			res.Samples = append(res.Samples, math.NaN())
			continue
		}
		res.Samples = append(res.Samples, ms)
	}
	return res, nil
}

func (s *Sampler) runOnce(ctx context.Context, conn *pgx.Conn, sql string) (float64, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout+5*time.Second)
	defer cancel()

	tx, err := conn.Begin(runCtx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(runCtx)

	stmt := fmt.Sprintf("SET LOCAL statement_timeout = %d", timeout.Milliseconds())
	if _, err := tx.Exec(runCtx, stmt); err != nil {
		return 0, fmt.Errorf("setting statement timeout: %w", err)
	}

	start := time.Now()
	rows, err := tx.Query(runCtx, sql)
	if err != nil {
		return 0, fmt.Errorf("executing query: %w", err)
	}
	for rows.Next() {
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("reading rows: %w", err)
	}
	return float64(time.Since(start)) / float64(time.Millisecond), nil
}

// Summary reduces the samples to median and p95 in milliseconds,
// both rounded to 3 decimals. ok is false when no run succeeded.
func (r Result) Summary() (median, p95 float64, ok bool) {
	valid := make([]float64, 0, len(r.Samples))
	for _, s := range r.Samples {
		if !math.IsNaN(s) {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return 0, 0, false
	}
	return round3(Median(valid)), round3(P95(valid)), true
}

// Median returns the middle value, averaging the two central samples
// for even-length input.
func Median(samples []float64) float64 {
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// P95 returns the 95th-percentile sample using a floor index.
func P95(samples []float64) float64 {
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(float64(n)*0.95) - 1
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
