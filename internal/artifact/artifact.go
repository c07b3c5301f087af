// Package artifact persists evaluation output as files under a
// timestamped run directory.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jakvbs/pgeval/internal/analyzer"
	"github.com/jakvbs/pgeval/internal/plan"
)

const dirStamp = "20060102_150405"

// Info records where a run's artifacts were written. It is embedded in
// metrics.json so a run directory is self-describing.
type Info struct {
	PlanPath         string  `json:"plan_path"`
	RunDir           string  `json:"run_dir"`
	ExplainElapsedMs float64 `json:"explain_elapsed_ms"`
	BottlenecksMD    string  `json:"bottlenecks_md,omitempty"`
}

// Writer writes artifacts into a single run directory.
type Writer struct {
	dir string
}

// NewWriter creates <baseDir>/<timestamp> and returns a writer rooted
// there.
func NewWriter(baseDir string, now time.Time) (*Writer, error) {
	dir := filepath.Join(baseDir, now.Format(dirStamp))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the run directory path.
func (w *Writer) Dir() string {
	return w.dir
}

// WritePlan saves the plan tree as plan.json, wrapped in the same
// {"Plan": ...} envelope EXPLAIN produces.
func (w *Writer) WritePlan(root *plan.PlanNode) (string, error) {
	return w.writeJSON("plan.json", map[string]*plan.PlanNode{"Plan": root})
}

// WriteTimingPlan saves a timing-enabled plan tree as plan_timing.json.
func (w *Writer) WriteTimingPlan(root *plan.PlanNode) (string, error) {
	return w.writeJSON("plan_timing.json", map[string]*plan.PlanNode{"Plan": root})
}

// WriteNodeTimes saves the slowest nodes as per_node_top_time.json.
func (w *Writer) WriteNodeTimes(times []analyzer.NodeTime) (string, error) {
	return w.writeJSON("per_node_top_time.json", times)
}

// WriteMetrics saves the aggregated metrics together with the artifact
// index as metrics.json.
func (w *Writer) WriteMetrics(m analyzer.Metrics, info Info) (string, error) {
	payload := struct {
		Metrics   analyzer.Metrics `json:"metrics"`
		Artifacts Info             `json:"artifacts"`
	}{Metrics: m, Artifacts: info}
	return w.writeJSON("metrics.json", payload)
}

// WriteReport saves a rendered bottleneck report as bottlenecks.md.
func (w *Writer) WriteReport(data []byte) (string, error) {
	path := filepath.Join(w.dir, "bottlenecks.md")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return path, nil
}

func (w *Writer) writeJSON(name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", name, err)
	}
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}
