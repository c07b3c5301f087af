package analyzer

import (
	"github.com/jakvbs/pgeval/internal/plan"
)

// Metrics holds whole-plan totals. The JSON form is the flat metric mapping
// written to metrics.json; counter totals are summed across every operator,
// the root-level figures come from the root alone.
type Metrics struct {
	SharedReadTotal  int64            `json:"shared_read_total"`
	SharedHitTotal   int64            `json:"shared_hit_total"`
	TempReadTotal    int64            `json:"temp_read_total"`
	TempWrittenTotal int64            `json:"temp_written_total"`
	RowsRemovedTotal int64            `json:"rows_removed_total"`
	ScanTypes        map[string]int64 `json:"scan_types"`

	TotalCost      float64 `json:"total_cost_total"`
	PlanRowsRoot   int64   `json:"plan_rows_root_sum"`
	ActualRowsRoot int64   `json:"actual_rows_root_sum"`
	Timeouts       int     `json:"timeouts"`

	CombinedScore float64 `json:"combined_score"`

	SelectRuns     int     `json:"select_runs,omitempty"`
	SelectMedianMs float64 `json:"select_median_ms,omitempty"`
	SelectP95Ms    float64 `json:"select_p95_ms,omitempty"`
	SelectError    string  `json:"select_error,omitempty"`

	TimingPlanElapsedMs int64 `json:"timing_plan_elapsed_ms,omitempty"`
	TimingAvailable     bool  `json:"timing_available,omitempty"`
}

// Aggregate walks the tree once, summing the tracked counters and counting
// operator kinds, then records the root-level cost and row figures and the
// initial combined score.
func Aggregate(root *plan.PlanNode, w PlanWeights) Metrics {
	m := Metrics{ScanTypes: make(map[string]int64)}
	walkSums(root, &m)

	m.TotalCost = root.TotalCost
	m.PlanRowsRoot = root.PlanRows
	m.ActualRowsRoot = root.ActualRows
	m.CombinedScore = PlanScore(float64(m.SharedReadTotal), m.TotalCost, w)

	return m
}

func walkSums(node *plan.PlanNode, m *Metrics) {
	m.SharedReadTotal += node.SharedReadBlocks
	m.SharedHitTotal += node.SharedHitBlocks
	m.TempReadTotal += node.TempReadBlocks
	m.TempWrittenTotal += node.TempWrittenBlocks
	m.RowsRemovedTotal += node.RowsRemovedByFilter

	if node.NodeType != "" {
		m.ScanTypes[node.NodeType]++
	}

	for i := range node.Plans {
		walkSums(&node.Plans[i], m)
	}
}
