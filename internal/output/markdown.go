package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jakvbs/pgeval/internal/bottleneck"
)

// RenderBottlenecksMarkdown writes the report saved as bottlenecks.md.
// The layout is stable so reports from different runs can be diffed.
func RenderBottlenecksMarkdown(w io.Writer, res bottleneck.Result, pareto float64) error {
	tw := &textWriter{w: w}

	tw.printf("# Bottlenecks Summary\n\n")
	tw.printf("Plan: %s\n\n", res.PlanFile)
	if pareto != 0 {
		tw.printf("(Pareto cutoff: %.2f)\n\n", clamp01(pareto))
	}

	if len(res.Results) == 0 {
		tw.printf("No bottlenecks identified.\n")
		return tw.err
	}

	for i, e := range res.Results {
		tw.printf("- %d. %s on %s | sev=%.3f | read=%d | temp=%d | rm=%d | cost_k=%.1f\n",
			i+1, e.NodeType, e.Relation, e.Severity, e.SharedRead, e.TempIO, e.RowsRemoved, e.TotalCostK)
		tw.printf("  hint: %s\n", e.Hint)
		tw.printf("  filters: %s\n", joinFilters(e.Filters))
	}

	return tw.err
}

// joinFilters renders samples as "text×count" pairs separated by
// semicolons.
func joinFilters(filters []bottleneck.FilterSample) string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		parts = append(parts, fmt.Sprintf("%s×%d", f.Text, f.Count))
	}
	return strings.Join(parts, "; ")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
