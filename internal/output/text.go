package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/jakvbs/pgeval/internal/analyzer"
	"github.com/jakvbs/pgeval/internal/bottleneck"
	"github.com/jakvbs/pgeval/internal/comparator"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func RenderMetricsText(w io.Writer, name string, m analyzer.Metrics) error {
	tw := &textWriter{w: w}

	tw.printf("%s%sPlan Summary%s\n\n", colorBold, colorCyan, colorReset)
	if name != "" {
		tw.printf("  Plan:           %s\n", name)
	}
	tw.printf("  Combined Score: %.3f\n", m.CombinedScore)
	tw.printf("  Total Cost:     %.2f\n", m.TotalCost)
	tw.printf("  Plan Rows:      %d\n", m.PlanRowsRoot)
	tw.printf("  Actual Rows:    %d\n", m.ActualRowsRoot)
	tw.printf("  Shared Read:    %d blocks\n", m.SharedReadTotal)
	tw.printf("  Shared Hit:     %d blocks\n", m.SharedHitTotal)
	tw.printf("  Temp I/O:       %d blocks (%d read, %d written)\n",
		m.TempReadTotal+m.TempWrittenTotal, m.TempReadTotal, m.TempWrittenTotal)
	tw.printf("  Rows Removed:   %d\n", m.RowsRemovedTotal)
	if m.TimingAvailable {
		tw.printf("  Timing Run:     %d ms\n", m.TimingPlanElapsedMs)
	}
	tw.printf("\n")

	if m.SelectRuns > 0 {
		tw.printf("%s%sLatency (%d runs)%s\n\n", colorBold, colorCyan, m.SelectRuns, colorReset)
		tw.printf("  Median: %.3f ms\n", m.SelectMedianMs)
		tw.printf("  P95:    %.3f ms\n", m.SelectP95Ms)
		if m.SelectError != "" {
			tw.printf("  %sLast error: %s%s\n", colorYellow, m.SelectError, colorReset)
		}
		tw.printf("\n")
	}

	if len(m.ScanTypes) == 0 {
		return tw.err
	}

	tw.printf("%s%sOperators%s\n\n", colorBold, colorCyan, colorReset)
	for _, op := range sortedOperators(m.ScanTypes) {
		tw.printf("  %-24s %d\n", op, m.ScanTypes[op])
	}

	return tw.err
}

func sortedOperators(counts map[string]int64) []string {
	ops := make([]string, 0, len(counts))
	for op := range counts {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool {
		if counts[ops[i]] != counts[ops[j]] {
			return counts[ops[i]] > counts[ops[j]]
		}
		return ops[i] < ops[j]
	})
	return ops
}

func RenderBottlenecksText(w io.Writer, res bottleneck.Result, pareto float64) error {
	tw := &textWriter{w: w}

	if len(res.Results) == 0 {
		tw.printf("%s%sNo bottlenecks identified.%s\n", colorBold, colorGreen, colorReset)
		return tw.err
	}

	if pareto != 0 {
		tw.printf("%s%sBottlenecks (%d, pareto %.2f)%s\n\n", colorBold, colorCyan, len(res.Results), clamp01(pareto), colorReset)
	} else {
		tw.printf("%s%sBottlenecks (%d)%s\n\n", colorBold, colorCyan, len(res.Results), colorReset)
	}

	for i, e := range res.Results {
		color := severityColor(e.Severity)
		tw.printf("  %s%2d. %s on %s%s  sev=%.3f\n", color, i+1, e.NodeType, e.Relation, colorReset, e.Severity)
		tw.printf("      read=%d temp=%d removed=%d cost_k=%.1f\n", e.SharedRead, e.TempIO, e.RowsRemoved, e.TotalCostK)
		tw.printf("      %s→ %s%s\n", colorDim, e.Hint, colorReset)
		if len(e.Filters) > 0 {
			tw.printf("      %sfilters: %s%s\n", colorDim, joinFilters(e.Filters), colorReset)
		}
		if i < len(res.Results)-1 {
			tw.printf("\n")
		}
	}

	return tw.err
}

func severityColor(s float64) string {
	switch {
	case s >= 10:
		return colorRed
	case s >= 5:
		return colorYellow
	default:
		return colorCyan
	}
}

func RenderNodeTimesText(w io.Writer, times []analyzer.NodeTime) error {
	tw := &textWriter{w: w}

	if len(times) == 0 {
		return nil
	}

	tw.printf("%s%sSlowest Nodes (%d)%s\n\n", colorBold, colorCyan, len(times), colorReset)
	for _, nt := range times {
		label := nt.NodeType
		if nt.Relation != "?" {
			label = fmt.Sprintf("%s on %s", nt.NodeType, nt.Relation)
		}
		tw.printf("  %-36s %10.3f ms  rows=%d/%d read=%d temp=%d\n",
			label, nt.ActualTotalTime, nt.ActualRows, nt.PlanRows, nt.SharedRead, nt.TempRead)
	}

	return tw.err
}

func RenderComparisonText(w io.Writer, result comparator.ComparisonResult) error {
	tw := &textWriter{w: w}
	s := result.Summary

	tw.printf("%s%sMetrics%s\n\n", colorBold, colorCyan, colorReset)
	for _, m := range result.Metrics {
		fmtStr := "%.2f"
		if m.Name == "combined_score" {
			fmtStr = "%.3f"
		}
		tw.printf("  %-18s %s\n", m.Name+":", formatDelta(m.Old, m.New, m.Pct, m.Dir, fmtStr))
	}
	tw.printf("\n")

	if len(result.Groups) > 0 {
		tw.printf("%s%sBottleneck Groups%s\n\n", colorBold, colorCyan, colorReset)
		for _, g := range result.Groups {
			tw.renderGroupDelta(g)
		}
	}

	tw.renderVerdict(s)

	return tw.err
}

func (tw *textWriter) renderGroupDelta(g comparator.GroupDelta) {
	label := g.NodeType
	if g.Relation != "" && g.Relation != "?" {
		label = fmt.Sprintf("%s on %s", g.NodeType, g.Relation)
	}

	switch g.ChangeType {
	case comparator.Added:
		tw.printf("  %s+ %s%s (sev=%.3f)\n", colorRed, label, colorReset, g.NewSeverity)
	case comparator.Removed:
		tw.printf("  %s- %s%s (was sev=%.3f)\n", colorGreen, label, colorReset, g.OldSeverity)
	case comparator.Modified:
		tw.printf("  %s~ %s%s\n", colorYellow, label, colorReset)
		tw.printf("    severity: %s\n", formatDelta(g.OldSeverity, g.NewSeverity, g.Pct, g.Dir, "%.3f"))
	default:
		tw.printf("  %s= %s (sev=%.3f)%s\n", colorDim, label, g.NewSeverity, colorReset)
	}
}

func (tw *textWriter) renderVerdict(s comparator.Summary) {
	var color string
	switch {
	case s.MetricsImproved > 0 && s.MetricsRegressed == 0:
		color = colorGreen
	case s.MetricsRegressed > 0 && s.MetricsImproved == 0:
		color = colorRed
	case s.MetricsImproved > 0 || s.MetricsRegressed > 0:
		color = colorYellow
	}
	if color != "" {
		tw.printf("\n%sVerdict: %s%s\n", color, s.Verdict, colorReset)
	} else {
		tw.printf("\nVerdict: %s\n", s.Verdict)
	}
}

// The arrow tracks the value, the color tracks whether the move is an
// improvement. A rising combined score is a green ↑.
func formatDelta(oldVal, newVal, pct float64, dir comparator.Direction, fmtStr string) string {
	color := dirColor(dir)
	arrow := deltaArrow(oldVal, newVal, dir)
	oldStr := fmt.Sprintf(fmtStr, oldVal)
	newStr := fmt.Sprintf(fmtStr, newVal)
	return fmt.Sprintf("%s → %s%s %s (%+.1f%%)%s", oldStr, color, newStr, arrow, pct, colorReset)
}

func dirColor(d comparator.Direction) string {
	switch d {
	case comparator.Improved:
		return colorGreen
	case comparator.Regressed:
		return colorRed
	default:
		return ""
	}
}

func deltaArrow(oldVal, newVal float64, dir comparator.Direction) string {
	if dir == comparator.Unchanged {
		return ""
	}
	if newVal < oldVal {
		return "↓"
	}
	return "↑"
}
