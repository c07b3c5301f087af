// Package comparator diffs two plan evaluations metric by metric and
// bottleneck group by bottleneck group.
package comparator

import (
	"fmt"
	"math"

	"github.com/jakvbs/pgeval/internal/analyzer"
	"github.com/jakvbs/pgeval/internal/bottleneck"
)

// Evaluation is one side of a comparison: the aggregated metrics and
// ranked bottleneck groups of a single plan.
type Evaluation struct {
	Name    string
	Metrics analyzer.Metrics
	Ranked  bottleneck.Result
}

type Comparator struct {
	Threshold float64
}

func (c *Comparator) Compare(old, new Evaluation) ComparisonResult {
	result := ComparisonResult{
		Metrics: c.diffMetrics(old.Metrics, new.Metrics),
		Groups:  c.diffGroups(old.Ranked, new.Ranked),
	}
	result.Summary = c.summarize(result)
	return result
}

func (c *Comparator) diffMetrics(old, new analyzer.Metrics) []MetricDelta {
	deltas := []MetricDelta{
		c.metricDelta("total_cost", old.TotalCost, new.TotalCost, true),
		c.metricDelta("shared_read", float64(old.SharedReadTotal), float64(new.SharedReadTotal), true),
		c.metricDelta("temp_io", float64(old.TempReadTotal+old.TempWrittenTotal), float64(new.TempReadTotal+new.TempWrittenTotal), true),
		c.metricDelta("rows_removed", float64(old.RowsRemovedTotal), float64(new.RowsRemovedTotal), true),
	}

	// Wall-clock latency only compares when both sides were sampled.
	if old.SelectRuns > 0 && new.SelectRuns > 0 {
		deltas = append(deltas, c.metricDelta("select_median_ms", old.SelectMedianMs, new.SelectMedianMs, true))
	}

	deltas = append(deltas, c.metricDelta("combined_score", old.CombinedScore, new.CombinedScore, false))
	return deltas
}

func (c *Comparator) metricDelta(name string, old, new float64, lowerPreference bool) MetricDelta {
	return MetricDelta{
		Name:  name,
		Old:   old,
		New:   new,
		Delta: new - old,
		Pct:   pctChange(old, new),
		Dir:   c.direction(old, new, lowerPreference),
	}
}

func (c *Comparator) diffGroups(old, new bottleneck.Result) []GroupDelta {
	type key struct {
		nodeType string
		relation string
	}

	oldBy := make(map[key]bottleneck.Entry, len(old.Results))
	for _, e := range old.Results {
		oldBy[key{e.NodeType, e.Relation}] = e
	}

	var deltas []GroupDelta
	seen := make(map[key]bool, len(new.Results))

	for _, e := range new.Results {
		k := key{e.NodeType, e.Relation}
		seen[k] = true

		prev, ok := oldBy[k]
		if !ok {
			deltas = append(deltas, GroupDelta{
				NodeType:    e.NodeType,
				Relation:    e.Relation,
				ChangeType:  Added,
				NewSeverity: e.Severity,
				Delta:       e.Severity,
				Pct:         pctChange(0, e.Severity),
				Dir:         c.direction(0, e.Severity, true),
			})
			continue
		}

		d := GroupDelta{
			NodeType:    e.NodeType,
			Relation:    e.Relation,
			ChangeType:  Modified,
			OldSeverity: prev.Severity,
			NewSeverity: e.Severity,
			Delta:       e.Severity - prev.Severity,
			Pct:         pctChange(prev.Severity, e.Severity),
			Dir:         c.direction(prev.Severity, e.Severity, true),
		}
		if d.Dir == Unchanged {
			d.ChangeType = NoChange
		}
		deltas = append(deltas, d)
	}

	for _, e := range old.Results {
		if seen[key{e.NodeType, e.Relation}] {
			continue
		}
		deltas = append(deltas, GroupDelta{
			NodeType:    e.NodeType,
			Relation:    e.Relation,
			ChangeType:  Removed,
			OldSeverity: e.Severity,
			Delta:       -e.Severity,
			Pct:         pctChange(e.Severity, 0),
			Dir:         c.direction(e.Severity, 0, true),
		})
	}

	return deltas
}

func (c *Comparator) summarize(r ComparisonResult) Summary {
	var s Summary

	for _, m := range r.Metrics {
		switch m.Dir {
		case Improved:
			s.MetricsImproved++
		case Regressed:
			s.MetricsRegressed++
		default:
			s.MetricsUnchanged++
		}
	}
	for _, g := range r.Groups {
		switch g.ChangeType {
		case Added:
			s.GroupsAdded++
		case Removed:
			s.GroupsRemoved++
		case Modified:
			s.GroupsModified++
		}
	}

	total := len(r.Metrics)
	switch {
	case s.MetricsImproved == 0 && s.MetricsRegressed == 0:
		s.Verdict = "no significant change"
	case s.MetricsRegressed == 0:
		s.Verdict = fmt.Sprintf("improves %d of %d metrics", s.MetricsImproved, total)
	case s.MetricsImproved == 0:
		s.Verdict = fmt.Sprintf("regresses %d of %d metrics", s.MetricsRegressed, total)
	default:
		s.Verdict = fmt.Sprintf("mixed: %d improved, %d regressed", s.MetricsImproved, s.MetricsRegressed)
	}

	return s
}

func (c *Comparator) direction(old, new float64, lowerPreference bool) Direction {
	if math.Abs(pctChange(old, new)) < c.Threshold {
		return Unchanged
	}
	if lowerPreference {
		if new < old {
			return Improved
		}
		return Regressed
	}
	if new > old {
		return Improved
	}
	return Regressed
}

func pctChange(old, new float64) float64 {
	if old == 0 {
		if new == 0 {
			return 0
		}
		return 100
	}
	return ((new - old) / old) * 100
}
