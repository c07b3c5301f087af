package comparator

import (
	"testing"

	"github.com/jakvbs/pgeval/internal/analyzer"
	"github.com/jakvbs/pgeval/internal/bottleneck"
)

func defaultComparator() *Comparator {
	return &Comparator{Threshold: SignificanceThresholdPct}
}

func metricByName(t *testing.T, deltas []MetricDelta, name string) MetricDelta {
	t.Helper()
	for _, d := range deltas {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("no metric delta named %q", name)
	return MetricDelta{}
}

func TestCompare_AllMetricsImproved(t *testing.T) {
	c := defaultComparator()
	old := Evaluation{
		Name: "before.json",
		Metrics: analyzer.Metrics{
			TotalCost:   1000,
			SharedReadTotal:  500,
			TempReadTotal:    50,
			TempWrittenTotal: 50,
			RowsRemovedTotal: 200,
			CombinedScore:    0.2,
		},
	}
	new := Evaluation{
		Name: "after.json",
		Metrics: analyzer.Metrics{
			TotalCost:  100,
			SharedReadTotal: 50,
			CombinedScore:   0.4,
		},
	}

	result := c.Compare(old, new)

	if result.Summary.MetricsImproved != 5 {
		t.Errorf("MetricsImproved = %d, want 5", result.Summary.MetricsImproved)
	}
	if result.Summary.Verdict != "improves 5 of 5 metrics" {
		t.Errorf("Verdict = %q", result.Summary.Verdict)
	}
}

func TestCompare_IdenticalEvaluations(t *testing.T) {
	c := defaultComparator()
	eval := Evaluation{
		Metrics: analyzer.Metrics{TotalCost: 100, SharedReadTotal: 10, CombinedScore: 0.3},
		Ranked: bottleneck.Result{Results: []bottleneck.Entry{
			{NodeType: "Seq Scan", Relation: "orders", Severity: 10},
		}},
	}

	result := c.Compare(eval, eval)

	if result.Summary.MetricsImproved != 0 || result.Summary.MetricsRegressed != 0 {
		t.Errorf("summary = %+v, want no directional metrics", result.Summary)
	}
	if result.Summary.Verdict != "no significant change" {
		t.Errorf("Verdict = %q", result.Summary.Verdict)
	}
	if result.Groups[0].ChangeType != NoChange {
		t.Errorf("group ChangeType = %v, want NoChange", result.Groups[0].ChangeType)
	}
}

func TestCompare_MixedVerdict(t *testing.T) {
	c := defaultComparator()
	old := Evaluation{Metrics: analyzer.Metrics{TotalCost: 1000, SharedReadTotal: 10, CombinedScore: 0.3}}
	new := Evaluation{Metrics: analyzer.Metrics{TotalCost: 100, SharedReadTotal: 100, CombinedScore: 0.3}}

	result := c.Compare(old, new)

	if result.Summary.Verdict != "mixed: 1 improved, 1 regressed" {
		t.Errorf("Verdict = %q", result.Summary.Verdict)
	}
}

func TestCompare_CombinedScoreHigherIsBetter(t *testing.T) {
	c := defaultComparator()
	old := Evaluation{Metrics: analyzer.Metrics{CombinedScore: 0.2}}
	new := Evaluation{Metrics: analyzer.Metrics{CombinedScore: 0.1}}

	result := c.Compare(old, new)

	score := metricByName(t, result.Metrics, "combined_score")
	if score.Dir != Regressed {
		t.Errorf("combined_score Dir = %v, want Regressed", score.Dir)
	}
}

func TestCompare_MedianOnlyWhenBothSampled(t *testing.T) {
	c := defaultComparator()
	sampled := analyzer.Metrics{SelectRuns: 5, SelectMedianMs: 10}
	unsampled := analyzer.Metrics{}

	result := c.Compare(Evaluation{Metrics: sampled}, Evaluation{Metrics: unsampled})
	for _, d := range result.Metrics {
		if d.Name == "select_median_ms" {
			t.Fatal("select_median_ms compared with only one side sampled")
		}
	}

	result = c.Compare(Evaluation{Metrics: sampled}, Evaluation{Metrics: sampled})
	metricByName(t, result.Metrics, "select_median_ms")
}

func TestCompare_GroupAddedAndRemoved(t *testing.T) {
	c := defaultComparator()
	old := Evaluation{Ranked: bottleneck.Result{Results: []bottleneck.Entry{
		{NodeType: "Seq Scan", Relation: "orders", Severity: 12},
	}}}
	new := Evaluation{Ranked: bottleneck.Result{Results: []bottleneck.Entry{
		{NodeType: "Index Scan", Relation: "items", Severity: 4},
	}}}

	result := c.Compare(old, new)

	if len(result.Groups) != 2 {
		t.Fatalf("got %d group deltas, want 2", len(result.Groups))
	}
	if result.Groups[0].ChangeType != Added || result.Groups[0].Dir != Regressed {
		t.Errorf("added group = %+v", result.Groups[0])
	}
	if result.Groups[1].ChangeType != Removed || result.Groups[1].Dir != Improved {
		t.Errorf("removed group = %+v", result.Groups[1])
	}
	if result.Summary.GroupsAdded != 1 || result.Summary.GroupsRemoved != 1 {
		t.Errorf("summary = %+v", result.Summary)
	}
}

func TestCompare_GroupSeverityDropIsModified(t *testing.T) {
	c := defaultComparator()
	old := Evaluation{Ranked: bottleneck.Result{Results: []bottleneck.Entry{
		{NodeType: "Seq Scan", Relation: "orders", Severity: 10},
	}}}
	new := Evaluation{Ranked: bottleneck.Result{Results: []bottleneck.Entry{
		{NodeType: "Seq Scan", Relation: "orders", Severity: 5},
	}}}

	result := c.Compare(old, new)

	g := result.Groups[0]
	if g.ChangeType != Modified {
		t.Errorf("ChangeType = %v, want Modified", g.ChangeType)
	}
	if g.Dir != Improved {
		t.Errorf("Dir = %v, want Improved", g.Dir)
	}
	if g.Delta != -5 {
		t.Errorf("Delta = %f, want -5", g.Delta)
	}
	if g.Pct != -50 {
		t.Errorf("Pct = %f, want -50", g.Pct)
	}
}

func TestCompare_GroupWithinThresholdIsNoChange(t *testing.T) {
	c := defaultComparator()
	old := Evaluation{Ranked: bottleneck.Result{Results: []bottleneck.Entry{
		{NodeType: "Sort", Relation: "?", Severity: 10},
	}}}
	new := Evaluation{Ranked: bottleneck.Result{Results: []bottleneck.Entry{
		{NodeType: "Sort", Relation: "?", Severity: 10.05},
	}}}

	result := c.Compare(old, new)

	if result.Groups[0].ChangeType != NoChange {
		t.Errorf("ChangeType = %v, want NoChange", result.Groups[0].ChangeType)
	}
	if result.Summary.GroupsModified != 0 {
		t.Errorf("GroupsModified = %d, want 0", result.Summary.GroupsModified)
	}
}

func TestPctChange(t *testing.T) {
	tests := []struct {
		old, new, want float64
	}{
		{100, 200, 100.0},
		{100, 50, -50.0},
		{100, 100, 0},
		{0, 100, 100.0},
		{0, 0, 0},
	}

	for _, tt := range tests {
		got := pctChange(tt.old, tt.new)
		if got != tt.want {
			t.Errorf("pctChange(%f, %f) = %f, want %f", tt.old, tt.new, got, tt.want)
		}
	}
}

func TestDirection(t *testing.T) {
	c := defaultComparator()
	tests := []struct {
		old, new      float64
		lowerIsBetter bool
		want          Direction
	}{
		{100, 50, true, Improved},
		{50, 100, true, Regressed},
		{100, 100, true, Unchanged},
		{100, 99.5, true, Unchanged},
		{50, 100, false, Improved},
		{100, 50, false, Regressed},
	}

	for _, tt := range tests {
		got := c.direction(tt.old, tt.new, tt.lowerIsBetter)
		if got != tt.want {
			t.Errorf("direction(%f, %f, %v) = %v, want %v", tt.old, tt.new, tt.lowerIsBetter, got, tt.want)
		}
	}
}
