package bottleneck

import (
	"math"
	"sort"
	"strings"

	"github.com/jakvbs/pgeval/internal/plan"
)

// Filter text is flattened and bounded before tallying so a pathological
// expression cannot blow up the report.
const maxFilterRunes = 140

// SeverityWeights scale the four severity signals. Reads carry the
// largest default weight, planner cost the smallest.
type SeverityWeights struct {
	Read        float64
	Temp        float64
	RowsRemoved float64
	Cost        float64
}

var DefaultSeverityWeights = SeverityWeights{Read: 3, Temp: 2, RowsRemoved: 1.5, Cost: 1}

type Options struct {
	// Pareto selects the smallest severity prefix whose cumulative share
	// reaches the fraction (clamped to [0,1]). Zero switches to top-K.
	Pareto float64
	// TopK bounds the result when Pareto is zero; 0 keeps nothing.
	TopK int
	// Weights default to DefaultSeverityWeights when left zero.
	Weights SeverityWeights
}

type Entry struct {
	NodeType    string         `json:"node_type"`
	Relation    string         `json:"relation"`
	Severity    float64        `json:"severity"`
	SharedRead  int64          `json:"shared_read"`
	TempIO      int64          `json:"temp_io"`
	RowsRemoved int64          `json:"rows_removed"`
	TotalCostK  float64        `json:"total_cost_k"`
	Hint        string         `json:"hint"`
	Filters     []FilterSample `json:"filters_sample"`
}

type FilterSample struct {
	Text  string `json:"text"`
	Count int64  `json:"count"`
}

type Result struct {
	PlanFile string  `json:"plan_file"`
	Results  []Entry `json:"results"`
}

// Rank walks the tree grouping operators by (kind, relation-or-alias),
// scores each group, and keeps the worst offenders per opts. Repeated
// operators on the same relation merge into one group so the ranking
// reflects aggregate impact.
func Rank(root *plan.PlanNode, planFile string, opts Options) Result {
	w := opts.Weights
	if w == (SeverityWeights{}) {
		w = DefaultSeverityWeights
	}

	groups := make(map[groupKey]*group)
	var order []groupKey
	collect(root, groups, &order)

	ranked := make([]*group, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.severity = severity(g, w)
		ranked = append(ranked, g)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].severity > ranked[j].severity
	})

	kept := selectGroups(ranked, opts)

	entries := make([]Entry, 0, len(kept))
	for _, g := range kept {
		entries = append(entries, Entry{
			NodeType:    g.key.nodeType,
			Relation:    g.key.relation,
			Severity:    math.Round(g.severity*1000) / 1000,
			SharedRead:  g.sharedRead,
			TempIO:      g.tempIO,
			RowsRemoved: g.rowsRemoved,
			TotalCostK:  math.Round(g.cost/1000*10) / 10,
			Hint:        Hint(g.key.nodeType),
			Filters:     g.topFilters(2),
		})
	}

	return Result{PlanFile: planFile, Results: entries}
}

type groupKey struct {
	nodeType string
	relation string
}

type group struct {
	key         groupKey
	sharedRead  int64
	tempIO      int64
	rowsRemoved int64
	cost        float64
	count       int64
	filters     map[string]int64
	filterOrder []string
	severity    float64
}

func collect(node *plan.PlanNode, groups map[groupKey]*group, order *[]groupKey) {
	key := groupKey{nodeType: node.NodeType, relation: node.RelationName}
	if key.nodeType == "" {
		key.nodeType = "?"
	}
	if key.relation == "" {
		key.relation = node.Alias
	}
	if key.relation == "" {
		key.relation = "?"
	}

	g, ok := groups[key]
	if !ok {
		g = &group{key: key, filters: make(map[string]int64)}
		groups[key] = g
		*order = append(*order, key)
	}

	g.sharedRead += node.SharedReadBlocks
	g.tempIO += node.TempReadBlocks + node.TempWrittenBlocks
	g.rowsRemoved += node.RowsRemovedByFilter
	g.cost += node.TotalCost
	g.count++
	if node.Filter != "" {
		g.addFilter(node.Filter)
	}

	for i := range node.Plans {
		collect(&node.Plans[i], groups, order)
	}
}

func (g *group) addFilter(filter string) {
	f := strings.ReplaceAll(filter, "\n", " ")
	if runes := []rune(f); len(runes) > maxFilterRunes {
		f = string(runes[:maxFilterRunes]) + "…"
	}
	if _, seen := g.filters[f]; !seen {
		g.filterOrder = append(g.filterOrder, f)
	}
	g.filters[f]++
}

// topFilters returns the n most frequent filter texts, first-seen order
// breaking ties.
func (g *group) topFilters(n int) []FilterSample {
	samples := make([]FilterSample, 0, len(g.filterOrder))
	for _, f := range g.filterOrder {
		samples = append(samples, FilterSample{Text: f, Count: g.filters[f]})
	}
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Count > samples[j].Count
	})
	if len(samples) > n {
		samples = samples[:n]
	}
	return samples
}

func severity(g *group, w SeverityWeights) float64 {
	return w.Read*math.Log1p(float64(g.sharedRead)) +
		w.Temp*math.Log1p(float64(g.tempIO)) +
		w.RowsRemoved*math.Log1p(float64(g.rowsRemoved)) +
		w.Cost*math.Log1p(g.cost/1000)
}

func selectGroups(ranked []*group, opts Options) []*group {
	if opts.Pareto != 0 && len(ranked) > 0 {
		cutoff := clamp01(opts.Pareto)
		total := 0.0
		for _, g := range ranked {
			total += g.severity
		}
		if total == 0 {
			total = 1
		}

		var kept []*group
		cum := 0.0
		for _, g := range ranked {
			kept = append(kept, g)
			cum += g.severity
			if cum/total >= cutoff {
				break
			}
		}
		return kept
	}

	top := opts.TopK
	if top < 0 {
		top = 0
	}
	if top > len(ranked) {
		top = len(ranked)
	}
	return ranked[:top]
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
