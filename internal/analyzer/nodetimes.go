package analyzer

import (
	"sort"

	"github.com/jakvbs/pgeval/internal/plan"
)

// NodeTime is one operator's share of a TIMING ON plan. TempRead counts temp
// blocks in both directions.
type NodeTime struct {
	NodeType        string  `json:"node_type"`
	Relation        string  `json:"relation"`
	ActualTotalTime float64 `json:"actual_total_time"`
	ActualRows      int64   `json:"actual_rows"`
	PlanRows        int64   `json:"plan_rows"`
	SharedRead      int64   `json:"shared_read"`
	TempRead        int64   `json:"temp_read"`
}

// TopNodeTimes collects every operator and keeps the limit slowest by actual
// total time. A non-positive limit keeps everything.
func TopNodeTimes(root *plan.PlanNode, limit int) []NodeTime {
	var entries []NodeTime
	collectNodeTimes(root, &entries)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ActualTotalTime > entries[j].ActualTotalTime
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func collectNodeTimes(node *plan.PlanNode, entries *[]NodeTime) {
	relation := node.RelationName
	if relation == "" {
		relation = node.Alias
	}

	*entries = append(*entries, NodeTime{
		NodeType:        node.NodeType,
		Relation:        relation,
		ActualTotalTime: node.ActualTotalTime,
		ActualRows:      node.ActualRows,
		PlanRows:        node.PlanRows,
		SharedRead:      node.SharedReadBlocks,
		TempRead:        node.TempReadBlocks + node.TempWrittenBlocks,
	})

	for i := range node.Plans {
		collectNodeTimes(&node.Plans[i], entries)
	}
}
