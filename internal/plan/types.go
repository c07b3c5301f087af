package plan

type PlanNode struct {
	// Core identity
	NodeType     string `json:"Node Type"`
	RelationName string `json:"Relation Name,omitempty"`
	Alias        string `json:"Alias,omitempty"`

	// Estimates vs actuals
	StartupCost     float64 `json:"Startup Cost"`
	TotalCost       float64 `json:"Total Cost"`
	PlanRows        int64   `json:"Plan Rows"`
	ActualRows      int64   `json:"Actual Rows,omitempty"`
	ActualTotalTime float64 `json:"Actual Total Time,omitempty"`
	ActualLoops     int64   `json:"Actual Loops,omitempty"`

	// Filter effectiveness
	Filter              string `json:"Filter,omitempty"`
	RowsRemovedByFilter int64  `json:"Rows Removed by Filter,omitempty"`

	// Buffers
	SharedHitBlocks   int64 `json:"Shared Hit Blocks,omitempty"`
	SharedReadBlocks  int64 `json:"Shared Read Blocks,omitempty"`
	TempReadBlocks    int64 `json:"Temp Read Blocks,omitempty"`
	TempWrittenBlocks int64 `json:"Temp Written Blocks,omitempty"`

	// Children
	Plans []PlanNode `json:"Plans,omitempty"`
}

// Label names a node for display, e.g. "Seq Scan on orders".
func (n *PlanNode) Label() string {
	rel := n.RelationName
	if rel == "" {
		rel = n.Alias
	}
	if rel == "" {
		return n.NodeType
	}
	return n.NodeType + " on " + rel
}

// ExplainOutput represents the top-level EXPLAIN JSON output from PostgreSQL.
type ExplainOutput struct {
	Plan          PlanNode `json:"Plan"`
	PlanningTime  float64  `json:"Planning Time,omitempty"`
	ExecutionTime float64  `json:"Execution Time,omitempty"`
}
