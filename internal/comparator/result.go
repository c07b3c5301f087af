package comparator

type Direction int

const (
	Unchanged Direction = 0
	Improved  Direction = 1
	Regressed Direction = 2

	SignificanceThresholdPct = 1.0
)

func (d Direction) String() string {
	switch d {
	case Improved:
		return "improved"
	case Regressed:
		return "regressed"
	default:
		return "unchanged"
	}
}

type ChangeType int

const (
	NoChange ChangeType = 0
	Modified ChangeType = 1
	Added    ChangeType = 2
	Removed  ChangeType = 3
)

func (c ChangeType) String() string {
	switch c {
	case Modified:
		return "modified"
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "no_change"
	}
}

// MetricDelta is the change in one aggregate metric between two
// evaluations.
type MetricDelta struct {
	Name  string
	Old   float64
	New   float64
	Delta float64
	Pct   float64
	Dir   Direction
}

// GroupDelta is the change in one bottleneck group, keyed by node type
// and relation.
type GroupDelta struct {
	NodeType   string
	Relation   string
	ChangeType ChangeType

	OldSeverity float64
	NewSeverity float64
	Delta       float64
	Pct         float64
	Dir         Direction
}

type ComparisonResult struct {
	Metrics []MetricDelta
	Groups  []GroupDelta
	Summary Summary
}

type Summary struct {
	MetricsImproved  int
	MetricsRegressed int
	MetricsUnchanged int

	GroupsAdded    int
	GroupsRemoved  int
	GroupsModified int

	Verdict string
}
