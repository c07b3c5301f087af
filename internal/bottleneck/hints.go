package bottleneck

// Hint maps an operator kind to a fixed remediation suggestion. Kinds without
// a specific entry fall through to the generic advice.
func Hint(nodeType string) string {
	switch nodeType {
	case "Seq Scan":
		return "Add/adjust index; push filters earlier; consider Bitmap/Index Scan"
	case "Bitmap Heap Scan", "Bitmap Index Scan":
		return "Ensure selectivity and correct join keys; consider covering index"
	case "Sort", "Incremental Sort":
		return "Reduce input rows pre-sort; add index matching ORDER BY; tune work_mem"
	case "Hash Join", "HashAggregate":
		return "Reduce build-side size; add index for join; watch work_mem"
	case "Nested Loop":
		return "Ensure inner side has index on join key; consider join reorder"
	case "Merge Join":
		return "Avoid global sorts: add indexes to supply order or change join"
	case "WindowAgg":
		return "Replace with LATERAL/LIMIT 1 or DISTINCT ON; pre-filter partitions"
	}
	return "Pushdown filters; appropriate indexes; reduce intermediate cardinality"
}
