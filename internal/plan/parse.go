package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse normalizes a single EXPLAIN (FORMAT JSON) document. It accepts a bare
// plan node, a {"Plan": ...} wrapper, or a top-level array (first element),
// and tolerates malformed numeric fields by treating them as zero. Input that
// cannot be parsed, or that carries no recognizable plan structure, is an
// error.
func Parse(data []byte) (ExplainOutput, error) {
	entry, err := decodeEntry(data)
	if err != nil {
		return ExplainOutput{}, err
	}

	if planMap, ok := entry["Plan"].(map[string]any); ok {
		return ExplainOutput{
			Plan:          buildNode(planMap),
			PlanningTime:  asFloat(entry["Planning Time"]),
			ExecutionTime: asFloat(entry["Execution Time"]),
		}, nil
	}

	if _, ok := entry["Node Type"]; ok {
		return ExplainOutput{Plan: buildNode(entry)}, nil
	}

	return ExplainOutput{}, fmt.Errorf("no plan structure in EXPLAIN JSON")
}

func decodeEntry(data []byte) (map[string]any, error) {
	entry, err := unmarshalEntry(data)
	if err == nil {
		return entry, nil
	}

	// psql sessions often wrap the payload in banners or SET echoes; retry
	// on the outermost bracketed span before giving up.
	start := bytes.IndexByte(data, '[')
	end := bytes.LastIndexByte(data, ']')
	if start >= 0 && end > start {
		if entry, retryErr := unmarshalEntry(data[start : end+1]); retryErr == nil {
			return entry, nil
		}
	}

	return nil, err
}

func unmarshalEntry(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid EXPLAIN JSON: %w", err)
	}

	switch v := payload.(type) {
	case []any:
		if len(v) == 0 {
			return nil, fmt.Errorf("empty EXPLAIN output")
		}
		entry, ok := v[0].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid EXPLAIN JSON: first entry is %T, expected object", v[0])
		}
		return entry, nil
	case map[string]any:
		return v, nil
	default:
		return nil, fmt.Errorf("invalid EXPLAIN JSON: top-level %T, expected object or array", payload)
	}
}

func buildNode(data map[string]any) PlanNode {
	node := PlanNode{
		NodeType:            asString(data["Node Type"]),
		RelationName:        asString(data["Relation Name"]),
		Alias:               asString(data["Alias"]),
		StartupCost:         asFloat(data["Startup Cost"]),
		TotalCost:           asFloat(data["Total Cost"]),
		PlanRows:            asInt64(data["Plan Rows"]),
		ActualRows:          asInt64(data["Actual Rows"]),
		ActualTotalTime:     asFloat(data["Actual Total Time"]),
		ActualLoops:         asInt64(data["Actual Loops"]),
		Filter:              asString(data["Filter"]),
		RowsRemovedByFilter: asInt64(data["Rows Removed by Filter"]),
		SharedHitBlocks:     asInt64(data["Shared Hit Blocks"]),
		SharedReadBlocks:    asInt64(data["Shared Read Blocks"]),
		TempReadBlocks:      asInt64(data["Temp Read Blocks"]),
		TempWrittenBlocks:   asInt64(data["Temp Written Blocks"]),
	}

	if children, ok := data["Plans"].([]any); ok {
		for _, childVal := range children {
			childMap, ok := childVal.(map[string]any)
			if !ok {
				continue
			}
			node.Plans = append(node.Plans, buildNode(childMap))
		}
	}

	return node
}

func asString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return ""
	}
}

func asFloat(val any) float64 {
	switch v := val.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func asInt64(val any) int64 {
	switch v := val.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return int64(math.Round(f))
	case float64:
		return int64(math.Round(v))
	case string:
		if strings.ContainsRune(v, '.') {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return 0
			}
			return int64(math.Round(f))
		}
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}
