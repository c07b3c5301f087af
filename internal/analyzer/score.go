package analyzer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PlanWeights blend the read and cost sub-scores before any wall-clock sample
// exists. They are applied as given, without normalization.
type PlanWeights struct {
	Read float64
	Cost float64
}

// RunWeights blend the read, time, and cost sub-scores once a wall-clock
// median is available. They are re-normalized to sum to 1 before use.
type RunWeights struct {
	Read float64
	Time float64
	Cost float64
}

// Defaults used when no weights flag or environment override is given.
var (
	DefaultPlanWeights = PlanWeights{Read: 0.85, Cost: 0.15}
	DefaultRunWeights  = RunWeights{Read: 0.5, Time: 0.4, Cost: 0.1}
)

// Subscore maps a non-negative resource total into (0, 1]: zero usage scores
// 1.0 and the score decays logarithmically as usage grows.
func Subscore(x float64) float64 {
	if x < 0 {
		x = 0
	}
	return 1.0 / (1.0 + math.Log1p(x))
}

// PlanScore combines the read and cost sub-scores under w.
func PlanScore(sharedRead, totalCost float64, w PlanWeights) float64 {
	return w.Read*Subscore(sharedRead) + w.Cost*Subscore(totalCost)
}

// RunScore recomputes the combined score with a wall-clock component.
// Weights are normalized by their sum, with the sum floored at 1e-9.
func RunScore(sharedRead, medianMs, totalCost float64, w RunWeights) float64 {
	sum := math.Max(w.Read+w.Time+w.Cost, 1e-9)
	score := (w.Read/sum)*Subscore(sharedRead) +
		(w.Time/sum)*Subscore(medianMs) +
		(w.Cost/sum)*Subscore(totalCost)
	return math.Round(score*1e12) / 1e12
}

// ParsePlanWeights reads a "read,cost" pair, e.g. "0.85,0.15".
func ParsePlanWeights(s string) (PlanWeights, error) {
	vals, err := splitWeights(s, 2)
	if err != nil {
		return PlanWeights{}, err
	}
	return PlanWeights{Read: vals[0], Cost: vals[1]}, nil
}

// ParseRunWeights reads a "read,time,cost" triple, e.g. "0.5,0.4,0.1".
func ParseRunWeights(s string) (RunWeights, error) {
	vals, err := splitWeights(s, 3)
	if err != nil {
		return RunWeights{}, err
	}
	return RunWeights{Read: vals[0], Time: vals[1], Cost: vals[2]}, nil
}

func splitWeights(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("invalid weights %q: expected %d comma-separated values", s, n)
	}
	vals := make([]float64, n)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weights %q: %w", s, err)
		}
		vals[i] = v
	}
	return vals, nil
}
