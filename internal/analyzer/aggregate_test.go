package analyzer

import (
	"math"
	"testing"

	"github.com/jakvbs/pgeval/internal/plan"
)

func TestAggregate_SingleNode(t *testing.T) {
	root := &plan.PlanNode{
		NodeType:         "Seq Scan",
		RelationName:     "orders",
		TotalCost:        5000.0,
		SharedReadBlocks: 100,
	}

	m := Aggregate(root, DefaultPlanWeights)

	if m.SharedReadTotal != 100 {
		t.Errorf("SharedReadTotal = %d, want 100", m.SharedReadTotal)
	}
	if m.TotalCost != 5000.0 {
		t.Errorf("TotalCost = %v, want 5000.0", m.TotalCost)
	}
	if math.Abs(m.CombinedScore-0.167) > 0.0005 {
		t.Errorf("CombinedScore = %v, want ~0.167", m.CombinedScore)
	}
}

func TestAggregate_SumsAcrossTree(t *testing.T) {
	root := &plan.PlanNode{
		NodeType:          "Hash Join",
		TotalCost:         9000.0,
		PlanRows:          500,
		ActualRows:        480,
		SharedReadBlocks:  10,
		SharedHitBlocks:   7,
		TempReadBlocks:    1,
		TempWrittenBlocks: 2,
		Plans: []plan.PlanNode{
			{
				NodeType:            "Seq Scan",
				RelationName:        "orders",
				TotalCost:           4000.0,
				SharedReadBlocks:    50,
				SharedHitBlocks:     100,
				RowsRemovedByFilter: 5,
			},
			{
				NodeType:          "Hash",
				TotalCost:         3000.0,
				TempReadBlocks:    3,
				TempWrittenBlocks: 4,
				Plans: []plan.PlanNode{
					{
						NodeType:            "Seq Scan",
						RelationName:        "items",
						SharedReadBlocks:    30,
						RowsRemovedByFilter: 7,
					},
				},
			},
		},
	}

	m := Aggregate(root, DefaultPlanWeights)

	if m.SharedReadTotal != 90 {
		t.Errorf("SharedReadTotal = %d, want 90", m.SharedReadTotal)
	}
	if m.SharedHitTotal != 107 {
		t.Errorf("SharedHitTotal = %d, want 107", m.SharedHitTotal)
	}
	if m.TempReadTotal != 4 {
		t.Errorf("TempReadTotal = %d, want 4", m.TempReadTotal)
	}
	if m.TempWrittenTotal != 6 {
		t.Errorf("TempWrittenTotal = %d, want 6", m.TempWrittenTotal)
	}
	if m.RowsRemovedTotal != 12 {
		t.Errorf("RowsRemovedTotal = %d, want 12", m.RowsRemovedTotal)
	}

	// Root-level figures come from the root only, not the tree.
	if m.TotalCost != 9000.0 {
		t.Errorf("TotalCost = %v, want 9000.0", m.TotalCost)
	}
	if m.PlanRowsRoot != 500 {
		t.Errorf("PlanRowsRoot = %d, want 500", m.PlanRowsRoot)
	}
	if m.ActualRowsRoot != 480 {
		t.Errorf("ActualRowsRoot = %d, want 480", m.ActualRowsRoot)
	}
}

func TestAggregate_KindHistogram(t *testing.T) {
	root := &plan.PlanNode{
		NodeType: "Hash Join",
		Plans: []plan.PlanNode{
			{NodeType: "Seq Scan"},
			{NodeType: "Hash", Plans: []plan.PlanNode{{NodeType: "Seq Scan"}}},
		},
	}

	m := Aggregate(root, DefaultPlanWeights)

	if m.ScanTypes["Seq Scan"] != 2 {
		t.Errorf("Seq Scan count = %d, want 2", m.ScanTypes["Seq Scan"])
	}
	if m.ScanTypes["Hash Join"] != 1 {
		t.Errorf("Hash Join count = %d, want 1", m.ScanTypes["Hash Join"])
	}
	if m.ScanTypes["Hash"] != 1 {
		t.Errorf("Hash count = %d, want 1", m.ScanTypes["Hash"])
	}
}

func TestAggregate_MissingNodeTypeNotCounted(t *testing.T) {
	root := &plan.PlanNode{
		NodeType: "Seq Scan",
		Plans:    []plan.PlanNode{{NodeType: ""}},
	}

	m := Aggregate(root, DefaultPlanWeights)

	if len(m.ScanTypes) != 1 {
		t.Errorf("ScanTypes = %v, want single entry", m.ScanTypes)
	}
}

func TestAggregate_ZeroUsageScoresOne(t *testing.T) {
	root := &plan.PlanNode{NodeType: "Result"}

	m := Aggregate(root, DefaultPlanWeights)

	if m.CombinedScore != 1.0 {
		t.Errorf("CombinedScore = %v, want exactly 1.0", m.CombinedScore)
	}
}

func TestAggregate_TimeoutsStartAtZero(t *testing.T) {
	m := Aggregate(&plan.PlanNode{NodeType: "Result"}, DefaultPlanWeights)
	if m.Timeouts != 0 {
		t.Errorf("Timeouts = %d, want 0", m.Timeouts)
	}
}
