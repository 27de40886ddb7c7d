package app

import (
	"skill-installer/internal/core"
	"skill-installer/internal/types"
)

// ExplainResult shows how a query scored against the catalog.
type ExplainResult struct {
	Query      string
	Scores     []core.ScoredEntry
	Candidates []types.SkillEntry
}

// ReconcileResult holds the per-name outcome of both directive batches.
type ReconcileResult struct {
	Installed types.BatchResult
	Removed   types.BatchResult
}

func emptyReconcileResult() ReconcileResult {
	return ReconcileResult{
		Installed: types.NewBatchResult(),
		Removed:   types.NewBatchResult(),
	}
}
