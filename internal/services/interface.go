package services

import (
	"context"

	"flowledger/pkg/models"
)

// Versioner is the public contract of the workflow versioning engine.
type Versioner interface {
	// CreateVersion diffs the definition against the current active version,
	// computes the next semver for the requested change type, and atomically
	// swaps the active pointer to the new version.
	CreateVersion(ctx context.Context, def *models.WorkflowDefinition, req models.ChangeRequest, createdBy string) (*models.WorkflowVersion, error)

	// GetCurrentVersion returns the active version string and its snapshot,
	// or nil if the workflow has no versions yet.
	GetCurrentVersion(ctx context.Context, workflowID string) (*models.CurrentVersion, error)

	// GetVersionHistory returns all versions, newest first.
	GetVersionHistory(ctx context.Context, workflowID string) ([]*models.WorkflowVersion, error)

	// RollbackToVersion creates a new version carrying a historical
	// version's snapshot. History is never rewound or mutated.
	RollbackToVersion(ctx context.Context, workflowID, targetVersion, reason, performedBy string) (*models.WorkflowDefinition, error)

	// CompareVersions diffs two historical versions, v1 as old and v2 as new.
	CompareVersions(ctx context.Context, workflowID, v1, v2 string) (*models.ComparisonResult, error)

	// ExportVersionHistory serializes the full history as JSON.
	ExportVersionHistory(ctx context.Context, workflowID string) ([]byte, error)
}
