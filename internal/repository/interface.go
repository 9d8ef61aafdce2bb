package repository

import (
	"context"

	"flowledger/pkg/models"
)

// VersionStore is the persistence protocol for workflow version chains.
//
// History is append-only: a stored version is never mutated except for its
// is_active flag, which flips true->false exactly once when superseded.
// Append is the single atomic unit that performs that flip together with the
// insert of the successor; the store is never observable with zero or two
// active versions for a workflow that has history.
type VersionStore interface {
	// GetActive returns the active version for a workflow, or
	// models.ErrWorkflowNotFound if the workflow has no versions at all.
	GetActive(ctx context.Context, workflowID string) (*models.WorkflowVersion, error)

	// Append persists a new active version together with its definition
	// snapshot. When supersedes is non-empty it deactivates that version in
	// the same transaction, conditionally on it still being active; a lost
	// race fails the whole operation with models.ErrVersionConflict.
	Append(ctx context.Context, version *models.WorkflowVersion, snapshot *models.WorkflowDefinition, supersedes string) error

	// ListHistory returns all versions of a workflow, descending by
	// version number.
	ListHistory(ctx context.Context, workflowID string) ([]*models.WorkflowVersion, error)

	// GetByVersion resolves a semver string within a workflow's history, or
	// models.ErrVersionNotFound.
	GetByVersion(ctx context.Context, workflowID, version string) (*models.WorkflowVersion, error)

	// GetSnapshot loads the definition snapshot stored with a version, or
	// models.ErrSnapshotMissing.
	GetSnapshot(ctx context.Context, versionID string) (*models.WorkflowDefinition, error)
}
