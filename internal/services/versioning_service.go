// Package services contains the orchestration layer of the versioning engine.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"flowledger/internal/cache"
	"flowledger/internal/diff"
	"flowledger/internal/repository"
	"flowledger/internal/semver"
	"flowledger/pkg/models"
)

// Logger is the logging interface the service depends on, compatible with
// the application logger.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// VersioningService orchestrates version creation, comparison, and rollback.
// Construct one instance at process start; it owns the per-process history
// cache.
type VersioningService struct {
	store  repository.VersionStore
	cache  *cache.HistoryCache
	logger Logger

	versionsCreated metric.Int64Counter
	rollbacks       metric.Int64Counter
	conflicts       metric.Int64Counter
}

// NewVersioningService creates a new VersioningService.
func NewVersioningService(store repository.VersionStore, logger Logger) *VersioningService {
	meter := otel.Meter("flowledger/versioning")
	versionsCreated, _ := meter.Int64Counter("flowledger.versions.created",
		metric.WithDescription("Number of workflow versions created"))
	rollbacks, _ := meter.Int64Counter("flowledger.versions.rollbacks",
		metric.WithDescription("Number of rollback versions created"))
	conflicts, _ := meter.Int64Counter("flowledger.versions.conflicts",
		metric.WithDescription("Number of concurrent version-creation conflicts"))

	return &VersioningService{
		store:           store,
		cache:           cache.NewHistoryCache(),
		logger:          logger,
		versionsCreated: versionsCreated,
		rollbacks:       rollbacks,
		conflicts:       conflicts,
	}
}

// CreateVersion creates and activates the next version of a workflow.
//
// The diff is computed against the snapshot of the current active version;
// the first version of a workflow carries an empty change list and starts at
// semver.Initial. The deactivate+append pair is one atomic store operation:
// a racing writer loses with models.ErrVersionConflict and may retry.
func (s *VersioningService) CreateVersion(ctx context.Context, def *models.WorkflowDefinition, req models.ChangeRequest, createdBy string) (*models.WorkflowVersion, error) {
	return s.createVersion(ctx, def, req, createdBy, "")
}

func (s *VersioningService) createVersion(ctx context.Context, def *models.WorkflowDefinition, req models.ChangeRequest, createdBy, rollbackFrom string) (*models.WorkflowVersion, error) {
	if def == nil || def.ID == "" {
		return nil, fmt.Errorf("%w: definition has no workflow id", models.ErrWorkflowNotFound)
	}

	changes := []models.Change{}
	nextVersion := semver.Initial
	supersedes := ""

	active, err := s.store.GetActive(ctx, def.ID)
	switch {
	case err == nil:
		snapshot, err := s.store.GetSnapshot(ctx, active.ID)
		if err != nil {
			return nil, err
		}
		changes = diff.Diff(snapshot, def)
		nextVersion, err = semver.Next(active.Version, req.ChangeType)
		if err != nil {
			return nil, err
		}
		supersedes = active.ID
	case errors.Is(err, models.ErrWorkflowNotFound):
		// First version for this workflow.
	default:
		return nil, err
	}

	sortKey, err := semver.SortKey(nextVersion)
	if err != nil {
		return nil, err
	}

	version := &models.WorkflowVersion{
		ID:            uuid.New().String(),
		WorkflowID:    def.ID,
		DocumentID:    def.DocumentID,
		Version:       nextVersion,
		VersionNumber: sortKey,
		Changes:       changes,
		CreatedAt:     time.Now().UTC(),
		CreatedBy:     createdBy,
		IsActive:      true,
		RollbackFrom:  rollbackFrom,
		Metadata: models.VersionMetadata{
			ChangeType:  req.ChangeType,
			Description: req.Description,
			Breaking:    req.Breaking,
			Tags:        req.Tags,
		},
	}

	if err := s.store.Append(ctx, version, def, supersedes); err != nil {
		if errors.Is(err, models.ErrVersionConflict) {
			s.conflicts.Add(ctx, 1)
		}
		return nil, err
	}

	s.cache.Invalidate(def.ID)
	s.versionsCreated.Add(ctx, 1)
	s.logger.Info("created workflow version %s for workflow %s (%d changes)", nextVersion, def.ID, len(changes))
	return version, nil
}

// GetCurrentVersion returns the active version string and its snapshot, or
// nil if the workflow has no versions yet.
func (s *VersioningService) GetCurrentVersion(ctx context.Context, workflowID string) (*models.CurrentVersion, error) {
	active, err := s.store.GetActive(ctx, workflowID)
	if errors.Is(err, models.ErrWorkflowNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snapshot, err := s.store.GetSnapshot(ctx, active.ID)
	if err != nil {
		return nil, err
	}
	return &models.CurrentVersion{Version: active.Version, Definition: snapshot}, nil
}

// GetVersionHistory returns all versions, newest first, read-through cached.
func (s *VersioningService) GetVersionHistory(ctx context.Context, workflowID string) ([]*models.WorkflowVersion, error) {
	if history, ok := s.cache.Get(workflowID); ok {
		return history, nil
	}

	history, err := s.store.ListHistory(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	s.cache.Put(workflowID, history)
	return history, nil
}

// RollbackToVersion appends a new patch version whose content matches the
// named historical version. The target record itself is untouched.
func (s *VersioningService) RollbackToVersion(ctx context.Context, workflowID, targetVersion, reason, performedBy string) (*models.WorkflowDefinition, error) {
	target, err := s.store.GetByVersion(ctx, workflowID, targetVersion)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.store.GetSnapshot(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	req := models.ChangeRequest{
		ChangeType:  models.ChangeTypePatch,
		Description: fmt.Sprintf("Rollback to version %s: %s", targetVersion, reason),
		Breaking:    false,
		Tags:        []string{"rollback"},
	}
	if _, err := s.createVersion(ctx, snapshot, req, performedBy, target.ID); err != nil {
		return nil, err
	}

	s.rollbacks.Add(ctx, 1)
	s.logger.Info("rolled back workflow %s to version %s", workflowID, targetVersion)
	return snapshot, nil
}

// CompareVersions diffs two historical versions, v1 as old and v2 as new.
func (s *VersioningService) CompareVersions(ctx context.Context, workflowID, v1, v2 string) (*models.ComparisonResult, error) {
	oldVersion, err := s.store.GetByVersion(ctx, workflowID, v1)
	if err != nil {
		return nil, err
	}
	newVersion, err := s.store.GetByVersion(ctx, workflowID, v2)
	if err != nil {
		return nil, err
	}

	oldSnapshot, err := s.store.GetSnapshot(ctx, oldVersion.ID)
	if err != nil {
		return nil, err
	}
	newSnapshot, err := s.store.GetSnapshot(ctx, newVersion.ID)
	if err != nil {
		return nil, err
	}

	changes := diff.Diff(oldSnapshot, newSnapshot)
	return &models.ComparisonResult{
		Changes:       changes,
		Breaking:      diff.IsBreaking(changes),
		Compatibility: diff.Compatibility(changes),
	}, nil
}

// ExportVersionHistory serializes the full history as indented JSON.
func (s *VersioningService) ExportVersionHistory(ctx context.Context, workflowID string) ([]byte, error) {
	history, err := s.GetVersionHistory(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(history, "", "  ")
}
