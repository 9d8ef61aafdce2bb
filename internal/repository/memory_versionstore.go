package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"flowledger/pkg/models"
)

// MemoryVersionStore is an in-memory VersionStore with the same atomicity
// semantics as the PostgreSQL implementation. It backs unit tests and local
// development without a database.
type MemoryVersionStore struct {
	mu        sync.Mutex
	versions  map[string]*models.WorkflowVersion // by version ID
	snapshots map[string][]byte                  // by version ID, stored serialized
	byFlow    map[string][]string                // workflow ID -> version IDs in creation order
}

// NewMemoryVersionStore creates an empty MemoryVersionStore.
func NewMemoryVersionStore() *MemoryVersionStore {
	return &MemoryVersionStore{
		versions:  make(map[string]*models.WorkflowVersion),
		snapshots: make(map[string][]byte),
		byFlow:    make(map[string][]string),
	}
}

// GetActive returns the active version for a workflow.
func (s *MemoryVersionStore) GetActive(ctx context.Context, workflowID string) (*models.WorkflowVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, ok := s.byFlow[workflowID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrWorkflowNotFound, workflowID)
	}
	for _, id := range ids {
		if s.versions[id].IsActive {
			return copyVersion(s.versions[id]), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", models.ErrWorkflowNotFound, workflowID)
}

// Append persists a new active version, atomically deactivating the
// superseded one. The mutex serializes writers; the supersedes check gives
// the same compare-and-swap behavior as the conditional SQL update.
func (s *MemoryVersionStore) Append(ctx context.Context, version *models.WorkflowVersion, snapshot *models.WorkflowDefinition, supersedes string) error {
	snap, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if supersedes != "" {
		prev, ok := s.versions[supersedes]
		if !ok || !prev.IsActive {
			return fmt.Errorf("%w: version %s already superseded", models.ErrVersionConflict, supersedes)
		}
		prev.IsActive = false
	} else {
		for _, id := range s.byFlow[version.WorkflowID] {
			if s.versions[id].IsActive {
				return fmt.Errorf("%w: workflow %s already has an active version", models.ErrVersionConflict, version.WorkflowID)
			}
		}
	}

	s.versions[version.ID] = copyVersion(version)
	s.snapshots[version.ID] = snap
	s.byFlow[version.WorkflowID] = append(s.byFlow[version.WorkflowID], version.ID)
	return nil
}

// ListHistory returns all versions of a workflow, newest first.
func (s *MemoryVersionStore) ListHistory(ctx context.Context, workflowID string) ([]*models.WorkflowVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]*models.WorkflowVersion, 0, len(s.byFlow[workflowID]))
	for _, id := range s.byFlow[workflowID] {
		history = append(history, copyVersion(s.versions[id]))
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].VersionNumber > history[j].VersionNumber
	})
	return history, nil
}

// GetByVersion resolves a semver string within a workflow's history.
func (s *MemoryVersionStore) GetByVersion(ctx context.Context, workflowID, version string) (*models.WorkflowVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.byFlow[workflowID] {
		if s.versions[id].Version == version {
			return copyVersion(s.versions[id]), nil
		}
	}
	return nil, fmt.Errorf("%w: %s@%s", models.ErrVersionNotFound, workflowID, version)
}

// GetSnapshot loads the definition snapshot stored with a version.
func (s *MemoryVersionStore) GetSnapshot(ctx context.Context, versionID string) (*models.WorkflowDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.snapshots[versionID]
	if !ok {
		return nil, fmt.Errorf("%w: version %s", models.ErrSnapshotMissing, versionID)
	}
	var def models.WorkflowDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("%w: version %s: %v", models.ErrSnapshotMissing, versionID, err)
	}
	return &def, nil
}

// copyVersion guards the store's records against caller mutation; history is
// append-only and returned versions must stay immutable.
func copyVersion(v *models.WorkflowVersion) *models.WorkflowVersion {
	cp := *v
	cp.Changes = append([]models.Change(nil), v.Changes...)
	cp.Metadata.Tags = append([]string(nil), v.Metadata.Tags...)
	return &cp
}
