package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"flowledger/pkg/models"
)

// schema bootstraps the version store. The partial unique index backstops the
// single-active invariant: two racing first versions for the same workflow
// cannot both insert as active.
const schema = `
CREATE TABLE IF NOT EXISTS workflow_versions (
	id TEXT PRIMARY KEY,
	workflow_id TEXT NOT NULL,
	document_id TEXT NOT NULL,
	version TEXT NOT NULL,
	version_number BIGINT NOT NULL,
	changes JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL,
	created_by TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL,
	rollback_from TEXT NOT NULL DEFAULT '',
	metadata JSONB NOT NULL DEFAULT '{}',
	snapshot JSONB NOT NULL,
	UNIQUE (workflow_id, version)
);
CREATE UNIQUE INDEX IF NOT EXISTS workflow_versions_one_active
	ON workflow_versions (workflow_id) WHERE is_active;
CREATE INDEX IF NOT EXISTS workflow_versions_history
	ON workflow_versions (workflow_id, version_number DESC);
`

const versionColumns = `id, workflow_id, document_id, version, version_number, changes, created_at, created_by, is_active, rollback_from, metadata`

// PostgresVersionStore is the PostgreSQL implementation of VersionStore.
type PostgresVersionStore struct {
	db *pgxpool.Pool
}

// NewPostgresVersionStore creates a new PostgresVersionStore.
func NewPostgresVersionStore(db *pgxpool.Pool) *PostgresVersionStore {
	return &PostgresVersionStore{db: db}
}

// EnsureSchema creates the version table and indexes if they do not exist.
func (s *PostgresVersionStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%w: ensure schema: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

// GetActive returns the active version for a workflow.
func (s *PostgresVersionStore) GetActive(ctx context.Context, workflowID string) (*models.WorkflowVersion, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+versionColumns+` FROM workflow_versions WHERE workflow_id = $1 AND is_active`,
		workflowID)
	version, err := scanVersion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrWorkflowNotFound, workflowID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get active: %v", models.ErrStoreUnavailable, err)
	}
	return version, nil
}

// Append persists a new active version and its snapshot, deactivating the
// superseded version in the same transaction.
func (s *PostgresVersionStore) Append(ctx context.Context, version *models.WorkflowVersion, snapshot *models.WorkflowDefinition, supersedes string) error {
	changes, err := json.Marshal(version.Changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}
	metadata, err := json.Marshal(version.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	snap, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", models.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	if supersedes != "" {
		// Conditional swap: only succeeds if the superseded version is still
		// the active one. A concurrent writer getting there first makes this
		// a no-op, and the whole append fails as a retryable conflict.
		tag, err := tx.Exec(ctx,
			`UPDATE workflow_versions SET is_active = FALSE WHERE id = $1 AND is_active`,
			supersedes)
		if err != nil {
			return fmt.Errorf("%w: deactivate: %v", models.ErrStoreUnavailable, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: version %s already superseded", models.ErrVersionConflict, supersedes)
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO workflow_versions (`+versionColumns+`, snapshot)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		version.ID, version.WorkflowID, version.DocumentID, version.Version,
		version.VersionNumber, changes, version.CreatedAt, version.CreatedBy,
		version.IsActive, version.RollbackFrom, metadata, snap)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %v", models.ErrVersionConflict, err)
		}
		return fmt.Errorf("%w: insert version: %v", models.ErrStoreUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

// ListHistory returns all versions of a workflow, newest first.
func (s *PostgresVersionStore) ListHistory(ctx context.Context, workflowID string) ([]*models.WorkflowVersion, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+versionColumns+` FROM workflow_versions WHERE workflow_id = $1 ORDER BY version_number DESC`,
		workflowID)
	if err != nil {
		return nil, fmt.Errorf("%w: list history: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var history []*models.WorkflowVersion
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan version: %v", models.ErrStoreUnavailable, err)
		}
		history = append(history, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list history: %v", models.ErrStoreUnavailable, err)
	}
	return history, nil
}

// GetByVersion resolves a semver string within a workflow's history.
func (s *PostgresVersionStore) GetByVersion(ctx context.Context, workflowID, version string) (*models.WorkflowVersion, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+versionColumns+` FROM workflow_versions WHERE workflow_id = $1 AND version = $2`,
		workflowID, version)
	v, err := scanVersion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s@%s", models.ErrVersionNotFound, workflowID, version)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get by version: %v", models.ErrStoreUnavailable, err)
	}
	return v, nil
}

// GetSnapshot loads the definition snapshot stored with a version.
func (s *PostgresVersionStore) GetSnapshot(ctx context.Context, versionID string) (*models.WorkflowDefinition, error) {
	var raw []byte
	err := s.db.QueryRow(ctx,
		`SELECT snapshot FROM workflow_versions WHERE id = $1`, versionID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: version %s", models.ErrSnapshotMissing, versionID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get snapshot: %v", models.ErrStoreUnavailable, err)
	}

	var def models.WorkflowDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("%w: version %s: %v", models.ErrSnapshotMissing, versionID, err)
	}
	return &def, nil
}

func scanVersion(row pgx.Row) (*models.WorkflowVersion, error) {
	var v models.WorkflowVersion
	var changes, metadata []byte
	err := row.Scan(&v.ID, &v.WorkflowID, &v.DocumentID, &v.Version, &v.VersionNumber,
		&changes, &v.CreatedAt, &v.CreatedBy, &v.IsActive, &v.RollbackFrom, &metadata)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(changes, &v.Changes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metadata, &v.Metadata); err != nil {
		return nil, err
	}
	return &v, nil
}
