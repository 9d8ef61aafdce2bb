// Package models defines the domain models for the workflow versioning engine.
package models

import (
	"time"
)

// ChangeKind classifies a single difference between two definition snapshots.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeRemoved  ChangeKind = "removed"
)

// ChangeType is the semantic-version bump requested for a new version.
type ChangeType string

const (
	ChangeTypeMajor ChangeType = "major"
	ChangeTypeMinor ChangeType = "minor"
	ChangeTypePatch ChangeType = "patch"
)

// Compatibility is the verdict for a change set as a whole.
type Compatibility string

const (
	CompatibilityCompatible   Compatibility = "compatible"
	CompatibilityWarning      Compatibility = "warning"
	CompatibilityIncompatible Compatibility = "incompatible"
)

// Change is one atomic difference between two definition snapshots, located
// by a dot-separated path such as "steps.step-7.parameters" or "metadata.tags".
type Change struct {
	Type        ChangeKind  `json:"type"`
	Path        string      `json:"path"`
	OldValue    interface{} `json:"old_value,omitempty"`
	NewValue    interface{} `json:"new_value,omitempty"`
	Description string      `json:"description,omitempty"`
}

// VersionMetadata is the human-supplied context attached to a version.
type VersionMetadata struct {
	ChangeType  ChangeType `json:"change_type"`
	Description string     `json:"description"`
	Breaking    bool       `json:"breaking"`
	Tags        []string   `json:"tags,omitempty"`
}

// WorkflowVersion is one node in a workflow's append-only version chain.
//
// For a given WorkflowID at most one version is active at any instant, and
// VersionNumber is strictly increasing in creation order. No field other
// than IsActive is ever mutated after creation; IsActive flips exactly once,
// from true to false, when the version is superseded.
type WorkflowVersion struct {
	ID            string          `json:"id"`
	WorkflowID    string          `json:"workflow_id"`
	DocumentID    string          `json:"document_id"`
	Version       string          `json:"version"`
	VersionNumber int64           `json:"version_number"`
	Changes       []Change        `json:"changes"`
	CreatedAt     time.Time       `json:"created_at"`
	CreatedBy     string          `json:"created_by,omitempty"`
	IsActive      bool            `json:"is_active"`
	RollbackFrom  string          `json:"rollback_from,omitempty"`
	Metadata      VersionMetadata `json:"metadata"`
}

// ChangeRequest is the caller-supplied intent for creating a new version.
type ChangeRequest struct {
	ChangeType  ChangeType `json:"change_type"`
	Description string     `json:"description"`
	Breaking    bool       `json:"breaking"`
	Tags        []string   `json:"tags,omitempty"`
}

// CurrentVersion pairs the active version string with its full snapshot.
type CurrentVersion struct {
	Version    string              `json:"version"`
	Definition *WorkflowDefinition `json:"definition"`
}

// ComparisonResult is the outcome of diffing two historical versions.
type ComparisonResult struct {
	Changes       []Change      `json:"changes"`
	Breaking      bool          `json:"breaking"`
	Compatibility Compatibility `json:"compatibility"`
}
