package models

import "errors"

// Error kinds surfaced by the versioning engine. All of them are
// caller-actionable and propagate unmodified; none are recovered internally.
var (
	// ErrWorkflowNotFound means the referenced logical workflow does not exist.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrVersionNotFound means the named semver string is absent from history.
	ErrVersionNotFound = errors.New("version not found")

	// ErrInvalidVersionFormat means a supplied or stored version string is not
	// three dot-separated non-negative integers.
	ErrInvalidVersionFormat = errors.New("invalid version format")

	// ErrVersionConflict means a concurrent writer superseded the active
	// version first. The operation is safe to retry against the new head.
	ErrVersionConflict = errors.New("concurrent version modification")

	// ErrStoreUnavailable wraps I/O failures from the persistence backend.
	ErrStoreUnavailable = errors.New("version store unavailable")

	// ErrSnapshotMissing means a version record exists but its definition
	// snapshot could not be loaded. This is a data-consistency fault.
	ErrSnapshotMissing = errors.New("definition snapshot missing")
)
