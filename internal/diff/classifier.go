package diff

import (
	"strings"

	"flowledger/pkg/models"
)

// isBreakingChange reports whether a single change breaks consumers of the
// prior version: a removed step, a changed step type, or any touch of the
// required-services/required-agents dependency lists.
func isBreakingChange(c models.Change) bool {
	if c.Type == models.ChangeRemoved && strings.HasPrefix(c.Path, "steps.") {
		return true
	}
	if c.Type == models.ChangeModified && strings.HasSuffix(c.Path, ".type") {
		return true
	}
	if strings.Contains(c.Path, "requiredServices") || strings.Contains(c.Path, "requiredAgents") {
		return true
	}
	return false
}

// IsBreaking reports whether any change in the set is breaking.
func IsBreaking(changes []models.Change) bool {
	for _, c := range changes {
		if isBreakingChange(c) {
			return true
		}
	}
	return false
}

// BreakingChanges returns every breaking change in the set, for diagnostics.
func BreakingChanges(changes []models.Change) []models.Change {
	var breaking []models.Change
	for _, c := range changes {
		if isBreakingChange(c) {
			breaking = append(breaking, c)
		}
	}
	return breaking
}

// Compatibility assigns the overall verdict: incompatible if any change is
// breaking, warning if anything changed at all, compatible otherwise.
func Compatibility(changes []models.Change) models.Compatibility {
	switch {
	case IsBreaking(changes):
		return models.CompatibilityIncompatible
	case len(changes) > 0:
		return models.CompatibilityWarning
	default:
		return models.CompatibilityCompatible
	}
}
