package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowledger/pkg/models"
)

func TestIsBreakingStepRemoval(t *testing.T) {
	changes := []models.Change{
		{Type: models.ChangeRemoved, Path: "steps.step-7"},
	}
	assert.True(t, IsBreaking(changes))
	assert.Equal(t, models.CompatibilityIncompatible, Compatibility(changes))
}

func TestIsBreakingStepTypeChange(t *testing.T) {
	changes := []models.Change{
		{Type: models.ChangeModified, Path: "steps.step-1.type", OldValue: "agent", NewValue: "service"},
	}
	assert.True(t, IsBreaking(changes))
}

func TestIsBreakingRequiredDependencies(t *testing.T) {
	assert.True(t, IsBreaking([]models.Change{
		{Type: models.ChangeModified, Path: "metadata.requiredServices"},
	}))
	assert.True(t, IsBreaking([]models.Change{
		{Type: models.ChangeModified, Path: "metadata.requiredAgents"},
	}))
}

func TestNonBreakingChanges(t *testing.T) {
	changes := []models.Change{
		{Type: models.ChangeModified, Path: "description"},
		{Type: models.ChangeAdded, Path: "steps.step-9"},
		{Type: models.ChangeModified, Path: "steps.step-1.name"},
		{Type: models.ChangeModified, Path: "metadata.tags"},
	}
	assert.False(t, IsBreaking(changes))
	assert.Equal(t, models.CompatibilityWarning, Compatibility(changes))
}

func TestCompatibilityEmpty(t *testing.T) {
	assert.Equal(t, models.CompatibilityCompatible, Compatibility(nil))
}

func TestBreakingChangesReturnsAllMatches(t *testing.T) {
	changes := []models.Change{
		{Type: models.ChangeModified, Path: "name"},
		{Type: models.ChangeRemoved, Path: "steps.step-2"},
		{Type: models.ChangeModified, Path: "steps.step-1.type"},
		{Type: models.ChangeModified, Path: "metadata.requiredAgents"},
	}
	breaking := BreakingChanges(changes)
	require.Len(t, breaking, 3)
	assert.Equal(t, "steps.step-2", breaking[0].Path)
	assert.Equal(t, "steps.step-1.type", breaking[1].Path)
	assert.Equal(t, "metadata.requiredAgents", breaking[2].Path)
}
