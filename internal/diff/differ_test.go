package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowledger/pkg/models"
)

func sampleDefinition() *models.WorkflowDefinition {
	return &models.WorkflowDefinition{
		ID:          "wf-1",
		DocumentID:  "doc-1",
		Name:        "Incident triage",
		Description: "Routes incoming incidents to the right team",
		Steps: []models.WorkflowStep{
			{
				ID:      "step-1",
				Name:    "Classify",
				Type:    "agent",
				Agent:   "classifier",
				Parameters: map[string]interface{}{
					"threshold": 0.8,
				},
			},
			{
				ID:      "step-2",
				Name:    "Notify",
				Type:    "service",
				Service: "notifications",
				Conditions: map[string]interface{}{
					"severity": "high",
				},
			},
		},
		Triggers: []models.Trigger{
			{Type: "schedule", Config: map[string]interface{}{"cron": "0 * * * *"}},
		},
		Metadata: models.WorkflowMetadata{
			RequiredServices: []string{"notifications"},
			RequiredAgents:   []string{"classifier"},
			Criticality:      "high",
			Tags:             []string{"incident"},
		},
	}
}

func TestDiffIdentity(t *testing.T) {
	a := sampleDefinition()
	b := sampleDefinition()
	assert.Empty(t, Diff(a, b))
}

func TestDiffDeterministic(t *testing.T) {
	a := sampleDefinition()
	b := sampleDefinition()
	b.Name = "Incident triage v2"
	b.Steps = append(b.Steps, models.WorkflowStep{ID: "step-9", Name: "Archive", Type: "action"})
	b.Steps = append(b.Steps, models.WorkflowStep{ID: "step-3", Name: "Escalate", Type: "action"})
	b.Metadata.Tags = []string{"incident", "v2"}

	first := Diff(a, b)
	second := Diff(a, b)
	assert.Equal(t, first, second)

	// Step ordering in the input must not affect the result.
	b.Steps[len(b.Steps)-1], b.Steps[len(b.Steps)-2] = b.Steps[len(b.Steps)-2], b.Steps[len(b.Steps)-1]
	third := Diff(a, b)
	assert.Equal(t, first, third)
}

func TestDiffDescriptionOnly(t *testing.T) {
	a := sampleDefinition()
	b := sampleDefinition()
	b.Description = "Routes incidents, now with paging"

	changes := Diff(a, b)
	require.Len(t, changes, 1)
	assert.Equal(t, models.ChangeModified, changes[0].Type)
	assert.Equal(t, "description", changes[0].Path)
	assert.Equal(t, models.CompatibilityWarning, Compatibility(changes))
}

func TestDiffStepAddedAndRemoved(t *testing.T) {
	a := sampleDefinition()
	b := sampleDefinition()
	b.Steps = []models.WorkflowStep{
		b.Steps[0],
		{ID: "step-7", Name: "Resolve", Type: "action", Action: "close-ticket"},
	}

	changes := Diff(a, b)
	require.Len(t, changes, 2)

	assert.Equal(t, models.ChangeAdded, changes[0].Type)
	assert.Equal(t, "steps.step-7", changes[0].Path)
	assert.Equal(t, models.ChangeRemoved, changes[1].Type)
	assert.Equal(t, "steps.step-2", changes[1].Path)
}

func TestDiffStepFieldChanges(t *testing.T) {
	a := sampleDefinition()
	b := sampleDefinition()
	b.Steps[0].Type = "service"
	b.Steps[0].Parameters = map[string]interface{}{"threshold": 0.9}

	changes := Diff(a, b)
	require.Len(t, changes, 2)
	assert.Equal(t, "steps.step-1.type", changes[0].Path)
	assert.Equal(t, "agent", changes[0].OldValue)
	assert.Equal(t, "service", changes[0].NewValue)
	assert.Equal(t, "steps.step-1.parameters", changes[1].Path)
}

func TestDiffTriggersAsWhole(t *testing.T) {
	a := sampleDefinition()
	b := sampleDefinition()
	b.Triggers[0].Config["cron"] = "30 * * * *"

	changes := Diff(a, b)
	require.Len(t, changes, 1)
	assert.Equal(t, "triggers", changes[0].Path)
	assert.Equal(t, models.ChangeModified, changes[0].Type)
}

func TestDiffMetadataKeys(t *testing.T) {
	a := sampleDefinition()
	b := sampleDefinition()
	b.Metadata.RequiredServices = []string{"notifications", "paging"}
	b.Metadata.Criticality = "critical"

	changes := Diff(a, b)
	require.Len(t, changes, 2)
	assert.Equal(t, "metadata.requiredServices", changes[0].Path)
	assert.Equal(t, "metadata.criticality", changes[1].Path)
}

func TestDiffEmissionOrder(t *testing.T) {
	a := sampleDefinition()
	b := sampleDefinition()
	b.Name = "renamed"
	b.Steps = []models.WorkflowStep{
		{ID: "step-1", Name: "Classify", Type: "agent", Agent: "classifier-v2",
			Parameters: map[string]interface{}{"threshold": 0.8}},
		{ID: "step-5", Name: "Audit", Type: "action"},
	}
	b.Triggers = nil
	b.Metadata.Tags = []string{"incident", "audited"}

	changes := Diff(a, b)
	paths := make([]string, len(changes))
	for i, c := range changes {
		paths[i] = c.Path
	}
	assert.Equal(t, []string{
		"name",
		"steps.step-5",
		"steps.step-2",
		"steps.step-1.agent",
		"triggers",
		"metadata.tags",
	}, paths)
}
