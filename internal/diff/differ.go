// Package diff compares two workflow-definition snapshots and classifies the
// resulting change set for backward compatibility.
package diff

import (
	"encoding/json"
	"fmt"
	"sort"

	"flowledger/pkg/models"
)

// Diff computes the ordered change list between two definition snapshots.
// It is pure and deterministic: the same pair of inputs always produces the
// same changes in the same order, regardless of step ordering in the inputs.
//
// Emission order: scalar fields, step additions, step removals, step
// modifications, triggers, metadata keys. Steps are matched by ID; within
// each step group the IDs are visited in lexical order.
func Diff(old, new *models.WorkflowDefinition) []models.Change {
	changes := []models.Change{}

	if old.Name != new.Name {
		changes = append(changes, models.Change{
			Type:        models.ChangeModified,
			Path:        "name",
			OldValue:    old.Name,
			NewValue:    new.Name,
			Description: "Workflow name changed",
		})
	}
	if old.Description != new.Description {
		changes = append(changes, models.Change{
			Type:        models.ChangeModified,
			Path:        "description",
			OldValue:    old.Description,
			NewValue:    new.Description,
			Description: "Workflow description changed",
		})
	}

	changes = append(changes, diffSteps(old, new)...)

	if !jsonEqual(old.Triggers, new.Triggers) {
		changes = append(changes, models.Change{
			Type:        models.ChangeModified,
			Path:        "triggers",
			OldValue:    old.Triggers,
			NewValue:    new.Triggers,
			Description: "Workflow triggers changed",
		})
	}

	changes = append(changes, diffMetadata(old.Metadata, new.Metadata)...)

	return changes
}

// stepFields are the per-step scalar fields diffed individually. Parameters
// and conditions are compared as opaque wholes instead.
var stepFields = []struct {
	name string
	get  func(*models.WorkflowStep) string
}{
	{"name", func(s *models.WorkflowStep) string { return s.Name }},
	{"type", func(s *models.WorkflowStep) string { return s.Type }},
	{"agent", func(s *models.WorkflowStep) string { return s.Agent }},
	{"service", func(s *models.WorkflowStep) string { return s.Service }},
	{"action", func(s *models.WorkflowStep) string { return s.Action }},
}

func diffSteps(old, new *models.WorkflowDefinition) []models.Change {
	oldIDs := make(map[string]bool, len(old.Steps))
	for _, s := range old.Steps {
		oldIDs[s.ID] = true
	}
	newIDs := make(map[string]bool, len(new.Steps))
	for _, s := range new.Steps {
		newIDs[s.ID] = true
	}

	var added, removed, common []string
	for id := range newIDs {
		if oldIDs[id] {
			common = append(common, id)
		} else {
			added = append(added, id)
		}
	}
	for id := range oldIDs {
		if !newIDs[id] {
			removed = append(removed, id)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(common)

	var changes []models.Change
	for _, id := range added {
		step := new.StepByID(id)
		changes = append(changes, models.Change{
			Type:        models.ChangeAdded,
			Path:        "steps." + id,
			NewValue:    step,
			Description: fmt.Sprintf("Step %q added", step.Name),
		})
	}
	for _, id := range removed {
		step := old.StepByID(id)
		changes = append(changes, models.Change{
			Type:        models.ChangeRemoved,
			Path:        "steps." + id,
			OldValue:    step,
			Description: fmt.Sprintf("Step %q removed", step.Name),
		})
	}
	for _, id := range common {
		oldStep, newStep := old.StepByID(id), new.StepByID(id)
		for _, f := range stepFields {
			ov, nv := f.get(oldStep), f.get(newStep)
			if ov != nv {
				changes = append(changes, models.Change{
					Type:        models.ChangeModified,
					Path:        "steps." + id + "." + f.name,
					OldValue:    ov,
					NewValue:    nv,
					Description: fmt.Sprintf("Step %q %s changed", oldStep.Name, f.name),
				})
			}
		}
		if !jsonEqual(oldStep.Parameters, newStep.Parameters) {
			changes = append(changes, models.Change{
				Type:        models.ChangeModified,
				Path:        "steps." + id + ".parameters",
				OldValue:    oldStep.Parameters,
				NewValue:    newStep.Parameters,
				Description: fmt.Sprintf("Step %q parameters changed", oldStep.Name),
			})
		}
		if !jsonEqual(oldStep.Conditions, newStep.Conditions) {
			changes = append(changes, models.Change{
				Type:        models.ChangeModified,
				Path:        "steps." + id + ".conditions",
				OldValue:    oldStep.Conditions,
				NewValue:    newStep.Conditions,
				Description: fmt.Sprintf("Step %q conditions changed", oldStep.Name),
			})
		}
	}
	return changes
}

// metadataKeys fixes the emission order for metadata comparisons.
var metadataKeys = []struct {
	name string
	get  func(models.WorkflowMetadata) interface{}
}{
	{"requiredServices", func(m models.WorkflowMetadata) interface{} { return m.RequiredServices }},
	{"requiredAgents", func(m models.WorkflowMetadata) interface{} { return m.RequiredAgents }},
	{"criticality", func(m models.WorkflowMetadata) interface{} { return m.Criticality }},
	{"tags", func(m models.WorkflowMetadata) interface{} { return m.Tags }},
	{"compliance", func(m models.WorkflowMetadata) interface{} { return m.Compliance }},
}

func diffMetadata(old, new models.WorkflowMetadata) []models.Change {
	var changes []models.Change
	for _, k := range metadataKeys {
		ov, nv := k.get(old), k.get(new)
		if !jsonEqual(ov, nv) {
			changes = append(changes, models.Change{
				Type:        models.ChangeModified,
				Path:        "metadata." + k.name,
				OldValue:    ov,
				NewValue:    nv,
				Description: fmt.Sprintf("Metadata %s changed", k.name),
			})
		}
	}
	return changes
}

// jsonEqual reports whether two values serialize to the same JSON. Opaque
// structures (parameters, conditions, triggers, metadata values) are compared
// as wholes; there is no sub-diff inside them.
func jsonEqual(a, b interface{}) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ab) == string(bb)
}
