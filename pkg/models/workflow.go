package models

// WorkflowDefinition is the structured document being version-controlled: a
// named, ordered set of steps with triggers and metadata. The engine treats
// it as validated input; schema validation is the caller's responsibility.
type WorkflowDefinition struct {
	ID          string           `json:"id"`
	DocumentID  string           `json:"document_id"` // owning logical document (use case)
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Steps       []WorkflowStep   `json:"steps"`
	Triggers    []Trigger        `json:"triggers,omitempty"`
	Metadata    WorkflowMetadata `json:"metadata"`
}

// WorkflowStep is an identified unit of work within a definition. Steps are
// matched across revisions by ID, never by position.
type WorkflowStep struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Type       string                 `json:"type"`
	Agent      string                 `json:"agent,omitempty"`
	Service    string                 `json:"service,omitempty"`
	Action     string                 `json:"action,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Conditions map[string]interface{} `json:"conditions,omitempty"`
}

// Trigger describes when a workflow should run. The versioning engine never
// looks inside a trigger; it compares the trigger set as one opaque value.
type Trigger struct {
	Type   string                 `json:"type"`
	Config map[string]interface{} `json:"config,omitempty"`
}

// WorkflowMetadata carries the operational requirements of a definition.
// Changes to required services or agents are classified as breaking.
type WorkflowMetadata struct {
	RequiredServices []string `json:"required_services,omitempty"`
	RequiredAgents   []string `json:"required_agents,omitempty"`
	Criticality      string   `json:"criticality,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	Compliance       []string `json:"compliance,omitempty"`
}

// StepByID returns the step with the given id, or nil if no step has it.
func (d *WorkflowDefinition) StepByID(id string) *WorkflowStep {
	for i := range d.Steps {
		if d.Steps[i].ID == id {
			return &d.Steps[i]
		}
	}
	return nil
}
