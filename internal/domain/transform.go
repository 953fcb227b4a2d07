package domain

import "time"

// PlanStatus mirrors the status label the backend stores on a plan. It uses
// the same vocabulary as JobStatus but is a distinct concept: a plan can be
// executed many times, each execution being its own Job.
type PlanStatus string

const (
	PlanPending   PlanStatus = "pending"
	PlanRunning   PlanStatus = "running"
	PlanCompleted PlanStatus = "completed"
	PlanFailed    PlanStatus = "failed"
)

// TransformationPlan is an AI-generated cleanup/reshape recipe for a dataset.
type TransformationPlan struct {
	ID                   string               `json:"id"`
	Name                 string               `json:"name"`
	Description          string               `json:"description"`
	Status               PlanStatus           `json:"status"`
	TransformationSteps  []TransformationStep `json:"transformation_steps"`
	ExpectedImprovements []string             `json:"expected_improvements,omitempty"`
	TransformationScript string               `json:"transformation_script,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// TransformationStep is one ordered operation within a plan.
type TransformationStep struct {
	Order       int               `json:"order"`
	Operation   string            `json:"operation"`
	Description string            `json:"description,omitempty"`
	Parameters  map[string]string `json:"parameters,omitempty"`
}
