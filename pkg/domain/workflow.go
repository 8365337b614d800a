package domain

import "context"

// WorkflowResult is the outcome of a single workflow step.
type WorkflowResult struct {
	Kind           TaskKind       `json:"kind"`
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	LeadsProcessed int            `json:"leads_processed"`
	Errors         []string       `json:"errors,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

// AggregateResult combines the ordered step results of a multi-task dispatch.
// Success requires every step to have succeeded; LeadsProcessed is the sum
// across steps and Errors the concatenation of all step errors.
type AggregateResult struct {
	Success        bool             `json:"success"`
	Message        string           `json:"message"`
	LeadsProcessed int              `json:"leads_processed"`
	Errors         []string         `json:"errors,omitempty"`
	StepResults    []WorkflowResult `json:"step_results"`
}

type WorkflowDispatcher interface {
	// Dispatch runs the descriptor's task kinds strictly in order. A failed step
	// never aborts later steps; each step's outcome is kept in the aggregate.
	Dispatch(ctx context.Context, userID string, descriptor TaskDescriptor, credentials CredentialMap) AggregateResult
}
