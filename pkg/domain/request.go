package domain

import "context"

// AgentRequest is the one inbound request type of the service.
type AgentRequest struct {
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	UserEmail string `json:"user_email,omitempty"`
}

// AgentResponse is the one outbound response type. Every top-level failure is
// converted to this shape with Success=false and a non-empty error list.
type AgentResponse struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	Data           map[string]any `json:"data,omitempty"`
	LeadsProcessed int            `json:"leads_processed"`
	Errors         []string       `json:"errors,omitempty"`
}

type IntentParser interface {
	// ParseIntent turns a free-text message into a TaskDescriptor using the
	// session's conversational context. Unusable model output yields ErrParseFailure.
	ParseIntent(ctx context.Context, session Session, message string) (TaskDescriptor, error)
}
