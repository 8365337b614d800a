package orchestrator

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow/pkg/domain"
)

// Orchestrator drives one user request end to end: session, intent parsing,
// credential resolution, workflow dispatch. It is an explicitly constructed
// service with injected collaborators; no process-wide instances.
type Orchestrator struct {
	sessions    domain.SessionService
	parser      domain.IntentParser
	credentials domain.CredentialManager
	dispatcher  domain.WorkflowDispatcher
}

type OrchestratorDependencies struct {
	SessionService    domain.SessionService
	IntentParser      domain.IntentParser
	CredentialManager domain.CredentialManager
	Dispatcher        domain.WorkflowDispatcher
}

func NewOrchestrator(deps OrchestratorDependencies) *Orchestrator {
	return &Orchestrator{
		sessions:    deps.SessionService,
		parser:      deps.IntentParser,
		credentials: deps.CredentialManager,
		dispatcher:  deps.Dispatcher,
	}
}

// ProcessRequest never lets a fault escape: every failure becomes an
// AgentResponse with Success=false and a non-empty error list.
func (o *Orchestrator) ProcessRequest(ctx context.Context, request domain.AgentRequest) domain.AgentResponse {
	log.Info().
		Str("user_id", request.UserID).
		Msg("Processing agent request")

	session, err := o.sessions.GetOrCreateSession(ctx, request.UserID)
	if err != nil {
		return failureResponse("An error occurred while preparing your session.", err)
	}

	descriptor, err := o.parser.ParseIntent(ctx, session, request.Message)
	if err != nil {
		if errors.Is(err, domain.ErrParseFailure) {
			return failureResponse("I couldn't understand your request. Please try rephrasing it.", err)
		}
		return failureResponse("An error occurred while processing your request.", err)
	}

	if descriptor.IsConversational() {
		return domain.AgentResponse{
			Success: true,
			Message: descriptor.Response,
		}
	}

	credentials, err := o.credentials.GetUserCredentials(ctx, request.UserID)
	if err != nil {
		return failureResponse("An error occurred while loading your connected accounts.", err)
	}

	if len(credentials) == 0 {
		return domain.AgentResponse{
			Success: false,
			Message: "Please connect your Gmail and Airtable accounts to use the sales automation agent.",
			Errors:  []string{"no user credentials found"},
		}
	}

	result := o.dispatcher.Dispatch(ctx, request.UserID, descriptor, credentials)

	response := domain.AgentResponse{
		Success:        result.Success,
		Message:        result.Message,
		LeadsProcessed: result.LeadsProcessed,
		Errors:         result.Errors,
		Data:           map[string]any{"task_results": result.StepResults},
	}

	if !response.Success && len(response.Errors) == 0 {
		response.Errors = []string{result.Message}
	}

	return response
}

func failureResponse(message string, err error) domain.AgentResponse {
	log.Error().Err(err).Msg(message)

	return domain.AgentResponse{
		Success: false,
		Message: message,
		Errors:  []string{err.Error()},
	}
}
