package dispatcher

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow/pkg/domain"
)

// Dispatcher routes task descriptors to workflow handlers. Each handler is a
// pure function of (descriptor, credential map); the dispatcher owns ordering
// and aggregation, never provider business logic.
type Dispatcher struct {
	crm       domain.CRMClient
	mail      domain.MailSender
	finder    domain.EmailFinder
	search    domain.CompanySearcher
	scraper   domain.Scraper
	generator domain.TextGenerator
}

var _ domain.WorkflowDispatcher = (*Dispatcher)(nil)

type DispatcherDependencies struct {
	CRMClient       domain.CRMClient
	MailSender      domain.MailSender
	EmailFinder     domain.EmailFinder
	CompanySearcher domain.CompanySearcher
	Scraper         domain.Scraper
	TextGenerator   domain.TextGenerator
}

func NewDispatcher(deps DispatcherDependencies) *Dispatcher {
	return &Dispatcher{
		crm:       deps.CRMClient,
		mail:      deps.MailSender,
		finder:    deps.EmailFinder,
		search:    deps.CompanySearcher,
		scraper:   deps.Scraper,
		generator: deps.TextGenerator,
	}
}

// Dispatch runs the descriptor's kinds strictly in the order given. A failed
// step never aborts later steps; missing credentials short-circuit only the
// affected step.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, descriptor domain.TaskDescriptor, credentials domain.CredentialMap) domain.AggregateResult {
	results := make([]domain.WorkflowResult, 0, len(descriptor.Kinds))

	for _, kind := range descriptor.Kinds {
		log.Info().
			Str("user_id", userID).
			Str("task", string(kind)).
			Msg("Running workflow step")

		results = append(results, d.runStep(ctx, kind, userID, descriptor, credentials))
	}

	return aggregate(results)
}

func (d *Dispatcher) runStep(ctx context.Context, kind domain.TaskKind, userID string, descriptor domain.TaskDescriptor, credentials domain.CredentialMap) domain.WorkflowResult {
	switch kind {
	case domain.TaskKindProspecting:
		return d.runProspecting(ctx, userID, descriptor, credentials)
	case domain.TaskKindEnrichment:
		return d.runEnrichment(ctx, userID, descriptor, credentials)
	case domain.TaskKindQualify:
		return d.runQualify(ctx, userID, descriptor, credentials)
	case domain.TaskKindPersonalize:
		return d.runPersonalize(ctx, userID, descriptor, credentials)
	default:
		return domain.WorkflowResult{
			Kind:    kind,
			Success: false,
			Message: fmt.Sprintf("Unknown task type: %s", kind),
			Errors:  []string{fmt.Sprintf("unsupported task: %s", kind)},
		}
	}
}

func aggregate(results []domain.WorkflowResult) domain.AggregateResult {
	succeeded := 0
	totalLeads := 0
	var errs []string

	for _, result := range results {
		if result.Success {
			succeeded++
		}
		totalLeads += result.LeadsProcessed
		errs = append(errs, result.Errors...)
	}

	return domain.AggregateResult{
		Success:        succeeded == len(results),
		Message:        fmt.Sprintf("Completed %d/%d tasks successfully. Processed %d leads total.", succeeded, len(results), totalLeads),
		LeadsProcessed: totalLeads,
		Errors:         errs,
		StepResults:    results,
	}
}

// requireCredential produces the step-level failure for a missing provider.
func requireCredential(credentials domain.CredentialMap, provider domain.Provider, kind domain.TaskKind) (domain.ProviderCredential, *domain.WorkflowResult) {
	cred, ok := credentials.Get(provider)
	if !ok {
		return domain.ProviderCredential{}, &domain.WorkflowResult{
			Kind:    kind,
			Success: false,
			Message: fmt.Sprintf("%s connection required for %s. Please connect your %s account.", provider, kind, provider),
			Errors:  []string{fmt.Sprintf("%v: %s", domain.ErrMissingCredential, provider)},
		}
	}

	return cred, nil
}

func failedStep(kind domain.TaskKind, message string, err error) domain.WorkflowResult {
	return domain.WorkflowResult{
		Kind:    kind,
		Success: false,
		Message: message,
		Errors:  []string{err.Error()},
	}
}
