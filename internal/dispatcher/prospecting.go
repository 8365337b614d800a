package dispatcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow/pkg/domain"
)

const defaultCompanyCount = 5

// runProspecting searches for companies matching the descriptor's filters and
// stores them as new leads in the user's CRM base.
func (d *Dispatcher) runProspecting(ctx context.Context, userID string, descriptor domain.TaskDescriptor, credentials domain.CredentialMap) domain.WorkflowResult {
	airtable, failure := requireCredential(credentials, domain.ProviderAirtable, domain.TaskKindProspecting)
	if failure != nil {
		return *failure
	}

	count := descriptor.NumCompanies
	if count <= 0 {
		count = defaultCompanyCount
	}

	query := buildProspectingQuery(descriptor, count)

	baseID, err := d.crm.ResolveBase(ctx, airtable.AccessToken)
	if err != nil {
		return failedStep(domain.TaskKindProspecting, "Prospecting failed: could not resolve CRM base.", err)
	}

	companies, err := d.search.SearchCompanies(ctx, query, count)
	if err != nil {
		return failedStep(domain.TaskKindProspecting, "Prospecting failed: company search unavailable.", err)
	}

	var errs []string
	created := 0

	for _, company := range companies {
		lead := domain.Lead{
			Name:        company.Name,
			Website:     company.Website,
			Industry:    company.Industry,
			Address:     company.Location,
			CompanySize: company.CompanySize,
		}

		if _, err := d.crm.CreateLead(ctx, airtable.AccessToken, baseID, lead); err != nil {
			log.Warn().Err(err).Str("company", company.Name).Msg("Failed to store prospect")
			errs = append(errs, fmt.Sprintf("storing %s: %v", company.Name, err))
			continue
		}

		created++
	}

	return domain.WorkflowResult{
		Kind:           domain.TaskKindProspecting,
		Success:        true,
		Message:        fmt.Sprintf("Found %d companies and stored %d new leads.", len(companies), created),
		LeadsProcessed: created,
		Errors:         errs,
		Data:           map[string]any{"query": query},
	}
}

func buildProspectingQuery(descriptor domain.TaskDescriptor, count int) string {
	parts := []string{fmt.Sprintf("Find %d companies", count)}

	if descriptor.Industry != "" {
		parts = append(parts, fmt.Sprintf("in %s", descriptor.Industry))
	}
	if descriptor.Location != "" {
		parts = append(parts, fmt.Sprintf("located in %s", descriptor.Location))
	}
	if descriptor.MinEmployees > 0 {
		parts = append(parts, fmt.Sprintf("with %d+ employees", descriptor.MinEmployees))
	}

	return strings.Join(parts, " ")
}
