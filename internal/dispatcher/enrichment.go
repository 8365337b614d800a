package dispatcher

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow/pkg/domain"
)

// runEnrichment fills in contact and company data for leads that have a website
// but were not enriched yet, then marks them enriched.
func (d *Dispatcher) runEnrichment(ctx context.Context, userID string, descriptor domain.TaskDescriptor, credentials domain.CredentialMap) domain.WorkflowResult {
	airtable, failure := requireCredential(credentials, domain.ProviderAirtable, domain.TaskKindEnrichment)
	if failure != nil {
		return *failure
	}

	baseID, err := d.crm.ResolveBase(ctx, airtable.AccessToken)
	if err != nil {
		return failedStep(domain.TaskKindEnrichment, "Enrichment failed: could not resolve CRM base.", err)
	}

	leads, err := d.crm.ListLeads(ctx, airtable.AccessToken, baseID, domain.LeadFilter{
		Unenriched: true,
		IDs:        descriptor.LeadIDs,
	})
	if err != nil {
		return failedStep(domain.TaskKindEnrichment, "Enrichment failed: could not list leads.", err)
	}

	var errs []string
	enriched := 0

	for _, lead := range leads {
		if lead.Website == "" {
			continue
		}

		companyDomain := hostFromWebsite(lead.Website)

		if hit, err := d.finder.FindEmail(ctx, companyDomain); err != nil {
			// A lead without a findable address can still gain scraped insight.
			log.Debug().Err(err).Str("lead", lead.Name).Msg("No email found for lead")
			errs = append(errs, fmt.Sprintf("finding email for %s: %v", lead.Name, err))
		} else if lead.Email == "" {
			lead.Email = hit.Email
		}

		if scraped, err := d.scraper.Scrape(ctx, lead.Website); err != nil {
			errs = append(errs, fmt.Sprintf("scraping %s: %v", lead.Website, err))
		} else {
			if lead.Background == "" {
				lead.Background = scraped.Content
			}
			if len(scraped.Insights) > 0 {
				lead.Background = strings.TrimSpace(lead.Background + "\n" + strings.Join(scraped.Insights, "\n"))
			}
		}

		lead.Enriched = true

		if err := d.crm.UpdateLead(ctx, airtable.AccessToken, baseID, lead); err != nil {
			errs = append(errs, fmt.Sprintf("updating %s: %v", lead.Name, err))
			continue
		}

		enriched++
	}

	return domain.WorkflowResult{
		Kind:           domain.TaskKindEnrichment,
		Success:        true,
		Message:        fmt.Sprintf("Enriched %d of %d unenriched leads.", enriched, len(leads)),
		LeadsProcessed: enriched,
		Errors:         errs,
	}
}

func hostFromWebsite(website string) string {
	raw := website
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return website
	}

	return strings.TrimPrefix(parsed.Host, "www.")
}
