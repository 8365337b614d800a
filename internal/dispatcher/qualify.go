package dispatcher

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow/pkg/domain"
)

const reasoningSystemPrompt = "You are a sales analyst. In two sentences, explain why the lead received its qualification score against the ideal customer persona. Be concrete and factual."

// runQualify scores enriched, unscored leads against the user's ideal customer
// persona. Scoring itself is deterministic; the language model only writes the
// reasoning text and a generation failure never fails the step.
func (d *Dispatcher) runQualify(ctx context.Context, userID string, descriptor domain.TaskDescriptor, credentials domain.CredentialMap) domain.WorkflowResult {
	airtable, failure := requireCredential(credentials, domain.ProviderAirtable, domain.TaskKindQualify)
	if failure != nil {
		return *failure
	}

	baseID, err := d.crm.ResolveBase(ctx, airtable.AccessToken)
	if err != nil {
		return failedStep(domain.TaskKindQualify, "Qualification failed: could not resolve CRM base.", err)
	}

	icp, err := d.crm.GetICP(ctx, airtable.AccessToken, baseID, userID)
	if err != nil {
		return failedStep(domain.TaskKindQualify, "Qualification failed: no ideal customer persona found.", err)
	}

	leads, err := d.crm.ListLeads(ctx, airtable.AccessToken, baseID, domain.LeadFilter{
		EnrichedUnscored: true,
		IDs:              descriptor.LeadIDs,
	})
	if err != nil {
		return failedStep(domain.TaskKindQualify, "Qualification failed: could not list leads.", err)
	}

	var errs []string
	scored := 0
	distribution := map[domain.LeadRating]int{}

	for _, lead := range leads {
		score := scoreLead(lead, icp)

		lead.Rating = score.Rating
		lead.NumericScore = score.Total
		lead.ScoreReasoning = d.generateReasoning(ctx, lead, icp, score)

		if err := d.crm.UpdateLead(ctx, airtable.AccessToken, baseID, lead); err != nil {
			errs = append(errs, fmt.Sprintf("updating %s: %v", lead.Name, err))
			continue
		}

		distribution[score.Rating]++
		scored++
	}

	return domain.WorkflowResult{
		Kind:           domain.TaskKindQualify,
		Success:        true,
		Message:        fmt.Sprintf("Scored %d leads: %d Hot, %d Warm, %d Cold.", scored, distribution[domain.LeadRatingHot], distribution[domain.LeadRatingWarm], distribution[domain.LeadRatingCold]),
		LeadsProcessed: scored,
		Errors:         errs,
	}
}

func (d *Dispatcher) generateReasoning(ctx context.Context, lead domain.Lead, icp domain.ICP, score leadScore) string {
	prompt := fmt.Sprintf(
		"Lead: %s (industry %q, size %q). Background: %s\nICP: industries %v, size range %q, use cases %v, pain points %v.\nScore: %d/10 (%s) — industry %d, size %d, use case %d, pain point %d.",
		lead.Name, lead.Industry, lead.CompanySize, lead.Background,
		icp.TargetIndustries, icp.CompanySizeRange, icp.UseCases, icp.PainPoints,
		score.Total, score.Rating, score.Industry, score.Size, score.UseCase, score.Pain,
	)

	reasoning, err := d.generator.GenerateText(ctx, reasoningSystemPrompt, prompt)
	if err != nil || reasoning == "" {
		log.Debug().Err(err).Str("lead", lead.Name).Msg("Falling back to templated score reasoning")
		return fallbackReasoning(lead, score)
	}

	return reasoning
}
