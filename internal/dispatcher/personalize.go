package dispatcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow/pkg/domain"
)

const (
	openerSystemPrompt  = "You write short, specific opening lines for cold sales emails. Use the lead's background, never generic flattery. Two sentences maximum."
	subjectSystemPrompt = "You write compelling subject lines for cold sales emails. Under eight words, no clickbait. Reply with the subject line only."
)

// runPersonalize drafts an opener and subject line for Hot/Warm leads and, when
// the descriptor asks for it, sends the mail through the user's Gmail account.
// Sending without a Gmail connection is a hard precondition failure checked
// before any provider call.
func (d *Dispatcher) runPersonalize(ctx context.Context, userID string, descriptor domain.TaskDescriptor, credentials domain.CredentialMap) domain.WorkflowResult {
	airtable, failure := requireCredential(credentials, domain.ProviderAirtable, domain.TaskKindPersonalize)
	if failure != nil {
		return *failure
	}

	var gmail domain.ProviderCredential
	if descriptor.SendEmails {
		var failure *domain.WorkflowResult
		gmail, failure = requireCredential(credentials, domain.ProviderGmail, domain.TaskKindPersonalize)
		if failure != nil {
			failure.Message = "Gmail connection required for sending emails."
			return *failure
		}
	}

	baseID, err := d.crm.ResolveBase(ctx, airtable.AccessToken)
	if err != nil {
		return failedStep(domain.TaskKindPersonalize, "Personalization failed: could not resolve CRM base.", err)
	}

	leads, err := d.crm.ListLeads(ctx, airtable.AccessToken, baseID, domain.LeadFilter{
		HotWarmUnpersonalized: true,
		IDs:                   descriptor.LeadIDs,
	})
	if err != nil {
		return failedStep(domain.TaskKindPersonalize, "Personalization failed: could not list leads.", err)
	}

	var errs []string
	personalized := 0
	sent := 0

	for _, lead := range leads {
		opener, err := d.generator.GenerateText(ctx, openerSystemPrompt, leadPrompt(lead))
		if err != nil {
			errs = append(errs, fmt.Sprintf("generating opener for %s: %v", lead.Name, err))
			continue
		}

		subject, err := d.generator.GenerateText(ctx, subjectSystemPrompt, leadPrompt(lead))
		if err != nil {
			errs = append(errs, fmt.Sprintf("generating subject for %s: %v", lead.Name, err))
			continue
		}

		lead.PersonalizedOpener = strings.TrimSpace(opener)
		lead.SubjectLine = strings.TrimSpace(subject)

		if descriptor.SendEmails {
			if lead.Email == "" {
				errs = append(errs, fmt.Sprintf("no email address for %s", lead.Name))
			} else {
				message := domain.EmailMessage{
					To:      lead.Email,
					From:    gmail.ProviderEmail,
					Subject: lead.SubjectLine,
					Body:    lead.PersonalizedOpener,
				}

				if err := d.mail.SendMail(ctx, gmail.AccessToken, message); err != nil {
					errs = append(errs, fmt.Sprintf("sending to %s: %v", lead.Email, err))
				} else {
					lead.EmailSent = true
					sent++
				}
			}
		}

		if err := d.crm.UpdateLead(ctx, airtable.AccessToken, baseID, lead); err != nil {
			errs = append(errs, fmt.Sprintf("updating %s: %v", lead.Name, err))
			continue
		}

		personalized++
	}

	message := fmt.Sprintf("Personalized %d leads.", personalized)
	if descriptor.SendEmails {
		message = fmt.Sprintf("Personalized %d leads, sent %d emails.", personalized, sent)
	}

	log.Info().
		Str("user_id", userID).
		Int("personalized", personalized).
		Int("sent", sent).
		Msg("Personalization step finished")

	return domain.WorkflowResult{
		Kind:           domain.TaskKindPersonalize,
		Success:        true,
		Message:        message,
		LeadsProcessed: personalized,
		Errors:         errs,
		Data:           map[string]any{"send_emails": descriptor.SendEmails},
	}
}

func leadPrompt(lead domain.Lead) string {
	return fmt.Sprintf("Lead: %s\nIndustry: %s\nWebsite: %s\nBackground: %s", lead.Name, lead.Industry, lead.Website, lead.Background)
}
