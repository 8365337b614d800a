package domain

import "context"

// Narrow call contracts for the capability providers. The core depends only on
// these; each pkg/integrations package supplies one implementation.

// LeadFilter selects leads inside the user's CRM base.
type LeadFilter struct {
	Unenriched            bool
	EnrichedUnscored      bool
	HotWarmUnpersonalized bool
	IDs                   []string
}

type CRMClient interface {
	// ResolveBase finds the user's lead base reachable with the token.
	ResolveBase(ctx context.Context, accessToken string) (string, error)
	ListLeads(ctx context.Context, accessToken, baseID string, filter LeadFilter) ([]Lead, error)
	CreateLead(ctx context.Context, accessToken, baseID string, lead Lead) (Lead, error)
	UpdateLead(ctx context.Context, accessToken, baseID string, lead Lead) error
	GetICP(ctx context.Context, accessToken, baseID, userID string) (ICP, error)
}

type EmailMessage struct {
	To      string
	From    string
	Subject string
	Body    string
	HTML    bool
}

type MailSender interface {
	SendMail(ctx context.Context, accessToken string, message EmailMessage) error
}

type EmailHit struct {
	Email      string
	FirstName  string
	LastName   string
	Position   string
	Confidence int
}

type EmailFinder interface {
	FindEmail(ctx context.Context, companyDomain string) (EmailHit, error)
}

type CompanyHit struct {
	Name        string
	Website     string
	Industry    string
	Location    string
	CompanySize string
}

type CompanySearcher interface {
	SearchCompanies(ctx context.Context, query string, limit int) ([]CompanyHit, error)
}

type ScrapeResult struct {
	URL      string
	Title    string
	Content  string
	Insights []string
}

type Scraper interface {
	Scrape(ctx context.Context, pageURL string) (ScrapeResult, error)
}

type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
