package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/leadflow/leadflow/pkg/domain"
)

type fakeCRM struct {
	mu sync.Mutex

	baseID  string
	icp     domain.ICP
	leads   []domain.Lead
	updated []domain.Lead
	created []domain.Lead

	resolveErr error
	icpErr     error
	listErr    error
	createErr  error
	updateErr  error
}

func (f *fakeCRM) ResolveBase(ctx context.Context, accessToken string) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	if f.baseID == "" {
		return "base-1", nil
	}
	return f.baseID, nil
}

func (f *fakeCRM) ListLeads(ctx context.Context, accessToken, baseID string, filter domain.LeadFilter) ([]domain.Lead, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.leads, nil
}

func (f *fakeCRM) CreateLead(ctx context.Context, accessToken, baseID string, lead domain.Lead) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.Lead{}, f.createErr
	}

	lead.ID = fmt.Sprintf("rec-%d", len(f.created)+1)
	f.created = append(f.created, lead)

	return lead, nil
}

func (f *fakeCRM) UpdateLead(ctx context.Context, accessToken, baseID string, lead domain.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}

	f.updated = append(f.updated, lead)

	return nil
}

func (f *fakeCRM) GetICP(ctx context.Context, accessToken, baseID, userID string) (domain.ICP, error) {
	if f.icpErr != nil {
		return domain.ICP{}, f.icpErr
	}
	return f.icp, nil
}

type fakeMailSender struct {
	mu    sync.Mutex
	sent  []domain.EmailMessage
	err   error
	calls int
}

func (f *fakeMailSender) SendMail(ctx context.Context, accessToken string, message domain.EmailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, message)

	return nil
}

type fakeEmailFinder struct {
	hit domain.EmailHit
	err error
}

func (f *fakeEmailFinder) FindEmail(ctx context.Context, companyDomain string) (domain.EmailHit, error) {
	if f.err != nil {
		return domain.EmailHit{}, f.err
	}
	return f.hit, nil
}

type fakeCompanySearcher struct {
	hits    []domain.CompanyHit
	err     error
	queries []string
}

func (f *fakeCompanySearcher) SearchCompanies(ctx context.Context, query string, limit int) ([]domain.CompanyHit, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

type fakeScraper struct {
	result domain.ScrapeResult
	err    error
}

func (f *fakeScraper) Scrape(ctx context.Context, pageURL string) (domain.ScrapeResult, error) {
	if f.err != nil {
		return domain.ScrapeResult{}, f.err
	}
	result := f.result
	result.URL = pageURL
	return result, nil
}

type fakeTextGenerator struct {
	reply string
	err   error
}

func (f *fakeTextGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.reply == "" {
		return "generated text", nil
	}
	return f.reply, nil
}

type dispatcherFixture struct {
	crm       *fakeCRM
	mail      *fakeMailSender
	finder    *fakeEmailFinder
	search    *fakeCompanySearcher
	scraper   *fakeScraper
	generator *fakeTextGenerator
}

func newFixture() *dispatcherFixture {
	return &dispatcherFixture{
		crm:       &fakeCRM{},
		mail:      &fakeMailSender{},
		finder:    &fakeEmailFinder{hit: domain.EmailHit{Email: "contact@example.com"}},
		search:    &fakeCompanySearcher{},
		scraper:   &fakeScraper{result: domain.ScrapeResult{Content: "scraped background"}},
		generator: &fakeTextGenerator{},
	}
}

func (f *dispatcherFixture) dispatcher() *Dispatcher {
	return NewDispatcher(DispatcherDependencies{
		CRMClient:       f.crm,
		MailSender:      f.mail,
		EmailFinder:     f.finder,
		CompanySearcher: f.search,
		Scraper:         f.scraper,
		TextGenerator:   f.generator,
	})
}

func airtableOnly() domain.CredentialMap {
	return domain.CredentialMap{
		domain.ProviderAirtable: {AccessToken: "airtable-token", ProviderEmail: "crm@example.com"},
	}
}

func airtableAndGmail() domain.CredentialMap {
	creds := airtableOnly()
	creds[domain.ProviderGmail] = domain.ProviderCredential{AccessToken: "gmail-token", ProviderEmail: "me@example.com"}
	return creds
}
