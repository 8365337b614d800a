package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow/pkg/domain"
)

const (
	defaultBaseURL = "https://api.airtable.com/v0"
	leadsTable     = "Demo Table"
	personasTable  = "Personas"
)

// Client talks to the Airtable REST API. Airtable has no Go SDK, so requests
// are shaped by hand; every call is timeout-bounded and failures wrap
// domain.ErrProvider.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

var _ domain.CRMClient = (*Client)(nil)

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func NewClient(options ...ClientOption) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		timeout:    30 * time.Second,
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// ResolveBase returns the first base the token can reach, which holds the
// user's lead table.
func (c *Client) ResolveBase(ctx context.Context, accessToken string) (string, error) {
	var response struct {
		Bases []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"bases"`
	}

	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/meta/bases", accessToken, nil, &response); err != nil {
		return "", err
	}

	if len(response.Bases) == 0 {
		return "", fmt.Errorf("%w: airtable token has no accessible bases", domain.ErrProvider)
	}

	return response.Bases[0].ID, nil
}

func (c *Client) ListLeads(ctx context.Context, accessToken, baseID string, filter domain.LeadFilter) ([]domain.Lead, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, baseID, url.PathEscape(leadsTable))

	if formula := filterFormula(filter); formula != "" {
		endpoint += "?filterByFormula=" + url.QueryEscape(formula)
	}

	var response struct {
		Records []record `json:"records"`
	}

	if err := c.doJSON(ctx, http.MethodGet, endpoint, accessToken, nil, &response); err != nil {
		return nil, err
	}

	leads := make([]domain.Lead, 0, len(response.Records))
	for _, rec := range response.Records {
		leads = append(leads, rec.toLead())
	}

	return leads, nil
}

func (c *Client) CreateLead(ctx context.Context, accessToken, baseID string, lead domain.Lead) (domain.Lead, error) {
	fields := leadFields(lead)
	fields["UUID"] = uuid.NewString()

	if err := validateLeadFields(fields); err != nil {
		return domain.Lead{}, fmt.Errorf("%w: invalid lead payload: %v", domain.ErrProvider, err)
	}

	body := map[string]any{
		"records": []map[string]any{{"fields": fields}},
	}

	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, baseID, url.PathEscape(leadsTable))

	var response struct {
		Records []record `json:"records"`
	}

	if err := c.doJSON(ctx, http.MethodPost, endpoint, accessToken, body, &response); err != nil {
		return domain.Lead{}, err
	}

	if len(response.Records) == 0 {
		return domain.Lead{}, fmt.Errorf("%w: airtable returned no created record", domain.ErrProvider)
	}

	return response.Records[0].toLead(), nil
}

func (c *Client) UpdateLead(ctx context.Context, accessToken, baseID string, lead domain.Lead) error {
	if lead.ID == "" {
		return fmt.Errorf("%w: lead has no record id", domain.ErrProvider)
	}

	fields := leadFields(lead)

	if err := validateLeadFields(fields); err != nil {
		return fmt.Errorf("%w: invalid lead payload: %v", domain.ErrProvider, err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/%s", c.baseURL, baseID, url.PathEscape(leadsTable), lead.ID)

	return c.doJSON(ctx, http.MethodPatch, endpoint, accessToken, map[string]any{"fields": fields}, nil)
}

func (c *Client) GetICP(ctx context.Context, accessToken, baseID, userID string) (domain.ICP, error) {
	formula := fmt.Sprintf(`{User ID} = %q`, userID)
	endpoint := fmt.Sprintf("%s/%s/%s?filterByFormula=%s", c.baseURL, baseID, url.PathEscape(personasTable), url.QueryEscape(formula))

	var response struct {
		Records []struct {
			Fields struct {
				Name             string `json:"Name"`
				TargetIndustries string `json:"Target Industries"`
				CompanySizeRange string `json:"Company Size Range"`
				JobTitles        string `json:"Job Titles"`
				PainPoints       string `json:"Pain Points"`
				UseCases         string `json:"Use Cases"`
			} `json:"fields"`
		} `json:"records"`
	}

	if err := c.doJSON(ctx, http.MethodGet, endpoint, accessToken, nil, &response); err != nil {
		return domain.ICP{}, err
	}

	if len(response.Records) == 0 {
		return domain.ICP{}, fmt.Errorf("%w: no persona found for user %s", domain.ErrProvider, userID)
	}

	fields := response.Records[0].Fields

	return domain.ICP{
		UserID:           userID,
		Name:             fields.Name,
		TargetIndustries: splitList(fields.TargetIndustries),
		CompanySizeRange: fields.CompanySizeRange,
		JobTitles:        splitList(fields.JobTitles),
		PainPoints:       splitList(fields.PainPoints),
		UseCases:         splitList(fields.UseCases),
	}, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint, accessToken string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encoding airtable request: %v", domain.ErrProvider, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: building airtable request: %v", domain.ErrProvider, err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading airtable response: %v", domain.ErrProvider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Debug().Int("status", resp.StatusCode).Str("endpoint", endpoint).Msg("Airtable request failed")
		return fmt.Errorf("%w: airtable returned %d: %s", domain.ErrProvider, resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	if out != nil {
		if err := json.Unmarshal(responseBody, out); err != nil {
			return fmt.Errorf("%w: decoding airtable response: %v", domain.ErrProvider, err)
		}
	}

	return nil
}

type record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

func (r record) toLead() domain.Lead {
	get := func(key string) string {
		if v, ok := r.Fields[key].(string); ok {
			return v
		}
		return ""
	}
	getBool := func(key string) bool {
		if v, ok := r.Fields[key].(bool); ok {
			return v
		}
		return false
	}

	numericScore := 0
	if v, ok := r.Fields["Numerical Score"].(float64); ok {
		numericScore = int(v)
	}

	return domain.Lead{
		ID:                 r.ID,
		Name:               get("Name"),
		Website:            get("Website"),
		Email:              get("Email"),
		Phone:              get("Phone"),
		Industry:           get("Industry"),
		CompanySize:        get("Company Size"),
		Address:            get("Address"),
		LinkedIn:           get("LinkedIn"),
		Background:         get("Background"),
		Rating:             domain.LeadRating(get("Score")),
		NumericScore:       numericScore,
		ScoreReasoning:     get("Score Reasoning"),
		PersonalizedOpener: get("Personalized Opener"),
		SubjectLine:        get("Subject Line"),
		Enriched:           getBool("Enriched"),
		EmailSent:          getBool("Email Sent"),
		FundingRound:       get("Funding Round"),
		NewHires:           get("New Hires"),
		ProductLaunch:      get("Product Launch"),
	}
}

func leadFields(lead domain.Lead) map[string]any {
	fields := map[string]any{
		"Name":     lead.Name,
		"Enriched": lead.Enriched,
	}

	setIfPresent := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}

	setIfPresent("Website", lead.Website)
	setIfPresent("Email", lead.Email)
	setIfPresent("Phone", lead.Phone)
	setIfPresent("Industry", lead.Industry)
	setIfPresent("Company Size", lead.CompanySize)
	setIfPresent("Address", lead.Address)
	setIfPresent("LinkedIn", lead.LinkedIn)
	setIfPresent("Background", lead.Background)
	setIfPresent("Score", string(lead.Rating))
	setIfPresent("Score Reasoning", lead.ScoreReasoning)
	setIfPresent("Personalized Opener", lead.PersonalizedOpener)
	setIfPresent("Subject Line", lead.SubjectLine)
	setIfPresent("Funding Round", lead.FundingRound)
	setIfPresent("New Hires", lead.NewHires)
	setIfPresent("Product Launch", lead.ProductLaunch)

	if lead.Rating != "" {
		fields["Numerical Score"] = lead.NumericScore
	}
	if lead.EmailSent {
		fields["Email Sent"] = true
	}

	return fields
}

func filterFormula(filter domain.LeadFilter) string {
	var clauses []string

	if filter.Unenriched {
		clauses = append(clauses, "NOT({Enriched})")
	}
	if filter.EnrichedUnscored {
		clauses = append(clauses, "{Enriched}", `{Score} = ""`)
	}
	if filter.HotWarmUnpersonalized {
		clauses = append(clauses, `OR({Score} = "Hot", {Score} = "Warm")`, `{Personalized Opener} = ""`)
	}
	if len(filter.IDs) > 0 {
		idClauses := make([]string, 0, len(filter.IDs))
		for _, id := range filter.IDs {
			idClauses = append(idClauses, fmt.Sprintf("RECORD_ID() = %q", id))
		}
		clauses = append(clauses, "OR("+strings.Join(idClauses, ", ")+")")
	}

	switch len(clauses) {
	case 0:
		return ""
	case 1:
		return clauses[0]
	default:
		return "AND(" + strings.Join(clauses, ", ") + ")"
	}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
