package hunter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leadflow/leadflow/pkg/domain"
)

const defaultBaseURL = "https://api.hunter.io/v2"

// Client looks up contact emails for a company domain through the Hunter.io
// domain-search endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
}

var _ domain.EmailFinder = (*Client)(nil)

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

func NewClient(apiKey string, options ...ClientOption) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		timeout:    30 * time.Second,
	}

	for _, option := range options {
		option(client)
	}

	return client
}

type domainSearchResponse struct {
	Data struct {
		Emails []struct {
			Value      string `json:"value"`
			FirstName  string `json:"first_name"`
			LastName   string `json:"last_name"`
			Position   string `json:"position"`
			Confidence int    `json:"confidence"`
		} `json:"emails"`
	} `json:"data"`
}

// FindEmail returns the highest-confidence contact Hunter knows for the
// domain. No contact at all is a domain.ErrProvider failure so callers can
// skip the lead instead of storing an empty address.
func (c *Client) FindEmail(ctx context.Context, companyDomain string) (domain.EmailHit, error) {
	if companyDomain == "" {
		return domain.EmailHit{}, fmt.Errorf("%w: empty company domain", domain.ErrProvider)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := url.Values{}
	query.Set("domain", companyDomain)
	query.Set("api_key", c.apiKey)
	query.Set("limit", "5")

	endpoint := c.baseURL + "/domain-search?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.EmailHit{}, fmt.Errorf("%w: building hunter request: %v", domain.ErrProvider, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.EmailHit{}, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.EmailHit{}, fmt.Errorf("%w: reading hunter response: %v", domain.ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		return domain.EmailHit{}, fmt.Errorf("%w: hunter returned %d: %s", domain.ErrProvider, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed domainSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.EmailHit{}, fmt.Errorf("%w: decoding hunter response: %v", domain.ErrProvider, err)
	}

	if len(parsed.Data.Emails) == 0 {
		return domain.EmailHit{}, fmt.Errorf("%w: no contacts found for %s", domain.ErrProvider, companyDomain)
	}

	best := parsed.Data.Emails[0]
	for _, candidate := range parsed.Data.Emails[1:] {
		if candidate.Confidence > best.Confidence {
			best = candidate
		}
	}

	return domain.EmailHit{
		Email:      best.Value,
		FirstName:  best.FirstName,
		LastName:   best.LastName,
		Position:   best.Position,
		Confidence: best.Confidence,
	}, nil
}
