package companysearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/leadflow/leadflow/pkg/domain"
)

// Client discovers companies by posting a natural-language query to a hosted
// search workflow. The endpoint URL embeds its own access signature, so no
// separate credential travels with the request.
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
}

var _ domain.CompanySearcher = (*Client)(nil)

type ClientOption func(*Client)

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

func NewClient(endpoint string, options ...ClientOption) *Client {
	client := &Client{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
		timeout:    60 * time.Second,
	}

	for _, option := range options {
		option(client)
	}

	return client
}

type searchRequest struct {
	Query        string `json:"HTTP_request_content"`
	Industry     string `json:"industry,omitempty"`
	Location     string `json:"location,omitempty"`
	MinEmployees int    `json:"min_employees,omitempty"`
	NumCompanies int    `json:"num_companies,omitempty"`
}

type searchResponse struct {
	Companies []struct {
		Name        string `json:"name"`
		Website     string `json:"website"`
		Industry    string `json:"industry"`
		Location    string `json:"location"`
		CompanySize string `json:"company_size"`
	} `json:"companies"`
}

func (c *Client) SearchCompanies(ctx context.Context, query string, limit int) ([]domain.CompanyHit, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("%w: company search endpoint not configured", domain.ErrProvider)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(searchRequest{Query: query, NumCompanies: limit})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding search request: %v", domain.ErrProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: building search request: %v", domain.ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading search response: %v", domain.ErrProvider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: company search returned %d: %s", domain.ErrProvider, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decoding search response: %v", domain.ErrProvider, err)
	}

	hits := make([]domain.CompanyHit, 0, len(parsed.Companies))
	for _, company := range parsed.Companies {
		if company.Name == "" {
			continue
		}
		hits = append(hits, domain.CompanyHit{
			Name:        company.Name,
			Website:     company.Website,
			Industry:    company.Industry,
			Location:    company.Location,
			CompanySize: company.CompanySize,
		})
	}

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	return hits, nil
}
