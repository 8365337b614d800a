package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/leadflow/leadflow/pkg/domain"
)

const (
	maxContentSize = 4000
	userAgent      = "LeadflowBot/1.0 (company research)"
)

// signalKeywords flag sentences worth surfacing as buying signals.
var signalKeywords = []string{
	"funding", "raised", "series a", "series b", "series c",
	"hiring", "new hires", "joined", "we're growing",
	"launch", "launched", "announcing", "new product",
}

// Scraper fetches a company website and reduces it to text the scoring and
// personalization steps can work with.
type Scraper struct {
	httpClient *http.Client
	timeout    time.Duration
}

var _ domain.Scraper = (*Scraper)(nil)

type Option func(*Scraper)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *Scraper) {
		s.httpClient = httpClient
	}
}

func New(options ...Option) *Scraper {
	scraper := &Scraper{
		httpClient: http.DefaultClient,
		timeout:    20 * time.Second,
	}

	for _, option := range options {
		option(scraper)
	}

	return scraper
}

func (s *Scraper) Scrape(ctx context.Context, pageURL string) (domain.ScrapeResult, error) {
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		pageURL = "https://" + pageURL
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return domain.ScrapeResult{}, fmt.Errorf("%w: building scrape request: %v", domain.ErrProvider, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.ScrapeResult{}, fmt.Errorf("%w: fetching %s: %v", domain.ErrProvider, pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ScrapeResult{}, fmt.Errorf("%w: %s returned %d", domain.ErrProvider, pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.ScrapeResult{}, fmt.Errorf("%w: parsing %s: %v", domain.ErrProvider, pageURL, err)
	}

	doc.Find("script, style, nav, footer, header, aside, iframe").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())

	var content strings.Builder

	if description, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		if trimmed := strings.TrimSpace(description); trimmed != "" {
			content.WriteString(trimmed + "\n\n")
		}
	}

	doc.Find("h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			content.WriteString(text + "\n")
		}
	})

	var insights []string
	seen := map[string]bool{}

	doc.Find("p, li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" || len(text) < 20 {
			return
		}

		content.WriteString(text + "\n")

		lowered := strings.ToLower(text)
		for _, keyword := range signalKeywords {
			if strings.Contains(lowered, keyword) && !seen[text] {
				seen[text] = true
				insights = append(insights, clip(text, 200))
				break
			}
		}
	})

	return domain.ScrapeResult{
		URL:      pageURL,
		Title:    title,
		Content:  clip(content.String(), maxContentSize),
		Insights: insights,
	}, nil
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
