package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jchen/briefline/internal/domain"
)

// WebSearchConfig holds configuration for the web-search client.
type WebSearchConfig struct {
	APIKey      string
	BaseURL     string
	ResultCount int
}

// BraveSearchClient looks up references via the Brave web search API.
// The search credential is optional: a client constructed without one is
// disabled and resolves every query to an empty reference list.
type BraveSearchClient struct {
	client   *resty.Client
	endpoint string
	count    int
	enabled  bool
}

// NewBraveSearchClient creates a web-search client. A nil config or empty
// API key yields a disabled client.
func NewBraveSearchClient(cfg *WebSearchConfig) *BraveSearchClient {
	if cfg == nil || cfg.APIKey == "" {
		return &BraveSearchClient{enabled: false}
	}

	client := resty.New()
	client.SetHeader("Accept", "application/json")
	client.SetHeader("X-Subscription-Token", cfg.APIKey)
	client.SetTimeout(15 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.search.brave.com"
	}

	count := cfg.ResultCount
	if count <= 0 {
		count = 2
	}

	return &BraveSearchClient{
		client:   client,
		endpoint: baseURL + "/res/v1/web/search",
		count:    count,
		enabled:  true,
	}
}

// IsEnabled reports whether a search credential is configured.
func (s *BraveSearchClient) IsEnabled() bool {
	return s.enabled
}

type braveResponse struct {
	Web struct {
		Results []struct {
			URL   string `json:"url"`
			Title string `json:"title"`
		} `json:"results"`
	} `json:"web"`
}

// Search runs one web search and maps the ranked results to references.
// A disabled client returns an empty, non-nil slice with no error; callers
// treat a returned error as "no references for this point".
func (s *BraveSearchClient) Search(ctx context.Context, query string) ([]domain.Reference, error) {
	if !s.enabled {
		return []domain.Reference{}, nil
	}

	var resp braveResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     query,
			"count": strconv.Itoa(s.count),
		}).
		SetResult(&resp).
		Get(s.endpoint)

	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return nil, fmt.Errorf("search service returned HTTP %d", httpResp.StatusCode())
	}

	refs := make([]domain.Reference, 0, len(resp.Web.Results))
	for _, r := range resp.Web.Results {
		title := r.Title
		if title == "" {
			title = r.URL
		}
		refs = append(refs, domain.Reference{URL: r.URL, Title: title})
	}
	return refs, nil
}
