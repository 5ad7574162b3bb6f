package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// FetchResult holds the usable parts of a fetched page.
type FetchResult struct {
	Content string
	Title   string
}

// FetcherConfig holds configuration for the content-fetch client.
type FetcherConfig struct {
	APIKey  string
	BaseURL string
}

// FirecrawlFetcher retrieves page content via the Firecrawl scrape API.
type FirecrawlFetcher struct {
	client   *resty.Client
	endpoint string
}

// NewFirecrawlFetcher creates a content-fetch client.
func NewFirecrawlFetcher(cfg *FetcherConfig) *FirecrawlFetcher {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	// Fetching a slow page can legitimately take a while
	client.SetTimeout(120 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.firecrawl.dev"
	}

	return &FirecrawlFetcher{
		client:   client,
		endpoint: baseURL + "/v1/scrape",
	}
}

type firecrawlRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type firecrawlResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string `json:"markdown"`
		HTML     string `json:"html"`
		Metadata struct {
			Title string `json:"title"`
		} `json:"metadata"`
	} `json:"data"`
}

// Fetch retrieves the page at url, requesting both markdown and HTML
// representations and preferring markdown. A successful response with no
// content at all is a hard failure: downstream prompting cannot proceed
// without source text.
func (f *FirecrawlFetcher) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	var resp firecrawlResponse
	httpResp, err := f.client.R().
		SetContext(ctx).
		SetBody(firecrawlRequest{
			URL:     url,
			Formats: []string{"markdown", "html"},
		}).
		SetResult(&resp).
		Post(f.endpoint)

	if err != nil {
		return nil, &FetchError{Message: fmt.Sprintf("request failed: %v", err)}
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return nil, &FetchError{
			StatusCode: httpResp.StatusCode(),
			Message:    "fetch service returned non-success status",
		}
	}

	content := resp.Data.Markdown
	if content == "" {
		content = resp.Data.HTML
	}
	if content == "" {
		return nil, &FetchError{Message: "no content extracted from website"}
	}

	title := resp.Data.Metadata.Title
	if title == "" {
		title = "Untitled"
	}

	return &FetchResult{Content: content, Title: title}, nil
}
