package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jchen/briefline/internal/domain"
	"github.com/jchen/briefline/internal/logger"
	"github.com/jchen/briefline/internal/prompts"
	"github.com/jchen/briefline/internal/repository"
)

// summaryPlaceholder substitutes an empty summary response. The summary is
// supplementary, so an empty body never fails the scrape.
const summaryPlaceholder = "Summary not available"

// ContentFetcher retrieves page content and title for a validated URL.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Completer generates text from one system/user message pair.
type Completer interface {
	Complete(ctx context.Context, system, user string, opts CompletionOptions) (string, error)
}

// ReferenceSearcher resolves a search query to ranked references.
type ReferenceSearcher interface {
	Search(ctx context.Context, query string) ([]domain.Reference, error)
}

// ScrapeStore is the slice of the repository the pipeline writes through.
type ScrapeStore interface {
	MarkCompleted(ctx context.Context, id string, result *repository.ScrapeResult) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
}

// PipelineConfig bounds content sizes used by the pipeline.
type PipelineConfig struct {
	PromptContentLimit int
	StoredContentLimit int
}

// RunResult is the pipeline's response to the inbound request. The HTTP
// layer returns it with status 200 for both outcomes; a business failure
// is encoded as Success=false so the caller always has a scrape ID to
// observe against.
type RunResult struct {
	Success  bool   `json:"success"`
	ScrapeID string `json:"scrapeId"`
	Title    string `json:"title,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Pipeline orchestrates one scrape end to end: fetch, summarize, extract
// origin and trends points, enrich references, generate social posts, and
// persist the terminal state.
//
// Stages run strictly in order; only reference enrichment fans out. Errors
// fall into exactly two buckets: fatal (fetch failures and transport-level
// completion failures on summary/extraction, which mark the scrape failed
// and stop) and degrade (malformed model output, search failures, and
// anything in social post generation, which produce empty values and
// continue).
type Pipeline struct {
	store   ScrapeStore
	fetcher ContentFetcher
	llm     Completer
	search  ReferenceSearcher
	logger  *logger.Logger

	promptContentLimit int
	storedContentLimit int
}

// NewPipeline creates a pipeline with the given collaborators.
func NewPipeline(
	store ScrapeStore,
	fetcher ContentFetcher,
	llm Completer,
	search ReferenceSearcher,
	log *logger.Logger,
	cfg *PipelineConfig,
) *Pipeline {
	promptLimit := 12000
	storedLimit := 50000
	if cfg != nil {
		if cfg.PromptContentLimit > 0 {
			promptLimit = cfg.PromptContentLimit
		}
		if cfg.StoredContentLimit > 0 {
			storedLimit = cfg.StoredContentLimit
		}
	}
	return &Pipeline{
		store:              store,
		fetcher:            fetcher,
		llm:                llm,
		search:             search,
		logger:             log,
		promptContentLimit: promptLimit,
		storedContentLimit: storedLimit,
	}
}

// log returns the request-scoped logger when one is attached to ctx,
// otherwise the pipeline's own logger.
func (p *Pipeline) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return p.logger
}

// Run executes the pipeline for an already-created pending scrape. It
// always returns a RunResult; the scrape record reaches a terminal state
// in the store before this returns, even when the request context has been
// cancelled mid-stage.
func (p *Pipeline) Run(ctx context.Context, scrape *domain.Scrape) *RunResult {
	ctx = logger.SetScrapeID(ctx, scrape.ID)
	start := time.Now()

	fetched, err := p.fetcher.Fetch(logger.SetStage(ctx, "fetch"), scrape.URL)
	if err != nil {
		return p.fail(ctx, scrape.ID, err)
	}
	promptContent := truncate(fetched.Content, p.promptContentLimit)

	summary, err := p.summarize(logger.SetStage(ctx, "summary"), promptContent, scrape.Keyword)
	if err != nil {
		return p.fail(ctx, scrape.ID, err)
	}

	origin, err := p.extractPoints(logger.SetStage(ctx, "origin"), AspectOrigin, promptContent, scrape.Keyword)
	if err != nil {
		return p.fail(ctx, scrape.ID, err)
	}

	trends, err := p.extractPoints(logger.SetStage(ctx, "trends"), AspectTrends, promptContent, scrape.Keyword)
	if err != nil {
		return p.fail(ctx, scrape.ID, err)
	}

	p.enrichReferences(logger.SetStage(ctx, "references"), origin, trends)

	posts := p.generateSocialPosts(logger.SetStage(ctx, "social"), scrape.Keyword, origin, trends)

	result := &repository.ScrapeResult{
		Title:          fetched.Title,
		Content:        truncate(fetched.Content, p.storedContentLimit),
		Summary:        summary,
		OriginAnalysis: origin,
		TrendsAnalysis: trends,
		SocialPosts:    posts,
		ReferenceLinks: domain.LinkList{scrape.URL},
	}
	if err := p.store.MarkCompleted(context.WithoutCancel(ctx), scrape.ID, result); err != nil {
		return p.fail(ctx, scrape.ID, fmt.Errorf("failed to persist result: %w", err))
	}

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldStatus:     string(domain.ScrapeStatusCompleted),
	}).Info(ctx, "Scrape completed: origin_points=%d, trends_points=%d", len(origin), len(trends))

	return &RunResult{
		Success:  true,
		ScrapeID: scrape.ID,
		Title:    fetched.Title,
	}
}

// fail marks the scrape failed and builds the failure response. The
// terminal write uses a non-cancellable context so an aborted request
// cannot strand the record in pending.
func (p *Pipeline) fail(ctx context.Context, scrapeID string, cause error) *RunResult {
	p.log(ctx).WithError(cause).Error("Scrape failed")
	if err := p.store.MarkFailed(context.WithoutCancel(ctx), scrapeID, cause.Error()); err != nil {
		p.log(ctx).WithError(err).Error("Failed to mark scrape as failed")
	}
	return &RunResult{
		Success:  false,
		ScrapeID: scrapeID,
		Error:    cause.Error(),
	}
}

func (p *Pipeline) summarize(ctx context.Context, content, keyword string) (string, error) {
	out, err := p.llm.Complete(ctx, prompts.SummarySystem, prompts.Summary(content, keyword), CompletionOptions{
		Temperature: 0.7,
		MaxTokens:   600,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return summaryPlaceholder, nil
	}
	return out, nil
}

// extractPoints runs one aspect's extraction pass. A transport error is
// returned as-is and aborts the scrape; a response that cannot be parsed
// degrades to an empty list.
func (p *Pipeline) extractPoints(ctx context.Context, aspect Aspect, content, keyword string) (domain.PointList, error) {
	var user string
	switch aspect {
	case AspectTrends:
		user = prompts.Trends(content, keyword)
	default:
		user = prompts.Origin(content, keyword)
	}

	out, err := p.llm.Complete(ctx, prompts.AnalysisSystem, user, CompletionOptions{
		Temperature: 0.7,
		MaxTokens:   1000,
		JSONOnly:    true,
	})
	if err != nil {
		return nil, err
	}

	points, ok := parsePoints(out)
	if !ok {
		logger.CtxWarn(ctx, "Discarding unparsable %s analysis response", aspect)
		return domain.PointList{}, nil
	}
	return points, nil
}

// enrichReferences resolves references for every point across the given
// lists. All lookups run concurrently and the join waits for all of them;
// a failed lookup empties that point's references and never disturbs its
// siblings. Each goroutine writes only its own point, so input order is
// preserved by construction.
func (p *Pipeline) enrichReferences(ctx context.Context, lists ...domain.PointList) {
	var wg sync.WaitGroup
	for _, list := range lists {
		for i := range list {
			wg.Add(1)
			go func(point *domain.AnalysisPoint) {
				defer wg.Done()
				refs, err := p.search.Search(ctx, point.SearchQuery)
				if err != nil {
					logger.CtxWarn(ctx, "Reference lookup failed for %q: %v", point.SearchQuery, err)
					refs = []domain.Reference{}
				}
				if refs == nil {
					refs = []domain.Reference{}
				}
				point.References = refs
			}(&list[i])
		}
	}
	wg.Wait()
}

// generateSocialPosts produces the promotional post bundle. This stage
// never fails the scrape: any error or malformed response yields an empty
// bundle.
func (p *Pipeline) generateSocialPosts(ctx context.Context, keyword string, origin, trends domain.PointList) domain.SocialPostBundle {
	originJSON, err := json.Marshal(origin)
	if err != nil {
		return domain.EmptySocialPostBundle()
	}
	trendsJSON, err := json.Marshal(trends)
	if err != nil {
		return domain.EmptySocialPostBundle()
	}

	out, err := p.llm.Complete(ctx, prompts.SocialSystem, prompts.Social(string(originJSON), string(trendsJSON), keyword), CompletionOptions{
		Temperature: 0.9,
		MaxTokens:   2000,
		JSONOnly:    true,
	})
	if err != nil {
		logger.CtxWarn(ctx, "Social post generation failed: %v", err)
		return domain.EmptySocialPostBundle()
	}

	bundle, ok := parseSocialPosts(out)
	if !ok {
		logger.CtxWarn(ctx, "Discarding unparsable social post response")
		return domain.EmptySocialPostBundle()
	}
	return bundle
}
