package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jchen/briefline/internal/domain"
	"github.com/jchen/briefline/internal/repository"
)

type fakeStore struct {
	mu        sync.Mutex
	completed map[string]*repository.ScrapeResult
	failed    map[string]string
	failMark  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		completed: make(map[string]*repository.ScrapeResult),
		failed:    make(map[string]string),
	}
}

func (s *fakeStore) MarkCompleted(_ context.Context, id string, result *repository.ScrapeResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failMark != nil {
		return s.failMark
	}
	s.completed[id] = result
	return nil
}

func (s *fakeStore) MarkFailed(_ context.Context, id string, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[id] = errMsg
	return nil
}

type fakeFetcher struct {
	result *FetchResult
	err    error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (*FetchResult, error) {
	return f.result, f.err
}

// fakeCompleter routes each call by its system prompt so a single test can
// script all four completion stages independently.
type fakeCompleter struct {
	mu    sync.Mutex
	calls []string
	fn    func(system, user string, opts CompletionOptions) (string, error)
}

func (c *fakeCompleter) Complete(_ context.Context, system, user string, opts CompletionOptions) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, system)
	c.mu.Unlock()
	return c.fn(system, user, opts)
}

type fakeSearcher struct {
	refs []domain.Reference
	err  error
}

func (s *fakeSearcher) Search(_ context.Context, _ string) ([]domain.Reference, error) {
	return s.refs, s.err
}

const (
	testPointsJSON = `{"points":[{"point":"First point","searchQuery":"first query"},{"point":"Second point","searchQuery":"second query"},{"point":"Third point","searchQuery":"third query"}]}`
	testPostsJSON  = `{"comedic":[{"id":"c1","content":"funny","category":"comedic"}],"serious":[{"id":"s1","content":"earnest","category":"serious"}]}`
)

// scriptedCompleter answers summary, analysis, and social prompts with
// canned healthy responses.
func scriptedCompleter() *fakeCompleter {
	return &fakeCompleter{fn: func(system, _ string, _ CompletionOptions) (string, error) {
		switch {
		case strings.Contains(system, "summarization"):
			return "A concise research summary.", nil
		case strings.Contains(system, "social media"):
			return testPostsJSON, nil
		default:
			return testPointsJSON, nil
		}
	}}
}

func testScrape() *domain.Scrape {
	return &domain.Scrape{
		ID:      "scrape-1",
		URL:     "https://example.com/article",
		Keyword: "test keyword",
		Status:  domain.ScrapeStatusPending,
	}
}

func TestPipelineRunSuccess(t *testing.T) {
	store := newFakeStore()
	searcher := &fakeSearcher{refs: []domain.Reference{{URL: "https://ref.example", Title: "Ref"}}}
	p := NewPipeline(store, &fakeFetcher{result: &FetchResult{Content: "body text", Title: "Page Title"}},
		scriptedCompleter(), searcher, nil, nil)

	result := p.Run(context.Background(), testScrape())

	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.ScrapeID != "scrape-1" {
		t.Errorf("expected scrape ID to round-trip, got %q", result.ScrapeID)
	}
	if result.Title != "Page Title" {
		t.Errorf("expected fetched title, got %q", result.Title)
	}

	saved, ok := store.completed["scrape-1"]
	if !ok {
		t.Fatal("expected scrape to be marked completed")
	}
	if len(store.failed) != 0 {
		t.Error("completed scrape must not also be marked failed")
	}
	if saved.Summary != "A concise research summary." {
		t.Errorf("unexpected summary %q", saved.Summary)
	}
	if len(saved.OriginAnalysis) != 3 || len(saved.TrendsAnalysis) != 3 {
		t.Fatalf("expected 3 points per aspect, got %d and %d",
			len(saved.OriginAnalysis), len(saved.TrendsAnalysis))
	}
	for _, p := range saved.OriginAnalysis {
		if len(p.References) != 1 {
			t.Errorf("expected 1 reference on point %q, got %d", p.Point, len(p.References))
		}
	}
	if len(saved.SocialPosts.Comedic) != 1 || len(saved.SocialPosts.Serious) != 1 {
		t.Error("expected social posts in both categories")
	}
	if len(saved.ReferenceLinks) != 1 || saved.ReferenceLinks[0] != "https://example.com/article" {
		t.Errorf("expected reference links to carry the source URL, got %v", saved.ReferenceLinks)
	}
}

func TestPipelineRunFetchFailure(t *testing.T) {
	store := newFakeStore()
	completer := scriptedCompleter()
	p := NewPipeline(store, &fakeFetcher{err: &FetchError{Message: "no content extracted from website"}},
		completer, &fakeSearcher{}, nil, nil)

	result := p.Run(context.Background(), testScrape())

	if result.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Error, "no content extracted") {
		t.Errorf("expected fetch error message, got %q", result.Error)
	}
	if _, ok := store.failed["scrape-1"]; !ok {
		t.Error("expected scrape to be marked failed")
	}
	if len(store.completed) != 0 {
		t.Error("failed scrape must not be marked completed")
	}
	if len(completer.calls) != 0 {
		t.Errorf("no completion calls expected after fetch failure, got %d", len(completer.calls))
	}
}

func TestPipelineRunAnalysisTransportFailure(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{fn: func(system, _ string, _ CompletionOptions) (string, error) {
		if strings.Contains(system, "summarization") {
			return "summary", nil
		}
		return "", &CompletionError{StatusCode: 429, Message: "rate limited"}
	}}
	p := NewPipeline(store, &fakeFetcher{result: &FetchResult{Content: "body", Title: "T"}},
		completer, &fakeSearcher{}, nil, nil)

	result := p.Run(context.Background(), testScrape())

	if result.Success {
		t.Fatal("expected transport-level analysis failure to fail the scrape")
	}
	if _, ok := store.failed["scrape-1"]; !ok {
		t.Error("expected scrape to be marked failed")
	}
}

func TestPipelineRunUnparsableAnalysisDegrades(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{fn: func(system, user string, _ CompletionOptions) (string, error) {
		switch {
		case strings.Contains(system, "summarization"):
			return "summary", nil
		case strings.Contains(system, "social media"):
			return testPostsJSON, nil
		case strings.Contains(user, "ORIGIN and HISTORY"):
			return "this is not json", nil
		default:
			return testPointsJSON, nil
		}
	}}
	p := NewPipeline(store, &fakeFetcher{result: &FetchResult{Content: "body", Title: "T"}},
		completer, &fakeSearcher{}, nil, nil)

	result := p.Run(context.Background(), testScrape())

	if !result.Success {
		t.Fatalf("unparsable analysis must degrade, not fail: %q", result.Error)
	}
	saved := store.completed["scrape-1"]
	if saved == nil {
		t.Fatal("expected completed record")
	}
	if len(saved.OriginAnalysis) != 0 {
		t.Errorf("expected empty origin analysis, got %d points", len(saved.OriginAnalysis))
	}
	if saved.OriginAnalysis == nil {
		t.Error("degraded origin analysis should be empty, not nil")
	}
	if len(saved.TrendsAnalysis) != 3 {
		t.Errorf("trends analysis should be unaffected, got %d points", len(saved.TrendsAnalysis))
	}
}

func TestPipelineRunSocialFailureDegrades(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{fn: func(system, _ string, _ CompletionOptions) (string, error) {
		switch {
		case strings.Contains(system, "summarization"):
			return "summary", nil
		case strings.Contains(system, "social media"):
			return "", errors.New("model unavailable")
		default:
			return testPointsJSON, nil
		}
	}}
	p := NewPipeline(store, &fakeFetcher{result: &FetchResult{Content: "body", Title: "T"}},
		completer, &fakeSearcher{}, nil, nil)

	result := p.Run(context.Background(), testScrape())

	if !result.Success {
		t.Fatalf("social post failure must not fail the scrape: %q", result.Error)
	}
	saved := store.completed["scrape-1"]
	if saved == nil {
		t.Fatal("expected completed record")
	}
	if saved.SocialPosts.Comedic == nil || saved.SocialPosts.Serious == nil {
		t.Error("degraded bundle should have allocated empty categories")
	}
	if len(saved.SocialPosts.Comedic) != 0 || len(saved.SocialPosts.Serious) != 0 {
		t.Error("degraded bundle should be empty")
	}
}

func TestPipelineRunEmptySummaryPlaceholder(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{fn: func(system, _ string, _ CompletionOptions) (string, error) {
		switch {
		case strings.Contains(system, "summarization"):
			return "   ", nil
		case strings.Contains(system, "social media"):
			return testPostsJSON, nil
		default:
			return testPointsJSON, nil
		}
	}}
	p := NewPipeline(store, &fakeFetcher{result: &FetchResult{Content: "body", Title: "T"}},
		completer, &fakeSearcher{}, nil, nil)

	result := p.Run(context.Background(), testScrape())
	if !result.Success {
		t.Fatalf("unexpected failure: %q", result.Error)
	}
	if got := store.completed["scrape-1"].Summary; got != "Summary not available" {
		t.Errorf("expected placeholder summary, got %q", got)
	}
}

func TestPipelineRunSearchFailureEmptiesReferences(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, &fakeFetcher{result: &FetchResult{Content: "body", Title: "T"}},
		scriptedCompleter(), &fakeSearcher{err: errors.New("search down")}, nil, nil)

	result := p.Run(context.Background(), testScrape())
	if !result.Success {
		t.Fatalf("search failure must not fail the scrape: %q", result.Error)
	}
	for _, point := range store.completed["scrape-1"].OriginAnalysis {
		if point.References == nil {
			t.Fatal("references should be empty, not nil")
		}
		if len(point.References) != 0 {
			t.Errorf("expected no references after search failure, got %d", len(point.References))
		}
	}
}

// queryKeyedSearcher resolves each query from a fixed map; unknown
// queries fail.
type queryKeyedSearcher struct {
	refs map[string][]domain.Reference
}

func (s *queryKeyedSearcher) Search(_ context.Context, query string) ([]domain.Reference, error) {
	if refs, ok := s.refs[query]; ok {
		return refs, nil
	}
	return nil, errors.New("no results")
}

func TestPipelineEnrichReferencesMixedFailures(t *testing.T) {
	searcher := &queryKeyedSearcher{refs: map[string][]domain.Reference{
		"q1": {{URL: "https://one.example", Title: "One"}},
		"q3": {{URL: "https://three.example", Title: "Three"}},
	}}
	p := NewPipeline(newFakeStore(), &fakeFetcher{}, scriptedCompleter(), searcher, nil, nil)

	origin := domain.PointList{
		{Point: "A", SearchQuery: "q1"},
		{Point: "B", SearchQuery: "q2"},
		{Point: "C", SearchQuery: "q3"},
	}
	trends := domain.PointList{
		{Point: "D", SearchQuery: "q2"},
	}

	p.enrichReferences(context.Background(), origin, trends)

	// Order and length are untouched; only References change.
	wantPoints := []string{"A", "B", "C"}
	for i, want := range wantPoints {
		if origin[i].Point != want {
			t.Fatalf("point order disturbed: index %d is %q", i, origin[i].Point)
		}
	}
	if len(origin[0].References) != 1 || origin[0].References[0].URL != "https://one.example" {
		t.Errorf("unexpected references for q1: %+v", origin[0].References)
	}
	if origin[1].References == nil || len(origin[1].References) != 0 {
		t.Errorf("failed lookup should yield empty references, got %+v", origin[1].References)
	}
	if len(origin[2].References) != 1 {
		t.Errorf("sibling failure must not disturb q3, got %+v", origin[2].References)
	}
	if trends[0].References == nil || len(trends[0].References) != 0 {
		t.Errorf("failed lookup in second list should yield empty references, got %+v", trends[0].References)
	}
}

func TestPipelineRunPersistFailure(t *testing.T) {
	store := newFakeStore()
	store.failMark = errors.New("disk full")
	p := NewPipeline(store, &fakeFetcher{result: &FetchResult{Content: "body", Title: "T"}},
		scriptedCompleter(), &fakeSearcher{}, nil, nil)

	result := p.Run(context.Background(), testScrape())
	if result.Success {
		t.Fatal("persist failure must surface as a business failure")
	}
	if !strings.Contains(result.Error, "failed to persist result") {
		t.Errorf("unexpected error message %q", result.Error)
	}
	if _, ok := store.failed["scrape-1"]; !ok {
		t.Error("expected scrape to be marked failed after persist failure")
	}
}

func TestPipelineContentTruncation(t *testing.T) {
	store := newFakeStore()
	longContent := strings.Repeat("a", 200)

	var prompts []string
	completer := &fakeCompleter{fn: func(system, user string, _ CompletionOptions) (string, error) {
		prompts = append(prompts, user)
		switch {
		case strings.Contains(system, "summarization"):
			return "summary", nil
		case strings.Contains(system, "social media"):
			return testPostsJSON, nil
		default:
			return `{"points":[]}`, nil
		}
	}}

	p := NewPipeline(store, &fakeFetcher{result: &FetchResult{Content: longContent, Title: "T"}},
		completer, &fakeSearcher{}, nil, &PipelineConfig{
			PromptContentLimit: 50,
			StoredContentLimit: 100,
		})

	result := p.Run(context.Background(), testScrape())
	if !result.Success {
		t.Fatalf("unexpected failure: %q", result.Error)
	}

	saved := store.completed["scrape-1"]
	if len(saved.Content) != 100 {
		t.Errorf("expected stored content capped at 100 bytes, got %d", len(saved.Content))
	}
	// Prompts embed at most the capped content run, never the full page.
	overCap := strings.Repeat("a", 51)
	for i, user := range prompts {
		if strings.Contains(user, overCap) {
			t.Errorf("prompt %d embeds untruncated content", i)
		}
	}
}
