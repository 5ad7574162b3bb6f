package service

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/jchen/briefline/internal/domain"
)

// Aspect selects which of the two symmetric extraction passes is running.
type Aspect string

const (
	AspectOrigin Aspect = "origin"
	AspectTrends Aspect = "trends"
)

type pointPayload struct {
	Points []struct {
		Point       string `json:"point"`
		SearchQuery string `json:"searchQuery"`
	} `json:"points"`
}

// parsePoints decodes a point-extraction response body. The second return
// is false when the body is not valid JSON or "points" is absent or not a
// list; callers degrade to an empty list in that case rather than failing
// the scrape. Entries with a blank statement are dropped.
func parsePoints(raw string) (domain.PointList, bool) {
	var payload pointPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, false
	}
	if payload.Points == nil {
		return nil, false
	}

	points := make(domain.PointList, 0, len(payload.Points))
	for _, p := range payload.Points {
		if strings.TrimSpace(p.Point) == "" {
			continue
		}
		points = append(points, domain.AnalysisPoint{
			Point:       p.Point,
			SearchQuery: p.SearchQuery,
			References:  []domain.Reference{},
		})
	}
	return points, true
}

// parseSocialPosts decodes a social-post response body. Both categories
// must be present (empty arrays are fine); anything else degrades to an
// empty bundle at the call site.
func parseSocialPosts(raw string) (domain.SocialPostBundle, bool) {
	var probe struct {
		Comedic *[]domain.SocialPost `json:"comedic"`
		Serious *[]domain.SocialPost `json:"serious"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return domain.EmptySocialPostBundle(), false
	}
	if probe.Comedic == nil || probe.Serious == nil {
		return domain.EmptySocialPostBundle(), false
	}
	return domain.SocialPostBundle{
		Comedic: *probe.Comedic,
		Serious: *probe.Serious,
	}, true
}

// truncate caps s at max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
