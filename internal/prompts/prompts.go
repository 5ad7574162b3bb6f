// Package prompts centralizes the prompt text sent to the completion
// service, so wording changes never touch pipeline logic.
package prompts

import "fmt"

// ============================================================================
// System Prompts
// ============================================================================

// SummarySystem defines the role for webpage summarization.
const SummarySystem = "You are an expert research analyst specializing in content summarization."

// AnalysisSystem defines the role for structured point extraction.
// The JSON-only instruction pairs with the strict response format flag on
// the completion request.
const AnalysisSystem = "You are an expert research analyst. Always respond with valid JSON only."

// SocialSystem defines the role for social media post generation.
const SocialSystem = "You are an expert social media content creator. Always respond with valid JSON only."

// ============================================================================
// User Prompt Builders
// ============================================================================

const summaryTemplate = `You are a research analyst. Based on the following website content, provide a concise and comprehensive summary of what this webpage is trying to convey about "%s".

Website Content:
%s

Provide a clear summary (200-300 words) that captures:
1. The main message or purpose of the content
2. Key points and arguments presented
3. The perspective or stance taken
4. Main conclusions or takeaways

Write in a clear, professional tone suitable for business discussions.`

// Summary builds the summarization prompt for the given page content and
// keyword. Content must already be truncated to the prompt limit.
func Summary(content, keyword string) string {
	return fmt.Sprintf(summaryTemplate, keyword, content)
}

const pointsTemplate = `You are a research analyst. Based on the website content about "%s", identify key points about %s.

Website Content:
%s

Generate a JSON object with a "points" array containing 3-5 key points about %s. Each point in the array should include:
1. "point": A clear statement (1-2 sentences)
2. "searchQuery": A specific search query to find credible sources that verify this point

Required JSON structure:
{
  "points": [
    {"point": "statement here", "searchQuery": "search query here"},
    {"point": "another statement", "searchQuery": "another search query"}
  ]
}

Focus on: %s.`

// Origin builds the origin/history point-extraction prompt.
func Origin(content, keyword string) string {
	return fmt.Sprintf(pointsTemplate, keyword,
		"its ORIGIN and HISTORY",
		content,
		"the origin/history",
		"earliest mentions, verified origins, historical context, key milestones, and credible sources")
}

// Trends builds the recent-updates/future-trends point-extraction prompt.
func Trends(content, keyword string) string {
	return fmt.Sprintf(pointsTemplate, keyword,
		"RECENT UPDATES and FUTURE TRENDS",
		content,
		"trends/forecasts",
		"latest developments, current trends, future forecasts, emerging opportunities, and expert insights")
}

const socialTemplate = `You are a creative social media content writer. Based on the Origin Analysis and Trends Analysis provided, generate 6 social media posts total.

Origin Analysis:
%s

Trends Analysis:
%s

Keyword: "%s"

Generate a JSON object with the following structure:
{
  "comedic": [
    {"id": "1", "content": "post content here", "category": "comedic"},
    {"id": "2", "content": "post content here", "category": "comedic"},
    {"id": "3", "content": "post content here", "category": "comedic"}
  ],
  "serious": [
    {"id": "4", "content": "post content here", "category": "serious"},
    {"id": "5", "content": "post content here", "category": "serious"},
    {"id": "6", "content": "post content here", "category": "serious"}
  ]
}

Requirements:

COMEDIC POSTS (3 posts):
- Write in the style of a "Current Best Comedian" - fun, humorous, lots of laughter
- Use jokes, puns, and lighthearted observations
- Reference key ideas from both Origin Analysis and Trends & Forecast
- Keep each post 1-3 short paragraphs suitable for social media
- Make people laugh while being informative

SERIOUS/CONTROVERSIAL POSTS (3 posts):
- Write in a serious, slightly provocative tone (but still professional)
- Highlight risks, debates, or strong opinions
- Challenge conventional thinking
- Reference insights from both analyses
- Keep each post 1-3 short paragraphs suitable for social media
- Maintain professionalism while being thought-provoking`

// Social builds the social post generation prompt from the two serialized
// analyses and the keyword.
func Social(originJSON, trendsJSON, keyword string) string {
	return fmt.Sprintf(socialTemplate, originJSON, trendsJSON, keyword)
}
