package domain

import "time"

// ScrapeStatus represents the lifecycle status of a scrape job.
// A scrape is created as ScrapeStatusPending and transitions exactly once
// to ScrapeStatusCompleted or ScrapeStatusFailed.
type ScrapeStatus string

const (
	ScrapeStatusPending   ScrapeStatus = "pending"
	ScrapeStatusCompleted ScrapeStatus = "completed"
	ScrapeStatusFailed    ScrapeStatus = "failed"
)

// IsTerminal reports whether the status is a terminal state.
func (s ScrapeStatus) IsTerminal() bool {
	return s == ScrapeStatusCompleted || s == ScrapeStatusFailed
}

// Scrape represents one end-to-end research request and its result record.
// The analysis columns (origin/trends/posts/links) are stored as JSON text
// and owned exclusively by their parent Scrape.
type Scrape struct {
	ID             string           `gorm:"type:text;primaryKey" json:"id"`
	URL            string           `gorm:"type:text;not null" json:"url"`
	Keyword        string           `gorm:"type:text;not null" json:"keyword"`
	UserID         string           `gorm:"type:text;index:idx_scrapes_user" json:"user_id,omitempty"`
	Status         ScrapeStatus     `gorm:"type:text;index:idx_scrapes_status;default:pending" json:"status"`
	Title          string           `gorm:"type:text" json:"title,omitempty"`
	Content        string           `gorm:"type:text" json:"scraped_content,omitempty"`
	Summary        string           `gorm:"type:text" json:"url_summary,omitempty"`
	OriginAnalysis PointList        `gorm:"type:text" json:"origin_analysis"`
	TrendsAnalysis PointList        `gorm:"type:text" json:"trends_analysis"`
	SocialPosts    SocialPostBundle `gorm:"type:text" json:"social_media_posts"`
	ReferenceLinks LinkList         `gorm:"type:text" json:"reference_links"`
	Error          string           `gorm:"type:text" json:"error,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
}

// TableName returns the database table name for Scrape.
func (Scrape) TableName() string {
	return "scrapes"
}
