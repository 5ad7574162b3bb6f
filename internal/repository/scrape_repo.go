package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jchen/briefline/internal/domain"
	"gorm.io/gorm"
)

// ScrapeResult carries the fields written in the single terminal update of
// a successful scrape.
type ScrapeResult struct {
	Title          string
	Content        string
	Summary        string
	OriginAnalysis domain.PointList
	TrendsAnalysis domain.PointList
	SocialPosts    domain.SocialPostBundle
	ReferenceLinks domain.LinkList
}

// ScrapeRepository handles scrape record persistence.
//
// The lifecycle contract is one Create followed by exactly one terminal
// update (MarkCompleted or MarkFailed). Both Mark methods guard on the
// pending status, so a record that already reached a terminal state is
// never rewritten.
type ScrapeRepository struct {
	db *gorm.DB
}

// NewScrapeRepository creates a new ScrapeRepository.
func NewScrapeRepository(db *gorm.DB) *ScrapeRepository {
	return &ScrapeRepository{db: db}
}

// Create inserts a new scrape record with status pending, assigning an ID
// when the caller did not set one.
func (r *ScrapeRepository) Create(ctx context.Context, scrape *domain.Scrape) error {
	if scrape.ID == "" {
		scrape.ID = uuid.New().String()
	}
	scrape.Status = domain.ScrapeStatusPending
	return r.db.WithContext(ctx).Create(scrape).Error
}

// MarkCompleted transitions a pending scrape to completed, writing the full
// result in one atomic update.
func (r *ScrapeRepository) MarkCompleted(ctx context.Context, id string, result *ScrapeResult) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&domain.Scrape{}).
		Where("id = ? AND status = ?", id, domain.ScrapeStatusPending).
		Updates(map[string]interface{}{
			"status":          domain.ScrapeStatusCompleted,
			"title":           result.Title,
			"content":         result.Content,
			"summary":         result.Summary,
			"origin_analysis": result.OriginAnalysis,
			"trends_analysis": result.TrendsAnalysis,
			"social_posts":    result.SocialPosts,
			"reference_links": result.ReferenceLinks,
			"completed_at":    &now,
		}).Error
}

// MarkFailed transitions a pending scrape to failed, recording the error
// message in one atomic update.
func (r *ScrapeRepository) MarkFailed(ctx context.Context, id string, errMsg string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&domain.Scrape{}).
		Where("id = ? AND status = ?", id, domain.ScrapeStatusPending).
		Updates(map[string]interface{}{
			"status":       domain.ScrapeStatusFailed,
			"error":        errMsg,
			"completed_at": &now,
		}).Error
}

// GetByID retrieves a scrape by its ID.
func (r *ScrapeRepository) GetByID(ctx context.Context, id string) (*domain.Scrape, error) {
	var scrape domain.Scrape
	if err := r.db.WithContext(ctx).First(&scrape, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &scrape, nil
}

// ListByUser retrieves scrapes with pagination, newest first. An empty
// userID returns scrapes across all users.
func (r *ScrapeRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Scrape, error) {
	var scrapes []domain.Scrape
	query := r.db.WithContext(ctx)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.
		Limit(limit).
		Offset(offset).
		Order("created_at DESC").
		Find(&scrapes).Error; err != nil {
		return nil, err
	}
	return scrapes, nil
}

// CountByStatus counts scrapes by status.
func (r *ScrapeRepository) CountByStatus(ctx context.Context, status domain.ScrapeStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Scrape{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
