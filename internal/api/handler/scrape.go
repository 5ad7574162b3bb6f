package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jchen/briefline/internal/config"
	"github.com/jchen/briefline/internal/domain"
	"github.com/jchen/briefline/internal/logger"
	"github.com/jchen/briefline/internal/service"
)

// ScrapeStore is the subset of the scrape repository the handler needs.
type ScrapeStore interface {
	Create(ctx context.Context, scrape *domain.Scrape) error
	GetByID(ctx context.Context, id string) (*domain.Scrape, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Scrape, error)
}

// PipelineRunner runs the research pipeline for a created scrape record.
type PipelineRunner interface {
	Run(ctx context.Context, scrape *domain.Scrape) *service.RunResult
}

// ScrapeHandler handles scrape-related endpoints.
type ScrapeHandler struct {
	store    ScrapeStore
	pipeline PipelineRunner
	cfg      *config.Config
}

// NewScrapeHandler creates a new scrape handler.
// Parameters:
//   - store: scrape repository.
//   - pipeline: pipeline runner.
//   - cfg: application configuration.
// Returns:
//   - *ScrapeHandler: initialized handler.
func NewScrapeHandler(store ScrapeStore, pipeline PipelineRunner, cfg *config.Config) *ScrapeHandler {
	return &ScrapeHandler{
		store:    store,
		pipeline: pipeline,
		cfg:      cfg,
	}
}

// CreateScrapeRequest is the body of POST /api/v1/scrapes.
type CreateScrapeRequest struct {
	URL     string `json:"url"`
	Keyword string `json:"keyword"`
	UserID  string `json:"userId"`
}

// CreateScrape handles POST /api/v1/scrapes. The pipeline runs
// synchronously; business failures still return 200 with success=false.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ScrapeHandler) CreateScrape(c *gin.Context) {
	var req CreateScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "URL and keyword are required",
		})
		return
	}

	if req.URL == "" || req.Keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "URL and keyword are required",
		})
		return
	}

	if !isValidURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid URL format",
		})
		return
	}

	if !h.cfg.HasRequiredKeys() {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "API keys not configured. Please set FIRECRAWL_API_KEY and OPENAI_API_KEY.",
		})
		return
	}

	ctx := c.Request.Context()
	if req.UserID != "" {
		ctx = logger.WithFields(ctx, logger.Fields{
			logger.FieldUserID: req.UserID,
		})
	}

	scrape := &domain.Scrape{
		URL:     req.URL,
		Keyword: req.Keyword,
		UserID:  req.UserID,
	}
	if err := h.store.Create(ctx, scrape); err != nil {
		logger.CtxError(ctx, "Failed to create scrape record: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create scrape record",
		})
		return
	}

	result := h.pipeline.Run(ctx, scrape)
	c.JSON(http.StatusOK, result)
}

// GetScrape handles GET /api/v1/scrapes/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ScrapeHandler) GetScrape(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Scrape ID is required",
		})
		return
	}

	scrape, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Scrape not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load scrape",
		})
		return
	}

	c.JSON(http.StatusOK, scrape)
}

// ListScrapes handles GET /api/v1/scrapes.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ScrapeHandler) ListScrapes(c *gin.Context) {
	userID := c.Query("userId")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	scrapes, err := h.store.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list scrapes",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scrapes": scrapes,
		"count":   len(scrapes),
	})
}

// isValidURL accepts only absolute http/https URLs.
func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if !u.IsAbs() || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
