// Package footprint provides REST API handlers for the carbon tracking
// endpoints: dashboard, calculator submissions, history, badges, and
// the leaderboard.
package footprint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecotrackhq/carbon-tracker/internal/api/middleware"
	"github.com/ecotrackhq/carbon-tracker/internal/models"
	"github.com/ecotrackhq/carbon-tracker/internal/service/badges"
	"github.com/ecotrackhq/carbon-tracker/internal/service/calculator"
	"github.com/ecotrackhq/carbon-tracker/internal/service/reporting"
	"github.com/ecotrackhq/carbon-tracker/internal/service/tracker"
	"github.com/ecotrackhq/carbon-tracker/pkg/logger"
)

// TrackerService interface for submission logging.
type TrackerService interface {
	LogSubmission(ctx context.Context, userID uint, sub calculator.Submission, now time.Time) (*tracker.Result, error)
}

// ReportingService interface for derived views.
type ReportingService interface {
	Dashboard(ctx context.Context, userID uint, now time.Time) (*reporting.Dashboard, error)
	History(ctx context.Context, userID uint) ([]models.EmissionRecord, error)
	Leaderboard(ctx context.Context) ([]reporting.Entry, error)
	InvalidateLeaderboard(ctx context.Context)
}

// BadgeService interface for badge queries.
type BadgeService interface {
	UserBadges(ctx context.Context, userID uint) ([]models.Badge, error)
}

// Handler handles footprint API requests.
type Handler struct {
	trackerService   TrackerService
	reportingService ReportingService
	badgeService     BadgeService
	log              *logger.Logger
}

// NewHandler creates a new footprint handler.
func NewHandler(
	trackerService *tracker.Service,
	reportingService *reporting.Service,
	badgeService *badges.Service,
	log *logger.Logger,
) *Handler {
	return &Handler{
		trackerService:   trackerService,
		reportingService: reportingService,
		badgeService:     badgeService,
		log:              log,
	}
}

// NewHandlerWithInterfaces creates a new footprint handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(
	trackerService TrackerService,
	reportingService ReportingService,
	badgeService BadgeService,
	log *logger.Logger,
) *Handler {
	return &Handler{
		trackerService:   trackerService,
		reportingService: reportingService,
		badgeService:     badgeService,
		log:              log,
	}
}

// GetDashboard returns the authenticated user's summary view.
// GET /api/v1/dashboard.
func (h *Handler) GetDashboard(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		h.errorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	dash, err := h.reportingService.Dashboard(c.Request.Context(), userID, time.Now().UTC())
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to build dashboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, dash)
}

// SubmitCalculator logs a calculator submission.
// POST /api/v1/calculator.
func (h *Handler) SubmitCalculator(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		h.errorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var sub calculator.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.trackerService.LogSubmission(c.Request.Context(), userID, sub, time.Now().UTC())
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to log submission")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to log submission")
		return
	}

	h.reportingService.InvalidateLeaderboard(c.Request.Context())

	c.JSON(http.StatusCreated, result)
}

// GetHistory returns the user's most recent ledger entries.
// GET /api/v1/history.
func (h *Handler) GetHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		h.errorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	records, err := h.reportingService.History(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to load history")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to load history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"history": records,
		"count":   len(records),
	})
}

// GetBadges returns the user's earned badges, newest first.
// GET /api/v1/badges.
func (h *Handler) GetBadges(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		h.errorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	earned, err := h.badgeService.UserBadges(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to load badges")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to load badges")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"badges": earned,
		"count":  len(earned),
	})
}

// GetLeaderboard returns the top users by green score.
// GET /api/v1/leaderboard.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	entries, err := h.reportingService.Leaderboard(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   entries,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
