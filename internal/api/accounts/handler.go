// Package accounts provides REST API handlers for registration, login,
// and profile management.
package accounts

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecotrackhq/carbon-tracker/internal/api/middleware"
	"github.com/ecotrackhq/carbon-tracker/internal/models"
	"github.com/ecotrackhq/carbon-tracker/internal/service/users"
	"github.com/ecotrackhq/carbon-tracker/pkg/logger"
)

// UserService interface for account operations.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GetProfile(ctx context.Context, userID uint) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint, name, newPassword string) (*models.User, error)
}

// Handler handles account API requests.
type Handler struct {
	userService UserService
	log         *logger.Logger
}

// NewHandler creates a new accounts handler.
func NewHandler(userService *users.Service, log *logger.Logger) *Handler {
	return &Handler{userService: userService, log: log}
}

// NewHandlerWithInterfaces creates a new accounts handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(userService UserService, log *logger.Logger) *Handler {
	return &Handler{userService: userService, log: log}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name        string `json:"name"`
	NewPassword string `json:"new_password"`
}

// Register creates a new account.
// POST /api/v1/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.userService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrEmailTaken):
			h.errorResponse(c, http.StatusConflict, err.Error())
		case errors.Is(err, users.ErrValidation):
			h.errorResponse(c, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Msg("Failed to register user")
			h.errorResponse(c, http.StatusInternalServerError, "Failed to register")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  user,
		"token": token,
	})
}

// Login exchanges credentials for a token.
// POST /api/v1/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			h.errorResponse(c, http.StatusUnauthorized, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to log in user")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

// GetProfile returns the authenticated user's profile.
// GET /api/v1/profile.
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		h.errorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to load profile")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile changes the display name and optionally the password.
// PUT /api/v1/profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		h.errorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req.Name, req.NewPassword)
	if err != nil {
		if errors.Is(err, users.ErrValidation) {
			h.errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to update profile")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
