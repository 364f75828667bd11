package credits

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Samrudhp/renova-backend/internal/materials"
)

// Handler handles HTTP requests for scan estimates and user stats
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new credits handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers credit routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/scans/estimate", h.estimate)
	router.GET("/users/:id/stats", h.getUserStats)
}

// estimate handles POST /api/v1/scans/estimate
func (h *Handler) estimate(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Estimate(c.Request.Context(), &req)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to compute estimate", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getUserStats handles GET /api/v1/users/:id/stats
func (h *Handler) getUserStats(c *gin.Context) {
	userID := c.Param("id")

	stats, err := h.service.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to get user stats", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrInvalidWeight) ||
		errors.Is(err, ErrInvalidCleanliness) ||
		errors.Is(err, materials.ErrUnknownMaterial)
}
