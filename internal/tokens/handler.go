package tokens

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Samrudhp/renova-backend/internal/credits"
	"github.com/Samrudhp/renova-backend/internal/materials"
)

// Handler handles HTTP requests for token finalize and redeem
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new tokens handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers token routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/recyclers/finalize", h.finalize)
	router.POST("/users/redeem", h.redeem)
}

// finalize handles POST /api/v1/recyclers/finalize
func (h *Handler) finalize(c *gin.Context) {
	var req FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.service.Mint(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, materials.ErrUnknownMaterial) ||
			errors.Is(err, credits.ErrInvalidWeight) ||
			errors.Is(err, credits.ErrInvalidCleanliness) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to mint token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, FinalizeResponse{
		Code:      token.Code,
		Credits:   token.Credits,
		ExpiresAt: token.ExpiresAt,
	})
}

// redeem handles POST /api/v1/users/redeem
func (h *Handler) redeem(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Redeem(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrTokenExpired):
			// Distinct from not-found so clients can explain the 24h window.
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		case errors.Is(err, ErrTokenAlreadyRedeemed), errors.Is(err, ErrTokenUserMismatch):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Failed to redeem token", zap.Error(err),
				zap.String("code", req.Code))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
