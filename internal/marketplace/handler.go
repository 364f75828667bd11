package marketplace

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Samrudhp/renova-backend/internal/materials"
	"github.com/Samrudhp/renova-backend/pkg/geospatial"
)

// Handler handles HTTP requests for recycler ranking
type Handler struct {
	service              *Service
	defaultMaxDistanceKm float64
	logger               *zap.Logger
}

// NewHandler creates a new marketplace handler
func NewHandler(service *Service, defaultMaxDistanceKm float64, logger *zap.Logger) *Handler {
	return &Handler{
		service:              service,
		defaultMaxDistanceKm: defaultMaxDistanceKm,
		logger:               logger,
	}
}

// RegisterRoutes registers marketplace routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/recyclers", h.listRecyclers)
}

// listRecyclers handles GET /api/v1/recyclers?lat&lon&material&max_distance_km
func (h *Handler) listRecyclers(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat"})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lon"})
		return
	}

	material, err := materials.Parse(c.Query("material"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	maxDistanceKm := h.defaultMaxDistanceKm
	if raw := c.Query("max_distance_km"); raw != "" {
		maxDistanceKm, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_distance_km"})
			return
		}
	}

	ranked, err := h.service.NearbyRecyclers(c.Request.Context(),
		geospatial.NewPoint(lat, lon), material, maxDistanceKm)
	if err != nil {
		if errors.Is(err, ErrInvalidRadius) || errors.Is(err, geospatial.ErrInvalidCoordinate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to rank recyclers", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recyclers": ranked,
		"count":     len(ranked),
	})
}
