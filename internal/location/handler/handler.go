package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-variant-service/internal/location"
	"github.com/fekuna/omnipos-variant-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LocationHandler struct {
	uc     location.UseCase
	logger logger.ZapLogger
}

func NewLocationHandler(uc location.UseCase, log logger.ZapLogger) *LocationHandler {
	return &LocationHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *LocationHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/locations", h.ListLocations)
}

func (h *LocationHandler) ListLocations(c *gin.Context) {
	locations, err := h.uc.ListLocations(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list locations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list locations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}
