package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-variant-service/internal/inventory"
	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/fekuna/omnipos-variant-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/locations/:locationId/low-stock", h.ListLowStock)
}

type lowStockResponse struct {
	Items []model.InventoryRecord `json:"items"`
	Total int                     `json:"total"`
	Page  int                     `json:"page"`
}

func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	locationID := c.Param("locationId")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, total, err := h.uc.ListLowStock(c.Request.Context(), locationID, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list low stock", zap.String("location_id", locationID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list low stock"})
		return
	}
	if items == nil {
		items = []model.InventoryRecord{}
	}

	c.JSON(http.StatusOK, lowStockResponse{Items: items, Total: total, Page: page})
}
