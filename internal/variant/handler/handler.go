package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-variant-service/internal/auth"
	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/fekuna/omnipos-variant-service/internal/variant"
	"github.com/fekuna/omnipos-variant-service/internal/variant/dto"
	"github.com/fekuna/omnipos-variant-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VariantHandler struct {
	uc     variant.UseCase
	logger logger.ZapLogger
}

func NewVariantHandler(uc variant.UseCase, log logger.ZapLogger) *VariantHandler {
	return &VariantHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *VariantHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/products/:productId/locations/:locationId/allocation")
	g.GET("", h.GetState)
	g.POST("/consolidate", h.Consolidate)
	g.POST("/validate", h.Validate)
	g.POST("/commit", h.Commit)
}

type errorResponse struct {
	Error         string                   `json:"error"`
	Reason        string                   `json:"reason,omitempty"`
	Requested     int                      `json:"requested,omitempty"`
	Available     int                      `json:"available,omitempty"`
	MissingImages []model.VariantAttribute `json:"missing_images,omitempty"`
}

func (h *VariantHandler) GetState(c *gin.Context) {
	state, err := h.uc.GetState(c.Request.Context(), c.Param("productId"), c.Param("locationId"))
	if err != nil {
		h.fail(c, "get allocation state", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *VariantHandler) Consolidate(c *gin.Context) {
	report, err := h.uc.Consolidate(c.Request.Context(), c.Param("productId"), c.Param("locationId"))
	if err != nil {
		h.fail(c, "consolidate variant records", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *VariantHandler) Validate(c *gin.Context) {
	var input dto.ValidateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	input.ProductID = c.Param("productId")
	input.LocationID = c.Param("locationId")

	result, err := h.uc.Validate(c.Request.Context(), &input)
	if err != nil {
		h.fail(c, "validate allocation", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *VariantHandler) Commit(c *gin.Context) {
	var input dto.CommitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	input.ProductID = c.Param("productId")
	input.LocationID = c.Param("locationId")
	input.StaffID = auth.GetStaffID(c.Request.Context())

	result, err := h.uc.Commit(c.Request.Context(), &input)
	if err != nil {
		h.fail(c, "commit allocation", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *VariantHandler) fail(c *gin.Context, op string, err error) {
	var vErr *variant.ValidationError
	switch {
	case errors.As(err, &vErr):
		status := http.StatusUnprocessableEntity
		if errors.Is(vErr.Reason, variant.ErrStaleAllocation) {
			status = http.StatusConflict
		}
		c.JSON(status, errorResponse{
			Error:         vErr.Error(),
			Reason:        vErr.Reason.Error(),
			Requested:     vErr.Requested,
			Available:     vErr.Available,
			MissingImages: vErr.Missing,
		})
	case errors.Is(err, variant.ErrLocationBusy):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, variant.ErrLocationNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		h.logger.Error("failed to "+op,
			zap.String("product_id", c.Param("productId")),
			zap.String("location_id", c.Param("locationId")),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to " + op})
	}
}
