package handler

import (
	"github.com/gin-gonic/gin"

	salesapp "github.com/crosslist/backend/internal/application/sales"
	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/interfaces/http/dto"
)

// SalesHandler handles sale recording and sync API endpoints
type SalesHandler struct {
	BaseHandler
	salesService *salesapp.Service
}

// NewSalesHandler creates a new SalesHandler
func NewSalesHandler(salesService *salesapp.Service) *SalesHandler {
	return &SalesHandler{
		salesService: salesService,
	}
}

// RecordManualSale godoc
// @Summary      Record a manual sale
// @Description  Mark a listing sold outside the synced platforms and fan out delists
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Listing ID"
// @Param        request body salesapp.ManualSaleRequest true "Manual sale request"
// @Success      201 {object} dto.Response{data=salesapp.ManualSaleResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /listings/{id}/sales [post]
func (h *SalesHandler) RecordManualSale(c *gin.Context) {
	userID, listingID, ok := h.getListingRef(c)
	if !ok {
		return
	}

	var req salesapp.ManualSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.salesService.RecordManualSale(c.Request.Context(), userID, listingID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListSales godoc
// @Summary      List sales
// @Description  List the caller's sales within an optional time window
// @Tags         sales
// @Produce      json
// @Param        from query string false "Window start (RFC3339)"
// @Param        to query string false "Window end (RFC3339)"
// @Success      200 {object} dto.Response{data=salesapp.ListSalesResponse}
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SalesHandler) ListSales(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req salesapp.ListSalesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.salesService.ListSales(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListListingSales godoc
// @Summary      List sales of a listing
// @Tags         sales
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200 {object} dto.Response{data=salesapp.ListSalesResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /listings/{id}/sales [get]
func (h *SalesHandler) ListListingSales(c *gin.Context) {
	userID, listingID, ok := h.getListingRef(c)
	if !ok {
		return
	}

	resp, err := h.salesService.ListListingSales(c.Request.Context(), userID, listingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SyncPlatform godoc
// @Summary      Pull sales from a platform
// @Description  Run one sales sync pass against a connected platform and reconcile the results
// @Tags         sales
// @Produce      json
// @Param        platform path string true "Platform code"
// @Success      200 {object} dto.Response{data=salesapp.Report}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/sync/{platform} [post]
func (h *SalesHandler) SyncPlatform(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	platform := channel.PlatformCode(c.Param("platform"))
	if !platform.IsValid() {
		h.ErrorWithCode(c, dto.ErrCodeInvalidPlatform, "Unknown platform")
		return
	}

	report, err := h.salesService.SyncPlatform(c.Request.Context(), userID, platform)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
