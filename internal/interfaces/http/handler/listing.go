package handler

import (
	"github.com/gin-gonic/gin"

	listingapp "github.com/crosslist/backend/internal/application/listing"
)

// ListingHandler handles listing-related API endpoints
type ListingHandler struct {
	BaseHandler
	listingService *listingapp.Service
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(listingService *listingapp.Service) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
	}
}

// Create godoc
// @Summary      Create a new listing
// @Description  Create a new canonical listing in draft state
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        request body listingapp.CreateListingRequest true "Listing creation request"
// @Success      201 {object} dto.Response{data=listingapp.ListingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /listings [post]
func (h *ListingHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req listingapp.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.listingService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
// @Summary      Get a listing
// @Tags         listings
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200 {object} dto.Response{data=listingapp.ListingResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /listings/{id} [get]
func (h *ListingHandler) Get(c *gin.Context) {
	userID, listingID, ok := h.getListingRef(c)
	if !ok {
		return
	}

	resp, err := h.listingService.Get(c.Request.Context(), userID, listingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List listings
// @Description  List the caller's listings with optional state and keyword filters
// @Tags         listings
// @Produce      json
// @Param        state query string false "Listing state filter"
// @Param        keyword query string false "Keyword search on title"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=listingapp.ListListingsResponse}
// @Security     BearerAuth
// @Router       /listings [get]
func (h *ListingHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req listingapp.ListListingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.listingService.List(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// Update godoc
// @Summary      Update a listing
// @Description  Partially update a listing; only provided fields change
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        id path string true "Listing ID"
// @Param        request body listingapp.UpdateListingRequest true "Listing update request"
// @Success      200 {object} dto.Response{data=listingapp.ListingResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /listings/{id} [put]
func (h *ListingHandler) Update(c *gin.Context) {
	userID, listingID, ok := h.getListingRef(c)
	if !ok {
		return
	}

	var req listingapp.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.listingService.Update(c.Request.Context(), userID, listingID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate godoc
// @Summary      Activate a listing
// @Description  Move a draft or archived listing to the active state
// @Tags         listings
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200 {object} dto.Response{data=listingapp.ListingResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /listings/{id}/activate [post]
func (h *ListingHandler) Activate(c *gin.Context) {
	userID, listingID, ok := h.getListingRef(c)
	if !ok {
		return
	}

	resp, err := h.listingService.Activate(c.Request.Context(), userID, listingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Archive godoc
// @Summary      Archive a listing
// @Tags         listings
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200 {object} dto.Response{data=listingapp.ListingResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /listings/{id}/archive [post]
func (h *ListingHandler) Archive(c *gin.Context) {
	userID, listingID, ok := h.getListingRef(c)
	if !ok {
		return
	}

	resp, err := h.listingService.Archive(c.Request.Context(), userID, listingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @Summary      Delete a listing
// @Tags         listings
// @Param        id path string true "Listing ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /listings/{id} [delete]
func (h *ListingHandler) Delete(c *gin.Context) {
	userID, listingID, ok := h.getListingRef(c)
	if !ok {
		return
	}

	if err := h.listingService.Delete(c.Request.Context(), userID, listingID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
