package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	connectionapp "github.com/crosslist/backend/internal/application/connection"
	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/interfaces/http/dto"
)

// ConnectionHandler handles platform connection API endpoints
type ConnectionHandler struct {
	BaseHandler
	connectionService *connectionapp.Service
}

// NewConnectionHandler creates a new ConnectionHandler
func NewConnectionHandler(connectionService *connectionapp.Service) *ConnectionHandler {
	return &ConnectionHandler{
		connectionService: connectionService,
	}
}

// Connect godoc
// @Summary      Connect a platform
// @Description  Store a verified credential for a marketplace platform
// @Tags         connections
// @Accept       json
// @Produce      json
// @Param        request body connectionapp.ConnectRequest true "Connection request"
// @Success      201 {object} dto.Response{data=connectionapp.ConnectionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /connections [post]
func (h *ConnectionHandler) Connect(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req connectionapp.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.connectionService.Connect(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary      List connected platforms
// @Tags         connections
// @Produce      json
// @Success      200 {object} dto.Response{data=connectionapp.ListConnectionsResponse}
// @Security     BearerAuth
// @Router       /connections [get]
func (h *ConnectionHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.connectionService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Disconnect godoc
// @Summary      Disconnect a platform
// @Description  Remove the stored credential; remote listings stay up until delisted
// @Tags         connections
// @Param        platform path string true "Platform code"
// @Success      204
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /connections/{platform} [delete]
func (h *ConnectionHandler) Disconnect(c *gin.Context) {
	userID, platform, ok := h.authAndPlatform(c)
	if !ok {
		return
	}

	if err := h.connectionService.Disconnect(c.Request.Context(), userID, platform); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Test godoc
// @Summary      Test a platform connection
// @Description  Run the credential liveness check, including the single OAuth refresh attempt
// @Tags         connections
// @Produce      json
// @Param        platform path string true "Platform code"
// @Success      200 {object} dto.Response{data=connectionapp.TestResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /connections/{platform}/test [post]
func (h *ConnectionHandler) Test(c *gin.Context) {
	userID, platform, ok := h.authAndPlatform(c)
	if !ok {
		return
	}

	resp, err := h.connectionService.Test(c.Request.Context(), userID, platform)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// authAndPlatform extracts the authenticated user and the platform path param
func (h *ConnectionHandler) authAndPlatform(c *gin.Context) (userID uuid.UUID, platform channel.PlatformCode, ok bool) {
	uid, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	platform = channel.PlatformCode(c.Param("platform"))
	if !platform.IsValid() {
		h.ErrorWithCode(c, dto.ErrCodeInvalidPlatform, "Unknown platform")
		return
	}
	return uid, platform, true
}
