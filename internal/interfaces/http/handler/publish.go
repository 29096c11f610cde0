package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crosslist/backend/internal/application/publish"
	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/interfaces/http/dto"
)

// PublishHandler handles publication fan-out API endpoints
type PublishHandler struct {
	BaseHandler
	publisher *publish.PublisherService
	registry  channel.Registry
}

// NewPublishHandler creates a new PublishHandler
func NewPublishHandler(publisher *publish.PublisherService, registry channel.Registry) *PublishHandler {
	return &PublishHandler{
		publisher: publisher,
		registry:  registry,
	}
}

// PlatformsRequest selects the platforms a fan-out targets. An empty
// list means every applicable platform.
type PlatformsRequest struct {
	Platforms []string `json:"platforms" binding:"omitempty,dive,oneof=EBAY SHOPIFY CRAIGSLIST"`
}

func (r PlatformsRequest) codes() []channel.PlatformCode {
	if len(r.Platforms) == 0 {
		return nil
	}
	codes := make([]channel.PlatformCode, 0, len(r.Platforms))
	for _, p := range r.Platforms {
		codes = append(codes, channel.PlatformCode(p))
	}
	return codes
}

// ExportArtifactResponse carries a presigned download link for a
// bulk-export artifact
type ExportArtifactResponse struct {
	Platform  channel.PlatformCode `json:"platform"`
	URL       string               `json:"url"`
	ExpiresAt time.Time            `json:"expires_at"`
}

// Publish godoc
// @Summary      Publish a listing
// @Description  Fan a listing out to the selected platforms, or to all connected platforms when none are given
// @Tags         publications
// @Accept       json
// @Produce      json
// @Param        id path string true "Listing ID"
// @Param        request body PlatformsRequest false "Target platforms"
// @Success      200 {object} dto.Response{data=publish.FanoutResult}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /listings/{id}/publish [post]
func (h *PublishHandler) Publish(c *gin.Context) {
	h.fanOut(c, h.publisher.Publish)
}

// Update godoc
// @Summary      Push listing changes
// @Description  Push the current listing content to platforms where it is published
// @Tags         publications
// @Accept       json
// @Produce      json
// @Param        id path string true "Listing ID"
// @Param        request body PlatformsRequest false "Target platforms"
// @Success      200 {object} dto.Response{data=publish.FanoutResult}
// @Security     BearerAuth
// @Router       /listings/{id}/push [post]
func (h *PublishHandler) Update(c *gin.Context) {
	h.fanOut(c, h.publisher.Update)
}

// Delist godoc
// @Summary      Delist a listing
// @Description  Take a listing down from the selected platforms, or from every platform where it is published
// @Tags         publications
// @Accept       json
// @Produce      json
// @Param        id path string true "Listing ID"
// @Param        request body PlatformsRequest false "Target platforms"
// @Success      200 {object} dto.Response{data=publish.FanoutResult}
// @Security     BearerAuth
// @Router       /listings/{id}/delist [post]
func (h *PublishHandler) Delist(c *gin.Context) {
	h.fanOut(c, h.publisher.Delist)
}

// Status godoc
// @Summary      Get publication status
// @Description  Per-platform publication state and attempt history for a listing
// @Tags         publications
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200 {object} dto.Response{data=publish.StatusResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /listings/{id}/publications [get]
func (h *PublishHandler) Status(c *gin.Context) {
	userID, listingID, ok := h.getListingRef(c)
	if !ok {
		return
	}

	resp, err := h.publisher.Status(c.Request.Context(), userID, listingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// artifactProvider is satisfied by bulk-export adapters that materialize
// downloadable artifacts
type artifactProvider interface {
	ArtifactDownloadURL(ctx context.Context, remoteID string) (string, time.Time, error)
}

// postingRenderer is satisfied by template adapters that render posting
// markup for manual submission
type postingRenderer interface {
	RenderedPosting(ctx context.Context, remoteID string) ([]byte, error)
}

// ExportArtifact godoc
// @Summary      Download link for an export artifact
// @Description  Presigned URL for the bulk-export artifact behind a published listing
// @Tags         publications
// @Produce      json
// @Param        id path string true "Listing ID"
// @Param        platform path string true "Platform code"
// @Success      200 {object} dto.Response{data=ExportArtifactResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /listings/{id}/platforms/{platform}/export [get]
func (h *PublishHandler) ExportArtifact(c *gin.Context) {
	remoteID, adapter, ok := h.publishedRemote(c)
	if !ok {
		return
	}

	provider, ok := adapter.(artifactProvider)
	if !ok {
		h.ErrorWithCode(c, dto.ErrCodeCapabilityMissing, "Platform does not produce export artifacts")
		return
	}

	url, expiresAt, err := provider.ArtifactDownloadURL(c.Request.Context(), remoteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ExportArtifactResponse{
		Platform:  adapter.PlatformCode(),
		URL:       url,
		ExpiresAt: expiresAt,
	})
}

// Posting godoc
// @Summary      Rendered posting markup
// @Description  The rendered posting body behind a template-family publication
// @Tags         publications
// @Produce      html
// @Param        id path string true "Listing ID"
// @Param        platform path string true "Platform code"
// @Success      200 {string} string "Rendered posting"
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /listings/{id}/platforms/{platform}/posting [get]
func (h *PublishHandler) Posting(c *gin.Context) {
	remoteID, adapter, ok := h.publishedRemote(c)
	if !ok {
		return
	}

	renderer, ok := adapter.(postingRenderer)
	if !ok {
		h.ErrorWithCode(c, dto.ErrCodeCapabilityMissing, "Platform does not render postings")
		return
	}

	markup, err := renderer.RenderedPosting(c.Request.Context(), remoteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", markup)
}

// publishedRemote resolves the remote ID of a published (listing, platform)
// pair along with the platform's adapter
func (h *PublishHandler) publishedRemote(c *gin.Context) (string, channel.Adapter, bool) {
	userID, listingID, ok := h.getListingRef(c)
	if !ok {
		return "", nil, false
	}

	platform := channel.PlatformCode(c.Param("platform"))
	adapter, err := h.registry.Get(platform)
	if err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInvalidPlatform, "Unknown platform")
		return "", nil, false
	}

	status, err := h.publisher.Status(c.Request.Context(), userID, listingID)
	if err != nil {
		h.HandleError(c, err)
		return "", nil, false
	}
	for _, record := range status.Records {
		if record.Platform == platform && record.Status == channel.StatusPublished {
			return record.RemoteID, adapter, true
		}
	}

	h.NotFound(c, "Listing is not published on this platform")
	return "", nil, false
}

// fanOut binds the platform selection and runs one fan-out operation
func (h *PublishHandler) fanOut(c *gin.Context, op func(ctx context.Context, userID, listingID uuid.UUID, platforms []channel.PlatformCode) (*publish.FanoutResult, error)) {
	userID, listingID, ok := h.getListingRef(c)
	if !ok {
		return
	}

	var req PlatformsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	result, err := op(c.Request.Context(), userID, listingID, req.codes())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
