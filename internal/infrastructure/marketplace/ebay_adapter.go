package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/domain/listing"
)

const (
	// maxEbayResponseSize limits the response body size to prevent memory exhaustion
	maxEbayResponseSize = 10 * 1024 * 1024 // 10MB max response
)

// EbayAdapter implements the channel.Adapter port against an eBay
// Sell-Inventory style HTTP JSON API. It is the direct-api family
// representative: every capability is supported.
type EbayAdapter struct {
	config     *EbayConfig
	httpClient *http.Client
}

// NewEbayAdapter creates a new eBay adapter with the given configuration
func NewEbayAdapter(config *EbayConfig) (*EbayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &EbayAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// PlatformCode returns the platform code this adapter handles
func (a *EbayAdapter) PlatformCode() channel.PlatformCode {
	return channel.PlatformEbay
}

// Family returns the adapter family
func (a *EbayAdapter) Family() channel.AdapterFamily {
	return channel.FamilyDirectAPI
}

// Capabilities returns the full capability set
func (a *EbayAdapter) Capabilities() channel.CapabilitySet {
	return channel.NewCapabilitySet(
		channel.CapabilityTestConnection,
		channel.CapabilityPublish,
		channel.CapabilityUpdate,
		channel.CapabilityDelist,
		channel.CapabilityPullSales,
	)
}

// ImageLimits returns eBay's photo constraints
func (a *EbayAdapter) ImageLimits() channel.PlatformImageLimits {
	return channel.PlatformImageLimits{
		MaxBytes:       4 * 1024 * 1024,
		MaxDimensionPx: 1600,
		MaxCount:       12,
		AllowedFormats: []string{"image/jpeg", "image/png"},
		RequiresPhoto:  true,
	}
}

// ViewSpec returns the field mapping used to project listings onto eBay
func (a *EbayAdapter) ViewSpec() channel.ViewSpec {
	return channel.ViewSpec{
		MaxTitleLen:       80,
		MaxDescriptionLen: 4000,
		ConditionLabels: map[listing.Condition]string{
			listing.ConditionNew:      "NEW",
			listing.ConditionLikeNew:  "LIKE_NEW",
			listing.ConditionGood:     "USED_EXCELLENT",
			listing.ConditionFair:     "USED_ACCEPTABLE",
			listing.ConditionForParts: "FOR_PARTS_OR_NOT_WORKING",
		},
		RequiredFields: []string{"title", "price", "currency", "condition", "quantity", "photos"},
	}
}

// ---------------------------------------------------------------------------
// Connection
// ---------------------------------------------------------------------------

// TestConnection checks whether the credential's access token is usable
func (a *EbayAdapter) TestConnection(ctx context.Context, cred *channel.Credential) (channel.ConnectionStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.APIBaseURL+"/sell/account/v1/privilege", nil)
	if err != nil {
		return channel.ConnectionUnreachable, fmt.Errorf("ebay: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return channel.ConnectionUnreachable, nil
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxEbayResponseSize))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return channel.ConnectionUnauthorized, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return channel.ConnectionAlive, nil
	default:
		return channel.ConnectionUnreachable, nil
	}
}

// RefreshCredential exchanges the refresh token for a new access token
// using the OAuth refresh grant
func (a *EbayAdapter) RefreshCredential(ctx context.Context, cred *channel.Credential) (*channel.TokenGrant, error) {
	if !cred.HasRefreshToken() {
		return nil, channel.ErrRefreshUnsupported
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", cred.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.AuthBaseURL+"/identity/v1/oauth2/token",
		bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("ebay: failed to create token request: %w", err)
	}
	req.SetBasicAuth(a.config.ClientID, a.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEbayResponseSize))
	if err != nil {
		return nil, fmt.Errorf("ebay: failed to read token response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		return nil, fmt.Errorf("%w: token refresh rejected (HTTP %d)", channel.ErrPlatformAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", channel.ErrPlatformUnavailable, resp.StatusCode)
	}

	var token ebayTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("ebay: failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response missing access token", channel.ErrPlatformAuthFailed)
	}

	grant := &channel.TokenGrant{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if token.ExpiresIn > 0 {
		expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
		grant.ExpiresAt = &expiresAt
	}
	return grant, nil
}

// ---------------------------------------------------------------------------
// Publish / Update / Delist
// ---------------------------------------------------------------------------

// Publish uploads the prepared photos to eBay's picture host and then
// creates the listing
func (a *EbayAdapter) Publish(ctx context.Context, view *channel.PlatformView, photos []channel.PreparedPhoto, cred *channel.Credential) (channel.PublishResult, error) {
	pictureURLs := make([]string, 0, len(photos))
	for _, photo := range photos {
		pictureURL, result, err := a.uploadPicture(ctx, photo, cred)
		if err != nil {
			return channel.PublishResult{}, err
		}
		if result != nil {
			return *result, nil
		}
		pictureURLs = append(pictureURLs, pictureURL)
	}

	payload := a.buildListingRequest(view, pictureURLs)
	return a.sendListing(ctx, http.MethodPost, "/sell/inventory/v1/listing", payload, cred)
}

// Update replaces the remote listing's content. Photos already uploaded
// during publish stay attached; eBay keeps picture URLs stable.
func (a *EbayAdapter) Update(ctx context.Context, remoteID string, view *channel.PlatformView, cred *channel.Credential) (channel.PublishResult, error) {
	payload := a.buildListingRequest(view, nil)
	result, err := a.sendListing(ctx, http.MethodPut, "/sell/inventory/v1/listing/"+url.PathEscape(remoteID), payload, cred)
	if err != nil {
		return channel.PublishResult{}, err
	}
	// Replace calls return no body; keep the known remote ID
	if result.Kind == channel.PublishOutcomePublished && result.RemoteID == "" {
		result.RemoteID = remoteID
	}
	return result, nil
}

// Delist removes the remote listing. A 404 means the listing is already
// gone, which delisting treats as success.
func (a *EbayAdapter) Delist(ctx context.Context, remoteID string, cred *channel.Credential) (channel.DelistResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		a.config.APIBaseURL+"/sell/inventory/v1/listing/"+url.PathEscape(remoteID), nil)
	if err != nil {
		return channel.DelistResult{}, fmt.Errorf("ebay: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return channel.DelistResult{Kind: channel.DelistOutcomeTransient, Reason: err.Error()}, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxEbayResponseSize))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return channel.DelistResult{Kind: channel.DelistOutcomeDelisted}, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return channel.DelistResult{Kind: channel.DelistOutcomeAlreadyGone}, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return channel.DelistResult{}, fmt.Errorf("%w: HTTP %d", channel.ErrPlatformAuthFailed, resp.StatusCode)
	default:
		return channel.DelistResult{Kind: channel.DelistOutcomeTransient, Reason: errorReason(body, resp.StatusCode)}, nil
	}
}

// PullSales returns orders created since the given time as raw sale events
func (a *EbayAdapter) PullSales(ctx context.Context, cred *channel.Credential, since time.Time) ([]channel.RawSaleEvent, error) {
	query := url.Values{}
	query.Set("filter", fmt.Sprintf("creationdate:[%s..]", since.UTC().Format(time.RFC3339)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.config.APIBaseURL+"/sell/fulfillment/v1/order?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("ebay: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEbayResponseSize))
	if err != nil {
		return nil, fmt.Errorf("ebay: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: HTTP %d", channel.ErrPlatformAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", channel.ErrPlatformUnavailable, resp.StatusCode)
	}

	var orders ebayOrdersResponse
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, fmt.Errorf("ebay: failed to parse order response: %w", err)
	}

	events := make([]channel.RawSaleEvent, 0, len(orders.Orders))
	for _, order := range orders.Orders {
		if len(order.LineItems) == 0 {
			continue
		}
		price, err := decimal.NewFromString(order.PricingSummary.Total.Value)
		if err != nil {
			price = decimal.Zero
		}
		events = append(events, channel.RawSaleEvent{
			NativeSaleID:    order.OrderID,
			RemoteListingID: order.LineItems[0].ListingID,
			Price:           price,
			Currency:        order.PricingSummary.Total.Currency,
			BuyerRef:        order.Buyer.Username,
			OccurredAt:      order.CreationDate,
		})
	}
	return events, nil
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// uploadPicture sends one prepared photo to the picture host. A non-nil
// PublishResult means the upload outcome terminates the whole publish.
func (a *EbayAdapter) uploadPicture(ctx context.Context, photo channel.PreparedPhoto, cred *channel.Credential) (string, *channel.PublishResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.APIBaseURL+"/sell/media/v1/picture", bytes.NewReader(photo.Data))
	if err != nil {
		return "", nil, fmt.Errorf("ebay: failed to create picture request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", photo.MimeType)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		result := channel.TransientPublishFailure(fmt.Sprintf("picture upload: %v", err))
		return "", &result, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEbayResponseSize))
	if err != nil {
		return "", nil, fmt.Errorf("ebay: failed to read picture response: %w", err)
	}

	if result := classifyFailure(resp.StatusCode, body); result != nil {
		return "", result, nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", nil, fmt.Errorf("%w: HTTP %d", channel.ErrPlatformAuthFailed, resp.StatusCode)
	}

	var picture ebayPictureResponse
	if err := json.Unmarshal(body, &picture); err != nil {
		result := channel.TransientPublishFailure("picture upload: malformed response")
		return "", &result, nil
	}
	return picture.ImageURL, nil, nil
}

// buildListingRequest maps a platform view onto the eBay listing payload
func (a *EbayAdapter) buildListingRequest(view *channel.PlatformView, pictureURLs []string) *ebayListingRequest {
	payload := &ebayListingRequest{
		SKU:         view.SKU,
		Title:       view.Title,
		Description: view.Description,
		Condition:   view.Condition,
		Price:       ebayAmount{Value: view.Price, Currency: view.Currency},
		Quantity:    view.Quantity,
		Category:    view.Category,
		Marketplace: a.config.Marketplace,
		PictureURLs: pictureURLs,
	}
	if len(view.Attributes) > 0 {
		payload.Aspects = make(map[string]string, len(view.Attributes))
		for _, attr := range view.Attributes {
			payload.Aspects[attr.Name] = attr.Value
		}
	}
	return payload
}

// sendListing performs a listing create or replace call and classifies
// the response
func (a *EbayAdapter) sendListing(ctx context.Context, method, path string, payload *ebayListingRequest, cred *channel.Credential) (channel.PublishResult, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return channel.PublishResult{}, fmt.Errorf("ebay: failed to marshal listing: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.APIBaseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return channel.PublishResult{}, fmt.Errorf("ebay: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return channel.TransientPublishFailure(err.Error()), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEbayResponseSize))
	if err != nil {
		return channel.PublishResult{}, fmt.Errorf("ebay: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return channel.PublishResult{}, fmt.Errorf("%w: HTTP %d", channel.ErrPlatformAuthFailed, resp.StatusCode)
	}
	if result := classifyFailure(resp.StatusCode, body); result != nil {
		return *result, nil
	}

	var created ebayListingResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &created); err != nil {
			// 2xx with an unparseable body is ambiguous; retrying is safe
			return channel.TransientPublishFailure("malformed listing response"), nil
		}
	}
	return channel.Published(created.ListingID), nil
}

// classifyFailure maps a non-auth HTTP failure onto a publish outcome.
// Returns nil for success status codes. 429 and 5xx are transient; other
// 4xx codes are terminal business rejections.
func classifyFailure(statusCode int, body []byte) *channel.PublishResult {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return nil
	case statusCode == http.StatusTooManyRequests || statusCode >= 500:
		result := channel.TransientPublishFailure(errorReason(body, statusCode))
		return &result
	default:
		result := channel.Rejected(errorReason(body, statusCode))
		return &result
	}
}

// errorReason extracts the platform's message from an error body, falling
// back to the status code
func errorReason(body []byte, statusCode int) string {
	var envelope ebayErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil {
		if reason := envelope.Reason(); reason != "" {
			return reason
		}
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}

// Compile-time interface checks
var (
	_ channel.Adapter             = (*EbayAdapter)(nil)
	_ channel.CredentialRefresher = (*EbayAdapter)(nil)
)
