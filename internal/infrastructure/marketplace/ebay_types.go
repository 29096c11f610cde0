package marketplace

import (
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Request payloads
// ---------------------------------------------------------------------------

// ebayAmount is a money value in eBay's wire format
type ebayAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// ebayListingRequest is the payload for creating or replacing a listing
type ebayListingRequest struct {
	SKU         string            `json:"sku,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Condition   string            `json:"condition"`
	Price       ebayAmount        `json:"price"`
	Quantity    int               `json:"availableQuantity"`
	Category    string            `json:"categoryId,omitempty"`
	Marketplace string            `json:"marketplaceId"`
	Aspects     map[string]string `json:"aspects,omitempty"`
	PictureURLs []string          `json:"pictureUrls,omitempty"`
}

// ---------------------------------------------------------------------------
// Response payloads
// ---------------------------------------------------------------------------

// ebayListingResponse is returned by listing create/replace calls
type ebayListingResponse struct {
	ListingID string `json:"listingId"`
}

// ebayPictureResponse is returned by the picture upload endpoint
type ebayPictureResponse struct {
	ImageURL string `json:"imageUrl"`
}

// ebayError is one entry in an eBay error response body
type ebayError struct {
	ErrorID  int    `json:"errorId"`
	Category string `json:"category"`
	Message  string `json:"message"`
	LongMsg  string `json:"longMessage"`
}

// ebayErrorResponse is the standard eBay error envelope
type ebayErrorResponse struct {
	Errors []ebayError `json:"errors"`
}

// Reason flattens the error list into a single human-readable string
func (r ebayErrorResponse) Reason() string {
	if len(r.Errors) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if e.LongMsg != "" {
			msgs = append(msgs, e.LongMsg)
		} else if e.Message != "" {
			msgs = append(msgs, e.Message)
		}
	}
	return strings.Join(msgs, "; ")
}

// ebayTokenResponse is returned by the OAuth token endpoint
type ebayTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// ebayOrderBuyer identifies the purchaser on an order
type ebayOrderBuyer struct {
	Username string `json:"username"`
}

// ebayLineItem is one purchased item on an order
type ebayLineItem struct {
	ListingID string `json:"legacyItemId"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
}

// ebayPricingSummary carries the order totals
type ebayPricingSummary struct {
	Total ebayAmount `json:"total"`
}

// ebayOrder is one order returned by the fulfillment search
type ebayOrder struct {
	OrderID        string              `json:"orderId"`
	CreationDate   time.Time           `json:"creationDate"`
	Buyer          ebayOrderBuyer      `json:"buyer"`
	LineItems      []ebayLineItem      `json:"lineItems"`
	PricingSummary ebayPricingSummary `json:"pricingSummary"`
}

// ebayOrdersResponse is the fulfillment order search envelope
type ebayOrdersResponse struct {
	Orders []ebayOrder `json:"orders"`
	Total  int         `json:"total"`
}
