package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/application/publish"
	"github.com/crosslist/backend/internal/domain/channel"
)

// Report summarizes one sync pass over a (user, platform) pair
type Report struct {
	Platform channel.PlatformCode `json:"platform"`
	// PulledEvents is the number of raw events the platform returned
	PulledEvents int `json:"pulled_events"`
	// NewSales counts events that produced a new sale record
	NewSales int `json:"new_sales"`
	// DuplicateSales counts events already recorded in an earlier pull
	DuplicateSales int `json:"duplicate_sales"`
	// UnmatchedEvents counts events whose remote listing is unknown
	UnmatchedEvents int `json:"unmatched_events"`
	// DelistsSent counts successful delists triggered by new sales
	DelistsSent int `json:"delists_sent"`
	// DelistFailures counts delist fan-out targets that did not succeed
	DelistFailures int `json:"delist_failures"`
}

// ManualSaleRequest reports an off-platform or platform sale directly
type ManualSaleRequest struct {
	// Platform is where the sale happened; empty for an off-platform sale
	Platform string `json:"platform" binding:"omitempty,oneof=EBAY SHOPIFY CRAIGSLIST"`
	Price    string `json:"price" binding:"required"`
	Currency string `json:"currency" binding:"required,len=3"`
	// OccurredAt defaults to now when omitted
	OccurredAt *time.Time `json:"occurred_at"`
}

// ManualSaleResponse is the result of reporting a sale manually
type ManualSaleResponse struct {
	Sale   SaleResponse          `json:"sale"`
	Fanout *publish.FanoutResult `json:"fanout"`
}

// SaleResponse is the API representation of a sale record
type SaleResponse struct {
	ID           uuid.UUID            `json:"id"`
	ListingID    uuid.UUID            `json:"listing_id"`
	Platform     channel.PlatformCode `json:"platform,omitempty"`
	NativeSaleID string               `json:"native_sale_id,omitempty"`
	Price        decimal.Decimal      `json:"price"`
	Currency     string               `json:"currency"`
	BuyerRef     string               `json:"buyer_ref,omitempty"`
	Origin       channel.SaleOrigin   `json:"origin"`
	OccurredAt   time.Time            `json:"occurred_at"`
}

// ListSalesRequest filters a user's sale history
type ListSalesRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ListSalesResponse is a page of sale records
type ListSalesResponse struct {
	Items []SaleResponse `json:"items"`
	Total int            `json:"total"`
}

// toSaleResponse maps a domain sale record onto the API representation
func toSaleResponse(s *channel.SaleRecord) SaleResponse {
	return SaleResponse{
		ID:           s.ID,
		ListingID:    s.ListingID,
		Platform:     s.Platform,
		NativeSaleID: s.NativeSaleID,
		Price:        s.Price,
		Currency:     s.Currency,
		BuyerRef:     s.BuyerRef,
		Origin:       s.Origin,
		OccurredAt:   s.OccurredAt,
	}
}
