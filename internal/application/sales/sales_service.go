package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/application/publish"
	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/shared"
)

// RecordManualSale records a sale the seller reports directly, marks the
// listing sold and delists it everywhere else. The reporting platform, if
// any, is spared from the fan-out.
func (s *Service) RecordManualSale(ctx context.Context, userID, listingID uuid.UUID, req ManualSaleRequest) (*ManualSaleResponse, error) {
	l, err := s.findOwned(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || !price.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price must be a positive decimal number")
	}

	platform := channel.PlatformCode(req.Platform)
	if req.Platform != "" && !platform.IsValid() {
		return nil, shared.NewDomainError("INVALID_PLATFORM", fmt.Sprintf("Unknown platform %q", req.Platform))
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	// A sale on an already-sold listing is still recorded; only the first
	// sale transitions the listing and triggers the delist fan-out
	soldNow := true
	if err := l.MarkSold(); err != nil {
		if !errors.Is(err, listing.ErrAlreadySold) {
			return nil, err
		}
		soldNow = false
	}
	if soldNow {
		if err := s.listings.Save(ctx, l); err != nil {
			return nil, fmt.Errorf("persist sold listing: %w", err)
		}
	}

	sale := channel.NewManualSale(l.ID, userID, platform, price, req.Currency, occurredAt)
	if err := s.sales.Save(ctx, sale); err != nil {
		return nil, fmt.Errorf("persist sale: %w", err)
	}

	var fanout *publish.FanoutResult
	if soldNow {
		fanout = s.delister.DelistForSale(ctx, l, platform)
	}

	return &ManualSaleResponse{
		Sale:   toSaleResponse(sale),
		Fanout: fanout,
	}, nil
}

// ListSales returns a user's sale history within an optional time window
func (s *Service) ListSales(ctx context.Context, userID uuid.UUID, req ListSalesRequest) (*ListSalesResponse, error) {
	from := time.Time{}
	if req.From != nil {
		from = *req.From
	}
	to := time.Now()
	if req.To != nil {
		to = *req.To
	}

	records, err := s.sales.FindByUser(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	resp := &ListSalesResponse{
		Items: make([]SaleResponse, 0, len(records)),
		Total: len(records),
	}
	for _, sale := range records {
		resp.Items = append(resp.Items, toSaleResponse(sale))
	}
	return resp, nil
}

// ListListingSales returns every sale recorded for one listing
func (s *Service) ListListingSales(ctx context.Context, userID, listingID uuid.UUID) (*ListSalesResponse, error) {
	if _, err := s.findOwned(ctx, userID, listingID); err != nil {
		return nil, err
	}

	records, err := s.sales.FindByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	resp := &ListSalesResponse{
		Items: make([]SaleResponse, 0, len(records)),
		Total: len(records),
	}
	for _, sale := range records {
		resp.Items = append(resp.Items, toSaleResponse(sale))
	}
	return resp, nil
}

// findOwned loads a listing and enforces ownership
func (s *Service) findOwned(ctx context.Context, userID, listingID uuid.UUID) (*listing.Listing, error) {
	l, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, listing.ErrListingNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if l.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return l, nil
}
