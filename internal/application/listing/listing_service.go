package listing

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/shared"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service handles listing lifecycle operations. The canonical listing is
// the single source of truth for every platform representation, so all
// mutations go through here.
type Service struct {
	repo listing.Repository
}

// NewService creates a new listing service
func NewService(repo listing.Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new draft listing owned by the given user
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req CreateListingRequest) (*ListingResponse, error) {
	l, err := listing.NewListing(userID, req.Title, req.Price, req.Currency)
	if err != nil {
		return nil, err
	}

	l.Description = req.Description
	l.SKU = req.SKU
	l.Category = req.Category
	l.StorageLocation = req.StorageLocation

	if req.Condition != "" {
		condition := listing.Condition(req.Condition)
		if !condition.IsValid() {
			return nil, shared.NewDomainError("INVALID_CONDITION", "Condition is not a known value")
		}
		l.Condition = condition
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
		}
		l.Quantity = *req.Quantity
	}
	if req.Attributes != nil {
		l.Attributes = req.Attributes
	}
	if req.Photos != nil {
		l.Photos = req.Photos
	}

	if err := s.repo.Save(ctx, l); err != nil {
		return nil, err
	}
	return toListingResponse(l), nil
}

// Get returns one listing owned by the user
func (s *Service) Get(ctx context.Context, userID, listingID uuid.UUID) (*ListingResponse, error) {
	l, err := s.findOwned(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}
	return toListingResponse(l), nil
}

// List returns the user's listings matching the filter
func (s *Service) List(ctx context.Context, userID uuid.UUID, req ListListingsRequest) (*ListListingsResponse, error) {
	filter := listing.Filter{
		Keyword:  req.Keyword,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	if req.State != "" {
		state := listing.LifecycleState(req.State)
		if !state.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATE_FILTER", "Unknown lifecycle state")
		}
		filter.State = &state
	}

	items, err := s.repo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	resp := &ListListingsResponse{
		Items:    make([]ListingResponse, 0, len(items)),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	for i := range items {
		resp.Items = append(resp.Items, *toListingResponse(&items[i]))
	}
	return resp, nil
}

// Update applies a partial edit to a listing
func (s *Service) Update(ctx context.Context, userID, listingID uuid.UUID, req UpdateListingRequest) (*ListingResponse, error) {
	l, err := s.findOwned(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		l.Title = *req.Title
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.Price != nil {
		l.Price = *req.Price
	}
	if req.Currency != nil {
		l.Currency = *req.Currency
	}
	if req.Condition != nil {
		condition := listing.Condition(*req.Condition)
		if !condition.IsValid() {
			return nil, shared.NewDomainError("INVALID_CONDITION", "Condition is not a known value")
		}
		l.Condition = condition
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
		}
		l.Quantity = *req.Quantity
	}
	if req.SKU != nil {
		l.SKU = *req.SKU
	}
	if req.Category != nil {
		l.Category = *req.Category
	}
	if req.Attributes != nil {
		l.Attributes = *req.Attributes
	}
	if req.Photos != nil {
		l.Photos = *req.Photos
	}
	if req.StorageLocation != nil {
		l.StorageLocation = *req.StorageLocation
	}
	l.Touch()

	if err := s.repo.Save(ctx, l); err != nil {
		return nil, err
	}
	return toListingResponse(l), nil
}

// Activate transitions a draft listing to active, making it eligible
// for publication
func (s *Service) Activate(ctx context.Context, userID, listingID uuid.UUID) (*ListingResponse, error) {
	l, err := s.findOwned(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}
	if err := l.Activate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, l); err != nil {
		return nil, err
	}
	return toListingResponse(l), nil
}

// Archive retires an active or sold listing
func (s *Service) Archive(ctx context.Context, userID, listingID uuid.UUID) (*ListingResponse, error) {
	l, err := s.findOwned(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}
	if err := l.Archive(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, l); err != nil {
		return nil, err
	}
	return toListingResponse(l), nil
}

// Delete soft-deletes a listing
func (s *Service) Delete(ctx context.Context, userID, listingID uuid.UUID) error {
	l, err := s.findOwned(ctx, userID, listingID)
	if err != nil {
		return err
	}
	l.SoftDelete()
	return s.repo.Save(ctx, l)
}

// findOwned loads a listing and enforces ownership. A foreign listing is
// reported as not found so listing IDs cannot be probed across sellers.
func (s *Service) findOwned(ctx context.Context, userID, listingID uuid.UUID) (*listing.Listing, error) {
	l, err := s.repo.FindByID(ctx, listingID)
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
