package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/infrastructure/persistence/models"
)

// GormListingRepository implements listing.Repository using GORM
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// FindByID finds a listing by its ID. Soft-deleted listings are excluded.
func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	var model models.ListingModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, listing.ErrListingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser finds a user's listings matching the filter
func (r *GormListingRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter listing.Filter) ([]*listing.Listing, error) {
	var listingModels []models.ListingModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Where("user_id = ? AND deleted_at IS NULL", userID),
		filter,
	)
	if err := query.Find(&listingModels).Error; err != nil {
		return nil, err
	}

	listings := make([]*listing.Listing, len(listingModels))
	for i := range listingModels {
		listings[i] = listingModels[i].ToDomain()
	}
	return listings, nil
}

// CountByUser counts a user's listings matching the filter
func (r *GormListingRepository) CountByUser(ctx context.Context, userID uuid.UUID, filter listing.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.ListingModel{}).Where("user_id = ? AND deleted_at IS NULL", userID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a listing
func (r *GormListingRepository) Save(ctx context.Context, l *listing.Listing) error {
	model := models.ListingModelFromDomain(l)
	return r.db.WithContext(ctx).Save(model).Error
}

// applyFilter applies filter options including pagination
func (r *GormListingRepository) applyFilter(query *gorm.DB, filter listing.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	return query.Order("created_at DESC")
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormListingRepository) applyFilterWithoutPagination(query *gorm.DB, filter listing.Filter) *gorm.DB {
	if filter.State != nil && filter.State.IsValid() {
		query = query.Where("state = ?", *filter.State)
	}
	if filter.Keyword != "" {
		pattern := "%" + escapeLikePattern(filter.Keyword) + "%"
		query = query.Where("title ILIKE ? OR sku ILIKE ?", pattern, pattern)
	}
	return query
}

// Ensure GormListingRepository implements listing.Repository
var _ listing.Repository = (*GormListingRepository)(nil)

// escapeLikePattern escapes special characters in LIKE patterns
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
