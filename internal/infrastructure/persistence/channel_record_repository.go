package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/infrastructure/persistence/models"
)

// GormChannelRecordRepository implements channel.RecordRepository using GORM
type GormChannelRecordRepository struct {
	db *gorm.DB
}

// NewGormChannelRecordRepository creates a new GormChannelRecordRepository
func NewGormChannelRecordRepository(db *gorm.DB) *GormChannelRecordRepository {
	return &GormChannelRecordRepository{db: db}
}

// FindByListingAndPlatform finds the record for a (listing, platform) pair
func (r *GormChannelRecordRepository) FindByListingAndPlatform(ctx context.Context, listingID uuid.UUID, platform channel.PlatformCode) (*channel.Record, error) {
	var model models.ChannelRecordModel
	if err := r.db.WithContext(ctx).
		Where("listing_id = ? AND platform = ?", listingID, platform).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, channel.ErrRecordNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByListing finds all records for a listing
func (r *GormChannelRecordRepository) FindByListing(ctx context.Context, listingID uuid.UUID) ([]*channel.Record, error) {
	var recordModels []models.ChannelRecordModel
	if err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("platform ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	return toDomainRecords(recordModels), nil
}

// FindPublishedByListing finds records currently in the published state
func (r *GormChannelRecordRepository) FindPublishedByListing(ctx context.Context, listingID uuid.UUID) ([]*channel.Record, error) {
	var recordModels []models.ChannelRecordModel
	if err := r.db.WithContext(ctx).
		Where("listing_id = ? AND status = ?", listingID, channel.StatusPublished).
		Order("platform ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	return toDomainRecords(recordModels), nil
}

// FindByRemoteID resolves a platform's remote listing ID to a record
func (r *GormChannelRecordRepository) FindByRemoteID(ctx context.Context, platform channel.PlatformCode, remoteID string) (*channel.Record, error) {
	var model models.ChannelRecordModel
	if err := r.db.WithContext(ctx).
		Where("platform = ? AND remote_id = ?", platform, remoteID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, channel.ErrRecordNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a record
func (r *GormChannelRecordRepository) Save(ctx context.Context, record *channel.Record) error {
	model := models.ChannelRecordModelFromDomain(record)
	return r.db.WithContext(ctx).Save(model).Error
}

func toDomainRecords(recordModels []models.ChannelRecordModel) []*channel.Record {
	records := make([]*channel.Record, len(recordModels))
	for i := range recordModels {
		records[i] = recordModels[i].ToDomain()
	}
	return records
}

// Ensure GormChannelRecordRepository implements channel.RecordRepository
var _ channel.RecordRepository = (*GormChannelRecordRepository)(nil)
