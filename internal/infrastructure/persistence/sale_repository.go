package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/infrastructure/persistence/models"
)

// GormSaleRepository implements channel.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByNativeID finds the sale with the given platform-native ID
func (r *GormSaleRepository) FindByNativeID(ctx context.Context, platform channel.PlatformCode, nativeSaleID string) (*channel.SaleRecord, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Where("platform = ? AND native_sale_id = ?", platform, nativeSaleID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, channel.ErrSaleNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByListing finds all sales of a listing
func (r *GormSaleRepository) FindByListing(ctx context.Context, listingID uuid.UUID) ([]*channel.SaleRecord, error) {
	var saleModels []models.SaleModel
	if err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("occurred_at DESC").
		Find(&saleModels).Error; err != nil {
		return nil, err
	}
	return toDomainSales(saleModels), nil
}

// FindByUser finds sales for a user within a time window
func (r *GormSaleRepository) FindByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*channel.SaleRecord, error) {
	var saleModels []models.SaleModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND occurred_at >= ? AND occurred_at < ?", userID, from, to).
		Order("occurred_at DESC").
		Find(&saleModels).Error; err != nil {
		return nil, err
	}
	return toDomainSales(saleModels), nil
}

// Save inserts a sale record. The unique (platform, native sale id) index is
// the last line of defense against double-recording a synced sale.
func (r *GormSaleRepository) Save(ctx context.Context, sale *channel.SaleRecord) error {
	model := models.SaleModelFromDomain(sale)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return channel.ErrSaleAlreadyRecorded
		}
		return err
	}
	return nil
}

func toDomainSales(saleModels []models.SaleModel) []*channel.SaleRecord {
	sales := make([]*channel.SaleRecord, len(saleModels))
	for i := range saleModels {
		sales[i] = saleModels[i].ToDomain()
	}
	return sales
}

// isUniqueViolation detects unique constraint errors from drivers that gorm
// does not translate
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

// Ensure GormSaleRepository implements channel.SaleRepository
var _ channel.SaleRepository = (*GormSaleRepository)(nil)
