package channel

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// SaleRecord
// ---------------------------------------------------------------------------

// SaleOrigin records how a sale entered the system
type SaleOrigin string

const (
	// SaleOriginSync means the sale was pulled from a platform
	SaleOriginSync SaleOrigin = "sync"
	// SaleOriginManual means the seller reported the sale directly
	SaleOriginManual SaleOrigin = "manual"
)

// IsValid returns true if the origin is a known value
func (o SaleOrigin) IsValid() bool {
	return o == SaleOriginSync || o == SaleOriginManual
}

// SaleRecord is an immutable record of one sale of a listing.
// Records are unique on (platform, native sale id) which is the dedup key
// for repeated pulls of the same remote sale.
type SaleRecord struct {
	shared.BaseEntity
	ListingID uuid.UUID
	UserID    uuid.UUID
	// Platform is where the sale happened; empty for manual off-platform sales
	Platform PlatformCode
	// NativeSaleID is the platform's own identifier; empty for manual sales
	NativeSaleID string
	Price        decimal.Decimal
	Currency     string
	BuyerRef     string
	Origin       SaleOrigin
	OccurredAt   time.Time
}

// NewSyncedSale builds a sale record from a pulled platform event
func NewSyncedSale(listingID, userID uuid.UUID, platform PlatformCode, ev RawSaleEvent) *SaleRecord {
	return &SaleRecord{
		BaseEntity:   shared.NewBaseEntity(),
		ListingID:    listingID,
		UserID:       userID,
		Platform:     platform,
		NativeSaleID: ev.NativeSaleID,
		Price:        ev.Price,
		Currency:     ev.Currency,
		BuyerRef:     ev.BuyerRef,
		Origin:       SaleOriginSync,
		OccurredAt:   ev.OccurredAt,
	}
}

// NewManualSale builds a seller-reported sale record
func NewManualSale(listingID, userID uuid.UUID, platform PlatformCode, price decimal.Decimal, currency string, occurredAt time.Time) *SaleRecord {
	return &SaleRecord{
		BaseEntity: shared.NewBaseEntity(),
		ListingID:  listingID,
		UserID:     userID,
		Platform:   platform,
		Price:      price,
		Currency:   currency,
		Origin:     SaleOriginManual,
		OccurredAt: occurredAt,
	}
}

// DedupKey returns the uniqueness key for synced sales
func (s *SaleRecord) DedupKey() string {
	return string(s.Platform) + ":" + s.NativeSaleID
}
