package channel

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecordRepository persists per-platform publication records
type RecordRepository interface {
	// FindByListingAndPlatform returns the record for a (listing, platform)
	// pair, or ErrRecordNotFound
	FindByListingAndPlatform(ctx context.Context, listingID uuid.UUID, platform PlatformCode) (*Record, error)

	// FindByListing returns all records for a listing
	FindByListing(ctx context.Context, listingID uuid.UUID) ([]*Record, error)

	// FindPublishedByListing returns records currently in the published state
	FindPublishedByListing(ctx context.Context, listingID uuid.UUID) ([]*Record, error)

	// FindByRemoteID resolves a platform's remote listing ID to a record
	FindByRemoteID(ctx context.Context, platform PlatformCode, remoteID string) (*Record, error)

	// Save inserts or updates a record
	Save(ctx context.Context, record *Record) error
}

// CredentialRepository persists platform credentials
type CredentialRepository interface {
	// FindByUserAndPlatform returns the credential for a (user, platform)
	// pair, or ErrCredentialNotFound
	FindByUserAndPlatform(ctx context.Context, userID uuid.UUID, platform PlatformCode) (*Credential, error)

	// FindByUser returns all credentials of a user
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Credential, error)

	// FindAllByPlatform returns every stored credential for a platform,
	// used by the sales sync sweep
	FindAllByPlatform(ctx context.Context, platform PlatformCode) ([]*Credential, error)

	// Save inserts or updates a credential
	Save(ctx context.Context, cred *Credential) error

	// Delete removes a credential, disconnecting the platform
	Delete(ctx context.Context, userID uuid.UUID, platform PlatformCode) error
}

// SaleRepository persists sale records
type SaleRepository interface {
	// FindByNativeID returns the sale with the given platform-native ID,
	// or ErrSaleNotFound
	FindByNativeID(ctx context.Context, platform PlatformCode, nativeSaleID string) (*SaleRecord, error)

	// FindByListing returns all sales of a listing
	FindByListing(ctx context.Context, listingID uuid.UUID) ([]*SaleRecord, error)

	// FindByUser returns sales for a user within a time window
	FindByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*SaleRecord, error)

	// Save inserts a sale record. Returns ErrSaleAlreadyRecorded when the
	// (platform, native sale id) pair already exists.
	Save(ctx context.Context, sale *SaleRecord) error
}
