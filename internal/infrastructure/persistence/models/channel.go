package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/channel"
)

// ---------------------------------------------------------------------------
// ChannelRecordModel
// ---------------------------------------------------------------------------

// ChannelRecordModel is the persistence model for channel.Record.
// The (listing, platform) pair is unique: one listing has at most one
// publication record per marketplace.
type ChannelRecordModel struct {
	BaseModel
	ListingID     uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:uidx_channel_records_listing_platform,priority:1;index"`
	UserID        uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Platform      channel.PlatformCode      `gorm:"type:varchar(20);not null;uniqueIndex:uidx_channel_records_listing_platform,priority:2;index:idx_channel_records_platform_remote,priority:1"`
	RemoteID      string                    `gorm:"type:varchar(100);index:idx_channel_records_platform_remote,priority:2"`
	Status        channel.PublicationStatus `gorm:"type:varchar(20);not null;index"`
	AttemptCount  int                       `gorm:"not null;default:0"`
	LastError     string                    `gorm:"type:text"`
	LastAttemptAt *time.Time
	HistoryJSON   string `gorm:"type:jsonb;column:history"`
}

// TableName returns the table name for GORM
func (ChannelRecordModel) TableName() string {
	return "channel_records"
}

// ToDomain converts the persistence model to a domain Record.
func (m *ChannelRecordModel) ToDomain() *channel.Record {
	r := &channel.Record{
		BaseEntity:    m.BaseModel.ToDomain(),
		ListingID:     m.ListingID,
		UserID:        m.UserID,
		Platform:      m.Platform,
		RemoteID:      m.RemoteID,
		Status:        m.Status,
		AttemptCount:  m.AttemptCount,
		LastError:     m.LastError,
		LastAttemptAt: m.LastAttemptAt,
		History:       make([]channel.AttemptLogEntry, 0),
	}

	if m.HistoryJSON != "" {
		var history []channel.AttemptLogEntry
		if err := json.Unmarshal([]byte(m.HistoryJSON), &history); err == nil {
			r.History = history
		}
	}

	return r
}

// FromDomain populates the persistence model from a domain Record.
func (m *ChannelRecordModel) FromDomain(r *channel.Record) {
	m.BaseModel.FromDomainBaseEntity(r.BaseEntity)
	m.ListingID = r.ListingID
	m.UserID = r.UserID
	m.Platform = r.Platform
	m.RemoteID = r.RemoteID
	m.Status = r.Status
	m.AttemptCount = r.AttemptCount
	m.LastError = r.LastError
	m.LastAttemptAt = r.LastAttemptAt

	if len(r.History) > 0 {
		if b, err := json.Marshal(r.History); err == nil {
			m.HistoryJSON = string(b)
		}
	} else {
		m.HistoryJSON = "[]"
	}
}

// ChannelRecordModelFromDomain creates a new persistence model from a domain Record.
func ChannelRecordModelFromDomain(r *channel.Record) *ChannelRecordModel {
	m := &ChannelRecordModel{}
	m.FromDomain(r)
	return m
}

// ---------------------------------------------------------------------------
// CredentialModel
// ---------------------------------------------------------------------------

// CredentialModel is the persistence model for channel.Credential.
// The (user, platform) pair is unique.
type CredentialModel struct {
	BaseModel
	UserID       uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:uidx_credentials_user_platform,priority:1"`
	Platform     channel.PlatformCode   `gorm:"type:varchar(20);not null;uniqueIndex:uidx_credentials_user_platform,priority:2;index"`
	Kind         channel.CredentialKind `gorm:"type:varchar(20);not null"`
	AccessToken  string                 `gorm:"type:text"`
	RefreshToken string                 `gorm:"type:text"`
	ExpiresAt    *time.Time
	Secret       string `gorm:"type:text"`
	VerifiedAt   *time.Time
	LastPullAt   *time.Time
}

// TableName returns the table name for GORM
func (CredentialModel) TableName() string {
	return "platform_credentials"
}

// ToDomain converts the persistence model to a domain Credential.
func (m *CredentialModel) ToDomain() *channel.Credential {
	return &channel.Credential{
		BaseEntity:   m.BaseModel.ToDomain(),
		UserID:       m.UserID,
		Platform:     m.Platform,
		Kind:         m.Kind,
		AccessToken:  m.AccessToken,
		RefreshToken: m.RefreshToken,
		ExpiresAt:    m.ExpiresAt,
		Secret:       m.Secret,
		VerifiedAt:   m.VerifiedAt,
		LastPullAt:   m.LastPullAt,
	}
}

// FromDomain populates the persistence model from a domain Credential.
func (m *CredentialModel) FromDomain(c *channel.Credential) {
	m.BaseModel.FromDomainBaseEntity(c.BaseEntity)
	m.UserID = c.UserID
	m.Platform = c.Platform
	m.Kind = c.Kind
	m.AccessToken = c.AccessToken
	m.RefreshToken = c.RefreshToken
	m.ExpiresAt = c.ExpiresAt
	m.Secret = c.Secret
	m.VerifiedAt = c.VerifiedAt
	m.LastPullAt = c.LastPullAt
}

// CredentialModelFromDomain creates a new persistence model from a domain Credential.
func CredentialModelFromDomain(c *channel.Credential) *CredentialModel {
	m := &CredentialModel{}
	m.FromDomain(c)
	return m
}

// ---------------------------------------------------------------------------
// SaleModel
// ---------------------------------------------------------------------------

// SaleModel is the persistence model for channel.SaleRecord.
// Synced sales are unique on (platform, native sale id); manual sales carry
// an empty native ID and fall outside the unique index.
type SaleModel struct {
	BaseModel
	ListingID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	UserID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	Platform     channel.PlatformCode `gorm:"type:varchar(20);uniqueIndex:uidx_sales_platform_native,priority:1,where:native_sale_id <> ''"`
	NativeSaleID string               `gorm:"type:varchar(100);uniqueIndex:uidx_sales_platform_native,priority:2,where:native_sale_id <> ''"`
	Price        decimal.Decimal      `gorm:"type:numeric(12,2);not null"`
	Currency     string               `gorm:"type:varchar(3);not null"`
	BuyerRef     string               `gorm:"type:varchar(255)"`
	Origin       channel.SaleOrigin   `gorm:"type:varchar(10);not null"`
	OccurredAt   time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sale_records"
}

// ToDomain converts the persistence model to a domain SaleRecord.
func (m *SaleModel) ToDomain() *channel.SaleRecord {
	return &channel.SaleRecord{
		BaseEntity:   m.BaseModel.ToDomain(),
		ListingID:    m.ListingID,
		UserID:       m.UserID,
		Platform:     m.Platform,
		NativeSaleID: m.NativeSaleID,
		Price:        m.Price,
		Currency:     m.Currency,
		BuyerRef:     m.BuyerRef,
		Origin:       m.Origin,
		OccurredAt:   m.OccurredAt,
	}
}

// FromDomain populates the persistence model from a domain SaleRecord.
func (m *SaleModel) FromDomain(s *channel.SaleRecord) {
	m.BaseModel.FromDomainBaseEntity(s.BaseEntity)
	m.ListingID = s.ListingID
	m.UserID = s.UserID
	m.Platform = s.Platform
	m.NativeSaleID = s.NativeSaleID
	m.Price = s.Price
	m.Currency = s.Currency
	m.BuyerRef = s.BuyerRef
	m.Origin = s.Origin
	m.OccurredAt = s.OccurredAt
}

// SaleModelFromDomain creates a new persistence model from a domain SaleRecord.
func SaleModelFromDomain(s *channel.SaleRecord) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}
