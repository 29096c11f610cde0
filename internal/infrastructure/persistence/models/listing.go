package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/listing"
)

// ListingModel is the persistence model for the Listing domain entity.
// Attributes and photos are stored as JSON so the canonical listing stays
// one row regardless of how many platforms consume it.
type ListingModel struct {
	BaseModel
	UserID          uuid.UUID              `gorm:"type:uuid;not null;index:idx_listings_user,priority:1"`
	Title           string                 `gorm:"type:varchar(255);not null"`
	Description     string                 `gorm:"type:text"`
	Price           decimal.Decimal        `gorm:"type:numeric(12,2);not null"`
	Currency        string                 `gorm:"type:varchar(3);not null"`
	Condition       listing.Condition      `gorm:"type:varchar(20);not null"`
	Quantity        int                    `gorm:"not null;default:1"`
	SKU             string                 `gorm:"type:varchar(100)"`
	Category        string                 `gorm:"type:varchar(100)"`
	AttributesJSON  string                 `gorm:"type:jsonb;column:attributes"`
	PhotosJSON      string                 `gorm:"type:jsonb;column:photos"`
	StorageLocation string                 `gorm:"type:varchar(255)"`
	State           listing.LifecycleState `gorm:"type:varchar(20);not null;index"`
	DeletedAt       *time.Time             `gorm:"index"`
}

// TableName returns the table name for GORM
func (ListingModel) TableName() string {
	return "listings"
}

// ToDomain converts the persistence model to a domain Listing entity.
func (m *ListingModel) ToDomain() *listing.Listing {
	l := &listing.Listing{
		BaseEntity:      m.BaseModel.ToDomain(),
		UserID:          m.UserID,
		Title:           m.Title,
		Description:     m.Description,
		Price:           m.Price,
		Currency:        m.Currency,
		Condition:       m.Condition,
		Quantity:        m.Quantity,
		SKU:             m.SKU,
		Category:        m.Category,
		Attributes:      make(map[string]string),
		Photos:          make([]string, 0),
		StorageLocation: m.StorageLocation,
		State:           m.State,
		DeletedAt:       m.DeletedAt,
	}
	if m.AttributesJSON != "" {
		var attrs map[string]string
		if err := json.Unmarshal([]byte(m.AttributesJSON), &attrs); err == nil {
			l.Attributes = attrs
		}
	}
	if m.PhotosJSON != "" {
		var photos []string
		if err := json.Unmarshal([]byte(m.PhotosJSON), &photos); err == nil {
			l.Photos = photos
		}
	}

	return l
}

// FromDomain populates the persistence model from a domain Listing entity.
func (m *ListingModel) FromDomain(l *listing.Listing) {
	m.BaseModel.FromDomainBaseEntity(l.BaseEntity)
	m.UserID = l.UserID
	m.Title = l.Title
	m.Description = l.Description
	m.Price = l.Price
	m.Currency = l.Currency
	m.Condition = l.Condition
	m.Quantity = l.Quantity
	m.SKU = l.SKU
	m.Category = l.Category
	m.StorageLocation = l.StorageLocation
	m.State = l.State
	m.DeletedAt = l.DeletedAt

	if len(l.Attributes) > 0 {
		if b, err := json.Marshal(l.Attributes); err == nil {
			m.AttributesJSON = string(b)
		}
	} else {
		m.AttributesJSON = "{}"
	}
	if len(l.Photos) > 0 {
		if b, err := json.Marshal(l.Photos); err == nil {
			m.PhotosJSON = string(b)
		}
	} else {
		m.PhotosJSON = "[]"
	}
}

// ListingModelFromDomain creates a new persistence model from a domain Listing.
func ListingModelFromDomain(l *listing.Listing) *ListingModel {
	m := &ListingModel{}
	m.FromDomain(l)
	return m
}
