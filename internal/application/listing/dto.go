package listing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/listing"
)

// CreateListingRequest represents a request to create a new listing
type CreateListingRequest struct {
	Title           string            `json:"title" binding:"required,min=1,max=500"`
	Description     string            `json:"description" binding:"max=10000"`
	Price           decimal.Decimal   `json:"price" binding:"required"`
	Currency        string            `json:"currency" binding:"required,len=3"`
	Condition       string            `json:"condition"`
	Quantity        *int              `json:"quantity"`
	SKU             string            `json:"sku" binding:"max=100"`
	Category        string            `json:"category" binding:"max=200"`
	Attributes      map[string]string `json:"attributes"`
	Photos          []string          `json:"photos"`
	StorageLocation string            `json:"storage_location" binding:"max=200"`
}

// UpdateListingRequest represents a request to update a listing.
// Nil fields are left unchanged.
type UpdateListingRequest struct {
	Title           *string            `json:"title" binding:"omitempty,min=1,max=500"`
	Description     *string            `json:"description" binding:"omitempty,max=10000"`
	Price           *decimal.Decimal   `json:"price"`
	Currency        *string            `json:"currency" binding:"omitempty,len=3"`
	Condition       *string            `json:"condition"`
	Quantity        *int               `json:"quantity"`
	SKU             *string            `json:"sku" binding:"omitempty,max=100"`
	Category        *string            `json:"category" binding:"omitempty,max=200"`
	Attributes      *map[string]string `json:"attributes"`
	Photos          *[]string          `json:"photos"`
	StorageLocation *string            `json:"storage_location" binding:"omitempty,max=200"`
}

// ListListingsRequest represents a filtered listing query
type ListListingsRequest struct {
	State    string `form:"state"`
	Keyword  string `form:"keyword"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ListingResponse represents a listing in API responses
type ListingResponse struct {
	ID              uuid.UUID                `json:"id"`
	Title           string                   `json:"title"`
	Description     string                   `json:"description"`
	Price           decimal.Decimal          `json:"price"`
	Currency        string                   `json:"currency"`
	Condition       string                   `json:"condition"`
	Quantity        int                      `json:"quantity"`
	SKU             string                   `json:"sku"`
	Category        string                   `json:"category"`
	Attributes      map[string]string        `json:"attributes"`
	Photos          []string                 `json:"photos"`
	StorageLocation string                   `json:"storage_location"`
	State           string                   `json:"state"`
	Violations      []listing.FieldViolation `json:"violations,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// ListListingsResponse is a paginated listing collection
type ListListingsResponse struct {
	Items    []ListingResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// toListingResponse maps a domain listing onto the API shape
func toListingResponse(l *listing.Listing) *ListingResponse {
	return &ListingResponse{
		ID:              l.ID,
		Title:           l.Title,
		Description:     l.Description,
		Price:           l.Price,
		Currency:        l.Currency,
		Condition:       l.Condition.String(),
		Quantity:        l.Quantity,
		SKU:             l.SKU,
		Category:        l.Category,
		Attributes:      l.Attributes,
		Photos:          l.Photos,
		StorageLocation: l.StorageLocation,
		State:           l.State.String(),
		Violations:      l.Validate(),
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}
