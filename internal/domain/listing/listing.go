package listing

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/shared"
)

var (
	ErrListingNotFound   = errors.New("listing: not found")
	ErrListingDeleted    = errors.New("listing: listing has been deleted")
	ErrInvalidOwner      = errors.New("listing: invalid owner ID")
	ErrInvalidTransition = errors.New("listing: invalid lifecycle transition")
	ErrAlreadySold       = errors.New("listing: listing is already sold")
)

// ---------------------------------------------------------------------------
// Condition
// ---------------------------------------------------------------------------

// Condition describes the physical condition of the item for sale
type Condition string

const (
	ConditionNew      Condition = "new"
	ConditionLikeNew  Condition = "like-new"
	ConditionGood     Condition = "good"
	ConditionFair     Condition = "fair"
	ConditionForParts Condition = "for-parts"
)

// IsValid returns true if the condition is one of the known values
func (c Condition) IsValid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionForParts:
		return true
	default:
		return false
	}
}

// String returns the string representation of Condition
func (c Condition) String() string {
	return string(c)
}

// ---------------------------------------------------------------------------
// LifecycleState
// ---------------------------------------------------------------------------

// LifecycleState is the overall lifecycle state of a listing,
// independent of any per-platform publication status.
type LifecycleState string

const (
	// StateDraft is a listing still being edited, never published anywhere
	StateDraft LifecycleState = "draft"
	// StateActive is a listing eligible for publication
	StateActive LifecycleState = "active"
	// StateSold is a listing sold on at least one platform
	StateSold LifecycleState = "sold"
	// StateArchived is a listing retired by the seller
	StateArchived LifecycleState = "archived"
)

// IsValid returns true if the state is one of the known values
func (s LifecycleState) IsValid() bool {
	switch s {
	case StateDraft, StateActive, StateSold, StateArchived:
		return true
	default:
		return false
	}
}

// String returns the string representation of LifecycleState
func (s LifecycleState) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Listing
// ---------------------------------------------------------------------------

// Listing is the canonical, platform-agnostic description of one physical
// item for sale. It is the single source of truth for every platform-specific
// representation derived from it.
type Listing struct {
	shared.BaseEntity
	UserID      uuid.UUID
	Title       string
	Description string
	Price       decimal.Decimal
	// Currency is the ISO-4217 currency code of Price
	Currency  string
	Condition Condition
	Quantity  int
	SKU       string
	Category  string
	// Attributes holds free-form item attributes (brand, size, color, ...)
	Attributes map[string]string
	// Photos is the ordered list of object-storage keys; the first entry is
	// the primary photo
	Photos []string
	// StorageLocation is a free-form hint for where the physical item is kept
	StorageLocation string
	State           LifecycleState
	DeletedAt       *time.Time
}

// NewListing creates a new draft listing owned by the given user
func NewListing(userID uuid.UUID, title string, price decimal.Decimal, currency string) (*Listing, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidOwner
	}
	return &Listing{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Title:      title,
		Price:      price,
		Currency:   currency,
		Condition:  ConditionGood,
		Quantity:   1,
		Attributes: make(map[string]string),
		Photos:     make([]string, 0),
		State:      StateDraft,
	}, nil
}

// FieldViolation describes a single field-level validation failure.
// Violations are data, not errors: some platforms tolerate fields that
// others require, so the caller decides which violations block a publish.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate returns the set of field-level violations for this listing.
// An empty slice means the listing is fully valid for every platform.
func (l *Listing) Validate() []FieldViolation {
	violations := make([]FieldViolation, 0)

	if l.Title == "" {
		violations = append(violations, FieldViolation{Field: "title", Message: "title is required"})
	}
	if !l.Price.IsPositive() {
		violations = append(violations, FieldViolation{Field: "price", Message: "price must be positive"})
	}
	if len(l.Currency) != 3 {
		violations = append(violations, FieldViolation{Field: "currency", Message: "currency must be an ISO-4217 code"})
	}
	if !l.Condition.IsValid() {
		violations = append(violations, FieldViolation{Field: "condition", Message: "condition is not a known value"})
	}
	if l.Quantity < 1 {
		violations = append(violations, FieldViolation{Field: "quantity", Message: "quantity must be at least 1"})
	}
	if len(l.Photos) == 0 {
		violations = append(violations, FieldViolation{Field: "photos", Message: "at least one photo is required"})
	}

	return violations
}

// IsDeleted returns true if the listing has been soft-deleted
func (l *Listing) IsDeleted() bool {
	return l.DeletedAt != nil
}

// Activate transitions a draft listing to active
func (l *Listing) Activate() error {
	if l.State != StateDraft {
		return ErrInvalidTransition
	}
	l.State = StateActive
	l.Touch()
	return nil
}

// MarkSold transitions an active listing to sold.
// Returns ErrAlreadySold when the listing is already sold so callers can
// distinguish a duplicate sale event from an invalid transition.
func (l *Listing) MarkSold() error {
	switch l.State {
	case StateSold:
		return ErrAlreadySold
	case StateActive:
		l.State = StateSold
		l.Touch()
		return nil
	default:
		return ErrInvalidTransition
	}
}

// Archive retires an active or sold listing
func (l *Listing) Archive() error {
	if l.State != StateActive && l.State != StateSold {
		return ErrInvalidTransition
	}
	l.State = StateArchived
	l.Touch()
	return nil
}

// SoftDelete marks the listing as deleted without removing it
func (l *Listing) SoftDelete() {
	if l.DeletedAt != nil {
		return
	}
	now := time.Now()
	l.DeletedAt = &now
	l.Touch()
}

// PrimaryPhoto returns the first photo reference, or "" when there are none
func (l *Listing) PrimaryPhoto() string {
	if len(l.Photos) == 0 {
		return ""
	}
	return l.Photos[0]
}
