package listing

import (
	"context"

	"github.com/google/uuid"
)

// Filter holds optional criteria for listing queries
type Filter struct {
	State    *LifecycleState
	Keyword  string
	Page     int
	PageSize int
}

// Repository is the persistence port for listings
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filter Filter) ([]Listing, error)
	CountByUser(ctx context.Context, userID uuid.UUID, filter Filter) (int64, error)
	Save(ctx context.Context, l *Listing) error
}
