package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity provides identity and timestamps common to all entities.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity creates a new base entity with a generated ID.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the entity's UpdatedAt timestamp.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}
