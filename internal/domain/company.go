package domain

import (
	"time"

	"github.com/google/uuid"
)

// Company is a tenant. Its name is globally unique and decides whether a
// registration bootstraps a new tenant or joins an existing one.
type Company struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
