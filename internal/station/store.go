// Package station manages polling station registration and heartbeat.
// Stations register once with a shared secret and then authenticate
// their heartbeats with a signed session token.
package station

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Station is one registered polling station.
type Station struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	SecretHash   string    `json:"-"`
	RegisteredAt time.Time `json:"registered_at"`
	LastSeen     time.Time `json:"last_seen,omitempty"`
}

// Store persists stations.
//
// Error contract: Create returns sentinel.ErrConflict (wrapped) when
// the name is taken; Find* return sentinel.ErrNotFound when absent.
type Store interface {
	Create(ctx context.Context, st *Station) error
	FindByID(ctx context.Context, id uuid.UUID) (*Station, error)
	FindByName(ctx context.Context, name string) (*Station, error)
	Touch(ctx context.Context, id uuid.UUID, seen time.Time) error
}
