package port

import (
	"context"

	"github.com/rl1809/multiship/internal/core/domain"
)

type StoreRepository interface {
	// GetStore retrieves a store by ID; returns nil, nil when not found
	GetStore(ctx context.Context, id string) (*domain.Store, error)

	// FindNearby returns stores ordered by distance from the given point
	FindNearby(ctx context.Context, lat, lng float64, limit int) ([]domain.Store, error)
}
