package repository

import (
	"context"

	"github.com/google/uuid"

	"reservation-backend/internal/domains/user/model"
)

// Repository reads user profiles.
// Writes happen through the identity provider sync, outside this service.
type Repository interface {
	// FindByID uses cache-aside with a 15 minute TTL
	FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)

	// ListByRoles returns active users holding any of roles, oldest first
	ListByRoles(ctx context.Context, roles []string) ([]model.Profile, error)
}
