package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	userModel "reservation-backend/internal/domains/user/model"
	"reservation-backend/internal/shared"
	"reservation-backend/pkg/cache"
	"reservation-backend/pkg/logger"
)

const rosterCacheKey = "notification:admin_roster"

// AdminDirectory is the indexed role lookup, satisfied by the user repository.
type AdminDirectory interface {
	ListByRoles(ctx context.Context, roles []string) ([]userModel.Profile, error)
}

type cachedRoster struct {
	directory AdminDirectory
	cache     cache.Cache
	ttl       time.Duration
}

// NewCachedRoster caches the admin id list for ttl.
func NewCachedRoster(directory AdminDirectory, c cache.Cache, ttl time.Duration) Roster {
	return &cachedRoster{directory: directory, cache: c, ttl: ttl}
}

func (r *cachedRoster) AdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	found, err := r.cache.Get(ctx, rosterCacheKey, &ids)
	if err == nil && found {
		return ids, nil
	}
	if err != nil {
		logger.Warn("admin roster cache read failed", map[string]interface{}{"error": err.Error()})
	}

	admins, err := r.directory.ListByRoles(ctx, []string{shared.RoleAdmin})
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}

	ids = make([]uuid.UUID, 0, len(admins))
	for _, a := range admins {
		ids = append(ids, a.ID)
	}

	// An empty roster is not cached so a newly added admin is picked up immediately
	if len(ids) > 0 {
		if err := r.cache.Set(ctx, rosterCacheKey, ids, r.ttl); err != nil {
			logger.Warn("admin roster cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return ids, nil
}
