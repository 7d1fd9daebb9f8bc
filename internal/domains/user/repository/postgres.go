package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"reservation-backend/internal/domains/user/model"
	"reservation-backend/pkg/cache"
	"reservation-backend/pkg/logger"
)

const profileCacheTTL = 15 * time.Minute

// postgresRepository uses database/sql with the lib/pq driver.
type postgresRepository struct {
	db    *sql.DB
	cache cache.Cache
}

func NewPostgresRepository(db *sql.DB, cache cache.Cache) Repository {
	return &postgresRepository{
		db:    db,
		cache: cache,
	}
}

// OpenDB opens a database/sql handle using the lib/pq driver.
func OpenDB(dsn string) (*sql.DB, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse user db dsn: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// ========================================
// LOOKUPS
// ========================================

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	// STEP 1: cache
	cacheKey := fmt.Sprintf("user:%s", id.String())

	var p model.Profile
	found, err := r.cache.Get(ctx, cacheKey, &p)
	if err == nil && found {
		return &p, nil
	}
	if err != nil {
		logger.Warn("user cache read failed", map[string]interface{}{"user_id": id.String(), "error": err.Error()})
	}

	// STEP 2: database
	query := `
		SELECT id, email, full_name, phone, role, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	err = r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.Phone,
		&p.Role,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}

	// STEP 3: populate cache, failures ignored
	_ = r.cache.Set(ctx, cacheKey, &p, profileCacheTTL)

	return &p, nil
}

func (r *postgresRepository) ListByRoles(ctx context.Context, roles []string) ([]model.Profile, error) {
	// Served by the partial index idx_users_active_role
	query := `
		SELECT id, email, full_name, phone, role, is_active, created_at, updated_at
		FROM users
		WHERE role = ANY($1) AND is_active = TRUE
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(roles))
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	profiles := make([]model.Profile, 0)
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(
			&p.ID,
			&p.Email,
			&p.FullName,
			&p.Phone,
			&p.Role,
			&p.IsActive,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return profiles, nil
}
