package model

import (
	"time"

	"github.com/google/uuid"

	"reservation-backend/internal/shared"
)

// Profile mirrors the identity provider's account into the local users table.
// Credentials and sessions stay with the identity provider.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Role      string    `json:"role" db:"role"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (p *Profile) IsAdmin() bool {
	return p.Role == shared.RoleAdmin
}

// BasicInfo is the display identity shared with other domains.
func (p *Profile) BasicInfo() shared.UserBasicInfo {
	return shared.UserBasicInfo{
		ID:       p.ID.String(),
		Email:    p.Email,
		FullName: p.FullName,
	}
}
