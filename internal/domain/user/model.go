// Package user implements the auth/users backend: registration, login,
// session token issue and verification, account activation, and cached user
// queries.
package user

import (
	"context"
	"time"

	"taskflow-server/internal/domain"
)

// User is the stored account record. The password hash and the activation
// token never leave the service.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         domain.Role
	Active       bool
	VerifyToken  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public is the caller-visible projection of a user.
type Public struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// Public returns the projection safe to hand to callers.
func (u *User) Public() Public {
	return Public{ID: u.ID, Email: u.Email, Role: u.Role}
}

// Repository defines storage operations for users. Lookups return nil
// without error when no record matches.
type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindInactiveByToken(ctx context.Context, verifyToken string) (*User, error)
	Activate(ctx context.Context, id string) error
	FindAll(ctx context.Context, limit, page int) ([]*User, error)
}
