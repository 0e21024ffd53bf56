// Package users manages staff accounts and login. Account management is
// admin-gated; every authenticated request carries a role claim.
package users

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is a staff member's permission level.
type Role string

const (
	// RoleAdmin can manage accounts in addition to everything else.
	RoleAdmin Role = "admin"
	// RoleReceptionist is the default role for new accounts.
	RoleReceptionist Role = "receptionist"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleReceptionist
}

var (
	// ErrInvalidEmail rejects a blank or malformed email.
	ErrInvalidEmail = errors.New("users: valid email is required")
	// ErrInvalidPassword rejects a too-short password.
	ErrInvalidPassword = errors.New("users: password must be at least 8 characters")
	// ErrInvalidRole rejects an unknown role.
	ErrInvalidRole = errors.New("users: role must be admin or receptionist")
	// ErrUserNotFound is returned when no user matches.
	ErrUserNotFound = errors.New("users: user not found")
	// ErrEmailTaken is returned when the email already has an account.
	ErrEmailTaken = errors.New("users: email already registered")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("users: invalid credentials")
	// ErrSelfDelete rejects an admin deleting their own account.
	ErrSelfDelete = errors.New("users: cannot delete your own account")
)

// User is a staff account. The password hash never leaves the package.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateRequest is the payload for creating a staff account.
type CreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Validate checks the payload; an empty role defaults to receptionist.
func (r *CreateRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return ErrInvalidEmail
	}
	if len(r.Password) < 8 {
		return ErrInvalidPassword
	}
	if r.Role == "" {
		r.Role = RoleReceptionist
	}
	if !r.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
