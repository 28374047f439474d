package models

import (
	"time"

	"github.com/google/uuid"
)

// Role describes what the user does on the platform
type Role string

const (
	RoleMusician   Role = "musician"
	RoleContractor Role = "contractor"
	RoleBoth       Role = "both"
)

// Valid reports whether the role is one of the known values
func (r Role) Valid() bool {
	switch r {
	case RoleMusician, RoleContractor, RoleBoth:
		return true
	}
	return false
}

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Name           string
	Email          string
	HashedPassword string
	Role           Role
	Tags           []string

	// The most recently issued, still valid refresh token
	// nil means the user has no active session
	RefreshToken *string

	// nil until the first successful login
	LastLoginAt *time.Time
}
