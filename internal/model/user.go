package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents the users table. A nil TenantID marks a platform-level
// account; tenant staff carry their tenant's id.
type User struct {
	ID               uuid.UUID  `json:"id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	PhoneNumber      string     `json:"phone_number,omitempty"`
	IsEmailConfirmed bool       `json:"is_email_confirmed"`
	IsActive         bool       `json:"is_active"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	TenantID         *uuid.UUID `json:"tenant_id,omitempty"`
	RoleID           uuid.UUID  `json:"role_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Role represents the roles table. System roles cannot be deleted.
type Role struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	IsSystemRole bool      `json:"is_system_role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RolePermission represents the role_permissions table: one permission
// string granted to a role.
type RolePermission struct {
	ID          uuid.UUID `json:"id"`
	Permission  string    `json:"permission"`
	Description string    `json:"description,omitempty"`
	RoleID      uuid.UUID `json:"role_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
