package model

import (
	"time"

	"github.com/google/uuid"
)

// Store represents the stores table. Subdomain is unique per tenant.
type Store struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	LogoURL        string    `json:"logo_url,omitempty"`
	PrimaryColor   string    `json:"primary_color"`
	SecondaryColor string    `json:"secondary_color"`
	Domain         string    `json:"domain,omitempty"` // custom domain
	Subdomain      string    `json:"subdomain"`
	IsActive       bool      `json:"is_active"`
	TenantID       uuid.UUID `json:"tenant_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
