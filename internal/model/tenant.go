package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tenant represents the tenants table. Identifier is the string the
// resolver extracts from a request's subdomain or path; it is unique across
// the platform and stored lowercased.
type Tenant struct {
	ID                    uuid.UUID  `json:"id"`
	Name                  string     `json:"name"`
	Identifier            string     `json:"identifier"`
	Description           string     `json:"description,omitempty"`
	LogoURL               string     `json:"logo_url,omitempty"`
	PrimaryColor          string     `json:"primary_color"`
	SecondaryColor        string     `json:"secondary_color"`
	IsActive              bool       `json:"is_active"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`
	SubscriptionPlanID    uuid.UUID  `json:"subscription_plan_id"`
	OwnerID               uuid.UUID  `json:"owner_id"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// SubscriptionExpired reports whether the tenant's subscription lapsed
// before now. A nil expiry means the subscription does not expire.
func (t *Tenant) SubscriptionExpired(now time.Time) bool {
	return t.SubscriptionExpiresAt != nil && t.SubscriptionExpiresAt.Before(now)
}

// SubscriptionPlan represents the subscription_plans table.
type SubscriptionPlan struct {
	ID                   uuid.UUID       `json:"id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description,omitempty"`
	Price                decimal.Decimal `json:"price"`
	Currency             string          `json:"currency"`
	BillingCycle         string          `json:"billing_cycle"` // monthly, yearly
	MaxProducts          int             `json:"max_products"`
	MaxUsers             int             `json:"max_users"`
	MaxStorageBytes      int64           `json:"max_storage_bytes"`
	HasAdvancedAnalytics bool            `json:"has_advanced_analytics"`
	HasAPIAccess         bool            `json:"has_api_access"`
	HasCustomThemes      bool            `json:"has_custom_themes"`
	HasPrioritySupport   bool            `json:"has_priority_support"`
	IsActive             bool            `json:"is_active"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
