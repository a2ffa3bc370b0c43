package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer represents the customers table. Email is transported in plain
// text on the struct and encrypted at rest by the postgres store.
type Customer struct {
	ID          uuid.UUID       `json:"id"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Email       string          `json:"email"`
	PhoneNumber string          `json:"phone_number,omitempty"`
	DateOfBirth *time.Time      `json:"date_of_birth,omitempty"`
	IsActive    bool            `json:"is_active"`
	LastOrderAt *time.Time      `json:"last_order_at,omitempty"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	TotalOrders int             `json:"total_orders"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AddressType distinguishes shipping from billing addresses.
type AddressType string

const (
	AddressShipping AddressType = "shipping"
	AddressBilling  AddressType = "billing"
)

// Address represents the addresses table. An address is owned by exactly
// one of CustomerID or UserID.
type Address struct {
	ID           uuid.UUID   `json:"id"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	AddressLine1 string      `json:"address_line1"`
	AddressLine2 string      `json:"address_line2,omitempty"`
	City         string      `json:"city"`
	State        string      `json:"state"`
	PostalCode   string      `json:"postal_code"`
	Country      string      `json:"country"`
	PhoneNumber  string      `json:"phone_number,omitempty"`
	IsDefault    bool        `json:"is_default"`
	Type         AddressType `json:"type"`
	CustomerID   *uuid.UUID  `json:"customer_id,omitempty"`
	UserID       *uuid.UUID  `json:"user_id,omitempty"`
	TenantID     uuid.UUID   `json:"tenant_id"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
