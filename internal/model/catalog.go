package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category represents the categories table. Categories form a tree within a
// single store via ParentID; the tree must stay acyclic.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	SortOrder   int        `json:"sort_order"`
	IsActive    bool       `json:"is_active"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	StoreID     uuid.UUID  `json:"store_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Product represents the products table. Money columns carry two decimal
// digits, Weight carries three.
type Product struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	ShortDescription string           `json:"short_description,omitempty"`
	SKU              string           `json:"sku,omitempty"`
	Price            decimal.Decimal  `json:"price"`
	CompareAtPrice   *decimal.Decimal `json:"compare_at_price,omitempty"`
	Cost             decimal.Decimal  `json:"cost"`
	StockQuantity    int              `json:"stock_quantity"`
	TrackInventory   bool             `json:"track_inventory"`
	IsActive         bool             `json:"is_active"`
	IsDigital        bool             `json:"is_digital"`
	Weight           decimal.Decimal  `json:"weight"`
	WeightUnit       string           `json:"weight_unit,omitempty"`
	MetaTitle        string           `json:"meta_title,omitempty"`
	MetaDescription  string           `json:"meta_description,omitempty"`
	TenantID         uuid.UUID        `json:"tenant_id"`
	StoreID          uuid.UUID        `json:"store_id"`
	CategoryID       *uuid.UUID       `json:"category_id,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ProductVariant represents the product_variants table.
type ProductVariant struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"` // e.g. "Red - Large"
	SKU            string           `json:"sku,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	StockQuantity  int              `json:"stock_quantity"`
	TrackInventory bool             `json:"track_inventory"`
	IsActive       bool             `json:"is_active"`
	Weight         decimal.Decimal  `json:"weight"`
	WeightUnit     string           `json:"weight_unit,omitempty"`
	ProductID      uuid.UUID        `json:"product_id"`
	TenantID       uuid.UUID        `json:"tenant_id"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ProductVariantOption represents the product_variant_options table: one
// axis of a variant, e.g. Color=Red.
type ProductVariantOption struct {
	ID               uuid.UUID `json:"id"`
	OptionName       string    `json:"option_name"`
	OptionValue      string    `json:"option_value"`
	ProductVariantID uuid.UUID `json:"product_variant_id"`
	TenantID         uuid.UUID `json:"tenant_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProductImage represents the product_images table.
type ProductImage struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	AltText   string    `json:"alt_text,omitempty"`
	SortOrder int       `json:"sort_order"`
	IsPrimary bool      `json:"is_primary"`
	ProductID uuid.UUID `json:"product_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
