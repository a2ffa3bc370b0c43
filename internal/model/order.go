package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderPaid       OrderStatus = "paid"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// orderTransitions enumerates the legal lifecycle edges. Delivered,
// Cancelled and Refunded are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderPaid, OrderCancelled},
	OrderPaid:       {OrderShipped, OrderCancelled, OrderRefunded},
	OrderShipped:    {OrderDelivered, OrderRefunded},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderPaid, OrderShipped,
		OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

// Terminal reports whether no transition leads out of s.
func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether the lifecycle permits moving from s to
// target.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Order represents the orders table. The four monetary components and
// Total are fixed-point decimals; Total is always recomputed on write.
type Order struct {
	ID                   uuid.UUID       `json:"id"`
	OrderNumber          string          `json:"order_number"`
	Status               OrderStatus     `json:"status"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	TaxAmount            decimal.Decimal `json:"tax_amount"`
	ShippingAmount       decimal.Decimal `json:"shipping_amount"`
	DiscountAmount       decimal.Decimal `json:"discount_amount"`
	Total                decimal.Decimal `json:"total"`
	Currency             string          `json:"currency"`
	PaymentMethod        string          `json:"payment_method,omitempty"`
	PaymentTransactionID string          `json:"payment_transaction_id,omitempty"`
	PaidAt               *time.Time      `json:"paid_at,omitempty"`
	ShippedAt            *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt          *time.Time      `json:"delivered_at,omitempty"`
	TrackingNumber       string          `json:"tracking_number,omitempty"`
	Notes                string          `json:"notes,omitempty"`
	TenantID             uuid.UUID       `json:"tenant_id"`
	StoreID              uuid.UUID       `json:"store_id"`
	CustomerID           *uuid.UUID      `json:"customer_id,omitempty"`
	UserID               *uuid.UUID      `json:"user_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// ComputeTotal returns Subtotal + TaxAmount + ShippingAmount -
// DiscountAmount rounded to two decimal places.
func (o *Order) ComputeTotal() decimal.Decimal {
	return o.Subtotal.
		Add(o.TaxAmount).
		Add(o.ShippingAmount).
		Sub(o.DiscountAmount).
		Round(2)
}

// OrderItem represents the order_items table. ProductName, ProductSKU,
// VariantDescription and UnitPrice are snapshots taken at checkout and are
// never rewritten when the source product changes.
type OrderItem struct {
	ID                 uuid.UUID       `json:"id"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	ProductName        string          `json:"product_name"`
	ProductSKU         string          `json:"product_sku,omitempty"`
	VariantDescription string          `json:"variant_description,omitempty"`
	OrderID            uuid.UUID       `json:"order_id"`
	ProductID          *uuid.UUID      `json:"product_id,omitempty"`
	ProductVariantID   *uuid.UUID      `json:"product_variant_id,omitempty"`
	TenantID           uuid.UUID       `json:"tenant_id"`
	CreatedAt          time.Time       `json:"created_at"`
}

// OrderStatusHistory represents the order_status_histories table. Rows are
// append-only; the newest row always agrees with Order.Status.
type OrderStatusHistory struct {
	ID         uuid.UUID   `json:"id"`
	Status     OrderStatus `json:"status"`
	Notes      string      `json:"notes,omitempty"`
	StatusDate time.Time   `json:"status_date"`
	OrderID    uuid.UUID   `json:"order_id"`
	UserID     *uuid.UUID  `json:"user_id,omitempty"`
	TenantID   uuid.UUID   `json:"tenant_id"`
	CreatedAt  time.Time   `json:"created_at"`
}
