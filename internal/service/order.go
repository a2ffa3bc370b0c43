package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/cartify-platform/commerce-core/internal/apperr"
	"github.com/cartify-platform/commerce-core/internal/model"
	"github.com/cartify-platform/commerce-core/internal/monitoring"
	"github.com/cartify-platform/commerce-core/internal/store"
)

// orderNumberAttempts bounds retries when a generated order number
// collides with an existing one.
const orderNumberAttempts = 5

// CheckoutLine is one requested order line. VariantID is nil when the
// base product is ordered.
type CheckoutLine struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

// CheckoutInput carries everything needed to place an order. Monetary
// adjustments are taken as-is; line totals, the subtotal and the total are
// always recomputed here.
type CheckoutInput struct {
	StoreID        uuid.UUID
	CustomerID     *uuid.UUID
	UserID         *uuid.UUID
	Currency       string
	PaymentMethod  string
	TaxAmount      decimal.Decimal
	ShippingAmount decimal.Decimal
	DiscountAmount decimal.Decimal
	Notes          string
	Lines          []CheckoutLine
}

// Orders manages order placement and the status lifecycle.
type Orders struct {
	store store.Store
}

// NewOrders returns an Orders service backed by st.
func NewOrders(st store.Store) *Orders {
	return &Orders{store: st}
}

// Checkout places an order. It snapshots product data into the line
// items, recomputes all money amounts, decrements inventory and updates
// the customer's aggregates, all in one transaction.
func (s *Orders) Checkout(ctx context.Context, tenantID uuid.UUID, in CheckoutInput) (*model.Order, error) {
	if len(in.Lines) == 0 {
		return nil, apperr.Field("order", "lines", "order needs at least one line")
	}
	in.Currency = strings.ToUpper(in.Currency)
	if !isValidCurrency(in.Currency) {
		return nil, apperr.Field("order", "currency", "%q is not a currency code", in.Currency)
	}
	for _, amount := range []struct {
		field string
		value decimal.Decimal
	}{
		{"tax_amount", in.TaxAmount},
		{"shipping_amount", in.ShippingAmount},
		{"discount_amount", in.DiscountAmount},
	} {
		if amount.value.IsNegative() {
			return nil, apperr.Field("order", amount.field, "must not be negative")
		}
	}

	st, err := s.store.StoreByID(ctx, tenantID, in.StoreID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "store", err)
	}
	if st == nil {
		return nil, apperr.New(apperr.NotFound, "store", "store %s not found", in.StoreID)
	}

	var customer *model.Customer
	if in.CustomerID != nil {
		customer, err = s.store.CustomerByID(ctx, tenantID, *in.CustomerID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "customer", err)
		}
		if customer == nil {
			return nil, apperr.New(apperr.NotFound, "customer", "customer %s not found", *in.CustomerID)
		}
	}
	if in.UserID != nil {
		user, err := s.store.UserByID(ctx, *in.UserID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "user", err)
		}
		if user == nil {
			return nil, apperr.New(apperr.NotFound, "user", "user %s not found", *in.UserID)
		}
		if user.TenantID != nil && *user.TenantID != tenantID {
			return nil, apperr.Field("order", "user_id", "user belongs to a different tenant")
		}
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:             uuid.New(),
		Status:         model.OrderPending,
		TaxAmount:      in.TaxAmount.Round(2),
		ShippingAmount: in.ShippingAmount.Round(2),
		DiscountAmount: in.DiscountAmount.Round(2),
		Currency:       in.Currency,
		PaymentMethod:  in.PaymentMethod,
		Notes:          in.Notes,
		TenantID:       tenantID,
		StoreID:        in.StoreID,
		CustomerID:     in.CustomerID,
		UserID:         in.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	items, stock, subtotal, err := s.buildLines(ctx, tenantID, order.ID, in)
	if err != nil {
		return nil, err
	}
	order.Subtotal = subtotal
	order.Total = order.ComputeTotal()

	order.OrderNumber, err = s.nextOrderNumber(ctx, now)
	if err != nil {
		return nil, err
	}

	write := store.CheckoutWrite{
		Order: order,
		Items: items,
		History: &model.OrderStatusHistory{
			ID:         uuid.New(),
			Status:     model.OrderPending,
			Notes:      "Order placed",
			StatusDate: now,
			OrderID:    order.ID,
			UserID:     in.UserID,
			TenantID:   tenantID,
			CreatedAt:  now,
		},
		Stock: stock,
	}
	if customer != nil {
		customer.TotalSpent = customer.TotalSpent.Add(order.Total)
		customer.TotalOrders++
		lastOrder := now
		customer.LastOrderAt = &lastOrder
		write.Customer = customer
	}

	if err := s.store.CreateOrder(ctx, write); err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID.String()).Str("order_number", order.OrderNumber).Msg("Checkout failed")
		return nil, err
	}
	monitoring.OrdersCreated.Inc()
	log.Info().Str("tenant_id", tenantID.String()).Str("order_number", order.OrderNumber).Str("total", order.Total.String()).Msg("Order placed")
	return order, nil
}

// buildLines resolves each requested line against the catalog and returns
// the snapshotted items, the stock decrements and the subtotal.
func (s *Orders) buildLines(ctx context.Context, tenantID, orderID uuid.UUID, in CheckoutInput) ([]model.OrderItem, []store.StockAdjustment, decimal.Decimal, error) {
	var (
		items    = make([]model.OrderItem, 0, len(in.Lines))
		stock    []store.StockAdjustment
		subtotal = decimal.Zero
		now      = time.Now().UTC()
	)
	for i, line := range in.Lines {
		if line.Quantity <= 0 {
			return nil, nil, decimal.Zero, apperr.Field("order", "lines", "line %d quantity must be positive", i)
		}
		product, err := s.store.ProductByID(ctx, tenantID, line.ProductID)
		if err != nil {
			return nil, nil, decimal.Zero, apperr.Wrap(apperr.Internal, "product", err)
		}
		if product == nil {
			return nil, nil, decimal.Zero, apperr.New(apperr.NotFound, "product", "product %s not found", line.ProductID)
		}
		if !product.IsActive {
			return nil, nil, decimal.Zero, apperr.Field("order", "lines", "product %q is not for sale", product.Name)
		}
		if product.StoreID != in.StoreID {
			return nil, nil, decimal.Zero, apperr.Field("order", "lines", "product %q belongs to a different store", product.Name)
		}

		item := model.OrderItem{
			ID:          uuid.New(),
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
			ProductName: product.Name,
			ProductSKU:  product.SKU,
			OrderID:     orderID,
			ProductID:   &product.ID,
			TenantID:    tenantID,
			CreatedAt:   now,
		}

		if line.VariantID != nil {
			variant, err := s.store.VariantByID(ctx, tenantID, *line.VariantID)
			if err != nil {
				return nil, nil, decimal.Zero, apperr.Wrap(apperr.Internal, "variant", err)
			}
			if variant == nil {
				return nil, nil, decimal.Zero, apperr.New(apperr.NotFound, "variant", "variant %s not found", *line.VariantID)
			}
			if variant.ProductID != product.ID {
				return nil, nil, decimal.Zero, apperr.Field("order", "lines", "variant %q belongs to a different product", variant.Name)
			}
			item.UnitPrice = variant.Price
			item.VariantDescription = variant.Name
			item.ProductVariantID = &variant.ID
			if variant.SKU != "" {
				item.ProductSKU = variant.SKU
			}
			if variant.TrackInventory {
				stock = append(stock, store.StockAdjustment{VariantID: &variant.ID, Delta: -line.Quantity})
			}
		} else if product.TrackInventory {
			stock = append(stock, store.StockAdjustment{ProductID: &product.ID, Delta: -line.Quantity})
		}

		item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		subtotal = subtotal.Add(item.TotalPrice)
		items = append(items, item)
	}
	return items, stock, subtotal.Round(2), nil
}

// nextOrderNumber generates an order number and verifies it is unused.
// The schema's unique index catches the race between check and insert.
func (s *Orders) nextOrderNumber(ctx context.Context, now time.Time) (string, error) {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		var suffix [4]byte
		if _, err := rand.Read(suffix[:]); err != nil {
			return "", apperr.Wrap(apperr.Internal, "order", err)
		}
		number := fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), strings.ToUpper(hex.EncodeToString(suffix[:])))
		existing, err := s.store.OrderByNumber(ctx, number)
		if err != nil {
			return "", apperr.Wrap(apperr.Internal, "order", err)
		}
		if existing == nil {
			return number, nil
		}
	}
	return "", apperr.New(apperr.Internal, "order", "could not generate a unique order number")
}

// Transition moves an order along its lifecycle, stamping the matching
// timestamp and appending one history row atomically.
func (s *Orders) Transition(ctx context.Context, tenantID, orderID uuid.UUID, target model.OrderStatus, notes string, actorID *uuid.UUID) (*model.Order, error) {
	if !target.Valid() {
		return nil, apperr.Field("order", "status", "%q is not a known status", target)
	}
	order, err := s.requireOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, apperr.New(apperr.IllegalTransition, "order", "cannot move order %s from %s to %s", order.OrderNumber, order.Status, target)
	}

	now := time.Now().UTC()
	order.Status = target
	order.UpdatedAt = now
	switch target {
	case model.OrderPaid:
		order.PaidAt = &now
	case model.OrderShipped:
		order.ShippedAt = &now
	case model.OrderDelivered:
		order.DeliveredAt = &now
	}

	history := &model.OrderStatusHistory{
		ID:         uuid.New(),
		Status:     target,
		Notes:      notes,
		StatusDate: now,
		OrderID:    order.ID,
		UserID:     actorID,
		TenantID:   tenantID,
		CreatedAt:  now,
	}
	if err := s.store.UpdateOrderStatus(ctx, order, history); err != nil {
		log.Error().Err(err).Str("order_number", order.OrderNumber).Str("status", string(target)).Msg("Status transition failed")
		return nil, err
	}
	monitoring.OrderTransitions.WithLabelValues(string(target)).Inc()
	log.Info().Str("order_number", order.OrderNumber).Str("status", string(target)).Msg("Order status changed")
	return order, nil
}

// UpdateDetails changes the mutable bookkeeping fields of an order:
// payment transaction id, tracking number and notes. Money amounts, line
// items and history are off limits here.
func (s *Orders) UpdateDetails(ctx context.Context, tenantID, orderID uuid.UUID, paymentTransactionID, trackingNumber, notes string) (*model.Order, error) {
	order, err := s.requireOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	order.PaymentTransactionID = paymentTransactionID
	order.TrackingNumber = trackingNumber
	order.Notes = notes
	order.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Order fetches an order by id.
func (s *Orders) Order(ctx context.Context, tenantID, id uuid.UUID) (*model.Order, error) {
	return s.requireOrder(ctx, tenantID, id)
}

// OrderByNumber fetches an order by its number within the tenant.
func (s *Orders) OrderByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*model.Order, error) {
	order, err := s.store.OrderByNumber(ctx, number)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "order", err)
	}
	if order == nil || order.TenantID != tenantID {
		return nil, apperr.New(apperr.NotFound, "order", "order %q not found", number)
	}
	return order, nil
}

// List returns a store's orders.
func (s *Orders) List(ctx context.Context, tenantID, storeID uuid.UUID) ([]model.Order, error) {
	return s.store.ListOrders(ctx, tenantID, storeID)
}

// Items returns an order's line items.
func (s *Orders) Items(ctx context.Context, tenantID, orderID uuid.UUID) ([]model.OrderItem, error) {
	if _, err := s.requireOrder(ctx, tenantID, orderID); err != nil {
		return nil, err
	}
	return s.store.OrderItems(ctx, tenantID, orderID)
}

// History returns an order's status history, oldest first.
func (s *Orders) History(ctx context.Context, tenantID, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	if _, err := s.requireOrder(ctx, tenantID, orderID); err != nil {
		return nil, err
	}
	return s.store.OrderHistory(ctx, tenantID, orderID)
}

func (s *Orders) requireOrder(ctx context.Context, tenantID, id uuid.UUID) (*model.Order, error) {
	order, err := s.store.OrderByID(ctx, tenantID, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "order", err)
	}
	if order == nil {
		return nil, apperr.New(apperr.NotFound, "order", "order %s not found", id)
	}
	return order, nil
}
