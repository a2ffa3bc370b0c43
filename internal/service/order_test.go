package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartify-platform/commerce-core/internal/apperr"
	"github.com/cartify-platform/commerce-core/internal/model"
)

func TestCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Claw Hammer", "HAM-1", "19.99", 10)
	c := f.seedCustomer(t, "sam@example.com")

	order, err := f.orders.Checkout(ctx, f.tenant.ID, CheckoutInput{
		StoreID:        f.shop.ID,
		CustomerID:     &c.ID,
		Currency:       "usd",
		TaxAmount:      decimal.RequireFromString("3.30"),
		ShippingAmount: decimal.RequireFromString("5.00"),
		DiscountAmount: decimal.RequireFromString("2.00"),
		Lines:          []CheckoutLine{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	// Line totals, subtotal and total are recomputed server-side.
	assert.Equal(t, "39.98", order.Subtotal.StringFixed(2))
	assert.Equal(t, "46.28", order.Total.StringFixed(2))
	assert.Equal(t, "USD", order.Currency)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.NotEmpty(t, order.OrderNumber)

	// The line item snapshots the product.
	items, err := f.orders.Items(ctx, f.tenant.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Claw Hammer", items[0].ProductName)
	assert.Equal(t, "HAM-1", items[0].ProductSKU)
	assert.Equal(t, "19.99", items[0].UnitPrice.StringFixed(2))

	// Inventory was decremented.
	reloaded, err := f.catalog.Product(ctx, f.tenant.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, reloaded.StockQuantity)

	// Customer aggregates were refreshed in the same write.
	shopper, err := f.customers.Customer(ctx, f.tenant.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, shopper.TotalOrders)
	assert.Equal(t, "46.28", shopper.TotalSpent.StringFixed(2))
	assert.NotNil(t, shopper.LastOrderAt)

	// History opens with a single pending row.
	history, err := f.orders.History(ctx, f.tenant.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.OrderPending, history[0].Status)
}

func TestCheckoutSnapshotImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Claw Hammer", "HAM-1", "19.99", 10)
	order, err := f.orders.Checkout(ctx, f.tenant.ID, CheckoutInput{
		StoreID:  f.shop.ID,
		Currency: "USD",
		Lines:    []CheckoutLine{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// Renaming and repricing the product later leaves the snapshot alone.
	p.Name = "Framing Hammer"
	p.Price = decimal.RequireFromString("29.99")
	require.NoError(t, f.catalog.UpdateProduct(ctx, &p))

	items, err := f.orders.Items(ctx, f.tenant.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Claw Hammer", items[0].ProductName)
	assert.Equal(t, "19.99", items[0].UnitPrice.StringFixed(2))
}

func TestCheckoutVariantPricing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Tee", "TEE-1", "15.00", 0)
	p.TrackInventory = false
	require.NoError(t, f.catalog.UpdateProduct(ctx, &p))
	v := model.ProductVariant{
		Name:           "Red - L",
		SKU:            "TEE-1-RL",
		Price:          decimal.RequireFromString("17.50"),
		StockQuantity:  3,
		TrackInventory: true,
		ProductID:      p.ID,
		TenantID:       f.tenant.ID,
	}
	require.NoError(t, f.catalog.CreateVariant(ctx, &v))

	order, err := f.orders.Checkout(ctx, f.tenant.ID, CheckoutInput{
		StoreID:  f.shop.ID,
		Currency: "USD",
		Lines:    []CheckoutLine{{ProductID: p.ID, VariantID: &v.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "35.00", order.Subtotal.StringFixed(2))

	items, err := f.orders.Items(ctx, f.tenant.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Red - L", items[0].VariantDescription)
	assert.Equal(t, "TEE-1-RL", items[0].ProductSKU)

	// The variant's inventory, not the product's, was decremented.
	variant, err := f.catalog.Variant(ctx, f.tenant.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, variant.StockQuantity)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Anvil", "ANV-1", "25.00", 1)
	_, err := f.orders.Checkout(ctx, f.tenant.ID, CheckoutInput{
		StoreID:  f.shop.ID,
		Currency: "USD",
		Lines:    []CheckoutLine{{ProductID: p.ID, Quantity: 2}},
	})
	assert.True(t, apperr.IsKind(err, apperr.IntegrityViolation))

	// Nothing was written.
	orders, listErr := f.orders.List(ctx, f.tenant.ID, f.shop.ID)
	require.NoError(t, listErr)
	assert.Empty(t, orders)
	reloaded, getErr := f.catalog.Product(ctx, f.tenant.ID, p.ID)
	require.NoError(t, getErr)
	assert.Equal(t, 1, reloaded.StockQuantity)
}

func TestCheckoutDuplicateLinesDrainStockOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Two lines draw from the same product; the stock check must see the
	// combined quantity, not each line against the starting level.
	p := f.seedProduct(t, "Anvil", "ANV-1", "25.00", 4)
	_, err := f.orders.Checkout(ctx, f.tenant.ID, CheckoutInput{
		StoreID:  f.shop.ID,
		Currency: "USD",
		Lines: []CheckoutLine{
			{ProductID: p.ID, Quantity: 3},
			{ProductID: p.ID, Quantity: 3},
		},
	})
	assert.True(t, apperr.IsKind(err, apperr.IntegrityViolation))

	orders, listErr := f.orders.List(ctx, f.tenant.ID, f.shop.ID)
	require.NoError(t, listErr)
	assert.Empty(t, orders)
	reloaded, getErr := f.catalog.Product(ctx, f.tenant.ID, p.ID)
	require.NoError(t, getErr)
	assert.Equal(t, 4, reloaded.StockQuantity)

	// The combined draw fits within stock when split 3 and 1.
	order, err := f.orders.Checkout(ctx, f.tenant.ID, CheckoutInput{
		StoreID:  f.shop.ID,
		Currency: "USD",
		Lines: []CheckoutLine{
			{ProductID: p.ID, Quantity: 3},
			{ProductID: p.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, order)
	reloaded, getErr = f.catalog.Product(ctx, f.tenant.ID, p.ID)
	require.NoError(t, getErr)
	assert.Equal(t, 0, reloaded.StockQuantity)
}

func TestCheckoutRejectsForeignLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A product from another tenant is invisible at checkout.
	other := model.Tenant{
		Name:               "Blue Bikes",
		Identifier:         "bluebikes",
		IsActive:           true,
		SubscriptionPlanID: f.plan.ID,
		OwnerID:            f.owner.ID,
	}
	require.NoError(t, f.directory.CreateTenant(ctx, &other))
	theirStore := model.Store{Name: "Blue Main", Subdomain: "main", TenantID: other.ID}
	require.NoError(t, f.catalog.CreateStore(ctx, &theirStore))
	theirProduct := model.Product{
		Name:     "Bike Bell",
		Price:    decimal.RequireFromString("9.99"),
		IsActive: true,
		TenantID: other.ID,
		StoreID:  theirStore.ID,
	}
	require.NoError(t, f.catalog.CreateProduct(ctx, &theirProduct))

	_, err := f.orders.Checkout(ctx, f.tenant.ID, CheckoutInput{
		StoreID:  f.shop.ID,
		Currency: "USD",
		Lines:    []CheckoutLine{{ProductID: theirProduct.ID, Quantity: 1}},
	})
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	// An inactive product is rejected too.
	p := f.seedProduct(t, "Anvil", "ANV-1", "25.00", 5)
	p.IsActive = false
	require.NoError(t, f.catalog.UpdateProduct(ctx, &p))
	_, err = f.orders.Checkout(ctx, f.tenant.ID, CheckoutInput{
		StoreID:  f.shop.ID,
		Currency: "USD",
		Lines:    []CheckoutLine{{ProductID: p.ID, Quantity: 1}},
	})
	assert.True(t, apperr.IsKind(err, apperr.ValidationFailed))
}

func TestOrderLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Anvil", "ANV-1", "25.00", 5)
	order, err := f.orders.Checkout(ctx, f.tenant.ID, CheckoutInput{
		StoreID:  f.shop.ID,
		Currency: "USD",
		Lines:    []CheckoutLine{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// Walking the happy path stamps each milestone.
	order, err = f.orders.Transition(ctx, f.tenant.ID, order.ID, model.OrderProcessing, "picked", nil)
	require.NoError(t, err)
	order, err = f.orders.Transition(ctx, f.tenant.ID, order.ID, model.OrderPaid, "card captured", nil)
	require.NoError(t, err)
	assert.NotNil(t, order.PaidAt)
	order, err = f.orders.Transition(ctx, f.tenant.ID, order.ID, model.OrderShipped, "in transit", nil)
	require.NoError(t, err)
	assert.NotNil(t, order.ShippedAt)
	order, err = f.orders.Transition(ctx, f.tenant.ID, order.ID, model.OrderDelivered, "", nil)
	require.NoError(t, err)
	assert.NotNil(t, order.DeliveredAt)

	// Delivered is terminal.
	_, err = f.orders.Transition(ctx, f.tenant.ID, order.ID, model.OrderRefunded, "", nil)
	assert.True(t, apperr.IsKind(err, apperr.IllegalTransition))

	// One history row per hop, oldest first, newest agreeing with the
	// order's status.
	history, err := f.orders.History(ctx, f.tenant.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, model.OrderPending, history[0].Status)
	assert.Equal(t, model.OrderDelivered, history[4].Status)
	assert.Equal(t, order.Status, history[len(history)-1].Status)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].StatusDate.Before(history[i-1].StatusDate))
	}
}

func TestOrderIllegalTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Anvil", "ANV-1", "25.00", 5)
	order, err := f.orders.Checkout(ctx, f.tenant.ID, CheckoutInput{
		StoreID:  f.shop.ID,
		Currency: "USD",
		Lines:    []CheckoutLine{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// Skipping a step.
	_, err = f.orders.Transition(ctx, f.tenant.ID, order.ID, model.OrderPaid, "", nil)
	assert.True(t, apperr.IsKind(err, apperr.IllegalTransition))

	// Re-asserting the current status.
	_, err = f.orders.Transition(ctx, f.tenant.ID, order.ID, model.OrderPending, "", nil)
	assert.True(t, apperr.IsKind(err, apperr.IllegalTransition))

	// An unknown status.
	_, err = f.orders.Transition(ctx, f.tenant.ID, order.ID, model.OrderStatus("misplaced"), "", nil)
	assert.True(t, apperr.IsKind(err, apperr.ValidationFailed))

	// A failed transition appends no history.
	history, err := f.orders.History(ctx, f.tenant.ID, order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestOrderLookups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Anvil", "ANV-1", "25.00", 5)
	order, err := f.orders.Checkout(ctx, f.tenant.ID, CheckoutInput{
		StoreID:  f.shop.ID,
		Currency: "USD",
		Lines:    []CheckoutLine{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	byNumber, err := f.orders.OrderByNumber(ctx, f.tenant.ID, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, byNumber.ID)

	// Another tenant cannot see the order, by id or by number.
	otherTenant := uuid.New()
	_, err = f.orders.Order(ctx, otherTenant, order.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
	_, err = f.orders.OrderByNumber(ctx, otherTenant, order.OrderNumber)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestOrderUpdateDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Anvil", "ANV-1", "25.00", 5)
	order, err := f.orders.Checkout(ctx, f.tenant.ID, CheckoutInput{
		StoreID:  f.shop.ID,
		Currency: "USD",
		Lines:    []CheckoutLine{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := f.orders.UpdateDetails(ctx, f.tenant.ID, order.ID, "txn_123", "TRACK-9", "leave at door")
	require.NoError(t, err)
	assert.Equal(t, "txn_123", updated.PaymentTransactionID)
	assert.Equal(t, "TRACK-9", updated.TrackingNumber)

	// Money fields survived the detail update untouched.
	reloaded, err := f.orders.Order(ctx, f.tenant.ID, order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Total.Equal(order.Total))
}
