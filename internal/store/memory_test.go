package store

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

func seedTenant(t *testing.T, m *Memory) model.Tenant {
	t.Helper()
	ctx := context.Background()
	role := model.Role{Name: "Owner"}
	require.NoError(t, m.CreateRole(ctx, &role))
	owner := model.User{FirstName: "O", LastName: "K", Email: "o@example.com", RoleID: role.ID}
	require.NoError(t, m.CreateUser(ctx, &owner))
	plan := model.SubscriptionPlan{Name: "Growth"}
	require.NoError(t, m.CreatePlan(ctx, &plan))
	tenant := model.Tenant{Name: "Acme", Identifier: "acme", IsActive: true, SubscriptionPlanID: plan.ID, OwnerID: owner.ID}
	require.NoError(t, m.CreateTenant(ctx, &tenant))
	return tenant
}

func TestMemoryTenantIdentifierUnique(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedTenant(t, m)

	dup := model.Tenant{Name: "Copy", Identifier: "ACME"}
	err := m.CreateTenant(ctx, &dup)
	assert.True(t, apperr.IsKind(err, apperr.IntegrityViolation))
}

func TestMemoryCheckoutAtomicity(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	tenant := seedTenant(t, m)

	shop := model.Store{Name: "Main", Subdomain: "main", TenantID: tenant.ID}
	require.NoError(t, m.CreateStore(ctx, &shop))
	product := model.Product{
		Name:           "Anvil",
		Price:          decimal.RequireFromString("25.00"),
		StockQuantity:  1,
		TrackInventory: true,
		IsActive:       true,
		TenantID:       tenant.ID,
		StoreID:        shop.ID,
	}
	require.NoError(t, m.CreateProduct(ctx, &product))

	order := model.Order{
		OrderNumber: "ORD-1",
		Status:      model.OrderPending,
		TenantID:    tenant.ID,
		StoreID:     shop.ID,
	}
	write := CheckoutWrite{
		Order: &order,
		Items: []model.OrderItem{{
			Quantity:    2,
			UnitPrice:   product.Price,
			TotalPrice:  decimal.RequireFromString("50.00"),
			ProductName: product.Name,
			ProductID:   &product.ID,
			TenantID:    tenant.ID,
		}},
		History: &model.OrderStatusHistory{Status: model.OrderPending, TenantID: tenant.ID},
		Stock:   []StockAdjustment{{ProductID: &product.ID, Delta: -2}},
	}

	// The stock shortfall fails the whole write: no order, no items, no
	// history, no decrement.
	err := m.CreateOrder(ctx, write)
	assert.True(t, apperr.IsKind(err, apperr.IntegrityViolation))

	orders, err := m.ListOrders(ctx, tenant.ID, shop.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	reloaded, err := m.ProductByID(ctx, tenant.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.StockQuantity)

	// Within bounds the same write lands whole.
	write.Items[0].Quantity = 1
	write.Stock[0].Delta = -1
	require.NoError(t, m.CreateOrder(ctx, write))

	reloaded, err = m.ProductByID(ctx, tenant.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.StockQuantity)
	history, err := m.OrderHistory(ctx, tenant.ID, order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	// Order numbers are unique.
	second := model.Order{OrderNumber: "ORD-1", Status: model.OrderPending, TenantID: tenant.ID, StoreID: shop.ID}
	err = m.CreateOrder(ctx, CheckoutWrite{
		Order:   &second,
		History: &model.OrderStatusHistory{Status: model.OrderPending, TenantID: tenant.ID},
	})
	assert.True(t, apperr.IsKind(err, apperr.IntegrityViolation))
}

func TestMemoryDeleteTenantDetachesUsers(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	tenant := seedTenant(t, m)

	role, err := m.ListRoles(ctx)
	require.NoError(t, err)
	staff := model.User{FirstName: "S", LastName: "T", Email: "s@example.com", RoleID: role[0].ID, TenantID: &tenant.ID}
	require.NoError(t, m.CreateUser(ctx, &staff))

	require.NoError(t, m.DeleteTenant(ctx, tenant.ID))

	detached, err := m.UserByID(ctx, staff.ID)
	require.NoError(t, err)
	require.NotNil(t, detached)
	assert.Nil(t, detached.TenantID)
}

func TestMemoryTenantScoping(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	tenant := seedTenant(t, m)

	shop := model.Store{Name: "Main", Subdomain: "main", TenantID: tenant.ID}
	require.NoError(t, m.CreateStore(ctx, &shop))

	// Lookups under a different tenant id come back empty, not as errors.
	got, err := m.StoreByID(ctx, uuid.New(), shop.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
