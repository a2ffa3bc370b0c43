package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cartify-platform/commerce-core/internal/model"
	"github.com/cartify-platform/commerce-core/internal/store"
)

// fixture wires every service over one in-memory store and seeds the
// minimum graph most tests need: a role, an owner, a plan, a tenant and
// its storefront.
type fixture struct {
	store     *store.Memory
	directory *Directory
	catalog   *Catalog
	customers *Customers
	orders    *Orders
	users     *Users

	role   model.Role
	owner  model.User
	plan   model.SubscriptionPlan
	tenant model.Tenant
	shop   model.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()
	f := &fixture{
		store:     mem,
		directory: NewDirectory(mem, nil),
		catalog:   NewCatalog(mem),
		customers: NewCustomers(mem),
		orders:    NewOrders(mem),
		users:     NewUsers(mem),
	}

	f.role = model.Role{Name: "Owner", IsSystemRole: true}
	require.NoError(t, mem.CreateRole(ctx, &f.role))

	f.owner = model.User{
		FirstName: "Olive",
		LastName:  "Okafor",
		Email:     "olive@example.com",
		IsActive:  true,
		RoleID:    f.role.ID,
	}
	require.NoError(t, mem.CreateUser(ctx, &f.owner))

	f.plan = model.SubscriptionPlan{
		Name:     "Growth",
		Price:    decimal.RequireFromString("49.00"),
		Currency: "USD",
		IsActive: true,
	}
	require.NoError(t, mem.CreatePlan(ctx, &f.plan))

	f.tenant = model.Tenant{
		Name:               "Acme Outfitters",
		Identifier:         "acme",
		IsActive:           true,
		SubscriptionPlanID: f.plan.ID,
		OwnerID:            f.owner.ID,
	}
	require.NoError(t, f.directory.CreateTenant(ctx, &f.tenant))

	f.shop = model.Store{
		Name:      "Acme Main",
		Subdomain: "main",
		IsActive:  true,
		TenantID:  f.tenant.ID,
	}
	require.NoError(t, f.catalog.CreateStore(ctx, &f.shop))

	return f
}

// seedProduct creates an active, inventory-tracked product in the
// fixture's store.
func (f *fixture) seedProduct(t *testing.T, name, sku string, price string, stock int) model.Product {
	t.Helper()
	p := model.Product{
		Name:           name,
		SKU:            sku,
		Price:          decimal.RequireFromString(price),
		StockQuantity:  stock,
		TrackInventory: true,
		IsActive:       true,
		TenantID:       f.tenant.ID,
		StoreID:        f.shop.ID,
	}
	require.NoError(t, f.catalog.CreateProduct(context.Background(), &p))
	return p
}

// seedCustomer creates an active customer for the fixture's tenant.
func (f *fixture) seedCustomer(t *testing.T, email string) model.Customer {
	t.Helper()
	c := model.Customer{
		FirstName: "Sam",
		LastName:  "Shopper",
		Email:     email,
		IsActive:  true,
		TenantID:  f.tenant.ID,
	}
	require.NoError(t, f.customers.Create(context.Background(), &c))
	return c
}
