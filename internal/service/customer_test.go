package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartify-platform/commerce-core/internal/apperr"
	"github.com/cartify-platform/commerce-core/internal/model"
)

func TestCustomerValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := model.Customer{FirstName: "Sam", LastName: "Shopper", Email: "not-an-email", TenantID: f.tenant.ID}
	err := f.customers.Create(ctx, &bad)
	assert.True(t, apperr.IsKind(err, apperr.ValidationFailed))

	// Email is normalized to lowercase.
	c := model.Customer{FirstName: "Sam", LastName: "Shopper", Email: " SAM@Example.COM ", TenantID: f.tenant.ID}
	require.NoError(t, f.customers.Create(ctx, &c))
	assert.Equal(t, "sam@example.com", c.Email)
}

func TestCustomerUpdatePreservesAggregates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Anvil", "ANV-1", "25.00", 5)
	c := f.seedCustomer(t, "sam@example.com")
	_, err := f.orders.Checkout(ctx, f.tenant.ID, CheckoutInput{
		StoreID:    f.shop.ID,
		CustomerID: &c.ID,
		Currency:   "USD",
		Lines:      []CheckoutLine{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// A profile edit cannot zero the checkout-owned aggregates.
	edit := c
	edit.FirstName = "Samuel"
	require.NoError(t, f.customers.Update(ctx, &edit))

	reloaded, err := f.customers.Customer(ctx, f.tenant.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Samuel", reloaded.FirstName)
	assert.Equal(t, 1, reloaded.TotalOrders)
	assert.Equal(t, "25.00", reloaded.TotalSpent.StringFixed(2))
}

func TestCustomerDeleteRestricted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Anvil", "ANV-1", "25.00", 5)
	c := f.seedCustomer(t, "sam@example.com")
	_, err := f.orders.Checkout(ctx, f.tenant.ID, CheckoutInput{
		StoreID:    f.shop.ID,
		CustomerID: &c.ID,
		Currency:   "USD",
		Lines:      []CheckoutLine{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	err = f.customers.Delete(ctx, f.tenant.ID, c.ID)
	assert.True(t, apperr.IsKind(err, apperr.IntegrityViolation))

	// A customer with no orders or addresses deletes cleanly.
	spare := f.seedCustomer(t, "spare@example.com")
	assert.NoError(t, f.customers.Delete(ctx, f.tenant.ID, spare.ID))
}

func TestAddressOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.seedCustomer(t, "sam@example.com")
	staff := model.User{
		FirstName: "Stan",
		LastName:  "Staff",
		Email:     "stan@example.com",
		RoleID:    f.role.ID,
		TenantID:  &f.tenant.ID,
	}
	require.NoError(t, f.users.CreateUser(ctx, &staff))

	base := model.Address{
		AddressLine1: "1 Main St",
		City:         "Springfield",
		Country:      "US",
		Type:         model.AddressShipping,
		TenantID:     f.tenant.ID,
	}

	// No owner.
	nobody := base
	err := f.customers.CreateAddress(ctx, &nobody)
	assert.True(t, apperr.IsKind(err, apperr.ValidationFailed))

	// Two owners.
	both := base
	both.CustomerID = &c.ID
	both.UserID = &staff.ID
	err = f.customers.CreateAddress(ctx, &both)
	assert.True(t, apperr.IsKind(err, apperr.ValidationFailed))

	// An owner from another tenant.
	foreign := base
	stray := uuid.New()
	foreign.CustomerID = &stray
	err = f.customers.CreateAddress(ctx, &foreign)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	// One owner of each flavor works.
	forCustomer := base
	forCustomer.CustomerID = &c.ID
	require.NoError(t, f.customers.CreateAddress(ctx, &forCustomer))
	forUser := base
	forUser.Type = model.AddressBilling
	forUser.UserID = &staff.ID
	require.NoError(t, f.customers.CreateAddress(ctx, &forUser))

	addresses, err := f.customers.ListAddresses(ctx, f.tenant.ID, c.ID)
	require.NoError(t, err)
	assert.Len(t, addresses, 1)
}

func TestAddressSingleDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.seedCustomer(t, "sam@example.com")
	base := model.Address{
		AddressLine1: "1 Main St",
		City:         "Springfield",
		Country:      "US",
		Type:         model.AddressShipping,
		CustomerID:   &c.ID,
		TenantID:     f.tenant.ID,
	}

	home := base
	home.IsDefault = true
	require.NoError(t, f.customers.CreateAddress(ctx, &home))

	// A second default demotes the first.
	work := base
	work.AddressLine1 = "2 Office Rd"
	work.IsDefault = true
	require.NoError(t, f.customers.CreateAddress(ctx, &work))

	defaults := func() []uuid.UUID {
		addresses, err := f.customers.ListAddresses(ctx, f.tenant.ID, c.ID)
		require.NoError(t, err)
		var ids []uuid.UUID
		for _, a := range addresses {
			if a.IsDefault {
				ids = append(ids, a.ID)
			}
		}
		return ids
	}
	assert.Equal(t, []uuid.UUID{work.ID}, defaults())

	// Billing defaults live in their own lane.
	billing := base
	billing.Type = model.AddressBilling
	billing.IsDefault = true
	require.NoError(t, f.customers.CreateAddress(ctx, &billing))
	assert.ElementsMatch(t, []uuid.UUID{work.ID, billing.ID}, defaults())

	// Re-flagging an older address via update flips the default back.
	home.IsDefault = true
	require.NoError(t, f.customers.UpdateAddress(ctx, &home))
	assert.ElementsMatch(t, []uuid.UUID{home.ID, billing.ID}, defaults())
}
