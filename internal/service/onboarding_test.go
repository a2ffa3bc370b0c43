package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartify-platform/commerce-core/internal/model"
	"github.com/cartify-platform/commerce-core/internal/store"
)

func TestOnboardingSeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	onboarding := NewOnboarding(f.store)
	defer onboarding.Close()

	// A tenant without stores gets the default one.
	bare := model.Tenant{
		Name:               "Blue Bikes",
		Identifier:         "bluebikes",
		IsActive:           true,
		PrimaryColor:       "#0000ff",
		SubscriptionPlanID: f.plan.ID,
		OwnerID:            f.owner.ID,
	}
	require.NoError(t, f.directory.CreateTenant(ctx, &bare))
	require.NoError(t, onboarding.Seed(ctx, bare.ID))

	stores, err := f.store.ListStores(ctx, bare.ID)
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "Blue Bikes", stores[0].Name)
	assert.Equal(t, "main", stores[0].Subdomain)
	assert.Equal(t, "#0000ff", stores[0].PrimaryColor)

	// Seeding again is a no-op.
	require.NoError(t, onboarding.Seed(ctx, bare.ID))
	stores, err = f.store.ListStores(ctx, bare.ID)
	require.NoError(t, err)
	assert.Len(t, stores, 1)

	// The fixture tenant already has a store; seeding leaves it alone.
	require.NoError(t, onboarding.Seed(ctx, f.tenant.ID))
	stores, err = f.store.ListStores(ctx, f.tenant.ID)
	require.NoError(t, err)
	assert.Len(t, stores, 1)
}

func TestOnboardingWorker(t *testing.T) {
	mem := store.NewMemory()
	onboarding := NewOnboarding(mem)
	defer onboarding.Close()
	directory := NewDirectory(mem, onboarding.Queue())

	ctx := context.Background()
	role := model.Role{Name: "Owner"}
	require.NoError(t, mem.CreateRole(ctx, &role))
	owner := model.User{FirstName: "Olive", LastName: "Okafor", Email: "olive@example.com", RoleID: role.ID}
	require.NoError(t, mem.CreateUser(ctx, &owner))
	plan := model.SubscriptionPlan{Name: "Growth"}
	require.NoError(t, mem.CreatePlan(ctx, &plan))

	tenant := model.Tenant{
		Name:               "Acme Outfitters",
		Identifier:         "acme",
		IsActive:           true,
		SubscriptionPlanID: plan.ID,
		OwnerID:            owner.ID,
	}
	require.NoError(t, directory.CreateTenant(ctx, &tenant))

	// The worker picks the tenant off the queue and seeds its store.
	require.Eventually(t, func() bool {
		stores, err := mem.ListStores(ctx, tenant.ID)
		return err == nil && len(stores) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
