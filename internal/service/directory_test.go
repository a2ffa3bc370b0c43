package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartify-platform/commerce-core/internal/apperr"
	"github.com/cartify-platform/commerce-core/internal/model"
)

func TestDirectoryResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Known identifier resolves, case-insensitively.
	tenant, err := f.directory.Resolve(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, f.tenant.ID, tenant.ID)

	// Unknown identifier.
	_, err = f.directory.Resolve(ctx, "nobody")
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	// Deactivated tenant.
	require.NoError(t, f.directory.Deactivate(ctx, f.tenant.ID))
	_, err = f.directory.Resolve(ctx, "acme")
	assert.True(t, apperr.IsKind(err, apperr.Inactive))
	require.NoError(t, f.directory.Reactivate(ctx, f.tenant.ID))

	// Expired subscription.
	expired := time.Now().Add(-24 * time.Hour)
	updated := f.tenant
	updated.SubscriptionExpiresAt = &expired
	require.NoError(t, f.directory.UpdateTenant(ctx, &updated))
	_, err = f.directory.Resolve(ctx, "acme")
	assert.True(t, apperr.IsKind(err, apperr.Expired))

	// A future expiry resolves again.
	future := time.Now().Add(24 * time.Hour)
	updated.SubscriptionExpiresAt = &future
	require.NoError(t, f.directory.UpdateTenant(ctx, &updated))
	_, err = f.directory.Resolve(ctx, "acme")
	assert.NoError(t, err)
}

func TestDirectoryCreateTenantValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Duplicate identifier, case-insensitively.
	dup := model.Tenant{
		Name:               "Copycat",
		Identifier:         "ACME",
		SubscriptionPlanID: f.plan.ID,
		OwnerID:            f.owner.ID,
	}
	err := f.directory.CreateTenant(ctx, &dup)
	assert.True(t, apperr.IsKind(err, apperr.ValidationFailed))

	// Malformed identifier.
	bad := dup
	bad.Identifier = "Bad_Name!"
	err = f.directory.CreateTenant(ctx, &bad)
	assert.True(t, apperr.IsKind(err, apperr.ValidationFailed))

	// Unknown plan.
	noPlan := dup
	noPlan.Identifier = "copycat"
	noPlan.SubscriptionPlanID = uuid.New()
	err = f.directory.CreateTenant(ctx, &noPlan)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	// Unknown owner.
	noOwner := dup
	noOwner.Identifier = "copycat"
	noOwner.OwnerID = uuid.New()
	err = f.directory.CreateTenant(ctx, &noOwner)
	assert.True(t, apperr.IsKind(err, apperr.ValidationFailed))
}

func TestDirectoryDeleteTenant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The fixture store blocks a hard delete.
	err := f.directory.DeleteTenant(ctx, f.tenant.ID)
	assert.True(t, apperr.IsKind(err, apperr.IntegrityViolation))

	// Attach a staff user, drop the store, then delete: the user is
	// detached, not removed.
	staff := model.User{
		FirstName: "Stan",
		LastName:  "Staff",
		Email:     "stan@example.com",
		RoleID:    f.role.ID,
		TenantID:  &f.tenant.ID,
	}
	require.NoError(t, f.users.CreateUser(ctx, &staff))
	require.NoError(t, f.catalog.DeleteStore(ctx, f.tenant.ID, f.shop.ID))
	require.NoError(t, f.directory.DeleteTenant(ctx, f.tenant.ID))

	_, err = f.directory.Tenant(ctx, f.tenant.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	detached, err := f.users.User(ctx, staff.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.TenantID)
}

func TestDirectoryPlans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A subscribed plan cannot be deleted.
	err := f.directory.DeletePlan(ctx, f.plan.ID)
	assert.True(t, apperr.IsKind(err, apperr.IntegrityViolation))

	// An unsubscribed plan can.
	spare := model.SubscriptionPlan{Name: "Starter"}
	require.NoError(t, f.directory.CreatePlan(ctx, &spare))
	require.NoError(t, f.directory.DeletePlan(ctx, spare.ID))

	plans, err := f.directory.ListPlans(ctx)
	require.NoError(t, err)
	assert.Len(t, plans, 1)
}
