package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartify-platform/commerce-core/internal/apperr"
	"github.com/cartify-platform/commerce-core/internal/model"
)

func TestCatalogStoreSubdomainUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dup := model.Store{Name: "Second", Subdomain: "MAIN", TenantID: f.tenant.ID}
	err := f.catalog.CreateStore(ctx, &dup)
	assert.True(t, apperr.IsKind(err, apperr.ValidationFailed))

	// The same subdomain under another tenant is fine.
	other := model.Tenant{
		Name:               "Blue Bikes",
		Identifier:         "bluebikes",
		IsActive:           true,
		SubscriptionPlanID: f.plan.ID,
		OwnerID:            f.owner.ID,
	}
	require.NoError(t, f.directory.CreateTenant(ctx, &other))
	theirs := model.Store{Name: "Blue Main", Subdomain: "main", TenantID: other.ID}
	assert.NoError(t, f.catalog.CreateStore(ctx, &theirs))
}

func TestCatalogDeleteStoreRestricted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedProduct(t, "Anvil", "ANV-1", "25.00", 3)
	err := f.catalog.DeleteStore(ctx, f.tenant.ID, f.shop.ID)
	assert.True(t, apperr.IsKind(err, apperr.IntegrityViolation))
}

func TestCatalogCategoryTree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := model.Category{Name: "Tools", TenantID: f.tenant.ID, StoreID: f.shop.ID}
	require.NoError(t, f.catalog.CreateCategory(ctx, &root))
	child := model.Category{Name: "Hammers", ParentID: &root.ID, TenantID: f.tenant.ID, StoreID: f.shop.ID}
	require.NoError(t, f.catalog.CreateCategory(ctx, &child))
	grandchild := model.Category{Name: "Claw Hammers", ParentID: &child.ID, TenantID: f.tenant.ID, StoreID: f.shop.ID}
	require.NoError(t, f.catalog.CreateCategory(ctx, &grandchild))

	// Re-parenting the root under its grandchild would close a cycle.
	moved := root
	moved.ParentID = &grandchild.ID
	err := f.catalog.UpdateCategory(ctx, &moved)
	assert.True(t, apperr.IsKind(err, apperr.ValidationFailed))

	// A category cannot be its own parent.
	selfie := child
	selfie.ParentID = &child.ID
	err = f.catalog.UpdateCategory(ctx, &selfie)
	assert.True(t, apperr.IsKind(err, apperr.ValidationFailed))

	// A parented category blocks its own delete.
	err = f.catalog.DeleteCategory(ctx, f.tenant.ID, child.ID)
	assert.True(t, apperr.IsKind(err, apperr.IntegrityViolation))

	// Deleting a leaf detaches its products.
	p := f.seedProduct(t, "Claw Hammer", "HAM-1", "19.99", 5)
	p.CategoryID = &grandchild.ID
	require.NoError(t, f.catalog.UpdateProduct(ctx, &p))
	require.NoError(t, f.catalog.DeleteCategory(ctx, f.tenant.ID, grandchild.ID))

	reloaded, err := f.catalog.Product(ctx, f.tenant.ID, p.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CategoryID)
}

func TestCatalogCategoryCrossStoreParentRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	second := model.Store{Name: "Outlet", Subdomain: "outlet", TenantID: f.tenant.ID}
	require.NoError(t, f.catalog.CreateStore(ctx, &second))

	parent := model.Category{Name: "Sale", TenantID: f.tenant.ID, StoreID: second.ID}
	require.NoError(t, f.catalog.CreateCategory(ctx, &parent))

	orphan := model.Category{Name: "Clearance", ParentID: &parent.ID, TenantID: f.tenant.ID, StoreID: f.shop.ID}
	err := f.catalog.CreateCategory(ctx, &orphan)
	assert.True(t, apperr.IsKind(err, apperr.ValidationFailed))
}

func TestCatalogProductPlanLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	capped := f.plan
	capped.MaxProducts = 1
	require.NoError(t, f.directory.UpdatePlan(ctx, &capped))

	f.seedProduct(t, "Anvil", "ANV-1", "25.00", 3)
	over := model.Product{
		Name:     "Second Anvil",
		Price:    decimal.RequireFromString("30.00"),
		IsActive: true,
		TenantID: f.tenant.ID,
		StoreID:  f.shop.ID,
	}
	err := f.catalog.CreateProduct(ctx, &over)
	assert.True(t, apperr.IsKind(err, apperr.ValidationFailed))
}

func TestCatalogTenantIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Anvil", "ANV-1", "25.00", 3)

	other := model.Tenant{
		Name:               "Blue Bikes",
		Identifier:         "bluebikes",
		IsActive:           true,
		SubscriptionPlanID: f.plan.ID,
		OwnerID:            f.owner.ID,
	}
	require.NoError(t, f.directory.CreateTenant(ctx, &other))

	// Another tenant's id never reaches this tenant's rows.
	_, err := f.catalog.Product(ctx, other.ID, p.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
	_, err = f.catalog.Store(ctx, other.ID, f.shop.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	products, err := f.catalog.ListProducts(ctx, other.ID, f.shop.ID)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestCatalogVariantDeleteRestricted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Tee", "TEE-1", "15.00", 0)
	v := model.ProductVariant{
		Name:      "Red - L",
		Price:     decimal.RequireFromString("15.00"),
		ProductID: p.ID,
		TenantID:  f.tenant.ID,
	}
	require.NoError(t, f.catalog.CreateVariant(ctx, &v))
	opt := model.ProductVariantOption{
		OptionName:       "Color",
		OptionValue:      "Red",
		ProductVariantID: v.ID,
		TenantID:         f.tenant.ID,
	}
	require.NoError(t, f.catalog.CreateVariantOption(ctx, &opt))

	// Options block the variant delete; the product delete is blocked by
	// the variant.
	err := f.catalog.DeleteVariant(ctx, f.tenant.ID, v.ID)
	assert.True(t, apperr.IsKind(err, apperr.IntegrityViolation))
	err = f.catalog.DeleteProduct(ctx, f.tenant.ID, p.ID)
	assert.True(t, apperr.IsKind(err, apperr.IntegrityViolation))

	require.NoError(t, f.catalog.DeleteVariantOption(ctx, f.tenant.ID, opt.ID))
	require.NoError(t, f.catalog.DeleteVariant(ctx, f.tenant.ID, v.ID))
	require.NoError(t, f.catalog.DeleteProduct(ctx, f.tenant.ID, p.ID))
}
