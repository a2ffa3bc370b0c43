package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cartify-platform/commerce-core/internal/apperr"
	"github.com/cartify-platform/commerce-core/internal/model"
	"github.com/cartify-platform/commerce-core/internal/store"
)

// maxCategoryDepth bounds the ancestor walk during cycle detection.
const maxCategoryDepth = 100

// Catalog manages storefronts, the category tree and products with their
// variants, options and images. Every method is scoped to one tenant.
type Catalog struct {
	store store.Store
}

// NewCatalog returns a Catalog backed by st.
func NewCatalog(st store.Store) *Catalog {
	return &Catalog{store: st}
}

// CreateStore registers a storefront. The subdomain must be unique within
// the tenant.
func (c *Catalog) CreateStore(ctx context.Context, s *model.Store) error {
	s.Subdomain = strings.ToLower(s.Subdomain)
	if err := c.validateStore(s); err != nil {
		return err
	}
	existing, err := c.store.StoreBySubdomain(ctx, s.TenantID, s.Subdomain)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "store", err)
	}
	if existing != nil {
		return apperr.Field("store", "subdomain", "%q is already taken", s.Subdomain)
	}
	if err := c.store.CreateStore(ctx, s); err != nil {
		return err
	}
	log.Info().Str("tenant_id", s.TenantID.String()).Str("store_id", s.ID.String()).Str("subdomain", s.Subdomain).Msg("Store created")
	return nil
}

// UpdateStore applies changes to a storefront.
func (c *Catalog) UpdateStore(ctx context.Context, s *model.Store) error {
	s.Subdomain = strings.ToLower(s.Subdomain)
	current, err := c.requireStore(ctx, s.TenantID, s.ID)
	if err != nil {
		return err
	}
	if err := c.validateStore(s); err != nil {
		return err
	}
	if s.Subdomain != current.Subdomain {
		existing, err := c.store.StoreBySubdomain(ctx, s.TenantID, s.Subdomain)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "store", err)
		}
		if existing != nil && existing.ID != s.ID {
			return apperr.Field("store", "subdomain", "%q is already taken", s.Subdomain)
		}
	}
	return c.store.UpdateStore(ctx, s)
}

// DeleteStore removes a storefront. It refuses while products, categories
// or orders still reference the store.
func (c *Catalog) DeleteStore(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := c.requireStore(ctx, tenantID, id); err != nil {
		return err
	}
	for _, check := range []struct {
		name  string
		count func(context.Context, uuid.UUID, uuid.UUID) (int, error)
	}{
		{"products", c.store.CountProductsByStore},
		{"categories", c.store.CountCategoriesByStore},
		{"orders", c.store.CountOrdersByStore},
	} {
		n, err := check.count(ctx, tenantID, id)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "store", err)
		}
		if n > 0 {
			return apperr.New(apperr.IntegrityViolation, "store", "store has %d %s", n, check.name)
		}
	}
	return c.store.DeleteStore(ctx, tenantID, id)
}

// Store fetches a storefront by id.
func (c *Catalog) Store(ctx context.Context, tenantID, id uuid.UUID) (*model.Store, error) {
	return c.requireStore(ctx, tenantID, id)
}

// ListStores returns the tenant's storefronts.
func (c *Catalog) ListStores(ctx context.Context, tenantID uuid.UUID) ([]model.Store, error) {
	return c.store.ListStores(ctx, tenantID)
}

// CreateCategory adds a node to a store's category tree.
func (c *Catalog) CreateCategory(ctx context.Context, cat *model.Category) error {
	if err := required("category", "name", cat.Name, 200); err != nil {
		return err
	}
	if _, err := c.requireStore(ctx, cat.TenantID, cat.StoreID); err != nil {
		return err
	}
	if cat.ParentID != nil {
		parent, err := c.requireCategory(ctx, cat.TenantID, *cat.ParentID)
		if err != nil {
			return err
		}
		if parent.StoreID != cat.StoreID {
			return apperr.Field("category", "parent_id", "parent belongs to a different store")
		}
	}
	return c.store.CreateCategory(ctx, cat)
}

// UpdateCategory applies changes to a category. Re-parenting is rejected
// when it would introduce a cycle.
func (c *Catalog) UpdateCategory(ctx context.Context, cat *model.Category) error {
	if err := required("category", "name", cat.Name, 200); err != nil {
		return err
	}
	current, err := c.requireCategory(ctx, cat.TenantID, cat.ID)
	if err != nil {
		return err
	}
	// StoreID is immutable; moving a subtree across stores would strand
	// descendants.
	cat.StoreID = current.StoreID
	if cat.ParentID != nil {
		if *cat.ParentID == cat.ID {
			return apperr.Field("category", "parent_id", "category cannot be its own parent")
		}
		parent, err := c.requireCategory(ctx, cat.TenantID, *cat.ParentID)
		if err != nil {
			return err
		}
		if parent.StoreID != cat.StoreID {
			return apperr.Field("category", "parent_id", "parent belongs to a different store")
		}
		cyclic, err := c.wouldCycle(ctx, cat.TenantID, cat.ID, parent)
		if err != nil {
			return err
		}
		if cyclic {
			return apperr.Field("category", "parent_id", "re-parenting would create a cycle")
		}
	}
	return c.store.UpdateCategory(ctx, cat)
}

// wouldCycle walks from parent to the root and reports whether id is an
// ancestor of parent.
func (c *Catalog) wouldCycle(ctx context.Context, tenantID, id uuid.UUID, parent *model.Category) (bool, error) {
	node := parent
	for depth := 0; depth < maxCategoryDepth; depth++ {
		if node.ID == id {
			return true, nil
		}
		if node.ParentID == nil {
			return false, nil
		}
		next, err := c.store.CategoryByID(ctx, tenantID, *node.ParentID)
		if err != nil {
			return false, apperr.Wrap(apperr.Internal, "category", err)
		}
		if next == nil {
			return false, nil
		}
		node = next
	}
	return true, nil
}

// DeleteCategory removes a leaf category. Products in the category are
// detached, child categories block the delete.
func (c *Catalog) DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := c.requireCategory(ctx, tenantID, id); err != nil {
		return err
	}
	children, err := c.store.CountChildCategories(ctx, tenantID, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "category", err)
	}
	if children > 0 {
		return apperr.New(apperr.IntegrityViolation, "category", "category has %d child categories", children)
	}
	return c.store.DeleteCategory(ctx, tenantID, id)
}

// Category fetches a category by id.
func (c *Catalog) Category(ctx context.Context, tenantID, id uuid.UUID) (*model.Category, error) {
	return c.requireCategory(ctx, tenantID, id)
}

// ListCategories returns a store's categories.
func (c *Catalog) ListCategories(ctx context.Context, tenantID, storeID uuid.UUID) ([]model.Category, error) {
	return c.store.ListCategories(ctx, tenantID, storeID)
}

// CreateProduct adds a product to a store, enforcing the tenant's plan
// limit.
func (c *Catalog) CreateProduct(ctx context.Context, p *model.Product) error {
	if err := c.validateProduct(ctx, p); err != nil {
		return err
	}
	limit, err := c.productLimit(ctx, p.TenantID)
	if err != nil {
		return err
	}
	if limit > 0 {
		count, err := c.store.CountProductsByTenant(ctx, p.TenantID)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "product", err)
		}
		if count >= limit {
			return apperr.New(apperr.ValidationFailed, "product", "subscription plan allows at most %d products", limit)
		}
	}
	return c.store.CreateProduct(ctx, p)
}

// UpdateProduct applies changes to a product.
func (c *Catalog) UpdateProduct(ctx context.Context, p *model.Product) error {
	current, err := c.requireProduct(ctx, p.TenantID, p.ID)
	if err != nil {
		return err
	}
	p.StoreID = current.StoreID
	if err := c.validateProduct(ctx, p); err != nil {
		return err
	}
	return c.store.UpdateProduct(ctx, p)
}

// DeleteProduct removes a product. Variants, images and order lines that
// reference it block the delete.
func (c *Catalog) DeleteProduct(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := c.requireProduct(ctx, tenantID, id); err != nil {
		return err
	}
	for _, check := range []struct {
		name  string
		count func(context.Context, uuid.UUID, uuid.UUID) (int, error)
	}{
		{"variants", c.store.CountVariantsByProduct},
		{"images", c.store.CountImagesByProduct},
		{"order items", c.store.CountOrderItemsByProduct},
	} {
		n, err := check.count(ctx, tenantID, id)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "product", err)
		}
		if n > 0 {
			return apperr.New(apperr.IntegrityViolation, "product", "product has %d %s", n, check.name)
		}
	}
	return c.store.DeleteProduct(ctx, tenantID, id)
}

// Product fetches a product by id.
func (c *Catalog) Product(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error) {
	return c.requireProduct(ctx, tenantID, id)
}

// ListProducts returns a store's products.
func (c *Catalog) ListProducts(ctx context.Context, tenantID, storeID uuid.UUID) ([]model.Product, error) {
	return c.store.ListProducts(ctx, tenantID, storeID)
}

// CreateVariant adds a variant to a product.
func (c *Catalog) CreateVariant(ctx context.Context, v *model.ProductVariant) error {
	if err := c.validateVariant(v); err != nil {
		return err
	}
	if _, err := c.requireProduct(ctx, v.TenantID, v.ProductID); err != nil {
		return err
	}
	return c.store.CreateVariant(ctx, v)
}

// UpdateVariant applies changes to a variant.
func (c *Catalog) UpdateVariant(ctx context.Context, v *model.ProductVariant) error {
	current, err := c.requireVariant(ctx, v.TenantID, v.ID)
	if err != nil {
		return err
	}
	v.ProductID = current.ProductID
	if err := c.validateVariant(v); err != nil {
		return err
	}
	return c.store.UpdateVariant(ctx, v)
}

// DeleteVariant removes a variant. Options and order lines that reference
// it block the delete.
func (c *Catalog) DeleteVariant(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := c.requireVariant(ctx, tenantID, id); err != nil {
		return err
	}
	options, err := c.store.CountOptionsByVariant(ctx, tenantID, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "variant", err)
	}
	if options > 0 {
		return apperr.New(apperr.IntegrityViolation, "variant", "variant has %d options", options)
	}
	items, err := c.store.CountOrderItemsByVariant(ctx, tenantID, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "variant", err)
	}
	if items > 0 {
		return apperr.New(apperr.IntegrityViolation, "variant", "variant has %d order items", items)
	}
	return c.store.DeleteVariant(ctx, tenantID, id)
}

// Variant fetches a variant by id.
func (c *Catalog) Variant(ctx context.Context, tenantID, id uuid.UUID) (*model.ProductVariant, error) {
	return c.requireVariant(ctx, tenantID, id)
}

// ListVariants returns a product's variants.
func (c *Catalog) ListVariants(ctx context.Context, tenantID, productID uuid.UUID) ([]model.ProductVariant, error) {
	return c.store.ListVariants(ctx, tenantID, productID)
}

// CreateVariantOption adds an option axis to a variant.
func (c *Catalog) CreateVariantOption(ctx context.Context, o *model.ProductVariantOption) error {
	if err := required("variant option", "option_name", o.OptionName, 100); err != nil {
		return err
	}
	if err := required("variant option", "option_value", o.OptionValue, 100); err != nil {
		return err
	}
	if _, err := c.requireVariant(ctx, o.TenantID, o.ProductVariantID); err != nil {
		return err
	}
	return c.store.CreateVariantOption(ctx, o)
}

// ListVariantOptions returns a variant's options.
func (c *Catalog) ListVariantOptions(ctx context.Context, tenantID, variantID uuid.UUID) ([]model.ProductVariantOption, error) {
	return c.store.ListVariantOptions(ctx, tenantID, variantID)
}

// DeleteVariantOption removes an option.
func (c *Catalog) DeleteVariantOption(ctx context.Context, tenantID, id uuid.UUID) error {
	return c.store.DeleteVariantOption(ctx, tenantID, id)
}

// AddImage attaches an image to a product.
func (c *Catalog) AddImage(ctx context.Context, img *model.ProductImage) error {
	if err := required("image", "url", img.URL, 2000); err != nil {
		return err
	}
	if _, err := c.requireProduct(ctx, img.TenantID, img.ProductID); err != nil {
		return err
	}
	return c.store.CreateImage(ctx, img)
}

// ListImages returns a product's images.
func (c *Catalog) ListImages(ctx context.Context, tenantID, productID uuid.UUID) ([]model.ProductImage, error) {
	return c.store.ListImages(ctx, tenantID, productID)
}

// DeleteImage removes an image.
func (c *Catalog) DeleteImage(ctx context.Context, tenantID, id uuid.UUID) error {
	return c.store.DeleteImage(ctx, tenantID, id)
}

func (c *Catalog) validateStore(s *model.Store) error {
	if err := required("store", "name", s.Name, 200); err != nil {
		return err
	}
	if !isValidIdentifier(s.Subdomain) {
		return apperr.Field("store", "subdomain", "%q must be lowercase alphanumeric with inner hyphens", s.Subdomain)
	}
	if s.PrimaryColor != "" && !isValidHexColor(s.PrimaryColor) {
		return apperr.Field("store", "primary_color", "%q is not a hex color", s.PrimaryColor)
	}
	if s.SecondaryColor != "" && !isValidHexColor(s.SecondaryColor) {
		return apperr.Field("store", "secondary_color", "%q is not a hex color", s.SecondaryColor)
	}
	return nil
}

func (c *Catalog) validateProduct(ctx context.Context, p *model.Product) error {
	if err := required("product", "name", p.Name, 200); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return apperr.Field("product", "price", "must not be negative")
	}
	if p.Cost.IsNegative() {
		return apperr.Field("product", "cost", "must not be negative")
	}
	if p.StockQuantity < 0 {
		return apperr.Field("product", "stock_quantity", "must not be negative")
	}
	if _, err := c.requireStore(ctx, p.TenantID, p.StoreID); err != nil {
		return err
	}
	if p.CategoryID != nil {
		cat, err := c.requireCategory(ctx, p.TenantID, *p.CategoryID)
		if err != nil {
			return err
		}
		if cat.StoreID != p.StoreID {
			return apperr.Field("product", "category_id", "category belongs to a different store")
		}
	}
	return nil
}

func (c *Catalog) validateVariant(v *model.ProductVariant) error {
	if err := required("variant", "name", v.Name, 200); err != nil {
		return err
	}
	if v.Price.IsNegative() {
		return apperr.Field("variant", "price", "must not be negative")
	}
	if v.StockQuantity < 0 {
		return apperr.Field("variant", "stock_quantity", "must not be negative")
	}
	return nil
}

// productLimit resolves the tenant's plan product cap; zero means
// unlimited.
func (c *Catalog) productLimit(ctx context.Context, tenantID uuid.UUID) (int, error) {
	tenant, err := c.store.TenantByID(ctx, tenantID)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "tenant", err)
	}
	if tenant == nil {
		return 0, apperr.New(apperr.NotFound, "tenant", "tenant %s not found", tenantID)
	}
	plan, err := c.store.PlanByID(ctx, tenant.SubscriptionPlanID)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "plan", err)
	}
	if plan == nil {
		return 0, nil
	}
	return plan.MaxProducts, nil
}

func (c *Catalog) requireStore(ctx context.Context, tenantID, id uuid.UUID) (*model.Store, error) {
	s, err := c.store.StoreByID(ctx, tenantID, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "store", err)
	}
	if s == nil {
		return nil, apperr.New(apperr.NotFound, "store", "store %s not found", id)
	}
	return s, nil
}

func (c *Catalog) requireCategory(ctx context.Context, tenantID, id uuid.UUID) (*model.Category, error) {
	cat, err := c.store.CategoryByID(ctx, tenantID, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "category", err)
	}
	if cat == nil {
		return nil, apperr.New(apperr.NotFound, "category", "category %s not found", id)
	}
	return cat, nil
}

func (c *Catalog) requireProduct(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error) {
	p, err := c.store.ProductByID(ctx, tenantID, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "product", err)
	}
	if p == nil {
		return nil, apperr.New(apperr.NotFound, "product", "product %s not found", id)
	}
	return p, nil
}

func (c *Catalog) requireVariant(ctx context.Context, tenantID, id uuid.UUID) (*model.ProductVariant, error) {
	v, err := c.store.VariantByID(ctx, tenantID, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "variant", err)
	}
	if v == nil {
		return nil, apperr.New(apperr.NotFound, "variant", "variant %s not found", id)
	}
	return v, nil
}
