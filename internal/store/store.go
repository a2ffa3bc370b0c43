// Package store holds the repositories for the commerce entity graph. Two
// implementations exist: the postgres one used in production and an
// in-memory one used by tests and local development.
//
// Repository conventions: lookups return (nil, nil) when nothing matches;
// every tenant-scoped method takes the tenant id explicitly and never
// returns a row belonging to another tenant; compound writes (checkout,
// status transition, category delete with product detach, tenant delete
// with user detach) are atomic within a single method call.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/cartify-platform/commerce-core/internal/model"
)

// TenantStore persists the platform-level tenant registry.
type TenantStore interface {
	CreateTenant(ctx context.Context, t *model.Tenant) error
	TenantByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	TenantByIdentifier(ctx context.Context, identifier string) (*model.Tenant, error)
	ListTenants(ctx context.Context) ([]model.Tenant, error)
	UpdateTenant(ctx context.Context, t *model.Tenant) error
	// DeleteTenant hard-deletes a tenant and detaches its users
	// (tenant_id set to null) in the same transaction. Dependent rows
	// must have been ruled out by the caller; the schema restricts them
	// as a backstop.
	DeleteTenant(ctx context.Context, id uuid.UUID) error
	// TenantDependents counts rows that block a hard delete: stores,
	// categories, products, customers, orders and addresses.
	TenantDependents(ctx context.Context, id uuid.UUID) (int, error)
}

// PlanStore persists subscription plans.
type PlanStore interface {
	CreatePlan(ctx context.Context, p *model.SubscriptionPlan) error
	PlanByID(ctx context.Context, id uuid.UUID) (*model.SubscriptionPlan, error)
	ListPlans(ctx context.Context) ([]model.SubscriptionPlan, error)
	UpdatePlan(ctx context.Context, p *model.SubscriptionPlan) error
	DeletePlan(ctx context.Context, id uuid.UUID) error
	CountTenantsByPlan(ctx context.Context, planID uuid.UUID) (int, error)
}

// CatalogStore persists storefronts, the category tree and products with
// their variants, options and images.
type CatalogStore interface {
	CreateStore(ctx context.Context, s *model.Store) error
	StoreByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Store, error)
	StoreBySubdomain(ctx context.Context, tenantID uuid.UUID, subdomain string) (*model.Store, error)
	ListStores(ctx context.Context, tenantID uuid.UUID) ([]model.Store, error)
	UpdateStore(ctx context.Context, s *model.Store) error
	DeleteStore(ctx context.Context, tenantID, id uuid.UUID) error
	CountProductsByStore(ctx context.Context, tenantID, storeID uuid.UUID) (int, error)
	CountCategoriesByStore(ctx context.Context, tenantID, storeID uuid.UUID) (int, error)
	CountOrdersByStore(ctx context.Context, tenantID, storeID uuid.UUID) (int, error)

	CreateCategory(ctx context.Context, c *model.Category) error
	CategoryByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Category, error)
	ListCategories(ctx context.Context, tenantID, storeID uuid.UUID) ([]model.Category, error)
	UpdateCategory(ctx context.Context, c *model.Category) error
	// DeleteCategory removes the category and detaches its products
	// (category_id set to null) in the same transaction. Child
	// categories must have been ruled out by the caller.
	DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error
	CountChildCategories(ctx context.Context, tenantID, parentID uuid.UUID) (int, error)

	CreateProduct(ctx context.Context, p *model.Product) error
	ProductByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context, tenantID, storeID uuid.UUID) ([]model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, tenantID, id uuid.UUID) error
	CountVariantsByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int, error)
	CountImagesByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int, error)
	CountOrderItemsByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int, error)
	CountProductsByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)

	CreateVariant(ctx context.Context, v *model.ProductVariant) error
	VariantByID(ctx context.Context, tenantID, id uuid.UUID) (*model.ProductVariant, error)
	ListVariants(ctx context.Context, tenantID, productID uuid.UUID) ([]model.ProductVariant, error)
	UpdateVariant(ctx context.Context, v *model.ProductVariant) error
	DeleteVariant(ctx context.Context, tenantID, id uuid.UUID) error
	CountOptionsByVariant(ctx context.Context, tenantID, variantID uuid.UUID) (int, error)
	CountOrderItemsByVariant(ctx context.Context, tenantID, variantID uuid.UUID) (int, error)

	CreateVariantOption(ctx context.Context, o *model.ProductVariantOption) error
	ListVariantOptions(ctx context.Context, tenantID, variantID uuid.UUID) ([]model.ProductVariantOption, error)
	DeleteVariantOption(ctx context.Context, tenantID, id uuid.UUID) error

	CreateImage(ctx context.Context, img *model.ProductImage) error
	ListImages(ctx context.Context, tenantID, productID uuid.UUID) ([]model.ProductImage, error)
	DeleteImage(ctx context.Context, tenantID, id uuid.UUID) error
}

// CustomerStore persists shoppers and their addresses.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, c *model.Customer) error
	CustomerByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error)
	ListCustomers(ctx context.Context, tenantID uuid.UUID) ([]model.Customer, error)
	UpdateCustomer(ctx context.Context, c *model.Customer) error
	DeleteCustomer(ctx context.Context, tenantID, id uuid.UUID) error
	CountOrdersByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int, error)
	CountAddressesByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int, error)

	CreateAddress(ctx context.Context, a *model.Address) error
	AddressByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Address, error)
	ListAddressesByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]model.Address, error)
	ListAddressesByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]model.Address, error)
	UpdateAddress(ctx context.Context, a *model.Address) error
	// ClearOtherDefaultAddresses drops the default flag from the owner's
	// other addresses of the same type, so at most one stays default.
	ClearOtherDefaultAddresses(ctx context.Context, a *model.Address) error
	DeleteAddress(ctx context.Context, tenantID, id uuid.UUID) error
}

// StockAdjustment is one inventory delta applied inside a checkout
// transaction. Exactly one of ProductID or VariantID is set.
type StockAdjustment struct {
	ProductID *uuid.UUID
	VariantID *uuid.UUID
	Delta     int
}

// CheckoutWrite is the atomic unit committed at checkout: the order, its
// line items, the initial history row, the inventory decrements and the
// refreshed customer aggregates. Partial application is never observable.
type CheckoutWrite struct {
	Order    *model.Order
	Items    []model.OrderItem
	History  *model.OrderStatusHistory
	Stock    []StockAdjustment
	Customer *model.Customer
}

// OrderStore persists orders, line items and the append-only status
// history.
type OrderStore interface {
	// CreateOrder commits a CheckoutWrite as one transaction. It fails
	// with an integrity error when the order number is taken or a stock
	// adjustment would drive inventory negative.
	CreateOrder(ctx context.Context, w CheckoutWrite) error
	OrderByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Order, error)
	OrderByNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	ListOrders(ctx context.Context, tenantID, storeID uuid.UUID) ([]model.Order, error)
	OrderItems(ctx context.Context, tenantID, orderID uuid.UUID) ([]model.OrderItem, error)
	// OrderHistory returns history rows in ascending status-date order.
	OrderHistory(ctx context.Context, tenantID, orderID uuid.UUID) ([]model.OrderStatusHistory, error)
	// UpdateOrderStatus persists the mutated order and appends one
	// history row in the same transaction. It never rewrites history.
	UpdateOrderStatus(ctx context.Context, o *model.Order, h *model.OrderStatusHistory) error
	UpdateOrder(ctx context.Context, o *model.Order) error
	CountOrdersByTenantUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// UserStore persists staff accounts, roles and permissions.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsersByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	CountTenantsOwnedBy(ctx context.Context, userID uuid.UUID) (int, error)
	CountAddressesByUser(ctx context.Context, userID uuid.UUID) (int, error)
	CountStatusHistoriesByUser(ctx context.Context, userID uuid.UUID) (int, error)

	CreateRole(ctx context.Context, r *model.Role) error
	RoleByID(ctx context.Context, id uuid.UUID) (*model.Role, error)
	ListRoles(ctx context.Context) ([]model.Role, error)
	DeleteRole(ctx context.Context, id uuid.UUID) error
	CountUsersByRole(ctx context.Context, roleID uuid.UUID) (int, error)

	CreateRolePermission(ctx context.Context, p *model.RolePermission) error
	ListRolePermissions(ctx context.Context, roleID uuid.UUID) ([]model.RolePermission, error)
	DeleteRolePermission(ctx context.Context, id uuid.UUID) error
}

// Store aggregates every repository behind one handle.
type Store interface {
	TenantStore
	PlanStore
	CatalogStore
	CustomerStore
	OrderStore
	UserStore
}
