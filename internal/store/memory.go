package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cartify-platform/commerce-core/internal/apperr"
	"github.com/cartify-platform/commerce-core/internal/model"
)

// Memory is an in-memory Store used by the test suite and for local
// development without postgres. One mutex guards all state, so every
// compound write is trivially atomic. Returned rows are copies; mutating
// them does not touch stored state.
type Memory struct {
	mu sync.RWMutex

	tenants    map[uuid.UUID]model.Tenant
	plans      map[uuid.UUID]model.SubscriptionPlan
	stores     map[uuid.UUID]model.Store
	categories map[uuid.UUID]model.Category
	products   map[uuid.UUID]model.Product
	variants   map[uuid.UUID]model.ProductVariant
	options    map[uuid.UUID]model.ProductVariantOption
	images     map[uuid.UUID]model.ProductImage
	customers  map[uuid.UUID]model.Customer
	addresses  map[uuid.UUID]model.Address
	orders     map[uuid.UUID]model.Order
	items      map[uuid.UUID]model.OrderItem
	history    map[uuid.UUID]model.OrderStatusHistory
	users      map[uuid.UUID]model.User
	roles      map[uuid.UUID]model.Role
	perms      map[uuid.UUID]model.RolePermission
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tenants:    make(map[uuid.UUID]model.Tenant),
		plans:      make(map[uuid.UUID]model.SubscriptionPlan),
		stores:     make(map[uuid.UUID]model.Store),
		categories: make(map[uuid.UUID]model.Category),
		products:   make(map[uuid.UUID]model.Product),
		variants:   make(map[uuid.UUID]model.ProductVariant),
		options:    make(map[uuid.UUID]model.ProductVariantOption),
		images:     make(map[uuid.UUID]model.ProductImage),
		customers:  make(map[uuid.UUID]model.Customer),
		addresses:  make(map[uuid.UUID]model.Address),
		orders:     make(map[uuid.UUID]model.Order),
		items:      make(map[uuid.UUID]model.OrderItem),
		history:    make(map[uuid.UUID]model.OrderStatusHistory),
		users:      make(map[uuid.UUID]model.User),
		roles:      make(map[uuid.UUID]model.Role),
		perms:      make(map[uuid.UUID]model.RolePermission),
	}
}

var _ Store = (*Memory)(nil)

func stamp(id *uuid.UUID, createdAt, updatedAt *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := time.Now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

// --- tenants ---

func (m *Memory) CreateTenant(ctx context.Context, t *model.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tenants {
		if strings.EqualFold(existing.Identifier, t.Identifier) {
			return apperr.New(apperr.IntegrityViolation, "tenant", "identifier %q already exists", t.Identifier)
		}
	}
	stamp(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	m.tenants[t.ID] = *t
	return nil
}

func (m *Memory) TenantByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tenants[id]; ok {
		c := t
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) TenantByIdentifier(ctx context.Context, identifier string) (*model.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tenants {
		if strings.EqualFold(t.Identifier, identifier) {
			c := t
			return &c, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListTenants(ctx context.Context) ([]model.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateTenant(ctx context.Context, t *model.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenants[t.ID]; !ok {
		return apperr.New(apperr.NotFound, "tenant", "%s", t.ID)
	}
	for id, existing := range m.tenants {
		if id != t.ID && strings.EqualFold(existing.Identifier, t.Identifier) {
			return apperr.New(apperr.IntegrityViolation, "tenant", "identifier %q already exists", t.Identifier)
		}
	}
	t.UpdatedAt = time.Now()
	m.tenants[t.ID] = *t
	return nil
}

func (m *Memory) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenants[id]; !ok {
		return apperr.New(apperr.NotFound, "tenant", "%s", id)
	}
	if n := m.tenantDependentsLocked(id); n > 0 {
		return apperr.New(apperr.IntegrityViolation, "tenant", "%d dependent rows", n)
	}
	// Users become platform-level, same transaction as the delete.
	for uid, u := range m.users {
		if u.TenantID != nil && *u.TenantID == id {
			u.TenantID = nil
			u.UpdatedAt = time.Now()
			m.users[uid] = u
		}
	}
	delete(m.tenants, id)
	return nil
}

func (m *Memory) TenantDependents(ctx context.Context, id uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tenantDependentsLocked(id), nil
}

func (m *Memory) tenantDependentsLocked(id uuid.UUID) int {
	n := 0
	for _, s := range m.stores {
		if s.TenantID == id {
			n++
		}
	}
	for _, c := range m.categories {
		if c.TenantID == id {
			n++
		}
	}
	for _, p := range m.products {
		if p.TenantID == id {
			n++
		}
	}
	for _, c := range m.customers {
		if c.TenantID == id {
			n++
		}
	}
	for _, o := range m.orders {
		if o.TenantID == id {
			n++
		}
	}
	for _, a := range m.addresses {
		if a.TenantID == id {
			n++
		}
	}
	return n
}

// --- plans ---

func (m *Memory) CreatePlan(ctx context.Context, p *model.SubscriptionPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	m.plans[p.ID] = *p
	return nil
}

func (m *Memory) PlanByID(ctx context.Context, id uuid.UUID) (*model.SubscriptionPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.plans[id]; ok {
		c := p
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) ListPlans(ctx context.Context) ([]model.SubscriptionPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.SubscriptionPlan, 0, len(m.plans))
	for _, p := range m.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdatePlan(ctx context.Context, p *model.SubscriptionPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[p.ID]; !ok {
		return apperr.New(apperr.NotFound, "subscription_plan", "%s", p.ID)
	}
	p.UpdatedAt = time.Now()
	m.plans[p.ID] = *p
	return nil
}

func (m *Memory) DeletePlan(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[id]; !ok {
		return apperr.New(apperr.NotFound, "subscription_plan", "%s", id)
	}
	delete(m.plans, id)
	return nil
}

func (m *Memory) CountTenantsByPlan(ctx context.Context, planID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, t := range m.tenants {
		if t.SubscriptionPlanID == planID {
			n++
		}
	}
	return n, nil
}

// --- storefronts ---

func (m *Memory) CreateStore(ctx context.Context, s *model.Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.stores {
		if existing.TenantID == s.TenantID && strings.EqualFold(existing.Subdomain, s.Subdomain) {
			return apperr.New(apperr.IntegrityViolation, "store", "subdomain %q already exists for tenant", s.Subdomain)
		}
	}
	stamp(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	m.stores[s.ID] = *s
	return nil
}

func (m *Memory) StoreByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.stores[id]; ok && s.TenantID == tenantID {
		c := s
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) StoreBySubdomain(ctx context.Context, tenantID uuid.UUID, subdomain string) (*model.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.stores {
		if s.TenantID == tenantID && strings.EqualFold(s.Subdomain, subdomain) {
			c := s
			return &c, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListStores(ctx context.Context, tenantID uuid.UUID) ([]model.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Store
	for _, s := range m.stores {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateStore(ctx context.Context, s *model.Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.stores[s.ID]
	if !ok || existing.TenantID != s.TenantID {
		return apperr.New(apperr.NotFound, "store", "%s", s.ID)
	}
	for id, other := range m.stores {
		if id != s.ID && other.TenantID == s.TenantID && strings.EqualFold(other.Subdomain, s.Subdomain) {
			return apperr.New(apperr.IntegrityViolation, "store", "subdomain %q already exists for tenant", s.Subdomain)
		}
	}
	s.UpdatedAt = time.Now()
	m.stores[s.ID] = *s
	return nil
}

func (m *Memory) DeleteStore(ctx context.Context, tenantID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[id]
	if !ok || s.TenantID != tenantID {
		return apperr.New(apperr.NotFound, "store", "%s", id)
	}
	delete(m.stores, id)
	return nil
}

func (m *Memory) CountProductsByStore(ctx context.Context, tenantID, storeID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.products {
		if p.TenantID == tenantID && p.StoreID == storeID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountCategoriesByStore(ctx context.Context, tenantID, storeID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.categories {
		if c.TenantID == tenantID && c.StoreID == storeID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountOrdersByStore(ctx context.Context, tenantID, storeID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, o := range m.orders {
		if o.TenantID == tenantID && o.StoreID == storeID {
			n++
		}
	}
	return n, nil
}

// --- categories ---

func (m *Memory) CreateCategory(ctx context.Context, c *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	m.categories[c.ID] = *c
	return nil
}

func (m *Memory) CategoryByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.categories[id]; ok && c.TenantID == tenantID {
		cp := c
		return &cp, nil
	}
	return nil, nil
}

func (m *Memory) ListCategories(ctx context.Context, tenantID, storeID uuid.UUID) ([]model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Category
	for _, c := range m.categories {
		if c.TenantID == tenantID && c.StoreID == storeID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) UpdateCategory(ctx context.Context, c *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.categories[c.ID]
	if !ok || existing.TenantID != c.TenantID {
		return apperr.New(apperr.NotFound, "category", "%s", c.ID)
	}
	c.UpdatedAt = time.Now()
	m.categories[c.ID] = *c
	return nil
}

func (m *Memory) DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok || c.TenantID != tenantID {
		return apperr.New(apperr.NotFound, "category", "%s", id)
	}
	// Detach products in the same critical section as the delete.
	for pid, p := range m.products {
		if p.TenantID == tenantID && p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			p.UpdatedAt = time.Now()
			m.products[pid] = p
		}
	}
	delete(m.categories, id)
	return nil
}

func (m *Memory) CountChildCategories(ctx context.Context, tenantID, parentID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.categories {
		if c.TenantID == tenantID && c.ParentID != nil && *c.ParentID == parentID {
			n++
		}
	}
	return n, nil
}

// --- products ---

func (m *Memory) CreateProduct(ctx context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	m.products[p.ID] = *p
	return nil
}

func (m *Memory) ProductByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.products[id]; ok && p.TenantID == tenantID {
		c := p
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) ListProducts(ctx context.Context, tenantID, storeID uuid.UUID) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Product
	for _, p := range m.products {
		if p.TenantID == tenantID && p.StoreID == storeID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateProduct(ctx context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.products[p.ID]
	if !ok || existing.TenantID != p.TenantID {
		return apperr.New(apperr.NotFound, "product", "%s", p.ID)
	}
	p.UpdatedAt = time.Now()
	m.products[p.ID] = *p
	return nil
}

func (m *Memory) DeleteProduct(ctx context.Context, tenantID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || p.TenantID != tenantID {
		return apperr.New(apperr.NotFound, "product", "%s", id)
	}
	delete(m.products, id)
	return nil
}

func (m *Memory) CountVariantsByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, v := range m.variants {
		if v.TenantID == tenantID && v.ProductID == productID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountImagesByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, img := range m.images {
		if img.TenantID == tenantID && img.ProductID == productID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountOrderItemsByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, it := range m.items {
		if it.TenantID == tenantID && it.ProductID != nil && *it.ProductID == productID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountProductsByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.products {
		if p.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

// --- variants, options, images ---

func (m *Memory) CreateVariant(ctx context.Context, v *model.ProductVariant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	m.variants[v.ID] = *v
	return nil
}

func (m *Memory) VariantByID(ctx context.Context, tenantID, id uuid.UUID) (*model.ProductVariant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.variants[id]; ok && v.TenantID == tenantID {
		c := v
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) ListVariants(ctx context.Context, tenantID, productID uuid.UUID) ([]model.ProductVariant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.ProductVariant
	for _, v := range m.variants {
		if v.TenantID == tenantID && v.ProductID == productID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateVariant(ctx context.Context, v *model.ProductVariant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.variants[v.ID]
	if !ok || existing.TenantID != v.TenantID {
		return apperr.New(apperr.NotFound, "product_variant", "%s", v.ID)
	}
	v.UpdatedAt = time.Now()
	m.variants[v.ID] = *v
	return nil
}

func (m *Memory) DeleteVariant(ctx context.Context, tenantID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.variants[id]
	if !ok || v.TenantID != tenantID {
		return apperr.New(apperr.NotFound, "product_variant", "%s", id)
	}
	delete(m.variants, id)
	return nil
}

func (m *Memory) CountOptionsByVariant(ctx context.Context, tenantID, variantID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, o := range m.options {
		if o.TenantID == tenantID && o.ProductVariantID == variantID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountOrderItemsByVariant(ctx context.Context, tenantID, variantID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, it := range m.items {
		if it.TenantID == tenantID && it.ProductVariantID != nil && *it.ProductVariantID == variantID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CreateVariantOption(ctx context.Context, o *model.ProductVariantOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	m.options[o.ID] = *o
	return nil
}

func (m *Memory) ListVariantOptions(ctx context.Context, tenantID, variantID uuid.UUID) ([]model.ProductVariantOption, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.ProductVariantOption
	for _, o := range m.options {
		if o.TenantID == tenantID && o.ProductVariantID == variantID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) DeleteVariantOption(ctx context.Context, tenantID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.options[id]
	if !ok || o.TenantID != tenantID {
		return apperr.New(apperr.NotFound, "product_variant_option", "%s", id)
	}
	delete(m.options, id)
	return nil
}

func (m *Memory) CreateImage(ctx context.Context, img *model.ProductImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&img.ID, &img.CreatedAt, &img.UpdatedAt)
	m.images[img.ID] = *img
	return nil
}

func (m *Memory) ListImages(ctx context.Context, tenantID, productID uuid.UUID) ([]model.ProductImage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.ProductImage
	for _, img := range m.images {
		if img.TenantID == tenantID && img.ProductID == productID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) DeleteImage(ctx context.Context, tenantID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[id]
	if !ok || img.TenantID != tenantID {
		return apperr.New(apperr.NotFound, "product_image", "%s", id)
	}
	delete(m.images, id)
	return nil
}

// --- customers and addresses ---

func (m *Memory) CreateCustomer(ctx context.Context, c *model.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	m.customers[c.ID] = *c
	return nil
}

func (m *Memory) CustomerByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.customers[id]; ok && c.TenantID == tenantID {
		cp := c
		return &cp, nil
	}
	return nil, nil
}

func (m *Memory) ListCustomers(ctx context.Context, tenantID uuid.UUID) ([]model.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Customer
	for _, c := range m.customers {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateCustomer(ctx context.Context, c *model.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.customers[c.ID]
	if !ok || existing.TenantID != c.TenantID {
		return apperr.New(apperr.NotFound, "customer", "%s", c.ID)
	}
	c.UpdatedAt = time.Now()
	m.customers[c.ID] = *c
	return nil
}

func (m *Memory) DeleteCustomer(ctx context.Context, tenantID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok || c.TenantID != tenantID {
		return apperr.New(apperr.NotFound, "customer", "%s", id)
	}
	delete(m.customers, id)
	return nil
}

func (m *Memory) CountOrdersByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, o := range m.orders {
		if o.TenantID == tenantID && o.CustomerID != nil && *o.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountAddressesByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.addresses {
		if a.TenantID == tenantID && a.CustomerID != nil && *a.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CreateAddress(ctx context.Context, a *model.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	m.addresses[a.ID] = *a
	return nil
}

func (m *Memory) AddressByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.addresses[id]; ok && a.TenantID == tenantID {
		c := a
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) ListAddressesByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]model.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Address
	for _, a := range m.addresses {
		if a.TenantID == tenantID && a.CustomerID != nil && *a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListAddressesByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]model.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Address
	for _, a := range m.addresses {
		if a.TenantID == tenantID && a.UserID != nil && *a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateAddress(ctx context.Context, a *model.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.addresses[a.ID]
	if !ok || existing.TenantID != a.TenantID {
		return apperr.New(apperr.NotFound, "address", "%s", a.ID)
	}
	a.UpdatedAt = time.Now()
	m.addresses[a.ID] = *a
	return nil
}

func (m *Memory) ClearOtherDefaultAddresses(ctx context.Context, a *model.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, other := range m.addresses {
		if id == a.ID || other.TenantID != a.TenantID || other.Type != a.Type || !other.IsDefault {
			continue
		}
		if !sameOwner(other.CustomerID, a.CustomerID) || !sameOwner(other.UserID, a.UserID) {
			continue
		}
		other.IsDefault = false
		other.UpdatedAt = time.Now()
		m.addresses[id] = other
	}
	return nil
}

func sameOwner(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (m *Memory) DeleteAddress(ctx context.Context, tenantID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.addresses[id]
	if !ok || a.TenantID != tenantID {
		return apperr.New(apperr.NotFound, "address", "%s", id)
	}
	delete(m.addresses, id)
	return nil
}

// --- orders ---

func (m *Memory) CreateOrder(ctx context.Context, w CheckoutWrite) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, o := range m.orders {
		if o.OrderNumber == w.Order.OrderNumber {
			return apperr.New(apperr.IntegrityViolation, "order", "order number %q already exists", w.Order.OrderNumber)
		}
	}

	// Validate stock before touching anything; duplicate lines against one
	// target are summed so the check sees the combined draw. The lock makes
	// the whole write atomic.
	variantDelta := make(map[uuid.UUID]int)
	productDelta := make(map[uuid.UUID]int)
	for _, adj := range w.Stock {
		if adj.VariantID != nil {
			variantDelta[*adj.VariantID] += adj.Delta
		} else if adj.ProductID != nil {
			productDelta[*adj.ProductID] += adj.Delta
		}
	}
	for id, delta := range variantDelta {
		v, ok := m.variants[id]
		if !ok {
			return apperr.New(apperr.NotFound, "product_variant", "%s", id)
		}
		if v.StockQuantity+delta < 0 {
			return apperr.New(apperr.IntegrityViolation, "product_variant", "insufficient stock for %s", v.Name)
		}
	}
	for id, delta := range productDelta {
		p, ok := m.products[id]
		if !ok {
			return apperr.New(apperr.NotFound, "product", "%s", id)
		}
		if p.StockQuantity+delta < 0 {
			return apperr.New(apperr.IntegrityViolation, "product", "insufficient stock for %s", p.Name)
		}
	}

	stamp(&w.Order.ID, &w.Order.CreatedAt, &w.Order.UpdatedAt)
	m.orders[w.Order.ID] = *w.Order

	for i := range w.Items {
		it := &w.Items[i]
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		it.OrderID = w.Order.ID
		if it.CreatedAt.IsZero() {
			it.CreatedAt = time.Now()
		}
		m.items[it.ID] = *it
	}

	h := w.History
	h.OrderID = w.Order.ID
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	m.history[h.ID] = *h

	for _, adj := range w.Stock {
		if adj.VariantID != nil {
			v := m.variants[*adj.VariantID]
			v.StockQuantity += adj.Delta
			v.UpdatedAt = time.Now()
			m.variants[*adj.VariantID] = v
		} else if adj.ProductID != nil {
			p := m.products[*adj.ProductID]
			p.StockQuantity += adj.Delta
			p.UpdatedAt = time.Now()
			m.products[*adj.ProductID] = p
		}
	}

	if w.Customer != nil {
		w.Customer.UpdatedAt = time.Now()
		m.customers[w.Customer.ID] = *w.Customer
	}
	return nil
}

func (m *Memory) OrderByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if o, ok := m.orders[id]; ok && o.TenantID == tenantID {
		c := o
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) OrderByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.OrderNumber == orderNumber {
			c := o
			return &c, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListOrders(ctx context.Context, tenantID, storeID uuid.UUID) ([]model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Order
	for _, o := range m.orders {
		if o.TenantID == tenantID && o.StoreID == storeID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) OrderItems(ctx context.Context, tenantID, orderID uuid.UUID) ([]model.OrderItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.OrderItem
	for _, it := range m.items {
		if it.TenantID == tenantID && it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) OrderHistory(ctx context.Context, tenantID, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.OrderStatusHistory
	for _, h := range m.history {
		if h.TenantID == tenantID && h.OrderID == orderID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StatusDate.Equal(out[j].StatusDate) {
			return out[i].StatusDate.Before(out[j].StatusDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) UpdateOrderStatus(ctx context.Context, o *model.Order, h *model.OrderStatusHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.orders[o.ID]
	if !ok || existing.TenantID != o.TenantID {
		return apperr.New(apperr.NotFound, "order", "%s", o.ID)
	}
	o.UpdatedAt = time.Now()
	m.orders[o.ID] = *o

	h.OrderID = o.ID
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	m.history[h.ID] = *h
	return nil
}

func (m *Memory) UpdateOrder(ctx context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.orders[o.ID]
	if !ok || existing.TenantID != o.TenantID {
		return apperr.New(apperr.NotFound, "order", "%s", o.ID)
	}
	o.UpdatedAt = time.Now()
	m.orders[o.ID] = *o
	return nil
}

func (m *Memory) CountOrdersByTenantUser(ctx context.Context, userID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, o := range m.orders {
		if o.UserID != nil && *o.UserID == userID {
			n++
		}
	}
	return n, nil
}

// --- users, roles, permissions ---

func (m *Memory) CreateUser(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return apperr.New(apperr.IntegrityViolation, "user", "email %q already exists", u.Email)
		}
	}
	stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) UserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		c := u
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			c := u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListUsersByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.User
	for _, u := range m.users {
		if u.TenantID != nil && *u.TenantID == tenantID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateUser(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return apperr.New(apperr.NotFound, "user", "%s", u.ID)
	}
	u.UpdatedAt = time.Now()
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) DeleteUser(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return apperr.New(apperr.NotFound, "user", "%s", id)
	}
	delete(m.users, id)
	return nil
}

func (m *Memory) CountTenantsOwnedBy(ctx context.Context, userID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, t := range m.tenants {
		if t.OwnerID == userID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountAddressesByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.addresses {
		if a.UserID != nil && *a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountStatusHistoriesByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, h := range m.history {
		if h.UserID != nil && *h.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CreateRole(ctx context.Context, r *model.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.roles {
		if strings.EqualFold(existing.Name, r.Name) {
			return apperr.New(apperr.IntegrityViolation, "role", "name %q already exists", r.Name)
		}
	}
	stamp(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	m.roles[r.ID] = *r
	return nil
}

func (m *Memory) RoleByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.roles[id]; ok {
		c := r
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) ListRoles(ctx context.Context) ([]model.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) DeleteRole(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[id]; !ok {
		return apperr.New(apperr.NotFound, "role", "%s", id)
	}
	for _, p := range m.perms {
		if p.RoleID == id {
			return apperr.New(apperr.IntegrityViolation, "role", "role has permissions")
		}
	}
	delete(m.roles, id)
	return nil
}

func (m *Memory) CountUsersByRole(ctx context.Context, roleID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, u := range m.users {
		if u.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CreateRolePermission(ctx context.Context, p *model.RolePermission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	m.perms[p.ID] = *p
	return nil
}

func (m *Memory) ListRolePermissions(ctx context.Context, roleID uuid.UUID) ([]model.RolePermission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.RolePermission
	for _, p := range m.perms {
		if p.RoleID == roleID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) DeleteRolePermission(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.perms[id]; !ok {
		return apperr.New(apperr.NotFound, "role_permission", "%s", id)
	}
	delete(m.perms, id)
	return nil
}
