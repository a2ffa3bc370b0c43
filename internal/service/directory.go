package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cartify-platform/commerce-core/internal/apperr"
	"github.com/cartify-platform/commerce-core/internal/model"
	"github.com/cartify-platform/commerce-core/internal/monitoring"
	"github.com/cartify-platform/commerce-core/internal/store"
)

// Directory manages the platform-level tenant registry and subscription
// plans. All storefront requests pass through Resolve before any
// tenant-scoped work happens.
type Directory struct {
	store   store.Store
	onboard chan<- uuid.UUID
}

// NewDirectory returns a Directory backed by st. When onboard is non-nil,
// newly created tenants are queued on it for background provisioning.
func NewDirectory(st store.Store, onboard chan<- uuid.UUID) *Directory {
	return &Directory{store: st, onboard: onboard}
}

// Resolve looks up the tenant for a request identifier and checks that it
// is serviceable. It distinguishes unknown, deactivated and expired
// tenants so callers can map each to a different response.
func (d *Directory) Resolve(ctx context.Context, identifier string) (*model.Tenant, error) {
	identifier = strings.ToLower(identifier)
	tenant, err := d.store.TenantByIdentifier(ctx, identifier)
	if err != nil {
		log.Error().Err(err).Str("identifier", identifier).Msg("Failed to resolve tenant")
		monitoring.TenantResolutions.WithLabelValues("error").Inc()
		return nil, apperr.Wrap(apperr.Internal, "tenant", err)
	}
	if tenant == nil {
		monitoring.TenantResolutions.WithLabelValues("not_found").Inc()
		return nil, apperr.New(apperr.NotFound, "tenant", "unknown tenant %q", identifier)
	}
	if !tenant.IsActive {
		monitoring.TenantResolutions.WithLabelValues("inactive").Inc()
		return nil, apperr.New(apperr.Inactive, "tenant", "tenant %q is deactivated", identifier)
	}
	if tenant.SubscriptionExpired(time.Now().UTC()) {
		monitoring.TenantResolutions.WithLabelValues("expired").Inc()
		return nil, apperr.New(apperr.Expired, "tenant", "subscription for tenant %q has expired", identifier)
	}
	monitoring.TenantResolutions.WithLabelValues("ok").Inc()
	return tenant, nil
}

// CreateTenant registers a new tenant and queues it for onboarding.
func (d *Directory) CreateTenant(ctx context.Context, tenant *model.Tenant) error {
	tenant.Identifier = strings.ToLower(tenant.Identifier)
	if err := d.validateTenant(ctx, tenant); err != nil {
		return err
	}
	existing, err := d.store.TenantByIdentifier(ctx, tenant.Identifier)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "tenant", err)
	}
	if existing != nil {
		return apperr.Field("tenant", "identifier", "%q is already taken", tenant.Identifier)
	}
	if err := d.store.CreateTenant(ctx, tenant); err != nil {
		log.Error().Err(err).Str("identifier", tenant.Identifier).Msg("Failed to create tenant")
		return err
	}
	log.Info().Str("tenant_id", tenant.ID.String()).Str("identifier", tenant.Identifier).Msg("Tenant created")
	if d.onboard != nil {
		d.onboard <- tenant.ID
	}
	return nil
}

// UpdateTenant applies changes to an existing tenant. The identifier may
// change as long as it stays unique.
func (d *Directory) UpdateTenant(ctx context.Context, tenant *model.Tenant) error {
	tenant.Identifier = strings.ToLower(tenant.Identifier)
	current, err := d.requireTenant(ctx, tenant.ID)
	if err != nil {
		return err
	}
	if err := d.validateTenant(ctx, tenant); err != nil {
		return err
	}
	if tenant.Identifier != current.Identifier {
		existing, err := d.store.TenantByIdentifier(ctx, tenant.Identifier)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "tenant", err)
		}
		if existing != nil && existing.ID != tenant.ID {
			return apperr.Field("tenant", "identifier", "%q is already taken", tenant.Identifier)
		}
	}
	return d.store.UpdateTenant(ctx, tenant)
}

// Deactivate soft-deletes a tenant. Its data stays in place and Resolve
// starts rejecting its identifier.
func (d *Directory) Deactivate(ctx context.Context, id uuid.UUID) error {
	tenant, err := d.requireTenant(ctx, id)
	if err != nil {
		return err
	}
	if !tenant.IsActive {
		return nil
	}
	tenant.IsActive = false
	return d.store.UpdateTenant(ctx, tenant)
}

// Reactivate re-enables a deactivated tenant.
func (d *Directory) Reactivate(ctx context.Context, id uuid.UUID) error {
	tenant, err := d.requireTenant(ctx, id)
	if err != nil {
		return err
	}
	if tenant.IsActive {
		return nil
	}
	tenant.IsActive = true
	return d.store.UpdateTenant(ctx, tenant)
}

// DeleteTenant permanently removes a tenant. It refuses while any stores,
// products, customers or orders still reference the tenant; users owned
// by the tenant are detached, not deleted.
func (d *Directory) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	if _, err := d.requireTenant(ctx, id); err != nil {
		return err
	}
	dependents, err := d.store.TenantDependents(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "tenant", err)
	}
	if dependents > 0 {
		return apperr.New(apperr.IntegrityViolation, "tenant", "tenant has %d dependent records", dependents)
	}
	if err := d.store.DeleteTenant(ctx, id); err != nil {
		return err
	}
	log.Info().Str("tenant_id", id.String()).Msg("Tenant deleted")
	return nil
}

// Tenant fetches a tenant by id.
func (d *Directory) Tenant(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	return d.requireTenant(ctx, id)
}

// ListTenants returns all registered tenants.
func (d *Directory) ListTenants(ctx context.Context) ([]model.Tenant, error) {
	return d.store.ListTenants(ctx)
}

// CreatePlan registers a subscription plan.
func (d *Directory) CreatePlan(ctx context.Context, plan *model.SubscriptionPlan) error {
	if err := required("plan", "name", plan.Name, 100); err != nil {
		return err
	}
	if plan.Price.IsNegative() {
		return apperr.Field("plan", "price", "must not be negative")
	}
	return d.store.CreatePlan(ctx, plan)
}

// UpdatePlan applies changes to a plan.
func (d *Directory) UpdatePlan(ctx context.Context, plan *model.SubscriptionPlan) error {
	if err := required("plan", "name", plan.Name, 100); err != nil {
		return err
	}
	if plan.Price.IsNegative() {
		return apperr.Field("plan", "price", "must not be negative")
	}
	existing, err := d.store.PlanByID(ctx, plan.ID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "plan", err)
	}
	if existing == nil {
		return apperr.New(apperr.NotFound, "plan", "plan %s not found", plan.ID)
	}
	return d.store.UpdatePlan(ctx, plan)
}

// DeletePlan removes a plan. It refuses while any tenant subscribes to it.
func (d *Directory) DeletePlan(ctx context.Context, id uuid.UUID) error {
	count, err := d.store.CountTenantsByPlan(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "plan", err)
	}
	if count > 0 {
		return apperr.New(apperr.IntegrityViolation, "plan", "%d tenants subscribe to this plan", count)
	}
	return d.store.DeletePlan(ctx, id)
}

// Plan fetches a plan by id.
func (d *Directory) Plan(ctx context.Context, id uuid.UUID) (*model.SubscriptionPlan, error) {
	plan, err := d.store.PlanByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "plan", err)
	}
	if plan == nil {
		return nil, apperr.New(apperr.NotFound, "plan", "plan %s not found", id)
	}
	return plan, nil
}

// ListPlans returns all subscription plans.
func (d *Directory) ListPlans(ctx context.Context) ([]model.SubscriptionPlan, error) {
	return d.store.ListPlans(ctx)
}

func (d *Directory) requireTenant(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	tenant, err := d.store.TenantByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "tenant", err)
	}
	if tenant == nil {
		return nil, apperr.New(apperr.NotFound, "tenant", "tenant %s not found", id)
	}
	return tenant, nil
}

func (d *Directory) validateTenant(ctx context.Context, tenant *model.Tenant) error {
	if err := required("tenant", "name", tenant.Name, 200); err != nil {
		return err
	}
	if !isValidIdentifier(tenant.Identifier) {
		return apperr.Field("tenant", "identifier", "%q must be lowercase alphanumeric with inner hyphens", tenant.Identifier)
	}
	if tenant.PrimaryColor != "" && !isValidHexColor(tenant.PrimaryColor) {
		return apperr.Field("tenant", "primary_color", "%q is not a hex color", tenant.PrimaryColor)
	}
	if tenant.SecondaryColor != "" && !isValidHexColor(tenant.SecondaryColor) {
		return apperr.Field("tenant", "secondary_color", "%q is not a hex color", tenant.SecondaryColor)
	}
	if _, err := d.Plan(ctx, tenant.SubscriptionPlanID); err != nil {
		return err
	}
	owner, err := d.store.UserByID(ctx, tenant.OwnerID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "tenant", err)
	}
	if owner == nil {
		return apperr.Field("tenant", "owner_id", "user %s not found", tenant.OwnerID)
	}
	return nil
}
