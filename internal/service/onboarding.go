package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cartify-platform/commerce-core/internal/model"
	"github.com/cartify-platform/commerce-core/internal/monitoring"
	"github.com/cartify-platform/commerce-core/internal/store"
)

// Onboarding seeds freshly created tenants with their default storefront
// in the background.
type Onboarding struct {
	store   store.Store
	pending chan uuid.UUID
}

// NewOnboarding creates an Onboarding service and starts its worker.
func NewOnboarding(st store.Store) *Onboarding {
	o := &Onboarding{
		store:   st,
		pending: make(chan uuid.UUID, 10),
	}
	go o.startWorker()
	return o
}

// Queue returns the channel new tenant ids are enqueued on.
func (o *Onboarding) Queue() chan<- uuid.UUID {
	return o.pending
}

// Enqueue schedules a tenant for onboarding.
func (o *Onboarding) Enqueue(tenantID uuid.UUID) {
	o.pending <- tenantID
}

// Close stops the worker after the queue drains.
func (o *Onboarding) Close() {
	close(o.pending)
}

// startWorker runs the background onboarding job.
func (o *Onboarding) startWorker() {
	for tenantID := range o.pending {
		log.Info().Str("tenant_id", tenantID.String()).Msg("Starting tenant onboarding")
		started := time.Now()
		if err := o.Seed(context.Background(), tenantID); err != nil {
			log.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("Onboarding failed")
			monitoring.RaiseAlert("tenant_onboarding_failed", map[string]string{
				"tenant_id": tenantID.String(),
			})
			continue
		}
		monitoring.OnboardingDuration.Observe(time.Since(started).Seconds())
	}
}

// Seed creates the tenant's default storefront. It is a no-op when the
// tenant already has a store, so re-queuing a tenant is safe.
func (o *Onboarding) Seed(ctx context.Context, tenantID uuid.UUID) error {
	tenant, err := o.store.TenantByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if tenant == nil {
		log.Warn().Str("tenant_id", tenantID.String()).Msg("Tenant vanished before onboarding")
		return nil
	}
	stores, err := o.store.ListStores(ctx, tenantID)
	if err != nil {
		return err
	}
	if len(stores) > 0 {
		return nil
	}
	defaultStore := &model.Store{
		Name:           tenant.Name,
		Subdomain:      "main",
		PrimaryColor:   tenant.PrimaryColor,
		SecondaryColor: tenant.SecondaryColor,
		IsActive:       true,
		TenantID:       tenant.ID,
	}
	if err := o.store.CreateStore(ctx, defaultStore); err != nil {
		return err
	}
	log.Info().Str("tenant_id", tenantID.String()).Str("store_id", defaultStore.ID.String()).Msg("Default store created")
	return nil
}
