package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cartify-platform/commerce-core/internal/model"
)

const tenantColumns = `id, name, identifier, description, logo_url, primary_color, secondary_color,
	is_active, subscription_expires_at, subscription_plan_id, owner_id, created_at, updated_at`

func scanTenant(row *sql.Row) (*model.Tenant, error) {
	t := &model.Tenant{}
	err := row.Scan(
		&t.ID, &t.Name, &t.Identifier, &t.Description, &t.LogoURL,
		&t.PrimaryColor, &t.SecondaryColor, &t.IsActive, &t.SubscriptionExpiresAt,
		&t.SubscriptionPlanID, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (p *Postgres) tenantCacheKey(identifier string) string {
	return fmt.Sprintf("tenant:identifier:%s", identifier)
}

func (p *Postgres) invalidateTenant(ctx context.Context, identifier string) {
	if p.cache != nil {
		p.cache.Del(ctx, p.tenantCacheKey(identifier))
	}
}

func (p *Postgres) CreateTenant(ctx context.Context, t *model.Tenant) error {
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt

	query := `
		INSERT INTO tenants (` + tenantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := p.db.ExecContext(ctx, query,
		t.ID, t.Name, t.Identifier, t.Description, t.LogoURL,
		t.PrimaryColor, t.SecondaryColor, t.IsActive, t.SubscriptionExpiresAt,
		t.SubscriptionPlanID, t.OwnerID, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return translatePgErr("tenant", err)
	}
	p.invalidateTenant(ctx, t.Identifier)
	return nil
}

func (p *Postgres) TenantByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return scanTenant(p.db.QueryRowContext(ctx, query, id))
}

func (p *Postgres) TenantByIdentifier(ctx context.Context, identifier string) (*model.Tenant, error) {
	if p.cache != nil {
		if cached, err := p.cache.Get(ctx, p.tenantCacheKey(identifier)).Result(); err == nil {
			t := &model.Tenant{}
			if err := json.Unmarshal([]byte(cached), t); err == nil {
				return t, nil
			}
		}
	}

	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE identifier = lower($1)`
	t, err := scanTenant(p.db.QueryRowContext(ctx, query, identifier))
	if err != nil || t == nil {
		return t, err
	}

	if p.cache != nil {
		if data, err := json.Marshal(t); err == nil {
			p.cache.SetEx(ctx, p.tenantCacheKey(identifier), data, tenantCacheTTL)
		}
	}
	return t, nil
}

func (p *Postgres) ListTenants(ctx context.Context) ([]model.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY created_at`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Tenant
	for rows.Next() {
		var t model.Tenant
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Identifier, &t.Description, &t.LogoURL,
			&t.PrimaryColor, &t.SecondaryColor, &t.IsActive, &t.SubscriptionExpiresAt,
			&t.SubscriptionPlanID, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateTenant(ctx context.Context, t *model.Tenant) error {
	prior, err := p.TenantByID(ctx, t.ID)
	if err != nil {
		return err
	}
	query := `
		UPDATE tenants
		SET name = $2, identifier = $3, description = $4, logo_url = $5,
		    primary_color = $6, secondary_color = $7, is_active = $8,
		    subscription_expires_at = $9, subscription_plan_id = $10, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err = p.db.QueryRowContext(ctx, query,
		t.ID, t.Name, t.Identifier, t.Description, t.LogoURL,
		t.PrimaryColor, t.SecondaryColor, t.IsActive,
		t.SubscriptionExpiresAt, t.SubscriptionPlanID,
	).Scan(&t.UpdatedAt)
	if err != nil {
		return translatePgErr("tenant", err)
	}
	// A rename must retire the cached row under the old identifier too.
	if prior != nil && prior.Identifier != t.Identifier {
		p.invalidateTenant(ctx, prior.Identifier)
	}
	p.invalidateTenant(ctx, t.Identifier)
	return nil
}

func (p *Postgres) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	t, err := p.TenantByID(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return sql.ErrNoRows
	}
	err = p.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET tenant_id = NULL, updated_at = now() WHERE tenant_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return translatePgErr("tenant", err)
	}
	p.invalidateTenant(ctx, t.Identifier)
	return nil
}

func (p *Postgres) TenantDependents(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		SELECT (SELECT COUNT(*) FROM stores WHERE tenant_id = $1)
		     + (SELECT COUNT(*) FROM categories WHERE tenant_id = $1)
		     + (SELECT COUNT(*) FROM products WHERE tenant_id = $1)
		     + (SELECT COUNT(*) FROM customers WHERE tenant_id = $1)
		     + (SELECT COUNT(*) FROM orders WHERE tenant_id = $1)
		     + (SELECT COUNT(*) FROM addresses WHERE tenant_id = $1)
	`
	return p.countRow(ctx, query, id)
}

const planColumns = `id, name, description, price, currency, billing_cycle, max_products, max_users,
	max_storage_bytes, has_advanced_analytics, has_api_access, has_custom_themes,
	has_priority_support, is_active, created_at, updated_at`

func (p *Postgres) CreatePlan(ctx context.Context, plan *model.SubscriptionPlan) error {
	plan.ID = uuid.New()
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = plan.CreatedAt

	query := `
		INSERT INTO subscription_plans (` + planColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := p.db.ExecContext(ctx, query,
		plan.ID, plan.Name, plan.Description, plan.Price, plan.Currency, plan.BillingCycle,
		plan.MaxProducts, plan.MaxUsers, plan.MaxStorageBytes, plan.HasAdvancedAnalytics,
		plan.HasAPIAccess, plan.HasCustomThemes, plan.HasPrioritySupport, plan.IsActive,
		plan.CreatedAt, plan.UpdatedAt,
	)
	return translatePgErr("subscription_plan", err)
}

func (p *Postgres) PlanByID(ctx context.Context, id uuid.UUID) (*model.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1`
	plan := &model.SubscriptionPlan{}
	err := p.db.QueryRowContext(ctx, query, id).Scan(
		&plan.ID, &plan.Name, &plan.Description, &plan.Price, &plan.Currency, &plan.BillingCycle,
		&plan.MaxProducts, &plan.MaxUsers, &plan.MaxStorageBytes, &plan.HasAdvancedAnalytics,
		&plan.HasAPIAccess, &plan.HasCustomThemes, &plan.HasPrioritySupport, &plan.IsActive,
		&plan.CreatedAt, &plan.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (p *Postgres) ListPlans(ctx context.Context) ([]model.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans ORDER BY created_at`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SubscriptionPlan
	for rows.Next() {
		var plan model.SubscriptionPlan
		if err := rows.Scan(
			&plan.ID, &plan.Name, &plan.Description, &plan.Price, &plan.Currency, &plan.BillingCycle,
			&plan.MaxProducts, &plan.MaxUsers, &plan.MaxStorageBytes, &plan.HasAdvancedAnalytics,
			&plan.HasAPIAccess, &plan.HasCustomThemes, &plan.HasPrioritySupport, &plan.IsActive,
			&plan.CreatedAt, &plan.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, plan)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdatePlan(ctx context.Context, plan *model.SubscriptionPlan) error {
	query := `
		UPDATE subscription_plans
		SET name = $2, description = $3, price = $4, currency = $5, billing_cycle = $6,
		    max_products = $7, max_users = $8, max_storage_bytes = $9,
		    has_advanced_analytics = $10, has_api_access = $11, has_custom_themes = $12,
		    has_priority_support = $13, is_active = $14, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := p.db.QueryRowContext(ctx, query,
		plan.ID, plan.Name, plan.Description, plan.Price, plan.Currency, plan.BillingCycle,
		plan.MaxProducts, plan.MaxUsers, plan.MaxStorageBytes, plan.HasAdvancedAnalytics,
		plan.HasAPIAccess, plan.HasCustomThemes, plan.HasPrioritySupport, plan.IsActive,
	).Scan(&plan.UpdatedAt)
	return translatePgErr("subscription_plan", err)
}

func (p *Postgres) DeletePlan(ctx context.Context, id uuid.UUID) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM subscription_plans WHERE id = $1`, id)
	return translatePgErr("subscription_plan", err)
}

func (p *Postgres) CountTenantsByPlan(ctx context.Context, planID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM tenants WHERE subscription_plan_id = $1`, planID)
}
