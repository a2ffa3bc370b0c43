package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/cartify-platform/commerce-core/internal/apperr"
	"github.com/cartify-platform/commerce-core/internal/model"
	"github.com/cartify-platform/commerce-core/internal/store"
)

// Users manages staff accounts, roles and permission grants.
type Users struct {
	store store.Store
}

// NewUsers returns a Users service backed by st.
func NewUsers(st store.Store) *Users {
	return &Users{store: st}
}

// CreateUser registers a staff account. Email is unique across the
// platform; a tenant-bound account also counts against the plan's user
// limit.
func (s *Users) CreateUser(ctx context.Context, u *model.User) error {
	if err := s.validateUser(ctx, u); err != nil {
		return err
	}
	existing, err := s.store.UserByEmail(ctx, u.Email)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "user", err)
	}
	if existing != nil {
		return apperr.Field("user", "email", "%q is already registered", u.Email)
	}
	if u.TenantID != nil {
		if err := s.checkUserLimit(ctx, *u.TenantID); err != nil {
			return err
		}
	}
	return s.store.CreateUser(ctx, u)
}

// UpdateUser applies changes to a staff account.
func (s *Users) UpdateUser(ctx context.Context, u *model.User) error {
	current, err := s.requireUser(ctx, u.ID)
	if err != nil {
		return err
	}
	if err := s.validateUser(ctx, u); err != nil {
		return err
	}
	if u.Email != current.Email {
		existing, err := s.store.UserByEmail(ctx, u.Email)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "user", err)
		}
		if existing != nil && existing.ID != u.ID {
			return apperr.Field("user", "email", "%q is already registered", u.Email)
		}
	}
	return s.store.UpdateUser(ctx, u)
}

// DeleteUser removes a staff account. Tenants owned by the user, orders
// placed by the user and the user's addresses block the delete.
func (s *Users) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.requireUser(ctx, id); err != nil {
		return err
	}
	owned, err := s.store.CountTenantsOwnedBy(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "user", err)
	}
	if owned > 0 {
		return apperr.New(apperr.IntegrityViolation, "user", "user owns %d tenants", owned)
	}
	orders, err := s.store.CountOrdersByTenantUser(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "user", err)
	}
	if orders > 0 {
		return apperr.New(apperr.IntegrityViolation, "user", "user placed %d orders", orders)
	}
	addresses, err := s.store.CountAddressesByUser(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "user", err)
	}
	if addresses > 0 {
		return apperr.New(apperr.IntegrityViolation, "user", "user has %d addresses", addresses)
	}
	recorded, err := s.store.CountStatusHistoriesByUser(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "user", err)
	}
	if recorded > 0 {
		return apperr.New(apperr.IntegrityViolation, "user", "user recorded %d order status changes", recorded)
	}
	return s.store.DeleteUser(ctx, id)
}

// User fetches a staff account by id.
func (s *Users) User(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.requireUser(ctx, id)
}

// UserByEmail fetches a staff account by email.
func (s *Users) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.store.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "user", err)
	}
	if user == nil {
		return nil, apperr.New(apperr.NotFound, "user", "user %q not found", email)
	}
	return user, nil
}

// ListUsers returns a tenant's staff accounts.
func (s *Users) ListUsers(ctx context.Context, tenantID uuid.UUID) ([]model.User, error) {
	return s.store.ListUsersByTenant(ctx, tenantID)
}

// CreateRole registers a role.
func (s *Users) CreateRole(ctx context.Context, r *model.Role) error {
	if err := required("role", "name", r.Name, 100); err != nil {
		return err
	}
	return s.store.CreateRole(ctx, r)
}

// DeleteRole removes a role. System roles, roles with users and roles
// with permission grants cannot be deleted.
func (s *Users) DeleteRole(ctx context.Context, id uuid.UUID) error {
	role, err := s.requireRole(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystemRole {
		return apperr.New(apperr.IntegrityViolation, "role", "%q is a system role", role.Name)
	}
	users, err := s.store.CountUsersByRole(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "role", err)
	}
	if users > 0 {
		return apperr.New(apperr.IntegrityViolation, "role", "%d users hold role %q", users, role.Name)
	}
	permissions, err := s.store.ListRolePermissions(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "role", err)
	}
	if len(permissions) > 0 {
		return apperr.New(apperr.IntegrityViolation, "role", "role %q has %d permission grants", role.Name, len(permissions))
	}
	return s.store.DeleteRole(ctx, id)
}

// Role fetches a role by id.
func (s *Users) Role(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	return s.requireRole(ctx, id)
}

// ListRoles returns all roles.
func (s *Users) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.store.ListRoles(ctx)
}

// GrantPermission attaches a permission string to a role.
func (s *Users) GrantPermission(ctx context.Context, p *model.RolePermission) error {
	if err := required("role permission", "permission", p.Permission, 200); err != nil {
		return err
	}
	if _, err := s.requireRole(ctx, p.RoleID); err != nil {
		return err
	}
	return s.store.CreateRolePermission(ctx, p)
}

// RevokePermission removes a permission grant.
func (s *Users) RevokePermission(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteRolePermission(ctx, id)
}

// Permissions returns a role's permission grants.
func (s *Users) Permissions(ctx context.Context, roleID uuid.UUID) ([]model.RolePermission, error) {
	return s.store.ListRolePermissions(ctx, roleID)
}

func (s *Users) validateUser(ctx context.Context, u *model.User) error {
	if err := required("user", "first_name", u.FirstName, 100); err != nil {
		return err
	}
	if err := required("user", "last_name", u.LastName, 100); err != nil {
		return err
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if !isValidEmail(u.Email) {
		return apperr.Field("user", "email", "%q is not a valid email address", u.Email)
	}
	if _, err := s.requireRole(ctx, u.RoleID); err != nil {
		return err
	}
	if u.TenantID != nil {
		tenant, err := s.store.TenantByID(ctx, *u.TenantID)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "user", err)
		}
		if tenant == nil {
			return apperr.Field("user", "tenant_id", "tenant %s not found", *u.TenantID)
		}
	}
	return nil
}

// checkUserLimit enforces the plan's staff cap; zero means unlimited.
func (s *Users) checkUserLimit(ctx context.Context, tenantID uuid.UUID) error {
	tenant, err := s.store.TenantByID(ctx, tenantID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "tenant", err)
	}
	if tenant == nil {
		return apperr.Field("user", "tenant_id", "tenant %s not found", tenantID)
	}
	plan, err := s.store.PlanByID(ctx, tenant.SubscriptionPlanID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "plan", err)
	}
	if plan == nil || plan.MaxUsers <= 0 {
		return nil
	}
	staff, err := s.store.ListUsersByTenant(ctx, tenantID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "user", err)
	}
	if len(staff) >= plan.MaxUsers {
		return apperr.New(apperr.ValidationFailed, "user", "subscription plan allows at most %d users", plan.MaxUsers)
	}
	return nil
}

func (s *Users) requireUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "user", err)
	}
	if user == nil {
		return nil, apperr.New(apperr.NotFound, "user", "user %s not found", id)
	}
	return user, nil
}

func (s *Users) requireRole(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	role, err := s.store.RoleByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "role", err)
	}
	if role == nil {
		return nil, apperr.New(apperr.NotFound, "role", "role %s not found", id)
	}
	return role, nil
}
