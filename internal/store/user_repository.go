package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/cartify-platform/commerce-core/internal/model"
)

const userColumns = `id, first_name, last_name, email, password_hash, phone_number,
	is_email_confirmed, is_active, last_login_at, tenant_id, role_id, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.PhoneNumber,
		&u.IsEmailConfirmed, &u.IsActive, &u.LastLoginAt, &u.TenantID, &u.RoleID,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (p *Postgres) CreateUser(ctx context.Context, u *model.User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := p.db.ExecContext(ctx, query,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.PhoneNumber,
		u.IsEmailConfirmed, u.IsActive, u.LastLoginAt, u.TenantID, u.RoleID,
		u.CreatedAt, u.UpdatedAt,
	)
	return translatePgErr("user", err)
}

func (p *Postgres) UserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(p.db.QueryRowContext(ctx, query, id))
}

func (p *Postgres) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(p.db.QueryRowContext(ctx, query, email))
}

func (p *Postgres) ListUsersByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 ORDER BY created_at`
	rows, err := p.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.PhoneNumber,
			&u.IsEmailConfirmed, &u.IsActive, &u.LastLoginAt, &u.TenantID, &u.RoleID,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateUser(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, email = $4, password_hash = $5,
		    phone_number = $6, is_email_confirmed = $7, is_active = $8,
		    last_login_at = $9, tenant_id = $10, role_id = $11, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := p.db.QueryRowContext(ctx, query,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.PhoneNumber,
		u.IsEmailConfirmed, u.IsActive, u.LastLoginAt, u.TenantID, u.RoleID,
	).Scan(&u.UpdatedAt)
	return translatePgErr("user", err)
}

func (p *Postgres) DeleteUser(ctx context.Context, id uuid.UUID) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return translatePgErr("user", err)
}

func (p *Postgres) CountTenantsOwnedBy(ctx context.Context, userID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM tenants WHERE owner_id = $1`, userID)
}

func (p *Postgres) CountAddressesByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM addresses WHERE user_id = $1`, userID)
}

func (p *Postgres) CountStatusHistoriesByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM order_status_histories WHERE user_id = $1`, userID)
}

func (p *Postgres) CreateRole(ctx context.Context, r *model.Role) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt

	query := `
		INSERT INTO roles (id, name, description, is_system_role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := p.db.ExecContext(ctx, query, r.ID, r.Name, r.Description, r.IsSystemRole, r.CreatedAt, r.UpdatedAt)
	return translatePgErr("role", err)
}

func (p *Postgres) RoleByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	query := `SELECT id, name, description, is_system_role, created_at, updated_at FROM roles WHERE id = $1`
	r := &model.Role{}
	err := p.db.QueryRowContext(ctx, query, id).Scan(&r.ID, &r.Name, &r.Description, &r.IsSystemRole, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (p *Postgres) ListRoles(ctx context.Context) ([]model.Role, error) {
	query := `SELECT id, name, description, is_system_role, created_at, updated_at FROM roles ORDER BY created_at`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Role
	for rows.Next() {
		var r model.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.IsSystemRole, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteRole(ctx context.Context, id uuid.UUID) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	return translatePgErr("role", err)
}

func (p *Postgres) CountUsersByRole(ctx context.Context, roleID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM users WHERE role_id = $1`, roleID)
}

func (p *Postgres) CreateRolePermission(ctx context.Context, perm *model.RolePermission) error {
	perm.ID = uuid.New()
	perm.CreatedAt = time.Now()
	perm.UpdatedAt = perm.CreatedAt

	query := `
		INSERT INTO role_permissions (id, permission, description, role_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := p.db.ExecContext(ctx, query, perm.ID, perm.Permission, perm.Description, perm.RoleID, perm.CreatedAt, perm.UpdatedAt)
	return translatePgErr("role_permission", err)
}

func (p *Postgres) ListRolePermissions(ctx context.Context, roleID uuid.UUID) ([]model.RolePermission, error) {
	query := `
		SELECT id, permission, description, role_id, created_at, updated_at
		FROM role_permissions
		WHERE role_id = $1
		ORDER BY created_at
	`
	rows, err := p.db.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RolePermission
	for rows.Next() {
		var perm model.RolePermission
		if err := rows.Scan(&perm.ID, &perm.Permission, &perm.Description, &perm.RoleID, &perm.CreatedAt, &perm.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, perm)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteRolePermission(ctx context.Context, id uuid.UUID) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM role_permissions WHERE id = $1`, id)
	return translatePgErr("role_permission", err)
}
