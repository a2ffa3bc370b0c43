package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/cartify-platform/commerce-core/internal/model"
)

// Customers store their email encrypted when a cipher is configured; the
// plaintext column is left empty in that case. The struct always carries
// the plaintext for callers.

const customerColumns = `id, first_name, last_name, email, encrypted_email, email_iv, phone_number,
	date_of_birth, is_active, last_order_at, total_spent, total_orders, tenant_id, created_at, updated_at`

func (p *Postgres) sealCustomerEmail(c *model.Customer) (plain string, enc, iv []byte, err error) {
	if p.cipher == nil || c.Email == "" {
		return c.Email, nil, nil, nil
	}
	enc, iv, err = p.cipher.Encrypt(c.Email)
	return "", enc, iv, err
}

func (p *Postgres) openCustomerEmail(c *model.Customer, enc, iv []byte) error {
	if p.cipher == nil || len(enc) == 0 {
		return nil
	}
	email, err := p.cipher.Decrypt(enc, iv)
	if err != nil {
		return err
	}
	c.Email = email
	return nil
}

func (p *Postgres) scanCustomer(row *sql.Row) (*model.Customer, error) {
	c := &model.Customer{}
	var enc, iv []byte
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &enc, &iv, &c.PhoneNumber,
		&c.DateOfBirth, &c.IsActive, &c.LastOrderAt, &c.TotalSpent, &c.TotalOrders,
		&c.TenantID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := p.openCustomerEmail(c, enc, iv); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Postgres) CreateCustomer(ctx context.Context, c *model.Customer) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	plain, enc, iv, err := p.sealCustomerEmail(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = p.db.ExecContext(ctx, query,
		c.ID, c.FirstName, c.LastName, plain, enc, iv, c.PhoneNumber,
		c.DateOfBirth, c.IsActive, c.LastOrderAt, c.TotalSpent, c.TotalOrders,
		c.TenantID, c.CreatedAt, c.UpdatedAt,
	)
	return translatePgErr("customer", err)
}

func (p *Postgres) CustomerByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 AND tenant_id = $2`
	return p.scanCustomer(p.db.QueryRowContext(ctx, query, id, tenantID))
}

func (p *Postgres) ListCustomers(ctx context.Context, tenantID uuid.UUID) ([]model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE tenant_id = $1 ORDER BY created_at`
	rows, err := p.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Customer
	for rows.Next() {
		var c model.Customer
		var enc, iv []byte
		if err := rows.Scan(
			&c.ID, &c.FirstName, &c.LastName, &c.Email, &enc, &iv, &c.PhoneNumber,
			&c.DateOfBirth, &c.IsActive, &c.LastOrderAt, &c.TotalSpent, &c.TotalOrders,
			&c.TenantID, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := p.openCustomerEmail(&c, enc, iv); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateCustomer(ctx context.Context, c *model.Customer) error {
	plain, enc, iv, err := p.sealCustomerEmail(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE customers
		SET first_name = $3, last_name = $4, email = $5, encrypted_email = $6, email_iv = $7,
		    phone_number = $8, date_of_birth = $9, is_active = $10, last_order_at = $11,
		    total_spent = $12, total_orders = $13, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING updated_at
	`
	err = p.db.QueryRowContext(ctx, query,
		c.ID, c.TenantID, c.FirstName, c.LastName, plain, enc, iv,
		c.PhoneNumber, c.DateOfBirth, c.IsActive, c.LastOrderAt,
		c.TotalSpent, c.TotalOrders,
	).Scan(&c.UpdatedAt)
	return translatePgErr("customer", err)
}

func (p *Postgres) DeleteCustomer(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	return translatePgErr("customer", err)
}

func (p *Postgres) CountOrdersByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM orders WHERE tenant_id = $1 AND customer_id = $2`, tenantID, customerID)
}

func (p *Postgres) CountAddressesByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM addresses WHERE tenant_id = $1 AND customer_id = $2`, tenantID, customerID)
}

const addressColumns = `id, first_name, last_name, address_line1, address_line2, city, state,
	postal_code, country, phone_number, is_default, type, customer_id, user_id, tenant_id,
	created_at, updated_at`

func (p *Postgres) CreateAddress(ctx context.Context, a *model.Address) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt

	query := `
		INSERT INTO addresses (` + addressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := p.db.ExecContext(ctx, query,
		a.ID, a.FirstName, a.LastName, a.AddressLine1, a.AddressLine2, a.City, a.State,
		a.PostalCode, a.Country, a.PhoneNumber, a.IsDefault, a.Type, a.CustomerID, a.UserID,
		a.TenantID, a.CreatedAt, a.UpdatedAt,
	)
	return translatePgErr("address", err)
}

func scanAddress(row *sql.Row) (*model.Address, error) {
	a := &model.Address{}
	err := row.Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.AddressLine1, &a.AddressLine2, &a.City, &a.State,
		&a.PostalCode, &a.Country, &a.PhoneNumber, &a.IsDefault, &a.Type, &a.CustomerID,
		&a.UserID, &a.TenantID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (p *Postgres) AddressByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1 AND tenant_id = $2`
	return scanAddress(p.db.QueryRowContext(ctx, query, id, tenantID))
}

func (p *Postgres) listAddresses(ctx context.Context, query string, args ...any) ([]model.Address, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Address
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(
			&a.ID, &a.FirstName, &a.LastName, &a.AddressLine1, &a.AddressLine2, &a.City, &a.State,
			&a.PostalCode, &a.Country, &a.PhoneNumber, &a.IsDefault, &a.Type, &a.CustomerID,
			&a.UserID, &a.TenantID, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (p *Postgres) ListAddressesByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses
		WHERE tenant_id = $1 AND customer_id = $2 ORDER BY created_at`
	return p.listAddresses(ctx, query, tenantID, customerID)
}

func (p *Postgres) ListAddressesByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses
		WHERE tenant_id = $1 AND user_id = $2 ORDER BY created_at`
	return p.listAddresses(ctx, query, tenantID, userID)
}

func (p *Postgres) UpdateAddress(ctx context.Context, a *model.Address) error {
	query := `
		UPDATE addresses
		SET first_name = $3, last_name = $4, address_line1 = $5, address_line2 = $6,
		    city = $7, state = $8, postal_code = $9, country = $10, phone_number = $11,
		    is_default = $12, type = $13, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING updated_at
	`
	err := p.db.QueryRowContext(ctx, query,
		a.ID, a.TenantID, a.FirstName, a.LastName, a.AddressLine1, a.AddressLine2,
		a.City, a.State, a.PostalCode, a.Country, a.PhoneNumber, a.IsDefault, a.Type,
	).Scan(&a.UpdatedAt)
	return translatePgErr("address", err)
}

func (p *Postgres) ClearOtherDefaultAddresses(ctx context.Context, a *model.Address) error {
	query := `
		UPDATE addresses
		SET is_default = FALSE, updated_at = now()
		WHERE tenant_id = $1 AND type = $2 AND id <> $3 AND is_default
		  AND customer_id IS NOT DISTINCT FROM $4 AND user_id IS NOT DISTINCT FROM $5
	`
	_, err := p.db.ExecContext(ctx, query, a.TenantID, a.Type, a.ID, a.CustomerID, a.UserID)
	return translatePgErr("address", err)
}

func (p *Postgres) DeleteAddress(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	return translatePgErr("address", err)
}
