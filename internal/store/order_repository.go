package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/cartify-platform/commerce-core/internal/apperr"
	"github.com/cartify-platform/commerce-core/internal/model"
)

const orderColumns = `id, order_number, status, subtotal, tax_amount, shipping_amount,
	discount_amount, total, currency, payment_method, payment_transaction_id, paid_at,
	shipped_at, delivered_at, tracking_number, notes, tenant_id, store_id, customer_id,
	user_id, created_at, updated_at`

func scanOrder(row *sql.Row) (*model.Order, error) {
	o := &model.Order{}
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Status, &o.Subtotal, &o.TaxAmount, &o.ShippingAmount,
		&o.DiscountAmount, &o.Total, &o.Currency, &o.PaymentMethod, &o.PaymentTransactionID,
		&o.PaidAt, &o.ShippedAt, &o.DeliveredAt, &o.TrackingNumber, &o.Notes,
		&o.TenantID, &o.StoreID, &o.CustomerID, &o.UserID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (p *Postgres) CreateOrder(ctx context.Context, w CheckoutWrite) error {
	o := w.Order
	o.ID = uuid.New()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt

	err := p.inTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO orders (` + orderColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		`
		if _, err := tx.ExecContext(ctx, query,
			o.ID, o.OrderNumber, o.Status, o.Subtotal, o.TaxAmount, o.ShippingAmount,
			o.DiscountAmount, o.Total, o.Currency, o.PaymentMethod, o.PaymentTransactionID,
			o.PaidAt, o.ShippedAt, o.DeliveredAt, o.TrackingNumber, o.Notes,
			o.TenantID, o.StoreID, o.CustomerID, o.UserID, o.CreatedAt, o.UpdatedAt,
		); err != nil {
			return err
		}

		for i := range w.Items {
			it := &w.Items[i]
			it.ID = uuid.New()
			it.OrderID = o.ID
			it.CreatedAt = o.CreatedAt
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (id, quantity, unit_price, total_price, product_name,
					product_sku, variant_description, order_id, product_id, product_variant_id,
					tenant_id, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				it.ID, it.Quantity, it.UnitPrice, it.TotalPrice, it.ProductName,
				it.ProductSKU, it.VariantDescription, it.OrderID, it.ProductID,
				it.ProductVariantID, it.TenantID, it.CreatedAt,
			); err != nil {
				return err
			}
		}

		h := w.History
		h.ID = uuid.New()
		h.OrderID = o.ID
		h.CreatedAt = o.CreatedAt
		if err := insertHistory(ctx, tx, h); err != nil {
			return err
		}

		for _, adj := range w.Stock {
			if err := applyStock(ctx, tx, adj); err != nil {
				return err
			}
		}

		if w.Customer != nil {
			c := w.Customer
			if _, err := tx.ExecContext(ctx, `
				UPDATE customers
				SET last_order_at = $3, total_spent = $4, total_orders = $5, updated_at = now()
				WHERE id = $1 AND tenant_id = $2`,
				c.ID, c.TenantID, c.LastOrderAt, c.TotalSpent, c.TotalOrders,
			); err != nil {
				return err
			}
		}
		return nil
	})
	return translatePgErr("order", err)
}

func insertHistory(ctx context.Context, tx *sql.Tx, h *model.OrderStatusHistory) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_histories (id, status, notes, status_date, order_id, user_id, tenant_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.ID, h.Status, h.Notes, h.StatusDate, h.OrderID, h.UserID, h.TenantID, h.CreatedAt,
	)
	return err
}

// applyStock decrements inventory and fails if the quantity would go
// negative; the guarded UPDATE keeps concurrent checkouts honest.
func applyStock(ctx context.Context, tx *sql.Tx, adj StockAdjustment) error {
	var (
		res    sql.Result
		err    error
		entity string
	)
	switch {
	case adj.VariantID != nil:
		entity = "product_variant"
		res, err = tx.ExecContext(ctx, `
			UPDATE product_variants SET stock_quantity = stock_quantity + $2, updated_at = now()
			WHERE id = $1 AND stock_quantity + $2 >= 0`, *adj.VariantID, adj.Delta)
	case adj.ProductID != nil:
		entity = "product"
		res, err = tx.ExecContext(ctx, `
			UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = now()
			WHERE id = $1 AND stock_quantity + $2 >= 0`, *adj.ProductID, adj.Delta)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.New(apperr.IntegrityViolation, entity, "insufficient stock")
	}
	return nil
}

func (p *Postgres) OrderByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND tenant_id = $2`
	return scanOrder(p.db.QueryRowContext(ctx, query, id, tenantID))
}

func (p *Postgres) OrderByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`
	return scanOrder(p.db.QueryRowContext(ctx, query, orderNumber))
}

func (p *Postgres) ListOrders(ctx context.Context, tenantID, storeID uuid.UUID) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE tenant_id = $1 AND store_id = $2 ORDER BY created_at`
	rows, err := p.db.QueryContext(ctx, query, tenantID, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.Status, &o.Subtotal, &o.TaxAmount, &o.ShippingAmount,
			&o.DiscountAmount, &o.Total, &o.Currency, &o.PaymentMethod, &o.PaymentTransactionID,
			&o.PaidAt, &o.ShippedAt, &o.DeliveredAt, &o.TrackingNumber, &o.Notes,
			&o.TenantID, &o.StoreID, &o.CustomerID, &o.UserID, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (p *Postgres) OrderItems(ctx context.Context, tenantID, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, quantity, unit_price, total_price, product_name, product_sku,
		       variant_description, order_id, product_id, product_variant_id, tenant_id, created_at
		FROM order_items
		WHERE tenant_id = $1 AND order_id = $2
		ORDER BY created_at, id
	`
	rows, err := p.db.QueryContext(ctx, query, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(
			&it.ID, &it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.ProductName, &it.ProductSKU,
			&it.VariantDescription, &it.OrderID, &it.ProductID, &it.ProductVariantID, &it.TenantID, &it.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (p *Postgres) OrderHistory(ctx context.Context, tenantID, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	query := `
		SELECT id, status, notes, status_date, order_id, user_id, tenant_id, created_at
		FROM order_status_histories
		WHERE tenant_id = $1 AND order_id = $2
		ORDER BY status_date, created_at
	`
	rows, err := p.db.QueryContext(ctx, query, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OrderStatusHistory
	for rows.Next() {
		var h model.OrderStatusHistory
		if err := rows.Scan(&h.ID, &h.Status, &h.Notes, &h.StatusDate, &h.OrderID, &h.UserID, &h.TenantID, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateOrderStatus(ctx context.Context, o *model.Order, h *model.OrderStatusHistory) error {
	err := p.inTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE orders
			SET status = $3, paid_at = $4, shipped_at = $5, delivered_at = $6, updated_at = now()
			WHERE id = $1 AND tenant_id = $2
		`
		res, err := tx.ExecContext(ctx, query, o.ID, o.TenantID, o.Status, o.PaidAt, o.ShippedAt, o.DeliveredAt)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.New(apperr.NotFound, "order", "%s", o.ID)
		}

		h.ID = uuid.New()
		h.OrderID = o.ID
		h.CreatedAt = time.Now()
		return insertHistory(ctx, tx, h)
	})
	return translatePgErr("order", err)
}

func (p *Postgres) UpdateOrder(ctx context.Context, o *model.Order) error {
	query := `
		UPDATE orders
		SET payment_method = $3, payment_transaction_id = $4, tracking_number = $5,
		    notes = $6, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING updated_at
	`
	err := p.db.QueryRowContext(ctx, query,
		o.ID, o.TenantID, o.PaymentMethod, o.PaymentTransactionID, o.TrackingNumber, o.Notes,
	).Scan(&o.UpdatedAt)
	return translatePgErr("order", err)
}

func (p *Postgres) CountOrdersByTenantUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID)
}
