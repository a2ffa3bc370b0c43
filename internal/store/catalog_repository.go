package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/cartify-platform/commerce-core/internal/model"
)

const storeColumns = `id, name, description, logo_url, primary_color, secondary_color,
	domain, subdomain, is_active, tenant_id, created_at, updated_at`

func scanStorefront(row *sql.Row) (*model.Store, error) {
	s := &model.Store{}
	err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.LogoURL, &s.PrimaryColor, &s.SecondaryColor,
		&s.Domain, &s.Subdomain, &s.IsActive, &s.TenantID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Postgres) CreateStore(ctx context.Context, s *model.Store) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt

	query := `
		INSERT INTO stores (` + storeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := p.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Description, s.LogoURL, s.PrimaryColor, s.SecondaryColor,
		s.Domain, s.Subdomain, s.IsActive, s.TenantID, s.CreatedAt, s.UpdatedAt,
	)
	return translatePgErr("store", err)
}

func (p *Postgres) StoreByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE id = $1 AND tenant_id = $2`
	return scanStorefront(p.db.QueryRowContext(ctx, query, id, tenantID))
}

func (p *Postgres) StoreBySubdomain(ctx context.Context, tenantID uuid.UUID, subdomain string) (*model.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE tenant_id = $1 AND lower(subdomain) = lower($2)`
	return scanStorefront(p.db.QueryRowContext(ctx, query, tenantID, subdomain))
}

func (p *Postgres) ListStores(ctx context.Context, tenantID uuid.UUID) ([]model.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE tenant_id = $1 ORDER BY created_at`
	rows, err := p.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Store
	for rows.Next() {
		var s model.Store
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.LogoURL, &s.PrimaryColor, &s.SecondaryColor,
			&s.Domain, &s.Subdomain, &s.IsActive, &s.TenantID, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateStore(ctx context.Context, s *model.Store) error {
	query := `
		UPDATE stores
		SET name = $3, description = $4, logo_url = $5, primary_color = $6,
		    secondary_color = $7, domain = $8, subdomain = $9, is_active = $10,
		    updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING updated_at
	`
	err := p.db.QueryRowContext(ctx, query,
		s.ID, s.TenantID, s.Name, s.Description, s.LogoURL, s.PrimaryColor,
		s.SecondaryColor, s.Domain, s.Subdomain, s.IsActive,
	).Scan(&s.UpdatedAt)
	return translatePgErr("store", err)
}

func (p *Postgres) DeleteStore(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM stores WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	return translatePgErr("store", err)
}

func (p *Postgres) CountProductsByStore(ctx context.Context, tenantID, storeID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM products WHERE tenant_id = $1 AND store_id = $2`, tenantID, storeID)
}

func (p *Postgres) CountCategoriesByStore(ctx context.Context, tenantID, storeID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM categories WHERE tenant_id = $1 AND store_id = $2`, tenantID, storeID)
}

func (p *Postgres) CountOrdersByStore(ctx context.Context, tenantID, storeID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM orders WHERE tenant_id = $1 AND store_id = $2`, tenantID, storeID)
}

const categoryColumns = `id, name, description, image_url, sort_order, is_active,
	parent_id, tenant_id, store_id, created_at, updated_at`

func (p *Postgres) CreateCategory(ctx context.Context, c *model.Category) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := p.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Description, c.ImageURL, c.SortOrder, c.IsActive,
		c.ParentID, c.TenantID, c.StoreID, c.CreatedAt, c.UpdatedAt,
	)
	return translatePgErr("category", err)
}

func (p *Postgres) CategoryByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND tenant_id = $2`
	c := &model.Category{}
	err := p.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.SortOrder, &c.IsActive,
		&c.ParentID, &c.TenantID, &c.StoreID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Postgres) ListCategories(ctx context.Context, tenantID, storeID uuid.UUID) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
		WHERE tenant_id = $1 AND store_id = $2 ORDER BY sort_order, created_at`
	rows, err := p.db.QueryContext(ctx, query, tenantID, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.SortOrder, &c.IsActive,
			&c.ParentID, &c.TenantID, &c.StoreID, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateCategory(ctx context.Context, c *model.Category) error {
	query := `
		UPDATE categories
		SET name = $3, description = $4, image_url = $5, sort_order = $6,
		    is_active = $7, parent_id = $8, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING updated_at
	`
	err := p.db.QueryRowContext(ctx, query,
		c.ID, c.TenantID, c.Name, c.Description, c.ImageURL, c.SortOrder,
		c.IsActive, c.ParentID,
	).Scan(&c.UpdatedAt)
	return translatePgErr("category", err)
}

func (p *Postgres) DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error {
	err := p.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET category_id = NULL, updated_at = now()
			 WHERE tenant_id = $1 AND category_id = $2`, tenantID, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`DELETE FROM categories WHERE id = $1 AND tenant_id = $2`, id, tenantID)
		return err
	})
	return translatePgErr("category", err)
}

func (p *Postgres) CountChildCategories(ctx context.Context, tenantID, parentID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM categories WHERE tenant_id = $1 AND parent_id = $2`, tenantID, parentID)
}

const productColumns = `id, name, description, short_description, sku, price, compare_at_price,
	cost, stock_quantity, track_inventory, is_active, is_digital, weight, weight_unit,
	meta_title, meta_description, tenant_id, store_id, category_id, created_at, updated_at`

func scanProduct(row *sql.Row) (*model.Product, error) {
	pr := &model.Product{}
	err := row.Scan(
		&pr.ID, &pr.Name, &pr.Description, &pr.ShortDescription, &pr.SKU, &pr.Price,
		&pr.CompareAtPrice, &pr.Cost, &pr.StockQuantity, &pr.TrackInventory, &pr.IsActive,
		&pr.IsDigital, &pr.Weight, &pr.WeightUnit, &pr.MetaTitle, &pr.MetaDescription,
		&pr.TenantID, &pr.StoreID, &pr.CategoryID, &pr.CreatedAt, &pr.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return pr, nil
}

func (p *Postgres) CreateProduct(ctx context.Context, pr *model.Product) error {
	pr.ID = uuid.New()
	pr.CreatedAt = time.Now()
	pr.UpdatedAt = pr.CreatedAt

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	_, err := p.db.ExecContext(ctx, query,
		pr.ID, pr.Name, pr.Description, pr.ShortDescription, pr.SKU, pr.Price,
		pr.CompareAtPrice, pr.Cost, pr.StockQuantity, pr.TrackInventory, pr.IsActive,
		pr.IsDigital, pr.Weight, pr.WeightUnit, pr.MetaTitle, pr.MetaDescription,
		pr.TenantID, pr.StoreID, pr.CategoryID, pr.CreatedAt, pr.UpdatedAt,
	)
	return translatePgErr("product", err)
}

func (p *Postgres) ProductByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND tenant_id = $2`
	return scanProduct(p.db.QueryRowContext(ctx, query, id, tenantID))
}

func (p *Postgres) ListProducts(ctx context.Context, tenantID, storeID uuid.UUID) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE tenant_id = $1 AND store_id = $2 ORDER BY created_at`
	rows, err := p.db.QueryContext(ctx, query, tenantID, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		var pr model.Product
		if err := rows.Scan(
			&pr.ID, &pr.Name, &pr.Description, &pr.ShortDescription, &pr.SKU, &pr.Price,
			&pr.CompareAtPrice, &pr.Cost, &pr.StockQuantity, &pr.TrackInventory, &pr.IsActive,
			&pr.IsDigital, &pr.Weight, &pr.WeightUnit, &pr.MetaTitle, &pr.MetaDescription,
			&pr.TenantID, &pr.StoreID, &pr.CategoryID, &pr.CreatedAt, &pr.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateProduct(ctx context.Context, pr *model.Product) error {
	query := `
		UPDATE products
		SET name = $3, description = $4, short_description = $5, sku = $6, price = $7,
		    compare_at_price = $8, cost = $9, stock_quantity = $10, track_inventory = $11,
		    is_active = $12, is_digital = $13, weight = $14, weight_unit = $15,
		    meta_title = $16, meta_description = $17, category_id = $18, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING updated_at
	`
	err := p.db.QueryRowContext(ctx, query,
		pr.ID, pr.TenantID, pr.Name, pr.Description, pr.ShortDescription, pr.SKU, pr.Price,
		pr.CompareAtPrice, pr.Cost, pr.StockQuantity, pr.TrackInventory, pr.IsActive,
		pr.IsDigital, pr.Weight, pr.WeightUnit, pr.MetaTitle, pr.MetaDescription, pr.CategoryID,
	).Scan(&pr.UpdatedAt)
	return translatePgErr("product", err)
}

func (p *Postgres) DeleteProduct(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	return translatePgErr("product", err)
}

func (p *Postgres) CountVariantsByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM product_variants WHERE tenant_id = $1 AND product_id = $2`, tenantID, productID)
}

func (p *Postgres) CountImagesByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM product_images WHERE tenant_id = $1 AND product_id = $2`, tenantID, productID)
}

func (p *Postgres) CountOrderItemsByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM order_items WHERE tenant_id = $1 AND product_id = $2`, tenantID, productID)
}

func (p *Postgres) CountProductsByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM products WHERE tenant_id = $1`, tenantID)
}

const variantColumns = `id, name, sku, price, compare_at_price, stock_quantity, track_inventory,
	is_active, weight, weight_unit, product_id, tenant_id, created_at, updated_at`

func (p *Postgres) CreateVariant(ctx context.Context, v *model.ProductVariant) error {
	v.ID = uuid.New()
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt

	query := `
		INSERT INTO product_variants (` + variantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := p.db.ExecContext(ctx, query,
		v.ID, v.Name, v.SKU, v.Price, v.CompareAtPrice, v.StockQuantity, v.TrackInventory,
		v.IsActive, v.Weight, v.WeightUnit, v.ProductID, v.TenantID, v.CreatedAt, v.UpdatedAt,
	)
	return translatePgErr("product_variant", err)
}

func (p *Postgres) VariantByID(ctx context.Context, tenantID, id uuid.UUID) (*model.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1 AND tenant_id = $2`
	v := &model.ProductVariant{}
	err := p.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&v.ID, &v.Name, &v.SKU, &v.Price, &v.CompareAtPrice, &v.StockQuantity, &v.TrackInventory,
		&v.IsActive, &v.Weight, &v.WeightUnit, &v.ProductID, &v.TenantID, &v.CreatedAt, &v.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (p *Postgres) ListVariants(ctx context.Context, tenantID, productID uuid.UUID) ([]model.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants
		WHERE tenant_id = $1 AND product_id = $2 ORDER BY created_at`
	rows, err := p.db.QueryContext(ctx, query, tenantID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ProductVariant
	for rows.Next() {
		var v model.ProductVariant
		if err := rows.Scan(
			&v.ID, &v.Name, &v.SKU, &v.Price, &v.CompareAtPrice, &v.StockQuantity, &v.TrackInventory,
			&v.IsActive, &v.Weight, &v.WeightUnit, &v.ProductID, &v.TenantID, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateVariant(ctx context.Context, v *model.ProductVariant) error {
	query := `
		UPDATE product_variants
		SET name = $3, sku = $4, price = $5, compare_at_price = $6, stock_quantity = $7,
		    track_inventory = $8, is_active = $9, weight = $10, weight_unit = $11,
		    updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING updated_at
	`
	err := p.db.QueryRowContext(ctx, query,
		v.ID, v.TenantID, v.Name, v.SKU, v.Price, v.CompareAtPrice, v.StockQuantity,
		v.TrackInventory, v.IsActive, v.Weight, v.WeightUnit,
	).Scan(&v.UpdatedAt)
	return translatePgErr("product_variant", err)
}

func (p *Postgres) DeleteVariant(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM product_variants WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	return translatePgErr("product_variant", err)
}

func (p *Postgres) CountOptionsByVariant(ctx context.Context, tenantID, variantID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM product_variant_options WHERE tenant_id = $1 AND product_variant_id = $2`, tenantID, variantID)
}

func (p *Postgres) CountOrderItemsByVariant(ctx context.Context, tenantID, variantID uuid.UUID) (int, error) {
	return p.countRow(ctx, `SELECT COUNT(*) FROM order_items WHERE tenant_id = $1 AND product_variant_id = $2`, tenantID, variantID)
}

func (p *Postgres) CreateVariantOption(ctx context.Context, o *model.ProductVariantOption) error {
	o.ID = uuid.New()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt

	query := `
		INSERT INTO product_variant_options (id, option_name, option_value, product_variant_id, tenant_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := p.db.ExecContext(ctx, query,
		o.ID, o.OptionName, o.OptionValue, o.ProductVariantID, o.TenantID, o.CreatedAt, o.UpdatedAt,
	)
	return translatePgErr("product_variant_option", err)
}

func (p *Postgres) ListVariantOptions(ctx context.Context, tenantID, variantID uuid.UUID) ([]model.ProductVariantOption, error) {
	query := `
		SELECT id, option_name, option_value, product_variant_id, tenant_id, created_at, updated_at
		FROM product_variant_options
		WHERE tenant_id = $1 AND product_variant_id = $2
		ORDER BY created_at
	`
	rows, err := p.db.QueryContext(ctx, query, tenantID, variantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ProductVariantOption
	for rows.Next() {
		var o model.ProductVariantOption
		if err := rows.Scan(&o.ID, &o.OptionName, &o.OptionValue, &o.ProductVariantID, &o.TenantID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteVariantOption(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM product_variant_options WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	return translatePgErr("product_variant_option", err)
}

func (p *Postgres) CreateImage(ctx context.Context, img *model.ProductImage) error {
	img.ID = uuid.New()
	img.CreatedAt = time.Now()
	img.UpdatedAt = img.CreatedAt

	query := `
		INSERT INTO product_images (id, url, alt_text, sort_order, is_primary, product_id, tenant_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := p.db.ExecContext(ctx, query,
		img.ID, img.URL, img.AltText, img.SortOrder, img.IsPrimary, img.ProductID, img.TenantID, img.CreatedAt, img.UpdatedAt,
	)
	return translatePgErr("product_image", err)
}

func (p *Postgres) ListImages(ctx context.Context, tenantID, productID uuid.UUID) ([]model.ProductImage, error) {
	query := `
		SELECT id, url, alt_text, sort_order, is_primary, product_id, tenant_id, created_at, updated_at
		FROM product_images
		WHERE tenant_id = $1 AND product_id = $2
		ORDER BY sort_order, created_at
	`
	rows, err := p.db.QueryContext(ctx, query, tenantID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ProductImage
	for rows.Next() {
		var img model.ProductImage
		if err := rows.Scan(&img.ID, &img.URL, &img.AltText, &img.SortOrder, &img.IsPrimary, &img.ProductID, &img.TenantID, &img.CreatedAt, &img.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteImage(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM product_images WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	return translatePgErr("product_image", err)
}
