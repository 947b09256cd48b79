package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/topup-store/internal/database"
	"github.com/safar/topup-store/internal/models"
)

const productColumns = `id, code, name, category_id, price, platinum_price,
	flash_sale, flash_sale_price, flash_sale_ends_at, profit, supplier_code,
	created_at, updated_at`

func scanProduct(row *sql.Row) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.CategoryID, &p.Price, &p.PlatinumPrice,
		&p.FlashSale, &p.FlashSalePrice, &p.FlashSaleEndsAt, &p.Profit,
		&p.SupplierCode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProductByCode runs inside the settlement transaction so the price fields
// it returns are the ones the order is settled against.
func GetProductByCode(ctx context.Context, tx *sql.Tx, code string) (*models.Product, error) {
	p, err := scanProduct(tx.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE code = $1`, code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func GetCategory(ctx context.Context, tx *sql.Tx, id int64) (*models.Category, error) {
	c := &models.Category{}
	err := tx.QueryRowContext(ctx,
		`SELECT id, code, name, created_at, updated_at FROM categories WHERE id = $1`,
		id).Scan(&c.ID, &c.Code, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// GetPaymentMethod resolves a method code to its display name. A missing row
// is not an error; settlement falls back to the raw code.
func GetPaymentMethod(ctx context.Context, tx *sql.Tx, code string) (*models.PaymentMethod, error) {
	m := &models.PaymentMethod{}
	err := tx.QueryRowContext(ctx,
		`SELECT id, code, name, active, created_at, updated_at
		 FROM payment_methods
		 WHERE code = $1`,
		code).Scan(&m.ID, &m.Code, &m.Name, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment method: %w", err)
	}
	return m, nil
}

// ListFlashSaleProducts returns the products the storefront carousel counts
// down: flagged flash-sale with an expiry still in the future.
func ListFlashSaleProducts(ctx context.Context, db *sql.DB) ([]models.Product, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE flash_sale
		   AND flash_sale_ends_at IS NOT NULL
		   AND flash_sale_ends_at > NOW()
		 ORDER BY flash_sale_ends_at`)
	if err != nil {
		return nil, fmt.Errorf("list flash sale products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(
			&p.ID, &p.Code, &p.Name, &p.CategoryID, &p.Price, &p.PlatinumPrice,
			&p.FlashSale, &p.FlashSalePrice, &p.FlashSaleEndsAt, &p.Profit,
			&p.SupplierCode, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

func ListBanners(ctx context.Context, db *sql.DB) ([]models.Banner, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, title, image_url, link_url, active, position, created_at, updated_at
		 FROM banners
		 WHERE active
		 ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	defer rows.Close()

	var banners []models.Banner
	for rows.Next() {
		var b models.Banner
		err := rows.Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.Active,
			&b.Position, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan banner: %w", err)
		}
		banners = append(banners, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return banners, nil
}

func CreateCategory(ctx context.Context, db *sql.DB, code, name string) (*models.Category, error) {
	c := &models.Category{}
	err := db.QueryRowContext(ctx,
		`INSERT INTO categories (code, name, created_at, updated_at)
		 VALUES ($1, $2, NOW(), NOW())
		 RETURNING id, code, name, created_at, updated_at`,
		code, name).Scan(&c.ID, &c.Code, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func CreateProduct(ctx context.Context, db *sql.DB, p *models.Product) (*models.Product, error) {
	err := db.QueryRowContext(ctx,
		`INSERT INTO products
			(code, name, category_id, price, platinum_price, flash_sale,
			 flash_sale_price, flash_sale_ends_at, profit, supplier_code,
			 created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		p.Code, p.Name, p.CategoryID, p.Price, p.PlatinumPrice, p.FlashSale,
		p.FlashSalePrice, p.FlashSaleEndsAt, p.Profit, p.SupplierCode).Scan(
		&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func CreatePaymentMethod(ctx context.Context, db *sql.DB, code, name string) (*models.PaymentMethod, error) {
	m := &models.PaymentMethod{}
	err := db.QueryRowContext(ctx,
		`INSERT INTO payment_methods (code, name, active, created_at, updated_at)
		 VALUES ($1, $2, true, NOW(), NOW())
		 RETURNING id, code, name, active, created_at, updated_at`,
		code, name).Scan(&m.ID, &m.Code, &m.Name, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create payment method: %w", err)
	}
	return m, nil
}
