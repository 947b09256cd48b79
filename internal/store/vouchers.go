package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/topup-store/internal/database"
	"github.com/safar/topup-store/internal/models"
	"github.com/shopspring/decimal"
)

type VoucherResult struct {
	FinalPrice decimal.Decimal
	Discount   decimal.Decimal
	VoucherID  int64
}

// ApplyVoucher validates and applies a voucher code against a priced order
// inside the caller's transaction. The voucher row is locked before the usage
// count is checked, so two concurrent requests on a near-exhausted code are
// serialized: the first takes the slot, the second sees the incremented count
// and fails with ErrVoucherExhausted. The increment happens under the lock and
// rolls back with the enclosing transaction if any later step fails.
func ApplyVoucher(ctx context.Context, tx *sql.Tx, code string, price decimal.Decimal, categoryID int64) (*VoucherResult, error) {
	v := &models.Voucher{}
	err := tx.QueryRowContext(ctx,
		`SELECT id, discount_type, discount_value, max_discount, min_purchase, all_categories
		 FROM vouchers
		 WHERE code = $1
		   AND active
		   AND starts_at <= NOW()
		   AND expires_at > NOW()`,
		code).Scan(
		&v.ID,
		&v.DiscountType,
		&v.DiscountValue,
		&v.MaxDiscount,
		&v.MinPurchase,
		&v.AllCategories,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrVoucherNotFound
		}
		return nil, fmt.Errorf("find voucher: %w", err)
	}

	// Lock the row, then re-read the authoritative usage count. Checking the
	// count from the earlier unlocked read would reintroduce the
	// check-then-act race.
	var usageCount int
	var usageLimit sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT usage_count, usage_limit FROM vouchers WHERE id = $1 FOR UPDATE`,
		v.ID).Scan(&usageCount, &usageLimit)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrVoucherNotFound
		}
		return nil, fmt.Errorf("lock voucher %d: %w", v.ID, err)
	}

	if usageLimit.Valid && int64(usageCount) >= usageLimit.Int64 {
		return nil, database.ErrVoucherExhausted
	}

	if v.MinPurchase.Valid && price.LessThan(v.MinPurchase.Decimal) {
		return nil, database.ErrMinPurchaseNotMet
	}

	if !v.AllCategories {
		var applicable bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS(
				SELECT 1 FROM voucher_categories
				WHERE voucher_id = $1 AND category_id = $2
			 )`,
			v.ID, categoryID).Scan(&applicable)
		if err != nil {
			return nil, fmt.Errorf("check voucher category: %w", err)
		}
		if !applicable {
			return nil, database.ErrVoucherNotApplicable
		}
	}

	discount := discountFor(v, price)
	final := price.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	// Reserve the slot while still holding the lock, before the overall
	// transaction outcome is known. A later failure rolls this back.
	_, err = tx.ExecContext(ctx,
		`UPDATE vouchers
		 SET usage_count = usage_count + 1,
		     updated_at = NOW()
		 WHERE id = $1`,
		v.ID)
	if err != nil {
		return nil, fmt.Errorf("increment voucher usage: %w", err)
	}

	return &VoucherResult{
		FinalPrice: final,
		Discount:   discount,
		VoucherID:  v.ID,
	}, nil
}

func discountFor(v *models.Voucher, price decimal.Decimal) decimal.Decimal {
	if v.DiscountType == models.DiscountPercentage {
		d := price.Mul(v.DiscountValue).Div(decimal.NewFromInt(100))
		if v.MaxDiscount.Valid && d.GreaterThan(v.MaxDiscount.Decimal) {
			d = v.MaxDiscount.Decimal
		}
		return d
	}
	return v.DiscountValue
}

func CreateVoucher(ctx context.Context, db *sql.DB, v *models.Voucher) (*models.Voucher, error) {
	err := db.QueryRowContext(ctx,
		`INSERT INTO vouchers
			(code, active, starts_at, expires_at, discount_type, discount_value,
			 max_discount, min_purchase, all_categories, usage_limit, usage_count,
			 created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, NOW(), NOW())
		 RETURNING id, usage_count, created_at, updated_at`,
		v.Code, v.Active, v.StartsAt, v.ExpiresAt, v.DiscountType, v.DiscountValue,
		v.MaxDiscount, v.MinPurchase, v.AllCategories, v.UsageLimit).Scan(
		&v.ID, &v.UsageCount, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create voucher: %w", err)
	}
	return v, nil
}

func AddVoucherCategory(ctx context.Context, db *sql.DB, voucherID, categoryID int64) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO voucher_categories (voucher_id, category_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		voucherID, categoryID)
	if err != nil {
		return fmt.Errorf("add voucher category: %w", err)
	}
	return nil
}

func GetVoucherByCode(ctx context.Context, db *sql.DB, code string) (*models.Voucher, error) {
	v := &models.Voucher{}
	err := db.QueryRowContext(ctx,
		`SELECT id, code, active, starts_at, expires_at, discount_type, discount_value,
		        max_discount, min_purchase, all_categories, usage_limit, usage_count,
		        created_at, updated_at
		 FROM vouchers
		 WHERE code = $1`,
		code).Scan(
		&v.ID, &v.Code, &v.Active, &v.StartsAt, &v.ExpiresAt, &v.DiscountType,
		&v.DiscountValue, &v.MaxDiscount, &v.MinPurchase, &v.AllCategories,
		&v.UsageLimit, &v.UsageCount, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrVoucherNotFound
		}
		return nil, fmt.Errorf("get voucher: %w", err)
	}
	return v, nil
}
