package store

import (
	"testing"

	"github.com/safar/topup-store/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDiscountForPercentage(t *testing.T) {
	v := &models.Voucher{
		DiscountType:  models.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
	}

	d := discountFor(v, decimal.NewFromInt(50000))
	require.True(t, d.Equal(decimal.NewFromInt(5000)), "got %s", d)
}

func TestDiscountForPercentageCapped(t *testing.T) {
	v := &models.Voucher{
		DiscountType:  models.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(50),
		MaxDiscount:   decimal.NewNullDecimal(decimal.NewFromInt(10000)),
	}

	// 50% of 100000 is 50000, but the cap wins
	d := discountFor(v, decimal.NewFromInt(100000))
	require.True(t, d.Equal(decimal.NewFromInt(10000)), "got %s", d)
}

func TestDiscountForPercentageUnderCap(t *testing.T) {
	v := &models.Voucher{
		DiscountType:  models.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(5),
		MaxDiscount:   decimal.NewNullDecimal(decimal.NewFromInt(10000)),
	}

	d := discountFor(v, decimal.NewFromInt(100000))
	require.True(t, d.Equal(decimal.NewFromInt(5000)), "got %s", d)
}

func TestDiscountForFixed(t *testing.T) {
	v := &models.Voucher{
		DiscountType:  models.DiscountFixed,
		DiscountValue: decimal.NewFromInt(2500),
	}

	d := discountFor(v, decimal.NewFromInt(10000))
	require.True(t, d.Equal(decimal.NewFromInt(2500)), "got %s", d)

	// a fixed discount larger than the price is returned as-is; the caller
	// floors the final price at zero
	d = discountFor(v, decimal.NewFromInt(1000))
	require.True(t, d.Equal(decimal.NewFromInt(2500)), "got %s", d)
}
