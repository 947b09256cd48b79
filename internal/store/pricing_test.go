package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/safar/topup-store/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testProduct() *models.Product {
	return &models.Product{
		Price:          decimal.NewFromInt(10000),
		PlatinumPrice:  decimal.NewFromInt(9000),
		FlashSalePrice: decimal.NewFromInt(7500),
	}
}

func TestResolvePriceFlashSale(t *testing.T) {
	now := time.Now()

	p := testProduct()
	p.FlashSale = true
	p.FlashSaleEndsAt = sql.NullTime{Time: now.Add(time.Hour), Valid: true}

	// flash sale beats every tier while the window is open
	require.True(t, ResolvePrice(p, "", now).Equal(decimal.NewFromInt(7500)))
	require.True(t, ResolvePrice(p, models.RolePlatinum, now).Equal(decimal.NewFromInt(7500)))
}

func TestResolvePriceFlashSaleExpired(t *testing.T) {
	now := time.Now()

	p := testProduct()
	p.FlashSale = true
	p.FlashSaleEndsAt = sql.NullTime{Time: now.Add(-time.Minute), Valid: true}

	require.True(t, ResolvePrice(p, models.RolePlatinum, now).Equal(decimal.NewFromInt(9000)))
	require.True(t, ResolvePrice(p, models.RoleMember, now).Equal(decimal.NewFromInt(10000)))
}

func TestResolvePriceFlashSaleWithoutExpiry(t *testing.T) {
	now := time.Now()

	// flagged flash sale but no expiry recorded: the window never applies
	p := testProduct()
	p.FlashSale = true

	require.True(t, ResolvePrice(p, "", now).Equal(decimal.NewFromInt(10000)))
}

func TestResolvePriceTiers(t *testing.T) {
	now := time.Now()
	p := testProduct()

	require.True(t, ResolvePrice(p, models.RolePlatinum, now).Equal(decimal.NewFromInt(9000)))
	require.True(t, ResolvePrice(p, models.RoleMember, now).Equal(decimal.NewFromInt(10000)))
	require.True(t, ResolvePrice(p, "", now).Equal(decimal.NewFromInt(10000)))
}
