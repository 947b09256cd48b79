package store

import (
	"time"

	"github.com/safar/topup-store/internal/models"
	"github.com/shopspring/decimal"
)

// ResolvePrice picks the unit price for a product: an unexpired flash sale
// wins over everything, then the platinum tier price, then the base price.
func ResolvePrice(p *models.Product, role string, now time.Time) decimal.Decimal {
	if p.FlashSale && p.FlashSaleEndsAt.Valid && now.Before(p.FlashSaleEndsAt.Time) {
		return p.FlashSalePrice
	}
	if role == models.RolePlatinum {
		return p.PlatinumPrice
	}
	return p.Price
}
