package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is a storefront catalog entry. The core reads it, never writes it;
// FlashSalePrice only applies while FlashSale is set and FlashSaleEndsAt is in
// the future.
type Product struct {
	ID              int64           `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	CategoryID      int64           `json:"category_id"`
	Price           decimal.Decimal `json:"price"`
	PlatinumPrice   decimal.Decimal `json:"platinum_price"`
	FlashSale       bool            `json:"flash_sale"`
	FlashSalePrice  decimal.Decimal `json:"flash_sale_price"`
	FlashSaleEndsAt sql.NullTime    `json:"flash_sale_ends_at"`
	Profit          decimal.Decimal `json:"profit"`
	SupplierCode    string          `json:"supplier_code"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type Banner struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	LinkURL   string    `json:"link_url"`
	Active    bool      `json:"active"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	DiscountPercentage = "PERCENTAGE"
	DiscountFixed      = "FIXED"
)

// Voucher usage is bounded by UsageLimit when set; UsageCount may only grow
// through the row-locked increment in the store layer.
type Voucher struct {
	ID            int64               `json:"id"`
	Code          string              `json:"code"`
	Active        bool                `json:"active"`
	StartsAt      time.Time           `json:"starts_at"`
	ExpiresAt     time.Time           `json:"expires_at"`
	DiscountType  string              `json:"discount_type"`
	DiscountValue decimal.Decimal     `json:"discount_value"`
	MaxDiscount   decimal.NullDecimal `json:"max_discount"`
	MinPurchase   decimal.NullDecimal `json:"min_purchase"`
	AllCategories bool                `json:"all_categories"`
	UsageLimit    sql.NullInt64       `json:"usage_limit"`
	UsageCount    int                 `json:"usage_count"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type PaymentMethod struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	RolePlatinum = "Platinum"
	RoleMember   = "Member"
)

type User struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	Role      string          `json:"role"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Payment is the payment-side record of one attempted transaction. Pointer
// carries whatever the gateway hands back for the buyer to pay against: a
// redirect URL for wallet-style methods or a virtual-account number for bank
// transfers.
type Payment struct {
	ID         int64           `json:"id"`
	OrderID    string          `json:"order_id"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference"`
	Status     string          `json:"status"`
	BuyerPhone string          `json:"buyer_phone"`
	Amount     decimal.Decimal `json:"amount"`
	Pointer    sql.NullString  `json:"pointer"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Purchase is the provisioning-side record, sharing the Payment's order id.
type Purchase struct {
	ID              int64           `json:"id"`
	OrderID         string          `json:"order_id"`
	ProductCode     string          `json:"product_code"`
	Price           decimal.Decimal `json:"price"`
	Profit          decimal.Decimal `json:"profit"`
	Status          string          `json:"status"`
	TransactionType string          `json:"transaction_type"`
	Username        string          `json:"username"`
	TargetAccountID string          `json:"target_account_id"`
	TargetServerID  string          `json:"target_server_id"`
	SupplierCode    string          `json:"supplier_code"`
	Nickname        string          `json:"nickname"`
	Reference       string          `json:"reference"`
	SerialNumber    sql.NullString  `json:"serial_number"`
	ViaSupplier     bool            `json:"via_supplier"`
	NotificationSent bool           `json:"notification_sent"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
