package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/topup-store/internal/database"
	"github.com/safar/topup-store/internal/models"
	"github.com/shopspring/decimal"
)

type CreateOrderParams struct {
	OrderID         string
	Reference       string
	Method          string
	BuyerPhone      string
	Amount          decimal.Decimal
	ProductCode     string
	Profit          decimal.Decimal
	TransactionType string
	Username        string
	TargetAccountID string
	TargetServerID  string
	SupplierCode    string
	Nickname        string
	ViaSupplier     bool
}

// CreateOrderRecords writes the payment and purchase rows for one attempt,
// both PENDING, before the outcome of the payment is known. The shared order
// id is unique in both tables, so a duplicate id can never insert twice.
// Returns the payment row id, exposed to the caller as the transaction id.
func CreateOrderRecords(ctx context.Context, tx *sql.Tx, p CreateOrderParams) (int64, error) {
	var paymentID int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO payments
			(order_id, method, reference, status, buyer_phone, amount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 RETURNING id`,
		p.OrderID, p.Method, p.Reference, models.StatusPending, p.BuyerPhone, p.Amount).Scan(&paymentID)
	if err != nil {
		return 0, fmt.Errorf("create payment record: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO purchases
			(order_id, product_code, price, profit, status, transaction_type, username,
			 target_account_id, target_server_id, supplier_code, nickname, reference,
			 via_supplier, notification_sent, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, false, NOW(), NOW())`,
		p.OrderID, p.ProductCode, p.Amount, p.Profit, models.StatusPending,
		p.TransactionType, p.Username, p.TargetAccountID, p.TargetServerID,
		p.SupplierCode, p.Nickname, p.Reference, p.ViaSupplier)
	if err != nil {
		return 0, fmt.Errorf("create purchase record: %w", err)
	}

	return paymentID, nil
}

func MarkOrderPaid(ctx context.Context, tx *sql.Tx, orderID string) error {
	return setOrderStatus(ctx, tx, orderID, models.StatusPaid)
}

func MarkOrderFailed(ctx context.Context, tx *sql.Tx, orderID string) error {
	return setOrderStatus(ctx, tx, orderID, models.StatusFailed)
}

func setOrderStatus(ctx context.Context, tx *sql.Tx, orderID, status string) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE payments SET status = $1, updated_at = NOW() WHERE order_id = $2`,
		status, orderID)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	} else if n == 0 {
		return database.ErrOrderNotFound
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE purchases SET status = $1, updated_at = NOW() WHERE order_id = $2`,
		status, orderID)
	if err != nil {
		return fmt.Errorf("update purchase status: %w", err)
	}
	return nil
}

// SetPaymentPointer stores the provider-issued payment pointer (redirect URL
// or virtual-account number) on the payment record.
func SetPaymentPointer(ctx context.Context, tx *sql.Tx, orderID, pointer string) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE payments SET pointer = $1, updated_at = NOW() WHERE order_id = $2`,
		pointer, orderID)
	if err != nil {
		return fmt.Errorf("set payment pointer: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	} else if n == 0 {
		return database.ErrOrderNotFound
	}
	return nil
}

// SetPurchaseOutcome records the supplier's verdict: the mapped status and,
// when present, the supplier-issued serial number.
func SetPurchaseOutcome(ctx context.Context, tx *sql.Tx, orderID, status string, serial sql.NullString) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE purchases
		 SET status = $1,
		     serial_number = COALESCE($2, serial_number),
		     updated_at = NOW()
		 WHERE order_id = $3`,
		status, serial, orderID)
	if err != nil {
		return fmt.Errorf("set purchase outcome: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	} else if n == 0 {
		return database.ErrOrderNotFound
	}
	return nil
}

type OrderDetail struct {
	Payment  models.Payment  `json:"payment"`
	Purchase models.Purchase `json:"purchase"`
}

func GetOrderDetail(ctx context.Context, db *sql.DB, orderID string) (*OrderDetail, error) {
	d := &OrderDetail{}

	err := db.QueryRowContext(ctx,
		`SELECT id, order_id, method, reference, status, buyer_phone, amount, pointer,
		        created_at, updated_at
		 FROM payments
		 WHERE order_id = $1`,
		orderID).Scan(
		&d.Payment.ID, &d.Payment.OrderID, &d.Payment.Method, &d.Payment.Reference,
		&d.Payment.Status, &d.Payment.BuyerPhone, &d.Payment.Amount, &d.Payment.Pointer,
		&d.Payment.CreatedAt, &d.Payment.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get payment record: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT id, order_id, product_code, price, profit, status, transaction_type,
		        username, target_account_id, target_server_id, supplier_code, nickname,
		        reference, serial_number, via_supplier, notification_sent,
		        created_at, updated_at
		 FROM purchases
		 WHERE order_id = $1`,
		orderID).Scan(
		&d.Purchase.ID, &d.Purchase.OrderID, &d.Purchase.ProductCode, &d.Purchase.Price,
		&d.Purchase.Profit, &d.Purchase.Status, &d.Purchase.TransactionType,
		&d.Purchase.Username, &d.Purchase.TargetAccountID, &d.Purchase.TargetServerID,
		&d.Purchase.SupplierCode, &d.Purchase.Nickname, &d.Purchase.Reference,
		&d.Purchase.SerialNumber, &d.Purchase.ViaSupplier, &d.Purchase.NotificationSent,
		&d.Purchase.CreatedAt, &d.Purchase.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get purchase record: %w", err)
	}

	return d, nil
}

// ListPurchasesCursor pages through a buyer's purchase history, newest first,
// keyed by the contact number on the payment record.
func ListPurchasesCursor(ctx context.Context, db *sql.DB, buyerPhone, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `
		SELECT pu.id, pu.order_id, pu.product_code, pu.price, pu.profit, pu.status,
		       pu.transaction_type, pu.username, pu.target_account_id, pu.target_server_id,
		       pu.supplier_code, pu.nickname, pu.reference, pu.serial_number,
		       pu.via_supplier, pu.notification_sent, pu.created_at, pu.updated_at
		FROM purchases pu
		JOIN payments pa ON pa.order_id = pu.order_id
		WHERE pa.buyer_phone = $1
		  AND (pu.created_at, pu.id) < ($2, $3)
		ORDER BY pu.created_at DESC, pu.id DESC
		LIMIT $4`

	rows, err := db.QueryContext(ctx, query, buyerPhone, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []models.Purchase
	for rows.Next() {
		var pu models.Purchase
		err := rows.Scan(
			&pu.ID, &pu.OrderID, &pu.ProductCode, &pu.Price, &pu.Profit, &pu.Status,
			&pu.TransactionType, &pu.Username, &pu.TargetAccountID, &pu.TargetServerID,
			&pu.SupplierCode, &pu.Nickname, &pu.Reference, &pu.SerialNumber,
			&pu.ViaSupplier, &pu.NotificationSent, &pu.CreatedAt, &pu.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, pu)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(purchases) > limit
	if hasMore {
		purchases = purchases[:limit]
	}

	var nextCursor string
	if hasMore && len(purchases) > 0 {
		last := purchases[len(purchases)-1]
		nextCursor = EncodeCursor(PurchaseCursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	return &CursorPage{
		Items:      purchases,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}
