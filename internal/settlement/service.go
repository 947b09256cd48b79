// Package settlement runs the payment-initiation transaction: pricing,
// voucher application, order-record creation, and either a wallet debit with
// supplier provisioning or an external gateway charge, inside one
// serializable unit of work.
package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/safar/topup-store/internal/config"
	"github.com/safar/topup-store/internal/database"
	"github.com/safar/topup-store/internal/gateway"
	"github.com/safar/topup-store/internal/models"
	"github.com/safar/topup-store/internal/store"
	"github.com/safar/topup-store/internal/supplier"
)

// MethodWallet is the payment-method code settled against the internal
// wallet balance instead of the gateway.
const MethodWallet = "SALDO"

var (
	ErrMissingParameters = errors.New("missing required parameters")
	ErrUnauthenticated   = errors.New("wallet payment requires a signed-in user")
)

type Gateway interface {
	Configured() bool
	CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error)
}

type Supplier interface {
	TopUp(ctx context.Context, req supplier.TopUpRequest) (*supplier.TopUpResult, error)
}

type Publisher interface {
	OrderSettled(orderID, reference, status, method, amount string)
}

// Session identifies an authenticated caller. A nil session is a guest.
type Session struct {
	UserID   int64
	Username string
	Role     string
}

type Request struct {
	Contact            string
	ProductCode        string
	MethodCode         string
	VoucherCode        string
	TargetAccountID    string
	TargetServerID     string
	TransactionType    string
	ProvisioningTarget string
	DisplayName        string
}

type Response struct {
	PaymentURL        string `json:"payment_url"`
	Reference         string `json:"reference"`
	ProviderReference string `json:"provider_reference,omitempty"`
	StatusCode        string `json:"status_code"`
	StatusMessage     string `json:"status_message"`
	OrderID           string `json:"order_id"`
	TransactionID     int64  `json:"transaction_id"`
}

type Service struct {
	db       *sql.DB
	gateway  Gateway
	supplier Supplier
	events   Publisher // optional
	app      config.AppConfig
}

func New(db *sql.DB, gw Gateway, sup Supplier, events Publisher, app config.AppConfig) *Service {
	return &Service{
		db:       db,
		gateway:  gw,
		supplier: sup,
		events:   events,
		app:      app,
	}
}

// Initiate processes one payment request end to end. Everything up to the
// external calls runs under serializable isolation with explicit row locks on
// the voucher and wallet rows; business-rule failures roll the whole attempt
// back, including the PENDING order records and any voucher reservation.
//
// The one deliberate exception: a gateway rejection is caught inside the
// transaction, both order records are marked FAILED, and the transaction
// commits normally so the attempt stays on record; the gateway error is then
// surfaced to the caller.
func (s *Service) Initiate(ctx context.Context, req Request, sess *Session) (*Response, error) {
	if req.MethodCode == "" || req.ProductCode == "" || req.Contact == "" {
		return nil, ErrMissingParameters
	}

	// Fail fast before touching the database; only the gateway branch uses
	// these credentials, but a misconfigured deployment should not take
	// orders at all.
	if !s.gateway.Configured() {
		return nil, gateway.ErrNotConfigured
	}

	orderID := randomID("TRX")
	reference := randomID("REF")

	txType := req.TransactionType
	if txType == "" {
		txType = "Top Up"
	}
	username := "Guest"
	role := ""
	if sess != nil {
		if sess.Username != "" {
			username = sess.Username
		}
		role = sess.Role
	}

	var (
		resp        *Response
		finalStatus string
		amount      string
		gwErr       error
	)

	ctx, cancel := context.WithTimeout(ctx, s.app.TxTimeout)
	defer cancel()

	err := database.WithRetry(ctx, s.db, database.SerializableTxOptions(s.app.LockTimeout), func(tx *sql.Tx) error {
		gwErr = nil

		product, err := store.GetProductByCode(ctx, tx, req.ProductCode)
		if err != nil {
			return err
		}
		category, err := store.GetCategory(ctx, tx, product.CategoryID)
		if err != nil {
			return err
		}

		price := store.ResolvePrice(product, role, time.Now())

		if req.VoucherCode != "" {
			result, err := store.ApplyVoucher(ctx, tx, req.VoucherCode, price, category.ID)
			if err != nil {
				return err
			}
			price = result.FinalPrice
		}
		amount = price.String()

		methodName := req.MethodCode
		if method, err := store.GetPaymentMethod(ctx, tx, req.MethodCode); err != nil {
			return err
		} else if method != nil {
			methodName = method.Name
		}

		paymentID, err := store.CreateOrderRecords(ctx, tx, store.CreateOrderParams{
			OrderID:         orderID,
			Reference:       reference,
			Method:          methodName,
			BuyerPhone:      req.Contact,
			Amount:          price,
			ProductCode:     product.Code,
			Profit:          product.Profit,
			TransactionType: txType,
			Username:        username,
			TargetAccountID: req.TargetAccountID,
			TargetServerID:  req.TargetServerID,
			SupplierCode:    product.SupplierCode,
			Nickname:        req.DisplayName,
			ViaSupplier:     true,
		})
		if err != nil {
			return err
		}

		if req.MethodCode == MethodWallet {
			if sess == nil {
				return ErrUnauthenticated
			}
			if err := store.DebitBalance(ctx, tx, sess.UserID, price); err != nil {
				return err
			}
			if err := store.MarkOrderPaid(ctx, tx, orderID); err != nil {
				return err
			}

			status := models.StatusProcess
			var serial sql.NullString
			result, err := s.supplier.TopUp(ctx, supplier.TopUpRequest{
				ProductCode:     product.SupplierCode,
				TargetAccountID: req.TargetAccountID,
				TargetServerID:  req.TargetServerID,
				Reference:       reference,
			})
			if err == nil {
				status = result.PurchaseStatus()
				if result.SerialNumber != "" {
					serial = sql.NullString{String: result.SerialNumber, Valid: true}
				}
			}
			// An unreachable supplier keeps the debit and leaves the
			// purchase PROCESS; reconciliation picks it up later.
			if err := store.SetPurchaseOutcome(ctx, tx, orderID, status, serial); err != nil {
				return err
			}

			finalStatus = status
			resp = &Response{
				PaymentURL:    fmt.Sprintf("%s/invoice?invoice=%s", s.app.BaseURL, orderID),
				Reference:     reference,
				StatusCode:    "00",
				StatusMessage: "PROCESS",
				OrderID:       orderID,
				TransactionID: paymentID,
			}
			return nil
		}

		charge, err := s.gateway.CreateCharge(ctx, gateway.ChargeRequest{
			OrderID:      orderID,
			Amount:       price,
			ProductName:  product.Name,
			MethodCode:   req.MethodCode,
			CustomerName: req.DisplayName,
			Phone:        req.Contact,
		})
		if err != nil {
			// Record the rejected attempt. Returning nil lets the FAILED
			// writes commit; the gateway error is surfaced after.
			if uerr := store.MarkOrderFailed(ctx, tx, orderID); uerr != nil {
				return uerr
			}
			finalStatus = models.StatusFailed
			gwErr = err
			return nil
		}

		if err := store.SetPaymentPointer(ctx, tx, orderID, charge.Pointer); err != nil {
			return err
		}

		finalStatus = models.StatusPending
		resp = &Response{
			PaymentURL:        charge.PaymentURL,
			Reference:         reference,
			ProviderReference: charge.Reference,
			StatusCode:        charge.StatusCode,
			StatusMessage:     charge.StatusMessage,
			OrderID:           orderID,
			TransactionID:     paymentID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.OrderSettled(orderID, reference, finalStatus, req.MethodCode, amount)
	}
	if gwErr != nil {
		return nil, gwErr
	}
	return resp, nil
}

func randomID(prefix string) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return prefix + id[:16]
}
