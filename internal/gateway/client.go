// Package gateway talks to the external payment gateway: it builds the signed
// charge inquiry and classifies the provider's reply into a payable pointer.
package gateway

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/safar/topup-store/internal/config"
	"github.com/shopspring/decimal"
)

var (
	ErrNotConfigured   = errors.New("payment gateway credentials are not configured")
	ErrInvalidResponse = errors.New("invalid response from payment gateway")
)

// Error mirrors a provider-side rejection: Status carries the provider's HTTP
// status so the caller can echo it, Message the provider's reason.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway error (status %d): %s", e.Status, e.Message)
}

// Methods whose payment pointer is a redirect URL (instant wallet payments)
// versus a virtual-account number (bank transfers). Anything else takes
// whichever field the provider filled.
var (
	urlMethods = map[string]bool{"DA": true, "OV": true, "SA": true, "QR": true}
	vaMethods  = map[string]bool{"I1": true, "BR": true, "B1": true, "BT": true, "SP": true, "FT": true, "M2": true, "VA": true}
)

type Client struct {
	cfg   config.GatewayConfig
	httpc *http.Client
}

func New(cfg config.GatewayConfig) *Client {
	return &Client{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Configured() bool {
	return c.cfg.MerchantCode != "" && c.cfg.APIKey != ""
}

type ChargeRequest struct {
	OrderID      string
	Amount       decimal.Decimal
	ProductName  string
	MethodCode   string
	CustomerName string
	Phone        string
}

type Charge struct {
	Reference     string
	PaymentURL    string
	VANumber      string
	StatusCode    string
	StatusMessage string
	// Pointer is the field the buyer pays against, picked per method type.
	Pointer string
}

type inquiryPayload struct {
	MerchantCode    string `json:"merchantCode"`
	PaymentAmount   int64  `json:"paymentAmount"`
	MerchantOrderID string `json:"merchantOrderId"`
	ProductDetails  string `json:"productDetails"`
	PaymentMethod   string `json:"paymentMethod"`
	CustomerVaName  string `json:"customerVaName"`
	PhoneNumber     string `json:"phoneNumber"`
	ReturnURL       string `json:"returnUrl"`
	CallbackURL     string `json:"callbackUrl"`
	Signature       string `json:"signature"`
	ExpiryPeriod    int    `json:"expiryPeriod"`
}

type inquiryResponse struct {
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
	Reference     string `json:"reference"`
	PaymentURL    string `json:"paymentUrl"`
	VANumber      string `json:"vaNumber"`
	Message       string `json:"message"`
}

// Signature is the integrity hash the gateway verifies: an MD5 digest over
// merchant code, order id, amount, and the merchant key, concatenated in that
// order.
func Signature(merchantCode, orderID string, amount int64, apiKey string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s%s%d%s", merchantCode, orderID, amount, apiKey)))
	return hex.EncodeToString(sum[:])
}

// CreateCharge submits the charge inquiry. Provider rejections and transport
// failures both come back as *Error so the orchestrator can record the
// attempt as FAILED and mirror the status to the caller.
func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	amount := req.Amount.Round(0).IntPart()
	payload := inquiryPayload{
		MerchantCode:    c.cfg.MerchantCode,
		PaymentAmount:   amount,
		MerchantOrderID: req.OrderID,
		ProductDetails:  req.ProductName,
		PaymentMethod:   req.MethodCode,
		CustomerVaName:  req.CustomerName,
		PhoneNumber:     req.Phone,
		ReturnURL:       fmt.Sprintf("%s/%s", c.cfg.ReturnURL, req.OrderID),
		CallbackURL:     c.cfg.CallbackURL,
		Signature:       Signature(c.cfg.MerchantCode, req.OrderID, amount, c.cfg.APIKey),
		ExpiryPeriod:    c.cfg.ExpiryPeriod,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal inquiry: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/api/merchant/v2/inquiry", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build inquiry request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, &Error{Status: http.StatusInternalServerError, Message: "Payment gateway error"}
	}
	defer resp.Body.Close()

	var data inquiryResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil && resp.StatusCode < 300 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if resp.StatusCode >= 300 {
		msg := data.Message
		if msg == "" {
			msg = data.StatusMessage
		}
		if msg == "" {
			msg = "Payment gateway error"
		}
		return nil, &Error{Status: resp.StatusCode, Message: msg}
	}

	if data.StatusCode == "" {
		return nil, ErrInvalidResponse
	}

	return &Charge{
		Reference:     data.Reference,
		PaymentURL:    data.PaymentURL,
		VANumber:      data.VANumber,
		StatusCode:    data.StatusCode,
		StatusMessage: data.StatusMessage,
		Pointer:       paymentPointer(req.MethodCode, data.PaymentURL, data.VANumber),
	}, nil
}

func paymentPointer(methodCode, paymentURL, vaNumber string) string {
	switch {
	case urlMethods[methodCode]:
		return paymentURL
	case vaMethods[methodCode]:
		return vaNumber
	case vaNumber != "":
		return vaNumber
	default:
		return paymentURL
	}
}
