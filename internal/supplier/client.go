// Package supplier submits provisioning requests to the digital-goods
// supplier and maps its verdict onto the purchase lifecycle.
package supplier

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/safar/topup-store/internal/config"
	"github.com/safar/topup-store/internal/models"
)

// Supplier-side status strings.
const (
	StatusPending = "Pending"
	StatusSuccess = "Sukses"
)

type Client struct {
	cfg   config.SupplierConfig
	httpc *http.Client
}

func New(cfg config.SupplierConfig) *Client {
	return &Client{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
	}
}

type TopUpRequest struct {
	ProductCode     string
	TargetAccountID string
	TargetServerID  string
	Reference       string
}

type TopUpResult struct {
	Status       string `json:"status"`
	SerialNumber string `json:"sn"`
	Message      string `json:"message"`
}

// PurchaseStatus maps the supplier's verdict onto the purchase record:
// Pending means the supplier accepted and is still provisioning, Sukses means
// delivered, anything else is a failure.
func (r *TopUpResult) PurchaseStatus() string {
	switch r.Status {
	case StatusPending:
		return models.StatusProcess
	case StatusSuccess:
		return models.StatusSuccess
	default:
		return models.StatusFailed
	}
}

type topUpPayload struct {
	Username        string `json:"username"`
	ProductCode     string `json:"buyer_sku_code"`
	TargetAccountID string `json:"customer_no"`
	TargetServerID  string `json:"server_id,omitempty"`
	Reference       string `json:"ref_id"`
	Sign            string `json:"sign"`
}

type topUpResponse struct {
	Data TopUpResult `json:"data"`
}

// Sign authenticates a top-up: md5 over username, API key, and the order's
// internal reference.
func Sign(username, apiKey, reference string) string {
	sum := md5.Sum([]byte(username + apiKey + reference))
	return hex.EncodeToString(sum[:])
}

func (c *Client) TopUp(ctx context.Context, req TopUpRequest) (*TopUpResult, error) {
	payload := topUpPayload{
		Username:        c.cfg.Username,
		ProductCode:     req.ProductCode,
		TargetAccountID: req.TargetAccountID,
		TargetServerID:  req.TargetServerID,
		Reference:       req.Reference,
		Sign:            Sign(c.cfg.Username, c.cfg.APIKey, req.Reference),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal topup: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/transaction", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build topup request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("supplier topup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("supplier topup: unexpected status %d", resp.StatusCode)
	}

	var data topUpResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode topup response: %w", err)
	}

	return &data.Data, nil
}
