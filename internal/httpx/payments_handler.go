package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/safar/topup-store/internal/settlement"
)

// SessionFunc resolves the authenticated caller from a request; returning nil
// means guest. Session retrieval itself belongs to the auth layer, not here.
type SessionFunc func(*http.Request) *settlement.Session

type PaymentsHandler struct {
	Settlement *settlement.Service
	Session    SessionFunc
}

type initiateRequest struct {
	Contact            string `json:"contact"`
	ProductCode        string `json:"product_code"`
	PaymentMethodCode  string `json:"payment_method_code"`
	VoucherCode        string `json:"voucher_code,omitempty"`
	TargetAccountID    string `json:"target_account_id"`
	TargetServerID     string `json:"target_server_id"`
	TransactionType    string `json:"transaction_type"`
	ProvisioningTarget string `json:"provisioning_target"`
	DisplayName        string `json:"display_name"`
}

func (h *PaymentsHandler) Register(r *chi.Mux) {
	r.Post("/api/payment/initiate", h.initiate)
}

func (h *PaymentsHandler) initiate(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var sess *settlement.Session
	if h.Session != nil {
		sess = h.Session(r)
	}

	resp, err := h.Settlement.Initiate(r.Context(), settlement.Request{
		Contact:            req.Contact,
		ProductCode:        req.ProductCode,
		MethodCode:         req.PaymentMethodCode,
		VoucherCode:        req.VoucherCode,
		TargetAccountID:    req.TargetAccountID,
		TargetServerID:     req.TargetServerID,
		TransactionType:    req.TransactionType,
		ProvisioningTarget: req.ProvisioningTarget,
		DisplayName:        req.DisplayName,
	}, sess)
	if err != nil {
		code, message := statusFor(err)
		writeError(w, code, message)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
