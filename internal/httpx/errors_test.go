package httpx

import (
	"errors"
	"net/http"
	"testing"

	"github.com/safar/topup-store/internal/database"
	"github.com/safar/topup-store/internal/gateway"
	"github.com/safar/topup-store/internal/settlement"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"missing params", settlement.ErrMissingParameters, http.StatusBadRequest},
		{"unauthenticated", settlement.ErrUnauthenticated, http.StatusUnauthorized},
		{"voucher not found", database.ErrVoucherNotFound, http.StatusBadRequest},
		{"voucher exhausted", database.ErrVoucherExhausted, http.StatusBadRequest},
		{"insufficient balance", database.ErrInsufficientBalance, http.StatusBadRequest},
		{"product not found", database.ErrProductNotFound, http.StatusNotFound},
		{"order not found", database.ErrOrderNotFound, http.StatusNotFound},
		{"gateway unconfigured", gateway.ErrNotConfigured, http.StatusInternalServerError},
		{"tx timeout", database.ErrTransactionTimeout, http.StatusServiceUnavailable},
		{"wrapped", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		code, _ := statusFor(tc.err)
		require.Equal(t, tc.code, code, tc.name)
	}
}

func TestStatusForGatewayError(t *testing.T) {
	code, msg := statusFor(&gateway.Error{Status: 402, Message: "Insufficient merchant quota"})
	require.Equal(t, 402, code)
	require.Equal(t, "Insufficient merchant quota", msg)
}
