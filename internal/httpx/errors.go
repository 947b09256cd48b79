package httpx

import (
	"errors"
	"net/http"

	"github.com/safar/topup-store/internal/database"
	"github.com/safar/topup-store/internal/gateway"
	"github.com/safar/topup-store/internal/settlement"
)

// statusFor maps settlement errors onto the response taxonomy: 400 for
// validation and business-rule failures, 404 for missing catalog entries, the
// provider's own status for gateway rejections, 503 for a timed-out (and thus
// retryable) transaction, 500 for configuration and unexpected failures.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, settlement.ErrMissingParameters):
		return http.StatusBadRequest, "Missing required parameters"
	case errors.Is(err, settlement.ErrUnauthenticated):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, database.ErrVoucherNotFound),
		errors.Is(err, database.ErrVoucherExhausted),
		errors.Is(err, database.ErrMinPurchaseNotMet),
		errors.Is(err, database.ErrVoucherNotApplicable),
		errors.Is(err, database.ErrInsufficientBalance):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrCategoryNotFound),
		errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, database.ErrUserNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, gateway.ErrNotConfigured):
		return http.StatusInternalServerError, "Server configuration error"
	case errors.Is(err, gateway.ErrInvalidResponse):
		return http.StatusInternalServerError, err.Error()
	case errors.Is(err, database.ErrTransactionTimeout):
		return http.StatusServiceUnavailable, "Transaction timed out, please retry"
	}

	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		return gwErr.Status, gwErr.Message
	}

	return http.StatusInternalServerError, "Error processing transaction"
}
