package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

const (
	codeMethodNotAllowed          = "method_not_allowed"
	codeNotFound                  = "not_found"
	codeInvalidRequestBody        = "invalid_request_body"
	codeValidationFailed          = "validation_failed"
	codeInvalidID                 = "invalid_id"
	codeInvalidQuantity           = "invalid_quantity"
	codeSessionRequired           = "session_id_required"
	codeInsufficientInventory     = "insufficient_inventory"
	codeUnsupportedPaymentMethod  = "unsupported_payment_method"
	codePaymentInitiationFailed   = "payment_initiation_failed"
	codeInvalidRefundState        = "invalid_refund_state"
	codePaymentAlreadySettled     = "payment_already_settled"
	codeBookableNotFound          = "bookable_not_found"
	codeTierNotFound              = "tier_not_found"
	codeTierAlreadyExists         = "tier_already_exists"
	codePurchaseNotFound          = "purchase_not_found"
	codePaymentNotFound           = "payment_not_found"
	codeForbidden                 = "forbidden"
	codeUnauthorized              = "unauthorized"
	codeInvalidSignature          = "invalid_signature"
	codeWebhookNotConfigured      = "webhook_not_configured"
	codePurchaseNotConfirmed      = "purchase_not_confirmed"
	codeInternalError             = "internal_error"
	codeServiceUnavailable        = "service_unavailable"
	internalErrorMessage          = "internal error"
	insufficientInventoryFallback = "insufficient inventory"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorStatus classifies service errors. Anything unrecognized is a 500 and
// its message is not exposed.
func errorStatus(err error) (int, string, string) {
	var insufficient *domain.InsufficientInventoryError
	switch {
	case errors.As(err, &insufficient):
		return http.StatusBadRequest, codeInsufficientInventory, insufficient.Error()
	case errors.Is(err, domain.ErrInsufficientInventory):
		return http.StatusBadRequest, codeInsufficientInventory, insufficientInventoryFallback
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, codeValidationFailed, err.Error()
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest, codeInvalidQuantity, err.Error()
	case errors.Is(err, domain.ErrSessionRequired):
		return http.StatusBadRequest, codeSessionRequired, err.Error()
	case errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest, codeInvalidID, err.Error()
	case errors.Is(err, domain.ErrUnsupportedPaymentMethod):
		return http.StatusBadRequest, codeUnsupportedPaymentMethod, err.Error()
	case errors.Is(err, domain.ErrPaymentInitiationFailed):
		return http.StatusBadRequest, codePaymentInitiationFailed, err.Error()
	case errors.Is(err, domain.ErrInvalidRefundState):
		return http.StatusBadRequest, codeInvalidRefundState, err.Error()
	case errors.Is(err, domain.ErrTierNotFound):
		return http.StatusBadRequest, codeTierNotFound, err.Error()
	case errors.Is(err, domain.ErrPaymentAlreadySettled):
		return http.StatusConflict, codePaymentAlreadySettled, err.Error()
	case errors.Is(err, domain.ErrTierAlreadyExists):
		return http.StatusConflict, codeTierAlreadyExists, err.Error()
	case errors.Is(err, domain.ErrBookableNotFound):
		return http.StatusNotFound, codeBookableNotFound, err.Error()
	case errors.Is(err, domain.ErrPurchaseNotFound):
		return http.StatusNotFound, codePurchaseNotFound, err.Error()
	case errors.Is(err, domain.ErrPaymentNotFound):
		return http.StatusNotFound, codePaymentNotFound, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, codeForbidden, err.Error()
	case errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusUnauthorized, codeInvalidSignature, domain.ErrInvalidSignature.Error()
	case errors.Is(err, domain.ErrWebhookNotConfigured):
		return http.StatusNotFound, codeWebhookNotConfigured, err.Error()
	case errors.Is(err, domain.ErrPurchaseNotConfirmed):
		return http.StatusConflict, codePurchaseNotConfirmed, err.Error()
	default:
		return http.StatusInternalServerError, codeInternalError, internalErrorMessage
	}
}

// writeServiceError writes the classified error and records the cause for
// the request logger.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := errorStatus(err)
	recordError(r.Context(), err)
	writeError(w, status, code, msg)
}
