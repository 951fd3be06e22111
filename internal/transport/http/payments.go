package http

import (
	"context"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/app"
)

// PaymentConfirmer is the minimal interface needed to settle payments.
type PaymentConfirmer interface {
	Confirm(ctx context.Context, in app.ConfirmPaymentInput) (app.ConfirmPaymentResult, error)
	ConfirmCallback(ctx context.Context, provider string, payload []byte, header http.Header) (app.ConfirmPaymentResult, error)
}

type paymentConfirmRequest struct {
	Provider  string `json:"provider" validate:"required"`
	Reference string `json:"reference" validate:"required"`
	Success   *bool  `json:"success" validate:"required"`
}

type paymentCallbackResponse struct {
	Applied  bool              `json:"applied"`
	Ignored  bool              `json:"ignored,omitempty"`
	Payment  *paymentStatus    `json:"payment,omitempty"`
	Purchase *purchaseResponse `json:"purchase,omitempty"`
}

type paymentStatus struct {
	ID        string `json:"id"`
	Provider  string `json:"provider"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// HandlePaymentCallback returns an HTTP handler for
// POST /payments/{provider}/callback. The raw body is handed to the
// provider's signature check before anything is settled. Replaying a
// callback answers 200 with applied=false.
func HandlePaymentCallback(svc PaymentConfirmer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.ConfirmCallback(r.Context(), mux.Vars(r)["provider"], payload, r.Header)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newPaymentCallbackResponse(res))
	}
}

// HandleConfirmPayment returns an HTTP handler for the operator route
// POST /admin/payments/confirm, used for manual payments and for
// reconciling providers by hand.
func HandleConfirmPayment(svc PaymentConfirmer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentConfirmRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.Confirm(r.Context(), app.ConfirmPaymentInput{
			Provider:  req.Provider,
			Reference: req.Reference,
			Success:   *req.Success,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newPaymentCallbackResponse(res))
	}
}

func newPaymentCallbackResponse(res app.ConfirmPaymentResult) paymentCallbackResponse {
	if res.Ignored {
		return paymentCallbackResponse{Ignored: true}
	}
	purchase := newPurchaseResponse(res.Purchase)
	return paymentCallbackResponse{
		Applied: res.Applied,
		Payment: &paymentStatus{
			ID:        res.Payment.ID,
			Provider:  res.Payment.Provider,
			Reference: res.Payment.ProviderReference,
			Status:    string(res.Payment.Status),
		},
		Purchase: &purchase,
	}
}
