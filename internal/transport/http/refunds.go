package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

// Refunder is the minimal interface needed for the refund endpoints.
type Refunder interface {
	RequestRefund(ctx context.Context, purchaseID, reason string) (domain.Purchase, error)
	ProcessRefund(ctx context.Context, purchaseID string, approved bool) (domain.Purchase, error)
}

type refundRequest struct {
	Reason string `json:"reason" validate:"required,min=10"`
}

type processRefundRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

// HandleRequestRefund returns an HTTP handler for POST /bookings/{id}/refund.
func HandleRequestRefund(svc Refunder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refundRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		p, err := svc.RequestRefund(r.Context(), mux.Vars(r)["id"], req.Reason)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newPurchaseResponse(p))
	}
}

// HandleProcessRefund returns an HTTP handler for
// POST /bookings/{id}/refund/process.
func HandleProcessRefund(svc Refunder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req processRefundRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		p, err := svc.ProcessRefund(r.Context(), mux.Vars(r)["id"], *req.Approved)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newPurchaseResponse(p))
	}
}
