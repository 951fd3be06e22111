package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/app"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

// HoldPlacer is the minimal interface needed for the hold endpoints.
type HoldPlacer interface {
	PlaceHold(ctx context.Context, in app.PlaceHoldInput) (app.PlaceHoldResult, error)
	ListHolds(ctx context.Context, bookableID, sessionID string) ([]domain.Hold, error)
}

type holdLineRequest struct {
	TierID   string `json:"tier_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

type placeHoldRequest struct {
	SessionID string            `json:"session_id" validate:"required"`
	Tickets   []holdLineRequest `json:"tickets" validate:"required,min=1,dive"`
}

type placeHoldResponse struct {
	ExpiresAt time.Time      `json:"expires_at"`
	Holds     []holdResponse `json:"holds"`
}

type listHoldsResponse struct {
	Holds []holdResponse `json:"holds"`
}

// HandlePlaceHold returns an HTTP handler for POST /bookables/{id}/hold.
// A tier without enough stock answers 409 and names the tier.
func HandlePlaceHold(svc HoldPlacer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req placeHoldRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		in := app.PlaceHoldInput{
			BookableID: mux.Vars(r)["id"],
			SessionID:  req.SessionID,
			Lines:      make([]app.HoldLine, 0, len(req.Tickets)),
		}
		for _, t := range req.Tickets {
			in.Lines = append(in.Lines, app.HoldLine{TierID: t.TierID, Quantity: t.Quantity})
		}

		res, err := svc.PlaceHold(r.Context(), in)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientInventory) {
				recordError(r.Context(), err)
				writeError(w, http.StatusConflict, codeInsufficientInventory, err.Error())
				return
			}
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, placeHoldResponse{
			ExpiresAt: res.ExpiresAt,
			Holds:     newHoldResponses(res.Holds),
		})
	}
}

// HandleListHolds returns an HTTP handler for GET /bookables/{id}/hold.
func HandleListHolds(svc HoldPlacer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			writeError(w, http.StatusBadRequest, codeSessionRequired, domain.ErrSessionRequired.Error())
			return
		}

		holds, err := svc.ListHolds(r.Context(), mux.Vars(r)["id"], sessionID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listHoldsResponse{Holds: newHoldResponses(holds)})
	}
}
