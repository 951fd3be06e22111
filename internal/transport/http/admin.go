package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/app"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/money"
)

// CatalogAdmin is the minimal interface needed for the admin catalog
// endpoints operators use to seed bookables and tiers.
type CatalogAdmin interface {
	CreateBookable(ctx context.Context, in app.CreateBookableInput) (domain.Bookable, error)
	ListBookables(ctx context.Context) ([]domain.Bookable, error)
	SetBookableStatus(ctx context.Context, bookableID string, status domain.BookableStatus) (domain.Bookable, error)
	CreateTier(ctx context.Context, in app.CreateTierInput) (domain.TicketTier, error)
	ListTiers(ctx context.Context, bookableID string) ([]domain.TicketTier, error)
}

// HandleAdminBookables returns an HTTP handler for admin bookable
// creation/listing.
func HandleAdminBookables(svc CatalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			bookables, err := svc.ListBookables(r.Context())
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			resp := make([]bookableResponse, 0, len(bookables))
			for _, b := range bookables {
				resp = append(resp, newBookableResponse(b))
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			var req createBookableRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			b, err := svc.CreateBookable(r.Context(), app.CreateBookableInput{
				OrganizerID:    req.OrganizerID,
				Title:          req.Title,
				Currency:       req.Currency,
				ServiceFeeRate: req.ServiceFeeRate,
				ServiceFeeFlat: req.ServiceFeeFlat,
				Status:         domain.BookableStatus(req.Status),
			})
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, newBookableResponse(b))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleAdminBookableStatus returns an HTTP handler that publishes, archives
// or unpublishes a bookable.
func HandleAdminBookableStatus(svc CatalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bookableStatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		b, err := svc.SetBookableStatus(r.Context(), mux.Vars(r)["id"], domain.BookableStatus(req.Status))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newBookableResponse(b))
	}
}

// HandleAdminTiers returns an HTTP handler for admin tier creation/listing.
func HandleAdminTiers(svc CatalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookableID := mux.Vars(r)["id"]

		switch r.Method {
		case http.MethodGet:
			tiers, err := svc.ListTiers(r.Context(), bookableID)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			resp := make([]tierResponse, 0, len(tiers))
			for _, t := range tiers {
				resp = append(resp, newTierResponse(t))
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			var req createTierRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			tier, err := svc.CreateTier(r.Context(), app.CreateTierInput{
				BookableID:     bookableID,
				Name:           req.Name,
				Price:          req.Price,
				ServiceFeeRate: req.ServiceFeeRate,
				ServiceFeeFlat: req.ServiceFeeFlat,
				TotalQuantity:  req.TotalQuantity,
				MinPerOrder:    req.MinPerOrder,
				MaxPerOrder:    req.MaxPerOrder,
				SalesStart:     req.SalesStart,
				SalesEnd:       req.SalesEnd,
			})
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, newTierResponse(tier))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

type createBookableRequest struct {
	OrganizerID    string       `json:"organizer_id"`
	Title          string       `json:"title" validate:"required"`
	Currency       string       `json:"currency" validate:"required,len=3"`
	ServiceFeeRate float64      `json:"service_fee_rate" validate:"gte=0,lt=1"`
	ServiceFeeFlat money.Amount `json:"service_fee_flat" validate:"gte=0"`
	Status         string       `json:"status" validate:"omitempty,oneof=draft published archived"`
}

type bookableStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft published archived"`
}

type createTierRequest struct {
	Name           string        `json:"name" validate:"required"`
	Price          money.Amount  `json:"price" validate:"gte=0"`
	ServiceFeeRate *float64      `json:"service_fee_rate" validate:"omitempty,gte=0,lt=1"`
	ServiceFeeFlat *money.Amount `json:"service_fee_flat"`
	TotalQuantity  int           `json:"total_quantity" validate:"gt=0"`
	MinPerOrder    int           `json:"min_per_order" validate:"gte=0"`
	MaxPerOrder    int           `json:"max_per_order" validate:"gte=0"`
	SalesStart     *time.Time    `json:"sales_start"`
	SalesEnd       *time.Time    `json:"sales_end"`
}
