package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/app"
)

// Checkouter is the minimal interface needed to run a checkout.
type Checkouter interface {
	Checkout(ctx context.Context, in app.CheckoutInput) (app.CheckoutResult, error)
}

type passengerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
	SeatNumber string `json:"seat_number"`
}

type checkoutLineRequest struct {
	TierID     string             `json:"tier_id" validate:"required"`
	Quantity   int                `json:"quantity" validate:"gt=0"`
	SeatNumber string             `json:"seat_number"`
	Passengers []passengerRequest `json:"passengers" validate:"dive"`
}

type checkoutRequest struct {
	SessionID      string                `json:"session_id"`
	CustomerName   string                `json:"customer_name" validate:"required"`
	CustomerEmail  string                `json:"customer_email" validate:"required,email"`
	CustomerPhone  string                `json:"customer_phone" validate:"required"`
	PaymentMethod  string                `json:"payment_method"`
	PaymentChannel string                `json:"payment_channel"`
	Tickets        []checkoutLineRequest `json:"tickets" validate:"required,min=1,dive"`
}

func (r checkoutRequest) input(bookableID string) app.CheckoutInput {
	in := app.CheckoutInput{
		BookableID:     bookableID,
		SessionID:      r.SessionID,
		CustomerName:   r.CustomerName,
		CustomerEmail:  r.CustomerEmail,
		CustomerPhone:  r.CustomerPhone,
		PaymentMethod:  r.PaymentMethod,
		PaymentChannel: r.PaymentChannel,
		Lines:          make([]app.CheckoutLine, 0, len(r.Tickets)),
	}
	for _, t := range r.Tickets {
		line := app.CheckoutLine{TierID: t.TierID, Quantity: t.Quantity, SeatNumber: t.SeatNumber}
		for _, p := range t.Passengers {
			line.Passengers = append(line.Passengers, app.Passenger(p))
		}
		in.Lines = append(in.Lines, line)
	}
	return in
}

// HandleCheckout returns an HTTP handler for POST /bookables/{id}/checkout.
func HandleCheckout(svc Checkouter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.Checkout(r.Context(), req.input(mux.Vars(r)["id"]))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, newCheckoutResponse(res.Purchase, res.Tickets, res.Payment, res.Instructions))
	}
}
