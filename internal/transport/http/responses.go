package http

import (
	"encoding/json"
	"time"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/money"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/payment"
)

type purchaseResponse struct {
	ID               string        `json:"id"`
	BookableID       string        `json:"bookable_id"`
	CustomerName     string        `json:"customer_name"`
	CustomerEmail    string        `json:"customer_email"`
	CustomerPhone    string        `json:"customer_phone"`
	Quantity         int           `json:"quantity"`
	Currency         string        `json:"currency"`
	TotalAmount      money.Amount  `json:"total_amount"`
	ServiceFeeAmount money.Amount  `json:"service_fee_amount"`
	NetAmount        money.Amount  `json:"net_amount"`
	Status           string        `json:"status"`
	PaymentStatus    string        `json:"payment_status"`
	RefundStatus     *string       `json:"refund_status"`
	RefundAmount     *money.Amount `json:"refund_amount"`
	RefundReason     string        `json:"refund_reason,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func newPurchaseResponse(p domain.Purchase) purchaseResponse {
	resp := purchaseResponse{
		ID:               p.ID,
		BookableID:       p.BookableID,
		CustomerName:     p.CustomerName,
		CustomerEmail:    p.CustomerEmail,
		CustomerPhone:    p.CustomerPhone,
		Quantity:         p.Quantity,
		Currency:         p.Currency,
		TotalAmount:      p.TotalAmount,
		ServiceFeeAmount: p.ServiceFeeAmount,
		NetAmount:        p.NetAmount,
		Status:           string(p.Status),
		PaymentStatus:    string(p.PaymentStatus),
		RefundReason:     p.RefundReason,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.RefundStatus != domain.RefundStatusNone {
		s := string(p.RefundStatus)
		resp.RefundStatus = &s
	}
	if p.RefundStatus == domain.RefundStatusApproved {
		amount := p.RefundAmount
		resp.RefundAmount = &amount
	}
	return resp
}

type ticketResponse struct {
	ID            string       `json:"id"`
	TierID        string       `json:"tier_id"`
	Code          string       `json:"code"`
	PassengerName string       `json:"passenger_name"`
	SeatNumber    string       `json:"seat_number,omitempty"`
	Price         money.Amount `json:"price"`
}

type paymentResponse struct {
	ID          string          `json:"id"`
	Provider    string          `json:"provider"`
	Channel     string          `json:"channel"`
	Status      string          `json:"status"`
	Amount      money.Amount    `json:"amount"`
	Reference   string          `json:"reference"`
	PaymentLink string          `json:"payment_link,omitempty"`
	Message     string          `json:"message,omitempty"`
	Response    json.RawMessage `json:"response,omitempty"`
}

// checkoutResponse is the purchase plus what the customer needs to pay and
// later download tickets.
type checkoutResponse struct {
	purchaseResponse
	DownloadToken string           `json:"download_token"`
	Tickets       []ticketResponse `json:"tickets"`
	Payment       paymentResponse  `json:"payment"`
}

func newCheckoutResponse(p domain.Purchase, tickets []domain.Ticket, pay domain.Payment, instr payment.Instructions) checkoutResponse {
	resp := checkoutResponse{
		purchaseResponse: newPurchaseResponse(p),
		DownloadToken:    p.DownloadToken,
		Tickets:          make([]ticketResponse, 0, len(tickets)),
		Payment: paymentResponse{
			ID:          pay.ID,
			Provider:    pay.Provider,
			Channel:     pay.Channel,
			Status:      string(pay.Status),
			Amount:      pay.Amount,
			Reference:   pay.ProviderReference,
			PaymentLink: pay.PaymentLink,
			Message:     instr.Message,
			Response:    instr.Response,
		},
	}
	for _, t := range tickets {
		resp.Tickets = append(resp.Tickets, ticketResponse{
			ID:            t.ID,
			TierID:        t.TierID,
			Code:          t.Code,
			PassengerName: t.PassengerName,
			SeatNumber:    t.SeatNumber,
			Price:         t.Price,
		})
	}
	return resp
}

type holdResponse struct {
	TierID    string    `json:"tier_id"`
	Quantity  int       `json:"quantity"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newHoldResponses(holds []domain.Hold) []holdResponse {
	out := make([]holdResponse, 0, len(holds))
	for _, h := range holds {
		out = append(out, holdResponse{TierID: h.TierID, Quantity: h.Quantity, ExpiresAt: h.ExpiresAt})
	}
	return out
}

type bookableResponse struct {
	ID             string       `json:"id"`
	OrganizerID    string       `json:"organizer_id,omitempty"`
	Title          string       `json:"title"`
	Currency       string       `json:"currency"`
	ServiceFeeRate float64      `json:"service_fee_rate"`
	ServiceFeeFlat money.Amount `json:"service_fee_flat"`
	Status         string       `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
}

func newBookableResponse(b domain.Bookable) bookableResponse {
	return bookableResponse{
		ID:             b.ID,
		OrganizerID:    b.OrganizerID,
		Title:          b.Title,
		Currency:       b.Currency,
		ServiceFeeRate: b.ServiceFeeRate,
		ServiceFeeFlat: b.ServiceFeeFlat,
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt,
	}
}

type tierResponse struct {
	ID                string        `json:"id"`
	BookableID        string        `json:"bookable_id"`
	Name              string        `json:"name"`
	Currency          string        `json:"currency"`
	Price             money.Amount  `json:"price"`
	ServiceFeeRate    *float64      `json:"service_fee_rate,omitempty"`
	ServiceFeeFlat    *money.Amount `json:"service_fee_flat,omitempty"`
	TotalQuantity     int           `json:"total_quantity"`
	RemainingQuantity int           `json:"remaining_quantity"`
	MinPerOrder       int           `json:"min_per_order,omitempty"`
	MaxPerOrder       int           `json:"max_per_order,omitempty"`
	SalesStart        *time.Time    `json:"sales_start,omitempty"`
	SalesEnd          *time.Time    `json:"sales_end,omitempty"`
}

func newTierResponse(t domain.TicketTier) tierResponse {
	return tierResponse{
		ID:                t.ID,
		BookableID:        t.BookableID,
		Name:              t.Name,
		Currency:          t.Currency,
		Price:             t.Price,
		ServiceFeeRate:    t.ServiceFeeRate,
		ServiceFeeFlat:    t.ServiceFeeFlat,
		TotalQuantity:     t.TotalQuantity,
		RemainingQuantity: t.RemainingQuantity,
		MinPerOrder:       t.MinPerOrder,
		MaxPerOrder:       t.MaxPerOrder,
		SalesStart:        t.SalesStart,
		SalesEnd:          t.SalesEnd,
	}
}
