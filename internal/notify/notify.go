// Package notify publishes purchase events to whatever delivers customer
// notifications. Delivery itself happens elsewhere.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/money"
)

const EventPurchaseCreated = "purchase.created"

// Event is the message body sent for a committed purchase.
type Event struct {
	Type             string       `json:"type"`
	PurchaseID       string       `json:"purchase_id"`
	BookableID       string       `json:"bookable_id"`
	CustomerName     string       `json:"customer_name"`
	CustomerEmail    string       `json:"customer_email"`
	CustomerPhone    string       `json:"customer_phone"`
	Quantity         int          `json:"quantity"`
	Currency         string       `json:"currency"`
	TotalAmount      money.Amount `json:"total_amount"`
	PaymentProvider  string       `json:"payment_provider"`
	PaymentReference string       `json:"payment_reference"`
	PaymentLink      string       `json:"payment_link,omitempty"`
	TicketCodes      []string     `json:"ticket_codes"`
	OccurredAt       time.Time    `json:"occurred_at"`
}

func NewPurchaseEvent(p domain.Purchase, tickets []domain.Ticket, pay domain.Payment) Event {
	codes := make([]string, 0, len(tickets))
	for _, t := range tickets {
		codes = append(codes, t.Code)
	}
	return Event{
		Type:             EventPurchaseCreated,
		PurchaseID:       p.ID,
		BookableID:       p.BookableID,
		CustomerName:     p.CustomerName,
		CustomerEmail:    p.CustomerEmail,
		CustomerPhone:    p.CustomerPhone,
		Quantity:         p.Quantity,
		Currency:         p.Currency,
		TotalAmount:      p.TotalAmount,
		PaymentProvider:  pay.Provider,
		PaymentReference: pay.ProviderReference,
		PaymentLink:      pay.PaymentLink,
		TicketCodes:      codes,
		OccurredAt:       p.CreatedAt,
	}
}

// Sender hands purchase events to a notification channel.
type Sender interface {
	PurchaseCreated(ctx context.Context, evt Event) error
	Close() error
}

func encode(evt Event) ([]byte, error) {
	return json.Marshal(evt)
}
