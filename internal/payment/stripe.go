package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go"
	"github.com/stripe/stripe-go/paymentintent"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

// IntentCreator is the part of the Stripe client the adapter uses.
type IntentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeAdapter creates a card PaymentIntent. The client confirms it with
// the returned client secret, so there is no redirect link.
type StripeAdapter struct {
	intents IntentCreator
}

func NewStripeAdapter(secretKey string) *StripeAdapter {
	return &StripeAdapter{
		intents: &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}
}

// NewStripeAdapterWithClient is used by tests and custom backends.
func NewStripeAdapterWithClient(intents IntentCreator) *StripeAdapter {
	return &StripeAdapter{intents: intents}
}

type stripeAudit struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

func (a *StripeAdapter) Initiate(ctx context.Context, req Request) (Instructions, error) {
	if req.Amount <= 0 {
		return Instructions{}, domain.Validationf("card payments require a positive amount")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount.Minor()),
		Currency: stripe.String(strings.ToLower(req.Currency)),
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.AddMetadata("purchase_id", req.PurchaseID)
	params.AddMetadata("payment_id", req.PaymentID)
	params.SetIdempotencyKey(req.PaymentID)

	pi, err := a.intents.New(params)
	if err != nil {
		return Instructions{}, fmt.Errorf("create payment intent: %w", err)
	}

	raw, err := json.Marshal(stripeAudit{
		ID:           pi.ID,
		Status:       string(pi.Status),
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	})
	if err != nil {
		return Instructions{}, fmt.Errorf("encode payment intent: %w", err)
	}

	status := domain.PaymentStatusPending
	if pi.Status == stripe.PaymentIntentStatusCanceled {
		status = domain.PaymentStatusFailed
	}
	return Instructions{
		Reference: pi.ID,
		Channel:   req.Channel,
		Status:    status,
		Response:  raw,
	}, nil
}
