// Package payment routes payment attempts to provider adapters and
// normalizes what they return.
package payment

import (
	"context"
	"encoding/json"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/money"
)

// Family groups providers by how the customer completes payment.
type Family string

const (
	FamilyMobileMoney  Family = "mobile_money"
	FamilyCheckoutPage Family = "checkout_page"
	FamilyCard         Family = "card"
	FamilyManual       Family = "manual"
)

const ChannelMobile = "MOBILE"

// Request is what an adapter receives for one payment attempt.
type Request struct {
	PaymentID     string
	PurchaseID    string
	Method        string
	Channel       string
	Amount        money.Amount
	Currency      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Description   string
}

// Instructions is the normalized adapter response. Reference is what the
// system reconciles the payment by later; PaymentLink is only set for
// redirect flows.
type Instructions struct {
	Reference   string
	PaymentLink string
	Channel     string
	Status      domain.PaymentStatus
	Message     string
	Response    json.RawMessage
}

// Empty reports whether the adapter returned nothing usable.
func (i Instructions) Empty() bool {
	return i.Reference == ""
}

// Adapter talks to one provider family.
type Adapter interface {
	Initiate(ctx context.Context, req Request) (Instructions, error)
}

// AdapterFunc lets a plain function act as an Adapter.
type AdapterFunc func(ctx context.Context, req Request) (Instructions, error)

func (f AdapterFunc) Initiate(ctx context.Context, req Request) (Instructions, error) {
	return f(ctx, req)
}

// Provider registers an adapter under a provider name.
type Provider struct {
	Name    string
	Family  Family
	Adapter Adapter
}
