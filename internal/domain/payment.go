package domain

import (
	"encoding/json"
	"time"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/money"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

const (
	RefundProvider = "system"
	RefundChannel  = "REFUND"
)

// Payment is one gateway attempt tied to a purchase. Approved refunds are
// recorded as a synthetic negative-amount payment.
type Payment struct {
	ID                string
	PurchaseID        string
	Provider          string
	Method            string
	Channel           string
	Status            PaymentStatus
	Amount            money.Amount
	FeeAmount         money.Amount
	Currency          string
	ProviderReference string
	PaymentLink       string
	ProviderPayload   json.RawMessage
	Description       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
