package domain

import (
	"time"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/money"
)

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusConfirmed PurchaseStatus = "confirmed"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
	PurchaseStatusRefunded  PurchaseStatus = "refunded"
)

type PaymentState string

const (
	PaymentStatePending PaymentState = "pending"
	PaymentStatePaid    PaymentState = "paid"
	PaymentStateFailed  PaymentState = "failed"
)

// RefundStatus is empty until a refund is requested.
type RefundStatus string

const (
	RefundStatusNone      RefundStatus = ""
	RefundStatusRequested RefundStatus = "requested"
	RefundStatusApproved  RefundStatus = "approved"
	RefundStatusRejected  RefundStatus = "rejected"
)

// Purchase is one committed checkout (a booking).
type Purchase struct {
	ID               string
	BookableID       string
	SessionID        string
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	Quantity         int
	Currency         string
	TotalAmount      money.Amount
	ServiceFeeAmount money.Amount
	NetAmount        money.Amount
	Status           PurchaseStatus
	PaymentStatus    PaymentState
	RefundStatus     RefundStatus
	RefundAmount     money.Amount
	RefundReason     string
	DownloadToken    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
