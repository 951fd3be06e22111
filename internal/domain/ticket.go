package domain

import (
	"time"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/money"
)

// Ticket is one issued, individually scannable unit of a purchase.
// Price is a snapshot taken at issuance.
type Ticket struct {
	ID             string
	PurchaseID     string
	TierID         string
	Code           string
	PassengerName  string
	PassengerEmail string
	PassengerPhone string
	SeatNumber     string
	Price          money.Amount
	Scanned        bool
	ScannedAt      *time.Time
	CreatedAt      time.Time
}
