package domain

import (
	"time"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/money"
)

type BookableStatus string

const (
	BookableStatusDraft     BookableStatus = "draft"
	BookableStatusPublished BookableStatus = "published"
	BookableStatusArchived  BookableStatus = "archived"
)

// Bookable is a sellable item (an event or experience) owning ticket tiers.
type Bookable struct {
	ID             string
	OrganizerID    string
	Title          string
	Currency       string
	ServiceFeeRate float64
	ServiceFeeFlat money.Amount
	Status         BookableStatus
	CreatedAt      time.Time
}

// TicketTier is a priced category within a Bookable.
//
// RemainingQuantity only ever moves through the inventory ledger while the
// tier row is locked.
type TicketTier struct {
	ID                string
	BookableID        string
	Name              string
	Currency          string
	Price             money.Amount
	ServiceFeeRate    *float64
	ServiceFeeFlat    *money.Amount
	TotalQuantity     int
	RemainingQuantity int
	MinPerOrder       int
	MaxPerOrder       int
	SalesStart        *time.Time
	SalesEnd          *time.Time
}

// FeeRate returns the tier override or the bookable default.
func (t TicketTier) FeeRate(b Bookable) float64 {
	if t.ServiceFeeRate != nil {
		return *t.ServiceFeeRate
	}
	return b.ServiceFeeRate
}

// FeeFlat returns the tier override or the bookable default.
func (t TicketTier) FeeFlat(b Bookable) money.Amount {
	if t.ServiceFeeFlat != nil {
		return *t.ServiceFeeFlat
	}
	return b.ServiceFeeFlat
}

// OnSale reports whether now falls inside the tier's sales window.
func (t TicketTier) OnSale(now time.Time) bool {
	if t.SalesStart != nil && now.Before(*t.SalesStart) {
		return false
	}
	if t.SalesEnd != nil && !now.Before(*t.SalesEnd) {
		return false
	}
	return true
}
