package app

import (
	"context"
	"time"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/clock"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

// InventoryRepository is the storage the ledger needs. Every method must run
// on the transaction carried by ctx.
type InventoryRepository interface {
	GetTierForUpdate(ctx context.Context, tierID string) (domain.TicketTier, error)
	SumActiveHolds(ctx context.Context, tierID, excludingSession string, now time.Time) (int, error)
	DecrementRemaining(ctx context.Context, tierID string, quantity int) error
}

// Ledger owns ticket-tier remaining counts. It is the single place that
// decrements RemainingQuantity, always under the tier's row lock.
type Ledger struct {
	repo  InventoryRepository
	clock clock.Clock
}

func NewLedger(repo InventoryRepository, clk clock.Clock) *Ledger {
	return &Ledger{repo: repo, clock: clk}
}

// Reservation is the outcome of a successful decrement.
type Reservation struct {
	Tier     domain.TicketTier
	Quantity int
}

// Available locks the tier and returns it along with the quantity other
// sessions have not soft-reserved. The lock lives until the enclosing
// transaction ends.
func (l *Ledger) Available(ctx context.Context, tierID, excludingSession string) (domain.TicketTier, int, error) {
	tier, err := l.repo.GetTierForUpdate(ctx, tierID)
	if err != nil {
		return domain.TicketTier{}, 0, err
	}
	held, err := l.repo.SumActiveHolds(ctx, tierID, excludingSession, l.clock.Now())
	if err != nil {
		return domain.TicketTier{}, 0, err
	}
	available := tier.RemainingQuantity - held
	if available < 0 {
		available = 0
	}
	return tier, available, nil
}

// Check is Available plus the sufficiency test, without mutating anything.
func (l *Ledger) Check(ctx context.Context, tierID string, quantity int, excludingSession string) (domain.TicketTier, error) {
	if quantity <= 0 {
		return domain.TicketTier{}, domain.ErrInvalidQuantity
	}
	tier, available, err := l.Available(ctx, tierID, excludingSession)
	if err != nil {
		return domain.TicketTier{}, err
	}
	if available < quantity {
		return domain.TicketTier{}, &domain.InsufficientInventoryError{
			TierID:    tier.ID,
			TierName:  tier.Name,
			Requested: quantity,
			Available: available,
		}
	}
	return tier, nil
}

// Reserve validates availability and decrements the tier in one locked step.
func (l *Ledger) Reserve(ctx context.Context, tierID string, quantity int, excludingSession string) (Reservation, error) {
	tier, err := l.Check(ctx, tierID, quantity, excludingSession)
	if err != nil {
		return Reservation{}, err
	}
	if err := l.repo.DecrementRemaining(ctx, tierID, quantity); err != nil {
		return Reservation{}, err
	}
	tier.RemainingQuantity -= quantity
	return Reservation{Tier: tier, Quantity: quantity}, nil
}
