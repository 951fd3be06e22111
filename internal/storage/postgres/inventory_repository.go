package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

// InventoryRepository backs the ledger. All methods expect the caller's
// transaction in ctx; the tier lock taken by GetTierForUpdate lasts until
// that transaction ends.
type InventoryRepository struct {
	db
}

func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{db{pool: pool}}
}

func (r *InventoryRepository) GetTierForUpdate(ctx context.Context, tierID string) (domain.TicketTier, error) {
	t, err := scanTier(r.queryRow(ctx, `SELECT `+tierColumns+` FROM ticket_tiers WHERE id = $1 FOR UPDATE`, tierID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.TicketTier{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TicketTier{}, domain.ErrTierNotFound
		}
		return domain.TicketTier{}, fmt.Errorf("get tier: %w", err)
	}
	return t, nil
}

func (r *InventoryRepository) SumActiveHolds(ctx context.Context, tierID, excludingSession string, now time.Time) (int, error) {
	const query = `
SELECT COALESCE(SUM(quantity), 0)
FROM holds
WHERE tier_id = $1 AND session_id <> $2 AND expires_at > $3`

	var total int
	if err := r.queryRow(ctx, query, tierID, excludingSession, now).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("sum active holds: %w", err)
	}
	return total, nil
}

// DecrementRemaining refuses to go below zero even if called without the
// row lock.
func (r *InventoryRepository) DecrementRemaining(ctx context.Context, tierID string, quantity int) error {
	const stmt = `
UPDATE ticket_tiers
SET remaining_quantity = remaining_quantity - $2
WHERE id = $1 AND remaining_quantity >= $2`

	tag, err := r.exec(ctx, stmt, tierID, quantity)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isCheckViolation(err) {
			return domain.ErrInsufficientInventory
		}
		return fmt.Errorf("decrement remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientInventory
	}
	return nil
}
