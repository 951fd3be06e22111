package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

type HoldRepository struct {
	db
}

func NewHoldRepository(pool *pgxpool.Pool) *HoldRepository {
	return &HoldRepository{db{pool: pool}}
}

// PurgeExpiredHolds deletes holds at or past expiry, limited to tierIDs
// when any are given.
func (r *HoldRepository) PurgeExpiredHolds(ctx context.Context, tierIDs []string, now time.Time) (int64, error) {
	var (
		sql  = `DELETE FROM holds WHERE expires_at <= $1`
		args = []any{now}
	)
	if len(tierIDs) > 0 {
		sql += ` AND tier_id = ANY($2::text[]::uuid[])`
		args = append(args, tierIDs)
	}

	tag, err := r.exec(ctx, sql, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("purge expired holds: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpsertHold keeps one row per (tier, session): a repeat request replaces
// quantity and expiry in place.
func (r *HoldRepository) UpsertHold(ctx context.Context, hold domain.Hold) (domain.Hold, error) {
	const stmt = `
INSERT INTO holds (id, tier_id, session_id, quantity, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (tier_id, session_id) DO UPDATE
SET quantity = EXCLUDED.quantity,
	expires_at = EXCLUDED.expires_at,
	updated_at = EXCLUDED.updated_at
RETURNING ` + holdColumns

	h, err := scanHold(r.queryRow(ctx, stmt,
		hold.ID, hold.TierID, hold.SessionID, hold.Quantity, hold.ExpiresAt, hold.CreatedAt, hold.UpdatedAt))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Hold{}, domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.Hold{}, domain.ErrTierNotFound
		}
		return domain.Hold{}, fmt.Errorf("upsert hold: %w", err)
	}
	return h, nil
}

func (r *HoldRepository) DeleteHold(ctx context.Context, tierID, sessionID string) error {
	if _, err := r.exec(ctx, `DELETE FROM holds WHERE tier_id = $1 AND session_id = $2`, tierID, sessionID); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete hold: %w", err)
	}
	return nil
}

func (r *HoldRepository) ListActiveHolds(ctx context.Context, bookableID, sessionID string, now time.Time) ([]domain.Hold, error) {
	const query = `
SELECT h.id, h.tier_id, h.session_id, h.quantity, h.expires_at, h.created_at, h.updated_at
FROM holds h
JOIN ticket_tiers t ON t.id = h.tier_id
WHERE t.bookable_id = $1 AND h.session_id = $2 AND h.expires_at > $3
ORDER BY h.tier_id ASC`

	rows, err := r.query(ctx, query, bookableID, sessionID, now)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list holds: %w", err)
	}
	holds, err := collect(rows, scanHold, "holds")
	if err != nil {
		return nil, err
	}
	if holds == nil {
		holds = []domain.Hold{}
	}
	return holds, nil
}
