package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

type CatalogRepository struct {
	db
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db{pool: pool}}
}

func (r *CatalogRepository) CreateBookable(ctx context.Context, b domain.Bookable) error {
	const stmt = `
INSERT INTO bookables (id, organizer_id, title, currency, service_fee_rate, service_fee_flat, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6::numeric / 100, $7, $8)`
	_, err := r.exec(ctx, stmt,
		b.ID, b.OrganizerID, b.Title, b.Currency, b.ServiceFeeRate, b.ServiceFeeFlat.Minor(), b.Status, b.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create bookable: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ListBookables(ctx context.Context) ([]domain.Bookable, error) {
	rows, err := r.query(ctx, `SELECT `+bookableColumns+` FROM bookables ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list bookables: %w", err)
	}
	return collect(rows, scanBookable, "bookables")
}

func (r *CatalogRepository) UpdateBookableStatus(ctx context.Context, bookableID string, status domain.BookableStatus) (domain.Bookable, error) {
	b, err := scanBookable(r.queryRow(ctx,
		`UPDATE bookables SET status = $2 WHERE id = $1 RETURNING `+bookableColumns, bookableID, status))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Bookable{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Bookable{}, domain.ErrBookableNotFound
		}
		return domain.Bookable{}, fmt.Errorf("update bookable status: %w", err)
	}
	return b, nil
}

func (r *CatalogRepository) CreateTier(ctx context.Context, t domain.TicketTier) error {
	const stmt = `
INSERT INTO ticket_tiers (id, bookable_id, name, currency, price, service_fee_rate, service_fee_flat,
	total_quantity, remaining_quantity, min_per_order, max_per_order, sales_start, sales_end)
VALUES ($1, $2, $3, $4, $5::numeric / 100, $6, $7::numeric / 100, $8, $9, $10, $11, $12, $13)`

	var feeFlat *int64
	if t.ServiceFeeFlat != nil {
		minor := t.ServiceFeeFlat.Minor()
		feeFlat = &minor
	}
	_, err := r.exec(ctx, stmt,
		t.ID, t.BookableID, t.Name, t.Currency, t.Price.Minor(), t.ServiceFeeRate, feeFlat,
		t.TotalQuantity, t.RemainingQuantity, t.MinPerOrder, t.MaxPerOrder, t.SalesStart, t.SalesEnd)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isUniqueViolation(err) {
			return domain.ErrTierAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrBookableNotFound
		}
		if isCheckViolation(err) {
			return domain.Validationf("tier quantities out of range")
		}
		return fmt.Errorf("create tier: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ListTiersByBookable(ctx context.Context, bookableID string) ([]domain.TicketTier, error) {
	if _, err := r.GetBookable(ctx, bookableID); err != nil {
		return nil, err
	}

	rows, err := r.query(ctx, `SELECT `+tierColumns+` FROM ticket_tiers WHERE bookable_id = $1 ORDER BY price ASC, name ASC`, bookableID)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	tiers, err := collect(rows, scanTier, "tiers")
	if err != nil {
		return nil, err
	}
	if tiers == nil {
		tiers = []domain.TicketTier{}
	}
	return tiers, nil
}
