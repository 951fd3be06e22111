package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

type CheckoutRepository struct {
	db
}

func NewCheckoutRepository(pool *pgxpool.Pool) *CheckoutRepository {
	return &CheckoutRepository{db{pool: pool}}
}

// GetTiers reads tiers without locking; the ledger locks them later.
func (r *CheckoutRepository) GetTiers(ctx context.Context, bookableID string, tierIDs []string) ([]domain.TicketTier, error) {
	const query = `SELECT ` + tierColumns + `
FROM ticket_tiers
WHERE bookable_id = $1 AND id::text = ANY($2::text[])`

	rows, err := r.query(ctx, query, bookableID, tierIDs)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("get tiers: %w", err)
	}
	return collect(rows, scanTier, "tiers")
}

func (r *CheckoutRepository) CreatePurchase(ctx context.Context, p domain.Purchase) error {
	const stmt = `
INSERT INTO purchases (id, bookable_id, session_id, customer_name, customer_email, customer_phone,
	quantity, currency, total_amount, service_fee_amount, net_amount, status, payment_status,
	download_token, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric / 100, $10::numeric / 100, $11::numeric / 100,
	$12, $13, $14, $15, $16)`

	_, err := r.exec(ctx, stmt,
		p.ID, p.BookableID, p.SessionID, p.CustomerName, p.CustomerEmail, p.CustomerPhone,
		p.Quantity, p.Currency, p.TotalAmount.Minor(), p.ServiceFeeAmount.Minor(), p.NetAmount.Minor(),
		p.Status, p.PaymentStatus, p.DownloadToken, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrBookableNotFound
		}
		return fmt.Errorf("create purchase: %w", err)
	}
	return nil
}

// CreateTickets inserts all tickets in one round trip.
func (r *CheckoutRepository) CreateTickets(ctx context.Context, tickets []domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (id, purchase_id, tier_id, code, passenger_name, passenger_email, passenger_phone,
	seat_number, price, created_at)
VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9::numeric / 100, $10)`

	if len(tickets) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, t := range tickets {
		batch.Queue(stmt, t.ID, t.PurchaseID, t.TierID, t.Code, t.PassengerName, t.PassengerEmail,
			t.PassengerPhone, t.SeatNumber, t.Price.Minor(), t.CreatedAt)
	}

	br := r.sendBatch(ctx, batch)
	defer br.Close()
	for range tickets {
		if _, err := br.Exec(); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("create tickets: duplicate ticket code: %w", err)
			}
			if isForeignKeyViolation(err) {
				return domain.ErrPurchaseNotFound
			}
			return fmt.Errorf("create tickets: %w", err)
		}
	}
	return nil
}

func (r *CheckoutRepository) UpdatePaymentInstructions(ctx context.Context, p domain.Payment) error {
	const stmt = `
UPDATE payments
SET provider_reference = NULLIF($2, ''),
	payment_link = NULLIF($3, ''),
	channel = $4,
	status = $5,
	provider_payload = $6,
	updated_at = NOW()
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, p.ID, p.ProviderReference, p.PaymentLink, p.Channel, p.Status, jsonOrNil(p.ProviderPayload))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("provider reference %q already recorded: %w", p.ProviderReference, err)
		}
		return fmt.Errorf("update payment instructions: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}
