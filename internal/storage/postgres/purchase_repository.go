package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

// PurchaseRepository serves everything that happens to a purchase after
// checkout: payment callbacks, refunds and ticket downloads.
type PurchaseRepository struct {
	db
}

func NewPurchaseRepository(pool *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{db{pool: pool}}
}

func (r *PurchaseRepository) GetPurchase(ctx context.Context, purchaseID string) (domain.Purchase, error) {
	return r.getPurchase(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, purchaseID)
}

func (r *PurchaseRepository) GetPurchaseForUpdate(ctx context.Context, purchaseID string) (domain.Purchase, error) {
	return r.getPurchase(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1 FOR UPDATE`, purchaseID)
}

func (r *PurchaseRepository) getPurchase(ctx context.Context, query, purchaseID string) (domain.Purchase, error) {
	p, err := scanPurchase(r.queryRow(ctx, query, purchaseID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Purchase{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Purchase{}, domain.ErrPurchaseNotFound
		}
		return domain.Purchase{}, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

func (r *PurchaseRepository) UpdateRefund(ctx context.Context, p domain.Purchase) error {
	const stmt = `
UPDATE purchases
SET status = $2,
	refund_status = NULLIF($3, ''),
	refund_amount = CASE WHEN $4::bigint = 0 THEN NULL ELSE $4::numeric / 100 END,
	refund_reason = NULLIF($5, ''),
	updated_at = $6
WHERE id = $1`

	return r.updatePurchase(ctx, "update refund", stmt,
		p.ID, p.Status, p.RefundStatus, p.RefundAmount.Minor(), p.RefundReason, p.UpdatedAt)
}

func (r *PurchaseRepository) UpdatePurchaseState(ctx context.Context, p domain.Purchase) error {
	const stmt = `
UPDATE purchases
SET status = $2, payment_status = $3, updated_at = $4
WHERE id = $1`

	return r.updatePurchase(ctx, "update purchase state", stmt, p.ID, p.Status, p.PaymentStatus, p.UpdatedAt)
}

func (r *PurchaseRepository) updatePurchase(ctx context.Context, op, stmt string, args ...any) error {
	tag, err := r.exec(ctx, stmt, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPurchaseNotFound
	}
	return nil
}

func (r *PurchaseRepository) GetPaymentByReferenceForUpdate(ctx context.Context, provider, reference string) (domain.Payment, error) {
	const query = `SELECT ` + paymentColumns + `
FROM payments
WHERE provider = $1 AND provider_reference = $2
FOR UPDATE`

	p, err := scanPayment(r.queryRow(ctx, query, provider, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Payment{}, domain.ErrPaymentNotFound
		}
		return domain.Payment{}, fmt.Errorf("get payment by reference: %w", err)
	}
	return p, nil
}

func (r *PurchaseRepository) UpdatePaymentStatus(ctx context.Context, paymentID string, status domain.PaymentStatus) error {
	tag, err := r.exec(ctx, `UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1`, paymentID, status)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

func (r *PurchaseRepository) ListPayments(ctx context.Context, purchaseID string) ([]domain.Payment, error) {
	rows, err := r.query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE purchase_id = $1 ORDER BY created_at ASC, id ASC`, purchaseID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return collect(rows, scanPayment, "payments")
}

func (r *PurchaseRepository) ListTickets(ctx context.Context, purchaseID string) ([]domain.Ticket, error) {
	rows, err := r.query(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE purchase_id = $1 ORDER BY created_at ASC, code ASC`, purchaseID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return collect(rows, scanTicket, "tickets")
}
