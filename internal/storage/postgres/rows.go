package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/money"
)

// Amounts are NUMERIC(12,2) in the database and minor units in Go. Reads
// multiply by 100 in SQL; writes pass minor units and divide.

const bookableColumns = `id, organizer_id, title, currency, service_fee_rate::float8,
	(service_fee_flat * 100)::bigint, status, created_at`

func scanBookable(row pgx.Row) (domain.Bookable, error) {
	var b domain.Bookable
	err := row.Scan(&b.ID, &b.OrganizerID, &b.Title, &b.Currency, &b.ServiceFeeRate,
		(*int64)(&b.ServiceFeeFlat), &b.Status, &b.CreatedAt)
	return b, err
}

const tierColumns = `id, bookable_id, name, currency, (price * 100)::bigint,
	service_fee_rate::float8, (service_fee_flat * 100)::bigint,
	total_quantity, remaining_quantity, min_per_order, max_per_order, sales_start, sales_end`

func scanTier(row pgx.Row) (domain.TicketTier, error) {
	var (
		t       domain.TicketTier
		feeFlat *int64
	)
	err := row.Scan(&t.ID, &t.BookableID, &t.Name, &t.Currency, (*int64)(&t.Price),
		&t.ServiceFeeRate, &feeFlat,
		&t.TotalQuantity, &t.RemainingQuantity, &t.MinPerOrder, &t.MaxPerOrder, &t.SalesStart, &t.SalesEnd)
	if err != nil {
		return domain.TicketTier{}, err
	}
	if feeFlat != nil {
		flat := money.FromMinor(*feeFlat)
		t.ServiceFeeFlat = &flat
	}
	return t, nil
}

const holdColumns = `id, tier_id, session_id, quantity, expires_at, created_at, updated_at`

func scanHold(row pgx.Row) (domain.Hold, error) {
	var h domain.Hold
	err := row.Scan(&h.ID, &h.TierID, &h.SessionID, &h.Quantity, &h.ExpiresAt, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

const purchaseColumns = `id, bookable_id, session_id, customer_name, customer_email, customer_phone,
	quantity, currency, (total_amount * 100)::bigint, (service_fee_amount * 100)::bigint,
	(net_amount * 100)::bigint, status, payment_status, COALESCE(refund_status, ''),
	COALESCE((refund_amount * 100)::bigint, 0), COALESCE(refund_reason, ''), download_token,
	created_at, updated_at`

func scanPurchase(row pgx.Row) (domain.Purchase, error) {
	var p domain.Purchase
	err := row.Scan(&p.ID, &p.BookableID, &p.SessionID, &p.CustomerName, &p.CustomerEmail, &p.CustomerPhone,
		&p.Quantity, &p.Currency, (*int64)(&p.TotalAmount), (*int64)(&p.ServiceFeeAmount),
		(*int64)(&p.NetAmount), &p.Status, &p.PaymentStatus, &p.RefundStatus,
		(*int64)(&p.RefundAmount), &p.RefundReason, &p.DownloadToken,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const ticketColumns = `id, purchase_id, COALESCE(tier_id::text, ''), code, passenger_name, passenger_email,
	passenger_phone, seat_number, (price * 100)::bigint, scanned, scanned_at, created_at`

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(&t.ID, &t.PurchaseID, &t.TierID, &t.Code, &t.PassengerName, &t.PassengerEmail,
		&t.PassengerPhone, &t.SeatNumber, (*int64)(&t.Price), &t.Scanned, &t.ScannedAt, &t.CreatedAt)
	return t, err
}

const paymentColumns = `id, purchase_id, provider, method, channel, status,
	(amount * 100)::bigint, (fee_amount * 100)::bigint, currency,
	COALESCE(provider_reference, ''), COALESCE(payment_link, ''), provider_payload, description,
	created_at, updated_at`

func scanPayment(row pgx.Row) (domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.PurchaseID, &p.Provider, &p.Method, &p.Channel, &p.Status,
		(*int64)(&p.Amount), (*int64)(&p.FeeAmount), &p.Currency,
		&p.ProviderReference, &p.PaymentLink, &p.ProviderPayload, &p.Description,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error), what string) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return out, nil
}

// GetBookable is shared by every repository that needs the bookable row.
func (d db) GetBookable(ctx context.Context, bookableID string) (domain.Bookable, error) {
	b, err := scanBookable(d.queryRow(ctx, `SELECT `+bookableColumns+` FROM bookables WHERE id = $1`, bookableID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Bookable{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Bookable{}, domain.ErrBookableNotFound
		}
		return domain.Bookable{}, fmt.Errorf("get bookable: %w", err)
	}
	return b, nil
}

func (d db) CreatePayment(ctx context.Context, p domain.Payment) error {
	const stmt = `
INSERT INTO payments (id, purchase_id, provider, method, channel, status, amount, fee_amount, currency,
	provider_reference, payment_link, provider_payload, description, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7::numeric / 100, $8::numeric / 100, $9,
	NULLIF($10, ''), NULLIF($11, ''), $12, $13, $14, $15)`

	_, err := d.exec(ctx, stmt,
		p.ID, p.PurchaseID, p.Provider, p.Method, p.Channel, p.Status,
		p.Amount.Minor(), p.FeeAmount.Minor(), p.Currency,
		p.ProviderReference, p.PaymentLink, jsonOrNil(p.ProviderPayload), p.Description,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrPurchaseNotFound
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func jsonOrNil(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
