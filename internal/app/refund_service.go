package app

import (
	"context"
	"strings"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/clock"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

type RefundRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetPurchaseForUpdate(ctx context.Context, purchaseID string) (domain.Purchase, error)
	UpdateRefund(ctx context.Context, p domain.Purchase) error
	CreatePayment(ctx context.Context, p domain.Payment) error
}

const (
	defaultRefundRate    = 0.80
	minRefundReasonChars = 10
)

// RefundService runs the request/approve state machine on confirmed
// purchases. Refunds never return inventory to sale.
type RefundService struct {
	repo  RefundRepository
	clock clock.Clock
	rate  float64
}

type RefundOption func(*RefundService)

// WithRefundRate sets the fraction of the purchase total paid back.
func WithRefundRate(rate float64) RefundOption {
	return func(s *RefundService) {
		if rate > 0 && rate <= 1 {
			s.rate = rate
		}
	}
}

func NewRefundService(repo RefundRepository, clk clock.Clock, opts ...RefundOption) *RefundService {
	svc := &RefundService{repo: repo, clock: clk, rate: defaultRefundRate}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *RefundService) Rate() float64 {
	return s.rate
}

func (s *RefundService) RequestRefund(ctx context.Context, purchaseID, reason string) (domain.Purchase, error) {
	if purchaseID == "" {
		return domain.Purchase{}, domain.ErrInvalidID
	}
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) < minRefundReasonChars {
		return domain.Purchase{}, domain.Validationf("reason must be at least %d characters", minRefundReasonChars)
	}

	var out domain.Purchase
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		p, err := s.repo.GetPurchaseForUpdate(txCtx, purchaseID)
		if err != nil {
			return err
		}
		if p.Status != domain.PurchaseStatusConfirmed || p.RefundStatus != domain.RefundStatusNone {
			return domain.ErrInvalidRefundState
		}

		p.RefundStatus = domain.RefundStatusRequested
		p.RefundReason = reason
		p.UpdatedAt = s.clock.Now()
		if err := s.repo.UpdateRefund(txCtx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return domain.Purchase{}, err
	}
	return out, nil
}

// ProcessRefund approves or rejects a requested refund. Approval records a
// negative system payment for the refunded amount.
func (s *RefundService) ProcessRefund(ctx context.Context, purchaseID string, approved bool) (domain.Purchase, error) {
	if purchaseID == "" {
		return domain.Purchase{}, domain.ErrInvalidID
	}

	var out domain.Purchase
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		p, err := s.repo.GetPurchaseForUpdate(txCtx, purchaseID)
		if err != nil {
			return err
		}
		if p.RefundStatus != domain.RefundStatusRequested {
			return domain.ErrInvalidRefundState
		}

		now := s.clock.Now()
		p.UpdatedAt = now
		if !approved {
			p.RefundStatus = domain.RefundStatusRejected
			if err := s.repo.UpdateRefund(txCtx, p); err != nil {
				return err
			}
			out = p
			return nil
		}

		p.RefundAmount = p.TotalAmount.MulRate(s.rate)
		p.RefundStatus = domain.RefundStatusApproved
		p.Status = domain.PurchaseStatusRefunded
		if err := s.repo.UpdateRefund(txCtx, p); err != nil {
			return err
		}
		if err := s.repo.CreatePayment(txCtx, domain.Payment{
			ID:          newUUID(),
			PurchaseID:  p.ID,
			Provider:    domain.RefundProvider,
			Method:      domain.RefundProvider,
			Channel:     domain.RefundChannel,
			Status:      domain.PaymentStatusSuccess,
			Amount:      p.RefundAmount.Neg(),
			Currency:    p.Currency,
			Description: "Refund: " + p.RefundReason,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return domain.Purchase{}, err
	}
	return out, nil
}
