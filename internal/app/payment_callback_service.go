package app

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/clock"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/payment"
)

type PaymentCallbackRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetPaymentByReferenceForUpdate(ctx context.Context, provider, reference string) (domain.Payment, error)
	GetPurchaseForUpdate(ctx context.Context, purchaseID string) (domain.Purchase, error)
	UpdatePaymentStatus(ctx context.Context, paymentID string, status domain.PaymentStatus) error
	UpdatePurchaseState(ctx context.Context, p domain.Purchase) error
}

// CallbackVerifier authenticates a provider callback before it can settle
// anything.
type CallbackVerifier interface {
	Verify(provider string, payload []byte, header http.Header) (payment.Notification, error)
}

// PaymentCallbackService applies provider confirmations to a payment and
// its purchase.
type PaymentCallbackService struct {
	repo     PaymentCallbackRepository
	clock    clock.Clock
	verifier CallbackVerifier
}

type PaymentCallbackOption func(*PaymentCallbackService)

// WithCallbackVerifier enables signed provider callbacks. Without it every
// callback is refused and payments settle only through Confirm.
func WithCallbackVerifier(v CallbackVerifier) PaymentCallbackOption {
	return func(s *PaymentCallbackService) {
		s.verifier = v
	}
}

func NewPaymentCallbackService(repo PaymentCallbackRepository, clk clock.Clock, opts ...PaymentCallbackOption) *PaymentCallbackService {
	s := &PaymentCallbackService{
		repo:  repo,
		clock: clk,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ConfirmPaymentInput struct {
	Provider  string
	Reference string
	Success   bool
}

type ConfirmPaymentResult struct {
	Purchase domain.Purchase
	Payment  domain.Payment
	Applied  bool
	// Ignored is set for authentic callbacks that carry no outcome.
	Ignored bool
}

// ConfirmCallback verifies a raw provider callback and applies its outcome.
// The provider is settled only under its own name, so a verified callback
// can never touch another provider's payment.
func (s *PaymentCallbackService) ConfirmCallback(ctx context.Context, provider string, payload []byte, header http.Header) (ConfirmPaymentResult, error) {
	if s.verifier == nil {
		return ConfirmPaymentResult{}, domain.ErrWebhookNotConfigured
	}
	n, err := s.verifier.Verify(provider, payload, header)
	if errors.Is(err, payment.ErrEventIgnored) {
		return ConfirmPaymentResult{Ignored: true}, nil
	}
	if err != nil {
		return ConfirmPaymentResult{}, err
	}
	return s.Confirm(ctx, ConfirmPaymentInput{
		Provider:  n.Provider,
		Reference: n.Reference,
		Success:   n.Success,
	})
}

// Confirm settles a pending payment. Callers must have authenticated the
// outcome: ConfirmCallback does it for providers, the operator route for
// everything else. Repeating the same outcome returns the current state
// with Applied=false; the opposite outcome on a settled payment fails with
// ErrPaymentAlreadySettled.
func (s *PaymentCallbackService) Confirm(ctx context.Context, in ConfirmPaymentInput) (ConfirmPaymentResult, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" || in.Reference == "" {
		return ConfirmPaymentResult{}, domain.Validationf("provider and reference are required")
	}
	if provider == domain.RefundProvider {
		return ConfirmPaymentResult{}, domain.Validationf("system payments cannot be confirmed")
	}

	want := domain.PaymentStatusFailed
	if in.Success {
		want = domain.PaymentStatusSuccess
	}

	var result ConfirmPaymentResult
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		pay, err := s.repo.GetPaymentByReferenceForUpdate(txCtx, provider, in.Reference)
		if err != nil {
			return err
		}
		purchase, err := s.repo.GetPurchaseForUpdate(txCtx, pay.PurchaseID)
		if err != nil {
			return err
		}

		if pay.Status != domain.PaymentStatusPending {
			if pay.Status == want {
				result = ConfirmPaymentResult{Purchase: purchase, Payment: pay, Applied: false}
				return nil
			}
			return domain.ErrPaymentAlreadySettled
		}
		if purchase.Status != domain.PurchaseStatusPending {
			return domain.ErrPaymentAlreadySettled
		}

		now := s.clock.Now()
		if err := s.repo.UpdatePaymentStatus(txCtx, pay.ID, want); err != nil {
			return err
		}
		pay.Status = want
		pay.UpdatedAt = now

		if in.Success {
			purchase.Status = domain.PurchaseStatusConfirmed
			purchase.PaymentStatus = domain.PaymentStatePaid
		} else {
			purchase.Status = domain.PurchaseStatusCancelled
			purchase.PaymentStatus = domain.PaymentStateFailed
		}
		purchase.UpdatedAt = now
		if err := s.repo.UpdatePurchaseState(txCtx, purchase); err != nil {
			return err
		}

		result = ConfirmPaymentResult{Purchase: purchase, Payment: pay, Applied: true}
		return nil
	})
	if err != nil {
		return ConfirmPaymentResult{}, err
	}
	return result, nil
}
