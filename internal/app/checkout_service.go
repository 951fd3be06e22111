package app

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/clock"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/money"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/notify"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/payment"
)

type CheckoutRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetBookable(ctx context.Context, bookableID string) (domain.Bookable, error)
	GetTiers(ctx context.Context, bookableID string, tierIDs []string) ([]domain.TicketTier, error)
	CreatePurchase(ctx context.Context, p domain.Purchase) error
	CreateTickets(ctx context.Context, tickets []domain.Ticket) error
	CreatePayment(ctx context.Context, p domain.Payment) error
	UpdatePaymentInstructions(ctx context.Context, p domain.Payment) error
}

// PaymentGateway is the part of payment.Router the checkout needs.
type PaymentGateway interface {
	Resolve(method, channel string) (payment.Route, error)
	Initiate(ctx context.Context, p domain.Payment, req payment.Request) (payment.Instructions, error)
}

// Notifier is told about committed purchases. Failures are logged only.
type Notifier interface {
	PurchaseCreated(ctx context.Context, evt notify.Event) error
}

type CheckoutService struct {
	repo     CheckoutRepository
	ledger   *Ledger
	holds    *HoldService
	gateway  PaymentGateway
	clock    clock.Clock
	notifier Notifier
	logger   *zap.Logger
	tracer   trace.Tracer
}

type CheckoutOption func(*CheckoutService)

func WithNotifier(n Notifier) CheckoutOption {
	return func(s *CheckoutService) {
		s.notifier = n
	}
}

func WithCheckoutLogger(l *zap.Logger) CheckoutOption {
	return func(s *CheckoutService) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewCheckoutService(repo CheckoutRepository, ledger *Ledger, holds *HoldService, gateway PaymentGateway, clk clock.Clock, opts ...CheckoutOption) *CheckoutService {
	svc := &CheckoutService{
		repo:    repo,
		ledger:  ledger,
		holds:   holds,
		gateway: gateway,
		clock:   clk,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer("github.com/thigam/Nishukishe-Back-End-sub002/internal/app"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type Passenger struct {
	Name       string
	Email      string
	Phone      string
	SeatNumber string
}

type CheckoutLine struct {
	TierID     string
	Quantity   int
	SeatNumber string
	Passengers []Passenger
}

type CheckoutInput struct {
	BookableID     string
	SessionID      string
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	PaymentMethod  string
	PaymentChannel string
	Lines          []CheckoutLine
}

type CheckoutResult struct {
	Purchase     domain.Purchase
	Tickets      []domain.Ticket
	Payment      domain.Payment
	Instructions payment.Instructions
}

// Checkout reserves inventory, issues tickets and starts a payment in one
// transaction. Nothing is persisted unless the provider accepted the
// payment attempt.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (res CheckoutResult, err error) {
	ctx, span := s.tracer.Start(ctx, "checkout", trace.WithAttributes(
		attribute.String("bookable.id", in.BookableID),
		attribute.Int("checkout.lines", len(in.Lines)),
		attribute.String("payment.method", in.PaymentMethod),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.String("checkout.outcome", "failed"))
		} else {
			span.SetAttributes(
				attribute.String("checkout.outcome", "created"),
				attribute.String("purchase.id", res.Purchase.ID),
			)
		}
		span.End()
	}()

	if err := validateCheckoutInput(in); err != nil {
		return CheckoutResult{}, err
	}

	bookable, err := s.repo.GetBookable(ctx, in.BookableID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if bookable.Status != domain.BookableStatusPublished {
		return CheckoutResult{}, domain.Validationf("%s is not on sale", bookable.Title)
	}

	lines := mergeCheckoutLines(in.Lines)
	tierIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		tierIDs = append(tierIDs, line.tierID)
	}

	tiers, err := s.repo.GetTiers(ctx, in.BookableID, tierIDs)
	if err != nil {
		return CheckoutResult{}, err
	}
	if err := s.validateTiers(bookable, tiers, lines); err != nil {
		return CheckoutResult{}, err
	}

	route, err := s.gateway.Resolve(in.PaymentMethod, in.PaymentChannel)
	if err != nil {
		return CheckoutResult{}, err
	}

	now := s.clock.Now()
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.holds.PurgeExpired(txCtx, tierIDs...); err != nil {
			return err
		}

		reserved := make(map[string]domain.TicketTier, len(lines))
		var total, fee money.Amount
		quantity := 0
		for _, line := range lines {
			r, err := s.ledger.Reserve(txCtx, line.tierID, line.quantity, in.SessionID)
			if err != nil {
				return err
			}
			if err := s.holds.ConsumeHold(txCtx, line.tierID, in.SessionID); err != nil {
				return err
			}
			reserved[line.tierID] = r.Tier
			total += r.Tier.Price.Mul(line.quantity)
			fee += money.LineFee(r.Tier.Price, r.Tier.FeeRate(bookable), r.Tier.FeeFlat(bookable), line.quantity)
			quantity += line.quantity
		}

		purchase := domain.Purchase{
			ID:               newUUID(),
			BookableID:       bookable.ID,
			SessionID:        in.SessionID,
			CustomerName:     in.CustomerName,
			CustomerEmail:    in.CustomerEmail,
			CustomerPhone:    in.CustomerPhone,
			Quantity:         quantity,
			Currency:         bookable.Currency,
			TotalAmount:      total,
			ServiceFeeAmount: fee,
			NetAmount:        total - fee,
			Status:           domain.PurchaseStatusPending,
			PaymentStatus:    domain.PaymentStatePending,
			DownloadToken:    newDownloadToken(),
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.repo.CreatePurchase(txCtx, purchase); err != nil {
			return err
		}

		tickets := issueTickets(purchase, in.Lines, reserved, now)
		if err := s.repo.CreateTickets(txCtx, tickets); err != nil {
			return err
		}

		pay := domain.Payment{
			ID:          newUUID(),
			PurchaseID:  purchase.ID,
			Provider:    route.Provider,
			Method:      route.Method,
			Channel:     route.Channel,
			Status:      domain.PaymentStatusPending,
			Amount:      total,
			FeeAmount:   fee,
			Currency:    purchase.Currency,
			Description: fmt.Sprintf("%s x%d", bookable.Title, quantity),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.CreatePayment(txCtx, pay); err != nil {
			return err
		}

		instr, err := s.gateway.Initiate(txCtx, pay, payment.Request{
			Method:        in.PaymentMethod,
			Channel:       in.PaymentChannel,
			CustomerName:  in.CustomerName,
			CustomerEmail: in.CustomerEmail,
			CustomerPhone: in.CustomerPhone,
		})
		if err != nil {
			if errors.Is(err, domain.ErrUnsupportedPaymentMethod) || errors.Is(err, domain.ErrValidation) {
				return err
			}
			return &domain.PaymentInitiationError{Provider: route.Provider, Cause: err}
		}
		if instr.Empty() {
			return &domain.PaymentInitiationError{Provider: route.Provider, Cause: errors.New("provider returned no reference")}
		}
		if instr.Status == domain.PaymentStatusFailed {
			return &domain.PaymentInitiationError{Provider: route.Provider, Cause: fmt.Errorf("provider rejected payment: %s", instr.Message)}
		}

		pay.ProviderReference = instr.Reference
		pay.PaymentLink = instr.PaymentLink
		pay.Channel = instr.Channel
		pay.Status = instr.Status
		pay.ProviderPayload = instr.Response
		if err := s.repo.UpdatePaymentInstructions(txCtx, pay); err != nil {
			return err
		}

		res = CheckoutResult{
			Purchase:     purchase,
			Tickets:      tickets,
			Payment:      pay,
			Instructions: instr,
		}
		return nil
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	s.holds.forget(ctx, in.BookableID, in.SessionID)
	s.notify(ctx, res)
	return res, nil
}

func (s *CheckoutService) notify(ctx context.Context, res CheckoutResult) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PurchaseCreated(ctx, notify.NewPurchaseEvent(res.Purchase, res.Tickets, res.Payment)); err != nil {
		s.logger.Warn("purchase notification failed",
			zap.String("purchase_id", res.Purchase.ID),
			zap.Error(err),
		)
	}
}

func validateCheckoutInput(in CheckoutInput) error {
	if in.BookableID == "" {
		return domain.ErrInvalidID
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return domain.Validationf("customer name is required")
	}
	if strings.TrimSpace(in.CustomerEmail) == "" {
		return domain.Validationf("customer email is required")
	}
	if _, err := mail.ParseAddress(in.CustomerEmail); err != nil {
		return domain.Validationf("customer email %q is invalid", in.CustomerEmail)
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		return domain.Validationf("customer phone is required")
	}
	if len(in.Lines) == 0 {
		return domain.Validationf("at least one ticket line is required")
	}
	for i, line := range in.Lines {
		if line.TierID == "" {
			return domain.Validationf("tickets[%d]: tier_id is required", i)
		}
		if line.Quantity <= 0 {
			return domain.Validationf("tickets[%d]: quantity must be positive", i)
		}
		if len(line.Passengers) > line.Quantity {
			return domain.Validationf("tickets[%d]: %d passengers for %d tickets", i, len(line.Passengers), line.Quantity)
		}
	}
	return nil
}

func (s *CheckoutService) validateTiers(b domain.Bookable, tiers []domain.TicketTier, lines []checkoutLine) error {
	byID := make(map[string]domain.TicketTier, len(tiers))
	for _, t := range tiers {
		byID[t.ID] = t
	}
	now := s.clock.Now()
	for _, line := range lines {
		tier, ok := byID[line.tierID]
		if !ok || tier.BookableID != b.ID {
			return domain.Validationf("ticket tier %s does not exist", line.tierID)
		}
		if tier.Currency != "" && !strings.EqualFold(tier.Currency, b.Currency) {
			return domain.Validationf("%s is priced in %s, expected %s", tier.Name, tier.Currency, b.Currency)
		}
		if tier.MinPerOrder > 0 && line.quantity < tier.MinPerOrder {
			return domain.Validationf("%s requires at least %d tickets per order", tier.Name, tier.MinPerOrder)
		}
		if tier.MaxPerOrder > 0 && line.quantity > tier.MaxPerOrder {
			return domain.Validationf("%s allows at most %d tickets per order", tier.Name, tier.MaxPerOrder)
		}
		if !tier.OnSale(now) {
			return domain.Validationf("%s is not on sale", tier.Name)
		}
	}
	return nil
}

type checkoutLine struct {
	tierID   string
	quantity int
}

// mergeCheckoutLines sums quantities per tier and sorts by tier id so that
// concurrent checkouts lock shared tiers in the same order.
func mergeCheckoutLines(lines []CheckoutLine) []checkoutLine {
	byTier := make(map[string]int, len(lines))
	out := make([]checkoutLine, 0, len(lines))
	for _, line := range lines {
		if i, ok := byTier[line.TierID]; ok {
			out[i].quantity += line.Quantity
			continue
		}
		byTier[line.TierID] = len(out)
		out = append(out, checkoutLine{tierID: line.TierID, quantity: line.Quantity})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].tierID < out[j].tierID })
	return out
}

// issueTickets creates one ticket per unit in request order. Passengers are
// matched by position within their line; missing ones fall back to the
// purchaser.
func issueTickets(p domain.Purchase, lines []CheckoutLine, tiers map[string]domain.TicketTier, now time.Time) []domain.Ticket {
	tickets := make([]domain.Ticket, 0, p.Quantity)
	for _, line := range lines {
		tier := tiers[line.TierID]
		for i := 0; i < line.Quantity; i++ {
			t := domain.Ticket{
				ID:             newUUID(),
				PurchaseID:     p.ID,
				TierID:         tier.ID,
				Code:           newTicketCode(),
				PassengerName:  p.CustomerName,
				PassengerEmail: p.CustomerEmail,
				PassengerPhone: p.CustomerPhone,
				SeatNumber:     line.SeatNumber,
				Price:          tier.Price,
				CreatedAt:      now,
			}
			if i < len(line.Passengers) {
				pax := line.Passengers[i]
				if pax.Name != "" {
					t.PassengerName = pax.Name
				}
				if pax.Email != "" {
					t.PassengerEmail = pax.Email
				}
				if pax.Phone != "" {
					t.PassengerPhone = pax.Phone
				}
				if pax.SeatNumber != "" {
					t.SeatNumber = pax.SeatNumber
				}
			}
			tickets = append(tickets, t)
		}
	}
	return tickets
}
