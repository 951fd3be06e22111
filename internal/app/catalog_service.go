package app

import (
	"context"
	"strings"
	"time"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/clock"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/money"
)

type CatalogRepository interface {
	CreateBookable(ctx context.Context, b domain.Bookable) error
	ListBookables(ctx context.Context) ([]domain.Bookable, error)
	UpdateBookableStatus(ctx context.Context, bookableID string, status domain.BookableStatus) (domain.Bookable, error)
	GetBookable(ctx context.Context, bookableID string) (domain.Bookable, error)
	CreateTier(ctx context.Context, tier domain.TicketTier) error
	ListTiersByBookable(ctx context.Context, bookableID string) ([]domain.TicketTier, error)
}

// CatalogService is the organizer-facing setup of bookables and tiers.
type CatalogService struct {
	repo  CatalogRepository
	clock clock.Clock
}

func NewCatalogService(repo CatalogRepository, clk clock.Clock) *CatalogService {
	return &CatalogService{
		repo:  repo,
		clock: clk,
	}
}

type CreateBookableInput struct {
	OrganizerID    string
	Title          string
	Currency       string
	ServiceFeeRate float64
	ServiceFeeFlat money.Amount
	Status         domain.BookableStatus
}

func (s *CatalogService) CreateBookable(ctx context.Context, in CreateBookableInput) (domain.Bookable, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Bookable{}, domain.Validationf("title is required")
	}
	if len(in.Currency) != 3 {
		return domain.Bookable{}, domain.Validationf("currency must be a 3-letter code")
	}
	if in.ServiceFeeRate < 0 || in.ServiceFeeRate >= 1 {
		return domain.Bookable{}, domain.Validationf("service fee rate must be in [0, 1)")
	}
	if in.ServiceFeeFlat < 0 {
		return domain.Bookable{}, domain.Validationf("service fee flat must not be negative")
	}
	status := in.Status
	if status == "" {
		status = domain.BookableStatusDraft
	}
	if !validBookableStatus(status) {
		return domain.Bookable{}, domain.Validationf("unknown status %q", status)
	}

	b := domain.Bookable{
		ID:             newUUID(),
		OrganizerID:    in.OrganizerID,
		Title:          strings.TrimSpace(in.Title),
		Currency:       strings.ToUpper(in.Currency),
		ServiceFeeRate: in.ServiceFeeRate,
		ServiceFeeFlat: in.ServiceFeeFlat,
		Status:         status,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.repo.CreateBookable(ctx, b); err != nil {
		return domain.Bookable{}, err
	}
	return b, nil
}

func (s *CatalogService) ListBookables(ctx context.Context) ([]domain.Bookable, error) {
	return s.repo.ListBookables(ctx)
}

// SetBookableStatus moves a bookable between draft, published and archived.
func (s *CatalogService) SetBookableStatus(ctx context.Context, bookableID string, status domain.BookableStatus) (domain.Bookable, error) {
	if bookableID == "" {
		return domain.Bookable{}, domain.ErrInvalidID
	}
	if !validBookableStatus(status) {
		return domain.Bookable{}, domain.Validationf("unknown status %q", status)
	}
	return s.repo.UpdateBookableStatus(ctx, bookableID, status)
}

type CreateTierInput struct {
	BookableID     string
	Name           string
	Price          money.Amount
	ServiceFeeRate *float64
	ServiceFeeFlat *money.Amount
	TotalQuantity  int
	MinPerOrder    int
	MaxPerOrder    int
	SalesStart     *time.Time
	SalesEnd       *time.Time
}

func (s *CatalogService) CreateTier(ctx context.Context, in CreateTierInput) (domain.TicketTier, error) {
	if in.BookableID == "" {
		return domain.TicketTier{}, domain.ErrInvalidID
	}
	if strings.TrimSpace(in.Name) == "" {
		return domain.TicketTier{}, domain.Validationf("tier name is required")
	}
	if in.TotalQuantity <= 0 {
		return domain.TicketTier{}, domain.Validationf("total quantity must be positive")
	}
	if in.Price < 0 {
		return domain.TicketTier{}, domain.Validationf("price must not be negative")
	}
	if in.ServiceFeeRate != nil && (*in.ServiceFeeRate < 0 || *in.ServiceFeeRate >= 1) {
		return domain.TicketTier{}, domain.Validationf("service fee rate must be in [0, 1)")
	}
	if in.MinPerOrder < 0 || in.MaxPerOrder < 0 {
		return domain.TicketTier{}, domain.Validationf("per-order limits must not be negative")
	}
	if in.MaxPerOrder > 0 && in.MinPerOrder > in.MaxPerOrder {
		return domain.TicketTier{}, domain.Validationf("min per order exceeds max per order")
	}
	if in.SalesStart != nil && in.SalesEnd != nil && !in.SalesEnd.After(*in.SalesStart) {
		return domain.TicketTier{}, domain.Validationf("sales window ends before it starts")
	}

	bookable, err := s.repo.GetBookable(ctx, in.BookableID)
	if err != nil {
		return domain.TicketTier{}, err
	}

	tier := domain.TicketTier{
		ID:                newUUID(),
		BookableID:        bookable.ID,
		Name:              strings.TrimSpace(in.Name),
		Currency:          bookable.Currency,
		Price:             in.Price,
		ServiceFeeRate:    in.ServiceFeeRate,
		ServiceFeeFlat:    in.ServiceFeeFlat,
		TotalQuantity:     in.TotalQuantity,
		RemainingQuantity: in.TotalQuantity,
		MinPerOrder:       in.MinPerOrder,
		MaxPerOrder:       in.MaxPerOrder,
		SalesStart:        in.SalesStart,
		SalesEnd:          in.SalesEnd,
	}
	if err := s.repo.CreateTier(ctx, tier); err != nil {
		return domain.TicketTier{}, err
	}
	return tier, nil
}

func (s *CatalogService) ListTiers(ctx context.Context, bookableID string) ([]domain.TicketTier, error) {
	if bookableID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListTiersByBookable(ctx, bookableID)
}

func validBookableStatus(s domain.BookableStatus) bool {
	switch s {
	case domain.BookableStatusDraft, domain.BookableStatusPublished, domain.BookableStatusArchived:
		return true
	}
	return false
}
