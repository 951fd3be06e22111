package app

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/render"
)

type TicketRepository interface {
	GetPurchase(ctx context.Context, purchaseID string) (domain.Purchase, error)
	ListTickets(ctx context.Context, purchaseID string) ([]domain.Ticket, error)
	GetBookable(ctx context.Context, bookableID string) (domain.Bookable, error)
}

// TicketService serves the ticket document of a paid purchase to holders of
// its download token.
type TicketService struct {
	repo     TicketRepository
	renderer render.Renderer
}

func NewTicketService(repo TicketRepository, renderer render.Renderer) *TicketService {
	return &TicketService{repo: repo, renderer: renderer}
}

func (s *TicketService) Download(ctx context.Context, purchaseID, token string) (render.Document, error) {
	if purchaseID == "" {
		return render.Document{}, domain.ErrInvalidID
	}
	p, err := s.repo.GetPurchase(ctx, purchaseID)
	if err != nil {
		return render.Document{}, err
	}
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(p.DownloadToken)) != 1 {
		return render.Document{}, domain.ErrForbidden
	}
	if p.Status != domain.PurchaseStatusConfirmed {
		return render.Document{}, fmt.Errorf("%w: status %s", domain.ErrPurchaseNotConfirmed, p.Status)
	}

	tickets, err := s.repo.ListTickets(ctx, purchaseID)
	if err != nil {
		return render.Document{}, err
	}
	b, err := s.repo.GetBookable(ctx, p.BookableID)
	if err != nil {
		return render.Document{}, err
	}
	return s.renderer.Render(b, p, tickets)
}
