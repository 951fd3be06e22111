package app

import (
	"context"
	"errors"
	"testing"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/render"
)

type stubRenderer struct {
	tickets int
}

func (r *stubRenderer) Render(b domain.Bookable, p domain.Purchase, tickets []domain.Ticket) (render.Document, error) {
	r.tickets = len(tickets)
	return render.Document{ContentType: "text/plain", Filename: p.ID + ".txt", Body: []byte(b.Title)}, nil
}

func TestTicketService_Download(t *testing.T) {
	t.Parallel()

	newSvc := func() (*TicketService, *stubRenderer) {
		store := newFakeStore()
		store.addBookable(domain.Bookable{ID: "bk-1", Title: "Rugby Sevens"})
		store.purchases["pur-1"] = domain.Purchase{ID: "pur-1", BookableID: "bk-1", Status: domain.PurchaseStatusConfirmed, DownloadToken: "secret-token"}
		store.tickets = []domain.Ticket{
			{ID: "t1", PurchaseID: "pur-1"},
			{ID: "t2", PurchaseID: "pur-1"},
			{ID: "t3", PurchaseID: "pur-2"},
		}
		r := &stubRenderer{}
		return NewTicketService(store, r), r
	}

	t.Run("valid token renders tickets", func(t *testing.T) {
		t.Parallel()
		svc, r := newSvc()

		doc, err := svc.Download(context.Background(), "pur-1", "secret-token")
		if err != nil {
			t.Fatalf("download: %v", err)
		}
		if string(doc.Body) != "Rugby Sevens" || r.tickets != 2 {
			t.Fatalf("unexpected document %q with %d tickets", doc.Body, r.tickets)
		}
	})

	t.Run("wrong or missing token is forbidden", func(t *testing.T) {
		t.Parallel()
		svc, r := newSvc()

		for _, token := range []string{"", "secret-tokeN", "secret"} {
			if _, err := svc.Download(context.Background(), "pur-1", token); !errors.Is(err, domain.ErrForbidden) {
				t.Fatalf("token %q: expected ErrForbidden, got %v", token, err)
			}
		}
		if r.tickets != 0 {
			t.Fatalf("renderer must not run on forbidden access")
		}
	})

	t.Run("only confirmed purchases render", func(t *testing.T) {
		t.Parallel()

		for _, status := range []domain.PurchaseStatus{
			domain.PurchaseStatusPending,
			domain.PurchaseStatusCancelled,
			domain.PurchaseStatusRefunded,
		} {
			store := newFakeStore()
			store.addBookable(domain.Bookable{ID: "bk-1", Title: "Rugby Sevens"})
			store.purchases["pur-1"] = domain.Purchase{ID: "pur-1", BookableID: "bk-1", Status: status, DownloadToken: "secret-token"}
			store.tickets = []domain.Ticket{{ID: "t1", PurchaseID: "pur-1"}}
			r := &stubRenderer{}

			_, err := NewTicketService(store, r).Download(context.Background(), "pur-1", "secret-token")
			if !errors.Is(err, domain.ErrPurchaseNotConfirmed) {
				t.Fatalf("status %s: expected ErrPurchaseNotConfirmed, got %v", status, err)
			}
			if r.tickets != 0 {
				t.Fatalf("status %s: renderer must not run", status)
			}
		}
	})

	t.Run("unknown purchase", func(t *testing.T) {
		t.Parallel()
		svc, _ := newSvc()

		if _, err := svc.Download(context.Background(), "pur-404", "secret-token"); !errors.Is(err, domain.ErrPurchaseNotFound) {
			t.Fatalf("expected ErrPurchaseNotFound, got %v", err)
		}
	})
}
