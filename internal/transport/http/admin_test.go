package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/app"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/money"
)

type fakeCatalog struct {
	bookables    []domain.Bookable
	tiers        []domain.TicketTier
	err          error
	gotBookable  app.CreateBookableInput
	gotTier      app.CreateTierInput
	gotStatus    domain.BookableStatus
	listedTierOf string
}

func (f *fakeCatalog) CreateBookable(_ context.Context, in app.CreateBookableInput) (domain.Bookable, error) {
	f.gotBookable = in
	if f.err != nil {
		return domain.Bookable{}, f.err
	}
	return domain.Bookable{ID: "bk-1", Title: in.Title, Currency: in.Currency, Status: domain.BookableStatusDraft}, nil
}

func (f *fakeCatalog) ListBookables(context.Context) ([]domain.Bookable, error) {
	return f.bookables, f.err
}

func (f *fakeCatalog) SetBookableStatus(_ context.Context, id string, status domain.BookableStatus) (domain.Bookable, error) {
	f.gotStatus = status
	if f.err != nil {
		return domain.Bookable{}, f.err
	}
	return domain.Bookable{ID: id, Status: status}, nil
}

func (f *fakeCatalog) CreateTier(_ context.Context, in app.CreateTierInput) (domain.TicketTier, error) {
	f.gotTier = in
	if f.err != nil {
		return domain.TicketTier{}, f.err
	}
	return domain.TicketTier{ID: "tier-1", BookableID: in.BookableID, Name: in.Name, Price: in.Price, TotalQuantity: in.TotalQuantity, RemainingQuantity: in.TotalQuantity}, nil
}

func (f *fakeCatalog) ListTiers(_ context.Context, bookableID string) ([]domain.TicketTier, error) {
	f.listedTierOf = bookableID
	return f.tiers, f.err
}

func TestHandleAdminBookables(t *testing.T) {
	t.Parallel()

	t.Run("create", func(t *testing.T) {
		t.Parallel()
		svc := &fakeCatalog{}
		rec := serve(t, Services{Catalog: svc}, http.MethodPost, "/admin/bookables",
			`{"title":"Naivasha Boat Ride","currency":"KES","service_fee_rate":0.05,"service_fee_flat":10}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d (%s)", rec.Code, rec.Body.String())
		}
		if svc.gotBookable.ServiceFeeFlat != money.FromFloat(10) || svc.gotBookable.ServiceFeeRate != 0.05 {
			t.Fatalf("unexpected input: %+v", svc.gotBookable)
		}
	})

	t.Run("create rejects bad currency", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, Services{Catalog: &fakeCatalog{}}, http.MethodPost, "/admin/bookables", `{"title":"Ride","currency":"KSHS"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("list returns an array", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, Services{Catalog: &fakeCatalog{}}, http.MethodGet, "/admin/bookables", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Fatalf("expected empty array, got %q", rec.Body.String())
		}
	})

	t.Run("status", func(t *testing.T) {
		t.Parallel()
		svc := &fakeCatalog{}
		rec := serve(t, Services{Catalog: svc}, http.MethodPost, "/admin/bookables/bk-1/status", `{"status":"published"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if svc.gotStatus != domain.BookableStatusPublished {
			t.Fatalf("unexpected status %q", svc.gotStatus)
		}

		rec = serve(t, Services{Catalog: svc}, http.MethodPost, "/admin/bookables/bk-1/status", `{"status":"live"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400 for unknown status, got %d", rec.Code)
		}

		svc = &fakeCatalog{err: domain.ErrBookableNotFound}
		rec = serve(t, Services{Catalog: svc}, http.MethodPost, "/admin/bookables/bk-2/status", `{"status":"archived"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandleAdminTiers(t *testing.T) {
	t.Parallel()

	t.Run("create", func(t *testing.T) {
		t.Parallel()
		svc := &fakeCatalog{}
		rec := serve(t, Services{Catalog: svc}, http.MethodPost, "/admin/bookables/bk-1/tiers",
			`{"name":"VIP","price":"2500.50","total_quantity":40,"max_per_order":4}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d (%s)", rec.Code, rec.Body.String())
		}
		if svc.gotTier.BookableID != "bk-1" || svc.gotTier.Price != money.FromFloat(2500.50) || svc.gotTier.MaxPerOrder != 4 {
			t.Fatalf("unexpected input: %+v", svc.gotTier)
		}

		var resp tierResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.RemainingQuantity != 40 {
			t.Fatalf("expected remaining 40, got %d", resp.RemainingQuantity)
		}
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		t.Parallel()
		svc := &fakeCatalog{err: domain.ErrTierAlreadyExists}
		rec := serve(t, Services{Catalog: svc}, http.MethodPost, "/admin/bookables/bk-1/tiers", `{"name":"VIP","price":100,"total_quantity":1}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", rec.Code)
		}
	})

	t.Run("zero capacity", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, Services{Catalog: &fakeCatalog{}}, http.MethodPost, "/admin/bookables/bk-1/tiers", `{"name":"VIP","price":100,"total_quantity":0}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		svc := &fakeCatalog{tiers: []domain.TicketTier{{ID: "tier-1", Name: "VIP"}}}
		rec := serve(t, Services{Catalog: svc}, http.MethodGet, "/admin/bookables/bk-7/tiers", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if svc.listedTierOf != "bk-7" {
			t.Fatalf("expected tiers of bk-7, got %q", svc.listedTierOf)
		}
	})
}
