package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/testutil"
)

func TestInventoryRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewInventoryRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("GetTierForUpdate returns tier and ErrTierNotFound", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		bookableID := testutil.InsertBookable(t, ctx, pool, testutil.Bookable{Title: "Concert"})
		tierID := testutil.InsertTier(t, ctx, pool, bookableID, testutil.Tier{Name: "GA", Price: 1500, Quantity: 100})

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			tier, err := repo.GetTierForUpdate(txCtx, tierID)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tier.ID != tierID || tier.BookableID != bookableID || tier.RemainingQuantity != 100 {
				t.Fatalf("unexpected tier: %+v", tier)
			}

			_, err = repo.GetTierForUpdate(txCtx, uuid.NewString())
			if !errors.Is(err, domain.ErrTierNotFound) {
				t.Fatalf("expected ErrTierNotFound, got %v", err)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}

		_, err = repo.GetTierForUpdate(ctx, "not-a-uuid")
		if !errors.Is(err, domain.ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("DecrementRemaining never goes below zero", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		bookableID := testutil.InsertBookable(t, ctx, pool, testutil.Bookable{Title: "Concert"})
		tierID := testutil.InsertTier(t, ctx, pool, bookableID, testutil.Tier{Name: "GA", Price: 1500, Quantity: 3})

		if err := repo.DecrementRemaining(ctx, tierID, 2); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := repo.DecrementRemaining(ctx, tierID, 2); !errors.Is(err, domain.ErrInsufficientInventory) {
			t.Fatalf("expected ErrInsufficientInventory, got %v", err)
		}
		if got := testutil.Remaining(t, ctx, pool, tierID); got != 1 {
			t.Fatalf("expected remaining 1, got %d", got)
		}
	})

	t.Run("rollback restores remaining", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		bookableID := testutil.InsertBookable(t, ctx, pool, testutil.Bookable{Title: "Concert"})
		tierID := testutil.InsertTier(t, ctx, pool, bookableID, testutil.Tier{Name: "GA", Price: 1500, Quantity: 5})

		boom := errors.New("boom")
		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			if err := repo.DecrementRemaining(txCtx, tierID, 5); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if got := testutil.Remaining(t, ctx, pool, tierID); got != 5 {
			t.Fatalf("expected remaining 5 after rollback, got %d", got)
		}
	})
}
