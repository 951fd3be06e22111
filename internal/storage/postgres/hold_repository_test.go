package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/testutil"
)

func TestHoldRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewHoldRepository(pool)
	inventory := NewInventoryRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("UpsertHold replaces in place", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		bookableID := testutil.InsertBookable(t, ctx, pool, testutil.Bookable{Title: "Safari"})
		tierID := testutil.InsertTier(t, ctx, pool, bookableID, testutil.Tier{Name: "Seat", Price: 100, Quantity: 10})
		now := time.Now().UTC().Truncate(time.Microsecond)

		first, err := repo.UpsertHold(ctx, domain.Hold{
			ID: uuid.NewString(), TierID: tierID, SessionID: "s1", Quantity: 2,
			ExpiresAt: now.Add(3 * time.Minute), CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		later := now.Add(time.Minute)
		second, err := repo.UpsertHold(ctx, domain.Hold{
			ID: uuid.NewString(), TierID: tierID, SessionID: "s1", Quantity: 5,
			ExpiresAt: later.Add(3 * time.Minute), CreatedAt: later, UpdatedAt: later,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if second.ID != first.ID {
			t.Fatalf("expected same hold row, got %s and %s", first.ID, second.ID)
		}
		if second.Quantity != 5 || !second.ExpiresAt.Equal(later.Add(3*time.Minute)) {
			t.Fatalf("unexpected hold after replace: %+v", second)
		}
		if n := testutil.Count(t, ctx, pool, "holds"); n != 1 {
			t.Fatalf("expected 1 hold row, got %d", n)
		}
	})

	t.Run("UpsertHold on missing tier", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		now := time.Now().UTC()

		_, err := repo.UpsertHold(ctx, domain.Hold{
			ID: uuid.NewString(), TierID: uuid.NewString(), SessionID: "s1", Quantity: 1,
			ExpiresAt: now.Add(time.Minute), CreatedAt: now, UpdatedAt: now,
		})
		if !errors.Is(err, domain.ErrTierNotFound) {
			t.Fatalf("expected ErrTierNotFound, got %v", err)
		}
	})

	t.Run("SumActiveHolds excludes expired and own session", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		bookableID := testutil.InsertBookable(t, ctx, pool, testutil.Bookable{Title: "Safari"})
		tierID := testutil.InsertTier(t, ctx, pool, bookableID, testutil.Tier{Name: "Seat", Price: 100, Quantity: 100})
		now := time.Now().UTC()

		testutil.InsertHold(t, ctx, pool, tierID, "a", 30, now.Add(5*time.Minute))
		testutil.InsertHold(t, ctx, pool, tierID, "b", 20, now.Add(-time.Minute))
		testutil.InsertHold(t, ctx, pool, tierID, "mine", 7, now.Add(5*time.Minute))

		total, err := inventory.SumActiveHolds(ctx, tierID, "mine", now)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if total != 30 {
			t.Fatalf("expected active sum 30, got %d", total)
		}
	})

	t.Run("PurgeExpiredHolds scoped and global", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		bookableID := testutil.InsertBookable(t, ctx, pool, testutil.Bookable{Title: "Safari"})
		tierA := testutil.InsertTier(t, ctx, pool, bookableID, testutil.Tier{Name: "A", Price: 100, Quantity: 10})
		tierB := testutil.InsertTier(t, ctx, pool, bookableID, testutil.Tier{Name: "B", Price: 100, Quantity: 10})
		now := time.Now().UTC()

		testutil.InsertHold(t, ctx, pool, tierA, "s1", 1, now.Add(-time.Minute))
		testutil.InsertHold(t, ctx, pool, tierB, "s1", 1, now.Add(-time.Minute))
		testutil.InsertHold(t, ctx, pool, tierA, "s2", 1, now.Add(time.Minute))

		n, err := repo.PurgeExpiredHolds(ctx, []string{tierA}, now)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 purged, got %d", n)
		}

		n, err = repo.PurgeExpiredHolds(ctx, nil, now)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 purged, got %d", n)
		}
		if c := testutil.Count(t, ctx, pool, "holds"); c != 1 {
			t.Fatalf("expected 1 hold left, got %d", c)
		}
	})

	t.Run("ListActiveHolds filters by bookable and session", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		bk1 := testutil.InsertBookable(t, ctx, pool, testutil.Bookable{Title: "One"})
		bk2 := testutil.InsertBookable(t, ctx, pool, testutil.Bookable{Title: "Two"})
		tier1 := testutil.InsertTier(t, ctx, pool, bk1, testutil.Tier{Name: "A", Price: 100, Quantity: 10})
		tier2 := testutil.InsertTier(t, ctx, pool, bk2, testutil.Tier{Name: "A", Price: 100, Quantity: 10})
		now := time.Now().UTC()

		testutil.InsertHold(t, ctx, pool, tier1, "s1", 2, now.Add(time.Minute))
		testutil.InsertHold(t, ctx, pool, tier2, "s1", 2, now.Add(time.Minute))
		testutil.InsertHold(t, ctx, pool, tier1, "s2", 2, now.Add(time.Minute))

		holds, err := repo.ListActiveHolds(ctx, bk1, "s1", now)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(holds) != 1 || holds[0].TierID != tier1 || holds[0].SessionID != "s1" {
			t.Fatalf("unexpected holds: %+v", holds)
		}

		if err := repo.DeleteHold(ctx, tier1, "s1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := repo.DeleteHold(ctx, tier1, "s1"); err != nil {
			t.Fatalf("expected deleting a missing hold to succeed, got %v", err)
		}
		holds, err = repo.ListActiveHolds(ctx, bk1, "s1", now)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(holds) != 0 {
			t.Fatalf("expected no holds, got %+v", holds)
		}
	})
}
