package app

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/clock"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

type HoldRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	PurgeExpiredHolds(ctx context.Context, tierIDs []string, now time.Time) (int64, error)
	UpsertHold(ctx context.Context, hold domain.Hold) (domain.Hold, error)
	DeleteHold(ctx context.Context, tierID, sessionID string) error
	ListActiveHolds(ctx context.Context, bookableID, sessionID string, now time.Time) ([]domain.Hold, error)
}

// HoldMirror caches a session's active holds in a TTL-native store. It is
// read-through only; Postgres stays authoritative. Every DeleteHolds bumps
// the session's version, and StoreHolds refuses a snapshot whose version
// has moved on.
type HoldMirror interface {
	Version(ctx context.Context, bookableID, sessionID string) (int64, error)
	StoreHolds(ctx context.Context, bookableID, sessionID string, holds []domain.Hold, ttl time.Duration, version int64) (bool, error)
	GetHolds(ctx context.Context, bookableID, sessionID string) ([]domain.Hold, bool, error)
	DeleteHolds(ctx context.Context, bookableID, sessionID string) error
}

type HoldService struct {
	repo    HoldRepository
	ledger  *Ledger
	clock   clock.Clock
	holdTTL time.Duration
	mirror  HoldMirror
	logger  *zap.Logger
}

const defaultHoldTTL = 3 * time.Minute

func NewHoldService(repo HoldRepository, ledger *Ledger, clk clock.Clock, opts ...HoldServiceOption) *HoldService {
	svc := &HoldService{
		repo:    repo,
		ledger:  ledger,
		clock:   clk,
		holdTTL: defaultHoldTTL,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type HoldServiceOption func(*HoldService)

// WithHoldTTL overrides the default TTL for new holds.
func WithHoldTTL(d time.Duration) HoldServiceOption {
	return func(s *HoldService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

// WithHoldMirror enables the hold cache.
func WithHoldMirror(m HoldMirror) HoldServiceOption {
	return func(s *HoldService) {
		s.mirror = m
	}
}

func WithHoldLogger(l *zap.Logger) HoldServiceOption {
	return func(s *HoldService) {
		if l != nil {
			s.logger = l
		}
	}
}

// TTL returns the configured hold lifetime.
func (s *HoldService) TTL() time.Duration {
	return s.holdTTL
}

type HoldLine struct {
	TierID   string
	Quantity int
}

type PlaceHoldInput struct {
	BookableID string
	SessionID  string
	Lines      []HoldLine
}

type PlaceHoldResult struct {
	ExpiresAt time.Time
	Holds     []domain.Hold
}

// PlaceHold creates or replaces the session's hold on every requested tier.
// Either all lines are held or none are.
func (s *HoldService) PlaceHold(ctx context.Context, in PlaceHoldInput) (PlaceHoldResult, error) {
	if in.SessionID == "" {
		return PlaceHoldResult{}, domain.ErrSessionRequired
	}
	if in.BookableID == "" {
		return PlaceHoldResult{}, domain.ErrInvalidID
	}
	if len(in.Lines) == 0 {
		return PlaceHoldResult{}, domain.Validationf("at least one ticket line is required")
	}

	for _, line := range in.Lines {
		if line.TierID == "" {
			return PlaceHoldResult{}, domain.Validationf("tier_id is required")
		}
		if line.Quantity <= 0 {
			return PlaceHoldResult{}, domain.ErrInvalidQuantity
		}
	}
	lines := mergeHoldLines(in.Lines)

	// Read before the tx so a checkout that consumes these holds after
	// commit invalidates the snapshot below.
	version, mirrored := s.mirrorVersion(ctx, in.BookableID, in.SessionID)

	now := s.clock.Now()
	expiresAt := now.Add(s.holdTTL)
	var result PlaceHoldResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.PurgeExpiredHolds(txCtx, holdTierIDs(lines), now); err != nil {
			return err
		}

		for _, line := range lines {
			tier, err := s.ledger.Check(txCtx, line.TierID, line.Quantity, in.SessionID)
			if err != nil {
				return err
			}
			if tier.BookableID != in.BookableID {
				return domain.ErrTierNotFound
			}

			if _, err := s.repo.UpsertHold(txCtx, domain.Hold{
				ID:        newUUID(),
				TierID:    line.TierID,
				SessionID: in.SessionID,
				Quantity:  line.Quantity,
				ExpiresAt: expiresAt,
				CreatedAt: now,
				UpdatedAt: now,
			}); err != nil {
				return err
			}
		}

		holds, err := s.repo.ListActiveHolds(txCtx, in.BookableID, in.SessionID, now)
		if err != nil {
			return err
		}
		result = PlaceHoldResult{ExpiresAt: expiresAt, Holds: holds}
		return nil
	})
	if err != nil {
		return PlaceHoldResult{}, err
	}

	if mirrored {
		stored, err := s.mirror.StoreHolds(ctx, in.BookableID, in.SessionID, result.Holds, s.holdTTL, version)
		switch {
		case err != nil:
			s.logger.Warn("mirror holds", zap.String("session_id", in.SessionID), zap.Error(err))
		case !stored:
			s.logger.Debug("skipped stale hold snapshot", zap.String("session_id", in.SessionID))
		}
	}
	return result, nil
}

func (s *HoldService) mirrorVersion(ctx context.Context, bookableID, sessionID string) (int64, bool) {
	if s.mirror == nil {
		return 0, false
	}
	v, err := s.mirror.Version(ctx, bookableID, sessionID)
	if err != nil {
		s.logger.Warn("read hold mirror version", zap.String("session_id", sessionID), zap.Error(err))
		return 0, false
	}
	return v, true
}

// ConsumeHold deletes the session's hold on a tier. Deleting a missing hold
// is not an error.
func (s *HoldService) ConsumeHold(ctx context.Context, tierID, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.repo.DeleteHold(ctx, tierID, sessionID)
}

// PurgeExpired deletes expired holds on the given tiers, or on every tier
// when none are given.
func (s *HoldService) PurgeExpired(ctx context.Context, tierIDs ...string) (int64, error) {
	return s.repo.PurgeExpiredHolds(ctx, tierIDs, s.clock.Now())
}

// ListHolds returns the session's unexpired holds on a bookable.
func (s *HoldService) ListHolds(ctx context.Context, bookableID, sessionID string) ([]domain.Hold, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionRequired
	}
	now := s.clock.Now()

	if s.mirror != nil {
		holds, ok, err := s.mirror.GetHolds(ctx, bookableID, sessionID)
		if err != nil {
			s.logger.Warn("read mirrored holds, falling back to db", zap.String("session_id", sessionID), zap.Error(err))
		}
		if ok {
			return activeOnly(holds, now), nil
		}
	}
	return s.repo.ListActiveHolds(ctx, bookableID, sessionID, now)
}

// forget drops the mirrored holds after a checkout consumed them.
func (s *HoldService) forget(ctx context.Context, bookableID, sessionID string) {
	if s.mirror == nil || sessionID == "" {
		return
	}
	if err := s.mirror.DeleteHolds(ctx, bookableID, sessionID); err != nil {
		s.logger.Warn("drop mirrored holds", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func activeOnly(holds []domain.Hold, now time.Time) []domain.Hold {
	out := make([]domain.Hold, 0, len(holds))
	for _, h := range holds {
		if h.Active(now) {
			out = append(out, h)
		}
	}
	return out
}

// mergeHoldLines folds duplicate tiers together and orders lines by tier id
// so concurrent requests lock tiers in the same order.
func mergeHoldLines(lines []HoldLine) []HoldLine {
	byTier := make(map[string]int, len(lines))
	out := make([]HoldLine, 0, len(lines))
	for _, line := range lines {
		if i, ok := byTier[line.TierID]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		byTier[line.TierID] = len(out)
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TierID < out[j].TierID })
	return out
}

func holdTierIDs(lines []HoldLine) []string {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.TierID)
	}
	return ids
}
