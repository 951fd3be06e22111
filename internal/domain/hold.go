package domain

import "time"

// Hold is a session-scoped soft reservation against a tier. At most one hold
// exists per (tier, session); it never decrements RemainingQuantity.
type Hold struct {
	ID        string
	TierID    string
	SessionID string
	Quantity  int
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the hold still counts against availability.
func (h Hold) Active(now time.Time) bool {
	return h.ExpiresAt.After(now)
}
