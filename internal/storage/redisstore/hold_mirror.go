// Package redisstore mirrors session holds into Redis so hold lookups can skip
// Postgres. Entries expire with the holds they describe.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

func NewClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type HoldMirror struct {
	client redis.Cmdable
}

func NewHoldMirror(client redis.Cmdable) *HoldMirror {
	return &HoldMirror{client: client}
}

type mirroredHold struct {
	ID        string    `json:"id"`
	TierID    string    `json:"tier_id"`
	SessionID string    `json:"session_id"`
	Quantity  int       `json:"quantity"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// versionTTL outlives any hold TTL so a stale writer still sees the bump.
const versionTTL = time.Hour

func holdKey(bookableID, sessionID string) string {
	return fmt.Sprintf("hold:%s:%s", bookableID, sessionID)
}

func versionKey(bookableID, sessionID string) string {
	return fmt.Sprintf("holdver:%s:%s", bookableID, sessionID)
}

// storeIfVersion writes KEYS[1] only while KEYS[2] still holds ARGV[1].
var storeIfVersion = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// Version returns the session's mirror version; DeleteHolds bumps it.
func (m *HoldMirror) Version(ctx context.Context, bookableID, sessionID string) (int64, error) {
	v, err := m.client.Get(ctx, versionKey(bookableID, sessionID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get hold version from redis: %w", err)
	}
	return v, nil
}

// StoreHolds writes the snapshot unless the session's holds were dropped
// after version was read. stored=false means the snapshot was stale.
func (m *HoldMirror) StoreHolds(ctx context.Context, bookableID, sessionID string, holds []domain.Hold, ttl time.Duration, version int64) (bool, error) {
	records := make([]mirroredHold, 0, len(holds))
	for _, h := range holds {
		records = append(records, mirroredHold(h))
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return false, fmt.Errorf("marshal holds: %w", err)
	}

	keys := []string{holdKey(bookableID, sessionID), versionKey(bookableID, sessionID)}
	n, err := storeIfVersion.Run(ctx, m.client, keys, version, payload, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("store holds in redis: %w", err)
	}
	return n == 1, nil
}

// GetHolds reports ok=false on a cache miss.
func (m *HoldMirror) GetHolds(ctx context.Context, bookableID, sessionID string) ([]domain.Hold, bool, error) {
	val, err := m.client.Get(ctx, holdKey(bookableID, sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get holds from redis: %w", err)
	}

	var records []mirroredHold
	if err := json.Unmarshal(val, &records); err != nil {
		return nil, false, fmt.Errorf("unmarshal holds: %w", err)
	}
	holds := make([]domain.Hold, 0, len(records))
	for _, r := range records {
		holds = append(holds, domain.Hold(r))
	}
	return holds, true, nil
}

// DeleteHolds drops the entry and bumps the version so snapshots taken
// before the delete are refused.
func (m *HoldMirror) DeleteHolds(ctx context.Context, bookableID, sessionID string) error {
	_, err := m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, holdKey(bookableID, sessionID))
		pipe.Incr(ctx, versionKey(bookableID, sessionID))
		pipe.Expire(ctx, versionKey(bookableID, sessionID), versionTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete holds from redis: %w", err)
	}
	return nil
}
