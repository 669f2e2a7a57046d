package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/praxisnote/transcription/internal/shared"
	"github.com/redis/go-redis/v9"
)

// SlotArbiter enforces that one clinical session has at most one live
// connection recording into it at a time.
type SlotArbiter interface {
	// Acquire claims the recording slot for sessionID on behalf of connID.
	// Returns shared.ErrConflict when another connection holds it.
	Acquire(ctx context.Context, sessionID, connID string) error

	// Release frees the slot if connID still holds it.
	Release(ctx context.Context, sessionID, connID string)
}

const slotTTL = 30 * time.Minute

// RedisArbiter backs the recording slot with a redis SETNX lock, which also
// lets the rest of the platform see whether a session is being recorded.
type RedisArbiter struct {
	redis *redis.Client
}

func NewRedisArbiter(redisClient *redis.Client) *RedisArbiter {
	return &RedisArbiter{redis: redisClient}
}

func slotKey(sessionID string) string {
	return "recording:" + sessionID
}

func (a *RedisArbiter) Acquire(ctx context.Context, sessionID, connID string) error {
	ok, err := a.redis.SetNX(ctx, slotKey(sessionID), connID, slotTTL).Result()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	holder, err := a.redis.Get(ctx, slotKey(sessionID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	if holder == connID {
		return nil
	}
	return shared.ErrConflict
}

func (a *RedisArbiter) Release(ctx context.Context, sessionID, connID string) {
	holder, err := a.redis.Get(ctx, slotKey(sessionID)).Result()
	if err != nil || holder != connID {
		return
	}
	a.redis.Del(ctx, slotKey(sessionID))
}

// MemoryArbiter is the in-process fallback used when redis is not configured,
// and by tests. Single-instance deployments only.
type MemoryArbiter struct {
	mu    sync.Mutex
	slots map[string]string
}

func NewMemoryArbiter() *MemoryArbiter {
	return &MemoryArbiter{slots: make(map[string]string)}
}

func (a *MemoryArbiter) Acquire(_ context.Context, sessionID, connID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	holder, held := a.slots[sessionID]
	if held && holder != connID {
		return shared.ErrConflict
	}
	a.slots[sessionID] = connID
	return nil
}

func (a *MemoryArbiter) Release(_ context.Context, sessionID, connID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.slots[sessionID] == connID {
		delete(a.slots, sessionID)
	}
}
