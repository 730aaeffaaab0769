package signal

import (
	"sync"
	"time"

	"github.com/dkeye/neonroom/internal/app/clock"
	"github.com/dkeye/neonroom/internal/core"
)

// RoomRateLimiter bounds join attempts per client in a sliding window
// measured on the same clock that paces room sessions.
type RoomRateLimiter struct {
	mu       sync.Mutex
	history  map[core.SessionID][]time.Time
	limit    int
	interval time.Duration
	clock    core.Clock
}

// NewRoomRateLimiter allows limit joins per interval; a nil clk means the
// system clock.
func NewRoomRateLimiter(limit int, interval time.Duration, clk core.Clock) *RoomRateLimiter {
	if clk == nil {
		clk = clock.System()
	}
	return &RoomRateLimiter{
		history:  make(map[core.SessionID][]time.Time),
		limit:    limit,
		interval: interval,
		clock:    clk,
	}
}

func (rl *RoomRateLimiter) Allow(sid core.SessionID) bool {
	if rl == nil || rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[sid]
	fresh := make([]time.Time, 0, len(attempts)+1)
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[sid] = fresh
		return false
	}

	rl.history[sid] = append(fresh, now)
	return true
}
