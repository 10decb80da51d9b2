package ratelimiter

import (
	"sync"
	"sync/atomic"
	"time"
)

// FixedWindow is the in-memory limiter. Each key's window opens on its
// first event rather than on a clock boundary, and expiry resets the
// count back to one instead of sliding it.
type FixedWindow struct {
	counts    sync.Map // string -> *windowData
	limit     int64
	window    time.Duration
	sweepTick *time.Ticker
	done      chan struct{}
	closeOnce sync.Once
}

type windowData struct {
	count   int64        // atomic
	resetAt atomic.Value // stores time.Time
	mu      sync.Mutex   // only for reset (rare)
}

func NewFixedWindow(opts Options) *FixedWindow {
	opts = opts.withDefaults()

	rl := &FixedWindow{
		limit:     opts.MaxEvents,
		window:    opts.Window,
		sweepTick: time.NewTicker(opts.SweepEvery),
		done:      make(chan struct{}),
	}
	go rl.startSweep()
	return rl
}

func (rl *FixedWindow) Allow(key string) (bool, time.Duration) {
	now := time.Now()

	// Load or create
	val, _ := rl.counts.LoadOrStore(key, &windowData{})
	data := val.(*windowData)

	if resetAt, ok := data.resetAt.Load().(time.Time); ok && now.Before(resetAt) {
		// Still in current window
		newCount := atomic.AddInt64(&data.count, 1)
		if newCount-1 >= rl.limit {
			atomic.AddInt64(&data.count, -1) // rollback: denied events are not charged
			return false, time.Until(resetAt)
		}
		return true, 0
	}

	// --- First event, or window expired: open a fresh window ---
	data.mu.Lock()
	defer data.mu.Unlock()

	// Double-check after lock
	if resetAt, ok := data.resetAt.Load().(time.Time); ok && now.Before(resetAt) {
		// Another goroutine already opened the window
		newCount := atomic.AddInt64(&data.count, 1)
		if newCount-1 >= rl.limit {
			atomic.AddInt64(&data.count, -1)
			return false, time.Until(resetAt)
		}
		return true, 0
	}

	// Hard reset back to a count of one
	atomic.StoreInt64(&data.count, 1)
	data.resetAt.Store(now.Add(rl.window))
	return true, 0
}

func (rl *FixedWindow) Remaining(key string) int64 {
	val, ok := rl.counts.Load(key)
	if !ok {
		return rl.limit
	}
	data := val.(*windowData)

	resetAt, ok := data.resetAt.Load().(time.Time)
	if !ok || time.Now().After(resetAt) {
		return rl.limit
	}

	remaining := rl.limit - atomic.LoadInt64(&data.count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Sweep drops every key whose window has expired. Exposed so callers
// running their own housekeeping loop can trigger it directly.
func (rl *FixedWindow) Sweep() int {
	now := time.Now()
	removed := 0

	rl.counts.Range(func(key, value interface{}) bool {
		data := value.(*windowData)
		if resetAt := data.resetAt.Load(); resetAt != nil {
			if now.After(resetAt.(time.Time)) {
				rl.counts.Delete(key)
				removed++
			}
		}
		return true
	})

	return removed
}

func (rl *FixedWindow) startSweep() {
	for {
		select {
		case <-rl.sweepTick.C:
			rl.Sweep()
		case <-rl.done:
			return
		}
	}
}

func (rl *FixedWindow) Close() {
	rl.closeOnce.Do(func() {
		close(rl.done)
		rl.sweepTick.Stop()
	})
}
