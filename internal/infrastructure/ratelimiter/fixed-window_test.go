package ratelimiter

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, max int64, window time.Duration) *FixedWindow {
	t.Helper()

	rl := NewFixedWindow(Options{
		MaxEvents:  max,
		Window:     window,
		SweepEvery: time.Hour, // sweep manually in tests
	})
	t.Cleanup(rl.Close)
	return rl
}

func TestFixedWindowAllowsUpToLimit(t *testing.T) {
	rl := newTestLimiter(t, 5, time.Minute)

	for i := 0; i < 5; i++ {
		ok, _ := rl.Allow("conn-1:chat:message")
		assert.True(t, ok, "event %d should pass", i+1)
	}

	ok, retryAfter := rl.Allow("conn-1:chat:message")
	assert.False(t, ok, "sixth event should be denied")
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestFixedWindowDeniedEventsAreNotCharged(t *testing.T) {
	rl := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("conn-1:ping")
		require.True(t, ok)
	}

	// Hammering past the limit must not grow the stored count
	for i := 0; i < 10; i++ {
		ok, _ := rl.Allow("conn-1:ping")
		assert.False(t, ok)
	}

	assert.Equal(t, int64(0), rl.Remaining("conn-1:ping"))
}

func TestFixedWindowKeysAreIndependent(t *testing.T) {
	rl := newTestLimiter(t, 2, time.Minute)

	ok, _ := rl.Allow(Key("conn-1", "chat:message"))
	require.True(t, ok)
	ok, _ = rl.Allow(Key("conn-1", "chat:message"))
	require.True(t, ok)
	ok, _ = rl.Allow(Key("conn-1", "chat:message"))
	require.False(t, ok)

	// Same connection, different event
	ok, _ = rl.Allow(Key("conn-1", "chat:typing"))
	assert.True(t, ok)

	// Same event, different connection
	ok, _ = rl.Allow(Key("conn-2", "chat:message"))
	assert.True(t, ok)
}

func TestFixedWindowResetsAfterExpiry(t *testing.T) {
	rl := newTestLimiter(t, 2, 50*time.Millisecond)

	ok, _ := rl.Allow("conn-1:chat:message")
	require.True(t, ok)
	ok, _ = rl.Allow("conn-1:chat:message")
	require.True(t, ok)
	ok, _ = rl.Allow("conn-1:chat:message")
	require.False(t, ok)

	time.Sleep(60 * time.Millisecond)

	// Window expired: the count resets to one, not to zero minus debt
	ok, _ = rl.Allow("conn-1:chat:message")
	assert.True(t, ok)
	assert.Equal(t, int64(1), rl.Remaining("conn-1:chat:message"))

	ok, _ = rl.Allow("conn-1:chat:message")
	assert.True(t, ok)
	ok, _ = rl.Allow("conn-1:chat:message")
	assert.False(t, ok)
}

func TestFixedWindowRemaining(t *testing.T) {
	rl := newTestLimiter(t, 10, time.Minute)

	assert.Equal(t, int64(10), rl.Remaining("unseen"))

	rl.Allow("conn-1:ping")
	rl.Allow("conn-1:ping")
	rl.Allow("conn-1:ping")

	assert.Equal(t, int64(7), rl.Remaining("conn-1:ping"))
}

func TestFixedWindowSweepDropsExpiredKeys(t *testing.T) {
	rl := newTestLimiter(t, 5, 30*time.Millisecond)

	rl.Allow("conn-1:ping")
	rl.Allow("conn-2:ping")

	assert.Equal(t, 0, rl.Sweep(), "live windows must survive the sweep")

	time.Sleep(40 * time.Millisecond)
	rl.Allow("conn-3:ping") // fresh key, live window

	assert.Equal(t, 2, rl.Sweep())
	assert.Equal(t, int64(4), rl.Remaining("conn-3:ping"))
}

func TestFixedWindowConcurrentAccess(t *testing.T) {
	rl := newTestLimiter(t, 100, time.Minute)

	var wg sync.WaitGroup
	allowed := make([]int64, 8)

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if ok, _ := rl.Allow("shared"); ok {
					allowed[g]++
				}
			}
		}(g)
	}
	wg.Wait()

	var total int64
	for _, n := range allowed {
		total += n
	}

	// 400 attempts against a budget of 100
	assert.Equal(t, int64(100), total)
	assert.Equal(t, int64(0), rl.Remaining("shared"))
}

func TestFixedWindowDefaults(t *testing.T) {
	opts := Options{}.withDefaults()

	assert.Equal(t, int64(60), opts.MaxEvents)
	assert.Equal(t, time.Minute, opts.Window)
	assert.Equal(t, time.Minute, opts.SweepEvery)
}

func TestKeyComposition(t *testing.T) {
	assert.Equal(t, "conn-1:chat:message", Key("conn-1", "chat:message"))
	assert.Equal(t, fmt.Sprintf("%s:%s", "c", "e"), Key("c", "e"))
}
