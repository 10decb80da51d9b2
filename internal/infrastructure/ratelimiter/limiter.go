package ratelimiter

import "time"

// Limiter enforces a per-key ceiling on how many events may be accepted
// inside a fixed window. Implementations never let the stored count
// exceed the configured maximum: a denied event is not charged against
// the window.
type Limiter interface {
	// Allow reports whether the event identified by key may proceed.
	// When denied, the second return value is how long until the
	// window resets.
	Allow(key string) (bool, time.Duration)

	// Remaining reports how many events the key may still send in the
	// current window.
	Remaining(key string) int64

	Close()
}

type Options struct {
	MaxEvents  int64
	Window     time.Duration
	SweepEvery time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxEvents <= 0 {
		o.MaxEvents = 60
	}
	if o.Window <= 0 {
		o.Window = time.Minute
	}
	if o.SweepEvery <= 0 {
		o.SweepEvery = o.Window
	}
	return o
}

// Key builds the limiter key for a connection and event pair, so each
// event name is throttled independently per connection.
func Key(connectionID, event string) string {
	return connectionID + ":" + event
}
