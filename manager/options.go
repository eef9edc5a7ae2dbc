package manager

import (
	"time"

	"github.com/gogpu/imgres"
)

// DefaultIdleTimeout is how long an unreferenced resource survives before
// Sweep disposes it.
const DefaultIdleTimeout = 30 * time.Second

// Option configures a Manager.
type Option func(*options)

type options struct {
	resource []imgres.Option
	idle     time.Duration
	now      func() time.Time
	onEvict  func(ref string)
}

func defaultOptions() options {
	return options{
		idle: DefaultIdleTimeout,
		now:  time.Now,
	}
}

// WithResourceOptions sets the options every resource is opened with.
func WithResourceOptions(opts ...imgres.Option) Option {
	return func(o *options) {
		o.resource = append(o.resource, opts...)
	}
}

// WithIdleTimeout sets how long a resource without references is kept.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.idle = d
		}
	}
}

// WithEvictCallback registers fn to be called with the resolved reference of
// every resource the manager disposes. Widgets use it to re-acquire after a
// watched file changed.
func WithEvictCallback(fn func(ref string)) Option {
	return func(o *options) {
		o.onEvict = fn
	}
}

// withNow replaces the clock used for idle tracking.
func withNow(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}
