package form

import (
	"time"

	"github.com/okian/screening/internal/domain/screening"
	"github.com/okian/screening/pkg/timer"
)

// Default timings.
const (
	DefaultLoadingDelay = 300 * time.Millisecond
	DefaultErrorDisplay = 5 * time.Second
)

// Listener observes the outcome of submissions. Callbacks are invoked without
// the form lock held.
type Listener interface {
	Computed(in screening.Input, res screening.Result)
	Rejected(err error)
}

// Option applies a configuration option to the Form.
type Option func(*Form)

// WithClock sets the clock used for deferred callbacks.
func WithClock(c timer.Clock) Option {
	return func(f *Form) {
		if c != nil {
			f.clock = c
		}
	}
}

// WithLoadingDelay sets the delay between a valid submit and the result.
func WithLoadingDelay(d time.Duration) Option {
	return func(f *Form) {
		if d >= 0 {
			f.loadingDelay = d
		}
	}
}

// WithErrorDisplay sets how long an error stays visible.
func WithErrorDisplay(d time.Duration) Option {
	return func(f *Form) {
		if d > 0 {
			f.errorDisplay = d
		}
	}
}

// WithListener registers a submission observer.
func WithListener(l Listener) Option {
	return func(f *Form) {
		f.listener = l
	}
}
