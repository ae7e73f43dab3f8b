package app

import (
	"time"

	"github.com/okian/screening/pkg/logger"
	"github.com/okian/screening/pkg/timer"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used by form timers.
func WithClock(c timer.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLoadingDelay sets the simulated computation delay of form sessions.
func WithLoadingDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.loadingDelay = d
		}
	}
}

// WithErrorDisplay sets how long form errors stay visible.
func WithErrorDisplay(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.errorDisplay = d
		}
	}
}

// WithSessionTTL sets the inactivity period after which a session expires.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithCleanupInterval sets how often expired sessions are swept.
func WithCleanupInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cleanupInterval = d
		}
	}
}

func withNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}
