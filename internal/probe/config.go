// Package probe drives a running screening server with generated inputs and
// checks every response against the local calculator.
package probe

import (
	"errors"
	"time"

	"github.com/okian/screening/internal/domain/screening"
)

// Error kinds reported by Run.
var (
	ErrUnhealthy = errors.New("service unhealthy")
	ErrMismatch  = errors.New("server disagrees with local calculation")
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Count        int           // Number of cases to generate
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	InvalidRatio float64       // Share of cases that must be rejected, 0..1
	Seed         uint64        // Generator seed; 0 picks one from the clock
	OutputFile   string        // Optional JSON file receiving the generated cases
}

// Case is one generated input and the outcome the server must produce.
type Case struct {
	Index    int                `json:"index"`
	Input    screening.RawInput `json:"input"`
	Total    float64            `json:"total,omitempty"`
	Message  string             `json:"message"`
	ErrorKey string             `json:"error_code,omitempty"`
}

// Invalid reports whether the server is expected to reject the case.
func (c Case) Invalid() bool { return c.ErrorKey != "" }

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Accepted   int
	Rejected   int
	Mismatched int
	Failed     int
	StartTime  time.Time
	Duration   time.Duration
}
