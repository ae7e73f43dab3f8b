package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/screening/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

const (
	maxReportedMismatches = 10
	percentageMultiplier  = 100
)

// Run checks the service health, submits the generated cases concurrently and
// verifies every reply. It returns ErrMismatch when any reply disagrees with
// the local calculation.
func Run(ctx context.Context, cfg Config, log logger.Logger) (*Stats, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting screening probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("count", cfg.Count),
		logger.Int("workers", cfg.Workers),
		logger.Float64("invalidRatio", cfg.InvalidRatio),
		logger.Any("seed", cfg.Seed))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, err
	}

	cases := Generate(cfg.Count, cfg.InvalidRatio, cfg.Seed)
	stats.Generated = len(cases)

	if cfg.OutputFile != "" {
		if err := saveCases(cfg.OutputFile, cases); err != nil {
			log.Warn(ctx, "failed to save cases to file", logger.Error(err))
		}
	}

	mismatches := submit(ctx, client, cfg.Workers, cases, stats)
	stats.Duration = time.Since(stats.StartTime)

	for i, err := range mismatches {
		if i == maxReportedMismatches {
			break
		}
		log.Warn(ctx, "reply mismatch", logger.Error(err))
	}
	displayFinalStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if stats.Mismatched > 0 || stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d mismatched, %d failed", ErrMismatch, stats.Mismatched, stats.Failed)
	}
	return stats, nil
}

func checkServiceHealth(ctx context.Context, client *httpClient) error {
	resp, err := client.get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// submit posts cases through a pool of workers and collects mismatches.
func submit(ctx context.Context, client *httpClient, workers int, cases []Case, stats *Stats) []error {
	var (
		submitted  atomic.Int64
		accepted   atomic.Int64
		rejected   atomic.Int64
		mismatched atomic.Int64
		failed     atomic.Int64

		mu     sync.Mutex
		errs   []error
		record = func(err error) {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
	)

	caseCh := make(chan Case, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tc := range caseCh {
				submitted.Add(1)
				r, err := client.screen(ctx, tc)
				if err != nil {
					failed.Add(1)
					record(fmt.Errorf("case %d: %w", tc.Index, err))
					continue
				}
				if r.Status == http.StatusOK {
					accepted.Add(1)
				} else {
					rejected.Add(1)
				}
				if err := verify(tc, r); err != nil {
					mismatched.Add(1)
					record(err)
				}
			}
		}()
	}

	func() {
		defer close(caseCh)
		for _, tc := range cases {
			select {
			case <-ctx.Done():
				return
			case caseCh <- tc:
			}
		}
	}()
	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Accepted = int(accepted.Load())
	stats.Rejected = int(rejected.Load())
	stats.Mismatched = int(mismatched.Load())
	stats.Failed = int(failed.Load())
	return errs
}

// saveCases writes the generated cases to filename as a JSON array.
func saveCases(filename string, cases []Case) error {
	if len(cases) == 0 {
		return errors.New("no cases to save")
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cases: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Submitted-stats.Mismatched-stats.Failed) / float64(stats.Submitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("rejected", stats.Rejected),
		logger.Int("mismatched", stats.Mismatched),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", perSecond))
}
