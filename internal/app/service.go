// Package app provides the screening service used by the HTTP and CLI
// surfaces: one-shot calculations and in-memory form sessions.
package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/screening/internal/domain/form"
	"github.com/okian/screening/internal/domain/screening"
	"github.com/okian/screening/pkg/logger"
	"github.com/okian/screening/pkg/metrics"
	"github.com/okian/screening/pkg/timer"
)

// Defaults for session management.
const (
	defaultSessionTTL      = 30 * time.Minute
	defaultMaxSessions     = 10_000
	defaultCleanupInterval = time.Minute
)

type session struct {
	form     *form.Form
	lastSeen atomic.Int64 // unix nanoseconds
}

// Service implements the API dependencies for the screening calculator.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session

	// Configuration
	clock           timer.Clock
	loadingDelay    time.Duration
	errorDisplay    time.Duration
	sessionTTL      time.Duration
	maxSessions     int
	cleanupInterval time.Duration
	now             func() time.Time

	// State
	started bool
	stopCh  chan struct{}
	done    chan struct{}

	computed atomic.Int64
	rejected atomic.Int64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:        make(map[string]*session),
		clock:           timer.System(),
		loadingDelay:    form.DefaultLoadingDelay,
		errorDisplay:    form.DefaultErrorDisplay,
		sessionTTL:      defaultSessionTTL,
		maxSessions:     defaultMaxSessions,
		cleanupInterval: defaultCleanupInterval,
		now:             time.Now,
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the session cleanup loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	go s.cleanupLoop(ctx, s.stopCh, s.done)

	s.started = true
	s.logger.Info(ctx, "screening service started",
		logger.Duration("loadingDelay", s.loadingDelay),
		logger.Duration("errorDisplay", s.errorDisplay),
		logger.Duration("sessionTTL", s.sessionTTL),
		logger.Int("maxSessions", s.maxSessions),
	)
	return nil
}

// Stop halts the cleanup loop and drops every session.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	done := s.done
	s.started = false
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	for id, sess := range s.sessions {
		sess.form.Close()
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	metrics.UpdateActiveSessions(0)
	s.logger.Info(context.Background(), "screening service stopped")
}

func (s *Service) cleanupLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if n := s.expireIdle(s.now()); n > 0 {
				s.logger.Debug(ctx, "expired idle sessions", logger.Int("count", n))
			}
		}
	}
}

// expireIdle removes sessions not touched within the TTL and returns how many
// were removed.
func (s *Service) expireIdle(now time.Time) int {
	cutoff := now.Add(-s.sessionTTL).UnixNano()

	s.mu.Lock()
	var expired []*session
	for id, sess := range s.sessions {
		if sess.lastSeen.Load() < cutoff {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	active := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range expired {
		sess.form.Close()
		metrics.RecordSessionExpired()
	}
	metrics.UpdateActiveSessions(active)
	return len(expired)
}

// Calculate validates raw and computes its screening score.
func (s *Service) Calculate(ctx context.Context, raw screening.RawInput) (screening.Result, error) {
	res, err := screening.Calculate(raw)
	if err != nil {
		s.recordRejected(ctx, "", err)
		return screening.Result{}, err
	}
	s.recordComputed(ctx, "", res)
	return res, nil
}

// Grades returns the grade table.
func (s *Service) Grades() []screening.GradeEntry {
	return screening.Table()
}

// CreateSession starts a new form session.
func (s *Service) CreateSession(ctx context.Context) (string, form.View, error) {
	id := uuid.NewString()
	f := form.New(
		form.WithClock(s.clock),
		form.WithLoadingDelay(s.loadingDelay),
		form.WithErrorDisplay(s.errorDisplay),
		form.WithListener(&sessionListener{svc: s, id: id}),
	)
	sess := &session{form: f}
	sess.lastSeen.Store(s.now().UnixNano())

	s.mu.Lock()
	if len(s.sessions) >= s.maxSessions {
		s.mu.Unlock()
		f.Close()
		return "", form.View{}, fmt.Errorf("%w: limit %d", ErrTooManySessions, s.maxSessions)
	}
	s.sessions[id] = sess
	active := len(s.sessions)
	s.mu.Unlock()

	metrics.RecordSessionCreated()
	metrics.UpdateActiveSessions(active)
	s.logger.Debug(ctx, "session created", logger.String("session", id))
	return id, f.View(), nil
}

// Session returns the current view of a session.
func (s *Service) Session(_ context.Context, id string) (form.View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return form.View{}, err
	}
	return sess.form.View(), nil
}

// EditExamScore sets the exam score field of a session.
func (s *Service) EditExamScore(_ context.Context, id, raw string) (form.View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return form.View{}, err
	}
	sess.form.SetExamScore(raw)
	return sess.form.View(), nil
}

// EditGrade sets grade slot (zero based) of a session.
func (s *Service) EditGrade(_ context.Context, id string, slot int, label string) (form.View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return form.View{}, err
	}
	if !sess.form.SetGrade(slot, label) {
		return form.View{}, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	return sess.form.View(), nil
}

// Submit submits the form of a session.
func (s *Service) Submit(_ context.Context, id string) (form.View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return form.View{}, err
	}
	return sess.form.Submit(), nil
}

// ResetSession clears the form of a session.
func (s *Service) ResetSession(_ context.Context, id string) (form.View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return form.View{}, err
	}
	return sess.form.Reset(), nil
}

// DeleteSession removes a session.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	active := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.form.Close()
	metrics.UpdateActiveSessions(active)
	s.logger.Debug(ctx, "session deleted", logger.String("session", id))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":            s.started,
		"activeSessions":     len(s.sessions),
		"maxSessions":        s.maxSessions,
		"screeningsComputed": s.computed.Load(),
		"inputsRejected":     s.rejected.Load(),
	}
}

func (s *Service) lookup(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.lastSeen.Store(s.now().UnixNano())
	return sess, nil
}

func (s *Service) recordComputed(ctx context.Context, sessionID string, res screening.Result) {
	s.computed.Add(1)
	metrics.RecordScreeningComputed(res.Total)
	s.logger.Debug(ctx, "screening computed",
		logger.String("session", sessionID),
		logger.Int("examScore", res.ExamScore),
		logger.Int("gradePoints", res.GradePoints),
		logger.Float64("total", res.Total),
	)
}

func (s *Service) recordRejected(ctx context.Context, sessionID string, err error) {
	s.rejected.Add(1)
	kind := screening.KindOf(err)
	metrics.RecordValidationFailure(kind)
	s.logger.Debug(ctx, "screening input rejected",
		logger.String("session", sessionID),
		logger.String("kind", kind),
		logger.Error(err),
	)
}

// sessionListener forwards form outcomes of one session to the service.
type sessionListener struct {
	svc *Service
	id  string
}

func (l *sessionListener) Computed(_ screening.Input, res screening.Result) {
	l.svc.recordComputed(context.Background(), l.id, res)
}

func (l *sessionListener) Rejected(err error) {
	l.svc.recordRejected(context.Background(), l.id, err)
}
