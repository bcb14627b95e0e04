// Package scheduler keeps an authenticated session alive by refreshing it
// shortly before expiry. It watches the auth state and arms a single timer
// per session; every expiry change re-arms it.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/merchantdeck/go-dashboard-auth/authstate"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const sessionExpiredReason = "session_expired"

// SessionClient is the slice of the auth client the scheduler drives.
type SessionClient interface {
	Refresh(ctx context.Context) error
	Logout(ctx context.Context, reason string)
}

// Config is the subset of configuration the scheduler needs.
type Config interface {
	GetRefreshMargin() time.Duration
}

// Timer is the resettable handle returned by the timer factory.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn to run once after d elapses.
type AfterFunc func(d time.Duration, fn func()) Timer

func stdAfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Scheduler arms one refresh timer per authenticated session.
type Scheduler struct {
	client  SessionClient
	margin  time.Duration
	logger  zerolog.Logger
	nowTime func() time.Time
	after   AfterFunc

	mu          sync.Mutex
	timer       Timer
	armed       bool
	stopped     bool
	unsubscribe func()
}

// SchedulerOption defines a function type to modify the Scheduler instance.
type SchedulerOption func(*Scheduler)

// WithLogger sets the scheduler logger.
func WithLogger(logger zerolog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.nowTime = nowFunc
	}
}

// WithAfterFunc sets the timer factory (primarily for testing)
func WithAfterFunc(after AfterFunc) SchedulerOption {
	return func(s *Scheduler) {
		s.after = after
	}
}

// New builds a scheduler and subscribes it to the auth state. The first
// timer arms on the next authenticated transition; call Start to arm for
// a session that already exists.
func New(cfg Config, client SessionClient, holder *authstate.Holder, options ...SchedulerOption) (*Scheduler, error) {
	if cfg == nil {
		return nil, errors.New("[scheduler.New] config is required")
	}
	if client == nil {
		return nil, errors.New("[scheduler.New] session client is required")
	}
	if holder == nil {
		return nil, errors.New("[scheduler.New] auth state holder is required")
	}

	s := &Scheduler{
		client:  client,
		margin:  cfg.GetRefreshMargin(),
		logger:  zerolog.Nop(),
		nowTime: time.Now,
		after:   stdAfterFunc,
	}
	for _, opt := range options {
		opt(s)
	}

	s.unsubscribe = holder.Subscribe(func(state authstate.State) {
		s.onState(state)
	})
	return s, nil
}

// Start arms the scheduler for the holder's current state. Subsequent
// transitions re-arm automatically.
func (s *Scheduler) Start(holder *authstate.Holder) {
	s.onState(holder.Current())
}

// Stop disarms the timer and detaches from the auth state. The scheduler
// cannot be restarted afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.disarmLocked()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Armed reports whether a refresh timer is currently pending.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// onState recomputes the timer for a new auth state. The session client is
// only invoked after the lock is released; its state updates re-enter the
// scheduler through the holder subscription.
func (s *Scheduler) onState(state authstate.State) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.disarmLocked()

	if !state.Authenticated {
		s.mu.Unlock()
		return
	}

	// A session already inside the margin (or expired outright) is not worth
	// a zero timer; it gets logged out immediately.
	delay := state.Session.ExpiresAt.Sub(s.nowTime()) - s.margin
	if delay <= 0 {
		s.mu.Unlock()
		s.logger.Warn().Time("expires_at", state.Session.ExpiresAt).Msg("session inside refresh margin, logging out")
		s.client.Logout(context.Background(), sessionExpiredReason)
		return
	}

	s.timer = s.after(delay, s.fire)
	s.armed = true
	s.mu.Unlock()

	s.logger.Debug().Dur("delay", delay).Time("expires_at", state.Session.ExpiresAt).Msg("refresh timer armed")
}

// fire runs when the timer elapses. Refresh outcomes flow back through the
// auth state: success re-arms via the new expiry, failure clears the state
// and disarms.
func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.armed = false
	s.timer = nil
	s.mu.Unlock()

	if err := s.client.Refresh(context.Background()); err != nil {
		s.logger.Warn().Err(err).Msg("scheduled session refresh failed")
	}
}

func (s *Scheduler) disarmLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.armed = false
}
