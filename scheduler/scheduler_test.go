package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/merchantdeck/go-dashboard-auth/authstate"
	"github.com/merchantdeck/go-dashboard-auth/credentials"
	"github.com/merchantdeck/go-dashboard-auth/scheduler"
	"github.com/merchantdeck/go-dashboard-auth/session"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type stubConfig struct {
	margin time.Duration
}

func (s stubConfig) GetRefreshMargin() time.Duration { return s.margin }

// fakeSessionClient mimics the auth client: a successful refresh pushes
// the new expiry into the holder, a failed one clears it.
type fakeSessionClient struct {
	mu           sync.Mutex
	holder       *authstate.Holder
	refreshErr   error
	nextExpiry   time.Time
	refreshCalls int
	logoutCalls  int
	lastReason   string
}

func (c *fakeSessionClient) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.refreshCalls++
	err := c.refreshErr
	nextExpiry := c.nextExpiry
	c.mu.Unlock()

	if err != nil {
		c.Logout(ctx, "session_expired")
		return err
	}
	c.holder.UpdateExpiry(nextExpiry)
	return nil
}

func (c *fakeSessionClient) Logout(ctx context.Context, reason string) {
	c.mu.Lock()
	c.logoutCalls++
	c.lastReason = reason
	c.mu.Unlock()
	c.holder.Clear()
}

type fakeTimer struct {
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

// fakeClock hands out timers without any real waiting. Tests fire them by
// hand and inspect the requested delays.
type fakeClock struct {
	mu     sync.Mutex
	delays []time.Duration
	fns    []func()
	timers []*fakeTimer
}

func (c *fakeClock) afterFunc(d time.Duration, fn func()) scheduler.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{}
	c.delays = append(c.delays, d)
	c.fns = append(c.fns, fn)
	c.timers = append(c.timers, timer)
	return timer
}

func (c *fakeClock) fireLast() {
	c.mu.Lock()
	fn := c.fns[len(c.fns)-1]
	c.mu.Unlock()
	fn()
}

func (c *fakeClock) lastDelay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delays[len(c.delays)-1]
}

func (c *fakeClock) armCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.delays)
}

func sessionExpiring(expiresAt time.Time) session.Session {
	return session.Session{
		CustomerID:  "cus_1",
		MerchantID:  "merchant_123",
		ProfileID:   "pro_123",
		Environment: credentials.EnvironmentSandbox,
		ExpiresAt:   expiresAt,
	}
}

type schedulerFixture struct {
	holder    *authstate.Holder
	client    *fakeSessionClient
	clock     *fakeClock
	scheduler *scheduler.Scheduler
	now       time.Time
}

func setupSchedulerFixture(t *testing.T, margin time.Duration) *schedulerFixture {
	t.Helper()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	holder := authstate.NewHolder()
	client := &fakeSessionClient{holder: holder}
	clock := &fakeClock{}

	s, err := scheduler.New(stubConfig{margin: margin}, client, holder,
		scheduler.WithNowTime(func() time.Time { return now }),
		scheduler.WithAfterFunc(clock.afterFunc),
	)
	require.NoError(t, err)
	t.Cleanup(s.Stop)

	return &schedulerFixture{
		holder:    holder,
		client:    client,
		clock:     clock,
		scheduler: s,
		now:       now,
	}
}

func TestScheduler(t *testing.T) {
	t.Run("arms margin before expiry on login", func(t *testing.T) {
		f := setupSchedulerFixture(t, 5*time.Minute)

		f.holder.Set(sessionExpiring(f.now.Add(time.Hour)))
		require.True(t, f.scheduler.Armed())
		require.Equal(t, 55*time.Minute, f.clock.lastDelay())
	})

	t.Run("session inside the margin logs out without arming", func(t *testing.T) {
		f := setupSchedulerFixture(t, 5*time.Minute)

		f.holder.Set(sessionExpiring(f.now.Add(time.Minute)))
		require.False(t, f.scheduler.Armed())
		require.Zero(t, f.clock.armCount())
		require.Equal(t, 1, f.client.logoutCalls)
		require.Equal(t, "session_expired", f.client.lastReason)
	})

	t.Run("expired session logs out without arming", func(t *testing.T) {
		f := setupSchedulerFixture(t, 5*time.Minute)

		f.holder.Set(sessionExpiring(f.now.Add(-time.Minute)))
		require.False(t, f.scheduler.Armed())
		require.Equal(t, 1, f.client.logoutCalls)
		require.Equal(t, "session_expired", f.client.lastReason)
	})

	t.Run("successful refresh re-arms for the new expiry", func(t *testing.T) {
		f := setupSchedulerFixture(t, 5*time.Minute)
		f.client.nextExpiry = f.now.Add(2 * time.Hour)

		f.holder.Set(sessionExpiring(f.now.Add(time.Hour)))
		require.Equal(t, 1, f.clock.armCount())

		f.clock.fireLast()
		require.Equal(t, 1, f.client.refreshCalls)
		require.Equal(t, 2, f.clock.armCount())
		require.Equal(t, 115*time.Minute, f.clock.lastDelay())
		require.True(t, f.scheduler.Armed())
	})

	t.Run("failed refresh disarms through the cleared state", func(t *testing.T) {
		f := setupSchedulerFixture(t, 5*time.Minute)
		f.client.refreshErr = errors.New("refresh rejected")

		f.holder.Set(sessionExpiring(f.now.Add(time.Hour)))
		f.clock.fireLast()

		require.Equal(t, 1, f.client.refreshCalls)
		require.Equal(t, 1, f.client.logoutCalls)
		require.False(t, f.scheduler.Armed())
		require.Equal(t, 1, f.clock.armCount())
	})

	t.Run("logout stops the pending timer", func(t *testing.T) {
		f := setupSchedulerFixture(t, 5*time.Minute)

		f.holder.Set(sessionExpiring(f.now.Add(time.Hour)))
		require.True(t, f.scheduler.Armed())

		f.holder.Clear()
		require.False(t, f.scheduler.Armed())
		require.True(t, f.clock.timers[0].stopped)
	})

	t.Run("new session replaces the previous timer", func(t *testing.T) {
		f := setupSchedulerFixture(t, 5*time.Minute)

		f.holder.Set(sessionExpiring(f.now.Add(time.Hour)))
		f.holder.Set(sessionExpiring(f.now.Add(30 * time.Minute)))

		require.Equal(t, 2, f.clock.armCount())
		require.True(t, f.clock.timers[0].stopped)
		require.Equal(t, 25*time.Minute, f.clock.lastDelay())
	})

	t.Run("start arms for a pre-existing session", func(t *testing.T) {
		f := setupSchedulerFixture(t, 5*time.Minute)
		f.scheduler.Stop()

		holder := authstate.NewHolder()
		holder.Set(sessionExpiring(f.now.Add(time.Hour)))
		client := &fakeSessionClient{holder: holder}
		clock := &fakeClock{}

		s, err := scheduler.New(stubConfig{margin: 5 * time.Minute}, client, holder,
			scheduler.WithNowTime(func() time.Time { return f.now }),
			scheduler.WithAfterFunc(clock.afterFunc),
		)
		require.NoError(t, err)
		defer s.Stop()

		require.False(t, s.Armed())
		s.Start(holder)
		require.True(t, s.Armed())
		require.Equal(t, 55*time.Minute, clock.lastDelay())
	})

	t.Run("stop ignores a late timer fire", func(t *testing.T) {
		f := setupSchedulerFixture(t, 5*time.Minute)

		f.holder.Set(sessionExpiring(f.now.Add(time.Hour)))
		f.scheduler.Stop()

		f.clock.fireLast()
		require.Zero(t, f.client.refreshCalls)
	})
}
