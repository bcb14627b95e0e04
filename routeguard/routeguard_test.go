package routeguard_test

import (
	"testing"
	"time"

	"github.com/merchantdeck/go-dashboard-auth/authstate"
	"github.com/merchantdeck/go-dashboard-auth/credentials"
	"github.com/merchantdeck/go-dashboard-auth/routeguard"
	"github.com/merchantdeck/go-dashboard-auth/session"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		path          string
		rawQuery      string
		action        routeguard.Action
		target        string
	}{
		{
			name:          "unauthenticated on a protected route",
			authenticated: false,
			path:          "/dashboard",
			action:        routeguard.ActionRedirect,
			target:        "/login?redirect=%2Fdashboard",
		},
		{
			name:          "unauthenticated keeps the query string",
			authenticated: false,
			path:          "/payments",
			rawQuery:      "status=failed",
			action:        routeguard.ActionRedirect,
			target:        "/login?redirect=%2Fpayments%3Fstatus%3Dfailed",
		},
		{
			name:          "unauthenticated on the login page stays put",
			authenticated: false,
			path:          routeguard.LoginRoute,
			action:        routeguard.ActionNone,
		},
		{
			name:          "unauthenticated on signup stays put",
			authenticated: false,
			path:          routeguard.SignupRoute,
			action:        routeguard.ActionNone,
		},
		{
			name:          "unauthenticated on password reset stays put",
			authenticated: false,
			path:          routeguard.PasswordResetRoute,
			action:        routeguard.ActionNone,
		},
		{
			name:          "authenticated on the login page",
			authenticated: true,
			path:          routeguard.LoginRoute,
			action:        routeguard.ActionRedirect,
			target:        routeguard.DefaultLandingRoute,
		},
		{
			name:          "authenticated on a protected route stays put",
			authenticated: true,
			path:          "/dashboard",
			action:        routeguard.ActionNone,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision := routeguard.Decide(tc.authenticated, tc.path, tc.rawQuery)
			require.Equal(t, tc.action, decision.Action)
			require.Equal(t, tc.target, decision.Target)
		})
	}
}

func TestRedirectTarget(t *testing.T) {
	require.Equal(t, "/payments?status=failed", routeguard.RedirectTarget("redirect=%2Fpayments%3Fstatus%3Dfailed"))
	require.Equal(t, routeguard.DefaultLandingRoute, routeguard.RedirectTarget(""))
	require.Equal(t, routeguard.DefaultLandingRoute, routeguard.RedirectTarget("redirect=https%3A%2F%2Fevil.example"))
}

type recordingNavigator struct {
	paths []string
}

func (n *recordingNavigator) Navigate(path string) { n.paths = append(n.paths, path) }

type fixedLocation struct {
	path     string
	rawQuery string
}

func (l *fixedLocation) Path() string     { return l.path }
func (l *fixedLocation) RawQuery() string { return l.rawQuery }

func testSession() session.Session {
	return session.Session{
		CustomerID:  "cus_1",
		MerchantID:  "merchant_123",
		ProfileID:   "pro_123",
		Environment: credentials.EnvironmentSandbox,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func TestGuard(t *testing.T) {
	t.Run("login transition bounces off the login page", func(t *testing.T) {
		holder := authstate.NewHolder()
		navigator := &recordingNavigator{}
		location := &fixedLocation{path: routeguard.LoginRoute}

		guard, err := routeguard.NewGuard(holder, navigator, location)
		require.NoError(t, err)
		defer guard.Stop()

		holder.Set(testSession())
		require.Equal(t, []string{routeguard.DefaultLandingRoute}, navigator.paths)
	})

	t.Run("login transition honors the preserved redirect", func(t *testing.T) {
		holder := authstate.NewHolder()
		navigator := &recordingNavigator{}
		location := &fixedLocation{path: routeguard.LoginRoute, rawQuery: "redirect=%2Fpayments"}

		guard, err := routeguard.NewGuard(holder, navigator, location)
		require.NoError(t, err)
		defer guard.Stop()

		holder.Set(testSession())
		require.Equal(t, []string{"/payments"}, navigator.paths)
	})

	t.Run("logout transition bounces off a protected route", func(t *testing.T) {
		holder := authstate.NewHolder()
		holder.Set(testSession())

		navigator := &recordingNavigator{}
		location := &fixedLocation{path: "/dashboard"}

		guard, err := routeguard.NewGuard(holder, navigator, location)
		require.NoError(t, err)
		defer guard.Stop()

		holder.Clear()
		require.Equal(t, []string{"/login?redirect=%2Fdashboard"}, navigator.paths)
	})

	t.Run("enforce evaluates the current route without a transition", func(t *testing.T) {
		holder := authstate.NewHolder()
		navigator := &recordingNavigator{}
		location := &fixedLocation{path: "/dashboard"}

		guard, err := routeguard.NewGuard(holder, navigator, location)
		require.NoError(t, err)
		defer guard.Stop()

		guard.Enforce()
		require.Equal(t, []string{"/login?redirect=%2Fdashboard"}, navigator.paths)
	})

	t.Run("stop detaches the guard", func(t *testing.T) {
		holder := authstate.NewHolder()
		navigator := &recordingNavigator{}
		location := &fixedLocation{path: "/dashboard"}

		guard, err := routeguard.NewGuard(holder, navigator, location)
		require.NoError(t, err)

		guard.Stop()
		holder.Set(testSession())
		holder.Clear()
		require.Empty(t, navigator.paths)
	})
}
