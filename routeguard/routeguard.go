// Package routeguard decides where the dashboard shell should navigate
// based on the current auth state and route. The decision logic is pure;
// Guard wires it to the auth state holder.
package routeguard

import (
	"net/url"
)

// Client-side routes the guard navigates between.
const (
	LoginRoute          = "/login"
	SignupRoute         = "/signup"
	PasswordResetRoute  = "/password-reset"
	DefaultLandingRoute = "/dashboard"

	// redirectParam carries the originally requested path through the
	// login round trip so the user lands where they were headed.
	redirectParam = "redirect"
)

// publicRoutes are reachable without a session.
var publicRoutes = map[string]bool{
	LoginRoute:         true,
	SignupRoute:        true,
	PasswordResetRoute: true,
}

// Action says what the shell should do with the current route.
type Action int

const (
	// ActionNone leaves the user where they are.
	ActionNone Action = iota
	// ActionRedirect navigates to Decision.Target.
	ActionRedirect
)

// Decision is the outcome of evaluating one route against the auth state.
type Decision struct {
	Action Action
	Target string
}

// Decide evaluates a route for the given auth state. Unauthenticated
// visits to protected routes redirect to the login page with the original
// path preserved; authenticated visits to the login page redirect to the
// dashboard. Public routes never bounce an unauthenticated user, so the
// guard cannot loop.
func Decide(authenticated bool, path, rawQuery string) Decision {
	if !authenticated {
		if publicRoutes[path] {
			return Decision{Action: ActionNone}
		}
		target := path
		if rawQuery != "" {
			target += "?" + rawQuery
		}
		return Decision{
			Action: ActionRedirect,
			Target: LoginRoute + "?" + redirectParam + "=" + url.QueryEscape(target),
		}
	}

	if path == LoginRoute {
		return Decision{Action: ActionRedirect, Target: DefaultLandingRoute}
	}
	return Decision{Action: ActionNone}
}

// RedirectTarget extracts the post-login destination from a login route
// query string, falling back to the dashboard when none was preserved.
func RedirectTarget(rawQuery string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return DefaultLandingRoute
	}
	target := values.Get(redirectParam)
	if target == "" || target[0] != '/' {
		return DefaultLandingRoute
	}
	return target
}
