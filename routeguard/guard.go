package routeguard

import (
	"github.com/merchantdeck/go-dashboard-auth/authstate"
	"github.com/pkg/errors"
)

// Navigator performs client-side navigation.
type Navigator interface {
	Navigate(path string)
}

// Location reports the route currently being displayed.
type Location interface {
	Path() string
	RawQuery() string
}

// Guard applies the route decision whenever the auth state changes and on
// demand for the current route.
type Guard struct {
	holder    *authstate.Holder
	navigator Navigator
	location  Location
	cancel    func()
}

// NewGuard subscribes to the auth state and enforces route decisions on
// every transition.
func NewGuard(holder *authstate.Holder, navigator Navigator, location Location) (*Guard, error) {
	if holder == nil {
		return nil, errors.New("[routeguard.NewGuard] auth state holder is required")
	}
	if navigator == nil {
		return nil, errors.New("[routeguard.NewGuard] navigator is required")
	}
	if location == nil {
		return nil, errors.New("[routeguard.NewGuard] location is required")
	}

	g := &Guard{
		holder:    holder,
		navigator: navigator,
		location:  location,
	}
	g.cancel = holder.Subscribe(func(state authstate.State) {
		g.apply(state.Authenticated)
	})
	return g, nil
}

// Enforce evaluates the current route against the current auth state.
// Call it once on startup after the initial session check.
func (g *Guard) Enforce() {
	g.apply(g.holder.Current().Authenticated)
}

// Stop unsubscribes the guard from auth state changes.
func (g *Guard) Stop() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

func (g *Guard) apply(authenticated bool) {
	path := g.location.Path()
	rawQuery := g.location.RawQuery()

	decision := Decide(authenticated, path, rawQuery)
	if decision.Action != ActionRedirect {
		return
	}

	target := decision.Target
	if authenticated && path == LoginRoute {
		target = RedirectTarget(rawQuery)
	}
	g.navigator.Navigate(target)
}
