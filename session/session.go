// Package session defines the authenticated operator context and the signed
// cookie it travels in. The cookie is the durable source of truth across
// page reloads; the in-memory copy lives in the authstate package.
package session

import (
	"time"

	"github.com/merchantdeck/go-dashboard-auth/credentials"
)

// Session represents an authenticated operator context.
//
// Invariants: ExpiresAt is in the future while the session is live;
// MerchantID and ProfileID are non-empty; Environment never changes within
// a single session's lifetime (only ExpiresAt is mutated, by refresh).
type Session struct {
	CustomerID   string
	CustomerName *string
	MerchantID   string
	ProfileID    string
	Environment  credentials.Environment
	ExpiresAt    time.Time
}

// ValidAt reports whether the session is complete and unexpired at the
// given instant.
func (s Session) ValidAt(now time.Time) bool {
	if s.MerchantID == "" || s.ProfileID == "" || s.CustomerID == "" {
		return false
	}
	return s.ExpiresAt.After(now)
}
