package sessionrepo

import (
	"time"

	"github.com/merchantdeck/go-dashboard-auth/credentials"
)

// Record is the server-side half of an operator session. The signed cookie
// carries the identity; the record is what refresh and logout act on.
type Record struct {
	// Core identity
	MerchantID   string
	ProfileID    string
	CustomerID   string
	CustomerName *string
	Environment  credentials.Environment

	// Session management
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repo interface {
	Upsert(sessionID string, record Record) error
	Get(sessionID string) (Record, error)
	Delete(sessionID string) error
	DeleteExpired(cutoff time.Time) (int, error)
}
