package sessionrepo

import (
	"fmt"
	"sync"
	"time"

	interrors "github.com/merchantdeck/go-dashboard-auth/internal/errors"
)

var _ Repo = (*InMemorySessionRepo)(nil)

// InMemorySessionRepo is an in-memory implementation of Repo
type InMemorySessionRepo struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewInMemorySessionRepo creates a new in-memory session repository
func NewInMemorySessionRepo() *InMemorySessionRepo {
	return &InMemorySessionRepo{
		records: make(map[string]Record),
	}
}

// Upsert creates or updates a session record
func (r *InMemorySessionRepo) Upsert(sessionID string, record Record) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[sessionID] = record
	return nil
}

// Get retrieves a session record by ID
func (r *InMemorySessionRepo) Get(sessionID string) (Record, error) {
	if sessionID == "" {
		return Record{}, fmt.Errorf("sessionID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[sessionID]
	if !ok {
		return Record{}, interrors.ErrSessionExpired
	}

	return record, nil
}

// Delete removes a session record
func (r *InMemorySessionRepo) Delete(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, sessionID) // Already absent is not an error
	return nil
}

// DeleteExpired removes records whose expiry is before the cutoff and
// reports how many were removed
func (r *InMemorySessionRepo) DeleteExpired(cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for sessionID, record := range r.records {
		if record.ExpiresAt.Before(cutoff) {
			delete(r.records, sessionID)
			removed++
		}
	}

	return removed, nil
}
