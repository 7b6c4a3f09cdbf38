package session

import (
	"context"
	"errors"
	"time"

	"smart-store/internal/cart"
	"smart-store/internal/importer"
)

var (
	// ErrNotFound is returned when no live session has the requested id
	ErrNotFound = errors.New("session not found")
	// ErrConflict is returned when concurrent updates kept invalidating each other
	ErrConflict = errors.New("session update conflict")
)

// Session is the per-visitor state: the cart, the admin flag and the
// import staging list.
type Session struct {
	ID        string          `json:"id"`
	Cart      cart.Cart       `json:"cart"`
	IsAdmin   bool            `json:"is_admin"`
	Staged    *importer.Batch `json:"staged,omitempty"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// New returns an empty session
func New(id string) *Session {
	return &Session{ID: id}
}

// Expired reports whether the session idled past its expiry
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Clone returns a deep copy that shares no slices with s
func (s *Session) Clone() *Session {
	c := *s
	c.Cart = cart.Cart{Lines: s.Cart.Snapshot()}
	if s.Staged != nil {
		staged := &importer.Batch{Rows: append(s.Staged.Rows[:0:0], s.Staged.Rows...)}
		c.Staged = staged
	}
	return &c
}

// UpdateFunc mutates a session in place. Returning an error discards the
// mutation.
type UpdateFunc func(s *Session) error

// Store keeps sessions between requests
type Store interface {
	// Get returns a copy of the session, or ErrNotFound
	Get(ctx context.Context, id string) (*Session, error)
	// Update runs fn on the session with the given id, creating an empty one
	// when none exists, and saves the result. Updates to the same id are
	// serialized. The saved session is returned.
	Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error)
	Delete(ctx context.Context, id string) error
}
