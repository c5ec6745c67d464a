// Package spool buffers telemetry events whose backend send failed, so a
// flush worker can retry them later. Persistence is optional: the default
// store is in-memory; the SQLite store survives restarts.
//
// The spool is an outbound collaborator of the pipeline, not part of the
// core processing path - feature code never sees spool failures.
package spool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/patternlab/telepipe/pkg/telepipe/event"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("spool store is closed")

// ErrNotFound is returned when an entry does not exist.
var ErrNotFound = errors.New("spool entry not found")

// Entry is one spooled telemetry event awaiting resend.
type Entry struct {
	// EventID is the original event's ID.
	EventID string `json:"event_id"`

	// Name and Category reconstruct the event for resending.
	Name     string `json:"name"`
	Category string `json:"category"`

	// Params is the JSON-encoded parameter map.
	Params []byte `json:"params"`

	// Attempts counts resend attempts so far.
	Attempts int `json:"attempts"`

	// FirstFailedAt and LastFailedAt track the failure history.
	FirstFailedAt time.Time `json:"first_failed_at"`
	LastFailedAt  time.Time `json:"last_failed_at"`

	// NextRetryAt schedules the next resend.
	NextRetryAt time.Time `json:"next_retry_at"`

	// LastError records the most recent send failure.
	LastError string `json:"last_error"`
}

// NewEntry creates a spool entry from an event and the send error.
func NewEntry(evt event.Event, sendErr error) (*Entry, error) {
	params, err := json.Marshal(evt.Params())
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}

	now := time.Now()
	e := &Entry{
		EventID:       evt.ID(),
		Name:          evt.Name(),
		Category:      string(evt.Category()),
		Params:        params,
		FirstFailedAt: now,
		LastFailedAt:  now,
		NextRetryAt:   now,
	}
	if sendErr != nil {
		e.LastError = sendErr.Error()
	}
	return e, nil
}

// Event reconstructs the telemetry event for resending.
func (e *Entry) Event() (event.Event, error) {
	var params event.Params
	if len(e.Params) > 0 {
		if err := json.Unmarshal(e.Params, &params); err != nil {
			return event.Event{}, fmt.Errorf("decode params: %w", err)
		}
	}
	return event.New(e.Name, event.Category(e.Category), params,
		event.WithID(e.EventID)), nil
}

// Store persists spooled entries.
type Store interface {
	// Put adds or replaces an entry, keyed by event ID.
	Put(ctx context.Context, e *Entry) error

	// Due returns up to limit entries whose NextRetryAt has passed,
	// oldest schedule first.
	Due(ctx context.Context, limit int) ([]*Entry, error)

	// Ack removes an entry after a successful resend.
	Ack(ctx context.Context, eventID string) error

	// Fail records another failed attempt and reschedules the entry.
	Fail(ctx context.Context, eventID string, nextRetryAt time.Time, lastError string) error

	// Count returns the number of spooled entries.
	Count(ctx context.Context) (int, error)

	// Close releases the store's resources.
	Close() error
}

// MemoryStore is an in-memory Store suitable for tests and deployments
// that can afford to lose spooled events on restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*Entry
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
	}
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.entries[e.EventID] = e
	return nil
}

// Due implements Store.
func (s *MemoryStore) Due(_ context.Context, limit int) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	now := time.Now()
	due := make([]*Entry, 0, limit)
	for _, e := range s.entries {
		if limit > 0 && len(due) >= limit {
			break
		}
		if !e.NextRetryAt.After(now) {
			due = append(due, e)
		}
	}
	return due, nil
}

// Ack implements Store.
func (s *MemoryStore) Ack(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, ok := s.entries[eventID]; !ok {
		return ErrNotFound
	}
	delete(s.entries, eventID)
	return nil
}

// Fail implements Store.
func (s *MemoryStore) Fail(_ context.Context, eventID string, nextRetryAt time.Time, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	e, ok := s.entries[eventID]
	if !ok {
		return ErrNotFound
	}

	e.Attempts++
	e.LastFailedAt = time.Now()
	e.NextRetryAt = nextRetryAt
	e.LastError = lastError
	return nil
}

// Count implements Store.
func (s *MemoryStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	return len(s.entries), nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
