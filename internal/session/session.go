// Package session holds per-visitor state between requests: rate-limit
// windows, one-shot form snapshots and pending record markers.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Session is a namespaced key/value bag. Values are stored as JSON so the
// same session can be persisted by any Store.
type Session struct {
	ID string

	mu    sync.Mutex
	data  map[string]json.RawMessage
	dirty bool
}

// New returns a session with the given id and data. A nil map starts empty.
func New(id string, data map[string]json.RawMessage) *Session {
	if data == nil {
		data = make(map[string]json.RawMessage)
	}
	return &Session{ID: id, data: data}
}

// Get decodes the value stored under key into v. It reports false when the
// key is absent.
func (s *Session) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode session key %s: %w", key, err)
	}
	return true, nil
}

func (s *Session) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode session key %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	s.dirty = true
	return nil
}

func (s *Session) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		delete(s.data, key)
		s.dirty = true
	}
}

// Pop reads and removes key in one step, for one-shot values.
func (s *Session) Pop(key string, v any) (bool, error) {
	ok, err := s.Get(key, v)
	if ok {
		s.Remove(key)
	}
	return ok, err
}

func (s *Session) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Snapshot returns a copy of the raw session data for persisting.
func (s *Session) Snapshot() map[string]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]json.RawMessage, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

type contextKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the request's session, or nil if the session
// middleware did not run.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
