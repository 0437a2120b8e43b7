// Package memory is a process-local session store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"docinsight/internal/domain"
	"docinsight/internal/session"
)

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

var _ session.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{sessions: make(map[string]*session.Session)}
}

func (s *Store) Save(_ context.Context, sess *session.Session) error {
	if sess == nil || sess.ID() == "" {
		return fmt.Errorf("save session: missing id: %w", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = sess
	return nil
}

func (s *Store) Get(_ context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrNotFound)
	}
	return sess, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("session %q: %w", id, domain.ErrNotFound)
	}
	delete(s.sessions, id)
	return nil
}

// List returns session IDs in lexical order.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) Close() error { return nil }
