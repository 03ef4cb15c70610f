package payments

import (
	"context"
	"sync"

	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]Session
	byKey map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]Session),
		byKey: make(map[string]string),
	}
}

func (s *MemoryStore) Insert(_ context.Context, session Session) (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byKey[session.IdempotencyKey]; ok {
		return s.byID[id].clone(), false, nil
	}
	s.byID[session.ID] = session.clone()
	s.byKey[session.IdempotencyKey] = session.ID
	return session.clone(), true, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byID[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return session.clone(), nil
}

func (s *MemoryStore) GetByKey(_ context.Context, idempotencyKey string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[idempotencyKey]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s.byID[id].clone(), nil
}

func (s *MemoryStore) CompareAndSwapStatus(_ context.Context, id string, from, to enums.SessionStatus) (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byID[id]
	if !ok {
		return Session{}, false, ErrSessionNotFound
	}
	if session.Status != from {
		return session.clone(), false, nil
	}
	session.Status = to
	s.byID[id] = session
	return session.clone(), true, nil
}
