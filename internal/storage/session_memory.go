package storage

import (
	"context"
	"sync"
	"time"

	"github.com/linemk/remeras-order/internal/domain/models"
)

// memorySessionRepository хранилище сессий в памяти процесса, вариант по умолчанию
type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	now      func() time.Time
}

func NewMemorySessionRepository() SessionStorage {
	return newMemorySessionRepository(time.Now)
}

func newMemorySessionRepository(now func() time.Time) *memorySessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]*models.Session),
		now:      now,
	}
}

func (r *memorySessionRepository) CreateSession(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; ok {
		return ErrSessionExists
	}
	r.sessions[s.ID] = s.Clone()
	return nil
}

func (r *memorySessionRepository) GetSession(_ context.Context, id string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok || s.Expired(r.now()) {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (r *memorySessionRepository) SaveSession(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; !ok {
		return ErrSessionNotFound
	}
	r.sessions[s.ID] = s.Clone()
	return nil
}

func (r *memorySessionRepository) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *memorySessionRepository) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}
