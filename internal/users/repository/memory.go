package repository

import (
	"context"
	"sync"

	"github.com/teamsteps/teamsteps/internal/models"
)

// MemoryRepo keeps the document in process memory. Used by tests and for
// throwaway runs (STORAGE_BACKEND=memory).
type MemoryRepo struct {
	mu    sync.RWMutex
	users []models.UserWithToken
	saved bool
	saves int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// NewMemoryRepoWith returns a repo that already holds the given document.
func NewMemoryRepoWith(users []models.UserWithToken) *MemoryRepo {
	return &MemoryRepo{users: cloneAll(users), saved: true}
}

func (m *MemoryRepo) Name() string { return "memory" }

func (m *MemoryRepo) Load(ctx context.Context) ([]models.UserWithToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.saved {
		return nil, ErrNoDocument
	}
	return cloneAll(m.users), nil
}

func (m *MemoryRepo) Save(ctx context.Context, users []models.UserWithToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = cloneAll(users)
	m.saved = true
	m.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (m *MemoryRepo) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
