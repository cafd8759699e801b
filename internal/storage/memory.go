package storage

import (
	"context"
	"sync"

	"github.com/clipcoach/backend/internal/models"
)

type MemoryStorage struct {
	mu    sync.Mutex
	leads []models.Lead
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) SaveLead(ctx context.Context, lead *models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads = append(s.leads, *lead)
	return nil
}

// Leads returns a copy of everything saved so far.
func (s *MemoryStorage) Leads() []models.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Lead, len(s.leads))
	copy(out, s.leads)
	return out
}

func (s *MemoryStorage) Close() error {
	return nil
}
