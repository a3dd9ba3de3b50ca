package history

import (
	"appliance-intake-service/internal/domain"
	"context"
	"sync"
)

// MemoryStore is the process-local fallback used when no Redis address is
// configured. History does not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]domain.HistoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string][]domain.HistoryEntry{}}
}

func (s *MemoryStore) List(_ context.Context, sessionID string) ([]domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.HistoryEntry{}, s.sessions[sessionID]...), nil
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, e domain.HistoryEntry) ([]domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := domain.AppendHistory(s.sessions[sessionID], e)
	s.sessions[sessionID] = next
	return append([]domain.HistoryEntry{}, next...), nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
