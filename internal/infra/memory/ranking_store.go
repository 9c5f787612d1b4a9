package memory

import (
	"context"
	"sort"
	"sync"

	"quizshow-game-service/internal/domain"
)

// RankingStore keeps the append-only finished-session projection in memory.
type RankingStore struct {
	mu      sync.RWMutex
	entries map[string][]domain.RankingEntry // by room ID
}

func NewRankingStore() *RankingStore {
	return &RankingStore{entries: make(map[string][]domain.RankingEntry)}
}

func (s *RankingStore) Record(_ context.Context, roomID string, entry domain.RankingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[roomID] = append(s.entries[roomID], entry)
	return nil
}

func (s *RankingStore) ListTop(_ context.Context, roomID string, limit int) ([]domain.RankingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := append([]domain.RankingEntry(nil), s.entries[roomID]...)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].At.Before(entries[j].At)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
