package feed

import (
	"sync"

	"github.com/sam-maryland/losers-bracket/internal/sleeper"
)

// weekStore keeps finalized weeks' matchups in memory. Finalized weeks never
// change, so only the live week has to be refetched on every refresh.
type weekStore struct {
	mu    sync.RWMutex
	weeks map[int][]sleeper.Matchup
}

func newWeekStore() *weekStore {
	return &weekStore{
		weeks: make(map[int][]sleeper.Matchup),
	}
}

func (s *weekStore) Get(week int) ([]sleeper.Matchup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.weeks[week]
	return m, ok
}

func (s *weekStore) Set(week int, matchups []sleeper.Matchup) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]sleeper.Matchup, len(matchups))
	copy(stored, matchups)
	s.weeks[week] = stored
}

func (s *weekStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.weeks)
}
