package memory

import (
	"sync"

	"minigame-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu    sync.RWMutex
	plays map[string]*app.Play
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		plays: make(map[string]*app.Play),
	}
}

func (s *SessionStore) Add(play *app.Play) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays[play.ID] = play
}

func (s *SessionStore) Get(playID string) (*app.Play, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	play, ok := s.plays[playID]
	return play, ok
}

// Sync is a no-op: the stored pointer already is the live state.
func (s *SessionStore) Sync(*app.Play) {}

func (s *SessionStore) Remove(playID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plays, playID)
}

// Len reports how many plays are live.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.plays)
}
