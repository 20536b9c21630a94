package redis

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"minigame-service/internal/app"
	"minigame-service/internal/game"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Live plays stay in a local map; the state machine never leaves the process.
//   - Redis holds a liveness key per play carrying the latest snapshot, so operators
//     can see what is being played. It is never read back to resume a play.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	plays  map[string]*app.Play
}

// mirror is the JSON document stored under the play key.
type mirror struct {
	PlayID    string        `json:"playId"`
	StartedAt time.Time     `json:"startedAt"`
	State     game.Snapshot `json:"state"`
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
		plays:  make(map[string]*app.Play),
	}
}

func (s *SessionStore) Add(play *app.Play) {
	s.mu.Lock()
	s.plays[play.ID] = play
	s.mu.Unlock()
	s.write(play)
}

func (s *SessionStore) Get(playID string) (*app.Play, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	play, ok := s.plays[playID]
	return play, ok
}

func (s *SessionStore) Sync(play *app.Play) {
	s.write(play)
}

func (s *SessionStore) Remove(playID string) {
	s.mu.Lock()
	delete(s.plays, playID)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(playID)).Err()
}

// Mirror reads back the stored snapshot of a play.
func (s *SessionStore) Mirror(ctx context.Context, playID string) (game.Snapshot, error) {
	raw, err := s.client.Get(ctx, s.key(playID)).Bytes()
	if err != nil {
		return game.Snapshot{}, err
	}
	var m mirror
	if err := json.Unmarshal(raw, &m); err != nil {
		return game.Snapshot{}, err
	}
	return m.State, nil
}

// best-effort liveness marker
func (s *SessionStore) write(play *app.Play) {
	data, err := json.Marshal(mirror{PlayID: play.ID, StartedAt: play.StartedAt, State: play.Snapshot()})
	if err != nil {
		return
	}
	if err := s.client.Set(context.Background(), s.key(play.ID), data, s.ttl).Err(); err != nil {
		log.Debug("play mirror write failed", "play", play.ID, "err", err)
	}
}

func (s *SessionStore) key(playID string) string {
	return "play:session:" + playID
}
