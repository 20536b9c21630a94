package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"minigame-service/internal/domain"
)

// ScreenLoader fetches screen content from a backing store (content files, Postgres).
type ScreenLoader interface {
	LoadScreen(ctx context.Context, screenID string) (domain.Screen, error)
}

// ScreenRepository caches screens in Redis and falls back to a loader on cache miss.
// Screens are stored as JSON: SET screen:{screenID} {json} EX ttl
type ScreenRepository struct {
	client *redis.Client
	loader ScreenLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewScreenRepository(client *redis.Client, loader ScreenLoader, ttl time.Duration) *ScreenRepository {
	return &ScreenRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ScreenRepository) GetScreen(ctx context.Context, screenID string) (domain.Screen, error) {
	if screen, ok := r.cached(ctx, screenID); ok {
		return screen, nil
	}

	result, err, _ := r.sf.Do(screenID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if screen, ok := r.cached(ctx, screenID); ok {
			return screen, nil
		}

		screen, err := r.loader.LoadScreen(ctx, screenID)
		if err != nil {
			return domain.Screen{}, err
		}

		data, err := json.Marshal(screen)
		if err != nil {
			return screen, nil
		}
		if err := r.client.Set(ctx, screenKey(screenID), data, r.ttlWithJitter()).Err(); err != nil {
			log.Warn("screen cache write failed", "screen", screenID, "err", err)
		}
		return screen, nil
	})
	if err != nil {
		return domain.Screen{}, err
	}
	return result.(domain.Screen), nil
}

// InvalidateScreens drops cached screens so the next read goes to the loader.
// Writers of screen content call it after replacing what the loader serves.
func InvalidateScreens(ctx context.Context, client *redis.Client, screenIDs ...string) error {
	if len(screenIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(screenIDs))
	for _, id := range screenIDs {
		keys = append(keys, screenKey(id))
	}
	return client.Del(ctx, keys...).Err()
}

func (r *ScreenRepository) cached(ctx context.Context, screenID string) (domain.Screen, bool) {
	raw, err := r.client.Get(ctx, screenKey(screenID)).Bytes()
	if err != nil {
		return domain.Screen{}, false
	}
	var screen domain.Screen
	if err := json.Unmarshal(raw, &screen); err != nil {
		log.Warn("dropping corrupt cached screen", "screen", screenID, "err", err)
		_ = r.client.Del(ctx, screenKey(screenID)).Err()
		return domain.Screen{}, false
	}
	return screen, true
}

func screenKey(screenID string) string {
	return "screen:" + screenID
}

func (r *ScreenRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
