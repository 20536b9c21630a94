package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"minigame-service/internal/domain"
)

// ScreenLoader fetches screen content from a backing store (content files, Postgres).
type ScreenLoader interface {
	LoadScreen(ctx context.Context, screenID string) (domain.Screen, error)
}

// ScreenRepository keeps loaded screens in process for a jittered TTL.
// Concurrent misses for one screen share a single load.
type ScreenRepository struct {
	loader ScreenLoader
	ttl    time.Duration
	clock  func() time.Time
	loads  singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu      sync.RWMutex
	screens map[string]screenEntry
}

type screenEntry struct {
	screen    domain.Screen
	expiresAt time.Time
}

func NewScreenRepository(loader ScreenLoader, ttl time.Duration) *ScreenRepository {
	return &ScreenRepository{
		loader:  loader,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		screens: make(map[string]screenEntry),
	}
}

// GetScreen returns the screen, loading and normalizing it on a miss.
func (r *ScreenRepository) GetScreen(ctx context.Context, screenID string) (domain.Screen, error) {
	if screen, ok := r.fresh(screenID, r.clock()); ok {
		return screen, nil
	}

	result, err, _ := r.loads.Do(screenID, func() (any, error) {
		now := r.clock()
		if screen, ok := r.fresh(screenID, now); ok {
			return screen, nil
		}

		screen, err := r.loader.LoadScreen(ctx, screenID)
		if err != nil {
			return domain.Screen{}, err
		}
		screen, err = fill(screenID, screen)
		if err != nil {
			return domain.Screen{}, err
		}

		r.mu.Lock()
		r.screens[screenID] = screenEntry{screen: screen, expiresAt: now.Add(r.ttlWithJitter())}
		r.mu.Unlock()
		return screen, nil
	})
	if err != nil {
		return domain.Screen{}, err
	}
	return result.(domain.Screen), nil
}

func (r *ScreenRepository) fresh(screenID string, now time.Time) (domain.Screen, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.screens[screenID]
	if !ok || !entry.expiresAt.After(now) {
		return domain.Screen{}, false
	}
	return entry.screen, true
}

// fill derives what a stored screen may omit and refuses screens nobody can play.
// Unplayable screens are never cached, so fixed content shows up on the next read.
func fill(screenID string, screen domain.Screen) (domain.Screen, error) {
	if screen.ID == "" {
		screen.ID = screenID
	}
	if screen.ID != screenID {
		return domain.Screen{}, fmt.Errorf("screen %q loaded as %q: %w", screenID, screen.ID, domain.ErrScreenNotFound)
	}
	if len(screen.Scenarios) == 0 {
		return domain.Screen{}, fmt.Errorf("screen %q: %w", screenID, domain.ErrEmptyQuestionSet)
	}
	if screen.Pillar == "" {
		screen.Pillar = domain.PillarOf(screen.ID)
	}
	return screen, nil
}

// StaticScreenLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticScreenLoader struct {
	screens map[string]domain.Screen
}

func NewStaticScreenLoader(screens map[string]domain.Screen) *StaticScreenLoader {
	return &StaticScreenLoader{screens: screens}
}

func (l *StaticScreenLoader) LoadScreen(_ context.Context, screenID string) (domain.Screen, error) {
	if screen, ok := l.screens[screenID]; ok {
		return screen, nil
	}
	return domain.Screen{}, domain.ErrScreenNotFound
}

func (r *ScreenRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% extra so a batch loaded together does not expire together
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
