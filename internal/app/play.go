package app

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"minigame-service/internal/domain"
	"minigame-service/internal/game"
)

// Play is one user's run through a screen.
type Play struct {
	ID        string
	Screen    domain.Screen
	Rewards   domain.RewardConfig
	StartedAt time.Time

	session *game.Session

	mu   sync.Mutex
	done *completion
}

type completion struct {
	rewardTotal int
	passed      bool
}

// NewPlay builds a play at the first scenario of screen. It is exported for
// infrastructure layers that need to seed plays.
func NewPlay(id string, screen domain.Screen, rewards domain.RewardConfig, startedAt time.Time) (*Play, error) {
	play := &Play{ID: id, Screen: screen, Rewards: rewards, StartedAt: startedAt}
	session, err := game.New(game.Config{
		ScreenID:   screen.ID,
		Scenarios:  screen.Scenarios,
		Rewards:    rewards,
		Pass:       screen.Pass,
		OnComplete: play.complete,
	})
	if err != nil {
		return nil, err
	}
	play.session = session
	return play, nil
}

// Snapshot returns the session state for mirroring.
func (p *Play) Snapshot() game.Snapshot {
	return p.session.Snapshot()
}

// complete is the session's completion callback.
func (p *Play) complete(rewardTotal int, passed bool) {
	p.mu.Lock()
	p.done = &completion{rewardTotal: rewardTotal, passed: passed}
	p.mu.Unlock()
	log.Info("play complete", "play", p.ID, "screen", p.Screen.ID, "reward", rewardTotal, "passed", passed)
}

func (p *Play) completion() (completion, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		return completion{}, false
	}
	return *p.done, true
}

func (p *Play) reset() {
	p.mu.Lock()
	p.done = nil
	p.mu.Unlock()
}

func (p *Play) step(applied bool) Step {
	return Step{
		PlayID:  p.ID,
		View:    p.session.View(),
		Applied: applied,
		Rewards: p.Rewards,
	}
}
