package app

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"minigame-service/internal/domain"
	"minigame-service/internal/game"
)

// SessionRepository abstracts where live plays are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Add(play *Play)
	Get(playID string) (*Play, bool)
	// Sync records the play's latest state. Implementations treat it as best effort.
	Sync(play *Play)
	Remove(playID string)
}

// ScreenRepository loads screen content (from cache/backing store).
type ScreenRepository interface {
	GetScreen(ctx context.Context, screenID string) (domain.Screen, error)
}

// Catalog looks up the game-card record for a screen.
type Catalog interface {
	Entry(ctx context.Context, screenID string) (domain.CatalogEntry, error)
}

// Step is the result of one user event: the fresh view plus whatever the event produced.
type Step struct {
	PlayID  string              `json:"playId"`
	View    game.View           `json:"view"`
	Applied bool                `json:"applied"`
	Result  *game.Result        `json:"result,omitempty"`
	Flash   *game.Flash         `json:"flash,omitempty"`
	Outcome *Outcome            `json:"outcome,omitempty"`
	Rewards domain.RewardConfig `json:"rewards"`
}

// Outcome is handed to the host when a run reaches the terminal state.
type Outcome struct {
	ScreenID     string `json:"screenId"`
	RewardTotal  int    `json:"rewardTotal"`
	CorrectCount int    `json:"correctCount"`
	Total        int    `json:"total"`
	Passed       bool   `json:"passed"`
	CoinsAwarded int    `json:"coinsAwarded"`
	XPAwarded    int    `json:"xpAwarded"`
	NextScreen   string `json:"nextScreen,omitempty"`
	NextEnabled  bool   `json:"nextEnabled"`
}

// PlayService contains the mini-game play use cases.
type PlayService struct {
	sessions SessionRepository
	screens  ScreenRepository
	catalog  Catalog
	now      func() time.Time
}

// NewPlayService wires the service. catalog may be nil, in which case every screen
// uses the default rewards unless it carries its own overrides.
func NewPlayService(store SessionRepository, screens ScreenRepository, catalog Catalog) *PlayService {
	return &PlayService{sessions: store, screens: screens, catalog: catalog, now: time.Now}
}

// Start loads a screen and opens a new play at its first scenario.
func (s *PlayService) Start(ctx context.Context, screenID string) (Step, error) {
	screen, err := s.screens.GetScreen(ctx, screenID)
	if err != nil {
		return Step{}, err
	}
	rewards := s.resolveRewards(ctx, screen)

	play, err := NewPlay(uuid.NewString(), screen, rewards, s.now())
	if err != nil {
		return Step{}, err
	}
	s.sessions.Add(play)

	log.Debug("play started", "play", play.ID, "screen", screen.ID, "scenarios", len(screen.Scenarios))
	return play.step(true), nil
}

// Select records a pending choice.
func (s *PlayService) Select(_ context.Context, playID, optionID string) (Step, error) {
	play, ok := s.sessions.Get(playID)
	if !ok {
		return Step{}, domain.ErrPlayNotFound
	}
	applied := play.session.Select(optionID)
	if applied {
		s.sessions.Sync(play)
	}
	return play.step(applied), nil
}

// Confirm evaluates the pending choice and consumes the reward flash it raised.
func (s *PlayService) Confirm(_ context.Context, playID string) (Step, error) {
	play, ok := s.sessions.Get(playID)
	if !ok {
		return Step{}, domain.ErrPlayNotFound
	}
	res, applied := play.session.Confirm()
	st := play.step(applied)
	if applied {
		st.Result = &res
		if f, ok := play.session.Signal().Consume(); ok {
			st.Flash = &f
			st.View.Flash = nil
		}
		s.sessions.Sync(play)
	}
	return st, nil
}

// Advance moves past the feedback view. When the run ends the step carries the outcome.
func (s *PlayService) Advance(ctx context.Context, playID string) (Step, error) {
	play, ok := s.sessions.Get(playID)
	if !ok {
		return Step{}, domain.ErrPlayNotFound
	}
	applied := play.session.Advance()
	if applied {
		s.sessions.Sync(play)
	}
	return s.finish(ctx, play, applied), nil
}

// AdvanceAfter advances the play after delay unless something else moved it first.
// notify receives the resulting step; it runs on the timer goroutine.
func (s *PlayService) AdvanceAfter(ctx context.Context, playID string, delay time.Duration, notify func(Step)) (cancel func(), err error) {
	play, ok := s.sessions.Get(playID)
	if !ok {
		return nil, domain.ErrPlayNotFound
	}
	return play.session.AdvanceAfter(delay, func() {
		s.sessions.Sync(play)
		if notify != nil {
			notify(s.finish(ctx, play, true))
		}
	}), nil
}

// Retry restarts a play that has not passed.
func (s *PlayService) Retry(_ context.Context, playID string) (Step, error) {
	play, ok := s.sessions.Get(playID)
	if !ok {
		return Step{}, domain.ErrPlayNotFound
	}
	applied := play.session.Retry()
	if applied {
		play.reset()
		s.sessions.Sync(play)
	}
	return play.step(applied), nil
}

// View returns the current step without changing anything.
func (s *PlayService) View(ctx context.Context, playID string) (Step, error) {
	play, ok := s.sessions.Get(playID)
	if !ok {
		return Step{}, domain.ErrPlayNotFound
	}
	return s.finish(ctx, play, false), nil
}

// Leave discards a play; any scheduled continuation becomes a no-op.
func (s *PlayService) Leave(_ context.Context, playID string) {
	play, ok := s.sessions.Get(playID)
	if !ok {
		return
	}
	play.session.Close()
	s.sessions.Remove(playID)
}

func (s *PlayService) finish(ctx context.Context, play *Play, applied bool) Step {
	st := play.step(applied)
	done, ok := play.completion()
	if !ok {
		return st
	}

	out := &Outcome{
		ScreenID:     play.Screen.ID,
		RewardTotal:  done.rewardTotal,
		CorrectCount: st.View.CorrectCount,
		Total:        st.View.Length,
		Passed:       done.passed,
		CoinsAwarded: min(done.rewardTotal, play.Rewards.TotalCoins),
		NextScreen:   play.Screen.Next,
	}
	if done.passed {
		out.XPAwarded = play.Rewards.TotalXP
		out.NextEnabled = s.nextAvailable(ctx, play.Screen.Next)
	}
	st.Outcome = out
	return st
}

// nextAvailable reports whether the next screen can be loaded. A miss disables
// the advance affordance instead of navigating to a broken screen.
func (s *PlayService) nextAvailable(ctx context.Context, next string) bool {
	if next == "" {
		return false
	}
	if _, err := s.screens.GetScreen(ctx, next); err != nil {
		log.Warn("next screen unavailable", "screen", next, "err", err)
		return false
	}
	return true
}

func (s *PlayService) resolveRewards(ctx context.Context, screen domain.Screen) domain.RewardConfig {
	cfg := domain.DefaultRewards()
	if s.catalog != nil {
		entry, err := s.catalog.Entry(ctx, screen.ID)
		switch {
		case err == nil:
			cfg = entry.Rewards.Apply(cfg)
		case errors.Is(err, domain.ErrCatalogEntryNotFound):
		default:
			log.Warn("catalog lookup failed, using default rewards", "screen", screen.ID, "err", err)
		}
	}
	return screen.Rewards.Apply(cfg)
}
