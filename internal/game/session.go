// Package game implements the per-screen session state machine: one scenario at a
// time moves through select, confirm, feedback and advance until the run ends.
package game

import (
	"sync"
	"time"

	"minigame-service/internal/domain"
)

// Phase is the externally visible state of a session.
type Phase string

const (
	PhasePresenting Phase = "presenting"
	PhaseSelected   Phase = "selected"
	PhaseFeedback   Phase = "feedback"
	PhaseTerminal   Phase = "terminal"
)

// Config parameterizes a session.
type Config struct {
	ScreenID  string
	Scenarios domain.QuestionSet
	Rewards   domain.RewardConfig
	Pass      domain.PassRule
	// Signal is created when nil.
	Signal *RewardSignal
	// OnComplete runs once per run when the session reaches the terminal state.
	OnComplete func(rewardTotal int, passed bool)
}

// Result describes a confirmed choice.
type Result struct {
	OptionID string `json:"optionId"`
	Correct  bool   `json:"correct"`
	Awarded  int    `json:"awarded"`
}

// Snapshot is the serializable mutable state of a session.
type Snapshot struct {
	ScreenID        string `json:"screenId"`
	Position        int    `json:"position"`
	Pending         string `json:"pending,omitempty"`
	FeedbackVisible bool   `json:"feedbackVisible"`
	LastCorrect     bool   `json:"lastCorrect"`
	RewardTotal     int    `json:"rewardTotal"`
	CorrectCount    int    `json:"correctCount"`
	Terminal        bool   `json:"terminal"`
	Passed          bool   `json:"passed"`
}

// Session drives one screen's question set. It is safe for concurrent use so that
// delayed continuations can run alongside the event handler.
type Session struct {
	cfg    Config
	signal *RewardSignal

	mu    sync.Mutex
	state Snapshot
	// epoch changes on every transition that invalidates scheduled continuations.
	epoch  uint64
	closed bool
}

// New creates a session at position 0.
func New(cfg Config) (*Session, error) {
	if len(cfg.Scenarios) == 0 {
		return nil, domain.ErrEmptyQuestionSet
	}
	if cfg.Signal == nil {
		cfg.Signal = NewRewardSignal()
	}
	return &Session{
		cfg:    cfg,
		signal: cfg.Signal,
		state:  Snapshot{ScreenID: cfg.ScreenID},
	}, nil
}

// Signal returns the session-scoped reward signal.
func (s *Session) Signal() *RewardSignal {
	return s.signal
}

// Rewards returns the reward configuration the session was built with.
func (s *Session) Rewards() domain.RewardConfig {
	return s.cfg.Rewards
}

// Len returns the number of scenarios.
func (s *Session) Len() int {
	return len(s.cfg.Scenarios)
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phaseLocked()
}

func (s *Session) phaseLocked() Phase {
	switch {
	case s.state.Terminal:
		return PhaseTerminal
	case s.state.FeedbackVisible:
		return PhaseFeedback
	case s.state.Pending != "":
		return PhaseSelected
	default:
		return PhasePresenting
	}
}

// Select marks optionID as the pending choice. Ids that are not part of the current
// scenario, and calls outside Presenting/Selected, are ignored.
func (s *Session) Select(optionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if p := s.phaseLocked(); p != PhasePresenting && p != PhaseSelected {
		return false
	}
	if _, ok := s.cfg.Scenarios[s.state.Position].Option(optionID); !ok {
		return false
	}
	s.state.Pending = optionID
	return true
}

// Confirm evaluates the pending choice. It is effective once per cycle; the second
// return value is false when nothing was confirmed.
func (s *Session) Confirm() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.phaseLocked() != PhaseSelected {
		return Result{}, false
	}

	scenario := s.cfg.Scenarios[s.state.Position]
	// A scenario without a correct option can never be won, and neither can an
	// id shared by several options.
	opt, _ := scenario.Option(s.state.Pending)
	res := Result{OptionID: opt.ID, Correct: opt.Correct && scenario.Unique(opt.ID)}

	s.state.FeedbackVisible = true
	s.state.LastCorrect = res.Correct
	if res.Correct {
		res.Awarded = s.cfg.Rewards.CoinsPerCorrect
		s.state.CorrectCount++
		s.state.RewardTotal += res.Awarded
		s.signal.Trigger(res.Awarded, s.celebrateLocked())
	}
	return res, true
}

// celebrateLocked reports whether the current correct answer finishes a passing run.
func (s *Session) celebrateLocked() bool {
	if s.state.Position != len(s.cfg.Scenarios)-1 {
		return false
	}
	return Passes(s.cfg.Pass, s.state.CorrectCount, len(s.cfg.Scenarios), true)
}

// Advance leaves the feedback view, moving to the next scenario or the terminal state.
func (s *Session) Advance() bool {
	s.mu.Lock()
	ok, done := s.advanceLocked()
	st := s.state
	s.mu.Unlock()

	if done && s.cfg.OnComplete != nil {
		s.cfg.OnComplete(st.RewardTotal, st.Passed)
	}
	return ok
}

func (s *Session) advanceLocked() (ok, completed bool) {
	if s.closed || s.phaseLocked() != PhaseFeedback {
		return false, false
	}
	s.epoch++

	if s.state.Position == len(s.cfg.Scenarios)-1 {
		s.state.Terminal = true
		s.state.Passed = Passes(s.cfg.Pass, s.state.CorrectCount, len(s.cfg.Scenarios), s.state.LastCorrect)
		return true, true
	}

	s.state.Position++
	s.state.Pending = ""
	s.state.FeedbackVisible = false
	s.state.LastCorrect = false
	s.signal.Reset()
	return true, false
}

// AdvanceAfter schedules Advance after delay. The continuation does nothing if the
// session was closed, retried or advanced in the meantime; otherwise then (if set)
// runs after the transition. The returned func cancels it.
func (s *Session) AdvanceAfter(delay time.Duration, then func()) (cancel func()) {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	t := time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.epoch != epoch {
			s.mu.Unlock()
			return
		}
		ok, done := s.advanceLocked()
		st := s.state
		s.mu.Unlock()

		if done && s.cfg.OnComplete != nil {
			s.cfg.OnComplete(st.RewardTotal, st.Passed)
		}
		if ok && then != nil {
			then()
		}
	})
	return func() { t.Stop() }
}

// Retry restarts the run from the first scenario. A passed terminal run cannot be retried.
func (s *Session) Retry() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || (s.state.Terminal && s.state.Passed) {
		return false
	}
	s.epoch++
	s.state = Snapshot{ScreenID: s.cfg.ScreenID}
	s.signal.Reset()
	return true
}

// Close marks the session as unmounted. Further events and pending continuations are no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.epoch++
	s.mu.Unlock()
	s.signal.Reset()
}

// Snapshot returns a copy of the mutable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Restore replaces the mutable state with snap after checking it fits the question set.
func (s *Session) Restore(snap Snapshot) error {
	if snap.ScreenID != s.cfg.ScreenID ||
		snap.Position < 0 || snap.Position >= len(s.cfg.Scenarios) ||
		snap.RewardTotal < 0 || snap.CorrectCount < 0 ||
		snap.CorrectCount > snap.Position+1 {
		return domain.ErrInvalidSnapshot
	}
	if snap.Pending != "" {
		if _, ok := s.cfg.Scenarios[snap.Position].Option(snap.Pending); !ok {
			return domain.ErrInvalidSnapshot
		}
	}
	if snap.FeedbackVisible && snap.Pending == "" {
		return domain.ErrInvalidSnapshot
	}
	if snap.RewardTotal != snap.CorrectCount*s.cfg.Rewards.CoinsPerCorrect {
		return domain.ErrInvalidSnapshot
	}
	last := len(s.cfg.Scenarios) - 1
	if snap.Terminal {
		if !snap.FeedbackVisible || snap.Position != last ||
			snap.Passed != Passes(s.cfg.Pass, snap.CorrectCount, len(s.cfg.Scenarios), snap.LastCorrect) {
			return domain.ErrInvalidSnapshot
		}
	} else if snap.Passed {
		return domain.ErrInvalidSnapshot
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = snap
	s.epoch++
	s.signal.Reset()
	return nil
}
