package game

// ViewOption is an option as rendered by a host.
type ViewOption struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Emoji       string `json:"emoji,omitempty"`
	Description string `json:"description,omitempty"`
	Selected    bool   `json:"selected"`
}

// View is everything a host needs to render one frame of the session.
type View struct {
	ScreenID        string       `json:"screenId"`
	Phase           Phase        `json:"phase"`
	Position        int          `json:"position"`
	Length          int          `json:"length"`
	Prompt          string       `json:"prompt"`
	Options         []ViewOption `json:"options"`
	FeedbackVisible bool         `json:"feedbackVisible"`
	LastCorrect     bool         `json:"lastCorrect"`
	Explanation     string       `json:"explanation,omitempty"`
	RewardTotal     int          `json:"rewardTotal"`
	CorrectCount    int          `json:"correctCount"`
	Terminal        bool         `json:"terminal"`
	Passed          bool         `json:"passed"`
	Flash           *Flash       `json:"flash,omitempty"`
}

// View renders the current state. The pending flash is peeked, not consumed.
func (s *Session) View() View {
	s.mu.Lock()
	st := s.state
	phase := s.phaseLocked()
	s.mu.Unlock()

	scenario := s.cfg.Scenarios[st.Position]
	opts := make([]ViewOption, 0, len(scenario.Options))
	marked := false
	for _, opt := range scenario.Options {
		// Only the first option with the pending id is highlighted.
		selected := !marked && st.Pending != "" && opt.ID == st.Pending
		marked = marked || selected
		opts = append(opts, ViewOption{
			ID:          opt.ID,
			Label:       opt.Label,
			Emoji:       opt.Emoji,
			Description: opt.Description,
			Selected:    selected,
		})
	}

	v := View{
		ScreenID:        st.ScreenID,
		Phase:           phase,
		Position:        st.Position,
		Length:          len(s.cfg.Scenarios),
		Prompt:          scenario.Prompt,
		Options:         opts,
		FeedbackVisible: st.FeedbackVisible,
		LastCorrect:     st.LastCorrect,
		RewardTotal:     st.RewardTotal,
		CorrectCount:    st.CorrectCount,
		Terminal:        st.Terminal,
		Passed:          st.Passed,
	}
	if st.FeedbackVisible {
		v.Explanation = scenario.Explanation
	}
	if f, ok := s.signal.Peek(); ok {
		v.Flash = &f
	}
	return v
}
