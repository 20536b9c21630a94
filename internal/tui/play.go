// Package tui hosts a play session in the terminal with Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"minigame-service/internal/app"
	"minigame-service/internal/game"
)

// autoAdvanceMsg fires when the feedback delay for a given scenario has elapsed.
type autoAdvanceMsg struct {
	playID   string
	position int
}

// PlayModel is the Bubble Tea model for one play. Up/down move and select, enter
// confirms or advances, r retries, n opens the next screen, q quits.
type PlayModel struct {
	ctx         context.Context
	service     *app.PlayService
	autoAdvance time.Duration
	theme       Theme

	step     app.Step
	cursor   int
	flash    *game.Flash
	outcome  *app.Outcome
	err      error
	quitting bool
}

// NewPlayModel starts a play of screenID.
func NewPlayModel(ctx context.Context, service *app.PlayService, screenID string, autoAdvance time.Duration) (PlayModel, error) {
	step, err := service.Start(ctx, screenID)
	if err != nil {
		return PlayModel{}, err
	}
	return PlayModel{
		ctx:         ctx,
		service:     service,
		autoAdvance: autoAdvance,
		theme:       DefaultTheme(),
		step:        step,
	}, nil
}

// Run plays screenID (and any screens it chains to) until the user quits.
func Run(ctx context.Context, service *app.PlayService, screenID string, autoAdvance time.Duration) error {
	m, err := NewPlayModel(ctx, service, screenID, autoAdvance)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m).Run()
	if pm, ok := final.(PlayModel); ok {
		service.Leave(ctx, pm.step.PlayID)
	}
	return err
}

func (m PlayModel) Init() tea.Cmd {
	return nil
}

func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case autoAdvanceMsg:
		v := m.step.View
		if msg.playID != m.step.PlayID || msg.position != v.Position || v.Phase != game.PhaseFeedback {
			return m, nil
		}
		return m.advance()
	}
	return m, nil
}

func (m PlayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "w":
		return m.move(-1)
	case "down", "s":
		return m.move(1)
	case "1", "2", "3", "4", "5", "6":
		idx := int(msg.Runes[0] - '1')
		if idx < len(m.step.View.Options) {
			m.cursor = idx
			return m.selectCursor()
		}
	case "enter", " ":
		return m.primary()
	case "r":
		return m.retry()
	case "n":
		return m.next()
	}
	return m, nil
}

func (m PlayModel) move(delta int) (tea.Model, tea.Cmd) {
	n := len(m.step.View.Options)
	if n == 0 {
		return m, nil
	}
	m.cursor = (m.cursor + delta + n) % n
	return m.selectCursor()
}

func (m PlayModel) selectCursor() (tea.Model, tea.Cmd) {
	opts := m.step.View.Options
	if m.cursor >= len(opts) {
		return m, nil
	}
	step, err := m.service.Select(m.ctx, m.step.PlayID, opts[m.cursor].ID)
	return m.apply(step, err), nil
}

// primary handles enter: confirm while choosing, advance while feedback shows,
// next screen once a passed run offers one.
func (m PlayModel) primary() (tea.Model, tea.Cmd) {
	switch m.step.View.Phase {
	case game.PhasePresenting:
		return m.selectCursor()
	case game.PhaseSelected:
		return m.confirm()
	case game.PhaseFeedback:
		return m.advance()
	case game.PhaseTerminal:
		return m.next()
	}
	return m, nil
}

func (m PlayModel) confirm() (tea.Model, tea.Cmd) {
	step, err := m.service.Confirm(m.ctx, m.step.PlayID)
	m = m.apply(step, err)
	if err != nil || !step.Applied {
		return m, nil
	}
	m.flash = step.Flash
	if m.autoAdvance <= 0 {
		return m, nil
	}
	tick := autoAdvanceMsg{playID: step.PlayID, position: step.View.Position}
	return m, tea.Tick(m.autoAdvance, func(time.Time) tea.Msg { return tick })
}

func (m PlayModel) advance() (tea.Model, tea.Cmd) {
	step, err := m.service.Advance(m.ctx, m.step.PlayID)
	m = m.apply(step, err)
	if err == nil && step.Applied {
		m.flash = nil
		m.cursor = 0
		m.outcome = step.Outcome
	}
	return m, nil
}

func (m PlayModel) retry() (tea.Model, tea.Cmd) {
	step, err := m.service.Retry(m.ctx, m.step.PlayID)
	m = m.apply(step, err)
	if err == nil && step.Applied {
		m.flash = nil
		m.cursor = 0
		m.outcome = nil
	}
	return m, nil
}

func (m PlayModel) next() (tea.Model, tea.Cmd) {
	if m.outcome == nil || !m.outcome.NextEnabled {
		return m, nil
	}
	step, err := m.service.Start(m.ctx, m.outcome.NextScreen)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.service.Leave(m.ctx, m.step.PlayID)
	return PlayModel{
		ctx:         m.ctx,
		service:     m.service,
		autoAdvance: m.autoAdvance,
		theme:       m.theme,
		step:        step,
	}, nil
}

func (m PlayModel) apply(step app.Step, err error) PlayModel {
	if err != nil {
		m.err = err
		return m
	}
	m.err = nil
	m.step = step
	return m
}

func (m PlayModel) View() string {
	if m.quitting {
		return ""
	}
	t := m.theme
	v := m.step.View
	var b strings.Builder

	b.WriteString(t.Title.Render(v.ScreenID))
	b.WriteString("  ")
	b.WriteString(t.Progress.Render(fmt.Sprintf("%d/%d", v.Position+1, v.Length)))
	b.WriteString("  ")
	b.WriteString(t.Subtitle.Render(fmt.Sprintf("coins %d", v.RewardTotal)))
	b.WriteString("\n")

	b.WriteString(t.Prompt.Render(v.Prompt))
	b.WriteString("\n")
	for i, opt := range v.Options {
		label := opt.Label
		if opt.Emoji != "" {
			label = opt.Emoji + " " + label
		}
		marker := "( )"
		if opt.Selected {
			marker = "(•)"
		}
		line := fmt.Sprintf("%s %d. %s", marker, i+1, label)
		if i == m.cursor && !v.FeedbackVisible {
			b.WriteString(t.OptionFocus.Render("> " + line))
		} else {
			b.WriteString(t.Option.Render(line))
		}
		b.WriteString("\n")
	}

	if v.FeedbackVisible {
		b.WriteString("\n")
		if v.LastCorrect {
			b.WriteString(t.Correct.Render("Correct!"))
		} else {
			b.WriteString(t.Incorrect.Render("Not quite."))
		}
		if v.Explanation != "" {
			b.WriteString(" ")
			b.WriteString(t.Explanation.Render(v.Explanation))
		}
		b.WriteString("\n")
	}

	if m.flash != nil {
		if m.flash.Major {
			b.WriteString(t.Celebrate.Render(fmt.Sprintf("🎉 +%d coins! Level complete!", m.flash.Amount)))
		} else {
			b.WriteString(t.Flash.Render(fmt.Sprintf("+%d coins", m.flash.Amount)))
		}
		b.WriteString("\n")
	}

	if m.outcome != nil {
		b.WriteString(t.Outcome.Render(renderOutcome(m.outcome)))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(t.Error.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(t.Help.Render(m.help()))
	return b.String()
}

func renderOutcome(o *app.Outcome) string {
	var b strings.Builder
	if o.Passed {
		b.WriteString("Passed!\n")
	} else {
		b.WriteString("Not passed yet.\n")
	}
	fmt.Fprintf(&b, "correct %d/%d  coins %d  xp %d", o.CorrectCount, o.Total, o.CoinsAwarded, o.XPAwarded)
	if o.NextScreen != "" && !o.NextEnabled && o.Passed {
		b.WriteString("\nnext screen unavailable")
	}
	return b.String()
}

func (m PlayModel) help() string {
	switch m.step.View.Phase {
	case game.PhaseFeedback:
		return "enter continue • r retry • q quit"
	case game.PhaseTerminal:
		if m.outcome != nil && m.outcome.NextEnabled {
			return "enter/n next screen • q quit"
		}
		if m.outcome != nil && !m.outcome.Passed {
			return "r retry • q quit"
		}
		return "q quit"
	default:
		return "↑/↓ or 1-6 choose • enter confirm • r retry • q quit"
	}
}
