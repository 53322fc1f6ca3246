// Package tui implements the interactive duplicate review.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/tui/themes"
)

// Summary counts the decisions taken during a review.
type Summary struct {
	Merged    int
	Dismissed int
	Skipped   int
	Remaining int
}

// Model is the bubbletea model that walks the user through duplicate groups
// one at a time.
type Model struct {
	ctx      context.Context
	resolver Resolver
	lastErr  error
	help     help.Model
	theme    themes.Theme
	keymap   KeyMap
	groups   []model.DuplicateGroup
	summary  Summary
	current  int
	cursor   int
	width    int
	busy     bool
	quitting bool
}

// NewModel creates a review over groups that applies decisions through r.
func NewModel(ctx context.Context, groups []model.DuplicateGroup, r Resolver, theme themes.Theme) Model {
	return Model{
		ctx:      ctx,
		resolver: r,
		groups:   groups,
		theme:    theme,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if len(m.groups) == 0 {
		return tea.Quit
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case resolvedMsg:
		m.busy = false
		m.lastErr = nil
		switch msg.outcome {
		case OutcomeMerged:
			m.summary.Merged++
		case OutcomeDismissed:
			m.summary.Dismissed++
		case OutcomeSkipped:
			m.summary.Skipped++
		}
		return m.advance()

	case errorMsg:
		m.busy = false
		m.lastErr = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	// Ignore decisions while one is being applied or once finished.
	if m.busy || m.Done() {
		return m, nil
	}

	group := m.groups[m.current]

	switch {
	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(group.Subscriptions)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keymap.Keep):
		m.busy = true
		return m, mergeCmd(m.ctx, m.resolver, group, m.cursor)
	case key.Matches(msg, m.keymap.Dismiss):
		m.busy = true
		return m, dismissCmd(m.ctx, m.resolver, group)
	case key.Matches(msg, m.keymap.Skip):
		m.summary.Skipped++
		return m.advance()
	default:
		// Digits keep the numbered member directly.
		if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
			if n := int(msg.Runes[0] - '1'); n >= 0 && n < len(group.Subscriptions) && n < 9 {
				m.cursor = n
				m.busy = true
				return m, mergeCmd(m.ctx, m.resolver, group, n)
			}
		}
	}

	return m, nil
}

func (m Model) advance() (tea.Model, tea.Cmd) {
	m.current++
	m.cursor = 0
	if m.Done() {
		return m, tea.Quit
	}
	return m, nil
}

// Done reports whether every group has been handled.
func (m Model) Done() bool {
	return m.current >= len(m.groups)
}

// Summary returns the decisions taken so far.
func (m Model) Summary() Summary {
	s := m.summary
	s.Remaining = len(m.groups) - m.current
	if s.Remaining < 0 {
		s.Remaining = 0
	}
	return s
}

// Err returns the error of the last failed decision, if any.
func (m Model) Err() error {
	return m.lastErr
}
