package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/tui/themes"
)

// Options configures RunDuplicateReview.
type Options struct {
	Theme     string
	AltScreen bool
}

// RunDuplicateReview runs the interactive review over groups and returns
// what was decided. Quitting early leaves the rest of the groups untouched.
func RunDuplicateReview(ctx context.Context, groups []model.DuplicateGroup, r Resolver, opts Options) (Summary, error) {
	if len(groups) == 0 {
		return Summary{}, nil
	}

	m := NewModel(ctx, groups, r, themes.GetTheme(opts.Theme))

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(m, programOpts...).Run()
	if err != nil {
		return Summary{}, fmt.Errorf("duplicate review failed: %w", err)
	}

	result, ok := final.(Model)
	if !ok {
		return Summary{}, fmt.Errorf("unexpected model type %T", final)
	}
	return result.Summary(), nil
}
