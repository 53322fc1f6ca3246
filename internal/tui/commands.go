package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/subtrack/internal/model"
)

// Resolver applies review decisions. service.Storage satisfies it.
type Resolver interface {
	MergeSubscriptions(ctx context.Context, keepID string, removeIDs ...string) error
	DismissDuplicateGroup(ctx context.Context, key string) error
}

func mergeCmd(ctx context.Context, r Resolver, group model.DuplicateGroup, keep int) tea.Cmd {
	return func() tea.Msg {
		keepID := group.Subscriptions[keep].ID
		removeIDs := make([]string, 0, len(group.Subscriptions)-1)
		for i, sub := range group.Subscriptions {
			if i != keep {
				removeIDs = append(removeIDs, sub.ID)
			}
		}

		if err := r.MergeSubscriptions(ctx, keepID, removeIDs...); err != nil {
			return errorMsg{err: err}
		}
		return resolvedMsg{key: group.Key, outcome: OutcomeMerged}
	}
}

func dismissCmd(ctx context.Context, r Resolver, group model.DuplicateGroup) tea.Cmd {
	return func() tea.Msg {
		if err := r.DismissDuplicateGroup(ctx, group.Key); err != nil {
			return errorMsg{err: err}
		}
		return resolvedMsg{key: group.Key, outcome: OutcomeDismissed}
	}
}
