package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/subtrack/internal/cli"
	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/notify"
	"github.com/Veraticus/subtrack/internal/service"
)

func notificationsCmd() *cobra.Command {
	list := func(_ context.Context, cmd *cobra.Command, _ service.Storage, snap *service.Snapshot) error {
		return renderNotifications(cmd.OutOrStdout(), buildNotifications(snap))
	}

	// Bare "notifications" behaves like "notifications list".
	cmd := reportCmd(&cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notify"},
		Short:   "Show and dismiss in-app notifications",
	}, list)

	cmd.AddCommand(reportCmd(&cobra.Command{
		Use:   "list",
		Short: "List current notifications, most urgent first",
	}, list))
	cmd.AddCommand(notificationsDismissCmd())
	cmd.AddCommand(reportCmd(&cobra.Command{
		Use:   "clear",
		Short: "Dismiss every current notification",
	}, clearNotifications))

	return cmd
}

func buildNotifications(snap *service.Snapshot) []model.Notification {
	return notify.Build(snap.Subscriptions, snap.Today, snap.Settings, notify.PriceIndex(snap.PriceChanges), snap.Dismissed)
}

func renderNotifications(w io.Writer, items []model.Notification) error {
	fmt.Fprintln(w, cli.FormatTitle(cli.BellIcon, "Notifications"))
	if len(items) == 0 {
		fmt.Fprintln(w, cli.FormatSuccess("All caught up"))
		return nil
	}

	for _, item := range items {
		title := item.Title
		if item.Actionable {
			title = cli.BoldStyle.Render(title)
		}
		fmt.Fprintf(w, "%s %s: %s\n", cli.PriorityIcon(item.Priority), title, item.Message)
		fmt.Fprintf(w, "   %s\n", cli.SubtleStyle.Render(item.ID))
	}

	fmt.Fprintf(w, "\n%d notifications, %d need attention\n", len(items), notify.CountActionable(items))
	return nil
}

func notificationsDismissCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss ID...",
		Short: "Dismiss notifications by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				if err := store.DismissNotifications(ctx, args...); err != nil {
					return fmt.Errorf("failed to dismiss notifications: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Dismissed %d notification(s)", len(args))))
				return nil
			})
		},
	}
}

// clearNotifications dismisses every notification currently shown.
func clearNotifications(ctx context.Context, cmd *cobra.Command, store service.Storage, snap *service.Snapshot) error {
	items := buildNotifications(snap)
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("All caught up"))
		return nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	if err := store.DismissNotifications(ctx, ids...); err != nil {
		return fmt.Errorf("failed to dismiss notifications: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Dismissed %d notification(s)", len(ids))))
	return nil
}
