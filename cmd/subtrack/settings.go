package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/subtrack/internal/cli"
	"github.com/Veraticus/subtrack/internal/config"
	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/service"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change notification settings",
		RunE:  runSettingsShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show notification settings",
		RunE:  runSettingsShow,
	})
	cmd.AddCommand(settingsSetCmd())

	return cmd
}

// effectiveSettings returns the stored settings, or the configured ones
// when none were saved, along with where they came from.
func effectiveSettings(ctx context.Context, store service.Storage) (model.NotificationSettings, string, error) {
	settings, found, err := store.GetNotificationSettings(ctx)
	if err != nil {
		return settings, "", fmt.Errorf("failed to load notification settings: %w", err)
	}
	if found {
		return settings, "database", nil
	}

	settings, err = config.NotificationSettings()
	return settings, "config", err
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
		settings, source, err := effectiveSettings(ctx, store)
		if err != nil {
			return err
		}
		renderSettings(cmd.OutOrStdout(), settings, source)
		return nil
	})
}

func renderSettings(w io.Writer, settings model.NotificationSettings, source string) {
	fmt.Fprintln(w, cli.FormatTitle(cli.BellIcon, "Notification settings"))
	fmt.Fprintf(w, "Days ahead:          %d\n", settings.DaysAhead)
	fmt.Fprintf(w, "Show renewed:        %t\n", settings.ShowRenewed)
	fmt.Fprintf(w, "Show price changes:  %t\n", settings.ShowPriceChanges)
	fmt.Fprintln(w, cli.SubtleStyle.Render("from "+source))
}

func settingsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save notification settings",
		Long: `Save notification settings to the database. Flags you leave out keep their
current value. Saved settings take precedence over the config file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				settings, _, err := effectiveSettings(ctx, store)
				if err != nil {
					return err
				}

				if cmd.Flags().Changed("days-ahead") {
					settings.DaysAhead, _ = cmd.Flags().GetInt("days-ahead")
				}
				if cmd.Flags().Changed("show-renewed") {
					settings.ShowRenewed, _ = cmd.Flags().GetBool("show-renewed")
				}
				if cmd.Flags().Changed("show-price-changes") {
					settings.ShowPriceChanges, _ = cmd.Flags().GetBool("show-price-changes")
				}

				if err := store.SaveNotificationSettings(ctx, settings); err != nil {
					return fmt.Errorf("failed to save settings: %w", err)
				}
				renderSettings(cmd.OutOrStdout(), settings, "database")
				return nil
			})
		},
	}

	cmd.Flags().Int("days-ahead", model.DefaultDaysAhead, "days ahead to warn about upcoming charges")
	cmd.Flags().Bool("show-renewed", true, "notify about charges in the past week")
	cmd.Flags().Bool("show-price-changes", true, "notify about recent price changes")

	return cmd
}
