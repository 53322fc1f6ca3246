package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/subtrack/internal/cli"
	"github.com/Veraticus/subtrack/internal/config"
	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/service"
	"github.com/Veraticus/subtrack/internal/similarity"
	"github.com/Veraticus/subtrack/internal/tui"
)

func duplicatesCmd() *cobra.Command {
	list := func(_ context.Context, cmd *cobra.Command, _ service.Storage, snap *service.Snapshot) error {
		groups, err := detectDuplicates(cmd, snap)
		if err != nil {
			return err
		}
		return renderDuplicates(cmd.OutOrStdout(), groups)
	}

	cmd := reportCmd(&cobra.Command{
		Use:     "duplicates",
		Aliases: []string{"dups"},
		Short:   "Find subscriptions that look like duplicates",
		Long: `Find subscriptions that look like the same service entered twice.
Pairs score points for similar names, equal amounts, category, billing
frequency and website; groups are shown until merged or dismissed.`,
	}, list)
	addStrategyFlag(cmd)

	listSub := reportCmd(&cobra.Command{
		Use:   "list",
		Short: "List duplicate groups",
	}, list)
	addStrategyFlag(listSub)

	reviewSub := reportCmd(&cobra.Command{
		Use:   "review",
		Short: "Step through duplicate groups interactively",
	}, reviewDuplicates)
	addStrategyFlag(reviewSub)
	reviewSub.Flags().String("theme", "default", "color theme (default, catppuccin-mocha)")

	cmd.AddCommand(listSub, reviewSub, duplicatesDismissCmd(), duplicatesMergeCmd())

	return cmd
}

func addStrategyFlag(cmd *cobra.Command) {
	cmd.Flags().String("strategy", "", "grouping strategy: greedy or transitive (default: duplicates.strategy)")
}

func detectDuplicates(cmd *cobra.Command, snap *service.Snapshot) ([]model.DuplicateGroup, error) {
	value := viper.GetString(config.KeyDuplicateStrategy)
	if flag, _ := cmd.Flags().GetString("strategy"); flag != "" {
		value = flag
	}
	strategy, err := similarity.ParseStrategy(value)
	if err != nil {
		return nil, err
	}
	return similarity.Detect(snap.Subscriptions, snap.DismissedDups, strategy), nil
}

func renderDuplicates(w io.Writer, groups []model.DuplicateGroup) error {
	fmt.Fprintln(w, cli.FormatTitle("🔍", "Possible duplicates"))
	if len(groups) == 0 {
		fmt.Fprintln(w, cli.FormatSuccess("No duplicates found"))
		return nil
	}

	for i, g := range groups {
		fmt.Fprintf(w, "%d. %s %s\n", i+1, cli.WarningStyle.Render(g.Reason), cli.SubtleStyle.Render("("+g.Key+")"))
		for _, s := range g.Subscriptions {
			fmt.Fprintf(w, "   %s  %-24s %s / %s\n", shortID(s.ID), s.Name, cli.FormatMoney(s.Amount, s.Currency), s.BillingFrequency)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.FormatInfo("Merge with: subtrack duplicates merge KEEP REMOVE..."))
	fmt.Fprintln(w, cli.FormatInfo("Or dismiss with: subtrack duplicates dismiss KEY"))
	return nil
}

func reviewDuplicates(ctx context.Context, cmd *cobra.Command, store service.Storage, snap *service.Snapshot) error {
	groups, err := detectDuplicates(cmd, snap)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("No duplicates found"))
		return nil
	}

	theme, _ := cmd.Flags().GetString("theme")
	summary, err := tui.RunDuplicateReview(ctx, groups, store, tui.Options{Theme: theme, AltScreen: true})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%d merged, %d dismissed, %d skipped",
		summary.Merged, summary.Dismissed, summary.Skipped)))
	if summary.Remaining > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("%d group(s) left for later", summary.Remaining)))
	}
	return nil
}

func duplicatesDismissCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss KEY...",
		Short: "Mark duplicate groups as not duplicates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				for _, key := range args {
					if err := store.DismissDuplicateGroup(ctx, key); err != nil {
						return fmt.Errorf("failed to dismiss %s: %w", key, err)
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Dismissed %d group(s)", len(args))))
				return nil
			})
		},
	}
}

func duplicatesMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge KEEP REMOVE...",
		Short: "Keep one subscription and delete the others",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				ids, err := resolveIDs(ctx, store, args)
				if err != nil {
					return err
				}
				if err := store.MergeSubscriptions(ctx, ids[0], ids[1:]...); err != nil {
					return fmt.Errorf("failed to merge subscriptions: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Merged %d subscription(s) into %s", len(ids)-1, args[0])))
				return nil
			})
		},
	}
}
