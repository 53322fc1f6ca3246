package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/subtrack/internal/cli"
	"github.com/Veraticus/subtrack/internal/common"
	"github.com/Veraticus/subtrack/internal/config"
	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/ofx"
	"github.com/Veraticus/subtrack/internal/recurring"
	"github.com/Veraticus/subtrack/internal/service"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Discover subscriptions in bank statements",
	}

	cmd.AddCommand(importOFXCmd())

	return cmd
}

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ofx FILE...",
		Short: "Find recurring charges in OFX/QFX files",
		Long: `Read OFX or QFX statements exported from your bank, find payees that charge
on a regular schedule and optionally add them as subscriptions.

Examples:
  # Show recurring charges
  subtrack import ofx ~/Downloads/checking_2024.qfx

  # Review each new recurring charge and add the ones you want
  subtrack import ofx --add ~/Downloads/*.qfx

  # Add every new recurring charge without asking
  subtrack import ofx --add --yes --category other ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().Bool("add", false, "add recurring charges as subscriptions")
	cmd.Flags().BoolP("yes", "y", false, "with --add, add every untracked charge without asking")
	cmd.Flags().String("category", string(model.CategoryOther), "category for added subscriptions")
	cmd.Flags().Int("min-occurrences", config.DefaultImportMinOccurrences, "charges needed before a payee counts as recurring (default: import.min_occurrences)")

	return cmd
}

// expandFiles resolves glob patterns to files, keeping plain paths as given.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				slog.Warn("No files found matching pattern", "pattern", pattern)
				continue
			}
			matches = []string{pattern}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	if len(files) == 0 {
		return nil, common.NewUserError("no files found to import", common.ErrNotFound)
	}
	return files, nil
}

// readCharges parses every file, skipping unreadable ones, and drops
// charges repeated across overlapping statements.
func readCharges(ctx context.Context, files []string, parser *ofx.Parser, progress io.Writer) ([]model.Charge, error) {
	bar := cli.NewProgressBar(progress, len(files), "Reading statements")
	defer func() { _ = bar.Finish() }()

	var charges []model.Charge
	seen := make(map[string]bool)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		parsed, err := parseFile(ctx, parser, path)
		_ = bar.Add(1)
		if err != nil {
			if errors.Is(err, common.ErrNoCharges) {
				slog.Warn("No statements found in file", "file", filepath.Base(path))
				continue
			}
			common.LogError(err, "Failed to parse OFX file", common.Fields{"file": path})
			continue
		}

		added := 0
		for _, c := range parsed {
			key := chargeKey(c)
			if seen[key] {
				continue
			}
			seen[key] = true
			charges = append(charges, c)
			added++
		}
		common.LogDebug("Processed file", common.Fields{
			"file":          filepath.Base(path),
			"charges_found": len(parsed),
			"added":         added,
			"duplicates":    len(parsed) - added,
		})
	}

	return charges, nil
}

func parseFile(ctx context.Context, parser *ofx.Parser, path string) ([]model.Charge, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(ctx, f)
}

func chargeKey(c model.Charge) string {
	if c.ID != "" {
		return c.AccountID + "|" + c.ID
	}
	return fmt.Sprintf("%s|%s|%s|%.2f", c.AccountID, c.Date.Format(dateLayout), c.Payee, c.Amount)
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	add, _ := cmd.Flags().GetBool("add")
	yes, _ := cmd.Flags().GetBool("yes")

	categoryValue, _ := cmd.Flags().GetString("category")
	category, err := model.ParseCategory(categoryValue)
	if err != nil {
		return err
	}

	opts := recurring.DefaultOptions()
	opts.MinOccurrences = viper.GetInt(config.KeyImportMinOccurrences)
	if cmd.Flags().Changed("min-occurrences") {
		opts.MinOccurrences, _ = cmd.Flags().GetInt("min-occurrences")
	}

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Import", "Subscriptions added so far were kept.")
	ctx := handler.HandleInterrupts(cmd.Context())

	parser := ofx.NewParser(viper.GetString(config.KeyDefaultCurrency))
	charges, err := readCharges(ctx, files, parser, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if len(charges) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No charges found in any file"))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	existing, err := store.ListSubscriptions(ctx, service.SubscriptionFilter{})
	if err != nil {
		return fmt.Errorf("failed to list subscriptions: %w", err)
	}

	candidates := recurring.Detect(charges, existing, opts)
	out := cmd.OutOrStdout()
	if err := renderCandidates(out, candidates, len(charges), len(files)); err != nil {
		return err
	}
	if !add {
		return nil
	}

	var untracked []recurring.Candidate
	for _, c := range candidates {
		if !c.Tracked() {
			untracked = append(untracked, c)
		}
	}

	var added int
	prompter := cli.NewPrompter(os.Stdin, out)
	for i, c := range untracked {
		chosen := category
		if !yes {
			decision, err := prompter.ReviewCandidate(ctx, c, i, len(untracked))
			if err != nil {
				return err
			}
			if decision == cli.DecisionQuit {
				break
			}
			if decision == cli.DecisionSkip {
				continue
			}
			if chosen, err = prompter.ChooseCategory(ctx, category); err != nil {
				return err
			}
		}

		sub := c.Subscription(chosen)
		if err := store.CreateSubscription(ctx, &sub); err != nil {
			return fmt.Errorf("failed to add %s: %w", c.Payee, err)
		}
		added++
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added %s", sub.Name)))
	}

	fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d subscription(s) added", added)))
	return nil
}

func renderCandidates(w io.Writer, candidates []recurring.Candidate, charges, files int) error {
	fmt.Fprintln(w, cli.FormatTitle(cli.FolderIcon, fmt.Sprintf("Recurring charges in %d file(s), %d charges", files, charges)))
	if len(candidates) == 0 {
		fmt.Fprintln(w, cli.FormatInfo("No recurring charges found"))
		return nil
	}

	table := cli.NewTable(w, "Payee", "Amount", "Every", "Charges", "Last", "Next", "Tracked as")
	for _, c := range candidates {
		tracked := ""
		if c.Tracked() {
			tracked = c.TrackedAs.Name
		}
		table.Row(
			c.Payee,
			cli.FormatMoney(c.Amount, c.Currency),
			string(c.Frequency),
			fmt.Sprint(len(c.Charges)),
			cli.FormatDate(c.LastCharge),
			cli.FormatDate(c.NextBillingDate),
			tracked,
		)
	}
	return table.Flush()
}
