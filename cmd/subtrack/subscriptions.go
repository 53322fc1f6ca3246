package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/subtrack/internal/billing"
	"github.com/Veraticus/subtrack/internal/cli"
	"github.com/Veraticus/subtrack/internal/config"
	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/service"
)

// shortIDLength is how much of an id the tables show.
const shortIDLength = 8

func addSubscriptionFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Float64("amount", 0, "amount charged per billing period")
	flags.String("currency", "", "ISO 4217 currency code (default: defaults.currency)")
	flags.String("category", string(model.CategoryOther), "category: "+joinValues(model.Categories))
	flags.String("frequency", string(model.FrequencyMonthly), "billing frequency: "+joinValues(model.Frequencies))
	flags.String("next", "", "next billing date (YYYY-MM-DD, default: one period from today)")
	flags.String("last", "", "last billing date (YYYY-MM-DD)")
	flags.String("website", "", "service website, used to spot duplicates")
	flags.String("description", "", "free-form notes")
	flags.String("status", string(model.StatusActive), "status: active, paused or cancelled")
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// applySubscriptionFlags copies every flag that was set, or every flag when
// all is true, onto sub.
func applySubscriptionFlags(cmd *cobra.Command, sub *model.Subscription, today time.Time, all bool) error {
	flags := cmd.Flags()
	use := func(name string) bool { return all || flags.Changed(name) }

	if use("amount") {
		sub.Amount, _ = flags.GetFloat64("amount")
	}
	if use("currency") {
		currency, _ := flags.GetString("currency")
		if currency == "" {
			currency = viper.GetString(config.KeyDefaultCurrency)
		}
		sub.Currency = currency
	}
	if use("category") {
		value, _ := flags.GetString("category")
		category, err := model.ParseCategory(value)
		if err != nil {
			return err
		}
		sub.Category = category
	}
	if use("frequency") {
		value, _ := flags.GetString("frequency")
		freq, err := model.ParseFrequency(value)
		if err != nil {
			return err
		}
		sub.BillingFrequency = freq
	}
	if use("status") {
		value, _ := flags.GetString("status")
		status, err := model.ParseStatus(value)
		if err != nil {
			return err
		}
		sub.Status = status
	}
	if use("website") {
		sub.Website, _ = flags.GetString("website")
	}
	if use("description") {
		sub.Description, _ = flags.GetString("description")
	}
	if use("last") {
		value, _ := flags.GetString("last")
		if value != "" {
			last, err := parseDate(value)
			if err != nil {
				return err
			}
			sub.LastBillingDate = &last
		}
	}
	if use("next") {
		value, _ := flags.GetString("next")
		if value == "" {
			sub.NextBillingDate = billing.AdvanceDate(today, sub.BillingFrequency)
		} else {
			next, err := parseDate(value)
			if err != nil {
				return err
			}
			sub.NextBillingDate = next
		}
	}

	return nil
}

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a subscription",
		Long: `Add a subscription to track.

Examples:
  subtrack add Netflix --amount 15.49 --category entertainment --next 2024-07-01
  subtrack add "Adobe CC" --amount 599.88 --frequency yearly --website adobe.com`,
		Args: cobra.ExactArgs(1),
		RunE: runAdd,
	}

	addSubscriptionFlags(cmd)
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	sub := model.Subscription{Name: args[0]}
	if err := applySubscriptionFlags(cmd, &sub, currentDay(time.Now()), true); err != nil {
		return err
	}

	return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
		if err := store.CreateSubscription(ctx, &sub); err != nil {
			return fmt.Errorf("failed to add subscription: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s (%s), next charge %s",
			sub.Name, cli.FormatMoney(sub.Amount, sub.Currency), cli.FormatDate(sub.NextBillingDate))))
		fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("id "+sub.ID))
		return nil
	})
}

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit ID|NAME",
		Short: "Change a subscription",
		Long: `Change the fields of a subscription. Only the flags you pass are updated.
Changing the amount records a price change.`,
		Args: cobra.ExactArgs(1),
		RunE: runEdit,
	}

	addSubscriptionFlags(cmd)
	cmd.Flags().String("name", "", "new name")

	return cmd
}

func runEdit(cmd *cobra.Command, args []string) error {
	return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
		sub, err := resolveSubscription(ctx, store, args[0])
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("name") {
			sub.Name, _ = cmd.Flags().GetString("name")
		}
		if err := applySubscriptionFlags(cmd, sub, currentDay(time.Now()), false); err != nil {
			return err
		}

		if err := store.UpdateSubscription(ctx, sub); err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Updated "+sub.Name))
		return nil
	})
}

func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete ID|NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a subscription",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")

			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				sub, err := resolveSubscription(ctx, store, args[0])
				if err != nil {
					return err
				}

				if !yes {
					prompter := cli.NewPrompter(os.Stdin, cmd.OutOrStdout())
					ok, err := prompter.Confirm(ctx, fmt.Sprintf("Delete %s?", sub.Name), false)
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted"))
						return nil
					}
				}

				if err := store.DeleteSubscription(ctx, sub.ID); err != nil {
					return fmt.Errorf("failed to delete subscription: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted "+sub.Name))
				return nil
			})
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "delete without asking")

	return cmd
}

func chargedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "charged ID|NAME...",
		Short: "Record that subscriptions were charged",
		Long: `Record a charge: the next billing date becomes the last billing date and
the next one moves forward by one billing period.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				ids, err := resolveIDs(ctx, store, args)
				if err != nil {
					return err
				}

				for _, id := range ids {
					sub, err := store.MarkCharged(ctx, id)
					if err != nil {
						return fmt.Errorf("failed to record charge: %w", err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s charged, next charge %s",
						sub.Name, cli.FormatDate(sub.NextBillingDate))))
				}
				return nil
			})
		},
	}
}

func statusCmd(use string, status model.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID|NAME...",
		Short: fmt.Sprintf("Mark subscriptions as %s", status),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				ids, err := resolveIDs(ctx, store, args)
				if err != nil {
					return err
				}
				if err := store.SetStatus(ctx, status, ids...); err != nil {
					return fmt.Errorf("failed to update status: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%d subscription(s) now %s", len(ids), status)))
				return nil
			})
		},
	}
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List subscriptions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter service.SubscriptionFilter
			if value, _ := cmd.Flags().GetString("status"); value != "" {
				status, err := model.ParseStatus(value)
				if err != nil {
					return err
				}
				filter.Status = status
			}
			if value, _ := cmd.Flags().GetString("category"); value != "" {
				category, err := model.ParseCategory(value)
				if err != nil {
					return err
				}
				filter.Category = category
			}

			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				subs, err := store.ListSubscriptions(ctx, filter)
				if err != nil {
					return fmt.Errorf("failed to list subscriptions: %w", err)
				}
				return renderSubscriptions(cmd.OutOrStdout(), subs)
			})
		},
	}

	cmd.Flags().String("status", "", "only show this status")
	cmd.Flags().String("category", "", "only show this category")

	return cmd
}

func renderSubscriptions(w io.Writer, subs []model.Subscription) error {
	if len(subs) == 0 {
		fmt.Fprintln(w, cli.FormatInfo("No subscriptions yet. Add one with: subtrack add NAME --amount 9.99"))
		return nil
	}

	fmt.Fprintln(w, cli.FormatTitle("", "Subscriptions"))

	table := cli.NewTable(w, "ID", "Name", "Amount", "Every", "Monthly", "Next", "Status", "Category")
	for _, s := range subs {
		table.Row(
			shortID(s.ID),
			s.Name,
			cli.FormatMoney(s.Amount, s.Currency),
			string(s.BillingFrequency),
			cli.FormatMoney(billing.MonthlyEquivalent(s.Amount, s.BillingFrequency), s.Currency),
			cli.FormatDate(s.NextBillingDate),
			cli.FormatStatus(s.Status),
			string(s.Category),
		)
	}
	if err := table.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d subscriptions, %s active per month\n", len(subs),
		cli.BoldStyle.Render(fmt.Sprintf("%.2f", billing.ActiveMonthlySpend(subs))))
	return nil
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}
