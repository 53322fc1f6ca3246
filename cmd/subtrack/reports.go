package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/subtrack/internal/billing"
	"github.com/Veraticus/subtrack/internal/cli"
	"github.com/Veraticus/subtrack/internal/config"
	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/service"
)

// reportFunc renders or acts on a loaded snapshot.
type reportFunc func(ctx context.Context, cmd *cobra.Command, store service.Storage, snap *service.Snapshot) error

// reportCmd wires the --today flag and snapshot loading shared by the
// report commands.
func reportCmd(cmd *cobra.Command, run reportFunc) *cobra.Command {
	addTodayFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		today, err := todayFromFlags(cmd)
		if err != nil {
			return err
		}

		return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
			snap, err := loadSnapshot(ctx, store, today)
			if err != nil {
				return err
			}
			return run(ctx, cmd, store, snap)
		})
	}
	return cmd
}

func upcomingCmd() *cobra.Command {
	cmd := reportCmd(&cobra.Command{
		Use:   "upcoming",
		Short: "Show charges due in the next few days",
	}, func(_ context.Context, cmd *cobra.Command, _ service.Storage, snap *service.Snapshot) error {
		days := viper.GetInt(config.KeyUpcomingDays)
		if cmd.Flags().Changed("days") {
			days, _ = cmd.Flags().GetInt("days")
		}
		if days < 0 {
			return fmt.Errorf("days must not be negative")
		}
		return renderUpcoming(cmd.OutOrStdout(), snap.Subscriptions, snap.Today, days)
	})

	cmd.Flags().Int("days", config.DefaultUpcomingDays, "window size in days")

	return cmd
}

func renderUpcoming(w io.Writer, subs []model.Subscription, today time.Time, days int) error {
	upcoming := billing.UpcomingWithinDays(subs, today, days)

	fmt.Fprintln(w, cli.FormatTitle(cli.CalendarIcon, fmt.Sprintf("Due in the next %d days", days)))
	if len(upcoming) == 0 {
		fmt.Fprintln(w, cli.FormatInfo("Nothing due"))
		return nil
	}

	table := cli.NewTable(w, "Date", "When", "Name", "Amount", "Status")
	totals := make(map[string]float64)
	var currencies []string
	for _, s := range upcoming {
		table.Row(
			cli.FormatDate(s.NextBillingDate),
			cli.FormatRelativeDays(billing.DaysBetween(s.NextBillingDate, today)),
			s.Name,
			cli.FormatMoney(s.Amount, s.Currency),
			cli.FormatStatus(s.Status),
		)
		if s.IsActive() {
			if _, ok := totals[s.Currency]; !ok {
				currencies = append(currencies, s.Currency)
			}
			totals[s.Currency] += s.Amount
		}
	}
	if err := table.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	for _, c := range currencies {
		fmt.Fprintf(w, "%s %s\n", cli.MoneyIcon, cli.BoldStyle.Render("Total active: "+cli.FormatMoney(totals[c], c)))
	}
	return nil
}

func calendarCmd() *cobra.Command {
	cmd := reportCmd(&cobra.Command{
		Use:   "calendar",
		Short: "Show projected charges for a month",
		Long: `Project every charge of the active subscriptions over a calendar month,
repeating weekly and monthly subscriptions as often as they bill.`,
	}, func(_ context.Context, cmd *cobra.Command, _ service.Storage, snap *service.Snapshot) error {
		from := time.Date(snap.Today.Year(), snap.Today.Month(), 1, 0, 0, 0, 0, time.UTC)
		if value, _ := cmd.Flags().GetString("month"); value != "" {
			month, err := time.ParseInLocation("2006-01", value, time.UTC)
			if err != nil {
				return fmt.Errorf("invalid month %q, expected YYYY-MM", value)
			}
			from = month
		}
		months, _ := cmd.Flags().GetInt("months")
		if months < 1 {
			months = 1
		}
		to := from.AddDate(0, months, -1)
		return renderCalendar(cmd.OutOrStdout(), billing.ChargesBetween(snap.Subscriptions, from, to), from, to)
	})

	cmd.Flags().String("month", "", "first month to show (YYYY-MM, default: current month)")
	cmd.Flags().Int("months", 1, "number of months to show")

	return cmd
}

func renderCalendar(w io.Writer, charges []billing.ProjectedCharge, from, to time.Time) error {
	fmt.Fprintln(w, cli.FormatTitle(cli.CalendarIcon, fmt.Sprintf("Charges %s to %s", cli.FormatDate(from), cli.FormatDate(to))))
	if len(charges) == 0 {
		fmt.Fprintln(w, cli.FormatInfo("No charges projected"))
		return nil
	}

	table := cli.NewTable(w, "Date", "Name", "Amount", "Category")
	var last time.Time
	for _, c := range charges {
		date := ""
		if !billing.SameDay(c.Date, last) {
			date = c.Date.Format("Mon Jan 2")
			last = c.Date
		}
		table.Row(date, c.Subscription.Name, cli.FormatMoney(c.Subscription.Amount, c.Subscription.Currency), string(c.Subscription.Category))
	}
	if err := table.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d charges, %s total\n", len(charges), cli.BoldStyle.Render(fmt.Sprintf("%.2f", billing.ProjectedTotal(charges))))
	return nil
}

func spendCmd() *cobra.Command {
	return reportCmd(&cobra.Command{
		Use:     "spend",
		Aliases: []string{"summary"},
		Short:   "Summarize spending, budgets and savings ideas",
	}, func(_ context.Context, cmd *cobra.Command, _ service.Storage, snap *service.Snapshot) error {
		return renderSpend(cmd.OutOrStdout(), snap)
	})
}

func renderSpend(w io.Writer, snap *service.Snapshot) error {
	subs := snap.Subscriptions
	active := billing.ActiveMonthlySpend(subs)

	fmt.Fprintln(w, cli.FormatTitle(cli.ChartIcon, "Spending"))
	fmt.Fprintf(w, "Active monthly:   %s\n", cli.BoldStyle.Render(fmt.Sprintf("%.2f", active)))
	fmt.Fprintf(w, "Active yearly:    %.2f\n", active*12)
	fmt.Fprintf(w, "All statuses:     %.2f per month\n", billing.AggregateMonthlySpend(subs))

	yearAhead := billing.ChargesBetween(subs, snap.Today, snap.Today.AddDate(1, 0, -1))
	fmt.Fprintf(w, "Next 12 months:   %.2f over %d charges\n", billing.ProjectedTotal(yearAhead), len(yearAhead))

	if top, ok := billing.MostExpensive(billing.FilterActive(subs)); ok {
		fmt.Fprintf(w, "Most expensive:   %s (%s per month)\n", top.Name,
			cli.FormatMoney(billing.MonthlyEquivalent(top.Amount, top.BillingFrequency), top.Currency))
	}

	if byCategory := billing.SpendByCategory(billing.FilterActive(subs)); len(byCategory) > 0 {
		fmt.Fprintln(w)
		table := cli.NewTable(w, "Category", "Count", "Monthly", "Share")
		for _, cs := range byCategory {
			share := 0.0
			if active > 0 {
				share = cs.Monthly / active * 100
			}
			table.Row(string(cs.Category), fmt.Sprint(cs.Count), fmt.Sprintf("%.2f", cs.Monthly), cli.FormatPercent(share))
		}
		if err := table.Flush(); err != nil {
			return err
		}
	}

	if statuses := billing.EvaluateBudgets(snap.Budgets, subs); len(statuses) > 0 {
		fmt.Fprintln(w)
		if err := renderBudgetStatuses(w, statuses); err != nil {
			return err
		}
	}

	if suggestions := billing.SavingsSuggestions(billing.FilterActive(subs)); len(suggestions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, cli.BoldStyle.Render(cli.TipIcon+" Savings ideas"))
		for _, s := range suggestions {
			fmt.Fprintf(w, "  %s (save about %.0f per year)\n", s.Message, s.AnnualSavings)
		}
	}

	return nil
}
