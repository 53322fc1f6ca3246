package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/subtrack/internal/billing"
	"github.com/Veraticus/subtrack/internal/cli"
	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/service"
)

func budgetsCmd() *cobra.Command {
	list := func(_ context.Context, cmd *cobra.Command, _ service.Storage, snap *service.Snapshot) error {
		statuses := billing.EvaluateBudgets(snap.Budgets, snap.Subscriptions)
		if len(statuses) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No budgets yet. Add one with: subtrack budgets add NAME AMOUNT"))
			return nil
		}
		return renderBudgetStatuses(cmd.OutOrStdout(), statuses)
	}

	cmd := reportCmd(&cobra.Command{
		Use:     "budgets",
		Aliases: []string{"budget"},
		Short:   "Manage spending limits",
	}, list)

	cmd.AddCommand(reportCmd(&cobra.Command{
		Use:   "list",
		Short: "Show budgets and how much of each is used",
	}, list))
	cmd.AddCommand(budgetsAddCmd())
	cmd.AddCommand(budgetsDeleteCmd())

	return cmd
}

func budgetsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add NAME AMOUNT",
		Short: "Add a budget",
		Long: `Add a spending limit over the active subscriptions, optionally restricted
to one category. Yearly budgets are compared against a twelfth of the limit.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			budget := model.Budget{Name: args[0], Amount: amount}

			value, _ := cmd.Flags().GetString("period")
			if budget.Period, err = model.ParseBudgetPeriod(value); err != nil {
				return err
			}
			if value, _ := cmd.Flags().GetString("category"); value != "" {
				if budget.Category, err = model.ParseCategory(value); err != nil {
					return err
				}
			}

			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				if err := store.CreateBudget(ctx, &budget); err != nil {
					return fmt.Errorf("failed to add budget: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added budget %s (%.2f %s)", budget.Name, budget.Amount, budget.Period)))
				return nil
			})
		},
	}

	cmd.Flags().String("period", string(model.BudgetMonthly), "monthly or yearly")
	cmd.Flags().String("category", "", "only count this category")

	return cmd
}

func budgetsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a budget",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				id, err := resolveBudgetID(ctx, store, args[0])
				if err != nil {
					return err
				}
				if err := store.DeleteBudget(ctx, id); err != nil {
					return fmt.Errorf("failed to delete budget: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted budget "+args[0]))
				return nil
			})
		},
	}
}

// resolveBudgetID accepts a budget id, id prefix or exact name.
func resolveBudgetID(ctx context.Context, store service.Storage, ref string) (string, error) {
	budgets, err := store.ListBudgets(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list budgets: %w", err)
	}
	for _, b := range budgets {
		if b.ID == ref || b.Name == ref {
			return b.ID, nil
		}
	}
	for _, b := range budgets {
		if len(ref) >= minIDPrefix && len(b.ID) >= len(ref) && b.ID[:len(ref)] == ref {
			return b.ID, nil
		}
	}
	// Let storage report the missing id.
	return ref, nil
}

func renderBudgetStatuses(w io.Writer, statuses []model.BudgetStatus) error {
	table := cli.NewTable(w, "ID", "Budget", "Scope", "Spending", "Limit", "Used", "State")
	for _, s := range statuses {
		scope := "all"
		if s.Budget.Category != "" {
			scope = string(s.Budget.Category)
		}

		state := cli.SuccessStyle.Render("ok")
		switch {
		case s.OverBudget:
			state = cli.ErrorStyle.Render("over")
		case s.NearLimit:
			state = cli.WarningStyle.Render("near limit")
		}

		table.Row(
			shortID(s.Budget.ID),
			s.Budget.Name,
			scope,
			fmt.Sprintf("%.2f", s.Spending),
			fmt.Sprintf("%.2f", s.MonthlyLimit),
			cli.FormatPercent(s.Percentage),
			state,
		)
	}
	return table.Flush()
}
