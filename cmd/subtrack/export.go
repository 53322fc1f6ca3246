package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/subtrack/internal/cli"
	"github.com/Veraticus/subtrack/internal/common"
	"github.com/Veraticus/subtrack/internal/config"
	"github.com/Veraticus/subtrack/internal/service"
	"github.com/Veraticus/subtrack/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a subscription report",
	}

	cmd.AddCommand(reportCmd(&cobra.Command{
		Use:   "sheets",
		Short: "Write the report to a Google Sheets spreadsheet",
		Long: `Write a subscription report (summary, category breakdown, budgets,
upcoming charges and every subscription) to Google Sheets.

Authenticate first with "subtrack auth sheets", or configure a service
account with sheets.service_account_path.`,
	}, runExportSheets))

	jsonCmd := reportCmd(&cobra.Command{
		Use:   "json",
		Short: "Write the report as JSON",
	}, runExportJSON)
	jsonCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.AddCommand(jsonCmd)

	return cmd
}

func runExportSheets(ctx context.Context, cmd *cobra.Command, _ service.Storage, snap *service.Snapshot) error {
	cfg, err := config.LoadSheetsConfig()
	if err != nil {
		return common.NewUserError("Google Sheets is not configured, run: subtrack auth sheets", err)
	}

	writer, err := sheets.NewWriter(ctx, *cfg, slog.Default())
	if err != nil {
		return err
	}

	return exportReport(ctx, cmd.OutOrStdout(), writer, snap)
}

// exportReport builds the report from snap and hands it to writer.
func exportReport(ctx context.Context, out io.Writer, writer service.ReportWriter, snap *service.Snapshot) error {
	report := buildReport(snap, viper.GetInt(config.KeyUpcomingDays), time.Now())
	if err := writer.Write(ctx, report); err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Exported %d subscriptions", len(report.Subscriptions))))
	return nil
}

func runExportJSON(ctx context.Context, cmd *cobra.Command, _ service.Storage, snap *service.Snapshot) error {
	path, _ := cmd.Flags().GetString("output")

	out := cmd.OutOrStdout()
	if path != "" {
		f, err := os.Create(config.ExpandPath(path)) // #nosec G304
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	return exportReport(ctx, cmd.ErrOrStderr(), jsonWriter{w: out}, snap)
}

// jsonWriter is a ReportWriter producing indented JSON.
type jsonWriter struct {
	w io.Writer
}

func (j jsonWriter) Write(_ context.Context, report *service.Report) error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("%w: %w", common.ErrExportFailed, err)
	}
	return nil
}
