package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/Veraticus/subtrack/internal/common"
	"github.com/Veraticus/subtrack/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ReportSheetTitle is the title of the tab the report is written to.
const ReportSheetTitle = "Subscriptions"

const reportColumns = 8

// Writer implements service.ReportWriter for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}, nil
}

// Write implements service.ReportWriter.
func (w *Writer) Write(ctx context.Context, report *service.Report) error {
	w.logger.Info("starting report export",
		"subscriptions", len(report.Subscriptions),
		"budgets", len(report.Budgets))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrExportFailed, err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	if err := common.WithRetry(ctx, func() error {
		return classifyAPIError(w.clearSheet(ctx, spreadsheetID))
	}, retryOpts); err != nil {
		return fmt.Errorf("%w: clear sheet: %w", common.ErrExportFailed, err)
	}

	values := prepareReportData(report)

	if err := common.WithRetry(ctx, func() error {
		return classifyAPIError(w.writeData(ctx, spreadsheetID, values))
	}, retryOpts); err != nil {
		return fmt.Errorf("%w: write data: %w", common.ErrExportFailed, err)
	}

	if w.config.EnableFormatting {
		if err := common.WithRetry(ctx, func() error {
			return classifyAPIError(w.applyFormatting(ctx, spreadsheetID, len(values)))
		}, retryOpts); err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("report export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return nil
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := OAuth2Config{ClientID: config.ClientID, ClientSecret: config.ClientSecret}.oauthConfig()
		tokenSource = oauthConfig.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		if _, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	created, err := w.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: ReportSheetTitle}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

// classifyAPIError maps Sheets API failures onto the retry policy: 429 is a
// rate limit, other client errors will not succeed on a second attempt.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code == http.StatusRequestTimeout:
		return err
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return common.Permanent(err)
	}
	return err
}

func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// prepareReportData lays the report out as rows: a title, the spend
// summary, the category breakdown, budget status, upcoming charges and
// finally one row per subscription.
func prepareReportData(report *service.Report) [][]any {
	values := make([][]any, 0, 16+len(report.Categories)+len(report.Budgets)+len(report.Upcoming)+len(report.Subscriptions))

	values = append(values,
		[]any{"Subscription Report", report.GeneratedAt.Format("Jan 2, 2006")},
		[]any{},
		[]any{"Summary"},
		[]any{"Active Monthly Spend", round2(report.ActiveMonthly)},
		[]any{"Active Yearly Spend", round2(report.ActiveMonthly * 12)},
		[]any{"Total Monthly (all statuses)", round2(report.TotalMonthly)},
		[]any{"Subscriptions", len(report.Subscriptions)},
		[]any{},
		[]any{"Category Breakdown"},
		[]any{"Category", "Count", "Monthly"},
	)

	categories := make([]service.CategoryLine, len(report.Categories))
	copy(categories, report.Categories)
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Monthly > categories[j].Monthly
	})
	for _, c := range categories {
		values = append(values, []any{string(c.Category), c.Count, round2(c.Monthly)})
	}

	if len(report.Budgets) > 0 {
		values = append(values,
			[]any{},
			[]any{"Budgets"},
			[]any{"Budget", "Scope", "Monthly", "Limit", "Used %", "Status"},
		)
		for _, b := range report.Budgets {
			scope := "all"
			if b.Budget.Category != "" {
				scope = string(b.Budget.Category)
			}
			values = append(values, []any{
				b.Budget.Name,
				scope,
				round2(b.Spending),
				round2(b.MonthlyLimit),
				fmt.Sprintf("%.0f%%", b.Percentage),
				budgetState(b.OverBudget, b.NearLimit),
			})
		}
	}

	if len(report.Upcoming) > 0 {
		values = append(values,
			[]any{},
			[]any{"Upcoming Charges"},
			[]any{"Date", "Name", "Amount", "Currency"},
		)
		for _, s := range report.Upcoming {
			values = append(values, []any{
				s.NextBillingDate.Format("2006-01-02"),
				s.Name,
				s.Amount,
				s.Currency,
			})
		}
	}

	values = append(values,
		[]any{},
		[]any{"Subscriptions"},
		[]any{"Name", "Category", "Amount", "Currency", "Frequency", "Status", "Next Billing", "Website"},
	)

	subs := report.Subscriptions
	sorted := make([]int, len(subs))
	for i := range sorted {
		sorted[i] = i
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return subs[sorted[i]].NextBillingDate.Before(subs[sorted[j]].NextBillingDate)
	})
	for _, i := range sorted {
		s := subs[i]
		values = append(values, []any{
			s.Name,
			string(s.Category),
			s.Amount,
			s.Currency,
			string(s.BillingFrequency),
			string(s.Status),
			s.NextBillingDate.Format("2006-01-02"),
			s.Website,
		})
	}

	return values
}

func budgetState(over, near bool) string {
	switch {
	case over:
		return "over"
	case near:
		return "near limit"
	default:
		return "ok"
	}
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))
		batch := values[i:end]

		rangeStr := fmt.Sprintf("%s!A%d", ReportSheetTitle, i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{Values: batch}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, totalRows int) error {
	sheetID, err := w.reportSheetID(ctx, spreadsheetID)
	if err != nil {
		return err
	}

	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{SheetId: sheetID, StartRowIndex: 0, EndRowIndex: 1, StartColumnIndex: 0, EndColumnIndex: 2},
				Cell: &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{
					TextFormat: &sheets.TextFormat{Bold: true, FontSize: 16},
				}},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{SheetId: sheetID, StartRowIndex: 2, EndRowIndex: int64(totalRows), StartColumnIndex: 0, EndColumnIndex: 1},
				Cell: &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{
					TextFormat: &sheets.TextFormat{Bold: true},
				}},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{SheetId: sheetID, Dimension: "COLUMNS", StartIndex: 0, EndIndex: reportColumns},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err = w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	return err
}

func (w *Writer) reportSheetID(ctx context.Context, spreadsheetID string) (int64, error) {
	spreadsheet, err := w.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil && s.Properties.Title == ReportSheetTitle {
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet %s", ReportSheetTitle, spreadsheetID)
}
