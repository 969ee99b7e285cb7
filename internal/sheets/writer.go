package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/trash-scanner/internal/model"
)

// feedbackColumns is the width of the report table.
const feedbackColumns = 7

// Writer writes feedback reports to a Google spreadsheet.
type Writer struct {
	service  *sheets.Service
	logger   *slog.Logger
	progress func(written, total int)
	now      func() time.Time
	config   Config
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithProgress is called after every batch with the rows written so far.
func WithProgress(fn func(written, total int)) WriterOption {
	return func(w *Writer) { w.progress = fn }
}

// NewWriter creates a new Google Sheets feedback writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger, opts ...WriterOption) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	w := &Writer{
		config:  config,
		service: service,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Write replaces the sheet contents with a summary and every report.
func (w *Writer) Write(ctx context.Context, feedback []model.Feedback) error {
	w.logger.Info("starting feedback export", "reports", len(feedback))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	if clearErr := w.clearSheet(ctx, spreadsheetID); clearErr != nil {
		return fmt.Errorf("failed to clear sheet: %w", clearErr)
	}

	values := prepareFeedbackData(feedback, w.now())

	if err := w.writeData(ctx, spreadsheetID, values); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		if err := w.applyFormatting(ctx, spreadsheetID, len(values)); err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("feedback export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return nil
}

// createSheetsService creates a Google Sheets API service.
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
		tokenSource = oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet gets an existing spreadsheet or creates a new one.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		_, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{
				Properties: &sheets.SheetProperties{
					Title: "Feedback",
				},
			},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

// clearSheet clears all data from the sheet.
func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// feedbackRows flattens reports, newest first.
func feedbackRows(feedback []model.Feedback) []FeedbackRow {
	rows := make([]FeedbackRow, 0, len(feedback))
	for _, f := range feedback {
		reasons := make([]string, 0, len(f.FeedbackType))
		for _, r := range f.FeedbackType {
			reasons = append(reasons, string(r))
		}
		rows = append(rows, FeedbackRow{
			Timestamp:  f.Timestamp,
			ID:         f.ID,
			WasteType:  f.ReportedItem.WasteType,
			Material:   f.ReportedItem.Material,
			Recyclable: string(f.ReportedItem.Recyclable),
			Reasons:    strings.Join(reasons, ", "),
			Comments:   f.Comments,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.After(rows[j].Timestamp)
	})
	return rows
}

// reasonCounts tallies reasons in display order, skipping unused ones.
func reasonCounts(feedback []model.Feedback) []ReasonCount {
	counts := make(map[model.FeedbackReason]int)
	for _, f := range feedback {
		for _, r := range f.FeedbackType {
			counts[r]++
		}
	}
	var out []ReasonCount
	for _, r := range model.FeedbackReasons() {
		if n := counts[r]; n > 0 {
			out = append(out, ReasonCount{Reason: r, Count: n})
		}
	}
	return out
}

// prepareFeedbackData lays out the summary block followed by the report table.
func prepareFeedbackData(feedback []model.Feedback, now time.Time) [][]any {
	reasons := reasonCounts(feedback)
	rows := feedbackRows(feedback)
	values := make([][]any, 0, 9+len(reasons)+len(rows))

	values = append(values,
		[]any{"Trash Scanner Feedback", now.Format("Jan 2, 2006 15:04")},
		[]any{},
		[]any{"Summary"},
		[]any{"Total Reports", len(feedback)},
		[]any{},
		[]any{"Reason Breakdown"},
	)
	for _, rc := range reasons {
		values = append(values, []any{string(rc.Reason), rc.Count})
	}

	values = append(values,
		[]any{},
		[]any{"Reports"},
		[]any{"Timestamp", "ID", "Waste Type", "Material", "Recyclable", "Reasons", "Comments"},
	)
	for _, r := range rows {
		values = append(values, []any{
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.ID,
			r.WasteType,
			r.Material,
			r.Recyclable,
			r.Reasons,
			r.Comments,
		})
	}

	return values
}

// writeData writes the data to the spreadsheet.
func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	// Write in batches to avoid API limits
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		valueRange := &sheets.ValueRange{
			Values: batch,
		}

		rangeStr := fmt.Sprintf("A%d", i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()

		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
		if w.progress != nil {
			w.progress(end, len(values))
		}
	}

	return nil
}

// applyFormatting applies formatting to the spreadsheet.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, totalRows int) error {
	requests := []*sheets.Request{
		// Title
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   2,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{
							Bold:     true,
							FontSize: 16,
						},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		// Section labels
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    2,
					EndRowIndex:      int64(totalRows),
					StartColumnIndex: 0,
					EndColumnIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{
							Bold: true,
						},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    0,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   feedbackColumns,
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: 0,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	batchUpdate := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, batchUpdate).Context(ctx).Do()
	return err
}
