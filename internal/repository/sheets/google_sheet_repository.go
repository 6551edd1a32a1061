package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/herdboard/internal/config"
)

// Repository defines the operations supported by the Google Sheets export sink.
type Repository interface {
	WriteRows(ctx context.Context, rows [][]string) error
	ReadRange(ctx context.Context) ([][]interface{}, error)
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheetRange    string
	logger        *zap.Logger
}

var _ Repository = (*GoogleSheetRepository)(nil)

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	return newRepository(ctx, cfg.SpreadsheetID, cfg.Range, logger,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
}

func newRepository(ctx context.Context, spreadsheetID, sheetRange string, logger *zap.Logger, opts ...option.ClientOption) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	service, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetRange:    sheetRange,
		logger:        logger,
	}, nil
}

// WriteRows replaces the content of the export sheet with rows, starting at
// the configured range.
func (r *GoogleSheetRepository) WriteRows(ctx context.Context, rows [][]string) error {
	sheet := sheetName(r.sheetRange)
	if _, err := r.service.Spreadsheets.Values.Clear(r.spreadsheetID, sheet, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheet, err)
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}
	payload := &sheetsapi.ValueRange{Values: values}

	resp, err := r.service.Spreadsheets.Values.Update(r.spreadsheetID, r.sheetRange, payload).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write rows into range %s: %w", r.sheetRange, err)
	}

	r.logger.Info("export written to sheet",
		zap.String("range", r.sheetRange),
		zap.Int64("rows", resp.UpdatedRows),
	)
	return nil
}

// ReadRange fetches the export range back from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context) ([][]interface{}, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetName(r.sheetRange)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", r.sheetRange, err)
	}

	return resp.Values, nil
}

// sheetName strips the cell reference from an A1 range ("Export!A1" -> "Export").
func sheetName(a1 string) string {
	if i := strings.IndexByte(a1, '!'); i >= 0 {
		return a1[:i]
	}
	return a1
}
