package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/milkledger/internal/config"
	"github.com/mamadbah2/milkledger/internal/domain/models"
)

// Reader exposes rectangular ranges of a spreadsheet; used as an ingestion source.
type Reader interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// Repository is the full Google Sheets adapter: milk rows are read from one
// range and rendered reports are appended to another.
type Repository interface {
	Reader
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
	SaveReport(ctx context.Context, snapshot models.ReportSnapshot) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	reportRange   string
	logger        *zap.Logger
}

const (
	inputRaw         = "RAW"
	inputUserEntered = "USER_ENTERED"
)

var _ Repository = (*GoogleSheetRepository)(nil)

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	return newRepository(ctx, cfg, logger, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
}

func newRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger, opts ...option.ClientOption) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		reportRange:   cfg.ReportRange,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range. Values are
// stored as typed so dates keep their "2023-1-5" form for later reloads.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	return r.appendRows(ctx, sheetRange, [][]interface{}{values}, inputRaw)
}

// SaveReport appends one row per report line to the report range:
// id, created_at, kind, label, key, weight, share.
func (r *GoogleSheetRepository) SaveReport(ctx context.Context, snapshot models.ReportSnapshot) error {
	rows := ReportRows(snapshot)
	if len(rows) == 0 {
		return nil
	}
	if err := r.appendRows(ctx, r.reportRange, rows, inputUserEntered); err != nil {
		return fmt.Errorf("save %s report %q: %w", snapshot.Kind, snapshot.Label, err)
	}
	return nil
}

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

func (r *GoogleSheetRepository) appendRows(ctx context.Context, sheetRange string, rows [][]interface{}, inputOption string) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: rows}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption(inputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append rows into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("rows appended to sheet", zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}

// ReportRows flattens a snapshot into sheet rows, one per report line:
// id, created, kind, label, key, weight, share.
func ReportRows(snapshot models.ReportSnapshot) [][]interface{} {
	created := snapshot.CreatedAt.UTC().Format(time.RFC3339)
	rows := make([][]interface{}, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		rows = append(rows, []interface{}{snapshot.ID, created, string(snapshot.Kind), snapshot.Label, line.Key, line.Weight, line.Share})
	}
	return rows
}
