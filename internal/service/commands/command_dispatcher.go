package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/milkledger/internal/domain/models"
	"github.com/mamadbah2/milkledger/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const helpText = `Milk ledger commands:
/add <farm> <date> <weight>
/remove <farm> <date>
/farm <farm> <year>
/annual <year>
/monthly <month> <year>
/range <start> <end>
/summary <farm> <year> <min|max|avg>
/farms
/years`

// Ledger is the part of the farm registry the dispatcher mutates and lists.
type Ledger interface {
	AddMilk(farmID string, date models.MilkDate, weight int) error
	RemoveMilk(farmID string, date models.MilkDate) error
	FarmIDs() []string
	Years() []string
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	FarmReport(farmID, year string) (models.MonthBreakdown, error)
	AnnualReport(year string) (models.FarmShares, error)
	MonthlyReport(month, year string) (models.FarmShares, error)
	DateRangeReport(start, end string) (models.FarmShares, error)
	CheckRange(start, end string) error
	RenderMonths(report models.MonthBreakdown) string
	RenderShares(report models.FarmShares) string
	RenderSummary(summary models.Summary) string
}

// RowWriter mirrors accepted /add entries to an external sheet.
type RowWriter interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
}

// Dispatcher executes parsed commands and returns the reply text.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	ledger     Ledger
	reporting  ReportingAdapter
	rows       RowWriter
	sheetRange string
	logger     *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(ledger Ledger, reporting ReportingAdapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:    ledger,
		reporting: reporting,
		logger:    logger,
	}
}

// WithRowWriter appends every accepted /add entry to sheetRange.
func (s *Service) WithRowWriter(rows RowWriter, sheetRange string) *Service {
	s.rows = rows
	s.sheetRange = sheetRange
	return s
}

// HandleCommand runs the command against the ledger or the report engine.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandAdd:
		return s.handleAdd(ctx, cmd)
	case models.CommandRemove:
		return s.handleRemove(cmd)
	case models.CommandFarm:
		if len(cmd.Args) != 2 {
			return "", fmt.Errorf("%w: usage /farm <farm> <year>", ErrInvalidArguments)
		}
		report, err := s.reporting.FarmReport(cmd.Args[0], cmd.Args[1])
		if err != nil {
			return "", err
		}
		return s.reporting.RenderMonths(report), nil
	case models.CommandAnnual:
		if len(cmd.Args) != 1 {
			return "", fmt.Errorf("%w: usage /annual <year>", ErrInvalidArguments)
		}
		report, err := s.reporting.AnnualReport(cmd.Args[0])
		if err != nil {
			return "", err
		}
		return s.reporting.RenderShares(report), nil
	case models.CommandMonthly:
		if len(cmd.Args) != 2 {
			return "", fmt.Errorf("%w: usage /monthly <month> <year>", ErrInvalidArguments)
		}
		report, err := s.reporting.MonthlyReport(cmd.Args[0], cmd.Args[1])
		if err != nil {
			return "", err
		}
		return s.reporting.RenderShares(report), nil
	case models.CommandRange:
		if len(cmd.Args) != 2 {
			return "", fmt.Errorf("%w: usage /range <start> <end>", ErrInvalidArguments)
		}
		if err := s.reporting.CheckRange(cmd.Args[0], cmd.Args[1]); err != nil {
			return "", err
		}
		report, err := s.reporting.DateRangeReport(cmd.Args[0], cmd.Args[1])
		if err != nil {
			return "", err
		}
		return s.reporting.RenderShares(report), nil
	case models.CommandSummary:
		return s.handleSummary(cmd)
	case models.CommandFarms:
		return listReply("Farms", "No farms loaded.", s.ledger.FarmIDs()), nil
	case models.CommandYears:
		return listReply("Years", "No milk data loaded.", s.ledger.Years()), nil
	case models.CommandHelp:
		return helpText, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

// ReplyForError turns a command failure into a message for the sender.
func ReplyForError(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedCommand):
		return "Unknown command.\n" + helpText
	case errors.Is(err, ErrInvalidArguments):
		return fmt.Sprintf("Invalid arguments (%v).", err)
	case errors.Is(err, models.ErrFarmNotFound):
		return "Farm not found. Send /farms to list known farms."
	case errors.Is(err, models.ErrMissingData):
		return "No entry exists for that farm and date."
	case errors.Is(err, models.ErrNegativeWeight):
		return "Milk weight cannot be negative."
	case errors.Is(err, models.ErrStartDateOutOfRange):
		return "Start date is outside the loaded data."
	case errors.Is(err, models.ErrEndDateOutOfRange):
		return "End date is outside the loaded data."
	case errors.Is(err, models.ErrInvalidDate), errors.Is(err, reporting.ErrUnknownSummary):
		return fmt.Sprintf("Invalid input (%v).", err)
	default:
		return "Something went wrong while processing your command."
	}
}

func (s *Service) handleAdd(ctx context.Context, cmd models.Command) (string, error) {
	if len(cmd.Args) != 3 {
		return "", fmt.Errorf("%w: usage /add <farm> <date> <weight>", ErrInvalidArguments)
	}

	farmID := cmd.Args[0]
	date, err := models.ParseMilkDate(cmd.Args[1])
	if err != nil {
		return "", err
	}
	weight, err := strconv.Atoi(cmd.Args[2])
	if err != nil {
		return "", fmt.Errorf("%w: weight %q is not an integer", ErrInvalidArguments, cmd.Args[2])
	}

	if err := s.ledger.AddMilk(farmID, date, weight); err != nil {
		return "", err
	}

	message := fmt.Sprintf("Recorded %d lbs for %s on %s.", weight, farmID, date)
	if s.rows != nil {
		values := []interface{}{date.String(), farmID, weight}
		if err := s.rows.WriteRow(ctx, s.sheetRange, values); err != nil {
			s.logger.Warn("failed to mirror milk entry to sheet", zap.String("farm_id", farmID), zap.Error(err))
			message += " Sheet sync failed."
		}
	}
	return message, nil
}

func (s *Service) handleRemove(cmd models.Command) (string, error) {
	if len(cmd.Args) != 2 {
		return "", fmt.Errorf("%w: usage /remove <farm> <date>", ErrInvalidArguments)
	}

	date, err := models.ParseMilkDate(cmd.Args[1])
	if err != nil {
		return "", err
	}
	if err := s.ledger.RemoveMilk(cmd.Args[0], date); err != nil {
		return "", err
	}
	return fmt.Sprintf("Removed %s entry for %s.", cmd.Args[0], date), nil
}

func (s *Service) handleSummary(cmd models.Command) (string, error) {
	if len(cmd.Args) != 3 {
		return "", fmt.Errorf("%w: usage /summary <farm> <year> <min|max|avg>", ErrInvalidArguments)
	}

	kind, err := reporting.ParseSummaryKind(cmd.Args[2])
	if err != nil {
		return "", err
	}
	report, err := s.reporting.FarmReport(cmd.Args[0], cmd.Args[1])
	if err != nil {
		return "", err
	}
	summary, err := reporting.SummarizeMonths(report, kind)
	if err != nil {
		return "", err
	}
	return s.reporting.RenderSummary(summary), nil
}

func listReply(title, empty string, items []string) string {
	if len(items) == 0 {
		return empty
	}
	return fmt.Sprintf("%s (%d): %s", title, len(items), strings.Join(items, ", "))
}
