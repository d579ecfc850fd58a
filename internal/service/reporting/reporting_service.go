package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/milkledger/internal/domain/models"
	"github.com/mamadbah2/milkledger/internal/repository/registry"
)

var (
	// ErrUnknownReport indicates an archive request for a report kind that does not exist.
	ErrUnknownReport = errors.New("unknown report kind")

	// ErrNoArchive indicates a report was rendered but no archive is configured.
	ErrNoArchive = errors.New("no report archive configured")
)

// Source provides consistent point-in-time views of the ledger.
type Source interface {
	Snapshot() registry.Snapshot
}

// Archive stores rendered reports.
type Archive interface {
	SaveReport(ctx context.Context, snapshot models.ReportSnapshot) error
}

// Service computes milk-weight reports. Every report reads a single snapshot.
type Service struct {
	source   Source
	archives []Archive
	places   int32
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires a new reporting service instance. places is the number of
// decimals used when rendering percentages.
func NewService(source Source, places int32, logger *zap.Logger, archives ...Archive) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:   source,
		archives: archives,
		places:   places,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// FarmReport buckets one farm's weights for year by calendar month.
func (s *Service) FarmReport(farmID, year string) (models.MonthBreakdown, error) {
	y, err := models.ParseYear(year)
	if err != nil {
		return models.MonthBreakdown{}, err
	}

	snap := s.source.Snapshot()
	ledger, ok := snap.Farms[farmID]
	if !ok {
		return models.MonthBreakdown{}, fmt.Errorf("farm report for %s: %w", farmID, models.ErrFarmNotFound)
	}

	report := models.MonthBreakdown{FarmID: farmID, Year: y}
	var weights [12]int
	ledger.Each(func(date models.MilkDate, weight int) {
		if date.Year != y || date.Month < 1 || date.Month > 12 {
			return
		}
		weights[date.Month-1] += weight
	})

	for _, w := range weights {
		report.Total += w
	}
	for i, w := range weights {
		report.Months[i] = models.WeightShare{Weight: w, Share: shareOf(w, report.Total)}
	}
	return report, nil
}

// AnnualReport totals every farm's weight for year.
func (s *Service) AnnualReport(year string) (models.FarmShares, error) {
	y, err := models.ParseYear(year)
	if err != nil {
		return models.FarmShares{}, err
	}

	report := s.farmShares(func(date models.MilkDate) bool {
		return date.Year == y
	})
	report.Kind = models.ReportAnnual
	report.Label = fmt.Sprintf("%d", y)
	return report, nil
}

// MonthlyReport totals every farm's weight for one calendar month of year.
// month is an English month name or its three-letter abbreviation.
func (s *Service) MonthlyReport(month, year string) (models.FarmShares, error) {
	m, err := models.ParseMonth(month)
	if err != nil {
		return models.FarmShares{}, err
	}
	y, err := models.ParseYear(year)
	if err != nil {
		return models.FarmShares{}, err
	}

	report := s.farmShares(func(date models.MilkDate) bool {
		return date.Year == y && date.Month == m
	})
	report.Kind = models.ReportMonthly
	report.Label = fmt.Sprintf("%s %d", models.MonthName(m), y)
	return report, nil
}

// DateRangeReport totals every farm's weight between start and end inclusive.
func (s *Service) DateRangeReport(start, end string) (models.FarmShares, error) {
	from, to, err := parseRange(start, end)
	if err != nil {
		return models.FarmShares{}, err
	}

	report := s.farmShares(func(date models.MilkDate) bool {
		return !date.Before(from) && !date.After(to)
	})
	report.Kind = models.ReportDateRange
	report.Label = fmt.Sprintf("%s to %s", from, to)
	return report, nil
}

// CheckRange validates a user supplied range against the ingested bounds.
func (s *Service) CheckRange(start, end string) error {
	from, to, err := parseRange(start, end)
	if err != nil {
		return err
	}
	return s.source.Snapshot().Bounds.CheckRange(from, to)
}

// CanArchive reports whether at least one archive is configured.
func (s *Service) CanArchive() bool {
	return len(s.archives) > 0
}

// Build runs the report selected by req and renders it as an archive snapshot.
func (s *Service) Build(req models.ArchiveRequest) (models.ReportSnapshot, error) {
	switch req.Kind {
	case models.ReportFarm:
		report, err := s.FarmReport(req.FarmID, req.Year)
		if err != nil {
			return models.ReportSnapshot{}, err
		}
		return s.MonthSnapshot(report), nil
	case models.ReportAnnual:
		report, err := s.AnnualReport(req.Year)
		if err != nil {
			return models.ReportSnapshot{}, err
		}
		return s.SharesSnapshot(report), nil
	case models.ReportMonthly:
		report, err := s.MonthlyReport(req.Month, req.Year)
		if err != nil {
			return models.ReportSnapshot{}, err
		}
		return s.SharesSnapshot(report), nil
	case models.ReportDateRange:
		report, err := s.DateRangeReport(req.Start, req.End)
		if err != nil {
			return models.ReportSnapshot{}, err
		}
		return s.SharesSnapshot(report), nil
	default:
		return models.ReportSnapshot{}, fmt.Errorf("%w: %q", ErrUnknownReport, req.Kind)
	}
}

// ArchiveReport builds the requested report and saves it to every archive.
func (s *Service) ArchiveReport(ctx context.Context, req models.ArchiveRequest) (models.ReportSnapshot, error) {
	snapshot, err := s.Build(req)
	if err != nil {
		return models.ReportSnapshot{}, err
	}
	if err := s.Save(ctx, snapshot); err != nil {
		return snapshot, err
	}
	return snapshot, nil
}

// Save writes snapshot to every configured archive. All archives are
// attempted; their errors are joined. ErrNoArchive is returned when there is
// nowhere to write.
func (s *Service) Save(ctx context.Context, snapshot models.ReportSnapshot) error {
	if len(s.archives) == 0 {
		return fmt.Errorf("archive %s report: %w", snapshot.Kind, ErrNoArchive)
	}

	var errs []error
	for _, archive := range s.archives {
		if err := archive.SaveReport(ctx, snapshot); err != nil {
			s.logger.Error("failed to archive report",
				zap.String("kind", string(snapshot.Kind)),
				zap.String("label", snapshot.Label),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("archive %s report: %w", snapshot.Kind, errors.Join(errs...))
	}

	s.logger.Info("report archived",
		zap.String("kind", string(snapshot.Kind)),
		zap.String("label", snapshot.Label),
		zap.Int("archives", len(s.archives)))
	return nil
}

// MonthSnapshot converts a farm report into an archive document.
func (s *Service) MonthSnapshot(report models.MonthBreakdown) models.ReportSnapshot {
	lines := make([]models.ReportLine, len(report.Months))
	for i, m := range report.Months {
		lines[i] = models.ReportLine{Key: models.MonthName(i + 1), Weight: m.Weight, Share: m.Share}
	}
	return models.ReportSnapshot{
		ID:        s.newID(),
		Kind:      models.ReportFarm,
		Label:     farmLabel(report),
		Total:     report.Total,
		Lines:     lines,
		Rendered:  RenderMonthBreakdown(report, s.places),
		CreatedAt: s.now().UTC(),
	}
}

// SharesSnapshot converts an annual, monthly or date-range report into an
// archive document.
func (s *Service) SharesSnapshot(report models.FarmShares) models.ReportSnapshot {
	ids := report.FarmIDs()
	lines := make([]models.ReportLine, len(ids))
	for i, id := range ids {
		share := report.Farms[id]
		lines[i] = models.ReportLine{Key: id, Weight: share.Weight, Share: share.Share}
	}
	return models.ReportSnapshot{
		ID:        s.newID(),
		Kind:      report.Kind,
		Label:     report.Label,
		Total:     report.Total,
		Lines:     lines,
		Rendered:  RenderFarmShares(report, s.places),
		CreatedAt: s.now().UTC(),
	}
}

// RenderMonths renders a farm report with the configured precision.
func (s *Service) RenderMonths(report models.MonthBreakdown) string {
	return RenderMonthBreakdown(report, s.places)
}

// RenderShares renders a cross-farm report with the configured precision.
func (s *Service) RenderShares(report models.FarmShares) string {
	return RenderFarmShares(report, s.places)
}

// RenderSummary renders a summary with the configured precision.
func (s *Service) RenderSummary(summary models.Summary) string {
	return RenderSummary(summary, s.places)
}

// farmShares runs the two passes shared by the cross-farm reports: first the
// group total, then every farm's weight and share. Farms without a matching
// entry are reported with zero weight.
func (s *Service) farmShares(match func(models.MilkDate) bool) models.FarmShares {
	snap := s.source.Snapshot()

	weights := make(map[string]int, len(snap.Farms))
	total := 0
	for id, ledger := range snap.Farms {
		sum := 0
		ledger.Each(func(date models.MilkDate, weight int) {
			if match(date) {
				sum += weight
			}
		})
		weights[id] = sum
		total += sum
	}

	farms := make(map[string]models.WeightShare, len(weights))
	for id, w := range weights {
		farms[id] = models.WeightShare{Weight: w, Share: shareOf(w, total)}
	}
	return models.FarmShares{Total: total, Farms: farms}
}

func parseRange(start, end string) (models.MilkDate, models.MilkDate, error) {
	from, err := models.ParseMilkDate(start)
	if err != nil {
		return models.MilkDate{}, models.MilkDate{}, err
	}
	to, err := models.ParseMilkDate(end)
	if err != nil {
		return models.MilkDate{}, models.MilkDate{}, err
	}
	if from.After(to) {
		return models.MilkDate{}, models.MilkDate{}, fmt.Errorf("%w: start %s is after end %s", models.ErrInvalidDate, from, to)
	}
	return from, to, nil
}

// shareOf returns weight/total, or 0 when the group total is zero.
func shareOf(weight, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(weight) / float64(total)
}

func farmLabel(report models.MonthBreakdown) string {
	return fmt.Sprintf("%s - %d", report.FarmID, report.Year)
}
