package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/milkledger/internal/config"
	"github.com/mamadbah2/milkledger/internal/domain/models"
	"github.com/mamadbah2/milkledger/internal/service/ingestion"
	"github.com/mamadbah2/milkledger/internal/service/reporting"
)

const jobTimeout = 2 * time.Minute

// Reloader rebuilds the live registry from its sources.
type Reloader interface {
	Reload(ctx context.Context) (ingestion.Result, error)
}

// ReportArchiver renders and stores a report.
type ReportArchiver interface {
	ArchiveReport(ctx context.Context, req models.ArchiveRequest) (models.ReportSnapshot, error)
}

// Notifier pushes a text message to a recipient.
type Notifier interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	cfg       config.ReportingConfig
	loc       *time.Location
	loader    Reloader
	reports   ReportArchiver
	notifier  Notifier
	recipient string
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduler creates a new scheduler instance. notifier may be nil, in
// which case monthly reports are archived but not pushed.
func NewScheduler(cfg config.ReportingConfig, recipient string, loader Reloader, reports ReportArchiver, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone %q: %w", cfg.Timezone, err)
	}

	// Standard 5-field cron expressions, evaluated in the configured timezone.
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:      c,
		cfg:       cfg,
		loc:       loc,
		loader:    loader,
		reports:   reports,
		notifier:  notifier,
		recipient: recipient,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Start registers the configured jobs and starts the scheduler. Jobs with an
// empty schedule are not registered.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("reload_schedule", s.cfg.ReloadCronSchedule),
		zap.String("report_schedule", s.cfg.ReportCronSchedule),
		zap.String("timezone", s.loc.String()))

	if s.cfg.ReloadCronSchedule != "" && s.loader != nil {
		if _, err := s.cron.AddFunc(s.cfg.ReloadCronSchedule, s.reloadJob); err != nil {
			return fmt.Errorf("schedule reload %q: %w", s.cfg.ReloadCronSchedule, err)
		}
	}

	if s.cfg.ReportCronSchedule != "" && s.reports != nil {
		if _, err := s.cron.AddFunc(s.cfg.ReportCronSchedule, s.monthlyReportJob); err != nil {
			return fmt.Errorf("schedule monthly report %q: %w", s.cfg.ReportCronSchedule, err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunReload reloads the data sources once.
func (s *Scheduler) RunReload(ctx context.Context) error {
	res, err := s.loader.Reload(ctx)
	if err != nil {
		return fmt.Errorf("scheduled reload: %w", err)
	}
	if len(res.Skipped) > 0 {
		s.logger.Warn("reload skipped malformed lines", zap.Int("skipped", len(res.Skipped)))
	}
	return nil
}

// RunMonthlyReport archives the report for the calendar month before now and
// pushes it to the configured recipient.
func (s *Scheduler) RunMonthlyReport(ctx context.Context) error {
	req := PreviousMonth(s.now().In(s.loc))

	snapshot, err := s.reports.ArchiveReport(ctx, req)
	if err != nil && snapshot.Rendered == "" {
		return fmt.Errorf("monthly report %s %s: %w", req.Month, req.Year, err)
	}
	switch {
	case errors.Is(err, reporting.ErrNoArchive):
		s.logger.Debug("monthly report not archived, no archive configured", zap.String("label", snapshot.Label))
	case err != nil:
		s.logger.Error("monthly report not archived", zap.String("label", snapshot.Label), zap.Error(err))
	}

	if s.notifier == nil || s.recipient == "" {
		return nil
	}

	msg := models.OutboundMessageRequest{To: s.recipient, Message: snapshot.Rendered}
	if err := s.notifier.SendOutbound(ctx, msg); err != nil {
		return fmt.Errorf("send monthly report: %w", err)
	}
	s.logger.Info("monthly report sent successfully", zap.String("label", snapshot.Label))
	return nil
}

// PreviousMonth builds the monthly report request for the month before t.
func PreviousMonth(t time.Time) models.ArchiveRequest {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	prev := first.AddDate(0, -1, 0)
	return models.ArchiveRequest{
		Kind:  models.ReportMonthly,
		Month: prev.Month().String(),
		Year:  strconv.Itoa(prev.Year()),
	}
}

func (s *Scheduler) reloadJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.RunReload(ctx); err != nil {
		s.logger.Error("failed to reload milk data", zap.Error(err))
	}
}

func (s *Scheduler) monthlyReportJob() {
	s.logger.Info("generating monthly report")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.RunMonthlyReport(ctx); err != nil {
		s.logger.Error("failed to run monthly report", zap.Error(err))
	}
}
