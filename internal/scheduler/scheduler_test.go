package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/milkledger/internal/config"
	"github.com/mamadbah2/milkledger/internal/domain/models"
	"github.com/mamadbah2/milkledger/internal/service/ingestion"
	"github.com/mamadbah2/milkledger/internal/service/reporting"
)

type fakeLoader struct {
	calls int
	err   error
}

func (f *fakeLoader) Reload(context.Context) (ingestion.Result, error) {
	f.calls++
	return ingestion.Result{Skipped: []ingestion.SkippedLine{{Line: 1}}}, f.err
}

type fakeArchiver struct {
	got      []models.ArchiveRequest
	snapshot models.ReportSnapshot
	err      error
}

func (f *fakeArchiver) ArchiveReport(_ context.Context, req models.ArchiveRequest) (models.ReportSnapshot, error) {
	f.got = append(f.got, req)
	return f.snapshot, f.err
}

type fakeNotifier struct {
	sent []models.OutboundMessageRequest
	err  error
}

func (f *fakeNotifier) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	f.sent = append(f.sent, req)
	return f.err
}

func newScheduler(t *testing.T, cfg config.ReportingConfig, loader Reloader, reports ReportArchiver, notifier Notifier) *Scheduler {
	t.Helper()
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	s, err := NewScheduler(cfg, "221700000000", loader, reports, notifier, nil)
	require.NoError(t, err)
	return s
}

func TestPreviousMonth(t *testing.T) {
	require.Equal(t,
		models.ArchiveRequest{Kind: models.ReportMonthly, Month: "December", Year: "2023"},
		PreviousMonth(time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC)))
	require.Equal(t,
		models.ArchiveRequest{Kind: models.ReportMonthly, Month: "February", Year: "2024"},
		PreviousMonth(time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)))
}

func TestRunMonthlyReportUsesTimezone(t *testing.T) {
	archiver := &fakeArchiver{snapshot: models.ReportSnapshot{Label: "May 2024", Rendered: "Monthly report May 2024:\nTOTAL: 0 lbs"}}
	notifier := &fakeNotifier{}
	s := newScheduler(t, config.ReportingConfig{Timezone: "Asia/Tokyo"}, nil, archiver, notifier)
	// 2024-05-31 20:00 UTC is already June 1st in Tokyo.
	s.now = func() time.Time { return time.Date(2024, 5, 31, 20, 0, 0, 0, time.UTC) }

	require.NoError(t, s.RunMonthlyReport(context.Background()))
	require.Equal(t, []models.ArchiveRequest{{Kind: models.ReportMonthly, Month: "May", Year: "2024"}}, archiver.got)
	require.Equal(t, []models.OutboundMessageRequest{{To: "221700000000", Message: archiver.snapshot.Rendered}}, notifier.sent)
}

func TestRunMonthlyReportArchiveFailure(t *testing.T) {
	notifier := &fakeNotifier{}

	failed := &fakeArchiver{err: errors.New("invalid")}
	s := newScheduler(t, config.ReportingConfig{}, nil, failed, notifier)
	require.Error(t, s.RunMonthlyReport(context.Background()))
	require.Empty(t, notifier.sent)

	partial := &fakeArchiver{snapshot: models.ReportSnapshot{Rendered: "report"}, err: errors.New("mongo down")}
	s = newScheduler(t, config.ReportingConfig{}, nil, partial, notifier)
	require.NoError(t, s.RunMonthlyReport(context.Background()))
	require.Len(t, notifier.sent, 1)
}

func TestRunMonthlyReportWithoutArchive(t *testing.T) {
	notifier := &fakeNotifier{}
	archiver := &fakeArchiver{
		snapshot: models.ReportSnapshot{Label: "May 2024", Rendered: "report"},
		err:      fmt.Errorf("archive monthly report: %w", reporting.ErrNoArchive),
	}
	s := newScheduler(t, config.ReportingConfig{}, nil, archiver, notifier)

	require.NoError(t, s.RunMonthlyReport(context.Background()))
	require.Equal(t, []models.OutboundMessageRequest{{To: "221700000000", Message: "report"}}, notifier.sent)
}

func TestRunMonthlyReportWithoutNotifier(t *testing.T) {
	archiver := &fakeArchiver{snapshot: models.ReportSnapshot{Rendered: "report"}}
	s := newScheduler(t, config.ReportingConfig{}, nil, archiver, nil)
	require.NoError(t, s.RunMonthlyReport(context.Background()))
	require.Len(t, archiver.got, 1)
}

func TestRunReload(t *testing.T) {
	loader := &fakeLoader{}
	s := newScheduler(t, config.ReportingConfig{}, loader, nil, nil)
	require.NoError(t, s.RunReload(context.Background()))
	require.Equal(t, 1, loader.calls)

	loader.err = errors.New("missing file")
	require.Error(t, s.RunReload(context.Background()))
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := newScheduler(t, config.ReportingConfig{ReloadCronSchedule: "every tuesday"}, &fakeLoader{}, nil, nil)
	require.Error(t, s.Start())

	s = newScheduler(t, config.ReportingConfig{ReloadCronSchedule: "*/5 * * * *", ReportCronSchedule: "0 6 1 * *"}, &fakeLoader{}, &fakeArchiver{}, nil)
	require.NoError(t, s.Start())
	require.Len(t, s.cron.Entries(), 2)
	s.Stop()
}

func TestNewSchedulerInvalidTimezone(t *testing.T) {
	_, err := NewScheduler(config.ReportingConfig{Timezone: "Mars/Olympus"}, "", nil, nil, nil, nil)
	require.Error(t, err)
}
