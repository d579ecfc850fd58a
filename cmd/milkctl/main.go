// Command milkctl loads milk-weight files and prints a single report.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/milkledger/internal/domain/models"
	"github.com/mamadbah2/milkledger/internal/service/ingestion"
	"github.com/mamadbah2/milkledger/internal/service/reporting"
	"github.com/mamadbah2/milkledger/pkg/logger"
)

type options struct {
	files    []string
	report   string
	farm     string
	year     string
	month    string
	start    string
	end      string
	summary  string
	places   int
	format   string
	logLevel string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "milkctl:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	log, err := logger.NewConsole(opts.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	reg, res, err := ingestion.NewService(log.Named("ingestion")).LoadFiles(ctx, opts.files)
	if err != nil {
		return err
	}
	if len(res.Skipped) > 0 {
		log.Warn("skipped malformed lines", zap.Int("skipped", len(res.Skipped)), zap.Int("lines", res.Lines))
	}

	svc := reporting.NewService(reg, int32(opts.places), log.Named("reporting"))
	out, err := render(svc, opts)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, out)
	return err
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	var files string

	fs := flag.NewFlagSet("milkctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&files, "files", "", "comma separated milk-weight files, read in order")
	fs.StringVar(&opts.report, "report", "annual", "report kind: farm, annual, monthly or range")
	fs.StringVar(&opts.farm, "farm", "", "farm id (farm report)")
	fs.StringVar(&opts.year, "year", "", "year (farm, annual and monthly reports)")
	fs.StringVar(&opts.month, "month", "", "month name (monthly report)")
	fs.StringVar(&opts.start, "start", "", "first date, inclusive (range report)")
	fs.StringVar(&opts.end, "end", "", "last date, inclusive (range report)")
	fs.StringVar(&opts.summary, "summary", "", "print only min, max or avg")
	fs.IntVar(&opts.places, "places", 2, "decimals in rendered percentages")
	fs.StringVar(&opts.format, "format", "text", "output format: text or json")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	for _, f := range strings.Split(files, ",") {
		if f = strings.TrimSpace(f); f != "" {
			opts.files = append(opts.files, f)
		}
	}
	opts.files = append(opts.files, fs.Args()...)

	if len(opts.files) == 0 {
		return options{}, errors.New("no input files: use -files or pass paths as arguments")
	}
	if opts.places < 0 || opts.places > 10 {
		return options{}, fmt.Errorf("-places must be between 0 and 10, got %d", opts.places)
	}
	if opts.format != "text" && opts.format != "json" {
		return options{}, fmt.Errorf("-format must be text or json, got %q", opts.format)
	}
	return opts, nil
}

func render(svc *reporting.Service, opts options) (string, error) {
	var kind models.SummaryKind
	if opts.summary != "" {
		k, err := reporting.ParseSummaryKind(opts.summary)
		if err != nil {
			return "", err
		}
		kind = k
	}

	switch models.ReportKind(opts.report) {
	case models.ReportFarm:
		report, err := svc.FarmReport(opts.farm, opts.year)
		if err != nil {
			return "", err
		}
		if kind != "" {
			summary, err := reporting.SummarizeMonths(report, kind)
			if err != nil {
				return "", err
			}
			return output(opts, summary, svc.RenderSummary(summary))
		}
		return output(opts, report, svc.RenderMonths(report))
	case models.ReportAnnual, models.ReportMonthly, models.ReportDateRange:
		report, err := sharesReport(svc, opts)
		if err != nil {
			return "", err
		}
		if kind != "" {
			summary, err := reporting.SummarizeFarms(report, kind)
			if err != nil {
				return "", err
			}
			return output(opts, summary, svc.RenderSummary(summary))
		}
		return output(opts, report, svc.RenderShares(report))
	default:
		return "", fmt.Errorf("%w: %q", reporting.ErrUnknownReport, opts.report)
	}
}

func sharesReport(svc *reporting.Service, opts options) (models.FarmShares, error) {
	switch models.ReportKind(opts.report) {
	case models.ReportAnnual:
		return svc.AnnualReport(opts.year)
	case models.ReportMonthly:
		return svc.MonthlyReport(opts.month, opts.year)
	default:
		if err := svc.CheckRange(opts.start, opts.end); err != nil {
			return models.FarmShares{}, err
		}
		return svc.DateRangeReport(opts.start, opts.end)
	}
}

func output(opts options, value any, text string) (string, error) {
	if opts.format == "text" {
		return text, nil
	}
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return string(raw), nil
}
