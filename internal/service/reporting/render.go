package reporting

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/milkledger/internal/domain/models"
)

var reportTitles = map[models.ReportKind]string{
	models.ReportFarm:      "Farm report",
	models.ReportAnnual:    "Annual report",
	models.ReportMonthly:   "Monthly report",
	models.ReportDateRange: "Date range report",
}

// FormatPercent renders a share in [0, 1] as a percentage with places decimals.
func FormatPercent(share float64, places int32) string {
	return decimal.NewFromFloat(share).Shift(2).StringFixed(places) + "%"
}

// RenderMonthBreakdown renders one line per month, e.g. "JANUARY: 100 lbs, (100.00%)".
func RenderMonthBreakdown(report models.MonthBreakdown, places int32) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", farmLabel(report))
	for i, m := range report.Months {
		writeLine(&b, strings.ToUpper(models.MonthName(i+1)), m, places)
	}
	fmt.Fprintf(&b, "TOTAL: %d lbs", report.Total)
	return b.String()
}

// RenderFarmShares renders one line per farm in farm id order.
func RenderFarmShares(report models.FarmShares, places int32) string {
	var b strings.Builder

	title := reportTitles[report.Kind]
	if title == "" {
		title = "Report"
	}
	fmt.Fprintf(&b, "%s %s:\n", title, report.Label)

	for _, id := range report.FarmIDs() {
		writeLine(&b, id, report.Farms[id], places)
	}
	fmt.Fprintf(&b, "TOTAL: %d lbs", report.Total)
	return b.String()
}

// RenderSummary renders a summary on a single line.
func RenderSummary(summary models.Summary, places int32) string {
	switch summary.Kind {
	case models.SummaryAverage:
		return fmt.Sprintf("%s average: %s lbs", summary.Label, decimal.NewFromFloat(summary.Average).StringFixed(2))
	default:
		if summary.Key == "" {
			return fmt.Sprintf("%s %s: no data", summary.Label, summary.Kind)
		}
		return fmt.Sprintf("%s %s: %s: %d lbs, (%s)",
			summary.Label, summary.Kind, summary.Key, summary.Weight, FormatPercent(summary.Share, places))
	}
}

func writeLine(b *strings.Builder, key string, ws models.WeightShare, places int32) {
	fmt.Fprintf(b, "%s: %d lbs, (%s)\n", key, ws.Weight, FormatPercent(ws.Share, places))
}
