package reporting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mamadbah2/milkledger/internal/domain/models"
)

// ErrUnknownSummary indicates a summary kind other than min, max or avg.
var ErrUnknownSummary = errors.New("unknown summary kind")

// ParseSummaryKind accepts "min", "max", "avg" and their long forms.
func ParseSummaryKind(text string) (models.SummaryKind, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "min", "minimum":
		return models.SummaryMinimum, nil
	case "max", "maximum":
		return models.SummaryMaximum, nil
	case "avg", "average", "mean":
		return models.SummaryAverage, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSummary, text)
	}
}

// SummarizeMonths reduces a farm report to its lightest or heaviest month, or
// to the average weight over the twelve months. Ties go to the earliest month.
func SummarizeMonths(report models.MonthBreakdown, kind models.SummaryKind) (models.Summary, error) {
	keys := make([]string, len(report.Months))
	for i := range report.Months {
		keys[i] = models.MonthName(i + 1)
	}
	return summarize(fmt.Sprintf("%s - %d", report.FarmID, report.Year), keys, report.Months[:], report.Total, kind)
}

// SummarizeFarms reduces a cross-farm report to its smallest or largest farm,
// or to the average weight per farm. Ties go to the first farm id in
// lexicographic order.
func SummarizeFarms(report models.FarmShares, kind models.SummaryKind) (models.Summary, error) {
	keys := report.FarmIDs()
	values := make([]models.WeightShare, len(keys))
	for i, id := range keys {
		values[i] = report.Farms[id]
	}
	return summarize(report.Label, keys, values, report.Total, kind)
}

func summarize(label string, keys []string, values []models.WeightShare, total int, kind models.SummaryKind) (models.Summary, error) {
	summary := models.Summary{Kind: kind, Label: label}

	switch kind {
	case models.SummaryMinimum, models.SummaryMaximum:
		best := -1
		for i, v := range values {
			if best < 0 ||
				(kind == models.SummaryMinimum && v.Weight < values[best].Weight) ||
				(kind == models.SummaryMaximum && v.Weight > values[best].Weight) {
				best = i
			}
		}
		if best >= 0 {
			summary.Key = keys[best]
			summary.Weight = values[best].Weight
			summary.Share = values[best].Share
		}
	case models.SummaryAverage:
		if len(values) > 0 {
			summary.Average = float64(total) / float64(len(values))
			summary.Weight = total / len(values)
			summary.Share = shareOf(1, len(values))
			if total == 0 {
				summary.Share = 0
			}
		}
	default:
		return models.Summary{}, fmt.Errorf("%w: %q", ErrUnknownSummary, kind)
	}

	return summary, nil
}
