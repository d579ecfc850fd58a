package models

import (
	"sort"
	"time"
)

// ReportKind names the report algorithms.
type ReportKind string

const (
	ReportFarm      ReportKind = "farm"
	ReportAnnual    ReportKind = "annual"
	ReportMonthly   ReportKind = "monthly"
	ReportDateRange ReportKind = "range"
)

// WeightShare is a group member's total weight and its share of the group
// total, in [0, 1].
type WeightShare struct {
	Weight int     `bson:"weight" json:"weight"`
	Share  float64 `bson:"share" json:"share"`
}

// MonthBreakdown is the farm report: one farm's weights for a year, bucketed
// by month index 0 (January) through 11 (December).
type MonthBreakdown struct {
	FarmID string          `json:"farm_id"`
	Year   int             `json:"year"`
	Total  int             `json:"total"`
	Months [12]WeightShare `json:"months"`
}

// FarmShares is the annual, monthly and date-range report: per-farm weights
// and their share of the total across farms.
type FarmShares struct {
	Kind  ReportKind             `json:"kind"`
	Label string                 `json:"label"`
	Total int                    `json:"total"`
	Farms map[string]WeightShare `json:"farms"`
}

// FarmIDs returns the report keys in lexicographic order.
func (r FarmShares) FarmIDs() []string {
	ids := make([]string, 0, len(r.Farms))
	for id := range r.Farms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SummaryKind selects the statistic reported by a summary.
type SummaryKind string

const (
	SummaryMinimum SummaryKind = "minimum"
	SummaryMaximum SummaryKind = "maximum"
	SummaryAverage SummaryKind = "average"
)

// Summary condenses a report to its smallest or largest member, or to the
// average weight per member.
type Summary struct {
	Kind    SummaryKind `json:"kind"`
	Label   string      `json:"label"`
	Key     string      `json:"key,omitempty"`
	Weight  int         `json:"weight"`
	Average float64     `json:"average,omitempty"`
	Share   float64     `json:"share"`
}

// ReportLine is one rendered row of an archived report.
type ReportLine struct {
	Key    string  `bson:"key" json:"key"`
	Weight int     `bson:"weight" json:"weight"`
	Share  float64 `bson:"share" json:"share"`
}

// ReportSnapshot is a rendered report kept in the report archive.
type ReportSnapshot struct {
	ID        string       `bson:"_id" json:"id"`
	Kind      ReportKind   `bson:"kind" json:"kind"`
	Label     string       `bson:"label" json:"label"`
	Total     int          `bson:"total" json:"total"`
	Lines     []ReportLine `bson:"lines" json:"lines"`
	Rendered  string       `bson:"rendered" json:"rendered"`
	CreatedAt time.Time    `bson:"created_at" json:"created_at"`
}
