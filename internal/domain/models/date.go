package models

import (
	"fmt"
	"strconv"
	"strings"
)

// MilkDate is a calendar day as written in milk-weight files ("2023-1-5").
// Month and day are not checked against the calendar.
type MilkDate struct {
	Year  int
	Month int
	Day   int
}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var monthAbbreviations = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ParseMilkDate parses the "year-month-day" form. Surrounding whitespace is
// ignored; anything that does not split into exactly three integer components
// is rejected with ErrInvalidDate.
func ParseMilkDate(text string) (MilkDate, error) {
	parts := strings.Split(strings.TrimSpace(text), "-")
	if len(parts) != 3 {
		return MilkDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
	}

	var values [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return MilkDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
		}
		values[i] = v
	}

	return MilkDate{Year: values[0], Month: values[1], Day: values[2]}, nil
}

// MustParseMilkDate is ParseMilkDate for literals known to be valid.
func MustParseMilkDate(text string) MilkDate {
	d, err := ParseMilkDate(text)
	if err != nil {
		panic(err)
	}
	return d
}

// Compare orders dates by year, then month, then day.
func (d MilkDate) Compare(other MilkDate) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(d.Month - other.Month)
	default:
		return sign(d.Day - other.Day)
	}
}

func (d MilkDate) Before(other MilkDate) bool { return d.Compare(other) < 0 }

func (d MilkDate) After(other MilkDate) bool { return d.Compare(other) > 0 }

// MonthName returns the English month name, or "" for a month outside 1-12.
func (d MilkDate) MonthName() string {
	return MonthName(d.Month)
}

// String renders the canonical ledger key: no zero padding.
func (d MilkDate) String() string {
	return fmt.Sprintf("%d-%d-%d", d.Year, d.Month, d.Day)
}

// MonthName maps 1..12 to "January".."December".
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// ParseMonth resolves a full English month name or its three-letter
// abbreviation, case-insensitively, to 1..12.
func ParseMonth(text string) (int, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	for i, name := range monthNames {
		if normalized == strings.ToLower(name) {
			return i + 1, nil
		}
	}
	if month, ok := monthAbbreviations[normalized]; ok {
		return month, nil
	}
	return 0, fmt.Errorf("%w: unknown month %q", ErrInvalidDate, text)
}

// ParseYear parses a year query parameter.
func ParseYear(text string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: year %q", ErrInvalidDate, text)
	}
	return year, nil
}

// DateBounds holds the inclusive range of every ingested date. The zero value
// means no data has been ingested yet.
type DateBounds struct {
	Min MilkDate `json:"min"`
	Max MilkDate `json:"max"`
	Set bool     `json:"set"`
}

// Extend returns the bounds widened to include d.
func (b DateBounds) Extend(d MilkDate) DateBounds {
	switch {
	case !b.Set:
		return DateBounds{Min: d, Max: d, Set: true}
	case d.Before(b.Min):
		b.Min = d
	case d.After(b.Max):
		b.Max = d
	}
	return b
}

// Contains reports whether d lies within the bounds.
func (b DateBounds) Contains(d MilkDate) bool {
	return b.Set && !d.Before(b.Min) && !d.After(b.Max)
}

// CheckRange validates a user supplied range against the bounds.
func (b DateBounds) CheckRange(start, end MilkDate) error {
	if start.After(end) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidDate, start, end)
	}
	if !b.Contains(start) {
		return fmt.Errorf("%w: %s", ErrStartDateOutOfRange, start)
	}
	if !b.Contains(end) {
		return fmt.Errorf("%w: %s", ErrEndDateOutOfRange, end)
	}
	return nil
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
