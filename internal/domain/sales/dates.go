package sales

import (
	"fmt"
	"time"

	"github.com/salesdash/backend/internal/domain/shared"
)

// DateLayout is the ISO calendar date format used throughout the pipeline.
const DateLayout = "2006-01-02"

const monthLayout = "2006-01"

var spanishMonths = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthKey returns the YYYY-MM prefix of an ISO date. Malformed dates are
// passed through unchanged.
func MonthKey(date string) string {
	if len(date) < len(monthLayout) {
		return date
	}
	return date[:len(monthLayout)]
}

// MonthLabel renders a YYYY-MM key as "Diciembre 2025". Unparseable keys are
// returned as is.
func MonthLabel(key string) string {
	t, err := time.Parse(monthLayout, key)
	if err != nil {
		return key
	}
	return fmt.Sprintf("%s %d", spanishMonths[t.Month()-1], t.Year())
}

// RangeType selects how a report's dates are derived.
type RangeType string

const (
	RangeDay    RangeType = "day"
	RangeWeek   RangeType = "week"
	RangeMonth  RangeType = "month"
	RangeCustom RangeType = "custom"
)

// DateRange describes the dates a report request covers. Anchor is used by
// day, week and month ranges; Start and End by custom ranges.
type DateRange struct {
	Type   RangeType
	Anchor time.Time
	Start  time.Time
	End    time.Time
}

// Dates expands the range into ascending ISO dates.
func (r DateRange) Dates() ([]string, error) {
	anchor := truncateDay(r.Anchor)
	switch r.Type {
	case RangeDay:
		return []string{anchor.Format(DateLayout)}, nil
	case RangeWeek:
		// Weeks run Sunday through Saturday.
		start := anchor.AddDate(0, 0, -int(anchor.Weekday()))
		return datesBetween(start, start.AddDate(0, 0, 6)), nil
	case RangeMonth:
		start := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
		return datesBetween(start, start.AddDate(0, 1, -1)), nil
	case RangeCustom:
		start, end := truncateDay(r.Start), truncateDay(r.End)
		if start.After(end) {
			return nil, shared.ErrInvalidDateRange
		}
		return datesBetween(start, end), nil
	default:
		return nil, shared.ErrInvalidRangeType
	}
}

// ParseRangeType validates a range type name.
func ParseRangeType(s string) (RangeType, error) {
	switch rt := RangeType(s); rt {
	case RangeDay, RangeWeek, RangeMonth, RangeCustom:
		return rt, nil
	default:
		return "", shared.ErrInvalidRangeType
	}
}

func datesBetween(start, end time.Time) []string {
	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
