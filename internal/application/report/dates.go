package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/salesdash/backend/internal/domain/identity"
	"github.com/salesdash/backend/internal/domain/sales"
	"github.com/salesdash/backend/internal/domain/shared"
)

// MaxReportDays bounds the number of dates one request may fan out to
const MaxReportDays = 366

// ErrRangeTooLong is returned for ranges longer than MaxReportDays
var ErrRangeTooLong = shared.NewDomainError("DATE_RANGE_TOO_LONG",
	fmt.Sprintf("Reports cover at most %d days", MaxReportDays))

// resolveDates expands the requested range and splits it by the account's
// date allow-list. It fails when no requested date remains visible.
func resolveDates(input SalesReportInput, perms identity.PermissionContext, today time.Time) (rangeType string, allowed, blocked []string, err error) {
	rangeType = strings.ToLower(strings.TrimSpace(input.Range))
	if rangeType == "" {
		rangeType = string(sales.RangeDay)
	}

	var dates []string
	if rangeType == RangeAllowed {
		if !perms.HasDateRestrictions() {
			return "", nil, nil, shared.NewDomainError("INVALID_RANGE_TYPE", "The allowed range requires an account with date restrictions")
		}
		dates = append(dates, perms.AllowedDates...)
		sort.Strings(dates)
	} else {
		dates, err = expandRange(rangeType, input, today)
		if err != nil {
			return "", nil, nil, err
		}
	}

	if len(dates) == 0 {
		return "", nil, nil, shared.ErrEmptyDateRange
	}
	if len(dates) > MaxReportDays {
		return "", nil, nil, ErrRangeTooLong
	}

	allowed, blocked = perms.FilterDates(dates)
	if len(allowed) == 0 {
		return "", nil, nil, shared.ErrNoDatesAccess
	}
	return rangeType, allowed, blocked, nil
}

func expandRange(rangeType string, input SalesReportInput, today time.Time) ([]string, error) {
	rt, err := sales.ParseRangeType(rangeType)
	if err != nil {
		return nil, err
	}

	r := sales.DateRange{Type: rt, Anchor: today}
	if rt == sales.RangeCustom {
		if r.Start, err = parseDate("start_date", input.StartDate); err != nil {
			return nil, err
		}
		if r.End, err = parseDate("end_date", input.EndDate); err != nil {
			return nil, err
		}
		// Reject before expansion so huge spans are never materialized.
		if r.End.Sub(r.Start) >= MaxReportDays*24*time.Hour {
			return nil, ErrRangeTooLong
		}
	} else if input.Date != "" {
		if r.Anchor, err = parseDate("date", input.Date); err != nil {
			return nil, err
		}
	}
	return r.Dates()
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, shared.NewDomainError("INVALID_INPUT", field+" is required")
	}
	t, err := time.Parse(sales.DateLayout, value)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_INPUT", field+" must be a YYYY-MM-DD date")
	}
	return t, nil
}
