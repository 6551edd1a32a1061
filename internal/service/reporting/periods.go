package reporting

import (
	"errors"
	"fmt"
	"time"

	"github.com/mamadbah2/herdboard/internal/domain/models"
)

const dateLayout = "2006-01-02"

var (
	// ErrInvalidMonth rejects months outside 1..12.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	// ErrInvalidQuarter rejects quarters outside 1..4.
	ErrInvalidQuarter = errors.New("quarter must be between 1 and 4")
	// ErrInvalidRange rejects ranges whose start is after their end.
	ErrInvalidRange = errors.New("start date must not be after end date")
)

// weekSpanDays is how far a weekly report's end lies past its start.
const weekSpanDays = 7

// Range is an inclusive span of calendar days, both ends at UTC midnight.
type Range struct {
	Start time.Time
	End   time.Time
}

// StartISO renders the start day as YYYY-MM-DD.
func (r Range) StartISO() string { return FormatISO(r.Start) }

// EndISO renders the end day as YYYY-MM-DD.
func (r Range) EndISO() string { return FormatISO(r.End) }

// Contains reports whether t falls on a day inside the range.
func (r Range) Contains(t time.Time) bool {
	day := Day(t)
	return !day.Before(r.Start) && !day.After(r.End)
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// LocalDay returns the calendar day t falls on in loc, as a UTC date. A nil
// loc means UTC.
func LocalDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayRange covers a single day.
func DayRange(date time.Time) Range {
	d := Day(date)
	return Range{Start: d, End: d}
}

// WeekRange starts at start and ends seven days later.
func WeekRange(start time.Time) Range {
	d := Day(start)
	return Range{Start: d, End: d.AddDate(0, 0, weekSpanDays)}
}

// MonthRange covers the whole month, honouring month lengths and leap years.
func MonthRange(year, month int) (Range, error) {
	if month < 1 || month > 12 {
		return Range{}, fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return Range{Start: start, End: lastDayOfMonth(year, month)}, nil
}

// QuarterRange covers months 3q-2 through 3q.
func QuarterRange(year, quarter int) (Range, error) {
	if quarter < 1 || quarter > 4 {
		return Range{}, fmt.Errorf("%w: got %d", ErrInvalidQuarter, quarter)
	}
	startMonth := (quarter-1)*3 + 1
	start := time.Date(year, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
	return Range{Start: start, End: lastDayOfMonth(year, startMonth+2)}, nil
}

// YearRange covers January 1st through December 31st.
func YearRange(year int) Range {
	return Range{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// CustomRange validates an arbitrary inclusive range.
func CustomRange(start, end time.Time) (Range, error) {
	r := Range{Start: Day(start), End: Day(end)}
	if r.Start.After(r.End) {
		return Range{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, r.StartISO(), r.EndISO())
	}
	return r, nil
}

// FilterByDateRange keeps the animals whose last checkup day lies in r.
func FilterByDateRange(animals []models.Animal, r Range) []models.Animal {
	out := make([]models.Animal, 0, len(animals))
	for _, a := range animals {
		if r.Contains(a.LastCheckup) {
			out = append(out, a.Clone())
		}
	}
	return out
}

// BuildReport assembles a report. Stats covers the whole herd; PeriodStats
// only the animals checked up inside the range.
func BuildReport(period models.ReportPeriod, r Range, animals []models.Animal, now time.Time) models.ReportData {
	filtered := FilterByDateRange(animals, r)
	return models.ReportData{
		Period:      period,
		StartDate:   r.StartISO(),
		EndDate:     r.EndISO(),
		Animals:     filtered,
		Stats:       ComputeStats(animals),
		PeriodStats: ComputeStats(filtered),
		GeneratedAt: now.UTC(),
	}
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

// FormatISO renders the UTC calendar day of t.
func FormatISO(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func lastDayOfMonth(year, month int) time.Time {
	// Day 0 of the following month normalizes to the last day of month.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
}
