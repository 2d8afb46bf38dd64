// Package period computes calendar-aligned date ranges (weeks, months, years)
// and moves between them.
package period

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrPeriodUnavailableForAll is returned when a single date is asked to
	// produce an All period. Use Calculator.Span instead.
	ErrPeriodUnavailableForAll = errors.New("period: granularity all needs an entry span")
	// ErrCalendarComputation reports a calendar lookup that produced no usable result.
	ErrCalendarComputation = errors.New("period: calendar computation failed")
	// ErrDateOverflow reports date arithmetic that left the supported range.
	ErrDateOverflow = errors.New("period: date arithmetic overflow")
	// ErrMidpointUnavailable reports a period whose day count cannot be determined.
	ErrMidpointUnavailable = errors.New("period: cannot determine midpoint")
)

// Granularity is the calendar unit a period is aligned to.
type Granularity int

const (
	Week Granularity = iota
	Month
	Year
	All
)

var granularityNames = map[Granularity]string{
	Week:  "week",
	Month: "month",
	Year:  "year",
	All:   "all",
}

func (g Granularity) String() string {
	if s, ok := granularityNames[g]; ok {
		return s
	}
	return fmt.Sprintf("granularity(%d)", int(g))
}

// ParseGranularity accepts week, month, year or all (case-insensitive).
func ParseGranularity(s string) (Granularity, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for g, name := range granularityNames {
		if name == want {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown granularity %q", s)
}

// Period is the half-open range [Start, End). Both bounds are midnight.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Days returns the midnight of every day in the period.
func (p Period) Days() []time.Time {
	var days []time.Time
	for d := p.Start; d.Before(p.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Weekdays returns the days of the period that fall Monday to Friday.
func (p Period) Weekdays() []time.Time {
	var days []time.Time
	for _, d := range p.Days() {
		if IsWeekday(d) {
			days = append(days, d)
		}
	}
	return days
}

// Equal compares both bounds as instants.
func (p Period) Equal(o Period) bool {
	return p.Start.Equal(o.Start) && p.End.Equal(o.End)
}

func (p Period) String() string {
	return p.Start.Format("2006-01-02") + " … " + p.End.Format("2006-01-02")
}

// IsWeekday reports whether t is Monday to Friday.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween counts whole calendar days from a to b. Both are projected
// onto UTC dates first so a DST change never shortens or stretches a day.
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int((ub.Unix() - ua.Unix()) / 86400)
}
