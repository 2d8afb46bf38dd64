package period

import (
	"fmt"
	"time"
)

const (
	minYear = 1
	maxYear = 9999
)

// Calculator produces periods in a fixed location and week layout.
type Calculator struct {
	loc          *time.Location
	firstWeekday time.Weekday
}

// NewCalculator returns a calculator for loc (time.Local when nil) whose
// weeks begin on firstWeekday.
func NewCalculator(loc *time.Location, firstWeekday time.Weekday) *Calculator {
	if loc == nil {
		loc = time.Local
	}
	return &Calculator{loc: loc, firstWeekday: firstWeekday}
}

// Location returns the calculator's time zone.
func (c *Calculator) Location() *time.Location { return c.loc }

// FirstWeekday returns the weekday weeks start on.
func (c *Calculator) FirstWeekday() time.Weekday { return c.firstWeekday }

// Generate returns the period of granularity g containing date.
func (c *Calculator) Generate(date time.Time, g Granularity) (Period, error) {
	if g == All {
		return Period{}, ErrPeriodUnavailableForAll
	}
	day, err := c.day(date)
	if err != nil {
		return Period{}, err
	}

	var start time.Time
	var length int
	switch g {
	case Week:
		offset := (int(day.Weekday()) - int(c.firstWeekday) + 7) % 7
		start = day.AddDate(0, 0, -offset)
		length = 7
	case Month:
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, c.loc)
		length = daysInMonth(start)
		if length < 28 || length > 31 {
			return Period{}, fmt.Errorf("month length %d for %s: %w", length, start.Format("2006-01"), ErrCalendarComputation)
		}
	case Year:
		start = time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, c.loc)
		length = daysInYear(start.Year())
		if length != 365 && length != 366 {
			return Period{}, fmt.Errorf("year length %d for %d: %w", length, start.Year(), ErrCalendarComputation)
		}
	default:
		return Period{}, fmt.Errorf("generate %s: %w", g, ErrCalendarComputation)
	}

	end, err := c.addDays(start, length)
	if err != nil {
		return Period{}, err
	}
	return Period{Start: start, End: end}, nil
}

// Span returns the All period: from the day of from up to and including the
// day of to. Callers pass the oldest entry's start and the newest entry's finish.
func (c *Calculator) Span(from, to time.Time) (Period, error) {
	start, err := c.day(from)
	if err != nil {
		return Period{}, err
	}
	last, err := c.day(to)
	if err != nil {
		return Period{}, err
	}
	if last.Before(start) {
		last = start
	}
	end, err := c.addDays(last, 1)
	if err != nil {
		return Period{}, err
	}
	return Period{Start: start, End: end}, nil
}

// Retard moves one unit back, re-deriving alignment from the day before p.Start.
func (c *Calculator) Retard(p Period, g Granularity) (Period, error) {
	date, err := c.addDays(p.Start, -1)
	if err != nil {
		return Period{}, err
	}
	return c.Generate(date, g)
}

// Advance moves one unit forward, re-deriving alignment from the day after p.End.
func (c *Calculator) Advance(p Period, g Granularity) (Period, error) {
	date, err := c.addDays(p.End, 1)
	if err != nil {
		return Period{}, err
	}
	return c.Generate(date, g)
}

// MidDate returns the start of the period plus half its whole days.
func (c *Calculator) MidDate(p Period) (time.Time, error) {
	days := DaysBetween(p.Start, p.End)
	if days <= 0 {
		return time.Time{}, fmt.Errorf("%s: %w", p, ErrMidpointUnavailable)
	}
	return c.addDays(p.Start.In(c.loc), days/2)
}

// Subdivide splits p into chart buckets: months for Year and All, days for
// Week and Month. The first and last month buckets of an All period are
// clipped to p.
func (c *Calculator) Subdivide(p Period, g Granularity) ([]Period, error) {
	switch g {
	case Week, Month:
		var out []Period
		for _, d := range p.Days() {
			next, err := c.addDays(d, 1)
			if err != nil {
				return nil, err
			}
			out = append(out, Period{Start: d, End: next})
		}
		return out, nil
	case Year, All:
		var out []Period
		cursor := p.Start
		for cursor.Before(p.End) {
			m, err := c.Generate(cursor, Month)
			if err != nil {
				return nil, err
			}
			b := m
			if b.Start.Before(p.Start) {
				b.Start = p.Start
			}
			if b.End.After(p.End) {
				b.End = p.End
			}
			out = append(out, b)
			cursor = m.End
		}
		return out, nil
	}
	return nil, fmt.Errorf("subdivide %s: %w", g, ErrCalendarComputation)
}

func (c *Calculator) day(t time.Time) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("zero date: %w", ErrCalendarComputation)
	}
	local := t.In(c.loc)
	if local.Year() < minYear || local.Year() > maxYear {
		return time.Time{}, fmt.Errorf("year %d: %w", local.Year(), ErrDateOverflow)
	}
	return StartOfDay(local), nil
}

// addDays adds n calendar days, keeping the result at midnight.
func (c *Calculator) addDays(t time.Time, n int) (time.Time, error) {
	local := t.In(c.loc)
	out := time.Date(local.Year(), local.Month(), local.Day()+n, 0, 0, 0, 0, c.loc)
	if out.Year() < minYear || out.Year() > maxYear {
		return time.Time{}, fmt.Errorf("add %d days to %s: %w", n, local.Format("2006-01-02"), ErrDateOverflow)
	}
	return out, nil
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}
