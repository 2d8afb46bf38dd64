package period

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestCalculator() *Calculator {
	return NewCalculator(time.UTC, time.Monday)
}

func TestGenerate_Week(t *testing.T) {
	c := newTestCalculator()

	p, err := c.Generate(time.Date(2023, 11, 23, 15, 30, 0, 0, time.UTC), Week)
	require.NoError(t, err)
	assert.Equal(t, day(2023, 11, 20), p.Start)
	assert.Equal(t, day(2023, 11, 27), p.End)
}

func TestGenerate_WeekStartingSunday(t *testing.T) {
	c := NewCalculator(time.UTC, time.Sunday)

	p, err := c.Generate(day(2023, 11, 23), Week)
	require.NoError(t, err)
	assert.Equal(t, day(2023, 11, 19), p.Start)
	assert.Equal(t, day(2023, 11, 26), p.End)
}

func TestGenerate_MonthLengths(t *testing.T) {
	c := newTestCalculator()

	tests := []struct {
		date time.Time
		days int
	}{
		{day(2024, 2, 10), 29},
		{day(2023, 2, 10), 28},
		{day(2023, 4, 30), 30},
		{day(2023, 12, 31), 31},
	}
	for _, tt := range tests {
		p, err := c.Generate(tt.date, Month)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Start.Day())
		assert.Equal(t, tt.days, DaysBetween(p.Start, p.End), "month of %s", tt.date)
	}
}

func TestGenerate_YearLengths(t *testing.T) {
	c := newTestCalculator()

	leap, err := c.Generate(day(2024, 7, 1), Year)
	require.NoError(t, err)
	assert.Equal(t, 366, DaysBetween(leap.Start, leap.End))
	assert.Equal(t, day(2025, 1, 1), leap.End)

	common, err := c.Generate(day(2023, 7, 1), Year)
	require.NoError(t, err)
	assert.Equal(t, 365, DaysBetween(common.Start, common.End))
}

func TestGenerate_AllIsRejected(t *testing.T) {
	c := newTestCalculator()

	_, err := c.Generate(day(2023, 7, 1), All)
	assert.True(t, errors.Is(err, ErrPeriodUnavailableForAll))
}

func TestGenerate_Overflow(t *testing.T) {
	c := newTestCalculator()

	_, err := c.Generate(day(9999, 12, 30), Year)
	assert.True(t, errors.Is(err, ErrDateOverflow))
}

func TestGenerate_ContainsDate(t *testing.T) {
	c := newTestCalculator()

	start := day(2023, 1, 1)
	for i := 0; i < 800; i += 13 {
		d := start.AddDate(0, 0, i).Add(17 * time.Hour)
		for _, g := range []Granularity{Week, Month, Year} {
			p, err := c.Generate(d, g)
			require.NoError(t, err)
			assert.True(t, p.Contains(d), "%s does not contain %s", p, d)
			assert.True(t, p.Start.Before(p.End))
		}
	}
}

func TestAdvanceRetard_Fixture(t *testing.T) {
	c := newTestCalculator()
	p := Period{Start: day(2023, 11, 20), End: day(2023, 11, 27)}

	next, err := c.Advance(p, Week)
	require.NoError(t, err)
	assert.Equal(t, Period{Start: day(2023, 11, 27), End: day(2023, 12, 4)}, next)

	prev, err := c.Retard(p, Week)
	require.NoError(t, err)
	assert.Equal(t, Period{Start: day(2023, 11, 13), End: day(2023, 11, 20)}, prev)
}

func TestAdvanceRetard_RoundTrip(t *testing.T) {
	c := newTestCalculator()

	for _, g := range []Granularity{Week, Month, Year} {
		for _, d := range []time.Time{day(2024, 1, 31), day(2024, 2, 29), day(2023, 12, 31), day(2024, 3, 1)} {
			p, err := c.Generate(d, g)
			require.NoError(t, err)

			next, err := c.Advance(p, g)
			require.NoError(t, err)
			back, err := c.Retard(next, g)
			require.NoError(t, err)
			assert.True(t, back.Equal(p), "%s: retard(advance(%s)) = %s", g, p, back)

			prev, err := c.Retard(p, g)
			require.NoError(t, err)
			fwd, err := c.Advance(prev, g)
			require.NoError(t, err)
			assert.True(t, fwd.Equal(p), "%s: advance(retard(%s)) = %s", g, p, fwd)
		}
	}
}

func TestAdvance_AllIsRejected(t *testing.T) {
	c := newTestCalculator()
	p := Period{Start: day(2023, 1, 1), End: day(2023, 2, 1)}

	_, err := c.Advance(p, All)
	assert.ErrorIs(t, err, ErrPeriodUnavailableForAll)
}

func TestSpan(t *testing.T) {
	c := newTestCalculator()

	p, err := c.Span(time.Date(2023, 3, 5, 9, 0, 0, 0, time.UTC), time.Date(2023, 6, 1, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, day(2023, 3, 5), p.Start)
	assert.Equal(t, day(2023, 6, 2), p.End)
}

func TestMidDate(t *testing.T) {
	c := newTestCalculator()

	mid, err := c.MidDate(Period{Start: day(2023, 11, 20), End: day(2023, 11, 27)})
	require.NoError(t, err)
	assert.Equal(t, day(2023, 11, 23), mid)

	_, err = c.MidDate(Period{Start: day(2023, 11, 20), End: day(2023, 11, 20)})
	assert.ErrorIs(t, err, ErrMidpointUnavailable)
}

func TestMidDate_SpanLongerThanMaxDuration(t *testing.T) {
	c := newTestCalculator()

	// Six centuries overflow time.Duration, so days are counted on calendar dates.
	p, err := c.Span(day(1500, 1, 1), day(2100, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 219147, DaysBetween(p.Start, p.End))

	mid, err := c.MidDate(p)
	require.NoError(t, err)
	assert.Equal(t, day(1800, 1, 1), mid)
}

func TestDaysBetween_DST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	c := NewCalculator(loc, time.Monday)

	// The week of the 2024 spring-forward change is 167 hours long.
	p, err := c.Generate(time.Date(2024, 3, 28, 12, 0, 0, 0, loc), Week)
	require.NoError(t, err)
	assert.Equal(t, 7, DaysBetween(p.Start, p.End))
	assert.Equal(t, 0, p.End.Hour())

	m, err := c.Generate(time.Date(2024, 10, 10, 12, 0, 0, 0, loc), Month)
	require.NoError(t, err)
	assert.Equal(t, 31, DaysBetween(m.Start, m.End))
}

func TestSubdivide(t *testing.T) {
	c := newTestCalculator()

	week, _ := c.Generate(day(2023, 11, 23), Week)
	days, err := c.Subdivide(week, Week)
	require.NoError(t, err)
	assert.Len(t, days, 7)
	assert.Equal(t, day(2023, 11, 21), days[1].Start)

	year, _ := c.Generate(day(2023, 5, 1), Year)
	months, err := c.Subdivide(year, Year)
	require.NoError(t, err)
	require.Len(t, months, 12)
	assert.Equal(t, day(2023, 2, 1), months[1].Start)
	assert.Equal(t, day(2023, 3, 1), months[1].End)

	span := Period{Start: day(2023, 1, 15), End: day(2023, 3, 10)}
	clipped, err := c.Subdivide(span, All)
	require.NoError(t, err)
	require.Len(t, clipped, 3)
	assert.Equal(t, day(2023, 1, 15), clipped[0].Start)
	assert.Equal(t, day(2023, 3, 10), clipped[2].End)
}

func TestWeekdays(t *testing.T) {
	p := Period{Start: day(2023, 11, 20), End: day(2023, 11, 27)}
	assert.Len(t, p.Weekdays(), 5)
	assert.Len(t, p.Days(), 7)
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity(" Month ")
	require.NoError(t, err)
	assert.Equal(t, Month, g)

	_, err = ParseGranularity("fortnight")
	assert.Error(t, err)
	assert.Equal(t, "all", All.String())
}
