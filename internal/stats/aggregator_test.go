package stats

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/worktime/internal/period"
	"github.com/sadopc/worktime/internal/settings"
	"github.com/sadopc/worktime/internal/store"
)

type entrySlice []store.WorkEntry

func (s entrySlice) FetchPeriod(from, to time.Time) ([]store.WorkEntry, error) {
	var out []store.WorkEntry
	for _, e := range s {
		if e.Start.Before(to) && !e.Finish.Before(from) {
			out = append(out, e)
		}
	}
	return out, nil
}

type failingSource struct{}

func (failingSource) FetchPeriod(time.Time, time.Time) ([]store.WorkEntry, error) {
	return nil, errors.New("database is locked")
}

func testSettings() settings.Settings {
	s := settings.Defaults()
	s.GrossPayPerMonth = 4000
	return s
}

func entry(day time.Time, work, overtime int64) store.WorkEntry {
	start := day.Add(9 * time.Hour)
	return store.WorkEntry{
		ID:                  store.NewWorkEntryID(),
		Start:               start,
		Finish:              start.Add(time.Duration(work+overtime) * time.Second),
		WorkSeconds:         work,
		OvertimeSeconds:     overtime,
		StandardWorkSeconds: 28800,
		MaxOvertimeSeconds:  7200,
		GrossPayPerMonth:    4000,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestAggregator(entries EntrySource, s settings.Settings, now time.Time) *Aggregator {
	return NewAggregator(entries, func() settings.Settings { return s }, time.UTC, func() time.Time { return now })
}

var week = period.Period{Start: date(2023, 11, 20), End: date(2023, 11, 27)}

// November 2023 has 22 working days, so 4000 a month at 8h a day is 4000/176 an hour.
const novemberRate = 4000.0 / 176

func TestWorkingDaysInMonth(t *testing.T) {
	assert.Equal(t, 22, WorkingDaysInMonth(date(2023, 11, 15)))
	assert.Equal(t, 21, WorkingDaysInMonth(date(2024, 2, 29)))
	assert.Equal(t, 20, WorkingDaysInMonth(date(2023, 2, 1)))
}

func TestGrossPayPerHour(t *testing.T) {
	e := entry(date(2023, 11, 20), 3600, 0)
	assert.InDelta(t, novemberRate, GrossPayPerHour(e), 1e-9)

	e.StandardWorkSeconds = 0
	assert.Equal(t, 0.0, GrossPayPerHour(e))
}

func TestEntryPay_OvertimeAtOneAndAHalf(t *testing.T) {
	e := entry(date(2023, 11, 20), 8*3600, 2*3600)
	assert.InDelta(t, 11*novemberRate, EntryPay(e), 1e-9)
}

func TestNetPay(t *testing.T) {
	assert.InDelta(t, 70.0, NetPay(100, 0.3), 1e-9)
	assert.Equal(t, 100.0, NetPay(100, 0))
}

func TestSummary_PlaceholderPolicy(t *testing.T) {
	// Monday and Thursday recorded; Tuesday and Wednesday passed empty;
	// Friday is still ahead.
	entries := entrySlice{
		entry(date(2023, 11, 20), 28800, 3600),
		entry(date(2023, 11, 23), 14400, 0),
	}
	now := time.Date(2023, 11, 23, 10, 0, 0, 0, time.UTC)
	agg := newTestAggregator(entries, testSettings(), now)

	sum, err := agg.Summary(week)
	require.NoError(t, err)

	assert.Equal(t, 5, sum.WorkingDayCount)
	assert.InDelta(t, 13.5*novemberRate, sum.PayToDate, 1e-9)
	require.NotNil(t, sum.PayPredicted)
	// Friday projects the average pace: 6h work and 0.5h overtime.
	assert.InDelta(t, (13.5+6+0.75)*novemberRate, *sum.PayPredicted, 1e-9)
	assert.InDelta(t, novemberRate, sum.PayPerHour, 1e-9)
	assert.Equal(t, int64(43200), sum.WorkedSeconds)
	assert.Equal(t, int64(3600), sum.OvertimeSeconds)
	assert.Nil(t, sum.NetPayToDate)
}

func TestSummary_TodayWithoutEntryUsesStandardTime(t *testing.T) {
	now := time.Date(2023, 11, 24, 8, 0, 0, 0, time.UTC)
	agg := newTestAggregator(entrySlice{}, testSettings(), now)

	sum, err := agg.Summary(week)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sum.PayToDate)
	require.NotNil(t, sum.PayPredicted)
	// Monday to Thursday are past and empty; Friday projects 8h.
	assert.InDelta(t, 8*novemberRate, *sum.PayPredicted, 1e-9)
}

func TestSummary_FuturePeriodHasNoPrediction(t *testing.T) {
	now := time.Date(2023, 11, 23, 10, 0, 0, 0, time.UTC)
	agg := newTestAggregator(entrySlice{}, testSettings(), now)

	next := period.Period{Start: date(2023, 11, 27), End: date(2023, 12, 4)}
	sum, err := agg.Summary(next)
	require.NoError(t, err)
	assert.Nil(t, sum.PayPredicted)
	assert.Equal(t, 5, sum.WorkingDayCount)
}

func TestSummary_FullyRealizedHasNoPrediction(t *testing.T) {
	var entries entrySlice
	for d := 20; d <= 24; d++ {
		entries = append(entries, entry(date(2023, 11, d), 28800, 0))
	}
	now := time.Date(2023, 11, 30, 10, 0, 0, 0, time.UTC)
	agg := newTestAggregator(entries, testSettings(), now)

	sum, err := agg.Summary(week)
	require.NoError(t, err)
	assert.Nil(t, sum.PayPredicted)
	assert.InDelta(t, 40*novemberRate, sum.PayToDate, 1e-9)
}

func TestSummary_PastPeriodWithGapsPredictsZeroForGaps(t *testing.T) {
	entries := entrySlice{entry(date(2023, 11, 21), 28800, 0)}
	now := time.Date(2023, 12, 15, 10, 0, 0, 0, time.UTC)
	agg := newTestAggregator(entries, testSettings(), now)

	sum, err := agg.Summary(week)
	require.NoError(t, err)
	require.NotNil(t, sum.PayPredicted)
	assert.InDelta(t, sum.PayToDate, *sum.PayPredicted, 1e-9)
}

func TestSummary_NoWeekdaysGuardsDivision(t *testing.T) {
	weekend := period.Period{Start: date(2023, 11, 25), End: date(2023, 11, 27)}
	agg := newTestAggregator(entrySlice{}, testSettings(), date(2023, 11, 1))

	sum, err := agg.Summary(weekend)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sum.PayPerHour)
	assert.False(t, math.IsNaN(sum.PayPerHour))
	assert.Equal(t, 0, sum.WorkingDayCount)
}

func TestSummary_WeekendEntryStaysOutOfFullSet(t *testing.T) {
	saturday := entry(date(2023, 11, 25), 14400, 0)
	saturday.GrossPayPerMonth = 8000
	entries := entrySlice{entry(date(2023, 11, 20), 28800, 0), saturday}
	agg := newTestAggregator(entries, testSettings(), time.Date(2023, 11, 22, 10, 0, 0, 0, time.UTC))

	sum, err := agg.Summary(week)
	require.NoError(t, err)

	// Saturday's 4h at twice the rate is paid like 8h.
	assert.InDelta(t, 16*novemberRate, sum.PayToDate, 1e-9)
	assert.Equal(t, 5, sum.WorkingDayCount)
	assert.InDelta(t, novemberRate, sum.PayPerHour, 1e-9)
	require.NotNil(t, sum.PayPredicted)
	// Monday 8h, Tuesday passed empty, Wednesday to Friday at the 6h average.
	assert.InDelta(t, 26*novemberRate, *sum.PayPredicted, 1e-9)
	assert.Equal(t, int64(43200), sum.WorkedSeconds)
}

func TestSummary_ZeroStandardTimeGuardsDivision(t *testing.T) {
	s := testSettings()
	s.WorkSeconds = 0
	agg := newTestAggregator(entrySlice{}, s, date(2023, 11, 22))

	sum, err := agg.Summary(week)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sum.PayPerHour)
	require.NotNil(t, sum.PayPredicted)
	assert.False(t, math.IsInf(*sum.PayPredicted, 0))
}

func TestSummary_NetPay(t *testing.T) {
	stored := 100.0
	withNet := entry(date(2023, 11, 20), 28800, 0)
	withNet.NetPay = &stored
	entries := entrySlice{withNet, entry(date(2023, 11, 21), 28800, 0)}

	s := testSettings()
	s.CalculatingNetPay = true
	s.NetPayDeduction = 0.25
	agg := newTestAggregator(entries, s, time.Date(2023, 11, 22, 10, 0, 0, 0, time.UTC))

	sum, err := agg.Summary(week)
	require.NoError(t, err)
	require.NotNil(t, sum.NetPayToDate)
	assert.InDelta(t, 100+0.75*8*novemberRate, *sum.NetPayToDate, 1e-9)
}

func TestSummary_FetchError(t *testing.T) {
	agg := newTestAggregator(failingSource{}, testSettings(), date(2023, 11, 1))
	_, err := agg.Summary(week)
	assert.Error(t, err)
}

func TestSummary_WithStore(t *testing.T) {
	st, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	_, err = st.Upsert(entry(date(2023, 11, 20), 28800, 0))
	require.NoError(t, err)

	agg := newTestAggregator(st, testSettings(), time.Date(2023, 11, 21, 9, 0, 0, 0, time.UTC))
	sum, err := agg.Summary(week)
	require.NoError(t, err)
	assert.InDelta(t, 8*novemberRate, sum.PayToDate, 1e-9)
	require.NotNil(t, sum.PayPredicted)
	// Tuesday to Friday project Monday's 8h.
	assert.InDelta(t, 40*novemberRate, *sum.PayPredicted, 1e-9)
}

func TestSeries_Days(t *testing.T) {
	entries := entrySlice{
		entry(date(2023, 11, 20), 28800, 3600),
		entry(date(2023, 11, 23), 14400, 0),
	}
	agg := newTestAggregator(entries, testSettings(), date(2023, 11, 30))

	buckets, err := agg.Series(week, period.Week)
	require.NoError(t, err)
	require.Len(t, buckets, 7)
	assert.Equal(t, int64(28800), buckets[0].WorkSeconds)
	assert.Equal(t, int64(3600), buckets[0].OvertimeSeconds)
	assert.Equal(t, 1, buckets[0].Entries)
	assert.Equal(t, int64(14400), buckets[3].WorkSeconds)
	assert.Equal(t, int64(0), buckets[1].WorkSeconds)
}

func TestSeries_Months(t *testing.T) {
	entries := entrySlice{
		entry(date(2023, 2, 6), 3600, 0),
		entry(date(2023, 2, 7), 3600, 0),
		entry(date(2023, 11, 20), 7200, 0),
	}
	agg := newTestAggregator(entries, testSettings(), date(2023, 12, 1))

	year := period.Period{Start: date(2023, 1, 1), End: date(2024, 1, 1)}
	buckets, err := agg.Series(year, period.Year)
	require.NoError(t, err)
	require.Len(t, buckets, 12)
	assert.Equal(t, int64(7200), buckets[1].WorkSeconds)
	assert.Equal(t, 2, buckets[1].Entries)
	assert.Equal(t, int64(7200), buckets[10].WorkSeconds)
}
