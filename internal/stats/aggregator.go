// Package stats turns stored work entries into pay and time statistics.
package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/sadopc/worktime/internal/period"
	"github.com/sadopc/worktime/internal/settings"
	"github.com/sadopc/worktime/internal/store"
)

// EntrySource returns the stored entries overlapping [from, to).
type EntrySource interface {
	FetchPeriod(from, to time.Time) ([]store.WorkEntry, error)
}

// GrossSalarySummary is recomputed whenever the period or the entries change.
type GrossSalarySummary struct {
	Period          period.Period
	PayPerHour      float64
	PayToDate       float64
	PayPredicted    *float64 // nil when there is nothing to predict
	WorkingDayCount int
	NetPayToDate    *float64 // nil unless net pay is being calculated
	WorkedSeconds   int64
	OvertimeSeconds int64
}

type Aggregator struct {
	entries  EntrySource
	settings func() settings.Settings
	loc      *time.Location
	now      func() time.Time
}

// NewAggregator reads the current settings through settings on every call,
// so placeholders always carry the values in force.
func NewAggregator(entries EntrySource, settings func() settings.Settings, loc *time.Location, now func() time.Time) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Aggregator{entries: entries, settings: settings, loc: loc, now: now}
}

// Summary computes the pay statistics of p.
//
// The full set holds one slot per weekday of p: the stored entries of that
// day, or a placeholder when there are none. Placeholders carry zero work for
// days before today and the period's average pace (or the standard work time)
// for today and later. Weekend entries count towards pay to date and the
// average pace but never enter the full set. Pay to date only counts stored
// entries; the predicted pay counts the full set.
func (a *Aggregator) Summary(p period.Period) (GrossSalarySummary, error) {
	stored, err := a.fetch(p)
	if err != nil {
		return GrossSalarySummary{}, err
	}
	cfg := a.settings()
	now := a.now().In(a.loc)
	today := period.StartOfDay(now)

	sum := GrossSalarySummary{Period: p}

	byDay := make(map[string][]store.WorkEntry, len(stored))
	var totalWork, totalOvertime int64
	for _, e := range stored {
		k := dayKey(e.Start)
		byDay[k] = append(byDay[k], e)
		totalWork += e.WorkSeconds
		totalOvertime += e.OvertimeSeconds
	}

	avgWork := float64(cfg.WorkSeconds)
	avgOvertime := 0.0
	if n := len(stored); n > 0 {
		avgWork = float64(totalWork) / float64(n)
		avgOvertime = float64(totalOvertime) / float64(n)
	}

	var full []store.WorkEntry
	placeholders := 0
	for _, d := range p.Weekdays() {
		d = d.In(a.loc)
		if recorded := byDay[dayKey(d)]; len(recorded) > 0 {
			full = append(full, recorded...)
			continue
		}
		ph := store.WorkEntry{
			Start:               d,
			Finish:              d,
			StandardWorkSeconds: cfg.WorkSeconds,
			MaxOvertimeSeconds:  cfg.MaxOvertimeSeconds,
			GrossPayPerMonth:    cfg.GrossPayPerMonth,
		}
		if !d.Before(today) {
			ph.WorkSeconds = int64(math.Round(avgWork))
			ph.OvertimeSeconds = int64(math.Round(avgOvertime))
		}
		full = append(full, ph)
		placeholders++
	}

	for _, e := range stored {
		sum.PayToDate += EntryPay(e)
	}
	sum.WorkedSeconds = totalWork
	sum.OvertimeSeconds = totalOvertime

	if len(full) > 0 {
		var rates float64
		for _, e := range full {
			rates += GrossPayPerHour(e)
		}
		sum.PayPerHour = rates / float64(len(full))
	}

	if !p.Start.After(now) && placeholders > 0 {
		var predicted float64
		for _, e := range full {
			predicted += EntryPay(e)
		}
		sum.PayPredicted = &predicted
	}

	sum.WorkingDayCount = len(full)

	if cfg.CalculatingNetPay {
		var net float64
		for _, e := range stored {
			if e.NetPay != nil {
				net += *e.NetPay
			} else {
				net += NetPay(EntryPay(e), cfg.NetPayDeduction)
			}
		}
		sum.NetPayToDate = &net
	}
	return sum, nil
}

// fetch loads the stored entries of p with their times in the aggregator's location.
func (a *Aggregator) fetch(p period.Period) ([]store.WorkEntry, error) {
	entries, err := a.entries.FetchPeriod(p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("fetch entries for %s: %w", p, err)
	}
	for i := range entries {
		entries[i].Start = entries[i].Start.In(a.loc)
		entries[i].Finish = entries[i].Finish.In(a.loc)
	}
	return entries, nil
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
