package stats

import (
	"time"

	"github.com/sadopc/worktime/internal/period"
	"github.com/sadopc/worktime/internal/store"
)

// OvertimeMultiplier scales the hourly rate for overtime hours.
const OvertimeMultiplier = 1.5

// WorkingDaysInMonth counts Monday to Friday in t's month, in t's location.
func WorkingDaysInMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	n := 0
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		if period.IsWeekday(d) {
			n++
		}
	}
	return n
}

// GrossPayPerHour is the entry's monthly gross spread over the working hours
// of the month it started in. It is 0 when that would divide by zero.
func GrossPayPerHour(e store.WorkEntry) float64 {
	hours := float64(WorkingDaysInMonth(e.Start)) * float64(e.StandardWorkSeconds) / 3600
	if hours <= 0 {
		return 0
	}
	return e.GrossPayPerMonth / hours
}

// EntryPay is the gross pay earned by e.
func EntryPay(e store.WorkEntry) float64 {
	rate := GrossPayPerHour(e)
	work := float64(e.WorkSeconds) / 3600
	overtime := float64(e.OvertimeSeconds) / 3600
	return work*rate + overtime*rate*OvertimeMultiplier
}

// NetPay applies a flat deduction rate to a gross amount.
func NetPay(gross, deductionRate float64) float64 {
	return gross * (1 - deductionRate)
}
