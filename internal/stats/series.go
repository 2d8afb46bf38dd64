package stats

import (
	"fmt"

	"github.com/sadopc/worktime/internal/period"
)

// Bucket is one bar of a chart: the stored work that started inside Period.
type Bucket struct {
	Period          period.Period
	WorkSeconds     int64
	OvertimeSeconds int64
	Pay             float64
	Entries         int
}

// Series splits p into days (week, month) or months (year, all) and sums the
// stored entries of each.
func (a *Aggregator) Series(p period.Period, g period.Granularity) ([]Bucket, error) {
	calc := period.NewCalculator(a.loc, a.settings().WeekStart)
	parts, err := calc.Subdivide(p, g)
	if err != nil {
		return nil, fmt.Errorf("subdivide %s: %w", p, err)
	}
	entries, err := a.fetch(p)
	if err != nil {
		return nil, err
	}

	buckets := make([]Bucket, len(parts))
	for i, part := range parts {
		buckets[i].Period = part
	}
	for _, e := range entries {
		for i := range buckets {
			if !buckets[i].Period.Contains(e.Start) {
				continue
			}
			buckets[i].WorkSeconds += e.WorkSeconds
			buckets[i].OvertimeSeconds += e.OvertimeSeconds
			buckets[i].Pay += EntryPay(e)
			buckets[i].Entries++
			break
		}
	}
	return buckets, nil
}
