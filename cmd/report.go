package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/worktime/internal/period"
	"github.com/sadopc/worktime/internal/stats"
)

var (
	reportGranularity string
	reportDate        string
	reportOffset      int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print pay and time statistics for a period",
	Long: `Print the pay summary and the per-bucket breakdown of a week, month, year
or of everything recorded so far. --offset moves that many periods back
(negative) or forward from the one containing --date.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportGranularity, "granularity", "g", "month", "week, month, year or all")
	reportCmd.Flags().StringVarP(&reportDate, "date", "d", "", "date inside the period, YYYY-MM-DD (default today)")
	reportCmd.Flags().IntVarP(&reportOffset, "offset", "o", 0, "periods to move from --date")
}

func runReport(cmd *cobra.Command, args []string) error {
	g, err := period.ParseGranularity(reportGranularity)
	if err != nil {
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	now := time.Now()
	date, err := parseDate(reportDate, e.loc, now)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p, ok, err := reportPeriod(e, g, date, reportOffset)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "No work entries recorded.")
		return nil
	}

	agg := e.aggregator(func() time.Time { return now })
	summary, err := agg.Summary(p)
	if err != nil {
		return fmt.Errorf("computing summary: %w", err)
	}
	buckets, err := agg.Series(p, g)
	if err != nil {
		return fmt.Errorf("computing breakdown: %w", err)
	}

	printSummary(out, e.loc, g, summary)
	printBuckets(out, e.loc, g, buckets)
	return nil
}

// reportPeriod resolves the period to report on. For All it spans the stored
// entries and reports false when there are none.
func reportPeriod(e *env, g period.Granularity, date time.Time, offset int) (period.Period, bool, error) {
	calc := e.calculator()
	if g == period.All {
		oldest, err := e.store.FetchOldest()
		if err != nil {
			return period.Period{}, false, err
		}
		newest, err := e.store.FetchNewest()
		if err != nil {
			return period.Period{}, false, err
		}
		if oldest == nil || newest == nil {
			return period.Period{}, false, nil
		}
		p, err := calc.Span(oldest.Start, newest.Finish)
		return p, err == nil, err
	}

	p, err := calc.Generate(date, g)
	if err != nil {
		return p, false, err
	}
	for ; offset < 0; offset++ {
		if p, err = calc.Retard(p, g); err != nil {
			return p, false, err
		}
	}
	for ; offset > 0; offset-- {
		if p, err = calc.Advance(p, g); err != nil {
			return p, false, err
		}
	}
	return p, true, nil
}

func hours(secs int64) string {
	return fmt.Sprintf("%.1fh", float64(secs)/3600)
}

func printSummary(w io.Writer, loc *time.Location, g period.Granularity, s stats.GrossSalarySummary) {
	from := s.Period.Start.In(loc)
	to := s.Period.End.In(loc).AddDate(0, 0, -1)

	fmt.Fprintf(w, "Report: %s (%s to %s)\n", g, from.Format("2006-01-02"), to.Format("2006-01-02"))
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "%-20s%s\n", "Worked:", hours(s.WorkedSeconds))
	fmt.Fprintf(w, "%-20s%s\n", "Overtime:", hours(s.OvertimeSeconds))
	fmt.Fprintf(w, "%-20s%d\n", "Working days:", s.WorkingDayCount)
	fmt.Fprintf(w, "%-20s%.2f\n", "Pay per hour:", s.PayPerHour)
	fmt.Fprintf(w, "%-20s%.2f\n", "Pay to date:", s.PayToDate)
	if s.PayPredicted != nil {
		fmt.Fprintf(w, "%-20s%.2f\n", "Predicted pay:", *s.PayPredicted)
	}
	if s.NetPayToDate != nil {
		fmt.Fprintf(w, "%-20s%.2f\n", "Net pay to date:", *s.NetPayToDate)
	}
}

func printBuckets(w io.Writer, loc *time.Location, g period.Granularity, buckets []stats.Bucket) {
	layout := "2006-01-02"
	if g == period.Year || g == period.All {
		layout = "2006-01"
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-12s%10s%10s%12s%9s\n", "Bucket", "Work", "Overtime", "Pay", "Entries")
	fmt.Fprintln(w, "-----------------------------------------------------")
	printed := 0
	for _, b := range buckets {
		if b.Entries == 0 {
			continue
		}
		fmt.Fprintf(w, "%-12s%10s%10s%12.2f%9d\n",
			b.Period.Start.In(loc).Format(layout), hours(b.WorkSeconds), hours(b.OvertimeSeconds), b.Pay, b.Entries)
		printed++
	}
	if printed == 0 {
		fmt.Fprintln(w, "No work entries in this period.")
	}
}
