package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/worktime/internal/stats"
	"github.com/sadopc/worktime/internal/store"
	"github.com/sadopc/worktime/internal/timer"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the parked session and today's work",
	Long: `Show the session parked by the last dashboard run, projected to now, and
the work recorded today. The parked session keeps running while the dashboard
is closed and is picked up again on the next launch.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	out := cmd.OutOrStdout()
	now := time.Now()

	if err := printParked(out, e, now); err != nil {
		return err
	}
	fmt.Fprintln(out)

	today, err := e.store.FetchOnDate(now.In(e.loc))
	if err != nil {
		return fmt.Errorf("fetching today's entry: %w", err)
	}
	printToday(out, e, today)
	return nil
}

// printParked reads the session slot without consuming it.
func printParked(w io.Writer, e *env, now time.Time) error {
	data, err := e.store.GetState(timer.SnapshotKey)
	if err != nil {
		return fmt.Errorf("reading session: %w", err)
	}
	if data == nil {
		fmt.Fprintln(w, "No parked session.")
		return nil
	}
	snap, err := timer.DecodeSnapshot(data)
	if err != nil {
		fmt.Fprintf(w, "Parked session is unreadable and will be discarded: %v\n", err)
		return nil
	}
	orch, err := timer.RestoreOrchestrator(snap, nil, func() time.Time { return now })
	if err != nil {
		fmt.Fprintf(w, "Parked session is invalid and will be discarded: %v\n", err)
		return nil
	}
	orch.ResumeFromBackground(snap.CapturedAt)

	work := orch.Work()
	fmt.Fprintf(w, "Session started %s, parked %s\n",
		snap.StartedAt.In(e.loc).Format("2006-01-02 15:04"), snap.CapturedAt.In(e.loc).Format("15:04"))
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "%-20s%s\n", "State:", orch.State())
	fmt.Fprintf(w, "%-20s%s / %s\n", "Work:", clock(work.Counter()), clock(work.Limit()))
	if ot := orch.Overtime(); ot != nil && work.State() == timer.Finished {
		fmt.Fprintf(w, "%-20s%s / %s\n", "Overtime:", clock(ot.Counter()), clock(ot.Limit()))
	}
	if done, at := orch.Completed(); done {
		fmt.Fprintf(w, "%-20s%s\n", "Ended:", at.In(e.loc).Format("15:04"))
	}
	return nil
}

func printToday(w io.Writer, e *env, entry *store.WorkEntry) {
	if entry == nil {
		fmt.Fprintln(w, "Nothing recorded today.")
		return
	}
	fmt.Fprintf(w, "Today %s - %s\n", entry.Start.In(e.loc).Format("15:04"), entry.Finish.In(e.loc).Format("15:04"))
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "%-20s%s\n", "Work:", clock(time.Duration(entry.WorkSeconds)*time.Second))
	fmt.Fprintf(w, "%-20s%s\n", "Overtime:", clock(time.Duration(entry.OvertimeSeconds)*time.Second))
	fmt.Fprintf(w, "%-20s%.2f\n", "Pay:", stats.EntryPay(*entry))
	if entry.NetPay != nil {
		fmt.Fprintf(w, "%-20s%.2f\n", "Net pay:", *entry.NetPay)
	}
}

func clock(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}
