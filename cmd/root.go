package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/worktime/internal/notify"
	"github.com/sadopc/worktime/internal/session"
	"github.com/sadopc/worktime/internal/settings"
	"github.com/sadopc/worktime/internal/timer"
	"github.com/sadopc/worktime/internal/tui"
)

var (
	configPath string
	dbPath     string
)

var rootCmd = &cobra.Command{
	Use:   "worktime",
	Short: "Track your working day, overtime and pay",
	Long: `worktime times your working day against a standard work time and an
overtime allowance, records every session and turns the records into pay
statistics per week, month and year.

Run without a subcommand to open the interactive dashboard.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/worktime/config.json)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file, overrides the config file")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statusCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	unsubscribe := e.settings.Subscribe(func(c settings.Change) {
		e.log.Info("settings updated",
			"work_seconds", c.New.WorkSeconds,
			"max_overtime_seconds", c.New.MaxOvertimeSeconds,
			"logging_overtime", c.New.LoggingOvertime,
			"week_start", c.New.WeekStart.String(),
		)
	})
	defer unsubscribe()

	pulse := timer.NewPulse()
	alerts := notify.NewLocal(e.log)
	defer alerts.CancelAllPending()

	sess := session.New(session.Deps{
		Entries:  e.store,
		Settings: e.settings.Current,
		Notifier: alerts,
		Slot:     e.store,
		Ticks:    pulse,
		Logger:   e.log,
	})
	if _, err := sess.Restore(); err != nil {
		e.log.Error("restore session", "err", err)
	}

	app := tui.NewApp(tui.Deps{
		Store:    e.store,
		Settings: e.settings,
		Session:  sess,
		Stats:    e.aggregator(nil),
		Pulse:    pulse,
		Alerts:   alerts.C(),
		Location: e.loc,
		Logger:   e.log,
	})
	defer app.Close()

	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	// A session still running here was not parked by the dashboard.
	if err := sess.Suspend(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}
