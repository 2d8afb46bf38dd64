package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/worktime/internal/export"
	"github.com/sadopc/worktime/internal/store"
)

var (
	exportFormat string
	exportOut    string
	exportFrom   string
	exportTo     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export work entries to CSV, JSON or XLSX",
	Long: `Write the recorded work entries, oldest first, to a file. --from and --to
restrict the export to entries starting on or after --from and before the
day after --to.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "csv, json or xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "O", "", "output file (default worktime-<today>.<format>)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "first day to export, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "last day to export, YYYY-MM-DD")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	filter := store.EntryFilter{Ascending: true}
	if exportFrom != "" {
		from, err := parseDate(exportFrom, e.loc, time.Time{})
		if err != nil {
			return err
		}
		filter.From = &from
	}
	if exportTo != "" {
		to, err := parseDate(exportTo, e.loc, time.Time{})
		if err != nil {
			return err
		}
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}

	entries, err := e.store.FetchRange(filter)
	if err != nil {
		return fmt.Errorf("fetching entries: %w", err)
	}

	path := exportOut
	if path == "" {
		path = export.DefaultFilename(format, time.Now().In(e.loc).Format("2006-01-02"))
	}
	if err := export.Write(format, entries, path); err != nil {
		return err
	}
	e.log.Info("exported entries", "format", string(format), "path", path, "count", len(entries))
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(entries), path)
	return nil
}
