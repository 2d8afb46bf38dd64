package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/worktime/internal/stats"
	"github.com/sadopc/worktime/internal/store"
)

var header = []string{
	"ID", "Date", "Start", "Finish",
	"Work (s)", "Work", "Overtime (s)", "Overtime",
	"Standard (s)", "Gross/month", "Pay", "Net pay",
}

func ToCSV(entries []store.WorkEntry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.Write(row(e)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// row renders e in local time. Net pay is empty when it was not calculated.
func row(e store.WorkEntry) []string {
	net := ""
	if e.NetPay != nil {
		net = formatMoney(*e.NetPay)
	}
	start := e.Start.Local()
	return []string{
		e.ID,
		start.Format("2006-01-02"),
		start.Format(time.RFC3339),
		e.Finish.Local().Format(time.RFC3339),
		strconv.FormatInt(e.WorkSeconds, 10),
		formatDuration(e.WorkSeconds),
		strconv.FormatInt(e.OvertimeSeconds, 10),
		formatDuration(e.OvertimeSeconds),
		strconv.FormatInt(e.StandardWorkSeconds, 10),
		formatMoney(e.GrossPayPerMonth),
		formatMoney(stats.EntryPay(e)),
		net,
	}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
