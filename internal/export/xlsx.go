package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sadopc/worktime/internal/stats"
	"github.com/sadopc/worktime/internal/store"
)

const sheetName = "Entries"

// ToXLSX writes one row per entry with numeric cells for seconds and pay,
// followed by a totals row.
func ToXLSX(entries []store.WorkEntry, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := setRow(f, 1, toAny(header)); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	var work, overtime int64
	var pay float64
	for i, e := range entries {
		p := stats.EntryPay(e)
		var net any
		if e.NetPay != nil {
			net = *e.NetPay
		}
		start := e.Start.Local()
		values := []any{
			e.ID,
			start.Format("2006-01-02"),
			start.Format("15:04:05"),
			e.Finish.Local().Format("15:04:05"),
			e.WorkSeconds,
			formatDuration(e.WorkSeconds),
			e.OvertimeSeconds,
			formatDuration(e.OvertimeSeconds),
			e.StandardWorkSeconds,
			e.GrossPayPerMonth,
			p,
			net,
		}
		if err := setRow(f, i+2, values); err != nil {
			return err
		}
		work += e.WorkSeconds
		overtime += e.OvertimeSeconds
		pay += p
	}

	totalRow := len(entries) + 2
	totals := []any{"Total", nil, nil, nil, work, formatDuration(work), overtime, formatDuration(overtime), nil, nil, pay, nil}
	if err := setRow(f, totalRow, totals); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, totalRow)
	last, _ = excelize.CoordinatesToCellName(len(header), totalRow)
	if err := f.SetCellStyle(sheetName, first, last, bold); err != nil {
		return fmt.Errorf("style totals: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx file: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	for i, v := range values {
		if v == nil {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
