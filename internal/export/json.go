package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/worktime/internal/stats"
	"github.com/sadopc/worktime/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	ID                  string   `json:"id"`
	Start               string   `json:"start"`
	Finish              string   `json:"finish"`
	WorkSeconds         int64    `json:"work_seconds"`
	OvertimeSeconds     int64    `json:"overtime_seconds"`
	Duration            string   `json:"duration"`
	StandardWorkSeconds int64    `json:"standard_work_seconds"`
	MaxOvertimeSeconds  int64    `json:"max_overtime_seconds"`
	GrossPayPerMonth    float64  `json:"gross_pay_per_month"`
	Pay                 float64  `json:"pay"`
	NetPay              *float64 `json:"net_pay,omitempty"`
}

func ToJSON(entries []store.WorkEntry, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(entries),
	}

	for _, e := range entries {
		export.Entries = append(export.Entries, jsonEntry{
			ID:                  e.ID,
			Start:               e.Start.Local().Format(time.RFC3339),
			Finish:              e.Finish.Local().Format(time.RFC3339),
			WorkSeconds:         e.WorkSeconds,
			OvertimeSeconds:     e.OvertimeSeconds,
			Duration:            formatDuration(e.WorkSeconds + e.OvertimeSeconds),
			StandardWorkSeconds: e.StandardWorkSeconds,
			MaxOvertimeSeconds:  e.MaxOvertimeSeconds,
			GrossPayPerMonth:    e.GrossPayPerMonth,
			Pay:                 stats.EntryPay(e),
			NetPay:              e.NetPay,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
