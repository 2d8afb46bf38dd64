// Package export writes work entries to CSV, JSON and XLSX files.
package export

import (
	"fmt"
	"strings"

	"github.com/sadopc/worktime/internal/store"
)

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	XLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, JSON, XLSX:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or xlsx)", s)
}

// Write exports entries to path in the given format.
func Write(format Format, entries []store.WorkEntry, path string) error {
	switch format {
	case CSV:
		return ToCSV(entries, path)
	case JSON:
		return ToJSON(entries, path)
	case XLSX:
		return ToXLSX(entries, path)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// DefaultFilename is worktime-<date>.<format>.
func DefaultFilename(format Format, date string) string {
	return fmt.Sprintf("worktime-%s.%s", date, format)
}
