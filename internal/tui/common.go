package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/worktime/internal/notify"
	"github.com/sadopc/worktime/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewHistory
	viewReports
	viewSettings
)

var viewNames = []string{"Dashboard", "History", "Reports", "Settings"}

// --- Messages ---

type sessionStartedMsg struct{}

type sessionStoppedMsg struct {
	entry *store.WorkEntry
}

// storeChangedMsg is sent after the store commits a mutation.
type storeChangedMsg struct{}

type alertMsg struct {
	kind notify.Kind
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatPercent renders a rate in [0, 1] as a percentage with at most two decimals.
func formatPercent(rate float64) string {
	return strconv.FormatFloat(math.Round(rate*10000)/100, 'f', -1, 64)
}

// parseHours reads a decimal hour count ("7.5") into seconds.
func parseHours(s string) (int64, error) {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number of hours: %q", s)
	}
	if h < 0 {
		return 0, fmt.Errorf("hours must not be negative")
	}
	return int64(h*3600 + 0.5), nil
}

func secsToHours(secs int64) string {
	return strconv.FormatFloat(float64(secs)/3600, 'f', -1, 64)
}

// parseClock combines a YYYY-MM-DD date and an HH:MM time in loc.
func parseClock(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(date)+" "+strings.TrimSpace(clock), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date or time %q %q", date, clock)
	}
	return t, nil
}
