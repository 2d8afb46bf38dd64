package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/worktime/internal/period"
	"github.com/sadopc/worktime/internal/settings"
	"github.com/sadopc/worktime/internal/stats"
	"github.com/sadopc/worktime/internal/store"
)

var reportGranularities = []period.Granularity{period.Week, period.Month, period.Year, period.All}

type reportsModel struct {
	store    *store.Store
	stats    *stats.Aggregator
	settings *settings.Service
	loc      *time.Location
	now      func() time.Time
	log      *slog.Logger
	width    int
	height   int

	granularity period.Granularity
	current     period.Period
	hasPeriod   bool

	summary *stats.GrossSalarySummary
	buckets []stats.Bucket

	chart barchart.Model
}

func newReportsModel(d Deps) reportsModel {
	r := reportsModel{
		store:       d.Store,
		stats:       d.Stats,
		settings:    d.Settings,
		loc:         d.Location,
		now:         d.Now,
		log:         d.Logger,
		granularity: period.Month,
		chart:       barchart.New(60, 12),
	}
	r.goToDate(r.now())
	return r
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

func (r reportsModel) calculator() *period.Calculator {
	return period.NewCalculator(r.loc, r.settings.Current().WeekStart)
}

// goToDate selects the period of the current granularity containing date.
// The All period is resolved from the stored entries on refresh.
func (r *reportsModel) goToDate(date time.Time) {
	if r.granularity == period.All {
		return
	}
	p, err := r.calculator().Generate(date, r.granularity)
	if err != nil {
		r.log.Warn("generate period", "granularity", r.granularity.String(), "err", err)
		return
	}
	r.current = p
	r.hasPeriod = true
}

// recenter regenerates the period around the middle of the current one, so a
// granularity or week start change keeps the user's place.
func (r *reportsModel) recenter() {
	date := r.now()
	if r.hasPeriod {
		if mid, err := r.calculator().MidDate(r.current); err == nil {
			date = mid
		}
	}
	r.goToDate(date)
}

func (r *reportsModel) step(forward bool) bool {
	if r.granularity == period.All || !r.hasPeriod {
		return false
	}
	move := r.calculator().Retard
	if forward {
		move = r.calculator().Advance
	}
	p, err := move(r.current, r.granularity)
	if err != nil {
		r.log.Warn("move period", "granularity", r.granularity.String(), "err", err)
		return false
	}
	r.current = p
	return true
}

type reportsDataMsg struct {
	granularity period.Granularity
	period      period.Period
	summary     stats.GrossSalarySummary
	buckets     []stats.Bucket
	empty       bool
	err         error
}

func (r reportsModel) refresh() tea.Cmd {
	g, cur, ok := r.granularity, r.current, r.hasPeriod
	st, agg, calc := r.store, r.stats, r.calculator()
	return func() tea.Msg {
		p := cur
		if g == period.All {
			oldest, err := st.FetchOldest()
			if err != nil {
				return reportsDataMsg{granularity: g, err: err}
			}
			newest, err := st.FetchNewest()
			if err != nil {
				return reportsDataMsg{granularity: g, err: err}
			}
			if oldest == nil || newest == nil {
				return reportsDataMsg{granularity: g, empty: true}
			}
			if p, err = calc.Span(oldest.Start, newest.Finish); err != nil {
				return reportsDataMsg{granularity: g, err: err}
			}
		} else if !ok {
			return reportsDataMsg{granularity: g, err: fmt.Errorf("no %s period selected", g)}
		}

		summary, err := agg.Summary(p)
		if err != nil {
			return reportsDataMsg{granularity: g, err: err}
		}
		buckets, err := agg.Series(p, g)
		if err != nil {
			return reportsDataMsg{granularity: g, err: err}
		}
		return reportsDataMsg{granularity: g, period: p, summary: summary, buckets: buckets}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		if msg.granularity != r.granularity {
			return r, nil
		}
		if msg.err != nil {
			// Keep showing the previous data.
			r.log.Error("compute statistics", "granularity", msg.granularity.String(), "err", msg.err)
			return r, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Statistics error: %v", msg.err), isError: true}
			}
		}
		if msg.empty {
			r.summary = nil
			r.buckets = nil
			r.hasPeriod = false
			r.buildChart()
			return r, nil
		}
		r.current = msg.period
		r.hasPeriod = true
		r.summary = &msg.summary
		r.buckets = msg.buckets
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if r.step(false) {
				return r, r.refresh()
			}
		case key.Matches(msg, keys.Right):
			if r.step(true) {
				return r, r.refresh()
			}
		case key.Matches(msg, keys.Today):
			r.goToDate(r.now())
			return r, r.refresh()
		case key.Matches(msg, keys.Granularity):
			r.cycleGranularity()
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) cycleGranularity() {
	next := reportGranularities[0]
	for i, g := range reportGranularities {
		if g == r.granularity {
			next = reportGranularities[(i+1)%len(reportGranularities)]
		}
	}
	prev := r.granularity
	r.granularity = next
	if prev == period.All && !r.hasPeriod {
		r.goToDate(r.now())
		return
	}
	r.recenter()
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if r.height > 34 {
		chartHeight = 14
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, b := range r.buckets {
		bars = append(bars, barchart.BarData{
			Label: r.bucketLabel(b.Period),
			Values: []barchart.BarValue{
				{Name: "Work", Value: float64(b.WorkSeconds) / 3600, Style: workBarStyle},
				{Name: "Overtime", Value: float64(b.OvertimeSeconds) / 3600, Style: overtimeBarStyle},
			},
		})
	}
	if len(bars) == 0 {
		return
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) bucketLabel(p period.Period) string {
	start := p.Start.In(r.loc)
	switch r.granularity {
	case period.Week:
		return start.Format("Mon")
	case period.Month:
		return start.Format("2")
	case period.Year:
		return start.Format("Jan")
	}
	return start.Format("01/06")
}

func (r reportsModel) periodLabel() string {
	if !r.hasPeriod {
		return "no entries"
	}
	from := r.current.Start.In(r.loc)
	to := r.current.End.In(r.loc).AddDate(0, 0, -1)
	switch r.granularity {
	case period.Month:
		return from.Format("January 2006")
	case period.Year:
		return from.Format("2006")
	}
	return fmt.Sprintf("%s - %s", from.Format("Jan 02"), to.Format("Jan 02, 2006"))
}

func (r reportsModel) view() string {
	w := r.width - 4

	var tabs []string
	for _, g := range reportGranularities {
		name := strings.ToUpper(g.String()[:1]) + g.String()[1:]
		if g == r.granularity {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", mutedStyle.Render(r.periodLabel()),
	)

	nav := mutedStyle.Render("  ←/→: previous/next  g: granularity  t: current period")

	if r.summary == nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				header, "", mutedStyle.Render("  No data for this period"), "", nav,
			),
		)
	}

	legend := "  " + workBarStyle.Render("●") + " work  " + overtimeBarStyle.Render("●") + " overtime"

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), legend, "", r.renderSummary(), "", nav,
		),
	)
}

func (r reportsModel) renderSummary() string {
	s := r.summary
	line := func(label, value string) string {
		return fmt.Sprintf("  %-18s %s", label, value)
	}

	rows := []string{
		line("Pay to date", moneyStyle.Render(formatMoney(s.PayToDate))),
	}
	if s.PayPredicted != nil {
		rows = append(rows, line("Predicted pay", moneyStyle.Render(formatMoney(*s.PayPredicted))))
	}
	if s.NetPayToDate != nil {
		rows = append(rows, line("Net pay to date", moneyStyle.Render(formatMoney(*s.NetPayToDate))))
	}
	rows = append(rows,
		line("Pay per hour", highlightStyle.Render(formatMoney(s.PayPerHour))),
		line("Working days", highlightStyle.Render(fmt.Sprintf("%d", s.WorkingDayCount))),
		line("Worked", highlightStyle.Render(formatHours(s.WorkedSeconds))),
		line("Overtime", overtimeStyle.Render(formatHours(s.OvertimeSeconds))),
	)
	return strings.Join(rows, "\n")
}
