package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/worktime/internal/session"
	"github.com/sadopc/worktime/internal/settings"
	"github.com/sadopc/worktime/internal/stats"
	"github.com/sadopc/worktime/internal/store"
	"github.com/sadopc/worktime/internal/timer"
)

type dashboardModel struct {
	session  *session.Service
	store    *store.Store
	settings *settings.Service
	loc      *time.Location
	now      func() time.Time
	width    int
	height   int

	today *store.WorkEntry
	last  *store.WorkEntry

	workBar     progress.Model
	overtimeBar progress.Model
}

func newDashboardModel(d Deps) dashboardModel {
	m := dashboardModel{
		session:  d.Session,
		store:    d.Store,
		settings: d.Settings,
		loc:      d.Location,
		now:      d.Now,
	}
	m.setSize(80, 24)
	return m
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	barWidth := max(10, w-40)
	d.workBar = progress.New(progress.WithGradient(string(colorWork), string(colorWorkLight)), progress.WithWidth(barWidth))
	d.overtimeBar = progress.New(progress.WithSolidFill(string(colorOvertime)), progress.WithWidth(barWidth))
}

func (d dashboardModel) isRunning() bool { return d.session.Active() }

func (d dashboardModel) isPaused() bool {
	o := d.session.Orchestrator()
	return o != nil && o.State() == timer.Paused
}

func (d dashboardModel) elapsed() time.Duration {
	if o := d.session.Orchestrator(); o != nil && d.session.Active() {
		return o.Elapsed()
	}
	return 0
}

type dashboardDataMsg struct {
	today *store.WorkEntry
	last  *store.WorkEntry
	err   error
}

func (d dashboardModel) refresh() tea.Cmd {
	st := d.store
	now := d.now().In(d.loc)
	return func() tea.Msg {
		today, err := st.FetchOnDate(now)
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		last, err := st.FetchNewest()
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		return dashboardDataMsg{today: today, last: last}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		if msg.err != nil {
			return d, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", msg.err), isError: true}
			}
		}
		d.today = msg.today
		d.last = msg.last
		return d, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			return d.startSession()
		case key.Matches(msg, keys.Stop):
			return d.stopSession()
		case key.Matches(msg, keys.Pause):
			d.togglePause()
			return d, nil
		}
	}
	return d, nil
}

func (d dashboardModel) startSession() (dashboardModel, tea.Cmd) {
	if d.session.Active() {
		return d, nil
	}
	if err := d.session.Start(); err != nil {
		return d, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	return d, func() tea.Msg { return sessionStartedMsg{} }
}

func (d dashboardModel) stopSession() (dashboardModel, tea.Cmd) {
	if !d.session.Active() {
		return d, nil
	}
	if err := d.session.Stop(); err != nil {
		return d, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	entry := d.session.LastEntry()
	return d, func() tea.Msg { return sessionStoppedMsg{entry: entry} }
}

func (d dashboardModel) togglePause() {
	o := d.session.Orchestrator()
	if o == nil {
		return
	}
	switch o.State() {
	case timer.Running:
		d.session.Pause()
	case timer.Paused:
		d.session.Resume()
	}
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4
	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderSessionPanel(contentWidth),
		d.renderTodayPanel(contentWidth),
		d.renderLastPanel(contentWidth),
	)
}

func (d dashboardModel) renderSessionPanel(w int) string {
	o := d.session.Orchestrator()
	if o == nil || !d.session.Active() {
		work := d.settings.Current().WorkSeconds
		content := lipgloss.JoinVertical(lipgloss.Center,
			clockIdleStyle.Width(w-6).Render("00:00:00"),
			mutedStyle.Render("■  STOPPED"),
			mutedStyle.Render(fmt.Sprintf("Press s to start a %s work day", formatHours(work))),
		)
		return panelStyle.Width(w).Render(content)
	}

	work, overtime := o.Work(), o.Overtime()
	inOvertime := overtime != nil && work.State() == timer.Finished

	timeStr := formatDuration(work.Counter())
	style := clockWorkStyle
	indicator := runningStyle.Render("●  WORKING")
	if inOvertime {
		timeStr = "+" + formatDuration(overtime.Counter())
		style = clockOvertimeStyle
		indicator = overtimeStyle.Render("●  OVERTIME")
	}
	if o.State() == timer.Paused {
		style = clockPausedStyle
		indicator = pausedStyle.Render("⏸  PAUSED")
	}

	rows := []string{
		style.Width(w - 6).Render(timeStr),
		indicator,
		"",
		fmt.Sprintf("Work      %s  %s left", d.workBar.ViewAs(work.Progress()), formatDuration(work.Remaining())),
	}
	if overtime != nil {
		rows = append(rows, fmt.Sprintf("Overtime  %s  %s left", d.overtimeBar.ViewAs(overtime.Progress()), formatDuration(overtime.Remaining())))
	}
	rows = append(rows, "", mutedStyle.Render("Started "+o.StartedAt().In(d.loc).Format("15:04")))

	return focusPanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, rows...))
}

func (d dashboardModel) renderTodayPanel(w int) string {
	title := titleStyle.Render("Today")
	if d.today == nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing recorded today"),
		)
		return panelStyle.Width(w).Render(content)
	}
	return panelStyle.Width(w).Render(strings.Join(append([]string{title}, entryLines(*d.today, d.loc)...), "\n"))
}

func (d dashboardModel) renderLastPanel(w int) string {
	title := titleStyle.Render("Last Entry")
	if d.last == nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No entries yet"),
		)
		return panelStyle.Width(w).Render(content)
	}
	title += mutedStyle.Render("  " + d.last.Start.In(d.loc).Format("Mon Jan 02"))
	return panelStyle.Width(w).Render(strings.Join(append([]string{title}, entryLines(*d.last, d.loc)...), "\n"))
}

func entryLines(e store.WorkEntry, loc *time.Location) []string {
	lines := []string{
		fmt.Sprintf("  %s - %s", e.Start.In(loc).Format("15:04"), e.Finish.In(loc).Format("15:04")),
		fmt.Sprintf("  Work      %s", highlightStyle.Render(formatSeconds(e.WorkSeconds))),
	}
	if e.OvertimeSeconds > 0 {
		lines = append(lines, fmt.Sprintf("  Overtime  %s", overtimeStyle.Render(formatSeconds(e.OvertimeSeconds))))
	}
	lines = append(lines, fmt.Sprintf("  Pay       %s", moneyStyle.Render(formatMoney(stats.EntryPay(e)))))
	if e.NetPay != nil {
		lines = append(lines, fmt.Sprintf("  Net       %s", moneyStyle.Render(formatMoney(*e.NetPay))))
	}
	return lines
}
