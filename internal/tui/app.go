package tui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/worktime/internal/export"
	"github.com/sadopc/worktime/internal/notify"
	"github.com/sadopc/worktime/internal/session"
	"github.com/sadopc/worktime/internal/settings"
	"github.com/sadopc/worktime/internal/stats"
	"github.com/sadopc/worktime/internal/store"
	"github.com/sadopc/worktime/internal/timer"
)

var exportFormats = []export.Format{export.CSV, export.JSON, export.XLSX}

// Deps wires the app to the rest of worktime. Alerts may be nil.
type Deps struct {
	Store     *store.Store
	Settings  *settings.Service
	Session   *session.Service
	Stats     *stats.Aggregator
	Pulse     *timer.Pulse
	Alerts    <-chan notify.Kind
	Location  *time.Location
	Now       func() time.Time
	Logger    *slog.Logger
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	store       *store.Store
	session     *session.Service
	pulse       *timer.Pulse
	alerts      <-chan notify.Kind
	changes     <-chan struct{}
	unsubscribe func()
	now         func() time.Time
	log         *slog.Logger
	exportDir   string

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	history   historyModel
	reports   reportsModel
	settings  settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(d Deps) App {
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.ExportDir == "" {
		d.ExportDir, _ = os.UserHomeDir()
	}

	h := help.New()
	h.ShowAll = false

	changes, unsubscribe := d.Store.Subscribe()

	return App{
		store:       d.Store,
		session:     d.Session,
		pulse:       d.Pulse,
		alerts:      d.Alerts,
		changes:     changes,
		unsubscribe: unsubscribe,
		now:         d.Now,
		log:         d.Logger,
		exportDir:   d.ExportDir,
		activeView:  viewDashboard,
		dashboard:   newDashboardModel(d),
		history:     newHistoryModel(d),
		reports:     newReportsModel(d),
		settings:    newSettingsModel(d),
		help:        h,
	}
}

// Close stops listening for store changes.
func (a App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.refresh(),
		a.history.refresh(),
		a.reports.refresh(),
		tickCmd(),
		waitForChange(a.changes),
		waitForAlert(a.alerts),
	)
}

// tickCmd drives the session timers once a second, aligned to the wall clock.
func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func waitForAlert(ch <-chan notify.Kind) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		kind, ok := <-ch
		if !ok {
			return nil
		}
		return alertMsg{kind: kind}
	}
}

func bell() tea.Msg {
	fmt.Fprint(os.Stderr, "\a")
	return nil
}

func errStatus(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		if key.Matches(msg, keys.Suspend) {
			if err := a.session.Suspend(); err != nil {
				a.log.Error("suspend session", "err", err)
			}
			return a, tea.Suspend
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, a.quit()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.dashboard.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewHistory
			return a, a.history.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		a.pulse.Fire()
		if err := a.session.Err(); err != nil {
			cmds = append(cmds, errStatus(err))
		}
		return a, tea.Batch(cmds...)

	case tea.ResumeMsg:
		if err := a.session.ResumeFromBackground(); err != nil {
			return a, errStatus(err)
		}
		if a.session.Active() {
			a.status = "Session resumed"
		}
		return a, nil

	case storeChangedMsg:
		return a, tea.Batch(
			a.dashboard.refresh(),
			a.history.refresh(),
			a.reports.refresh(),
			waitForChange(a.changes),
		)

	case alertMsg:
		a.status = alertText(msg.kind)
		a.statusErr = false
		return a, tea.Batch(bell, waitForAlert(a.alerts))

	case dashboardDataMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, cmd

	case historyDataMsg:
		var cmd tea.Cmd
		a.history, cmd = a.history.update(msg)
		return a, cmd

	case reportsDataMsg:
		var cmd tea.Cmd
		a.reports, cmd = a.reports.update(msg)
		return a, cmd

	case settingsSavedMsg:
		a.status = "Settings saved"
		a.statusErr = false
		if msg.change.Changed(settings.KeyWeekStart) {
			a.reports.recenter()
		}
		return a, a.reports.refresh()

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case sessionStartedMsg:
		a.status = "Session started"
		a.statusErr = false
		return a, nil

	case sessionStoppedMsg:
		a.status = "Session stopped"
		if msg.entry != nil {
			a.status = "Session recorded: " + formatSeconds(msg.entry.WorkSeconds+msg.entry.OvertimeSeconds)
		}
		a.statusErr = false
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func alertText(k notify.Kind) string {
	switch k {
	case notify.WorkTimeFinished:
		return "Work time is over"
	case notify.OvertimeFinished:
		return "Maximum overtime reached"
	}
	return k.String()
}

// quit parks a running session in the slot so the next launch picks it up.
func (a App) quit() tea.Cmd {
	if a.session.Active() {
		if err := a.session.Suspend(); err != nil {
			a.log.Error("suspend session on quit", "err", err)
		}
	}
	return tea.Quit
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewHistory:
		return a.history.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.refresh()
	case viewHistory:
		return a.history.refresh()
	case viewReports:
		return a.reports.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewHistory:
		content = a.history.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorWork).Render("worktime")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	sessionInfo := ""
	if a.dashboard.isRunning() {
		elapsed := a.dashboard.elapsed()
		sessionInfo = runningStyle.Render(" ● " + formatDuration(elapsed))
		if a.dashboard.isPaused() {
			sessionInfo = pausedStyle.Render(" ⏸ " + formatDuration(elapsed))
		}
	}

	left := footerStyle.Render(helpView)
	right := sessionInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := rowStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedRowStyle
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  writes to "+a.exportDir))
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return focusPanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format export.Format) tea.Cmd {
	st, dir := a.store, a.exportDir
	date := a.now().Format("2006-01-02")
	log := a.log
	return func() tea.Msg {
		entries, err := st.FetchRange(store.EntryFilter{Ascending: true})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		path := filepath.Join(dir, export.DefaultFilename(format, date))
		if err := export.Write(format, entries, path); err != nil {
			log.Error("export entries", "format", string(format), "path", path, "err", err)
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		log.Info("exported entries", "format", string(format), "path", path, "count", len(entries))
		return exportDoneMsg{path: path}
	}
}
