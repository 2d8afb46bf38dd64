package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/worktime/internal/settings"
)

// settingsSavedMsg carries a successful update to the rest of the app.
type settingsSavedMsg struct {
	change settings.Change
}

type settingsModel struct {
	service *settings.Service
	width   int
	height  int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	workHours     *string
	overtimeHours *string
	loggingOT     *bool
	grossPay      *string
	notifications *bool
	netPay        *bool
	deduction     *string
	weekStart     *string
}

func newSettingsModel(d Deps) settingsModel {
	wh, oh, gp, ded, ws := "", "", "", "", ""
	lo, nt, np := false, false, false
	return settingsModel{
		service:       d.Settings,
		workHours:     &wh,
		overtimeHours: &oh,
		loggingOT:     &lo,
		grossPay:      &gp,
		notifications: &nt,
		netPay:        &np,
		deduction:     &ded,
		weekStart:     &ws,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func validateHours(v string) error {
	_, err := parseHours(v)
	return err
}

func validateMoney(v string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 {
		return fmt.Errorf("enter an amount of zero or more")
	}
	return nil
}

func validatePercent(v string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 || f >= 100 {
		return fmt.Errorf("enter a percentage from 0 to 99")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cur := s.service.Current()
	*s.workHours = secsToHours(cur.WorkSeconds)
	*s.overtimeHours = secsToHours(cur.MaxOvertimeSeconds)
	*s.loggingOT = cur.LoggingOvertime
	*s.grossPay = formatMoney(cur.GrossPayPerMonth)
	*s.notifications = cur.SendingNotification
	*s.netPay = cur.CalculatingNetPay
	*s.deduction = formatPercent(cur.NetPayDeduction)
	*s.weekStart = strings.ToLower(cur.WeekStart.String())

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work time (hours)").Value(s.workHours).Validate(validateHours),
			huh.NewConfirm().Title("Log overtime").Value(s.loggingOT),
			huh.NewInput().Title("Maximum overtime (hours)").Value(s.overtimeHours).Validate(validateHours),
			huh.NewConfirm().Title("Notify when work time ends").Value(s.notifications),
		).Title("Work day"),
		huh.NewGroup(
			huh.NewInput().Title("Gross pay per month").Value(s.grossPay).Validate(validateMoney),
			huh.NewConfirm().Title("Estimate net pay").Value(s.netPay),
			huh.NewInput().Title("Net pay deduction (%)").Value(s.deduction).Validate(validatePercent),
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Monday", "monday"),
					huh.NewOption("Sunday", "sunday"),
					huh.NewOption("Saturday", "saturday"),
				).Value(s.weekStart),
		).Title("Pay"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.saveSettings()
	}

	return s, cmd
}

// formSettings reads the form back into a Settings value.
func (s settingsModel) formSettings() (settings.Settings, error) {
	next := s.service.Current()

	work, err := parseHours(*s.workHours)
	if err != nil {
		return next, err
	}
	overtime, err := parseHours(*s.overtimeHours)
	if err != nil {
		return next, err
	}
	gross, err := strconv.ParseFloat(strings.TrimSpace(*s.grossPay), 64)
	if err != nil {
		return next, fmt.Errorf("invalid gross pay %q", *s.grossPay)
	}
	deduction, err := strconv.ParseFloat(strings.TrimSpace(*s.deduction), 64)
	if err != nil {
		return next, fmt.Errorf("invalid deduction %q", *s.deduction)
	}
	weekStart, err := settings.ParseWeekday(*s.weekStart)
	if err != nil {
		return next, err
	}

	next.WorkSeconds = work
	next.MaxOvertimeSeconds = overtime
	next.LoggingOvertime = *s.loggingOT
	next.GrossPayPerMonth = gross
	next.SendingNotification = *s.notifications
	next.CalculatingNetPay = *s.netPay
	next.NetPayDeduction = deduction / 100
	next.WeekStart = weekStart
	return next, nil
}

func (s settingsModel) saveSettings() tea.Cmd {
	old := s.service.Current()
	next, err := s.formSettings()
	if err == nil {
		err = s.service.Update(next)
	}
	if err != nil {
		return func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Settings not saved: %v", err), isError: true}
		}
	}
	change := settings.Change{Old: old, New: next}
	return func() tea.Msg { return settingsSavedMsg{change: change} }
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	cur := s.service.Current()
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	items := [][2]string{
		{"Work time", formatHours(cur.WorkSeconds)},
		{"Log overtime", onOff(cur.LoggingOvertime)},
		{"Maximum overtime", formatHours(cur.MaxOvertimeSeconds)},
		{"Notifications", onOff(cur.SendingNotification)},
		{"Gross pay / month", formatMoney(cur.GrossPayPerMonth)},
		{"Estimate net pay", onOff(cur.CalculatingNetPay)},
		{"Net pay deduction", formatPercent(cur.NetPayDeduction) + "%"},
		{"Week starts on", cur.WeekStart.String()},
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for _, it := range items {
		label := lipgloss.NewStyle().Width(24).Render(it[0])
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(it[1])))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("Press enter to edit settings. Changes apply to the next session."))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
