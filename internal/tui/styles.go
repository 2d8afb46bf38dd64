package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Work, overtime and pay keep the same color in every view.
var (
	colorWork      = lipgloss.Color("#5B8DEF")
	colorWorkLight = lipgloss.Color("#9CC0FF")
	colorOvertime  = lipgloss.Color("#F07167")
	colorPay       = lipgloss.Color("#2EC4B6")
	colorPaused    = lipgloss.Color("#E9C46A")
	colorRunning   = lipgloss.Color("#52B788")
	colorError     = lipgloss.Color("#E63946")
	colorText      = lipgloss.Color("#D8DEE9")
	colorMuted     = lipgloss.Color("#6B7280")
	colorBorder    = lipgloss.Color("#3B4252")
)

var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWork).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorWork).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	focusPanelStyle = panelStyle.
			BorderForeground(colorWork)

	// Session clock, one style per phase
	clockIdleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorMuted).
			Align(lipgloss.Center)

	clockWorkStyle     = clockIdleStyle.Foreground(colorRunning)
	clockOvertimeStyle = clockIdleStyle.Foreground(colorOvertime)
	clockPausedStyle   = clockIdleStyle.Foreground(colorPaused)

	workBarStyle     = lipgloss.NewStyle().Foreground(colorWork)
	overtimeBarStyle = lipgloss.NewStyle().Foreground(colorOvertime)

	// Text
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	moneyStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorPay)
	overtimeStyle  = lipgloss.NewStyle().Foreground(colorOvertime)
	runningStyle   = lipgloss.NewStyle().Foreground(colorRunning)
	pausedStyle    = lipgloss.NewStyle().Foreground(colorPaused)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorWorkLight)

	// Chrome
	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	// Lists
	selectedRowStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWork)
	rowStyle         = lipgloss.NewStyle().Foreground(colorText)
)
