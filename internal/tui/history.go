package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/worktime/internal/settings"
	"github.com/sadopc/worktime/internal/stats"
	"github.com/sadopc/worktime/internal/store"
)

const historyLimit = 200

type historyModel struct {
	store    *store.Store
	settings *settings.Service
	loc      *time.Location
	now      func() time.Time
	width    int
	height   int

	entries []store.WorkEntry
	cursor  int

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit", "delete", "delete_all"
	editing    *store.WorkEntry

	// Form field pointers (survive value copies)
	formDate   *string
	formStart  *string
	formFinish *string
	confirm    *bool
}

func newHistoryModel(d Deps) historyModel {
	date, start, finish, ok := "", "", "", false
	return historyModel{
		store:      d.Store,
		settings:   d.Settings,
		loc:        d.Location,
		now:        d.Now,
		formDate:   &date,
		formStart:  &start,
		formFinish: &finish,
		confirm:    &ok,
	}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

type historyDataMsg struct {
	entries []store.WorkEntry
	err     error
}

func (h historyModel) refresh() tea.Cmd {
	st := h.store
	return func() tea.Msg {
		entries, err := st.FetchRange(store.EntryFilter{Limit: historyLimit})
		return historyDataMsg{entries: entries, err: err}
	}
}

func (h historyModel) selected() *store.WorkEntry {
	if h.cursor < 0 || h.cursor >= len(h.entries) {
		return nil
	}
	e := h.entries[h.cursor]
	return &e
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	if h.formActive && h.form != nil {
		return h.updateForm(msg)
	}

	switch msg := msg.(type) {
	case historyDataMsg:
		if msg.err != nil {
			return h, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", msg.err), isError: true}
			}
		}
		h.entries = msg.entries
		if h.cursor >= len(h.entries) {
			h.cursor = max(0, len(h.entries)-1)
		}
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if h.cursor > 0 {
				h.cursor--
			}
		case key.Matches(msg, keys.Down):
			if h.cursor < len(h.entries)-1 {
				h.cursor++
			}
		case key.Matches(msg, keys.New):
			return h.showEntryForm(nil)
		case key.Matches(msg, keys.Enter):
			if e := h.selected(); e != nil {
				return h.showEntryForm(e)
			}
		case key.Matches(msg, keys.Delete):
			if e := h.selected(); e != nil {
				return h.showConfirm("delete", e,
					fmt.Sprintf("Delete the entry of %s?", e.Start.In(h.loc).Format("Mon Jan 02 2006")))
			}
		case key.Matches(msg, keys.DeleteAll):
			if len(h.entries) > 0 {
				return h.showConfirm("delete_all", nil, "Delete every recorded entry?")
			}
		}
	}
	return h, nil
}

func validateDate(s string) error {
	if _, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func validateClock(s string) error {
	if _, err := time.Parse("15:04", strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use HH:MM")
	}
	return nil
}

// showEntryForm opens the add form, or the edit form when e is set.
func (h historyModel) showEntryForm(e *store.WorkEntry) (historyModel, tea.Cmd) {
	h.editing = e
	if e == nil {
		h.formType = "new"
		today := h.now().In(h.loc)
		*h.formDate = today.Format("2006-01-02")
		*h.formStart = "09:00"
		*h.formFinish = time.Date(2000, 1, 1, 9, 0, 0, 0, time.UTC).
			Add(time.Duration(h.settings.Current().WorkSeconds) * time.Second).Format("15:04")
	} else {
		h.formType = "edit"
		*h.formDate = e.Start.In(h.loc).Format("2006-01-02")
		*h.formStart = e.Start.In(h.loc).Format("15:04")
		*h.formFinish = e.Finish.In(h.loc).Format("15:04")
	}

	h.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(h.formDate).Validate(validateDate),
			huh.NewInput().Title("Start").Placeholder("HH:MM").Value(h.formStart).Validate(validateClock),
			huh.NewInput().Title("Finish").Placeholder("HH:MM").Value(h.formFinish).Validate(validateClock),
		),
	).WithShowHelp(true).WithShowErrors(true)

	h.formActive = true
	return h, h.form.Init()
}

func (h historyModel) showConfirm(formType string, e *store.WorkEntry, title string) (historyModel, tea.Cmd) {
	h.formType = formType
	h.editing = e
	*h.confirm = false

	h.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(title).Affirmative("Delete").Negative("Keep").Value(h.confirm),
		),
	).WithShowHelp(true)

	h.formActive = true
	return h, h.form.Init()
}

func (h historyModel) updateForm(msg tea.Msg) (historyModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			h.formActive = false
			h.form = nil
			return h, nil
		}
	}

	form, cmd := h.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		h.form = f
	}

	if h.form.State == huh.StateCompleted {
		h.formActive = false
		return h, h.submit()
	}

	return h, cmd
}

// submit applies the completed form to the store.
func (h historyModel) submit() tea.Cmd {
	var (
		status string
		err    error
	)
	switch h.formType {
	case "new", "edit":
		var e store.WorkEntry
		e, err = h.entryFromForm()
		if err == nil {
			_, err = h.store.Upsert(e)
			status = "Entry saved"
		}
	case "delete":
		if *h.confirm && h.editing != nil {
			err = h.store.Delete(h.editing.ID)
			status = "Entry deleted"
		}
	case "delete_all":
		if *h.confirm {
			err = h.store.DeleteAll()
			status = "All entries deleted"
		}
	}

	if err != nil {
		return func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	if status == "" {
		return nil
	}
	return tea.Batch(h.refresh(), func() tea.Msg { return statusMsg{text: status} })
}

// entryFromForm builds the entry described by the form. New entries snapshot
// the current settings; edits keep the snapshot of the original entry.
func (h historyModel) entryFromForm() (store.WorkEntry, error) {
	start, err := parseClock(*h.formDate, *h.formStart, h.loc)
	if err != nil {
		return store.WorkEntry{}, err
	}
	finish, err := parseClock(*h.formDate, *h.formFinish, h.loc)
	if err != nil {
		return store.WorkEntry{}, err
	}
	// A finish before the start ends on the next day.
	if finish.Before(start) {
		finish = finish.AddDate(0, 0, 1)
	}

	cfg := h.settings.Current()
	var e store.WorkEntry
	if h.editing != nil {
		e = *h.editing
	} else {
		e = store.WorkEntry{
			ID:                  store.NewWorkEntryID(),
			StandardWorkSeconds: cfg.WorkSeconds,
			MaxOvertimeSeconds:  cfg.MaxOvertimeSeconds,
			GrossPayPerMonth:    cfg.GrossPayPerMonth,
		}
	}
	e.Start, e.Finish = start, finish
	e.WorkSeconds, e.OvertimeSeconds = splitWorked(
		int64(finish.Sub(start)/time.Second), e.StandardWorkSeconds, e.MaxOvertimeSeconds, cfg.LoggingOvertime)

	e.NetPay = nil
	if cfg.CalculatingNetPay {
		net := stats.NetPay(stats.EntryPay(e), cfg.NetPayDeduction)
		e.NetPay = &net
	}
	return e, e.Validate()
}

// splitWorked divides a worked span into work, capped at the standard time,
// and overtime, capped at maxOvertime. Without overtime logging the excess is
// dropped, as a live session would.
func splitWorked(total, standard, maxOvertime int64, loggingOvertime bool) (work, overtime int64) {
	work = min(total, standard)
	if !loggingOvertime {
		return work, 0
	}
	return work, min(total-work, maxOvertime)
}

func (h historyModel) view() string {
	w := h.width - 4
	if h.formActive && h.form != nil {
		title := titleStyle.Render("New Entry")
		switch h.formType {
		case "edit":
			title = titleStyle.Render("Edit Entry")
		case "delete", "delete_all":
			title = titleStyle.Render("Delete")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", h.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("History")
	if len(h.entries) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No entries yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-16s %-13s %10s %10s %10s", "Date", "Time", "Work", "Overtime", "Pay")))

	visible := max(3, h.height-10)
	first := 0
	if h.cursor >= visible {
		first = h.cursor - visible + 1
	}
	last := min(len(h.entries), first+visible)

	for i := first; i < last; i++ {
		e := h.entries[i]
		cursor := "  "
		style := rowStyle
		if i == h.cursor {
			cursor = "> "
			style = selectedRowStyle
		}
		row := fmt.Sprintf("%s%-16s %-13s %10s %10s %10s",
			cursor,
			e.Start.In(h.loc).Format("Mon 2006-01-02"),
			e.Start.In(h.loc).Format("15:04")+"-"+e.Finish.In(h.loc).Format("15:04"),
			formatSeconds(e.WorkSeconds),
			formatSeconds(e.OvertimeSeconds),
			formatMoney(stats.EntryPay(e)),
		)
		rows = append(rows, style.Render(row))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %d of %d  n: new  enter: edit  d: delete  D: delete all", h.cursor+1, len(h.entries))))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
