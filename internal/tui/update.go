package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/dateutil"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/tui/components/habitlist"
)

type checkToastsMsg struct{}

type clearToastMsg struct {
	seq int
}

func checkToasts() tea.Msg { return checkToastsMsg{} }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case checkToastsMsg:
		return m, m.showToasts()

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil
	}

	switch m.state {
	case StateAddHabit, StateEditHabit:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case habitlist.AddHabitMsg:
		m.habitForm = &HabitFormModel{Category: models.CategoryOther}
		m.form = NewHabitForm(m.habitForm, "New habit")
		m.state = StateAddHabit
		return m, m.form.Init()

	case habitlist.EditHabitMsg:
		m.editingID = msg.Habit.ID
		m.habitForm = &HabitFormModel{
			Name:     msg.Habit.Name,
			Category: msg.Habit.Category,
			Days:     dateutil.FormatWeekdays(msg.Habit.TargetDays),
		}
		m.form = NewHabitForm(m.habitForm, "Habit name")
		m.state = StateEditHabit
		return m, m.form.Init()

	case habitlist.ToggleHabitMsg:
		return m, m.afterMutation(m.store.ToggleToday(msg.ID))

	case habitlist.DeleteHabitMsg:
		m.habitToDeleteID = msg.ID
		m.deleteName = msg.Name
		m.state = StateConfirmDelete
		return m, nil

	case tea.KeyMsg:
		if m.state == StateToday && m.habitList.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.Right):
			m.state = (m.state + 1) % tabCount
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab), key.Matches(msg, m.keys.Left):
			m.state = (m.state - 1 + tabCount) % tabCount
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		case m.state == StateCalendar && key.Matches(msg, m.keys.PrevMonth):
			m.month = m.month.AddDate(0, -1, 0)
			m.refresh()
			return m, nil
		case m.state == StateCalendar && key.Matches(msg, m.keys.NextMonth):
			m.month = m.month.AddDate(0, 1, 0)
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateToday:
		m.habitList, cmd = m.habitList.Update(msg)
	case StateCalendar:
		m.calendarPanel, cmd = m.calendarPanel.Update(msg)
	case StateInsights:
		m.insightsPanel, cmd = m.insightsPanel.Update(msg)
	case StateAchievements:
		m.achievePanel, cmd = m.achievePanel.Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateToday
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		if err := m.saveForm(); err != nil {
			// Stay in the form so the user can fix the input or cancel with ESC
			m.err = err
			m.form.State = huh.StateNormal
			return m, tea.Batch(cmds...)
		}
		m.state = StateToday
		cmds = append(cmds, m.afterMutation(nil))
	case huh.StateAborted:
		m.state = StateToday
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) saveForm() error {
	days, err := dateutil.ParseWeekdays(m.habitForm.Days)
	if err != nil {
		return err
	}

	if m.state == StateAddHabit {
		_, err := m.store.CreateHabit(m.habitForm.Name, m.habitForm.Category, days)
		return err
	}

	h, ok := m.store.Get(m.editingID)
	if !ok {
		return nil
	}
	h.Name = m.habitForm.Name
	h.Category = m.habitForm.Category
	h.TargetDays = days
	return m.store.UpdateHabit(h)
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		id := m.habitToDeleteID
		m.habitToDeleteID = ""
		m.state = StateToday
		return m, m.afterMutation(m.store.DeleteHabit(id))
	case key.Matches(keyMsg, m.keys.Cancel):
		m.habitToDeleteID = ""
		m.state = StateToday
	}
	return m, nil
}

// afterMutation records err, re-renders and flushes pending notifications.
func (m *Model) afterMutation(err error) tea.Cmd {
	m.err = err
	if err != nil {
		logger.Error("TUI action failed", "error", err)
	}
	m.refresh()
	return m.showToasts()
}

func (m *Model) showToasts() tea.Cmd {
	msgs := m.recorder.Drain()
	if len(msgs) == 0 {
		return nil
	}
	m.toastSeq++
	m.toast = "✓ " + strings.Join(msgs, "  ✓ ")
	seq := m.toastSeq
	return tea.Tick(constants.NotificationDurationMs*time.Millisecond, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}

func (m *Model) resize() {
	// tabs, toast line, help and the doc margins
	reserved := 1 + 1 + 2 + 2
	if m.help.ShowAll {
		reserved += 3
	}
	h := m.height - reserved
	if h < 1 {
		h = 1
	}
	w := m.width - 4
	if w < 1 {
		w = 1
	}
	m.habitList.SetSize(w, h)
	m.calendarPanel.SetSize(w, h)
	m.insightsPanel.SetSize(w, h)
	m.achievePanel.SetSize(w, h)
}
