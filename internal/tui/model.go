package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/streakly/internal/calendar"
	"github.com/julianstephens/streakly/internal/dateutil"
	"github.com/julianstephens/streakly/internal/habits"
	"github.com/julianstephens/streakly/internal/insights"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/notifier"
	"github.com/julianstephens/streakly/internal/tui/components/habitlist"
	"github.com/julianstephens/streakly/internal/tui/components/panel"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateCalendar
	StateInsights
	StateAchievements
	StateAddHabit
	StateEditHabit
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab.
const tabCount = 4

var tabTitles = []string{"Today", "Calendar", "Insights", "Achievements"}

type HabitFormModel struct {
	Name     string
	Category models.Category
	Days     string
}

type Model struct {
	store    *habits.Store
	recorder *notifier.Recorder

	state           SessionState
	keys            KeyMap
	help            help.Model
	habitList       habitlist.Model
	calendarPanel   panel.Model
	insightsPanel   panel.Model
	achievePanel    panel.Model
	form            *huh.Form
	habitForm       *HabitFormModel
	editingID       string
	habitToDeleteID string
	deleteName      string
	month           time.Time
	toast           string
	toastSeq        int
	err             error
	quitting        bool
	width           int
	height          int
}

// NewModel builds the TUI over a loaded store. Notifications raised by the
// store should be sent to recorder, which the model drains into toasts.
func NewModel(store *habits.Store, recorder *notifier.Recorder) Model {
	if recorder == nil {
		recorder = &notifier.Recorder{}
	}
	m := Model{
		store:         store,
		recorder:      recorder,
		state:         StateToday,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		calendarPanel: panel.New("\n  No habits yet.", 0, 0),
		insightsPanel: panel.New("\n  No habits yet.", 0, 0),
		achievePanel:  panel.New("", 0, 0),
		month:         dateutil.StartOfMonth(store.Now()),
	}
	m.habitList = habitlist.New(store.Habits(), m.doneToday, 0, 0)
	m.refresh()
	return m
}

func (m Model) doneToday(h models.Habit) bool {
	return m.store.IsCompletedOn(h, m.store.Now())
}

// refresh re-renders every view from the store.
func (m *Model) refresh() {
	all := m.store.Habits()
	m.habitList.SetHabits(all, m.doneToday)
	m.calendarPanel.SetContent(m.renderCalendars(all))
	if len(all) > 0 {
		m.insightsPanel.SetContent(insights.Render(insights.Compute(all)))
	} else {
		m.insightsPanel.SetContent("")
	}
	m.achievePanel.SetContent(m.renderAchievements())
}

func (m Model) renderCalendars(all []models.Habit) string {
	if len(all) == 0 {
		return ""
	}
	now := m.store.Now()
	var blocks []string
	for i := range all {
		h := all[i]
		grid := calendar.Month(&h, m.month.Year(), m.month.Month(), now)
		blocks = append(blocks, fmt.Sprintf("%s  (%d done)\n%s", h.Name, grid.Completed(), calendar.Render(grid, h.Category.Color())))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderAchievements() string {
	var b strings.Builder
	now := m.store.Now()
	for _, a := range m.store.Achievements() {
		if a.Earned() {
			line := fmt.Sprintf("%s %s", a.Icon, a.Name)
			if a.Category != "" {
				line += " (" + a.Category.Title() + ")"
			}
			b.WriteString(earnedStyle.Render(line))
			b.WriteString(fmt.Sprintf("\n   %s, earned %s\n\n", a.Description, humanize.RelTime(*a.EarnedOn, now, "ago", "from now")))
			continue
		}
		b.WriteString(lockedStyle.Render("🔒 " + a.Name))
		b.WriteString("\n   " + lockedStyle.Render(a.Description) + "\n\n")
	}
	return b.String()
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateToday:
		lk := habitlist.DefaultKeyMap()
		keys = append(keys, lk.Add, lk.Toggle, lk.Edit, lk.Delete)
	case StateCalendar:
		keys = append(keys, m.keys.PrevMonth, m.keys.NextMonth)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right}

	var actions []key.Binding
	switch m.state {
	case StateToday:
		lk := habitlist.DefaultKeyMap()
		actions = []key.Binding{lk.Add, lk.Toggle, lk.Edit, lk.Delete}
	case StateCalendar:
		actions = []key.Binding{m.keys.PrevMonth, m.keys.NextMonth}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return checkToasts
}
