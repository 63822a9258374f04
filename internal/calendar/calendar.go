// Package calendar lays out a habit's completions as a Sunday-first month grid.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/streakly/internal/dateutil"
	"github.com/julianstephens/streakly/internal/models"
)

// Cell is one day of the grid. Blank cells pad the first week.
type Cell struct {
	Blank     bool
	Day       time.Time
	Completed bool
	Today     bool
}

type Grid struct {
	Year  int
	Month time.Month
	// Cells is laid out row-major, seven per week.
	Cells []Cell
}

// Weeks splits the cells into rows of seven, padding the last row.
func (g Grid) Weeks() [][]Cell {
	var weeks [][]Cell
	for i := 0; i < len(g.Cells); i += 7 {
		end := i + 7
		row := make([]Cell, 7)
		for j := range row {
			row[j].Blank = true
		}
		if end > len(g.Cells) {
			end = len(g.Cells)
		}
		copy(row, g.Cells[i:end])
		weeks = append(weeks, row)
	}
	return weeks
}

// Completed counts the completed days in the month.
func (g Grid) Completed() int {
	n := 0
	for _, c := range g.Cells {
		if c.Completed {
			n++
		}
	}
	return n
}

// Month builds the grid for year/month in today's location. h may be nil,
// giving an empty calendar.
func Month(h *models.Habit, year int, month time.Month, today time.Time) Grid {
	loc := today.Location()
	days := dateutil.MonthDays(year, month, loc)

	g := Grid{Year: year, Month: month}
	for i := 0; i < int(days[0].Weekday()); i++ {
		g.Cells = append(g.Cells, Cell{Blank: true})
	}
	for _, d := range days {
		g.Cells = append(g.Cells, Cell{
			Day:       d,
			Completed: h != nil && h.HasCompletion(dateutil.Stamp(d)),
			Today:     dateutil.SameDay(d, today),
		})
	}
	return g
}

var weekdayHeader = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Width(7 * 5).Align(lipgloss.Center)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(5).Align(lipgloss.Center)
	cellStyle   = lipgloss.NewStyle().Width(5).Align(lipgloss.Center)
	todayStyle  = cellStyle.Underline(true).Bold(true)
)

// Render draws the grid. Completed days are highlighted in color.
func Render(g Grid, color string) string {
	if color == "" {
		color = models.CategoryOther.Color()
	}
	done := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)

	var b strings.Builder
	title := time.Date(g.Year, g.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	b.WriteString(titleStyle.Render(title) + "\n")

	header := make([]string, len(weekdayHeader))
	for i, d := range weekdayHeader {
		header[i] = headerStyle.Render(d)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...) + "\n")

	for _, week := range g.Weeks() {
		row := make([]string, len(week))
		for i, c := range week {
			row[i] = renderCell(c, done)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...) + "\n")
	}
	return b.String()
}

func renderCell(c Cell, done lipgloss.Style) string {
	if c.Blank {
		return cellStyle.Render("")
	}
	label := fmt.Sprintf("%d", c.Day.Day())
	if c.Completed {
		label = done.Render(label + "✓")
	}
	if c.Today {
		return todayStyle.Render(label)
	}
	return cellStyle.Render(label)
}
