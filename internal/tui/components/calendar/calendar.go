package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/foodplannery/internal/constants"
)

const (
	cellWidth = 3
	gridWidth = 7*cellWidth + 6
	mealMark  = "•"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Width(gridWidth).Align(lipgloss.Center)
	weekdayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	markedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	todayStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
)

// Model is a month grid with a selected day. Days that have meals carry a marker.
type Model struct {
	selected time.Time
	today    time.Time
	marked   map[string]bool
}

func New(today time.Time) Model {
	d := dateOnly(today)
	return Model{selected: d, today: d}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Selected returns the selected day as YYYY-MM-DD
func (m Model) Selected() string {
	return m.selected.Format(constants.DateFormat)
}

func (m Model) Month() (int, time.Month) {
	return m.selected.Year(), m.selected.Month()
}

// SetMarked replaces the set of dates shown with a meal marker
func (m *Model) SetMarked(dates map[string]bool) {
	m.marked = dates
}

// Select moves the selection to date (YYYY-MM-DD). Unparseable dates are ignored.
func (m *Model) Select(date string) {
	if t, err := time.Parse(constants.DateFormat, date); err == nil {
		m.selected = t
	}
}

func (m *Model) MoveDays(n int) {
	m.selected = m.selected.AddDate(0, 0, n)
}

// MoveMonths keeps the day of month where possible, clamping to the month's last day
func (m *Model) MoveMonths(n int) {
	first := time.Date(m.selected.Year(), m.selected.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	day := min(m.selected.Day(), daysIn(first.Year(), first.Month()))
	m.selected = time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func (m *Model) GoToday() {
	m.selected = m.today
}

func (m Model) View() string {
	year, month := m.Month()
	return Render(year, month, m.Selected(), m.today.Format(constants.DateFormat), m.marked)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Render draws the month as a Sunday-first grid. selected and today may be
// empty or outside the month.
func Render(year int, month time.Month, selected, today string, marked map[string]bool) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s %d", month, year)))
	b.WriteString("\n")
	b.WriteString(weekdayStyle.Render("Su  Mo  Tu  We  Th  Fr  Sa"))
	b.WriteString("\n")

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(first.Weekday())
	total := daysIn(year, month)

	cells := make([]string, 0, 42)
	for i := 0; i < offset; i++ {
		cells = append(cells, strings.Repeat(" ", cellWidth))
	}
	for day := 1; day <= total; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(constants.DateFormat)
		cells = append(cells, renderCell(day, date, selected, today, marked))
	}

	for row := 0; row*7 < len(cells); row++ {
		end := min((row+1)*7, len(cells))
		line := strings.Join(cells[row*7:end], " ")
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func renderCell(day int, date, selected, today string, marked map[string]bool) string {
	mark := " "
	if marked[date] {
		mark = mealMark
	}

	number := fmt.Sprintf("%2d", day)
	style := lipgloss.NewStyle()
	if marked[date] {
		style = markedStyle
	}
	if date == today {
		style = style.Inherit(todayStyle)
	}
	if date == selected {
		style = style.Inherit(selectedStyle)
	}
	return style.Render(number) + mark
}
