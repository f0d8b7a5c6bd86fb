package agenda

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/foodplannery/internal/planner"
)

var (
	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(12)

	selectedDateStyle = dateStyle.
				Foreground(lipgloss.Color("205")).
				Bold(true)

	mealStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Model lists every planned meal of a month, one day after another.
type Model struct {
	viewport viewport.Model
	days     []planner.DayMeals
	selected string
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.days) == 0 {
		return statusStyle.Render("No meals planned this month.")
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetDays replaces the agenda. selected is highlighted when present.
func (m *Model) SetDays(days []planner.DayMeals, selected string) {
	m.days = days
	m.selected = selected
	m.Render()
}

func (m *Model) Render() {
	var b strings.Builder
	for _, day := range m.days {
		style := dateStyle
		if day.Date == m.selected {
			style = selectedDateStyle
		}
		for i, meal := range planner.SortByMealType(day.Meals) {
			date := ""
			if i == 0 {
				date = day.Date
			}
			status := string(meal.MealType)
			if meal.Completed {
				status += ", eaten"
			}
			fmt.Fprintf(&b, "%s %s %s\n",
				style.Render(date),
				mealStyle.Render(meal.Name),
				statusStyle.Render(status),
			)
		}
	}
	m.viewport.SetContent(b.String())
}
