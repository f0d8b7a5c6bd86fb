package meallist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/foodplannery/internal/models"
)

type AddMealMsg struct{}

type ToggleMealMsg struct {
	ID string
}

type DeleteMealMsg struct {
	ID   string
	Name string
}

type Item struct {
	Meal models.Meal
}

func (i Item) Title() string {
	if i.Meal.Completed {
		return "✓ " + i.Meal.Name
	}
	return "○ " + i.Meal.Name
}

func (i Item) Description() string {
	parts := []string{string(i.Meal.MealType)}
	if i.Meal.Calories != nil {
		parts = append(parts, fmt.Sprintf("%.0f kcal", *i.Meal.Calories))
	}
	if len(i.Meal.Ingredients) > 0 {
		parts = append(parts, strings.Join(i.Meal.Ingredients, ", "))
	}
	return strings.Join(parts, " | ")
}

func (i Item) FilterValue() string { return i.Meal.Name }

type KeyMap struct {
	Add    key.Binding
	Toggle key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add meal"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x", "eaten"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(meals []models.Meal, width, height int) Model {
	l := list.New(items(meals), list.NewDefaultDelegate(), width, height)
	l.Title = "Meals"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // We handle help globally in the main model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

func items(meals []models.Meal) []list.Item {
	out := make([]list.Item, len(meals))
	for i, meal := range meals {
		out[i] = Item{Meal: meal}
	}
	return out
}

// SetMeals replaces the list contents, keeping the cursor in range
func (m *Model) SetMeals(meals []models.Meal) {
	m.list.SetItems(items(meals))
	if idx := m.list.Index(); idx >= len(meals) && len(meals) > 0 {
		m.list.Select(len(meals) - 1)
	}
}

// Selected returns the meal under the cursor
func (m Model) Selected() (models.Meal, bool) {
	if i, ok := m.list.SelectedItem().(Item); ok {
		return i.Meal, true
	}
	return models.Meal{}, false
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddMealMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if meal, ok := m.Selected(); ok {
				return m, func() tea.Msg { return ToggleMealMsg{ID: meal.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if meal, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteMealMsg{ID: meal.ID, Name: meal.Name} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No meals planned for this day.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
