package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/foodplannery/internal/auth"
	"github.com/julianstephens/foodplannery/internal/constants"
	"github.com/julianstephens/foodplannery/internal/planner"
	"github.com/julianstephens/foodplannery/internal/tui/components/agenda"
	"github.com/julianstephens/foodplannery/internal/tui/components/calendar"
	"github.com/julianstephens/foodplannery/internal/tui/components/consultlist"
	"github.com/julianstephens/foodplannery/internal/tui/components/meallist"
	"github.com/julianstephens/foodplannery/internal/validation"
)

type SessionState int

const (
	StateMeals SessionState = iota
	StateCalendar
	StateConsultations
	StateAddMeal
	StateRequestConsultation
	StateConfirmDelete
	StateConfirmCancel
)

// tabCount is the number of states reachable with tab
const tabCount = 3

type MealFormModel struct {
	Name        string
	MealType    string
	Date        string
	Description string
	Calories    string
	Protein     string
	Carbs       string
	Fat         string
	Ingredients string
}

type ConsultFormModel struct {
	Date  string
	Time  string
	Notes string
}

type Model struct {
	planner *planner.Store
	auth    *auth.Service
	rules   validation.BookingRules
	now     func() time.Time

	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model

	mealList    meallist.Model
	consultList consultlist.Model
	calendar    calendar.Model
	agenda      agenda.Model

	form        *huh.Form
	mealForm    *MealFormModel
	consultForm *ConsultFormModel

	mealToDeleteID    string
	mealToDeleteName  string
	consultToCancelID string

	status   string
	quitting bool
	width    int
	height   int
}

func NewModel(store *planner.Store, svc *auth.Service, rules validation.BookingRules) Model {
	return newModel(store, svc, rules, time.Now)
}

func newModel(store *planner.Store, svc *auth.Service, rules validation.BookingRules, now func() time.Time) Model {
	m := Model{
		planner:     store,
		auth:        svc,
		rules:       rules,
		now:         now,
		state:       StateMeals,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		mealList:    meallist.New(nil, 0, 0),
		consultList: consultlist.New(0, 0),
		calendar:    calendar.New(now()),
		agenda:      agenda.New(0, 0),
	}
	m.refresh()
	return m
}

// refresh reloads every view from the planner store
func (m *Model) refresh() {
	day := m.calendar.Selected()
	m.mealList.SetMeals(planner.SortByMealType(m.planner.GetMealsByDate(day)))

	year, month := m.calendar.Month()
	m.calendar.SetMarked(m.planner.MealDates(year, month))
	m.agenda.SetDays(m.planner.GetMealsByMonth(year, month), day)

	upcoming, past := planner.SplitConsultations(m.planner.Consultations(), m.now())
	m.consultList.SetConsultations(upcoming, past)
}

// selectedDay is the day shown on the meals tab
func (m Model) selectedDay() string {
	return m.calendar.Selected()
}

func (m Model) progressLine() string {
	p := planner.ProgressOf(m.planner.GetMealsByDate(m.selectedDay()))
	if p.Total == 0 {
		return ""
	}
	line := fmt.Sprintf("%d/%d eaten (%d%%)", p.Completed, p.Total, p.Percent)
	if p.Calories > 0 {
		line += fmt.Sprintf(" | %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat", p.Calories, p.Protein, p.Carbs, p.Fat)
	}
	return line
}

func (m Model) dayTitle() string {
	day := m.selectedDay()
	switch day {
	case m.now().Format(constants.DateFormat):
		return "Today, " + day
	case m.now().AddDate(0, 0, 1).Format(constants.DateFormat):
		return "Tomorrow, " + day
	}
	if t, err := time.Parse(constants.DateFormat, day); err == nil {
		return t.Format("Monday, ") + day
	}
	return day
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateMeals:
		keys = append(keys, m.keys.Add, m.keys.Toggle, m.keys.Delete)
	case StateCalendar:
		keys = append(keys, m.keys.Enter, m.keys.Today)
	case StateConsultations:
		keys = append(keys, m.keys.Add, m.keys.Cancel)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right, m.keys.Prev, m.keys.Next, m.keys.Today}

	var actions []key.Binding
	switch m.state {
	case StateMeals:
		actions = []key.Binding{m.keys.Add, m.keys.Toggle, m.keys.Delete}
	case StateCalendar:
		actions = []key.Binding{m.keys.Enter}
	case StateConsultations:
		actions = []key.Binding{m.keys.Add, m.keys.Cancel}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}
