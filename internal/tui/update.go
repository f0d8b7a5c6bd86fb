package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/foodplannery/internal/constants"
	"github.com/julianstephens/foodplannery/internal/models"
	"github.com/julianstephens/foodplannery/internal/tui/components/consultlist"
	"github.com/julianstephens/foodplannery/internal/tui/components/meallist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.resize(size.Width, size.Height)
		if m.form == nil {
			return m, nil
		}
	}

	switch m.state {
	case StateAddMeal, StateRequestConsultation:
		return m.updateForm(msg)
	case StateConfirmDelete, StateConfirmCancel:
		return m.updateConfirm(msg)
	}

	if handled, cmd := m.handleComponentMsg(msg); handled {
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		m.status = ""
	}

	var cmd tea.Cmd
	switch m.state {
	case StateMeals:
		cmd = m.updateMeals(msg)
	case StateCalendar:
		cmd = m.updateCalendar(msg)
	case StateConsultations:
		m.consultList, cmd = m.consultList.Update(msg)
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	// tabs, heading, progress, status and help
	listHeight := max(height-8, 1)
	m.mealList.SetSize(width-4, listHeight)
	m.consultList.SetSize(width-4, listHeight)
	m.agenda.SetSize(max(width-34, 20), listHeight)
}

func (m *Model) updateMeals(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Prev):
			m.calendar.MoveDays(-1)
			m.refresh()
			return nil
		case key.Matches(msg, m.keys.Next):
			m.calendar.MoveDays(1)
			m.refresh()
			return nil
		case key.Matches(msg, m.keys.Today):
			m.calendar.GoToday()
			m.refresh()
			return nil
		}
	}

	var cmd tea.Cmd
	m.mealList, cmd = m.mealList.Update(msg)
	return cmd
}

func (m *Model) updateCalendar(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Left):
		m.calendar.MoveDays(-1)
	case key.Matches(keyMsg, m.keys.Right):
		m.calendar.MoveDays(1)
	case key.Matches(keyMsg, m.keys.Up):
		m.calendar.MoveDays(-7)
	case key.Matches(keyMsg, m.keys.Down):
		m.calendar.MoveDays(7)
	case key.Matches(keyMsg, m.keys.Prev):
		m.calendar.MoveMonths(-1)
	case key.Matches(keyMsg, m.keys.Next):
		m.calendar.MoveMonths(1)
	case key.Matches(keyMsg, m.keys.Today):
		m.calendar.GoToday()
	case key.Matches(keyMsg, m.keys.Enter):
		m.state = StateMeals
	case key.Matches(keyMsg, m.keys.Add):
		return m.openMealForm()
	default:
		return nil
	}
	m.refresh()
	return nil
}

// handleComponentMsg reacts to the messages emitted by the list components
func (m *Model) handleComponentMsg(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case meallist.AddMealMsg:
		return true, m.openMealForm()

	case meallist.ToggleMealMsg:
		m.planner.ToggleMealCompleted(msg.ID)
		m.refresh()
		return true, nil

	case meallist.DeleteMealMsg:
		m.mealToDeleteID = msg.ID
		m.mealToDeleteName = msg.Name
		m.previousState = m.state
		m.state = StateConfirmDelete
		return true, nil

	case consultlist.RequestConsultationMsg:
		m.consultForm = &ConsultFormModel{
			Date: m.now().AddDate(0, 0, 1).Format(constants.DateFormat),
		}
		if len(m.rules.Slots) > 0 {
			m.consultForm.Time = m.rules.Slots[0]
		}
		m.form = newConsultForm(m.consultForm, m.rules)
		m.previousState = m.state
		m.state = StateRequestConsultation
		return true, m.form.Init()

	case consultlist.CancelConsultationMsg:
		m.consultToCancelID = msg.ID
		m.previousState = m.state
		m.state = StateConfirmCancel
		return true, nil
	}
	return false, nil
}

func (m *Model) openMealForm() tea.Cmd {
	m.mealForm = &MealFormModel{
		MealType: string(models.MealLunch),
		Date:     m.selectedDay(),
	}
	m.form = newMealForm(m.mealForm)
	m.previousState = m.state
	m.state = StateAddMeal
	return m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.closeForm()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.state == StateAddMeal {
			m.submitMealForm()
		} else {
			m.submitConsultForm()
		}
		m.closeForm()
		return m, nil
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	}
	return m, cmd
}

func (m *Model) closeForm() {
	m.form = nil
	m.mealForm = nil
	m.consultForm = nil
	m.state = m.previousState
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		if m.state == StateConfirmDelete {
			m.planner.DeleteMeal(m.mealToDeleteID)
			m.status = "Deleted " + m.mealToDeleteName
		} else {
			m.planner.CancelConsultation(m.consultToCancelID)
			m.status = "Consultation cancelled"
		}
		m.refresh()
	case key.Matches(keyMsg, m.keys.Reject):
	default:
		return m, nil
	}

	m.mealToDeleteID = ""
	m.mealToDeleteName = ""
	m.consultToCancelID = ""
	m.state = m.previousState
	return m, nil
}
