package consultlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/foodplannery/internal/models"
)

type RequestConsultationMsg struct{}

type CancelConsultationMsg struct {
	ID string
}

type Item struct {
	Consultation models.Consultation
	Past         bool
}

func (i Item) Title() string {
	title := fmt.Sprintf("%s at %s", i.Consultation.Date, i.Consultation.Time)
	if i.Past {
		return title + " (past)"
	}
	return title
}

func (i Item) Description() string {
	status := "awaiting confirmation"
	if i.Consultation.Confirmed {
		status = "confirmed"
	}
	if i.Consultation.Notes != "" {
		return status + " | " + i.Consultation.Notes
	}
	return status
}

func (i Item) FilterValue() string { return i.Consultation.Date + " " + i.Consultation.Notes }

type KeyMap struct {
	Request key.Binding
	Cancel  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Request: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "request"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cancel"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Consultations"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	return Model{list: l, keys: DefaultKeyMap()}
}

// SetConsultations lists upcoming consultations first, then past ones
func (m *Model) SetConsultations(upcoming, past []models.Consultation) {
	items := make([]list.Item, 0, len(upcoming)+len(past))
	for _, c := range upcoming {
		items = append(items, Item{Consultation: c})
	}
	for _, c := range past {
		items = append(items, Item{Consultation: c, Past: true})
	}
	m.list.SetItems(items)
	if idx := m.list.Index(); idx >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Request):
			return m, func() tea.Msg { return RequestConsultationMsg{} }
		case key.Matches(msg, m.keys.Cancel):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return CancelConsultationMsg{ID: i.Consultation.ID} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No consultations yet.\n  Press 'a' to request one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
