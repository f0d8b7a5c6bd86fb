package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/foodplannery/internal/constants"
	"github.com/julianstephens/foodplannery/internal/models"
	"github.com/julianstephens/foodplannery/internal/validation"
)

func validateOptionalNumber(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("must be a number")
	}
	if v < 0 {
		return fmt.Errorf("cannot be negative")
	}
	return nil
}

func validateDate(s string) error {
	if _, err := time.Parse(constants.DateFormat, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func newMealForm(fm *MealFormModel) *huh.Form {
	typeOptions := make([]huh.Option[string], len(models.MealTypes))
	for i, mt := range models.MealTypes {
		label := string(mt)
		typeOptions[i] = huh.NewOption(strings.ToUpper(label[:1])+label[1:], label)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Meal").
				Options(typeOptions...).
				Value(&fm.MealType),
			huh.NewInput().
				Title("Date").
				Value(&fm.Date).
				Validate(validateDate),
			huh.NewInput().
				Title("Description").
				Value(&fm.Description),
		),
		huh.NewGroup(
			huh.NewInput().Title("Calories (kcal)").Value(&fm.Calories).Validate(validateOptionalNumber),
			huh.NewInput().Title("Protein (g)").Value(&fm.Protein).Validate(validateOptionalNumber),
			huh.NewInput().Title("Carbs (g)").Value(&fm.Carbs).Validate(validateOptionalNumber),
			huh.NewInput().Title("Fat (g)").Value(&fm.Fat).Validate(validateOptionalNumber),
			huh.NewInput().
				Title("Ingredients").
				Description("Comma-separated").
				Value(&fm.Ingredients),
		),
	)
}

func newConsultForm(fm *ConsultFormModel, rules validation.BookingRules) *huh.Form {
	slots := make([]huh.Option[string], len(rules.Slots))
	for i, slot := range rules.Slots {
		slots[i] = huh.NewOption(slot, slot)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Description(fmt.Sprintf("Within the next %d days", rules.WindowDays)).
				Value(&fm.Date).
				Validate(validateDate),
			huh.NewSelect[string]().
				Title("Time").
				Options(slots...).
				Value(&fm.Time),
			huh.NewText().
				Title("Notes").
				Value(&fm.Notes),
		),
	)
}

func parseOptional(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func (fm MealFormModel) meal() models.Meal {
	var ingredients []string
	for _, part := range strings.Split(fm.Ingredients, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ingredients = append(ingredients, part)
		}
	}
	return models.Meal{
		Date:        strings.TrimSpace(fm.Date),
		MealType:    models.MealType(fm.MealType),
		Name:        strings.TrimSpace(fm.Name),
		Description: strings.TrimSpace(fm.Description),
		Calories:    parseOptional(fm.Calories),
		Protein:     parseOptional(fm.Protein),
		Carbs:       parseOptional(fm.Carbs),
		Fat:         parseOptional(fm.Fat),
		Ingredients: ingredients,
	}
}

// submitMealForm validates the form and adds the meal, reporting the outcome in the status line
func (m *Model) submitMealForm() {
	meal := m.mealForm.meal()
	result := validation.ValidateMeal(meal)
	if result.HasProblems() {
		m.status = warningStyle.Render(result.FormatReport())
		return
	}

	added := m.planner.AddMeal(meal)
	m.calendar.Select(added.Date)
	m.status = fmt.Sprintf("Added %s", added.Name)
	m.refresh()
}

func (m *Model) submitConsultForm() {
	date := strings.TrimSpace(m.consultForm.Date)
	result := validation.ValidateConsultationRequest(date, m.consultForm.Time, m.now(), m.rules)
	if result.HasProblems() {
		m.status = warningStyle.Render(result.FormatReport())
		return
	}

	c := m.planner.RequestConsultation(date, m.consultForm.Time, strings.TrimSpace(m.consultForm.Notes))
	m.status = fmt.Sprintf("Requested consultation on %s at %s", c.Date, c.Time)
	m.refresh()
}
