package validation

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/foodplannery/internal/constants"
	"github.com/julianstephens/foodplannery/internal/models"
)

// ProblemType represents the kind of validation problem
type ProblemType string

const (
	ProblemMissingField    ProblemType = "missing_field"
	ProblemInvalidMealType ProblemType = "invalid_meal_type"
	ProblemInvalidDate     ProblemType = "invalid_date"
	ProblemInvalidTime     ProblemType = "invalid_time"
	ProblemNegativeMacro   ProblemType = "negative_macro"
	ProblemInvalidMacro    ProblemType = "invalid_macro"
	ProblemInvalidURL      ProblemType = "invalid_url"
	ProblemOutsideWindow   ProblemType = "outside_booking_window"
	ProblemUnavailableSlot ProblemType = "unavailable_time_slot"
	ProblemInvalidEmail    ProblemType = "invalid_email"
	ProblemDuplicateID     ProblemType = "duplicate_id"
)

// Problem is a single rejected field
type Problem struct {
	Type        ProblemType
	Field       string
	Description string
}

// Result collects every problem found in one input
type Result struct {
	Problems []Problem
}

func (r *Result) add(t ProblemType, field, format string, args ...any) {
	r.Problems = append(r.Problems, Problem{
		Type:        t,
		Field:       field,
		Description: fmt.Sprintf(format, args...),
	})
}

func (r *Result) HasProblems() bool {
	return len(r.Problems) > 0
}

// FormatReport returns a human-readable list of all problems
func (r *Result) FormatReport() string {
	if !r.HasProblems() {
		return "No problems found."
	}

	var b strings.Builder
	b.WriteString("Invalid input:\n")
	for _, p := range r.Problems {
		fmt.Fprintf(&b, "- %s\n", p.Description)
	}
	return b.String()
}

// Err returns nil when there are no problems, otherwise an error carrying the report
func (r *Result) Err() error {
	if !r.HasProblems() {
		return nil
	}
	return errors.New(strings.TrimSuffix(r.FormatReport(), "\n"))
}

// ValidateMeal checks the fields a user enters for a meal
func ValidateMeal(m models.Meal) Result {
	var result Result

	if strings.TrimSpace(m.Name) == "" {
		result.add(ProblemMissingField, "name", "Meal name is required")
	}
	if !m.MealType.Valid() {
		result.add(ProblemInvalidMealType, "mealType", "Unknown meal type %q (use breakfast, lunch, dinner or snack)", m.MealType)
	}
	if !isValidDate(m.Date) {
		result.add(ProblemInvalidDate, "date", "Invalid date %q: expected YYYY-MM-DD", m.Date)
	}

	macros := []struct {
		field string
		value *float64
	}{
		{"calories", m.Calories},
		{"protein", m.Protein},
		{"carbs", m.Carbs},
		{"fat", m.Fat},
	}
	for _, macro := range macros {
		if macro.value == nil {
			continue
		}
		switch v := *macro.value; {
		case math.IsNaN(v) || math.IsInf(v, 0):
			result.add(ProblemInvalidMacro, macro.field, "%s must be a finite number (got %g)", macro.field, v)
		case v < 0:
			result.add(ProblemNegativeMacro, macro.field, "%s cannot be negative (got %g)", macro.field, v)
		}
	}

	if m.ImageURL != "" {
		u, err := url.Parse(m.ImageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			result.add(ProblemInvalidURL, "imageUrl", "Image URL %q must be an http(s) address", m.ImageURL)
		}
	}

	return result
}

// BookingRules constrain when a consultation can be requested
type BookingRules struct {
	Slots      []string
	WindowDays int
}

// DefaultBookingRules returns the built-in time slots and window
func DefaultBookingRules() BookingRules {
	return BookingRules{
		Slots:      constants.DefaultConsultationSlots,
		WindowDays: constants.DefaultConsultationWindowDays,
	}
}

// ValidateConsultationRequest accepts dates from tomorrow through today plus
// the booking window, at one of the configured time slots. Days are counted
// in now's location.
func ValidateConsultationRequest(date, timeOfDay string, now time.Time, rules BookingRules) Result {
	var result Result

	day, err := time.ParseInLocation(constants.DateFormat, date, now.Location())
	if err != nil {
		result.add(ProblemInvalidDate, "date", "Invalid date %q: expected YYYY-MM-DD", date)
	} else {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		first := today.AddDate(0, 0, 1)
		last := today.AddDate(0, 0, rules.WindowDays)
		if day.Before(first) || day.After(last) {
			result.add(ProblemOutsideWindow, "date", "Consultations can be booked from %s to %s",
				first.Format(constants.DateFormat), last.Format(constants.DateFormat))
		}
	}

	if !isValidTime(timeOfDay) {
		result.add(ProblemInvalidTime, "time", "Invalid time %q: expected HH:MM", timeOfDay)
	} else if !slices.Contains(rules.Slots, timeOfDay) {
		result.add(ProblemUnavailableSlot, "time", "Time %s is not available (choose one of %s)", timeOfDay, strings.Join(rules.Slots, ", "))
	}

	return result
}

// ValidateProfile checks optional profile fields
func ValidateProfile(patch models.UserPatch) Result {
	var result Result

	if patch.Email != nil && *patch.Email != "" {
		email := *patch.Email
		at := strings.LastIndex(email, "@")
		if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
			result.add(ProblemInvalidEmail, "email", "Invalid email address %q", email)
		}
	}

	return result
}

// ValidateMeals checks every stored meal and reports ids used more than once
func ValidateMeals(meals []models.Meal) Result {
	var result Result

	seen := make(map[string]bool, len(meals))
	for _, m := range meals {
		if m.ID == "" {
			result.add(ProblemMissingField, "id", "Meal %q has no id", m.Name)
		} else if seen[m.ID] {
			result.add(ProblemDuplicateID, "id", "Duplicate meal id %s", m.ID)
		}
		seen[m.ID] = true

		for _, p := range ValidateMeal(m).Problems {
			p.Description = fmt.Sprintf("Meal %s: %s", m.ID, p.Description)
			result.Problems = append(result.Problems, p)
		}
	}

	return result
}

// ValidateConsultations checks the stored consultations. Booking rules are not
// applied since they only bind new requests.
func ValidateConsultations(cs []models.Consultation) Result {
	var result Result

	seen := make(map[string]bool, len(cs))
	for _, c := range cs {
		if c.ID == "" {
			result.add(ProblemMissingField, "id", "Consultation on %s has no id", c.Date)
		} else if seen[c.ID] {
			result.add(ProblemDuplicateID, "id", "Duplicate consultation id %s", c.ID)
		}
		seen[c.ID] = true

		if !isValidDate(c.Date) {
			result.add(ProblemInvalidDate, "date", "Consultation %s: invalid date %q", c.ID, c.Date)
		}
		if !isValidTime(c.Time) {
			result.add(ProblemInvalidTime, "time", "Consultation %s: invalid time %q", c.ID, c.Time)
		}
	}

	return result
}

// Merge appends the problems of other
func (r *Result) Merge(other Result) {
	r.Problems = append(r.Problems, other.Problems...)
}

func isValidDate(s string) bool {
	_, err := time.Parse(constants.DateFormat, s)
	return err == nil
}

func isValidTime(s string) bool {
	_, err := time.Parse(constants.TimeFormat, s)
	return err == nil
}
