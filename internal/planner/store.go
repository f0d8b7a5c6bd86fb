// Package planner owns the meal and consultation collections.
//
// Every mutation rewrites the whole affected collection to its slot while the
// store lock is held, so slot writes land in the order the mutations happened.
// A failed write is reported to the persist error handler and otherwise
// ignored: memory keeps the new state and the next successful write catches
// the slot up.
package planner

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/foodplannery/internal/constants"
	"github.com/julianstephens/foodplannery/internal/logger"
	"github.com/julianstephens/foodplannery/internal/models"
	"github.com/julianstephens/foodplannery/internal/storage"
)

// Slots is the durable key-value storage the collections are persisted to.
type Slots interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// Identity supplies the id stamped onto new consultations.
type Identity interface {
	CurrentUserID() string
}

// IdentityFunc adapts a plain function to Identity.
type IdentityFunc func() string

func (f IdentityFunc) CurrentUserID() string { return f() }

// DayMeals is one date's meals within a month query.
type DayMeals struct {
	Date  string
	Meals []models.Meal
}

type Option func(*Store)

// WithIDFunc replaces the id generator used for new meals and consultations.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithPersistErrorHandler is called with the slot key whenever a write fails.
func WithPersistErrorHandler(fn func(slot string, err error)) Option {
	return func(s *Store) { s.onPersistError = fn }
}

type Store struct {
	mu             sync.Mutex
	slots          Slots
	identity       Identity
	newID          func() string
	onPersistError func(slot string, err error)

	meals         []models.Meal
	consultations []models.Consultation
}

// New builds a store and loads both collections from slots.
func New(slots Slots, identity Identity, opts ...Option) *Store {
	s := &Store{
		slots:    slots,
		identity: identity,
		newID:    uuid.NewString,
		onPersistError: func(slot string, err error) {
			logger.Warn("Failed to persist collection", "slot", slot, "error", err)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reload()
	return s
}

// Reload replaces both in-memory collections with the current slot contents.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meals = nil
	s.consultations = nil
	loadSlot(s.slots, constants.SlotMeals, &s.meals)
	loadSlot(s.slots, constants.SlotConsultations, &s.consultations)
}

// loadSlot leaves dst empty when the slot is missing or unreadable
func loadSlot[T any](slots Slots, key string, dst *[]T) {
	data, err := slots.Get(key)
	if err != nil {
		if !storage.IsNotFound(err) {
			logger.Warn("Failed to read slot, starting empty", "slot", key, "error", err)
		}
		return
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warn("Slot holds invalid JSON, starting empty", "slot", key, "error", err)
		return
	}
	*dst = items
}

// persist must be called with s.mu held
func persist[T any](s *Store, key string, items []T) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err == nil {
		err = s.slots.Set(key, data)
	}
	if err != nil && s.onPersistError != nil {
		s.onPersistError(key, fmt.Errorf("write %s: %w", key, err))
	}
}

// uniqueID must be called with s.mu held
func (s *Store) uniqueID(taken func(id string) bool) string {
	for {
		id := s.newID()
		if id != "" && !taken(id) {
			return id
		}
	}
}

func (s *Store) mealIndex(id string) int {
	for i, m := range s.meals {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) consultationIndex(id string) int {
	for i, c := range s.consultations {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// AddMeal stores a copy of meal under a fresh id and returns it. Any ID on
// the argument is ignored.
func (s *Store) AddMeal(meal models.Meal) models.Meal {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := meal.Clone()
	m.ID = s.uniqueID(func(id string) bool { return s.mealIndex(id) >= 0 })
	s.meals = append(s.meals, m)
	persist(s, constants.SlotMeals, s.meals)

	return m.Clone()
}

// UpdateMeal merges the set fields of patch into the meal. Unknown ids are ignored.
func (s *Store) UpdateMeal(id string, patch models.MealPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.mealIndex(id); i >= 0 {
		s.meals[i] = patch.Apply(s.meals[i])
	}
	persist(s, constants.SlotMeals, s.meals)
}

func (s *Store) DeleteMeal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.mealIndex(id); i >= 0 {
		s.meals = append(s.meals[:i:i], s.meals[i+1:]...)
	}
	persist(s, constants.SlotMeals, s.meals)
}

func (s *Store) ToggleMealCompleted(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.mealIndex(id); i >= 0 {
		s.meals[i].Completed = !s.meals[i].Completed
	}
	persist(s, constants.SlotMeals, s.meals)
}

// GetMealsByDate returns the meals whose date is exactly date, in insertion order.
func (s *Store) GetMealsByDate(date string) []models.Meal {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Meal
	for _, m := range s.meals {
		if m.Date == date {
			out = append(out, m.Clone())
		}
	}
	return out
}

// GetMealsByMonth groups the meals dated in year/month (1-12) by date string.
// Groups appear in the order their date was first seen; meals with dates
// that do not parse are left out.
func (s *Store) GetMealsByMonth(year int, month time.Month) []DayMeals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []DayMeals
	index := make(map[string]int)
	for _, m := range s.meals {
		d, err := time.Parse(constants.DateFormat, m.Date)
		if err != nil || d.Year() != year || d.Month() != month {
			continue
		}
		i, ok := index[m.Date]
		if !ok {
			i = len(out)
			index[m.Date] = i
			out = append(out, DayMeals{Date: m.Date})
		}
		out[i].Meals = append(out[i].Meals, m.Clone())
	}
	return out
}

// MealDates returns the set of dates in year/month that have at least one meal.
func (s *Store) MealDates(year int, month time.Month) map[string]bool {
	dates := make(map[string]bool)
	for _, day := range s.GetMealsByMonth(year, month) {
		dates[day.Date] = true
	}
	return dates
}

func (s *Store) Meals() []models.Meal {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Meal, len(s.meals))
	for i, m := range s.meals {
		out[i] = m.Clone()
	}
	return out
}

func (s *Store) Meal(id string) (models.Meal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.mealIndex(id); i >= 0 {
		return s.meals[i].Clone(), true
	}
	return models.Meal{}, false
}

// RequestConsultation books an unconfirmed consultation for the current user.
func (s *Store) RequestConsultation(date, timeOfDay, notes string) models.Consultation {
	s.mu.Lock()
	defer s.mu.Unlock()

	var userID string
	if s.identity != nil {
		userID = s.identity.CurrentUserID()
	}

	c := models.Consultation{
		ID:        s.uniqueID(func(id string) bool { return s.consultationIndex(id) >= 0 }),
		UserID:    userID,
		Date:      date,
		Time:      timeOfDay,
		Notes:     notes,
		Confirmed: false,
	}
	s.consultations = append(s.consultations, c)
	persist(s, constants.SlotConsultations, s.consultations)

	return c
}

func (s *Store) CancelConsultation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.consultationIndex(id); i >= 0 {
		s.consultations = append(s.consultations[:i:i], s.consultations[i+1:]...)
	}
	persist(s, constants.SlotConsultations, s.consultations)
}

func (s *Store) Consultations() []models.Consultation {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.Consultation{}, s.consultations...)
}
