package planner

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/julianstephens/foodplannery/internal/constants"
	"github.com/julianstephens/foodplannery/internal/models"
	"github.com/julianstephens/foodplannery/internal/storage"
)

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func setupStore(t *testing.T, opts ...Option) (*Store, *storage.MemoryStore) {
	t.Helper()
	slots := storage.NewMemoryStore()
	base := []Option{WithIDFunc(sequentialIDs("id-"))}
	return New(slots, IdentityFunc(func() string { return "user-1" }), append(base, opts...)...), slots
}

func oats() models.Meal {
	return models.Meal{Date: "2024-03-01", MealType: models.MealBreakfast, Name: "Oats"}
}

func TestAddMealThenGetByDate(t *testing.T) {
	s, _ := setupStore(t)

	added := s.AddMeal(oats())
	if added.ID == "" {
		t.Fatal("AddMeal() returned empty id")
	}
	if added.Completed {
		t.Error("new meal should not be completed")
	}

	want := oats()
	want.ID = added.ID
	if diff := cmp.Diff([]models.Meal{want}, s.GetMealsByDate("2024-03-01")); diff != "" {
		t.Errorf("GetMealsByDate() mismatch (-want +got):\n%s", diff)
	}
	if got := s.GetMealsByDate("2024-03-02"); len(got) != 0 {
		t.Errorf("GetMealsByDate(other day) = %v, want empty", got)
	}
}

func TestAddMealIgnoresCallerID(t *testing.T) {
	s, _ := setupStore(t)

	m := oats()
	m.ID = "chosen"
	if got := s.AddMeal(m); got.ID == "chosen" {
		t.Error("AddMeal() kept caller-supplied id")
	}
}

func TestAddMealRegeneratesCollidingID(t *testing.T) {
	ids := []string{"dup", "dup", "", "fresh"}
	s, _ := setupStore(t, WithIDFunc(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))

	first := s.AddMeal(oats())
	second := s.AddMeal(oats())
	if first.ID != "dup" || second.ID != "fresh" {
		t.Errorf("ids = %q, %q, want dup, fresh", first.ID, second.ID)
	}
}

func TestAddMealReturnsIndependentCopy(t *testing.T) {
	s, _ := setupStore(t)

	m := oats()
	m.Ingredients = []string{"oats", "milk"}
	m.Calories = models.Float(300)
	added := s.AddMeal(m)

	added.Ingredients[0] = "changed"
	*added.Calories = 1
	m.Ingredients[1] = "changed"

	stored, _ := s.Meal(added.ID)
	if diff := cmp.Diff([]string{"oats", "milk"}, stored.Ingredients); diff != "" {
		t.Errorf("stored ingredients aliased (-want +got):\n%s", diff)
	}
	if *stored.Calories != 300 {
		t.Errorf("stored calories = %v, want 300", *stored.Calories)
	}
}

func TestUpdateMealPartialPatch(t *testing.T) {
	s, _ := setupStore(t)
	m := oats()
	m.Description = "with berries"
	m.Calories = models.Float(350)
	added := s.AddMeal(m)

	name := "Overnight oats"
	protein := 12.0
	s.UpdateMeal(added.ID, models.MealPatch{Name: &name, Protein: &protein})

	want := added
	want.Name = "Overnight oats"
	want.Protein = models.Float(12)
	got, ok := s.Meal(added.ID)
	if !ok {
		t.Fatal("meal missing after update")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("UpdateMeal() mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateMealClearsFields(t *testing.T) {
	s, slots := setupStore(t)
	m := oats()
	m.Description = "with berries"
	m.Calories = models.Float(350)
	added := s.AddMeal(m)

	s.UpdateMeal(added.ID, models.MealPatch{Clear: []models.MealField{models.FieldCalories, models.FieldDescription}})

	want := added
	want.Description = ""
	want.Calories = nil
	got, _ := s.Meal(added.ID)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("UpdateMeal() mismatch (-want +got):\n%s", diff)
	}

	reloaded := New(slots, nil)
	fromSlot, ok := reloaded.Meal(added.ID)
	if !ok {
		t.Fatal("meal missing after reload")
	}
	if diff := cmp.Diff(want, fromSlot); diff != "" {
		t.Errorf("persisted meal mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	s, _ := setupStore(t)
	s.AddMeal(oats())
	s.RequestConsultation("2024-03-10", "09:00", "")
	beforeMeals, beforeConsults := s.Meals(), s.Consultations()

	name := "x"
	s.UpdateMeal("missing", models.MealPatch{Name: &name})
	s.DeleteMeal("missing")
	s.ToggleMealCompleted("missing")
	s.CancelConsultation("missing")

	if diff := cmp.Diff(beforeMeals, s.Meals()); diff != "" {
		t.Errorf("meals changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(beforeConsults, s.Consultations()); diff != "" {
		t.Errorf("consultations changed (-want +got):\n%s", diff)
	}
	if _, ok := s.Meal("missing"); ok {
		t.Error("Meal(missing) reported found")
	}
}

func TestToggleMealCompletedTwiceRestores(t *testing.T) {
	s, _ := setupStore(t)
	added := s.AddMeal(oats())

	s.ToggleMealCompleted(added.ID)
	if got, _ := s.Meal(added.ID); !got.Completed {
		t.Error("first toggle should complete the meal")
	}
	s.ToggleMealCompleted(added.ID)
	if got, _ := s.Meal(added.ID); got.Completed {
		t.Error("second toggle should restore completed=false")
	}
}

func TestDeleteMeal(t *testing.T) {
	s, _ := setupStore(t)
	a := s.AddMeal(oats())
	b := s.AddMeal(models.Meal{Date: "2024-03-01", MealType: models.MealLunch, Name: "Soup"})
	c := s.AddMeal(models.Meal{Date: "2024-03-01", MealType: models.MealDinner, Name: "Stew"})

	s.DeleteMeal(b.ID)

	if diff := cmp.Diff([]models.Meal{a, c}, s.Meals()); diff != "" {
		t.Errorf("Meals() after delete mismatch (-want +got):\n%s", diff)
	}
}

func TestGetMealsByMonth(t *testing.T) {
	s, _ := setupStore(t)
	add := func(date, name string) models.Meal {
		return s.AddMeal(models.Meal{Date: date, MealType: models.MealLunch, Name: name})
	}

	feb10a := add("2024-02-10", "a")
	add("2024-03-01", "march")
	feb02 := add("2024-02-02", "b")
	add("2023-02-10", "last year")
	feb10c := add("2024-02-10", "c")
	add("2024-02-xx", "garbage")
	add("", "empty")

	want := []DayMeals{
		{Date: "2024-02-10", Meals: []models.Meal{feb10a, feb10c}},
		{Date: "2024-02-02", Meals: []models.Meal{feb02}},
	}
	if diff := cmp.Diff(want, s.GetMealsByMonth(2024, time.February)); diff != "" {
		t.Errorf("GetMealsByMonth() mismatch (-want +got):\n%s", diff)
	}

	if got := s.GetMealsByMonth(2024, time.April); len(got) != 0 {
		t.Errorf("GetMealsByMonth(April) = %v, want empty", got)
	}

	wantDates := map[string]bool{"2024-02-10": true, "2024-02-02": true}
	if diff := cmp.Diff(wantDates, s.MealDates(2024, time.February)); diff != "" {
		t.Errorf("MealDates() mismatch (-want +got):\n%s", diff)
	}
}

func TestRequestAndCancelConsultation(t *testing.T) {
	s, _ := setupStore(t)

	c := s.RequestConsultation("2024-03-10", "10:00", "first visit")
	want := models.Consultation{
		ID:        c.ID,
		UserID:    "user-1",
		Date:      "2024-03-10",
		Time:      "10:00",
		Notes:     "first visit",
		Confirmed: false,
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("RequestConsultation() mismatch (-want +got):\n%s", diff)
	}

	other := s.RequestConsultation("2024-03-11", "11:00", "")
	s.CancelConsultation(c.ID)
	if diff := cmp.Diff([]models.Consultation{other}, s.Consultations()); diff != "" {
		t.Errorf("Consultations() after cancel mismatch (-want +got):\n%s", diff)
	}
}

func TestRequestConsultationWithoutIdentity(t *testing.T) {
	s := New(storage.NewMemoryStore(), nil)
	if c := s.RequestConsultation("2024-03-10", "10:00", ""); c.UserID != "" {
		t.Errorf("UserID = %q, want empty", c.UserID)
	}
}

func TestRoundTripThroughFreshStore(t *testing.T) {
	s, slots := setupStore(t)

	m := oats()
	m.Description = "steel cut"
	m.Calories = models.Float(320)
	m.Protein = models.Float(11)
	m.Carbs = models.Float(54)
	m.Fat = models.Float(6)
	m.Ingredients = []string{"oats", "water"}
	m.ImageURL = "https://example.com/oats.jpg"
	added := s.AddMeal(m)
	s.ToggleMealCompleted(added.ID)
	s.AddMeal(models.Meal{Date: "2024-03-01", MealType: models.MealSnack, Name: "Apple"})
	s.RequestConsultation("2024-03-10", "09:00", "bring logs")

	fresh := New(slots, nil)
	if diff := cmp.Diff(s.Meals(), fresh.Meals()); diff != "" {
		t.Errorf("meals round trip mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(s.Consultations(), fresh.Consultations()); diff != "" {
		t.Errorf("consultations round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSlotFormat(t *testing.T) {
	s, slots := setupStore(t)
	s.AddMeal(oats())
	s.RequestConsultation("2024-03-10", "09:00", "")

	meals, err := slots.Get(constants.SlotMeals)
	if err != nil {
		t.Fatal(err)
	}
	wantMeals := `[{"id":"id-1","date":"2024-03-01","mealType":"breakfast","name":"Oats","completed":false}]`
	if string(meals) != wantMeals {
		t.Errorf("meals slot = %s\nwant %s", meals, wantMeals)
	}

	consults, err := slots.Get(constants.SlotConsultations)
	if err != nil {
		t.Fatal(err)
	}
	wantConsults := `[{"id":"id-2","userId":"user-1","date":"2024-03-10","time":"09:00","confirmed":false}]`
	if string(consults) != wantConsults {
		t.Errorf("consultations slot = %s\nwant %s", consults, wantConsults)
	}

	s.DeleteMeal("id-1")
	meals, _ = slots.Get(constants.SlotMeals)
	if string(meals) != `[]` {
		t.Errorf("emptied meals slot = %s, want []", meals)
	}
}

func TestCorruptSlotStartsEmpty(t *testing.T) {
	slots := storage.NewMemoryStore()
	if err := slots.Set(constants.SlotMeals, []byte("{oops")); err != nil {
		t.Fatal(err)
	}
	if err := slots.Set(constants.SlotConsultations, []byte(`[{"id":"c1","userId":"u","date":"2024-03-10","time":"09:00","confirmed":true}]`)); err != nil {
		t.Fatal(err)
	}

	s := New(slots, nil)
	if got := s.Meals(); len(got) != 0 {
		t.Errorf("Meals() = %v, want empty", got)
	}
	if got := s.Consultations(); len(got) != 1 || !got[0].Confirmed {
		t.Errorf("Consultations() = %v, want the stored consultation", got)
	}
}

func TestWriteFailureKeepsMemoryAndReports(t *testing.T) {
	var failures []string
	s, slots := setupStore(t, WithPersistErrorHandler(func(slot string, err error) {
		failures = append(failures, slot)
	}))
	slots.FailWrites = errors.New("disk full")

	added := s.AddMeal(oats())
	s.RequestConsultation("2024-03-10", "09:00", "")

	if diff := cmp.Diff([]string{constants.SlotMeals, constants.SlotConsultations}, failures); diff != "" {
		t.Errorf("handler calls mismatch (-want +got):\n%s", diff)
	}
	if _, ok := s.Meal(added.ID); !ok {
		t.Error("meal should stay in memory after a failed write")
	}

	// The next successful write catches the slot up
	slots.FailWrites = nil
	s.ToggleMealCompleted(added.ID)
	fresh := New(slots, nil)
	if diff := cmp.Diff(s.Meals(), fresh.Meals(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("slot not caught up (-want +got):\n%s", diff)
	}
}

func TestReload(t *testing.T) {
	s, slots := setupStore(t)
	s.AddMeal(oats())

	if err := slots.Set(constants.SlotMeals, []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	s.Reload()
	if got := s.Meals(); len(got) != 0 {
		t.Errorf("Meals() after Reload = %v, want empty", got)
	}
}
