package system

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/foodplannery/internal/cli/clitest"
	"github.com/julianstephens/foodplannery/internal/constants"
	"github.com/julianstephens/foodplannery/internal/models"
)

func TestDebugDBPathCmd(t *testing.T) {
	env := clitest.New(t)

	if err := (&DebugDBPathCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}

	var got map[string]string
	if err := json.Unmarshal(env.Out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, env.Out.String())
	}
	if got["path"] != ":memory:" {
		t.Errorf("path = %q", got["path"])
	}
}

func TestDebugDumpMealCmd(t *testing.T) {
	env := clitest.LoggedIn(t)
	added := env.Ctx.Planner().AddMeal(models.Meal{Date: "2024-03-13", MealType: models.MealDinner, Name: "Curry"})

	if err := (&DebugDumpMealCmd{ID: added.ID}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	var got models.Meal
	if err := json.Unmarshal(env.Out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if diff := cmp.Diff(added, got); diff != "" {
		t.Errorf("dumped meal mismatch (-want +got):\n%s", diff)
	}

	if err := (&DebugDumpMealCmd{ID: "missing"}).Run(env.Ctx); err == nil || !strings.Contains(err.Error(), "meal not found") {
		t.Errorf("error = %v", err)
	}
}

func TestDebugDumpSlotCmd(t *testing.T) {
	env := clitest.LoggedIn(t)
	env.Ctx.Planner().RequestConsultation("2024-03-20", "10:00", "")

	if err := (&DebugDumpSlotCmd{Key: constants.SlotConsultations}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.Out.String(), `"userId": "user-1"`) {
		t.Errorf("output = %s", env.Out.String())
	}

	if err := (&DebugDumpSlotCmd{Key: "nope"}).Run(env.Ctx); err == nil || !strings.Contains(err.Error(), "slot not found") {
		t.Errorf("error = %v", err)
	}

	if err := env.Store.Set("broken", []byte("{")); err != nil {
		t.Fatal(err)
	}
	if err := (&DebugDumpSlotCmd{Key: "broken"}).Run(env.Ctx); err == nil {
		t.Error("expected invalid JSON error")
	}
}

func TestDebugSlotsCmd(t *testing.T) {
	env := clitest.LoggedIn(t)
	env.Ctx.Planner().AddMeal(models.Meal{Date: "2024-03-13", MealType: models.MealLunch, Name: "Soup"})

	if err := (&DebugSlotsCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	got := strings.Fields(env.Out.String())
	want := []string{constants.SlotMeals, constants.SlotUser}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("slots mismatch (-want +got):\n%s", diff)
	}
}
