package meals

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/foodplannery/internal/cli"
	"github.com/julianstephens/foodplannery/internal/constants"
	"github.com/julianstephens/foodplannery/internal/models"
	"github.com/julianstephens/foodplannery/internal/planner"
	"github.com/julianstephens/foodplannery/internal/tui/components/calendar"
	"github.com/julianstephens/foodplannery/internal/validation"
)

type MealAddCmd struct {
	Name        string   `arg:"" help:"Meal name."`
	Date        string   `short:"d" help:"Date (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
	Type        string   `short:"t" help:"Meal type (breakfast|lunch|dinner|snack)." default:"lunch"`
	Description string   `help:"Short description."`
	Calories    *float64 `help:"Calories (kcal)."`
	Protein     *float64 `help:"Protein in grams."`
	Carbs       *float64 `help:"Carbohydrates in grams."`
	Fat         *float64 `help:"Fat in grams."`
	Ingredients []string `short:"i" help:"Comma-separated ingredients." sep:","`
	ImageURL    string   `name:"image-url" help:"Image URL."`
}

func (c *MealAddCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireUser(); err != nil {
		return err
	}

	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	meal := models.Meal{
		Date:        date,
		MealType:    models.MealType(strings.ToLower(c.Type)),
		Name:        strings.TrimSpace(c.Name),
		Description: c.Description,
		Calories:    c.Calories,
		Protein:     c.Protein,
		Carbs:       c.Carbs,
		Fat:         c.Fat,
		Ingredients: trimAll(c.Ingredients),
		ImageURL:    c.ImageURL,
	}
	result := validation.ValidateMeal(meal)
	if err := result.Err(); err != nil {
		return err
	}

	added := ctx.Planner().AddMeal(meal)
	ctx.Printf("✓ Added %s for %s on %s (id: %s)\n", added.Name, added.MealType, added.Date, added.ID)
	return nil
}

type MealEditCmd struct {
	ID          string    `arg:"" help:"Meal ID."`
	Name        *string   `help:"New name."`
	Date        *string   `short:"d" help:"New date (YYYY-MM-DD)."`
	Type        *string   `short:"t" help:"New meal type."`
	Description *string   `help:"New description."`
	Calories    *float64  `help:"Calories (kcal)."`
	Protein     *float64  `help:"Protein in grams."`
	Carbs       *float64  `help:"Carbohydrates in grams."`
	Fat         *float64  `help:"Fat in grams."`
	Ingredients *[]string `short:"i" help:"Comma-separated ingredients (replaces the list)." sep:","`
	ImageURL    *string   `name:"image-url" help:"Image URL."`
	Clear       []string  `help:"Comma-separated optional fields to remove (description, calories, protein, carbs, fat, ingredients, image-url)." sep:","`
}

func (c *MealEditCmd) patch(ctx *cli.Context) (models.MealPatch, error) {
	patch := models.MealPatch{
		Name:        c.Name,
		Description: c.Description,
		Calories:    c.Calories,
		Protein:     c.Protein,
		Carbs:       c.Carbs,
		Fat:         c.Fat,
		ImageURL:    c.ImageURL,
	}
	if c.Date != nil {
		date, err := ctx.ResolveDate(*c.Date)
		if err != nil {
			return patch, err
		}
		patch.Date = &date
	}
	if c.Type != nil {
		mt := models.MealType(strings.ToLower(*c.Type))
		patch.MealType = &mt
	}
	if c.Ingredients != nil {
		ingredients := trimAll(*c.Ingredients)
		patch.Ingredients = &ingredients
	}

	set := map[models.MealField]bool{
		models.FieldDescription: c.Description != nil,
		models.FieldCalories:    c.Calories != nil,
		models.FieldProtein:     c.Protein != nil,
		models.FieldCarbs:       c.Carbs != nil,
		models.FieldFat:         c.Fat != nil,
		models.FieldIngredients: c.Ingredients != nil,
		models.FieldImageURL:    c.ImageURL != nil,
	}
	for _, name := range trimAll(c.Clear) {
		field, ok := models.ParseMealField(strings.ToLower(name))
		if !ok {
			return patch, fmt.Errorf("cannot clear %q: choose from %s", name, clearableList())
		}
		if set[field] {
			return patch, fmt.Errorf("cannot both set and clear %s", field)
		}
		patch.Clear = append(patch.Clear, field)
	}
	return patch, nil
}

func clearableList() string {
	names := make([]string, len(models.ClearableFields))
	for i, f := range models.ClearableFields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func (c *MealEditCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireUser(); err != nil {
		return err
	}

	existing, ok := ctx.Planner().Meal(c.ID)
	if !ok {
		return fmt.Errorf("meal not found: %s", c.ID)
	}

	patch, err := c.patch(ctx)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		ctx.Println("No changes specified.")
		return nil
	}

	result := validation.ValidateMeal(patch.Apply(existing))
	if err := result.Err(); err != nil {
		return err
	}

	ctx.Planner().UpdateMeal(c.ID, patch)
	ctx.Printf("✓ Updated %s\n", c.ID)
	return nil
}

type MealDeleteCmd struct {
	ID string `arg:"" help:"Meal ID."`
}

func (c *MealDeleteCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireUser(); err != nil {
		return err
	}

	meal, ok := ctx.Planner().Meal(c.ID)
	if !ok {
		return fmt.Errorf("meal not found: %s", c.ID)
	}
	ctx.Planner().DeleteMeal(c.ID)
	ctx.Printf("✓ Deleted %s (%s, %s)\n", meal.Name, meal.MealType, meal.Date)
	return nil
}

type MealDoneCmd struct {
	ID string `arg:"" help:"Meal ID."`
}

func (c *MealDoneCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireUser(); err != nil {
		return err
	}

	if _, ok := ctx.Planner().Meal(c.ID); !ok {
		return fmt.Errorf("meal not found: %s", c.ID)
	}
	ctx.Planner().ToggleMealCompleted(c.ID)

	meal, _ := ctx.Planner().Meal(c.ID)
	if meal.Completed {
		ctx.Printf("✓ Marked %s as eaten\n", meal.Name)
	} else {
		ctx.Printf("Marked %s as not eaten\n", meal.Name)
	}
	return nil
}

type MealListCmd struct {
	Date string `arg:"" optional:"" help:"Date to show (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
}

func (c *MealListCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireUser(); err != nil {
		return err
	}

	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	meals := planner.SortByMealType(ctx.Planner().GetMealsByDate(date))
	ctx.Printf("Meals for %s:\n\n", date)
	if len(meals) == 0 {
		ctx.Println("  No meals planned")
		return nil
	}

	for _, m := range meals {
		ctx.Println(FormatMealLine(m))
	}

	p := planner.ProgressOf(meals)
	ctx.Printf("\nProgress: %d/%d eaten (%d%%)\n", p.Completed, p.Total, p.Percent)
	if p.Calories > 0 {
		ctx.Printf("Planned: %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat\n", p.Calories, p.Protein, p.Carbs, p.Fat)
	}
	return nil
}

type MealMonthCmd struct {
	Month string `arg:"" optional:"" help:"Month to show (YYYY-MM); defaults to the current month."`
}

func (c *MealMonthCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireUser(); err != nil {
		return err
	}

	now := ctx.Clock()
	year, month := now.Year(), now.Month()
	if c.Month != "" {
		t, err := time.Parse("2006-01", c.Month)
		if err != nil {
			return fmt.Errorf("invalid month %q, use YYYY-MM", c.Month)
		}
		year, month = t.Year(), t.Month()
	}

	days := ctx.Planner().GetMealsByMonth(year, month)
	marked := make(map[string]bool, len(days))
	for _, d := range days {
		marked[d.Date] = true
	}

	ctx.Println(calendar.Render(year, month, "", now.Format(constants.DateFormat), marked))
	ctx.Println()

	if len(days) == 0 {
		ctx.Println("No meals planned this month")
		return nil
	}
	for _, d := range days {
		ctx.Printf("%s:\n", d.Date)
		for _, m := range planner.SortByMealType(d.Meals) {
			ctx.Println(FormatMealLine(m))
		}
	}
	return nil
}

// FormatMealLine renders one meal as an indented list row
func FormatMealLine(m models.Meal) string {
	check := "[ ]"
	if m.Completed {
		check = "[x]"
	}
	line := fmt.Sprintf("  %s %-9s %s", check, m.MealType, m.Name)
	if m.Calories != nil {
		line += fmt.Sprintf(" (%.0f kcal)", *m.Calories)
	}
	return line + "  " + m.ID
}

func trimAll(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
