package models

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealTypes lists the meal types in display order
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// Order returns the display priority of the meal type. Unknown types sort last.
func (t MealType) Order() int {
	for i, mt := range MealTypes {
		if mt == t {
			return i
		}
	}
	return len(MealTypes)
}

func (t MealType) Valid() bool {
	return t.Order() < len(MealTypes)
}

// ParseMealType converts user input into a MealType, returning false for unknown values
func ParseMealType(s string) (MealType, bool) {
	t := MealType(s)
	return t, t.Valid()
}

type Meal struct {
	ID          string   `json:"id"`
	Date        string   `json:"date"` // YYYY-MM-DD format
	MealType    MealType `json:"mealType"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Calories    *float64 `json:"calories,omitempty"`
	Protein     *float64 `json:"protein,omitempty"` // grams
	Carbs       *float64 `json:"carbs,omitempty"`   // grams
	Fat         *float64 `json:"fat,omitempty"`     // grams
	Ingredients []string `json:"ingredients,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Completed   bool     `json:"completed"`
}

// MealField names an optional meal field that a patch can clear
type MealField string

const (
	FieldDescription MealField = "description"
	FieldCalories    MealField = "calories"
	FieldProtein     MealField = "protein"
	FieldCarbs       MealField = "carbs"
	FieldFat         MealField = "fat"
	FieldIngredients MealField = "ingredients"
	FieldImageURL    MealField = "image-url"
)

// ClearableFields lists the fields accepted by MealPatch.Clear
var ClearableFields = []MealField{
	FieldDescription, FieldCalories, FieldProtein, FieldCarbs, FieldFat, FieldIngredients, FieldImageURL,
}

// ParseMealField converts user input into a clearable field, returning false for unknown names
func ParseMealField(s string) (MealField, bool) {
	for _, f := range ClearableFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// MealPatch carries a partial update. Nil fields are left untouched; fields
// named in Clear are reset to empty after the set fields are merged.
type MealPatch struct {
	Date        *string
	MealType    *MealType
	Name        *string
	Description *string
	Calories    *float64
	Protein     *float64
	Carbs       *float64
	Fat         *float64
	Ingredients *[]string
	ImageURL    *string
	Completed   *bool
	Clear       []MealField
}

// IsEmpty reports whether the patch sets no fields
func (p MealPatch) IsEmpty() bool {
	return p.Date == nil && p.MealType == nil && p.Name == nil && p.Description == nil &&
		p.Calories == nil && p.Protein == nil && p.Carbs == nil && p.Fat == nil &&
		p.Ingredients == nil && p.ImageURL == nil && p.Completed == nil && len(p.Clear) == 0
}

// Apply returns a copy of m with the patch's set fields merged in. The ID is never changed.
func (p MealPatch) Apply(m Meal) Meal {
	if p.Date != nil {
		m.Date = *p.Date
	}
	if p.MealType != nil {
		m.MealType = *p.MealType
	}
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Calories != nil {
		m.Calories = Float(*p.Calories)
	}
	if p.Protein != nil {
		m.Protein = Float(*p.Protein)
	}
	if p.Carbs != nil {
		m.Carbs = Float(*p.Carbs)
	}
	if p.Fat != nil {
		m.Fat = Float(*p.Fat)
	}
	if p.Ingredients != nil {
		m.Ingredients = append([]string(nil), (*p.Ingredients)...)
	}
	if p.ImageURL != nil {
		m.ImageURL = *p.ImageURL
	}
	if p.Completed != nil {
		m.Completed = *p.Completed
	}
	for _, f := range p.Clear {
		switch f {
		case FieldDescription:
			m.Description = ""
		case FieldCalories:
			m.Calories = nil
		case FieldProtein:
			m.Protein = nil
		case FieldCarbs:
			m.Carbs = nil
		case FieldFat:
			m.Fat = nil
		case FieldIngredients:
			m.Ingredients = nil
		case FieldImageURL:
			m.ImageURL = ""
		}
	}
	return m
}

// Clone returns a deep copy so callers cannot alias the store's slices or macro pointers
func (m Meal) Clone() Meal {
	c := m
	if m.Calories != nil {
		c.Calories = Float(*m.Calories)
	}
	if m.Protein != nil {
		c.Protein = Float(*m.Protein)
	}
	if m.Carbs != nil {
		c.Carbs = Float(*m.Carbs)
	}
	if m.Fat != nil {
		c.Fat = Float(*m.Fat)
	}
	if m.Ingredients != nil {
		c.Ingredients = append([]string(nil), m.Ingredients...)
	}
	return c
}

// Float returns a pointer to v, for optional macro fields
func Float(v float64) *float64 {
	return &v
}
