package planner

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/foodplannery/internal/constants"
	"github.com/julianstephens/foodplannery/internal/models"
)

// SortByMealType returns a copy of meals ordered breakfast, lunch, dinner,
// snack. Unknown types go last and ties keep their original order.
func SortByMealType(meals []models.Meal) []models.Meal {
	out := append([]models.Meal(nil), meals...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MealType.Order() < out[j].MealType.Order()
	})
	return out
}

// ConsultationTime parses the consultation's date and time in loc.
func ConsultationTime(c models.Consultation, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(constants.DateFormat+" "+constants.TimeFormat, c.Date+" "+c.Time, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SplitConsultations orders cs chronologically and splits them at now.
// Upcoming consultations start strictly after now. Entries whose date or
// time cannot be parsed are treated as past and placed after the others.
func SplitConsultations(cs []models.Consultation, now time.Time) (upcoming, past []models.Consultation) {
	type entry struct {
		c  models.Consultation
		at time.Time
		ok bool
	}

	entries := make([]entry, len(cs))
	for i, c := range cs {
		at, ok := ConsultationTime(c, now.Location())
		entries[i] = entry{c: c, at: at, ok: ok}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ok && a.at.Before(b.at)
	})

	for _, e := range entries {
		if e.ok && e.at.After(now) {
			upcoming = append(upcoming, e.c)
		} else {
			past = append(past, e.c)
		}
	}
	return upcoming, past
}

// Progress summarises a set of meals, usually one day's.
type Progress struct {
	Completed int
	Total     int
	// Percent is Completed/Total rounded to the nearest whole percent, 0 with no meals
	Percent int

	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

func ProgressOf(meals []models.Meal) Progress {
	var p Progress
	p.Total = len(meals)
	for _, m := range meals {
		if m.Completed {
			p.Completed++
		}
		p.Calories += value(m.Calories)
		p.Protein += value(m.Protein)
		p.Carbs += value(m.Carbs)
		p.Fat += value(m.Fat)
	}
	if p.Total > 0 {
		p.Percent = int(math.Round(float64(p.Completed) / float64(p.Total) * 100))
	}
	return p
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
