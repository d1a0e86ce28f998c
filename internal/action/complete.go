package action

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/sugarwarrior/internal/model"
)

// Kind is one of the closed set of completable actions.
type Kind string

const (
	KindWalkCompleted   Kind = "walk_completed"
	KindWaterAccepted   Kind = "water_accepted"
	KindProteinAccepted Kind = "protein_accepted"
	KindQuickLog        Kind = "quick_log"
)

// ErrUnknownKind is returned by Complete for kinds outside the closed set.
var ErrUnknownKind = errors.New("unknown action kind")

// ErrInvalidQuickLog is returned when quick-log input fails validation.
var ErrInvalidQuickLog = errors.New("invalid quick log")

// QuickLog is the caller-supplied food data for KindQuickLog.
type QuickLog struct {
	Name       string         `json:"name" validate:"required"`
	Category   model.Category `json:"category"`
	SugarGrams float64        `json:"sugar_grams" validate:"gte=0"`
	Calories   float64        `json:"calories" validate:"gte=0"`
}

// Presets are the one-tap quick-log foods.
var Presets = []QuickLog{
	{Name: "Soda", Category: model.CategorySoda, SugarGrams: 39, Calories: 150},
	{Name: "Coffee", Category: model.CategoryCoffee, SugarGrams: 5, Calories: 30},
	{Name: "Snack", Category: model.CategorySnack, SugarGrams: 12, Calories: 120},
	{Name: "Fruit", Category: model.CategoryFruit, SugarGrams: 15, Calories: 60},
}

// Preset looks up a quick-log preset by name, case-insensitively.
func Preset(name string) (QuickLog, bool) {
	for _, p := range Presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return QuickLog{}, false
}

// completion is the fixed shape of a non-food action.
type completion struct {
	name     string
	category model.Category
}

var completions = map[Kind]completion{
	KindWalkCompleted:   {name: "10-minute walk", category: model.CategoryExercise},
	KindWaterAccepted:   {name: "Drink water", category: model.CategoryHydration},
	KindProteinAccepted: {name: "Protein snack swap", category: model.CategoryNutrition},
}

// KindFor maps a recommendation type to the action that completes it.
func KindFor(t model.RecommendationType) (Kind, bool) {
	switch t {
	case model.RecommendActivity:
		return KindWalkCompleted, true
	case model.RecommendHydration:
		return KindWaterAccepted, true
	case model.RecommendNutrition:
		return KindProteinAccepted, true
	}
	return "", false
}

var validate = validator.New()

// Complete builds the Event for kind. Walk, water and protein completions
// carry zero grams and calories and are auto-logged; q is ignored for
// them. KindQuickLog requires q and produces a manual entry.
func (h *Handler) Complete(kind Kind, q *QuickLog) (model.Event, error) {
	ev := model.Event{
		ID:        h.ids.Generate(),
		Timestamp: model.Millis(h.clock.Now()),
	}

	if c, ok := completions[kind]; ok {
		ev.FoodName = c.name
		ev.Category = c.category
		ev.Method = model.MethodAutoLog
		return ev, nil
	}
	if kind != KindQuickLog {
		return model.Event{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if q == nil {
		return model.Event{}, fmt.Errorf("%w: missing food data", ErrInvalidQuickLog)
	}
	if err := validate.Struct(q); err != nil {
		return model.Event{}, fmt.Errorf("%w: %v", ErrInvalidQuickLog, err)
	}
	ev.FoodName = q.Name
	ev.SugarGrams = q.SugarGrams
	ev.Calories = q.Calories
	ev.Category = model.ParseCategory(string(q.Category))
	ev.Method = model.MethodManual
	return ev, nil
}
