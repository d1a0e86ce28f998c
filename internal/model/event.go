package model

import (
	"strings"
	"time"
)

// Category tags a logged event. The set is open; unrecognised values
// decode as CategoryUnknown.
type Category string

const (
	CategorySoda      Category = "soda"
	CategoryCoffee    Category = "coffee"
	CategorySnack     Category = "snack"
	CategoryFruit     Category = "fruit"
	CategoryExercise  Category = "exercise"
	CategoryHydration Category = "hydration"
	CategoryNutrition Category = "nutrition"
	CategoryUnknown   Category = "unknown"
)

var knownCategories = map[Category]bool{
	CategorySoda:      true,
	CategoryCoffee:    true,
	CategorySnack:     true,
	CategoryFruit:     true,
	CategoryExercise:  true,
	CategoryHydration: true,
	CategoryNutrition: true,
}

// ParseCategory maps a wire or user string onto a Category.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if knownCategories[c] {
		return c
	}
	return CategoryUnknown
}

// Method records how an event was created.
type Method string

const (
	MethodManual    Method = "Manual"
	MethodAutoLog   Method = "AutoLog"
	MethodConfirmed Method = "Server"
)

// Event is a logged intake or completed action.
//
// ID is the client-local key used for every UI operation. RemoteID is the
// backend's identifier, filled in after a successful submission or when the
// event was fetched from the backend; it is only used for calls back to it.
type Event struct {
	ID         string   `json:"id" validate:"required"`
	RemoteID   string   `json:"remote_id,omitempty"`
	Timestamp  int64    `json:"timestamp" validate:"gt=0"`
	FoodName   string   `json:"food_name" validate:"required"`
	SugarGrams float64  `json:"sugar_grams" validate:"gte=0"`
	Calories   float64  `json:"calories" validate:"gte=0"`
	Category   Category `json:"category"`
	Method     Method   `json:"method"`
}

// Time returns the event timestamp in the given location.
func (e Event) Time(loc *time.Location) time.Time {
	return time.UnixMilli(e.Timestamp).In(loc)
}

// Millis converts t to epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// SameDay reports whether a and b fall on the same calendar day in b's location.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// TotalOn sums sugar grams over events whose timestamp falls on day's
// calendar date (in day's location).
func TotalOn(history []Event, day time.Time) float64 {
	var total float64
	for _, e := range history {
		if SameDay(e.Time(day.Location()), day) {
			total += e.SugarGrams
		}
	}
	return total
}

// EntriesOn returns the events logged on day's calendar date, preserving order.
func EntriesOn(history []Event, day time.Time) []Event {
	var out []Event
	for _, e := range history {
		if SameDay(e.Time(day.Location()), day) {
			out = append(out, e)
		}
	}
	return out
}
