package session

import (
	"fmt"
	"math"
	"time"

	"github.com/roach88/sugarwarrior/internal/model"
)

// MaxHeatmapLevel is the highest heatmap intensity.
const MaxHeatmapLevel = 4

// DayTotal is one cell of the intake heatmap.
type DayTotal struct {
	Date  string  `json:"date"`
	Grams float64 `json:"grams"`
	Level int     `json:"level"`
}

// Insight evaluates the recommendation engine against the current
// profile and history.
func (s *Store) Insight() (model.Insight, error) {
	snap := s.Snapshot()
	return s.engine.Evaluate(snap.Profile, snap.History, s.clock.Now())
}

// Heatmap returns per-day sugar totals for the days calendar days ending
// on now's date, oldest first. Level is floor(grams/10) capped at
// MaxHeatmapLevel.
func (s *Store) Heatmap(now time.Time, days int) ([]DayTotal, error) {
	if days <= 0 {
		return nil, validation("heatmap", fmt.Errorf("days must be positive, got %d", days))
	}
	s.mu.Lock()
	totals := make(map[string]float64, days)
	for _, e := range s.history {
		totals[e.Time(now.Location()).Format(time.DateOnly)] += e.SugarGrams
	}
	s.mu.Unlock()

	y, m, d := now.Date()
	out := make([]DayTotal, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := time.Date(y, m, d-i, 12, 0, 0, 0, now.Location()).Format(time.DateOnly)
		g := totals[key]
		out = append(out, DayTotal{Date: key, Grams: g, Level: heatLevel(g)})
	}
	return out, nil
}

func heatLevel(grams float64) int {
	return min(int(math.Floor(grams/10)), MaxHeatmapLevel)
}
