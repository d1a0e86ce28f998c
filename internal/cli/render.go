package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/sugarwarrior/internal/action"
	"github.com/roach88/sugarwarrior/internal/engine"
	"github.com/roach88/sugarwarrior/internal/model"
	"github.com/roach88/sugarwarrior/internal/session"
)

// todayView is the daily status line.
type todayView struct {
	TotalGrams float64     `json:"total_grams"`
	DailyLimit float64     `json:"daily_limit_g"`
	Percentage float64     `json:"percentage"`
	Status     engine.Band `json:"status"`
}

func newTodayView(total, limit float64) (todayView, error) {
	band, pct, err := engine.Status(total, limit)
	if err != nil {
		return todayView{}, err
	}
	return todayView{TotalGrams: total, DailyLimit: limit, Percentage: pct, Status: band}, nil
}

func (v todayView) String() string {
	return fmt.Sprintf("Today: %.1f g of %g g (%.0f%%, %s)", v.TotalGrams, v.DailyLimit, v.Percentage, v.Status)
}

// insightView is the insight command's payload.
type insightView struct {
	Today   todayView     `json:"today"`
	Insight model.Insight `json:"insight"`
	Streak  int           `json:"streak"`
	Points  int           `json:"points"`
}

func renderInsight(v insightView) string {
	var b strings.Builder
	fmt.Fprintln(&b, v.Today)
	fmt.Fprintf(&b, "Streak: %d day(s), %d point(s)\n", v.Streak, v.Points)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, v.Insight.Text)
	fmt.Fprintf(&b, "Why: %s\n", v.Insight.Why)
	if r := v.Insight.Recommendation; r != nil {
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "Suggested: %s (%s)\n", r.Action, r.Type)
		fmt.Fprintf(&b, "  %s\n", r.Reason)
		fmt.Fprint(&b, "Run 'sugarwarrior accept' to act on it.")
	} else {
		fmt.Fprint(&b, "No action needed right now.")
	}
	return b.String()
}

// entryView is one logged event with its local time.
type entryView struct {
	model.Event
	At string `json:"at"`
}

func newEntryView(e model.Event, loc *time.Location) entryView {
	return entryView{Event: e, At: e.Time(loc).Format("2006-01-02 15:04")}
}

func renderHistory(entries []entryView, today todayView) string {
	if len(entries) == 0 {
		return "No entries.\n" + today.String()
	}
	var b strings.Builder
	for _, e := range entries {
		synced := ""
		if e.RemoteID != "" {
			synced = " *"
		}
		fmt.Fprintf(&b, "%s  %-24s %6.1f g %6.0f kcal  %-9s %s%s\n",
			e.At, e.FoodName, e.SugarGrams, e.Calories, e.Category, e.ID, synced)
	}
	fmt.Fprint(&b, today)
	return b.String()
}

// recordView is what log, quick and accept report.
type recordView struct {
	Event  model.Event   `json:"event"`
	Reward *model.Reward `json:"reward,omitempty"`
	Today  todayView     `json:"today"`
}

func renderRecord(v recordView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Logged %s (%.1f g, %.0f kcal) as %s\n", v.Event.FoodName, v.Event.SugarGrams, v.Event.Calories, v.Event.ID)
	if r := v.Reward; r != nil {
		if r.PointsEarned > 0 {
			fmt.Fprintf(&b, "+%d points\n", r.PointsEarned)
		}
		for _, m := range r.PointsMessages {
			fmt.Fprintf(&b, "  %s\n", m)
		}
		if r.Streak > 0 {
			fmt.Fprintf(&b, "Streak: %d day(s)\n", r.Streak)
		}
	}
	fmt.Fprint(&b, v.Today)
	return b.String()
}

func renderProfile(p model.Profile) string {
	var b strings.Builder
	name := p.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(&b, "%s %s", p.Avatar, name)
	if p.Username != "" {
		fmt.Fprintf(&b, " @%s", p.Username)
	}
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Age %d", p.Age)
	if p.Gender != "" {
		fmt.Fprintf(&b, ", %s", p.Gender)
	}
	fmt.Fprintf(&b, ", %g cm, %g kg, BMI %.1f\n", p.Height, p.Weight, p.BMI)
	fmt.Fprintf(&b, "Daily limit: %g g\n", p.DailyLimit)
	fmt.Fprintf(&b, "Activity: %d steps, %g h sleep\n", p.Activity.Steps, p.Activity.SleepHours)
	fmt.Fprintf(&b, "Points: %d\n", p.Points)
	switch {
	case p.RemoteID != "":
		fmt.Fprintf(&b, "Account: synced (%s)", p.RemoteID)
	case p.Onboarded:
		fmt.Fprint(&b, "Account: onboarded, not synced")
	default:
		fmt.Fprint(&b, "Account: none (run 'sugarwarrior register' or 'sugarwarrior login')")
	}
	return b.String()
}

var heatGlyphs = [session.MaxHeatmapLevel + 1]string{".", "░", "▒", "▓", "█"}

func renderHeatmap(cells []session.DayTotal) string {
	var b strings.Builder
	for _, c := range cells {
		fmt.Fprintf(&b, "%s %s %6.1f g\n", c.Date, heatGlyphs[c.Level], c.Grams)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderTimer(s action.TimerState) string {
	if !s.Active {
		return "No walk timer running."
	}
	return fmt.Sprintf("Walk timer running: %s left of %s.", s.Remaining.Round(time.Second), s.Duration)
}
