package engine

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/roach88/sugarwarrior/internal/model"
)

// DefaultLookback is the window within which an already-actioned
// recommendation is not suggested again.
const DefaultLookback = 60 * time.Minute

// Thresholds, all in percent of the daily limit unless noted.
const (
	criticalPct    = 100
	highPct        = 80
	sleepPct       = 50
	agePct         = 60
	lowSteps       = 5000
	poorSleepHrs   = 6
	olderAge       = 45
	nightHour      = 18
	lateSleepHrs   = 7
	lateGrams      = 5
	overweightBMI  = 25
	sedentarySteps = 3000
)

// Rule identifies which recommendation rule fired.
type Rule int

const (
	RuleNone Rule = iota
	RuleCriticalSpike
	RuleLowActivity
	RulePoorSleep
	RuleAgeFactor
	RuleFallbackWalk
	RuleFallbackWater
)

var ruleNames = map[Rule]string{
	RuleNone:          "none",
	RuleCriticalSpike: "critical_spike",
	RuleLowActivity:   "low_activity",
	RulePoorSleep:     "poor_sleep",
	RuleAgeFactor:     "age_factor",
	RuleFallbackWalk:  "fallback_walk",
	RuleFallbackWater: "fallback_water",
}

func (r Rule) String() string {
	if s, ok := ruleNames[r]; ok {
		return s
	}
	return "unknown"
}

// Headline identifies which headline/rationale pair was chosen.
type Headline int

const (
	HeadlineBurnMode Headline = iota
	HeadlineLateSugar
	HeadlineNeutralize
	HeadlineSedentary
)

var headlines = map[Headline][2]string{
	HeadlineBurnMode: {
		"Sugar levels optimized. Metabolism in 'Burn Mode'.",
		"Keeping sugar low prioritizes burning fat for energy.",
	},
	HeadlineLateSugar: {
		"Late sugar + poor sleep = cortisol spike.",
		"High cortisol at night disrupts deep sleep and recovery.",
	},
	HeadlineNeutralize: {
		"Neutralize the spike! Move now.",
		"Walking helps muscles absorb glucose without extra insulin.",
	},
	HeadlineSedentary: {
		"Sedentary alert: Body in 'Storage Mode'.",
		"Low activity reduces insulin sensitivity.",
	},
}

// Context is everything the rules look at, derived from history.
type Context struct {
	TotalGrams    float64
	Percentage    float64
	RecentWalk    bool
	RecentWater   bool
	RecentProtein bool
}

// Engine evaluates insights. The zero value is not usable; use New.
type Engine struct {
	msgs     MessageSource
	lookback time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithMessages sets the reason text source.
// Default: a time-seeded RandomMessages.
func WithMessages(src MessageSource) Option {
	return func(e *Engine) {
		e.msgs = src
	}
}

// WithLookback overrides the recency window (default 60 minutes).
func WithLookback(d time.Duration) Option {
	return func(e *Engine) {
		e.lookback = d
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{lookback: DefaultLookback}
	for _, opt := range opts {
		opt(e)
	}
	if e.msgs == nil {
		e.msgs = NewRandomMessages(0)
	}
	return e
}

// Evaluate produces the insight for profile p given history at time now.
//
// Returns ErrInvalidLimit if p.DailyLimit <= 0.
func (e *Engine) Evaluate(p model.Profile, history []model.Event, now time.Time) (model.Insight, error) {
	ctx, err := Analyze(p, history, now, e.lookback)
	if err != nil {
		return model.Insight{}, err
	}

	text := headlines[SelectHeadline(p, ctx, now)]
	return model.Insight{
		Text:           text[0],
		Why:            text[1],
		Recommendation: e.render(SelectRule(p, ctx)),
	}, nil
}

// Evaluate is a convenience wrapper around New(WithMessages(msgs)).Evaluate.
func Evaluate(p model.Profile, history []model.Event, now time.Time, msgs MessageSource) (model.Insight, error) {
	return New(WithMessages(msgs)).Evaluate(p, history, now)
}

// Analyze derives the rule inputs from history. It does not modify history.
func Analyze(p model.Profile, history []model.Event, now time.Time, lookback time.Duration) (Context, error) {
	if p.DailyLimit <= 0 {
		return Context{}, invalidLimit(p.DailyLimit)
	}

	var ctx Context
	ctx.TotalGrams = model.TotalOn(history, now)
	ctx.Percentage = ctx.TotalGrams / p.DailyLimit * 100

	fold := cases.Fold()
	for _, ev := range history {
		if now.Sub(ev.Time(now.Location())) >= lookback {
			continue
		}
		name := fold.String(ev.FoodName)
		if strings.Contains(name, "walk") || ev.Category == model.CategoryExercise {
			ctx.RecentWalk = true
		}
		if strings.Contains(name, "water") || ev.Category == model.CategoryHydration {
			ctx.RecentWater = true
		}
		if strings.Contains(name, "protein") || ev.Category == model.CategoryNutrition {
			ctx.RecentProtein = true
		}
	}
	return ctx, nil
}

// SelectRule applies the recommendation rules in priority order.
func SelectRule(p model.Profile, ctx Context) Rule {
	pct := ctx.Percentage
	switch {
	case pct > criticalPct && !ctx.RecentWalk:
		return RuleCriticalSpike
	case pct > highPct && p.Activity.Steps < lowSteps && !ctx.RecentWalk:
		return RuleLowActivity
	case pct > sleepPct && p.Activity.SleepHours < poorSleepHrs && !ctx.RecentWater:
		return RulePoorSleep
	case pct > agePct && p.Age > olderAge && !ctx.RecentProtein:
		return RuleAgeFactor
	}

	if pct > highPct {
		switch {
		case !ctx.RecentWalk:
			return RuleFallbackWalk
		case !ctx.RecentWater:
			return RuleFallbackWater
		}
	}
	return RuleNone
}

// SelectHeadline picks the headline independently of the recommendation.
func SelectHeadline(p model.Profile, ctx Context, now time.Time) Headline {
	switch {
	case now.Hour() >= nightHour && p.Activity.SleepHours < lateSleepHrs && ctx.TotalGrams > lateGrams:
		return HeadlineLateSugar
	case p.BMI > overweightBMI && ctx.TotalGrams > p.DailyLimit*0.5:
		return HeadlineNeutralize
	case p.Activity.Steps < sedentarySteps:
		return HeadlineSedentary
	}
	return HeadlineBurnMode
}

func walk(reason string) *model.Recommendation {
	return &model.Recommendation{Action: "10-minute walk", Type: model.RecommendActivity, Icon: "Walk", Reason: reason}
}

func water(reason string) *model.Recommendation {
	return &model.Recommendation{Action: "Drink water", Type: model.RecommendHydration, Icon: "Droplet", Reason: reason}
}

func protein(reason string) *model.Recommendation {
	return &model.Recommendation{Action: "Protein snack swap", Type: model.RecommendNutrition, Icon: "Cookie", Reason: reason}
}

func (e *Engine) render(r Rule) *model.Recommendation {
	switch r {
	case RuleCriticalSpike:
		return walk("Critical spike! " + e.msgs.Pick(MessageWalk))
	case RuleLowActivity:
		return walk("Low activity detected. " + e.msgs.Pick(MessageWalk))
	case RulePoorSleep:
		return water("Poor sleep detected. " + e.msgs.Pick(MessageWater))
	case RuleAgeFactor:
		return protein("Age factor detected. " + e.msgs.Pick(MessageProtein))
	case RuleFallbackWalk:
		return walk("High sugar intake detected. A short walk is the best remedy.")
	case RuleFallbackWater:
		return water("Keep flushing out the excess sugar.")
	}
	return nil
}
