package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sugarwarrior/internal/model"
)

var noon = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func testProfile() model.Profile {
	p := model.DefaultProfile()
	p.DailyLimit = 30
	return p
}

func sugar(id string, grams float64, at time.Time) model.Event {
	return model.Event{
		ID:         id,
		Timestamp:  at.UnixMilli(),
		FoodName:   "Soda",
		SugarGrams: grams,
		Category:   model.CategorySoda,
		Method:     model.MethodManual,
	}
}

func walkDone(at time.Time) model.Event {
	return model.Event{
		ID:        "walk",
		Timestamp: at.UnixMilli(),
		FoodName:  "10-minute walk",
		Category:  model.CategoryExercise,
		Method:    model.MethodAutoLog,
	}
}

func newTestEngine() *Engine {
	return New(WithMessages(FirstMessages{}))
}

func TestEvaluate_CriticalSpikeWinsOverLowerRules(t *testing.T) {
	p := testProfile()
	p.Activity = model.Activity{Steps: 0, SleepHours: 0}
	p.Age = 50
	// 33g of 30g = 110%, logged two hours ago so it is outside the look-back.
	history := []model.Event{sugar("e1", 33, noon.Add(-2*time.Hour))}

	insight, err := newTestEngine().Evaluate(p, history, noon)
	require.NoError(t, err)
	require.NotNil(t, insight.Recommendation)

	rec := insight.Recommendation
	assert.Equal(t, "10-minute walk", rec.Action)
	assert.Equal(t, model.RecommendActivity, rec.Type)
	assert.Equal(t, "Walk", rec.Icon)
	assert.Equal(t, "Critical spike! Move now to burn excess glucose.", rec.Reason)
}

func TestEvaluate_RecentWalkSuppressesWalk(t *testing.T) {
	p := testProfile()
	p.Activity = model.Activity{Steps: 0, SleepHours: 0}
	p.Age = 50
	history := []model.Event{
		walkDone(noon.Add(-10 * time.Minute)),
		sugar("e1", 33, noon.Add(-2*time.Hour)),
	}

	insight, err := newTestEngine().Evaluate(p, history, noon)
	require.NoError(t, err)
	require.NotNil(t, insight.Recommendation)
	assert.NotEqual(t, model.RecommendActivity, insight.Recommendation.Type)
	assert.Equal(t, model.RecommendHydration, insight.Recommendation.Type)
}

func TestEvaluate_WalkOutsideLookbackDoesNotSuppress(t *testing.T) {
	p := testProfile()
	history := []model.Event{
		walkDone(noon.Add(-61 * time.Minute)),
		sugar("e1", 33, noon.Add(-2*time.Hour)),
	}

	insight, err := newTestEngine().Evaluate(p, history, noon)
	require.NoError(t, err)
	require.NotNil(t, insight.Recommendation)
	assert.Equal(t, model.RecommendActivity, insight.Recommendation.Type)
}

func TestSelectRule_PriorityOrder(t *testing.T) {
	tests := []struct {
		name   string
		pct    float64
		steps  int
		sleep  float64
		age    int
		recent Context
		want   Rule
	}{
		{name: "critical", pct: 110, steps: 0, sleep: 0, age: 50, want: RuleCriticalSpike},
		{name: "low activity", pct: 85, steps: 4999, sleep: 8, age: 30, want: RuleLowActivity},
		{name: "high but active falls back to walk", pct: 85, steps: 5000, sleep: 8, age: 30, want: RuleFallbackWalk},
		{name: "poor sleep", pct: 55, steps: 9000, sleep: 5.9, age: 30, want: RulePoorSleep},
		{name: "age factor", pct: 65, steps: 9000, sleep: 8, age: 46, want: RuleAgeFactor},
		{name: "age boundary", pct: 65, steps: 9000, sleep: 8, age: 45, want: RuleNone},
		{name: "below all thresholds", pct: 50, steps: 0, sleep: 0, age: 80, want: RuleNone},
		{
			name: "critical with recent walk falls to sleep rule",
			pct:  110, steps: 0, sleep: 0, age: 50,
			recent: Context{RecentWalk: true},
			want:   RulePoorSleep,
		},
		{
			name: "walk and protein done falls back to water",
			pct:  110, steps: 0, sleep: 8, age: 50,
			recent: Context{RecentWalk: true, RecentProtein: true},
			want:   RuleFallbackWater,
		},
		{
			name: "everything done",
			pct:  110, steps: 0, sleep: 0, age: 50,
			recent: Context{RecentWalk: true, RecentWater: true, RecentProtein: true},
			want:   RuleNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProfile()
			p.Activity = model.Activity{Steps: tt.steps, SleepHours: tt.sleep}
			p.Age = tt.age
			ctx := tt.recent
			ctx.Percentage = tt.pct
			assert.Equal(t, tt.want, SelectRule(p, ctx))
		})
	}
}

func TestSelectHeadline(t *testing.T) {
	evening := time.Date(2025, 6, 10, 19, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		now   time.Time
		bmi   float64
		steps int
		sleep float64
		grams float64
		want  Headline
	}{
		{name: "late sugar", now: evening, bmi: 22, steps: 8000, sleep: 6, grams: 6, want: HeadlineLateSugar},
		{name: "late but little sugar", now: evening, bmi: 22, steps: 8000, sleep: 6, grams: 5, want: HeadlineBurnMode},
		{name: "neutralize", now: noon, bmi: 26, steps: 8000, sleep: 8, grams: 16, want: HeadlineNeutralize},
		{name: "sedentary", now: noon, bmi: 22, steps: 2999, sleep: 8, grams: 0, want: HeadlineSedentary},
		{name: "burn mode", now: noon, bmi: 22, steps: 3000, sleep: 8, grams: 0, want: HeadlineBurnMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProfile()
			p.BMI = tt.bmi
			p.Activity = model.Activity{Steps: tt.steps, SleepHours: tt.sleep}
			ctx := Context{TotalGrams: tt.grams, Percentage: tt.grams / p.DailyLimit * 100}
			assert.Equal(t, tt.want, SelectHeadline(p, ctx, tt.now))
		})
	}
}

func TestEvaluate_EmptyHistoryAtNight(t *testing.T) {
	p := testProfile()
	p.Activity.SleepHours = 5
	evening := time.Date(2025, 6, 10, 19, 0, 0, 0, time.UTC)

	insight, err := newTestEngine().Evaluate(p, nil, evening)
	require.NoError(t, err)
	assert.Nil(t, insight.Recommendation)
	// Default profile: BMI 24.2, 4500 steps.
	assert.Equal(t, "Sugar levels optimized. Metabolism in 'Burn Mode'.", insight.Text)
}

func TestEvaluate_Idempotent(t *testing.T) {
	p := testProfile()
	p.Activity = model.Activity{Steps: 100, SleepHours: 4}
	history := []model.Event{sugar("e1", 27, noon.Add(-3*time.Hour))}

	e := New(WithMessages(NewRandomMessages(42)))
	first, err := e.Evaluate(p, history, noon)
	require.NoError(t, err)
	second, err := e.Evaluate(p, history, noon)
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Why, second.Why)
	require.NotNil(t, first.Recommendation)
	require.NotNil(t, second.Recommendation)
	assert.Equal(t, first.Recommendation.Type, second.Recommendation.Type)
	assert.Equal(t, first.Recommendation.Action, second.Recommendation.Action)
}

func TestEvaluate_DoesNotMutateInputs(t *testing.T) {
	p := testProfile()
	history := []model.Event{
		sugar("e1", 40, noon.Add(-time.Hour)),
		sugar("e2", 5, noon.Add(-25*time.Hour)),
	}
	snapshot := make([]model.Event, len(history))
	copy(snapshot, history)
	before := p

	_, err := newTestEngine().Evaluate(p, history, noon)
	require.NoError(t, err)
	assert.Equal(t, snapshot, history)
	assert.Equal(t, before, p)
}

func TestEvaluate_InvalidLimit(t *testing.T) {
	for _, limit := range []float64{0, -5} {
		p := testProfile()
		p.DailyLimit = limit
		_, err := newTestEngine().Evaluate(p, nil, noon)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidLimit))
	}
}

func TestAnalyze_OnlyTodayCounts(t *testing.T) {
	p := testProfile()
	history := []model.Event{
		sugar("today", 10, noon.Add(-11*time.Hour)),
		sugar("yesterday", 50, noon.Add(-13*time.Hour)),
	}

	ctx, err := Analyze(p, history, noon, DefaultLookback)
	require.NoError(t, err)
	assert.InDelta(t, 10, ctx.TotalGrams, 1e-9)
	assert.InDelta(t, 33.333, ctx.Percentage, 0.001)
}

func TestAnalyze_RecencyByNameIsCaseInsensitive(t *testing.T) {
	p := testProfile()
	history := []model.Event{
		{ID: "w", Timestamp: noon.Add(-time.Minute).UnixMilli(), FoodName: "Evening WALK", Category: model.CategoryUnknown},
		{ID: "h", Timestamp: noon.Add(-time.Minute).UnixMilli(), FoodName: "Sparkling Water", Category: model.CategoryUnknown},
		{ID: "p", Timestamp: noon.Add(-time.Minute).UnixMilli(), FoodName: "Protein bar", Category: model.CategorySnack},
	}

	ctx, err := Analyze(p, history, noon, DefaultLookback)
	require.NoError(t, err)
	assert.True(t, ctx.RecentWalk)
	assert.True(t, ctx.RecentWater)
	assert.True(t, ctx.RecentProtein)
}

func TestAnalyze_RecencyByCategory(t *testing.T) {
	p := testProfile()
	history := []model.Event{
		{ID: "h", Timestamp: noon.Add(-59 * time.Minute).UnixMilli(), FoodName: "Glass", Category: model.CategoryHydration},
		{ID: "n", Timestamp: noon.Add(-60 * time.Minute).UnixMilli(), FoodName: "Shake", Category: model.CategoryNutrition},
	}

	ctx, err := Analyze(p, history, noon, DefaultLookback)
	require.NoError(t, err)
	assert.False(t, ctx.RecentWalk)
	assert.True(t, ctx.RecentWater)
	assert.False(t, ctx.RecentProtein, "exactly 60 minutes ago is outside the window")
}

func TestRule_String(t *testing.T) {
	assert.Equal(t, "critical_spike", RuleCriticalSpike.String())
	assert.Equal(t, "none", RuleNone.String())
	assert.Equal(t, "unknown", Rule(99).String())
}
