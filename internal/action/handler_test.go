package action

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sugarwarrior/internal/ident"
	"github.com/roach88/sugarwarrior/internal/model"
	"github.com/roach88/sugarwarrior/internal/testutil"
)

// fakeRecorder captures recorded events.
type fakeRecorder struct {
	mu     sync.Mutex
	events []model.Event
	reward *model.Reward
	err    error
}

func (r *fakeRecorder) AddEntry(_ context.Context, ev model.Event) (*model.Reward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.events = append(r.events, ev)
	return r.reward, nil
}

func (r *fakeRecorder) recorded() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Event, len(r.events))
	copy(out, r.events)
	return out
}

func newTestHandler(t *testing.T, opts ...HandlerOption) (*Handler, *testutil.FakeClock, *fakeRecorder) {
	t.Helper()
	clk := testutil.NewFakeClock(start)
	rec := &fakeRecorder{}
	h := NewHandler(clk, ident.NewFixed("evt-1", "evt-2", "evt-3"), rec, opts...)
	return h, clk, rec
}

func TestAccept_ActivityStartsTimer(t *testing.T) {
	h, clk, rec := newTestHandler(t)

	res, err := h.Accept(context.Background(), &model.Recommendation{Type: model.RecommendActivity})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, rec.recorded())

	state := h.Timer()
	assert.True(t, state.Active)
	assert.Equal(t, DefaultTimerDuration, state.Remaining)

	clk.Advance(4 * time.Minute)
	assert.Equal(t, 6*time.Minute, h.Timer().Remaining)
}

func TestAccept_HydrationCompletesImmediately(t *testing.T) {
	h, _, rec := newTestHandler(t)
	rec.reward = &model.Reward{PointsEarned: 5}

	res, err := h.Accept(context.Background(), &model.Recommendation{Type: model.RecommendHydration})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "Drink water", res.Event.FoodName)
	assert.Equal(t, 5, res.Reward.PointsEarned)
	assert.Len(t, rec.recorded(), 1)
	assert.False(t, h.Timer().Active)
}

func TestAccept_Errors(t *testing.T) {
	h, _, _ := newTestHandler(t)

	_, err := h.Accept(context.Background(), nil)
	assert.Error(t, err)

	_, err = h.Accept(context.Background(), &model.Recommendation{Type: "yoga"})
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestTimer_ExpiryAutoCompletesWalk(t *testing.T) {
	var results []Result
	h, clk, rec := newTestHandler(t, WithTimerCallback(func(r Result) { results = append(results, r) }))

	h.StartTimer()
	clk.Advance(DefaultTimerDuration - time.Second)
	assert.Empty(t, rec.recorded())

	clk.Advance(time.Second)
	events := rec.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, model.CategoryExercise, events[0].Category)
	assert.Equal(t, start.Add(DefaultTimerDuration).UnixMilli(), events[0].Timestamp)

	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)

	state := h.Timer()
	assert.False(t, state.Active)
	assert.Equal(t, DefaultTimerDuration, state.Remaining, "timer resets to default")
}

func TestTimer_CancelIsIdempotent(t *testing.T) {
	h, clk, rec := newTestHandler(t)

	assert.False(t, h.CancelTimer(), "cancelling an inactive timer is a no-op")

	h.StartTimer()
	assert.True(t, h.CancelTimer())
	assert.False(t, h.CancelTimer())

	clk.Advance(time.Hour)
	assert.Empty(t, rec.recorded())
	assert.Equal(t, 0, clk.Pending())
	assert.Equal(t, DefaultTimerDuration, h.Timer().Remaining)
}

func TestTimer_RestartSupersedesPrevious(t *testing.T) {
	h, clk, rec := newTestHandler(t)

	h.StartTimer()
	clk.Advance(5 * time.Minute)
	h.StartTimer()

	// The first timer would have fired here.
	clk.Advance(5 * time.Minute)
	assert.Empty(t, rec.recorded())
	assert.Equal(t, 5*time.Minute, h.Timer().Remaining)

	clk.Advance(5 * time.Minute)
	assert.Len(t, rec.recorded(), 1, "only the latest timer completes")
}

func TestTimer_FinishEarly(t *testing.T) {
	h, clk, rec := newTestHandler(t)

	h.StartTimer()
	clk.Advance(2 * time.Minute)
	res, err := h.FinishTimer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10-minute walk", res.Event.FoodName)
	assert.False(t, h.Timer().Active)

	clk.Advance(time.Hour)
	assert.Len(t, rec.recorded(), 1, "finished timer does not fire again")
}

func TestTimer_CustomDuration(t *testing.T) {
	h, clk, rec := newTestHandler(t, WithTimerDuration(30*time.Second))

	state := h.StartTimer()
	assert.Equal(t, 30*time.Second, state.Duration)
	clk.Advance(30 * time.Second)
	assert.Len(t, rec.recorded(), 1)
}

func TestTimer_RecorderFailureReported(t *testing.T) {
	var got Result
	h, clk, rec := newTestHandler(t, WithTimerCallback(func(r Result) { got = r }))
	rec.err = errors.New("store closed")

	h.StartTimer()
	clk.Advance(DefaultTimerDuration)
	assert.Error(t, got.Err)
	assert.False(t, h.Timer().Active)
}

func TestQuickLog_Records(t *testing.T) {
	h, _, rec := newTestHandler(t)
	soda, _ := Preset("Soda")

	res, err := h.QuickLog(context.Background(), soda)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", res.Event.ID)
	assert.Equal(t, []model.Event{res.Event}, rec.recorded())
}
