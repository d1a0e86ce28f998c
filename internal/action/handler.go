package action

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/sugarwarrior/internal/clock"
	"github.com/roach88/sugarwarrior/internal/ident"
	"github.com/roach88/sugarwarrior/internal/model"
)

// DefaultTimerDuration is the walk countdown started when an activity
// recommendation is accepted.
const DefaultTimerDuration = 600 * time.Second

// Recorder accepts completed events. Implemented by session.Store.
type Recorder interface {
	AddEntry(ctx context.Context, ev model.Event) (*model.Reward, error)
}

// TimerState describes the suggestion timer. When inactive, Remaining is
// the full default duration.
type TimerState struct {
	Active    bool          `json:"active"`
	Remaining time.Duration `json:"remaining"`
	Duration  time.Duration `json:"duration"`
}

// Result is what a completed action produced.
type Result struct {
	Event  model.Event
	Reward *model.Reward
	Err    error
}

// Handler completes actions and runs the suggestion timer.
//
// Thread-safety: all methods are safe for concurrent use. The timer
// callback runs on the clock's goroutine and records through the same
// Recorder as direct calls.
type Handler struct {
	clock    clock.Clock
	ids      ident.Generator
	recorder Recorder
	logger   *slog.Logger
	duration time.Duration
	onTimer  func(Result)

	mu     sync.Mutex
	seq    uint64
	active *suggestion
}

// suggestion is one running countdown. seq distinguishes it from any
// countdown it superseded.
type suggestion struct {
	seq   uint64
	due   time.Time
	timer clock.Timer
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithTimerDuration overrides the countdown length (default 600s).
func WithTimerDuration(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.duration = d
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithTimerCallback registers f to receive the outcome of every
// countdown that expires and auto-completes the walk.
func WithTimerCallback(f func(Result)) HandlerOption {
	return func(h *Handler) {
		h.onTimer = f
	}
}

// NewHandler creates a Handler recording into rec.
func NewHandler(clk clock.Clock, ids ident.Generator, rec Recorder, opts ...HandlerOption) *Handler {
	h := &Handler{
		clock:    clk,
		ids:      ids,
		recorder: rec,
		logger:   slog.Default(),
		duration: DefaultTimerDuration,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Accept acts on an accepted recommendation. Activity starts the
// countdown and returns a nil Result; hydration and nutrition complete
// immediately.
func (h *Handler) Accept(ctx context.Context, rec *model.Recommendation) (*Result, error) {
	if rec == nil {
		return nil, fmt.Errorf("accept: no recommendation")
	}
	kind, ok := KindFor(rec.Type)
	if !ok {
		return nil, fmt.Errorf("accept: %w: recommendation type %q", ErrUnknownKind, rec.Type)
	}
	if kind == KindWalkCompleted {
		h.StartTimer()
		return nil, nil
	}
	res, err := h.record(ctx, kind, nil)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// QuickLog records a manual food entry.
func (h *Handler) QuickLog(ctx context.Context, q QuickLog) (Result, error) {
	return h.record(ctx, KindQuickLog, &q)
}

func (h *Handler) record(ctx context.Context, kind Kind, q *QuickLog) (Result, error) {
	ev, err := h.Complete(kind, q)
	if err != nil {
		return Result{}, err
	}
	reward, err := h.recorder.AddEntry(ctx, ev)
	if err != nil {
		return Result{Event: ev}, fmt.Errorf("record %s: %w", kind, err)
	}
	return Result{Event: ev, Reward: reward}, nil
}

// StartTimer starts the walk countdown, superseding any running one.
func (h *Handler) StartTimer() TimerState {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clearLocked()
	h.seq++
	s := &suggestion{seq: h.seq, due: h.clock.Now().Add(h.duration)}
	seq := s.seq
	s.timer = h.clock.AfterFunc(h.duration, func() { h.expire(seq) })
	h.active = s

	h.logger.Debug("suggestion timer started", "duration", h.duration)
	return TimerState{Active: true, Remaining: h.duration, Duration: h.duration}
}

// CancelTimer stops the countdown without logging anything. Returns
// false if no timer was active; cancelling twice is a no-op.
func (h *Handler) CancelTimer() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == nil {
		return false
	}
	h.clearLocked()
	h.logger.Debug("suggestion timer cancelled")
	return true
}

// FinishTimer completes the walk now, before the countdown expires.
// Works whether or not a timer is running; either way the timer ends
// cleared.
func (h *Handler) FinishTimer(ctx context.Context) (Result, error) {
	h.mu.Lock()
	h.clearLocked()
	h.mu.Unlock()
	return h.record(ctx, KindWalkCompleted, nil)
}

// Timer reports the countdown state.
func (h *Handler) Timer() TimerState {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == nil {
		return TimerState{Remaining: h.duration, Duration: h.duration}
	}
	remaining := h.active.due.Sub(h.clock.Now())
	if remaining < 0 {
		remaining = 0
	}
	return TimerState{Active: true, Remaining: remaining, Duration: h.duration}
}

// clearLocked stops and forgets the active countdown. Caller holds h.mu.
func (h *Handler) clearLocked() {
	if h.active == nil {
		return
	}
	h.active.timer.Stop()
	h.active = nil
}

// expire is the countdown callback. A stale callback from a superseded or
// cancelled countdown does nothing.
func (h *Handler) expire(seq uint64) {
	h.mu.Lock()
	if h.active == nil || h.active.seq != seq {
		h.mu.Unlock()
		return
	}
	h.active = nil
	h.mu.Unlock()

	res, err := h.record(context.Background(), KindWalkCompleted, nil)
	if err != nil {
		h.logger.Warn("auto-complete walk failed", "error", err)
		res.Err = err
	} else {
		h.logger.Info("walk auto-completed", "event_id", res.Event.ID)
	}
	if h.onTimer != nil {
		h.onTimer(res)
	}
}
