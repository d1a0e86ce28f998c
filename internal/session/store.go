package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/roach88/sugarwarrior/internal/clock"
	"github.com/roach88/sugarwarrior/internal/engine"
	"github.com/roach88/sugarwarrior/internal/ident"
	"github.com/roach88/sugarwarrior/internal/metrics"
	"github.com/roach88/sugarwarrior/internal/model"
	"github.com/roach88/sugarwarrior/internal/remote"
)

// DefaultNotificationTTL is how long a points notification stays active.
const DefaultNotificationTTL = 4 * time.Second

// Persister stores the profile between runs. *store.Store implements it.
type Persister interface {
	LoadProfile(ctx context.Context) (model.Profile, bool, error)
	SaveProfile(ctx context.Context, p model.Profile) error
	Clear(ctx context.Context) error
}

// Options configures a Store. Backend and Persist are required.
type Options struct {
	Backend remote.Backend
	Persist Persister

	// Clock defaults to the system clock in time.Local.
	Clock clock.Clock

	// IDs generates anonymous identities and local event ids (default UUIDv7).
	IDs ident.Generator

	// Engine evaluates insights (default engine.New()).
	Engine *engine.Engine

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics may be nil.
	Metrics *metrics.Metrics

	// NotificationTTL defaults to DefaultNotificationTTL.
	NotificationTTL time.Duration
}

// Snapshot is a consistent copy of the store's state.
type Snapshot struct {
	Profile      model.Profile
	History      []model.Event
	TotalToday   float64
	Streak       int
	Notification *model.Notification
	Loading      bool

	// FirstLaunch is true when no persisted profile existed at Open
	// (or after Logout) and onboarding has not happened yet.
	FirstLaunch bool
}

// NeedsOnboarding reports whether the user still has to create or log
// into an account.
func (s Snapshot) NeedsOnboarding() bool {
	return !s.Profile.Onboarded
}

type notice struct {
	seq   uint64
	value model.Notification
	timer clock.Timer
}

// Store is the single owner of session state.
//
// Thread-safety: All methods are safe for concurrent use.
type Store struct {
	backend  remote.Backend
	persist  Persister
	clock    clock.Clock
	ids      ident.Generator
	engine   *engine.Engine
	logger   *slog.Logger
	metrics  *metrics.Metrics
	ttl      time.Duration
	validate *validator.Validate
	flight   singleflight.Group

	mu          sync.Mutex
	profile     model.Profile
	history     []model.Event
	totalToday  float64
	streak      int
	notice      *notice
	noticeSeq   uint64
	loading     int
	firstLaunch bool
}

// Open creates a Store and rehydrates the persisted profile. A missing
// profile is not an error: the store starts from defaults and reports
// FirstLaunch.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("session: backend is required")
	}
	if opts.Persist == nil {
		return nil, fmt.Errorf("session: persister is required")
	}
	s := &Store{
		backend:  opts.Backend,
		persist:  opts.Persist,
		clock:    opts.Clock,
		ids:      opts.IDs,
		engine:   opts.Engine,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		ttl:      opts.NotificationTTL,
		validate: validator.New(),
	}
	if s.clock == nil {
		s.clock = clock.NewSystem(time.Local)
	}
	if s.ids == nil {
		s.ids = ident.UUIDv7{}
	}
	if s.engine == nil {
		s.engine = engine.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.ttl <= 0 {
		s.ttl = DefaultNotificationTTL
	}

	p, ok, err := s.persist.LoadProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if !ok {
		p = model.DefaultProfile()
		s.firstLaunch = true
	}
	s.profile = p
	s.logger.Debug("session opened",
		"first_launch", s.firstLaunch,
		"has_identity", p.HasIdentity(),
		"onboarded", p.Onboarded)
	return s, nil
}

// Snapshot returns a copy of the current state. TotalToday is recomputed
// against the clock so it stays correct across midnight.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recomputeLocked()

	snap := Snapshot{
		Profile:     s.profile,
		History:     slices.Clone(s.history),
		TotalToday:  s.totalToday,
		Streak:      s.streak,
		Loading:     s.loading > 0,
		FirstLaunch: s.firstLaunch,
	}
	if s.notice != nil {
		n := s.notice.value
		n.Messages = slices.Clone(n.Messages)
		snap.Notification = &n
	}
	return snap
}

// Profile returns the current profile.
func (s *Store) Profile() model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Close stops the pending notification timer. The store must not be used
// afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearNoticeLocked()
	return nil
}

func (s *Store) recomputeLocked() {
	s.totalToday = model.TotalOn(s.history, s.clock.Now())
}

func (s *Store) beginLoading() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
}

func (s *Store) endLoading() {
	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
}

// persistLocked writes the profile. Failures are logged; in-memory state
// stays authoritative for the session.
func (s *Store) persistLocked(ctx context.Context) {
	if err := s.persist.SaveProfile(ctx, s.profile); err != nil {
		s.logger.Warn("persist profile failed", "error", err)
	}
}

// syncFailed logs and counts a backend failure that leaves local state
// in place.
func (s *Store) syncFailed(op string, err error, attrs ...any) {
	s.metrics.SyncFailed(op)
	s.logger.Warn("backend sync failed", append([]any{"op", op, "error", err}, attrs...)...)
}
