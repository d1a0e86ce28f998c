package session

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/sugarwarrior/internal/model"
	"github.com/roach88/sugarwarrior/internal/remote"
)

// Login looks up an existing account by username. An unknown username
// returns (false, nil) and leaves the store untouched. On success the
// remote record is merged into the profile, the profile is marked
// onboarded, and InitializeData runs; its error, if any, is returned
// alongside true.
func (s *Store) Login(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, validation("login", errors.New("username is required"))
	}

	s.beginLoading()
	rec, err := s.backend.Login(ctx, username)
	s.endLoading()
	if err != nil {
		if remote.IsNotFound(err) {
			s.logger.Info("login: unknown username", "username", username)
			return false, nil
		}
		s.syncFailed("login", err)
		return false, transient("login", err)
	}

	s.mu.Lock()
	p := rec.MergeInto(s.profile)
	p.Onboarded = true
	s.profile = p
	s.firstLaunch = false
	if rec.Streak > 0 {
		s.streak = rec.Streak
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.Info("logged in", "username", username, "remote_id", rec.ID)
	return true, s.InitializeData(ctx)
}

// Register creates a backend account from the current profile. An
// anonymous id is generated if the profile has none. The store is only
// changed when the backend accepts the registration.
func (s *Store) Register(ctx context.Context) error {
	return s.RegisterWith(ctx, model.ProfileUpdate{})
}

// RegisterWith is Register with upd applied to a copy of the profile.
// The edit is neither persisted nor pushed unless the account is created.
func (s *Store) RegisterWith(ctx context.Context, upd model.ProfileUpdate) error {
	s.mu.Lock()
	p := s.profile
	s.mu.Unlock()
	if !upd.IsEmpty() {
		p = upd.Apply(p)
	}

	if p.AnonymousID == "" {
		p.AnonymousID = s.ids.Generate()
	}
	p.Onboarded = true
	if err := s.validate.Struct(p); err != nil {
		return validation("register", err)
	}

	s.beginLoading()
	rec, err := s.backend.Register(ctx, remote.UserFromProfile(p))
	s.endLoading()
	if err != nil {
		if remote.IsRejected(err) {
			s.logger.Info("register rejected", "username", p.Username, "error", err)
			return validation("register", err)
		}
		s.syncFailed("register", err)
		return transient("register", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = rec.MergeInto(p)
	s.firstLaunch = false
	s.persistLocked(ctx)
	s.logger.Info("registered",
		"anonymous_id", s.profile.AnonymousID,
		"remote_id", s.profile.RemoteID)
	return nil
}

// SetProfile applies a partial edit. The merged profile is validated
// first; an invalid edit is rejected without mutation. A valid edit is
// applied and persisted immediately, then pushed to the backend when an
// identity exists. A backend failure is logged and does not roll back.
func (s *Store) SetProfile(ctx context.Context, upd model.ProfileUpdate) error {
	if upd.IsEmpty() {
		return nil
	}

	s.mu.Lock()
	merged := upd.Apply(s.profile)
	if err := s.validate.Struct(merged); err != nil {
		s.mu.Unlock()
		return validation("set_profile", err)
	}
	s.profile = merged
	s.persistLocked(ctx)
	s.mu.Unlock()

	if !merged.HasIdentity() {
		return nil
	}
	if _, err := s.backend.UpdateUser(ctx, merged.AnonymousID, remote.UpdateFields(upd, merged)); err != nil {
		s.syncFailed("update_user", err, "anonymous_id", merged.AnonymousID)
	}
	return nil
}

// InitializeData replaces the profile and history with the backend's
// copy. Without an identity it does nothing. Concurrent calls share one
// backend round trip.
//
// If the backend does not know the stored identity, the store logs out
// (self-heal) and returns an IdentityInvalidated error. Any other
// failure returns a Transient error and leaves state unchanged.
//
// Concurrent callers share one refresh. The shared refresh ignores the
// cancellation of whichever caller started it; a caller whose ctx ends
// first returns a Transient error wrapping ctx.Err() while the refresh
// completes for the rest.
func (s *Store) InitializeData(ctx context.Context) error {
	ch := s.flight.DoChan("initialize", func() (any, error) {
		return nil, s.initialize(context.WithoutCancel(ctx))
	})
	select {
	case r := <-ch:
		return r.Err
	case <-ctx.Done():
		return transient("initialize", ctx.Err())
	}
}

func (s *Store) initialize(ctx context.Context) error {
	s.mu.Lock()
	anon := s.profile.AnonymousID
	s.mu.Unlock()
	if anon == "" {
		return nil
	}

	s.beginLoading()
	defer s.endLoading()

	rec, err := s.backend.FetchUser(ctx, anon)
	if err != nil {
		if remote.IsNotFound(err) {
			return s.selfHeal(ctx, anon)
		}
		s.syncFailed("fetch_user", err, "anonymous_id", anon)
		return transient("initialize", err)
	}

	var history []model.Event
	if rec.ID != "" {
		records, err := s.backend.FetchEvents(ctx, rec.ID)
		if err != nil && !remote.IsNotFound(err) {
			s.syncFailed("fetch_events", err, "remote_id", rec.ID)
			return transient("initialize", err)
		}
		history = make([]model.Event, 0, len(records))
		for _, r := range records {
			history = append(history, r.Event())
		}
		slices.SortStableFunc(history, func(a, b model.Event) int {
			return cmp.Compare(b.Timestamp, a.Timestamp)
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile.AnonymousID != anon {
		s.logger.Debug("initialize: identity changed in flight, discarding", "anonymous_id", anon)
		return nil
	}
	s.profile = rec.MergeInto(s.profile)
	s.history = history
	if rec.Streak > 0 {
		s.streak = rec.Streak
	}
	s.recomputeLocked()
	s.persistLocked(ctx)
	s.logger.Debug("initialized from backend",
		"remote_id", s.profile.RemoteID,
		"events", len(history),
		"total_today", s.totalToday)
	return nil
}

func (s *Store) selfHeal(ctx context.Context, anon string) error {
	s.logger.Warn("stored identity unknown to backend, resetting", "anonymous_id", anon)
	s.metrics.SelfHealed()
	if err := s.Logout(ctx); err != nil {
		s.logger.Warn("self-heal: clear persisted state failed", "error", err)
	}
	return &SyncError{
		Code:    CodeIdentityInvalidated,
		Op:      "initialize",
		Message: fmt.Sprintf("backend has no user for anonymous id %q", anon),
	}
}

// Logout resets the profile to defaults, clears history, streak and any
// notification, and removes the persisted profile.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.clearNoticeLocked()
	s.profile = model.DefaultProfile()
	s.history = nil
	s.streak = 0
	s.firstLaunch = true
	s.recomputeLocked()
	s.mu.Unlock()

	if err := s.persist.Clear(ctx); err != nil {
		return fmt.Errorf("clear persisted profile: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}
