package session

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/sugarwarrior/internal/model"
	"github.com/roach88/sugarwarrior/internal/remote"
)

// AddEntry records ev locally and, when the user has a backend account,
// submits it. Missing ID and Timestamp are filled from the store's
// generator and clock.
//
// The local change is never undone. A failed submission is logged and
// AddEntry returns (nil, nil). A successful one returns the reward after
// merging it: a positive streak replaces the local streak, earned points
// are added, the event learns its remote id, and a notification is
// raised when points were earned.
func (s *Store) AddEntry(ctx context.Context, ev model.Event) (*model.Reward, error) {
	if ev.ID == "" {
		ev.ID = s.ids.Generate()
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = model.Millis(s.clock.Now())
	}
	if ev.Method == "" {
		ev.Method = model.MethodManual
	}
	if ev.Category == "" {
		ev.Category = model.CategoryUnknown
	}
	if err := s.validate.Struct(ev); err != nil {
		return nil, validation("add_entry", err)
	}

	s.mu.Lock()
	if slices.ContainsFunc(s.history, func(e model.Event) bool { return e.ID == ev.ID }) {
		s.mu.Unlock()
		return nil, validation("add_entry", fmt.Errorf("duplicate event id %q", ev.ID))
	}
	s.history = slices.Insert(s.history, 0, ev)
	s.recomputeLocked()
	remoteUser := s.profile.RemoteID
	s.logger.Debug("entry added",
		"id", ev.ID,
		"food", ev.FoodName,
		"grams", ev.SugarGrams,
		"total_today", s.totalToday)
	s.mu.Unlock()

	if remoteUser == "" {
		return nil, nil
	}

	resp, err := s.backend.SubmitEvent(ctx, remote.SubmissionFor(remoteUser, ev))
	if err != nil {
		s.syncFailed("submit_event", err, "id", ev.ID)
		return nil, nil
	}
	reward := resp.Reward()
	s.metrics.EventSubmitted(reward.PointsEarned)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile.RemoteID != remoteUser {
		s.logger.Debug("submit: identity changed in flight, discarding reward", "id", ev.ID)
		return &reward, nil
	}
	s.applyRewardLocked(ctx, ev.ID, reward)
	return &reward, nil
}

func (s *Store) applyRewardLocked(ctx context.Context, localID string, r model.Reward) {
	if r.Streak > 0 {
		s.streak = r.Streak
	}
	if r.RemoteEventID != "" {
		if i := s.indexLocked(localID); i >= 0 {
			s.history[i].RemoteID = r.RemoteEventID
		}
	}
	if r.PointsEarned > 0 {
		s.profile.Points += r.PointsEarned
		s.persistLocked(ctx)
		s.setNoticeLocked(model.Notification{Points: r.PointsEarned, Messages: r.PointsMessages})
	}
}

// RemoveEntry deletes the entry with the given local id. Unknown ids
// return a NotFound error. When the entry was confirmed by the backend a
// best-effort delete is sent; its failure is logged only.
func (s *Store) RemoveEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return notFound("remove_entry", fmt.Sprintf("no entry with id %q", id))
	}
	removed := s.history[i]
	s.history = slices.Delete(s.history, i, i+1)
	s.recomputeLocked()
	s.mu.Unlock()

	if removed.RemoteID == "" {
		return nil
	}
	if err := s.backend.DeleteEvent(ctx, removed.RemoteID); err != nil && !remote.IsNotFound(err) {
		s.syncFailed("delete_event", err, "remote_id", removed.RemoteID)
	}
	return nil
}

// ResetProgress clears history, today's total and the streak. The
// profile is kept.
func (s *Store) ResetProgress() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.streak = 0
	s.recomputeLocked()
	s.logger.Info("progress reset")
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.history, func(e model.Event) bool { return e.ID == id })
}
