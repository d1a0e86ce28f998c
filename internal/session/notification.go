package session

import (
	"slices"

	"github.com/roach88/sugarwarrior/internal/model"
)

// ClearNotification dismisses the active notification, if any.
func (s *Store) ClearNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearNoticeLocked()
}

// setNoticeLocked replaces the active notification and schedules its
// expiry. Each notification carries a sequence number; an expiry only
// clears the notification it was scheduled for, so an older timer can
// never dismiss a newer notification.
func (s *Store) setNoticeLocked(n model.Notification) {
	s.clearNoticeLocked()
	s.noticeSeq++
	seq := s.noticeSeq
	n.Messages = slices.Clone(n.Messages)
	s.notice = &notice{seq: seq, value: n}
	s.notice.timer = s.clock.AfterFunc(s.ttl, func() {
		s.expireNotice(seq)
	})
}

func (s *Store) expireNotice(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notice == nil || s.notice.seq != seq {
		return
	}
	s.notice = nil
}

func (s *Store) clearNoticeLocked() {
	if s.notice == nil {
		return
	}
	if s.notice.timer != nil {
		s.notice.timer.Stop()
	}
	s.notice = nil
}
