// Package session implements the client's synchronization store: the one
// authoritative owner of the profile, the intake history, today's total,
// the streak and the pending notification.
//
// LIFECYCLE:
//
// A Store is created explicitly with Open at session start and handed by
// reference to whatever needs it (CLI commands, the action handler).
// Open rehydrates the persisted profile; InitializeData then pulls the
// profile and history from the backend. Logout resets everything and
// clears persisted storage; Close stops pending timers.
//
// RECONCILIATION:
//
// Local-first operations (SetProfile, AddEntry, RemoveEntry) apply their
// change before any network call and never roll back when the backend
// fails; the failure is logged and counted. Server results (streak,
// points, notification, remote event ids) are merged in afterwards.
// The only destructive reaction to the backend is the self-heal in
// InitializeData when the stored identity is unknown to it.
//
// CONCURRENCY:
//
// All mutable fields are guarded by a single mutex. Network calls happen
// with the mutex released, so optimistic state is visible while a call is
// in flight. Reconciliation re-checks that the identity it was started
// for is still current before applying results.
//
// INVARIANTS:
//   - totalToday is always the sum of SugarGrams over history entries on
//     the current local calendar day; it is recomputed after every
//     history mutation and on every Snapshot
//   - history is ordered most recent first
//   - only the profile is persisted
package session
