// Package action turns accepted recommendations and quick-log taps into
// Events and hands them to a Recorder (the session store).
//
// It also owns the suggestion timer: accepting an activity recommendation
// starts a single countdown (600 seconds by default) that auto-completes
// the walk when it expires. At most one timer is active; starting a new
// one supersedes the old, and finishing or cancelling always clears it.
package action
