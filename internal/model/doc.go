// Package model provides the data types shared by every other package:
// the user Profile, logged intake Events, the engine's Insight output and
// the gamification Notification.
//
// This package contains type definitions and small pure helpers only.
// All other internal packages import model; model imports nothing internal.
//
// Key design constraints:
//   - Profile.BMI is derived from Height/Weight and only ever set via WithBody
//   - Events are values; once appended to a history they are never mutated
//   - Event timestamps are epoch milliseconds, matching the backend wire format
//   - All JSON tags use snake_case
package model
