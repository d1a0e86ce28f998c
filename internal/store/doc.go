// Package store provides the SQLite-backed durable record for the client.
//
// Only the profile slice survives restarts. History, today's total,
// streak and notifications are session-local and are rehydrated from the
// backend on every load, so the store holds exactly one row per storage
// name in persisted_state.
//
// Absence of the row means "first launch": the caller shows onboarding.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Values are stored as JSON with a format version so the shape can evolve.
package store
