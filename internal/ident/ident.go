// Package ident generates client-side identifiers: local event ids and the
// stable anonymous identity a fresh install registers with.
package ident

import (
	"sync"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
// Implemented by UUIDv7 (production) and Fixed (tests).
type Generator interface {
	Generate() string
}

// UUIDv7 generates time-sortable UUIDv7 identifiers.
//
// UUIDv7 embeds a timestamp in the most significant bits, so local event
// ids sort by creation time, which keeps history keys stable and readable
// in logs.
//
// Thread-safety: UUIDv7 is stateless and safe for concurrent use.
type UUIDv7 struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Fixed returns predetermined identifiers for testing.
//
// Thread-safety: Fixed is safe for concurrent use via internal mutex.
type Fixed struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixed creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixed("evt-1", "evt-2")
//	gen.Generate() // "evt-1"
//	gen.Generate() // "evt-2"
//	gen.Generate() // panic: all ids exhausted
func NewFixed(ids ...string) *Fixed {
	return &Fixed{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics if all ids have been consumed, to catch a test that creates more
// events than it declared.
func (g *Fixed) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("ident.Fixed: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
