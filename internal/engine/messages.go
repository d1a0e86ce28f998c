package engine

import (
	"math/rand/v2"
	"sync"
	"time"
)

// MessageKind selects a pool of reason messages.
type MessageKind string

const (
	MessageWalk    MessageKind = "walk"
	MessageWater   MessageKind = "water"
	MessageProtein MessageKind = "protein"
)

// fallbackMessage is used for kinds with no pool.
const fallbackMessage = "Take action now."

var messagePools = map[MessageKind][]string{
	MessageWalk: {
		"Move now to burn excess glucose.",
		"Walking helps muscles absorb sugar.",
		"A 10-minute stroll lowers the spike.",
		"Active muscles = Better insulin sensitivity.",
	},
	MessageWater: {
		"Water aids metabolic recovery.",
		"Hydration helps flush out toxins.",
		"Drink up to reduce sugar cravings.",
		"Water boosts your metabolism.",
	},
	MessageProtein: {
		"Protein stabilizes blood sugar levels.",
		"Swap carbs for protein to crash less.",
		"Protein keeps you fuller for longer.",
		"Balance the spike with some protein.",
	},
}

// Messages returns a copy of the pool for kind.
func Messages(kind MessageKind) []string {
	pool := messagePools[kind]
	out := make([]string, len(pool))
	copy(out, pool)
	return out
}

// MessageSource picks the reason text for a recommendation.
// It affects wording only, never which rule fires.
type MessageSource interface {
	Pick(kind MessageKind) string
}

// RandomMessages picks uniformly from each pool.
//
// Thread-safety: safe for concurrent use via internal mutex.
type RandomMessages struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomMessages creates a seeded source. A zero seed is replaced with
// one derived from the current time.
func NewRandomMessages(seed uint64) *RandomMessages {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomMessages{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// Pick returns a random message from kind's pool.
func (r *RandomMessages) Pick(kind MessageKind) string {
	pool := messagePools[kind]
	if len(pool) == 0 {
		return fallbackMessage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return pool[r.rng.IntN(len(pool))]
}

// FirstMessages always returns the first message of each pool.
// Used by tests and golden output.
type FirstMessages struct{}

// Pick returns the first message of kind's pool.
func (FirstMessages) Pick(kind MessageKind) string {
	pool := messagePools[kind]
	if len(pool) == 0 {
		return fallbackMessage
	}
	return pool[0]
}
