package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomMessages_PicksFromPool(t *testing.T) {
	src := NewRandomMessages(7)
	for _, kind := range []MessageKind{MessageWalk, MessageWater, MessageProtein} {
		pool := Messages(kind)
		for i := 0; i < 50; i++ {
			assert.Contains(t, pool, src.Pick(kind))
		}
	}
}

func TestRandomMessages_SameSeedSameSequence(t *testing.T) {
	a := NewRandomMessages(99)
	b := NewRandomMessages(99)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Pick(MessageWalk), b.Pick(MessageWalk))
	}
}

func TestMessageSources_UnknownKind(t *testing.T) {
	assert.Equal(t, fallbackMessage, NewRandomMessages(1).Pick("dance"))
	assert.Equal(t, fallbackMessage, FirstMessages{}.Pick("dance"))
}

func TestMessages_ReturnsCopy(t *testing.T) {
	pool := Messages(MessageWater)
	pool[0] = "changed"
	assert.NotEqual(t, "changed", Messages(MessageWater)[0])
}
