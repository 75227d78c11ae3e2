package services

import (
	"math/rand"
	"sync"
	"time"
)

// StudyConfig holds the limits of the in-memory session registry
type StudyConfig struct {
	MaxSessions int
	// IdleTimeout lets a full registry evict sessions untouched for this
	// long. Zero disables idle eviction; completed sessions are always
	// evictable.
	IdleTimeout time.Duration
	// NewRand returns the random source for one session. Defaults to a
	// time-seeded source.
	NewRand func() *rand.Rand
	// Now defaults to time.Now.
	Now func() time.Time
}

func (c StudyConfig) withDefaults() StudyConfig {
	if c.NewRand == nil {
		c.NewRand = func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// SeededRand returns a NewRand func whose sources are seeded seed, seed+1, ...
// Each session gets its own source, so the sequence is deterministic for a
// fixed order of StartSession calls.
func SeededRand(seed int64) func() *rand.Rand {
	var mu sync.Mutex
	return func() *rand.Rand {
		mu.Lock()
		defer mu.Unlock()
		r := rand.New(rand.NewSource(seed))
		seed++
		return r
	}
}
