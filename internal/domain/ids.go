package domain

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator produces the timestamp-based identifiers used for guides and
// journal entries ("g1712345678901"). Identifiers from one generator are
// strictly increasing, so two calls in the same millisecond never collide.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator returns a generator backed by the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// NewIDGeneratorWithClock returns a generator using the given clock.
func NewIDGeneratorWithClock(now func() time.Time) *IDGenerator {
	return &IDGenerator{now: now}
}

func (g *IDGenerator) next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return ms
}

// GuideID returns a new guide identifier.
func (g *IDGenerator) GuideID() string {
	return "g" + strconv.FormatInt(g.next(), 10)
}

// EntryID returns a new journal entry identifier.
func (g *IDGenerator) EntryID() string {
	return "e" + strconv.FormatInt(g.next(), 10)
}
