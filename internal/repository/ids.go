package repository

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator issues "<prefix><epoch millis>" identifiers. When two calls land
// in the same millisecond the later one is bumped forward, so a generator
// never repeats a value.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

func (g *IDGenerator) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return prefix + strconv.FormatInt(ms, 10)
}
