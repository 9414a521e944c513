package testutil

import (
	"fmt"
	"sync"
	"time"
)

// StubClock returns a fixed time. Safe for concurrent use.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewStubClock creates a StubClock set to the given time.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to 2024-01-15 10:30:00 local time.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2024, 1, 15, 10, 30, 0, 0, time.Local))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// StubIDGenerator returns sequential IDs: "event-1", "event-2", etc.
type StubIDGenerator struct {
	mu      sync.Mutex
	counter int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("event-%d", g.counter)
}

// ScriptedRandom replays a fixed sequence of draws, each taken modulo n.
// After the script runs out it keeps returning 0. It records every n it
// was asked for.
type ScriptedRandom struct {
	mu    sync.Mutex
	draws []int
	Calls []int
}

// NewScriptedRandom creates a ScriptedRandom that returns draws in order.
func NewScriptedRandom(draws ...int) *ScriptedRandom {
	return &ScriptedRandom{draws: draws}
}

func (r *ScriptedRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, n)
	if len(r.draws) == 0 {
		return 0
	}
	v := r.draws[0]
	r.draws = r.draws[1:]
	return v % n
}
