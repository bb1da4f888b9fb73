package clock

import (
	"sync"
	"time"
)

// Manual is a simulated Source driven by Advance/Set.
//
// Time is kept as a 64-bit nanosecond count; each accessor truncates to
// 32 bits so the counters wrap exactly like hardware timers. Cycles are
// nanoseconds.
type Manual struct {
	mu sync.Mutex
	ns uint64
}

// NewManual returns a clock positioned at d since boot.
func NewManual(d time.Duration) *Manual {
	m := &Manual{}
	m.Set(d)
	return m
}

// Set moves the clock to d since boot.
func (m *Manual) Set(d time.Duration) {
	m.mu.Lock()
	m.ns = uint64(d)
	m.mu.Unlock()
}

// SetMicros positions the clock so Micros returns us.
func (m *Manual) SetMicros(us uint64) {
	m.mu.Lock()
	m.ns = us * 1000
	m.mu.Unlock()
}

// SetMillis positions the clock so Millis returns ms.
func (m *Manual) SetMillis(ms uint64) {
	m.mu.Lock()
	m.ns = ms * 1_000_000
	m.mu.Unlock()
}

// Advance moves the clock forward by d. Negative values are ignored.
func (m *Manual) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.ns += uint64(d)
	m.mu.Unlock()
}

// Elapsed returns the full-width time since boot.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Duration(m.ns)
}

func (m *Manual) Millis() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint32(m.ns / 1_000_000)
}

func (m *Manual) Micros() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint32(m.ns / 1000)
}

func (m *Manual) Seconds() uint32 { return SecondsFromMillis(m.Millis()) }

func (m *Manual) Cycles() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint32(m.ns)
}

func (m *Manual) CyclesPerSecond() uint32 { return 1_000_000_000 }
