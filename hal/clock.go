package hal

import (
	"time"

	"acorn/acornos/clock"
)

// monoClock counts from its creation using the runtime monotonic clock.
type monoClock struct {
	start time.Time
}

func newMonoClock() monoClock {
	return monoClock{start: time.Now()}
}

func (c monoClock) since() time.Duration { return time.Since(c.start) }

func (c monoClock) Millis() uint32  { return uint32(c.since() / time.Millisecond) }
func (c monoClock) Micros() uint32  { return uint32(c.since() / time.Microsecond) }
func (c monoClock) Seconds() uint32 { return clock.SecondsFromMillis(c.Millis()) }
