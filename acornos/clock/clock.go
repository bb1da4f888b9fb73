// Package clock defines the monotonic time sources consumed by the kernel.
//
// All counters are free-running 32-bit values that wrap. Callers compare them
// with modular subtraction (see package delay), never with < or >.
package clock

// Clock supplies monotonic counters at three granularities.
type Clock interface {
	Millis() uint32
	Micros() uint32
	Seconds() uint32
}

// CycleCounter is an optional high-resolution counter used for run-time
// profiling. CyclesPerSecond reports its frequency.
type CycleCounter interface {
	Cycles() uint32
	CyclesPerSecond() uint32
}

// Source is a Clock that can also count cycles.
type Source interface {
	Clock
	CycleCounter
}

// SecondsFromMillis derives a seconds counter from a 32-bit millisecond
// counter.
//
// The millisecond counter wraps after 4294967.296 s, so the last second before
// the wrap is only 0.296 s long. A seconds delay straddling the wrap finishes
// up to 0.704 s early, once every ~49.7 days.
func SecondsFromMillis(ms uint32) uint32 {
	return ms / 1000
}

// MicrosCycles adapts a Clock into a Source whose cycle counter is the
// microsecond counter (1 MHz). Targets without a hardware cycle counter use it.
type MicrosCycles struct {
	Clock
}

func (m MicrosCycles) Cycles() uint32          { return m.Micros() }
func (m MicrosCycles) CyclesPerSecond() uint32 { return 1_000_000 }
