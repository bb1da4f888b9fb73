// Package delay implements wraparound-safe delay timers.
//
// A timer stores a start mark and a duration in a fixed storage width and is
// expired once now-start >= duration, computed with unsigned modular
// subtraction in that width. The result is correct across counter overflow as
// long as the duration is at most half the width's range, which Set enforces
// by clamping.
package delay

import (
	"fmt"
	"math"
	"strings"

	"acorn/acornos/clock"
)

// Word is the set of storage widths a timer can use.
type Word interface {
	~uint16 | ~uint32
}

// Elapsed returns now-start in modular arithmetic.
func Elapsed[T Word](now, start T) T {
	return now - start
}

// Expired reports whether duration has passed since start.
func Expired[T Word](now, start, duration T) bool {
	return now-start >= duration
}

const (
	// MaxNarrow is the longest narrow delay in its unit (32767).
	MaxNarrow = math.MaxUint16 / 2
	// MaxWide is the longest wide delay in microseconds (~35.8 minutes).
	MaxWide = math.MaxUint32 / 2
)

// Unit is the time unit of a delay request.
type Unit uint8

const (
	Millis Unit = iota
	Micros
	Seconds
)

func (u Unit) String() string {
	switch u {
	case Millis:
		return "ms"
	case Micros:
		return "us"
	case Seconds:
		return "s"
	default:
		return "unknown"
	}
}

// micros returns how many microseconds one unit lasts.
func (u Unit) micros() uint64 {
	switch u {
	case Millis:
		return 1000
	case Seconds:
		return 1_000_000
	default:
		return 1
	}
}

// sample reads c in unit u.
func (u Unit) sample(c clock.Clock) uint32 {
	switch u {
	case Millis:
		return c.Millis()
	case Seconds:
		return c.Seconds()
	default:
		return c.Micros()
	}
}

// Timer is one coroutine's delay state.
type Timer interface {
	// Set samples c for the start mark and stores n units, clamped.
	Set(c clock.Clock, u Unit, n uint32)
	// SetZero configures a delay that is already expired.
	SetZero(c clock.Clock)
	// Expired reports whether the configured delay has passed.
	Expired(c clock.Clock) bool
	// ExpectedMicros is the stored duration expressed in microseconds.
	ExpectedMicros() uint32
	// Start and Duration expose the raw stored values.
	Start() uint32
	Duration() uint32
	Width() Width
}

// Width selects a timer storage policy.
type Width uint8

const (
	// Narrow16 stores 16-bit values in the unit of the last request.
	Narrow16 Width = iota
	// Wide32 stores 32-bit microseconds.
	Wide32
)

func (w Width) String() string {
	switch w {
	case Narrow16:
		return "narrow"
	case Wide32:
		return "wide"
	default:
		return "unknown"
	}
}

// NewTimer returns a zeroed timer of width w.
func (w Width) NewTimer() Timer {
	if w == Wide32 {
		return &Wide{}
	}
	return &Narrow{}
}

// ParseWidth parses "narrow"/"16" or "wide"/"32".
func ParseWidth(s string) (Width, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "narrow", "16", "16bit":
		return Narrow16, nil
	case "wide", "32", "32bit":
		return Wide32, nil
	default:
		return Narrow16, fmt.Errorf("delay: unknown width %q", s)
	}
}
