package delay

import (
	"math"

	"acorn/acornos/clock"
)

// Narrow is a 16-bit timer. The unit is whatever the last Set used, so the
// longest delay is 32767 ms, 32767 us or 32767 s.
//
// The longest safe gap between two Expired checks is also 32767 units; past
// that the modular difference wraps and the timer reads as not expired.
type Narrow struct {
	start    uint16
	duration uint16
	unit     Unit
}

func (d *Narrow) Set(c clock.Clock, u Unit, n uint32) {
	d.unit = u
	d.start = uint16(u.sample(c))
	if n >= MaxNarrow {
		n = MaxNarrow
	}
	d.duration = uint16(n)
}

func (d *Narrow) SetZero(c clock.Clock) {
	d.unit = Micros
	d.start = uint16(c.Micros())
	d.duration = 0
}

func (d *Narrow) Expired(c clock.Clock) bool {
	return Expired(uint16(d.unit.sample(c)), d.start, d.duration)
}

func (d *Narrow) ExpectedMicros() uint32 {
	us := uint64(d.duration) * d.unit.micros()
	if us > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(us)
}

// Unit reports the unit of the stored values.
func (d *Narrow) Unit() Unit { return d.unit }

func (d *Narrow) Start() uint32    { return uint32(d.start) }
func (d *Narrow) Duration() uint32 { return uint32(d.duration) }
func (d *Narrow) Width() Width     { return Narrow16 }
