package delay

import "acorn/acornos/clock"

// Wide is a 32-bit timer that always stores microseconds. Millisecond and
// second requests are converted before clamping, so any unit can wait up to
// MaxWide microseconds.
type Wide struct {
	start    uint32
	duration uint32
}

func (d *Wide) Set(c clock.Clock, u Unit, n uint32) {
	d.start = c.Micros()
	us := uint64(n) * u.micros()
	if us >= MaxWide {
		us = MaxWide
	}
	d.duration = uint32(us)
}

func (d *Wide) SetZero(c clock.Clock) {
	d.start = c.Micros()
	d.duration = 0
}

func (d *Wide) Expired(c clock.Clock) bool {
	return Expired(c.Micros(), d.start, d.duration)
}

func (d *Wide) ExpectedMicros() uint32 { return d.duration }
func (d *Wide) Start() uint32          { return d.start }
func (d *Wide) Duration() uint32       { return d.duration }
func (d *Wide) Width() Width           { return Wide32 }
