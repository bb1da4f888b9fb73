// Package hal is the only contact point between acorn and the outside world:
// a line logger, an LED, an optional framebuffer and the clock the scheduler
// runs on.
package hal

import "acorn/acornos/clock"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a single output pin. machine.Pin satisfies it.
type LED interface {
	High()
	Low()
}

// PixelFormat is the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb, little endian.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a CPU-side pixel buffer. Present publishes the buffer to
// the panel or window.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display hands out the framebuffer. Framebuffer returns nil on boards
// without one.
type Display interface {
	Framebuffer() Framebuffer
}

// HAL bundles the platform services one system runs on.
type HAL interface {
	Logger() Logger
	LED() LED
	Display() Display
	// Clock is the time source for delays and profiling.
	Clock() clock.Source
}
