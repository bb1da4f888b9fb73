//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"acorn/acornos/clock"
)

type hostHAL struct {
	logger *hostLogger
	led    *hostLED
	fb     *memFramebuffer
	clk    clock.Source
}

// New returns a host HAL on the wall clock.
func New() HAL {
	return newHost(hostClock{newMonoClock()}, os.Stdout)
}

// NewSimulated returns a host HAL whose time only moves when clk is advanced.
func NewSimulated(clk *clock.Manual) HAL {
	return newHost(clk, os.Stdout)
}

func newHost(clk clock.Source, w io.Writer) *hostHAL {
	return &hostHAL{
		logger: &hostLogger{w: w},
		led:    &hostLED{},
		fb:     newMemFramebuffer(320, 240),
		clk:    clk,
	}
}

func (h *hostHAL) Logger() Logger      { return h.logger }
func (h *hostHAL) LED() LED            { return h.led }
func (h *hostHAL) Display() Display    { return fbDisplay{fb: h.fb} }
func (h *hostHAL) Clock() clock.Source { return h.clk }

// hostClock counts cycles in nanoseconds.
type hostClock struct {
	monoClock
}

func (c hostClock) Cycles() uint32          { return uint32(c.since()) }
func (c hostClock) CyclesPerSecond() uint32 { return 1_000_000_000 }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.w.Write(b)
	_, _ = l.w.Write([]byte{'\n'})
}

// hostLED remembers its state; the window draws it.
type hostLED struct {
	mu      sync.Mutex
	on      bool
	toggles uint64
}

func (l *hostLED) High() { l.set(true) }
func (l *hostLED) Low()  { l.set(false) }

func (l *hostLED) set(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.on != on {
		l.toggles++
	}
	l.on = on
}

func (l *hostLED) state() (on bool, toggles uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on, l.toggles
}
