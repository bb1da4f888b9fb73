//go:build tinygo && !baremetal

package hal

import (
	"os"

	"acorn/acornos/clock"
)

// hostedHAL serves `tinygo run` on linux or wasm: lines go to stdout and LED
// edges are logged.
type hostedHAL struct {
	log stdoutLogger
	led *loggedLED
	fb  *memFramebuffer
	clk clock.Source
}

func New() HAL {
	h := &hostedHAL{
		fb:  newMemFramebuffer(160, 120),
		clk: clock.MicrosCycles{Clock: newMonoClock()},
	}
	h.led = &loggedLED{log: h.log}
	return h
}

func (h *hostedHAL) Logger() Logger      { return h.log }
func (h *hostedHAL) LED() LED            { return h.led }
func (h *hostedHAL) Display() Display    { return fbDisplay{fb: h.fb} }
func (h *hostedHAL) Clock() clock.Source { return h.clk }

type stdoutLogger struct{}

func (stdoutLogger) WriteLineString(s string) { _, _ = os.Stdout.WriteString(s + "\n") }
func (stdoutLogger) WriteLineBytes(b []byte)  { stdoutLogger{}.WriteLineString(string(b)) }

type loggedLED struct {
	on  bool
	log Logger
}

func (l *loggedLED) High() { l.set(true) }
func (l *loggedLED) Low()  { l.set(false) }

func (l *loggedLED) set(on bool) {
	if on == l.on {
		return
	}
	l.on = on
	if on {
		l.log.WriteLineString("led: on")
	} else {
		l.log.WriteLineString("led: off")
	}
}
