//go:build tinygo && baremetal

package hal

import (
	"machine"

	"acorn/acornos/clock"
)

// Pico 2 (RP2350) wiring: UART0 on GP0/GP1 at 115200 8N1 and the on-board
// LED. There is no panel, so the framebuffer lives in RAM and the display
// service still runs.
type boardHAL struct {
	uart *machine.UART
	fb   *memFramebuffer
	clk  clock.Source
}

func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{BaudRate: 115200, TX: machine.GP0, RX: machine.GP1})
	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	return &boardHAL{
		uart: uart,
		fb:   newMemFramebuffer(160, 120),
		// no cycle counter is exposed, so run profiles count microseconds
		clk: clock.MicrosCycles{Clock: newMonoClock()},
	}
}

func (h *boardHAL) Logger() Logger      { return uartLogger{h.uart} }
func (h *boardHAL) LED() LED            { return machine.LED }
func (h *boardHAL) Display() Display    { return fbDisplay{fb: h.fb} }
func (h *boardHAL) Clock() clock.Source { return h.clk }

type uartLogger struct{ uart *machine.UART }

func (l uartLogger) WriteLineString(s string) {
	_, _ = l.uart.Write([]byte(s))
	_, _ = l.uart.Write([]byte("\r\n"))
}

func (l uartLogger) WriteLineBytes(b []byte) {
	_, _ = l.uart.Write(b)
	_, _ = l.uart.Write([]byte("\r\n"))
}
