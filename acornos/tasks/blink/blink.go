// Package blink toggles an LED on a fixed duty cycle.
package blink

import (
	"acorn/acornos/kernel"
	"acorn/hal"
)

type Task struct {
	led     hal.LED
	on, off uint32
	cycles  uint32
}

// New blinks led on for on ms and off for off ms.
func New(led hal.LED, on, off uint32) *Task {
	return &Task{led: led, on: on, off: off}
}

// Cycles is the number of completed on/off cycles.
func (t *Task) Cycles() uint32 { return t.cycles }

func (t *Task) Run(c *kernel.Coroutine) {
	switch c.Label() {
	case kernel.Start:
		t.led.High()
		c.Delay(t.on, 1)
	case 1:
		t.led.Low()
		t.cycles++
		c.Delay(t.off, kernel.Start)
	}
}

func (t *Task) Start(r *kernel.Registry) *kernel.Coroutine {
	return r.New(t, kernel.WithName("blink"))
}
