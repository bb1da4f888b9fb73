// Package countdown is a finite task: it logs a countdown once per step and
// ends.
package countdown

import (
	"acorn/acornos/kernel"
	"acorn/acornos/services/logger"
)

type Task struct {
	from      uint32
	step      uint32 // seconds
	remaining uint32
	log       logger.Logger
}

// New counts down from n, one step every step seconds.
func New(n, step uint32, log logger.Logger) *Task {
	return &Task{from: n, step: step, log: log}
}

func (t *Task) Remaining() uint32 { return t.remaining }

func (t *Task) Run(c *kernel.Coroutine) {
	switch c.Label() {
	case kernel.Start:
		t.remaining = t.from
		if t.remaining == 0 {
			c.End()
			return
		}
		t.log.Info("countdown started", logger.Uint32("from", t.from))
		c.DelaySeconds(t.step, 1)
	case 1:
		t.remaining--
		if t.remaining == 0 {
			t.log.Info("countdown finished")
			c.End()
			return
		}
		t.log.Debug("countdown", logger.Uint32("remaining", t.remaining))
		c.DelaySeconds(t.step, 1)
	}
}

func (t *Task) Start(r *kernel.Registry) *kernel.Coroutine {
	return r.New(t, kernel.WithName("countdown"))
}
