package kernel

import (
	"acorn/acornos/clock"
	"acorn/acornos/delay"
)

// Registry is the population of coroutines. New coroutines are inserted at
// the head and never removed, so a tick visits them newest first.
type Registry struct {
	root  *Coroutine
	n     int
	width delay.Width

	clk    clock.Clock
	cycles clock.CycleCounter
}

// NewRegistry returns an empty registry whose coroutines use timers of
// width w and read clk. clk may be nil and set later with SetClock.
func NewRegistry(clk clock.Clock, w delay.Width) *Registry {
	r := &Registry{width: w}
	r.SetClock(clk)
	return r
}

// Default is the process-wide registry used by New.
var Default = NewRegistry(nil, delay.Narrow16)

// SetClock replaces the clock. If clk does not count cycles, run profiling
// falls back to microseconds.
func (r *Registry) SetClock(clk clock.Clock) {
	r.clk = clk
	r.cycles = nil
	if clk == nil {
		return
	}
	if cc, ok := clk.(clock.CycleCounter); ok {
		r.cycles = cc
	} else {
		r.cycles = clock.MicrosCycles{Clock: clk}
	}
}

func (r *Registry) Clock() clock.Clock { return r.clk }

// SetWidth changes the timer width of coroutines created afterwards.
func (r *Registry) SetWidth(w delay.Width) { r.width = w }

func (r *Registry) Width() delay.Width { return r.width }

// New creates a coroutine running body and registers it. The coroutine
// starts Yielding at Start.
func (r *Registry) New(body Body, opts ...Option) *Coroutine {
	if body == nil {
		panic("kernel: nil coroutine body")
	}
	c := &Coroutine{
		status: Yielding,
		timer:  r.width.NewTimer(),
		body:   body,
		reg:    r,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.SetWaitProfiler(c.waitProf)
	c.SetRunProfiler(c.runProf)
	if r.clk != nil {
		c.waitStart = r.clk.Micros()
		c.timer.SetZero(r.clk)
	}

	c.next = r.root
	r.root = c
	r.n++
	return c
}

// Each calls fn for every coroutine in tick order.
func (r *Registry) Each(fn func(*Coroutine)) {
	for c := r.root; c != nil; c = c.next {
		fn(c)
	}
}

func (r *Registry) Len() int { return r.n }

// Lookup returns the first coroutine named name.
func (r *Registry) Lookup(name string) (*Coroutine, bool) {
	for c := r.root; c != nil; c = c.next {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// New creates a coroutine in the Default registry.
func New(body Body, opts ...Option) *Coroutine {
	return Default.New(body, opts...)
}
