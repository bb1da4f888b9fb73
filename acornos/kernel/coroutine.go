package kernel

import (
	"errors"
	"io"

	"acorn/acornos/delay"
	"acorn/acornos/profiler"
)

// Label is the resume position of a coroutine body. Start (zero) means the
// body begins from the top.
type Label uint16

// Start is the label of a fresh or reset coroutine. Bodies that loop forever
// jump back to it.
const Start Label = 0

// Body is the code of a coroutine, written as an explicit state machine:
//
//	func (b *blinker) Run(c *kernel.Coroutine) {
//		switch c.Label() {
//		case kernel.Start:
//			b.led.Set(true)
//			c.Delay(100, 1)
//		case 1:
//			b.led.Set(false)
//			c.Delay(900, kernel.Start)
//		}
//	}
//
// Every call must end with exactly one of Yield, Delay, DelayMicros,
// DelaySeconds, Await or End. Only the body itself may call them; helpers
// invoked by the body cannot suspend it.
type Body interface {
	Run(c *Coroutine)
}

// BodyFunc adapts a function into a Body.
type BodyFunc func(c *Coroutine)

func (f BodyFunc) Run(c *Coroutine) { f(c) }

// Coroutine is a stackless cooperative task.
//
// Coroutines are created through Registry.New and live for the whole
// program. They are not safe for concurrent use.
type Coroutine struct {
	status Status
	label  Label
	timer  delay.Timer
	timed  bool
	await  func() bool
	body   Body
	reg    *Registry

	name  string
	setup func()

	wait      profiler.Sampler
	run       profiler.Sampler
	waitProf  profiler.Profiler
	runProf   profiler.Profiler
	waitStart uint32
	runStart  uint32

	next *Coroutine
}

// Option configures a coroutine at construction.
type Option func(*Coroutine)

// WithName sets the diagnostic name.
func WithName(name string) Option {
	return func(c *Coroutine) { c.name = name }
}

// WithSetup installs a hook called once by Scheduler.Setup.
func WithSetup(fn func()) Option {
	return func(c *Coroutine) { c.setup = fn }
}

// WithWaitProfiler attaches a wait profiler. See SetWaitProfiler.
func WithWaitProfiler(p profiler.Profiler) Option {
	return func(c *Coroutine) { c.waitProf = p }
}

// WithRunProfiler attaches a run profiler. See SetRunProfiler.
func WithRunProfiler(p profiler.Profiler) Option {
	return func(c *Coroutine) { c.runProf = p }
}

func (c *Coroutine) Name() string { return c.name }

// SetName renames the coroutine and any attached profilers.
func (c *Coroutine) SetName(name string) {
	c.name = name
	c.SetWaitProfiler(c.waitProf)
	c.SetRunProfiler(c.runProf)
}

// SetSetup installs a hook called once by Scheduler.Setup.
func (c *Coroutine) SetSetup(fn func()) { c.setup = fn }

func (c *Coroutine) Label() Label   { return c.label }
func (c *Coroutine) Status() Status { return c.status }

// Timer exposes the delay state for diagnostics.
func (c *Coroutine) Timer() delay.Timer { return c.timer }

// Yield suspends until the next tick and resumes at next.
func (c *Coroutine) Yield(next Label) {
	c.exit(next)
	c.timer.SetZero(c.reg.clk)
	c.timed = false
	c.await = nil
	c.status = Yielding
}

// Delay suspends for ms milliseconds and resumes at next.
func (c *Coroutine) Delay(ms uint32, next Label) {
	c.delay(delay.Millis, ms, next)
}

// DelayMicros suspends for us microseconds and resumes at next.
func (c *Coroutine) DelayMicros(us uint32, next Label) {
	c.delay(delay.Micros, us, next)
}

// DelaySeconds suspends for s seconds and resumes at next. Seconds derive
// from the millisecond counter, see clock.SecondsFromMillis.
func (c *Coroutine) DelaySeconds(s uint32, next Label) {
	c.delay(delay.Seconds, s, next)
}

func (c *Coroutine) delay(u delay.Unit, n uint32, next Label) {
	c.exit(next)
	c.timer.Set(c.reg.clk, u, n)
	c.timed = true
	c.await = nil
	c.status = Delaying
}

// Await suspends until cond returns true and resumes at next. cond is
// polled once per tick without entering the body.
func (c *Coroutine) Await(cond func() bool, next Label) {
	c.exit(next)
	c.timer.SetZero(c.reg.clk)
	c.timed = false
	c.await = cond
	c.status = Yielding
}

// End finishes the coroutine. The scheduler marks it Terminated on the
// next tick.
func (c *Coroutine) End() {
	c.exit(c.label)
	c.status = Ending
}

// exit records the resume point and closes the run sample.
func (c *Coroutine) exit(next Label) {
	c.label = next
	c.run.ProfileRun(c.reg.cycles.Cycles() - c.runStart)
	c.waitStart = c.reg.clk.Micros()
}

// enter opens the run sample after a wait. A narrow timer expires on a
// millisecond edge and can fire before its exact deadline; that counts as
// on time.
func (c *Coroutine) enter() {
	actual, expected := c.reg.clk.Micros()-c.waitStart, c.timer.ExpectedMicros()
	if actual < expected {
		actual = expected
	}
	c.wait.ProfileWait(actual, expected)
	c.runStart = c.reg.cycles.Cycles()
}

// Suspend parks the coroutine. It is a no-op once the coroutine is done and
// must not be called from the coroutine's own body.
func (c *Coroutine) Suspend() {
	if c.IsDone() {
		return
	}
	c.status = Suspended
}

// Resume makes a suspended coroutine runnable. Its previous Delay or Await
// is still honoured when it is next dispatched.
func (c *Coroutine) Resume() {
	if c.status != Suspended {
		return
	}
	c.status = Yielding
}

// Reset restarts a coroutine from Start. Fields owned by the body are left
// as they are. Terminated coroutines stay terminated.
func (c *Coroutine) Reset() {
	if c.status == Terminated {
		return
	}
	c.status = Yielding
	c.label = Start
	c.timed = false
	c.await = nil
	c.timer.SetZero(c.reg.clk)
}

func (c *Coroutine) IsSuspended() bool  { return c.status == Suspended }
func (c *Coroutine) IsYielding() bool   { return c.status == Yielding }
func (c *Coroutine) IsDelaying() bool   { return c.status == Delaying }
func (c *Coroutine) IsRunning() bool    { return c.status == Running }
func (c *Coroutine) IsEnding() bool     { return c.status == Ending }
func (c *Coroutine) IsTerminated() bool { return c.status == Terminated }

// IsDone reports whether the coroutine is Ending or Terminated.
func (c *Coroutine) IsDone() bool {
	return c.status == Ending || c.status == Terminated
}

// ready reports whether a pending Delay or Await is satisfied. Both survive
// a Suspend/Resume cycle.
func (c *Coroutine) ready() bool {
	switch {
	case c.timed:
		if !c.timer.Expired(c.reg.clk) {
			return false
		}
		c.timed = false
	case c.await != nil:
		if !c.await() {
			return false
		}
		c.await = nil
	}
	return true
}

// Run dispatches the body once if the coroutine is runnable and its pending
// Delay or Await is satisfied, and reports whether the body was entered. It
// is what Scheduler.Tick calls for every runnable coroutine and may be
// called directly when no scheduler is used.
func (c *Coroutine) Run() bool {
	if c.status != Yielding && c.status != Delaying {
		return false
	}
	if !c.ready() {
		return false
	}
	c.status = Running
	c.enter()
	c.body.Run(c)
	return true
}

// SetWaitProfiler attaches p to wait samples and labels it with the
// coroutine name at 1 MHz.
func (c *Coroutine) SetWaitProfiler(p profiler.Profiler) {
	if p == nil {
		c.wait, c.waitProf = profiler.Discard, nil
		return
	}
	p.Begin(c.name, profiler.KindWait, 1_000_000)
	c.wait, c.waitProf = p, p
}

// SetRunProfiler attaches p to run samples and labels it with the coroutine
// name at the cycle counter frequency.
func (c *Coroutine) SetRunProfiler(p profiler.Profiler) {
	if p == nil {
		c.run, c.runProf = profiler.Discard, nil
		return
	}
	var hz uint32
	if c.reg.cycles != nil {
		hz = c.reg.cycles.CyclesPerSecond()
	}
	p.Begin(c.name, profiler.KindRun, hz)
	c.run, c.runProf = p, p
}

func (c *Coroutine) WaitProfiler() profiler.Profiler { return c.waitProf }
func (c *Coroutine) RunProfiler() profiler.Profiler  { return c.runProf }

// ErrNoProfiler is returned by PrintProfilingStats when nothing is attached.
var ErrNoProfiler = errors.New("kernel: no profiler attached")

type statsPrinter interface {
	PrintStats(w io.Writer, reset bool) error
}

// PrintProfilingStats writes the attached profilers as JSON objects, one per
// line, wait first.
func (c *Coroutine) PrintProfilingStats(w io.Writer) error {
	printed := false
	for _, p := range [...]profiler.Profiler{c.waitProf, c.runProf} {
		sp, ok := p.(statsPrinter)
		if !ok {
			continue
		}
		if err := sp.PrintStats(w, false); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		printed = true
	}
	if !printed {
		return ErrNoProfiler
	}
	return nil
}

// ClearProfilingStats clears the attached profilers.
func (c *Coroutine) ClearProfilingStats() {
	if c.waitProf != nil {
		c.waitProf.Clear()
	}
	if c.runProf != nil {
		c.runProf.Clear()
	}
}
