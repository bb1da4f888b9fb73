// Package term renders a live status console on the display: scheduler
// counters, the coroutine list and one line per profiler.
package term

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"

	"acorn/acornos/kernel"
	"acorn/acornos/profiler"
	"acorn/acornos/services/logger"
	"acorn/hal"
)

const defaultRefresh = 500 * time.Millisecond

// Service is the display coroutine.
type Service struct {
	disp    hal.Display
	sched   *kernel.Scheduler
	profs   *profiler.Registry
	log     logger.Logger
	refresh atomic.Uint32 // ms

	fb hal.Framebuffer
	d  *fbDisplay
	t  *tinyterm.Terminal

	last   kernel.Stats
	frames uint32
}

// New returns a display service. profs may be nil.
func New(disp hal.Display, sched *kernel.Scheduler, profs *profiler.Registry, refresh time.Duration, log logger.Logger) *Service {
	s := &Service{disp: disp, sched: sched, profs: profs, log: log}
	s.SetRefresh(refresh)
	return s
}

// SetRefresh changes the redraw period. It is safe to call from any
// goroutine.
func (s *Service) SetRefresh(d time.Duration) {
	if d <= 0 {
		d = defaultRefresh
	}
	s.refresh.Store(uint32(d / time.Millisecond))
}

func (s *Service) Refresh() time.Duration {
	return time.Duration(s.refresh.Load()) * time.Millisecond
}

// Frames is the number of frames drawn.
func (s *Service) Frames() uint32 { return s.frames }

func (s *Service) Run(c *kernel.Coroutine) {
	switch c.Label() {
	case kernel.Start:
		if s.disp != nil {
			s.fb = s.disp.Framebuffer()
		}
		s.d = newFBDisplay(s.fb)
		if s.d == nil {
			s.log.Warn("term: no rgb565 framebuffer, display disabled")
			c.End()
			return
		}
		s.log.Info("term: display ready", logger.Int("w", s.d.w), logger.Int("h", s.d.h))
		c.Yield(1)
	case 1:
		s.draw()
		c.Delay(s.refresh.Load(), 1)
	}
}

// Start registers the display coroutine in r.
func (s *Service) Start(r *kernel.Registry) *kernel.Coroutine {
	return r.New(s, kernel.WithName("term"))
}

func (s *Service) draw() {
	s.reset()
	_ = s.WriteStatus(s.t)
	s.t.Display()
	s.frames++
}

func (s *Service) reset() {
	s.fb.ClearRGB(0, 0, 0)
	s.t = newTerminal(s.d)
}

func newTerminal(d *fbDisplay) *tinyterm.Terminal {
	t := tinyterm.NewTerminal(d)
	t.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        10,
		FontOffset:        6,
		UseSoftwareScroll: true,
	})
	return t
}

// WriteStatus writes the scheduler counters since the previous call, the
// coroutine list and a summary of every profiler.
func (s *Service) WriteStatus(w io.Writer) error {
	st := s.sched.Stats()
	d := kernel.Stats{
		Ticks:      st.Ticks - s.last.Ticks,
		Dispatches: st.Dispatches - s.last.Dispatches,
		DelaySkips: st.DelaySkips - s.last.DelaySkips,
		Terminated: st.Terminated,
	}
	s.last = st
	if _, err := fmt.Fprintf(w, "ticks %d run %d skip %d done %d\n",
		d.Ticks, d.Dispatches, d.DelaySkips, d.Terminated); err != nil {
		return err
	}
	if err := s.sched.List(w); err != nil {
		return err
	}
	if s.profs == nil {
		return nil
	}
	var err error
	s.profs.Each(func(h *profiler.Histogram) {
		if err == nil {
			_, err = io.WriteString(w, summary(h.Snapshot())+"\n")
		}
	})
	return err
}

const shades = " .:-=+*#"

// summary renders "name/kind n=count |shape|" where shape has one cell per
// bin scaled to the fullest bin.
func summary(s profiler.Snapshot) string {
	var peak uint32
	for _, v := range s.Data {
		peak = max(peak, v)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s/%s n=%d |", s.Name, s.Type, s.Count())
	for _, v := range s.Data {
		i := 0
		if peak > 0 && v > 0 {
			i = 1 + int(uint64(v)*uint64(len(shades)-2)/uint64(peak))
		}
		b.WriteByte(shades[i])
	}
	b.WriteByte('|')
	return b.String()
}
