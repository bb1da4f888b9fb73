// Package app wires the runtime, its services and the demo tasks onto a HAL.
package app

import (
	"context"
	"fmt"
	"time"

	"acorn/acornos/kernel"
	"acorn/acornos/profiler"
	"acorn/acornos/services/logger"
	"acorn/acornos/services/report"
	"acorn/acornos/services/term"
	"acorn/acornos/tasks/blink"
	"acorn/acornos/tasks/burst"
	"acorn/acornos/tasks/countdown"
	"acorn/hal"
	"acorn/internal/buildinfo"
	"acorn/internal/config"
	"acorn/internal/storage"
)

// System is one runtime instance: a registry, its scheduler and the
// coroutines registered on it.
type System struct {
	h      hal.HAL
	reg    *kernel.Registry
	sched  *kernel.Scheduler
	profs  *profiler.Registry
	logSvc *logger.Service
	log    logger.Logger
	warn   *logger.Limited
	store  storage.Store

	term      *term.Service
	report    *report.Service
	blink     *blink.Task
	burst     *burst.Task
	countdown *countdown.Task
}

// NewSystem opens the report store, registers every coroutine, attaches the
// configured profilers and runs the setup hooks. Nothing is dispatched until
// Step.
func NewSystem(h hal.HAL, cfg *config.Config) (*System, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &System{
		h:     h,
		reg:   kernel.NewRegistry(h.Clock(), cfg.Runtime.Width()),
		profs: &profiler.Registry{},
	}
	s.logSvc, s.log = logger.New(h.Logger(), logger.Config{Level: cfg.Log.Level, Console: cfg.Log.Console})

	var schedOpts []kernel.SchedulerOption
	if cfg.Runtime.Strict {
		s.warn = logger.NewLimited(s.log, time.Second, 4).PerKey(10*time.Second, 1)
		schedOpts = append(schedOpts, kernel.WithStrict(s.warnRunning))
	}
	s.sched = kernel.NewScheduler(s.reg, schedOpts...)

	store, err := storage.Open(storage.Config{Driver: cfg.Report.Store, Path: cfg.Report.Path}, s.log)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	s.store = store
	var saver report.Saver
	if store != nil {
		saver = store
	}

	s.logSvc.Start(s.reg)
	s.report = report.New(s.profs, h.Logger(), s.log.With(logger.String("svc", "report")), report.Options{
		Reset: cfg.Report.Reset,
		Saver: saver,
	})
	s.report.Start(s.reg)
	if cfg.Display.Enabled {
		s.term = term.New(h.Display(), s.sched, s.profs, cfg.Display.RefreshInterval(), s.log)
		s.term.Start(s.reg)
	}

	d := cfg.Demo
	s.blink = blink.New(h.LED(), d.BlinkOnMs, d.BlinkOffMs)
	s.blink.Start(s.reg)
	s.burst = burst.New(burst.Config{Spin: d.BurstSpin, Gap: d.BurstGapUs, Batch: d.BurstBatch})
	s.burst.Start(s.reg)
	s.countdown = countdown.New(d.Countdown, d.CountdownStepS, s.log)
	s.countdown.Start(s.reg)

	if cfg.Profiling.Enabled {
		if err := s.attachProfilers(cfg.Profiling.Profilers); err != nil {
			_ = s.Close()
			return nil, err
		}
	}

	installPanicHandler(h, s.logSvc, s.log)
	s.sched.Setup()
	s.log.Info("system ready",
		logger.String("build", buildinfo.String()),
		logger.Int("coroutines", s.reg.Len()),
		logger.Int("profilers", s.profs.Len()),
		logger.Stringer("width", s.reg.Width()))
	return s, nil
}

func (s *System) attachProfilers(pcs []config.ProfilerConfig) error {
	clk := s.h.Clock()
	for _, pc := range pcs {
		c, ok := s.reg.Lookup(pc.Task)
		if !ok {
			return fmt.Errorf("app: profiler for unknown task %q", pc.Task)
		}
		var h *profiler.Histogram
		switch pc.Hist {
		case "lin":
			h = s.profs.NewLinear(clk, pc.Bins, pc.Divider)
		case "log2":
			h = s.profs.NewLog2(clk, pc.Bins)
		case "log":
			h = s.profs.NewLog(clk, pc.Bins, pc.Base)
		default:
			return fmt.Errorf("app: profiler for %q: unknown histogram %q", pc.Task, pc.Hist)
		}
		switch pc.ProfilerKind() {
		case profiler.KindWait:
			c.SetWaitProfiler(h)
		case profiler.KindRun:
			c.SetRunProfiler(h)
		default:
			return fmt.Errorf("app: profiler for %q: kind %q", pc.Task, pc.Kind)
		}
	}
	return nil
}

func (s *System) warnRunning(c *kernel.Coroutine) {
	s.warn.WarnFor(c, "coroutine returned without suspending",
		logger.String("coroutine", c.Name()),
		logger.Int("label", int(c.Label())))
}

// Step runs one scheduler tick. It matches the hal runner step signature.
func (s *System) Step() error {
	s.sched.Tick()
	return nil
}

// Serve stores queued reports until ctx is done. Run it on its own
// goroutine.
func (s *System) Serve(ctx context.Context) error {
	return s.report.Serve(ctx)
}

// Close releases the report store.
func (s *System) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Apply takes the reloadable parts of cfg.
func (s *System) Apply(cfg *config.Config) {
	s.logSvc.SetLevel(cfg.Log.Level)
	if s.term != nil {
		s.term.SetRefresh(cfg.Display.RefreshInterval())
	}
}

func (s *System) Scheduler() *kernel.Scheduler  { return s.sched }
func (s *System) Registry() *kernel.Registry    { return s.reg }
func (s *System) Profilers() *profiler.Registry { return s.profs }
func (s *System) Store() storage.Store          { return s.store }
func (s *System) Report() *report.Service       { return s.report }
func (s *System) Logger() logger.Logger         { return s.log }
func (s *System) LogService() *logger.Service   { return s.logSvc }
func (s *System) Term() *term.Service           { return s.term }
func (s *System) Blink() *blink.Task            { return s.blink }
func (s *System) Burst() *burst.Task            { return s.burst }
func (s *System) Countdown() *countdown.Task    { return s.countdown }

// Run builds a system and ticks it forever. Targets without a runner loop
// use it.
func Run(h hal.HAL, cfg *config.Config) error {
	s, err := NewSystem(h, cfg)
	if err != nil {
		return err
	}
	for {
		if err := s.Step(); err != nil {
			return err
		}
	}
}
