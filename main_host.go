//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"acorn/acornos/services/logger"
	"acorn/app"
	"acorn/hal"
	"acorn/internal/config"
	"acorn/internal/reportsched"
	"acorn/internal/sdnotify"
)

func main() {
	var (
		path     string
		headless bool
		simulate bool
		hz       int
		ticks    uint64
		scale    int
	)
	flag.StringVar(&path, "config", "", "Path to a YAML config file.")
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.BoolVar(&simulate, "simulate", false, "Headless only: drive a simulated clock as fast as possible.")
	flag.IntVar(&hz, "hz", 0, "Scheduler ticks per second.")
	flag.Uint64Var(&ticks, "ticks", 0, "Headless only: stop after N ticks (0 = run forever).")
	flag.IntVar(&scale, "scale", 2, "Window zoom.")
	flag.Parse()

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "headless":
			cfg.Runtime.Headless = headless
		case "simulate":
			cfg.Runtime.Simulate = simulate
		case "hz":
			cfg.Runtime.Hz = hz
		case "ticks":
			cfg.Runtime.Ticks = ticks
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, path, cfg, scale); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, cfg *config.Config, scale int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		sys   *app.System
		steps atomic.Uint64
	)
	newApp := func(h hal.HAL) func() error {
		var err error
		sys, err = app.NewSystem(h, cfg)
		if err != nil {
			return func() error { return err }
		}
		start(ctx, sys, path, cfg, &steps)
		return func() error {
			steps.Add(1)
			return sys.Step()
		}
	}

	var err error
	if cfg.Runtime.Headless || cfg.Runtime.Simulate {
		err = hal.RunHeadless(ctx, newApp, hal.HeadlessConfig{
			Hz:       cfg.Runtime.Hz,
			Ticks:    cfg.Runtime.Ticks,
			Simulate: cfg.Runtime.Simulate,
		})
	} else {
		err = hal.RunWindow(newApp, hal.WindowConfig{Hz: cfg.Runtime.Hz, Scale: scale})
	}

	if sys != nil {
		sdnotify.Stopping(sys.Logger())
		sys.Logger().Info("shutting down", logger.Uint64("ticks", steps.Load()))
		sys.LogService().Flush()
		if cerr := sys.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// start launches the goroutines that live beside the scheduler: report
// storage, the report schedule, config reload and the systemd watchdog.
func start(ctx context.Context, sys *app.System, path string, cfg *config.Config, steps *atomic.Uint64) {
	log := sys.Logger()

	go func() {
		if err := sys.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("report store stopped", logger.Err(err))
		}
	}()

	sched := reportsched.New(sys.Report(), log)
	if err := sched.Start(cfg.Report.Schedule); err != nil {
		log.Error("report schedule", logger.Err(err))
	}
	go func() {
		<-ctx.Done()
		sched.Stop()
	}()

	if path != "" {
		w := config.NewWatcher(path, cfg, log.With(logger.String("svc", "config")))
		updates := w.Subscribe(1)
		go func() {
			if err := w.Watch(ctx); err != nil {
				log.Error("config watcher stopped", logger.Err(err))
			}
		}()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case next := <-updates:
					sys.Apply(next)
					_ = sched.Reschedule(next.Report.Schedule)
				}
			}
		}()
	}

	sdnotify.Ready(log)
	go func() {
		var last uint64
		sdnotify.Watchdog(ctx, log, func() bool {
			n := steps.Load()
			alive := n != last
			last = n
			return alive
		})
	}()
}
