//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"

	"acorn/acornos/clock"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	// Hz is the number of steps per second. Zero means 1000.
	Hz int
	// Ticks stops the runner after that many steps. Zero runs until ctx is
	// done.
	Ticks uint64
	// Simulate drives a manual clock forward by 1/Hz per step and runs
	// steps back to back instead of waiting on a ticker.
	Simulate bool
}

// RunHeadless runs the system without opening a window. newApp receives the
// HAL and returns the step function called once per tick.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 1000
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	if cfg.Simulate {
		clk := clock.NewManual(0)
		return runSimulated(ctx, NewSimulated(clk), clk, newApp, d, cfg.Ticks)
	}

	step := newApp(New())
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}

func runSimulated(ctx context.Context, h HAL, clk *clock.Manual, newApp func(HAL) func() error, d time.Duration, ticks uint64) error {
	step := newApp(h)
	for tick := uint64(0); ticks == 0 || tick < ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if step != nil {
			if err := step(); err != nil {
				return err
			}
		}
		clk.Advance(d)
	}
	return nil
}
