//go:build !tinygo

// Package sdnotify reports readiness and liveness to systemd when the process
// runs as a notify service. Outside systemd every call is a no-op.
package sdnotify

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"acorn/acornos/services/logger"
)

// Ready sends READY=1. It reports whether systemd received it.
func Ready(log logger.Logger) bool {
	return send(log, daemon.SdNotifyReady)
}

// Stopping sends STOPPING=1.
func Stopping(log logger.Logger) bool {
	return send(log, daemon.SdNotifyStopping)
}

func send(log logger.Logger, state string) bool {
	ok, err := daemon.SdNotify(false, state)
	if err != nil {
		log.Warn("sd_notify failed", logger.String("state", state), logger.Err(err))
		return false
	}
	return ok
}

// Watchdog pings systemd at half the configured watchdog interval while alive
// returns true. It returns at once when the watchdog is off.
func Watchdog(ctx context.Context, log logger.Logger, alive func() bool) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		log.Warn("sd watchdog", logger.Err(err))
		return
	}
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval / 2)
	defer t.Stop()
	log.Debug("sd watchdog enabled", logger.Dur("interval", interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if alive != nil && !alive() {
				log.Warn("sd watchdog: system stalled, not pinging")
				continue
			}
			send(log, daemon.SdNotifyWatchdog)
		}
	}
}
