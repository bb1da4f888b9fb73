//go:build linux && !tinygo

package sdnotify

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acorn/acornos/services/logger"
)

func listen(t *testing.T) *net.UnixConn {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notify.sock")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	t.Setenv("NOTIFY_SOCKET", path)
	return conn
}

func read(t *testing.T, conn *net.UnixConn) string {
	t.Helper()
	buf := make([]byte, 256)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	n, err := conn.Read(buf)
	require.NoError(t, err)
	return string(buf[:n])
}

func TestReadyWithoutSystemd(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	assert.False(t, Ready(logger.Nop()))
}

func TestReadyAndStopping(t *testing.T) {
	conn := listen(t)
	require.True(t, Ready(logger.Nop()))
	assert.Equal(t, "READY=1", read(t, conn))
	require.True(t, Stopping(logger.Nop()))
	assert.Equal(t, "STOPPING=1", read(t, conn))
}

func TestWatchdogPings(t *testing.T) {
	conn := listen(t)
	t.Setenv("WATCHDOG_USEC", "40000")
	t.Setenv("WATCHDOG_PID", "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Watchdog(ctx, logger.Nop(), func() bool { return true })
		close(done)
	}()
	assert.Equal(t, "WATCHDOG=1", read(t, conn))
	cancel()
	<-done
}

func TestWatchdogOff(t *testing.T) {
	t.Setenv("WATCHDOG_USEC", "")
	// returns immediately
	Watchdog(context.Background(), logger.Nop(), nil)
}
