package report

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acorn/acornos/clock"
	"acorn/acornos/delay"
	"acorn/acornos/kernel"
	"acorn/acornos/profiler"
	"acorn/acornos/services/logger"
)

type lines struct{ got []string }

func (l *lines) WriteLineString(s string) { l.got = append(l.got, s) }
func (l *lines) WriteLineBytes(b []byte)  { l.got = append(l.got, string(b)) }

type memSaver struct {
	mu    sync.Mutex
	saved [][]profiler.Snapshot
	done  chan struct{}
}

func (m *memSaver) SaveReport(_ context.Context, _ time.Time, snaps []profiler.Snapshot) (int64, error) {
	m.mu.Lock()
	m.saved = append(m.saved, snaps)
	n := len(m.saved)
	m.mu.Unlock()
	m.done <- struct{}{}
	return int64(n), nil
}

func setup(t *testing.T, opts Options) (*Service, *kernel.Scheduler, *profiler.Histogram, *lines) {
	t.Helper()
	clk := clock.NewManual(0)
	profs := &profiler.Registry{}
	h := profs.NewLinear(clk, 3, 10)
	h.Begin("work", profiler.KindRun, 0)

	sink := &lines{}
	svc := New(profs, sink, logger.Nop(), opts)
	reg := kernel.NewRegistry(clk, delay.Narrow16)
	svc.Start(reg)
	return svc, kernel.NewScheduler(reg), h, sink
}

func TestReportWaitsForRequest(t *testing.T) {
	svc, sched, h, sink := setup(t, Options{})
	h.AddSample(15)

	sched.Tick()
	sched.Tick()
	assert.Empty(t, sink.got)

	svc.Request()
	svc.Request()
	sched.Tick()
	require.Equal(t, uint32(1), svc.Reports())
	require.Len(t, sink.got, 3)
	assert.Equal(t, "[", sink.got[0])
	assert.True(t, strings.HasPrefix(sink.got[1], `{"name":"work", "type":"run", "hist":"lin", "div":10`))
	assert.Equal(t, "]", sink.got[2])
	assert.Equal(t, uint64(1), h.Count(), "no reset by default")

	sched.Tick()
	assert.Equal(t, uint32(1), svc.Reports(), "requests coalesce")
}

func TestReportResetAndSave(t *testing.T) {
	saver := &memSaver{done: make(chan struct{}, 1)}
	svc, sched, h, _ := setup(t, Options{Reset: true, Saver: saver})
	h.AddSample(1)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- svc.Serve(ctx) }()

	svc.Request()
	sched.Tick()
	assert.Equal(t, uint64(0), h.Count())

	select {
	case <-saver.done:
	case <-time.After(5 * time.Second):
		t.Fatal("report was not saved")
	}
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	saver.mu.Lock()
	defer saver.mu.Unlock()
	require.Len(t, saver.saved, 1)
	assert.Equal(t, []uint32{1, 0, 0}, saver.saved[0][0].Data, "snapshot taken before reset")
}

func TestServeWithoutSaver(t *testing.T) {
	svc, _, _, _ := setup(t, Options{})
	assert.NoError(t, svc.Serve(context.Background()))
}
