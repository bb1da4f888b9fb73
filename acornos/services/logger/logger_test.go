package logger

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acorn/acornos/clock"
	"acorn/acornos/delay"
	"acorn/acornos/kernel"
)

type recorder struct{ lines []string }

func (r *recorder) WriteLineString(s string) { r.lines = append(r.lines, s) }
func (r *recorder) WriteLineBytes(b []byte)  { r.lines = append(r.lines, string(b)) }

func decode(t *testing.T, line string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &m), line)
	return m
}

func TestCoroutineDrainsInBatches(t *testing.T) {
	rec := &recorder{}
	svc, log := New(rec, Config{Level: "debug", Batch: 2})
	reg := kernel.NewRegistry(clock.NewManual(0), delay.Narrow16)
	c := svc.Start(reg)
	s := kernel.NewScheduler(reg)

	s.Tick()
	assert.Equal(t, "logger", c.Name())
	assert.Empty(t, rec.lines)

	log.With(String("task", "blink")).Info("started", Int("n", 1))
	log.Debug("second")
	log.Error("third", Err(errors.New("bad")))
	assert.Empty(t, rec.lines, "writes are queued")

	s.Tick()
	require.Len(t, rec.lines, 2)
	s.Tick()
	require.Len(t, rec.lines, 3)
	assert.False(t, svc.Pending())

	first := decode(t, rec.lines[0])
	assert.Equal(t, "info", first["level"])
	assert.Equal(t, "started", first["message"])
	assert.Equal(t, "blink", first["task"])
	assert.Equal(t, float64(1), first["n"])
	assert.Contains(t, first, "time")

	third := decode(t, rec.lines[2])
	assert.Equal(t, "bad", third["err"])
}

func TestApplyFromAnotherGoroutine(t *testing.T) {
	rec := &recorder{}
	svc, log := New(rec, Config{Batch: 1})
	reg := kernel.NewRegistry(clock.NewManual(0), delay.Narrow16)
	svc.Start(reg)
	s := kernel.NewScheduler(reg)
	s.Tick()

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Apply(Config{Batch: 3})
	}()
	for i := 0; i < 3; i++ {
		log.Info("line")
		s.Tick()
	}
	<-done

	rec.lines = nil
	for i := 0; i < 3; i++ {
		log.Info("batched")
	}
	s.Tick()
	assert.Len(t, rec.lines, 3)
}

func TestFullMailboxDrops(t *testing.T) {
	rec := &recorder{}
	svc, log := New(rec, Config{})

	for i := 0; i < mailboxSlots+5; i++ {
		log.Info("line", Int("i", i))
	}
	assert.Equal(t, uint64(5), svc.Dropped())

	svc.Flush()
	require.Len(t, rec.lines, mailboxSlots)
	assert.Equal(t, float64(0), decode(t, rec.lines[0])["i"])
	assert.Equal(t, float64(mailboxSlots-1), decode(t, rec.lines[mailboxSlots-1])["i"])
}

func TestLevels(t *testing.T) {
	rec := &recorder{}
	svc, log := New(rec, Config{Level: "warn"})

	log.Info("hidden")
	log.Warn("shown")
	assert.False(t, log.Enabled(LevelInfo))

	svc.SetLevel("debug")
	log.Debug("now shown")
	svc.Flush()
	require.Len(t, rec.lines, 2)
	assert.Equal(t, "shown", decode(t, rec.lines[0])["message"])
	assert.Equal(t, "now shown", decode(t, rec.lines[1])["message"])

	Nop().Error("nothing")
	assert.False(t, Nop().Enabled(LevelInfo))
}

func TestConsoleFormat(t *testing.T) {
	rec := &recorder{}
	svc, log := New(rec, Config{Console: true})
	log.Info("hello", String("k", "v"))
	svc.Flush()

	require.Len(t, rec.lines, 1)
	assert.Contains(t, rec.lines[0], "hello")
	assert.Contains(t, rec.lines[0], "k=v")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelInfo, ParseLevel("", LevelInfo))
	assert.Equal(t, LevelInfo, ParseLevel("bogus", LevelInfo))
	assert.Equal(t, "debug", ParseLevel(" DEBUG ", LevelInfo).String())
}

func TestLimitedSuppressesBursts(t *testing.T) {
	rec := &recorder{}
	svc, log := New(rec, Config{})
	w := NewLimited(log, time.Second, 1)

	t0 := time.Unix(1000, 0)
	for i := 0; i < 5; i++ {
		w.warnAt(t0.Add(time.Duration(i)*time.Millisecond), "stuck", String("i", strconv.Itoa(i)))
	}
	assert.Equal(t, uint64(4), w.Suppressed())

	w.warnAt(t0.Add(2*time.Second), "stuck")
	assert.Equal(t, uint64(0), w.Suppressed())

	svc.Flush()
	require.Len(t, rec.lines, 2)
	assert.Equal(t, "0", decode(t, rec.lines[0])["i"])
	assert.Equal(t, float64(4), decode(t, rec.lines[1])["suppressed"])
}

func TestLimitedPerKey(t *testing.T) {
	rec := &recorder{}
	svc, log := New(rec, Config{})
	w := NewLimited(log, time.Millisecond, 100).PerKey(time.Hour, 1)

	w.WarnFor("a", "stuck")
	w.WarnFor("a", "stuck")
	w.WarnFor("b", "stuck")
	assert.Equal(t, uint64(1), w.Suppressed())

	svc.Flush()
	require.Len(t, rec.lines, 2)
	assert.Equal(t, float64(1), decode(t, rec.lines[1])["suppressed"])
}
