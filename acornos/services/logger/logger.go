// Package logger is the structured log service.
//
// Log events are encoded by zerolog into a bounded line mailbox. A logger
// coroutine drains the mailbox to the hal.Logger a few lines per dispatch, so
// writing logs never blocks the scheduler. Lines that do not fit are counted
// and dropped.
package logger

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"acorn/acornos/kernel"
	"acorn/hal"
)

type Level = zerolog.Level

const (
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelWarn  = zerolog.WarnLevel
	LevelError = zerolog.ErrorLevel
)

// Config selects the level and the line format.
type Config struct {
	Level string
	// Console renders human-readable lines instead of JSON.
	Console bool
	// Batch is the number of lines written per dispatch. Zero means 4.
	Batch int
}

// Service owns the mailbox and the sink.
type Service struct {
	sink  hal.Logger
	batch atomic.Int32

	mu      sync.Mutex
	mb      mailbox
	dropped uint64

	root atomic.Pointer[zerolog.Logger]
}

// New returns a log service writing to sink and its root Logger.
func New(sink hal.Logger, cfg Config) (*Service, Logger) {
	zerolog.ErrorFieldName = "err"
	s := &Service{sink: sink}
	s.Apply(cfg)
	return s, Logger{svc: s}
}

// Apply swaps the level and format. It is safe to call from any goroutine.
func (s *Service) Apply(cfg Config) {
	batch := cfg.Batch
	if batch <= 0 {
		batch = 4
	}
	s.batch.Store(int32(batch))
	var zl zerolog.Logger
	if cfg.Console {
		cw := zerolog.ConsoleWriter{Out: s, NoColor: true, TimeFormat: "15:04:05.000"}
		zl = zerolog.New(cw)
	} else {
		zl = zerolog.New(s)
	}
	zl = zl.Level(ParseLevel(cfg.Level, zerolog.InfoLevel)).With().Timestamp().Logger()
	s.root.Store(&zl)
}

// SetLevel changes the level, keeping the format.
func (s *Service) SetLevel(level string) {
	zl := s.current().Level(ParseLevel(level, zerolog.InfoLevel))
	s.root.Store(&zl)
}

func (s *Service) current() zerolog.Logger {
	if zl := s.root.Load(); zl != nil {
		return *zl
	}
	return zerolog.Nop()
}

func (s *Service) Logger() Logger { return Logger{svc: s} }

// Write queues one encoded event. It never fails; a full mailbox drops p.
func (s *Service) Write(p []byte) (int, error) {
	line := p
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	s.mu.Lock()
	if !s.mb.push(line) {
		s.dropped++
	}
	s.mu.Unlock()
	return len(p), nil
}

// Pending reports whether lines are waiting to be written.
func (s *Service) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mb.len() > 0
}

// Dropped is the number of lines lost to a full mailbox.
func (s *Service) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// drain writes up to n lines and returns how many were written.
func (s *Service) drain(n int) int {
	written := 0
	for ; n < 0 || written < n; written++ {
		s.mu.Lock()
		line, ok := s.mb.pop()
		if ok {
			line = append([]byte(nil), line...)
		}
		s.mu.Unlock()
		if !ok {
			break
		}
		if s.sink != nil {
			s.sink.WriteLineBytes(line)
		}
	}
	return written
}

// Flush writes every queued line synchronously.
func (s *Service) Flush() {
	s.drain(-1)
}

// Run is the logger coroutine body. It sleeps until lines are queued, then
// writes one batch per dispatch.
func (s *Service) Run(c *kernel.Coroutine) {
	switch c.Label() {
	case kernel.Start:
		c.Await(s.Pending, 1)
	case 1:
		s.drain(int(s.batch.Load()))
		c.Await(s.Pending, 1)
	}
}

// Start registers the logger coroutine in r.
func (s *Service) Start(r *kernel.Registry) *kernel.Coroutine {
	return r.New(s, kernel.WithName("logger"))
}

// ParseLevel parses a zerolog level name, falling back to def.
func ParseLevel(s string, def zerolog.Level) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return def
	}
	return lvl
}

// Logger is a lightweight structured logger. The zero value discards
// everything.
type Logger struct {
	svc    *Service
	fields []Field
}

// Nop returns a logger that never writes.
func Nop() Logger { return Logger{} }

func (l Logger) root() zerolog.Logger {
	if l.svc == nil {
		return zerolog.Nop()
	}
	return l.svc.current()
}

// Enabled reports whether level would be logged.
func (l Logger) Enabled(level Level) bool {
	if l.svc == nil {
		return false
	}
	return level >= l.root().GetLevel()
}

// With returns a logger that adds fields to every event.
func (l Logger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	cp := l
	cp.fields = append(append([]Field(nil), l.fields...), fields...)
	return cp
}

func (l Logger) Debug(msg string, fields ...Field) { l.log(zerolog.DebugLevel, msg, fields...) }
func (l Logger) Info(msg string, fields ...Field)  { l.log(zerolog.InfoLevel, msg, fields...) }
func (l Logger) Warn(msg string, fields ...Field)  { l.log(zerolog.WarnLevel, msg, fields...) }
func (l Logger) Error(msg string, fields ...Field) { l.log(zerolog.ErrorLevel, msg, fields...) }

func (l Logger) log(level zerolog.Level, msg string, fields ...Field) {
	zl := l.root()
	e := zl.WithLevel(level)
	if e == nil {
		return
	}
	for _, f := range l.fields {
		if f != nil {
			f(e)
		}
	}
	for _, f := range fields {
		if f != nil {
			f(e)
		}
	}
	e.Msg(msg)
}
