// Package report prints the profiler report on request and optionally
// saves it.
//
// Requests may come from any goroutine (a cron schedule, a signal). The
// report coroutine awaits them, writes the JSON report to a line sink and
// hands a copy of the snapshots to a background saver so the scheduler never
// waits on the database.
package report

import (
	"bytes"
	"context"
	"sync/atomic"
	"time"

	"acorn/acornos/kernel"
	"acorn/acornos/profiler"
	"acorn/acornos/services/logger"
	"acorn/hal"
)

// Saver persists a report.
type Saver interface {
	SaveReport(ctx context.Context, at time.Time, snaps []profiler.Snapshot) (int64, error)
}

type job struct {
	at    time.Time
	snaps []profiler.Snapshot
}

// Service is the report coroutine.
type Service struct {
	profs *profiler.Registry
	sink  hal.Logger
	reset bool
	saver Saver
	log   logger.Logger

	pending atomic.Bool
	jobs    chan job
	reports uint32
	buf     bytes.Buffer
}

// Options configures a Service.
type Options struct {
	// Reset clears every histogram after it is printed.
	Reset bool
	// Saver, when set, receives every report. Saving runs in Serve.
	Saver Saver
	// Queue is the number of reports waiting to be saved. Zero means 4.
	Queue int
}

func New(profs *profiler.Registry, sink hal.Logger, log logger.Logger, opts Options) *Service {
	if opts.Queue <= 0 {
		opts.Queue = 4
	}
	return &Service{
		profs: profs,
		sink:  sink,
		reset: opts.Reset,
		saver: opts.Saver,
		log:   log,
		jobs:  make(chan job, opts.Queue),
	}
}

// Request asks for a report on the next tick. Concurrent requests coalesce.
func (s *Service) Request() {
	s.pending.Store(true)
}

func (s *Service) requested() bool {
	return s.pending.Load()
}

// Reports is the number of reports written.
func (s *Service) Reports() uint32 { return s.reports }

func (s *Service) Run(c *kernel.Coroutine) {
	switch c.Label() {
	case kernel.Start:
		c.Await(s.requested, 1)
	case 1:
		s.pending.Store(false)
		s.write()
		c.Await(s.requested, 1)
	}
}

// Start registers the report coroutine in r.
func (s *Service) Start(r *kernel.Registry) *kernel.Coroutine {
	return r.New(s, kernel.WithName("report"))
}

func (s *Service) write() {
	var snaps []profiler.Snapshot
	if s.saver != nil {
		snaps = s.profs.Snapshots()
	}

	s.buf.Reset()
	if err := s.profs.PrintAll(&s.buf, s.reset); err != nil {
		s.log.Error("report: print", logger.Err(err))
		return
	}
	for _, line := range bytes.Split(bytes.TrimSuffix(s.buf.Bytes(), []byte("\n")), []byte("\n")) {
		s.sink.WriteLineBytes(line)
	}
	s.reports++

	if snaps == nil {
		return
	}
	select {
	case s.jobs <- job{at: time.Now(), snaps: snaps}:
	default:
		s.log.Warn("report: save queue full, report not stored", logger.Uint32("report", s.reports))
	}
}

// Serve saves queued reports until ctx is done. It returns immediately when
// no Saver is configured.
func (s *Service) Serve(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case j := <-s.jobs:
			id, err := s.saver.SaveReport(ctx, j.at, j.snaps)
			if err != nil {
				s.log.Error("report: save", logger.Err(err))
				continue
			}
			s.log.Debug("report: saved", logger.Int("id", int(id)), logger.Int("profilers", len(j.snaps)))
		}
	}
}
