// Package reportsched raises profiler report requests on a cron schedule.
//
// The cron goroutine never touches coroutine state. It only sets the request
// flag that the report coroutine awaits.
package reportsched

import (
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"acorn/acornos/services/logger"
)

// Requester is satisfied by report.Service.
type Requester interface {
	Request()
}

// parser accepts 5-field and 6-field cron specs, plus @every and the
// other descriptors.
var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Parse validates a schedule spec. An empty spec is valid and means off.
func Parse(spec string) error {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil
	}
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("reportsched: %q: %w", spec, err)
	}
	return nil
}

type Scheduler struct {
	target Requester
	log    logger.Logger

	mu    sync.Mutex
	c     *cron.Cron
	id    cron.EntryID
	spec  string
	fired uint64
}

func New(target Requester, log logger.Logger) *Scheduler {
	return &Scheduler{target: target, log: log.With(logger.String("svc", "reportsched"))}
}

// Start begins triggering with spec. It is a no-op when already running.
func (s *Scheduler) Start(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}
	s.c = cron.New(cron.WithParser(parser))
	if err := s.setLocked(spec); err != nil {
		s.c = nil
		return err
	}
	s.c.Start()
	s.log.Info("report schedule started", logger.String("spec", s.spec))
	return nil
}

// Reschedule swaps the schedule. An invalid spec keeps the old one.
func (s *Scheduler) Reschedule(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec = strings.TrimSpace(spec)
	if spec == s.spec {
		return nil
	}
	if s.c == nil {
		s.spec = spec
		return nil
	}
	if err := s.setLocked(spec); err != nil {
		s.log.Warn("report schedule rejected", logger.String("spec", spec), logger.Err(err))
		return err
	}
	s.log.Info("report schedule changed", logger.String("spec", spec))
	return nil
}

func (s *Scheduler) setLocked(spec string) error {
	spec = strings.TrimSpace(spec)
	if err := Parse(spec); err != nil {
		return err
	}
	if s.id != 0 {
		s.c.Remove(s.id)
		s.id = 0
	}
	s.spec = spec
	if spec == "" {
		return nil
	}
	id, err := s.c.AddFunc(spec, s.fire)
	if err != nil {
		return fmt.Errorf("reportsched: %w", err)
	}
	s.id = id
	return nil
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	s.fired++
	s.mu.Unlock()
	s.target.Request()
}

// Spec returns the active schedule.
func (s *Scheduler) Spec() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec
}

// Fired counts requests raised so far.
func (s *Scheduler) Fired() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

// Stop halts triggering and waits for a running trigger to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.id = 0
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
