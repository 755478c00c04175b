package cron

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/erpcompany/erp/di"
	"github.com/erpcompany/erp/logging"
	"github.com/robfig/cron/v3"
)

// JobInfo describes a scheduled job.
type JobInfo struct {
	Name string
	Spec string
	Next time.Time
	Prev time.Time
}

// Scheduler runs the configured jobs.
type Scheduler struct {
	cron      *cron.Cron
	builder   *Builder
	container di.Container
	logger    logging.Logger

	mu      sync.RWMutex
	entries map[string]cron.EntryID
	specs   map[string]string
}

func newScheduler(b *Builder, container di.Container, logger logging.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(b.location)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", b.location, err)
	}

	cl := newCronLogger(logger)
	cronOpts := []cron.Option{
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cl)),
	}
	if b.enableCronLogger {
		cronOpts = append(cronOpts, cron.WithLogger(cl))
	}
	if b.enableSeconds {
		cronOpts = append(cronOpts, cron.WithSeconds())
	}

	return &Scheduler{
		cron:      cron.New(cronOpts...),
		builder:   b,
		container: container,
		logger:    logger,
		entries:   make(map[string]cron.EntryID),
		specs:     make(map[string]string),
	}, nil
}

// Start schedules every job and starts the scheduler. An invalid spec or
// a duplicate job name fails.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, job := range s.builder.jobs {
		run, err := s.wrap(job)
		if err != nil {
			return err
		}
		if err := s.add(job.spec, job.name, run); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("Scheduler started", logging.Field{Key: "jobs", Value: len(s.builder.jobs)})
	return nil
}

// Stop waits for running jobs, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("Scheduler stopping")
	stopCtx := s.cron.Stop()

	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Jobs lists scheduled jobs by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]JobInfo, 0, len(s.entries))
	for name, id := range s.entries {
		entry := s.cron.Entry(id)
		jobs = append(jobs, JobInfo{
			Name: name,
			Spec: s.specs[name],
			Next: entry.Next,
			Prev: entry.Prev,
		})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

// Remove unschedules the named job.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.entries[name]; exists {
		s.cron.Remove(id)
		delete(s.entries, name)
		delete(s.specs, name)
		s.logger.Info("Cron job removed", logging.Field{Key: "job", Value: name})
	}
}

func (s *Scheduler) add(spec, name string, run func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("cron: job '%s' already scheduled", name)
	}

	logger := s.logger.WithFields(logging.Field{Key: "job", Value: name})
	id, err := s.cron.AddFunc(spec, func() {
		logger.Debug("Cron job started")
		start := time.Now()
		if err := run(); err != nil {
			logger.Error("Cron job failed", logging.Err(err))
			return
		}
		logger.Debug("Cron job completed", logging.Field{Key: "duration", Value: time.Since(start).String()})
	})
	if err != nil {
		return fmt.Errorf("cron: add job '%s': %w", name, err)
	}

	s.entries[name] = id
	s.specs[name] = spec
	s.logger.Info("Cron job registered",
		logging.Field{Key: "job", Value: name},
		logging.Field{Key: "spec", Value: spec})
	return nil
}

func (s *Scheduler) wrap(job jobDefinition) (func() error, error) {
	switch h := job.handler.(type) {
	case nil:
		return nil, fmt.Errorf("cron: job '%s' has no handler", job.name)
	case func():
		return func() error { h(); return nil }, nil
	case func() error:
		return h, nil
	case func(context.Context) error:
		return func() error { return h(context.Background()) }, nil
	}

	// DI handler; the container is built by the time jobs run.
	return func() error {
		return di.Invoke(s.container, job.handler)
	}, nil
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	logger logging.Logger
}

func newCronLogger(logger logging.Logger) cron.Logger {
	return &cronLogger{logger: logger}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, convertToFields(keysAndValues)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := convertToFields(keysAndValues)
	fields = append(fields, logging.Err(err))
	l.logger.Error(msg, fields...)
}

func convertToFields(keysAndValues []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, logging.Field{
			Key:   fmt.Sprintf("%v", keysAndValues[i]),
			Value: keysAndValues[i+1],
		})
	}
	return fields
}
