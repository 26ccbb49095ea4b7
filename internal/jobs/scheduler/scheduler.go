// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

// DefaultPublishSpec runs the scheduled-publish job once a minute.
const DefaultPublishSpec = "* * * * *"

// Publisher is the subset of TaskService the publish job needs.
type Publisher interface {
	PublishDue(dbc dbctx.Context, now time.Time) (int, error)
}

type Scheduler struct {
	log       *logger.Logger
	cron      *cron.Cron
	publisher Publisher
	now       func() time.Time

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New registers the publish job on spec (standard five-field cron, or a
// descriptor such as "@every 30s"). Schedules are evaluated in UTC.
func New(baseLog *logger.Logger, spec string, publisher Publisher) (*Scheduler, error) {
	if publisher == nil {
		return nil, fmt.Errorf("publisher required")
	}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = DefaultPublishSpec
	}
	log := baseLog.With("component", "Scheduler")
	s := &Scheduler{
		log:       log,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
		ctx:       context.Background(),
	}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger{log: log}),
		cron.WithChain(
			cron.Recover(cronLogger{log: log}),
			cron.SkipIfStillRunning(cronLogger{log: log}),
		),
	)
	if _, err := s.cron.AddFunc(spec, s.publishTick); err != nil {
		return nil, fmt.Errorf("invalid publish schedule %q: %w", spec, err)
	}
	log.Info("publish job registered", "spec", spec)
	return s, nil
}

// Start runs the cron loop until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	runCtx := s.ctx
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info("scheduler started")
	go func() {
		<-runCtx.Done()
		s.Stop()
	}()
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunOnce publishes every task due at the scheduler's clock.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	return s.publisher.PublishDue(dbctx.Context{Ctx: ctx}, s.now())
}

func (s *Scheduler) publishTick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	start := time.Now()
	n, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Warn("publish job failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("publish job done", "published", n, "duration_ms", time.Since(start).Milliseconds())
	}
}

// cronLogger routes cron's own diagnostics through the service logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
