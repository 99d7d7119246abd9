package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled unit of work. The context is cancelled when the
// scheduler stops.
type Job func(ctx context.Context) error

type Scheduler struct {
	name       string
	job        Job
	logger     *zap.Logger
	cron       *cron.Cron
	jobTimeout time.Duration

	mu       sync.Mutex
	interval time.Duration
	entryID  cron.EntryID
	running  bool
	stopped  bool
	ctx      context.Context
	cancel   context.CancelFunc
	lastRun  time.Time
	lastErr  error
	runs     int
}

// every fires at a fixed delay after each activation. Unlike cron.Every it
// keeps sub-second precision.
type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

func NewScheduler(name string, interval time.Duration, jobTimeout time.Duration, job Job, logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger.Sugar()}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		name:       name,
		job:        job,
		logger:     logger,
		jobTimeout: jobTimeout,
		interval:   interval,
		ctx:        ctx,
		cancel:     cancel,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.stopped {
		return fmt.Errorf("scheduler %s already stopped", s.name)
	}
	if s.interval <= 0 {
		return fmt.Errorf("invalid refresh interval %s", s.interval)
	}

	s.entryID = s.cron.Schedule(every(s.interval), cron.FuncJob(s.runJob))
	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started",
		zap.String("scheduler", s.name),
		zap.Duration("interval", s.interval))
	return nil
}

// Reschedule replaces the interval. The next run is one new interval from now.
func (s *Scheduler) Reschedule(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid refresh interval %s", interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.interval = interval
	if !s.running {
		return nil
	}

	s.cron.Remove(s.entryID)
	s.entryID = s.cron.Schedule(every(interval), cron.FuncJob(s.runJob))

	s.logger.Info("Scheduler rescheduled",
		zap.String("scheduler", s.name),
		zap.Duration("interval", interval))
	return nil
}

// Stop cancels the timer and any running job, then waits for the job to
// return. A stopped scheduler cannot be restarted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	s.cancel()
	if !wasRunning {
		return
	}

	s.logger.Info("Stopping scheduler", zap.String("scheduler", s.name))
	<-s.cron.Stop().Done()
}

func (s *Scheduler) ForceRun() {
	s.logger.Info("Manually triggering scheduled job", zap.String("scheduler", s.name))
	go s.runJob()
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) runJob() {
	if s.ctx.Err() != nil {
		return
	}

	ctx := s.ctx
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, s.jobTimeout)
		defer cancel()
	}

	startTime := time.Now()
	err := s.job(ctx)

	s.mu.Lock()
	s.lastRun = startTime
	s.lastErr = err
	s.runs++
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Scheduled refresh failed",
			zap.String("scheduler", s.name),
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)))
		return
	}
	s.logger.Debug("Scheduled refresh completed",
		zap.String("scheduler", s.name),
		zap.Duration("duration", time.Since(startTime)))
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":  s.running,
		"interval": s.interval.String(),
		"last_run": s.lastRun,
		"runs":     s.runs,
	}
	if s.running {
		status["next_run"] = s.cron.Entry(s.entryID).Next
	}
	if s.lastErr != nil {
		status["last_error"] = s.lastErr.Error()
	}
	return status
}

type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
