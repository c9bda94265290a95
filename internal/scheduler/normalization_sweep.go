package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSweepSchedule runs the normalization sweep every 30 minutes.
const DefaultSweepSchedule = "*/30 * * * *"

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// SweepEnqueuer queues a normalization sweep on the background task queue.
type SweepEnqueuer interface {
	EnqueueSweep(ctx context.Context, limit int) (string, error)
	IsRunning() bool
}

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// NormalizationSweepScheduler periodically enqueues a sweep over appointments
// whose address or documents were never normalized.
type NormalizationSweepScheduler struct {
	enqueuer SweepEnqueuer
	schedule string
	limit    int
	logger   *zap.Logger

	cron       *cron.Cron
	parsed     cron.Schedule
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	lastTaskID string
	cancelFunc context.CancelFunc
}

// NewNormalizationSweepScheduler creates a new scheduler instance
func NewNormalizationSweepScheduler(enqueuer SweepEnqueuer, schedule string, limit int, logger *zap.Logger) *NormalizationSweepScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &NormalizationSweepScheduler{
		enqueuer: enqueuer,
		schedule: schedule,
		limit:    limit,
		logger:   logger.Named("normalization_sweep"),
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the sweep job and starts the cron loop. The scheduler
// stops when ctx is cancelled.
func (s *NormalizationSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	parsed, err := cronParser.Parse(s.schedule)
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}
	s.parsed = parsed
	s.entryID = s.cron.Schedule(parsed, cron.FuncJob(s.runSweep))

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	s.logger.Info("scheduler started",
		zap.String("schedule", s.schedule),
		zap.Time("next_run", parsed.Next(time.Now())),
	)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler. The lock is released before waiting
// for a running sweep, which takes it to record its task ID.
func (s *NormalizationSweepScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	entryID := s.entryID
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.mu.Unlock()

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron.Remove(entryID)

	if cancel != nil {
		cancel()
	}
	s.logger.Info("scheduler stopped")
}

// RunNow triggers an immediate sweep
func (s *NormalizationSweepScheduler) RunNow() {
	go s.runSweep()
}

// IsRunning returns whether the scheduler is active
func (s *NormalizationSweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// LastTaskID returns the ID of the most recently enqueued sweep task.
func (s *NormalizationSweepScheduler) LastTaskID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastTaskID
}

// GetNextRunTime returns when the next sweep will occur
func (s *NormalizationSweepScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	next := s.cron.Entry(s.entryID).Next
	if next.IsZero() {
		next = s.parsed.Next(time.Now())
	}
	return &next
}

func (s *NormalizationSweepScheduler) runSweep() {
	if !s.enqueuer.IsRunning() {
		s.logger.Debug("sweep skipped, task queue not running")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	taskID, err := s.enqueuer.EnqueueSweep(ctx, s.limit)
	if err != nil {
		s.logger.Error("failed to enqueue normalization sweep", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.lastTaskID = taskID
	s.mu.Unlock()

	s.logger.Info("normalization sweep enqueued", zap.String("task_id", taskID))
}
