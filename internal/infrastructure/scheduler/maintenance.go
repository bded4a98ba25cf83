package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/salesdash/backend/internal/domain/sales"
	"github.com/salesdash/backend/internal/infrastructure/config"
)

// cronTickerInterval is the interval at which the cron loop checks for execution
const cronTickerInterval = 1 * time.Minute

// ParseCronSchedule parses a cron expression "minute hour * * *" to extract
// hour and minute. Only fixed daily schedules are supported.
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	parts := strings.Fields(cronExpr)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%w: cron %q needs minute and hour fields", ErrInvalidConfig, cronExpr)
	}

	minute, err = strconv.Atoi(parts[0])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute must be 0-59, got %q", ErrInvalidConfig, parts[0])
	}
	hour, err = strconv.Atoi(parts[1])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: hour must be 0-23, got %q", ErrInvalidConfig, parts[1])
	}
	return hour, minute, nil
}

// MaintenanceScheduler submits the daily maintenance jobs: one cache warm-up
// per venue for each of the last WarmDays nights, then a history prune.
type MaintenanceScheduler struct {
	config    config.SchedulerConfig
	cronHour  int
	cronMin   int
	venueIDs  []int
	scheduler *Scheduler
	logger    *zap.Logger
	now       func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRunAt *time.Time
	nextRunAt *time.Time
}

// NewMaintenanceScheduler validates the cron expression and builds the
// worker pool around executor.
func NewMaintenanceScheduler(cfg config.SchedulerConfig, executor JobExecutor, venueIDs []int, logger *zap.Logger) (*MaintenanceScheduler, error) {
	hour, minute, err := ParseCronSchedule(cfg.DailyCron)
	if err != nil {
		return nil, err
	}
	return &MaintenanceScheduler{
		config:   cfg,
		cronHour: hour,
		cronMin:  minute,
		venueIDs: venueIDs,
		scheduler: NewScheduler(Config{
			Workers:    cfg.Workers,
			JobTimeout: cfg.JobTimeout,
			RetryDelay: cfg.RetryDelay,
			QueueSize:  len(venueIDs)*cfg.WarmDays + 16,
		}, executor, logger),
		logger: logger,
		now:    time.Now,
	}, nil
}

// Start starts the worker pool and the cron loop
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	if err := s.scheduler.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.calculateNextRunTime(s.now())

	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("Maintenance scheduler started",
		zap.Int("cron_hour", s.cronHour),
		zap.Int("cron_minute", s.cronMin),
		zap.Int("warm_days", s.config.WarmDays),
		zap.Duration("history_retention", s.config.HistoryRetention),
		zap.Timep("next_run_at", s.NextRunAt()),
	)
	return nil
}

// Stop stops the cron loop, then the worker pool
func (s *MaintenanceScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return s.scheduler.Stop(ctx)
	case <-ctx.Done():
		s.logger.Warn("Maintenance scheduler stop timed out")
		return ctx.Err()
	}
}

// NextRunAt returns when the next scheduled run will occur
func (s *MaintenanceScheduler) NextRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}

// LastRunAt returns when the last run occurred
func (s *MaintenanceScheduler) LastRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}

func (s *MaintenanceScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.now()
			if s.shouldRun(now) {
				s.runMaintenance(now)
				s.calculateNextRunTime(now)
			}
		}
	}
}

// shouldRun reports whether the scheduled time has been reached
func (s *MaintenanceScheduler) shouldRun(now time.Time) bool {
	next := s.NextRunAt()
	return next != nil && !now.Before(*next)
}

// calculateNextRunTime sets the first scheduled time strictly after now
func (s *MaintenanceScheduler) calculateNextRunTime(now time.Time) {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.cronHour, s.cronMin, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// warmDates lists the last WarmDays nights before now, oldest first
func (s *MaintenanceScheduler) warmDates(now time.Time) []string {
	dates := make([]string, 0, s.config.WarmDays)
	for i := s.config.WarmDays; i >= 1; i-- {
		dates = append(dates, now.AddDate(0, 0, -i).Format(sales.DateLayout))
	}
	return dates
}

// runMaintenance submits every job of one daily run
func (s *MaintenanceScheduler) runMaintenance(now time.Time) {
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	submitted, failed := 0, 0
	submit := func(job *Job) {
		if err := s.scheduler.SubmitJob(job); err != nil {
			failed++
			s.logger.Error("Failed to submit maintenance job", append(job.fields(), zap.Error(err))...)
			return
		}
		submitted++
	}

	for _, date := range s.warmDates(now) {
		for _, venueID := range s.venueIDs {
			submit(NewWarmJob(venueID, date, s.config.RetryAttempts))
		}
	}
	if s.config.HistoryRetention > 0 {
		submit(NewPruneJob(s.config.RetryAttempts))
	}

	s.logger.Info("Daily maintenance jobs scheduled",
		zap.Int("submitted", submitted),
		zap.Int("failed", failed),
	)
}
