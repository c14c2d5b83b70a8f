package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job фоновая задача, запускаемая раз в сутки в заданный час
type Job struct {
	Name string
	Hour int
	// Weekday если задан, задача идёт только в этот день недели
	Weekday *time.Weekday
	Run     func(ctx context.Context) error
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	jobs     []Job
	location *time.Location
	clock    func() time.Time
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	lastRun map[string]string
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler создаёт новый планировщик
func NewScheduler(location *time.Location, clock func() time.Time, logger *zap.Logger, jobs ...Job) *Scheduler {
	return &Scheduler{
		jobs:     jobs,
		location: location,
		clock:    clock,
		interval: time.Minute,
		logger:   logger,
		lastRun:  make(map[string]string),
		stopCh:   make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Int("jobs", len(s.jobs)))

	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop останавливает фоновые задачи и ждёт завершения текущего запуска
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Tick(ctx)
		case <-s.stopCh:
			s.logger.Info("Scheduler loop stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Scheduler loop cancelled")
			return
		}
	}
}

// Tick запускает задачи, чей час наступил и которые сегодня ещё не шли
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock().In(s.location)
	today := now.Format("2006-01-02")

	for _, job := range s.jobs {
		if job.Weekday != nil && now.Weekday() != *job.Weekday {
			continue
		}
		if now.Hour() < job.Hour {
			continue
		}

		s.mu.Lock()
		done := s.lastRun[job.Name] == today
		if !done {
			s.lastRun[job.Name] = today
		}
		s.mu.Unlock()
		if done {
			continue
		}

		s.logger.Info("Running scheduled job", zap.String("job", job.Name))
		if err := job.Run(ctx); err != nil {
			s.logger.Error("Scheduled job failed", zap.String("job", job.Name), zap.Error(err))
			continue
		}
		s.logger.Info("Scheduled job completed", zap.String("job", job.Name))
	}
}
