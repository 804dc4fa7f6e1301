package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/danpilch/busfinder/internal/config"
)

// Planner plans a single commute and remembers what it already sent.
type Planner interface {
	Plan(ctx context.Context, commute config.CommuteConfig) error
	ResetNotificationState()
}

type Task struct {
	Commute  config.CommuteConfig
	Time     time.Time
	Executed bool
}

type Scheduler struct {
	cfg     *config.Config
	planner Planner
	logger  *logrus.Logger

	now      func() time.Time
	interval time.Duration
	window   time.Duration

	mu         sync.Mutex
	tasks      []Task
	currentDay int
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

func NewScheduler(cfg *config.Config, planner Planner, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		planner:  planner,
		logger:   logger,
		now:      time.Now,
		interval: 1 * time.Minute,
		window:   2 * time.Minute,
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.setupDailyTasks()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped: context cancelled")
			return
		case <-s.stopCh:
			s.logger.Info("scheduler stopped: stop signal received")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()

	if now.Day() != s.currentDay {
		s.logger.Info("day changed, resetting tasks")
		s.planner.ResetNotificationState()
		s.setupDailyTasks()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		task := &s.tasks[i]
		if task.Executed {
			continue
		}

		if s.isWithinWindow(task.Time, now, s.window) {
			s.executeTask(ctx, task)
		}
	}
}

func (s *Scheduler) isWithinWindow(taskTime, now time.Time, window time.Duration) bool {
	diff := now.Sub(taskTime)
	return diff >= 0 && diff < window
}

func (s *Scheduler) setupDailyTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.currentDay = now.Day()
	s.tasks = nil

	for _, commute := range s.cfg.Commutes {
		if !commute.IsActiveDay(now.Weekday()) {
			continue
		}

		dep, err := commute.DepartureOn(now)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"commute": commute.Name,
				"error":   err,
			}).Error("failed to parse departure time")
			continue
		}

		s.tasks = append(s.tasks, Task{Commute: commute, Time: dep.Add(-commute.NotifyBefore)})
	}

	if len(s.tasks) == 0 {
		s.logger.WithField("weekday", now.Weekday().String()).Info("no commutes scheduled for today")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"weekday":     now.Weekday().String(),
		"total_tasks": len(s.tasks),
	}).Info("daily tasks scheduled")
}

func (s *Scheduler) executeTask(ctx context.Context, task *Task) {
	s.logger.WithFields(logrus.Fields{
		"commute":        task.Commute.Name,
		"scheduled_time": task.Time.Format("15:04"),
	}).Debug("executing task")

	// A failed task stays pending and is retried on the next tick inside the window.
	if err := s.planner.Plan(ctx, task.Commute); err != nil {
		s.logger.WithFields(logrus.Fields{
			"commute": task.Commute.Name,
			"error":   err,
		}).Error("task execution failed")
		return
	}

	task.Executed = true
}
