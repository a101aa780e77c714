package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"policymatcher/internal/config"
	"policymatcher/internal/queue"
)

const enqueueTimeout = 5 * time.Second

type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string) (string, error)
}

// Scheduler only enqueues; the worker does the work.
type Scheduler struct {
	cron  *cron.Cron
	queue Enqueuer
	specs config.JobsConfig
	log   zerolog.Logger
}

func NewScheduler(queue Enqueuer, specs config.JobsConfig, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithSeconds()),
		queue: queue,
		specs: specs,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.specs.ReminderSpec, s.enqueueFunc(queue.TaskReminders)); err != nil {
		return fmt.Errorf("schedule reminders %q: %w", s.specs.ReminderSpec, err)
	}
	if _, err := s.cron.AddFunc(s.specs.IntegritySpec, s.enqueueFunc(queue.TaskIntegrity)); err != nil {
		return fmt.Errorf("schedule integrity sweep %q: %w", s.specs.IntegritySpec, err)
	}

	s.cron.Start()
	s.log.Info().
		Str("reminders", s.specs.ReminderSpec).
		Str("integrity", s.specs.IntegritySpec).
		Msg("scheduler started")
	return nil
}

// Stop waits for running jobs, but no longer than ctx allows.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueFunc(taskType string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
		defer cancel()

		id, err := s.queue.Enqueue(ctx, taskType)
		if err != nil {
			s.log.Error().Err(err).Str("task", taskType).Msg("enqueue failed")
			return
		}
		s.log.Debug().Str("task", taskType).Str("message_id", id).Msg("task enqueued")
	}
}
