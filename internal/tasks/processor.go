package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"policymatcher/internal/integrity"
	"policymatcher/internal/queue"
)

type ReminderDeliverer interface {
	DeliverDue(ctx context.Context, now time.Time) (int, error)
}

type IntegritySweeper interface {
	Run(ctx context.Context, dryRun bool) (integrity.Report, error)
}

// Processor dispatches stream entries to the reminder and integrity jobs.
type Processor struct {
	reminders ReminderDeliverer
	sweeper   IntegritySweeper
	logger    zerolog.Logger
	now       func() time.Time
}

type TaskPayload struct {
	Type       string `json:"type"`
	EnqueuedAt string `json:"enqueuedAt"`
}

func NewProcessor(reminders ReminderDeliverer, sweeper IntegritySweeper, logger zerolog.Logger) *Processor {
	return &Processor{
		reminders: reminders,
		sweeper:   sweeper,
		logger:    logger,
		now:       time.Now,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case queue.TaskReminders:
		return p.handleReminders(ctx)
	case queue.TaskIntegrity:
		return p.handleIntegrity(ctx)
	default:
		// acked and dropped; retrying cannot make it known
		p.logger.Warn().Str("type", payload.Type).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

func (p *Processor) handleReminders(ctx context.Context) error {
	sent, err := p.reminders.DeliverDue(ctx, p.now().UTC())
	if err != nil {
		return fmt.Errorf("deliver reminders: %w", err)
	}
	p.logger.Info().Int("sent", sent).Msg("reminder task done")
	return nil
}

func (p *Processor) handleIntegrity(ctx context.Context) error {
	report, err := p.sweeper.Run(ctx, false)
	if err != nil {
		return fmt.Errorf("integrity sweep: %w", err)
	}
	p.logger.Info().
		Int("scanned", report.Scanned).
		Int("repaired", report.Repaired).
		Msg("integrity task done")
	return nil
}
