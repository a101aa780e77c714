package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"policymatcher/internal/auth"
	"policymatcher/internal/models"
)

// ReminderLead is how long before a program's deadline its subscribers are
// reminded.
const ReminderLead = 7 * 24 * time.Hour

const deliverBatch = 100

type NotificationStore interface {
	Create(ctx context.Context, n models.Notification) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]models.NotificationDetail, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]models.NotificationDetail, error)
	MarkSent(ctx context.Context, ids []int64, at time.Time) error
}

type ProgramReader interface {
	Get(ctx context.Context, id int64) (models.Program, error)
}

type NotifyService struct {
	notifications NotificationStore
	programs      ProgramReader
	gate          *auth.Gate
	log           zerolog.Logger
}

func NewNotifyService(notifications NotificationStore, programs ProgramReader, gate *auth.Gate, log zerolog.Logger) *NotifyService {
	return &NotifyService{
		notifications: notifications,
		programs:      programs,
		gate:          gate,
		log:           log,
	}
}

// ReminderTime is midnight UTC seven days before the deadline, or nil for
// programs without one.
func ReminderTime(deadline *time.Time) *time.Time {
	if deadline == nil {
		return nil
	}
	d := deadline.UTC()
	at := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).Add(-ReminderLead)
	return &at
}

// Subscribe asks for a deadline reminder. Subscribing twice is not an error;
// created reports whether this call added the subscription.
func (s *NotifyService) Subscribe(ctx context.Context, principal *models.Principal, programID int64) (bool, error) {
	actor, err := s.gate.RequireAuthenticated(principal)
	if err != nil {
		return false, err
	}

	program, err := s.programs.Get(ctx, programID)
	if err != nil {
		return false, err
	}

	created, err := s.notifications.Create(ctx, models.Notification{
		UserID:    actor.UserID,
		ProgramID: program.ID,
		NotifyAt:  ReminderTime(program.Deadline),
	})
	if err != nil {
		return false, err
	}
	if created {
		s.log.Info().Int64("user_id", actor.UserID).Int64("program_id", program.ID).Msg("notification subscribed")
	}
	return created, nil
}

func (s *NotifyService) ListMine(ctx context.Context, principal *models.Principal) ([]models.NotificationDetail, error) {
	actor, err := s.gate.RequireAuthenticated(principal)
	if err != nil {
		return nil, err
	}
	return s.notifications.ListByUser(ctx, actor.UserID)
}

// DeliverDue emits every reminder whose time has come and marks it sent. It
// returns how many were delivered.
func (s *NotifyService) DeliverDue(ctx context.Context, now time.Time) (int, error) {
	delivered := 0
	for {
		due, err := s.notifications.ListDue(ctx, now, deliverBatch)
		if err != nil {
			return delivered, err
		}
		if len(due) == 0 {
			return delivered, nil
		}

		ids := make([]int64, 0, len(due))
		for _, n := range due {
			event := s.log.Info().
				Str("event", "reminder").
				Int64("notification_id", n.ID).
				Int64("user_id", n.UserID).
				Str("email", n.UserEmail).
				Int64("program_id", n.ProgramID).
				Str("program_title", n.ProgramTitle)
			if n.Deadline != nil {
				event = event.Str("deadline", n.Deadline.Format(DateLayout))
			}
			event.Msg("deadline reminder")
			ids = append(ids, n.ID)
		}

		if err := s.notifications.MarkSent(ctx, ids, now); err != nil {
			return delivered, err
		}
		delivered += len(ids)

		if len(due) < deliverBatch {
			return delivered, nil
		}
	}
}
