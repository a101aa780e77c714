package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"policymatcher/internal/database"
	"policymatcher/internal/errs"
	"policymatcher/internal/models"
)

type NotificationRepository struct {
	pool database.Pool
}

func NewNotificationRepository(pool database.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create subscribes the user to the program. The second subscription for the
// same pair is a no-op and reports created == false.
func (r *NotificationRepository) Create(ctx context.Context, n models.Notification) (bool, error) {
	const query = `
		INSERT INTO notifications (user_id, program_id, notify_at, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, program_id) DO NOTHING
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query, n.UserID, n.ProgramID, n.NotifyAt).Scan(&id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	case database.IsForeignKeyViolation(err):
		return false, errs.ErrNotFound
	default:
		return false, fmt.Errorf("create notification: %w", err)
	}
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64) ([]models.NotificationDetail, error) {
	const query = `
		SELECT n.id, n.user_id, u.email, n.program_id, p.title, p.deadline, n.notify_at, n.sent_at
		FROM notifications n
		JOIN programs p ON n.program_id = p.id
		JOIN users u ON n.user_id = u.id
		WHERE n.user_id = $1
		ORDER BY n.created_at DESC, n.id DESC
	`
	return r.list(ctx, query, userID)
}

// ListDue returns unsent notifications whose reminder time has passed.
func (r *NotificationRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]models.NotificationDetail, error) {
	const query = `
		SELECT n.id, n.user_id, u.email, n.program_id, p.title, p.deadline, n.notify_at, n.sent_at
		FROM notifications n
		JOIN programs p ON n.program_id = p.id
		JOIN users u ON n.user_id = u.id
		WHERE n.sent_at IS NULL AND n.notify_at IS NOT NULL AND n.notify_at <= $1
		ORDER BY n.notify_at, n.id
		LIMIT $2
	`
	return r.list(ctx, query, now, limit)
}

func (r *NotificationRepository) MarkSent(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET sent_at = $2 WHERE id = ANY($1) AND sent_at IS NULL`, ids, at)
	if err != nil {
		return fmt.Errorf("mark notifications sent: %w", err)
	}
	return nil
}

func (r *NotificationRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}

func (r *NotificationRepository) list(ctx context.Context, query string, args ...any) ([]models.NotificationDetail, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]models.NotificationDetail, 0)
	for rows.Next() {
		var n models.NotificationDetail
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.UserEmail,
			&n.ProgramID,
			&n.ProgramTitle,
			&n.Deadline,
			&n.NotifyAt,
			&n.SentAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
