package models

import "time"

type Notification struct {
	ID        int64
	UserID    int64
	ProgramID int64
	NotifyAt  *time.Time
	SentAt    *time.Time
	CreatedAt time.Time
}

// NotificationDetail joins a notification with the program it points at.
type NotificationDetail struct {
	ID           int64
	UserID       int64
	UserEmail    string
	ProgramID    int64
	ProgramTitle string
	Deadline     *time.Time
	NotifyAt     *time.Time
	SentAt       *time.Time
}
