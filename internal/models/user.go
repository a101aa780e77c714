package models

import "time"

type User struct {
	ID           int64
	Email        string
	PasswordHash []byte
	Nickname     string
	IsAdmin      bool
	CreatedAt    time.Time
}
