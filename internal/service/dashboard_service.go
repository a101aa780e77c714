package service

import (
	"context"

	"policymatcher/internal/models"
)

type Counter interface {
	Count(ctx context.Context) (int, error)
}

type CategoryCounter interface {
	Counter
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
}

type DashboardStats struct {
	Programs      int
	Users         int
	Notifications int
	ByCategory    []models.CategoryCount
}

type DashboardService struct {
	programs      CategoryCounter
	users         Counter
	notifications Counter
}

func NewDashboardService(programs CategoryCounter, users Counter, notifications Counter) *DashboardService {
	return &DashboardService{programs: programs, users: users, notifications: notifications}
}

func (s *DashboardService) Stats(ctx context.Context) (DashboardStats, error) {
	var (
		stats DashboardStats
		err   error
	)
	if stats.Programs, err = s.programs.Count(ctx); err != nil {
		return DashboardStats{}, err
	}
	if stats.Users, err = s.users.Count(ctx); err != nil {
		return DashboardStats{}, err
	}
	if stats.Notifications, err = s.notifications.Count(ctx); err != nil {
		return DashboardStats{}, err
	}
	if stats.ByCategory, err = s.programs.CountByCategory(ctx); err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}
