package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// StatsService derives dashboard counters from current store state. Counters
// are computed fresh on every call; nothing is cached.
type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// DashboardStats are the dispatch dashboard counters, computed over all
// non-cancelled requests. "Today" is the database's calendar day.
type DashboardStats struct {
	PendingCount      int `json:"pending_count"`
	ScheduledCount    int `json:"scheduled_count"`
	InProgressCount   int `json:"in_progress_count"`
	CompletedToday    int `json:"completed_today"`
	ScheduledToday    int `json:"scheduled_today"`
	ScheduledTomorrow int `json:"scheduled_tomorrow"`
}

// GetStats computes every counter in one aggregate statement.
func (s *StatsService) GetStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	row := s.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(CASE WHEN status = 'pending' THEN 1 END) AS pending_count,
			COUNT(CASE WHEN status = 'scheduled' THEN 1 END) AS scheduled_count,
			COUNT(CASE WHEN status = 'in_progress' THEN 1 END) AS in_progress_count,
			COUNT(CASE WHEN status = 'completed' AND DATE(updated_at) = CURRENT_DATE THEN 1 END) AS completed_today,
			COUNT(CASE WHEN scheduled_date = CURRENT_DATE THEN 1 END) AS scheduled_today,
			COUNT(CASE WHEN scheduled_date = CURRENT_DATE + 1 THEN 1 END) AS scheduled_tomorrow
		FROM service_requests
		WHERE status != 'cancelled'
	`).Row()

	if err := row.Scan(
		&stats.PendingCount,
		&stats.ScheduledCount,
		&stats.InProgressCount,
		&stats.CompletedToday,
		&stats.ScheduledToday,
		&stats.ScheduledTomorrow,
	); err != nil {
		return nil, fmt.Errorf("scan dashboard stats: %w", err)
	}

	return stats, nil
}
