package service

import (
	"context"
	"time"

	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/google/uuid"
)

const (
	DefaultStatsDays  = 30
	DefaultTopUsers   = 10
	dashboardDays     = 7
	dashboardTopUsers = 5
)

type StatsService struct {
	store domain.QuestionStore
	now   func() time.Time
}

func NewStatsService(s domain.QuestionStore) *StatsService {
	return &StatsService{store: s, now: time.Now}
}

// GetQuestionStats counts questions per calendar day over the last days
// days, newest day first.
func (s *StatsService) GetQuestionStats(ctx context.Context, companyID uuid.UUID, days int) ([]domain.QuestionStat, error) {
	if days <= 0 {
		days = DefaultStatsDays
	}
	since := s.now().AddDate(0, 0, -days)
	stats, err := s.store.DailyCounts(ctx, companyID, since)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []domain.QuestionStat{}
	}
	return stats, nil
}

// GetTopUsers ranks the company's users by questions asked. Users with no
// questions are included with a zero count.
func (s *StatsService) GetTopUsers(ctx context.Context, companyID uuid.UUID, limit int) ([]domain.UserStat, error) {
	if limit <= 0 {
		limit = DefaultTopUsers
	}
	users, err := s.store.TopUsers(ctx, companyID, limit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.UserStat{}
	}
	return users, nil
}

func (s *StatsService) GetDashboardSummary(ctx context.Context, companyID uuid.UUID) (*domain.DashboardSummary, error) {
	stats, err := s.GetQuestionStats(ctx, companyID, dashboardDays)
	if err != nil {
		return nil, err
	}
	top, err := s.GetTopUsers(ctx, companyID, dashboardTopUsers)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, st := range stats {
		total += st.Count
	}

	return &domain.DashboardSummary{
		TotalQuestionsThisWeek: total,
		QuestionStats:          stats,
		TopUsers:               top,
		GeneratedAt:            s.now().UTC(),
	}, nil
}
