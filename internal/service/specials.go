package service

import (
	"context"

	"qr-menu/internal/domain"
	"qr-menu/internal/logger"
	"qr-menu/internal/recurrence"
	"qr-menu/internal/repository"
)

// SpecialService schedules promotional dishes: it expands a recurrence
// request into dated occurrences and persists them.
type SpecialService struct {
	repo repository.Specials
	log  *logger.Logger
}

func NewSpecialService(repo repository.Specials, log *logger.Logger) *SpecialService {
	return &SpecialService{repo: repo, log: log}
}

func (s *SpecialService) Schedule(ctx context.Context, req recurrence.Request) ([]domain.DailySpecial, error) {
	specials, err := recurrence.Expand(req)
	if err != nil {
		return nil, err
	}
	inserted, err := s.repo.CreateBatch(ctx, specials)
	if err != nil {
		return nil, err
	}
	s.log.Info("specials_scheduled", map[string]any{
		"dish_id":  req.DishID,
		"expanded": len(specials),
		"inserted": inserted,
		"group_id": specials[0].GroupID,
	})
	return specials, nil
}

// UnscheduleGroup removes every occurrence generated by one recurring
// request.
func (s *SpecialService) UnscheduleGroup(ctx context.Context, groupID string) (int, error) {
	deleted, err := s.repo.DeleteGroup(ctx, groupID)
	if err != nil {
		return 0, err
	}
	s.log.Info("specials_group_removed", map[string]any{"group_id": groupID, "deleted": deleted})
	return deleted, nil
}

func (s *SpecialService) Remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return domain.Validation("at least one occurrence id is required")
	}
	return s.repo.DeleteByIDs(ctx, ids)
}
