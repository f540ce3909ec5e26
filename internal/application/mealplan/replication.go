package mealplan

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/orbitfit/mealplan/internal/domain/mealplan"
	"github.com/orbitfit/mealplan/internal/ports/inbound"
	"github.com/orbitfit/mealplan/internal/ports/outbound"
)

// CopyDay replaces the target day's meals with the source day's, slot by
// slot. The plan row is locked for the duration of the transaction, so
// concurrent copies onto the same day serialize and the last one wins.
// Copying a day onto itself is accepted and changes nothing.
func (s *PlanService) CopyDay(ctx context.Context, cmd inbound.CopyDayCommand) (err error) {
	ctx, end := s.start(ctx, "CopyDay",
		attribute.String("plan_id", cmd.PlanID.String()),
		attribute.String("source_day_id", cmd.SourceDayID.String()),
		attribute.String("target_day_id", cmd.TargetDayID.String()),
	)
	defer func() { end(err) }()

	var copied mealplan.Day
	err = s.mutate(ctx, "copy day", cmd.PlanID, func(repo outbound.PlanRepository, plan *mealplan.Plan) error {
		target, changed, err := plan.CopyDay(cmd.SourceDayID, cmd.TargetDayID)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		copied = target
		return repo.ReplaceDay(ctx, target)
	})
	if err != nil {
		return err
	}

	if copied.ID == cmd.TargetDayID {
		s.logger.Info("Day copied",
			zap.String("plan_id", cmd.PlanID.String()),
			zap.String("target_day", copied.Weekday.String()),
			zap.Int("items", copied.ItemCount()),
		)
	}
	return nil
}
