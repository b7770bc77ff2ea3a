package service

import (
	"context"

	"ecoverse_backend/internal/metrics"
	"ecoverse_backend/internal/model"
	"ecoverse_backend/pkg/logger"

	"go.uber.org/zap"
)

// progressEvents describes a ledger change. Zero-point awards produce no POINTS_AWARDED event.
func progressEvents(userID int64, change *model.ProgressChange, source string) []model.Event {
	if change == nil || change.Progress == nil {
		return nil
	}

	var events []model.Event
	if change.Amount > 0 {
		events = append(events, model.Event{
			Type:   model.EventPointsAwarded,
			UserID: userID,
			Payload: map[string]any{
				"amount":       change.Amount,
				"source":       source,
				"total_points": change.Progress.TotalPoints,
			},
		})
	}

	if change.LeveledUp() {
		level := change.Progress.CurrentLevel
		events = append(events, model.Event{
			Type:   model.EventLevelUp,
			UserID: userID,
			Payload: map[string]any{
				"level_number": level.Number,
				"level_name":   level.Name,
				"badge_color":  level.BadgeColor,
			},
		})
	}

	return events
}

func recordAward(change *model.ProgressChange, source string) {
	if change == nil {
		return
	}
	metrics.PointsAwarded.WithLabelValues(source).Add(float64(change.Amount))
	if change.LeveledUp() {
		metrics.LevelUps.Inc()
	}
}

// publish hands events to the notifier after the owning transaction committed.
// Failures are logged and never returned.
func publish(ctx context.Context, notifier Notifier, events ...model.Event) {
	if notifier == nil {
		return
	}

	for _, event := range events {
		if err := notifier.Notify(ctx, event); err != nil {
			logger.ForUser(event.UserID).Warn("Failed to deliver event",
				zap.String("type", string(event.Type)),
				zap.Error(err))
		}
	}
}
