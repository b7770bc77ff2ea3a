package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecoverse_backend/internal/metrics"
	"ecoverse_backend/internal/model"
	"ecoverse_backend/internal/repository"
)

const leaderboardSize = 100

type ProgressService struct {
	repo     ProgressRepository
	notifier Notifier
}

func NewProgressService(repo ProgressRepository, notifier Notifier) *ProgressService {
	return &ProgressService{
		repo:     repo,
		notifier: notifier,
	}
}

func (s *ProgressService) GetProgress(ctx context.Context, userID int64) (*model.UserProgress, error) {
	progress, err := s.repo.GetOrCreateProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return progress, nil
}

// GetOverview returns the ledger together with the level table and how far the user is
// from the next threshold.
func (s *ProgressService) GetOverview(ctx context.Context, userID int64) (*model.ProgressOverview, error) {
	progress, err := s.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	levels, err := s.repo.ListLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}

	overview := &model.ProgressOverview{
		Progress:      progress,
		Levels:        levels,
		NextLevel:     levels.NextAfter(progress.TotalPoints),
		PercentToNext: 100,
	}

	if overview.NextLevel != nil {
		floor := 0
		if progress.CurrentLevel != nil {
			floor = progress.CurrentLevel.RequiredPoints
		}
		span := overview.NextLevel.RequiredPoints - floor
		overview.PointsToNext = overview.NextLevel.RequiredPoints - progress.TotalPoints
		overview.PercentToNext = (progress.TotalPoints - floor) * 100 / span
	}

	return overview, nil
}

// AddPoints credits a manual award to the user's ledger.
func (s *ProgressService) AddPoints(ctx context.Context, userID int64, amount int) (*model.ProgressChange, error) {
	if amount < 0 {
		return nil, ErrNegativePoints
	}

	change, err := s.repo.AddPoints(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to add points: %w", err)
	}

	recordAward(change, metrics.SourceManual)
	publish(ctx, s.notifier, progressEvents(userID, change, metrics.SourceManual)...)

	return change, nil
}

func (s *ProgressService) GetLeaderboard(ctx context.Context) ([]*model.UserProgress, error) {
	top, err := s.repo.GetTopProgress(ctx, leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return top, nil
}

func (s *ProgressService) ListLevels(ctx context.Context) (model.LevelTable, error) {
	levels, err := s.repo.ListLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}
	return levels, nil
}

func (s *ProgressService) CreateLevel(ctx context.Context, level *model.LevelDefinition) error {
	level.Name = strings.TrimSpace(level.Name)
	if level.Number <= 0 || level.Name == "" || level.RequiredPoints < 0 {
		return ErrInvalidLevel
	}

	if err := s.repo.CreateLevel(ctx, level); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrDuplicateLevel
		}
		return fmt.Errorf("failed to create level: %w", err)
	}

	return nil
}
