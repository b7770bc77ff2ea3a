package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ecoverse_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type userProgress struct {
	UserID             int64     `db:"user_id"`
	TotalPoints        int       `db:"total_points"`
	CurrentLevelNumber *int      `db:"current_level_number"`
	UpdatedAt          time.Time `db:"updated_at"`
}

type progressWithLevel struct {
	UserID              int64     `db:"user_id"`
	TotalPoints         int       `db:"total_points"`
	UpdatedAt           time.Time `db:"updated_at"`
	LevelNumber         *int      `db:"level_number"`
	LevelName           *string   `db:"level_name"`
	LevelRequiredPoints *int      `db:"level_required_points"`
	LevelBadgeColor     *string   `db:"level_badge_color"`
}

func (p progressWithLevel) toModel() *model.UserProgress {
	progress := &model.UserProgress{
		UserID:      p.UserID,
		TotalPoints: p.TotalPoints,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.LevelNumber != nil {
		level := &model.LevelDefinition{Number: *p.LevelNumber}
		if p.LevelName != nil {
			level.Name = *p.LevelName
		}
		if p.LevelRequiredPoints != nil {
			level.RequiredPoints = *p.LevelRequiredPoints
		}
		if p.LevelBadgeColor != nil {
			level.BadgeColor = *p.LevelBadgeColor
		}
		progress.CurrentLevel = level
	}
	return progress
}

func progressSelect() squirrel.SelectBuilder {
	return squirrel.Select(
		"p.user_id",
		"p.total_points",
		"p.updated_at",
		"l.number AS level_number",
		"l.name AS level_name",
		"l.required_points AS level_required_points",
		"l.badge_color AS level_badge_color",
	).
		From("user_progress p").
		LeftJoin("level_definitions l ON l.number = p.current_level_number").
		PlaceholderFormat(squirrel.Dollar)
}

func (r *Repository) ensureProgressWithTx(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	query, args, err := squirrel.
		Insert("user_progress").
		SetMap(map[string]interface{}{
			"user_id":      userID,
			"total_points": 0,
			"updated_at":   r.now(),
		}).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build progress insert query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create progress: %w", err)
	}

	return nil
}

// GetOrCreateProgress returns the user's ledger, creating an empty one on first access.
func (r *Repository) GetOrCreateProgress(ctx context.Context, userID int64) (*model.UserProgress, error) {
	var row progressWithLevel

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := r.ensureProgressWithTx(ctx, tx, userID); err != nil {
			return err
		}

		query, args, err := progressSelect().
			Where(squirrel.Eq{"p.user_id": userID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build progress query: %w", err)
		}

		if err := tx.GetContext(ctx, &row, query, args...); err != nil {
			return fmt.Errorf("failed to get progress: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return row.toModel(), nil
}

func (r *Repository) AddPoints(ctx context.Context, userID int64, amount int) (*model.ProgressChange, error) {
	var change *model.ProgressChange

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		change, err = r.addPointsWithTx(ctx, tx, userID, amount)
		return err
	})
	if err != nil {
		return nil, err
	}

	return change, nil
}

// addPointsWithTx increments the ledger under a row lock and stores the level derived
// from the new total, so concurrent awards for one user serialize.
func (r *Repository) addPointsWithTx(ctx context.Context, tx *sqlx.Tx, userID int64, amount int) (*model.ProgressChange, error) {
	if err := r.ensureProgressWithTx(ctx, tx, userID); err != nil {
		return nil, err
	}

	lockQuery, lockArgs, err := squirrel.
		Select("user_id", "total_points", "current_level_number", "updated_at").
		From("user_progress").
		Where(squirrel.Eq{"user_id": userID}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build progress lock query: %w", err)
	}

	var current userProgress
	if err := tx.GetContext(ctx, &current, lockQuery, lockArgs...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock progress: %w", err)
	}

	levels, err := r.listLevelsWithTx(ctx, tx)
	if err != nil {
		return nil, err
	}

	total := current.TotalPoints + amount
	level := levels.LevelFor(total)
	now := r.now()

	var levelNumber *int
	if level != nil {
		levelNumber = &level.Number
	}

	updateQuery, updateArgs, err := squirrel.
		Update("user_progress").
		SetMap(map[string]interface{}{
			"total_points":         total,
			"current_level_number": levelNumber,
			"updated_at":           now,
		}).
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build progress update query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, updateQuery, updateArgs...); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	return &model.ProgressChange{
		Amount:        amount,
		PreviousLevel: levels.ByNumber(current.CurrentLevelNumber),
		Progress: &model.UserProgress{
			UserID:       userID,
			TotalPoints:  total,
			CurrentLevel: level,
			UpdatedAt:    now,
		},
	}, nil
}

func (r *Repository) GetTopProgress(ctx context.Context, limit int) ([]*model.UserProgress, error) {
	query, args, err := progressSelect().
		OrderBy("p.total_points DESC", "p.updated_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard query: %w", err)
	}

	var rows []progressWithLevel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	out := make([]*model.UserProgress, len(rows))
	for i, row := range rows {
		out[i] = row.toModel()
	}

	return out, nil
}
