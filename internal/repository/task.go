package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ecoverse_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type task struct {
	ID            uuid.UUID `db:"id"`
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	EcoPoints     int       `db:"eco_points"`
	RequiresPhoto bool      `db:"requires_photo"`
	IsActive      bool      `db:"is_active"`
	CreatedAt     time.Time `db:"created_at"`
}

func (t task) toModel() *model.Task {
	return &model.Task{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		EcoPoints:     t.EcoPoints,
		RequiresPhoto: t.RequiresPhoto,
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt,
	}
}

func tasksSelect() squirrel.SelectBuilder {
	return squirrel.
		Select("id", "title", "description", "eco_points", "requires_photo", "is_active", "created_at").
		From("tasks").
		PlaceholderFormat(squirrel.Dollar)
}

func (r *Repository) CreateTask(ctx context.Context, t *model.Task) error {
	t.CreatedAt = r.now()

	query, args, err := squirrel.
		Insert("tasks").
		SetMap(map[string]interface{}{
			"id":             t.ID,
			"title":          t.Title,
			"description":    t.Description,
			"eco_points":     t.EcoPoints,
			"requires_photo": t.RequiresPhoto,
			"is_active":      t.IsActive,
			"created_at":     t.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build task insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

func (r *Repository) GetTask(ctx context.Context, taskID uuid.UUID) (*model.Task, error) {
	query, args, err := tasksSelect().
		Where(squirrel.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task query: %w", err)
	}

	var row task
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return row.toModel(), nil
}

func (r *Repository) ListActiveTasks(ctx context.Context) ([]*model.Task, error) {
	query, args, err := tasksSelect().
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build tasks query: %w", err)
	}

	var rows []task
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*model.Task, len(rows))
	for i, row := range rows {
		tasks[i] = row.toModel()
	}

	return tasks, nil
}
