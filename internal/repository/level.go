package repository

import (
	"context"
	"fmt"

	"ecoverse_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type levelDefinition struct {
	Number         int    `db:"number"`
	Name           string `db:"name"`
	RequiredPoints int    `db:"required_points"`
	BadgeColor     string `db:"badge_color"`
}

func (l levelDefinition) toModel() model.LevelDefinition {
	return model.LevelDefinition{
		Number:         l.Number,
		Name:           l.Name,
		RequiredPoints: l.RequiredPoints,
		BadgeColor:     l.BadgeColor,
	}
}

const qualifyingLevel = "(SELECT l.number FROM level_definitions l " +
	"WHERE l.required_points <= p.total_points ORDER BY l.required_points DESC LIMIT 1)"

func levelsQuery() (string, []interface{}, error) {
	return squirrel.
		Select("number", "name", "required_points", "badge_color").
		From("level_definitions").
		OrderBy("required_points").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func toLevelTable(rows []levelDefinition) model.LevelTable {
	table := make(model.LevelTable, len(rows))
	for i, l := range rows {
		table[i] = l.toModel()
	}
	return table
}

func (r *Repository) ListLevels(ctx context.Context) (model.LevelTable, error) {
	query, args, err := levelsQuery()
	if err != nil {
		return nil, fmt.Errorf("failed to build levels query: %w", err)
	}

	var rows []levelDefinition
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}

	return toLevelTable(rows), nil
}

func (r *Repository) listLevelsWithTx(ctx context.Context, tx *sqlx.Tx) (model.LevelTable, error) {
	query, args, err := levelsQuery()
	if err != nil {
		return nil, fmt.Errorf("failed to build levels query: %w", err)
	}

	var rows []levelDefinition
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}

	return toLevelTable(rows), nil
}

// CreateLevel inserts a level definition and re-derives every ledger's current level
// in the same transaction.
func (r *Repository) CreateLevel(ctx context.Context, level *model.LevelDefinition) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		// Serializes concurrent level writes so the uniqueness check below holds.
		if _, err := tx.ExecContext(ctx, "LOCK TABLE level_definitions IN SHARE ROW EXCLUSIVE MODE"); err != nil {
			return fmt.Errorf("failed to lock level definitions: %w", err)
		}

		existing, err := r.listLevelsWithTx(ctx, tx)
		if err != nil {
			return err
		}
		if existing.Conflicts(*level) {
			return ErrDuplicate
		}

		insertQuery, insertArgs, err := squirrel.
			Insert("level_definitions").
			SetMap(map[string]interface{}{
				"number":          level.Number,
				"name":            level.Name,
				"required_points": level.RequiredPoints,
				"badge_color":     level.BadgeColor,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build level insert query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return fmt.Errorf("failed to insert level: %w", err)
		}

		recalcQuery, recalcArgs, err := squirrel.
			Update("user_progress p").
			Set("current_level_number", squirrel.Expr(qualifyingLevel)).
			Set("updated_at", r.now()).
			Where(squirrel.Expr("p.current_level_number IS DISTINCT FROM " + qualifyingLevel)).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build level recalculation query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, recalcQuery, recalcArgs...); err != nil {
			return fmt.Errorf("failed to recalculate user levels: %w", err)
		}

		return nil
	})
}
