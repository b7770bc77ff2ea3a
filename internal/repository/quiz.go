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
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type quiz struct {
	ID               int64  `db:"id"`
	LessonSlug       string `db:"lesson_slug"`
	Title            string `db:"title"`
	EcoPoints        int    `db:"eco_points"`
	TimeLimitSeconds *int   `db:"time_limit_seconds"`
	IsActive         bool   `db:"is_active"`
}

type questionWithChoices struct {
	ID            int64          `db:"id"`
	QuizID        int64          `db:"quiz_id"`
	Text          string         `db:"text"`
	QuestionType  string         `db:"question_type"`
	Position      int            `db:"position"`
	ChoiceIDs     pq.Int64Array  `db:"choice_ids"`
	ChoiceTexts   pq.StringArray `db:"choice_texts"`
	ChoiceCorrect pq.BoolArray   `db:"choice_correct"`
}

type quizAttempt struct {
	ID           uuid.UUID           `db:"id"`
	UserID       int64               `db:"user_id"`
	QuizID       int64               `db:"quiz_id"`
	StartedAt    time.Time           `db:"started_at"`
	CompletedAt  *time.Time          `db:"completed_at"`
	ScorePercent decimal.NullDecimal `db:"score_percent"`
	EarnedPoints int                 `db:"earned_points"`
}

func (a quizAttempt) toModel() *model.QuizAttempt {
	attempt := &model.QuizAttempt{
		ID:           a.ID,
		UserID:       a.UserID,
		QuizID:       a.QuizID,
		StartedAt:    a.StartedAt,
		CompletedAt:  a.CompletedAt,
		EarnedPoints: a.EarnedPoints,
	}
	if a.ScorePercent.Valid {
		score := a.ScorePercent.Decimal
		attempt.ScorePercent = &score
	}
	return attempt
}

var attemptColumns = []string{
	"id",
	"user_id",
	"quiz_id",
	"started_at",
	"completed_at",
	"score_percent",
	"earned_points",
}

func (r *Repository) CreateQuiz(ctx context.Context, q *model.Quiz) error {
	query, args, err := squirrel.
		Insert("quizzes").
		SetMap(map[string]interface{}{
			"lesson_slug":        q.LessonSlug,
			"title":              q.Title,
			"eco_points":         q.EcoPoints,
			"time_limit_seconds": q.TimeLimitSeconds,
			"is_active":          q.IsActive,
		}).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build quiz insert query: %w", err)
	}

	if err := r.db.GetContext(ctx, &q.ID, query, args...); err != nil {
		return fmt.Errorf("failed to insert quiz: %w", err)
	}

	return nil
}

func (r *Repository) UpdateQuiz(ctx context.Context, q *model.Quiz) error {
	query, args, err := squirrel.
		Update("quizzes").
		SetMap(map[string]interface{}{
			"lesson_slug":        q.LessonSlug,
			"title":              q.Title,
			"eco_points":         q.EcoPoints,
			"time_limit_seconds": q.TimeLimitSeconds,
			"is_active":          q.IsActive,
		}).
		Where(squirrel.Eq{"id": q.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build quiz update query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// GetQuiz loads a quiz with its questions ordered by position and their choices.
func (r *Repository) GetQuiz(ctx context.Context, quizID int64) (*model.Quiz, error) {
	quizQuery, quizArgs, err := squirrel.
		Select("id", "lesson_slug", "title", "eco_points", "time_limit_seconds", "is_active").
		From("quizzes").
		Where(squirrel.Eq{"id": quizID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build quiz query: %w", err)
	}

	var dbQuiz quiz
	if err := r.db.GetContext(ctx, &dbQuiz, quizQuery, quizArgs...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	questionQuery, questionArgs, err := squirrel.Select(
		"q.id",
		"q.quiz_id",
		"q.text",
		"q.question_type",
		"q.position",
		"array_agg(c.id ORDER BY c.id) FILTER (WHERE c.id IS NOT NULL) as choice_ids",
		"array_agg(c.text ORDER BY c.id) FILTER (WHERE c.id IS NOT NULL) as choice_texts",
		"array_agg(c.is_correct ORDER BY c.id) FILTER (WHERE c.id IS NOT NULL) as choice_correct",
	).
		From("quiz_questions q").
		LeftJoin("quiz_choices c ON c.question_id = q.id").
		Where(squirrel.Eq{"q.quiz_id": quizID}).
		GroupBy("q.id").
		OrderBy("q.position", "q.id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build questions query: %w", err)
	}

	var dbQuestions []questionWithChoices
	if err := r.db.SelectContext(ctx, &dbQuestions, questionQuery, questionArgs...); err != nil {
		return nil, fmt.Errorf("failed to get quiz questions: %w", err)
	}

	questions := make([]model.Question, len(dbQuestions))
	for i, q := range dbQuestions {
		choices := make([]model.Choice, len(q.ChoiceIDs))
		for j := range q.ChoiceIDs {
			choices[j] = model.Choice{
				ID:         q.ChoiceIDs[j],
				QuestionID: q.ID,
				Text:       q.ChoiceTexts[j],
				IsCorrect:  q.ChoiceCorrect[j],
			}
		}

		questions[i] = model.Question{
			ID:       q.ID,
			QuizID:   q.QuizID,
			Text:     q.Text,
			Type:     model.QuestionType(q.QuestionType),
			Position: q.Position,
			Choices:  choices,
		}
	}

	return &model.Quiz{
		ID:               dbQuiz.ID,
		LessonSlug:       dbQuiz.LessonSlug,
		Title:            dbQuiz.Title,
		EcoPoints:        dbQuiz.EcoPoints,
		TimeLimitSeconds: dbQuiz.TimeLimitSeconds,
		IsActive:         dbQuiz.IsActive,
		Questions:        questions,
	}, nil
}

// ReplaceQuestions swaps the whole question set of a quiz. Either every question and
// choice is stored or none is.
func (r *Repository) ReplaceQuestions(ctx context.Context, quizID int64, questions []model.Question) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		lockQuery, lockArgs, err := squirrel.
			Select("id").
			From("quizzes").
			Where(squirrel.Eq{"id": quizID}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build quiz lock query: %w", err)
		}

		var id int64
		if err := tx.GetContext(ctx, &id, lockQuery, lockArgs...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock quiz: %w", err)
		}

		deleteQuery, deleteArgs, err := squirrel.
			Delete("quiz_questions").
			Where(squirrel.Eq{"quiz_id": quizID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build questions delete query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
			return fmt.Errorf("failed to delete questions: %w", err)
		}

		for _, question := range questions {
			questionQuery, questionArgs, err := squirrel.
				Insert("quiz_questions").
				SetMap(map[string]interface{}{
					"quiz_id":       quizID,
					"text":          question.Text,
					"question_type": string(question.Type),
					"position":      question.Position,
				}).
				Suffix("RETURNING id").
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build question insert query: %w", err)
			}

			var questionID int64
			if err := tx.GetContext(ctx, &questionID, questionQuery, questionArgs...); err != nil {
				return fmt.Errorf("failed to insert question: %w", err)
			}

			if len(question.Choices) == 0 {
				continue
			}

			choiceBuilder := squirrel.
				Insert("quiz_choices").
				Columns("question_id", "text", "is_correct").
				PlaceholderFormat(squirrel.Dollar)

			for _, choice := range question.Choices {
				choiceBuilder = choiceBuilder.Values(questionID, choice.Text, choice.IsCorrect)
			}

			choiceQuery, choiceArgs, err := choiceBuilder.ToSql()
			if err != nil {
				return fmt.Errorf("failed to build choice insert query: %w", err)
			}

			if _, err := tx.ExecContext(ctx, choiceQuery, choiceArgs...); err != nil {
				return fmt.Errorf("failed to insert choices: %w", err)
			}
		}

		return nil
	})
}

func (r *Repository) StartQuizAttempt(ctx context.Context, attempt *model.QuizAttempt) error {
	attempt.StartedAt = r.now()

	query, args, err := squirrel.
		Insert("quiz_attempts").
		SetMap(map[string]interface{}{
			"id":            attempt.ID,
			"user_id":       attempt.UserID,
			"quiz_id":       attempt.QuizID,
			"started_at":    attempt.StartedAt,
			"earned_points": 0,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build attempt insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to start attempt: %w", err)
	}

	return nil
}

// CompleteQuizAttempt finalizes a previously started attempt and credits its points in
// one transaction. The attempt must belong to the user and quiz and still be open.
func (r *Repository) CompleteQuizAttempt(ctx context.Context, attempt *model.QuizAttempt) (*model.ProgressChange, error) {
	var change *model.ProgressChange

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		completedAt := r.now()

		updateQuery, args, err := squirrel.
			Update("quiz_attempts").
			SetMap(map[string]interface{}{
				"completed_at":  completedAt,
				"score_percent": scoreValue(attempt.ScorePercent),
				"earned_points": attempt.EarnedPoints,
			}).
			Where(squirrel.Eq{
				"id":           attempt.ID,
				"user_id":      attempt.UserID,
				"quiz_id":      attempt.QuizID,
				"completed_at": nil,
			}).
			Suffix("RETURNING started_at").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build attempt update query: %w", err)
		}

		var startedAt time.Time
		err = tx.GetContext(ctx, &startedAt, updateQuery, args...)
		if errors.Is(err, sql.ErrNoRows) {
			checkQuery, checkArgs, err := squirrel.
				Select("completed_at").
				From("quiz_attempts").
				Where(squirrel.Eq{
					"id":      attempt.ID,
					"user_id": attempt.UserID,
					"quiz_id": attempt.QuizID,
				}).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build check query: %w", err)
			}

			var existing sql.NullTime
			if err := tx.GetContext(ctx, &existing, checkQuery, checkArgs...); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return ErrNotFound
				}
				return fmt.Errorf("failed to check attempt status: %w", err)
			}
			return ErrAlreadyCompleted
		}
		if err != nil {
			return fmt.Errorf("failed to complete attempt: %w", err)
		}

		attempt.StartedAt = startedAt
		attempt.CompletedAt = &completedAt

		change, err = r.addPointsWithTx(ctx, tx, attempt.UserID, attempt.EarnedPoints)
		return err
	})
	if err != nil {
		return nil, err
	}

	return change, nil
}

// RecordQuizAttempt stores an attempt that was graded without being started first and
// credits its points in one transaction.
func (r *Repository) RecordQuizAttempt(ctx context.Context, attempt *model.QuizAttempt) (*model.ProgressChange, error) {
	var change *model.ProgressChange

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		now := r.now()

		query, args, err := squirrel.
			Insert("quiz_attempts").
			SetMap(map[string]interface{}{
				"id":            attempt.ID,
				"user_id":       attempt.UserID,
				"quiz_id":       attempt.QuizID,
				"started_at":    now,
				"completed_at":  now,
				"score_percent": scoreValue(attempt.ScorePercent),
				"earned_points": attempt.EarnedPoints,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build attempt insert query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to record attempt: %w", err)
		}

		attempt.StartedAt = now
		attempt.CompletedAt = &now

		change, err = r.addPointsWithTx(ctx, tx, attempt.UserID, attempt.EarnedPoints)
		return err
	})
	if err != nil {
		return nil, err
	}

	return change, nil
}

func (r *Repository) GetLatestCompletedAttempt(ctx context.Context, userID, quizID int64) (*model.QuizAttempt, error) {
	query, args, err := squirrel.
		Select(attemptColumns...).
		From("quiz_attempts").
		Where(squirrel.Eq{
			"user_id": userID,
			"quiz_id": quizID,
		}).
		Where(squirrel.NotEq{"completed_at": nil}).
		OrderBy("completed_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attempt query: %w", err)
	}

	var row quizAttempt
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest attempt: %w", err)
	}

	return row.toModel(), nil
}

func scoreValue(score *decimal.Decimal) decimal.NullDecimal {
	if score == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *score, Valid: true}
}
