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
)

type taskSubmission struct {
	ID            uuid.UUID  `db:"id"`
	TaskID        uuid.UUID  `db:"task_id"`
	TaskTitle     string     `db:"task_title"`
	UserID        int64      `db:"user_id"`
	PhotoRef      string     `db:"photo_ref"`
	Notes         string     `db:"notes"`
	SubmittedAt   time.Time  `db:"submitted_at"`
	Status        string     `db:"status"`
	ReviewerNotes string     `db:"reviewer_notes"`
	AwardedPoints int        `db:"awarded_points"`
	ReviewedAt    *time.Time `db:"reviewed_at"`
}

type lockedSubmission struct {
	taskSubmission
	TaskEcoPoints int `db:"task_eco_points"`
}

func (s taskSubmission) toModel() *model.TaskSubmission {
	return &model.TaskSubmission{
		ID:            s.ID,
		TaskID:        s.TaskID,
		TaskTitle:     s.TaskTitle,
		UserID:        s.UserID,
		PhotoRef:      s.PhotoRef,
		Notes:         s.Notes,
		SubmittedAt:   s.SubmittedAt,
		Status:        model.SubmissionStatus(s.Status),
		ReviewerNotes: s.ReviewerNotes,
		AwardedPoints: s.AwardedPoints,
		ReviewedAt:    s.ReviewedAt,
	}
}

func submissionsSelect(extra ...string) squirrel.SelectBuilder {
	columns := append([]string{
		"s.id",
		"s.task_id",
		"t.title as task_title",
		"s.user_id",
		"s.photo_ref",
		"s.notes",
		"s.submitted_at",
		"s.status",
		"s.reviewer_notes",
		"s.awarded_points",
		"s.reviewed_at",
	}, extra...)

	return squirrel.
		Select(columns...).
		From("task_submissions s").
		Join("tasks t ON t.id = s.task_id").
		PlaceholderFormat(squirrel.Dollar)
}

func (r *Repository) CreateSubmission(ctx context.Context, s *model.TaskSubmission) error {
	s.SubmittedAt = r.now()
	s.Status = model.SubmissionPending
	s.AwardedPoints = 0

	query, args, err := squirrel.
		Insert("task_submissions").
		SetMap(map[string]interface{}{
			"id":             s.ID,
			"task_id":        s.TaskID,
			"user_id":        s.UserID,
			"photo_ref":      s.PhotoRef,
			"notes":          s.Notes,
			"submitted_at":   s.SubmittedAt,
			"status":         string(s.Status),
			"reviewer_notes": "",
			"awarded_points": 0,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build submission insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	return nil
}

func (r *Repository) GetSubmission(ctx context.Context, submissionID uuid.UUID) (*model.TaskSubmission, error) {
	query, args, err := submissionsSelect().
		Where(squirrel.Eq{"s.id": submissionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build submission query: %w", err)
	}

	var row taskSubmission
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return row.toModel(), nil
}

func (r *Repository) ListSubmissions(ctx context.Context, filter model.SubmissionFilter) ([]*model.TaskSubmission, error) {
	builder := submissionsSelect().OrderBy("s.submitted_at DESC")

	if filter.UserID != nil {
		builder = builder.Where(squirrel.Eq{"s.user_id": *filter.UserID})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"s.status": string(*filter.Status)})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build submissions query: %w", err)
	}

	var rows []taskSubmission
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	submissions := make([]*model.TaskSubmission, len(rows))
	for i, row := range rows {
		submissions[i] = row.toModel()
	}

	return submissions, nil
}

// ApproveSubmission moves a pending submission to approved and credits the awarded
// points to the submitter in the same transaction. A nil points value awards the
// task's default.
func (r *Repository) ApproveSubmission(ctx context.Context, submissionID uuid.UUID, points *int, reviewerNotes string) (*model.Review, error) {
	var review *model.Review

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		lockQuery, lockArgs, err := submissionsSelect("t.eco_points as task_eco_points").
			Where(squirrel.Eq{"s.id": submissionID}).
			Suffix("FOR UPDATE OF s").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build submission lock query: %w", err)
		}

		var locked lockedSubmission
		if err := tx.GetContext(ctx, &locked, lockQuery, lockArgs...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock submission: %w", err)
		}

		if model.SubmissionStatus(locked.Status) != model.SubmissionPending {
			return ErrNotPending
		}

		awarded := locked.TaskEcoPoints
		if points != nil {
			awarded = *points
		}
		reviewedAt := r.now()

		updateQuery, updateArgs, err := squirrel.
			Update("task_submissions").
			SetMap(map[string]interface{}{
				"status":         string(model.SubmissionApproved),
				"awarded_points": awarded,
				"reviewer_notes": reviewerNotes,
				"reviewed_at":    reviewedAt,
			}).
			Where(squirrel.Eq{
				"id":     submissionID,
				"status": string(model.SubmissionPending),
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build submission update query: %w", err)
		}

		result, err := tx.ExecContext(ctx, updateQuery, updateArgs...)
		if err != nil {
			return fmt.Errorf("failed to approve submission: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return ErrNotPending
		}

		change, err := r.addPointsWithTx(ctx, tx, locked.UserID, awarded)
		if err != nil {
			return err
		}

		submission := locked.toModel()
		submission.Status = model.SubmissionApproved
		submission.AwardedPoints = awarded
		submission.ReviewerNotes = reviewerNotes
		submission.ReviewedAt = &reviewedAt

		review = &model.Review{
			Submission: submission,
			Progress:   change,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

// RejectSubmission moves a pending submission to rejected. The ledger is not touched.
func (r *Repository) RejectSubmission(ctx context.Context, submissionID uuid.UUID, reviewerNotes string) (*model.TaskSubmission, error) {
	updateQuery, args, err := squirrel.
		Update("task_submissions").
		SetMap(map[string]interface{}{
			"status":         string(model.SubmissionRejected),
			"reviewer_notes": reviewerNotes,
			"reviewed_at":    r.now(),
		}).
		Where(squirrel.Eq{
			"id":     submissionID,
			"status": string(model.SubmissionPending),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build submission update query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, updateQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to reject submission: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}

	submission, err := r.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if rows == 0 {
		return nil, ErrNotPending
	}

	return submission, nil
}
