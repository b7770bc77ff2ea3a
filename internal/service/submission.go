package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecoverse_backend/internal/metrics"
	"ecoverse_backend/internal/model"
	"ecoverse_backend/internal/repository"

	"github.com/google/uuid"
)

const reviewQueueSize = 200

type SubmissionService struct {
	repo     SubmissionRepository
	notifier Notifier
}

func NewSubmissionService(repo SubmissionRepository, notifier Notifier) *SubmissionService {
	return &SubmissionService{
		repo:     repo,
		notifier: notifier,
	}
}

func (s *SubmissionService) ListActiveTasks(ctx context.Context) ([]*model.Task, error) {
	tasks, err := s.repo.ListActiveTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *SubmissionService) CreateTask(ctx context.Context, task *model.Task) error {
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" || task.EcoPoints <= 0 {
		return ErrInvalidTask
	}

	task.ID = uuid.New()
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// SubmitTask records a pending submission for an active task.
func (s *SubmissionService) SubmitTask(ctx context.Context, userID int64, taskID uuid.UUID, photoRef, notes string) (*model.TaskSubmission, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if !task.IsActive {
		return nil, ErrTaskInactive
	}

	photoRef = strings.TrimSpace(photoRef)
	if task.RequiresPhoto && photoRef == "" {
		return nil, ErrPhotoRequired
	}

	submission := &model.TaskSubmission{
		ID:        uuid.New(),
		TaskID:    task.ID,
		TaskTitle: task.Title,
		UserID:    userID,
		PhotoRef:  photoRef,
		Notes:     strings.TrimSpace(notes),
	}

	if err := s.repo.CreateSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	return submission, nil
}

func (s *SubmissionService) ListUserSubmissions(ctx context.Context, userID int64) ([]*model.TaskSubmission, error) {
	submissions, err := s.repo.ListSubmissions(ctx, model.SubmissionFilter{UserID: &userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

// ListSubmissions returns the reviewer queue, optionally narrowed to one status.
func (s *SubmissionService) ListSubmissions(ctx context.Context, status *model.SubmissionStatus) ([]*model.TaskSubmission, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *status)
	}

	submissions, err := s.repo.ListSubmissions(ctx, model.SubmissionFilter{
		Status: status,
		Limit:  reviewQueueSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

// Approve awards points (the task's default when points is nil) and credits them to the
// submitter in the same transaction as the status change.
func (s *SubmissionService) Approve(ctx context.Context, submissionID uuid.UUID, points *int, reviewerNotes string) (*model.Review, error) {
	if points != nil && *points < 0 {
		return nil, ErrNegativePoints
	}

	review, err := s.repo.ApproveSubmission(ctx, submissionID, points, strings.TrimSpace(reviewerNotes))
	if err != nil {
		return nil, reviewError(err)
	}

	metrics.SubmissionsReviewed.WithLabelValues(string(model.SubmissionApproved)).Inc()
	recordAward(review.Progress, metrics.SourceSubmission)

	submission := review.Submission
	events := []model.Event{{
		Type:   model.EventSubmissionApproved,
		UserID: submission.UserID,
		Payload: map[string]any{
			"submission_id":  submission.ID.String(),
			"task_title":     submission.TaskTitle,
			"awarded_points": submission.AwardedPoints,
			"reviewer_notes": submission.ReviewerNotes,
		},
	}}
	publish(ctx, s.notifier, append(events, progressEvents(submission.UserID, review.Progress, metrics.SourceSubmission)...)...)

	return review, nil
}

func (s *SubmissionService) Reject(ctx context.Context, submissionID uuid.UUID, reviewerNotes string) (*model.TaskSubmission, error) {
	submission, err := s.repo.RejectSubmission(ctx, submissionID, strings.TrimSpace(reviewerNotes))
	if err != nil {
		return nil, reviewError(err)
	}

	metrics.SubmissionsReviewed.WithLabelValues(string(model.SubmissionRejected)).Inc()

	publish(ctx, s.notifier, model.Event{
		Type:   model.EventSubmissionRejected,
		UserID: submission.UserID,
		Payload: map[string]any{
			"submission_id":  submission.ID.String(),
			"task_title":     submission.TaskTitle,
			"reviewer_notes": submission.ReviewerNotes,
		},
	})

	return submission, nil
}

func reviewError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrSubmissionNotFound
	case errors.Is(err, repository.ErrNotPending):
		return ErrSubmissionNotPending
	default:
		return fmt.Errorf("failed to review submission: %w", err)
	}
}
