package service

import (
	"context"
	"errors"
	"fmt"

	"ecoverse_backend/internal/model"

	"github.com/google/uuid"
)

// Error categories. Every specific error below wraps exactly one of them.
var (
	ErrValidation   = errors.New("validation failed")
	ErrPrecondition = errors.New("precondition failed")
	ErrNotFound     = errors.New("not found")
)

var (
	ErrNegativePoints     = fmt.Errorf("%w: points must not be negative", ErrValidation)
	ErrPhotoRequired      = fmt.Errorf("%w: this task requires a photo", ErrValidation)
	ErrTaskInactive       = fmt.Errorf("%w: task is not active", ErrValidation)
	ErrQuizInactive       = fmt.Errorf("%w: quiz is not active", ErrValidation)
	ErrInvalidQuestionSet = fmt.Errorf("%w: invalid question set", ErrValidation)
	ErrInvalidQuiz        = fmt.Errorf("%w: invalid quiz", ErrValidation)
	ErrDuplicateLevel     = fmt.Errorf("%w: level number or threshold already exists", ErrValidation)
	ErrInvalidLevel       = fmt.Errorf("%w: invalid level definition", ErrValidation)
	ErrInvalidTask        = fmt.Errorf("%w: invalid task", ErrValidation)

	ErrSubmissionNotPending    = fmt.Errorf("%w: submission has already been reviewed", ErrPrecondition)
	ErrAttemptAlreadyCompleted = fmt.Errorf("%w: attempt has already been completed", ErrPrecondition)

	ErrQuizNotFound       = fmt.Errorf("%w: quiz not found", ErrNotFound)
	ErrTaskNotFound       = fmt.Errorf("%w: task not found", ErrNotFound)
	ErrSubmissionNotFound = fmt.Errorf("%w: submission not found", ErrNotFound)
	ErrAttemptNotFound    = fmt.Errorf("%w: attempt not found", ErrNotFound)
)

type Service struct {
	*ProgressService
	*QuizService
	*SubmissionService
}

func NewService(progressService *ProgressService, quizService *QuizService, submissionService *SubmissionService) *Service {
	return &Service{
		ProgressService:   progressService,
		QuizService:       quizService,
		SubmissionService: submissionService,
	}
}

// Notifier delivers events to users. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, event model.Event) error
}

type ProgressServiceI interface {
	GetProgress(ctx context.Context, userID int64) (*model.UserProgress, error)
	GetOverview(ctx context.Context, userID int64) (*model.ProgressOverview, error)
	AddPoints(ctx context.Context, userID int64, amount int) (*model.ProgressChange, error)
	GetLeaderboard(ctx context.Context) ([]*model.UserProgress, error)
	ListLevels(ctx context.Context) (model.LevelTable, error)
	CreateLevel(ctx context.Context, level *model.LevelDefinition) error
}

type ProgressRepository interface {
	GetOrCreateProgress(ctx context.Context, userID int64) (*model.UserProgress, error)
	AddPoints(ctx context.Context, userID int64, amount int) (*model.ProgressChange, error)
	GetTopProgress(ctx context.Context, limit int) ([]*model.UserProgress, error)
	ListLevels(ctx context.Context) (model.LevelTable, error)
	CreateLevel(ctx context.Context, level *model.LevelDefinition) error
}

type QuizServiceI interface {
	GetQuiz(ctx context.Context, quizID int64) (*model.Quiz, error)
	StartAttempt(ctx context.Context, userID, quizID int64) (*model.QuizAttempt, error)
	SubmitQuiz(ctx context.Context, userID, quizID int64, answers map[int64]int64, attemptID *uuid.UUID) (*model.QuizResult, error)
	GetLatestAttempt(ctx context.Context, userID, quizID int64) (*model.QuizAttempt, error)
	CreateQuiz(ctx context.Context, spec QuizSpec) (*model.Quiz, error)
	UpdateQuiz(ctx context.Context, quizID int64, spec QuizSpec) (*model.Quiz, error)
	ReplaceQuestions(ctx context.Context, quizID int64, questions []QuestionSpec) (*model.Quiz, error)
}

type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID int64) (*model.Quiz, error)
	CreateQuiz(ctx context.Context, quiz *model.Quiz) error
	UpdateQuiz(ctx context.Context, quiz *model.Quiz) error
	ReplaceQuestions(ctx context.Context, quizID int64, questions []model.Question) error
	StartQuizAttempt(ctx context.Context, attempt *model.QuizAttempt) error
	CompleteQuizAttempt(ctx context.Context, attempt *model.QuizAttempt) (*model.ProgressChange, error)
	RecordQuizAttempt(ctx context.Context, attempt *model.QuizAttempt) (*model.ProgressChange, error)
	GetLatestCompletedAttempt(ctx context.Context, userID, quizID int64) (*model.QuizAttempt, error)
}

type SubmissionServiceI interface {
	ListActiveTasks(ctx context.Context) ([]*model.Task, error)
	CreateTask(ctx context.Context, task *model.Task) error
	SubmitTask(ctx context.Context, userID int64, taskID uuid.UUID, photoRef, notes string) (*model.TaskSubmission, error)
	ListUserSubmissions(ctx context.Context, userID int64) ([]*model.TaskSubmission, error)
	ListSubmissions(ctx context.Context, status *model.SubmissionStatus) ([]*model.TaskSubmission, error)
	Approve(ctx context.Context, submissionID uuid.UUID, points *int, reviewerNotes string) (*model.Review, error)
	Reject(ctx context.Context, submissionID uuid.UUID, reviewerNotes string) (*model.TaskSubmission, error)
}

type SubmissionRepository interface {
	CreateTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, taskID uuid.UUID) (*model.Task, error)
	ListActiveTasks(ctx context.Context) ([]*model.Task, error)
	CreateSubmission(ctx context.Context, submission *model.TaskSubmission) error
	ListSubmissions(ctx context.Context, filter model.SubmissionFilter) ([]*model.TaskSubmission, error)
	ApproveSubmission(ctx context.Context, submissionID uuid.UUID, points *int, reviewerNotes string) (*model.Review, error)
	RejectSubmission(ctx context.Context, submissionID uuid.UUID, reviewerNotes string) (*model.TaskSubmission, error)
}
