package mocks

import (
	"context"

	"ecoverse_backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) GetOrCreateProgress(ctx context.Context, userID int64) (*model.UserProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProgress), args.Error(1)
}

func (m *MockProgressRepository) AddPoints(ctx context.Context, userID int64, amount int) (*model.ProgressChange, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProgressChange), args.Error(1)
}

func (m *MockProgressRepository) GetTopProgress(ctx context.Context, limit int) ([]*model.UserProgress, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserProgress), args.Error(1)
}

func (m *MockProgressRepository) ListLevels(ctx context.Context) (model.LevelTable, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.LevelTable), args.Error(1)
}

func (m *MockProgressRepository) CreateLevel(ctx context.Context, level *model.LevelDefinition) error {
	args := m.Called(ctx, level)
	return args.Error(0)
}

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) GetQuiz(ctx context.Context, quizID int64) (*model.Quiz, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quiz), args.Error(1)
}

func (m *MockQuizRepository) CreateQuiz(ctx context.Context, quiz *model.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) UpdateQuiz(ctx context.Context, quiz *model.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) ReplaceQuestions(ctx context.Context, quizID int64, questions []model.Question) error {
	args := m.Called(ctx, quizID, questions)
	return args.Error(0)
}

func (m *MockQuizRepository) StartQuizAttempt(ctx context.Context, attempt *model.QuizAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockQuizRepository) CompleteQuizAttempt(ctx context.Context, attempt *model.QuizAttempt) (*model.ProgressChange, error) {
	args := m.Called(ctx, attempt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProgressChange), args.Error(1)
}

func (m *MockQuizRepository) RecordQuizAttempt(ctx context.Context, attempt *model.QuizAttempt) (*model.ProgressChange, error) {
	args := m.Called(ctx, attempt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProgressChange), args.Error(1)
}

func (m *MockQuizRepository) GetLatestCompletedAttempt(ctx context.Context, userID, quizID int64) (*model.QuizAttempt, error) {
	args := m.Called(ctx, userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuizAttempt), args.Error(1)
}

type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) CreateTask(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetTask(ctx context.Context, taskID uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockSubmissionRepository) ListActiveTasks(ctx context.Context) ([]*model.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Task), args.Error(1)
}

func (m *MockSubmissionRepository) CreateSubmission(ctx context.Context, submission *model.TaskSubmission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) ListSubmissions(ctx context.Context, filter model.SubmissionFilter) ([]*model.TaskSubmission, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TaskSubmission), args.Error(1)
}

func (m *MockSubmissionRepository) ApproveSubmission(ctx context.Context, submissionID uuid.UUID, points *int, reviewerNotes string) (*model.Review, error) {
	args := m.Called(ctx, submissionID, points, reviewerNotes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Review), args.Error(1)
}

func (m *MockSubmissionRepository) RejectSubmission(ctx context.Context, submissionID uuid.UUID, reviewerNotes string) (*model.TaskSubmission, error) {
	args := m.Called(ctx, submissionID, reviewerNotes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TaskSubmission), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, event model.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
