package mocks

import (
	"context"

	"ecoverse_backend/internal/model"
	"ecoverse_backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) GetProgress(ctx context.Context, userID int64) (*model.UserProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProgress), args.Error(1)
}

func (m *MockProgressService) GetOverview(ctx context.Context, userID int64) (*model.ProgressOverview, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProgressOverview), args.Error(1)
}

func (m *MockProgressService) AddPoints(ctx context.Context, userID int64, amount int) (*model.ProgressChange, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProgressChange), args.Error(1)
}

func (m *MockProgressService) GetLeaderboard(ctx context.Context) ([]*model.UserProgress, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserProgress), args.Error(1)
}

func (m *MockProgressService) ListLevels(ctx context.Context) (model.LevelTable, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.LevelTable), args.Error(1)
}

func (m *MockProgressService) CreateLevel(ctx context.Context, level *model.LevelDefinition) error {
	args := m.Called(ctx, level)
	return args.Error(0)
}

type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) GetQuiz(ctx context.Context, quizID int64) (*model.Quiz, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quiz), args.Error(1)
}

func (m *MockQuizService) StartAttempt(ctx context.Context, userID, quizID int64) (*model.QuizAttempt, error) {
	args := m.Called(ctx, userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuizAttempt), args.Error(1)
}

func (m *MockQuizService) SubmitQuiz(ctx context.Context, userID, quizID int64, answers map[int64]int64, attemptID *uuid.UUID) (*model.QuizResult, error) {
	args := m.Called(ctx, userID, quizID, answers, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuizResult), args.Error(1)
}

func (m *MockQuizService) GetLatestAttempt(ctx context.Context, userID, quizID int64) (*model.QuizAttempt, error) {
	args := m.Called(ctx, userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuizAttempt), args.Error(1)
}

func (m *MockQuizService) CreateQuiz(ctx context.Context, spec service.QuizSpec) (*model.Quiz, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quiz), args.Error(1)
}

func (m *MockQuizService) UpdateQuiz(ctx context.Context, quizID int64, spec service.QuizSpec) (*model.Quiz, error) {
	args := m.Called(ctx, quizID, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quiz), args.Error(1)
}

func (m *MockQuizService) ReplaceQuestions(ctx context.Context, quizID int64, questions []service.QuestionSpec) (*model.Quiz, error) {
	args := m.Called(ctx, quizID, questions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quiz), args.Error(1)
}

type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) ListActiveTasks(ctx context.Context) ([]*model.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Task), args.Error(1)
}

func (m *MockSubmissionService) CreateTask(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockSubmissionService) SubmitTask(ctx context.Context, userID int64, taskID uuid.UUID, photoRef, notes string) (*model.TaskSubmission, error) {
	args := m.Called(ctx, userID, taskID, photoRef, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TaskSubmission), args.Error(1)
}

func (m *MockSubmissionService) ListUserSubmissions(ctx context.Context, userID int64) ([]*model.TaskSubmission, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TaskSubmission), args.Error(1)
}

func (m *MockSubmissionService) ListSubmissions(ctx context.Context, status *model.SubmissionStatus) ([]*model.TaskSubmission, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TaskSubmission), args.Error(1)
}

func (m *MockSubmissionService) Approve(ctx context.Context, submissionID uuid.UUID, points *int, reviewerNotes string) (*model.Review, error) {
	args := m.Called(ctx, submissionID, points, reviewerNotes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Review), args.Error(1)
}

func (m *MockSubmissionService) Reject(ctx context.Context, submissionID uuid.UUID, reviewerNotes string) (*model.TaskSubmission, error) {
	args := m.Called(ctx, submissionID, reviewerNotes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TaskSubmission), args.Error(1)
}
