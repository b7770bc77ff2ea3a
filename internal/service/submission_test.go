package service

import (
	"context"
	"testing"
	"time"

	"ecoverse_backend/internal/model"
	"ecoverse_backend/internal/repository"
	"ecoverse_backend/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func plantTreeTask() *model.Task {
	return &model.Task{
		ID:            uuid.MustParse("6f1c2d9e-3b7a-4c1e-9a55-0d2f7c3b8e41"),
		Title:         "Plant a tree",
		EcoPoints:     150,
		RequiresPhoto: true,
		IsActive:      true,
	}
}

func TestSubmissionService_SubmitTask(t *testing.T) {
	task := plantTreeTask()

	tests := []struct {
		name          string
		photoRef      string
		mockSetup     func(repo *mocks.MockSubmissionRepository)
		expectedError error
	}{
		{
			name: "Task not found",
			mockSetup: func(repo *mocks.MockSubmissionRepository) {
				repo.On("GetTask", mock.Anything, task.ID).Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrTaskNotFound,
		},
		{
			name:     "Inactive task",
			photoRef: "photos/tree.jpg",
			mockSetup: func(repo *mocks.MockSubmissionRepository) {
				inactive := plantTreeTask()
				inactive.IsActive = false
				repo.On("GetTask", mock.Anything, task.ID).Return(inactive, nil)
			},
			expectedError: ErrTaskInactive,
		},
		{
			name:     "Missing photo",
			photoRef: "   ",
			mockSetup: func(repo *mocks.MockSubmissionRepository) {
				repo.On("GetTask", mock.Anything, task.ID).Return(plantTreeTask(), nil)
			},
			expectedError: ErrPhotoRequired,
		},
		{
			name:     "Pending submission created",
			photoRef: "photos/tree.jpg",
			mockSetup: func(repo *mocks.MockSubmissionRepository) {
				repo.On("GetTask", mock.Anything, task.ID).Return(plantTreeTask(), nil)
				repo.On("CreateSubmission", mock.Anything, mock.MatchedBy(func(s *model.TaskSubmission) bool {
					return s.UserID == 42 && s.TaskID == task.ID && s.PhotoRef == "photos/tree.jpg" && s.AwardedPoints == 0
				})).Run(func(args mock.Arguments) {
					s := args.Get(1).(*model.TaskSubmission)
					s.Status = model.SubmissionPending
					s.SubmittedAt = time.Now()
				}).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockSubmissionRepository{}
			tt.mockSetup(repo)

			service := NewSubmissionService(repo, nil)
			submission, err := service.SubmitTask(context.Background(), 42, task.ID, tt.photoRef, "planted near the school")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, submission)
				repo.AssertNotCalled(t, "CreateSubmission", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, model.SubmissionPending, submission.Status)
				assert.Equal(t, "Plant a tree", submission.TaskTitle)
				assert.Equal(t, 0, submission.AwardedPoints)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestSubmissionService_Approve(t *testing.T) {
	submissionID := uuid.New()
	negative := -5
	override := 20

	approved := func(points int) *model.Review {
		return &model.Review{
			Submission: &model.TaskSubmission{
				ID:            submissionID,
				UserID:        42,
				TaskTitle:     "Plant a tree",
				Status:        model.SubmissionApproved,
				AwardedPoints: points,
			},
			Progress: &model.ProgressChange{
				Amount:        points,
				PreviousLevel: &model.LevelDefinition{Number: 1, Name: "Seedling", RequiredPoints: 0},
				Progress: &model.UserProgress{
					UserID:       42,
					TotalPoints:  450 + points,
					CurrentLevel: &model.LevelDefinition{Number: 2, Name: "Sprout", RequiredPoints: 500},
				},
			},
		}
	}

	tests := []struct {
		name          string
		points        *int
		mockSetup     func(repo *mocks.MockSubmissionRepository, notifier *mocks.MockNotifier)
		expectedError error
		expectedTotal int
	}{
		{
			name:   "Negative override",
			points: &negative,
			mockSetup: func(repo *mocks.MockSubmissionRepository, notifier *mocks.MockNotifier) {
			},
			expectedError: ErrNegativePoints,
		},
		{
			name: "Default task points",
			mockSetup: func(repo *mocks.MockSubmissionRepository, notifier *mocks.MockNotifier) {
				repo.On("ApproveSubmission", mock.Anything, submissionID, (*int)(nil), "good job").
					Return(approved(150), nil)
				notifier.On("Notify", mock.Anything, mock.MatchedBy(func(e model.Event) bool {
					return e.Type == model.EventSubmissionApproved && e.Payload["awarded_points"] == 150
				})).Return(nil).Once()
				notifier.On("Notify", mock.Anything, mock.MatchedBy(func(e model.Event) bool {
					return e.Type == model.EventPointsAwarded
				})).Return(nil).Once()
				notifier.On("Notify", mock.Anything, mock.MatchedBy(func(e model.Event) bool {
					return e.Type == model.EventLevelUp && e.Payload["level_name"] == "Sprout"
				})).Return(nil).Once()
			},
			expectedTotal: 600,
		},
		{
			name:   "Override points",
			points: &override,
			mockSetup: func(repo *mocks.MockSubmissionRepository, notifier *mocks.MockNotifier) {
				repo.On("ApproveSubmission", mock.Anything, submissionID, &override, "good job").
					Return(approved(20), nil)
				notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
			},
			expectedTotal: 470,
		},
		{
			name: "Already reviewed",
			mockSetup: func(repo *mocks.MockSubmissionRepository, notifier *mocks.MockNotifier) {
				repo.On("ApproveSubmission", mock.Anything, submissionID, (*int)(nil), "good job").
					Return(nil, repository.ErrNotPending)
			},
			expectedError: ErrSubmissionNotPending,
		},
		{
			name: "Unknown submission",
			mockSetup: func(repo *mocks.MockSubmissionRepository, notifier *mocks.MockNotifier) {
				repo.On("ApproveSubmission", mock.Anything, submissionID, (*int)(nil), "good job").
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrSubmissionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockSubmissionRepository{}
			notifier := &mocks.MockNotifier{}
			tt.mockSetup(repo, notifier)

			service := NewSubmissionService(repo, notifier)
			review, err := service.Approve(context.Background(), submissionID, tt.points, " good job ")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, review)
				notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, model.SubmissionApproved, review.Submission.Status)
				assert.Equal(t, tt.expectedTotal, review.Progress.Progress.TotalPoints)
			}

			repo.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}

func TestSubmissionService_DoubleApprove(t *testing.T) {
	submissionID := uuid.New()
	repo := &mocks.MockSubmissionRepository{}
	repo.On("ApproveSubmission", mock.Anything, submissionID, (*int)(nil), "").
		Return(&model.Review{
			Submission: &model.TaskSubmission{ID: submissionID, UserID: 42, Status: model.SubmissionApproved, AwardedPoints: 150},
			Progress:   &model.ProgressChange{Amount: 150, Progress: &model.UserProgress{UserID: 42, TotalPoints: 150}},
		}, nil).Once()
	repo.On("ApproveSubmission", mock.Anything, submissionID, (*int)(nil), "").
		Return(nil, repository.ErrNotPending).Once()

	service := NewSubmissionService(repo, nil)

	_, err := service.Approve(context.Background(), submissionID, nil, "")
	require.NoError(t, err)

	_, err = service.Approve(context.Background(), submissionID, nil, "")
	assert.ErrorIs(t, err, ErrSubmissionNotPending)
	assert.ErrorIs(t, err, ErrPrecondition)
	repo.AssertNumberOfCalls(t, "ApproveSubmission", 2)
}

func TestSubmissionService_Reject(t *testing.T) {
	submissionID := uuid.New()

	t.Run("Pending submission", func(t *testing.T) {
		repo := &mocks.MockSubmissionRepository{}
		notifier := &mocks.MockNotifier{}
		repo.On("RejectSubmission", mock.Anything, submissionID, "photo is blurry").
			Return(&model.TaskSubmission{
				ID:            submissionID,
				UserID:        42,
				Status:        model.SubmissionRejected,
				ReviewerNotes: "photo is blurry",
			}, nil)
		notifier.On("Notify", mock.Anything, mock.MatchedBy(func(e model.Event) bool {
			return e.Type == model.EventSubmissionRejected && e.UserID == 42
		})).Return(nil).Once()

		service := NewSubmissionService(repo, notifier)
		submission, err := service.Reject(context.Background(), submissionID, "photo is blurry")
		require.NoError(t, err)
		assert.Equal(t, model.SubmissionRejected, submission.Status)
		assert.Equal(t, 0, submission.AwardedPoints)

		repo.AssertNotCalled(t, "ApproveSubmission", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("Already rejected", func(t *testing.T) {
		repo := &mocks.MockSubmissionRepository{}
		repo.On("RejectSubmission", mock.Anything, submissionID, "").Return(nil, repository.ErrNotPending)

		service := NewSubmissionService(repo, nil)
		_, err := service.Reject(context.Background(), submissionID, "")
		assert.ErrorIs(t, err, ErrSubmissionNotPending)
	})
}

func TestSubmissionService_ListSubmissions(t *testing.T) {
	repo := &mocks.MockSubmissionRepository{}
	pending := model.SubmissionPending
	repo.On("ListSubmissions", mock.Anything, model.SubmissionFilter{Status: &pending, Limit: reviewQueueSize}).
		Return([]*model.TaskSubmission{{ID: uuid.New(), Status: model.SubmissionPending}}, nil)

	service := NewSubmissionService(repo, nil)

	submissions, err := service.ListSubmissions(context.Background(), &pending)
	require.NoError(t, err)
	assert.Len(t, submissions, 1)

	unknown := model.SubmissionStatus("archived")
	_, err = service.ListSubmissions(context.Background(), &unknown)
	assert.ErrorIs(t, err, ErrValidation)
	repo.AssertNumberOfCalls(t, "ListSubmissions", 1)
}

func TestSubmissionService_CreateTask(t *testing.T) {
	repo := &mocks.MockSubmissionRepository{}
	repo.On("CreateTask", mock.Anything, mock.MatchedBy(func(task *model.Task) bool {
		return task.ID != uuid.Nil && task.Title == "Plant a tree"
	})).Return(nil)

	service := NewSubmissionService(repo, nil)

	err := service.CreateTask(context.Background(), &model.Task{Title: " Plant a tree ", EcoPoints: 150})
	require.NoError(t, err)

	err = service.CreateTask(context.Background(), &model.Task{Title: "Free points", EcoPoints: 0})
	assert.ErrorIs(t, err, ErrInvalidTask)
	repo.AssertNumberOfCalls(t, "CreateTask", 1)
}
