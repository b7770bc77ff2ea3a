package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"ecoverse_backend/internal/api/mocks"
	"ecoverse_backend/internal/middleware"
	"ecoverse_backend/internal/model"
	"ecoverse_backend/internal/service"
	"ecoverse_backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	playerID   int64 = 42
	reviewerID int64 = 7
)

type testServices struct {
	progress   *mocks.MockProgressService
	quizzes    *mocks.MockQuizService
	submission *mocks.MockSubmissionService
}

func newTestRouter() (*gin.Engine, *testServices) {
	gin.SetMode(gin.TestMode)

	svc := &testServices{
		progress:   &mocks.MockProgressService{},
		quizzes:    &mocks.MockQuizService{},
		submission: &mocks.MockSubmissionService{},
	}

	a := auth.NewTelegramAuth("", true)
	limiter := middleware.NewRateLimiter(1000, 1000)
	authz := middleware.NewAuthorization([]int64{reviewerID})

	router := gin.New()
	v1 := router.Group("/api/v1")
	NewProgressRoutes(v1, svc.progress, a)
	NewQuizRoutes(v1, svc.quizzes, a, limiter)
	NewTaskRoutes(v1, svc.submission, a, limiter)
	NewAdminRoutes(v1, svc.progress, svc.quizzes, svc.submission, a, authz)

	return router, svc
}

func initData(userID int64) string {
	values := url.Values{}
	values.Set("auth_date", "1700000000")
	values.Set("user", fmt.Sprintf(`{"id":%d,"username":"leaf"}`, userID))
	return values.Encode()
}

func doRequest(router *gin.Engine, method, path, body string, userID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("Authorization", "Telegram "+initData(userID))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestProgressRoutes_GetMyProgress(t *testing.T) {
	router, svc := newTestRouter()
	sprout := model.LevelDefinition{Number: 2, Name: "Sprout", RequiredPoints: 500, BadgeColor: "#2d6a4f"}
	svc.progress.On("GetOverview", mock.Anything, playerID).Return(&model.ProgressOverview{
		Progress:      &model.UserProgress{UserID: playerID, TotalPoints: 750, CurrentLevel: &sprout, UpdatedAt: time.Unix(1700000000, 0)},
		Levels:        model.LevelTable{sprout},
		NextLevel:     &model.LevelDefinition{Number: 3, Name: "Guardian", RequiredPoints: 1000},
		PercentToNext: 50,
		PointsToNext:  250,
	}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/progress/me", "", playerID)
	require.Equal(t, http.StatusOK, w.Code)

	var out overviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 750, out.Progress.TotalPoints)
	assert.Equal(t, "Sprout", out.Progress.CurrentLevel.Name)
	assert.Equal(t, "Guardian", out.NextLevel.Name)
	assert.Equal(t, 50, out.PercentToNext)
	svc.progress.AssertExpectations(t)
}

func TestProgressRoutes_RequiresTelegramAuth(t *testing.T) {
	router, svc := newTestRouter()

	w := doRequest(router, http.MethodGet, "/api/v1/progress/me", "", 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.progress.AssertNotCalled(t, "GetOverview", mock.Anything, mock.Anything)
}

func TestProgressRoutes_ListLevelsIsPublic(t *testing.T) {
	router, svc := newTestRouter()
	svc.progress.On("ListLevels", mock.Anything).Return(model.LevelTable{
		{Number: 1, Name: "Seedling", RequiredPoints: 0},
	}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/levels", "", 0)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Seedling"`)
}

func sampleQuiz() *model.Quiz {
	return &model.Quiz{
		ID:        3,
		Title:     "Recycling basics",
		EcoPoints: 40,
		IsActive:  true,
		Questions: []model.Question{
			{ID: 10, Text: "Glass is recyclable", Type: model.QuestionTrueFalse, Position: 1, Choices: []model.Choice{
				{ID: 100, Text: "True", IsCorrect: true},
				{ID: 101, Text: "False"},
			}},
		},
	}
}

func TestQuizRoutes_GetQuizHidesAnswers(t *testing.T) {
	router, svc := newTestRouter()
	svc.quizzes.On("GetQuiz", mock.Anything, int64(3)).Return(sampleQuiz(), nil)

	w := doRequest(router, http.MethodGet, "/api/v1/quizzes/3", "", playerID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "is_correct")

	w = doRequest(router, http.MethodGet, "/api/v1/admin/quizzes/3", "", reviewerID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_correct":true`)
}

func TestQuizRoutes_SubmitQuiz(t *testing.T) {
	attemptID := uuid.New()
	score := decimal.RequireFromString("100.00")
	completed := time.Unix(1700000100, 0)

	tests := []struct {
		name         string
		body         string
		mockSetup    func(qs *mocks.MockQuizService)
		expectedCode int
	}{
		{
			name: "Graded with attempt",
			body: fmt.Sprintf(`{"attempt_id":%q,"answers":[{"question_id":10,"choice_id":100}]}`, attemptID),
			mockSetup: func(qs *mocks.MockQuizService) {
				qs.On("SubmitQuiz", mock.Anything, playerID, int64(3), map[int64]int64{10: 100}, &attemptID).
					Return(&model.QuizResult{
						Attempt: &model.QuizAttempt{
							ID: attemptID, QuizID: 3, CompletedAt: &completed, ScorePercent: &score, EarnedPoints: 40,
						},
						Correct: 1,
						Total:   1,
						Progress: &model.ProgressChange{
							Amount:   40,
							Progress: &model.UserProgress{UserID: playerID, TotalPoints: 40},
						},
					}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Malformed attempt id",
			body:         `{"attempt_id":"nope","answers":[]}`,
			mockSetup:    func(qs *mocks.MockQuizService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Attempt already completed",
			body: fmt.Sprintf(`{"attempt_id":%q,"answers":[]}`, attemptID),
			mockSetup: func(qs *mocks.MockQuizService) {
				qs.On("SubmitQuiz", mock.Anything, playerID, int64(3), map[int64]int64{}, &attemptID).
					Return(nil, service.ErrAttemptAlreadyCompleted)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "Inactive quiz",
			body: `{"answers":[]}`,
			mockSetup: func(qs *mocks.MockQuizService) {
				qs.On("SubmitQuiz", mock.Anything, playerID, int64(3), map[int64]int64{}, (*uuid.UUID)(nil)).
					Return(nil, service.ErrQuizInactive)
			},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newTestRouter()
			tt.mockSetup(svc.quizzes)

			w := doRequest(router, http.MethodPost, "/api/v1/quizzes/3/submit", tt.body, playerID)
			assert.Equal(t, tt.expectedCode, w.Code)

			if tt.expectedCode == http.StatusOK {
				var out quizResultResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
				require.NotNil(t, out.Attempt.ScorePercent)
				assert.Equal(t, "100.00", *out.Attempt.ScorePercent)
				assert.Equal(t, 40, out.Progress.Amount)
			}
			svc.quizzes.AssertExpectations(t)
		})
	}
}

func TestTaskRoutes_SubmitTask(t *testing.T) {
	taskID := uuid.New()

	tests := []struct {
		name         string
		path         string
		err          error
		callsService bool
		expectedCode int
	}{
		{name: "Created", path: "/api/v1/tasks/" + taskID.String() + "/submissions", callsService: true, expectedCode: http.StatusCreated},
		{name: "Invalid task id", path: "/api/v1/tasks/abc/submissions", expectedCode: http.StatusBadRequest},
		{name: "Unknown task", path: "/api/v1/tasks/" + taskID.String() + "/submissions", err: service.ErrTaskNotFound, callsService: true, expectedCode: http.StatusNotFound},
		{name: "Missing photo", path: "/api/v1/tasks/" + taskID.String() + "/submissions", err: service.ErrPhotoRequired, callsService: true, expectedCode: http.StatusBadRequest},
		{name: "Storage failure", path: "/api/v1/tasks/" + taskID.String() + "/submissions", err: errors.New("connection reset"), callsService: true, expectedCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newTestRouter()
			if tt.callsService {
				call := svc.submission.On("SubmitTask", mock.Anything, playerID, taskID, "photos/tree.jpg", "")
				if tt.err != nil {
					call.Return(nil, tt.err)
				} else {
					call.Return(&model.TaskSubmission{ID: uuid.New(), TaskID: taskID, UserID: playerID, Status: model.SubmissionPending}, nil)
				}
			}

			w := doRequest(router, http.MethodPost, tt.path, `{"photo_ref":"photos/tree.jpg"}`, playerID)
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "connection reset")
			}
			svc.submission.AssertExpectations(t)
		})
	}
}

func TestAdminRoutes_ReviewerOnly(t *testing.T) {
	router, svc := newTestRouter()

	w := doRequest(router, http.MethodGet, "/api/v1/admin/submissions", "", playerID)
	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.submission.AssertNotCalled(t, "ListSubmissions", mock.Anything, mock.Anything)
}

func TestAdminRoutes_ApproveSubmission(t *testing.T) {
	submissionID := uuid.New()
	override := 20

	review := &model.Review{
		Submission: &model.TaskSubmission{ID: submissionID, UserID: playerID, Status: model.SubmissionApproved, AwardedPoints: 150},
		Progress: &model.ProgressChange{
			Amount:   150,
			Progress: &model.UserProgress{UserID: playerID, TotalPoints: 600, CurrentLevel: &model.LevelDefinition{Number: 2, Name: "Sprout"}},
		},
	}

	tests := []struct {
		name         string
		body         string
		mockSetup    func(ss *mocks.MockSubmissionService)
		expectedCode int
	}{
		{
			name: "Empty body awards task points",
			mockSetup: func(ss *mocks.MockSubmissionService) {
				ss.On("Approve", mock.Anything, submissionID, (*int)(nil), "").Return(review, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Override with notes",
			body: `{"points":20,"reviewer_notes":"partial"}`,
			mockSetup: func(ss *mocks.MockSubmissionService) {
				ss.On("Approve", mock.Anything, submissionID, &override, "partial").Return(review, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Already reviewed",
			mockSetup: func(ss *mocks.MockSubmissionService) {
				ss.On("Approve", mock.Anything, submissionID, (*int)(nil), "").Return(nil, service.ErrSubmissionNotPending)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Malformed body",
			body:         `{"points":"many"}`,
			mockSetup:    func(ss *mocks.MockSubmissionService) {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newTestRouter()
			tt.mockSetup(svc.submission)

			path := "/api/v1/admin/submissions/" + submissionID.String() + "/approve"
			w := doRequest(router, http.MethodPost, path, tt.body, reviewerID)
			assert.Equal(t, tt.expectedCode, w.Code)

			if tt.expectedCode == http.StatusOK {
				var out reviewResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
				assert.Equal(t, "approved", out.Submission.Status)
				assert.True(t, out.Progress.LeveledUp)
			}
			svc.submission.AssertExpectations(t)
		})
	}
}

func TestAdminRoutes_RejectSubmission(t *testing.T) {
	router, svc := newTestRouter()
	submissionID := uuid.New()
	svc.submission.On("Reject", mock.Anything, submissionID, "photo is blurry").Return(&model.TaskSubmission{
		ID:            submissionID,
		UserID:        playerID,
		Status:        model.SubmissionRejected,
		ReviewerNotes: "photo is blurry",
	}, nil)

	path := "/api/v1/admin/submissions/" + submissionID.String() + "/reject"
	w := doRequest(router, http.MethodPost, path, `{"reviewer_notes":"photo is blurry"}`, reviewerID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"rejected"`)
	assert.Contains(t, w.Body.String(), `"progress":null`)
}

func TestAdminRoutes_ListSubmissions(t *testing.T) {
	router, svc := newTestRouter()
	pending := model.SubmissionPending
	svc.submission.On("ListSubmissions", mock.Anything, &pending).Return([]*model.TaskSubmission{
		{ID: uuid.New(), Status: model.SubmissionPending},
	}, nil)
	svc.submission.On("ListSubmissions", mock.Anything, (*model.SubmissionStatus)(nil)).Return([]*model.TaskSubmission{}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/admin/submissions?status=pending", "", reviewerID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)

	w = doRequest(router, http.MethodGet, "/api/v1/admin/submissions", "", reviewerID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestAdminRoutes_AddPoints(t *testing.T) {
	router, svc := newTestRouter()
	svc.progress.On("AddPoints", mock.Anything, playerID, -5).Return(nil, service.ErrNegativePoints)

	w := doRequest(router, http.MethodPost, "/api/v1/admin/progress/42/points", `{"amount":-5}`, reviewerID)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/admin/progress/42/points", `{}`, reviewerID)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.progress.AssertNumberOfCalls(t, "AddPoints", 1)
}

func TestAdminRoutes_CreateTaskDefaults(t *testing.T) {
	router, svc := newTestRouter()
	svc.submission.On("CreateTask", mock.Anything, mock.MatchedBy(func(task *model.Task) bool {
		return task.Title == "Plant a tree" && task.RequiresPhoto && task.IsActive
	})).Return(nil)

	w := doRequest(router, http.MethodPost, "/api/v1/admin/tasks", `{"title":"Plant a tree","eco_points":150}`, reviewerID)
	assert.Equal(t, http.StatusCreated, w.Code)
	svc.submission.AssertExpectations(t)
}
