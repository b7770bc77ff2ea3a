package api

import (
	"errors"
	"io"
	"net/http"

	"ecoverse_backend/internal/middleware"
	"ecoverse_backend/internal/model"
	"ecoverse_backend/internal/service"
	"ecoverse_backend/pkg/auth"
	"ecoverse_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type adminRoutes struct {
	ps service.ProgressServiceI
	qs service.QuizServiceI
	ss service.SubmissionServiceI
}

// NewAdminRoutes mounts the reviewer surface. Every route requires a valid Telegram
// identity that appears in the reviewer allowlist.
func NewAdminRoutes(handler *gin.RouterGroup, ps service.ProgressServiceI, qs service.QuizServiceI, ss service.SubmissionServiceI, a *auth.TelegramAuth, authz *middleware.Authorization) {
	r := &adminRoutes{ps: ps, qs: qs, ss: ss}

	h := handler.Group("/admin")
	h.Use(a.TelegramAuthMiddleware(), authz.ReviewerOnly())
	{
		h.POST("/levels", r.CreateLevel)
		h.POST("/progress/:user_id/points", r.AddPoints)

		h.POST("/quizzes", r.CreateQuiz)
		h.GET("/quizzes/:quiz_id", r.GetQuiz)
		h.PUT("/quizzes/:quiz_id", r.UpdateQuiz)
		h.PUT("/quizzes/:quiz_id/questions", r.ReplaceQuestions)

		h.POST("/tasks", r.CreateTask)

		h.GET("/submissions", r.ListSubmissions)
		h.POST("/submissions/:submission_id/approve", r.ApproveSubmission)
		h.POST("/submissions/:submission_id/reject", r.RejectSubmission)
	}
}

type createLevelRequest struct {
	Number         int    `json:"number" binding:"required"`
	Name           string `json:"name" binding:"required"`
	RequiredPoints int    `json:"required_points"`
	BadgeColor     string `json:"badge_color"`
}

type addPointsRequest struct {
	Amount *int `json:"amount" binding:"required"`
}

type createTaskRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	EcoPoints     int    `json:"eco_points"`
	RequiresPhoto *bool  `json:"requires_photo"`
	IsActive      *bool  `json:"is_active"`
}

type approveRequest struct {
	Points        *int   `json:"points"`
	ReviewerNotes string `json:"reviewer_notes"`
}

type rejectRequest struct {
	ReviewerNotes string `json:"reviewer_notes"`
}

type reviewResponse struct {
	Submission submissionResponse      `json:"submission"`
	Progress   *progressChangeResponse `json:"progress"`
}

// bindOptionalJSON accepts an empty body as the zero value.
func bindOptionalJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		logger.Logger().Info("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return false
	}
	return true
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		logger.Logger().Info("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return false
	}
	return true
}

func (r *adminRoutes) CreateLevel(c *gin.Context) {
	var req createLevelRequest
	if !bindJSON(c, &req) {
		return
	}

	level := &model.LevelDefinition{
		Number:         req.Number,
		Name:           req.Name,
		RequiredPoints: req.RequiredPoints,
		BadgeColor:     req.BadgeColor,
	}
	if err := r.ps.CreateLevel(c.Request.Context(), level); err != nil {
		writeError(c, err, "failed to create level")
		return
	}

	c.JSON(http.StatusCreated, newLevelResponse(level))
}

func (r *adminRoutes) AddPoints(c *gin.Context) {
	userID, ok := int64Param(c, "user_id")
	if !ok {
		return
	}

	var req addPointsRequest
	if !bindJSON(c, &req) {
		return
	}

	change, err := r.ps.AddPoints(c.Request.Context(), userID, *req.Amount)
	if err != nil {
		writeError(c, err, "failed to add points")
		return
	}

	c.JSON(http.StatusOK, newProgressChangeResponse(change))
}

func (r *adminRoutes) CreateQuiz(c *gin.Context) {
	var req service.QuizSpec
	if !bindJSON(c, &req) {
		return
	}

	quiz, err := r.qs.CreateQuiz(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "failed to create quiz")
		return
	}

	c.JSON(http.StatusCreated, newQuizResponse(quiz, true))
}

func (r *adminRoutes) GetQuiz(c *gin.Context) {
	quizID, ok := int64Param(c, "quiz_id")
	if !ok {
		return
	}

	quiz, err := r.qs.GetQuiz(c.Request.Context(), quizID)
	if err != nil {
		writeError(c, err, "failed to get quiz")
		return
	}

	c.JSON(http.StatusOK, newQuizResponse(quiz, true))
}

func (r *adminRoutes) UpdateQuiz(c *gin.Context) {
	quizID, ok := int64Param(c, "quiz_id")
	if !ok {
		return
	}

	var req service.QuizSpec
	if !bindJSON(c, &req) {
		return
	}

	quiz, err := r.qs.UpdateQuiz(c.Request.Context(), quizID, req)
	if err != nil {
		writeError(c, err, "failed to update quiz")
		return
	}

	c.JSON(http.StatusOK, newQuizResponse(quiz, true))
}

func (r *adminRoutes) ReplaceQuestions(c *gin.Context) {
	quizID, ok := int64Param(c, "quiz_id")
	if !ok {
		return
	}

	var req []service.QuestionSpec
	if !bindJSON(c, &req) {
		return
	}

	quiz, err := r.qs.ReplaceQuestions(c.Request.Context(), quizID, req)
	if err != nil {
		writeError(c, err, "failed to replace questions")
		return
	}

	c.JSON(http.StatusOK, newQuizResponse(quiz, true))
}

func (r *adminRoutes) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task := &model.Task{
		Title:         req.Title,
		Description:   req.Description,
		EcoPoints:     req.EcoPoints,
		RequiresPhoto: req.RequiresPhoto == nil || *req.RequiresPhoto,
		IsActive:      req.IsActive == nil || *req.IsActive,
	}
	if err := r.ss.CreateTask(c.Request.Context(), task); err != nil {
		writeError(c, err, "failed to create task")
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (r *adminRoutes) ListSubmissions(c *gin.Context) {
	var status *model.SubmissionStatus
	if raw, ok := c.GetQuery("status"); ok {
		s := model.SubmissionStatus(raw)
		status = &s
	}

	submissions, err := r.ss.ListSubmissions(c.Request.Context(), status)
	if err != nil {
		writeError(c, err, "failed to list submissions")
		return
	}

	c.JSON(http.StatusOK, newSubmissionsResponse(submissions))
}

func (r *adminRoutes) ApproveSubmission(c *gin.Context) {
	submissionID, ok := uuidParam(c, "submission_id")
	if !ok {
		return
	}

	var req approveRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	review, err := r.ss.Approve(c.Request.Context(), submissionID, req.Points, req.ReviewerNotes)
	if err != nil {
		writeError(c, err, "failed to approve submission")
		return
	}

	c.JSON(http.StatusOK, reviewResponse{
		Submission: newSubmissionResponse(review.Submission),
		Progress:   newProgressChangeResponse(review.Progress),
	})
}

func (r *adminRoutes) RejectSubmission(c *gin.Context) {
	submissionID, ok := uuidParam(c, "submission_id")
	if !ok {
		return
	}

	var req rejectRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	submission, err := r.ss.Reject(c.Request.Context(), submissionID, req.ReviewerNotes)
	if err != nil {
		writeError(c, err, "failed to reject submission")
		return
	}

	c.JSON(http.StatusOK, reviewResponse{
		Submission: newSubmissionResponse(submission),
	})
}
