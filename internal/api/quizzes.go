package api

import (
	"net/http"

	"ecoverse_backend/internal/middleware"
	"ecoverse_backend/internal/service"
	"ecoverse_backend/pkg/auth"
	"ecoverse_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type quizRoutes struct {
	qs service.QuizServiceI
	a  *auth.TelegramAuth
}

func NewQuizRoutes(handler *gin.RouterGroup, qs service.QuizServiceI, a *auth.TelegramAuth, limiter *middleware.RateLimiter) {
	r := &quizRoutes{qs: qs, a: a}

	h := handler.Group("/quizzes")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("/:quiz_id", r.GetQuiz)
		h.GET("/:quiz_id/attempts/latest", r.GetLatestAttempt)

		writes := h.Group("/")
		writes.Use(limiter.Middleware())
		{
			writes.POST("/:quiz_id/attempts", r.StartAttempt)
			writes.POST("/:quiz_id/submit", r.SubmitQuiz)
		}
	}
}

type answerRequest struct {
	QuestionID int64 `json:"question_id" binding:"required"`
	ChoiceID   int64 `json:"choice_id" binding:"required"`
}

type submitQuizRequest struct {
	AttemptID *string         `json:"attempt_id"`
	Answers   []answerRequest `json:"answers" binding:"dive"`
}

type quizResultResponse struct {
	Attempt  attemptResponse         `json:"attempt"`
	Correct  int                     `json:"correct"`
	Total    int                     `json:"total"`
	Progress *progressChangeResponse `json:"progress"`
}

func (r *quizRoutes) GetQuiz(c *gin.Context) {
	quizID, ok := int64Param(c, "quiz_id")
	if !ok {
		return
	}

	quiz, err := r.qs.GetQuiz(c.Request.Context(), quizID)
	if err != nil {
		writeError(c, err, "failed to get quiz")
		return
	}
	if !quiz.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrQuizNotFound.Error()})
		return
	}

	c.JSON(http.StatusOK, newQuizResponse(quiz, false))
}

func (r *quizRoutes) StartAttempt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	quizID, ok := int64Param(c, "quiz_id")
	if !ok {
		return
	}

	attempt, err := r.qs.StartAttempt(c.Request.Context(), user.ID, quizID)
	if err != nil {
		writeError(c, err, "failed to start attempt")
		return
	}

	c.JSON(http.StatusCreated, newAttemptResponse(attempt))
}

func (r *quizRoutes) SubmitQuiz(c *gin.Context) {
	log := logger.Logger()

	user, ok := currentUser(c)
	if !ok {
		return
	}
	quizID, ok := int64Param(c, "quiz_id")
	if !ok {
		return
	}

	var req submitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Info("failed to bind quiz submission", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var attemptID *uuid.UUID
	if req.AttemptID != nil {
		id, err := uuid.Parse(*req.AttemptID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attempt_id"})
			return
		}
		attemptID = &id
	}

	answers := make(map[int64]int64, len(req.Answers))
	for _, a := range req.Answers {
		answers[a.QuestionID] = a.ChoiceID
	}

	result, err := r.qs.SubmitQuiz(c.Request.Context(), user.ID, quizID, answers, attemptID)
	if err != nil {
		writeError(c, err, "failed to submit quiz")
		return
	}

	c.JSON(http.StatusOK, quizResultResponse{
		Attempt:  newAttemptResponse(result.Attempt),
		Correct:  result.Correct,
		Total:    result.Total,
		Progress: newProgressChangeResponse(result.Progress),
	})
}

func (r *quizRoutes) GetLatestAttempt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	quizID, ok := int64Param(c, "quiz_id")
	if !ok {
		return
	}

	attempt, err := r.qs.GetLatestAttempt(c.Request.Context(), user.ID, quizID)
	if err != nil {
		writeError(c, err, "failed to get attempt")
		return
	}

	c.JSON(http.StatusOK, newAttemptResponse(attempt))
}
