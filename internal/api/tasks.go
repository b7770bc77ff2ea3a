package api

import (
	"net/http"

	"ecoverse_backend/internal/middleware"
	"ecoverse_backend/internal/service"
	"ecoverse_backend/pkg/auth"
	"ecoverse_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type taskRoutes struct {
	ss service.SubmissionServiceI
	a  *auth.TelegramAuth
}

func NewTaskRoutes(handler *gin.RouterGroup, ss service.SubmissionServiceI, a *auth.TelegramAuth, limiter *middleware.RateLimiter) {
	r := &taskRoutes{ss: ss, a: a}

	tasks := handler.Group("/tasks")
	tasks.Use(a.TelegramAuthMiddleware())
	{
		tasks.GET("/", r.ListTasks)
		tasks.POST("/:task_id/submissions", limiter.Middleware(), r.SubmitTask)
	}

	submissions := handler.Group("/submissions")
	submissions.Use(a.TelegramAuthMiddleware())
	{
		submissions.GET("/me", r.ListMySubmissions)
	}
}

type submitTaskRequest struct {
	PhotoRef string `json:"photo_ref"`
	Notes    string `json:"notes" binding:"max=2000"`
}

func (r *taskRoutes) ListTasks(c *gin.Context) {
	tasks, err := r.ss.ListActiveTasks(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list tasks")
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskResponse(t))
	}

	c.JSON(http.StatusOK, out)
}

func (r *taskRoutes) SubmitTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "task_id")
	if !ok {
		return
	}

	var req submitTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.ForUser(user.ID).Info("failed to bind task submission", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	submission, err := r.ss.SubmitTask(c.Request.Context(), user.ID, taskID, req.PhotoRef, req.Notes)
	if err != nil {
		writeError(c, err, "failed to submit task")
		return
	}

	c.JSON(http.StatusCreated, newSubmissionResponse(submission))
}

func (r *taskRoutes) ListMySubmissions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	submissions, err := r.ss.ListUserSubmissions(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err, "failed to list submissions")
		return
	}

	c.JSON(http.StatusOK, newSubmissionsResponse(submissions))
}
