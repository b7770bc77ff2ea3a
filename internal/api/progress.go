package api

import (
	"net/http"

	"ecoverse_backend/internal/service"
	"ecoverse_backend/pkg/auth"

	"github.com/gin-gonic/gin"
)

type progressRoutes struct {
	ps service.ProgressServiceI
	a  *auth.TelegramAuth
}

func NewProgressRoutes(handler *gin.RouterGroup, ps service.ProgressServiceI, a *auth.TelegramAuth) {
	r := &progressRoutes{ps: ps, a: a}

	handler.GET("/levels", r.ListLevels)

	h := handler.Group("/progress")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("/me", r.GetMyProgress)
		h.GET("/leaderboard", r.GetLeaderboard)
	}
}

type overviewResponse struct {
	Progress      *progressResponse `json:"progress"`
	Levels        []levelResponse   `json:"levels"`
	NextLevel     *levelResponse    `json:"next_level"`
	PercentToNext int               `json:"percent_to_next"`
	PointsToNext  int               `json:"points_to_next"`
}

func (r *progressRoutes) ListLevels(c *gin.Context) {
	levels, err := r.ps.ListLevels(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list levels")
		return
	}

	c.JSON(http.StatusOK, newLevelsResponse(levels))
}

func (r *progressRoutes) GetMyProgress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	overview, err := r.ps.GetOverview(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err, "failed to get progress")
		return
	}

	c.JSON(http.StatusOK, overviewResponse{
		Progress:      newProgressResponse(overview.Progress),
		Levels:        newLevelsResponse(overview.Levels),
		NextLevel:     newLevelResponse(overview.NextLevel),
		PercentToNext: overview.PercentToNext,
		PointsToNext:  overview.PointsToNext,
	})
}

func (r *progressRoutes) GetLeaderboard(c *gin.Context) {
	top, err := r.ps.GetLeaderboard(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to get leaderboard")
		return
	}

	out := make([]*progressResponse, 0, len(top))
	for _, p := range top {
		out = append(out, newProgressResponse(p))
	}

	c.JSON(http.StatusOK, out)
}
