package middleware

import (
	"net/http"

	"ecoverse_backend/pkg/auth"
	"ecoverse_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Authorization struct {
	reviewers map[int64]struct{}
}

func NewAuthorization(reviewerIDs []int64) *Authorization {
	reviewers := make(map[int64]struct{}, len(reviewerIDs))
	for _, id := range reviewerIDs {
		reviewers[id] = struct{}{}
	}

	return &Authorization{
		reviewers: reviewers,
	}
}

func (a *Authorization) IsReviewer(userID int64) bool {
	_, ok := a.reviewers[userID]
	return ok
}

// ReviewerOnly admits users listed as reviewers in the configuration.
func (a *Authorization) ReviewerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		telegramUser, ok := auth.UserFromContext(c)
		if !ok {
			log.Error("telegram user data not found in context")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if !a.IsReviewer(telegramUser.ID) {
			log.Info("unauthorized access attempt to reviewer endpoint",
				zap.Int64("telegram_id", telegramUser.ID))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "reviewer access required"})
			return
		}

		c.Set("is_reviewer", true)
		c.Next()
	}
}
