package api

import (
	"net/http"

	"ecoverse_backend/pkg/auth"
	"ecoverse_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventStream is the websocket side of event delivery.
type EventStream interface {
	Serve(userID int64, conn *websocket.Conn)
}

type wsRoutes struct {
	hub EventStream
}

func NewWSRoutes(handler *gin.RouterGroup, hub EventStream, a *auth.TelegramAuth) {
	r := &wsRoutes{hub: hub}

	h := handler.Group("/ws")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("", r.Events)
	}
}

// Events upgrades the request and streams the caller's events until they disconnect.
func (r *wsRoutes) Events(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.ForUser(user.ID).Info("websocket upgrade failed", zap.Error(err))
		return
	}

	logger.ForUser(user.ID).Debug("event stream opened")
	r.hub.Serve(user.ID, conn)
	logger.ForUser(user.ID).Debug("event stream closed")
}
