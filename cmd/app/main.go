package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ecoverse_backend/internal/api"
	"ecoverse_backend/internal/metrics"
	"ecoverse_backend/internal/middleware"
	"ecoverse_backend/internal/repository"
	"ecoverse_backend/internal/service"
	"ecoverse_backend/pkg/auth"
	"ecoverse_backend/pkg/logger"
	"ecoverse_backend/pkg/notify"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	hub := notify.NewHub()
	defer hub.Close()

	notifier := notify.NewMulti().Add("websocket", hub)
	if cfg.Notify.Telegram {
		telegramNotifier, err := notify.NewTelegramNotifier(cfg.TelegramAuth.TelegramBotToken, cfg.TelegramAuth.DebugMode)
		if err != nil {
			zapLogger.Fatal("Failed to initialize telegram notifier", zap.Error(err))
		}
		notifier.Add("telegram", telegramNotifier)
	}

	services := service.NewService(
		service.NewProgressService(repo, notifier),
		service.NewQuizService(repo, notifier),
		service.NewSubmissionService(repo, notifier),
	)

	telegramAuth := auth.NewTelegramAuth(cfg.TelegramAuth.TelegramBotToken, cfg.TelegramAuth.DebugMode)
	authz := middleware.NewAuthorization(cfg.Reviewers)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go limiter.Cleanup(ctx)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	a := router.Group("/api/v1")
	api.NewProgressRoutes(a, services.ProgressService, telegramAuth)
	api.NewQuizRoutes(a, services.QuizService, telegramAuth, limiter)
	api.NewTaskRoutes(a, services.SubmissionService, telegramAuth, limiter)
	api.NewAdminRoutes(a, services.ProgressService, services.QuizService, services.SubmissionService, telegramAuth, authz)
	api.NewWSRoutes(a, hub, telegramAuth)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		zapLogger.Info("Starting server", zap.String("addr", addr), zap.Int("reviewers", len(cfg.Reviewers)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server shutdown failed", zap.Error(err))
	}
}
