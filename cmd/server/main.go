package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exproctor-backend/internal/config"
	"github.com/stemsi/exproctor-backend/internal/database"
	"github.com/stemsi/exproctor-backend/internal/handler"
	"github.com/stemsi/exproctor-backend/internal/logger"
	"github.com/stemsi/exproctor-backend/internal/middleware"
	"github.com/stemsi/exproctor-backend/internal/repository"
	"github.com/stemsi/exproctor-backend/internal/router"
	"github.com/stemsi/exproctor-backend/internal/service"
	"github.com/stemsi/exproctor-backend/internal/validator"
	"github.com/stemsi/exproctor-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ExProctor Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	cheatingLogRepo := repository.NewCheatingLogRepository(pool)
	codingRepo := repository.NewCodingSubmissionRepository(pool)
	sessionStore := repository.NewSessionStore(rdb)
	liveLogStore := repository.NewLiveLogStore(rdb, cfg.LiveLogTTL)
	cheatingLogQueue := repository.NewCheatingLogQueue(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo, sessionStore, log)
	examService := service.NewExamService(examRepo, questionRepo, log)
	questionService := service.NewQuestionService(questionRepo, examService, log)
	proctorService := service.NewProctorService(examService, examRepo, liveLogStore, cheatingLogQueue, cheatingLogRepo, log)
	submissionService := service.NewSubmissionService(examService, questionRepo, submissionRepo, proctorService, log)
	resultService := service.NewResultService(examService, examRepo, submissionRepo, cfg.StatsRecentLimit, log)
	codingService := service.NewCodingService(examService, codingRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Exam:        handler.NewExamHandler(examService),
		Question:    handler.NewQuestionHandler(questionService),
		Submission:  handler.NewSubmissionHandler(submissionService, resultService),
		CheatingLog: handler.NewCheatingLogHandler(proctorService),
		Coding:      handler.NewCodingHandler(codingService),
		WS:          handler.NewWSHandler(examService, proctorService, log, cfg.AllowedOrigins),
		System: handler.NewSystemHandler(map[string]handler.HealthCheck{
			"postgres": pool.Ping,
			"redis":    database.RedisPing(rdb),
		}, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	cheatingLogWorker := worker.NewCheatingLogWorker(cheatingLogQueue, cheatingLogRepo, log)
	reaper := worker.NewLiveLogReaper(proctorService, cfg.ReaperSchedule, cfg.ReaperGrace, log)
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)

	workers.Go(func() { cheatingLogWorker.Start(workerCtx) })
	workers.Go(func() {
		if err := reaper.Start(workerCtx); err != nil {
			log.Error().Err(err).Msg("Live log reaper disabled")
		}
	})
	workers.Go(func() { authLimiter.Run(workerCtx) })

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, authLimiter, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers; the cheating log worker flushes its buffer.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
