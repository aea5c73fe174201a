package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kenshokan/dojang-api/internal/config"
	"github.com/kenshokan/dojang-api/internal/database"
	"github.com/kenshokan/dojang-api/internal/handler"
	"github.com/kenshokan/dojang-api/internal/middleware"
	"github.com/kenshokan/dojang-api/internal/models"
	"github.com/kenshokan/dojang-api/internal/repository"
	"github.com/kenshokan/dojang-api/internal/router"
	"github.com/kenshokan/dojang-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Exam{},
		&models.Question{},
		&models.AttemptSession{},
		&models.AttemptAnswer{},
		&models.PracticalEvaluation{},
		&models.FinalExamResult{},
		&models.Certificate{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	defer natsConn.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	examRepo := repository.NewExamRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	practicalRepo := repository.NewPracticalRepository(db)
	resultRepo := repository.NewResultRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	events := service.NewEventPublisher(redisClient, natsConn, cfg.EventChannelBase, logger)
	activityService := service.NewActivityService(activityRepo, logger)

	examService := service.NewExamService(examRepo, validate, logger)
	attemptService := service.NewAttemptService(attemptRepo, examRepo, validate, events, cfg.FocusLossLimit, logger)
	gradingService := service.NewGradingService(attemptRepo, events, validate, activityService, logger)
	practicalService := service.NewPracticalService(practicalRepo, attemptRepo, resultRepo, validate, activityService, logger)
	resultService := service.NewResultService(resultRepo, attemptRepo, practicalRepo, examRepo, events, activityService, redisClient, cfg.ResultCacheTTL, logger)
	certificateService := service.NewCertificateService(certificateRepo, resultRepo, examRepo, events, activityService, logger)
	progressService := service.NewProgressService(attemptRepo, resultRepo, redisClient, cfg.ProgressCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ExamHandler:        handler.NewExamHandler(examService, logger),
		AttemptHandler:     handler.NewAttemptHandler(attemptService, logger),
		GradingHandler:     handler.NewGradingHandler(gradingService, logger),
		PracticalHandler:   handler.NewPracticalHandler(practicalService, logger),
		ResultHandler:      handler.NewResultHandler(resultService, logger),
		CertificateHandler: handler.NewCertificateHandler(certificateService, logger),
		ProgressHandler:    handler.NewProgressHandler(progressService, logger),
		ActivityHandler:    handler.NewActivityHandler(activityService, logger),
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
