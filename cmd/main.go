package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gabrielssrs/Robotech-sub000/brackets"
	"github.com/Gabrielssrs/Robotech-sub000/config"
	"github.com/Gabrielssrs/Robotech-sub000/db"
	"github.com/Gabrielssrs/Robotech-sub000/handlers"
	"github.com/Gabrielssrs/Robotech-sub000/repositories"
	"github.com/Gabrielssrs/Robotech-sub000/routes"
	"github.com/Gabrielssrs/Robotech-sub000/services"
	"github.com/Gabrielssrs/Robotech-sub000/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const schedulerInterval = 30 * time.Second // How often the scheduler runs

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage not configured, robot photo uploads disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub()
	go wsHub.Run()

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	robotRepo := repositories.NewPostgresRobotRepository(dbConn)
	venueRepo := repositories.NewPostgresVenueRepository(dbConn)
	categoryRepo := repositories.NewPostgresCategoryRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	scoreRepo := repositories.NewPostgresScoreRepository(dbConn)
	txRunner := repositories.NewTxRunner(dbConn)
	logger.Info("repositories initialized")

	// Правила расписания настраиваются администратором через окружение.
	validator, err := services.NewScheduleValidator(services.ScheduleRules{
		WindowFrom:      cfg.StartWindowFrom,
		WindowTo:        cfg.StartWindowTo,
		DurationOptions: cfg.RegistrationOptions,
		MinLengthDays:   cfg.MinTournamentDays,
	})
	if err != nil {
		logger.Error("invalid schedule rules", slog.Any("error", err))
		os.Exit(1)
	}

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey)
	referenceService := services.NewReferenceService(venueRepo, categoryRepo)
	robotService := services.NewRobotService(robotRepo, categoryRepo, uploader, logger)
	bracketService := services.NewBracketService(
		tournamentRepo, participantRepo, matchRepo, venueRepo, txRunner, wsHub,
		time.Duration(cfg.MatchSlotMinutes)*time.Minute,
	)
	tournamentService := services.NewTournamentService(
		tournamentRepo, participantRepo, matchRepo, venueRepo, categoryRepo, userRepo,
		txRunner, validator, bracketService, wsHub, logger,
	)
	participantService := services.NewParticipantService(participantRepo, tournamentRepo, matchRepo, robotRepo)
	matchService := services.NewMatchService(matchRepo, wsHub, logger)
	scoringService := services.NewScoringService(
		matchRepo, scoreRepo, tournamentRepo, participantRepo,
		txRunner, wsHub, cfg.ScoreQuorum, logger,
	)
	logger.Info("services initialized")

	// Планировщик: запускает турниры и матчи, чьё время пришло.
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("scheduler started", slog.Duration("interval", schedulerInterval))

		runOnce := func() {
			ctx, cancel := context.WithTimeout(context.Background(), schedulerInterval)
			defer cancel()
			now := time.Now()
			if err := tournamentService.StartDueTournaments(ctx, now); err != nil {
				logger.Error("scheduler: tournament pass failed", slog.Any("error", err))
			}
			if err := matchService.StartDueMatches(ctx, now); err != nil {
				logger.Error("scheduler: match pass failed", slog.Any("error", err))
			}
		}

		runOnce()
		for range ticker.C {
			runOnce()
		}
	}()

	// Инициализация обработчиков HTTP
	handlerSet := routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Tournament:  handlers.NewTournamentHandler(tournamentService, bracketService),
		Match:       handlers.NewMatchHandler(matchService, scoringService),
		Participant: handlers.NewParticipantHandler(participantService),
		Robot:       handlers.NewRobotHandler(robotService),
		Reference:   handlers.NewReferenceHandler(referenceService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, tournamentService),
	}
	if cfg.EnableDebugEndpoints {
		handlerSet.Debug = handlers.NewDebugHandler(tournamentService, bracketService, matchService, scoringService)
		logger.Warn("debug endpoints enabled")
	}

	router := chi.NewRouter()
	routes.SetupRoutes(router, cfg.JWTSecretKey, handlerSet)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
