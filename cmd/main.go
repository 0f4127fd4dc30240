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

	"github.com/arenastack/tournament-registration/config"
	"github.com/arenastack/tournament-registration/db"
	"github.com/arenastack/tournament-registration/handlers"
	"github.com/arenastack/tournament-registration/realtime"
	"github.com/arenastack/tournament-registration/repositories"
	api "github.com/arenastack/tournament-registration/routes"
	"github.com/arenastack/tournament-registration/services"
	"github.com/arenastack/tournament-registration/storage"
	"github.com/arenastack/tournament-registration/utils"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

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
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if cfg.MigrateOnStart {
		migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
		if err := db.MigrateUp(migrateCtx, dbConn, cfg.MigrationsDir); err != nil {
			cancelMigrate()
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		cancelMigrate()
		logger.Info("migrations applied", slog.String("dir", cfg.MigrationsDir))
	}

	// Инициализация хранилища скриншотов оплаты (Cloudflare R2). Блок
	// опционален: без него маршрут загрузки отвечает 503.
	var proofStore storage.PaymentProofStore
	if cfg.ProofStoreConfigured() {
		proofStore, err = storage.NewR2ProofStore(storage.R2ProofStoreConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize payment proof store", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("payment proof store initialized")
	} else {
		logger.Info("payment proof store not configured, uploads disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Слушатель NOTIFY-канала реестра
	listenerCtx, cancelListener := context.WithCancel(context.Background())
	defer cancelListener()
	ledgerListener := realtime.NewLedgerListener(cfg.DatabaseURL, wsHub, logger)
	go func() {
		if err := ledgerListener.Run(listenerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("ledger listener stopped", slog.Any("error", err))
		}
	}()

	// Инициализация репозиториев
	txRunner := repositories.NewTxRunner(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	adminRepo := repositories.NewPostgresAdminRepository(dbConn)
	actionRepo := repositories.NewPostgresAdminActionRepository(dbConn)
	logger.Info("Repositories initialized")

	// Начальный администратор из окружения (идемпотентно).
	if cfg.BootstrapAdminEmail != "" && cfg.BootstrapAdminPassword != "" {
		hash, err := utils.HashPassword(cfg.BootstrapAdminPassword)
		if err != nil {
			logger.Error("failed to hash bootstrap admin password", slog.Any("error", err))
			os.Exit(1)
		}
		name := cfg.BootstrapAdminName
		if name == "" {
			name = cfg.BootstrapAdminEmail
		}
		bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 5*time.Second)
		if err := adminRepo.Upsert(bootstrapCtx, cfg.BootstrapAdminEmail, name, hash); err != nil {
			cancelBootstrap()
			logger.Error("failed to upsert bootstrap admin", slog.Any("error", err))
			os.Exit(1)
		}
		cancelBootstrap()
		logger.Info("bootstrap admin ensured", slog.String("email", cfg.BootstrapAdminEmail))
	}

	// Инициализация сервисов
	authService := services.NewAuthService(adminRepo)
	catalogService := services.NewCatalogService(tournamentRepo)
	availabilityService := services.NewAvailabilityService(tournamentRepo, registrationRepo)
	registrationService := services.NewRegistrationService(
		txRunner,
		tournamentRepo,
		registrationRepo,
		participantRepo,
		logger,
	)
	moderationService := services.NewModerationService(
		txRunner,
		registrationRepo,
		actionRepo,
		services.NewAdminAuthorizer(adminRepo),
		logger,
	)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	tournamentHandler := handlers.NewTournamentHandler(catalogService, availabilityService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	adminHandler := handlers.NewAdminHandler(moderationService, registrationService, availabilityService, catalogService)
	uploadHandler := handlers.NewUploadHandler(proofStore)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, catalogService, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authHandler,
		tournamentHandler,
		registrationHandler,
		adminHandler,
		uploadHandler,
		webSocketHandler,
		cfg.JWTSecretKey,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
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

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
