package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/CuraLab-Diagnostics/service-booking/internal/application"
	"github.com/CuraLab-Diagnostics/service-booking/internal/config"
	"github.com/CuraLab-Diagnostics/service-booking/internal/consumer"
	"github.com/CuraLab-Diagnostics/service-booking/internal/handler"
	"github.com/CuraLab-Diagnostics/service-booking/internal/repository"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/auth"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/database"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/health"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/kafka"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/logger"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.NotificationModel{},
			&repository.TestPackageModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		dbURL := dbConfig.DatabaseURL()
		if err := database.RunMigrations(dbURL, "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)
	packageRepo := repository.NewGormPackageRepository(db)

	// Booking and notification writes belonging to one transition share a
	// transaction through this function.
	transact := func(ctx context.Context, fn func(txCtx context.Context) error) error {
		return database.Transaction(ctx, db, fn)
	}

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		notificationRepo,
		packageRepo,
		transact,
		kafkaProducer,
		log,
	)
	lifecycleService := application.NewLifecycleService(
		bookingRepo,
		notificationRepo,
		transact,
		kafkaProducer,
		log,
	)
	notificationService := application.NewNotificationService(notificationRepo, log)
	packageService := application.NewPackageService(packageRepo, log)

	// Initialize and start the lab event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	labConsumer := consumer.NewLabEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		lifecycleService,
		log,
	)
	defer func() { _ = labConsumer.Close() }()

	go func() {
		log.Info("starting lab event consumer")
		if err := labConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("lab event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	adminHandler := handler.NewAdminBookingHandler(bookingService, lifecycleService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	packageHandler := handler.NewPackageHandler(packageService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	notificationHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	packageHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	closeDB(db, log)
	log.Info("service-booking stopped")
}

func closeDB(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("failed to close database", zap.Error(err))
	}
}
