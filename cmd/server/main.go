package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hotelstay/service-booking/internal/application"
	"github.com/hotelstay/service-booking/internal/cache"
	"github.com/hotelstay/service-booking/internal/common/auth"
	"github.com/hotelstay/service-booking/internal/common/database"
	"github.com/hotelstay/service-booking/internal/common/health"
	"github.com/hotelstay/service-booking/internal/common/kafka"
	"github.com/hotelstay/service-booking/internal/common/logger"
	"github.com/hotelstay/service-booking/internal/common/middleware"
	"github.com/hotelstay/service-booking/internal/config"
	bookingDomain "github.com/hotelstay/service-booking/internal/domain/booking"
	bookingEvents "github.com/hotelstay/service-booking/internal/events"
	"github.com/hotelstay/service-booking/internal/handler"
	"github.com/hotelstay/service-booking/internal/repository"
	"github.com/hotelstay/service-booking/internal/scheduler"
)

const serviceName = "service-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:         cfg.DBConfig.Host,
		Port:         cfg.DBConfig.Port,
		User:         cfg.DBConfig.User,
		Password:     cfg.DBConfig.Password,
		DBName:       cfg.DBConfig.DBName,
		SSLMode:      cfg.DBConfig.SSLMode,
		MaxOpenConns: cfg.DBConfig.MaxOpenConns,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.IsDevelopment() {
		if err := db.AutoMigrate(
			&repository.HotelModel{},
			&repository.AmenityModel{},
			&repository.RoomModel{},
			&repository.BookingModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize availability cache
	cacheConfig := cache.DefaultConfig()
	cacheConfig.Addr = cfg.RedisConfig.Addr
	cacheConfig.Password = cfg.RedisConfig.Password
	cacheConfig.DB = cfg.RedisConfig.DB
	cacheConfig.TTL = cfg.RedisConfig.CacheTTL
	cacheClient := cache.NewClient(cacheConfig, log)
	defer func() { _ = cacheClient.Close() }()

	// Initialize repositories
	timeout := cfg.StorageConfig.Timeout
	bookingRepo := repository.NewGormBookingRepository(db, timeout)
	roomRepo := repository.NewGormRoomRepository(db, timeout)
	hotelRepo := repository.NewGormHotelRepository(db, timeout)

	// Initialize pricing strategy
	pricingStrategy := bookingDomain.NewStandardPricingStrategy()

	// Initialize application services
	availabilityService := application.NewAvailabilityService(
		roomRepo,
		hotelRepo,
		bookingRepo,
		pricingStrategy,
		cacheClient,
		cfg.StorageConfig.ReadRetries,
		log,
	)
	bookingService := application.NewBookingService(
		bookingRepo,
		roomRepo,
		hotelRepo,
		pricingStrategy,
		cacheClient,
		kafkaProducer,
		log,
	)
	reconcileService := application.NewReconcileService(
		roomRepo,
		cacheClient,
		kafkaProducer,
		log,
	)

	// Initialize and start property event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	propertyConsumer := bookingEvents.NewPropertyEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		cacheClient,
		log,
	)
	defer func() { _ = propertyConsumer.Close() }()

	go func() {
		log.Info("starting property event consumer")
		if err := propertyConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("property event consumer error", zap.Error(err))
		}
	}()

	// Schedule the nightly availability sweep
	sweeper, err := scheduler.New(cfg.ReconcileConfig.Cron, reconcileService.Run, 10*time.Minute, log.Named("reconciler"))
	if err != nil {
		log.Fatal("failed to create reconciler schedule", zap.Error(err))
	}
	if err := sweeper.Start(); err != nil {
		log.Fatal("failed to start reconciler schedule", zap.Error(err))
	}
	if cfg.ReconcileConfig.RunOnStart {
		go func() { _ = sweeper.RunNow(ctx) }()
	}

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	hotelHandler := handler.NewHotelHandler(availabilityService)
	adminBookingHandler := handler.NewAdminBookingHandler(bookingService, reconcileService, sweeper)

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
	healthHandler := health.NewHandler(db, serviceName).
		WithChecker("redis", health.CheckerFunc(cacheClient.Ping))
	healthHandler.RegisterRoutes(router)

	// Register routes
	hotelHandler.RegisterRoutes(&router.RouterGroup)
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminBookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Stop the consumer and the sweep schedule
	cancel()
	sweeper.Stop()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
