package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hotel-booking/availability"
	"hotel-booking/config"
	"hotel-booking/controllers"
	"hotel-booking/middleware"
	"hotel-booking/repository"
	"hotel-booking/routes"
	"hotel-booking/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found or couldn't load it; continuing with environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("invalid timezone", zap.Error(err))
	}

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	if cfg.Database.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := config.SeedDatabase(ctx, store, cfg.Database.SeedPassword, logger)
		cancel()
		if err != nil {
			logger.Fatal("failed to seed database", zap.Error(err))
		}
	}

	svcCfg := &services.Config{
		Calendar:     availability.NewCalendar(loc),
		QueryTimeout: cfg.Database.QueryTimeout,
		SessionTTL:   cfg.Session.TTL,
	}

	// Initialize services
	userService := services.NewUserService(store, svcCfg, logger.Named("users"))
	roomService := services.NewRoomService(store, svcCfg, logger.Named("rooms"))
	bookingService := services.NewBookingService(store, svcCfg, logger.Named("bookings"))
	hotelService := services.NewHotelService(store, svcCfg)

	// Initialize controllers
	ctrls := routes.Controllers{
		Auth: controllers.NewAuthController(userService, controllers.CookieConfig{
			Name:   cfg.Session.CookieName,
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.Secure,
		}, logger),
		Rooms:    controllers.NewRoomController(roomService, logger),
		Hotels:   controllers.NewHotelController(hotelService, logger),
		Bookings: controllers.NewBookingController(bookingService, roomService, logger),
	}

	opts := routes.Options{
		Logger:        logger,
		CORSOrigins:   cfg.CORS.Origins,
		CookieName:    cfg.Session.CookieName,
		Authenticator: userService,
	}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			// Idempotency fails open, so a missing Redis only loses retry protection.
			logger.Warn("redis unreachable at startup", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
		cancel()

		opts.Idempotency = &middleware.IdempotencyConfig{
			Redis:         rdb,
			TTL:           cfg.Redis.IdempotencyTTL,
			ProcessingTTL: cfg.Redis.ProcessingTTL,
			Logger:        logger.Named("idempotency"),
		}
	}

	router := routes.SetupRouter(ctrls, opts)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("store", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received, shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped gracefully")
}

// openStore returns the configured store and a func that releases it.
func openStore(cfg *config.Config, logger *zap.Logger) (repository.Store, func(), error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	}

	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("database connection established")

	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return repository.NewGormStore(db), closeDB, nil
}
