package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/farhn21/tripshare/internal/adapter/events"
	"github.com/farhn21/tripshare/internal/adapter/handler"
	repo "github.com/farhn21/tripshare/internal/adapter/repository/postgres"
	"github.com/farhn21/tripshare/internal/clock"
	"github.com/farhn21/tripshare/internal/config"
	"github.com/farhn21/tripshare/internal/core/services"
	"github.com/farhn21/tripshare/internal/obs"
	"github.com/farhn21/tripshare/internal/platform/database"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "tripshare.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET (or auth.jwt_secret) must be set")
	}

	db, err := database.NewPostgresDB(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to connect to db after retries: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Printf("Connecting to Redis at %s...", cfg.Redis.Addr)
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
		DB:   0,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Redis connected successfully!")

	registry := prometheus.NewRegistry()
	metrics := obs.NewMetrics()
	metrics.Register(registry)

	clk := clock.NewSystem()
	sink := events.NewRedisPublisher(redisClient, cfg.Redis.EventChannel)

	tripRepo := repo.NewTripRepository(db)
	reservationRepo := repo.NewReservationRepository(db)
	confirmationRepo := repo.NewConfirmationRepository(db)
	guard := repo.NewTripGuard(db, cfg.Booking.LockTimeout.Std(), metrics)

	allocator := services.NewAllocator(tripRepo, reservationRepo, metrics)
	tripService := services.NewTripService(tripRepo, reservationRepo, confirmationRepo, guard, sink, clk)
	reservationService := services.NewReservationService(
		tripRepo, reservationRepo, confirmationRepo, guard, allocator, sink, clk, metrics,
		services.WithCancelLeadTime(cfg.Booking.CancelLeadTime.Std()),
	)
	confirmationService := services.NewConfirmationService(
		tripRepo, reservationRepo, confirmationRepo, guard, allocator, sink, clk, metrics,
	)
	sweeper := services.NewSweeper(
		tripRepo, reservationRepo, confirmationRepo, guard, sink, clk, metrics,
		cfg.Booking.SweepInterval.Std(),
	)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go sweeper.Run(sweepCtx)

	router := handler.NewRouter(handler.RouterConfig{
		Trips:         handler.NewTripHandler(tripService),
		Reservations:  handler.NewReservationHandler(reservationService),
		Confirmations: handler.NewConfirmationHandler(confirmationService),
		Auth:          handler.NewAuthenticator(cfg.Auth.JWTSecret),
		Metrics:       registry,
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")
	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
