// main.go
package main

import (
	"context"
	"log"

	"ticket-booking/cmd"
	"ticket-booking/internal/cache"
	"ticket-booking/internal/data/repository"
	"ticket-booking/internal/payment"
	"ticket-booking/internal/queue"
	"ticket-booking/internal/usecase"
	"ticket-booking/internal/wire"
	"ticket-booking/internal/worker"
	pkgcache "ticket-booking/pkg/cache"
	"ticket-booking/pkg/database"
	"ticket-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Connect to redis
	redisClient, err := pkgcache.InitRedis(config.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	logger.Info("Redis connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// External adapters
	seatCache := cache.NewSeatCache(redisClient, logger)

	stripeProvider, err := payment.NewStripeProvider(config.Stripe, logger)
	if err != nil {
		logger.Fatal("Failed to init payment provider", zap.Error(err))
	}

	publisher := queue.NewPublisher(config.Queue.URL, logger)

	// Use cases
	service := usecase.NewService(repos, config, seatCache, stripeProvider, publisher, logger)

	// Expiry sweeper runs for the lifetime of the process
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := worker.NewSweeper(repos.Booking, service.Booking, config.Booking.SweepIntervalSeconds, logger)
	go sweeper.Run(ctx)

	// Wire all dependencies
	app := wire.Wiring(service, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
