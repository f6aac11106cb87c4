package main

import (
	"context"
	"log"

	"github.com/fourviews/backend/internal/dispatcher"
	"github.com/fourviews/backend/internal/push"
	"github.com/fourviews/backend/internal/repositories"
	"github.com/fourviews/backend/internal/router"
	"github.com/fourviews/backend/internal/sweep"
	"github.com/fourviews/backend/pkg/config"
	"github.com/fourviews/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize the push gateway client with its credential cache
	creds, err := push.NewCredentials(cfg.FCMCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize push credentials: %v", err)
	}
	gateway := push.NewClient(cfg.FCMProjectID, creds)

	// Repositories shared between the pipeline and the HTTP layer
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)
	deliveryLog := repositories.NewMongoDeliveryLogRepository(db.Mongo.Database("fourviews"))

	// Dispatcher: persists notifications and runs delivery attempts on its
	// worker pool. Domain collaborators call disp.Notify after their own
	// writes commit.
	disp := dispatcher.New(notificationRepo, userRepo, gateway, deliveryLog, dispatcher.Config{
		Workers:        cfg.DispatchWorkers,
		QueueSize:      cfg.DispatchQueueSize,
		AttemptTimeout: cfg.AttemptTimeout,
	})
	defer disp.Shutdown()

	// Sweep job: retries pending/failed notifications in the background
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	sweeper := sweep.New(notificationRepo, disp, sweep.Config{
		Interval:     cfg.SweepInterval,
		Batch:        cfg.SweepBatch,
		Workers:      cfg.SweepWorkers,
		RetryCeiling: cfg.RetryCeiling,
		BackoffBase:  cfg.RetryBackoffBase,
		PendingGrace: cfg.PendingGrace,
	})
	go sweeper.Run(sweepCtx)

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
