package router

import (
	"log"

	"github.com/fourviews/backend/internal/handlers"
	"github.com/fourviews/backend/internal/inbox"
	"github.com/fourviews/backend/internal/models"
	"github.com/fourviews/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)

	inboxService := inbox.NewService(notificationRepo, userRepo)

	api := e.Group("/api/v1")

	// Notification inbox routes
	notificationHandler := handlers.NewNotificationHandler(inboxService)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Device token routes
	deviceHandler := handlers.NewDeviceHandler(userRepo)
	deviceHandler.RegisterDeviceRoutes(api)
	log.Println("Device routes configured.")

	log.Println("All routes configured.")
}
