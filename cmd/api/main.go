package main

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/stayhub/stayhub-backend/internal/booking"
	"github.com/stayhub/stayhub-backend/internal/database"
	"github.com/stayhub/stayhub-backend/internal/handlers"
	"github.com/stayhub/stayhub-backend/internal/middleware"
	"github.com/stayhub/stayhub-backend/internal/models"
	"github.com/stayhub/stayhub-backend/internal/services"
	"github.com/stayhub/stayhub-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Get().Warn("No .env file found, relying on environment")
	}
	log := logger.Get()
	defer log.Sync()

	// Initialize database
	db, err := database.InitDB()
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database instance", zap.Error(err))
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := database.SeedAdminUser(db); err != nil {
		log.Fatal("Failed to seed admin user", zap.Error(err))
	}

	// Initialize Redis (optional - cache and pub/sub degrade gracefully)
	if err := services.InitRedis(); err != nil {
		log.Warn("Redis initialization failed, continuing without cache", zap.Error(err))
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Wire the booking core
	directory := services.NewPropertyDirectory(db)
	sink := services.NewNotificationStore(db, hub)
	ctrl := booking.NewController(db, directory, sink, log)

	// Initialize router
	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve uploaded images when using local storage
	if !services.IsUsingS3() {
		uploadDir := os.Getenv("UPLOAD_DIR")
		if uploadDir == "" {
			uploadDir = "/app/uploads"
		}
		r.Static("/uploads", uploadDir)
	}

	// Routes
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}

		api.GET("/properties", handlers.GetProperties(db))
		api.GET("/properties/featured", handlers.GetFeaturedProperties(db))
		api.GET("/properties/:id", handlers.GetProperty(db))
		api.GET("/reviews/property/:propertyId", handlers.GetPropertyReviews(db))

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// User routes
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
				users.PUT("/change-password", handlers.ChangePassword(db))
			}

			// Host property management
			properties := protected.Group("/properties")
			properties.Use(middleware.RequireRoles(models.RoleHost, models.RoleAdmin))
			{
				properties.POST("", handlers.CreateProperty(db))
				properties.PUT("/:id", handlers.UpdateProperty(db))
				properties.DELETE("/:id", handlers.DeleteProperty(db))
				properties.GET("/host/my-properties", handlers.GetMyProperties(db))
				properties.POST("/:id/images", handlers.UploadPropertyImages(db))
				properties.GET("/:id/bookings", handlers.GetPropertyBookings(db, ctrl))
			}

			// Bookings routes
			bookings := protected.Group("/bookings")
			{
				bookings.POST("", handlers.CreateBooking(ctrl))
				bookings.GET("/my-bookings", handlers.GetMyBookings(ctrl))
				bookings.GET("/:id", handlers.GetBooking(ctrl))
				bookings.PATCH("/:id/status", middleware.RequireRoles(models.RoleHost, models.RoleAdmin), handlers.UpdateBookingStatus(ctrl, hub))
				bookings.PUT("/:id/cancel", handlers.CancelBooking(ctrl, hub))
			}

			// Reviews
			protected.POST("/reviews", handlers.CreateReview(db))

			// Wishlist
			wishlist := protected.Group("/wishlist")
			{
				wishlist.GET("", handlers.GetWishlist(db))
				wishlist.POST("/:propertyId", handlers.AddToWishlist(db))
				wishlist.DELETE("/:propertyId", handlers.RemoveFromWishlist(db))
			}

			// Notification routes
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", handlers.GetNotifications(db))
				notifications.PUT("/:id/read", handlers.MarkNotificationRead(db))
				notifications.PUT("/read-all", handlers.MarkAllNotificationsRead(db))
			}

			// Admin routes
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRoles(models.RoleAdmin))
			{
				admin.GET("/stats", handlers.GetStats(db))
				admin.GET("/users", handlers.GetAllUsers(db))
				admin.PUT("/users/:id/status", handlers.UpdateUserStatus(db))
				admin.DELETE("/users/:id", handlers.DeleteUser(db))
				admin.GET("/properties", handlers.GetAllProperties(db))
				admin.GET("/bookings", handlers.GetAllBookings(db))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info("StayHub server starting", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
