package main

import (
	"context"
	"log"

	"lockerroom-talk/internal/config"
	"lockerroom-talk/internal/firebase"
	"lockerroom-talk/internal/handlers"
	"lockerroom-talk/internal/middleware"
	"lockerroom-talk/internal/redis"
	"lockerroom-talk/internal/repository"
	"lockerroom-talk/internal/services"
	"lockerroom-talk/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Load configuration
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	ctx := context.Background()

	// Initialize Firebase (Firestore + Auth)
	fb, err := firebase.Initialize(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to Firebase:", err)
	}
	defer fb.Close()

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Initialize media storage
	storage, err := services.NewStorageService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		logger.WithError(err).Warn("media bucket check failed")
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub(logger)
	go hub.Run()

	// Initialize repositories
	userRepo := repository.NewUserRepository(fb.Firestore, redisClient, cfg, logger)
	reviewRepo := repository.NewReviewRepository(fb.Firestore, cfg, logger)
	chatRepo := repository.NewChatRepository(fb.Firestore, cfg, logger)
	notificationRepo := repository.NewNotificationRepository(fb.Firestore, cfg, logger)
	adminRepo := repository.NewAdminRepository(fb.Firestore)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userRepo, cfg, logger)
	reviewHandler := handlers.NewReviewHandler(reviewRepo, notificationRepo, cfg, logger)
	chatHandler := handlers.NewChatHandler(chatRepo, notificationRepo, hub, cfg, logger)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, cfg, logger)
	adminHandler := handlers.NewAdminHandler(adminRepo, userRepo, reviewRepo, cfg, logger)
	mediaHandler := handlers.NewMediaHandler(storage, cfg, logger)

	router := setupRoutes(cfg, fb, redisClient, hub,
		userHandler, reviewHandler, chatHandler, notificationHandler, adminHandler, mediaHandler)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func setupRoutes(cfg *config.Config, fb *firebase.Clients, redisClient *redis.Client, hub *websocket.Hub,
	userHandler *handlers.UserHandler, reviewHandler *handlers.ReviewHandler,
	chatHandler *handlers.ChatHandler, notificationHandler *handlers.NotificationHandler,
	adminHandler *handlers.AdminHandler, mediaHandler *handlers.MediaHandler) *gin.Engine {

	router := gin.Default()

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// User routes
		users := v1.Group("/users")
		users.Use(middleware.AuthRequired(fb.Auth))
		{
			users.POST("/profile", userHandler.CreateProfile)
			users.GET("/profile", userHandler.GetMyProfile)
			users.PUT("/profile", userHandler.UpdateProfile)
			users.POST("/presence", userHandler.SetPresence)
			users.GET("/:user_id", userHandler.GetUser)
		}

		// Review routes
		reviews := v1.Group("/reviews")
		reviews.Use(middleware.AuthRequired(fb.Auth))
		{
			reviews.POST("/", middleware.VerifiedEmailRequired(fb.Auth), reviewHandler.CreateReview)
			reviews.GET("/", reviewHandler.ListReviews)
			reviews.GET("/mine", reviewHandler.MyReviews)
			reviews.GET("/:id", reviewHandler.GetReview)
			reviews.PUT("/:id", reviewHandler.UpdateReview)
			reviews.DELETE("/:id", reviewHandler.DeleteReview)
			reviews.POST("/:id/like", reviewHandler.LikeReview)
			reviews.DELETE("/:id/like", reviewHandler.UnlikeReview)
		}

		// Chat routes
		chats := v1.Group("/chats")
		chats.Use(middleware.AuthRequired(fb.Auth))
		{
			chats.POST("/", chatHandler.CreateRoom)
			chats.GET("/", chatHandler.ListRooms)
			chats.GET("/:room_id", chatHandler.GetRoom)
			chats.POST("/:room_id/join", chatHandler.JoinRoom)
			chats.POST("/:room_id/leave", chatHandler.LeaveRoom)
			chats.GET("/:room_id/messages", chatHandler.GetMessages)
			chats.POST("/:room_id/messages",
				middleware.VerifiedEmailRequired(fb.Auth),
				middleware.RateLimit(redisClient, "send_message", cfg.MessageRateLimit, cfg.MessageRateWindow),
				chatHandler.SendMessage)
			chats.POST("/:room_id/read", chatHandler.MarkRead)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired(fb.Auth))
		{
			notifications.GET("/", notificationHandler.List)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
		}

		// Media upload
		media := v1.Group("/media")
		media.Use(middleware.AuthRequired(fb.Auth))
		{
			media.POST("/", mediaHandler.Upload)
		}

		// WebSocket endpoint
		v1.GET("/ws", middleware.AuthRequired(fb.Auth), func(c *gin.Context) {
			websocket.HandleWebSocket(hub, c)
		})

		// Admin routes
		admin := v1.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)

			guarded := admin.Group("")
			guarded.Use(middleware.AdminRequired(cfg.AdminJWTSecret))
			{
				guarded.DELETE("/reviews/:id", adminHandler.TakedownReview)
				guarded.PUT("/users/:user_id/deactivate", adminHandler.DeactivateUser)
			}
		}
	}

	return router
}
