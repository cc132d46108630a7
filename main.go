package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"gembot/config"
	"gembot/database"
	"gembot/gemini"
	"gembot/handlers"
	"gembot/logger"
	"gembot/middleware"
	"gembot/store"
	"gembot/telegram"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	if err := logger.Init(os.Getenv("GIN_MODE") != "release", logger.LogLevel(os.Getenv("LOG_LEVEL"))); err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatal("config", zap.Error(err))
	}

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		logger.Get().Fatal("database", zap.Error(err))
	}

	st := store.New(db, cfg.FreeDailyLimit)

	ctx := context.Background()
	ai, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.MaxMessageLength)
	if err != nil {
		logger.Get().Fatal("gemini", zap.Error(err))
	}
	defer ai.Close()

	// Fail fast on a bad API key instead of on the first user message.
	if err := ai.Ping(ctx); err != nil {
		logger.Get().Fatal("gemini connectivity check failed, check GEMINI_API_KEY", zap.Error(err))
	}

	tg := telegram.New(cfg.TelegramToken, cfg.TelegramAPIURL)
	bot := handlers.NewBot(st, ai, tg, cfg)
	api := handlers.NewAPI(db, st, cfg)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// Public routes
	r.POST("/telegram/webhook", bot.Webhook)
	r.POST("/login", api.Login)
	r.POST("/setup-owner", api.RegisterOwner)

	// Admin dashboard (token required)
	protected := r.Group("/api")
	protected.Use(middleware.JwtAuthMiddleware())
	{
		admin := protected.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/promocodes", api.CreatePromoCodes)
			admin.GET("/promocodes", api.ListPromoCodes)
			admin.GET("/users", api.ListUsers)
			admin.GET("/users/:id/stats", api.UserStats)
			admin.GET("/export", api.ExportUsers)
		}
	}

	logger.Get().Info("bot started", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Get().Fatal("server", zap.Error(err))
	}
}
