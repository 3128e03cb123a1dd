package main

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"hospital-admin-server/internal/auth"
	"hospital-admin-server/internal/config"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/notify"
	"hospital-admin-server/internal/realtime"
	"hospital-admin-server/internal/routes"
	"hospital-admin-server/internal/storage"
)

func main() {
	// Load environment variables; a missing .env file is fine in prod
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("error loading config", zap.Error(err))
	}

	db, err := models.InitDB(cfg.Database.DSN)
	if err != nil {
		logger.Fatal("error connecting to database", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	svc := auth.NewService(auth.NewGormStores(db, cfg), cfg.Provisioning, logger)
	hub := realtime.NewHub(rdb, logger)
	store := storage.NewStore(db)
	notifier := notify.NewNotifier(cfg.ReportWebhookURL, logger)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, db, cfg, svc, hub, store, notifier)

	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(serverAddr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
