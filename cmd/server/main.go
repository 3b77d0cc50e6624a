package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/seojunlee/teamlive/internal/config"
	"github.com/seojunlee/teamlive/internal/handler"
	"github.com/seojunlee/teamlive/internal/middleware"
	"github.com/seojunlee/teamlive/internal/model"
	"github.com/seojunlee/teamlive/internal/repository"
	"github.com/seojunlee/teamlive/internal/service"
	"github.com/seojunlee/teamlive/internal/ws"
	"github.com/seojunlee/teamlive/migrations"
	"github.com/seojunlee/teamlive/pkg/auth"
	"github.com/seojunlee/teamlive/pkg/notification"
	"github.com/seojunlee/teamlive/pkg/storage"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// @title           TeamLive API
// @version         1.0
// @description     Esports roster live-status & push-subscription API with Go, Gin, WebSocket, Redis Pub/Sub, FCM.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      api.localhost
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()
	log.Printf("🚀 Starting TeamLive API Server [env=%s]", cfg.App.Env)

	// ==================== Database (PostgreSQL) ====================
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.App.Env == "production" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	// ==================== Run Migrations ====================
	if err := migrations.Run(cfg.DB.URL()); err != nil {
		log.Printf("⚠️  Migration warning: %v", err)
		log.Println("📦 Falling back to GORM AutoMigrate...")
		// Fallback to AutoMigrate if migration files fail
		if err := db.AutoMigrate(
			&model.Team{},
			&model.Player{},
			&model.GameAccount{},
			&model.Subscription{},
			&model.UserDevice{},
		); err != nil {
			log.Fatalf("❌ Failed to migrate database: %v", err)
		}
	}
	log.Println("✅ Database migrated successfully")

	// ==================== Redis ====================
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	log.Println("✅ Connected to Redis")

	// ==================== Initialize Layers ====================
	// JWT Manager
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Repositories
	teamRepo := repository.NewTeamRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)

	// Drop push tokens with no activity for half a year; FCM has long since
	// invalidated them
	if pruned, err := deviceRepo.PruneStale(time.Now().AddDate(0, -6, 0)); err != nil {
		log.Printf("⚠️  Failed to prune stale device tokens: %v", err)
	} else if pruned > 0 {
		log.Printf("🧹 Pruned %d stale device tokens", pruned)
	}

	// FCM push sender
	notifier, err := notification.NewNotificationService(cfg.Firebase.CredentialsFile, subRepo, deviceRepo)
	if err != nil {
		log.Printf("⚠️  FCM not available: %v (push notifications disabled)", err)
	}

	// WebSocket Hub (with Redis Pub/Sub for horizontal scaling)
	hub := ws.NewHub(rdb)

	// Start Hub event loop
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	// Services
	rosterService := service.NewRosterService(teamRepo, accountRepo, subRepo, hub, notifier)

	// MinIO Storage
	minioStorage, err := storage.NewMinIO(storage.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		PublicURL: cfg.MinIO.PublicURL,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		log.Printf("⚠️  MinIO not available: %v (asset upload disabled)", err)
	}
	if minioStorage != nil {
		log.Println("✅ Connected to MinIO")
	}

	// Handlers
	rosterHandler := handler.NewRosterHandler(rosterService)
	deviceHandler := handler.NewDeviceHandler(deviceRepo)
	statusHandler := handler.NewStatusHandler(rosterService)
	wsHandler := handler.NewWSHandler(hub, jwtManager)
	uploadHandler := handler.NewUploadHandler(minioStorage)

	// ==================== Gin Router ====================
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Swagger configuration
	// Serve swagger.json at /docs/swagger.json to avoid conflict with /swagger/* wildcard
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")

	// Swagger UI handling
	url := ginSwagger.URL("/docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))

	// Global middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.Origins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "teamlive-api",
			"viewers": hub.ViewerCount(),
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// ==================== API Routes ====================
	api := router.Group("/api/v1")
	{
		// Roster routes (public; subscription flag needs a token)
		public := api.Group("")
		public.Use(middleware.OptionalAuthMiddleware(jwtManager))
		{
			public.GET("/teams", rosterHandler.GetTeams)
			public.GET("/teams/:abbr/roster", rosterHandler.GetRoster)
			public.GET("/players/:id/accounts", rosterHandler.GetPlayerAccounts)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager, rdb))
		{
			// Subscriptions
			protected.GET("/subscriptions", rosterHandler.ListSubscriptions)
			protected.POST("/subscriptions", rosterHandler.Subscribe)
			protected.DELETE("/subscriptions/:playerId", rosterHandler.Unsubscribe)

			// Devices (push tokens)
			protected.POST("/devices", deviceHandler.RegisterDevice)
			protected.GET("/devices", deviceHandler.ListDevices)

			// Tracker reports
			protected.PUT("/internal/accounts/:id/status", statusHandler.UpdateAccountStatus)
			protected.PUT("/internal/accounts/by-puuid/:puuid/status", statusHandler.UpdateAccountStatusByPUUID)

			// Upload
			protected.POST("/uploads/team-logo", uploadHandler.UploadTeamLogo)
			protected.POST("/uploads/player-avatar", uploadHandler.UploadPlayerAvatar)
		}
	}

	// WebSocket feed endpoint (auth via optional query parameter)
	router.GET("/ws", wsHandler.HandleFeed)

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	log.Printf("🌐 TeamLive API running on http://0.0.0.0:%s", cfg.App.Port)
	log.Printf("📋 API docs: http://0.0.0.0:%s/swagger/index.html", cfg.App.Port)
	log.Printf("🔌 Change feed: ws://0.0.0.0:%s/ws?token=<jwt>", cfg.App.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	// Give ongoing requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	hubCancel()
	log.Println("✅ Server exited gracefully")
}
