package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bounty-board/config"
	"bounty-board/handlers"
	"bounty-board/lifecycle"
	"bounty-board/middleware"
	"bounty-board/models"
	"bounty-board/services"
	"bounty-board/utils"
	"bounty-board/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed, no exceptions
	app.Use(middleware.GatewayAuthMiddleware(cfg.ServiceToken))

	allowedOrigins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Handle, X-User-Roles, X-Client, Cache-Control",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	if err := db.AutoMigrate(&models.Bounty{}); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	var archiver *services.Archiver
	if cfg.ArchiveEnabled() {
		r2, err := utils.NewR2Client(ctx, cfg.R2.AccountID, cfg.R2.AccessKeyID, cfg.R2.AccessKeySecret, cfg.R2.Bucket)
		if err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		archiver = services.NewArchiver(r2)
		log.Printf("✅ Archiving terminal bounties to R2 bucket %s", cfg.R2.Bucket)
	}

	policy := lifecycle.DefaultPolicy()
	if len(cfg.EditableStatuses) > 0 {
		policy.EditableStatuses = cfg.EditableStatuses
	}

	store := services.NewGormBountyStore(db)
	notifier := services.NewLogNotifier()
	bountyService := services.NewBountyService(store, policy, notifier, archiver)

	var authClient middleware.TokenValidator
	if cfg.AuthServiceURL != "" {
		authClient = services.NewAuthServiceClient(cfg.AuthServiceURL, cfg.ServiceToken)
	} else {
		log.Println("⚠️  AUTH_SERVICE_URL not set, /bounties/stream is disabled")
	}

	handlers.SetupBountyRoutes(app, bountyService, authClient)

	watcher := services.NewOverdueWatcher(store, notifier)
	sched, err := watcher.Start(ctx, cfg.OverdueInterval)
	if err != nil {
		log.Fatal("failed to start overdue watcher:", err)
	}

	if cfg.PayoutServiceURL != "" {
		payouts := workers.NewPayoutSyncClient(cfg.PayoutServiceURL, cfg.ServiceToken, store)
		go workers.PollPayouts(ctx, payouts, cfg.PayoutInterval)
		log.Printf("✅ Payout polling running (every %s)", cfg.PayoutInterval)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ Overdue watcher running (every %s)", cfg.OverdueInterval)
	log.Printf("✅ CORS configured for origins: %s", allowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")

	if err := sched.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
