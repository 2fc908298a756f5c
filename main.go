package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoicing-backend/config"
	"invoicing-backend/routes"
	"invoicing-backend/services"
	"invoicing-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := config.NewLogger(cfg.Log)
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB(cfg.Database, cfg.Log, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := config.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	utils.PasswordCost = cfg.App.BcryptCost
	utils.SetupValidator()

	var blacklist utils.TokenBlacklist
	if cfg.Redis.Addr != "" {
		redisBlacklist, err := utils.NewRedisTokenBlacklist(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer redisBlacklist.Close()
		blacklist = redisBlacklist
	} else {
		logger.Warn("REDIS_ADDR not set, revoked tokens are kept in memory")
		blacklist = utils.NewInMemoryTokenBlacklist()
	}
	tokens := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiry(), blacklist)

	if cfg.Scheduler.Enabled {
		var notifier services.Notifier = services.NewLogNotifier(logger)
		if cfg.Twilio.Enabled() {
			notifier = services.NewTwilioNotifier(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.PhoneNumber)
		}
		scheduler, err := services.NewOverdueService(db, notifier, logger).StartScheduler(cfg.Scheduler.OverdueSchedule)
		if err != nil {
			logger.Fatal("Failed to start overdue scheduler", zap.Error(err))
		}
		defer scheduler.Stop()
	}

	r := routes.SetupRouter(routes.Dependencies{
		Config: cfg,
		DB:     db,
		Logger: logger,
		Tokens: tokens,
	})
	printRoutes(r, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
}

func printRoutes(r *gin.Engine, logger *zap.Logger) {
	for _, route := range r.Routes() {
		logger.Debug("route", zap.String("method", route.Method), zap.String("path", route.Path))
	}
}
