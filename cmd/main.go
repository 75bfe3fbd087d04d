package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"referralhub/internal/cache"
	"referralhub/internal/config"
	"referralhub/internal/handler"
	"referralhub/internal/logger"
	"referralhub/internal/model"
	"referralhub/internal/repository"
	"referralhub/internal/service"
	jwtpkg "referralhub/pkg/jwt"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zl.Sync()

	// 3. Connect to the database
	gormLogLevel := gormlogger.Warn
	if cfg.Log.Level == "debug" {
		gormLogLevel = gormlogger.Info
	}
	db, err := config.NewDB(cfg.Database, gormLogLevel)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}

	// 4. Auto-migrate if enabled
	if cfg.Database.AutoMigrateEnabled() {
		if err := model.AutoMigrate(db); err != nil {
			zl.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zl.Info("database migration completed")
	}

	// 5. Initialize cache store (Redis or in-memory)
	var store cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			zl.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		store = cache.NewRedisStore(redisClient)
		zl.Info("using Redis cache store")
	case "memory":
		store = cache.NewMemoryStore()
		zl.Info("using in-memory cache store")
	default:
		zl.Fatal("unknown cache backend", zap.String("backend", cfg.Cache.Backend))
	}
	referralCache := cache.NewReferralCache(store, cfg.Cache.Prefix, cfg.Cache.TTL)

	// 6. Initialize repositories
	userRepo := repository.NewUserRepository(db)
	codeRepo := repository.NewReferralCodeRepository(db)
	referralRepo := repository.NewReferralRepository(db)

	// 7. Initialize JWT manager
	jwtManager := jwtpkg.NewManager(
		cfg.JWT.SigningKey,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
	)

	// 8. Initialize services
	authService := service.NewAuthService(userRepo, codeRepo, jwtManager, zl)
	codeService := service.NewReferralCodeService(codeRepo, userRepo, referralRepo, referralCache, zl)

	// 9. Initialize handlers
	authHandler := handler.NewAuthHandler(authService, zl)
	codeHandler := handler.NewReferralCodeHandler(codeService, zl)

	// 10. Setup router
	router := handler.SetupRouter(cfg, zl, jwtManager, authHandler, codeHandler)

	// 11. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 12. Start server with graceful shutdown
	go func() {
		zl.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Fatal("server forced to shutdown", zap.Error(err))
	}
	zl.Info("server exited gracefully")
}
