package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"complianceadvisor/docs"
	"complianceadvisor/internal/auth"
	"complianceadvisor/internal/cache"
	"complianceadvisor/internal/compliance"
	"complianceadvisor/internal/config"
	"complianceadvisor/internal/db"
	"complianceadvisor/internal/handler"
	"complianceadvisor/internal/logger"
	"complianceadvisor/internal/repository"
	"complianceadvisor/internal/router"
	"complianceadvisor/internal/service"
	"complianceadvisor/internal/storage"
)

//go:generate swag init -g cmd/server/main.go -d ../.. -o ../../docs

// @title Compliance Advisor API
// @version 1.0
// @description Compliance checklists and per-user document storage behind a session cookie.
// @host localhost:5000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name session
// @description Session token set by /api/login.
func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		log = zap.NewExample()
		log.Warn("falling back to example logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	gormDB, err := db.NewMySQL(cfg.DSN())
	if err != nil {
		log.Fatal("database init", zap.Error(err))
	}
	if err := db.Migrate(gormDB, cfg.ResetDB, log); err != nil {
		log.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Warn("redis unavailable, sessions cannot be revoked until it returns", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	cancel()

	rules, err := loadRules(cfg.RulesPath)
	if err != nil {
		log.Fatal("load compliance rules", zap.String("path", cfg.RulesPath), zap.Error(err))
	}

	files, err := storage.New(context.Background(), cfg.Storage())
	if err != nil {
		log.Fatal("file store init", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	documentRepo := repository.NewDocumentRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.SecretKey, cfg.SessionTTL)
	sessionStore := auth.NewSessionStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, sessionStore, cacheClient)
	documentService := service.NewDocumentService(documentRepo, files, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, cfg.CookieSecure)
	userHandler := handler.NewUserHandler()
	complianceHandler := handler.NewComplianceHandler(rules)
	documentHandler := handler.NewDocumentHandler(documentService)

	e := echo.New()
	e.HideBanner = true
	router.Register(
		e,
		cfg,
		log,
		jwtService,
		authService,
		authHandler,
		userHandler,
		complianceHandler,
		documentHandler,
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	log.Info("swagger documentation available", zap.String("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("server start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
}

func loadRules(path string) (*compliance.Rules, error) {
	if path == "" {
		return compliance.Default()
	}
	return compliance.LoadFile(path)
}
