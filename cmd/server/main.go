package main

import (
	"context"
	"net/http"

	"openlens/docs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"openlens/internal/auth"
	"openlens/internal/cache"
	"openlens/internal/config"
	"openlens/internal/db"
	"openlens/internal/event"
	"openlens/internal/handler"
	"openlens/internal/logger"
	"openlens/internal/model"
	"openlens/internal/openverse"
	"openlens/internal/repository"
	"openlens/internal/router"
	"openlens/internal/service"
)

// @title Openlens Media Search API
// @version 1.0
// @description Openly licensed media search over the Openverse catalog with accounts and per-user search history.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.SearchHistory{},
	); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	historyRepo := repository.NewSearchHistoryRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Upstream client and history event pipeline
	openverseClient := openverse.NewClient(cfg.OpenverseBaseURL, log)
	publisher := event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.HistoryTopic, log)
	defer publisher.Close()

	consumer := event.NewHistoryConsumer(cfg.KafkaBrokers, cfg.HistoryTopic, historyRepo, log)
	defer consumer.Close()
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	go consumer.Run(consumerCtx)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	searchService := service.NewSearchService(openverseClient, cacheClient, publisher, log)
	historyService := service.NewHistoryService(historyRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	searchHandler := handler.NewSearchHandler(searchService)
	historyHandler := handler.NewHistoryHandler(historyService)

	// Register routes
	router.Register(
		e,
		cfg,
		jwtService,
		tokenStore,
		authHandler,
		searchHandler,
		historyHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server start")
	}
}
