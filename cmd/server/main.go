package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecotrackhq/carbon-tracker/internal/api/accounts"
	"github.com/ecotrackhq/carbon-tracker/internal/api/footprint"
	"github.com/ecotrackhq/carbon-tracker/internal/api/middleware"
	"github.com/ecotrackhq/carbon-tracker/internal/auth"
	"github.com/ecotrackhq/carbon-tracker/internal/cache"
	"github.com/ecotrackhq/carbon-tracker/internal/config"
	"github.com/ecotrackhq/carbon-tracker/internal/factors"
	"github.com/ecotrackhq/carbon-tracker/internal/repository"
	"github.com/ecotrackhq/carbon-tracker/internal/service/badges"
	"github.com/ecotrackhq/carbon-tracker/internal/service/offset"
	"github.com/ecotrackhq/carbon-tracker/internal/service/reporting"
	"github.com/ecotrackhq/carbon-tracker/internal/service/tracker"
	"github.com/ecotrackhq/carbon-tracker/internal/service/users"
	"github.com/ecotrackhq/carbon-tracker/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)

	db, err := repository.NewDB(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	table, err := factors.Load(cfg.Factors.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Factors.Path).Msg("Failed to load emission factors")
	}

	var leaderboardCache cache.Cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		defer redisCache.Close()
		leaderboardCache = redisCache
	}

	userRepo := repository.NewUserRepository(db)
	emissionRepo := repository.NewEmissionRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)

	tokens := auth.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.TokenTTL())
	estimator := offset.NewEstimator(cfg.Offset.TreeKgPerYear)

	userService := users.NewService(userRepo, tokens, log)
	badgeService := badges.NewService(emissionRepo, badgeRepo, log)
	trackerService := tracker.NewService(db, emissionRepo, badgeRepo, table, estimator, log)
	reportingService := reporting.NewService(emissionRepo, badgeRepo, estimator, leaderboardCache, cfg.Redis.LeaderboardTTL(), log)

	accountsHandler := accounts.NewHandler(userService, log)
	footprintHandler := footprint.NewHandler(trackerService, reportingService, badgeService, log)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api/v1")
	api.POST("/auth/register", accountsHandler.Register)
	api.POST("/auth/login", accountsHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(tokens))
	authed.GET("/profile", accountsHandler.GetProfile)
	authed.PUT("/profile", accountsHandler.UpdateProfile)
	authed.GET("/dashboard", footprintHandler.GetDashboard)
	authed.POST("/calculator", footprintHandler.SubmitCalculator)
	authed.GET("/history", footprintHandler.GetHistory)
	authed.GET("/badges", footprintHandler.GetBadges)
	authed.GET("/leaderboard", footprintHandler.GetLeaderboard)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info().Str("addr", addr).Str("environment", cfg.Server.Environment).Msg("Starting server")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
