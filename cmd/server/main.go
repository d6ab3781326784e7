package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/api"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/api/middleware"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/services"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/websocket"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/config"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/database"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store := services.NewSlateStore(db, log)
	if err := store.AutoMigrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis is optional; without it every batch is computed fresh.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opt)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.WithError(err).Warn("Redis unreachable at startup, cache breaker will retry")
		}
		cancel()
		defer redisClient.Close()
	}
	cache := services.NewResultCache(redisClient, cfg.ResultCacheTTL, cfg.CacheBreakerTimeout, log)

	analyzer := services.NewNewsAnalyzer(nil, log)
	refresher := services.NewNewsRefreshScheduler(store, analyzer, cfg.NewsRefreshSchedule, log)
	if cfg.EnableBackgroundJobs {
		if err := refresher.Start(); err != nil {
			log.WithError(err).Error("Failed to start news refresh scheduler")
		}
		defer refresher.Stop()
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := websocket.NewHub(cfg.CorsOrigins, log)
	go hub.Run(hubCtx)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				limiter.Cleanup()
			case <-hubCtx.Done():
				return
			}
		}
	}()

	router := api.NewRouter(api.Dependencies{
		Config:      cfg,
		DB:          db,
		Store:       store,
		Analyzer:    analyzer,
		Refresher:   refresher,
		Cache:       cache,
		Hub:         hub,
		RateLimiter: limiter,
		Logger:      log,
	})

	for _, route := range router.Routes() {
		log.Debugf("%s %s", route.Method, route.Path)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":          cfg.Port,
			"cache_enabled": cache.Enabled(),
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
