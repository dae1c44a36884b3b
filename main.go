package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/teamsteps/teamsteps/handlers"
	"github.com/teamsteps/teamsteps/internal/config"
	"github.com/teamsteps/teamsteps/internal/identity"
	"github.com/teamsteps/teamsteps/internal/users"
	"github.com/teamsteps/teamsteps/internal/users/repository"
	"github.com/teamsteps/teamsteps/pkg/logger"
	"github.com/teamsteps/teamsteps/pkg/metrics"
	"github.com/teamsteps/teamsteps/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Infof("config loaded: backend=%s mongo=%v redis=%v minio=%v", cfg.Storage.Backend, cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "")

	ctx := context.Background()

	// Shared with the redis backend and the redis rate limiter.
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", cfg.Redis.Addr(), err)
		} else {
			logger.Infof("connected to Redis: %s", cfg.Redis.Addr())
		}
		defer func() { _ = rdb.Close() }()
	}

	repo, closeRepo, err := repository.Open(ctx, cfg, rdb)
	if err != nil {
		logger.Fatalf("failed to open %s storage: %v", cfg.Storage.Backend, err)
	}
	defer closeRepo()

	store, err := users.New(ctx, repo)
	if err != nil {
		logger.Fatalf("failed to load users: %v", err)
	}
	resolver := identity.NewResolver(cfg.Auth.AdminToken, store)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r := newRouter(cfg, store, resolver, rdb)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("teamsteps listening on %s (public url %s)", addr, cfg.Server.PublicURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

// newRouter wires middleware, ops endpoints, Swagger and the /api routes.
func newRouter(cfg *config.Config, store *users.Store, resolver *identity.Resolver, rdb *redis.Client) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, token")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// ready once the user document has been loaded
	r.GET("/ready", func(c *gin.Context) {
		deps := gin.H{"storage": store != nil}
		if store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": time.Since(startTime).String()})
			return
		}
		deps["backend"] = store.Backend()
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()})
	})

	handlers.RegisterSwagger(r)
	var apiOpts []handlers.APIOption
	if limiter := newRateLimiter(cfg, rdb); limiter != nil {
		apiOpts = append(apiOpts, handlers.WithRateLimiter(limiter))
	}
	handlers.NewAPIHandler(store, resolver, apiOpts...).Register(r)
	return r
}

// newRateLimiter returns nil when rate limiting is disabled.
func newRateLimiter(cfg *config.Config, rdb *redis.Client) gin.HandlerFunc {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	if cfg.RateLimit.UseRedis && rdb != nil {
		win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
		return middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)
	}
	return middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}
