package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/docstore/handlers"
	"github.com/gogotex/docstore/internal/config"
	"github.com/gogotex/docstore/internal/database"
	"github.com/gogotex/docstore/internal/document/handler"
	"github.com/gogotex/docstore/internal/document/service"
	"github.com/gogotex/docstore/pkg/logger"
	"github.com/gogotex/docstore/pkg/metrics"
	"github.com/gogotex/docstore/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

// countTimeout bounds the stored-documents gauge on each scrape.
const countTimeout = 2 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Redis is shared by the redis backend and the redis rate limiter.
	var rdb *redis.Client
	if cfg.Redis.Host != "" && (cfg.Store.Backend == config.BackendRedis || cfg.RateLimit.UseRedis) {
		rdb, err = database.ConnectRedis(ctx, database.RedisOptions{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  5 * time.Second,
		})
		if err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", cfg.Redis.Addr(), err)
		} else {
			defer rdb.Close()
			logger.Infof("connected to Redis at %s", cfg.Redis.Addr())
		}
	}

	svc := newService(ctx, cfg, rdb)
	logger.Infof("document store backend: %s", svc.Backend())

	reg := prometheus.DefaultRegisterer
	metrics.RegisterCollectors(reg)
	metrics.RegisterStoredDocuments(reg, svc.Count, countTimeout)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), gin.Logger())
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
			logger.Infof("rate limiter: redis (rps=%.2f burst=%d window=%s)", cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
			logger.Infof("rate limiter: memory (rps=%.2f burst=%d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}

	handlers.RegisterHealth(r, svc, startTime)
	handlers.RegisterSwagger(r)
	handler.RegisterDocumentRoutes(r, svc)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("docstore listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

// newService picks the configured backend. Mongo and Redis fall back to the
// in-memory store when they cannot be reached.
func newService(ctx context.Context, cfg *config.Config, rdb *redis.Client) service.Service {
	switch cfg.Store.Backend {
	case config.BackendMongo:
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, cfg.MongoDB.Attempts, time.Second,
			func(attempt int, err error) {
				logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, cfg.MongoDB.Attempts, err)
			})
		if err != nil {
			logger.Warnf("cannot connect to MongoDB (%v), using memory-backed store", err)
			return service.NewMemoryService()
		}
		go func() {
			<-ctx.Done()
			_ = client.Disconnect(context.Background())
		}()
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
		return service.NewMongoService(col)
	case config.BackendRedis:
		if rdb == nil {
			logger.Warnf("Redis unavailable, using memory-backed store")
			return service.NewMemoryService()
		}
		return service.NewRedisService(rdb, cfg.Redis.Prefix)
	}
	return service.NewMemoryService()
}
