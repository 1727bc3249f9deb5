package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/cirozov-cmyk/device-logs-tile/internal/app"
	"github.com/cirozov-cmyk/device-logs-tile/internal/config"
	"github.com/cirozov-cmyk/device-logs-tile/internal/domain/devicelog"
	"github.com/cirozov-cmyk/device-logs-tile/internal/domain/ingest"
	dbinfra "github.com/cirozov-cmyk/device-logs-tile/internal/infrastructure/db"
	"github.com/cirozov-cmyk/device-logs-tile/internal/infrastructure/logging"
	"github.com/cirozov-cmyk/device-logs-tile/internal/infrastructure/monitoring"
	"github.com/cirozov-cmyk/device-logs-tile/internal/infrastructure/ratelimit"
	redisinfra "github.com/cirozov-cmyk/device-logs-tile/internal/infrastructure/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.App)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logging.Sync(logger)

	if err := monitoring.InitSentry(cfg.Monitoring, cfg.App); err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	monitoring.Init()
	defer monitoring.Flush()

	var redisClient *redisinfra.Client
	if cfg.Redis.Addr != "" {
		client, err := redisinfra.Connect(ctx, cfg.Redis, logger)
		if err == nil {
			redisClient = client
			defer client.Close()
		} else if cfg.Source.Kind == config.SourceRedis {
			logger.Fatal("redis log source unavailable", zap.Error(err))
		} else {
			logger.Warn("redis connect failed", zap.Error(err))
		}
	}

	buffer := devicelog.NewBuffer(cfg.Tile.Capacity)
	buffer.Seed(devicelog.Entry{Message: "device logs tile started", Type: devicelog.TypeSystem})
	monitoring.SetBufferSize(buffer.Size())

	source, closeSource, err := buildSource(ctx, cfg, redisClient, logger)
	if err != nil {
		logger.Fatal("log source init failed", zap.Error(err))
	}
	defer closeSource()

	sourceName := config.SourceNone
	var wg sync.WaitGroup
	if source != nil {
		sourceName = source.Name()
		poller := ingest.NewPoller(source, buffer, ingest.Options{
			Interval:   cfg.Source.PollInterval,
			Timeout:    cfg.Source.FetchTimeout,
			RetryDelay: cfg.Source.RetryDelay,
		}, logger.Named("ingest"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Run(ctx)
		}()
	}

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		if redisClient != nil {
			limiter = ratelimit.NewRedisLimiter(redisClient.Native, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.RedisPrefix)
		} else {
			limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		}
	}

	service := devicelog.NewService(buffer, logger.Named("devicelog"), cfg.Tile.Title, cfg.Tile.RecentEntries)
	handler := devicelog.NewHandler(service, devicelog.Manifest{
		Name:            cfg.App.Name,
		Title:           cfg.Tile.Title,
		Description:     "Recent smart-home device events",
		Version:         cfg.App.Version,
		RefreshInterval: cfg.Tile.RefreshInterval,
	}, sourceName)

	router := app.NewRouter(app.RouterDeps{
		Config:     cfg,
		DeviceLogs: handler,
		Logger:     logger,
		Limiter:    limiter,
	})

	server := &app.Server{Engine: router, Addr: ":" + cfg.App.Port, Logger: logger}
	if err := server.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
	}
	stop()
	wg.Wait()
}

// buildSource returns the configured feed, or nil when polling is disabled.
func buildSource(ctx context.Context, cfg *config.Config, redisClient *redisinfra.Client, logger *zap.Logger) (ingest.Source, func(), error) {
	noop := func() {}
	switch cfg.Source.Kind {
	case config.SourceHTTP:
		return ingest.NewHTTPSource(cfg.Source.URL, &http.Client{}), noop, nil
	case config.SourceRedis:
		return ingest.NewRedisSource(redisClient.Native, cfg.Source.RedisKey), noop, nil
	case config.SourceSQL:
		conn, err := dbinfra.Connect(ctx, cfg.Source, logger)
		if err != nil {
			return nil, noop, err
		}
		return ingest.NewSQLSource(conn, cfg.Source.SQLQuery), func() { _ = conn.Close() }, nil
	default:
		return nil, noop, nil
	}
}
