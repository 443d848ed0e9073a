package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tilecast/internal/core/ports"
	"tilecast/internal/core/services"
	handlers "tilecast/internal/handlers/http"
	"tilecast/internal/infrastructure/feed"
	"tilecast/internal/infrastructure/middleware"
	"tilecast/internal/infrastructure/monitoring"
	"tilecast/internal/infrastructure/render"
	"tilecast/internal/infrastructure/repositories/memory"
	redisrepo "tilecast/internal/infrastructure/repositories/redis"
	"tilecast/pkg/config"
	"tilecast/pkg/logger"
	"tilecast/pkg/tracing"
)

func main() {
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error
	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		log.Fatalf("could not load configuration: %v", err)
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	sugar := zapLogger.Sugar()

	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		sugar.Fatalw("failed to initialize tracing", "error", err)
	}

	collector := monitoring.NewCollector()

	var frames ports.FrameRepository
	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			sugar,
		)
		if err != nil {
			sugar.Fatalw("failed to connect to Redis", "error", err)
		}
		defer client.Close()
		frames = redisrepo.NewRedisFrameRepository(client)
	} else {
		frames = memory.NewMemoryFrameRepository()
	}

	gridCfg := services.GridConfig{
		MaxVisibleUsers:   cfg.Grid.MaxVisibleUsers,
		SpeakingInterval:  cfg.Grid.SpeakingInterval,
		SpeakingThreshold: cfg.Grid.SpeakingThreshold,
	}
	callService := services.NewCallService(
		gridCfg,
		frames,
		func() ports.TrackBinder { return render.NewBinder(collector, sugar) },
		collector,
		sugar,
	)

	feedServer := feed.NewServer(callService, cfg.Feed.PingInterval, cfg.Feed.WriteTimeout, sugar)
	gridHandler := handlers.NewGridHandler(callService, sugar)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.NewRateLimitMiddleware(cfg))
	router.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret, cfg.Auth.Enabled))

	gridHandler.SetupRoutes(router)
	router.GET("/api/v1/calls/:id/feed", feedServer.HandleFeed)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		sugar.Infow("starting tilecast server", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sugar.Infow("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		sugar.Warnw("server shutdown failed", "error", err)
	}
	if err := tp.Shutdown(ctx); err != nil {
		sugar.Warnw("tracing shutdown failed", "error", err)
	}
}
