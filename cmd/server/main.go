package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"PulseCast/internal/api"
	"PulseCast/internal/cache"
	"PulseCast/internal/config"
	"PulseCast/internal/engine"
	"PulseCast/internal/metrics"
	"PulseCast/internal/scheduler"
	"PulseCast/internal/store"
	"PulseCast/internal/transport"
	"PulseCast/internal/transport/email"
	"PulseCast/internal/transport/telegram"
)

func main() {

	// ------------------------------------------------
	// Logger
	// ------------------------------------------------
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// ------------------------------------------------
	// Config
	// ------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ------------------------------------------------
	// Root Context + Shutdown
	// ------------------------------------------------
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	// ------------------------------------------------
	// Database
	// ------------------------------------------------
	pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer pg.Close()

	// ------------------------------------------------
	// Dedupe Cache (optional)
	// ------------------------------------------------
	var dedupe cache.DeliveryCache
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("redis connection failed", zap.Error(err))
		}
		defer redisClient.Close()

		dedupe = cache.NewDeliveryCache(redisClient, 0)
		logger.Info("delivery dedupe cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	// ------------------------------------------------
	// Metrics
	// ------------------------------------------------
	metrics.Init()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}

	go func() {
		logger.Info("metrics server started", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("metrics server error", zap.Error(err))
		}
	}()

	// ------------------------------------------------
	// Transport
	// ------------------------------------------------
	var sender transport.Sender
	switch cfg.Transport {
	case "telegram":
		sender, err = telegram.New(cfg.TelegramBotToken, cfg.SendTimeout)
		if err != nil {
			logger.Fatal("telegram transport init failed", zap.Error(err))
		}
	case "email":
		sender = &email.Sender{
			Host:    cfg.SMTPHost,
			Port:    cfg.SMTPPort,
			User:    cfg.SMTPUser,
			Pass:    cfg.SMTPPassword,
			From:    cfg.SMTPFrom,
			Subject: "PulseCast broadcast",
		}
	default:
		logger.Fatal("unknown transport", zap.String("transport", cfg.Transport))
	}

	// ------------------------------------------------
	// Rate Limiter (shared across all workers)
	// ------------------------------------------------
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)

	// ------------------------------------------------
	// Delivery Engine + Worker Pool
	// ------------------------------------------------
	eng := engine.New(pg, pg, pg, dedupe, sender, limiter, logger, engine.Options{
		MaxAttempts: cfg.RetryAttempts,
		SendTimeout: cfg.SendTimeout,
		QueueSize:   cfg.QueueSize,
	})

	var wg sync.WaitGroup
	eng.StartPool(ctx, &wg, cfg.WorkerCount)

	// ------------------------------------------------
	// Campaign Scheduler
	// ------------------------------------------------
	sched := scheduler.New(pg, eng, logger)
	if err := sched.Start(ctx, cfg.SchedulerInterval); err != nil {
		logger.Fatal("scheduler start failed", zap.Error(err))
	}

	// ------------------------------------------------
	// HTTP API Server
	// ------------------------------------------------
	apiHandler := &api.Handler{
		Campaigns:  pg,
		Logs:       pg,
		Recipients: pg,
		Engine:     eng,
		Log:        logger,
	}

	apiServer := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: api.NewRouter(apiHandler),
	}

	go func() {
		logger.Info("api server started", zap.String("port", cfg.APIPort))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("api server error", zap.Error(err))
		}
	}()

	// ------------------------------------------------
	// Wait for shutdown
	// ------------------------------------------------
	<-ctx.Done()

	logger.Info("shutting down services...")

	// Stop scheduling new work
	sched.Stop()
	eng.Close()

	// Wait workers to finish
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", zap.Error(err))
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", zap.Error(err))
	}

	logger.Info("application shutdown complete")
}
