package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/salesreport/api/controllers"
	"github.com/angelmondragon/salesreport/api/routes"
	"github.com/angelmondragon/salesreport/internal/cron"
	"github.com/angelmondragon/salesreport/internal/reports"
	"github.com/angelmondragon/salesreport/pkg/config"
	"github.com/angelmondragon/salesreport/pkg/db"
	"github.com/angelmondragon/salesreport/pkg/instance"
	"github.com/angelmondragon/salesreport/pkg/logger"
	"github.com/angelmondragon/salesreport/pkg/metrics"
	"github.com/angelmondragon/salesreport/pkg/migrate"
	"github.com/angelmondragon/salesreport/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if !cfg.DB.Configured() {
		logg.Error(context.Background(), "report store is required", errors.New("database DSN is not configured"))
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRun(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run migrations", err)
		os.Exit(1)
	}

	var (
		cache       reports.RunCache
		redisP      controllers.Pinger
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		cache, redisP = redisClient, redisClient
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reportMetrics := metrics.NewReportMetrics(registry)

	reportService, err := reports.NewService(reports.NewRepository(dbClient.DB()), cache, reportMetrics, logg, cfg.Report)
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisP, reportService, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Report.Retention > 0 {
		scheduler, err := newRetentionScheduler(cfg, logg, reportService, redisClient, metrics.NewJobMetrics(registry))
		if err != nil {
			logg.Error(ctx, "failed to create retention scheduler", err)
			os.Exit(1)
		}
		go func() {
			_ = scheduler.Run(logg.WithField(stop, "component", "scheduler"))
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func newRetentionScheduler(cfg *config.Config, logg *logger.Logger, pruner cron.Pruner, redisClient *redis.Client, recorder cron.JobRecorder) (*cron.Service, error) {
	job, err := cron.NewReportRetentionJob(cron.ReportRetentionJobParams{
		Logger:    logg,
		Pruner:    pruner,
		Retention: cfg.Report.Retention,
	})
	if err != nil {
		return nil, err
	}
	var lock cron.Lock
	if redisClient != nil {
		lock, err = cron.NewRedisLock(redisClient, redisClient.JobLockKey(cron.ReportRetentionJobName), instance.GetID(), cfg.Report.RetentionInterval)
		if err != nil {
			return nil, err
		}
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(job),
		Lock:     lock,
		Metrics:  recorder,
		Interval: cfg.Report.RetentionInterval,
	})
}
