package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Elyson25/clean-air-now/internal/api"
	"github.com/Elyson25/clean-air-now/internal/aqi"
	"github.com/Elyson25/clean-air-now/internal/config"
	"github.com/Elyson25/clean-air-now/internal/live"
	"github.com/Elyson25/clean-air-now/internal/mailer"
	"github.com/Elyson25/clean-air-now/internal/scheduler"
	"github.com/Elyson25/clean-air-now/internal/service"
	"github.com/Elyson25/clean-air-now/internal/storage/postgres"
	"github.com/Elyson25/clean-air-now/internal/storage/redis"
	"github.com/Elyson25/clean-air-now/pkg/logger"

	"github.com/jonboulle/clockwork"
)

const reportEventsChannel = "reports:new"

type Components struct {
	logger     *slog.Logger
	HttpServer *api.Server
	Postgres   *postgres.Postgres
	Redis      *redis.Redis
	Hub        *live.Hub
	Alerter    *scheduler.Alerter
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	logger.Info("Initializing Postgres")

	storage, err := postgres.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to init postgres",
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	logger.Info("Initializing Redis")
	redisClient, err := redis.NewRedis(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}

	reportEvents := redis.NewReportEvents(redisClient.Client, reportEventsChannel, logger)

	mail, err := mailer.NewSMTPMailer(cfg.SMTP, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init mailer: %w", err)
	}

	provider := aqi.NewOpenWeatherClient(cfg.OpenWeather, logger)
	clock := clockwork.NewRealClock()

	authSvc := service.NewAuthService(storage.Users(), mail, cfg.Auth, cfg.FrontendURL, clock, logger)
	reportSvc := service.NewReportService(storage.Reports(), reportEvents, logger)
	historySvc := service.NewHistoryService(storage.Observations(), clock, logger)
	airSvc := service.NewAirQualityService(provider, storage.Observations(), clock, logger)
	favoriteSvc := service.NewFavoriteService(storage.Users(), logger)

	srv := service.NewService(authSvc, reportSvc, historySvc, airSvc, favoriteSvc)

	hub := live.NewHub(reportEvents, logger)
	alerter := scheduler.NewAlerter(storage.Users(), provider, mail, cfg.Alerts.Threshold, cfg.Alerts.CronSpec, clock, logger)

	httpServer := api.NewServer(cfg, logger, srv, storage.Users(), hub.ServeWS)
	logger.Info("Initialized server")

	return &Components{
		logger:     logger,
		HttpServer: httpServer,
		Postgres:   storage,
		Redis:      redisClient,
		Hub:        hub,
		Alerter:    alerter,
	}, nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("Component shutdown started")

	c.Alerter.Stop()

	c.Postgres.Pool.Close()
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.String("err", err.Error()))
		}
	}

	c.logger.Info("All components stopped",
		slog.Duration("latency", time.Since(start)))
}
