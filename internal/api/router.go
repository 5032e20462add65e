package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Elyson25/clean-air-now/internal/api/handlers/http/admin"
	"github.com/Elyson25/clean-air-now/internal/api/handlers/http/public"
	"github.com/Elyson25/clean-air-now/internal/api/handlers/http/system"
	"github.com/Elyson25/clean-air-now/internal/api/handlers/http/user"
	"github.com/Elyson25/clean-air-now/internal/config"
	"github.com/Elyson25/clean-air-now/internal/middleware"
	"github.com/Elyson25/clean-air-now/internal/service"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

func NewServer(cfg *config.Config, logger *slog.Logger, svc *service.Service, users middleware.UserGetter, liveWS http.HandlerFunc) *Server {
	publicHandler := public.NewHandler(logger, svc.Auth, svc.AirQuality, svc.Reports)
	userHandler := user.NewHandler(logger, svc.Auth, svc.Favorites, svc.Reports, svc.History)
	adminHandler := admin.NewHandler(logger, svc.Auth, svc.Reports)
	systemHandler := system.NewHandler(logger)

	r := InitRouter(cfg, publicHandler, userHandler, adminHandler, systemHandler, users, liveWS, logger)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func InitRouter(
	cfg *config.Config,
	publicHandler *public.Handler,
	userHandler *user.Handler,
	adminHandler *admin.Handler,
	systemHandler *system.Handler,
	users middleware.UserGetter,
	liveWS http.HandlerFunc,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewMux()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	authMW := middleware.Auth(cfg.Auth.JWTSecret, users, logger)

	r.Route("/api/v1", func(api chi.Router) {
		// PUBLIC
		api.Group(func(pr chi.Router) {
			pr.Use(middleware.Limit(10, 20, 5*time.Minute, logger))

			pr.Post("/users/register", publicHandler.Register)
			pr.Post("/users/login", publicHandler.Login)
			pr.Post("/users/forgotpassword", publicHandler.ForgotPassword)
			pr.Put("/users/resetpassword/{token}", publicHandler.ResetPassword)

			pr.Get("/airquality", publicHandler.CurrentAirQuality)
			pr.Get("/reports/public", publicHandler.PublicReports)
		})

		// AUTHENTICATED
		api.Group(func(ur chi.Router) {
			ur.Use(authMW)

			ur.Get("/users/profile", userHandler.GetProfile)
			ur.Put("/users/profile", userHandler.UpdateProfile)
			ur.Put("/users/password", userHandler.UpdatePassword)

			ur.Route("/locations", func(lr chi.Router) {
				lr.Get("/", userHandler.ListLocations)
				lr.Post("/", userHandler.AddLocation)
				lr.Delete("/{id}", userHandler.DeleteLocation)
			})

			ur.Post("/reports", userHandler.CreateReport)
			ur.Get("/reports/mine", userHandler.MyReports)

			ur.Get("/history", userHandler.AirQualityHistory)
		})

		// ADMIN
		api.Route("/admin", func(ar chi.Router) {
			ar.Use(authMW)
			ar.Use(middleware.RequireAdmin(logger))
			ar.Use(middleware.Limit(2, 5, 10*time.Minute, logger))

			ar.Get("/users", adminHandler.AdminUserList)
			ar.Get("/reports", adminHandler.AdminReportList)
			ar.Get("/reports/recent", adminHandler.AdminRecentReports)
			ar.Put("/reports/{id}/status", adminHandler.AdminReportStatusUpdate)
		})

		// SYSTEM
		api.Get("/health", systemHandler.SystemHealth)
	})

	// Websocket endpoint for live report broadcasts; auth-free like the map.
	r.Get("/live", liveWS)

	return r
}

func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Http.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Http.ReadTimeout,
		WriteTimeout: s.cfg.Http.WriteTimeout,
		IdleTimeout:  30 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("Starting HTTP server",
			slog.String("addr", srv.Addr),
			slog.Duration("read_timeout", s.cfg.Http.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.Http.WriteTimeout),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ListenAndServe error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server shutdown failed", slog.Any("error", err))
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}
