package public

import (
	"context"
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/Elyson25/clean-air-now/internal/aqi"
	"github.com/Elyson25/clean-air-now/internal/domain"
	"github.com/Elyson25/clean-air-now/internal/service"

	"github.com/go-chi/chi/v5"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Auth interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*service.AuthResult, error)
	Login(ctx context.Context, req domain.LoginRequest) (*service.AuthResult, error)
	ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, token string, req domain.ResetPasswordRequest) (*service.AuthResult, error)
}

type AirQuality interface {
	Lookup(ctx context.Context, point domain.GeoPoint) (*aqi.Reading, error)
}

type Reports interface {
	Public(ctx context.Context) ([]*domain.Report, error)
}

type Handler struct {
	logger     *slog.Logger
	Auth       Auth
	AirQuality AirQuality
	Reports    Reports
}

func NewHandler(logger *slog.Logger, auth Auth, airQuality AirQuality, reports Reports) *Handler {
	return &Handler{
		logger:     logger,
		Auth:       auth,
		AirQuality: airQuality,
		Reports:    reports,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("Register", slog.String("remote", r.RemoteAddr))

	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	result, err := h.Auth.Register(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("user registered", slog.String("user_id", result.User.ID.String()))
	h.writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("Login", slog.String("remote", r.RemoteAddr))

	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	result, err := h.Auth.Login(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("user logged in", slog.String("user_id", result.User.ID.String()))
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("ForgotPassword", slog.String("remote", r.RemoteAddr))

	var req domain.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := h.Auth.ForgotPassword(r.Context(), req); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "email sent"})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("ResetPassword", slog.String("remote", r.RemoteAddr))

	token := chi.URLParam(r, "token")
	if token == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing token"})
		return
	}

	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	result, err := h.Auth.ResetPassword(r.Context(), token, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("password reset", slog.String("user_id", result.User.ID.String()))
	h.writeJSON(w, http.StatusOK, result)
}

// CurrentAirQuality reads lat/lon from the query string and returns the live
// reading, or 204 when the provider has no data for that point.
func (h *Handler) CurrentAirQuality(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("CurrentAirQuality", slog.String("query", r.URL.RawQuery), slog.String("remote", r.RemoteAddr))

	point, ok := h.parsePoint(w, r)
	if !ok {
		return
	}

	reading, err := h.AirQuality.Lookup(r.Context(), point)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if reading == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(w, http.StatusOK, reading)
}

func (h *Handler) PublicReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Reports.Public(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	events := make([]domain.ReportEvent, 0, len(reports))
	for _, report := range reports {
		events = append(events, report.Event())
	}

	h.writeJSON(w, http.StatusOK, events)
}
