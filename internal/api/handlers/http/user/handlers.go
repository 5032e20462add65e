package user

import (
	"context"
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/Elyson25/clean-air-now/internal/domain"
	"github.com/Elyson25/clean-air-now/internal/middleware"
	"github.com/Elyson25/clean-air-now/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Profile interface {
	Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req domain.UpdateProfileRequest) (*service.AuthResult, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, req domain.UpdatePasswordRequest) error
}

type Favorites interface {
	Add(ctx context.Context, userID uuid.UUID, req domain.AddLocationRequest) ([]domain.FavoriteLocation, error)
	Delete(ctx context.Context, userID, locID uuid.UUID) ([]domain.FavoriteLocation, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.FavoriteLocation, error)
}

type Reports interface {
	Create(ctx context.Context, author domain.AuthUser, req domain.CreateReportRequest) (*domain.Report, error)
	Mine(ctx context.Context, userID uuid.UUID) ([]*domain.Report, error)
}

type History interface {
	History(ctx context.Context, point domain.GeoPoint) ([]domain.AQISample, error)
}

type Handler struct {
	logger    *slog.Logger
	Profiles  Profile
	Favorites Favorites
	Reports   Reports
	History   History
}

func NewHandler(logger *slog.Logger, profiles Profile, favorites Favorites, reports Reports, history History) *Handler {
	return &Handler{
		logger:    logger,
		Profiles:  profiles,
		Favorites: favorites,
		Reports:   reports,
		History:   history,
	}
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	authUser, ok := h.authUser(w, r)
	if !ok {
		return
	}

	user, err := h.Profiles.Profile(r.Context(), authUser.ID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, user)
}

// UpdateProfile returns a fresh token alongside the user so a changed email
// does not invalidate the session mid-flight.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	authUser, ok := h.authUser(w, r)
	if !ok {
		return
	}

	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	result, err := h.Profiles.UpdateProfile(r.Context(), authUser.ID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("profile updated", slog.String("user_id", authUser.ID.String()))
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	authUser, ok := h.authUser(w, r)
	if !ok {
		return
	}

	var req domain.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := h.Profiles.UpdatePassword(r.Context(), authUser.ID, req); err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("password updated", slog.String("user_id", authUser.ID.String()))
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *Handler) AddLocation(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	authUser, ok := h.authUser(w, r)
	if !ok {
		return
	}

	var req domain.AddLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	locations, err := h.Favorites.Add(r.Context(), authUser.ID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, locations)
}

func (h *Handler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	authUser, ok := h.authUser(w, r)
	if !ok {
		return
	}

	idStr := chi.URLParam(r, "id")
	locID, err := uuid.Parse(idStr)
	if err != nil {
		l.Warn("invalid id", slog.String("id", idStr), slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	locations, err := h.Favorites.Delete(r.Context(), authUser.ID, locID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, locations)
}

func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	authUser, ok := h.authUser(w, r)
	if !ok {
		return
	}

	locations, err := h.Favorites.List(r.Context(), authUser.ID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, locations)
}

func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	authUser, ok := h.authUser(w, r)
	if !ok {
		return
	}

	var req domain.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	report, err := h.Reports.Create(r.Context(), authUser, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("report created", slog.String("report_id", report.ID.String()), slog.String("user_id", authUser.ID.String()))
	h.writeJSON(w, http.StatusCreated, report)
}

func (h *Handler) MyReports(w http.ResponseWriter, r *http.Request) {
	authUser, ok := h.authUser(w, r)
	if !ok {
		return
	}

	reports, err := h.Reports.Mine(r.Context(), authUser.ID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, reports)
}

// AirQualityHistory returns the last week of stored readings near lat/lon,
// oldest first.
func (h *Handler) AirQualityHistory(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AirQualityHistory", slog.String("query", r.URL.RawQuery))

	point, ok := h.parsePoint(w, r)
	if !ok {
		return
	}

	samples, err := h.History.History(r.Context(), point)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, samples)
}

func (h *Handler) authUser(w http.ResponseWriter, r *http.Request) (domain.AuthUser, bool) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return domain.AuthUser{}, false
	}
	return authUser, true
}
