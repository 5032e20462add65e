package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/Elyson25/clean-air-now/internal/domain"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Users interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

type Reports interface {
	All(ctx context.Context) ([]*domain.Report, error)
	Recent(ctx context.Context, cutoff time.Time) ([]*domain.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) (*domain.Report, error)
}

type Handler struct {
	logger  *slog.Logger
	Users   Users
	Reports Reports
}

func NewHandler(logger *slog.Logger, users Users, reports Reports) *Handler {
	return &Handler{
		logger:  logger,
		Users:   users,
		Reports: reports,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) AdminUserList(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AdminUserList", slog.String("remote", r.RemoteAddr))

	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("users listed", slog.Int("count", len(users)))
	h.writeJSON(w, http.StatusOK, users)
}

func (h *Handler) AdminReportList(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AdminReportList", slog.String("remote", r.RemoteAddr))

	reports, err := h.Reports.All(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("reports listed", slog.Int("count", len(reports)))
	h.writeJSON(w, http.StatusOK, reports)
}

// AdminRecentReports lists reports created in the last N hours; defaults to 24.
func (h *Handler) AdminRecentReports(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AdminRecentReports", slog.String("query", r.URL.RawQuery), slog.String("remote", r.RemoteAddr))

	hours := parseInt(r.URL.Query().Get("hours"), 24)
	if hours <= 0 || hours > 720 {
		l.Warn("invalid hours", slog.Int("hours", hours))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "hours must be 1-720"})
		return
	}

	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	reports, err := h.Reports.Recent(r.Context(), cutoff)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, reports)
}

func (h *Handler) AdminReportStatusUpdate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AdminReportStatusUpdate", slog.String("remote", r.RemoteAddr))

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		l.Warn("invalid id", slog.String("id", idStr), slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req domain.UpdateReportStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	report, err := h.Reports.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("report status updated",
		slog.String("report_id", id.String()),
		slog.String("status", string(report.Status)),
	)
	h.writeJSON(w, http.StatusOK, report)
}
