package public

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Elyson25/clean-air-now/internal/domain"
	"github.com/Elyson25/clean-air-now/pkg/e"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, e.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, e.ErrInvalidInput), errors.Is(err, e.ErrInvalidCoordinates), errors.Is(err, e.ErrTokenExpired):
		status = http.StatusBadRequest
	case errors.Is(err, e.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, e.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, e.ErrUpstream):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		h.log(r).Error("request failed", slog.Any("error", err))
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// parsePoint reads lat/lon query params and rejects anything out of range.
func (h *Handler) parsePoint(w http.ResponseWriter, r *http.Request) (domain.GeoPoint, bool) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lon query parameters are required"})
		return domain.GeoPoint{}, false
	}

	point := domain.GeoPoint{Lon: lon, Lat: lat}
	if !point.Valid() {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "coordinates out of range"})
		return domain.GeoPoint{}, false
	}
	return point, true
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("json encode failed", slog.Any("error", err))
	}
}
