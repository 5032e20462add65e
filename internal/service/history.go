package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Elyson25/clean-air-now/internal/domain"
	"github.com/Elyson25/clean-air-now/pkg/e"

	"github.com/jonboulle/clockwork"
)

const (
	// historyRadiusM bounds the proximity search around the requested point.
	historyRadiusM = 5000.0
	// historyWindow is the trailing range of observations returned.
	historyWindow = 7 * 24 * time.Hour
)

type ObservationStore interface {
	Insert(ctx context.Context, obs *domain.AirQualityObservation) error
	FindNearby(ctx context.Context, center domain.GeoPoint, radiusM float64, since time.Time) ([]domain.AQISample, error)
}

type historyService struct {
	observations ObservationStore
	clock        clockwork.Clock
	logger       *slog.Logger
}

func NewHistoryService(observations ObservationStore, clock clockwork.Clock, logger *slog.Logger) HistoryService {
	return &historyService{
		observations: observations,
		clock:        clock,
		logger:       logger,
	}
}

// History returns the AQI trend near point over the last 7 days, ascending
// by time. An empty slice means "no data", which is distinct from an error.
// Every call re-queries the store; reads are idempotent and infrequent.
func (s *historyService) History(ctx context.Context, point domain.GeoPoint) ([]domain.AQISample, error) {
	const op = "service.History.History"

	if !point.Valid() {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}

	since := s.clock.Now().UTC().Add(-historyWindow)

	samples, err := s.observations.FindNearby(ctx, point, historyRadiusM, since)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("history query",
		slog.Float64("lat", point.Lat),
		slog.Float64("lon", point.Lon),
		slog.Int("samples", len(samples)),
	)

	return samples, nil
}
