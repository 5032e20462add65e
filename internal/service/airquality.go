package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Elyson25/clean-air-now/internal/aqi"
	"github.com/Elyson25/clean-air-now/internal/domain"
	"github.com/Elyson25/clean-air-now/pkg/e"

	"github.com/jonboulle/clockwork"
)

type airQualityService struct {
	provider     aqi.Provider
	observations ObservationStore
	clock        clockwork.Clock
	logger       *slog.Logger
}

func NewAirQualityService(provider aqi.Provider, observations ObservationStore, clock clockwork.Clock, logger *slog.Logger) AirQualityService {
	return &airQualityService{
		provider:     provider,
		observations: observations,
		clock:        clock,
		logger:       logger,
	}
}

// Lookup is the interactive path: a successful reading is logged as one
// observation. The scheduler queries the provider directly and logs nothing,
// so background polling never pollutes the history.
func (s *airQualityService) Lookup(ctx context.Context, point domain.GeoPoint) (*aqi.Reading, error) {
	const op = "service.AirQuality.Lookup"

	if !point.Valid() {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}

	reading, err := s.provider.Current(ctx, point)
	if err != nil {
		return nil, err
	}
	if reading == nil {
		// Provider has no data; a valid answer, not a failure.
		return nil, nil
	}

	obs := &domain.AirQualityObservation{
		Point:      point,
		AQI:        reading.AQI,
		ObservedAt: s.clock.Now().UTC(),
	}
	if err := s.observations.Insert(ctx, obs); err != nil {
		// The reading is still good even if the log write is not.
		s.logger.Error("observation log failed", slog.Any("error", err))
	}

	return reading, nil
}
