package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Elyson25/clean-air-now/internal/domain"
	"github.com/Elyson25/clean-air-now/pkg/e"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ObservationRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewObservationRepo(pool *pgxpool.Pool, logger *slog.Logger) *ObservationRepo {
	return &ObservationRepo{pool: pool, logger: logger}
}

func (r *ObservationRepo) Insert(ctx context.Context, obs *domain.AirQualityObservation) error {
	const op = "postgres.Observation.Insert"

	if !obs.Point.Valid() {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}
	if obs.AQI < 1 || obs.AQI > 5 {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	if obs.ID == uuid.Nil {
		obs.ID = uuid.New()
	}
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO air_quality_observations (id, point, aqi, observed_at)
VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326), $4, $5)
`

	_, err := r.pool.Exec(ctx, query,
		obs.ID,
		obs.Point.Lon,
		obs.Point.Lat,
		obs.AQI,
		obs.ObservedAt,
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

// FindNearby returns samples within radiusM meters of center observed at or
// after since, ascending by time for chart consumption. Distance is
// great-circle: the geometry column is cast to geography so ST_DWithin works
// in meters.
func (r *ObservationRepo) FindNearby(ctx context.Context, center domain.GeoPoint, radiusM float64, since time.Time) ([]domain.AQISample, error) {
	const op = "postgres.Observation.FindNearby"

	if !center.Valid() || radiusM <= 0 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}

	const query = `
SELECT aqi, observed_at
FROM air_quality_observations
WHERE observed_at >= $4
  AND ST_DWithin(
    point::geography,
    ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
    $3
  )
ORDER BY observed_at ASC
`

	rows, err := r.pool.Query(ctx, query, center.Lon, center.Lat, radiusM, since)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	samples := make([]domain.AQISample, 0, 32)
	for rows.Next() {
		var s domain.AQISample
		if err := rows.Scan(&s.AQI, &s.ObservedAt); err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return samples, nil
}
