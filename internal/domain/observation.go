package domain

import (
	"time"

	"github.com/google/uuid"
)

// AirQualityObservation is one logged AQI reading at a point. Observations
// are immutable once created and retained indefinitely.
type AirQualityObservation struct {
	ID         uuid.UUID `json:"id"`
	Point      GeoPoint  `json:"location"`
	AQI        int       `json:"aqi"` // 1 (Good) .. 5 (Very Poor)
	ObservedAt time.Time `json:"observed_at"`
}

// AQISample is the chart-facing slice of an observation.
type AQISample struct {
	AQI        int       `json:"aqi"`
	ObservedAt time.Time `json:"observed_at"`
}
